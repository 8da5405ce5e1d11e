// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqlcommon

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

var (
	tokenColumns = []string{
		"pool_hash",
		"token_type",
		"issuer_hash",
		"notary",
		"symbol",
		"tx_id",
		"idx",
		"owner_hash",
		"tag",
		"amount",
		"created",
	}
)

const tokensTable = "tokens"

func (s *SQLCommon) UpsertTokens(ctx context.Context, tokens []*fftypes.CachedToken) (err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	created := fftypes.Now()
	for _, token := range tokens {
		// Refs are immutable once minted, so an existing row is left as it is
		tokenRows, err := s.queryTx(ctx, tx,
			sq.Select(sequenceColumn).
				From(tokensTable).
				Where(sq.Eq{"tx_id": token.Ref.TxID, "idx": token.Ref.Index}),
		)
		if err != nil {
			return err
		}
		existing := tokenRows.Next()
		rowsErr := tokenRows.Err()
		tokenRows.Close()
		if rowsErr != nil {
			return i18n.WrapError(ctx, rowsErr, i18n.MsgDBQueryFailed)
		}
		if existing {
			log.L(ctx).Debugf("Token %s already recorded", token.Ref)
			continue
		}

		if _, err = s.insertTx(ctx, tx,
			sq.Insert(tokensTable).
				Columns(tokenColumns...).
				Values(
					token.Pool.Hash(),
					token.Pool.TokenType,
					token.Pool.IssuerHash,
					token.Pool.Notary,
					token.Pool.Symbol,
					token.Ref.TxID,
					token.Ref.Index,
					token.OwnerHash,
					token.Tag,
					&token.Amount,
					created,
				),
		); err != nil {
			return err
		}
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) DeleteTokens(ctx context.Context, pool fftypes.PoolKey, refs []fftypes.TokenRef) (err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	for _, ref := range refs {
		err = s.deleteTx(ctx, tx, sq.Delete(tokensTable).Where(sq.Eq{
			"pool_hash": pool.Hash(),
			"tx_id":     ref.TxID,
			"idx":       ref.Index,
		}))
		if err != nil && err != database.DeleteRecordNotFound {
			return err
		}
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) tokenResult(ctx context.Context, row *sql.Rows) (*fftypes.CachedToken, error) {
	var token fftypes.CachedToken
	var poolHash string
	var tag sql.NullString
	var created fftypes.FFTime
	err := row.Scan(
		&poolHash,
		&token.Pool.TokenType,
		&token.Pool.IssuerHash,
		&token.Pool.Notary,
		&token.Pool.Symbol,
		&token.Ref.TxID,
		&token.Ref.Index,
		&token.OwnerHash,
		&tag,
		&token.Amount,
		&created,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, tokensTable)
	}
	token.Tag = tag.String
	return &token, nil
}

func (s *SQLCommon) getTokensPred(ctx context.Context, desc string, pred interface{}) ([]*fftypes.CachedToken, error) {
	rows, err := s.query(ctx,
		sq.Select(tokenColumns...).
			From(tokensTable).
			Where(pred).
			OrderBy(sequenceColumn),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []*fftypes.CachedToken{}
	for rows.Next() {
		token, err := s.tokenResult(ctx, rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	log.L(ctx).Debugf("Found %d tokens for %s", len(tokens), desc)
	return tokens, nil
}

func (s *SQLCommon) GetPoolTokens(ctx context.Context, pool fftypes.PoolKey) ([]*fftypes.CachedToken, error) {
	return s.getTokensPred(ctx, pool.String(), sq.Eq{"pool_hash": pool.Hash()})
}

func (s *SQLCommon) FindTokens(ctx context.Context, pool fftypes.PoolKey, ownerHash string) ([]*fftypes.CachedToken, error) {
	pred := sq.Eq{"pool_hash": pool.Hash()}
	if ownerHash != "" {
		pred["owner_hash"] = ownerHash
	}
	return s.getTokensPred(ctx, pool.String(), pred)
}
