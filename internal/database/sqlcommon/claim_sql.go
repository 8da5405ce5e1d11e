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
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

var (
	claimColumns = []string{
		"pool_hash",
		"claim_id",
		"requested",
		"created",
	}
	claimTokenColumns = []string{
		"pool_hash",
		"claim_id",
		"tx_id",
		"idx",
		"owner_hash",
		"tag",
		"amount",
	}
)

const (
	claimsTable      = "claims"
	claimTokensTable = "claim_tokens"
)

func (s *SQLCommon) InsertClaim(ctx context.Context, claim *fftypes.Claim) (err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	poolHash := claim.Pool.Hash()
	if claim.Created == nil {
		claim.Created = fftypes.Now()
	}
	if _, err = s.insertTx(ctx, tx,
		sq.Insert(claimsTable).
			Columns(claimColumns...).
			Values(
				poolHash,
				claim.ID,
				&claim.Requested,
				claim.Created,
			),
	); err != nil {
		return err
	}

	for _, token := range claim.Tokens {
		if _, err = s.insertTx(ctx, tx,
			sq.Insert(claimTokensTable).
				Columns(claimTokenColumns...).
				Values(
					poolHash,
					claim.ID,
					token.Ref.TxID,
					token.Ref.Index,
					token.OwnerHash,
					token.Tag,
					&token.Amount,
				),
		); err != nil {
			return err
		}
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) DeleteClaim(ctx context.Context, pool fftypes.PoolKey, claimID string) (err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	poolHash := pool.Hash()
	// A claim can legitimately hold no tokens, after they were all consumed elsewhere
	err = s.deleteTx(ctx, tx, sq.Delete(claimTokensTable).Where(sq.Eq{
		"pool_hash": poolHash,
		"claim_id":  claimID,
	}))
	if err != nil && err != database.DeleteRecordNotFound {
		return err
	}

	if err = s.deleteTx(ctx, tx, sq.Delete(claimsTable).Where(sq.Eq{
		"pool_hash": poolHash,
		"claim_id":  claimID,
	})); err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) DeleteClaimTokens(ctx context.Context, pool fftypes.PoolKey, refs []fftypes.TokenRef) (err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	for _, ref := range refs {
		err = s.deleteTx(ctx, tx, sq.Delete(claimTokensTable).Where(sq.Eq{
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

func (s *SQLCommon) claimResult(ctx context.Context, row *sql.Rows, pool fftypes.PoolKey) (*fftypes.Claim, error) {
	claim := fftypes.Claim{
		Pool:   pool,
		Tokens: []*fftypes.CachedToken{},
	}
	var poolHash string
	err := row.Scan(
		&poolHash,
		&claim.ID,
		&claim.Requested,
		&claim.Created,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, claimsTable)
	}
	return &claim, nil
}

func (s *SQLCommon) claimTokenResult(ctx context.Context, row *sql.Rows, pool fftypes.PoolKey) (string, *fftypes.CachedToken, error) {
	token := fftypes.CachedToken{Pool: pool}
	var poolHash, claimID string
	var tag sql.NullString
	err := row.Scan(
		&poolHash,
		&claimID,
		&token.Ref.TxID,
		&token.Ref.Index,
		&token.OwnerHash,
		&tag,
		&token.Amount,
	)
	if err != nil {
		return "", nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, claimTokensTable)
	}
	token.Tag = tag.String
	return claimID, &token, nil
}

func (s *SQLCommon) GetClaims(ctx context.Context, pool fftypes.PoolKey) (claims []*fftypes.Claim, err error) {
	poolHash := pool.Hash()
	rows, err := s.query(ctx,
		sq.Select(claimColumns...).
			From(claimsTable).
			Where(sq.Eq{"pool_hash": poolHash}).
			OrderBy(sequenceColumn),
	)
	if err != nil {
		return nil, err
	}
	claims = []*fftypes.Claim{}
	byID := make(map[string]*fftypes.Claim)
	for rows.Next() {
		claim, err := s.claimResult(ctx, rows, pool)
		if err != nil {
			rows.Close()
			return nil, err
		}
		claims = append(claims, claim)
		byID[claim.ID] = claim
	}
	rows.Close()

	tokenRows, err := s.query(ctx,
		sq.Select(claimTokenColumns...).
			From(claimTokensTable).
			Where(sq.Eq{"pool_hash": poolHash}).
			OrderBy(sequenceColumn),
	)
	if err != nil {
		return nil, err
	}
	defer tokenRows.Close()
	for tokenRows.Next() {
		claimID, token, err := s.claimTokenResult(ctx, tokenRows, pool)
		if err != nil {
			return nil, err
		}
		if claim, ok := byID[claimID]; ok {
			claim.Tokens = append(claim.Tokens, token)
		}
	}

	return claims, nil
}
