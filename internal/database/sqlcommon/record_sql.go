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
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

var (
	recordColumns = []string{
		"id",
		"record_type",
		"event_type",
		"request_id",
		"pool_hash",
		"token_type",
		"issuer_hash",
		"notary",
		"symbol",
		"claim_id",
		"tokens",
		"amount",
		"reason",
		"created",
	}
)

const recordsTable = "records"

func (s *SQLCommon) InsertRecord(ctx context.Context, record *fftypes.Record) (err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	var tokens []byte
	if len(record.Tokens) > 0 {
		tokens, _ = json.Marshal(record.Tokens)
	}
	if record.Created == nil {
		record.Created = fftypes.Now()
	}
	if _, err = s.insertTx(ctx, tx,
		sq.Insert(recordsTable).
			Columns(recordColumns...).
			Values(
				record.ID,
				string(record.Type),
				string(record.EventType),
				record.RequestID,
				record.Pool.Hash(),
				record.Pool.TokenType,
				record.Pool.IssuerHash,
				record.Pool.Notary,
				record.Pool.Symbol,
				record.ClaimID,
				string(tokens),
				record.Amount,
				record.Reason,
				record.Created,
			),
	); err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) DeleteRecordByRequestID(ctx context.Context, pool fftypes.PoolKey, eventType fftypes.EventType, requestID string) (err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	if err = s.deleteTx(ctx, tx, sq.Delete(recordsTable).Where(sq.Eq{
		"pool_hash":  pool.Hash(),
		"event_type": string(eventType),
		"request_id": requestID,
	})); err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) recordResult(ctx context.Context, row *sql.Rows) (*fftypes.Record, error) {
	var record fftypes.Record
	var poolHash string
	var claimID, tokens, reason sql.NullString
	err := row.Scan(
		&record.ID,
		&record.Type,
		&record.EventType,
		&record.RequestID,
		&poolHash,
		&record.Pool.TokenType,
		&record.Pool.IssuerHash,
		&record.Pool.Notary,
		&record.Pool.Symbol,
		&claimID,
		&tokens,
		&record.Amount,
		&reason,
		&record.Created,
	)
	if err == nil && tokens.String != "" {
		err = json.Unmarshal([]byte(tokens.String), &record.Tokens)
	}
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, recordsTable)
	}
	record.ClaimID = claimID.String
	record.Reason = reason.String
	return &record, nil
}

func (s *SQLCommon) getRecordPred(ctx context.Context, desc string, pred interface{}) (*fftypes.Record, error) {
	rows, err := s.query(ctx,
		sq.Select(recordColumns...).
			From(recordsTable).
			Where(pred),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		log.L(ctx).Debugf("Record '%s' not found", desc)
		return nil, nil
	}

	return s.recordResult(ctx, rows)
}

func (s *SQLCommon) GetRecordByID(ctx context.Context, id *fftypes.UUID) (*fftypes.Record, error) {
	return s.getRecordPred(ctx, id.String(), sq.Eq{"id": id})
}

func (s *SQLCommon) GetRecordByRequestID(ctx context.Context, pool fftypes.PoolKey, eventType fftypes.EventType, requestID string) (*fftypes.Record, error) {
	return s.getRecordPred(ctx, requestID, sq.Eq{
		"pool_hash":  pool.Hash(),
		"event_type": string(eventType),
		"request_id": requestID,
	})
}

func (s *SQLCommon) GetRecords(ctx context.Context, filter *fftypes.RecordFilter) ([]*fftypes.Record, error) {
	query := sq.Select(recordColumns...).From(recordsTable)
	pred := sq.Eq{}
	if filter.PoolHash != "" {
		pred["pool_hash"] = filter.PoolHash
	}
	if filter.Type != "" {
		pred["record_type"] = string(filter.Type)
	}
	if len(pred) > 0 {
		query = query.Where(pred)
	}
	query = query.OrderBy(sequenceColumn + " DESC")
	// SQLite does not accept an offset without a limit
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Skip)
	}

	rows, err := s.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*fftypes.Record{}
	for rows.Next() {
		record, err := s.recordResult(ctx, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
