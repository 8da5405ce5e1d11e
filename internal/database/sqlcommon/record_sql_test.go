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
	"encoding/json"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
	"github.com/stretchr/testify/assert"
)

func TestRecordsE2EWithDB(t *testing.T) {
	s := newSQLiteTestProvider(t)
	defer s.Close()
	ctx := context.Background()

	amount := fftypes.MustParseDecimal("12.5")
	success := &fftypes.Record{
		ID:        fftypes.NewUUID(),
		Type:      fftypes.RecordTypeClaimSuccess,
		EventType: fftypes.EventTypeClaimQuery,
		RequestID: "claim1",
		Pool:      testPool,
		ClaimID:   "claim1",
		Tokens:    []*fftypes.CachedToken{newTestToken("tx1", 0, "owner1", "gold", "12.5")},
		Amount:    amount,
		Created:   fftypes.Now(),
	}
	ack := &fftypes.Record{
		ID:        fftypes.NewUUID(),
		Type:      fftypes.RecordTypeReleaseAck,
		EventType: fftypes.EventTypeClaimRelease,
		RequestID: "claim1",
		Pool:      testPool,
		ClaimID:   "claim1",
	}
	otherPool := fftypes.PoolKey{TokenType: "cash", Symbol: "USD"}
	failure := &fftypes.Record{
		ID:        fftypes.NewUUID(),
		Type:      fftypes.RecordTypeClaimFailure,
		EventType: fftypes.EventTypeClaimQuery,
		RequestID: "claim2",
		Pool:      otherPool,
		ClaimID:   "claim2",
		Reason:    "FF10203: Insufficient funds",
	}

	for _, r := range []*fftypes.Record{success, ack, failure} {
		err := s.InsertRecord(ctx, r)
		assert.NoError(t, err)
	}
	assert.NotNil(t, ack.Created)

	// The same request cannot be recorded twice
	dup := *failure
	dup.ID = fftypes.NewUUID()
	err := s.InsertRecord(ctx, &dup)
	assert.Regexp(t, "FF10118", err)

	read, err := s.GetRecordByID(ctx, success.ID)
	assert.NoError(t, err)
	successJSON, _ := json.Marshal(success)
	readJSON, _ := json.Marshal(read)
	assert.JSONEq(t, string(successJSON), string(readJSON))

	read, err = s.GetRecordByRequestID(ctx, testPool, fftypes.EventTypeClaimRelease, "claim1")
	assert.NoError(t, err)
	assert.Equal(t, ack.ID, read.ID)
	assert.Nil(t, read.Amount)
	assert.Empty(t, read.Tokens)

	read, err = s.GetRecordByRequestID(ctx, otherPool, fftypes.EventTypeClaimQuery, "claim1")
	assert.NoError(t, err)
	assert.Nil(t, read)

	read, err = s.GetRecordByID(ctx, fftypes.NewUUID())
	assert.NoError(t, err)
	assert.Nil(t, read)

	records, err := s.GetRecords(ctx, &fftypes.RecordFilter{})
	assert.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, failure.ID, records[0].ID)

	records, err = s.GetRecords(ctx, &fftypes.RecordFilter{PoolHash: testPool.Hash()})
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = s.GetRecords(ctx, &fftypes.RecordFilter{Type: fftypes.RecordTypeClaimFailure})
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "FF10203: Insufficient funds", records[0].Reason)

	records, err = s.GetRecords(ctx, &fftypes.RecordFilter{Skip: 1, Limit: 1})
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, ack.ID, records[0].ID)

	// Once deleted, the request can be recorded again
	err = s.DeleteRecordByRequestID(ctx, otherPool, fftypes.EventTypeClaimQuery, "claim2")
	assert.NoError(t, err)
	read, err = s.GetRecordByRequestID(ctx, otherPool, fftypes.EventTypeClaimQuery, "claim2")
	assert.NoError(t, err)
	assert.Nil(t, read)
	err = s.InsertRecord(ctx, &dup)
	assert.NoError(t, err)

	err = s.DeleteRecordByRequestID(ctx, otherPool, fftypes.EventTypeClaimRelease, "claim2")
	assert.Equal(t, database.DeleteRecordNotFound, err)
}

func TestInsertRecordFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	err := s.InsertRecord(context.Background(), &fftypes.Record{ID: fftypes.NewUUID()})
	assert.Regexp(t, "FF10115", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRecordFailInsert(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	err := s.InsertRecord(context.Background(), &fftypes.Record{ID: fftypes.NewUUID()})
	assert.Regexp(t, "FF10118", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecordByRequestIDFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	err := s.DeleteRecordByRequestID(context.Background(), testPool, fftypes.EventTypeClaimQuery, "claim1")
	assert.Regexp(t, "FF10115", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecordByRequestIDFailDelete(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	err := s.DeleteRecordByRequestID(context.Background(), testPool, fftypes.EventTypeClaimQuery, "claim1")
	assert.Regexp(t, "FF10120", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordByIDQueryFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	_, err := s.GetRecordByID(context.Background(), fftypes.NewUUID())
	assert.Regexp(t, "FF10117", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordByIDReadFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("only one"))
	_, err := s.GetRecordByID(context.Background(), fftypes.NewUUID())
	assert.Regexp(t, "FF10123", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordBadTokensJSON(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(
		fftypes.NewUUID().String(), "claim_success", "claim_query", "claim1",
		testPool.Hash(), "cash", "", "", "GBP",
		"claim1", "!json", "1", "", int64(1),
	))
	_, err := s.GetRecordByRequestID(context.Background(), testPool, fftypes.EventTypeClaimQuery, "claim1")
	assert.Regexp(t, "FF10123", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordsQueryFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	_, err := s.GetRecords(context.Background(), &fftypes.RecordFilter{})
	assert.Regexp(t, "FF10117", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordsReadFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("only one"))
	_, err := s.GetRecords(context.Background(), &fftypes.RecordFilter{})
	assert.Regexp(t, "FF10123", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
