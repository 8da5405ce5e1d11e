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

package dispatcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/kaleido-io/firefly-tokenclaims/internal/claims"
	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/database/sqlcommon"
	"github.com/kaleido-io/firefly-tokenclaims/internal/database/sqlite"
	"github.com/kaleido-io/firefly-tokenclaims/internal/discovery/sqldiscovery"
	"github.com/kaleido-io/firefly-tokenclaims/internal/metrics"
	"github.com/kaleido-io/firefly-tokenclaims/internal/selection"
	"github.com/kaleido-io/firefly-tokenclaims/mocks/databasemocks"
	"github.com/kaleido-io/firefly-tokenclaims/mocks/discoverymocks"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/discovery"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testPool = fftypes.PoolKey{TokenType: "cash", IssuerHash: "issuer1", Notary: "notary1", Symbol: "GBP"}

func tok(txID string, amount int64) *fftypes.CachedToken {
	return &fftypes.CachedToken{
		Ref:       fftypes.TokenRef{TxID: txID},
		OwnerHash: "owner1",
		Amount:    *fftypes.NewDecimal(amount),
		Pool:      testPool,
	}
}

func resetConf() {
	config.Reset()
	config.Set(config.DispatcherMaxAttempts, 2)
	config.Set(config.DispatcherRetryInitDelay, "1ms")
	config.Set(config.DispatcherRetryMaxDelay, "1ms")
	metrics.Clear()
}

// newSQLiteDatabase creates a real in-memory database, with the schema migrated
func newSQLiteDatabase(t *testing.T) database.Plugin {
	s := &sqlite.SQLite{}
	prefix := config.NewPluginConfig("unittest.database")
	s.InitPrefix(prefix)
	prefix.Set(sqlcommon.SQLConfDatasourceURL, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	prefix.Set(sqlcommon.SQLConfMigrationsAuto, true)
	prefix.Set(sqlcommon.SQLConfMigrationsDirectory, "../../db/migrations/sqlite")
	err := s.Init(context.Background(), prefix)
	assert.NoError(t, err)
	return s
}

func newTestDispatcherE2E(t *testing.T, di database.Plugin, strategy string) *dispatcher {
	ctx := context.Background()
	dp := &sqldiscovery.SQLDiscovery{}
	err := dp.Init(ctx, config.NewPluginConfig("unittest.discovery"), di)
	assert.NoError(t, err)
	s, err := selection.New(ctx, strategy)
	assert.NoError(t, err)
	d, err := NewDispatcher(ctx, di, dp, s, metrics.NewMetricsManager())
	assert.NoError(t, err)
	return d.(*dispatcher)
}

func newTestDispatcherMocks(t *testing.T) (*dispatcher, *databasemocks.Plugin, *discoverymocks.Plugin) {
	resetConf()
	mdi := &databasemocks.Plugin{}
	mdp := &discoverymocks.Plugin{}
	s, err := selection.New(context.Background(), selection.StrategySmallest)
	assert.NoError(t, err)
	d, err := NewDispatcher(context.Background(), mdi, mdp, s, metrics.NewMetricsManager())
	assert.NoError(t, err)
	return d.(*dispatcher), mdi, mdp
}

func runAsGroupPassthrough(mdi *databasemocks.Plugin) {
	mdi.On("RunAsGroup", mock.Anything, mock.Anything).Return(func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	})
}

func releaseEffect(refs []fftypes.TokenRef) *claims.Effect {
	return &claims.Effect{
		RemovedClaim:  "claim1",
		RemovedTokens: refs,
		Record:        &fftypes.Record{Type: fftypes.RecordTypeReleaseAck, EventType: fftypes.EventTypeClaimRelease, RequestID: "claim1"},
	}
}

func balanceOf(t *testing.T, d *dispatcher) string {
	rec, err := d.Dispatch(context.Background(), &fftypes.BalanceQuery{ID: fftypes.ShortID(), PoolKey: testPool, OwnerHash: "owner1"})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeBalance, rec.Type)
	return rec.Amount.String()
}

func refsOf(tokens []*fftypes.CachedToken) []string {
	refs := make([]string, len(tokens))
	for i, t := range tokens {
		refs[i] = t.Ref.String()
	}
	return refs
}

func TestDispatcherE2E(t *testing.T) {
	resetConf()
	ctx := context.Background()
	di := newSQLiteDatabase(t)
	defer di.Close()
	d := newTestDispatcherE2E(t, di, selection.StrategyDiscovery)

	rec, err := d.Dispatch(ctx, &fftypes.LedgerChange{ID: "batch1", PoolKey: testPool,
		Produced: []*fftypes.CachedToken{tok("a", 5), tok("b", 7), tok("c", 3)},
	})
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, "15", balanceOf(t, d))

	rec, err = d.Dispatch(ctx, &fftypes.ClaimQuery{ClaimID: "claim1", PoolKey: testPool, OwnerHash: "owner1", Amount: *fftypes.NewDecimal(10)})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, rec.Type)
	assert.Equal(t, []string{"a:0", "b:0"}, refsOf(rec.Tokens))

	// Redelivery returns the tokens the claim holds, without reserving more
	dup, err := d.Dispatch(ctx, &fftypes.ClaimQuery{ClaimID: "claim1", PoolKey: testPool, OwnerHash: "owner1", Amount: *fftypes.NewDecimal(10)})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, dup.Type)
	assert.Equal(t, []string{"a:0", "b:0"}, refsOf(dup.Tokens))
	stored, err := di.GetRecordByRequestID(ctx, testPool, fftypes.EventTypeClaimQuery, "claim1")
	assert.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)

	rec, err = d.Dispatch(ctx, &fftypes.ClaimQuery{ClaimID: "claim2", PoolKey: testPool, OwnerHash: "owner1", Amount: *fftypes.NewDecimal(3)})
	assert.NoError(t, err)
	assert.Equal(t, []string{"c:0"}, refsOf(rec.Tokens))
	assert.Equal(t, "0", balanceOf(t, d))

	rec, err = d.Dispatch(ctx, &fftypes.ClaimQuery{ClaimID: "claim3", PoolKey: testPool, OwnerHash: "owner1", Amount: *fftypes.NewDecimal(1)})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimFailure, rec.Type)
	assert.Regexp(t, "FF10203", rec.Reason)

	rec, err = d.Dispatch(ctx, &fftypes.ClaimRelease{ClaimID: "claim1", PoolKey: testPool, UsedTokens: []fftypes.TokenRef{{TxID: "a"}, {TxID: "b"}}})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeReleaseAck, rec.Type)
	assert.Equal(t, "0", balanceOf(t, d))

	claimList, err := di.GetClaims(ctx, testPool)
	assert.NoError(t, err)
	assert.Len(t, claimList, 1)
	assert.Equal(t, "claim2", claimList[0].ID)
	assert.Equal(t, []fftypes.PoolKey{testPool}, d.Pools())

	// A new dispatcher rebuilds the pool state from the database
	d.Close()
	d.WaitStop()
	d = newTestDispatcherE2E(t, di, selection.StrategyDiscovery)
	defer d.Close()
	assert.Equal(t, "0", balanceOf(t, d))

	rec, err = d.Dispatch(ctx, &fftypes.ForceClaimRelease{ClaimID: "claim2", PoolKey: testPool})
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, "3", balanceOf(t, d))
}

func TestDispatcherRedeliveredClaimAfterForceRelease(t *testing.T) {
	resetConf()
	ctx := context.Background()
	di := newSQLiteDatabase(t)
	defer di.Close()
	d := newTestDispatcherE2E(t, di, selection.StrategySmallest)
	defer d.Close()

	_, err := d.Dispatch(ctx, &fftypes.LedgerChange{ID: "batch1", PoolKey: testPool,
		Produced: []*fftypes.CachedToken{tok("a", 5)},
	})
	assert.NoError(t, err)
	claim1 := &fftypes.ClaimQuery{ClaimID: "claim1", PoolKey: testPool, Amount: *fftypes.NewDecimal(5)}
	first, err := d.Dispatch(ctx, claim1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a:0"}, refsOf(first.Tokens))

	_, err = d.Dispatch(ctx, &fftypes.ForceClaimRelease{ClaimID: "claim1", PoolKey: testPool})
	assert.NoError(t, err)
	rec, err := d.Dispatch(ctx, &fftypes.ClaimQuery{ClaimID: "claim2", PoolKey: testPool, Amount: *fftypes.NewDecimal(5)})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, rec.Type)
	assert.Equal(t, []string{"a:0"}, refsOf(rec.Tokens))

	// The token now belongs to claim2, so the redelivered claim1 cannot have it
	rec, err = d.Dispatch(ctx, claim1)
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimFailure, rec.Type)
	assert.Regexp(t, "FF10203", rec.Reason)
	claimList, err := di.GetClaims(ctx, testPool)
	assert.NoError(t, err)
	assert.Len(t, claimList, 1)
	assert.Equal(t, "claim2", claimList[0].ID)

	// Once claim2 lets go, claim1 is selected again and its stored record is replaced
	_, err = d.Dispatch(ctx, &fftypes.ForceClaimRelease{ClaimID: "claim2", PoolKey: testPool})
	assert.NoError(t, err)
	rec, err = d.Dispatch(ctx, claim1)
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, rec.Type)
	assert.Equal(t, []string{"a:0"}, refsOf(rec.Tokens))
	stored, err := di.GetRecordByRequestID(ctx, testPool, fftypes.EventTypeClaimQuery, "claim1")
	assert.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
	assert.NotEqual(t, first.ID, stored.ID)
}

func TestDispatcherFailedClaimRunsAgainAfterFunds(t *testing.T) {
	resetConf()
	ctx := context.Background()
	di := newSQLiteDatabase(t)
	defer di.Close()
	d := newTestDispatcherE2E(t, di, selection.StrategySmallest)
	defer d.Close()

	claim9 := &fftypes.ClaimQuery{ClaimID: "claim9", PoolKey: testPool, Amount: *fftypes.NewDecimal(3)}
	rec, err := d.Dispatch(ctx, claim9)
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimFailure, rec.Type)
	stored, err := di.GetRecordByRequestID(ctx, testPool, fftypes.EventTypeClaimQuery, "claim9")
	assert.NoError(t, err)
	assert.Nil(t, stored)

	_, err = d.Dispatch(ctx, &fftypes.LedgerChange{ID: "batch1", PoolKey: testPool,
		Produced: []*fftypes.CachedToken{tok("z", 50)},
	})
	assert.NoError(t, err)

	rec, err = d.Dispatch(ctx, claim9)
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, rec.Type)
	assert.Equal(t, []string{"z:0"}, refsOf(rec.Tokens))
}

func TestDispatcherEarlyReleaseDoesNotBlockRelease(t *testing.T) {
	resetConf()
	ctx := context.Background()
	di := newSQLiteDatabase(t)
	defer di.Close()
	d := newTestDispatcherE2E(t, di, selection.StrategySmallest)
	defer d.Close()

	_, err := d.Dispatch(ctx, &fftypes.LedgerChange{ID: "batch1", PoolKey: testPool,
		Produced: []*fftypes.CachedToken{tok("a", 5)},
	})
	assert.NoError(t, err)

	release := &fftypes.ClaimRelease{ClaimID: "claim1", PoolKey: testPool, UsedTokens: []fftypes.TokenRef{{TxID: "a"}}}
	rec, err := d.Dispatch(ctx, release)
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeReleaseAck, rec.Type)
	stored, err := di.GetRecordByRequestID(ctx, testPool, fftypes.EventTypeClaimRelease, "claim1")
	assert.NoError(t, err)
	assert.Nil(t, stored)

	rec, err = d.Dispatch(ctx, &fftypes.ClaimQuery{ClaimID: "claim1", PoolKey: testPool, Amount: *fftypes.NewDecimal(5)})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, rec.Type)

	ack, err := d.Dispatch(ctx, release)
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeReleaseAck, ack.Type)
	claimList, err := di.GetClaims(ctx, testPool)
	assert.NoError(t, err)
	assert.Empty(t, claimList)
	tokens, err := di.GetPoolTokens(ctx, testPool)
	assert.NoError(t, err)
	assert.Empty(t, tokens)

	// Once the claim has gone, a redelivered release returns the stored ack
	dup, err := d.Dispatch(ctx, release)
	assert.NoError(t, err)
	assert.Equal(t, ack.ID, dup.ID)
}

func TestDispatcherLedgerChangePrunesClaim(t *testing.T) {
	resetConf()
	ctx := context.Background()
	di := newSQLiteDatabase(t)
	defer di.Close()
	d := newTestDispatcherE2E(t, di, selection.StrategySmallest)
	defer d.Close()

	_, err := d.Dispatch(ctx, &fftypes.LedgerChange{ID: "batch1", PoolKey: testPool,
		Produced: []*fftypes.CachedToken{tok("a", 5), tok("b", 7)},
	})
	assert.NoError(t, err)
	rec, err := d.Dispatch(ctx, &fftypes.ClaimQuery{ClaimID: "claim1", PoolKey: testPool, Amount: *fftypes.NewDecimal(12)})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, rec.Type)

	_, err = d.Dispatch(ctx, &fftypes.LedgerChange{ID: "batch2", PoolKey: testPool,
		Consumed: []*fftypes.CachedToken{tok("a", 5)},
	})
	assert.NoError(t, err)

	claimList, err := di.GetClaims(ctx, testPool)
	assert.NoError(t, err)
	assert.Len(t, claimList, 1)
	assert.Equal(t, []string{"b:0"}, refsOf(claimList[0].Tokens))
	tokens, err := di.GetPoolTokens(ctx, testPool)
	assert.NoError(t, err)
	assert.Equal(t, []string{"b:0"}, refsOf(tokens))
}

func TestNewDispatcherMissingDeps(t *testing.T) {
	_, err := NewDispatcher(context.Background(), nil, nil, nil, nil)
	assert.Regexp(t, "FF10128", err)
}

func TestDispatchNilEvent(t *testing.T) {
	d, _, _ := newTestDispatcherMocks(t)
	defer d.Close()
	_, err := d.Dispatch(context.Background(), nil)
	assert.Regexp(t, "FF10220", err)
}

func TestDispatchInvalidPool(t *testing.T) {
	d, _, _ := newTestDispatcherMocks(t)
	defer d.Close()
	_, err := d.Dispatch(context.Background(), &fftypes.ForceClaimRelease{ClaimID: "claim1"})
	assert.Regexp(t, "FF10135", err)
}

func TestDispatchClosed(t *testing.T) {
	d, _, _ := newTestDispatcherMocks(t)
	d.Close()
	d.WaitStop()
	_, err := d.Dispatch(context.Background(), &fftypes.ForceClaimRelease{ClaimID: "claim1", PoolKey: testPool})
	assert.Regexp(t, "FF10221", err)
}

func TestDispatchLoadTokensFailRetries(t *testing.T) {
	d, mdi, _ := newTestDispatcherMocks(t)
	defer d.Close()
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return(nil, fmt.Errorf("pop")).Twice()

	_, err := d.Dispatch(context.Background(), &fftypes.ForceClaimRelease{ClaimID: "claim1", PoolKey: testPool})
	assert.Regexp(t, "FF10224.*claim1.*2.*pop", err)
	mdi.AssertExpectations(t)
}

func TestDispatchLoadClaimsFail(t *testing.T) {
	d, mdi, _ := newTestDispatcherMocks(t)
	defer d.Close()
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return([]*fftypes.CachedToken{}, nil)
	mdi.On("GetClaims", mock.Anything, testPool).Return(nil, fmt.Errorf("pop"))

	_, err := d.Dispatch(context.Background(), &fftypes.ForceClaimRelease{ClaimID: "claim1", PoolKey: testPool})
	assert.Regexp(t, "FF10224", err)
}

func TestDispatchLoadConflictingClaims(t *testing.T) {
	d, mdi, _ := newTestDispatcherMocks(t)
	defer d.Close()
	a := tok("a", 5)
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return([]*fftypes.CachedToken{a}, nil)
	mdi.On("GetClaims", mock.Anything, testPool).Return([]*fftypes.Claim{
		{ID: "claim1", Pool: testPool, Tokens: []*fftypes.CachedToken{a}},
		{ID: "claim2", Pool: testPool, Tokens: []*fftypes.CachedToken{a}},
	}, nil)

	_, err := d.Dispatch(context.Background(), &fftypes.ForceClaimRelease{ClaimID: "claim1", PoolKey: testPool})
	assert.Regexp(t, "FF10202", err)
}

func TestDispatchDuplicateReturnsRecord(t *testing.T) {
	d, mdi, mdp := newTestDispatcherMocks(t)
	defer d.Close()
	existing := &fftypes.Record{ID: fftypes.NewUUID(), Type: fftypes.RecordTypeBalance, RequestID: "bal1"}
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return([]*fftypes.CachedToken{}, nil)
	mdi.On("GetClaims", mock.Anything, testPool).Return([]*fftypes.Claim{}, nil)
	mdi.On("GetRecordByRequestID", mock.Anything, testPool, fftypes.EventTypeBalanceQuery, "bal1").Return(existing, nil)

	rec, err := d.Dispatch(context.Background(), &fftypes.BalanceQuery{ID: "bal1", PoolKey: testPool})
	assert.NoError(t, err)
	assert.Equal(t, existing, rec)
	mdp.AssertNotCalled(t, "FindAvailableTokens", mock.Anything, mock.Anything)
}

func TestDispatchClaimQueryIgnoresStoredRecord(t *testing.T) {
	d, mdi, mdp := newTestDispatcherMocks(t)
	defer d.Close()
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return([]*fftypes.CachedToken{}, nil)
	mdi.On("GetClaims", mock.Anything, testPool).Return([]*fftypes.Claim{}, nil)
	mdp.On("FindAvailableTokens", mock.Anything, mock.Anything).Return([]*fftypes.CachedToken{}, nil)

	rec, err := d.Dispatch(context.Background(), &fftypes.ClaimQuery{ClaimID: "claim1", PoolKey: testPool, Amount: *fftypes.NewDecimal(1)})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimFailure, rec.Type)
	mdi.AssertNotCalled(t, "GetRecordByRequestID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mdi.AssertNotCalled(t, "RunAsGroup", mock.Anything, mock.Anything)
}

func TestDispatchRecordLookupFail(t *testing.T) {
	d, mdi, _ := newTestDispatcherMocks(t)
	defer d.Close()
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return([]*fftypes.CachedToken{}, nil)
	mdi.On("GetClaims", mock.Anything, testPool).Return([]*fftypes.Claim{}, nil)
	mdi.On("GetRecordByRequestID", mock.Anything, testPool, fftypes.EventTypeClaimRelease, "claim1").Return(nil, fmt.Errorf("pop"))

	_, err := d.Dispatch(context.Background(), &fftypes.ClaimRelease{ClaimID: "claim1", PoolKey: testPool})
	assert.Regexp(t, "FF10224", err)
}

func TestDispatchDiscoveryFail(t *testing.T) {
	d, mdi, mdp := newTestDispatcherMocks(t)
	defer d.Close()
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return([]*fftypes.CachedToken{}, nil)
	mdi.On("GetClaims", mock.Anything, testPool).Return([]*fftypes.Claim{}, nil)
	mdp.On("FindAvailableTokens", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("pop")).Twice()

	_, err := d.Dispatch(context.Background(), &fftypes.ClaimQuery{ClaimID: "claim1", PoolKey: testPool, Amount: *fftypes.NewDecimal(1)})
	assert.Regexp(t, "FF10224.*pop", err)
	mdp.AssertExpectations(t)
}

func TestDispatchCommitFailLeavesStateUntouched(t *testing.T) {
	d, mdi, mdp := newTestDispatcherMocks(t)
	defer d.Close()
	a := tok("a", 5)
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return([]*fftypes.CachedToken{a}, nil)
	mdi.On("GetClaims", mock.Anything, testPool).Return([]*fftypes.Claim{}, nil)
	mdp.On("FindAvailableTokens", mock.Anything, mock.Anything).Return([]*fftypes.CachedToken{a}, nil)
	runAsGroupPassthrough(mdi)
	mdi.On("InsertClaim", mock.Anything, mock.Anything).Return(fmt.Errorf("pop")).Twice()

	_, err := d.Dispatch(context.Background(), &fftypes.ClaimQuery{ClaimID: "claim1", PoolKey: testPool, Amount: *fftypes.NewDecimal(5)})
	assert.Regexp(t, "FF10224.*pop", err)

	// Nothing was applied, so the token is still available to the next claim
	mdi.On("InsertClaim", mock.Anything, mock.Anything).Return(nil)
	mdi.On("DeleteRecordByRequestID", mock.Anything, testPool, fftypes.EventTypeClaimQuery, "claim2").Return(database.DeleteRecordNotFound)
	mdi.On("InsertRecord", mock.Anything, mock.Anything).Return(nil)
	rec, err := d.Dispatch(context.Background(), &fftypes.ClaimQuery{ClaimID: "claim2", PoolKey: testPool, Amount: *fftypes.NewDecimal(5)})
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, rec.Type)
}

func TestDispatchRecordInsertFail(t *testing.T) {
	d, mdi, mdp := newTestDispatcherMocks(t)
	defer d.Close()
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return([]*fftypes.CachedToken{}, nil)
	mdi.On("GetClaims", mock.Anything, testPool).Return([]*fftypes.Claim{}, nil)
	mdi.On("GetRecordByRequestID", mock.Anything, testPool, fftypes.EventTypeBalanceQuery, "bal1").Return(nil, nil)
	mdp.On("FindAvailableTokens", mock.Anything, mock.Anything).Return([]*fftypes.CachedToken{}, nil)
	runAsGroupPassthrough(mdi)
	mdi.On("DeleteRecordByRequestID", mock.Anything, testPool, fftypes.EventTypeBalanceQuery, "bal1").Return(database.DeleteRecordNotFound)
	mdi.On("InsertRecord", mock.Anything, mock.Anything).Return(fmt.Errorf("pop"))

	_, err := d.Dispatch(context.Background(), &fftypes.BalanceQuery{ID: "bal1", PoolKey: testPool})
	assert.Regexp(t, "FF10224.*pop", err)
}

func TestDispatchNoRequestIDRecordNotStored(t *testing.T) {
	d, mdi, mdp := newTestDispatcherMocks(t)
	defer d.Close()
	mdi.On("GetPoolTokens", mock.Anything, testPool).Return([]*fftypes.CachedToken{}, nil)
	mdi.On("GetClaims", mock.Anything, testPool).Return([]*fftypes.Claim{}, nil)
	mdp.On("FindAvailableTokens", mock.Anything, mock.MatchedBy(func(q *discovery.TokenQuery) bool { return q.Pool == testPool })).Return([]*fftypes.CachedToken{tok("a", 2)}, nil)
	runAsGroupPassthrough(mdi)

	rec, err := d.Dispatch(context.Background(), &fftypes.BalanceQuery{PoolKey: testPool})
	assert.NoError(t, err)
	assert.Equal(t, "2", rec.Amount.String())
	mdi.AssertNotCalled(t, "InsertRecord", mock.Anything, mock.Anything)
}

func TestPersistReleaseIgnoresMissingClaim(t *testing.T) {
	d, mdi, _ := newTestDispatcherMocks(t)
	defer d.Close()
	p := &poolProcessor{d: d, pool: testPool}
	refs := []fftypes.TokenRef{{TxID: "a"}}
	mdi.On("DeleteClaim", mock.Anything, testPool, "claim1").Return(database.DeleteRecordNotFound)
	mdi.On("DeleteTokens", mock.Anything, testPool, refs).Return(nil)
	mdi.On("DeleteClaimTokens", mock.Anything, testPool, refs).Return(nil)
	mdi.On("DeleteRecordByRequestID", mock.Anything, testPool, fftypes.EventTypeClaimRelease, "claim1").Return(database.DeleteRecordNotFound)
	mdi.On("InsertRecord", mock.Anything, mock.Anything).Return(nil)

	err := p.persist(context.Background(), releaseEffect(refs))
	assert.NoError(t, err)
	mdi.AssertExpectations(t)
}

func TestPersistReplaceRecordFail(t *testing.T) {
	d, mdi, _ := newTestDispatcherMocks(t)
	defer d.Close()
	p := &poolProcessor{d: d, pool: testPool}
	mdi.On("DeleteRecordByRequestID", mock.Anything, testPool, fftypes.EventTypeClaimQuery, "claim1").Return(fmt.Errorf("pop"))

	err := p.persist(context.Background(), &claims.Effect{
		NewClaim: &fftypes.Claim{ID: "claim1", Pool: testPool},
		Record:   &fftypes.Record{Type: fftypes.RecordTypeClaimSuccess, EventType: fftypes.EventTypeClaimQuery, RequestID: "claim1"},
	})
	assert.Regexp(t, "pop", err)
	mdi.AssertNotCalled(t, "InsertRecord", mock.Anything, mock.Anything)
}

func TestRecordToCommit(t *testing.T) {
	success := &fftypes.Record{Type: fftypes.RecordTypeClaimSuccess, RequestID: "claim1"}
	assert.Equal(t, success, recordToCommit(&claims.Effect{NewClaim: &fftypes.Claim{ID: "claim1"}, Record: success}))
	assert.Nil(t, recordToCommit(&claims.Effect{Record: success}))
	assert.Nil(t, recordToCommit(&claims.Effect{Record: &fftypes.Record{Type: fftypes.RecordTypeClaimFailure, RequestID: "claim1"}}))
	assert.Nil(t, recordToCommit(&claims.Effect{UnknownClaim: true, Record: &fftypes.Record{Type: fftypes.RecordTypeReleaseAck, RequestID: "claim1"}}))
	assert.Nil(t, recordToCommit(&claims.Effect{Record: &fftypes.Record{Type: fftypes.RecordTypeBalance}}))
	assert.Nil(t, recordToCommit(&claims.Effect{}))
}

func TestPersistErrors(t *testing.T) {
	refs := []fftypes.TokenRef{{TxID: "a"}}
	for _, failing := range []string{"DeleteClaim", "UpsertTokens", "DeleteTokens", "DeleteClaimTokens"} {
		d, mdi, _ := newTestDispatcherMocks(t)
		p := &poolProcessor{d: d, pool: testPool}
		for _, method := range []string{"DeleteClaim", "DeleteTokens", "DeleteClaimTokens"} {
			var err error
			if method == failing {
				err = fmt.Errorf("pop")
			}
			if method == "DeleteClaim" {
				mdi.On(method, mock.Anything, testPool, mock.Anything).Return(err).Maybe()
			} else {
				mdi.On(method, mock.Anything, testPool, refs).Return(err).Maybe()
			}
		}
		var upsertErr error
		if failing == "UpsertTokens" {
			upsertErr = fmt.Errorf("pop")
		}
		mdi.On("UpsertTokens", mock.Anything, mock.Anything).Return(upsertErr).Maybe()

		eff := releaseEffect(refs)
		eff.AddedTokens = []*fftypes.CachedToken{tok("b", 1)}
		err := p.persist(context.Background(), eff)
		assert.Regexp(t, "pop", err, failing)
		d.Close()
	}
}
