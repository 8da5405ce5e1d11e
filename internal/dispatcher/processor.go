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
	"time"

	"github.com/kaleido-io/firefly-tokenclaims/internal/claims"
	"github.com/kaleido-io/firefly-tokenclaims/internal/claimledger"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

type work struct {
	ctx    context.Context
	event  fftypes.Event
	result chan *result
}

type result struct {
	record *fftypes.Record
	err    error
}

type poolProcessor struct {
	ctx       context.Context
	cancelCtx func()
	d         *dispatcher
	pool      fftypes.PoolKey
	// state is loaded on the first event, and discarded if it might no longer match the database
	state   *claims.PoolState
	newWork chan *work
	done    chan struct{}
}

func newPoolProcessor(d *dispatcher, pool fftypes.PoolKey) *poolProcessor {
	pCtx := log.WithLogField(d.ctx, "pool", pool.Hash()[0:12])
	pCtx, cancelCtx := context.WithCancel(pCtx)
	p := &poolProcessor{
		ctx:       pCtx,
		cancelCtx: cancelCtx,
		d:         d,
		pool:      pool,
		newWork:   make(chan *work, d.queueLength),
		done:      make(chan struct{}),
	}
	go p.processLoop()
	log.L(pCtx).Infof("Processor created for pool %s", pool)
	return p
}

func (p *poolProcessor) processLoop() {
	defer close(p.done)
	defer p.cancelCtx()
	l := log.L(p.ctx)
	for {
		select {
		case <-p.ctx.Done():
			l.Debugf("Processor exiting")
			return
		case w := <-p.newWork:
			record, err := p.process(w)
			w.result <- &result{record: record, err: err}
		}
	}
}

// process runs one event to completion, retrying infrastructure failures.
// Every attempt starts from the last committed state, so a failed attempt leaves nothing behind.
func (p *poolProcessor) process(w *work) (record *fftypes.Record, err error) {
	start := time.Now()
	ctx := log.WithLogger(w.ctx, log.L(p.ctx).WithField("req", w.event.RequestID()))
	eventType := w.event.EventType()

	attempts := 0
	err = p.d.retry.Do(ctx, string(eventType), func(attempt int) (retry bool, err error) {
		attempts = attempt
		record, err = p.processOnce(ctx, w.event)
		return err != nil && attempt < p.d.maxAttempts, err
	})
	if err != nil {
		p.d.metrics.DispatchFailed()
		return nil, i18n.WrapError(ctx, err, i18n.MsgDispatchFailed, w.event.RequestID(), attempts)
	}
	p.d.metrics.EventProcessed(eventType, start)
	return record, nil
}

func (p *poolProcessor) loadState(ctx context.Context) (*claims.PoolState, error) {
	if p.state != nil {
		return p.state, nil
	}
	tokens, err := p.d.database.GetPoolTokens(ctx, p.pool)
	if err != nil {
		return nil, err
	}
	claimList, err := p.d.database.GetClaims(ctx, p.pool)
	if err != nil {
		return nil, err
	}
	state, err := claims.NewPoolState(ctx, p.pool, tokens, claimList)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Loaded pool state: tokens=%d claims=%d", state.Cache.Len(), state.Ledger.Len())
	p.state = state
	return state, nil
}

func (p *poolProcessor) processOnce(ctx context.Context, event fftypes.Event) (*fftypes.Record, error) {
	l := log.L(ctx)
	state, err := p.loadState(ctx)
	if err != nil {
		return nil, err
	}

	eventType := event.EventType()
	if requestID := event.RequestID(); requestID != "" && storedRecordHolds(state, event) {
		existing, err := p.d.database.GetRecordByRequestID(ctx, p.pool, eventType, requestID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			l.Infof("Returning %s record %s committed for earlier delivery of %s", existing.Type, existing.ID, eventType)
			return existing, nil
		}
	}

	effect, err := claims.Handle(ctx, p.d.deps, state, event)
	if err != nil {
		return nil, err
	}

	if needsCommit(effect) {
		err = p.d.database.RunAsGroup(ctx, func(ctx context.Context) error {
			return p.persist(ctx, effect)
		})
		if err != nil {
			return nil, err
		}
	}

	pruned, err := effect.Apply(ctx, state)
	if err != nil {
		// The commit succeeded, so the database is the truth. Reload it on the next attempt.
		l.Errorf("In-memory state diverged from committed state: %s", err)
		p.state = nil
		return nil, err
	}
	p.reportPruned(ctx, pruned)
	p.reportOutcome(ctx, event, effect)
	return effect.Record, nil
}

func (p *poolProcessor) persist(ctx context.Context, effect *claims.Effect) error {
	db := p.d.database
	if effect.RemovedClaim != "" {
		if err := db.DeleteClaim(ctx, p.pool, effect.RemovedClaim); err != nil && err != database.DeleteRecordNotFound {
			return err
		}
	}
	if len(effect.AddedTokens) > 0 {
		if err := db.UpsertTokens(ctx, effect.AddedTokens); err != nil {
			return err
		}
	}
	if len(effect.RemovedTokens) > 0 {
		if err := db.DeleteTokens(ctx, p.pool, effect.RemovedTokens); err != nil {
			return err
		}
		if err := db.DeleteClaimTokens(ctx, p.pool, effect.RemovedTokens); err != nil {
			return err
		}
	}
	if effect.NewClaim != nil {
		if err := db.InsertClaim(ctx, effect.NewClaim); err != nil {
			return err
		}
	}
	if record := recordToCommit(effect); record != nil {
		// A record left by an earlier claim under the same id is replaced
		err := db.DeleteRecordByRequestID(ctx, p.pool, record.EventType, record.RequestID)
		if err != nil && err != database.DeleteRecordNotFound {
			return err
		}
		if err := db.InsertRecord(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func needsCommit(effect *claims.Effect) bool {
	return effect.NewClaim != nil ||
		effect.RemovedClaim != "" ||
		len(effect.AddedTokens) > 0 ||
		len(effect.RemovedTokens) > 0 ||
		recordToCommit(effect) != nil
}

// recordToCommit returns the record to store for later deliveries of the same request.
// Only outcomes that committed a change, or read nothing but the pool, are stored. A failed
// claim or a release of an unknown claim must run again when it is redelivered.
func recordToCommit(effect *claims.Effect) *fftypes.Record {
	record := effect.Record
	switch {
	case record == nil, record.RequestID == "":
		return nil
	case effect.UnknownClaim:
		return nil
	case record.Type == fftypes.RecordTypeClaimFailure:
		return nil
	case record.Type == fftypes.RecordTypeClaimSuccess && effect.NewClaim == nil:
		// Repeat of a live claim, whose record is already stored
		return nil
	}
	return record
}

// storedRecordHolds is true when a record stored for an earlier delivery of the event is
// still the right answer, given the current claim ledger
func storedRecordHolds(state *claims.PoolState, event fftypes.Event) bool {
	switch e := event.(type) {
	case *fftypes.ClaimQuery:
		// The claim ledger answers repeats of a live claim with the tokens it still holds,
		// and a claim that has gone is selected again
		return false
	case *fftypes.ClaimRelease:
		// A claim that exists again under the same id must be released
		return !state.Ledger.ClaimExists(e.ClaimID)
	default:
		return true
	}
}
