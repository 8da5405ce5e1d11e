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
	"sync"

	"github.com/kaleido-io/firefly-tokenclaims/internal/claims"
	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/internal/metrics"
	"github.com/kaleido-io/firefly-tokenclaims/internal/retry"
	"github.com/kaleido-io/firefly-tokenclaims/internal/selection"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/discovery"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// Dispatcher serializes the events for each pool onto a single processor, which owns
// the in-memory state of that pool. Pools are processed in parallel.
type Dispatcher interface {
	// Dispatch blocks until the event has been committed and applied, or the context ends
	Dispatch(ctx context.Context, event fftypes.Event) (*fftypes.Record, error)
	// Pools lists the pools that currently have a processor
	Pools() []fftypes.PoolKey
	Close()
	WaitStop()
}

type dispatcher struct {
	ctx          context.Context
	cancelCtx    func()
	database     database.Plugin
	deps         *claims.Deps
	metrics      metrics.Manager
	retry        retry.Retry
	maxAttempts  int
	queueLength  int
	processorMux sync.Mutex
	processors   map[string]*poolProcessor
	closed       bool
}

func NewDispatcher(ctx context.Context, di database.Plugin, dp discovery.Plugin, strategy selection.Strategy, mm metrics.Manager) (Dispatcher, error) {
	if di == nil || dp == nil || strategy == nil || mm == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitializationNilDepError)
	}
	maxAttempts := config.GetInt(config.DispatcherMaxAttempts)
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	d := &dispatcher{
		database: di,
		deps: &claims.Deps{
			Discovery: dp,
			Strategy:  strategy,
		},
		metrics: mm,
		retry: retry.Retry{
			InitialDelay: config.GetDuration(config.DispatcherRetryInitDelay),
			MaximumDelay: config.GetDuration(config.DispatcherRetryMaxDelay),
			Factor:       config.GetFloat64(config.DispatcherRetryFactor),
		},
		maxAttempts: maxAttempts,
		queueLength: config.GetInt(config.DispatcherQueueLength),
		processors:  make(map[string]*poolProcessor),
	}
	d.ctx, d.cancelCtx = context.WithCancel(ctx)
	return d, nil
}

func (d *dispatcher) getProcessor(ctx context.Context, pool fftypes.PoolKey) (*poolProcessor, error) {
	d.processorMux.Lock()
	defer d.processorMux.Unlock()

	if d.closed {
		return nil, i18n.NewError(ctx, i18n.MsgDispatcherClosed)
	}
	hash := pool.Hash()
	p, ok := d.processors[hash]
	if !ok {
		p = newPoolProcessor(d, pool)
		d.processors[hash] = p
	}
	return p, nil
}

func (d *dispatcher) getProcessors() []*poolProcessor {
	d.processorMux.Lock()
	defer d.processorMux.Unlock()

	processors := make([]*poolProcessor, 0, len(d.processors))
	for _, p := range d.processors {
		processors = append(processors, p)
	}
	return processors
}

func (d *dispatcher) Pools() []fftypes.PoolKey {
	processors := d.getProcessors()
	pools := make([]fftypes.PoolKey, len(processors))
	for i, p := range processors {
		pools[i] = p.pool
	}
	return pools
}

func (d *dispatcher) Dispatch(ctx context.Context, event fftypes.Event) (*fftypes.Record, error) {
	if event == nil {
		return nil, i18n.NewError(ctx, i18n.MsgUnknownEventType, event)
	}
	pool := event.Pool()
	if err := pool.Validate(ctx); err != nil {
		return nil, err
	}
	p, err := d.getProcessor(ctx, pool)
	if err != nil {
		return nil, err
	}

	w := &work{
		ctx:    ctx,
		event:  event,
		result: make(chan *result, 1),
	}
	log.L(ctx).Debugf("Dispatching %s '%s' to processor for pool %s", event.EventType(), event.RequestID(), pool)
	select {
	case p.newWork <- w:
	case <-ctx.Done():
		return nil, i18n.NewError(ctx, i18n.MsgContextCanceled)
	case <-p.ctx.Done():
		return nil, i18n.NewError(ctx, i18n.MsgDispatcherClosed)
	}

	select {
	case r := <-w.result:
		return r.record, r.err
	case <-ctx.Done():
		return nil, i18n.NewError(ctx, i18n.MsgContextCanceled)
	case <-p.done:
		// The processor may have finished this work before exiting
		select {
		case r := <-w.result:
			return r.record, r.err
		default:
			return nil, i18n.NewError(ctx, i18n.MsgDispatcherClosed)
		}
	}
}

func (d *dispatcher) Close() {
	d.processorMux.Lock()
	d.closed = true
	d.processorMux.Unlock()
	d.cancelCtx() // all processor contexts are child contexts
}

func (d *dispatcher) WaitStop() {
	for _, p := range d.getProcessors() {
		<-p.done
	}
}
