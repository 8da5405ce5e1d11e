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

package ledgerlistener

import (
	"context"
	_ "embed" // schema
	"encoding/json"
	"strings"
	"sync"

	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/dispatcher"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/internal/wsclient"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
	"github.com/patrickmn/go-cache"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed ledger_batch.json
var ledgerBatchSchema string

// LedgerListener consumes batches of ledger changes from a websocket stream, and acknowledges
// each batch once every pool it touches has committed its part
type LedgerListener interface {
	Start() error
	WaitStop()
}

type ledgerBatch struct {
	ID       string                 `json:"id"`
	Produced []*fftypes.CachedToken `json:"produced,omitempty"`
	Consumed []*fftypes.CachedToken `json:"consumed,omitempty"`
}

type ackMessage struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type wsConn interface {
	Receive() <-chan []byte
	Send(ctx context.Context, message []byte) error
	Close()
}

type ledgerListener struct {
	ctx         context.Context
	prefix      config.Prefix
	dispatcher  dispatcher.Dispatcher
	schema      *gojsonschema.Schema
	seen        *cache.Cache
	ackEnabled  bool
	parallelism int
	wsconn      wsConn
	done        chan struct{}
}

// InitPrefix registers the websocket connection options for the ledger stream
func InitPrefix(prefix config.Prefix) {
	wsclient.InitPrefix(prefix)
}

func NewLedgerListener(ctx context.Context, prefix config.Prefix, d dispatcher.Dispatcher) (LedgerListener, error) {
	if d == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitializationNilDepError)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(ledgerBatchSchema))
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgLedgerSchemaFailed)
	}
	dedupeTTL := config.GetDuration(config.LedgerDedupeTTL)
	parallelism := config.GetInt(config.LedgerDispatchParallelism)
	if parallelism < 1 {
		parallelism = 1
	}
	return &ledgerListener{
		ctx:         log.WithLogField(ctx, "role", "ledger-listener"),
		prefix:      prefix,
		dispatcher:  d,
		schema:      schema,
		seen:        cache.New(dedupeTTL, dedupeTTL),
		ackEnabled:  config.GetBool(config.LedgerAckEnabled),
		parallelism: parallelism,
		done:        make(chan struct{}),
	}, nil
}

func (ll *ledgerListener) Start() error {
	var onConnect [][]byte
	if subscribe := config.GetString(config.LedgerSubscribe); subscribe != "" {
		onConnect = append(onConnect, []byte(subscribe))
	}
	wsconn, err := wsclient.New(ll.ctx, ll.prefix, onConnect...)
	if err != nil {
		return err
	}
	ll.wsconn = wsconn
	go ll.eventLoop()
	return nil
}

func (ll *ledgerListener) WaitStop() {
	if ll.wsconn != nil {
		ll.wsconn.Close()
		<-ll.done
	}
}

func (ll *ledgerListener) eventLoop() {
	defer close(ll.done)
	l := log.L(ll.ctx)
	for {
		select {
		case <-ll.ctx.Done():
			l.Debugf("Event loop exiting (context cancelled)")
			return
		case msgBytes, ok := <-ll.wsconn.Receive():
			if !ok {
				l.Debugf("Event loop exiting (receive channel closed)")
				return
			}
			ll.handleMessage(msgBytes)
		}
	}
}

func (ll *ledgerListener) validate(msgBytes []byte) error {
	res, err := ll.schema.Validate(gojsonschema.NewBytesLoader(msgBytes))
	if err != nil {
		return i18n.NewError(ll.ctx, i18n.MsgLedgerMessageInvalid, err)
	}
	if !res.Valid() {
		errs := make([]string, len(res.Errors()))
		for i, e := range res.Errors() {
			errs[i] = e.String()
		}
		return i18n.NewError(ll.ctx, i18n.MsgLedgerMessageInvalid, strings.Join(errs, ", "))
	}
	return nil
}

func (ll *ledgerListener) handleMessage(msgBytes []byte) {
	l := log.L(ll.ctx)

	var batch ledgerBatch
	err := ll.validate(msgBytes)
	if err == nil {
		err = json.Unmarshal(msgBytes, &batch)
	}
	if err != nil {
		l.Errorf("Rejecting ledger message: %s\n%s", err, string(msgBytes))
		// Best effort to correlate the nack
		var idOnly struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(msgBytes, &idOnly)
		ll.sendAck("nack", idOnly.ID, err.Error())
		return
	}

	ctx := log.WithLogField(ll.ctx, "batch", batch.ID)
	if _, found := ll.seen.Get(batch.ID); found {
		log.L(ctx).Infof("Ledger batch already processed")
		ll.sendAck("ack", batch.ID, "")
		return
	}

	if err := ll.dispatchBatch(ctx, &batch); err != nil {
		ll.sendAck("nack", batch.ID, err.Error())
		return
	}
	ll.seen.SetDefault(batch.ID, true)
	ll.sendAck("ack", batch.ID, "")
}

// dispatchBatch splits the batch per pool, and dispatches the parts in parallel as
// each pool has its own processor
func (ll *ledgerListener) dispatchBatch(ctx context.Context, batch *ledgerBatch) error {
	changes := fftypes.SplitLedgerChanges(batch.ID, batch.Produced, batch.Consumed)
	log.L(ctx).Infof("Ledger batch: produced=%d consumed=%d pools=%d", len(batch.Produced), len(batch.Consumed), len(changes))

	errs := make([]error, len(changes))
	slots := make(chan struct{}, ll.parallelism)
	var wg sync.WaitGroup
	for i, change := range changes {
		wg.Add(1)
		slots <- struct{}{}
		go func(i int, change *fftypes.LedgerChange) {
			defer wg.Done()
			defer func() { <-slots }()
			_, errs[i] = ll.dispatcher.Dispatch(ctx, change)
		}(i, change)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			log.L(ctx).Errorf("Ledger batch failed: %s", err)
			return err
		}
	}
	return nil
}

func (ll *ledgerListener) sendAck(ackType, id, reason string) {
	if !ll.ackEnabled {
		return
	}
	b, _ := json.Marshal(&ackMessage{Type: ackType, ID: id, Reason: reason})
	if err := ll.wsconn.Send(ll.ctx, b); err != nil {
		log.L(ll.ctx).Errorf("Failed to send %s for '%s': %s", ackType, id, err)
	}
}
