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

package orchestrator

import (
	"context"

	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/database/difactory"
	"github.com/kaleido-io/firefly-tokenclaims/internal/discovery/dcfactory"
	"github.com/kaleido-io/firefly-tokenclaims/internal/dispatcher"
	"github.com/kaleido-io/firefly-tokenclaims/internal/ledgerlistener"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/internal/metrics"
	"github.com/kaleido-io/firefly-tokenclaims/internal/selection"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/discovery"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
	"github.com/karlseguin/ccache"
)

var (
	databaseConfig  = config.NewPluginConfig("database")
	discoveryConfig = config.NewPluginConfig("discovery")
	ledgerConfig    = config.NewPluginConfig("ledger.ws")
)

// Orchestrator is the main interface behind the API, implementing the actions
type Orchestrator interface {
	Init(ctx context.Context) error
	Start() error
	WaitStop() // The close itself is performed by canceling the context

	// Claims
	ClaimTokens(ctx context.Context, q *fftypes.ClaimQuery) (*fftypes.Record, error)
	ReleaseClaim(ctx context.Context, r *fftypes.ClaimRelease) (*fftypes.Record, error)
	ForceReleaseClaim(ctx context.Context, r *fftypes.ForceClaimRelease) error
	GetClaims(ctx context.Context, pool fftypes.PoolKey) ([]*fftypes.Claim, error)

	// Ledger
	SubmitLedgerChanges(ctx context.Context, id string, produced, consumed []*fftypes.CachedToken) error
	GetBalance(ctx context.Context, q *fftypes.BalanceQuery) (*fftypes.Record, error)

	// Records
	GetRecordByID(ctx context.Context, id string) (*fftypes.Record, error)
	GetRecords(ctx context.Context, filter *fftypes.RecordFilter) ([]*fftypes.Record, error)
}

type orchestrator struct {
	ctx            context.Context
	started        bool
	database       database.Plugin
	discovery      discovery.Plugin
	strategy       selection.Strategy
	metrics        metrics.Manager
	dispatcher     dispatcher.Dispatcher
	ledgerListener ledgerlistener.LedgerListener
	recordCache    *ccache.Cache
}

func NewOrchestrator() Orchestrator {
	or := &orchestrator{}

	// Initialize the config on all the factories
	difactory.InitPrefix(databaseConfig)
	dcfactory.InitPrefix(discoveryConfig)
	ledgerlistener.InitPrefix(ledgerConfig)

	return or
}

func (or *orchestrator) Init(ctx context.Context) (err error) {
	or.ctx = ctx
	err = or.initPlugins(ctx)
	if err == nil {
		err = or.initComponents(ctx)
	}
	return err
}

func (or *orchestrator) Start() (err error) {
	if or.ledgerListener != nil {
		err = or.ledgerListener.Start()
	}
	or.started = err == nil
	return err
}

func (or *orchestrator) WaitStop() {
	if or.ledgerListener != nil {
		or.ledgerListener.WaitStop()
		or.ledgerListener = nil
	}
	if or.dispatcher != nil {
		or.dispatcher.Close()
		or.dispatcher.WaitStop()
		or.dispatcher = nil
	}
	if or.database != nil {
		or.database.Close()
		or.database = nil
	}
	or.started = false
}

func (or *orchestrator) initPlugins(ctx context.Context) (err error) {

	if or.database == nil {
		if or.database, err = or.initDatabasePlugin(ctx); err != nil {
			return err
		}
	}

	if or.discovery == nil {
		if or.discovery, err = or.initDiscoveryPlugin(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (or *orchestrator) initComponents(ctx context.Context) (err error) {

	if or.strategy == nil {
		if or.strategy, err = selection.New(ctx, config.GetString(config.SelectionStrategy)); err != nil {
			return err
		}
	}

	if or.metrics == nil {
		or.metrics = metrics.NewMetricsManager()
	}

	if or.dispatcher == nil {
		if or.dispatcher, err = dispatcher.NewDispatcher(ctx, or.database, or.discovery, or.strategy, or.metrics); err != nil {
			return err
		}
	}

	if or.ledgerListener == nil && config.GetBool(config.LedgerEnabled) {
		if or.ledgerListener, err = ledgerlistener.NewLedgerListener(ctx, ledgerConfig, or.dispatcher); err != nil {
			return err
		}
	}

	if or.recordCache == nil {
		or.recordCache = ccache.New(
			ccache.Configure().MaxSize(config.GetInt64(config.RecordsCacheSize)),
		)
	}

	log.L(ctx).Infof("Initialized with database=%s discovery=%s strategy=%s", or.database.Name(), or.discovery.Name(), or.strategy.Name())
	return nil
}

func (or *orchestrator) initDatabasePlugin(ctx context.Context) (database.Plugin, error) {
	pluginType := config.GetString(config.DatabaseType)
	plugin, err := difactory.GetPlugin(ctx, pluginType)
	if err != nil {
		return nil, err
	}
	err = plugin.Init(ctx, databaseConfig.SubPrefix(pluginType))
	return plugin, err
}

func (or *orchestrator) initDiscoveryPlugin(ctx context.Context) (discovery.Plugin, error) {
	pluginType := config.GetString(config.DiscoveryType)
	plugin, err := dcfactory.GetPlugin(ctx, pluginType)
	if err != nil {
		return nil, err
	}
	err = plugin.Init(ctx, discoveryConfig.SubPrefix(pluginType), or.database)
	return plugin, err
}
