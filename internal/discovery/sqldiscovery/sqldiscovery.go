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

package sqldiscovery

import (
	"context"

	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/discovery"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// SQLDiscovery answers token queries from the tokens table, which is maintained
// from the ledger changes committed by the dispatcher
type SQLDiscovery struct {
	database database.PersistenceInterface
}

func (s *SQLDiscovery) Name() string {
	return "sql"
}

func (s *SQLDiscovery) InitPrefix(prefix config.Prefix) {}

func (s *SQLDiscovery) Init(ctx context.Context, prefix config.Prefix, di database.PersistenceInterface) error {
	if di == nil {
		return i18n.NewError(ctx, i18n.MsgInitializationNilDepError)
	}
	s.database = di
	return nil
}

func (s *SQLDiscovery) FindAvailableTokens(ctx context.Context, q *discovery.TokenQuery) ([]*fftypes.CachedToken, error) {
	tokens, err := s.database.FindTokens(ctx, q.Pool, q.OwnerHash)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Debugf("Discovered %d tokens in pool %s", len(tokens), q.Pool)
	return tokens, nil
}
