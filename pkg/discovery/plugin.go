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

package discovery

import (
	"context"

	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// TokenQuery selects the candidate tokens for a claim or balance query.
// Plugins may use OwnerHash and TagRegex to narrow the results, but callers still
// apply both to whatever is returned.
type TokenQuery struct {
	Pool      fftypes.PoolKey `json:"pool"`
	OwnerHash string          `json:"ownerHash,omitempty"`
	TagRegex  string          `json:"tagRegex,omitempty"`
}

// Plugin is the interface implemented by each token discovery plugin.
// Discovery is the source of truth for which tokens exist. It knows nothing of claims.
type Plugin interface {
	Name() string

	// InitPrefix initializes the set of configuration options that are valid, with defaults. Called on all plugins.
	InitPrefix(prefix config.Prefix)

	// Init initializes the plugin, with configuration. The database is available to plugins that read the local token store.
	Init(ctx context.Context, prefix config.Prefix, di database.PersistenceInterface) error

	// FindAvailableTokens queries fresh for the unspent tokens in a pool.
	// Errors are infrastructure failures, and are retried by the caller.
	FindAvailableTokens(ctx context.Context, q *TokenQuery) ([]*fftypes.CachedToken, error)
}
