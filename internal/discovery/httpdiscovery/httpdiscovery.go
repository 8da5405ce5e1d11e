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

package httpdiscovery

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/internal/restclient"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/database"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/discovery"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

const (
	// HTTPConfigQueryPath is the path the token query is POSTed to
	HTTPConfigQueryPath = "queryPath"

	defaultQueryPath = "/api/v1/tokens/query"
)

// HTTPDiscovery asks a remote wallet or indexer service for the unspent tokens in a pool
type HTTPDiscovery struct {
	ctx       context.Context
	client    *resty.Client
	queryPath string
}

type queryResponse struct {
	Tokens []*fftypes.CachedToken `json:"tokens"`
}

func (h *HTTPDiscovery) Name() string {
	return "http"
}

func (h *HTTPDiscovery) InitPrefix(prefix config.Prefix) {
	restclient.InitPrefix(prefix)
	prefix.AddKnownKey(HTTPConfigQueryPath, defaultQueryPath)
}

func (h *HTTPDiscovery) Init(ctx context.Context, prefix config.Prefix, di database.PersistenceInterface) error {
	h.ctx = log.WithLogField(ctx, "proto", "http")

	if prefix.GetString(restclient.HTTPConfigURL) == "" {
		return i18n.NewError(ctx, i18n.MsgMissingPluginConfig, "url", "discovery.http")
	}

	h.client = restclient.New(h.ctx, prefix)
	h.queryPath = prefix.GetString(HTTPConfigQueryPath)
	return nil
}

func (h *HTTPDiscovery) FindAvailableTokens(ctx context.Context, q *discovery.TokenQuery) ([]*fftypes.CachedToken, error) {
	var response queryResponse
	res, err := h.client.R().SetContext(ctx).
		SetBody(q).
		SetResult(&response).
		Post(h.queryPath)
	if err != nil || !res.IsSuccess() {
		return nil, restclient.WrapRestErr(ctx, res, err, i18n.MsgDiscoveryRESTErr)
	}
	// The service may omit the pool on each token, as it is implied by the query
	for _, t := range response.Tokens {
		if t.Pool == (fftypes.PoolKey{}) {
			t.Pool = q.Pool
		}
	}
	return response.Tokens, nil
}
