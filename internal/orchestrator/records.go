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
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// GetRecordByID serves from the cache where possible, as records never change once committed
func (or *orchestrator) GetRecordByID(ctx context.Context, id string) (*fftypes.Record, error) {
	u, err := fftypes.ParseUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	cacheKey := u.String()
	if cached := or.recordCache.Get(cacheKey); cached != nil && !cached.Expired() {
		cached.Extend(config.GetDuration(config.RecordsCacheTTL))
		return cached.Value().(*fftypes.Record), nil
	}
	record, err := or.database.GetRecordByID(ctx, u)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, i18n.NewError(ctx, i18n.MsgRecordNotFound, id)
	}
	or.recordCache.Set(cacheKey, record, config.GetDuration(config.RecordsCacheTTL))
	return record, nil
}

func (or *orchestrator) GetRecords(ctx context.Context, filter *fftypes.RecordFilter) ([]*fftypes.Record, error) {
	if filter.Limit == 0 {
		filter.Limit = uint64(config.GetInt64(config.APIDefaultRecordLimit))
	}
	return or.database.GetRecords(ctx, filter)
}
