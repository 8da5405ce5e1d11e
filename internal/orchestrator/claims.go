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

	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

func (or *orchestrator) ClaimTokens(ctx context.Context, q *fftypes.ClaimQuery) (*fftypes.Record, error) {
	return or.dispatcher.Dispatch(ctx, q)
}

func (or *orchestrator) ReleaseClaim(ctx context.Context, r *fftypes.ClaimRelease) (*fftypes.Record, error) {
	return or.dispatcher.Dispatch(ctx, r)
}

func (or *orchestrator) ForceReleaseClaim(ctx context.Context, r *fftypes.ForceClaimRelease) error {
	_, err := or.dispatcher.Dispatch(ctx, r)
	return err
}

func (or *orchestrator) GetClaims(ctx context.Context, pool fftypes.PoolKey) ([]*fftypes.Claim, error) {
	if err := pool.Validate(ctx); err != nil {
		return nil, err
	}
	return or.database.GetClaims(ctx, pool)
}
