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

package tokencache

import (
	"sort"

	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// TokenCache is the set of tokens in one pool that are known to exist and not yet
// observed as consumed. Tokens may still be reserved by a claim.
//
// There is no locking. The dispatcher guarantees a single writer per pool, and
// readers only run on that same goroutine.
type TokenCache struct {
	pool   fftypes.PoolKey
	tokens map[fftypes.TokenRef]*fftypes.CachedToken
}

func New(pool fftypes.PoolKey, tokens ...*fftypes.CachedToken) *TokenCache {
	tc := &TokenCache{
		pool:   pool,
		tokens: make(map[fftypes.TokenRef]*fftypes.CachedToken),
	}
	tc.Add(tokens...)
	return tc
}

func (tc *TokenCache) Pool() fftypes.PoolKey {
	return tc.pool
}

// Add unions the tokens into the cache. Refs are immutable once minted,
// so an existing entry is never replaced.
func (tc *TokenCache) Add(tokens ...*fftypes.CachedToken) {
	for _, t := range tokens {
		if _, exists := tc.tokens[t.Ref]; !exists {
			tc.tokens[t.Ref] = t
		}
	}
}

// RemoveAll deletes any matching entries. Missing refs are ignored.
func (tc *TokenCache) RemoveAll(refs ...fftypes.TokenRef) {
	for _, r := range refs {
		delete(tc.tokens, r)
	}
}

func (tc *TokenCache) Get(ref fftypes.TokenRef) *fftypes.CachedToken {
	return tc.tokens[ref]
}

func (tc *TokenCache) Contains(ref fftypes.TokenRef) bool {
	_, ok := tc.tokens[ref]
	return ok
}

func (tc *TokenCache) Len() int {
	return len(tc.tokens)
}

// Tokens returns a snapshot of the cache ordered by ref
func (tc *TokenCache) Tokens() []*fftypes.CachedToken {
	snapshot := make([]*fftypes.CachedToken, 0, len(tc.tokens))
	for _, t := range tc.tokens {
		snapshot = append(snapshot, t)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Ref.Less(snapshot[j].Ref) })
	return snapshot
}
