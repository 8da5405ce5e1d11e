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

package selection

import (
	"context"
	"regexp"
	"sort"

	lru "github.com/hashicorp/golang-lru"
	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// Query is the eligibility criteria for a selection. An empty owner, or tag
// expression, matches any token.
type Query struct {
	OwnerHash string
	TagRegex  string
	tagRegex  *regexp.Regexp
}

// Matches reports whether a token is eligible for the query
func (q *Query) Matches(t *fftypes.CachedToken) bool {
	if q.OwnerHash != "" && t.OwnerHash != q.OwnerHash {
		return false
	}
	if q.tagRegex != nil && !q.tagRegex.MatchString(t.Tag) {
		return false
	}
	return true
}

// Strategy is an ordering and eligibility policy, applied to the candidate tokens before
// they are accumulated. It never consults claim state, which is the caller's concern.
type Strategy interface {
	Name() string
	// NewQuery validates and compiles the criteria for a query
	NewQuery(ctx context.Context, ownerHash, tagRegex string) (*Query, error)
	// Filter returns the eligible candidates in the order they should be selected
	Filter(candidates Sequence, q *Query) Sequence
}

const (
	StrategySmallest  = "smallest"
	StrategyLargest   = "largest"
	StrategyDiscovery = "discovery"
)

// New resolves a strategy by name
func New(ctx context.Context, name string) (Strategy, error) {
	cacheSize := config.GetInt(config.SelectionRegexCacheSize)
	if cacheSize <= 0 {
		cacheSize = 1
	}
	regexCache, _ := lru.New(cacheSize)
	m := &matcher{regexCache: regexCache}
	switch name {
	case StrategySmallest, "":
		return &sortedStrategy{matcher: m, name: StrategySmallest, less: smallestFirst}, nil
	case StrategyLargest:
		return &sortedStrategy{matcher: m, name: StrategyLargest, less: largestFirst}, nil
	case StrategyDiscovery:
		return &discoveryOrder{matcher: m}, nil
	default:
		return nil, i18n.NewError(ctx, i18n.MsgUnknownSelectionStrategy, name)
	}
}

type matcher struct {
	regexCache *lru.Cache
}

func (m *matcher) NewQuery(ctx context.Context, ownerHash, tagRegex string) (*Query, error) {
	q := &Query{OwnerHash: ownerHash, TagRegex: tagRegex}
	if tagRegex == "" {
		return q, nil
	}
	if cached, ok := m.regexCache.Get(tagRegex); ok {
		q.tagRegex = cached.(*regexp.Regexp)
		return q, nil
	}
	re, err := regexp.Compile(tagRegex)
	if err != nil {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidTagRegex, tagRegex, err)
	}
	log.L(ctx).Tracef("Compiled tag regex '%s'", tagRegex)
	m.regexCache.Add(tagRegex, re)
	q.tagRegex = re
	return q, nil
}

// discoveryOrder keeps the order the discovery service returned, which for
// the SQL discovery is the order the tokens were recorded
type discoveryOrder struct {
	*matcher
}

func (s *discoveryOrder) Name() string {
	return StrategyDiscovery
}

func (s *discoveryOrder) Filter(candidates Sequence, q *Query) Sequence {
	return candidates.Where(q.Matches)
}

type sortedStrategy struct {
	*matcher
	name string
	less func(a, b *fftypes.CachedToken) bool
}

func (s *sortedStrategy) Name() string {
	return s.name
}

// Filter has to see every candidate before it can yield the first, but the work is
// still deferred until the sequence is iterated
func (s *sortedStrategy) Filter(candidates Sequence, q *Query) Sequence {
	return func(yield func(*fftypes.CachedToken) bool) {
		eligible := candidates.Where(q.Matches).Collect()
		sort.SliceStable(eligible, func(i, j int) bool { return s.less(eligible[i], eligible[j]) })
		FromSlice(eligible)(yield)
	}
}

func smallestFirst(a, b *fftypes.CachedToken) bool {
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c < 0
	}
	return a.Ref.Less(b.Ref)
}

func largestFirst(a, b *fftypes.CachedToken) bool {
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c > 0
	}
	return a.Ref.Less(b.Ref)
}
