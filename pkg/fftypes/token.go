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

package fftypes

import "sort"

// CachedToken is a candidate spendable token, believed unspent as of the last reconciliation.
// Values are shared between the cache, claims and records, and must not be modified.
type CachedToken struct {
	Ref       TokenRef `json:"ref"`
	OwnerHash string   `json:"ownerHash"`
	Tag       string   `json:"tag,omitempty"`
	Amount    Decimal  `json:"amount"`
	Pool      PoolKey  `json:"pool"`
}

// TokenRefs extracts the refs of a list of tokens
func TokenRefs(tokens []*CachedToken) []TokenRef {
	refs := make([]TokenRef, len(tokens))
	for i, t := range tokens {
		refs[i] = t.Ref
	}
	return refs
}

// TokenTotal sums the amounts of a list of tokens
func TokenTotal(tokens []*CachedToken) Decimal {
	amounts := make([]Decimal, len(tokens))
	for i, t := range tokens {
		amounts[i] = t.Amount
	}
	return SumDecimals(amounts...)
}

// SortTokenRefs sorts in place, and returns the slice for convenience
func SortTokenRefs(refs []TokenRef) []TokenRef {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}
