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

// EventType is the discriminator of the Event variants
type EventType string

const (
	EventTypeClaimQuery        EventType = "claim_query"
	EventTypeClaimRelease      EventType = "claim_release"
	EventTypeForceClaimRelease EventType = "force_claim_release"
	EventTypeLedgerChange      EventType = "ledger_change"
	EventTypeBalanceQuery      EventType = "balance_query"
)

// Event is a closed set of variants, each delivered to the single writer for its pool.
// The unexported method prevents implementations outside this package.
type Event interface {
	EventType() EventType
	// RequestID is the caller supplied idempotency key
	RequestID() string
	Pool() PoolKey
	isEvent()
}

// ClaimQuery requests a reservation of at least Amount from the matching tokens in a pool
type ClaimQuery struct {
	ClaimID   string  `json:"claimId"`
	PoolKey   PoolKey `json:"pool"`
	OwnerHash string  `json:"ownerHash,omitempty"`
	TagRegex  string  `json:"tagRegex,omitempty"`
	Amount    Decimal `json:"amount"`
}

// ClaimRelease ends a claim after the holder has spent UsedTokens
type ClaimRelease struct {
	ClaimID    string     `json:"claimId"`
	PoolKey    PoolKey    `json:"pool"`
	UsedTokens []TokenRef `json:"usedTokens"`
}

// ForceClaimRelease abandons a claim, so its tokens become selectable again
type ForceClaimRelease struct {
	ClaimID string  `json:"claimId"`
	PoolKey PoolKey `json:"pool"`
}

// LedgerChange reports tokens produced and consumed on the ledger, for a single pool
type LedgerChange struct {
	ID       string         `json:"id"`
	PoolKey  PoolKey        `json:"pool"`
	Produced []*CachedToken `json:"produced,omitempty"`
	Consumed []*CachedToken `json:"consumed,omitempty"`
}

// BalanceQuery requests the unclaimed total of the matching tokens in a pool
type BalanceQuery struct {
	ID        string  `json:"requestId"`
	PoolKey   PoolKey `json:"pool"`
	OwnerHash string  `json:"ownerHash,omitempty"`
	TagRegex  string  `json:"tagRegex,omitempty"`
}

func (e *ClaimQuery) EventType() EventType { return EventTypeClaimQuery }
func (e *ClaimQuery) RequestID() string    { return e.ClaimID }
func (e *ClaimQuery) Pool() PoolKey        { return e.PoolKey }
func (e *ClaimQuery) isEvent()             {}

func (e *ClaimRelease) EventType() EventType { return EventTypeClaimRelease }
func (e *ClaimRelease) RequestID() string    { return e.ClaimID }
func (e *ClaimRelease) Pool() PoolKey        { return e.PoolKey }
func (e *ClaimRelease) isEvent()             {}

func (e *ForceClaimRelease) EventType() EventType { return EventTypeForceClaimRelease }
func (e *ForceClaimRelease) RequestID() string    { return e.ClaimID }
func (e *ForceClaimRelease) Pool() PoolKey        { return e.PoolKey }
func (e *ForceClaimRelease) isEvent()             {}

func (e *LedgerChange) EventType() EventType { return EventTypeLedgerChange }
func (e *LedgerChange) RequestID() string    { return e.ID }
func (e *LedgerChange) Pool() PoolKey        { return e.PoolKey }
func (e *LedgerChange) isEvent()             {}

func (e *BalanceQuery) EventType() EventType { return EventTypeBalanceQuery }
func (e *BalanceQuery) RequestID() string    { return e.ID }
func (e *BalanceQuery) Pool() PoolKey        { return e.PoolKey }
func (e *BalanceQuery) isEvent()             {}

// SplitLedgerChanges groups a set of produced and consumed tokens, which may span
// many pools, into one LedgerChange per pool. The order of pools follows first appearance.
func SplitLedgerChanges(id string, produced, consumed []*CachedToken) []*LedgerChange {
	byPool := make(map[PoolKey]*LedgerChange)
	var ordered []*LedgerChange
	get := func(pk PoolKey) *LedgerChange {
		lc, ok := byPool[pk]
		if !ok {
			lc = &LedgerChange{ID: id, PoolKey: pk}
			byPool[pk] = lc
			ordered = append(ordered, lc)
		}
		return lc
	}
	for _, t := range produced {
		lc := get(t.Pool)
		lc.Produced = append(lc.Produced, t)
	}
	for _, t := range consumed {
		lc := get(t.Pool)
		lc.Consumed = append(lc.Consumed, t)
	}
	return ordered
}
