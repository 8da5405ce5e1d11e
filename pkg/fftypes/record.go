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

// RecordType is the outcome reported by an outbound record
type RecordType string

const (
	RecordTypeClaimSuccess RecordType = "claim_success"
	RecordTypeClaimFailure RecordType = "claim_failure"
	RecordTypeReleaseAck   RecordType = "release_ack"
	RecordTypeBalance      RecordType = "balance"
)

// Record is the outbound result of handling an event, committed atomically with the
// claim state changes the event caused
type Record struct {
	ID        *UUID          `json:"id"`
	Type      RecordType     `json:"type"`
	EventType EventType      `json:"eventType"`
	RequestID string         `json:"requestId"`
	Pool      PoolKey        `json:"pool"`
	ClaimID   string         `json:"claimId,omitempty"`
	Tokens    []*CachedToken `json:"tokens,omitempty"`
	Amount    *Decimal       `json:"amount,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Created   *FFTime        `json:"created,omitempty"`
}

// RecordFilter is the set of optional constraints when listing records
type RecordFilter struct {
	PoolHash string
	Type     RecordType
	Skip     uint64
	Limit    uint64
}
