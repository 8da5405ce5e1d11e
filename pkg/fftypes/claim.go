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

// Claim is a reservation over specific tokens, made on behalf of one in-flight request
type Claim struct {
	ID        string         `json:"id"`
	Pool      PoolKey        `json:"pool"`
	Requested Decimal        `json:"requested"`
	Tokens    []*CachedToken `json:"tokens"`
	Created   *FFTime        `json:"created,omitempty"`
}

// Total is the sum of the amounts of the tokens currently held by the claim
func (c *Claim) Total() Decimal {
	return TokenTotal(c.Tokens)
}

// Refs lists the refs of the tokens currently held by the claim
func (c *Claim) Refs() []TokenRef {
	return TokenRefs(c.Tokens)
}
