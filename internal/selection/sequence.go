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

import "github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"

// Sequence is a lazy, finite run of tokens. Calling it again starts again from the
// beginning. The yield function returns false to stop early.
type Sequence func(yield func(*fftypes.CachedToken) bool)

// FromSlice wraps a slice, without copying it
func FromSlice(tokens []*fftypes.CachedToken) Sequence {
	return func(yield func(*fftypes.CachedToken) bool) {
		for _, t := range tokens {
			if !yield(t) {
				return
			}
		}
	}
}

// Collect drains the sequence into a new slice
func (s Sequence) Collect() []*fftypes.CachedToken {
	var tokens []*fftypes.CachedToken
	s(func(t *fftypes.CachedToken) bool {
		tokens = append(tokens, t)
		return true
	})
	return tokens
}

// Where returns a sequence of only the tokens that match the predicate
func (s Sequence) Where(match func(*fftypes.CachedToken) bool) Sequence {
	return func(yield func(*fftypes.CachedToken) bool) {
		s(func(t *fftypes.CachedToken) bool {
			if match(t) {
				return yield(t)
			}
			return true
		})
	}
}
