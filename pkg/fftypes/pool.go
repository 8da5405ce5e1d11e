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

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
)

// PoolKey identifies a set of mutually fungible tokens. All claim state is partitioned by it.
type PoolKey struct {
	TokenType  string `json:"tokenType"`
	IssuerHash string `json:"issuerHash"`
	Notary     string `json:"notary"`
	Symbol     string `json:"symbol"`
}

// Hash is a stable hex identifier for the pool, used for storage and logging
func (pk PoolKey) Hash() string {
	h := sha256.New()
	for _, f := range []string{pk.TokenType, pk.IssuerHash, pk.Notary, pk.Symbol} {
		var l [8]byte
		binary.BigEndian.PutUint64(l[:], uint64(len(f)))
		h.Write(l[:])
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (pk PoolKey) String() string {
	return fmt.Sprintf("%s/%s", pk.TokenType, pk.Symbol)
}

func (pk PoolKey) Validate(ctx context.Context) error {
	if pk.TokenType == "" || pk.Symbol == "" {
		return i18n.NewError(ctx, i18n.MsgInvalidPoolKey)
	}
	return nil
}

// TokenRef identifies one ledger output, by the transaction that created it and its index
type TokenRef struct {
	TxID  string `json:"txId"`
	Index int    `json:"index"`
}

func (r TokenRef) String() string {
	return fmt.Sprintf("%s:%d", r.TxID, r.Index)
}

// Less gives a total order over refs, used to make iteration deterministic
func (r TokenRef) Less(r2 TokenRef) bool {
	if r.TxID != r2.TxID {
		return r.TxID < r2.TxID
	}
	return r.Index < r2.Index
}

// ParseTokenRef parses the "txid:index" string form of a TokenRef
func ParseTokenRef(ctx context.Context, s string) (TokenRef, error) {
	sep := strings.LastIndex(s, ":")
	if sep <= 0 {
		return TokenRef{}, i18n.NewError(ctx, i18n.MsgInvalidTokenRef, s)
	}
	idx, err := strconv.Atoi(s[sep+1:])
	if err != nil || idx < 0 {
		return TokenRef{}, i18n.NewError(ctx, i18n.MsgInvalidTokenRef, s)
	}
	return TokenRef{TxID: s[0:sep], Index: idx}, nil
}
