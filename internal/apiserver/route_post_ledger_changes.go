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

package apiserver

import (
	"net/http"

	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/oapispec"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// ledgerChanges is a set of tokens produced and consumed by one ledger transaction.
// The id is optional, and is used to de-duplicate resubmission.
type ledgerChanges struct {
	ID       string                 `json:"id,omitempty"`
	Produced []*fftypes.CachedToken `json:"produced"`
	Consumed []*fftypes.CachedToken `json:"consumed"`
}

var postLedgerChanges = &oapispec.Route{
	Name:           "postLedgerChanges",
	Path:           "ledger/changes",
	Method:         http.MethodPost,
	Description:    i18n.MsgAPILedgerChanges,
	JSONInputValue: func() interface{} { return &ledgerChanges{} },
	JSONOutputCode: http.StatusNoContent,
	JSONHandler: func(r *oapispec.APIRequest) (output interface{}, err error) {
		changes := r.Input.(*ledgerChanges)
		return nil, r.Or.SubmitLedgerChanges(r.Ctx, changes.ID, changes.Produced, changes.Consumed)
	},
}
