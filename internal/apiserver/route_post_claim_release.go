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

var postClaimRelease = &oapispec.Route{
	Name:   "postClaimRelease",
	Path:   "claims/{claimId}/release",
	Method: http.MethodPost,
	PathParams: []*oapispec.PathParam{
		{Name: "claimId", Description: i18n.MsgAPIParamClaimID},
	},
	Description:     i18n.MsgAPIReleaseClaim,
	JSONInputValue:  func() interface{} { return &fftypes.ClaimRelease{} },
	JSONOutputValue: func() interface{} { return &fftypes.Record{} },
	JSONOutputCode:  http.StatusOK,
	JSONHandler: func(r *oapispec.APIRequest) (output interface{}, err error) {
		release := r.Input.(*fftypes.ClaimRelease)
		release.ClaimID = r.PP["claimId"]
		return r.Or.ReleaseClaim(r.Ctx, release)
	},
}
