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
	"strconv"

	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/oapispec"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

var getRecords = &oapispec.Route{
	Name:   "getRecords",
	Path:   "records",
	Method: http.MethodGet,
	QueryParams: []*oapispec.QueryParam{
		{Name: "pool", Description: i18n.MsgAPIParamFilterPool},
		{Name: "type", Example: string(fftypes.RecordTypeClaimSuccess), Description: i18n.MsgAPIParamFilterType},
		{Name: "skip", Description: i18n.MsgAPIParamSkip},
		{Name: "limit", Example: "25", Description: i18n.MsgAPIParamLimit},
	},
	Description:     i18n.MsgAPIGetRecords,
	JSONOutputValue: func() interface{} { return []*fftypes.Record{} },
	JSONOutputCode:  http.StatusOK,
	JSONHandler: func(r *oapispec.APIRequest) (output interface{}, err error) {
		filter := &fftypes.RecordFilter{
			PoolHash: r.QP["pool"],
			Type:     fftypes.RecordType(r.QP["type"]),
		}
		if filter.Skip, err = parseUintParam(r, "skip"); err != nil {
			return nil, err
		}
		if filter.Limit, err = parseUintParam(r, "limit"); err != nil {
			return nil, err
		}
		return r.Or.GetRecords(r.Ctx, filter)
	},
}

func parseUintParam(r *oapispec.APIRequest, name string) (uint64, error) {
	s := r.QP[name]
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, i18n.NewError(r.Ctx, i18n.MsgInvalidQueryParam, s, name)
	}
	return v, nil
}
