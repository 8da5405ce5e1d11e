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
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
)

// FFTime is a UTC timestamp, written as RFC3339 with nanoseconds on the API
// and stored as unix nanoseconds in a BIGINT column
type FFTime time.Time

func Now() *FFTime {
	t := FFTime(time.Now().UTC())
	return &t
}

func (ft *FFTime) isZero() bool {
	return ft == nil || time.Time(*ft).IsZero()
}

func (ft *FFTime) UnixNano() int64 {
	if ft == nil {
		return 0
	}
	return time.Time(*ft).UnixNano()
}

func (ft *FFTime) MarshalJSON() ([]byte, error) {
	if ft.isZero() {
		return json.Marshal(nil)
	}
	return json.Marshal(ft.String())
}

func (ft *FFTime) UnmarshalText(b []byte) error {
	t, err := time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return i18n.NewError(context.Background(), i18n.MsgTimeParseFail, string(b))
	}
	*ft = FFTime(t.UTC())
	return nil
}

// Scan implements sql.Scanner
func (ft *FFTime) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		*ft = FFTime(time.Time{})
		return nil
	case int64:
		if src == 0 {
			*ft = FFTime(time.Time{})
			return nil
		}
		*ft = FFTime(time.Unix(0, src).UTC())
		return nil
	case string:
		return ft.UnmarshalText([]byte(src))
	default:
		return i18n.NewError(context.Background(), i18n.MsgScanFailed, src, ft)
	}
}

// Value implements sql.Valuer
func (ft *FFTime) Value() (driver.Value, error) {
	if ft.isZero() {
		return nil, nil
	}
	return ft.UnixNano(), nil
}

func (ft *FFTime) String() string {
	if ft.isZero() {
		return ""
	}
	return time.Time(*ft).UTC().Format(time.RFC3339Nano)
}
