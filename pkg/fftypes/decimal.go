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

	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/shopspring/decimal"
)

// Decimal is an arbitrary precision token amount. It wraps shopspring/decimal to standardize
// JSON serialization (always a string, so no precision is lost in JavaScript clients) and
// DB serialization (a base 10 string).
type Decimal decimal.Decimal

func NewDecimal(i int64) *Decimal {
	d := Decimal(decimal.NewFromInt(i))
	return &d
}

func ParseDecimal(ctx context.Context, s string) (*Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDecimalParseFailed, s)
	}
	d := Decimal(v)
	return &d, nil
}

func MustParseDecimal(s string) *Decimal {
	d := Decimal(decimal.RequireFromString(s))
	return &d
}

// D returns the underlying decimal, for arithmetic
func (d Decimal) D() decimal.Decimal {
	return decimal.Decimal(d)
}

func (d Decimal) String() string {
	return d.D().String()
}

func (d Decimal) Add(d2 Decimal) Decimal {
	return Decimal(d.D().Add(d2.D()))
}

func (d Decimal) Sub(d2 Decimal) Decimal {
	return Decimal(d.D().Sub(d2.D()))
}

func (d Decimal) Cmp(d2 Decimal) int {
	return d.D().Cmp(d2.D())
}

func (d Decimal) IsPositive() bool {
	return d.D().IsPositive()
}

func (d *Decimal) Equals(d2 *Decimal) bool {
	switch {
	case d == nil && d2 == nil:
		return true
	case d == nil || d2 == nil:
		return false
	default:
		return d.D().Equal(d2.D())
	}
}

func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts both JSON strings and JSON numbers
func (d *Decimal) UnmarshalJSON(b []byte) error {
	var v decimal.Decimal
	if err := v.UnmarshalJSON(b); err != nil {
		return i18n.WrapError(context.Background(), err, i18n.MsgDecimalParseFailed, b)
	}
	*d = Decimal(v)
	return nil
}

func (d *Decimal) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Decimal) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		*d = Decimal(decimal.Zero)
		return nil
	case string:
		v, err := decimal.NewFromString(src)
		if err != nil {
			return i18n.NewError(context.Background(), i18n.MsgScanFailed, src, d)
		}
		*d = Decimal(v)
		return nil
	case []byte:
		return d.Scan(string(src))
	case int64:
		*d = Decimal(decimal.NewFromInt(src))
		return nil
	case float64:
		*d = Decimal(decimal.NewFromFloat(src))
		return nil
	default:
		return i18n.NewError(context.Background(), i18n.MsgScanFailed, src, d)
	}
}

// SumDecimals totals a list of amounts
func SumDecimals(amounts ...Decimal) Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.D())
	}
	return Decimal(total)
}
