// Copyright © 2024 Kaleido, Inc.
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

package confutil

import (
	"cmp"
	"math/big"
	"time"

	"github.com/docker/go-units"
)

// Helpers resolving optional (pointer) config values against their defaults.
// The log package depends on this package, so nothing here may log.

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func atLeast[T cmp.Ordered](v *T, min, def T) T {
	if v == nil {
		return def
	}
	return max(*v, min)
}

// parsed applies parse to the configured string, falling back to the parsed
// default when unset or unparseable.
func parsed[T any](sVal *string, def string, parse func(string) (T, bool)) T {
	if sVal != nil {
		if v, ok := parse(*sVal); ok {
			return v
		}
	}
	v, _ := parse(def)
	return v
}

func parseDuration(s string) (time.Duration, bool) {
	d, err := time.ParseDuration(s)
	return d, err == nil
}

func parseByteSize(s string) (int64, bool) {
	n, err := units.RAMInBytes(s)
	return n, err == nil
}

func parseBigInt(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 0)
}

func Int(iVal *int, def int) int                 { return orDefault(iVal, def) }
func Bool(bVal *bool, def bool) bool             { return orDefault(bVal, def) }
func IntMin(iVal *int, min, def int) int         { return atLeast(iVal, min, def) }
func Int64Min(iVal *int64, min, def int64) int64 { return atLeast(iVal, min, def) }
func Float64Min(fVal *float64, min, def float64) float64 {
	return atLeast(fVal, min, def)
}

func StringNotEmpty(sVal *string, def string) string {
	if sVal == nil || *sVal == "" {
		return def
	}
	return *sVal
}

// StringSlice distinguishes an explicit empty list from an unset one
func StringSlice(sVal []string, def []string) []string {
	if sVal == nil {
		return def
	}
	return sVal
}

// DurationMin only applies the floor to configured values, not to the default
func DurationMin(sVal *string, min time.Duration, def string) time.Duration {
	if d, ok := parseDuration(orDefault(sVal, "")); ok && d < min {
		return min
	}
	return parsed(sVal, def, parseDuration)
}

// ByteSize takes human sizes such as "1Mb" or "512Kb"
func ByteSize(sVal *string, min int64, def string) int64 {
	if n, ok := parseByteSize(orDefault(sVal, "")); ok && n < min {
		return min
	}
	return parsed(sVal, def, parseByteSize)
}

// BigInt accepts decimal or 0x prefixed hex
func BigInt(sVal *string, def string) *big.Int {
	return parsed(sVal, def, parseBigInt)
}

func P[T any](v T) *T {
	return &v
}
