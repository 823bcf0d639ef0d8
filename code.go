// Copyright 2026 The DRAGNN Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dragnn

import (
	"errors"
	"fmt"
	"strconv"
)

// A Code classifies the failures of a feature stream. Malformed single
// messages are reported as *MalformedMessageError instead; streams wrap them
// with CodeMalformed.
type Code uint32

const (
	CodeUnknown           Code = 1 // unknown error, usually from the underlying reader or writer
	CodeMalformed         Code = 2 // bytes don't parse as an envelope or a message
	CodeResourceExhausted Code = 3 // envelope exceeds a configured size limit
	CodeInternal          Code = 4 // marshaling or compression failed
	CodeInvalidArgument   Code = 5 // stream misconfigured, e.g. unknown compression

	minCode = CodeUnknown
	maxCode = CodeInvalidArgument
)

func (c Code) String() string {
	switch c {
	case CodeUnknown:
		return "unknown"
	case CodeMalformed:
		return "malformed"
	case CodeResourceExhausted:
		return "resource_exhausted"
	case CodeInternal:
		return "internal"
	case CodeInvalidArgument:
		return "invalid_argument"
	}
	return fmt.Sprintf("code_%d", c)
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	if c < minCode || c > maxCode {
		return nil, fmt.Errorf("invalid code %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the names
// returned by String and the "code_N" form for numeric codes.
func (c *Code) UnmarshalText(data []byte) error {
	text := string(data)
	for code := minCode; code <= maxCode; code++ {
		if code.String() == text {
			*c = code
			return nil
		}
	}
	if len(text) > len("code_") && text[:len("code_")] == "code_" {
		n, err := strconv.ParseUint(text[len("code_"):], 10, 32)
		if err == nil && Code(n) >= minCode && Code(n) <= maxCode {
			*c = Code(n)
			return nil
		}
	}
	return errors.New("invalid code " + strconv.Quote(text))
}
