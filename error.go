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

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
)

var (
	// ErrWireType is wrapped by a MalformedMessageError when a declared field
	// arrives with a wire type its schema type can't use.
	ErrWireType = errors.New("wire type mismatch")
	// ErrInvalidUTF8 is wrapped by a MalformedMessageError when a string field
	// holds bytes that aren't valid UTF-8.
	ErrInvalidUTF8 = errors.New("string field contains invalid UTF-8")
	// ErrFieldNumber is wrapped by a MalformedMessageError when a tag carries
	// a field number above protowire.MaxValidNumber.
	ErrFieldNumber = errors.New("invalid field number")
)

// A MalformedMessageError reports bytes that don't parse as the binary wire
// format of a FixedFeatures or LinkFeatures message. Truncated input wraps
// io.ErrUnexpectedEOF.
type MalformedMessageError struct {
	// Message is the full name of the message being decoded.
	Message protoreflect.FullName
	// Field is the number of the field being decoded, or zero if the failure
	// happened while reading a tag.
	Field protowire.Number
	// Offset is the byte offset of the tag that starts the failing field.
	Offset int

	err error
}

func (e *MalformedMessageError) Error() string {
	if e.Field == 0 {
		return fmt.Sprintf("malformed %s at offset %d: %v", e.Message, e.Offset, e.err)
	}
	return fmt.Sprintf("malformed %s: field %d at offset %d: %v", e.Message, e.Field, e.Offset, e.err)
}

// Unwrap implements errors.Wrapper, which allows errors.Is and errors.As
// access to the underlying error.
func (e *MalformedMessageError) Unwrap() error {
	return e.err
}

// AsMalformed uses errors.As to look for a *MalformedMessageError anywhere in
// err's chain.
func AsMalformed(err error) (*MalformedMessageError, bool) {
	var malformed *MalformedMessageError
	ok := errors.As(err, &malformed)
	return malformed, ok
}

// A StreamError captures a Code and an underlying Go error. Readers and
// writers of feature streams return only *StreamError, except for io.EOF at
// the clean end of a stream.
type StreamError struct {
	code Code
	err  error
}

// NewStreamError annotates any Go error with a Code.
func NewStreamError(c Code, underlying error) *StreamError {
	return &StreamError{code: c, err: underlying}
}

func (e *StreamError) Error() string {
	text := e.err.Error()
	if text == "" {
		return e.code.String()
	}
	return e.code.String() + ": " + text
}

// Unwrap implements errors.Wrapper.
func (e *StreamError) Unwrap() error {
	return e.err
}

// Code returns the error's code.
func (e *StreamError) Code() Code {
	return e.code
}

// CodeOf returns the code of err if it is or wraps a *StreamError. Bare
// *MalformedMessageErrors map to CodeMalformed, and everything else to
// CodeUnknown.
func CodeOf(err error) Code {
	if streamErr, ok := asStreamError(err); ok {
		return streamErr.Code()
	}
	if _, ok := AsMalformed(err); ok {
		return CodeMalformed
	}
	return CodeUnknown
}

// errorf calls fmt.Errorf with the supplied template and arguments, then wraps
// the resulting error.
func errorf(c Code, template string, args ...any) *StreamError {
	return NewStreamError(c, fmt.Errorf(template, args...))
}

func asStreamError(err error) (*StreamError, bool) {
	var streamErr *StreamError
	ok := errors.As(err, &streamErr)
	return streamErr, ok
}
