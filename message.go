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
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Message is implemented by *FixedFeatures and *LinkFeatures. Streams and
// codecs accept any Message.
type Message interface {
	// MessageName returns the message's fully-qualified protobuf name.
	MessageName() protoreflect.FullName
	// Reset clears every field.
	Reset()
	// Size returns the length of the binary encoding.
	Size() int
	// Marshal returns the binary encoding.
	Marshal() ([]byte, error)
	// MarshalAppend appends the binary encoding to its argument.
	MarshalAppend([]byte) ([]byte, error)
	// Unmarshal replaces the message with the decoded binary encoding. It
	// returns a *MalformedMessageError if the bytes don't parse.
	Unmarshal([]byte) error
	// ToDynamic copies the message into the official protobuf runtime.
	ToDynamic() *dynamicpb.Message
	// FromDynamic replaces the message with the fields of a runtime message
	// of the same name.
	FromDynamic(protoreflect.Message) error
}

// messagePointer constrains type parameters to pointers to record types, so
// generic helpers can allocate new records.
type messagePointer[T any] interface {
	*T
	Message
}
