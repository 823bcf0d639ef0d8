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
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/dynamicpb"
)

const (
	codecNameBinary = "binary"
	codecNameJSON   = "json"
)

// A Codec can marshal records to and from bytes.
type Codec interface {
	Name() string
	Marshal(any) ([]byte, error)
	Unmarshal([]byte, any) error
}

// marshalAppender is an extension to Codec for appending to a byte slice.
type marshalAppender interface {
	Codec

	MarshalAppend([]byte, any) ([]byte, error)
}

// BinaryCodec returns the codec for the proto2 binary wire format.
func BinaryCodec() Codec {
	return &binaryCodec{}
}

// JSONCodec returns a codec for the protobuf JSON mapping. Field names use
// the .proto spelling (value_name, not valueName), and 64-bit integers are
// strings, as the mapping requires.
func JSONCodec() Codec {
	return &jsonCodec{
		marshalOptions: protojson.MarshalOptions{UseProtoNames: true},
	}
}

type binaryCodec struct{}

var _ marshalAppender = (*binaryCodec)(nil)

func (c *binaryCodec) Name() string { return codecNameBinary }

func (c *binaryCodec) Marshal(message any) ([]byte, error) {
	msg, ok := message.(Message)
	if !ok {
		return nil, errNotMessage(message)
	}
	return msg.Marshal()
}

func (c *binaryCodec) MarshalAppend(dst []byte, message any) ([]byte, error) {
	msg, ok := message.(Message)
	if !ok {
		return nil, errNotMessage(message)
	}
	return msg.MarshalAppend(dst)
}

func (c *binaryCodec) Unmarshal(data []byte, message any) error {
	msg, ok := message.(Message)
	if !ok {
		return errNotMessage(message)
	}
	return msg.Unmarshal(data)
}

type jsonCodec struct {
	marshalOptions   protojson.MarshalOptions
	unmarshalOptions protojson.UnmarshalOptions
}

var _ marshalAppender = (*jsonCodec)(nil)

func (c *jsonCodec) Name() string { return codecNameJSON }

func (c *jsonCodec) Marshal(message any) ([]byte, error) {
	return c.MarshalAppend(nil, message)
}

func (c *jsonCodec) MarshalAppend(dst []byte, message any) ([]byte, error) {
	msg, ok := message.(Message)
	if !ok {
		return nil, errNotMessage(message)
	}
	return c.marshalOptions.MarshalAppend(dst, msg.ToDynamic())
}

func (c *jsonCodec) Unmarshal(data []byte, message any) error {
	msg, ok := message.(Message)
	if !ok {
		return errNotMessage(message)
	}
	dynamic := dynamicpb.NewMessage(File.Messages().ByName(msg.MessageName().Name()))
	if err := c.unmarshalOptions.Unmarshal(data, dynamic); err != nil {
		msg.Reset()
		return err
	}
	return msg.FromDynamic(dynamic)
}

func errNotMessage(m any) error {
	return fmt.Errorf("%T isn't a dragnn.Message", m)
}

var defaultCodecs = newCodecMap(BinaryCodec(), JSONCodec())

// LookupCodec returns the built-in codec with the given name: "binary" or
// "json".
func LookupCodec(name string) (Codec, bool) {
	codec := defaultCodecs.Get(name)
	return codec, codec != nil
}

// CodecNames returns the names of the built-in codecs.
func CodecNames() []string {
	return defaultCodecs.Names()
}

type codecMap struct {
	codecs map[string]Codec
}

func newCodecMap(codecs ...Codec) *codecMap {
	m := &codecMap{codecs: make(map[string]Codec, len(codecs))}
	for _, codec := range codecs {
		m.codecs[codec.Name()] = codec
	}
	return m
}

// Get the named codec.
func (m *codecMap) Get(name string) Codec {
	return m.codecs[name]
}

// Names returns a sorted copy of the registered codec names. The returned
// slice is safe for the caller to mutate.
func (m *codecMap) Names() []string {
	names := make([]string, 0, len(m.codecs))
	for name := range m.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
