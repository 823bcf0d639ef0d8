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
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// fieldDecoder walks the top-level fields of one encoded message. Every
// failure is reported as a *MalformedMessageError positioned at the tag of
// the current field.
type fieldDecoder struct {
	message protoreflect.FullName
	buf     []byte
	pos     int // next unread byte
	start   int // offset of the current field's tag
	num     protowire.Number
	typ     protowire.Type
}

func newFieldDecoder(message protoreflect.FullName, buf []byte) *fieldDecoder {
	return &fieldDecoder{message: message, buf: buf}
}

// next reads the tag of the next field. It returns false once the input is
// exhausted.
func (d *fieldDecoder) next() (bool, error) {
	if d.pos >= len(d.buf) {
		return false, nil
	}
	d.start, d.num, d.typ = d.pos, 0, 0
	num, typ, n := protowire.ConsumeTag(d.buf[d.pos:])
	if n < 0 {
		return false, d.fail(protowire.ParseError(n))
	}
	// ConsumeTag allows numbers past MaxValidNumber for MessageSet, which
	// these messages never use.
	if num > protowire.MaxValidNumber {
		return false, d.fail(fmt.Errorf("%w: %d exceeds %d", ErrFieldNumber, num, protowire.MaxValidNumber))
	}
	d.num, d.typ = num, typ
	d.pos += n
	return true, nil
}

func (d *fieldDecoder) fail(err error) *MalformedMessageError {
	return &MalformedMessageError{
		Message: d.message,
		Field:   d.num,
		Offset:  d.start,
		err:     err,
	}
}

func (d *fieldDecoder) mismatch(want string) *MalformedMessageError {
	return d.fail(fmt.Errorf("%w: got %s, want %s", ErrWireType, wireTypeName(d.typ), want))
}

func (d *fieldDecoder) rest() []byte {
	return d.buf[d.pos:]
}

// skip discards the current field's value, whatever its wire type.
func (d *fieldDecoder) skip() error {
	n := protowire.ConsumeFieldValue(d.num, d.typ, d.rest())
	if n < 0 {
		return d.fail(protowire.ParseError(n))
	}
	d.pos += n
	return nil
}

func (d *fieldDecoder) consumeVarint() (uint64, error) {
	if d.typ != protowire.VarintType {
		return 0, d.mismatch("varint")
	}
	v, n := protowire.ConsumeVarint(d.rest())
	if n < 0 {
		return 0, d.fail(protowire.ParseError(n))
	}
	d.pos += n
	return v, nil
}

func (d *fieldDecoder) consumeInt64() (int64, error) {
	v, err := d.consumeVarint()
	return int64(v), err
}

func (d *fieldDecoder) consumeBytes() ([]byte, error) {
	if d.typ != protowire.BytesType {
		return nil, d.mismatch("length-delimited")
	}
	v, n := protowire.ConsumeBytes(d.rest())
	if n < 0 {
		return nil, d.fail(protowire.ParseError(n))
	}
	d.pos += n
	return v, nil
}

func (d *fieldDecoder) consumeString() (string, error) {
	v, err := d.consumeBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(v) {
		return "", d.fail(ErrInvalidUTF8)
	}
	return string(v), nil
}

// uint64s appends one unpacked varint or a whole packed run to dst.
func (d *fieldDecoder) uint64s(dst []uint64) ([]uint64, error) {
	switch d.typ {
	case protowire.VarintType:
		v, err := d.consumeVarint()
		if err != nil {
			return dst, err
		}
		return append(dst, v), nil
	case protowire.BytesType:
		packed, err := d.consumeBytes()
		if err != nil {
			return dst, err
		}
		for len(packed) > 0 {
			v, n := protowire.ConsumeVarint(packed)
			if n < 0 {
				return dst, d.fail(protowire.ParseError(n))
			}
			dst = append(dst, v)
			packed = packed[n:]
		}
		return dst, nil
	}
	return dst, d.mismatch("varint or packed varints")
}

// float32s appends one unpacked fixed32 or a whole packed run to dst.
func (d *fieldDecoder) float32s(dst []float32) ([]float32, error) {
	switch d.typ {
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(d.rest())
		if n < 0 {
			return dst, d.fail(protowire.ParseError(n))
		}
		d.pos += n
		return append(dst, math.Float32frombits(v)), nil
	case protowire.BytesType:
		packed, err := d.consumeBytes()
		if err != nil {
			return dst, err
		}
		for len(packed) > 0 {
			v, n := protowire.ConsumeFixed32(packed)
			if n < 0 {
				return dst, d.fail(protowire.ParseError(n))
			}
			dst = append(dst, math.Float32frombits(v))
			packed = packed[n:]
		}
		return dst, nil
	}
	return dst, d.mismatch("fixed32 or packed fixed32s")
}

func appendPackedUint64s(b []byte, num protowire.Number, vs []uint64) []byte {
	if len(vs) == 0 {
		return b
	}
	size := 0
	for _, v := range vs {
		size += protowire.SizeVarint(v)
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(size))
	for _, v := range vs {
		b = protowire.AppendVarint(b, v)
	}
	return b
}

func sizePackedUint64s(num protowire.Number, vs []uint64) int {
	if len(vs) == 0 {
		return 0
	}
	size := 0
	for _, v := range vs {
		size += protowire.SizeVarint(v)
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(size)
}

func appendPackedFloat32s(b []byte, num protowire.Number, vs []float32) []byte {
	if len(vs) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(vs)*protowire.SizeFixed32()))
	for _, v := range vs {
		b = protowire.AppendFixed32(b, math.Float32bits(v))
	}
	return b
}

func sizePackedFloat32s(num protowire.Number, vs []float32) int {
	if len(vs) == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(len(vs)*protowire.SizeFixed32())
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func sizeString(num protowire.Number, s string) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(len(s))
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func sizeInt64(num protowire.Number, v int64) int {
	return protowire.SizeTag(num) + protowire.SizeVarint(uint64(v))
}

func wireTypeName(typ protowire.Type) string {
	switch typ {
	case protowire.VarintType:
		return "varint"
	case protowire.Fixed32Type:
		return "fixed32"
	case protowire.Fixed64Type:
		return "fixed64"
	case protowire.BytesType:
		return "length-delimited"
	case protowire.StartGroupType:
		return "start-group"
	case protowire.EndGroupType:
		return "end-group"
	}
	return fmt.Sprintf("wire type %d", typ)
}
