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
	"io"
	"math"
	"testing"
	"testing/quick"

	"github.com/syntaxnet/dragnn/internal/assert"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
)

func TestFixedFeaturesRoundTrip(t *testing.T) {
	t.Parallel()
	roundTrip := func(ids []uint64, weights []float32, names []string, featureName string, hasName bool) bool {
		want := &FixedFeatures{ID: ids, Weight: weights, ValueName: names}
		if hasName {
			want.FeatureName = proto.String(featureName)
		}
		data, err := want.Marshal()
		assert.Nil(t, err)
		assert.Equal(t, len(data), want.Size())
		got := &FixedFeatures{}
		assert.Nil(t, got.Unmarshal(data))
		return assert.Equal(t, got, want)
	}
	if err := quick.Check(roundTrip, nil /* config */); err != nil {
		t.Error(err)
	}
}

func TestFixedFeaturesWireLayout(t *testing.T) {
	t.Parallel()
	features := &FixedFeatures{
		ID:          []uint64{1, 300},
		Weight:      []float32{1.5},
		ValueName:   []string{"a"},
		FeatureName: proto.String("words"),
	}
	data, err := features.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, data, []byte{
		0x0a, 0x03, 0x01, 0xac, 0x02, // id, packed
		0x12, 0x04, 0x00, 0x00, 0xc0, 0x3f, // weight, packed
		0x1a, 0x01, 'a', // value_name
		0x22, 0x05, 'w', 'o', 'r', 'd', 's', // feature_name
	})

	prefix := []byte{0xff}
	appended, err := features.MarshalAppend(prefix)
	assert.Nil(t, err)
	assert.Equal(t, appended, append([]byte{0xff}, data...))
}

func TestFixedFeaturesEmpty(t *testing.T) {
	t.Parallel()
	var empty FixedFeatures
	data, err := empty.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, len(data), 0)
	assert.Equal(t, empty.Size(), 0)

	got := &FixedFeatures{ID: []uint64{9}, FeatureName: proto.String("stale")}
	assert.Nil(t, got.Unmarshal(data))
	assert.Equal(t, got, &FixedFeatures{})
	assert.False(t, got.HasFeatureName())
	assert.Equal(t, got.Len(), 0)

	var null *FixedFeatures
	assert.Equal(t, null.GetFeatureName(), "")
	assert.False(t, null.HasFeatureName())
	assert.Equal(t, null.Size(), 0)
	assert.True(t, null.Aligned())
	nullData, err := null.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, len(nullData), 0)
}

func TestFixedFeaturesPresence(t *testing.T) {
	t.Parallel()
	present := &FixedFeatures{FeatureName: proto.String("")}
	data, err := present.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, data, []byte{0x22, 0x00})

	var got FixedFeatures
	assert.Nil(t, got.Unmarshal(data))
	assert.True(t, got.HasFeatureName())
	assert.Equal(t, got.GetFeatureName(), "")
	assert.NotEqual(t, &got, &FixedFeatures{})
}

func TestFixedFeaturesParallelArrays(t *testing.T) {
	t.Parallel()
	t.Run("mismatched lengths round-trip", func(t *testing.T) {
		t.Parallel()
		want := &FixedFeatures{
			ID:        []uint64{1, 2, 3},
			Weight:    []float32{0.5},
			ValueName: []string{"x", "y"},
		}
		assert.False(t, want.Aligned())
		assert.Equal(t, want.Len(), 3)
		data, err := want.Marshal()
		assert.Nil(t, err)
		got := &FixedFeatures{}
		assert.Nil(t, got.Unmarshal(data))
		assert.Equal(t, got, want)
	})
	t.Run("empty arrays don't count", func(t *testing.T) {
		t.Parallel()
		assert.True(t, (&FixedFeatures{ID: []uint64{1, 2}}).Aligned())
		assert.True(t, (&FixedFeatures{ID: []uint64{1, 2}, ValueName: []string{"a", "b"}}).Aligned())
		assert.True(t, (&FixedFeatures{Weight: []float32{1}, ValueName: []string{"a"}}).Aligned())
		assert.False(t, (&FixedFeatures{ID: []uint64{1}, Weight: []float32{1, 2}}).Aligned())
		assert.True(t, (&FixedFeatures{}).Aligned())
	})
}

func TestFixedFeaturesSpecialFloats(t *testing.T) {
	t.Parallel()
	want := &FixedFeatures{Weight: []float32{
		float32(math.Inf(1)),
		float32(math.Inf(-1)),
		float32(math.NaN()),
		float32(math.Copysign(0, -1)),
		math.SmallestNonzeroFloat32,
	}}
	data, err := want.Marshal()
	assert.Nil(t, err)
	got := &FixedFeatures{}
	assert.Nil(t, got.Unmarshal(data))
	assert.Equal(t, len(got.Weight), len(want.Weight))
	for i := range want.Weight {
		assert.Equal(t, math.Float32bits(got.Weight[i]), math.Float32bits(want.Weight[i]))
	}
}

func TestFixedFeaturesUnpacked(t *testing.T) {
	t.Parallel()
	var data []byte
	data = protowire.AppendTag(data, FixedFeaturesIDNumber, protowire.VarintType)
	data = protowire.AppendVarint(data, 7)
	data = protowire.AppendTag(data, FixedFeaturesWeightNumber, protowire.Fixed32Type)
	data = protowire.AppendFixed32(data, math.Float32bits(0.25))
	// Packed and unpacked runs of the same field concatenate.
	data = appendPackedUint64s(data, FixedFeaturesIDNumber, []uint64{8, 9})
	data = protowire.AppendTag(data, FixedFeaturesIDNumber, protowire.VarintType)
	data = protowire.AppendVarint(data, 10)
	data = appendPackedFloat32s(data, FixedFeaturesWeightNumber, []float32{0.5})
	// An empty packed run is legal and adds nothing.
	data = protowire.AppendTag(data, FixedFeaturesIDNumber, protowire.BytesType)
	data = protowire.AppendVarint(data, 0)

	got := &FixedFeatures{}
	assert.Nil(t, got.Unmarshal(data))
	assert.Equal(t, got, &FixedFeatures{
		ID:     []uint64{7, 8, 9, 10},
		Weight: []float32{0.25, 0.5},
	})
}

func TestFixedFeaturesUnknownFields(t *testing.T) {
	t.Parallel()
	want := &FixedFeatures{
		ID:          []uint64{42},
		ValueName:   []string{"forty-two"},
		FeatureName: proto.String("words"),
	}
	data, err := want.Marshal()
	assert.Nil(t, err)
	data = appendUnknownFields(data)

	got := &FixedFeatures{}
	assert.Nil(t, got.Unmarshal(data))
	assert.Equal(t, got, want)

	// Unknown fields are discarded, so re-encoding drops them.
	reencoded, err := got.Marshal()
	assert.Nil(t, err)
	original, err := want.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, reencoded, original)
}

func TestFixedFeaturesLastFeatureNameWins(t *testing.T) {
	t.Parallel()
	var data []byte
	data = appendString(data, FixedFeaturesFeatureNameNumber, "first")
	data = appendString(data, FixedFeaturesFeatureNameNumber, "second")
	got := &FixedFeatures{}
	assert.Nil(t, got.Unmarshal(data))
	assert.Equal(t, got.GetFeatureName(), "second")
}

func TestFixedFeaturesMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		data   []byte
		field  protowire.Number
		offset int
		is     error
		match  string
	}{
		{
			name:  "truncated tag",
			data:  []byte{0x80},
			is:    io.ErrUnexpectedEOF,
			match: "at offset 0",
		},
		{
			name:  "field number zero",
			data:  []byte{0x00, 0x01},
			match: "invalid field number",
		},
		{
			name:   "field number above max",
			data:   append(protowire.AppendTag([]byte{0x08, 0x01}, protowire.MaxValidNumber+1, protowire.VarintType), 0x01),
			offset: 2,
			is:     ErrFieldNumber,
			match:  "field number: 536870912 exceeds 536870911",
		},
		{
			name:  "overlong tag",
			data:  []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f},
			match: "overflow",
		},
		{
			name:  "truncated packed ids",
			data:  []byte{0x0a, 0x05, 0x01},
			field: FixedFeaturesIDNumber,
			is:    io.ErrUnexpectedEOF,
		},
		{
			name:  "truncated varint inside packed ids",
			data:  []byte{0x0a, 0x01, 0x80},
			field: FixedFeaturesIDNumber,
			is:    io.ErrUnexpectedEOF,
		},
		{
			name:  "packed weights not a multiple of four bytes",
			data:  []byte{0x12, 0x03, 0x00, 0x00, 0x00},
			field: FixedFeaturesWeightNumber,
			is:    io.ErrUnexpectedEOF,
		},
		{
			name:  "truncated unpacked weight",
			data:  []byte{0x15, 0x00, 0x00},
			field: FixedFeaturesWeightNumber,
			is:    io.ErrUnexpectedEOF,
		},
		{
			name:  "id as fixed64",
			data:  []byte{0x09, 0, 0, 0, 0, 0, 0, 0, 0},
			field: FixedFeaturesIDNumber,
			is:    ErrWireType,
		},
		{
			name:  "weight as varint",
			data:  []byte{0x10, 0x01},
			field: FixedFeaturesWeightNumber,
			is:    ErrWireType,
		},
		{
			name:  "feature name as varint",
			data:  []byte{0x20, 0x01},
			field: FixedFeaturesFeatureNameNumber,
			is:    ErrWireType,
		},
		{
			name:  "value name with reserved wire type",
			data:  []byte{0x1f},
			field: FixedFeaturesValueNameNumber,
			is:    ErrWireType,
			match: "wire type 7",
		},
		{
			name:   "invalid UTF-8 after a valid field",
			data:   []byte{0x22, 0x01, 'x', 0x1a, 0x02, 0xff, 0xfe},
			field:  FixedFeaturesValueNameNumber,
			offset: 3,
			is:     ErrInvalidUTF8,
		},
		{
			name:  "invalid UTF-8 in feature name",
			data:  []byte{0x22, 0x01, 0xc0},
			field: FixedFeaturesFeatureNameNumber,
			is:    ErrInvalidUTF8,
		},
		{
			name:  "unknown field with reserved wire type",
			data:  []byte{0x4f},
			field: 9,
			match: "reserved wire type",
		},
		{
			name:  "stray end group",
			data:  []byte{0x4c},
			field: 9,
			match: "end group",
		},
		{
			name:  "unterminated unknown group",
			data:  []byte{0x63, 0x08, 0x01},
			field: 12,
			is:    io.ErrUnexpectedEOF,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := &FixedFeatures{ID: []uint64{1}, FeatureName: proto.String("stale")}
			err := got.Unmarshal(tt.data)
			assert.NotNil(t, err)
			malformed := assert.ErrorAs[*MalformedMessageError](t, err)
			assert.Equal(t, malformed.Message, FixedFeaturesName)
			assert.Equal(t, malformed.Field, tt.field)
			assert.Equal(t, malformed.Offset, tt.offset)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			if tt.match != "" {
				assert.Match(t, err.Error(), tt.match)
			}
			// Never a partially-populated record.
			assert.Equal(t, got, &FixedFeatures{})
		})
	}
}

func TestFixedFeaturesTruncatedInsideField(t *testing.T) {
	t.Parallel()
	features := &FixedFeatures{ID: []uint64{1 << 40, 3}, FeatureName: proto.String("features")}
	data, err := features.Marshal()
	assert.Nil(t, err)
	// Cutting at a field boundary leaves a shorter valid message, so only
	// cuts inside a field are detectable. Field boundaries here are 0, the
	// end of the packed ids, and the end of the data.
	idsEnd := sizePackedUint64s(FixedFeaturesIDNumber, features.ID)
	for cut := 1; cut < len(data); cut++ {
		if cut == idsEnd {
			continue
		}
		var got FixedFeatures
		err := got.Unmarshal(data[:cut])
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, assert.Sprintf("cut at %d", cut))
		assert.Equal(t, &got, &FixedFeatures{})
	}
}

// appendUnknownFields appends one field of every wire type, numbered past
// anything either record declares.
func appendUnknownFields(b []byte) []byte {
	b = protowire.AppendTag(b, 9, protowire.VarintType)
	b = protowire.AppendVarint(b, 150)
	b = protowire.AppendTag(b, 10, protowire.BytesType)
	b = protowire.AppendString(b, "from a newer producer")
	b = protowire.AppendTag(b, 11, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 1)
	b = protowire.AppendTag(b, 12, protowire.StartGroupType)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 5)
	b = protowire.AppendTag(b, 12, protowire.EndGroupType)
	b = protowire.AppendTag(b, 13, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 1)
	return b
}
