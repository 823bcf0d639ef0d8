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
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// FixedFeatures is a sparse, multi-valued categorical feature group attached
// to one extraction site, such as one token of an input sentence.
//
// ID, Weight, and ValueName are parallel arrays by producer convention: when
// more than one is populated, the i-th elements describe the same feature
// value. Producers may leave any of them empty, and the codec never enforces
// alignment; see Aligned.
type FixedFeatures struct {
	// ID holds feature identifiers, typically hashed or vocabulary indices.
	ID []uint64
	// Weight holds the per-ID weight or activation.
	Weight []float32
	// ValueName holds a human-readable label per ID.
	ValueName []string
	// FeatureName names the feature channel. Nil means absent, which is
	// distinct from a pointer to the empty string.
	FeatureName *string
}

var _ Message = (*FixedFeatures)(nil)

// MessageName returns syntaxnet.dragnn.FixedFeatures.
func (*FixedFeatures) MessageName() protoreflect.FullName {
	return FixedFeaturesName
}

// Reset clears every field.
func (f *FixedFeatures) Reset() {
	*f = FixedFeatures{}
}

// GetFeatureName returns the feature name, or the empty string if it's absent.
func (f *FixedFeatures) GetFeatureName() string {
	if f != nil && f.FeatureName != nil {
		return *f.FeatureName
	}
	return ""
}

// HasFeatureName reports whether the feature name is present.
func (f *FixedFeatures) HasFeatureName() bool {
	return f != nil && f.FeatureName != nil
}

// Len returns the length of the longest parallel array.
func (f *FixedFeatures) Len() int {
	if f == nil {
		return 0
	}
	n := len(f.ID)
	if len(f.Weight) > n {
		n = len(f.Weight)
	}
	if len(f.ValueName) > n {
		n = len(f.ValueName)
	}
	return n
}

// Aligned reports whether the populated parallel arrays share one length.
// Empty arrays don't count, so a record with only IDs is aligned.
func (f *FixedFeatures) Aligned() bool {
	if f == nil {
		return true
	}
	n := 0
	for _, l := range [...]int{len(f.ID), len(f.Weight), len(f.ValueName)} {
		if l == 0 {
			continue
		}
		if n != 0 && l != n {
			return false
		}
		n = l
	}
	return true
}

// Size returns the length of the binary encoding.
func (f *FixedFeatures) Size() int {
	if f == nil {
		return 0
	}
	size := sizePackedUint64s(FixedFeaturesIDNumber, f.ID)
	size += sizePackedFloat32s(FixedFeaturesWeightNumber, f.Weight)
	for _, name := range f.ValueName {
		size += sizeString(FixedFeaturesValueNameNumber, name)
	}
	if f.FeatureName != nil {
		size += sizeString(FixedFeaturesFeatureNameNumber, *f.FeatureName)
	}
	return size
}

// Marshal returns the binary encoding of f. IDs and weights are packed. An
// empty record encodes to zero bytes.
func (f *FixedFeatures) Marshal() ([]byte, error) {
	return f.MarshalAppend(make([]byte, 0, f.Size()))
}

// MarshalAppend appends the binary encoding of f to b. It never fails; the
// error is there to satisfy Message.
func (f *FixedFeatures) MarshalAppend(b []byte) ([]byte, error) {
	if f == nil {
		return b, nil
	}
	b = appendPackedUint64s(b, FixedFeaturesIDNumber, f.ID)
	b = appendPackedFloat32s(b, FixedFeaturesWeightNumber, f.Weight)
	for _, name := range f.ValueName {
		b = appendString(b, FixedFeaturesValueNameNumber, name)
	}
	if f.FeatureName != nil {
		b = appendString(b, FixedFeaturesFeatureNameNumber, *f.FeatureName)
	}
	return b, nil
}

// Unmarshal replaces the contents of f with the decoded form of data. Packed
// and unpacked repeated fields are both accepted, and unknown fields are
// skipped. On failure it returns a *MalformedMessageError and leaves f
// reset.
func (f *FixedFeatures) Unmarshal(data []byte) error {
	var decoded FixedFeatures
	if err := decoded.merge(data); err != nil {
		f.Reset()
		return err
	}
	*f = decoded
	return nil
}

func (f *FixedFeatures) merge(data []byte) error {
	d := newFieldDecoder(FixedFeaturesName, data)
	for {
		ok, err := d.next()
		if err != nil || !ok {
			return err
		}
		switch d.num {
		case FixedFeaturesIDNumber:
			f.ID, err = d.uint64s(f.ID)
		case FixedFeaturesWeightNumber:
			f.Weight, err = d.float32s(f.Weight)
		case FixedFeaturesValueNameNumber:
			var name string
			if name, err = d.consumeString(); err == nil {
				f.ValueName = append(f.ValueName, name)
			}
		case FixedFeaturesFeatureNameNumber:
			var name string
			if name, err = d.consumeString(); err == nil {
				f.FeatureName = &name
			}
		default:
			err = d.skip()
		}
		if err != nil {
			return err
		}
	}
}

// String renders f in the protobuf text format. The output isn't stable and
// shouldn't be parsed.
func (f *FixedFeatures) String() string {
	return prototext.Format(f.ToDynamic())
}
