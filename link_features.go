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

// LinkFeatures is one structural link from a processing step or beam
// hypothesis back to an earlier one. Every field has explicit presence: a nil
// pointer is absent, and a pointer to zero is present.
type LinkFeatures struct {
	// BatchIdx is the batch element the link belongs to.
	BatchIdx *int64
	// BeamIdx is the beam hypothesis.
	BeamIdx *int64
	// StepIdx is the referenced prior step.
	StepIdx *int64
	// FeatureValue is the resolved scalar feature value at the link target.
	FeatureValue *int64
	// FeatureName names the feature channel.
	FeatureName *string
}

var _ Message = (*LinkFeatures)(nil)

// MessageName returns syntaxnet.dragnn.LinkFeatures.
func (*LinkFeatures) MessageName() protoreflect.FullName {
	return LinkFeaturesName
}

// Reset clears every field.
func (l *LinkFeatures) Reset() {
	*l = LinkFeatures{}
}

// GetBatchIdx returns the batch index, or zero if it's absent.
func (l *LinkFeatures) GetBatchIdx() int64 {
	if l != nil && l.BatchIdx != nil {
		return *l.BatchIdx
	}
	return 0
}

// GetBeamIdx returns the beam index, or zero if it's absent.
func (l *LinkFeatures) GetBeamIdx() int64 {
	if l != nil && l.BeamIdx != nil {
		return *l.BeamIdx
	}
	return 0
}

// GetStepIdx returns the step index, or zero if it's absent.
func (l *LinkFeatures) GetStepIdx() int64 {
	if l != nil && l.StepIdx != nil {
		return *l.StepIdx
	}
	return 0
}

// GetFeatureValue returns the feature value, or zero if it's absent.
func (l *LinkFeatures) GetFeatureValue() int64 {
	if l != nil && l.FeatureValue != nil {
		return *l.FeatureValue
	}
	return 0
}

// GetFeatureName returns the feature name, or the empty string if it's absent.
func (l *LinkFeatures) GetFeatureName() string {
	if l != nil && l.FeatureName != nil {
		return *l.FeatureName
	}
	return ""
}

func (l *LinkFeatures) HasBatchIdx() bool     { return l != nil && l.BatchIdx != nil }
func (l *LinkFeatures) HasBeamIdx() bool      { return l != nil && l.BeamIdx != nil }
func (l *LinkFeatures) HasStepIdx() bool      { return l != nil && l.StepIdx != nil }
func (l *LinkFeatures) HasFeatureValue() bool { return l != nil && l.FeatureValue != nil }
func (l *LinkFeatures) HasFeatureName() bool  { return l != nil && l.FeatureName != nil }

// Size returns the length of the binary encoding.
func (l *LinkFeatures) Size() int {
	if l == nil {
		return 0
	}
	size := 0
	if l.BatchIdx != nil {
		size += sizeInt64(LinkFeaturesBatchIdxNumber, *l.BatchIdx)
	}
	if l.BeamIdx != nil {
		size += sizeInt64(LinkFeaturesBeamIdxNumber, *l.BeamIdx)
	}
	if l.StepIdx != nil {
		size += sizeInt64(LinkFeaturesStepIdxNumber, *l.StepIdx)
	}
	if l.FeatureValue != nil {
		size += sizeInt64(LinkFeaturesFeatureValueNumber, *l.FeatureValue)
	}
	if l.FeatureName != nil {
		size += sizeString(LinkFeaturesFeatureNameNumber, *l.FeatureName)
	}
	return size
}

// Marshal returns the binary encoding of l.
func (l *LinkFeatures) Marshal() ([]byte, error) {
	return l.MarshalAppend(make([]byte, 0, l.Size()))
}

// MarshalAppend appends the binary encoding of l to b. It never fails.
func (l *LinkFeatures) MarshalAppend(b []byte) ([]byte, error) {
	if l == nil {
		return b, nil
	}
	if l.BatchIdx != nil {
		b = appendInt64(b, LinkFeaturesBatchIdxNumber, *l.BatchIdx)
	}
	if l.BeamIdx != nil {
		b = appendInt64(b, LinkFeaturesBeamIdxNumber, *l.BeamIdx)
	}
	if l.StepIdx != nil {
		b = appendInt64(b, LinkFeaturesStepIdxNumber, *l.StepIdx)
	}
	if l.FeatureValue != nil {
		b = appendInt64(b, LinkFeaturesFeatureValueNumber, *l.FeatureValue)
	}
	if l.FeatureName != nil {
		b = appendString(b, LinkFeaturesFeatureNameNumber, *l.FeatureName)
	}
	return b, nil
}

// Unmarshal replaces the contents of l with the decoded form of data. When a
// field repeats, the last value wins. Unknown fields are skipped. On failure
// it returns a *MalformedMessageError and leaves l reset.
func (l *LinkFeatures) Unmarshal(data []byte) error {
	var decoded LinkFeatures
	if err := decoded.merge(data); err != nil {
		l.Reset()
		return err
	}
	*l = decoded
	return nil
}

func (l *LinkFeatures) merge(data []byte) error {
	d := newFieldDecoder(LinkFeaturesName, data)
	for {
		ok, err := d.next()
		if err != nil || !ok {
			return err
		}
		switch d.num {
		case LinkFeaturesBatchIdxNumber:
			l.BatchIdx, err = consumeOptionalInt64(d)
		case LinkFeaturesBeamIdxNumber:
			l.BeamIdx, err = consumeOptionalInt64(d)
		case LinkFeaturesStepIdxNumber:
			l.StepIdx, err = consumeOptionalInt64(d)
		case LinkFeaturesFeatureValueNumber:
			l.FeatureValue, err = consumeOptionalInt64(d)
		case LinkFeaturesFeatureNameNumber:
			var name string
			if name, err = d.consumeString(); err == nil {
				l.FeatureName = &name
			}
		default:
			err = d.skip()
		}
		if err != nil {
			return err
		}
	}
}

func consumeOptionalInt64(d *fieldDecoder) (*int64, error) {
	v, err := d.consumeInt64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// String renders l in the protobuf text format. The output isn't stable and
// shouldn't be parsed.
func (l *LinkFeatures) String() string {
	return prototext.Format(l.ToDynamic())
}
