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

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ToDynamic copies f into a message of the official protobuf runtime, built
// from FixedFeaturesDescriptor. Presence of FeatureName carries over.
func (f *FixedFeatures) ToDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(fixedFeaturesDescriptor)
	f.copyTo(m)
	return m
}

// copyTo sets the fields of m, whose descriptor must declare this package's
// FixedFeatures fields.
func (f *FixedFeatures) copyTo(m protoreflect.Message) {
	if f == nil {
		return
	}
	fields := m.Descriptor().Fields()
	if len(f.ID) > 0 {
		list := m.Mutable(fields.ByNumber(FixedFeaturesIDNumber)).List()
		for _, id := range f.ID {
			list.Append(protoreflect.ValueOfUint64(id))
		}
	}
	if len(f.Weight) > 0 {
		list := m.Mutable(fields.ByNumber(FixedFeaturesWeightNumber)).List()
		for _, weight := range f.Weight {
			list.Append(protoreflect.ValueOfFloat32(weight))
		}
	}
	if len(f.ValueName) > 0 {
		list := m.Mutable(fields.ByNumber(FixedFeaturesValueNameNumber)).List()
		for _, name := range f.ValueName {
			list.Append(protoreflect.ValueOfString(name))
		}
	}
	if f.FeatureName != nil {
		m.Set(fields.ByNumber(FixedFeaturesFeatureNameNumber), protoreflect.ValueOfString(*f.FeatureName))
	}
}

// FromDynamic replaces the contents of f with the fields of m. Any message
// named syntaxnet.dragnn.FixedFeatures works, whether dynamic or generated,
// as long as its declared fields agree with this package's schema.
func (f *FixedFeatures) FromDynamic(m protoreflect.Message) error {
	md := m.Descriptor()
	if md.FullName() != FixedFeaturesName {
		return fmt.Errorf("cannot copy %s into %s", md.FullName(), FixedFeaturesName)
	}
	var out FixedFeatures
	fd, err := lookupField(md, FixedFeaturesIDNumber, protoreflect.Uint64Kind, true /* repeated */)
	if err != nil {
		return err
	}
	if fd != nil && m.Has(fd) {
		list := m.Get(fd).List()
		out.ID = make([]uint64, list.Len())
		for i := range out.ID {
			out.ID[i] = list.Get(i).Uint()
		}
	}
	fd, err = lookupField(md, FixedFeaturesWeightNumber, protoreflect.FloatKind, true /* repeated */)
	if err != nil {
		return err
	}
	if fd != nil && m.Has(fd) {
		list := m.Get(fd).List()
		out.Weight = make([]float32, list.Len())
		for i := range out.Weight {
			out.Weight[i] = float32(list.Get(i).Float())
		}
	}
	fd, err = lookupField(md, FixedFeaturesValueNameNumber, protoreflect.StringKind, true /* repeated */)
	if err != nil {
		return err
	}
	if fd != nil && m.Has(fd) {
		list := m.Get(fd).List()
		out.ValueName = make([]string, list.Len())
		for i := range out.ValueName {
			out.ValueName[i] = list.Get(i).String()
		}
	}
	if out.FeatureName, err = optionalString(m, FixedFeaturesFeatureNameNumber); err != nil {
		return err
	}
	*f = out
	return nil
}

// ToDynamic copies l into a message of the official protobuf runtime, built
// from LinkFeaturesDescriptor. Presence of every field carries over.
func (l *LinkFeatures) ToDynamic() *dynamicpb.Message {
	m := dynamicpb.NewMessage(linkFeaturesDescriptor)
	l.copyTo(m)
	return m
}

func (l *LinkFeatures) copyTo(m protoreflect.Message) {
	if l == nil {
		return
	}
	fields := m.Descriptor().Fields()
	for _, field := range []struct {
		num   protoreflect.FieldNumber
		value *int64
	}{
		{LinkFeaturesBatchIdxNumber, l.BatchIdx},
		{LinkFeaturesBeamIdxNumber, l.BeamIdx},
		{LinkFeaturesStepIdxNumber, l.StepIdx},
		{LinkFeaturesFeatureValueNumber, l.FeatureValue},
	} {
		if field.value != nil {
			m.Set(fields.ByNumber(field.num), protoreflect.ValueOfInt64(*field.value))
		}
	}
	if l.FeatureName != nil {
		m.Set(fields.ByNumber(LinkFeaturesFeatureNameNumber), protoreflect.ValueOfString(*l.FeatureName))
	}
}

// FromDynamic replaces the contents of l with the fields of m, which must be
// named syntaxnet.dragnn.LinkFeatures.
func (l *LinkFeatures) FromDynamic(m protoreflect.Message) error {
	md := m.Descriptor()
	if md.FullName() != LinkFeaturesName {
		return fmt.Errorf("cannot copy %s into %s", md.FullName(), LinkFeaturesName)
	}
	var (
		out LinkFeatures
		err error
	)
	if out.BatchIdx, err = optionalInt64(m, LinkFeaturesBatchIdxNumber); err != nil {
		return err
	}
	if out.BeamIdx, err = optionalInt64(m, LinkFeaturesBeamIdxNumber); err != nil {
		return err
	}
	if out.StepIdx, err = optionalInt64(m, LinkFeaturesStepIdxNumber); err != nil {
		return err
	}
	if out.FeatureValue, err = optionalInt64(m, LinkFeaturesFeatureValueNumber); err != nil {
		return err
	}
	if out.FeatureName, err = optionalString(m, LinkFeaturesFeatureNameNumber); err != nil {
		return err
	}
	*l = out
	return nil
}

func optionalInt64(m protoreflect.Message, num protoreflect.FieldNumber) (*int64, error) {
	fd, err := lookupField(m.Descriptor(), num, protoreflect.Int64Kind, false /* repeated */)
	if err != nil || fd == nil || !m.Has(fd) {
		return nil, err
	}
	v := m.Get(fd).Int()
	return &v, nil
}

func optionalString(m protoreflect.Message, num protoreflect.FieldNumber) (*string, error) {
	fd, err := lookupField(m.Descriptor(), num, protoreflect.StringKind, false /* repeated */)
	if err != nil || fd == nil || !m.Has(fd) {
		return nil, err
	}
	v := m.Get(fd).String()
	return &v, nil
}

// lookupField finds a field by number and checks that its type matches. A
// missing field isn't an error: older schemas may lack it.
func lookupField(
	md protoreflect.MessageDescriptor,
	num protoreflect.FieldNumber,
	kind protoreflect.Kind,
	repeated bool,
) (protoreflect.FieldDescriptor, error) {
	fd := md.Fields().ByNumber(num)
	if fd == nil {
		return nil, nil
	}
	if fd.Kind() != kind || fd.IsList() != repeated {
		return nil, fmt.Errorf("%s: field %d is %v %v, want %v", md.FullName(), num, fd.Cardinality(), fd.Kind(), kind)
	}
	return fd, nil
}
