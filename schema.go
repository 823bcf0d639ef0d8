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

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Full names of the two messages in dragnn/protos/data.proto.
const (
	FixedFeaturesName protoreflect.FullName = "syntaxnet.dragnn.FixedFeatures"
	LinkFeaturesName  protoreflect.FullName = "syntaxnet.dragnn.LinkFeatures"
)

// Field numbers of FixedFeatures. They're part of the wire contract.
const (
	FixedFeaturesIDNumber          protowire.Number = 1
	FixedFeaturesWeightNumber      protowire.Number = 2
	FixedFeaturesValueNameNumber   protowire.Number = 3
	FixedFeaturesFeatureNameNumber protowire.Number = 4
)

// Field numbers of LinkFeatures. They're part of the wire contract.
const (
	LinkFeaturesBatchIdxNumber     protowire.Number = 1
	LinkFeaturesBeamIdxNumber      protowire.Number = 2
	LinkFeaturesStepIdxNumber      protowire.Number = 3
	LinkFeaturesFeatureValueNumber protowire.Number = 4
	LinkFeaturesFeatureNameNumber  protowire.Number = 5
)

// File describes dragnn/protos/data.proto. It lets the records cross over
// to the official protobuf runtime (see ToDynamic) for JSON and text
// rendering; the binary codec doesn't consult it.
var File protoreflect.FileDescriptor = mustNewFile(fileDescriptorProto())

var (
	fixedFeaturesDescriptor = File.Messages().ByName(FixedFeaturesName.Name())
	linkFeaturesDescriptor  = File.Messages().ByName(LinkFeaturesName.Name())
)

// FixedFeaturesDescriptor returns the descriptor of syntaxnet.dragnn.FixedFeatures.
func FixedFeaturesDescriptor() protoreflect.MessageDescriptor {
	return fixedFeaturesDescriptor
}

// LinkFeaturesDescriptor returns the descriptor of syntaxnet.dragnn.LinkFeatures.
func LinkFeaturesDescriptor() protoreflect.MessageDescriptor {
	return linkFeaturesDescriptor
}

func mustNewFile(fdp *descriptorpb.FileDescriptorProto) protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(fdp, nil /* resolver */)
	if err != nil {
		panic(fmt.Sprintf("build descriptor for %s: %v", fdp.GetName(), err))
	}
	return fd
}

// fileDescriptorProto mirrors proto/dragnn/protos/data.proto.
func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	// The upstream data.proto leaves id and weight unpacked. Declaring them
	// packed makes the official runtime write the same layout as Marshal;
	// parsers accept either form, so the bytes stay compatible.
	packed := &descriptorpb.FieldOptions{Packed: proto.Bool(true)}
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("dragnn/protos/data.proto"),
		Package: proto.String(string(FixedFeaturesName.Parent())),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String(string(FixedFeaturesName.Name())),
				Field: []*descriptorpb.FieldDescriptorProto{
					repeatedField("id", FixedFeaturesIDNumber, descriptorpb.FieldDescriptorProto_TYPE_UINT64, packed),
					repeatedField("weight", FixedFeaturesWeightNumber, descriptorpb.FieldDescriptorProto_TYPE_FLOAT, packed),
					repeatedField("value_name", FixedFeaturesValueNameNumber, descriptorpb.FieldDescriptorProto_TYPE_STRING, nil),
					optionalField("feature_name", FixedFeaturesFeatureNameNumber, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				},
			},
			{
				Name: proto.String(string(LinkFeaturesName.Name())),
				Field: []*descriptorpb.FieldDescriptorProto{
					optionalField("batch_idx", LinkFeaturesBatchIdxNumber, descriptorpb.FieldDescriptorProto_TYPE_INT64),
					optionalField("beam_idx", LinkFeaturesBeamIdxNumber, descriptorpb.FieldDescriptorProto_TYPE_INT64),
					optionalField("step_idx", LinkFeaturesStepIdxNumber, descriptorpb.FieldDescriptorProto_TYPE_INT64),
					optionalField("feature_value", LinkFeaturesFeatureValueNumber, descriptorpb.FieldDescriptorProto_TYPE_INT64),
					optionalField("feature_name", LinkFeaturesFeatureNameNumber, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				},
			},
		},
	}
}

func optionalField(name string, num protowire.Number, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(int32(num)),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func repeatedField(
	name string,
	num protowire.Number,
	typ descriptorpb.FieldDescriptorProto_Type,
	options *descriptorpb.FieldOptions,
) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:    proto.String(name),
		Number:  proto.Int32(int32(num)),
		Label:   descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
		Type:    typ.Enum(),
		Options: options,
	}
}
