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

// Package dragnn defines the two feature records DRAGNN components exchange
// between a feature extractor and a model: FixedFeatures, a sparse group of
// categorical feature values for one extraction site, and LinkFeatures, a
// link from one step or beam hypothesis back to an earlier one.
//
// Both records use the proto2 binary wire format of
// syntaxnet.dragnn.FixedFeatures and syntaxnet.dragnn.LinkFeatures (see
// proto/dragnn/protos/data.proto), so bytes produced here interoperate with
// any protobuf implementation. Encoding and decoding are hand-written over
// protowire: optional fields are pointers that keep track of presence,
// unknown fields are skipped, and any malformed input is reported as a
// *MalformedMessageError.
//
// Records can be framed into feature streams with Writer and Reader, and
// bridged to the official runtime with ToDynamic and FromDynamic for JSON
// or text output.
package dragnn
