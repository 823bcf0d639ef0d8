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

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	arg "github.com/alexflint/go-arg"
	"github.com/syntaxnet/dragnn"
	"github.com/syntaxnet/dragnn/internal/assert"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"
)

func linkOptions() options {
	args := defaultOptions()
	args.In = "-"
	args.Kind = "link"
	return args
}

func TestParseFlags(t *testing.T) {
	t.Parallel()
	parse := func(t *testing.T, flags ...string) (options, error) {
		t.Helper()
		args := defaultOptions()
		parser, err := arg.NewParser(arg.Config{}, &args)
		assert.Nil(t, err)
		return args, parser.Parse(flags)
	}
	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		args, err := parse(t, "--in", "links.stream")
		assert.Nil(t, err)
		want := defaultOptions()
		want.In = "links.stream"
		assert.Equal(t, args, want)
	})
	t.Run("every flag", func(t *testing.T) {
		t.Parallel()
		args, err := parse(
			t,
			"--in", "-",
			"--kind", "link",
			"--codec", "json",
			"--compression", "snappy",
			"--format", "text",
			"--max-bytes", "10",
		)
		assert.Nil(t, err)
		assert.Equal(t, args, options{
			In:          "-",
			Kind:        "link",
			Codec:       "json",
			Compression: dragnn.CompressionSnappy,
			Format:      "text",
			MaxBytes:    10,
		})
	})
	t.Run("input is required", func(t *testing.T) {
		t.Parallel()
		_, err := parse(t, "--kind", "link")
		assert.NotNil(t, err)
	})
}

func writeLinks(t *testing.T, links []*dragnn.LinkFeatures, opts ...dragnn.Option) *bytes.Buffer {
	t.Helper()
	var stream bytes.Buffer
	assert.Nil(t, dragnn.WriteAll(dragnn.NewWriter(&stream, opts...), links))
	return &stream
}

func TestDumpJSON(t *testing.T) {
	t.Parallel()
	links := []*dragnn.LinkFeatures{
		{BatchIdx: proto.Int64(2), BeamIdx: proto.Int64(0), StepIdx: proto.Int64(5), FeatureValue: proto.Int64(17), FeatureName: proto.String("tag")},
		{StepIdx: proto.Int64(-1)},
	}
	args := linkOptions()
	args.Compression = dragnn.CompressionSnappy
	var out bytes.Buffer
	n, err := dump(args, writeLinks(t, links, dragnn.WithCompression(dragnn.CompressionSnappy)), &out)
	assert.Nil(t, err)
	assert.Equal(t, n, 2)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, len(lines), 2)
	var first, second map[string]any
	assert.Nil(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Nil(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, first, map[string]any{
		"batch_idx":     "2",
		"beam_idx":      "0",
		"step_idx":      "5",
		"feature_value": "17",
		"feature_name":  "tag",
	})
	assert.Equal(t, second, map[string]any{"step_idx": "-1"})
}

func TestDumpText(t *testing.T) {
	t.Parallel()
	fixed := &dragnn.FixedFeatures{
		ID:          []uint64{7, 300},
		Weight:      []float32{1, 0.5},
		ValueName:   []string{"the", "cat"},
		FeatureName: proto.String("words"),
	}
	var stream bytes.Buffer
	assert.Nil(t, dragnn.NewWriter(&stream, dragnn.WithCodec(dragnn.JSONCodec())).Write(fixed))

	args := linkOptions()
	args.Kind = "fixed"
	args.Codec = "json"
	args.Format = "text"
	var out bytes.Buffer
	n, err := dump(args, &stream, &out)
	assert.Nil(t, err)
	assert.Equal(t, n, 1)

	dynamic := dynamicpb.NewMessage(dragnn.FixedFeaturesDescriptor())
	assert.Nil(t, prototext.Unmarshal(out.Bytes(), dynamic))
	got := &dragnn.FixedFeatures{}
	assert.Nil(t, got.FromDynamic(dynamic))
	assert.Equal(t, got, fixed)
}

func TestDumpErrors(t *testing.T) {
	t.Parallel()
	links := []*dragnn.LinkFeatures{{BatchIdx: proto.Int64(1)}}
	tests := []struct {
		name   string
		modify func(*options)
		stream []byte
		match  string
		count  int
	}{
		{
			name:   "unknown codec",
			modify: func(o *options) { o.Codec = "xml" },
			match:  `unknown codec "xml", want one of \[binary json\]`,
		},
		{
			name:   "unknown kind",
			modify: func(o *options) { o.Kind = "beam" },
			match:  `unknown record kind "beam"`,
		},
		{
			name:   "unknown format",
			modify: func(o *options) { o.Format = "yaml" },
			match:  `unknown output format "yaml"`,
		},
		{
			name:   "unknown compression",
			modify: func(o *options) { o.Compression = "lz4" },
			match:  `invalid_argument: unknown compression "lz4"`,
		},
		{
			name:   "truncated stream",
			modify: func(*options) {},
			stream: []byte{0, 0, 0, 0, 2, 0x08},
			match:  "promised 2 bytes in envelope, got 1 bytes",
		},
		{
			name:   "oversized record",
			modify: func(o *options) { o.MaxBytes = 1 },
			match:  "larger than configured max 1",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := linkOptions()
			tt.modify(&args)
			stream := writeLinks(t, links)
			if tt.stream != nil {
				stream = bytes.NewBuffer(tt.stream)
			}
			n, err := dump(args, stream, &bytes.Buffer{})
			assert.NotNil(t, err)
			assert.Match(t, err.Error(), tt.match)
			assert.Equal(t, n, tt.count)
		})
	}
}
