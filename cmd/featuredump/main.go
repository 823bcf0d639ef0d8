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

// Command featuredump prints the records of a feature stream, one per line.
//
//	featuredump --in links.stream --kind link --compression snappy
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	arg "github.com/alexflint/go-arg"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"

	"github.com/syntaxnet/dragnn"
)

type options struct {
	In          string `arg:"required" help:"feature stream to read, or - for stdin"`
	Kind        string `help:"record type: fixed or link"`
	Codec       string `help:"payload codec of the stream: binary or json"`
	Compression string `help:"stream compression: gzip, snappy, or identity"`
	Format      string `help:"output format: json or text"`
	MaxBytes    int    `arg:"--max-bytes" help:"reject envelopes larger than this many bytes"`
}

func defaultOptions() options {
	return options{
		Kind:        "fixed",
		Codec:       "binary",
		Compression: dragnn.CompressionIdentity,
		Format:      "json",
	}
}

func main() {
	args := defaultOptions()
	arg.MustParse(&args)

	in := io.Reader(os.Stdin)
	if args.In != "-" {
		f, err := os.Open(args.In)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	out := bufio.NewWriter(os.Stdout)
	n, err := dump(args, bufio.NewReader(in), out)
	if flushErr := out.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		log.Fatalf("after %d records from %s: %v", n, args.In, err)
	}
	log.Printf("read %d %s records from %s", n, args.Kind, args.In)
}

// dump copies every record of the stream in r to w and returns how many it
// printed.
func dump(args options, r io.Reader, w io.Writer) (int, error) {
	codec, ok := dragnn.LookupCodec(args.Codec)
	if !ok {
		return 0, fmt.Errorf("unknown codec %q, want one of %v", args.Codec, dragnn.CodecNames())
	}
	newMessage, err := messageConstructor(args.Kind)
	if err != nil {
		return 0, err
	}
	format, err := formatter(args.Format)
	if err != nil {
		return 0, err
	}
	reader := dragnn.NewReader(
		r,
		dragnn.WithCodec(codec),
		dragnn.WithCompression(args.Compression),
		dragnn.WithReadMaxBytes(args.MaxBytes),
	)
	for {
		message := newMessage()
		if err := reader.Read(message); err != nil {
			if errors.Is(err, io.EOF) {
				return reader.Count(), nil
			}
			return reader.Count(), err
		}
		line, err := format(message)
		if err != nil {
			return reader.Count(), err
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return reader.Count(), err
		}
	}
}

func messageConstructor(kind string) (func() dragnn.Message, error) {
	switch kind {
	case "fixed":
		return func() dragnn.Message { return &dragnn.FixedFeatures{} }, nil
	case "link":
		return func() dragnn.Message { return &dragnn.LinkFeatures{} }, nil
	}
	return nil, fmt.Errorf("unknown record kind %q, want fixed or link", kind)
}

func formatter(format string) (func(dragnn.Message) ([]byte, error), error) {
	switch format {
	case "json":
		marshaler := protojson.MarshalOptions{UseProtoNames: true}
		return func(m dragnn.Message) ([]byte, error) {
			return marshaler.Marshal(m.ToDynamic())
		}, nil
	case "text":
		marshaler := prototext.MarshalOptions{}
		return func(m dragnn.Message) ([]byte, error) {
			return marshaler.Marshal(m.ToDynamic())
		}, nil
	}
	return nil, fmt.Errorf("unknown output format %q, want json or text", format)
}
