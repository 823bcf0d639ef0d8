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
	"errors"
	"io"
)

// A Writer encodes records into a feature stream: a sequence of envelopes,
// each holding one encoded record. A Writer isn't safe for concurrent use.
type Writer struct {
	writer io.Writer
	config streamConfig
	count  int
}

// NewWriter constructs a Writer that writes envelopes to w.
func NewWriter(w io.Writer, options ...Option) *Writer {
	return &Writer{writer: w, config: newStreamConfig(options)}
}

// Write encodes message and writes it as one envelope. Every error is a
// *StreamError.
func (w *Writer) Write(message Message) error {
	if w.config.Err != nil {
		return w.config.Err
	}
	if message == nil {
		return errorf(CodeInvalidArgument, "write a nil message")
	}
	buffer := w.config.BufferPool.Get()
	defer w.config.BufferPool.Put(buffer)
	if err := marshal(buffer, message, w.config.Codec); err != nil {
		return err
	}
	var flags uint8
	if w.config.CompressionPool != nil && buffer.Len() >= w.config.CompressMinBytes {
		if err := compress(buffer, w.config.BufferPool, w.config.CompressionPool); err != nil {
			return err
		}
		flags |= flagEnvelopeCompressed
	}
	if err := checkSendMaxBytes(buffer, w.config.SendMaxBytes, flags&flagEnvelopeCompressed > 0); err != nil {
		return err
	}
	if err := writeEnvelope(w.writer, flags, buffer); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of envelopes written so far.
func (w *Writer) Count() int {
	return w.count
}

// A Reader decodes records from a feature stream. A Reader isn't safe for
// concurrent use.
type Reader struct {
	reader io.Reader
	config streamConfig
	count  int
}

// NewReader constructs a Reader that reads envelopes from r.
func NewReader(r io.Reader, options ...Option) *Reader {
	return &Reader{reader: r, config: newStreamConfig(options)}
}

// Read decodes the next envelope into message. It returns io.EOF when the
// stream ends cleanly between envelopes; every other error is a
// *StreamError. Malformed records are reported with CodeMalformed and wrap
// the codec's error, which for the binary codec is a
// *MalformedMessageError.
func (r *Reader) Read(message Message) error {
	if r.config.Err != nil {
		return r.config.Err
	}
	if message == nil {
		return errorf(CodeInvalidArgument, "read into a nil message")
	}
	buffer := r.config.BufferPool.Get()
	defer r.config.BufferPool.Put(buffer)
	flags, err := readEnvelope(buffer, r.reader, r.config.ReadMaxBytes)
	if err != nil {
		return err
	}
	if flags&^flagEnvelopeCompressed != 0 {
		return newErrInvalidEnvelopeFlags(flags)
	}
	if flags&flagEnvelopeCompressed > 0 {
		if r.config.CompressionPool == nil {
			return errorf(CodeMalformed, "envelope %d is compressed, but no compression is configured", r.count)
		}
		if err := decompress(buffer, r.config.BufferPool, r.config.CompressionPool, r.config.ReadMaxBytes); err != nil {
			return err
		}
	}
	if err := unmarshal(buffer, message, r.config.Codec); err != nil {
		return err
	}
	r.count++
	return nil
}

// Count returns the number of records read so far.
func (r *Reader) Count() int {
	return r.count
}

// ReadAll reads records until the stream ends cleanly. On error, it returns
// the records read so far along with the error.
//
//	links, err := dragnn.ReadAll[dragnn.LinkFeatures](reader)
func ReadAll[T any, M messagePointer[T]](r *Reader) ([]M, error) {
	var messages []M
	for {
		message := M(new(T))
		if err := r.Read(message); err != nil {
			if errors.Is(err, io.EOF) {
				return messages, nil
			}
			return messages, err
		}
		messages = append(messages, message)
	}
}

// WriteAll writes each message in order, stopping at the first error.
func WriteAll[M Message](w *Writer, messages []M) error {
	for _, message := range messages {
		if err := w.Write(message); err != nil {
			return err
		}
	}
	return nil
}
