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
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// Every envelope starts with a 5-byte prefix: one flag byte, then the
// payload length as a big-endian uint32.
const envelopePrefixLength = 5

// flagEnvelopeCompressed indicates that the payload is compressed with the
// stream's compression algorithm. No other flags are defined.
const flagEnvelopeCompressed = 0b00000001

const maxPreallocBytes = 1024 * 1024

func newErrInvalidEnvelopeFlags(flags uint8) *StreamError {
	return errorf(CodeMalformed, "invalid envelope flags %08b", flags)
}

// setBuffer sets the buffer to the given bytes. The buffer takes ownership of
// the bytes, so the caller must not use the bytes after calling setBuffer.
func setBuffer(dst *bytes.Buffer, buf []byte) {
	if cap(buf) > dst.Cap() {
		*dst = *bytes.NewBuffer(buf)
	} else {
		dst.Write(buf)
	}
}

func marshal(dst *bytes.Buffer, message Message, codec Codec) error {
	if codec, ok := codec.(marshalAppender); ok {
		// Codec supports MarshalAppend; try to re-use a []byte from the pool.
		raw, err := codec.MarshalAppend(dst.Bytes(), message)
		if err != nil {
			return errorf(CodeInternal, "marshal %s: %w", message.MessageName(), err)
		}
		setBuffer(dst, raw)
		return nil
	}
	raw, err := codec.Marshal(message)
	if err != nil {
		return errorf(CodeInternal, "marshal %s: %w", message.MessageName(), err)
	}
	setBuffer(dst, raw)
	return nil
}

func unmarshal(src *bytes.Buffer, message Message, codec Codec) error {
	if err := codec.Unmarshal(src.Bytes(), message); err != nil {
		return errorf(CodeMalformed, "unmarshal into %s: %w", message.MessageName(), err)
	}
	return nil
}

func compress(buffer *bytes.Buffer, bufferPool *bufferPool, pool *compressionPool) error {
	data := bufferPool.Get()
	defer bufferPool.Put(data)
	if err := pool.Compress(data, buffer); err != nil {
		return err
	}
	buffer.Reset()
	_, _ = data.WriteTo(buffer)
	return nil
}

func decompress(buffer *bytes.Buffer, bufferPool *bufferPool, pool *compressionPool, readMaxBytes int) error {
	data := bufferPool.Get()
	defer bufferPool.Put(data)
	if err := pool.Decompress(data, buffer, int64(readMaxBytes)); err != nil {
		return err
	}
	buffer.Reset()
	_, _ = data.WriteTo(buffer)
	return nil
}

func checkSendMaxBytes(buffer *bytes.Buffer, sendMaxBytes int, isCompressed bool) error {
	if sendMaxBytes <= 0 || buffer.Len() <= sendMaxBytes {
		return nil
	}
	tmpl := "message size %d exceeds sendMaxBytes %d"
	if isCompressed {
		tmpl = "compressed message size %d exceeds sendMaxBytes %d"
	}
	return errorf(CodeResourceExhausted, tmpl, buffer.Len(), sendMaxBytes)
}

func makeEnvelopePrefix(flags uint8, size int) ([envelopePrefixLength]byte, error) {
	if size < 0 || uint64(size) > math.MaxUint32 {
		return [envelopePrefixLength]byte{}, errorf(CodeResourceExhausted, "message size %d overflows uint32", size)
	}
	prefix := [envelopePrefixLength]byte{}
	prefix[0] = flags
	binary.BigEndian.PutUint32(prefix[1:5], uint32(size))
	return prefix, nil
}

func writeEnvelope(dst io.Writer, flags uint8, src *bytes.Buffer) error {
	prefix, err := makeEnvelopePrefix(flags, src.Len())
	if err != nil {
		return err
	}
	if _, err := dst.Write(prefix[:]); err != nil {
		return errorf(CodeUnknown, "write envelope prefix: %w", err)
	}
	if _, err := src.WriteTo(dst); err != nil {
		return errorf(CodeUnknown, "write envelope payload: %w", err)
	}
	return nil
}

// readEnvelope reads one envelope's payload into dst and returns its flags.
// It returns a bare io.EOF only when src ends cleanly before a prefix.
func readEnvelope(dst *bytes.Buffer, src io.Reader, readMaxBytes int) (uint8, error) {
	prefix := [envelopePrefixLength]byte{}
	prefixBytesRead, err := io.ReadFull(src, prefix[:])
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && prefixBytesRead == 0:
		return 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return 0, errorf(CodeMalformed, "incomplete envelope prefix: got %d of %d bytes", prefixBytesRead, envelopePrefixLength)
	default:
		return 0, errorf(CodeUnknown, "read envelope prefix: %w", err)
	}
	size := int64(binary.BigEndian.Uint32(prefix[1:5]))
	if readMaxBytes > 0 && size > int64(readMaxBytes) {
		if _, err := io.CopyN(io.Discard, src, size); err != nil && !errors.Is(err, io.EOF) {
			return 0, errorf(CodeUnknown, "discard oversized envelope: %w", err)
		}
		return 0, errorf(CodeResourceExhausted, "message size %d is larger than configured max %d", size, readMaxBytes)
	}
	if size > 0 {
		// The prefix is untrusted, so don't preallocate more than a
		// reasonable amount; CopyN grows dst as the payload arrives.
		dst.Grow(int(min(size, maxPreallocBytes)))
		bytesRead, err := io.CopyN(dst, src, size)
		if errors.Is(err, io.EOF) {
			return 0, errorf(CodeMalformed, "promised %d bytes in envelope, got %d bytes", size, bytesRead)
		}
		if err != nil {
			return 0, errorf(CodeUnknown, "read envelope payload: %w", err)
		}
	}
	return prefix[0], nil
}
