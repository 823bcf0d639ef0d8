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
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/golang/snappy"
)

const (
	// CompressionGzip names gzip compression.
	CompressionGzip = "gzip"
	// CompressionSnappy names the snappy framing format.
	CompressionSnappy = "snappy"
	// CompressionIdentity disables compression.
	CompressionIdentity = "identity"
)

// A Decompressor is a reusable wrapper that decompresses an underlying data
// source. The standard library's *gzip.Reader implements Decompressor.
type Decompressor interface {
	io.Reader

	// Close closes the Decompressor, but not the underlying data source. It may
	// return an error if the Decompressor wasn't read to EOF.
	Close() error

	// Reset discards the Decompressor's internal state, if any, and prepares it
	// to read from a new source of compressed data.
	Reset(io.Reader) error
}

// A Compressor is a reusable wrapper that compresses data written to an
// underlying sink. The standard library's *gzip.Writer and snappy's
// buffered *Writer implement Compressor.
type Compressor interface {
	io.Writer

	// Close flushes any buffered data to the underlying sink, then closes the
	// Compressor. It must not close the underlying sink.
	Close() error

	// Reset discards the Compressor's internal state, if any, and prepares it to
	// write compressed data to a new sink.
	Reset(io.Writer)
}

// snappyDecompressor adapts *snappy.Reader, whose Reset can't fail and which
// holds nothing that needs closing.
type snappyDecompressor struct {
	*snappy.Reader
}

func newSnappyDecompressor() Decompressor {
	return &snappyDecompressor{Reader: snappy.NewReader(nil)}
}

func (d *snappyDecompressor) Reset(reader io.Reader) error {
	d.Reader.Reset(reader)
	return nil
}

func (d *snappyDecompressor) Close() error {
	return nil
}

var defaultCompressionPools = map[string]*compressionPool{
	CompressionGzip: newCompressionPool(
		// gzip.NewReader needs a valid header up front, so start from the zero value.
		func() Decompressor { return &gzip.Reader{} },
		func() Compressor { return gzip.NewWriter(io.Discard) },
	),
	CompressionSnappy: newCompressionPool(
		newSnappyDecompressor,
		func() Compressor { return snappy.NewBufferedWriter(io.Discard) },
	),
}

// CompressionNames returns the names of the built-in compression algorithms.
func CompressionNames() []string {
	return []string{CompressionGzip, CompressionSnappy}
}

type compressionPool struct {
	decompressors sync.Pool
	compressors   sync.Pool
}

func newCompressionPool(
	newDecompressor func() Decompressor,
	newCompressor func() Compressor,
) *compressionPool {
	if newDecompressor == nil && newCompressor == nil {
		return nil
	}
	pool := &compressionPool{}
	// A missing constructor leaves its sync.Pool empty, so Get returns nil
	// and the caller gets an error instead of a panic.
	if newDecompressor != nil {
		pool.decompressors.New = func() any { return newDecompressor() }
	}
	if newCompressor != nil {
		pool.compressors.New = func() any { return newCompressor() }
	}
	return pool
}

// Decompress reads all of src through a pooled Decompressor into dst. A
// positive readMaxBytes bounds the decompressed size.
func (c *compressionPool) Decompress(dst *bytes.Buffer, src *bytes.Buffer, readMaxBytes int64) error {
	decompressor, err := c.getDecompressor(src)
	if err != nil {
		return errorf(CodeMalformed, "get decompressor: %w", err)
	}
	reader := io.Reader(decompressor)
	if readMaxBytes > 0 && readMaxBytes < math.MaxInt64 {
		reader = io.LimitReader(decompressor, readMaxBytes+1)
	}
	bytesRead, err := dst.ReadFrom(reader)
	if err != nil {
		// Corrupt input leaves the decompressor in an unknown state, so it
		// doesn't go back to the pool.
		return errorf(CodeMalformed, "decompress: %w", err)
	}
	if readMaxBytes > 0 && bytesRead > readMaxBytes {
		discardedBytes, err := io.Copy(io.Discard, decompressor)
		_ = c.putDecompressor(decompressor)
		if err != nil {
			return errorf(CodeResourceExhausted, "message is larger than configured max %d - unable to determine message size: %w", readMaxBytes, err)
		}
		return errorf(CodeResourceExhausted, "message size %d is larger than configured max %d", bytesRead+discardedBytes, readMaxBytes)
	}
	if err := c.putDecompressor(decompressor); err != nil {
		return errorf(CodeUnknown, "recycle decompressor: %w", err)
	}
	return nil
}

// Compress writes all of src through a pooled Compressor into dst.
func (c *compressionPool) Compress(dst *bytes.Buffer, src *bytes.Buffer) error {
	compressor, err := c.getCompressor(dst)
	if err != nil {
		return errorf(CodeInternal, "get compressor: %w", err)
	}
	if _, err := src.WriteTo(compressor); err != nil {
		_ = c.putCompressor(compressor)
		return errorf(CodeInternal, "compress: %w", err)
	}
	if err := c.putCompressor(compressor); err != nil {
		return errorf(CodeInternal, "close compressor: %w", err)
	}
	return nil
}

func (c *compressionPool) getDecompressor(reader io.Reader) (Decompressor, error) {
	decompressor, ok := c.decompressors.Get().(Decompressor)
	if !ok {
		return nil, errors.New("expected Decompressor, got incorrect type from pool")
	}
	return decompressor, decompressor.Reset(reader)
}

func (c *compressionPool) putDecompressor(decompressor Decompressor) error {
	if err := decompressor.Close(); err != nil {
		return err
	}
	// While it's in the pool, we don't want the decompressor to retain a
	// reference to the underlying reader. Most decompressors read a header
	// when Reset, and an empty source has none, so the error is expected.
	_ = decompressor.Reset(strings.NewReader(""))
	c.decompressors.Put(decompressor)
	return nil
}

func (c *compressionPool) getCompressor(writer io.Writer) (Compressor, error) {
	compressor, ok := c.compressors.Get().(Compressor)
	if !ok {
		return nil, errors.New("expected Compressor, got incorrect type from pool")
	}
	compressor.Reset(writer)
	return compressor, nil
}

func (c *compressionPool) putCompressor(compressor Compressor) error {
	if err := compressor.Close(); err != nil {
		return err
	}
	compressor.Reset(io.Discard) // don't keep references
	c.compressors.Put(compressor)
	return nil
}

func lookupCompressionPool(name string) (*compressionPool, error) {
	if name == "" || name == CompressionIdentity {
		return nil, nil
	}
	pool, ok := defaultCompressionPools[name]
	if !ok {
		return nil, fmt.Errorf("unknown compression %q: known compressions are %s", name, strings.Join(CompressionNames(), ","))
	}
	return pool, nil
}
