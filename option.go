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

// An Option configures a feature stream Reader or Writer.
type Option interface {
	applyToStream(*streamConfig)
}

type streamConfig struct {
	Codec            Codec
	CompressionName  string
	CompressionPool  *compressionPool
	CompressMinBytes int
	ReadMaxBytes     int
	SendMaxBytes     int
	BufferPool       *bufferPool

	// Err records the first invalid option. Readers and writers return it
	// from every call.
	Err error
}

func newStreamConfig(options []Option) streamConfig {
	config := streamConfig{
		Codec:      BinaryCodec(),
		BufferPool: newBufferPool(),
	}
	for _, opt := range options {
		opt.applyToStream(&config)
	}
	return config
}

// WithCodec sets the payload codec. The default is BinaryCodec; JSONCodec is
// handy for human-readable dumps. Both ends of a stream must agree.
func WithCodec(codec Codec) Option {
	return &codecOption{Codec: codec}
}

type codecOption struct {
	Codec Codec
}

func (o *codecOption) applyToStream(config *streamConfig) {
	if o.Codec == nil {
		return
	}
	config.Codec = o.Codec
}

// WithCompression selects a built-in compression algorithm by name:
// CompressionGzip, CompressionSnappy, or CompressionIdentity. Writers
// compress envelopes with it, and readers use it to decompress envelopes
// flagged as compressed. Both ends of a stream must agree. An unknown name
// makes every Read and Write fail with CodeInvalidArgument.
func WithCompression(name string) Option {
	return &compressionOption{Name: name}
}

// WithCompressor registers and selects a custom compression algorithm.
// Either constructor may be nil for streams that only read or only write.
func WithCompressor(
	name string,
	newDecompressor func() Decompressor,
	newCompressor func() Compressor,
) Option {
	return &compressionOption{
		Name: name,
		Pool: newCompressionPool(newDecompressor, newCompressor),
	}
}

type compressionOption struct {
	Name string
	Pool *compressionPool
}

func (o *compressionOption) applyToStream(config *streamConfig) {
	config.CompressionName = o.Name
	if o.Pool != nil {
		config.CompressionPool = o.Pool
		return
	}
	pool, err := lookupCompressionPool(o.Name)
	if err != nil && config.Err == nil {
		config.Err = NewStreamError(CodeInvalidArgument, err)
	}
	config.CompressionPool = pool
}

// WithCompressMinBytes leaves payloads smaller than n bytes uncompressed.
// By default every payload is compressed when compression is enabled.
func WithCompressMinBytes(n int) Option {
	return &compressMinBytesOption{Min: n}
}

type compressMinBytesOption struct {
	Min int
}

func (o *compressMinBytesOption) applyToStream(config *streamConfig) {
	config.CompressMinBytes = o.Min
}

// WithReadMaxBytes limits the size of envelopes a Reader accepts, both as
// sent and after decompression. Larger envelopes fail with
// CodeResourceExhausted. Zero, the default, allows any size.
func WithReadMaxBytes(n int) Option {
	return &readMaxBytesOption{Max: n}
}

type readMaxBytesOption struct {
	Max int
}

func (o *readMaxBytesOption) applyToStream(config *streamConfig) {
	config.ReadMaxBytes = o.Max
}

// WithSendMaxBytes limits the size of envelopes a Writer produces, measured
// after compression. Larger envelopes fail with CodeResourceExhausted and
// aren't written. Zero, the default, allows any size.
func WithSendMaxBytes(n int) Option {
	return &sendMaxBytesOption{Max: n}
}

type sendMaxBytesOption struct {
	Max int
}

func (o *sendMaxBytesOption) applyToStream(config *streamConfig) {
	config.SendMaxBytes = o.Max
}
