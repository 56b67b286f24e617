/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package format describes the layout of the .DAT files written by the
// THW480K paperless recorder.
//
//	[3 bytes header, ignored]
//	repeated records:
//	  [4 bytes unsigned timestamp, seconds since 2000-01-01T00:00:00Z]
//	  [ncol x 2 bytes signed sample value]
//
// All integers are big endian. The number of channels is not stored in the
// file, it comes from the channel settings.
package format

import (
	"encoding/binary"
	"time"
)

const (
	HeaderBytes    = 3
	TimestampBytes = 4
	SampleBytes    = 2
)

// TimeOrigin is the recorder epoch, 2000-01-01T00:00:00Z, in unix seconds.
var TimeOrigin = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

// Descriptor holds the fixed frame layout.
type Descriptor struct {
	HeaderBytes    int
	TimestampBytes int
	SampleBytes    int
	TimeOrigin     int64
	ByteOrder      binary.ByteOrder
}

var defaultDescriptor = Descriptor{
	HeaderBytes:    HeaderBytes,
	TimestampBytes: TimestampBytes,
	SampleBytes:    SampleBytes,
	TimeOrigin:     TimeOrigin,
	ByteOrder:      binary.BigEndian,
}

// Default returns the THW480K layout.
func Default() Descriptor {
	return defaultDescriptor
}

// FrameBytes returns the size of one record for ncol channels.
func (d Descriptor) FrameBytes(ncol int) int {
	return d.TimestampBytes + ncol*d.SampleBytes
}

// Time converts a raw timestamp field to unix seconds.
func (d Descriptor) Time(raw uint32) int64 {
	return int64(raw) + d.TimeOrigin
}

// Raw converts unix seconds back to the timestamp field value.
func (d Descriptor) Raw(unix int64) uint32 {
	return uint32(unix - d.TimeOrigin)
}

// DecodeTimestamp decodes a timestamp field. b must hold TimestampBytes bytes.
func (d Descriptor) DecodeTimestamp(b []byte) int64 {
	return d.Time(d.ByteOrder.Uint32(b[:d.TimestampBytes]))
}

// DecodeSample decodes one two's complement sample field.
func (d Descriptor) DecodeSample(b []byte) int16 {
	return int16(d.ByteOrder.Uint16(b[:d.SampleBytes]))
}

// PutTimestamp encodes unix seconds into b.
func (d Descriptor) PutTimestamp(b []byte, unix int64) {
	d.ByteOrder.PutUint32(b[:d.TimestampBytes], d.Raw(unix))
}

// PutSample encodes one sample into b.
func (d Descriptor) PutSample(b []byte, v int16) {
	d.ByteOrder.PutUint16(b[:d.SampleBytes], uint16(v))
}
