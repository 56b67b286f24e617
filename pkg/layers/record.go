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

package layers

/*
One record of a THW480K .DAT file with two channels

0000   0f 3c 7a 10 fb 2e 00 64

timestamp [0:4]   0f 3c 7a 10  seconds since 2000-01-01T00:00:00Z, unsigned
channel 1 [4:6]   fb 2e        -1234, two's complement
channel 2 [6:8]   00 64        100
*/

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/format"
)

const (
	// RecordLayerNum identifies the layer
	RecordLayerNum = 2000
)

// Record is a single timestamp + samples frame
type Record struct {
	layers.BaseLayer
	// Timestamp is the raw field, seconds since format.TimeOrigin
	Timestamp uint32
	Samples   []int16
}

var RecordLayerType = gopacket.RegisterLayerType(RecordLayerNum,
	gopacket.LayerTypeMetadata{Name: "RecordLayerType", Decoder: gopacket.DecodeFunc(decodeRecordLayer)})

// LayerType returns the type of the record layer in the layer catalog
func (r *Record) LayerType() gopacket.LayerType {
	return RecordLayerType
}

// CanDecode implements gopacket.DecodingLayer
func (r *Record) CanDecode() gopacket.LayerClass {
	return RecordLayerType
}

// NextLayerType implements gopacket.DecodingLayer. A record is the last layer.
func (r *Record) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

// Len returns the encoded size of the record
func (r *Record) Len() int {
	return format.TimestampBytes + len(r.Samples)*format.SampleBytes
}

// DecodeFromBytes decodes one frame. The channel count is taken from the
// frame length, so data must hold exactly one record.
// Samples reuses its backing array between calls.
func (r *Record) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	d := format.Default()
	if len(data) < d.TimestampBytes {
		df.SetTruncated()
		return errors.WithStack(format.ErrDecode{Field: "timestamp", Want: d.TimestampBytes, Got: len(data)})
	}
	body := len(data) - d.TimestampBytes
	if body%d.SampleBytes != 0 {
		df.SetTruncated()
		return errors.WithStack(format.ErrDecode{
			Field:  "sample",
			Offset: int64(len(data) - body%d.SampleBytes),
			Want:   d.SampleBytes,
			Got:    body % d.SampleBytes,
		})
	}

	r.Timestamp = d.ByteOrder.Uint32(data[:d.TimestampBytes])
	ncol := body / d.SampleBytes
	if cap(r.Samples) < ncol {
		r.Samples = make([]int16, ncol)
	}
	r.Samples = r.Samples[:ncol]
	for i := range r.Samples {
		offset := d.TimestampBytes + i*d.SampleBytes
		r.Samples[i] = d.DecodeSample(data[offset:])
	}

	r.BaseLayer = layers.BaseLayer{
		Contents: data,
		Payload:  nil,
	}
	return nil
}

// SerializeTo writes the record into the SerializeBuffer
func (r *Record) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	d := format.Default()
	bytes, err := b.PrependBytes(r.Len())
	if err != nil {
		return err
	}
	d.ByteOrder.PutUint32(bytes[:d.TimestampBytes], r.Timestamp)
	for i, v := range r.Samples {
		d.PutSample(bytes[d.TimestampBytes+i*d.SampleBytes:], v)
	}
	return nil
}

func decodeRecordLayer(data []byte, p gopacket.PacketBuilder) error {
	r := &Record{}
	err := r.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(r)
	return nil
}
