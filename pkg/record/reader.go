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

// Package record decodes and encodes the timestamped sample records of a
// .DAT file.
//
// A record is read whole, then the reader checks whether the offset
// reached the file size. If it did, the record is dropped and the stream
// is over. The recorder leaves a partially written frame at the end of
// its files and this rule throws it away. A file that ends exactly on a
// record boundary therefore yields one record fewer than it holds.
package record

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/layers"
)

// Row is one decoded record. Samples are raw, unscaled values.
type Row struct {
	// Timestamp is in unix seconds
	Timestamp int64
	Samples   []int16
}

// Time returns the timestamp in UTC.
func (r Row) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// Reader decodes records of ncol channels from a Source it borrows.
// Closing the source stays with whoever opened it.
type Reader struct {
	src   *Source
	ncol  int
	frame []byte
	layer layers.Record
}

func NewReader(src *Source, ncol int) *Reader {
	return &Reader{
		src:   src,
		ncol:  ncol,
		frame: make([]byte, src.desc.FrameBytes(ncol)),
	}
}

// NumChannels returns the channel count the reader decodes with.
func (r *Reader) NumChannels() int {
	return r.ncol
}

// ReadRows decodes up to maxRows records. It returns fewer when the end of
// the stream is reached and an empty slice once the stream is exhausted.
func (r *Reader) ReadRows(maxRows int) ([]Row, error) {
	rows := make([]Row, 0, capHint(maxRows))
	for i := 0; i < maxRows; i++ {
		n, err := r.src.read(r.frame)
		if err != nil {
			return rows, r.endOrError(err, n)
		}
		if r.src.AtEnd() {
			return rows, nil
		}
		if err := r.layer.DecodeFromBytes(r.frame, gopacket.NilDecodeFeedback); err != nil {
			return rows, err
		}
		samples := make([]int16, len(r.layer.Samples))
		copy(samples, r.layer.Samples)
		rows = append(rows, Row{
			Timestamp: r.src.desc.Time(r.layer.Timestamp),
			Samples:   samples,
		})
	}
	return rows, nil
}

// endOrError turns a failed read, of which got bytes arrived, into either
// the normal end of stream (nil) or an error.
func (r *Reader) endOrError(err error, got int) error {
	if !isShortRead(err) {
		return format.NewIOError("read", r.src.Name(), err)
	}
	if r.src.AtEnd() {
		return nil
	}
	start := r.src.offset - int64(got)
	desc := r.src.desc
	if got < desc.TimestampBytes {
		return errors.WithStack(format.ErrDecode{
			Field:  "timestamp",
			Offset: start,
			Want:   desc.TimestampBytes,
			Got:    got,
		})
	}
	channel := (got - desc.TimestampBytes) / desc.SampleBytes
	return errors.WithStack(format.ErrDecode{
		Field:  fmt.Sprintf("sample of channel %d", channel+1),
		Offset: start + int64(desc.TimestampBytes+channel*desc.SampleBytes),
		Want:   desc.SampleBytes,
		Got:    (got - desc.TimestampBytes) % desc.SampleBytes,
	})
}

func capHint(maxRows int) int {
	if maxRows < 0 {
		return 0
	}
	if maxRows > 4096 {
		return 4096
	}
	return maxRows
}
