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

package record

import (
	"bufio"
	"io"
	"math"

	"github.com/google/gopacket"
	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/layers"
)

// Encoder writes rows in the .DAT layout.
//
// Close appends a trailing partial frame, a bare timestamp field, the way
// the recorder does. Decoding the output therefore returns every row that
// was encoded.
type Encoder struct {
	w           *bufio.Writer
	desc        format.Descriptor
	buf         gopacket.SerializeBuffer
	layer       layers.Record
	ncol        int
	rows        int
	last        int64
	wroteHeader bool
}

func NewEncoder(w io.Writer, desc format.Descriptor) *Encoder {
	return &Encoder{
		w:    bufio.NewWriter(w),
		desc: desc,
		buf:  gopacket.NewSerializeBuffer(),
		ncol: -1,
	}
}

// WriteHeader writes the file header. header is zero padded or cut to the
// header size. Encode writes a zero header if WriteHeader was not called.
func (e *Encoder) WriteHeader(header []byte) error {
	if e.wroteHeader {
		return errors.New("Header is already written")
	}
	padded := make([]byte, e.desc.HeaderBytes)
	copy(padded, header)
	if _, err := e.w.Write(padded); err != nil {
		return err
	}
	e.wroteHeader = true
	return nil
}

// Encode writes one record. All rows must have the same number of samples.
func (e *Encoder) Encode(row Row) error {
	if !e.wroteHeader {
		if err := e.WriteHeader(nil); err != nil {
			return err
		}
	}
	if e.ncol < 0 {
		e.ncol = len(row.Samples)
	}
	if len(row.Samples) != e.ncol {
		return errors.Errorf("Row %d has %d samples, expected %d", e.rows+1, len(row.Samples), e.ncol)
	}
	offset := row.Timestamp - e.desc.TimeOrigin
	if offset < 0 || offset > math.MaxUint32 {
		return errors.Errorf("Row %d: time %s is out of the recorder time range", e.rows+1, row.Time())
	}

	e.layer.Timestamp = uint32(offset)
	e.layer.Samples = row.Samples
	if err := e.write(); err != nil {
		return err
	}
	e.rows++
	e.last = row.Timestamp
	return nil
}

// Rows returns the number of rows encoded so far.
func (e *Encoder) Rows() int {
	return e.rows
}

func (e *Encoder) write() error {
	if err := e.buf.Clear(); err != nil {
		return err
	}
	if err := e.layer.SerializeTo(e.buf, gopacket.SerializeOptions{}); err != nil {
		return err
	}
	_, err := e.w.Write(e.buf.Bytes())
	return err
}

// Close writes the trailing partial frame and flushes. It does not close
// the underlying writer.
func (e *Encoder) Close() error {
	if !e.wroteHeader {
		if err := e.WriteHeader(nil); err != nil {
			return err
		}
	}
	if e.rows > 0 {
		e.layer.Timestamp = e.desc.Raw(e.last)
		e.layer.Samples = nil
		if err := e.write(); err != nil {
			return err
		}
	}
	return e.w.Flush()
}
