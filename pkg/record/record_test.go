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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-thw/pkg/format"
)

// datFile builds header + k records of ncol channels. Record i has raw
// timestamp 60*i and samples i*10+j.
func datFile(k, ncol int) []byte {
	d := format.Default()
	data := []byte{0xaa, 0xbb, 0xcc}
	frame := make([]byte, d.FrameBytes(ncol))
	for i := 0; i < k; i++ {
		d.PutTimestamp(frame, d.TimeOrigin+int64(60*i))
		for j := 0; j < ncol; j++ {
			d.PutSample(frame[d.TimestampBytes+j*d.SampleBytes:], int16(i*10+j))
		}
		data = append(data, frame...)
	}
	return data
}

func newTestSource(t *testing.T, data []byte) *Source {
	src, err := NewSource(bytes.NewReader(data), int64(len(data)), format.Default())
	require.NoError(t, err)
	return src
}

func TestReadRowsDropsLastFrame(t *testing.T) {
	data := datFile(5, 2)
	require.Len(t, data, 43)

	src := newTestSource(t, data)
	require.Equal(t, []byte{0xaa, 0xbb, 0xcc}, src.Header())

	rows, err := NewReader(src, 2).ReadRows(1 << 30)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.Equal(t, format.TimeOrigin+int64(60*i), row.Timestamp)
		assert.Equal(t, []int16{int16(i * 10), int16(i*10 + 1)}, row.Samples)
	}
	assert.Equal(t, "2000-01-01T00:03:00Z", rows[3].Time().Format("2006-01-02T15:04:05Z07:00"))
	assert.True(t, src.AtEnd())
	assert.Equal(t, 1.0, src.Progress())
}

func TestReadRowsPartialTrailingFrame(t *testing.T) {
	data := append(datFile(3, 2), 0x00, 0x00, 0x01)
	rows, err := NewReader(newTestSource(t, data), 2).ReadRows(100)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestReadRowsBatches(t *testing.T) {
	src := newTestSource(t, datFile(5, 2))
	reader := NewReader(src, 2)

	var sizes []int
	for {
		rows, err := reader.ReadRows(2)
		require.NoError(t, err)
		if len(rows) == 0 {
			break
		}
		sizes = append(sizes, len(rows))
	}
	require.Equal(t, []int{2, 2}, sizes)

	rows, err := reader.ReadRows(2)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestReadRowsZeroMax(t *testing.T) {
	src := newTestSource(t, datFile(3, 1))
	rows, err := NewReader(src, 1).ReadRows(0)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Equal(t, int64(3), src.Offset())
}

func TestReadRowsNoChannels(t *testing.T) {
	rows, err := NewReader(newTestSource(t, datFile(4, 0)), 0).ReadRows(10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Empty(t, rows[2].Samples)
}

func TestReadRowsTruncatedMidField(t *testing.T) {
	data := append(datFile(1, 2), 0x00, 0x00, 0x00, 0x3c, 0x01)
	// the declared size promises more bytes than there are
	src, err := NewSource(bytes.NewReader(data), int64(len(data)+10), format.Default())
	require.NoError(t, err)

	rows, err := NewReader(src, 2).ReadRows(10)
	require.Len(t, rows, 1)
	var decodeErr format.ErrDecode
	require.True(t, errors.As(err, &decodeErr), "got %v", err)
	assert.Equal(t, "sample of channel 1", decodeErr.Field)
	assert.Equal(t, int64(15), decodeErr.Offset)
	assert.Equal(t, 1, decodeErr.Got)
}

func TestSourceShortHeader(t *testing.T) {
	_, err := NewSource(bytes.NewReader([]byte{0x01, 0x02}), 2, format.Default())
	var decodeErr format.ErrDecode
	require.True(t, errors.As(err, &decodeErr))
	require.Equal(t, "header", decodeErr.Field)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20220511.DAT")
	require.NoError(t, os.WriteFile(path, datFile(3, 1), 0644))

	src, err := Open(path, format.Default())
	require.NoError(t, err)
	require.Equal(t, int64(3+3*6), src.Size())
	require.Equal(t, path, src.Name())
	require.InDelta(t, 3.0/21.0, src.Progress(), 1e-9)

	rows, err := NewReader(src, 1).ReadRows(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	_, err = Open(filepath.Join(dir, "missing.DAT"), format.Default())
	var ioErr format.ErrIO
	require.True(t, errors.As(err, &ioErr))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadTimestampsMatchesReadRows(t *testing.T) {
	data := datFile(6, 3)

	tsSrc := newTestSource(t, data)
	tsReader := NewReader(tsSrc, 3)
	rowSrc := newTestSource(t, data)
	rowReader := NewReader(rowSrc, 3)

	for i := 0; i < 5; i++ {
		timestamps, err := tsReader.ReadTimestamps(1)
		require.NoError(t, err)
		require.Len(t, timestamps, 1)
		rows, err := rowReader.ReadRows(1)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		require.Equal(t, int64(3+(i+1)*(4+3*2)), tsSrc.Offset())
		require.Equal(t, rowSrc.Offset(), tsSrc.Offset())
		require.Equal(t, rows[0].Timestamp, timestamps[0])
	}

	timestamps, err := tsReader.ReadTimestamps(1)
	require.NoError(t, err)
	require.Empty(t, timestamps)
	require.True(t, tsSrc.AtEnd())
}

func TestReadTimestampsAll(t *testing.T) {
	timestamps, err := NewReader(newTestSource(t, datFile(5, 2)), 2).ReadTimestamps(1 << 30)
	require.NoError(t, err)
	require.Equal(t, []int64{
		format.TimeOrigin,
		format.TimeOrigin + 60,
		format.TimeOrigin + 120,
		format.TimeOrigin + 180,
	}, timestamps)
}

func TestSummarize(t *testing.T) {
	first, last, err := Summarize([]int64{100, 500, 300})
	require.NoError(t, err)
	require.Equal(t, int64(100), first)
	require.Equal(t, int64(300), last)

	_, _, err = Summarize(nil)
	var emptyErr format.ErrEmptyData
	require.True(t, errors.As(err, &emptyErr))
}

func TestEncoderRoundTrip(t *testing.T) {
	rows := []Row{
		{Timestamp: format.TimeOrigin + 10, Samples: []int16{-1234, 7}},
		{Timestamp: format.TimeOrigin + 20, Samples: []int16{32767, -32768}},
		{Timestamp: format.TimeOrigin + 30, Samples: []int16{0, 1}},
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf, format.Default())
	require.NoError(t, enc.WriteHeader([]byte{0x01, 0x02, 0x03}))
	for _, row := range rows {
		require.NoError(t, enc.Encode(row))
	}
	require.NoError(t, enc.Close())
	require.Equal(t, 3, enc.Rows())
	require.Equal(t, 3+3*8+4, buf.Len())

	decoded, err := NewReader(newTestSource(t, buf.Bytes()), 2).ReadRows(100)
	require.NoError(t, err)
	require.Equal(t, rows, decoded)
}

func TestEncoderErrors(t *testing.T) {
	enc := NewEncoder(&bytes.Buffer{}, format.Default())
	require.NoError(t, enc.Encode(Row{Timestamp: format.TimeOrigin, Samples: []int16{1}}))
	require.Error(t, enc.Encode(Row{Timestamp: format.TimeOrigin, Samples: []int16{1, 2}}))
	require.Error(t, enc.Encode(Row{Timestamp: format.TimeOrigin - 1, Samples: []int16{1}}))
	require.Error(t, enc.WriteHeader(nil))
}
