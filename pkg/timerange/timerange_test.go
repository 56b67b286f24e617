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

package timerange

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-thw/pkg/catalog"
	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/record"
	"jinr.ru/greenlab/go-thw/pkg/settings"
)

func writeDat(t *testing.T, path string, timestamps ...int64) {
	var buf bytes.Buffer
	enc := record.NewEncoder(&buf, format.Default())
	for _, ts := range timestamps {
		require.NoError(t, enc.Encode(record.Row{Timestamp: format.TimeOrigin + ts, Samples: []int16{1, 2, 3}}))
	}
	require.NoError(t, enc.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	require.NoError(t, settings.Save(settings.PathFor(path), settings.New(
		settings.Channel{Decimals: 1, Unit: "℃"},
		settings.Channel{Decimals: 1, Unit: "℃"},
		settings.Channel{Decimals: 0, Unit: "kPa"},
	), settings.UTF8))
}

func TestView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "20220511.DAT")
	writeDat(t, path, 100, 500, 300)

	v := NewViewer(Options{Desc: format.Default()}, nil)
	r, err := v.View(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, format.TimeOrigin+100, r.First)
	require.Equal(t, format.TimeOrigin+300, r.Last)
	require.Equal(t, 3, r.Records)
	require.False(t, r.Cached)

	var out bytes.Buffer
	require.NoError(t, r.Write(&out, v.TimeLayout()))
	require.Equal(t, "File:\t20220511.DAT\nFrom:\t2000/01/01 00:01:40\tTo:\t2000/01/01 00:05:00\n", out.String())
}

func TestViewManyChunks(t *testing.T) {
	timestamps := make([]int64, chunk+10)
	for i := range timestamps {
		timestamps[i] = int64(i)
	}
	path := filepath.Join(t.TempDir(), "long.DAT")
	writeDat(t, path, timestamps...)

	r, err := NewViewer(Options{Desc: format.Default()}, nil).View(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, format.TimeOrigin, r.First)
	require.Equal(t, format.TimeOrigin+int64(chunk+9), r.Last)
	require.Equal(t, chunk+10, r.Records)
}

func TestViewEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.DAT")
	writeDat(t, path)

	_, err := NewViewer(Options{Desc: format.Default()}, nil).View(context.Background(), path)
	var emptyErr format.ErrEmptyData
	require.True(t, errors.As(err, &emptyErr))
	require.Equal(t, path, emptyErr.Path)
}

func TestViewUsesCatalog(t *testing.T) {
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	path := filepath.Join(t.TempDir(), "a.DAT")
	writeDat(t, path, 10, 20)
	v := NewViewer(Options{Desc: format.Default()}, cat)

	r, err := v.View(context.Background(), path)
	require.NoError(t, err)
	require.False(t, r.Cached)

	r, err = v.View(context.Background(), path)
	require.NoError(t, err)
	require.True(t, r.Cached)
	require.Equal(t, format.TimeOrigin+20, r.Last)

	// a longer recording has a different size
	writeDat(t, path, 10, 20, 30)
	r, err = v.View(context.Background(), path)
	require.NoError(t, err)
	require.False(t, r.Cached)
	require.Equal(t, format.TimeOrigin+30, r.Last)

	entries, err := cat.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 3, entries[0].Records)
}

func TestViewCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.DAT")
	writeDat(t, path, 10, 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewViewer(Options{Desc: format.Default()}, nil).View(ctx, path)
	require.True(t, errors.Is(err, context.Canceled))
}
