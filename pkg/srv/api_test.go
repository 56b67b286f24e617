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

package srv

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-thw/pkg/catalog"
	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/record"
)

func writeDat(t *testing.T, path string, timestamps ...int64) {
	var buf bytes.Buffer
	enc := record.NewEncoder(&buf, format.Default())
	for _, ts := range timestamps {
		require.NoError(t, enc.Encode(record.Row{Timestamp: format.TimeOrigin + ts}))
	}
	require.NoError(t, enc.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func newTestServer(t *testing.T) *httptest.Server {
	dir := t.TempDir()
	cat, err := catalog.Open(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	s, err := NewApiServer(context.Background(), config.NewConfig(filepath.Join(dir, "config")), cat)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHandleRange(t *testing.T) {
	ts := newTestServer(t)
	dir := t.TempDir()
	writeDat(t, filepath.Join(dir, "a.DAT"), 10, 20, 30)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.dat"), []byte{0x01}, 0644))

	resp, err := http.Get(ts.URL + "/api/range?path=" + url.QueryEscape(dir))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rangeResp := &RangeResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(rangeResp))
	require.Len(t, rangeResp.Ranges, 1)
	require.Equal(t, format.TimeOrigin+10, rangeResp.Ranges[0].First)
	require.Equal(t, format.TimeOrigin+30, rangeResp.Ranges[0].Last)
	require.Len(t, rangeResp.Failed, 1)
	require.Equal(t, filepath.Join(dir, "b.dat"), rangeResp.Failed[0].Path)
	require.NotEmpty(t, rangeResp.Failed[0].Error)
}

func TestHandleRangeNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/range?path=" + url.QueryEscape(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleConvertBadBody(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/convert", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCatalog(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []catalog.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Empty(t, entries)
}
