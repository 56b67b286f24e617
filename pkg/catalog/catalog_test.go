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

package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	c, err := Open(filepath.Join(t.TempDir(), "db", "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func writeFile(t *testing.T, path string, size int) os.FileInfo {
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}

func TestGetPut(t *testing.T) {
	c := openTestCatalog(t)
	path := filepath.Join(t.TempDir(), "a.DAT")
	info := writeFile(t, path, 43)

	_, ok, err := c.Get(path, info, 2)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Put(NewEntry(path, info, 2, 100, 300, 4)))

	entry, ok, err := c.Get(path, info, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(100), entry.First)
	require.Equal(t, int64(300), entry.Last)
	require.Equal(t, 4, entry.Records)
	require.True(t, filepath.IsAbs(entry.Path))
}

func TestGetInvalidates(t *testing.T) {
	c := openTestCatalog(t)
	path := filepath.Join(t.TempDir(), "a.DAT")
	info := writeFile(t, path, 43)
	require.NoError(t, c.Put(NewEntry(path, info, 2, 100, 300, 4)))

	// channel count changed
	_, ok, err := c.Get(path, info, 3)
	require.NoError(t, err)
	require.False(t, ok)

	// file grew
	info = writeFile(t, path, 51)
	_, ok, err = c.Get(path, info, 2)
	require.NoError(t, err)
	require.False(t, ok)

	// same size, touched
	require.NoError(t, c.Put(NewEntry(path, info, 2, 100, 400, 5)))
	later := info.ModTime().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	info, err = os.Stat(path)
	require.NoError(t, err)
	_, ok, err = c.Get(path, info, 2)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListDeleteClear(t *testing.T) {
	c := openTestCatalog(t)
	dir := t.TempDir()
	for _, name := range []string{"b.DAT", "a.DAT", "c.DAT"} {
		path := filepath.Join(dir, name)
		require.NoError(t, c.Put(NewEntry(path, writeFile(t, path, 11), 1, 0, 0, 1)))
	}

	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, filepath.Join(dir, "a.DAT"), entries[0].Path)
	require.Equal(t, filepath.Join(dir, "c.DAT"), entries[2].Path)

	require.NoError(t, c.Delete(filepath.Join(dir, "b.DAT")))
	entries, err = c.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, c.Clear())
	entries, err = c.List()
	require.NoError(t, err)
	require.Empty(t, entries)
}
