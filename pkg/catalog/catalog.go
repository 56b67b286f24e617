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

// Package catalog caches the time range of every viewed .DAT file in a
// bbolt database, keyed by absolute path. An entry is only reused while
// the file size, modification time and channel count stay the same.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"jinr.ru/greenlab/go-thw/pkg/log"
)

const (
	BucketName = "ranges"
)

var openTimeout = time.Second

// Entry is the cached time range of one file.
type Entry struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ModTime     int64  `json:"mod_time"`
	NumChannels int    `json:"num_channels"`
	First       int64  `json:"first"`
	Last        int64  `json:"last"`
	Records     int    `json:"records"`
}

// NewEntry builds an entry for the file described by info.
func NewEntry(path string, info os.FileInfo, ncol int, first, last int64, records int) Entry {
	return Entry{
		Path:        absPath(path),
		Size:        info.Size(),
		ModTime:     info.ModTime().UnixNano(),
		NumChannels: ncol,
		First:       first,
		Last:        last,
		Records:     records,
	}
}

// Matches reports whether the entry still describes the file.
func (e Entry) Matches(info os.FileInfo, ncol int) bool {
	return e.Size == info.Size() && e.ModTime == info.ModTime().UnixNano() && e.NumChannels == ncol
}

func (e Entry) String() string {
	return fmt.Sprintf("%s\t%d bytes\t%d channels\t%d records\t%s - %s",
		e.Path, e.Size, e.NumChannels, e.Records,
		time.Unix(e.First, 0).UTC().Format(time.RFC3339),
		time.Unix(e.Last, 0).UTC().Format(time.RFC3339))
}

type Catalog struct {
	DB *bbolt.DB
}

// Open opens or creates the catalog database at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "Error while opening catalog %s", path)
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Catalog{DB: db}, nil
}

func (c *Catalog) Close() error {
	return c.DB.Close()
}

// Get returns the entry for path if it still matches info and ncol.
func (c *Catalog) Get(path string, info os.FileInfo, ncol int) (Entry, bool, error) {
	key := absPath(path)
	var entry Entry
	found := false
	if err := c.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return errors.Errorf("Bucket not found: %s", BucketName)
		}
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return errors.Wrapf(err, "Error while decoding catalog entry %s", key)
		}
		found = true
		return nil
	}); err != nil {
		return Entry{}, false, err
	}
	if !found {
		log.Debug("Catalog miss: %s", key)
		return Entry{}, false, nil
	}
	if !entry.Matches(info, ncol) {
		log.Debug("Catalog entry is stale: %s", key)
		return Entry{}, false, nil
	}
	log.Debug("Catalog hit: %s", key)
	return entry, true, nil
}

// Put stores entry, replacing the previous one for the same path.
func (c *Catalog) Put(entry Entry) error {
	entry.Path = absPath(entry.Path)
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return errors.Errorf("Bucket not found: %s", BucketName)
		}
		return b.Put([]byte(entry.Path), data)
	})
}

// Delete removes the entry for path, if any.
func (c *Catalog) Delete(path string) error {
	return c.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return errors.Errorf("Bucket not found: %s", BucketName)
		}
		return b.Delete([]byte(absPath(path)))
	})
}

// List returns all entries ordered by path.
func (c *Catalog) List() ([]Entry, error) {
	var entries []Entry
	if err := c.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return errors.Errorf("Bucket not found: %s", BucketName)
		}
		return b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return errors.Wrapf(err, "Error while decoding catalog entry %s", k)
			}
			entries = append(entries, entry)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// Clear removes all entries.
func (c *Catalog) Clear() error {
	return c.DB.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BucketName)); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket([]byte(BucketName))
		return err
	})
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
