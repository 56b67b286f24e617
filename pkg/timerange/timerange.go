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

// Package timerange reports the span of time a .DAT recording covers.
package timerange

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/catalog"
	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/log"
	"jinr.ru/greenlab/go-thw/pkg/record"
	"jinr.ru/greenlab/go-thw/pkg/settings"
	"jinr.ru/greenlab/go-thw/pkg/table"
)

// chunk is the number of timestamps read between cancellation checks
const chunk = 4096

type Options struct {
	Desc format.Descriptor
	// SettingsPath, when set, is used for every input instead of
	// settings.PathFor(input)
	SettingsPath string
	Encoding     settings.Encoding
	TimeLayout   string
}

// NewOptions builds options from the config.
func NewOptions(cfg *config.Config) (Options, error) {
	enc, err := settings.EncodingByName(cfg.SettingsEncoding)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Desc:         format.Default(),
		SettingsPath: cfg.SettingsFile,
		Encoding:     enc,
		TimeLayout:   cfg.TimeLayout,
	}, nil
}

// Range is the first and the last timestamp of a recording.
type Range struct {
	Path    string `json:"path"`
	First   int64  `json:"first"`
	Last    int64  `json:"last"`
	Records int    `json:"records"`
	Cached  bool   `json:"cached,omitempty"`
}

// Name returns the file name without directories.
func (r Range) Name() string {
	return filepath.Base(r.Path)
}

func (r Range) From() time.Time {
	return time.Unix(r.First, 0).UTC()
}

func (r Range) To() time.Time {
	return time.Unix(r.Last, 0).UTC()
}

// Write prints the range as
//
//	File:	<name>
//	From:	<first>	To:	<last>
func (r Range) Write(w io.Writer, layout string) error {
	_, err := fmt.Fprintf(w, "File:\t%s\nFrom:\t%s\tTo:\t%s\n",
		r.Name(), r.From().Format(layout), r.To().Format(layout))
	return err
}

type Viewer struct {
	opts    Options
	catalog *catalog.Catalog
}

// NewViewer returns a viewer. cat may be nil, then every file is scanned.
func NewViewer(opts Options, cat *catalog.Catalog) *Viewer {
	if opts.TimeLayout == "" {
		opts.TimeLayout = table.DefaultTimeLayout
	}
	return &Viewer{opts: opts, catalog: cat}
}

func (v *Viewer) TimeLayout() string {
	return v.opts.TimeLayout
}

// SettingsPath returns the settings file used for input.
func (v *Viewer) SettingsPath(input string) string {
	if v.opts.SettingsPath != "" {
		return v.opts.SettingsPath
	}
	return settings.PathFor(input)
}

// View returns the time range of the recording at path. The channel count
// comes from its settings and decides the record size.
func (v *Viewer) View(ctx context.Context, path string) (Range, error) {
	s, err := settings.Load(v.SettingsPath(path), settings.DefaultPath(), v.opts.Encoding)
	if err != nil {
		return Range{}, err
	}
	ncol := s.NumChannels()

	var info os.FileInfo
	if v.catalog != nil {
		info, err = os.Stat(path)
		if err != nil {
			return Range{}, format.NewIOError("stat", path, err)
		}
		entry, ok, err := v.catalog.Get(path, info, ncol)
		if err != nil {
			log.Warning("Error while reading catalog: %v", err)
		} else if ok {
			return Range{Path: path, First: entry.First, Last: entry.Last, Records: entry.Records, Cached: true}, nil
		}
	}

	r, err := v.scan(ctx, path, ncol)
	if err != nil {
		return Range{}, err
	}
	if v.catalog != nil {
		if err := v.catalog.Put(catalog.NewEntry(path, info, ncol, r.First, r.Last, r.Records)); err != nil {
			log.Warning("Error while updating catalog: %v", err)
		}
	}
	return r, nil
}

func (v *Viewer) scan(ctx context.Context, path string, ncol int) (Range, error) {
	src, err := record.Open(path, v.opts.Desc)
	if err != nil {
		return Range{}, err
	}
	defer src.Close()

	r := Range{Path: path}
	reader := record.NewReader(src, ncol)
	for {
		if err := ctx.Err(); err != nil {
			return Range{}, errors.WithStack(err)
		}
		timestamps, err := reader.ReadTimestamps(chunk)
		if err != nil {
			return Range{}, err
		}
		if len(timestamps) == 0 {
			break
		}
		first, last, _ := record.Summarize(timestamps)
		if r.Records == 0 {
			r.First = first
		}
		r.Last = last
		r.Records += len(timestamps)
	}
	if r.Records == 0 {
		return Range{}, errors.WithStack(format.ErrEmptyData{Path: path})
	}
	log.Debug("Scanned %s: %d records", path, r.Records)
	return r, nil
}
