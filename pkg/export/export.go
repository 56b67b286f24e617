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

// Package export converts .DAT recordings to tab delimited text.
package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/log"
	"jinr.ru/greenlab/go-thw/pkg/record"
	"jinr.ru/greenlab/go-thw/pkg/settings"
	"jinr.ru/greenlab/go-thw/pkg/table"
)

const partialSuffix = ".part"

type Options struct {
	Desc            format.Descriptor
	TimeLayout      string
	BatchSize       int
	OutputExtension string
	// OutDir, when set, receives all outputs instead of the input directories
	OutDir string
	// SettingsPath, when set, is used for every input instead of
	// settings.PathFor(input)
	SettingsPath string
	Encoding     settings.Encoding
	Force        bool
}

// NewOptions builds options from the config.
func NewOptions(cfg *config.Config) (Options, error) {
	enc, err := settings.EncodingByName(cfg.SettingsEncoding)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Desc:            format.Default(),
		TimeLayout:      cfg.TimeLayout,
		BatchSize:       cfg.BatchSize,
		OutputExtension: cfg.OutputExtension,
		SettingsPath:    cfg.SettingsFile,
		Encoding:        enc,
	}, nil
}

// Result describes one conversion.
type Result struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	Settings string `json:"settings"`
	Rows     int    `json:"rows"`
	Skipped  bool   `json:"skipped,omitempty"`
}

// ProgressFunc is called after every batch with the fraction of the input
// consumed.
type ProgressFunc func(input string, fraction float64)

type Converter struct {
	opts     Options
	progress ProgressFunc
}

func NewConverter(opts Options) *Converter {
	if opts.TimeLayout == "" {
		opts.TimeLayout = table.DefaultTimeLayout
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = config.DefaultBatchSize
	}
	if opts.OutputExtension == "" {
		opts.OutputExtension = config.DefaultOutputExtension
	}
	return &Converter{opts: opts}
}

// OnProgress sets the progress callback.
func (c *Converter) OnProgress(fn ProgressFunc) {
	c.progress = fn
}

// OutputPath returns <stem><output extension>, in OutDir if it is set.
func (c *Converter) OutputPath(input string) string {
	out := strings.TrimSuffix(input, filepath.Ext(input)) + c.opts.OutputExtension
	if c.opts.OutDir != "" {
		out = filepath.Join(c.opts.OutDir, filepath.Base(out))
	}
	return out
}

// SettingsPath returns the settings file used for input.
func (c *Converter) SettingsPath(input string) string {
	if c.opts.SettingsPath != "" {
		return c.opts.SettingsPath
	}
	return settings.PathFor(input)
}

// Convert writes the titles and every row of input to its output file.
// An existing output is left alone unless Force is set. The output is
// written under a temporary name and renamed when complete.
func (c *Converter) Convert(ctx context.Context, input string) (Result, error) {
	result := Result{
		Input:    input,
		Output:   c.OutputPath(input),
		Settings: c.SettingsPath(input),
	}
	if !c.opts.Force {
		if _, err := os.Stat(result.Output); err == nil {
			log.Info("Output file %s already exists, skipping", result.Output)
			result.Skipped = true
			return result, nil
		}
	}

	s, err := settings.Load(result.Settings, settings.DefaultPath(), c.opts.Encoding)
	if err != nil {
		return result, err
	}

	src, err := record.Open(input, c.opts.Desc)
	if err != nil {
		return result, err
	}
	defer src.Close()

	partial := result.Output + partialSuffix
	w, err := table.Create(partial)
	if err != nil {
		return result, err
	}
	rows, err := c.write(ctx, w, src, s)
	result.Rows = rows
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(partial)
		return result, err
	}
	if err := os.Rename(partial, result.Output); err != nil {
		os.Remove(partial)
		return result, format.NewIOError("rename", partial, err)
	}
	log.Info("Converted %s to %s: %d rows", input, result.Output, rows)
	return result, nil
}

func (c *Converter) write(ctx context.Context, w *table.Writer, src *record.Source, s settings.Settings) (int, error) {
	if err := w.WriteTitles(table.Titles(s)); err != nil {
		return 0, err
	}
	reader := record.NewReader(src, s.NumChannels())
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, errors.WithStack(err)
		}
		rows, err := reader.ReadRows(c.opts.BatchSize)
		for _, row := range rows {
			if werr := w.WriteRow(table.FormatRow(row, s, c.opts.TimeLayout)); werr != nil {
				return total, werr
			}
			total++
		}
		if err != nil {
			return total, err
		}
		if c.progress != nil {
			c.progress(src.Name(), src.Progress())
		}
		if len(rows) == 0 {
			return total, nil
		}
	}
}
