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

// Package batch runs a driver over many input files, one after another,
// so that a broken file does not stop the others.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/log"
)

const (
	ExportFailedMessage = "未能成功导出，请检查输入文件和设定文件，或联系开发者 / Failed exporting. Please examine the input file and the settings file, or contact the developer"
	ViewFailedMessage   = "未能成功查看，请检查输入文件和设定文件，或联系开发者 / Failed viewing. Please examine the input file and the settings file, or contact the developer"
)

// Discover expands the inputs into a file list. Files are taken as they
// are. Directories contribute their regular files whose extension equals
// ext ignoring case, sorted by name. Subdirectories are not descended.
func Discover(inputs []string, ext string) ([]string, error) {
	var files []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, format.NewIOError("stat", input, err)
		}
		if !info.IsDir() {
			files = append(files, input)
			continue
		}
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, format.NewIOError("list", input, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				continue
			}
			found = append(found, filepath.Join(input, entry.Name()))
		}
		sort.Strings(found)
		log.Debug("Found %d %s files in %s", len(found), ext, input)
		files = append(files, found...)
	}
	return files, nil
}

// Summary is the outcome of a batch.
type Summary struct {
	Succeeded []string
	Failed    []string
	errs      error
}

// Err returns the per-file errors combined, or nil.
func (s Summary) Err() error {
	return s.errs
}

func (s Summary) String() string {
	return fmt.Sprintf("%d succeeded, %d failed", len(s.Succeeded), len(s.Failed))
}

// Func processes one file.
type Func func(ctx context.Context, path string) error

// Runner reports per-file failures to Out with Message.
type Runner struct {
	Out     io.Writer
	Message string
}

// Run calls fn for every file in order. Errors of the data kinds
// (format.IsDataError) are reported, collected in the summary, and the
// batch goes on. Any other error, cancellation included, stops the batch
// and is returned.
func (r Runner) Run(ctx context.Context, files []string, fn Func) (Summary, error) {
	var summary Summary
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, errors.WithStack(err)
		}
		err := fn(ctx, path)
		if err == nil {
			summary.Succeeded = append(summary.Succeeded, path)
			continue
		}
		if !format.IsDataError(err) {
			return summary, errors.Wrapf(err, "Error while processing %s", path)
		}
		log.Error("%s: %v", path, err)
		r.report(err)
		summary.Failed = append(summary.Failed, path)
		summary.errs = multierr.Append(summary.errs, err)
	}
	return summary, nil
}

func (r Runner) report(err error) {
	if r.Out == nil {
		return
	}
	fmt.Fprintln(r.Out, r.Message)
	fmt.Fprintf(r.Out, "%+v\n", err)
}
