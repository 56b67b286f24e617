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

package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/log"
	"jinr.ru/greenlab/go-thw/pkg/record"
	"jinr.ru/greenlab/go-thw/pkg/settings"
	"jinr.ru/greenlab/go-thw/pkg/table"
)

const RestoredExtension = ".DAT"

// RestoredPath returns <stem>.DAT for an exported text file.
func RestoredPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + RestoredExtension
}

// Restore encodes the rows of an exported text file back into a .DAT file
// at output, RestoredPath(input) when empty. Values are scaled back with
// the same settings used for the export.
func (c *Converter) Restore(ctx context.Context, input, output string) (Result, error) {
	if output == "" {
		output = RestoredPath(input)
	}
	result := Result{
		Input:    input,
		Output:   output,
		Settings: c.SettingsPath(input),
	}
	if !c.opts.Force {
		if _, err := os.Stat(output); err == nil {
			log.Info("Output file %s already exists, skipping", output)
			result.Skipped = true
			return result, nil
		}
	}

	s, err := settings.Load(result.Settings, settings.DefaultPath(), c.opts.Encoding)
	if err != nil {
		return result, err
	}

	in, err := os.Open(input)
	if err != nil {
		return result, format.NewIOError("open", input, err)
	}
	defer in.Close()

	partial := output + partialSuffix
	out, err := os.Create(partial)
	if err != nil {
		return result, format.NewIOError("create", partial, err)
	}
	rows, err := c.encode(ctx, in, out, s)
	result.Rows = rows
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = format.NewIOError("close", partial, closeErr)
	}
	if err != nil {
		os.Remove(partial)
		return result, err
	}
	if err := os.Rename(partial, output); err != nil {
		os.Remove(partial)
		return result, format.NewIOError("rename", partial, err)
	}
	log.Info("Restored %s to %s: %d rows", input, output, rows)
	return result, nil
}

func (c *Converter) encode(ctx context.Context, in *os.File, out *os.File, s settings.Settings) (int, error) {
	scanner := table.NewScanner(in)
	enc := record.NewEncoder(out, c.opts.Desc)
	for scanner.Scan() {
		if enc.Rows()%c.opts.BatchSize == 0 {
			if err := ctx.Err(); err != nil {
				return enc.Rows(), errors.WithStack(err)
			}
		}
		row, err := table.ParseRow(scanner.Fields(), s, c.opts.TimeLayout, scanner.Line())
		if err != nil {
			return enc.Rows(), err
		}
		if err := enc.Encode(row); err != nil {
			return enc.Rows(), errors.WithStack(format.ErrParse{Line: scanner.Line(), What: err.Error()})
		}
	}
	if err := scanner.Err(); err != nil {
		return enc.Rows(), err
	}
	if err := enc.Close(); err != nil {
		return enc.Rows(), format.NewIOError("write", out.Name(), err)
	}
	return enc.Rows(), nil
}
