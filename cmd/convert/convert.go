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

package convert

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/pkg/batch"
	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/export"
	"jinr.ru/greenlab/go-thw/pkg/progress"
)

const (
	SettingsOptionName   = "settings"
	ForceOptionName      = "force"
	OutDirOptionName     = "out-dir"
	TimeLayoutOptionName = "time-layout"
	BatchSizeOptionName  = "batch-size"
	QuietOptionName      = "quiet"
)

const convertExample = `
Convert one recording, settings from 20220511_settings.txt next to it
# go-thw convert /data/20220511.DAT

Convert every .DAT file of a directory with shared settings
# go-thw convert /data --settings /data/settings.txt --out-dir /export
`

func NewCommand(cfg *config.Config) *cobra.Command {
	var settingsPath, outDir, timeLayout string
	var batchSize int
	var force, quiet bool
	cmd := &cobra.Command{
		Use:     "convert <file-or-dir>...",
		Short:   "Export .DAT recordings to tab delimited text",
		Example: convertExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := export.NewOptions(cfg)
			if err != nil {
				return err
			}
			if settingsPath != "" {
				opts.SettingsPath = settingsPath
			}
			if timeLayout != "" {
				opts.TimeLayout = timeLayout
			}
			if batchSize > 0 {
				opts.BatchSize = batchSize
			}
			opts.OutDir = outDir
			opts.Force = force

			files, err := batch.Discover(args, cfg.Extension)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			reporter := progress.New("Converting", !quiet)
			converter := export.NewConverter(opts)
			converter.OnProgress(func(input string, fraction float64) {
				reporter.Update(fraction)
			})

			runner := batch.Runner{Out: out, Message: batch.ExportFailedMessage}
			summary, err := runner.Run(cmd.Context(), files, func(ctx context.Context, path string) error {
				reporter.Start(path)
				result, err := converter.Convert(ctx, path)
				if result.Skipped {
					reporter.Done(nil, fmt.Sprintf("Skipped %s, %s exists. Use --%s to overwrite", path, result.Output, ForceOptionName))
					return nil
				}
				reporter.Done(err, fmt.Sprintf("%s -> %s: %d rows", path, result.Output, result.Rows))
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Done. %s\n", summary)
			if len(summary.Failed) > 0 {
				return errors.Errorf("%d of %d files failed", len(summary.Failed), len(files))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&settingsPath, SettingsOptionName, "", "Settings file for all inputs. Default: <stem>_settings.txt next to each input")
	cmd.Flags().StringVar(&outDir, OutDirOptionName, "", "Directory for output files. Default: next to each input")
	cmd.Flags().StringVar(&timeLayout, TimeLayoutOptionName, "", fmt.Sprintf("Go time layout. Default: %s", config.DefaultTimeLayout))
	cmd.Flags().IntVar(&batchSize, BatchSizeOptionName, 0, fmt.Sprintf("Rows converted at a time. Default: %d", config.DefaultBatchSize))
	cmd.Flags().BoolVar(&force, ForceOptionName, false, "Overwrite existing output files")
	cmd.Flags().BoolVarP(&quiet, QuietOptionName, "q", false, "Do not show progress")
	return cmd
}
