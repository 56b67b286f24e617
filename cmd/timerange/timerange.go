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
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/pkg/batch"
	"jinr.ru/greenlab/go-thw/pkg/catalog"
	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/log"
	"jinr.ru/greenlab/go-thw/pkg/progress"
	"jinr.ru/greenlab/go-thw/pkg/timerange"
)

const (
	SettingsOptionName   = "settings"
	NoCatalogOptionName  = "no-catalog"
	TimeLayoutOptionName = "time-layout"
	ProgressOptionName   = "progress"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var settingsPath, timeLayout string
	var noCatalog, showProgress bool
	cmd := &cobra.Command{
		Use:   "range <file-or-dir>...",
		Short: "Show the time span covered by .DAT recordings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := timerange.NewOptions(cfg)
			if err != nil {
				return err
			}
			if settingsPath != "" {
				opts.SettingsPath = settingsPath
			}
			if timeLayout != "" {
				opts.TimeLayout = timeLayout
			}

			var cat *catalog.Catalog
			if !noCatalog {
				cat, err = catalog.Open(cfg.CatalogPath)
				if err != nil {
					log.Warning("Catalog is not available, scanning every file: %v", err)
					cat = nil
				} else {
					defer cat.Close()
				}
			}

			files, err := batch.Discover(args, cfg.Extension)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			viewer := timerange.NewViewer(opts, cat)
			reporter := progress.New("Viewing", showProgress)
			runner := batch.Runner{Out: out, Message: batch.ViewFailedMessage}
			summary, err := runner.Run(cmd.Context(), files, func(ctx context.Context, path string) error {
				reporter.Start(path)
				r, err := viewer.View(ctx, path)
				reporter.Done(err, path)
				if err != nil {
					return err
				}
				return r.Write(out, viewer.TimeLayout())
			})
			if err != nil {
				return err
			}
			if len(summary.Failed) > 0 {
				return errors.Errorf("%d of %d files failed", len(summary.Failed), len(files))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&settingsPath, SettingsOptionName, "", "Settings file for all inputs. Default: <stem>_settings.txt next to each input")
	cmd.Flags().StringVar(&timeLayout, TimeLayoutOptionName, "", fmt.Sprintf("Go time layout. Default: %s", config.DefaultTimeLayout))
	cmd.Flags().BoolVar(&noCatalog, NoCatalogOptionName, false, "Scan every file instead of using cached ranges")
	cmd.Flags().BoolVar(&showProgress, ProgressOptionName, false, "Show a spinner while scanning")
	return cmd
}
