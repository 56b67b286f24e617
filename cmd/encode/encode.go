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

package encode

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/export"
)

const (
	SettingsOptionName   = "settings"
	OutputOptionName     = "output"
	TimeLayoutOptionName = "time-layout"
	ForceOptionName      = "force"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var settingsPath, output, timeLayout string
	var force bool
	cmd := &cobra.Command{
		Use:   "encode <text-file>",
		Short: "Encode an exported text file back into a .DAT recording",
		Args:  cobra.ExactArgs(1),
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
			opts.Force = force
			result, err := export.NewConverter(opts).Restore(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}
			if result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped, %s exists. Use --%s to overwrite\n", result.Output, ForceOptionName)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %d rows\n", result.Input, result.Output, result.Rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&settingsPath, SettingsOptionName, "", "Settings file. Default: <stem>_settings.txt next to the input")
	cmd.Flags().StringVarP(&output, OutputOptionName, "o", "", "Output .DAT file. Default: <stem>.DAT")
	cmd.Flags().StringVar(&timeLayout, TimeLayoutOptionName, "", fmt.Sprintf("Go time layout of the input. Default: %s", config.DefaultTimeLayout))
	cmd.Flags().BoolVar(&force, ForceOptionName, false, "Overwrite an existing output file")
	return cmd
}
