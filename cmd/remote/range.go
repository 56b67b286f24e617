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

package remote

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/pkg/batch"
	"jinr.ru/greenlab/go-thw/pkg/command"
	"jinr.ru/greenlab/go-thw/pkg/config"
)

const SettingsOptionName = "settings"

func NewRangeCommand(cfg *config.Config) *cobra.Command {
	var settingsPath string
	cmd := &cobra.Command{
		Use:   "range <file-or-dir>",
		Short: "Show time ranges of recordings on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			resp, err := apiClient.Range(args[0], settingsPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range resp.Ranges {
				if err := r.Write(out, cfg.TimeLayout); err != nil {
					return err
				}
			}
			printFailed(out, batch.ViewFailedMessage, resp.Failed)
			if len(resp.Failed) > 0 {
				return errors.Errorf("%d files failed", len(resp.Failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&settingsPath, SettingsOptionName, "", "Settings file on the server for all inputs")
	return cmd
}
