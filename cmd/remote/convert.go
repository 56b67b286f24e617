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
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/pkg/batch"
	"jinr.ru/greenlab/go-thw/pkg/command"
	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/srv"
)

const (
	OutDirOptionName = "out-dir"
	ForceOptionName  = "force"
)

func NewConvertCommand(cfg *config.Config) *cobra.Command {
	convertReq := &srv.ConvertRequest{}
	cmd := &cobra.Command{
		Use:   "convert <file-or-dir>",
		Short: "Export recordings on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			convertReq.Path = args[0]
			apiClient := command.NewApiClient(cfg)
			resp, err := apiClient.Convert(convertReq)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range resp.Results {
				if r.Skipped {
					fmt.Fprintf(out, "Skipped %s, %s exists\n", r.Input, r.Output)
					continue
				}
				fmt.Fprintf(out, "%s -> %s: %d rows\n", r.Input, r.Output, r.Rows)
			}
			printFailed(out, batch.ExportFailedMessage, resp.Failed)
			if len(resp.Failed) > 0 {
				return errors.Errorf("%d files failed", len(resp.Failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&convertReq.Settings, SettingsOptionName, "", "Settings file on the server for all inputs")
	cmd.Flags().StringVar(&convertReq.OutDir, OutDirOptionName, "", "Output directory on the server")
	cmd.Flags().BoolVar(&convertReq.Force, ForceOptionName, false, "Overwrite existing output files")
	return cmd
}
