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
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/srv"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
)

// NewCommand groups the API client commands. Paths are paths on the server.
func NewCommand(cfg *config.Config) *cobra.Command {
	var address string
	var port int
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Run commands on an API server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if parent := cmd.Root(); parent.PersistentPreRunE != nil {
				if err := parent.PersistentPreRunE(cmd, args); err != nil {
					return err
				}
			}
			if address != "" {
				cfg.ApiConfig.Address = address
			}
			if port != 0 {
				cfg.ApiConfig.Port = port
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("API server address. Default: %s", config.DefaultApiAddress))
	cmd.PersistentFlags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("API server port. Default: %d", config.DefaultApiPort))
	cmd.AddCommand(NewRangeCommand(cfg))
	cmd.AddCommand(NewConvertCommand(cfg))
	cmd.AddCommand(NewCatalogCommand(cfg))
	return cmd
}

func printFailed(out io.Writer, message string, failed []srv.FileError) {
	for _, f := range failed {
		fmt.Fprintln(out, message)
		fmt.Fprintf(out, "%s: %s\n", f.Path, f.Error)
	}
}
