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

package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/pkg/catalog"
	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/log"
	"jinr.ru/greenlab/go-thw/pkg/srv"
)

const (
	AddressOptionName   = "address"
	PortOptionName      = "port"
	NoCatalogOptionName = "no-catalog"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var address string
	var port int
	var noCatalog bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.ApiConfig.Address = address
			}
			if port != 0 {
				cfg.ApiConfig.Port = port
			}
			var cat *catalog.Catalog
			if !noCatalog {
				var err error
				cat, err = catalog.Open(cfg.CatalogPath)
				if err != nil {
					log.Warning("Catalog is not available, scanning every file: %v", err)
					cat = nil
				} else {
					defer cat.Close()
				}
			}
			server, err := srv.NewApiServer(cmd.Context(), cfg, cat)
			if err != nil {
				return err
			}
			return server.Run()
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultApiAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Port number to bind. E.g. %d", config.DefaultApiPort))
	cmd.Flags().BoolVar(&noCatalog, NoCatalogOptionName, false, "Do not cache time ranges")
	return cmd
}
