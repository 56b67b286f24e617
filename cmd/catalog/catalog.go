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

package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/pkg/catalog"
	"jinr.ru/greenlab/go-thw/pkg/config"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the cache of file time ranges",
	}
	cmd.AddCommand(NewListCommand(cfg))
	cmd.AddCommand(NewClearCommand(cfg))
	return cmd
}

func NewListCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached time ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Open(cfg.CatalogPath)
			if err != nil {
				return err
			}
			defer cat.Close()
			entries, err := cat.List()
			if err != nil {
				return err
			}
			for _, entry := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), entry)
			}
			return nil
		},
	}
	return cmd
}

func NewClearCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear [path]...",
		Short: "Remove cached time ranges, all of them when no path is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Open(cfg.CatalogPath)
			if err != nil {
				return err
			}
			defer cat.Close()
			if len(args) == 0 {
				return cat.Clear()
			}
			for _, path := range args {
				if err := cat.Delete(path); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}
