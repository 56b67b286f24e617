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

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/cmd/catalog"
	"jinr.ru/greenlab/go-thw/cmd/completion"
	"jinr.ru/greenlab/go-thw/cmd/config"
	"jinr.ru/greenlab/go-thw/cmd/convert"
	"jinr.ru/greenlab/go-thw/cmd/encode"
	"jinr.ru/greenlab/go-thw/cmd/remote"
	"jinr.ru/greenlab/go-thw/cmd/serve"
	"jinr.ru/greenlab/go-thw/cmd/settings"
	"jinr.ru/greenlab/go-thw/cmd/timerange"
	pkgconfig "jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel string
	cfg := pkgconfig.NewDefaultConfig()
	cfgErr := cfg.Load()
	if os.IsNotExist(cfgErr) {
		cfgErr = nil
	}
	cmd := &cobra.Command{
		Use:           "go-thw",
		Short:         "Tool to work with THW480K paperless recorder data files",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if err := log.Init(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
				return err
			}
			if cfgErr != nil {
				log.Warning("Error while loading config %s, using defaults: %v", cfg.Path(), cfgErr)
			}
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(convert.NewCommand(cfg))
	cmd.AddCommand(timerange.NewCommand(cfg))
	cmd.AddCommand(encode.NewCommand(cfg))
	cmd.AddCommand(settings.NewCommand(cfg))
	cmd.AddCommand(catalog.NewCommand(cfg))
	cmd.AddCommand(serve.NewCommand(cfg))
	cmd.AddCommand(remote.NewCommand(cfg))
	cmd.AddCommand(config.NewCommand(cfg))
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	return cmd
}
