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

package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/settings"
)

const (
	ChannelOptionName   = "channel"
	OverwriteOptionName = "overwrite"
)

const initExample = `
Write an empty settings file next to the executable
# go-thw settings init

Write settings for a two channel recording
# go-thw settings init /data/20220511_settings.txt --channel 1:℃ --channel 2:MPa
`

func NewInitCommand(cfg *config.Config) *cobra.Command {
	var channels []string
	var overwrite bool
	cmd := &cobra.Command{
		Use:     "init [path]",
		Short:   "Write a settings file",
		Example: initExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := settings.DefaultPath()
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !overwrite {
				return errors.Errorf("Settings file %s already exists. Use --%s to replace it", path, OverwriteOptionName)
			}
			parsed, err := parseChannels(channels)
			if err != nil {
				return err
			}
			enc, err := settings.EncodingByName(cfg.SettingsEncoding)
			if err != nil {
				return err
			}
			s := settings.New(parsed...)
			if err := settings.Save(path, s, enc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d channels to %s\n", s.NumChannels(), path)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&channels, ChannelOptionName, nil, "Channel as <decimals>:<unit>, repeat in channel order")
	cmd.Flags().BoolVar(&overwrite, OverwriteOptionName, false, "Replace an existing file")
	return cmd
}

func parseChannels(args []string) ([]settings.Channel, error) {
	channels := make([]settings.Channel, 0, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, ":", 2)
		decimals, err := strconv.Atoi(parts[0])
		if err != nil || decimals < 0 {
			return nil, errors.Errorf("Wrong channel %q. Must be <decimals>:<unit>", arg)
		}
		ch := settings.Channel{Decimals: decimals}
		if len(parts) == 2 {
			ch.Unit = parts[1]
		}
		channels = append(channels, ch)
	}
	return channels, nil
}
