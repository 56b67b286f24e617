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

// Package settings holds the per-channel scaling and units of a recording.
//
// The settings file is a small human-edited table, tab or space delimited:
//
//	通道名	小数位数	单位
//	CH0	1	℃
//	CH1	2	MPa
//
// The first line is a label and is ignored. Every other non-empty line
// describes one channel in file order: a name (not checked), the number of
// decimal places and the unit.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/log"
)

const (
	HeaderLine      = "通道名\t小数位数\t单位"
	DefaultFileName = "DataReaderDefaultSettings.txt"
	Delimiter       = "\t"
	PairedSuffix    = "_settings.txt"
)

// Channel describes how one channel is displayed
type Channel struct {
	Decimals int
	Unit     string
}

// Settings is the ordered channel table. It is not modified after construction.
type Settings struct {
	decimals []int
	units    []string
}

// New builds Settings from channels in order.
func New(channels ...Channel) Settings {
	s := Settings{
		decimals: make([]int, len(channels)),
		units:    make([]string, len(channels)),
	}
	for i, ch := range channels {
		s.decimals[i] = ch.Decimals
		s.units[i] = ch.Unit
	}
	return s
}

// NumChannels is the number of samples in every record.
func (s Settings) NumChannels() int {
	return len(s.decimals)
}

// Decimals returns the number of decimal places of channel i.
func (s Settings) Decimals(i int) int {
	return s.decimals[i]
}

// Unit returns the display unit of channel i.
func (s Settings) Unit(i int) string {
	return s.units[i]
}

// Channels returns a copy of the channel table.
func (s Settings) Channels() []Channel {
	channels := make([]Channel, len(s.decimals))
	for i := range s.decimals {
		channels[i] = Channel{Decimals: s.decimals[i], Unit: s.units[i]}
	}
	return channels
}

// Equal reports whether both tables describe the same channels.
func (s Settings) Equal(other Settings) bool {
	if s.NumChannels() != other.NumChannels() {
		return false
	}
	for i := range s.decimals {
		if s.decimals[i] != other.decimals[i] || s.units[i] != other.units[i] {
			return false
		}
	}
	return true
}

func normalize(text string) string {
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n") {
		text = strings.ReplaceAll(text, "\n\n", "\n")
	}
	return strings.ReplaceAll(text, " ", Delimiter)
}

// Parse reads the settings table from text.
func Parse(text string) (Settings, error) {
	lines := strings.Split(normalize(text), "\n")
	var channels []Channel
	for i, line := range lines[1:] {
		if line == "" {
			continue
		}
		lineNum := i + 2
		fields := strings.Split(line, Delimiter)
		if len(fields) < 3 {
			return Settings{}, errors.WithStack(format.ErrParse{
				Line: lineNum,
				What: fmt.Sprintf("expected 3 fields (name, decimal places, unit), got %d: %q", len(fields), line),
			})
		}
		decimals, err := strconv.Atoi(fields[1])
		if err != nil {
			return Settings{}, errors.WithStack(format.ErrParse{
				Line: lineNum,
				What: fmt.Sprintf("decimal places of %s is not an integer: %q", fields[0], fields[1]),
			})
		}
		if decimals < 0 {
			return Settings{}, errors.WithStack(format.ErrParse{
				Line: lineNum,
				What: fmt.Sprintf("decimal places of %s is negative: %d", fields[0], decimals),
			})
		}
		channels = append(channels, Channel{Decimals: decimals, Unit: fields[2]})
	}
	return New(channels...), nil
}

// Serialize renders s in the settings file format. Channel names are CH0, CH1, ...
func Serialize(s Settings) string {
	var b strings.Builder
	b.WriteString(HeaderLine)
	b.WriteString("\n")
	for i := 0; i < s.NumChannels(); i++ {
		b.WriteString(strings.Join([]string{
			fmt.Sprintf("CH%d", i),
			strconv.Itoa(s.decimals[i]),
			s.units[i],
		}, Delimiter))
		b.WriteString("\n")
	}
	return b.String()
}

// String implements fmt.Stringer
func (s Settings) String() string {
	return Serialize(s)
}

// DefaultPath returns the settings file kept next to the executable.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

// PathFor returns the settings file paired with a .DAT file:
// <dir>/<stem>_settings.txt.
func PathFor(datPath string) string {
	return strings.TrimSuffix(datPath, filepath.Ext(datPath)) + PairedSuffix
}

// Load reads settings from path, falling back to defaultPath when path is
// empty. A missing file is not an error: an empty table is saved there so
// that it can be edited, and returned.
func Load(path, defaultPath string, enc Encoding) (Settings, error) {
	if path == "" {
		path = defaultPath
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("Settings file not found, writing default settings to %s", path)
		s := New()
		if err := Save(path, s, enc); err != nil {
			return Settings{}, err
		}
		return s, nil
	}
	if err != nil {
		return Settings{}, format.NewIOError("read settings", path, err)
	}
	text, err := enc.decode(data)
	if err != nil {
		return Settings{}, errors.WithStack(format.ErrParse{What: fmt.Sprintf("%s: %v", path, err)})
	}
	s, err := Parse(text)
	if err != nil {
		return Settings{}, errors.Wrapf(err, "settings file %s", path)
	}
	log.Debug("Loaded %d channels from %s", s.NumChannels(), path)
	return s, nil
}

// Save writes s to path, creating the parent directory if needed.
func Save(path string, s Settings, enc Encoding) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return format.NewIOError("create directory", dir, err)
	}
	data, err := enc.encode(Serialize(s))
	if err != nil {
		return format.NewIOError("encode settings", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return format.NewIOError("write settings", path, err)
	}
	return nil
}
