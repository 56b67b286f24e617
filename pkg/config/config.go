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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-thw/pkg/settings"
)

type ApiConfig struct {
	Address string `json:"address,omitempty"`
	Port    int    `json:"port,omitempty"`
}

type Config struct {
	LogLevel         string `json:"log_level,omitempty"`
	TimeLayout       string `json:"time_layout,omitempty"`
	BatchSize        int    `json:"batch_size,omitempty"`
	Extension        string `json:"extension,omitempty"`
	OutputExtension  string `json:"output_extension,omitempty"`
	// SettingsFile, when set, is used for every input instead of the
	// <stem>_settings.txt next to it
	SettingsFile     string `json:"settings_file,omitempty"`
	SettingsEncoding string `json:"settings_encoding,omitempty"`
	CatalogPath      string `json:"catalog_path,omitempty"`
	*ApiConfig       `json:"api,omitempty"`
	filepath         string
}

// Path returns the file the config is loaded from and persisted to.
func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file over the current values. Fields missing in
// the file keep their values.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "Error while parsing config %s", c.filepath)
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return errors.Errorf("extension must start with a dot, got %q", c.Extension)
	}
	if _, err := settings.EncodingByName(c.SettingsEncoding); err != nil {
		return err
	}
	return nil
}

// ApiURL returns the base URL of the HTTP API.
func (c *Config) ApiURL() string {
	return fmt.Sprintf("http://%s:%d", c.ApiConfig.Address, c.ApiConfig.Port)
}

func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ConfigFile)
}

func DefaultCatalogPath() string {
	return filepath.Join(homeDir(), CatalogFile)
}

func NewDefaultConfig() *Config {
	return NewConfig(DefaultConfigPath())
}

// NewConfig returns the default config bound to path.
func NewConfig(path string) *Config {
	return &Config{
		LogLevel:         DefaultLogLevel,
		TimeLayout:       DefaultTimeLayout,
		BatchSize:        DefaultBatchSize,
		Extension:        DefaultExtension,
		OutputExtension:  DefaultOutputExtension,
		SettingsEncoding: DefaultSettingsEncoding,
		CatalogPath:      DefaultCatalogPath(),
		ApiConfig: &ApiConfig{
			Address: DefaultApiAddress,
			Port:    DefaultApiPort,
		},
		filepath: path,
	}
}
