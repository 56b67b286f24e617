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
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-thw/pkg/format"
)

const recorderSettings = "通道名 小数位数 单位\r\nCH0\t1\t℃\r\n\r\nCH1  2  MPa\nCH2\t0\tr/min\n"

func TestParse(t *testing.T) {
	s, err := Parse(recorderSettings)
	require.NoError(t, err)
	require.Equal(t, 3, s.NumChannels())
	assert.Equal(t, []Channel{
		{Decimals: 1, Unit: "℃"},
		{Decimals: 2, Unit: "MPa"},
		{Decimals: 0, Unit: "r/min"},
	}, s.Channels())
	assert.Equal(t, 2, s.Decimals(1))
	assert.Equal(t, "MPa", s.Unit(1))
}

func TestParseIgnoresChannelNames(t *testing.T) {
	s, err := Parse("label\nTemperature 1 C\nPressure\t3\tbar\textra\n")
	require.NoError(t, err)
	assert.Equal(t, []Channel{{1, "C"}, {3, "bar"}}, s.Channels())
}

func TestParseHeaderOnly(t *testing.T) {
	for _, text := range []string{"", "header", "header\n", "header\r\n\r\n"} {
		s, err := Parse(text)
		require.NoError(t, err, text)
		require.Equal(t, 0, s.NumChannels(), text)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"not an integer", "header\nCH0\tx\tV\n", 2},
		{"too few fields", "header\nCH0\t1\tV\nCH1\t2\n", 3},
		{"negative", "header\nCH0\t-1\tV\n", 2},
		{"leading space shifts fields", "header\n CH0 1 V\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			var parseErr format.ErrParse
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, tt.line, parseErr.Line)
		})
	}
}

func TestSerialize(t *testing.T) {
	s := New(Channel{1, "℃"}, Channel{0, "r/min"})
	assert.Equal(t, HeaderLine+"\nCH0\t1\t℃\nCH1\t0\tr/min\n", Serialize(s))
	assert.Equal(t, HeaderLine+"\n", Serialize(New()))
}

func TestParseSerializeRoundTrip(t *testing.T) {
	for _, text := range []string{
		recorderSettings,
		"x\nA 0 V\nB 5 mA\n",
		"header\n",
	} {
		first, err := Parse(text)
		require.NoError(t, err)
		second, err := Parse(Serialize(first))
		require.NoError(t, err)
		require.True(t, first.Equal(second), "%q", text)
	}
}

func TestLoadSeedsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run_settings.txt")

	s, err := Load(path, "", UTF8)
	require.NoError(t, err)
	require.Equal(t, 0, s.NumChannels())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, HeaderLine+"\n", string(data))
}

func TestLoadUsesDefaultPath(t *testing.T) {
	defaultPath := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(defaultPath, []byte("h\nCH0 2 V\n"), 0644))

	s, err := Load("", defaultPath, UTF8)
	require.NoError(t, err)
	require.Equal(t, []Channel{{2, "V"}}, s.Channels())
}

func TestLoadDropsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.txt")
	require.NoError(t, os.WriteFile(path, []byte("\xb5\xc0\nCH0\t1\tV\xff\n"), 0644))

	s, err := Load(path, "", UTF8)
	require.NoError(t, err)
	require.Equal(t, []Channel{{1, "V"}}, s.Channels())
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.txt")
	require.NoError(t, os.WriteFile(path, []byte("h\nCH0\tone\tV\n"), 0644))

	_, err := Load(path, "", UTF8)
	var parseErr format.ErrParse
	require.True(t, errors.As(err, &parseErr))
	require.Contains(t, err.Error(), path)
}

func TestSaveLoadGBK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gbk.txt")
	s := New(Channel{1, "℃"}, Channel{2, "MPa"})
	require.NoError(t, Save(path, s, GBK))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEqual(t, Serialize(s), string(data))

	loaded, err := Load(path, "", GBK)
	require.NoError(t, err)
	require.True(t, s.Equal(loaded))
}

func TestEncodingByName(t *testing.T) {
	enc, err := EncodingByName("")
	require.NoError(t, err)
	require.Equal(t, "utf-8", enc.String())

	enc, err = EncodingByName("GBK")
	require.NoError(t, err)
	require.Equal(t, "gbk", enc.String())

	_, err = EncodingByName("latin1")
	require.Error(t, err)
}

func TestPathFor(t *testing.T) {
	require.Equal(t, filepath.Join("data", "20220511_settings.txt"), PathFor(filepath.Join("data", "20220511.DAT")))
	require.Equal(t, "noext_settings.txt", PathFor("noext"))
}
