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
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Encoding is the text encoding of a settings file on disk.
type Encoding struct {
	name string
	enc  encoding.Encoding
}

var (
	// UTF8 drops invalid byte sequences on read
	UTF8 = Encoding{name: "utf-8"}
	// GBK is what Notepad on a Chinese Windows saves by default
	GBK = Encoding{name: "gbk", enc: simplifiedchinese.GBK}
)

// EncodingByName returns the encoding for a config value.
func EncodingByName(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "gbk", "gb2312", "cp936":
		return GBK, nil
	default:
		return Encoding{}, fmt.Errorf("Unknown settings encoding %q. Must be one of: utf-8, gbk.", name)
	}
}

func (e Encoding) String() string {
	if e.name == "" {
		return UTF8.name
	}
	return e.name
}

func (e Encoding) decode(data []byte) (string, error) {
	if e.enc != nil {
		decoded, err := e.enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		data = decoded
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

func (e Encoding) encode(text string) ([]byte, error) {
	if e.enc == nil {
		return []byte(text), nil
	}
	return encoding.ReplaceUnsupported(e.enc.NewEncoder()).Bytes([]byte(text))
}
