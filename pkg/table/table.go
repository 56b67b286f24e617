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

// Package table renders decoded records as text rows and parses such rows
// back into records.
package table

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/record"
	"jinr.ru/greenlab/go-thw/pkg/settings"
)

// DefaultTimeLayout renders times as 2022/05/11 08:30:00.
const DefaultTimeLayout = "2006/01/02 15:04:05"

const TimeTitle = "Time"

var (
	minSample = decimal.NewFromInt(math.MinInt16)
	maxSample = decimal.NewFromInt(math.MaxInt16)
)

// Row is a record rendered as text.
type Row struct {
	Time   string
	Values []string
}

// Fields returns the time followed by the values.
func (r Row) Fields() []string {
	fields := make([]string, 0, len(r.Values)+1)
	fields = append(fields, r.Time)
	return append(fields, r.Values...)
}

// Titles returns the column titles: Time, then CH<n>[unit] per channel.
func Titles(s settings.Settings) []string {
	titles := make([]string, 0, s.NumChannels()+1)
	titles = append(titles, TimeTitle)
	for i := 0; i < s.NumChannels(); i++ {
		titles = append(titles, fmt.Sprintf("CH%d[%s]", i+1, s.Unit(i)))
	}
	return titles
}

// FormatRow renders row with the time layout and the channel decimals.
// A sample of a channel with d > 0 decimals is shown as value/10^d with
// exactly d fractional digits. Samples beyond the settings are shown raw.
func FormatRow(row record.Row, s settings.Settings, layout string) Row {
	values := make([]string, len(row.Samples))
	for j, v := range row.Samples {
		dp := 0
		if j < s.NumChannels() {
			dp = s.Decimals(j)
		}
		values[j] = FormatValue(v, dp)
	}
	return Row{
		Time:   row.Time().Format(layout),
		Values: values,
	}
}

// FormatValue renders a raw sample with dp decimal places.
func FormatValue(v int16, dp int) string {
	if dp <= 0 {
		return strconv.Itoa(int(v))
	}
	return decimal.New(int64(v), -int32(dp)).StringFixed(int32(dp))
}

// ParseRow turns the fields of a text row back into a record. line is only
// used in errors.
func ParseRow(fields []string, s settings.Settings, layout string, line int) (record.Row, error) {
	if len(fields) != s.NumChannels()+1 {
		return record.Row{}, errors.WithStack(format.ErrParse{
			Line: line,
			What: fmt.Sprintf("expected %d fields, got %d", s.NumChannels()+1, len(fields)),
		})
	}
	t, err := time.ParseInLocation(layout, fields[0], time.UTC)
	if err != nil {
		return record.Row{}, errors.WithStack(format.ErrParse{Line: line, What: err.Error()})
	}
	samples := make([]int16, s.NumChannels())
	for j := range samples {
		v, err := ParseValue(fields[j+1], s.Decimals(j))
		if err != nil {
			return record.Row{}, errors.WithStack(format.ErrParse{
				Line: line,
				What: fmt.Sprintf("channel %d: %v", j+1, err),
			})
		}
		samples[j] = v
	}
	return record.Row{Timestamp: t.Unix(), Samples: samples}, nil
}

// ParseValue is the inverse of FormatValue.
func ParseValue(text string, dp int) (int16, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, err
	}
	if dp > 0 {
		d = d.Shift(int32(dp))
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, errors.Errorf("%s has more than %d decimal places", text, dp)
	}
	if d.LessThan(minSample) || d.GreaterThan(maxSample) {
		return 0, errors.Errorf("%s is out of the sample range", text)
	}
	return int16(d.IntPart()), nil
}
