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

package record

import (
	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/format"
)

// ReadTimestamps decodes only the timestamps of up to maxRows records and
// skips over the samples. The end of stream rule is the same as ReadRows,
// and so is the offset consumed per record.
func (r *Reader) ReadTimestamps(maxRows int) ([]int64, error) {
	desc := r.src.desc
	field := r.frame[:desc.TimestampBytes]
	timestamps := make([]int64, 0, capHint(maxRows))
	for i := 0; i < maxRows; i++ {
		n, err := r.src.read(field)
		if err != nil {
			return timestamps, r.endOrError(err, n)
		}
		if err := r.src.skip(r.ncol * desc.SampleBytes); err != nil {
			return timestamps, err
		}
		if r.src.AtEnd() {
			return timestamps, nil
		}
		timestamps = append(timestamps, desc.DecodeTimestamp(field))
	}
	return timestamps, nil
}

// Summarize returns the first and the last timestamp in file order.
func Summarize(timestamps []int64) (first, last int64, err error) {
	if len(timestamps) == 0 {
		return 0, 0, errors.WithStack(format.ErrEmptyData{})
	}
	return timestamps[0], timestamps[len(timestamps)-1], nil
}
