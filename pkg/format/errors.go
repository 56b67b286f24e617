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

package format

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrIO returned when a file can not be opened, read or written
type ErrIO struct {
	Op   string
	Path string
	Err  error
}

func (e ErrIO) Error() string {
	return fmt.Sprintf("Error while trying to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e ErrIO) Unwrap() error {
	return e.Err
}

// ErrParse returned when the channel settings text or an exported text
// row is malformed
type ErrParse struct {
	Line int
	What string
}

func (e ErrParse) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Error while parsing line %d: %s", e.Line, e.What)
	}
	return fmt.Sprintf("Error while parsing: %s", e.What)
}

// ErrDecode returned when the stream ends in the middle of a field
// while its declared size says more bytes must follow
type ErrDecode struct {
	Field  string
	Offset int64
	Want   int
	Got    int
}

func (e ErrDecode) Error() string {
	return fmt.Sprintf("Error while decoding %s at offset %d: want %d bytes, got %d", e.Field, e.Offset, e.Want, e.Got)
}

// ErrEmptyData returned when a file holds no complete record
type ErrEmptyData struct {
	Path string
}

func (e ErrEmptyData) Error() string {
	if e.Path == "" {
		return "No complete record found"
	}
	return fmt.Sprintf("No complete record found in %s", e.Path)
}

// NewIOError wraps err as ErrIO with a stack trace attached.
func NewIOError(op, path string, err error) error {
	return errors.WithStack(ErrIO{Op: op, Path: path, Err: err})
}

// IsDataError reports whether err is one of the per-file error kinds:
// ErrIO, ErrParse, ErrDecode or ErrEmptyData.
func IsDataError(err error) bool {
	var ioErr ErrIO
	var parseErr ErrParse
	var decodeErr ErrDecode
	var emptyErr ErrEmptyData
	return errors.As(err, &ioErr) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &decodeErr) ||
		errors.As(err, &emptyErr)
}
