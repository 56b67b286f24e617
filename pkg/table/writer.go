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

package table

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/log"
)

const (
	Delimiter = "\t"
	LineEnd   = "\n"
)

// Writer writes titles and rows tab delimited.
type Writer struct {
	w    *bufio.Writer
	file *os.File
	path string
}

// Create creates (or truncates) the file at path.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, format.NewIOError("create directory for", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		log.Error("Error while creating file: %s", path)
		return nil, format.NewIOError("create", path, err)
	}
	return &Writer{
		w:    bufio.NewWriter(file),
		file: file,
		path: path,
	}, nil
}

// NewWriter writes to w. Close flushes but does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) WriteTitles(titles []string) error {
	return w.writeLine(titles)
}

func (w *Writer) WriteRow(row Row) error {
	if _, err := w.w.WriteString(row.Time); err != nil {
		return w.ioError(err)
	}
	for _, v := range row.Values {
		if _, err := w.w.WriteString(Delimiter + v); err != nil {
			return w.ioError(err)
		}
	}
	if _, err := w.w.WriteString(LineEnd); err != nil {
		return w.ioError(err)
	}
	return nil
}

func (w *Writer) WriteRows(rows []Row) error {
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeLine(fields []string) error {
	if _, err := w.w.WriteString(strings.Join(fields, Delimiter) + LineEnd); err != nil {
		return w.ioError(err)
	}
	return nil
}

// Flush pushes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return w.ioError(err)
	}
	return nil
}

// Close flushes and, for writers made by Create, syncs and closes the file.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.file == nil {
		return err
	}
	if err == nil {
		if syncErr := w.file.Sync(); syncErr != nil {
			err = w.ioError(syncErr)
		}
	}
	if closeErr := w.file.Close(); closeErr != nil && err == nil {
		err = w.ioError(closeErr)
	}
	w.file = nil
	return err
}

func (w *Writer) ioError(err error) error {
	path := w.path
	if path == "" {
		path = "<stream>"
	}
	return format.NewIOError("write", path, err)
}

// Scanner reads the rows of an exported text file. The title line is
// skipped, as are empty lines.
type Scanner struct {
	s      *bufio.Scanner
	line   int
	fields []string
}

func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Scanner{s: s}
}

// Scan advances to the next row and reports whether there is one.
func (s *Scanner) Scan() bool {
	for s.s.Scan() {
		s.line++
		text := strings.TrimRight(s.s.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, Delimiter)
		if s.line == 1 && fields[0] == TimeTitle {
			continue
		}
		s.fields = fields
		return true
	}
	return false
}

// Fields returns the fields of the current row.
func (s *Scanner) Fields() []string {
	return s.fields
}

// Line returns the 1-based line number of the current row.
func (s *Scanner) Line() int {
	return s.line
}

func (s *Scanner) Err() error {
	if err := s.s.Err(); err != nil {
		return format.NewIOError("read", "text rows", err)
	}
	return nil
}
