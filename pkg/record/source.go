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
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-thw/pkg/format"
	"jinr.ru/greenlab/go-thw/pkg/log"
)

const readBufferSize = 64 * 1024

// Source is an opened .DAT stream positioned past its header. It tracks
// the total size and the current offset.
type Source struct {
	desc   format.Descriptor
	name   string
	r      *bufio.Reader
	closer io.Closer
	size   int64
	offset int64
	header []byte
}

// Open opens path for reading and skips the header.
func Open(path string, desc format.Descriptor) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, format.NewIOError("open", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, format.NewIOError("stat", path, err)
	}
	src, err := newSource(f, info.Size(), desc, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	log.Debug("Opened %s: %d bytes", path, src.size)
	return src, nil
}

// NewSource wraps a reader holding size bytes of .DAT data and skips the
// header. Close does not close r.
func NewSource(r io.Reader, size int64, desc format.Descriptor) (*Source, error) {
	return newSource(r, size, desc, "")
}

func newSource(r io.Reader, size int64, desc format.Descriptor, name string) (*Source, error) {
	s := &Source{
		desc: desc,
		name: name,
		r:    bufio.NewReaderSize(r, readBufferSize),
		size: size,
	}
	s.header = make([]byte, desc.HeaderBytes)
	n, err := s.read(s.header)
	if err != nil {
		if isShortRead(err) {
			return nil, errors.WithStack(format.ErrDecode{Field: "header", Offset: 0, Want: desc.HeaderBytes, Got: n})
		}
		return nil, format.NewIOError("read header of", s.Name(), err)
	}
	return s, nil
}

// Name returns the file name, or "<stream>" for sources built with NewSource.
func (s *Source) Name() string {
	if s.name == "" {
		return "<stream>"
	}
	return s.name
}

// Header returns the raw header bytes.
func (s *Source) Header() []byte {
	return s.header
}

// Size returns the total size in bytes, header included.
func (s *Source) Size() int64 {
	return s.size
}

// Offset returns the current position, header included.
func (s *Source) Offset() int64 {
	return s.offset
}

// AtEnd reports whether the offset reached the declared size.
func (s *Source) AtEnd() bool {
	return s.offset >= s.size
}

// Progress returns offset/size in [0, 1].
func (s *Source) Progress() float64 {
	if s.size <= 0 {
		return 0
	}
	ratio := float64(s.offset) / float64(s.size)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// Close releases the underlying file.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

func (s *Source) read(buf []byte) (int, error) {
	n, err := io.ReadFull(s.r, buf)
	s.offset += int64(n)
	return n, err
}

// skip moves the offset forward by n bytes without decoding them. Like a
// seek, the offset moves even past the end of the data.
func (s *Source) skip(n int) error {
	_, err := s.r.Discard(n)
	s.offset += int64(n)
	if err != nil && err != io.EOF {
		return format.NewIOError("read", s.Name(), err)
	}
	return nil
}

func isShortRead(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
