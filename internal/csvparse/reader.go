package csvparse

// reader.go provides streaming input wrappers applied before CSV decoding:
//
//   - bomSkippingReader: removes the UTF-8 BOM (0xEF 0xBB 0xBF) that Windows
//     spreadsheet exports prepend
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?' on the fly
//
// Both operate in O(buffer) memory so uploads never need to be fully
// buffered for cleanup.

import (
	"io"
	"unicode/utf8"
)

// wrapReader applies BOM skipping and UTF-8 sanitization in that order.
// The BOM must be stripped before any byte inspection.
func wrapReader(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMSkippingReader(r))
}

// bomSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM.
type bomSkippingReader struct {
	reader  io.Reader
	checked bool
	buf     [3]byte
	pending []byte
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{reader: r}
}

func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		n, err := io.ReadFull(r.reader, r.buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n > 0 {
			if n == 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF {
				// BOM found, drop it
			} else {
				r.pending = r.buf[:n]
			}
		}
		if err != nil && err != io.EOF && n == 0 {
			return 0, err
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.reader.Read(p)
}

// utf8Sanitizer wraps an io.Reader and replaces invalid UTF-8 bytes with '?'
// in place. A single replacement byte avoids expanding the buffer mid-stream.
type utf8Sanitizer struct {
	reader io.Reader

	// bytes held back from the previous read that may start a multi-byte rune
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	// Fast path: most CSV data is plain ASCII.
	if allASCII(p[:n]) {
		return n, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place, replacing invalid bytes. Incomplete
// trailing sequences are saved to pending unless the stream is at EOF.
// Returns the number of bytes now valid in data.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if !atEOF && read+size >= len(data) && incompleteRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}

		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// incompleteRune reports whether data could be the prefix of a multi-byte
// UTF-8 sequence that has not fully arrived yet.
func incompleteRune(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	b := data[0]
	var want int
	switch {
	case b < 0x80:
		want = 1
	case b < 0xC0:
		return false // continuation byte, not a sequence start
	case b < 0xE0:
		want = 2
	case b < 0xF0:
		want = 3
	default:
		want = 4
	}
	return want > len(data)
}
