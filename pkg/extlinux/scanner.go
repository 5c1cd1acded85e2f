package extlinux

import (
	"github.com/pkg/errors"
)

const eof = -1

var (
	// ErrExhausted is returned when the input ends before a complete
	// directive was read. A clean end of file looks the same.
	ErrExhausted = errors.New("no more directives")
	// ErrNoValue is returned for a command that is not followed by a value
	// on the same line.
	ErrNoValue = errors.New("directive has no value")
	// ErrEmptyValue is returned when only blanks follow the command.
	ErrEmptyValue = errors.New("directive value is empty")
)

// scanner is a cursor over the file region of a Buffer. It never reads
// past the declared length; the reserved byte after it is only ever
// written to.
type scanner struct {
	data      []byte
	pos       int
	remaining int
}

func newScanner(b *Buffer) *scanner {
	b.mustBeLive()
	return &scanner{
		data:      b.data,
		remaining: b.size,
	}
}

// peek returns the byte under the cursor without consuming it.
func (s *scanner) peek() int {
	if s.remaining == 0 {
		return eof
	}
	return int(s.data[s.pos])
}

// next consumes one byte.
func (s *scanner) next() int {
	if s.remaining == 0 {
		return eof
	}
	c := s.data[s.pos]
	s.pos++
	s.remaining--
	return int(c)
}

// terminate overwrites the byte under the cursor with NUL and steps over
// it. At the end of input the NUL lands in the reserved byte.
func (s *scanner) terminate() {
	s.data[s.pos] = 0
	if s.remaining > 0 {
		s.pos++
		s.remaining--
	}
}

func isBlank(c int) bool {
	return c == ' ' || c == '\t'
}

func isSpace(c int) bool {
	return isBlank(c) || c == '\n'
}

// readDirective scans one "command value" line, skipping blank lines and
// comments before it. The separator after the command and the newline
// after the value are replaced with NUL in the buffer.
func (s *scanner) readDirective() (command, value Span, err error) {
	for {
		for isSpace(s.peek()) {
			s.next()
		}
		if s.peek() != '#' {
			break
		}
		for {
			c := s.next()
			if c == eof {
				return Span{}, Span{}, errors.WithStack(ErrExhausted)
			}
			if c == '\n' {
				break
			}
		}
	}
	if s.peek() == eof {
		return Span{}, Span{}, errors.WithStack(ErrExhausted)
	}

	start := s.pos
	for c := s.peek(); c != eof && !isSpace(c); c = s.peek() {
		s.next()
	}
	command = Span{start: start, end: s.pos, set: true}

	if isBlank(s.peek()) {
		s.terminate()
	}
	if c := s.peek(); c == eof || c == '\n' {
		return Span{}, Span{}, errors.WithStack(ErrNoValue)
	}

	for isBlank(s.peek()) {
		s.next()
	}
	switch s.peek() {
	case '\n':
		return Span{}, Span{}, errors.WithStack(ErrEmptyValue)
	case eof:
		return Span{}, Span{}, errors.WithStack(ErrExhausted)
	}

	start = s.pos
	for c := s.peek(); c != eof && c != '\n'; c = s.peek() {
		s.next()
	}
	value = Span{start: start, end: s.pos, set: true}
	s.terminate()

	return command, value, nil
}
