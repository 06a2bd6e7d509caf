package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrUnterminatedString is returned when a literal string has no null terminator
// before the reader runs out of words.
var ErrUnterminatedString = errors.New("literal string is not null-terminated")

// ErrInvalidUTF8 is returned for a literal string that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 in literal string")

// Reader reads 32-bit words with position tracking. It is the word codec used
// by every entry decoder; Remaining bounds variable-length operand lists.
type Reader struct {
	words []uint32
	pos   int
	base  int
}

// NewReader creates a new Reader over the given words.
func NewReader(words []uint32) *Reader {
	return &Reader{words: words}
}

// Position returns the absolute word position of the next read.
func (r *Reader) Position() int {
	return r.base + r.pos
}

// Remaining returns the number of unread words.
func (r *Reader) Remaining() int {
	return len(r.words) - r.pos
}

// ReadWord reads a single word and advances the position.
func (r *Reader) ReadWord() (uint32, error) {
	if r.pos >= len(r.words) {
		return 0, io.ErrUnexpectedEOF
	}
	w := r.words[r.pos]
	r.pos++
	return w, nil
}

// ReadWords reads exactly n words.
func (r *Reader) ReadWords(n int) ([]uint32, error) {
	if n < 0 || n > r.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]uint32, n)
	copy(out, r.words[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// ReadString reads a null-terminated UTF-8 literal string padded to a word boundary.
func (r *Reader) ReadString() (string, error) {
	var buf []byte
	for {
		w, err := r.ReadWord()
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return "", r.WrapError("literal string", ErrUnterminatedString)
			}
			return "", err
		}
		for i := 0; i < 4; i++ {
			c := byte(w >> (8 * i))
			if c == 0 {
				if !utf8.Valid(buf) {
					return "", r.WrapError("literal string", ErrInvalidUTF8)
				}
				return string(buf), nil
			}
			buf = append(buf, c)
		}
	}
}

// Sub returns a Reader over the next n words and advances past them.
// Positions reported by the sub-reader stay absolute.
func (r *Reader) Sub(n int) (*Reader, error) {
	if n < 0 || n > r.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	sub := &Reader{
		words: r.words[r.pos : r.pos+n],
		base:  r.base + r.pos,
	}
	r.pos += n
	return sub, nil
}

// ErrBadMagic is returned when the first word of a stream is not the magic
// number in either byte order.
var ErrBadMagic = errors.New("bad magic number")

// MagicWords converts a byte stream into words, choosing the byte order in
// which the first word reads as magic.
func MagicWords(data []byte, magic uint32) ([]uint32, error) {
	if len(data) < 4 {
		return nil, io.ErrUnexpectedEOF
	}
	switch {
	case binary.LittleEndian.Uint32(data) == magic:
		return Words(data, binary.LittleEndian)
	case binary.BigEndian.Uint32(data) == magic:
		return Words(data, binary.BigEndian)
	}
	return nil, fmt.Errorf("%w 0x%08x", ErrBadMagic, binary.LittleEndian.Uint32(data))
}

// Words converts a byte stream into words using the given byte order.
// The length must be a multiple of four.
func Words(data []byte, order binary.ByteOrder) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("stream length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return words, nil
}

// ParseError represents an error during word parsing with position information.
type ParseError struct {
	Err      error
	Op       string
	Position int
}

func (e *ParseError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("spirv: %s at word %d: %v", e.Op, e.Position, e.Err)
	}
	return fmt.Sprintf("spirv: at word %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError with the current position.
func (r *Reader) WrapError(op string, err error) error {
	return &ParseError{
		Position: r.Position(),
		Op:       op,
		Err:      err,
	}
}
