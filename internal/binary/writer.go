package binary

import (
	"encoding/binary"
)

// Writer accumulates words for SPIR-V binary encoding.
type Writer struct {
	words []uint32
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{words: make([]uint32, 0, 64)}
}

// Words returns the written words.
func (w *Writer) Words() []uint32 {
	return w.words
}

// Len returns the number of words written.
func (w *Writer) Len() int {
	return len(w.words)
}

// Word writes a single word.
func (w *Writer) Word(v uint32) {
	w.words = append(w.words, v)
}

// WriteWords writes a word slice.
func (w *Writer) WriteWords(ws []uint32) {
	w.words = append(w.words, ws...)
}

// Patch overwrites a previously written word.
func (w *Writer) Patch(index int, v uint32) {
	w.words[index] = v
}

// String writes a null-terminated literal string padded to a word boundary.
func (w *Writer) String(s string) {
	b := []byte(s)
	b = append(b, 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	for i := 0; i < len(b); i += 4 {
		w.words = append(w.words, uint32(b[i])|
			uint32(b[i+1])<<8|
			uint32(b[i+2])<<16|
			uint32(b[i+3])<<24)
	}
}

// Bytes returns the written words as little-endian bytes.
func (w *Writer) Bytes() []byte {
	out := make([]byte, len(w.words)*4)
	for i, v := range w.words {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// StringWords returns how many words the literal string s occupies.
func StringWords(s string) uint32 {
	return uint32(len(s)/4 + 1)
}
