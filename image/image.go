// Package image reads and writes code images: a flat sequence of 32-bit
// little-endian instruction words with no header.
package image

import (
	"bytes"
	"encoding/binary"
	"io"
	"iter"
)

// WORD_SIZE is the number of bytes per code word.
const WORD_SIZE = 4

// Image is a code image.
type Image struct {
	Data []uint32
}

var _ io.ReaderFrom = (*Image)(nil)
var _ io.WriterTo = (*Image)(nil)

// Words iterates over the image words and their code indexes.
func (img *Image) Words() iter.Seq2[uint64, uint32] {
	return func(yield func(ip uint64, word uint32) bool) {
		for n, word := range img.Data {
			if !yield(uint64(n), word) {
				return
			}
		}
	}
}

// ReadFrom replaces the image with the words read from r.
func (img *Image) ReadFrom(r io.Reader) (n int64, err error) {
	var buf bytes.Buffer
	n, err = buf.ReadFrom(r)
	if err != nil {
		return
	}

	raw := buf.Bytes()
	if len(raw)%WORD_SIZE != 0 {
		err = ErrImagePartial(len(raw) % WORD_SIZE)
		return
	}

	img.Data = make([]uint32, len(raw)/WORD_SIZE)
	for index := range img.Data {
		img.Data[index] = binary.LittleEndian.Uint32(raw[index*WORD_SIZE:])
	}

	return
}

// WriteTo writes the image words to w.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	raw := make([]byte, 0, len(img.Data)*WORD_SIZE)
	for _, word := range img.Data {
		raw = binary.LittleEndian.AppendUint32(raw, word)
	}

	written, err := w.Write(raw)
	n = int64(written)
	return
}

// Read reads a whole code image.
func Read(r io.Reader) (code []uint32, err error) {
	img := &Image{}
	_, err = img.ReadFrom(r)
	if err != nil {
		return
	}

	code = img.Data
	return
}

// Write writes a whole code image.
func Write(w io.Writer, code []uint32) (err error) {
	img := &Image{Data: code}
	_, err = img.WriteTo(w)
	return
}
