// Package record implements the binary codec for the two operations the log
// understands: Set and Remove. The wire format is a tag byte followed by
// big-endian, length-prefixed fields, grounded on the source's
// db_command_serde.rs.
package record

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Kind discriminates the two record variants.
type Kind uint8

const (
	// KindSet asserts that Key now maps to Value.
	KindSet Kind = 0x00
	// KindRemove asserts that Key is no longer present.
	KindRemove Kind = 0x01
)

// Record is one serialized log entry.
type Record struct {
	Kind  Kind
	Key   []byte
	Value []byte // nil for KindRemove
}

// NewSet builds a Set record.
func NewSet(key, value []byte) Record {
	return Record{Kind: KindSet, Key: key, Value: value}
}

// NewRemove builds a Remove record.
func NewRemove(key []byte) Record {
	return Record{Kind: KindRemove, Key: key}
}

// ErrUnknownTag is returned when a record's leading tag byte is neither
// KindSet nor KindRemove.
var ErrUnknownTag = fmt.Errorf("record: unknown tag byte")

// ErrTruncated is returned when a length-prefixed field runs past the
// available bytes: a torn trailing record after a crash.
var ErrTruncated = fmt.Errorf("record: truncated record")

// Encode writes one record to w, returning the number of bytes written.
// Callers are responsible for flushing the underlying writer afterward so
// the write is durable before its position is recorded.
func Encode(w io.Writer, r Record) (int64, error) {
	var n int64

	if err := writeByte(w, byte(r.Kind)); err != nil {
		return n, err
	}
	n++

	m, err := writeField(w, r.Key)
	n += m
	if err != nil {
		return n, err
	}

	if r.Kind == KindSet {
		m, err = writeField(w, r.Value)
		n += m
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

// Decode reads exactly one record from r. A clean end of stream before any
// byte of a new record is read returns io.EOF unchanged, so a streaming
// decoder can tell "no more records" apart from a torn trailing record,
// which instead returns ErrTruncated.
func Decode(r io.Reader) (Record, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, wrapTruncation(err)
	}

	kind := Kind(tagBuf[0])
	if kind != KindSet && kind != KindRemove {
		return Record{}, ErrUnknownTag
	}

	key, err := readField(r)
	if err != nil {
		return Record{}, err
	}

	rec := Record{Kind: kind, Key: key}
	if kind == KindSet {
		value, err := readField(r)
		if err != nil {
			return Record{}, err
		}
		rec.Value = value
	}

	return rec, nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func writeField(w io.Writer, data []byte) (int64, error) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 4, nil
	}
	if _, err := w.Write(data); err != nil {
		return 4, err
	}
	return int64(4 + len(data)), nil
}

func readField(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, wrapTruncation(err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return []byte{}, nil
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, wrapTruncation(err)
	}
	return data, nil
}

func wrapTruncation(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}
