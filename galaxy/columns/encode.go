package columns

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/golang/snappy"

	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/pkg/types"
)

// magic opens every column stream (before compression).
var magic = [8]byte{'G', 'K', 'C', 'O', 'L', 0, 0, 1}

// maxString bounds names and units in a stream.
const maxString = math.MaxUint16

// ErrCorrupt reports a column stream that cannot be parsed.
var ErrCorrupt = errors.New("columns: corrupt stream")

// Encode writes cols to w as one snappy-framed stream.
//
// Layout (little-endian, before compression):
//
//	magic[8] ncols:u32
//	per column: name:str source:u8 type:u8 count:u32 width:u32 rows:u32 units:str data
//
// where str is a u16 length followed by the bytes.
func Encode(w io.Writer, cols []Column) (err error) {
	sw := snappy.NewBufferedWriter(w)
	defer func() {
		if cerr := sw.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("columns: flush: %w", cerr)
		}
	}()

	if uint64(len(cols)) > math.MaxUint32 {
		return fmt.Errorf("columns: %d columns: %w", len(cols), types.ErrOutOfBounds)
	}
	var hdr [12]byte
	copy(hdr[:8], magic[:])
	buf.PutU32LE(hdr[8:], uint32(len(cols)))
	if _, err := sw.Write(hdr[:]); err != nil {
		return fmt.Errorf("columns: header: %w", err)
	}
	for i := range cols {
		if err := writeColumn(sw, &cols[i]); err != nil {
			return fmt.Errorf("columns: %s: %w", cols[i].Name, err)
		}
	}
	return nil
}

func writeColumn(w io.Writer, c *Column) error {
	for _, v := range [...]int{c.Width, c.Rows, c.Count} {
		if v < 0 || uint64(v) > math.MaxUint32 {
			return fmt.Errorf("field value %d: %w", v, types.ErrOutOfBounds)
		}
	}
	if n, ok := buf.MulOverflowSafe(c.Width, c.Rows); !ok || n != len(c.Data) {
		return fmt.Errorf("data is %d bytes, want %d rows of %d: %w", len(c.Data), c.Rows, c.Width, types.ErrOutOfBounds)
	}
	if err := writeString(w, c.Name); err != nil {
		return err
	}
	var fixed [14]byte
	fixed[0] = byte(c.Source)
	fixed[1] = byte(c.Type)
	buf.PutU32LE(fixed[2:], uint32(c.Count))
	buf.PutU32LE(fixed[6:], uint32(c.Width))
	buf.PutU32LE(fixed[10:], uint32(c.Rows))
	if _, err := w.Write(fixed[:]); err != nil {
		return err
	}
	if err := writeString(w, c.Units); err != nil {
		return err
	}
	_, err := w.Write(c.Data)
	return err
}

func writeString(w io.Writer, s string) error {
	if len(s) > maxString {
		return fmt.Errorf("string of %d bytes: %w", len(s), types.ErrOutOfBounds)
	}
	var n [2]byte
	n[0], n[1] = byte(len(s)), byte(len(s)>>8)
	if _, err := w.Write(n[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// Decode reads a stream written by Encode.
func Decode(r io.Reader) ([]Column, error) {
	br := bufio.NewReader(snappy.NewReader(r))

	var hdr [12]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if [8]byte(hdr[:8]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	n := int(buf.U32LE(hdr[8:]))

	var cols []Column
	for i := range n {
		c, err := readColumn(br)
		if err != nil {
			return nil, fmt.Errorf("%w: column %d: %v", ErrCorrupt, i, err)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func readColumn(r io.Reader) (Column, error) {
	name, err := readString(r)
	if err != nil {
		return Column{}, err
	}
	var fixed [14]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Column{}, err
	}
	c := Column{
		Name:   name,
		Source: Source(fixed[0]),
		Type:   props.TypeTag(fixed[1]),
		Count:  int(buf.U32LE(fixed[2:])),
		Width:  int(buf.U32LE(fixed[6:])),
		Rows:   int(buf.U32LE(fixed[10:])),
	}
	if c.Units, err = readString(r); err != nil {
		return Column{}, err
	}
	size, ok := buf.MulOverflowSafe(c.Width, c.Rows)
	if !ok {
		return Column{}, types.ErrOutOfBounds
	}
	// The header size is untrusted; the buffer grows only as data arrives.
	var data bytes.Buffer
	if n, err := io.CopyN(&data, r, int64(size)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Column{}, fmt.Errorf("data: %d of %d bytes: %w", n, size, err)
	}
	c.Data = data.Bytes()
	return c, nil
}

func readString(r io.Reader) (string, error) {
	var n [2]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return "", err
	}
	b := make([]byte, int(n[0])|int(n[1])<<8)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
