package props

import (
	"fmt"

	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/pkg/types"
)

// Codec converts between a property's in-memory slot and the flat buffer an
// output collaborator writes. count is the number of repeated elements for
// array properties and 1 for scalars. Both methods return the number of bytes
// written to dst.
type Codec interface {
	Encode(dst, src []byte, count int) (int, error)
	Decode(dst, src []byte, count int) (int, error)
}

// ScalarCodec returns the built-in little-endian codec for a scalar tag, or
// nil when tag is not scalar.
func ScalarCodec(tag TypeTag) Codec {
	if !tag.Scalar() {
		return nil
	}
	return scalarCodec{tag: tag}
}

// RawCodec copies Size bytes per element verbatim. Opaque struct properties
// opt into it explicitly; it is never selected implicitly.
type RawCodec struct {
	Size int
}

// Encode copies count*Size bytes from src to dst.
func (c RawCodec) Encode(dst, src []byte, count int) (int, error) {
	return copySpan(dst, src, count, c.Size)
}

// Decode copies count*Size bytes from src to dst.
func (c RawCodec) Decode(dst, src []byte, count int) (int, error) {
	return copySpan(dst, src, count, c.Size)
}

type scalarCodec struct {
	tag TypeTag
}

func (c scalarCodec) Encode(dst, src []byte, count int) (int, error) {
	n, err := copySpan(dst, src, count, c.tag.Width())
	if err != nil {
		return 0, err
	}
	if c.tag == TypeBool {
		normalizeBools(dst[:n])
	}
	return n, nil
}

func (c scalarCodec) Decode(dst, src []byte, count int) (int, error) {
	n, err := copySpan(dst, src, count, c.tag.Width())
	if err != nil {
		return 0, err
	}
	if c.tag == TypeBool {
		normalizeBools(dst[:n])
	}
	return n, nil
}

// Slots and flat buffers share the little-endian layout, so scalar
// conversion is a checked copy.
func copySpan(dst, src []byte, count, width int) (int, error) {
	n, err := buf.CheckSpan(len(src), count, width)
	if err != nil {
		return 0, fmt.Errorf("props: codec source: %v: %w", err, types.ErrOutOfBounds)
	}
	if _, err := buf.CheckSpan(len(dst), count, width); err != nil {
		return 0, fmt.Errorf("props: codec destination: %v: %w", err, types.ErrOutOfBounds)
	}
	return copy(dst[:n], src[:n]), nil
}

func normalizeBools(b []byte) {
	for i, v := range b {
		if v != 0 {
			b[i] = 1
		}
	}
}

func builtinCodec(d *Descriptor) Codec {
	switch {
	case d.Type.Scalar():
		return ScalarCodec(d.Type)
	case d.Type == TypeArray && d.Elem.Scalar():
		return ScalarCodec(d.Elem)
	default:
		return nil
	}
}
