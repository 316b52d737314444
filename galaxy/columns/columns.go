// Package columns converts a slice of galaxies into flat per-property
// columns, the layout a columnar output writer consumes, and back.
//
// Extension columns are produced through each serialize-flagged
// descriptor's codec. Store columns copy core schema fields. A record that
// never populated an extension contributes zero bytes for it.
package columns

import (
	"fmt"

	"github.com/joshuapare/galkit/galaxy"
	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/galaxy/store"
	"github.com/joshuapare/galkit/internal/buf"
	"github.com/joshuapare/galkit/internal/grow"
	"github.com/joshuapare/galkit/internal/logger"
	"github.com/joshuapare/galkit/pkg/types"
)

// Source says where a column's values came from.
type Source uint8

const (
	SourceExtension Source = iota + 1
	SourceStore
)

func (s Source) String() string {
	switch s {
	case SourceExtension:
		return "extension"
	case SourceStore:
		return "store"
	default:
		return fmt.Sprintf("Source(%d)", uint8(s))
	}
}

// Column is one property across every record. Data holds Rows*Width bytes.
type Column struct {
	Name   string
	Source Source
	Type   props.TypeTag
	Count  int // elements per row
	Width  int // bytes per row
	Rows   int
	Units  string
	Data   []byte
}

// Row returns the bytes of row i.
func (c *Column) Row(i int) []byte {
	if i < 0 || i >= c.Rows {
		return nil
	}
	return c.Data[i*c.Width : (i+1)*c.Width]
}

func newColumn(name string, src Source, tag props.TypeTag, count, width, rows int, units string) (Column, error) {
	size, ok := buf.MulOverflowSafe(width, rows)
	if !ok {
		return Column{}, fmt.Errorf("columns: %s: %d rows of %d bytes: %w", name, rows, width, types.ErrOutOfMemory)
	}
	data, err := grow.Make[byte](size, size)
	if err != nil {
		return Column{}, fmt.Errorf("columns: %s: %w", name, err)
	}
	return Column{Name: name, Source: src, Type: tag, Count: count, Width: width, Rows: rows, Units: units, Data: data}, nil
}

// Extensions serializes every live serialize-flagged property of reg across
// records, in extension id order.
func Extensions(reg *props.Registry, records []galaxy.Galaxy) ([]Column, error) {
	if reg.Closed() {
		return nil, fmt.Errorf("columns: %w", types.ErrNotInitialized)
	}
	var cols []Column
	for id := types.ExtensionID(0); int(id) < reg.Len(); id++ {
		d, ok := reg.Lookup(id)
		if !ok || !d.Flags.Has(props.FlagSerialize) {
			continue
		}
		col, err := extensionColumn(d, records)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	logger.Debug("columns: extensions built", "columns", len(cols), "rows", len(records))
	return cols, nil
}

func extensionColumn(d *props.Descriptor, records []galaxy.Galaxy) (Column, error) {
	codec := d.EffectiveCodec()
	if codec == nil {
		return Column{}, fmt.Errorf("columns: %s has no codec: %w", d.Name, types.ErrInvalidArgument)
	}
	tag := d.Type
	if tag == props.TypeArray && d.Elem.Scalar() {
		tag = d.Elem
	}
	col, err := newColumn(d.Name, SourceExtension, tag, d.Count(), d.Size, len(records), d.Units)
	if err != nil {
		return Column{}, err
	}
	for i := range records {
		src, ok := records[i].Ext.Peek(d.ID)
		if !ok {
			continue
		}
		if _, err := codec.Encode(col.Row(i), src, d.Count()); err != nil {
			logger.Error("columns: encode failed", "property", d.Name, "row", i, "err", err)
			return Column{}, fmt.Errorf("columns: %s row %d: %w", d.Name, i, err)
		}
	}
	return col, nil
}

// Store copies the given schema fields of every record's property store into
// columns. With no fields, every schema field is exported.
func Store(env *galaxy.Env, records []galaxy.Galaxy, fields ...store.FieldID) ([]Column, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	schema := env.Stores.Schema()
	if len(fields) == 0 {
		for _, f := range schema.Fields() {
			fields = append(fields, f.ID)
		}
	}
	cols := make([]Column, 0, len(fields))
	for _, id := range fields {
		f, ok := schema.Field(id)
		if !ok {
			return nil, fmt.Errorf("columns: store field %d: %w", id, types.ErrOutOfBounds)
		}
		col, err := newColumn(f.Name, SourceStore, f.Type, f.Count, f.Size, len(records), f.Units)
		if err != nil {
			return nil, err
		}
		for i := range records {
			st, err := env.Stores.Get(records[i].Props)
			if err != nil {
				return nil, fmt.Errorf("columns: row %d: %w", i, err)
			}
			raw, err := st.Field(id)
			if err != nil {
				return nil, err
			}
			copy(col.Row(i), raw)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// RestoreExtensions writes extension columns back into records through each
// descriptor's Decode. Columns are matched by name; rows must equal
// len(records). Store columns are ignored.
func RestoreExtensions(reg *props.Registry, records []galaxy.Galaxy, cols []Column) error {
	for ci := range cols {
		c := &cols[ci]
		if c.Source != SourceExtension {
			continue
		}
		d, ok := reg.FindByName(c.Name)
		if !ok {
			logger.Warn("columns: restore skips unknown property", "name", c.Name)
			continue
		}
		if c.Rows != len(records) || c.Width != d.Size {
			return fmt.Errorf("columns: %s: %d rows of %d bytes for %d records of %d: %w",
				c.Name, c.Rows, c.Width, len(records), d.Size, types.ErrOutOfBounds)
		}
		codec := d.EffectiveCodec()
		if codec == nil {
			return fmt.Errorf("columns: %s has no codec: %w", d.Name, types.ErrInvalidArgument)
		}
		for i := range records {
			slot, err := records[i].Ext.Get(reg, d.ID)
			if err != nil {
				return fmt.Errorf("columns: %s row %d: %w", d.Name, i, err)
			}
			if _, err := codec.Decode(slot, c.Row(i), d.Count()); err != nil {
				return fmt.Errorf("columns: %s row %d: %w", d.Name, i, err)
			}
		}
	}
	return nil
}
