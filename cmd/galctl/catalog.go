package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/pkg/types"
)

// catalogFile is the YAML shape of a property catalog:
//
//	properties:
//	  - name: Cooling
//	    type: float64
//	    size: 8
//	    module: 1
//	    flags: [serialize]
//	    units: erg/s
type catalogFile struct {
	Properties []catalogEntry `yaml:"properties"`
}

type catalogEntry struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Elem        string   `yaml:"elem,omitempty"`
	Size        int      `yaml:"size"`
	Module      int32    `yaml:"module"`
	Flags       []string `yaml:"flags,omitempty"`
	Codec       string   `yaml:"codec,omitempty"` // "raw" opts opaque properties into byte copying
	Description string   `yaml:"description,omitempty"`
	Units       string   `yaml:"units,omitempty"`
}

func (e catalogEntry) descriptor() (props.Descriptor, error) {
	tag, err := props.ParseTypeTag(e.Type)
	if err != nil {
		return props.Descriptor{}, err
	}
	d := props.Descriptor{
		Name:        e.Name,
		Size:        e.Size,
		Module:      types.ModuleID(e.Module),
		Type:        tag,
		Description: e.Description,
		Units:       e.Units,
	}
	if e.Elem != "" {
		if d.Elem, err = props.ParseTypeTag(e.Elem); err != nil {
			return props.Descriptor{}, err
		}
	}
	if d.Flags, err = props.ParseFlags(e.Flags); err != nil {
		return props.Descriptor{}, err
	}
	switch e.Codec {
	case "", "builtin":
	case "raw":
		d.Codec = props.RawCodec{Size: e.Size / d.Count()}
	default:
		return props.Descriptor{}, fmt.Errorf("unknown codec %q: %w", e.Codec, types.ErrInvalidArgument)
	}
	return d, nil
}

// decodeCatalog parses a catalog. Unknown keys are rejected.
func decodeCatalog(r io.Reader) ([]props.Descriptor, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f catalogFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	descs := make([]props.Descriptor, 0, len(f.Properties))
	for i, e := range f.Properties {
		d, err := e.descriptor()
		if err != nil {
			return nil, fmt.Errorf("catalog: entry %d (%s): %w", i, e.Name, err)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func loadCatalog(path string) ([]props.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return decodeCatalog(f)
}

// buildRegistry registers descs in order into a registry sized by cfg.
func buildRegistry(descs []props.Descriptor) (*props.Registry, []types.ExtensionID, error) {
	reg := props.New(props.WithLimits(cfg.Limits()))
	ids := make([]types.ExtensionID, 0, len(descs))
	for _, d := range descs {
		id, err := reg.Register(d)
		if err != nil {
			return nil, nil, fmt.Errorf("register %s: %w", d.Name, err)
		}
		printVerbose("registered %s as id %d\n", d.Name, id)
		ids = append(ids, id)
	}
	return reg, ids, nil
}

// defaultCatalog is used when no catalog file is given.
func defaultCatalog() []props.Descriptor {
	return []props.Descriptor{
		{Name: "CoolingRate", Size: 8, Module: 1, Type: props.TypeFloat64, Flags: props.FlagSerialize | props.FlagZeroInit, Units: "erg/s"},
		{Name: "HeatingRate", Size: 8, Module: 1, Type: props.TypeFloat64, Flags: props.FlagSerialize, Units: "erg/s"},
		{Name: "QuasarActive", Size: 1, Module: 2, Type: props.TypeBool, Flags: props.FlagSerialize},
		{Name: "MergerCount", Size: 4, Module: 3, Type: props.TypeInt32, Flags: props.FlagSerialize | props.FlagZeroInit},
		{Name: "RegionList", Size: 64, Module: 4, Type: props.TypeStruct},
	}
}
