package main

import (
	"fmt"

	"github.com/joshuapare/galkit/galaxy"
	"github.com/joshuapare/galkit/galaxy/props"
	"github.com/joshuapare/galkit/galaxy/store"
)

// openEnv builds a registry from catalogPath (or the demo catalog when the
// path is empty) and pairs it with a fresh core store table. The returned
// func closes the registry.
func openEnv(catalogPath string) (*galaxy.Env, func(), error) {
	descs := defaultCatalog()
	if catalogPath != "" {
		var err error
		if descs, err = loadCatalog(catalogPath); err != nil {
			return nil, nil, err
		}
	}
	reg, _, err := buildRegistry(descs)
	if err != nil {
		return nil, nil, err
	}
	env, err := galaxy.NewEnv(reg, store.NewTable(nil))
	if err != nil {
		reg.Close()
		return nil, nil, fmt.Errorf("env: %w", err)
	}
	return env, reg.Close, nil
}

// populate fills the scalar extensions and a few core fields of g with
// values derived from i, so demo output is deterministic.
func populate(env *galaxy.Env, g *galaxy.Galaxy, i int) error {
	g.GalaxyNr = int32(i)
	g.SnapNum = 63
	g.Mvir = float32(i) + 0.5

	s, err := g.Store(env)
	if err != nil {
		return err
	}
	if err := s.SetFloat32(store.ColdGas, float32(i)*0.25); err != nil {
		return err
	}
	if err := s.SetFloat32(store.StellarMass, float32(i)*0.125); err != nil {
		return err
	}

	for _, m := range env.Registry.Modules() {
		for _, d := range env.Registry.FindAllByModule(m) {
			if err := setScalar(env.Registry, g, d, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func setScalar(reg *props.Registry, g *galaxy.Galaxy, d props.Descriptor, i int) error {
	if d.Flags.Has(props.FlagReadOnly) {
		return nil
	}
	switch d.Type {
	case props.TypeFloat32:
		return g.Ext.SetFloat32(reg, d.ID, float32(i))
	case props.TypeFloat64:
		return g.Ext.SetFloat64(reg, d.ID, float64(i)*1.5)
	case props.TypeInt32:
		return g.Ext.SetInt32(reg, d.ID, int32(i))
	case props.TypeInt64:
		return g.Ext.SetInt64(reg, d.ID, int64(i))
	case props.TypeUint64:
		return g.Ext.SetUint64(reg, d.ID, uint64(i))
	case props.TypeBool:
		return g.Ext.SetBool(reg, d.ID, i%2 == 1)
	}
	return nil
}
