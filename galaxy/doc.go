// Package galaxy defines the galaxy record and the operations that create,
// copy and free it.
//
// # Record layout
//
// A Galaxy has three parts:
//
//   - Fields: fixed values written by merger-tree readers and physics code
//     (identifiers, halo properties, position, velocity).
//   - Ext: lazily allocated extension slots for properties registered at
//     runtime through galaxy/props.
//   - Props: a store.Handle naming the galaxy's core property store in the
//     Env's store.Table.
//
// Copying a Galaxy value copies Fields, shares extension slot buffers and
// duplicates the handle. Use Copy for a deep copy; array.Append and the pool
// do this for you.
//
// # Env
//
// Env bundles the registry and store table. There is no hidden global
// state in this package:
//
//	reg := props.New()
//	coolID, _ := reg.Register(props.Descriptor{
//	    Name: "CoolingRate", Size: 8, Module: 1, Type: props.TypeFloat64,
//	})
//	env, _ := galaxy.NewEnv(reg, nil)
//
//	g, _ := galaxy.New(env)
//	_ = g.Ext.SetFloat64(env.Registry, coolID, 1.2e41)
//	st, _ := g.Store(env)
//	_ = st.SetFloat32(store.ColdGas, 0.3)
//	_ = galaxy.Free(env, g)
//
// # Lifecycle helpers
//
//   - New / Init: fully zeroed galaxy with a fresh store.
//   - Recycle: re-initializes extensions only. Fixed fields and store
//     contents from the previous tenant survive. This is the pool's
//     allocation path.
//   - Copy: deep copy with a cloned store.
//   - Free: releases extensions and the store.
package galaxy
