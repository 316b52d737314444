// Package props implements the extension property registry.
//
// # Overview
//
// Physics and I/O modules declare the per-galaxy fields they need at startup
// by registering a Descriptor. The registry validates it and returns a stable
// ExtensionID that the module caches for the rest of the run:
//
//	reg := props.New()
//	coolingID, err := reg.Register(props.Descriptor{
//	    Name:   "Cooling",
//	    Size:   4,
//	    Module: 1,
//	    Type:   props.TypeFloat32,
//	    Flags:  props.FlagSerialize | props.FlagZeroInit,
//	})
//
// # Identifier Stability
//
// Ids are dense and assigned in registration order starting at 0. They are
// never reused: Unregister clears the descriptor in place and the id stays
// reserved, so Len() counts every id ever issued. The registry capacity
// (types.MaxProperties) is therefore a lifetime budget.
//
// # Module Grouping
//
// Each module's ids are kept as an explicit list in registration order.
// Modules may interleave registrations; FindAllByModule and ModuleExtension
// always resolve to the module's own properties.
//
// # Serialization
//
// Properties flagged FlagSerialize must have a Codec. Scalars and arrays of
// scalars get a built-in little-endian codec; opaque structs must supply one
// (RawCodec for a verbatim byte copy).
//
// # Thread Safety
//
// Registry instances are not thread-safe. Register everything during startup
// from a single goroutine.
package props
