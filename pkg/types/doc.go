// Package types defines the shared identifiers, capacity limits, and typed
// errors used across galkit.
//
// Design goals:
//   - Small, copyable handles (ExtensionID/ModuleID) instead of pointers.
//   - Never panic on misuse; report a typed error and let the caller decide.
//   - Typed errors with stable categories (invalid/not-found/exhausted/...).
//
// This package has no dependencies beyond the standard library.
package types
