package types

// ============================================================================
// Capacity and growth defaults
// ============================================================================
// Fixed limits match the reference simulation code. Growth parameters are
// defaults; every structure accepts overrides through its options.

const (
	// MaxProperties is the default number of extension ids a registry issues
	// over its lifetime. Unregistered ids still count against it.
	MaxProperties = 64

	// MaxModules is the default number of distinct modules that may hold
	// live registrations at the same time.
	MaxModules = 32

	// DefaultGrowthFactor is the multiplier applied per growth step.
	DefaultGrowthFactor = 1.5

	// MinGrowthFactor is the smallest factor accepted by growth policies.
	MinGrowthFactor = 1.1

	// DefaultGrowthFloor seeds growth of an empty buffer.
	DefaultGrowthFloor = 16

	// ArrayGrowthFloor seeds the first growth of a record array.
	ArrayGrowthFloor = 256

	// DefaultPoolBlockSize is the number of records per pool block.
	DefaultPoolBlockSize = 1024

	// DefaultPoolCapacity is the number of records a pool pre-allocates.
	DefaultPoolCapacity = 4096
)

// Limits bounds registry growth.
type Limits struct {
	MaxProperties int // Total extension ids issued (including unregistered)
	MaxModules    int // Distinct modules with live registrations
}

// DefaultLimits returns the limits of the reference simulation.
func DefaultLimits() Limits {
	return Limits{
		MaxProperties: MaxProperties,
		MaxModules:    MaxModules,
	}
}

// Normalize replaces non-positive fields with defaults.
func (l Limits) Normalize() Limits {
	if l.MaxProperties <= 0 {
		l.MaxProperties = MaxProperties
	}
	if l.MaxModules <= 0 {
		l.MaxModules = MaxModules
	}
	return l
}
