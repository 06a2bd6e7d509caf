package spirv

import "go.uber.org/zap"

// DefaultFloat16Extension is the extension that enables full Float16
// arithmetic for 16-bit float types.
const DefaultFloat16Extension = "cl_khr_fp16"

// Options configure a Module.
type Options struct {
	// Logger overrides the package logger for this module. Nil means Logger().
	Logger *zap.Logger

	// OpCapabilities maps a type opcode to capabilities it always requires,
	// independent of its operands.
	OpCapabilities map[Op][]Capability

	// Float16Extension names the extension whose presence adds the Float16
	// capability to 16-bit float types.
	Float16Extension string

	// Extensions are enabled on the module before any instruction is added.
	Extensions []string
}

// DefaultOptions returns the options used by NewModule.
func DefaultOptions() Options {
	return Options{
		Float16Extension: DefaultFloat16Extension,
		OpCapabilities:   DefaultOpCapabilities(),
	}
}

// DefaultOpCapabilities returns the per-opcode capability table.
func DefaultOpCapabilities() map[Op][]Capability {
	return map[Op][]Capability{
		OpTypeEvent:          {CapabilityKernel},
		OpTypeReserveId:      {CapabilityPipes},
		OpTypeOpaque:         {CapabilityKernel},
		OpTypePipeStorage:    {CapabilityPipeStorage},
		OpTypeForwardPointer: {CapabilityAddresses},
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return Logger()
}
