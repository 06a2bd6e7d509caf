package spirvtypes

import (
	"iter"

	"github.com/wippyai/spirv-types/spirv"
)

// TypeQuery is the read-only view of a type entry that code generation and
// capability analysis depend on. *spirv.Type implements it.
type TypeQuery interface {
	ID() spirv.ID
	Op() spirv.Op
	WordCount() uint16
	IsComplete() bool
	Operands() []spirv.ID
	BitWidth() (uint32, error)
	IsScalar() bool
	IsComposite() bool
	IsVectorOrScalarInt(bits uint32) bool
	IsVectorOrScalarFloat(bits uint32) bool
	IsVectorOrScalarBool() bool
	RequiredCapabilities() iter.Seq[spirv.Capability]
	Validate() error
}

// Resolver maps ids to type entries. *spirv.Module implements it.
type Resolver interface {
	TypeOf(id spirv.ID) (*spirv.Type, error)
	Types() []*spirv.Type
}
