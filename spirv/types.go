package spirv

import (
	"slices"
	"strconv"

	"github.com/wippyai/spirv-types/errors"
	"github.com/wippyai/spirv-types/internal/binary"
)

// Type is a type entry. Its kind is fixed by Op; the kind-specific fields
// live in a payload reached only through accessors, so a complete Type is
// read-only apart from the late-bound setters.
//
// Fields naming other entries hold ids resolved through the owning Module,
// which lets a type reference entries defined later in the stream.
type Type struct {
	mod       *Module
	payload   payload
	id        ID
	op        Op
	wordCount uint16
	complete  bool
	placed    bool
}

// payload is the sum of the per-kind type payloads.
type payload interface {
	isPayload()
}

type (
	// Void, Bool, Sampler, Event, DeviceEvent, ReserveId, Queue and PipeStorage.
	emptyType struct{}

	intType struct {
		width  uint32
		signed bool
	}

	floatType struct {
		width uint32
	}

	vectorType struct {
		component ID
		count     uint32
	}

	matrixType struct {
		column ID
		count  uint32
	}

	arrayType struct {
		element ID
		length  ID
	}

	runtimeArrayType struct {
		element ID
	}

	pointerType struct {
		element      ID
		storageClass StorageClass
	}

	structType struct {
		name    string
		members []ID
		packed  bool
		literal bool
	}

	functionType struct {
		params []ID
		ret    ID
	}

	opaqueType struct {
		name string
	}

	imageType struct {
		access  []AccessQualifier
		desc    ImageDescriptor
		sampled ID
	}

	sampledImageType struct {
		image ID
	}

	pipeType struct {
		access AccessQualifier
	}
)

func (*emptyType) isPayload()        {}
func (*intType) isPayload()          {}
func (*floatType) isPayload()        {}
func (*vectorType) isPayload()       {}
func (*matrixType) isPayload()       {}
func (*arrayType) isPayload()        {}
func (*runtimeArrayType) isPayload() {}
func (*pointerType) isPayload()      {}
func (*structType) isPayload()       {}
func (*functionType) isPayload()     {}
func (*opaqueType) isPayload()       {}
func (*imageType) isPayload()        {}
func (*sampledImageType) isPayload() {}
func (*pipeType) isPayload()         {}

// fixedWordCount holds the serialized length of kinds without trailing
// variable-length operands.
var fixedWordCount = map[Op]uint16{
	OpTypeVoid:         2,
	OpTypeBool:         2,
	OpTypeInt:          4,
	OpTypeFloat:        3,
	OpTypeVector:       4,
	OpTypeMatrix:       4,
	OpTypeSampler:      2,
	OpTypeSampledImage: 3,
	OpTypeArray:        4,
	OpTypeRuntimeArray: 3,
	OpTypePointer:      4,
	OpTypeEvent:        2,
	OpTypeDeviceEvent:  2,
	OpTypeReserveId:    2,
	OpTypeQueue:        2,
	OpTypePipe:         3,
	OpTypePipeStorage:  2,
}

// Minimum word counts of variable-length kinds.
const (
	structFixedWC   = 2
	functionFixedWC = 3
	imageFixedWC    = 9
	opaqueFixedWC   = 3
)

// newType creates an incomplete entry of kind op.
func newType(m *Module, id ID, op Op) *Type {
	t := &Type{mod: m, id: id, op: op, wordCount: fixedWordCount[op]}
	switch op {
	case OpTypeInt:
		t.payload = &intType{}
	case OpTypeFloat:
		t.payload = &floatType{}
	case OpTypeVector:
		t.payload = &vectorType{}
	case OpTypeMatrix:
		t.payload = &matrixType{}
	case OpTypeArray:
		t.payload = &arrayType{}
	case OpTypeRuntimeArray:
		t.payload = &runtimeArrayType{}
	case OpTypePointer:
		t.payload = &pointerType{}
	case OpTypeStruct:
		t.payload = &structType{literal: true}
		t.wordCount = structFixedWC
	case OpTypeFunction:
		t.payload = &functionType{}
		t.wordCount = functionFixedWC
	case OpTypeOpaque:
		t.payload = &opaqueType{}
		t.wordCount = opaqueFixedWC
	case OpTypeImage:
		t.payload = &imageType{}
		t.wordCount = imageFixedWC
	case OpTypeSampledImage:
		t.payload = &sampledImageType{}
	case OpTypePipe:
		t.payload = &pipeType{}
	default:
		t.payload = &emptyType{}
	}
	return t
}

// setWordCount records the declared length and resizes the trailing operand
// list to match it.
func (t *Type) setWordCount(wc uint16) error {
	if fixed, ok := fixedWordCount[t.op]; ok {
		if wc != fixed {
			return errors.MalformedStream(errors.PhaseDecode,
				t.op.String()+" has word count "+strconv.Itoa(int(wc))+", want "+strconv.Itoa(int(fixed)))
		}
		return nil
	}
	var least uint16
	switch p := t.payload.(type) {
	case *structType:
		least = structFixedWC
		if wc >= least {
			p.members = resize[ID](wc - least)
		}
	case *functionType:
		least = functionFixedWC
		if wc >= least {
			p.params = resize[ID](wc - least)
		}
	case *imageType:
		least = imageFixedWC
		if wc >= least {
			p.access = resize[AccessQualifier](wc - least)
		}
	case *opaqueType:
		least = opaqueFixedWC
	}
	if wc < least {
		return errors.MalformedStream(errors.PhaseDecode,
			t.op.String()+" has word count "+strconv.Itoa(int(wc))+", want at least "+strconv.Itoa(int(least)))
	}
	t.wordCount = wc
	return nil
}

// resize returns n zeroed slots, or nil when n is zero.
func resize[T any](n uint16) []T {
	if n == 0 {
		return nil
	}
	return make([]T, n)
}

// computeWordCount derives the serialized length from the payload.
func (t *Type) computeWordCount() {
	switch p := t.payload.(type) {
	case *structType:
		t.wordCount = uint16(structFixedWC + len(p.members))
	case *functionType:
		t.wordCount = uint16(functionFixedWC + len(p.params))
	case *imageType:
		t.wordCount = uint16(imageFixedWC + len(p.access))
	case *opaqueType:
		t.wordCount = uint16(2 + binary.StringWords(p.name))
	default:
		t.wordCount = fixedWordCount[t.op]
	}
}

// ID returns the result id.
func (t *Type) ID() ID { return t.id }

// Op returns the kind tag.
func (t *Type) Op() Op { return t.op }

// WordCount returns the serialized length in words.
func (t *Type) WordCount() uint16 { return t.wordCount }

// IsComplete reports whether every field of the entry is populated.
func (t *Type) IsComplete() bool { return t.complete }

// Module returns the owning module.
func (t *Type) Module() *Module { return t.mod }

func (t *Type) String() string {
	return "%" + strconv.Itoa(int(t.id)) + " " + t.op.String()
}

// Operands returns the ids of every entry this type references, in operand
// order. Literal operands are not included.
func (t *Type) Operands() []ID {
	switch p := t.payload.(type) {
	case *vectorType:
		return []ID{p.component}
	case *matrixType:
		return []ID{p.column}
	case *arrayType:
		return []ID{p.element, p.length}
	case *runtimeArrayType:
		return []ID{p.element}
	case *pointerType:
		return []ID{p.element}
	case *structType:
		return slices.Clone(p.members)
	case *functionType:
		return append([]ID{p.ret}, p.params...)
	case *imageType:
		return []ID{p.sampled}
	case *sampledImageType:
		return []ID{p.image}
	}
	return nil
}

func (t *Type) mismatch(want string) error {
	return errors.ShapeMismatch(errors.PhaseQuery, t.op.String(), uint32(t.id), want)
}

// BitWidth returns the width of a scalar, or of a vector's component.
// Bool reports 1.
func (t *Type) BitWidth() (uint32, error) {
	switch p := t.payload.(type) {
	case *intType:
		return p.width, nil
	case *floatType:
		return p.width, nil
	case *vectorType:
		if c := t.mod.typeOf(p.component); c != nil && c != t {
			return c.BitWidth()
		}
		return 0, errors.UnresolvedReference(errors.PhaseQuery, t.op.String(), uint32(t.id), "component", uint32(p.component))
	}
	if t.op == OpTypeBool {
		return 1, nil
	}
	return 0, t.mismatch("scalar or vector type")
}

// IntegerBitWidth returns the width of an integer type.
func (t *Type) IntegerBitWidth() (uint32, error) {
	if p, ok := t.payload.(*intType); ok {
		return p.width, nil
	}
	return 0, t.mismatch("OpTypeInt")
}

// FloatBitWidth returns the width of a float type.
func (t *Type) FloatBitWidth() (uint32, error) {
	if p, ok := t.payload.(*floatType); ok {
		return p.width, nil
	}
	return 0, t.mismatch("OpTypeFloat")
}

// IsSigned reports the signedness of an integer type.
func (t *Type) IsSigned() (bool, error) {
	if p, ok := t.payload.(*intType); ok {
		return p.signed, nil
	}
	return false, t.mismatch("OpTypeInt")
}

func (t *Type) VectorComponentType() (ID, error) {
	if p, ok := t.payload.(*vectorType); ok {
		return p.component, nil
	}
	return 0, t.mismatch("OpTypeVector")
}

func (t *Type) VectorComponentCount() (uint32, error) {
	if p, ok := t.payload.(*vectorType); ok {
		return p.count, nil
	}
	return 0, t.mismatch("OpTypeVector")
}

func (t *Type) MatrixColumnType() (ID, error) {
	if p, ok := t.payload.(*matrixType); ok {
		return p.column, nil
	}
	return 0, t.mismatch("OpTypeMatrix")
}

func (t *Type) MatrixColumnCount() (uint32, error) {
	if p, ok := t.payload.(*matrixType); ok {
		return p.count, nil
	}
	return 0, t.mismatch("OpTypeMatrix")
}

func (t *Type) ArrayElementType() (ID, error) {
	if p, ok := t.payload.(*arrayType); ok {
		return p.element, nil
	}
	return 0, t.mismatch("OpTypeArray")
}

// ArrayLength returns the id of the constant holding the array length.
// Resolving the constant to an integer is up to the caller.
func (t *Type) ArrayLength() (ID, error) {
	if p, ok := t.payload.(*arrayType); ok {
		return p.length, nil
	}
	return 0, t.mismatch("OpTypeArray")
}

func (t *Type) RuntimeArrayElementType() (ID, error) {
	if p, ok := t.payload.(*runtimeArrayType); ok {
		return p.element, nil
	}
	return 0, t.mismatch("OpTypeRuntimeArray")
}

// PointerElementType returns the pointee id. The pointee may still be incomplete.
func (t *Type) PointerElementType() (ID, error) {
	if p, ok := t.payload.(*pointerType); ok {
		return p.element, nil
	}
	return 0, t.mismatch("OpTypePointer")
}

func (t *Type) PointerStorageClass() (StorageClass, error) {
	if p, ok := t.payload.(*pointerType); ok {
		return p.storageClass, nil
	}
	return 0, t.mismatch("OpTypePointer")
}

func (t *Type) StructMemberCount() (int, error) {
	if p, ok := t.payload.(*structType); ok {
		return len(p.members), nil
	}
	return 0, t.mismatch("OpTypeStruct")
}

func (t *Type) StructMemberType(i int) (ID, error) {
	p, ok := t.payload.(*structType)
	if !ok {
		return 0, t.mismatch("OpTypeStruct")
	}
	if i < 0 || i >= len(p.members) {
		return 0, errors.InvalidField(errors.PhaseQuery, t.op.String(), uint32(t.id), "member", i, "member index out of range")
	}
	return p.members[i], nil
}

// StructName returns the struct's name; literal structs have none.
func (t *Type) StructName() (string, error) {
	if p, ok := t.payload.(*structType); ok {
		return p.name, nil
	}
	return "", t.mismatch("OpTypeStruct")
}

// IsPacked reports whether the struct has no implicit padding between members.
func (t *Type) IsPacked() (bool, error) {
	if p, ok := t.payload.(*structType); ok {
		return p.packed, nil
	}
	return false, t.mismatch("OpTypeStruct")
}

// IsLiteral reports whether the struct is literal rather than identified.
func (t *Type) IsLiteral() (bool, error) {
	if p, ok := t.payload.(*structType); ok {
		return p.literal, nil
	}
	return false, t.mismatch("OpTypeStruct")
}

func (t *Type) FunctionReturnType() (ID, error) {
	if p, ok := t.payload.(*functionType); ok {
		return p.ret, nil
	}
	return 0, t.mismatch("OpTypeFunction")
}

func (t *Type) FunctionParameterCount() (int, error) {
	if p, ok := t.payload.(*functionType); ok {
		return len(p.params), nil
	}
	return 0, t.mismatch("OpTypeFunction")
}

func (t *Type) FunctionParameterType(i int) (ID, error) {
	p, ok := t.payload.(*functionType)
	if !ok {
		return 0, t.mismatch("OpTypeFunction")
	}
	if i < 0 || i >= len(p.params) {
		return 0, errors.InvalidField(errors.PhaseQuery, t.op.String(), uint32(t.id), "parameter", i, "parameter index out of range")
	}
	return p.params[i], nil
}

// CompositeElementType returns the type of element i of a composite: the
// struct member, or the single element type of a vector, matrix or array.
func (t *Type) CompositeElementType(i int) (ID, error) {
	switch p := t.payload.(type) {
	case *structType:
		return t.StructMemberType(i)
	case *vectorType:
		return p.component, nil
	case *matrixType:
		return p.column, nil
	case *arrayType:
		return p.element, nil
	case *runtimeArrayType:
		return p.element, nil
	}
	return 0, t.mismatch("composite type")
}

// CompositeElementCount returns the number of elements of a composite. An
// array's length constant is resolved through the module.
func (t *Type) CompositeElementCount() (uint64, error) {
	switch p := t.payload.(type) {
	case *structType:
		return uint64(len(p.members)), nil
	case *vectorType:
		return uint64(p.count), nil
	case *matrixType:
		return uint64(p.count), nil
	case *arrayType:
		c, err := t.mod.ConstantOf(p.length)
		if err != nil {
			return 0, err
		}
		n, ok := c.Uint64()
		if !ok {
			return 0, errors.InvalidField(errors.PhaseQuery, t.op.String(), uint32(t.id), "length", p.length, "length constant has no literal value of at most 64 bits")
		}
		return n, nil
	}
	return 0, t.mismatch("struct, vector, matrix or array type")
}

func (t *Type) OpaqueName() (string, error) {
	if p, ok := t.payload.(*opaqueType); ok {
		return p.name, nil
	}
	return "", t.mismatch("OpTypeOpaque")
}

func (t *Type) ImageDescriptor() (ImageDescriptor, error) {
	if p, ok := t.payload.(*imageType); ok {
		return p.desc, nil
	}
	return ImageDescriptor{}, t.mismatch("OpTypeImage")
}

// SampledType returns the component type of texels read from the image.
func (t *Type) SampledType() (ID, error) {
	if p, ok := t.payload.(*imageType); ok {
		return p.sampled, nil
	}
	return 0, t.mismatch("OpTypeImage")
}

// HasAccessQualifier reports whether the image declares an access qualifier.
func (t *Type) HasAccessQualifier() bool {
	p, ok := t.payload.(*imageType)
	return ok && len(p.access) > 0
}

// AccessQualifier returns the image's access qualifier, or ReadOnly when
// the image declares none.
func (t *Type) AccessQualifier() (AccessQualifier, error) {
	p, ok := t.payload.(*imageType)
	if !ok {
		return 0, t.mismatch("OpTypeImage")
	}
	if len(p.access) == 0 {
		return AccessQualifierReadOnly, nil
	}
	return p.access[0], nil
}

func (t *Type) SampledImageType() (ID, error) {
	if p, ok := t.payload.(*sampledImageType); ok {
		return p.image, nil
	}
	return 0, t.mismatch("OpTypeSampledImage")
}

func (t *Type) PipeAccessQualifier() (AccessQualifier, error) {
	if p, ok := t.payload.(*pipeType); ok {
		return p.access, nil
	}
	return 0, t.mismatch("OpTypePipe")
}

// Late-bound setters. These are the only mutations allowed on a complete entry.

// SetPacked marks a struct as packed.
func (t *Type) SetPacked(packed bool) error {
	p, ok := t.payload.(*structType)
	if !ok {
		return t.mismatch("OpTypeStruct")
	}
	p.packed = packed
	return nil
}

// SetLiteral marks a struct as literal or identified.
func (t *Type) SetLiteral(literal bool) error {
	p, ok := t.payload.(*structType)
	if !ok {
		return t.mismatch("OpTypeStruct")
	}
	p.literal = literal
	return nil
}

// SetName names a struct and records the name as its debug name.
func (t *Type) SetName(name string) error {
	if _, ok := t.payload.(*structType); !ok {
		return t.mismatch("OpTypeStruct")
	}
	return t.mod.SetName(t.id, name)
}

// SetImageType points a sampled image at its image type.
func (t *Type) SetImageType(image ID) error {
	p, ok := t.payload.(*sampledImageType)
	if !ok {
		return t.mismatch("OpTypeSampledImage")
	}
	img, err := t.mod.TypeOf(image)
	if err != nil {
		return err
	}
	if img.op != OpTypeImage {
		return errors.ShapeMismatch(errors.PhaseBuild, t.op.String(), uint32(t.id), "OpTypeImage operand")
	}
	p.image = image
	return nil
}

// SetPipeAccessQualifier changes a pipe's access qualifier.
func (t *Type) SetPipeAccessQualifier(access AccessQualifier) error {
	p, ok := t.payload.(*pipeType)
	if !ok {
		return t.mismatch("OpTypePipe")
	}
	if !access.IsValid() {
		return errors.InvalidEnum(errors.PhaseBuild, t.op.String(), "access", uint32(access), "AccessQualifier")
	}
	p.access = access
	return nil
}

// SetMemberType fills member slot i of an incomplete struct.
func (t *Type) SetMemberType(i int, member ID) error {
	p, ok := t.payload.(*structType)
	if !ok {
		return t.mismatch("OpTypeStruct")
	}
	if t.complete {
		return errors.New(errors.PhaseBuild, errors.KindInvalidInput).
			Op(t.op.String()).ID(uint32(t.id)).
			Detail("members of a complete struct are immutable").Build()
	}
	if i < 0 || i >= len(p.members) {
		return errors.InvalidField(errors.PhaseBuild, t.op.String(), uint32(t.id), "member", i, "member index out of range")
	}
	p.members[i] = member
	return nil
}

// Complete validates an incomplete entry built through Register or
// AddTypeStructPlaceholder and marks it complete.
func (t *Type) Complete() error {
	if t.complete {
		return nil
	}
	t.computeWordCount()
	if err := newValidator(t.mod, false).check(t); err != nil {
		return err
	}
	t.complete = true
	return nil
}
