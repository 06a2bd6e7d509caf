package spvasm

import (
	"strconv"

	"github.com/wippyai/spirv-types/spirv"
)

// kind is the syntactic class of one instruction operand.
type kind int

const (
	kindID kind = iota
	kindLiteral
	kindString
	kindValue // constant value sized by its result type
	kindRaw   // id or number emitted as a bare word
	kindCapability
	kindStorageClass
	kindDim
	kindImageFormat
	kindAccessQualifier
	kindDecoration
	kindAddressingModel
	kindMemoryModel
)

// shape describes the operand layout of an opcode. Typed instructions carry
// their result type before the result id; the tail repeats up to tailMax
// times, with -1 meaning unbounded.
type shape struct {
	fixed   []kind
	tail    kind
	tailMax int
	result  bool
	typed   bool
}

func fixed(kinds ...kind) shape { return shape{fixed: kinds} }

func result(kinds ...kind) shape { return shape{fixed: kinds, result: true} }

func (s shape) repeat(k kind) shape {
	s.tail, s.tailMax = k, -1
	return s
}

func (s shape) optional(k kind) shape {
	s.tail, s.tailMax = k, 1
	return s
}

var grammar = map[spirv.Op]shape{
	spirv.OpSourceExtension: fixed(kindString),
	spirv.OpName:            fixed(kindID, kindString),
	spirv.OpMemberName:      fixed(kindID, kindLiteral, kindString),
	spirv.OpString:          result(kindString),
	spirv.OpExtension:       fixed(kindString),
	spirv.OpExtInstImport:   result(kindString),
	spirv.OpMemoryModel:     fixed(kindAddressingModel, kindMemoryModel),
	spirv.OpEntryPoint:      fixed(kindLiteral, kindID, kindString).repeat(kindID),
	spirv.OpExecutionMode:   fixed(kindID, kindLiteral).repeat(kindLiteral),
	spirv.OpCapability:      fixed(kindCapability),
	spirv.OpDecorate:        fixed(kindID, kindDecoration).repeat(kindLiteral),
	spirv.OpMemberDecorate:  fixed(kindID, kindLiteral, kindDecoration).repeat(kindLiteral),

	spirv.OpTypeVoid:           result(),
	spirv.OpTypeBool:           result(),
	spirv.OpTypeInt:            result(kindLiteral, kindLiteral),
	spirv.OpTypeFloat:          result(kindLiteral),
	spirv.OpTypeVector:         result(kindID, kindLiteral),
	spirv.OpTypeMatrix:         result(kindID, kindLiteral),
	spirv.OpTypeImage:          result(kindID, kindDim, kindLiteral, kindLiteral, kindLiteral, kindLiteral, kindImageFormat).repeat(kindAccessQualifier),
	spirv.OpTypeSampler:        result(),
	spirv.OpTypeSampledImage:   result(kindID),
	spirv.OpTypeArray:          result(kindID, kindID),
	spirv.OpTypeRuntimeArray:   result(kindID),
	spirv.OpTypeStruct:         result().repeat(kindID),
	spirv.OpTypeOpaque:         result(kindString),
	spirv.OpTypePointer:        result(kindStorageClass, kindID),
	spirv.OpTypeFunction:       result(kindID).repeat(kindID),
	spirv.OpTypeEvent:          result(),
	spirv.OpTypeDeviceEvent:    result(),
	spirv.OpTypeReserveId:      result(),
	spirv.OpTypeQueue:          result(),
	spirv.OpTypePipe:           result(kindAccessQualifier),
	spirv.OpTypeForwardPointer: fixed(kindID, kindStorageClass),
	spirv.OpTypePipeStorage:    result(),

	spirv.OpConstantTrue:      typed(),
	spirv.OpConstantFalse:     typed(),
	spirv.OpConstant:          typed(kindValue),
	spirv.OpConstantNull:      typed(),
	spirv.OpSpecConstantTrue:  typed(),
	spirv.OpSpecConstantFalse: typed(),
	spirv.OpSpecConstant:      typed(kindValue),

	// Spec constant operations mix ids and literals, so their operands are
	// written as bare words.
	spirv.OpUndef:                 typed(),
	spirv.OpConstantComposite:     typed().repeat(kindID),
	spirv.OpSpecConstantComposite: typed().repeat(kindID),
	spirv.OpSpecConstantOp:        typed(kindLiteral).repeat(kindRaw),
	spirv.OpFunction:              typed(kindLiteral, kindID),
	spirv.OpFunctionParameter:     typed(),
	spirv.OpFunctionEnd:           fixed(),
	spirv.OpVariable:              typed(kindStorageClass).optional(kindID),
	spirv.OpLabel:                 result(),
}

func typed(kinds ...kind) shape {
	s := result(kinds...)
	s.typed = true
	return s
}

// rawShape is used for opcodes without an entry in grammar: every operand is
// a bare word.
var rawShape = shape{tail: kindRaw, tailMax: -1}

func shapeOf(op spirv.Op) shape {
	if s, ok := grammar[op]; ok {
		return s
	}
	return rawShape
}

type enumKind struct {
	parse func(string) (uint32, bool)
	name  func(uint32) string
}

func enumOf[T interface {
	~uint32
	String() string
}](parse func(string) (T, bool)) enumKind {
	return enumKind{
		parse: func(s string) (uint32, bool) {
			v, ok := parse(s)
			return uint32(v), ok
		},
		name: func(v uint32) string { return T(v).String() },
	}
}

// format prints v by name, or by number when the name does not parse back.
func (e enumKind) format(v uint32) string {
	name := e.name(v)
	if got, ok := e.parse(name); ok && got == v {
		return name
	}
	return strconv.FormatUint(uint64(v), 10)
}

// enumKinds maps each enumerant operand kind to its name parser and printer.
var enumKinds = map[kind]enumKind{
	kindCapability:      enumOf(spirv.ParseCapability),
	kindStorageClass:    enumOf(spirv.ParseStorageClass),
	kindDim:             enumOf(spirv.ParseDim),
	kindImageFormat:     enumOf(spirv.ParseImageFormat),
	kindAccessQualifier: enumOf(spirv.ParseAccessQualifier),
	kindDecoration:      enumOf(spirv.ParseDecoration),
	kindAddressingModel: enumOf(spirv.ParseAddressingModel),
	kindMemoryModel:     enumOf(spirv.ParseMemoryModel),
}
