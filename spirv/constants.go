package spirv

import (
	"strconv"
	"strings"
)

// SPIR-V binary format magic number and versions.
const (
	// Magic is the SPIR-V magic number in the stream's native byte order.
	Magic uint32 = 0x07230203

	// HeaderWords is the number of words in the module header:
	// magic, version, generator, bound, schema.
	HeaderWords = 5

	Version1_0 uint32 = 0x00010000
	Version1_3 uint32 = 0x00010300
	Version1_5 uint32 = 0x00010500
	Version1_6 uint32 = 0x00010600
)

// Op is a SPIR-V opcode.
type Op uint16

// Debug, annotation, mode-setting, constant and function-level opcodes the
// module container handles.
const (
	OpNop                   Op = 0
	OpUndef                 Op = 1
	OpSource                Op = 3
	OpSourceExtension       Op = 4
	OpName                  Op = 5
	OpMemberName            Op = 6
	OpString                Op = 7
	OpExtension             Op = 10
	OpExtInstImport         Op = 11
	OpMemoryModel           Op = 14
	OpEntryPoint            Op = 15
	OpExecutionMode         Op = 16
	OpCapability            Op = 17
	OpConstantTrue          Op = 41
	OpConstantFalse         Op = 42
	OpConstant              Op = 43
	OpConstantComposite     Op = 44
	OpConstantNull          Op = 46
	OpSpecConstantTrue      Op = 48
	OpSpecConstantFalse     Op = 49
	OpSpecConstant          Op = 50
	OpSpecConstantComposite Op = 51
	OpSpecConstantOp        Op = 52
	OpFunction              Op = 54
	OpFunctionParameter     Op = 55
	OpFunctionEnd           Op = 56
	OpVariable              Op = 59
	OpDecorate              Op = 71
	OpMemberDecorate        Op = 72
	OpLabel                 Op = 248
)

// Type declaration opcodes.
const (
	OpTypeVoid           Op = 19
	OpTypeBool           Op = 20
	OpTypeInt            Op = 21
	OpTypeFloat          Op = 22
	OpTypeVector         Op = 23
	OpTypeMatrix         Op = 24
	OpTypeImage          Op = 25
	OpTypeSampler        Op = 26
	OpTypeSampledImage   Op = 27
	OpTypeArray          Op = 28
	OpTypeRuntimeArray   Op = 29
	OpTypeStruct         Op = 30
	OpTypeOpaque         Op = 31
	OpTypePointer        Op = 32
	OpTypeFunction       Op = 33
	OpTypeEvent          Op = 34
	OpTypeDeviceEvent    Op = 35
	OpTypeReserveId      Op = 36
	OpTypeQueue          Op = 37
	OpTypePipe           Op = 38
	OpTypeForwardPointer Op = 39
	OpTypePipeStorage    Op = 322
)

var opNames = map[Op]string{
	OpNop:                   "OpNop",
	OpSource:                "OpSource",
	OpSourceExtension:       "OpSourceExtension",
	OpName:                  "OpName",
	OpMemberName:            "OpMemberName",
	OpString:                "OpString",
	OpExtension:             "OpExtension",
	OpExtInstImport:         "OpExtInstImport",
	OpMemoryModel:           "OpMemoryModel",
	OpEntryPoint:            "OpEntryPoint",
	OpExecutionMode:         "OpExecutionMode",
	OpCapability:            "OpCapability",
	OpTypeVoid:              "OpTypeVoid",
	OpTypeBool:              "OpTypeBool",
	OpTypeInt:               "OpTypeInt",
	OpTypeFloat:             "OpTypeFloat",
	OpTypeVector:            "OpTypeVector",
	OpTypeMatrix:            "OpTypeMatrix",
	OpTypeImage:             "OpTypeImage",
	OpTypeSampler:           "OpTypeSampler",
	OpTypeSampledImage:      "OpTypeSampledImage",
	OpTypeArray:             "OpTypeArray",
	OpTypeRuntimeArray:      "OpTypeRuntimeArray",
	OpTypeStruct:            "OpTypeStruct",
	OpTypeOpaque:            "OpTypeOpaque",
	OpTypePointer:           "OpTypePointer",
	OpTypeFunction:          "OpTypeFunction",
	OpTypeEvent:             "OpTypeEvent",
	OpTypeDeviceEvent:       "OpTypeDeviceEvent",
	OpTypeReserveId:         "OpTypeReserveId",
	OpTypeQueue:             "OpTypeQueue",
	OpTypePipe:              "OpTypePipe",
	OpTypeForwardPointer:    "OpTypeForwardPointer",
	OpTypePipeStorage:       "OpTypePipeStorage",
	OpConstantTrue:          "OpConstantTrue",
	OpConstantFalse:         "OpConstantFalse",
	OpConstant:              "OpConstant",
	OpConstantNull:          "OpConstantNull",
	OpSpecConstantTrue:      "OpSpecConstantTrue",
	OpSpecConstantFalse:     "OpSpecConstantFalse",
	OpSpecConstant:          "OpSpecConstant",
	OpDecorate:              "OpDecorate",
	OpMemberDecorate:        "OpMemberDecorate",
	OpUndef:                 "OpUndef",
	OpConstantComposite:     "OpConstantComposite",
	OpSpecConstantComposite: "OpSpecConstantComposite",
	OpSpecConstantOp:        "OpSpecConstantOp",
	OpFunction:              "OpFunction",
	OpFunctionParameter:     "OpFunctionParameter",
	OpFunctionEnd:           "OpFunctionEnd",
	OpVariable:              "OpVariable",
	OpLabel:                 "OpLabel",
}

var opValues = invert(opNames)

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "Op" + strconv.Itoa(int(o))
}

// ParseOp returns the opcode with the given name, e.g. "OpTypeInt". Opcodes
// without a name are spelled "Op" followed by their decimal value.
func ParseOp(name string) (Op, bool) {
	if o, ok := opValues[name]; ok {
		return o, true
	}
	if digits, ok := strings.CutPrefix(name, "Op"); ok && digits != "" {
		n, err := strconv.ParseUint(digits, 10, 16)
		if err == nil {
			return Op(n), true
		}
	}
	return 0, false
}

// IsTypeDeclaration reports whether o declares a type. OpTypeForwardPointer is
// included even though it produces no result id.
func (o Op) IsTypeDeclaration() bool {
	return (o >= OpTypeVoid && o <= OpTypeForwardPointer) || o == OpTypePipeStorage
}

// IsConstant reports whether o declares a constant the type layer can reference.
func (o Op) IsConstant() bool {
	switch o {
	case OpConstantTrue, OpConstantFalse, OpConstant, OpConstantComposite, OpConstantNull,
		OpSpecConstantTrue, OpSpecConstantFalse, OpSpecConstant,
		OpSpecConstantComposite, OpSpecConstantOp:
		return true
	}
	return false
}

// resultIndex returns the operand index of the result id of an instruction
// the type layer keeps verbatim, or -1 when o defines no result or its
// layout is unknown.
func (o Op) resultIndex() int {
	switch o {
	case OpString, OpExtInstImport, OpLabel:
		return 0
	case OpUndef, OpFunction, OpFunctionParameter, OpVariable:
		return 1
	}
	return -1
}

// Capability is a SPIR-V capability.
type Capability uint32

const (
	CapabilityMatrix                            Capability = 0
	CapabilityShader                            Capability = 1
	CapabilityGeometry                          Capability = 2
	CapabilityTessellation                      Capability = 3
	CapabilityAddresses                         Capability = 4
	CapabilityLinkage                           Capability = 5
	CapabilityKernel                            Capability = 6
	CapabilityVector16                          Capability = 7
	CapabilityFloat16Buffer                     Capability = 8
	CapabilityFloat16                           Capability = 9
	CapabilityFloat64                           Capability = 10
	CapabilityInt64                             Capability = 11
	CapabilityInt64Atomics                      Capability = 12
	CapabilityImageBasic                        Capability = 13
	CapabilityImageReadWrite                    Capability = 14
	CapabilityImageMipmap                       Capability = 15
	CapabilityPipes                             Capability = 17
	CapabilityGroups                            Capability = 18
	CapabilityDeviceEnqueue                     Capability = 19
	CapabilityLiteralSampler                    Capability = 20
	CapabilityAtomicStorage                     Capability = 21
	CapabilityInt16                             Capability = 22
	CapabilityTessellationPointSize             Capability = 23
	CapabilityGeometryPointSize                 Capability = 24
	CapabilityImageGatherExtended               Capability = 25
	CapabilityStorageImageMultisample           Capability = 27
	CapabilityUniformBufferArrayDynamicIndexing Capability = 28
	CapabilitySampledImageArrayDynamicIndexing  Capability = 29
	CapabilityStorageBufferArrayDynamicIndexing Capability = 30
	CapabilityStorageImageArrayDynamicIndexing  Capability = 31
	CapabilityClipDistance                      Capability = 32
	CapabilityCullDistance                      Capability = 33
	CapabilityImageCubeArray                    Capability = 34
	CapabilitySampleRateShading                 Capability = 35
	CapabilityImageRect                         Capability = 36
	CapabilitySampledRect                       Capability = 37
	CapabilityGenericPointer                    Capability = 38
	CapabilityInt8                              Capability = 39
	CapabilityInputAttachment                   Capability = 40
	CapabilitySparseResidency                   Capability = 41
	CapabilityMinLod                            Capability = 42
	CapabilitySampled1D                         Capability = 43
	CapabilityImage1D                           Capability = 44
	CapabilitySampledCubeArray                  Capability = 45
	CapabilitySampledBuffer                     Capability = 46
	CapabilityImageBuffer                       Capability = 47
	CapabilityImageMSArray                      Capability = 48
	CapabilityStorageImageExtendedFormats       Capability = 49
	CapabilityImageQuery                        Capability = 50
	CapabilityDerivativeControl                 Capability = 51
	CapabilityInterpolationFunction             Capability = 52
	CapabilityTransformFeedback                 Capability = 53
	CapabilityGeometryStreams                   Capability = 54
	CapabilityStorageImageReadWithoutFormat     Capability = 55
	CapabilityStorageImageWriteWithoutFormat    Capability = 56
	CapabilityMultiViewport                     Capability = 57
	CapabilitySubgroupDispatch                  Capability = 58
	CapabilityNamedBarrier                      Capability = 59
	CapabilityPipeStorage                       Capability = 60
	CapabilityPhysicalStorageBufferAddresses    Capability = 5347
)

var capabilityNames = map[Capability]string{
	CapabilityMatrix:                            "Matrix",
	CapabilityShader:                            "Shader",
	CapabilityGeometry:                          "Geometry",
	CapabilityTessellation:                      "Tessellation",
	CapabilityAddresses:                         "Addresses",
	CapabilityLinkage:                           "Linkage",
	CapabilityKernel:                            "Kernel",
	CapabilityVector16:                          "Vector16",
	CapabilityFloat16Buffer:                     "Float16Buffer",
	CapabilityFloat16:                           "Float16",
	CapabilityFloat64:                           "Float64",
	CapabilityInt64:                             "Int64",
	CapabilityInt64Atomics:                      "Int64Atomics",
	CapabilityImageBasic:                        "ImageBasic",
	CapabilityImageReadWrite:                    "ImageReadWrite",
	CapabilityImageMipmap:                       "ImageMipmap",
	CapabilityPipes:                             "Pipes",
	CapabilityGroups:                            "Groups",
	CapabilityDeviceEnqueue:                     "DeviceEnqueue",
	CapabilityLiteralSampler:                    "LiteralSampler",
	CapabilityAtomicStorage:                     "AtomicStorage",
	CapabilityInt16:                             "Int16",
	CapabilityTessellationPointSize:             "TessellationPointSize",
	CapabilityGeometryPointSize:                 "GeometryPointSize",
	CapabilityImageGatherExtended:               "ImageGatherExtended",
	CapabilityStorageImageMultisample:           "StorageImageMultisample",
	CapabilityUniformBufferArrayDynamicIndexing: "UniformBufferArrayDynamicIndexing",
	CapabilitySampledImageArrayDynamicIndexing:  "SampledImageArrayDynamicIndexing",
	CapabilityStorageBufferArrayDynamicIndexing: "StorageBufferArrayDynamicIndexing",
	CapabilityStorageImageArrayDynamicIndexing:  "StorageImageArrayDynamicIndexing",
	CapabilityClipDistance:                      "ClipDistance",
	CapabilityCullDistance:                      "CullDistance",
	CapabilityImageCubeArray:                    "ImageCubeArray",
	CapabilitySampleRateShading:                 "SampleRateShading",
	CapabilityImageRect:                         "ImageRect",
	CapabilitySampledRect:                       "SampledRect",
	CapabilityGenericPointer:                    "GenericPointer",
	CapabilityInt8:                              "Int8",
	CapabilityInputAttachment:                   "InputAttachment",
	CapabilitySparseResidency:                   "SparseResidency",
	CapabilityMinLod:                            "MinLod",
	CapabilitySampled1D:                         "Sampled1D",
	CapabilityImage1D:                           "Image1D",
	CapabilitySampledCubeArray:                  "SampledCubeArray",
	CapabilitySampledBuffer:                     "SampledBuffer",
	CapabilityImageBuffer:                       "ImageBuffer",
	CapabilityImageMSArray:                      "ImageMSArray",
	CapabilityStorageImageExtendedFormats:       "StorageImageExtendedFormats",
	CapabilityImageQuery:                        "ImageQuery",
	CapabilityDerivativeControl:                 "DerivativeControl",
	CapabilityInterpolationFunction:             "InterpolationFunction",
	CapabilityTransformFeedback:                 "TransformFeedback",
	CapabilityGeometryStreams:                   "GeometryStreams",
	CapabilityStorageImageReadWithoutFormat:     "StorageImageReadWithoutFormat",
	CapabilityStorageImageWriteWithoutFormat:    "StorageImageWriteWithoutFormat",
	CapabilityMultiViewport:                     "MultiViewport",
	CapabilitySubgroupDispatch:                  "SubgroupDispatch",
	CapabilityNamedBarrier:                      "NamedBarrier",
	CapabilityPipeStorage:                       "PipeStorage",
	CapabilityPhysicalStorageBufferAddresses:    "PhysicalStorageBufferAddresses",
}

var capabilityValues = invert(capabilityNames)

func (c Capability) String() string {
	return enumString(capabilityNames, c, "Capability")
}

// ParseCapability returns the capability with the given name, e.g. "Float16".
func ParseCapability(name string) (Capability, bool) {
	c, ok := capabilityValues[name]
	return c, ok
}

// StorageClass is a SPIR-V storage class.
type StorageClass uint32

const (
	StorageClassUniformConstant       StorageClass = 0
	StorageClassInput                 StorageClass = 1
	StorageClassUniform               StorageClass = 2
	StorageClassOutput                StorageClass = 3
	StorageClassWorkgroup             StorageClass = 4
	StorageClassCrossWorkgroup        StorageClass = 5
	StorageClassPrivate               StorageClass = 6
	StorageClassFunction              StorageClass = 7
	StorageClassGeneric               StorageClass = 8
	StorageClassPushConstant          StorageClass = 9
	StorageClassAtomicCounter         StorageClass = 10
	StorageClassImage                 StorageClass = 11
	StorageClassStorageBuffer         StorageClass = 12
	StorageClassPhysicalStorageBuffer StorageClass = 5349
)

var storageClassNames = map[StorageClass]string{
	StorageClassUniformConstant:       "UniformConstant",
	StorageClassInput:                 "Input",
	StorageClassUniform:               "Uniform",
	StorageClassOutput:                "Output",
	StorageClassWorkgroup:             "Workgroup",
	StorageClassCrossWorkgroup:        "CrossWorkgroup",
	StorageClassPrivate:               "Private",
	StorageClassFunction:              "Function",
	StorageClassGeneric:               "Generic",
	StorageClassPushConstant:          "PushConstant",
	StorageClassAtomicCounter:         "AtomicCounter",
	StorageClassImage:                 "Image",
	StorageClassStorageBuffer:         "StorageBuffer",
	StorageClassPhysicalStorageBuffer: "PhysicalStorageBuffer",
}

var storageClassValues = invert(storageClassNames)

func (s StorageClass) String() string {
	return enumString(storageClassNames, s, "StorageClass")
}

// IsValid reports whether s is a known storage class.
func (s StorageClass) IsValid() bool {
	_, ok := storageClassNames[s]
	return ok
}

// ParseStorageClass returns the storage class with the given name.
func ParseStorageClass(name string) (StorageClass, bool) {
	s, ok := storageClassValues[name]
	return s, ok
}

// Dim is an image dimensionality.
type Dim uint32

const (
	Dim1D          Dim = 0
	Dim2D          Dim = 1
	Dim3D          Dim = 2
	DimCube        Dim = 3
	DimRect        Dim = 4
	DimBuffer      Dim = 5
	DimSubpassData Dim = 6
)

var dimNames = map[Dim]string{
	Dim1D:          "1D",
	Dim2D:          "2D",
	Dim3D:          "3D",
	DimCube:        "Cube",
	DimRect:        "Rect",
	DimBuffer:      "Buffer",
	DimSubpassData: "SubpassData",
}

var dimValues = invert(dimNames)

func (d Dim) String() string {
	return enumString(dimNames, d, "Dim")
}

// IsValid reports whether d is a known dimensionality.
func (d Dim) IsValid() bool {
	return d <= DimSubpassData
}

// ParseDim returns the dimensionality with the given name, e.g. "2D".
func ParseDim(name string) (Dim, bool) {
	d, ok := dimValues[name]
	return d, ok
}

// AccessQualifier is an image or pipe access qualifier.
type AccessQualifier uint32

const (
	AccessQualifierReadOnly  AccessQualifier = 0
	AccessQualifierWriteOnly AccessQualifier = 1
	AccessQualifierReadWrite AccessQualifier = 2
)

var accessQualifierNames = map[AccessQualifier]string{
	AccessQualifierReadOnly:  "ReadOnly",
	AccessQualifierWriteOnly: "WriteOnly",
	AccessQualifierReadWrite: "ReadWrite",
}

var accessQualifierValues = invert(accessQualifierNames)

func (a AccessQualifier) String() string {
	return enumString(accessQualifierNames, a, "AccessQualifier")
}

// IsValid reports whether a is a known access qualifier.
func (a AccessQualifier) IsValid() bool {
	return a <= AccessQualifierReadWrite
}

// ParseAccessQualifier returns the access qualifier with the given name.
func ParseAccessQualifier(name string) (AccessQualifier, bool) {
	a, ok := accessQualifierValues[name]
	return a, ok
}

// ImageFormat is an image texel format.
type ImageFormat uint32

const (
	ImageFormatUnknown  ImageFormat = 0
	ImageFormatRgba32f  ImageFormat = 1
	ImageFormatRgba16f  ImageFormat = 2
	ImageFormatR32f     ImageFormat = 3
	ImageFormatRgba8    ImageFormat = 4
	ImageFormatR32i     ImageFormat = 24
	ImageFormatRgba32ui ImageFormat = 30
	ImageFormatR32ui    ImageFormat = 33
	ImageFormatR8ui     ImageFormat = 39
)

var imageFormatNames = map[ImageFormat]string{
	0:  "Unknown",
	1:  "Rgba32f",
	2:  "Rgba16f",
	3:  "R32f",
	4:  "Rgba8",
	5:  "Rgba8Snorm",
	6:  "Rg32f",
	7:  "Rg16f",
	8:  "R11fG11fB10f",
	9:  "R16f",
	10: "Rgba16",
	11: "Rgb10A2",
	12: "Rg16",
	13: "Rg8",
	14: "R16",
	15: "R8",
	16: "Rgba16Snorm",
	17: "Rg16Snorm",
	18: "Rg8Snorm",
	19: "R16Snorm",
	20: "R8Snorm",
	21: "Rgba32i",
	22: "Rgba16i",
	23: "Rgba8i",
	24: "R32i",
	25: "Rg32i",
	26: "Rg16i",
	27: "Rg8i",
	28: "R16i",
	29: "R8i",
	30: "Rgba32ui",
	31: "Rgba16ui",
	32: "Rgba8ui",
	33: "R32ui",
	34: "Rgb10a2ui",
	35: "Rg32ui",
	36: "Rg16ui",
	37: "Rg8ui",
	38: "R16ui",
	39: "R8ui",
}

var imageFormatValues = invert(imageFormatNames)

func (f ImageFormat) String() string {
	return enumString(imageFormatNames, f, "ImageFormat")
}

// IsValid reports whether f is a known image format.
func (f ImageFormat) IsValid() bool {
	return f <= ImageFormatR8ui
}

// ParseImageFormat returns the image format with the given name.
func ParseImageFormat(name string) (ImageFormat, bool) {
	f, ok := imageFormatValues[name]
	return f, ok
}

// Decoration is a SPIR-V decoration.
type Decoration uint32

const (
	DecorationBlock       Decoration = 2
	DecorationBufferBlock Decoration = 3
	DecorationRowMajor    Decoration = 4
	DecorationColMajor    Decoration = 5
	DecorationArrayStride Decoration = 6
	DecorationGLSLPacked  Decoration = 9
	DecorationCPacked     Decoration = 10
	DecorationBuiltIn     Decoration = 11
	DecorationLocation    Decoration = 30
	DecorationBinding     Decoration = 33
	DecorationOffset      Decoration = 35
)

var decorationNames = map[Decoration]string{
	DecorationBlock:       "Block",
	DecorationBufferBlock: "BufferBlock",
	DecorationRowMajor:    "RowMajor",
	DecorationColMajor:    "ColMajor",
	DecorationArrayStride: "ArrayStride",
	DecorationGLSLPacked:  "GLSLPacked",
	DecorationCPacked:     "CPacked",
	DecorationBuiltIn:     "BuiltIn",
	DecorationLocation:    "Location",
	DecorationBinding:     "Binding",
	DecorationOffset:      "Offset",
}

var decorationValues = invert(decorationNames)

func (d Decoration) String() string {
	return enumString(decorationNames, d, "Decoration")
}

// ParseDecoration returns the decoration with the given name.
func ParseDecoration(name string) (Decoration, bool) {
	d, ok := decorationValues[name]
	return d, ok
}

// AddressingModel is the first operand of OpMemoryModel.
type AddressingModel uint32

var addressingModelNames = map[AddressingModel]string{
	0:    "Logical",
	1:    "Physical32",
	2:    "Physical64",
	5348: "PhysicalStorageBuffer64",
}

var addressingModelValues = invert(addressingModelNames)

func (a AddressingModel) String() string {
	return enumString(addressingModelNames, a, "AddressingModel")
}

// ParseAddressingModel returns the addressing model with the given name.
func ParseAddressingModel(name string) (AddressingModel, bool) {
	a, ok := addressingModelValues[name]
	return a, ok
}

// MemoryModel is the second operand of OpMemoryModel.
type MemoryModel uint32

var memoryModelNames = map[MemoryModel]string{
	0: "Simple",
	1: "GLSL450",
	2: "OpenCL",
	3: "Vulkan",
}

var memoryModelValues = invert(memoryModelNames)

func (m MemoryModel) String() string {
	return enumString(memoryModelNames, m, "MemoryModel")
}

// ParseMemoryModel returns the memory model with the given name.
func ParseMemoryModel(name string) (MemoryModel, bool) {
	m, ok := memoryModelValues[name]
	return m, ok
}

func invert[K comparable](names map[K]string) map[string]K {
	out := make(map[string]K, len(names))
	for k, v := range names {
		out[v] = k
	}
	return out
}

func enumString[T ~uint32](names map[T]string, v T, typ string) string {
	if s, ok := names[v]; ok {
		return s
	}
	return typ + "(" + strconv.FormatUint(uint64(v), 10) + ")"
}
