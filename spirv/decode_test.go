package spirv

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/spirv-types/errors"
	"github.com/wippyai/spirv-types/internal/binary"
)

// stream assembles a module word by word.
type stream struct {
	words []uint32
}

func newStream() *stream {
	return &stream{words: []uint32{Magic, Version1_0, 0, 0, 0}}
}

func (s *stream) inst(op Op, operands ...uint32) *stream {
	s.words = append(s.words, uint32(len(operands)+1)<<16|uint32(op))
	s.words = append(s.words, operands...)
	return s
}

func (s *stream) bytes(bound uint32) []byte {
	s.words[3] = bound
	w := binary.NewWriter()
	w.WriteWords(s.words)
	return w.Bytes()
}

// buildAllKinds builds one module holding every type kind.
func buildAllKinds(t *testing.T) *Module {
	t.Helper()
	m := NewModule(DefaultOptions())
	must := mustType(t)

	m.AddCapability(CapabilityKernel)
	m.AddCapability(CapabilityAddresses)
	m.AddInstruction(OpMemoryModel, 2, 2)

	void := must(m.AddTypeVoid())
	must(m.AddTypeBool())
	i32 := must(m.AddTypeInt(32, true))
	u8 := must(m.AddTypeInt(8, false))
	f16 := must(m.AddTypeFloat(16))
	f32 := must(m.AddTypeFloat(32))
	vec3 := must(m.AddTypeVector(f32.ID(), 3))
	vec4 := must(m.AddTypeVector(f32.ID(), 4))
	must(m.AddTypeMatrix(vec3.ID(), 3))
	four, err := m.AddConstant(i32.ID(), 4)
	require.NoError(t, err)
	must(m.AddTypeArray(f32.ID(), four.ID()))
	must(m.AddTypeRuntimeArray(u8.ID()))
	ptr := must(m.AddTypePointer(StorageClassFunction, vec4.ID()))

	fp, err := m.AddForwardPointer(StorageClassCrossWorkgroup)
	require.NoError(t, err)
	node := must(m.AddTypeStruct("node", i32.ID(), fp.ID()))
	must(m.CompletePointer(fp.ID(), node.ID()))

	packed := must(m.AddTypeStruct("", f16.ID(), u8.ID()))
	require.NoError(t, packed.SetPacked(true))

	must(m.AddTypeFunction(void.ID(), ptr.ID(), i32.ID()))
	must(m.AddTypeOpaque("opencl.reserve_id"))
	must(m.AddTypeImage(void.ID(), ImageDescriptor{Dim: Dim2D}, AccessQualifierReadWrite))
	img := must(m.AddTypeImage(f32.ID(), ImageDescriptor{Dim: Dim1D, Arrayed: 1, Sampled: 1, Format: ImageFormatRgba32f}))
	must(m.AddTypeSampler())
	must(m.AddTypeSampledImage(img.ID()))
	must(m.AddTypePipeStorage())
	must(m.AddTypePipe(AccessQualifierWriteOnly))
	for _, op := range []Op{OpTypeEvent, OpTypeReserveId, OpTypeDeviceEvent, OpTypeQueue} {
		must(m.AddTypeOpaqueGeneric(op))
	}
	require.NoError(t, m.Validate())
	return m
}

func TestRoundTrip(t *testing.T) {
	orig := buildAllKinds(t)

	data, err := orig.Encode()
	require.NoError(t, err)

	decoded, err := DecodeValidate(data, DefaultOptions())
	require.NoError(t, err)

	origTypes := orig.Types()
	decodedTypes := decoded.Types()
	require.Len(t, decodedTypes, len(origTypes))
	for i, want := range origTypes {
		got := decodedTypes[i]
		t.Run(want.String(), func(t *testing.T) {
			assert.Equal(t, want.ID(), got.ID())
			assert.Equal(t, want.Op(), got.Op())
			assert.Equal(t, want.WordCount(), got.WordCount())
			assert.Equal(t, want.payload, got.payload)
			assert.True(t, got.IsComplete())
		})
	}

	assert.Equal(t, orig.DeclaredCapabilities(), decoded.DeclaredCapabilities())
	assert.Equal(t, orig.Bound(), decoded.Bound())
	assert.Len(t, decoded.Instructions(), 1)

	again, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestRoundTripBigEndian(t *testing.T) {
	orig := buildAllKinds(t)
	words, err := orig.EncodeWords()
	require.NoError(t, err)

	data := make([]byte, 4*len(words))
	for i, w := range words {
		data[4*i] = byte(w >> 24)
		data[4*i+1] = byte(w >> 16)
		data[4*i+2] = byte(w >> 8)
		data[4*i+3] = byte(w)
	}
	decoded, err := Decode(data, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, decoded.Types(), len(orig.Types()))
}

func TestDecodeForwardPointerCycle(t *testing.T) {
	sc := uint32(StorageClassCrossWorkgroup)
	data := newStream().
		inst(OpCapability, uint32(CapabilityAddresses)).
		inst(OpName, append([]uint32{2}, stringOperands("list")...)...).
		inst(OpTypeForwardPointer, 3, sc).
		inst(OpTypeInt, 1, 32, 0).
		inst(OpTypeStruct, 2, 1, 3).
		inst(OpTypePointer, 3, sc, 2).
		bytes(4)

	m, err := DecodeValidate(data, DefaultOptions())
	require.NoError(t, err)

	st, err := m.TypeOf(2)
	require.NoError(t, err)
	require.NoError(t, st.Validate())
	name, _ := st.StructName()
	assert.Equal(t, "list", name)

	ptr, err := m.TypeOf(3)
	require.NoError(t, err)
	elem, err := ptr.PointerElementType()
	require.NoError(t, err)
	assert.Equal(t, ID(2), elem)

	var caps []Capability
	for c := range st.RequiredCapabilities() {
		caps = append(caps, c)
		require.Less(t, len(caps), 100, "capability derivation does not terminate")
	}
	assert.Contains(t, caps, CapabilityAddresses)
	assert.Empty(t, m.MissingCapabilities())

	// Forward pointer, int, struct, pointer in stream order.
	entries := m.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, OpTypeForwardPointer, entries[0].Op())
	assert.Equal(t, OpTypePointer, entries[3].Op())
}

func TestDecodeImageAccessQualifiers(t *testing.T) {
	image := func(access ...uint32) []byte {
		operands := append([]uint32{2, 1, uint32(Dim2D), 0, 0, 0, 0, 0}, access...)
		return newStream().
			inst(OpTypeVoid, 1).
			inst(OpTypeImage, operands...).
			bytes(3)
	}

	t.Run("none", func(t *testing.T) {
		m, err := DecodeValidate(image(), DefaultOptions())
		require.NoError(t, err)
		img, _ := m.TypeOf(2)
		assert.Equal(t, uint16(9), img.WordCount())
		assert.False(t, img.HasAccessQualifier())
		assert.True(t, img.IsOCLImage())
	})

	t.Run("one", func(t *testing.T) {
		m, err := DecodeValidate(image(uint32(AccessQualifierWriteOnly)), DefaultOptions())
		require.NoError(t, err)
		img, _ := m.TypeOf(2)
		assert.Equal(t, uint16(10), img.WordCount())
		assert.True(t, img.HasAccessQualifier())
		aq, err := img.AccessQualifier()
		require.NoError(t, err)
		assert.Equal(t, AccessQualifierWriteOnly, aq)
	})

	t.Run("two", func(t *testing.T) {
		m, err := Decode(image(0, 1), DefaultOptions())
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindInvalidField))
		require.NotNil(t, m)
		img, lookupErr := m.TypeOf(2)
		require.NoError(t, lookupErr)
		assert.Error(t, img.Validate())
		assert.Error(t, m.Validate())
	})

	t.Run("unknown qualifier", func(t *testing.T) {
		_, err := Decode(image(3), DefaultOptions())
		assert.True(t, errors.IsKind(err, errors.KindInvalidField))
	})
}

func TestDecodeStreamErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", newStream().bytes(1)[:12]},
		{"bad magic", append([]byte{1, 2, 3, 4}, newStream().bytes(1)[4:]...)},
		{"zero word count", append(newStream().bytes(1), 0, 0, 0, 0)},
		{"overrun", newStream().inst(OpTypeInt, 1, 32, 0).bytes(2)[:6*4+8]},
		{"ragged length", append(newStream().bytes(1), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(tt.data, DefaultOptions())
			assert.Nil(t, m)
			assert.True(t, errors.IsKind(err, errors.KindMalformedStream), "%v", err)
		})
	}
}

func TestDecodeEntryErrors(t *testing.T) {
	tests := []struct {
		name string
		s    *stream
		kind errors.Kind
	}{
		{
			name: "fixed word count mismatch",
			s:    newStream().inst(OpTypeInt, 2, 32),
			kind: errors.KindMalformedStream,
		},
		{
			name: "bad storage class",
			s:    newStream().inst(OpTypePointer, 2, 77, 1),
			kind: errors.KindInvalidField,
		},
		{
			name: "bad dim",
			s:    newStream().inst(OpTypeImage, 2, 1, 9, 0, 0, 0, 0, 0),
			kind: errors.KindInvalidField,
		},
		{
			name: "int width out of range",
			s:    newStream().inst(OpTypeInt, 2, 1, 0),
			kind: errors.KindInvalidField,
		},
		{
			name: "signedness",
			s:    newStream().inst(OpTypeInt, 2, 32, 5),
			kind: errors.KindInvalidField,
		},
		{
			name: "duplicate id",
			s:    newStream().inst(OpTypeBool, 2).inst(OpTypeVoid, 2),
			kind: errors.KindDuplicateID,
		},
		{
			name: "unterminated opaque name",
			s:    newStream().inst(OpTypeOpaque, 2, 0x61616161),
			kind: errors.KindMalformedStream,
		},
		{
			name: "id above the header bound",
			s:    newStream().inst(OpTypeVoid, 100_000_000),
			kind: errors.KindInvalidField,
		},
		{
			name: "largest id",
			s:    newStream().inst(OpTypeVoid, math.MaxUint32),
			kind: errors.KindInvalidField,
		},
		{
			name: "constant id above the header bound",
			s:    newStream().inst(OpTypeBool, 1).inst(OpConstantTrue, 1, 10),
			kind: errors.KindInvalidField,
		},
		{
			name: "variable id above the header bound",
			s:    newStream().inst(OpTypeBool, 1).inst(OpVariable, 1, 4000, 7),
			kind: errors.KindInvalidField,
		},
		{
			name: "type reuses a spec constant operation id",
			s:    newStream().inst(OpTypeInt, 1, 32, 0).inst(OpSpecConstantOp, 1, 2, 128, 3, 3).inst(OpTypeBool, 2),
			kind: errors.KindDuplicateID,
		},
		{
			name: "type reuses a variable id",
			s:    newStream().inst(OpVariable, 1, 2, 7).inst(OpTypeBool, 2),
			kind: errors.KindDuplicateID,
		},
		{
			name: "variable reuses a type id",
			s:    newStream().inst(OpTypeBool, 2).inst(OpVariable, 2, 2, 7),
			kind: errors.KindDuplicateID,
		},
		{
			name: "constant without a value",
			s:    newStream().inst(OpTypeInt, 1, 32, 0).inst(OpConstant, 1, 2),
			kind: errors.KindMalformedStream,
		},
		{
			name: "boolean constant with a value",
			s:    newStream().inst(OpTypeBool, 1).inst(OpConstantTrue, 1, 2, 1),
			kind: errors.KindMalformedStream,
		},
		{
			name: "forward pointer storage class mismatch",
			s: newStream().
				inst(OpTypeForwardPointer, 2, uint32(StorageClassFunction)).
				inst(OpTypeBool, 1).
				inst(OpTypePointer, 2, uint32(StorageClassPrivate), 1),
			kind: errors.KindInvalidField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(tt.s.bytes(10), DefaultOptions())
			require.Error(t, err)
			assert.NotNil(t, m, "framing is intact, so the module is returned")
			assert.True(t, errors.IsKind(err, tt.kind), "%v", err)
		})
	}
}

func TestDecodeRejectedIDsAreNotStored(t *testing.T) {
	for _, id := range []uint32{2, 100_000_000, math.MaxUint32} {
		m, err := Decode(newStream().inst(OpTypeVoid, id).bytes(2), DefaultOptions())
		require.Error(t, err)
		require.NotNil(t, m)
		assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%v", err)
		_, ok := m.Lookup(ID(id))
		assert.False(t, ok, "id %d", id)
		assert.Equal(t, ID(2), m.Bound())
	}
}

func TestDecodeErrorsCarryWordPosition(t *testing.T) {
	data := newStream().inst(OpTypeBool, 1).inst(OpTypeOpaque, 2, 0x61616161).bytes(3)
	_, err := Decode(data, DefaultOptions())
	var pe *binary.ParseError
	require.True(t, stderrors.As(err, &pe), "%v", err)
	assert.Equal(t, "literal string", pe.Op)
	assert.ErrorIs(t, err, binary.ErrUnterminatedString)

	data = newStream().inst(OpTypeInt, 1, 32, 0).bytes(2)
	_, err = Decode(data[:len(data)-4], DefaultOptions())
	require.True(t, stderrors.As(err, &pe), "%v", err)
	assert.Equal(t, "OpTypeInt", pe.Op)
}

func TestDecodeComputedConstants(t *testing.T) {
	data := newStream().
		inst(OpTypeInt, 1, 32, 0).
		inst(OpSpecConstant, 1, 2, 3).
		inst(OpSpecConstantOp, 1, 3, 128, 2, 2). // IAdd
		inst(OpTypeArray, 4, 1, 3).
		inst(OpConstantComposite, 4, 5, 2, 2, 2).
		inst(OpTypePointer, 6, uint32(StorageClassFunction), 4).
		inst(OpVariable, 6, 7, uint32(StorageClassFunction), 5).
		bytes(8)

	m, err := DecodeValidate(data, DefaultOptions())
	require.NoError(t, err)

	op, err := m.ConstantOf(3)
	require.NoError(t, err)
	assert.Equal(t, []uint32{128, 2, 2}, op.Words())
	_, ok := op.Uint64()
	assert.False(t, ok)

	composite, err := m.ConstantOf(5)
	require.NoError(t, err)
	_, ok = composite.Uint64()
	assert.False(t, ok)

	arr, err := m.TypeOf(4)
	require.NoError(t, err)
	_, err = arr.CompositeElementCount()
	assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%v", err)

	v, ok := m.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, OpVariable, v.Op())

	out, err := m.EncodeWords()
	require.NoError(t, err)
	assert.Equal(t, uint32(8), out[3])
	again, err := DecodeWords(out, DefaultOptions())
	require.NoError(t, err)
	v, ok = again.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, OpVariable, v.Op())
}

func TestDecodePartialModule(t *testing.T) {
	data := newStream().
		inst(OpTypeBool, 1).
		inst(OpTypeInt, 2, 99, 0).
		inst(OpTypeFloat, 3, 8).
		inst(OpTypeFloat, 4, 32).
		bytes(5)

	m, err := Decode(data, DefaultOptions())
	require.Error(t, err)
	require.NotNil(t, m)
	assert.Len(t, m.Types(), 4)

	valErr := m.Validate()
	require.Error(t, valErr)
	unwrapped, ok := valErr.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, unwrapped.Unwrap(), 2, "both bad widths are reported")

	f32, err := m.TypeOf(4)
	require.NoError(t, err)
	assert.NoError(t, f32.Validate())
}

func TestDecodeRecursiveStructWithoutPointer(t *testing.T) {
	data := newStream().
		inst(OpTypeInt, 1, 32, 1).
		inst(OpTypeStruct, 2, 1, 2).
		bytes(3)

	m, err := Decode(data, DefaultOptions())
	require.NoError(t, err)

	err = m.Validate()
	assert.True(t, errors.IsKind(err, errors.KindShapeMismatch), "%v", err)
}

func TestDecodeUndefinedForwardPointer(t *testing.T) {
	data := newStream().
		inst(OpTypeForwardPointer, 2, uint32(StorageClassFunction)).
		inst(OpTypeInt, 1, 32, 1).
		inst(OpTypeStruct, 3, 1, 2).
		bytes(4)

	m, err := Decode(data, DefaultOptions())
	require.NoError(t, err)
	err = m.Validate()
	assert.True(t, errors.IsKind(err, errors.KindIncomplete), "%v", err)
}

func TestDecodeKeepsOtherInstructions(t *testing.T) {
	data := newStream().
		inst(OpCapability, uint32(CapabilityShader)).
		inst(OpExtension, stringOperands("SPV_KHR_storage_buffer_storage_class")...).
		inst(OpMemoryModel, 0, 1).
		inst(OpDecorate, 2, uint32(DecorationBlock)).
		inst(OpDecorate, 2, uint32(DecorationCPacked)).
		inst(OpDecorate, 1, uint32(DecorationCPacked)).
		inst(OpTypeFloat, 1, 32).
		inst(OpTypeStruct, 2, 1).
		inst(OpVariable, 1, 3, 6).
		bytes(4)

	m, err := DecodeValidate(data, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, m.HasExtension("SPV_KHR_storage_buffer_storage_class"))
	assert.Equal(t, []Capability{CapabilityShader}, m.DeclaredCapabilities())

	st, _ := m.TypeOf(2)
	packed, _ := st.IsPacked()
	assert.True(t, packed)
	literal, _ := st.IsLiteral()
	assert.True(t, literal)

	// OpMemoryModel, the Block decoration and CPacked on a non-struct are kept.
	assert.Len(t, m.Instructions(), 3)
	require.Len(t, m.Entries(), 3)
	assert.Equal(t, OpVariable, m.Entries()[2].Op())
	v, ok := m.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, ID(3), v.ID())

	out, err := m.Encode()
	require.NoError(t, err)
	again, err := Decode(out, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, again.Instructions(), 3)
	packed, _ = again.typeOf(2).IsPacked()
	assert.True(t, packed)
}

func TestEncodeIncomplete(t *testing.T) {
	m := NewModule(DefaultOptions())
	_, err := m.AddTypeStructPlaceholder("", 1)
	require.NoError(t, err)

	_, err = m.Encode()
	assert.True(t, errors.IsKind(err, errors.KindIncomplete), "%v", err)
}
