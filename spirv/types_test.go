package spirv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/spirv-types/errors"
)

func mustType(t *testing.T) func(*Type, error) *Type {
	return func(ty *Type, err error) *Type {
		t.Helper()
		require.NoError(t, err)
		require.NotNil(t, ty)
		return ty
	}
}

func TestIntWidth(t *testing.T) {
	tests := []struct {
		width uint32
		ok    bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{8, true},
		{32, true},
		{64, true},
		{65, false},
		{128, false},
	}
	for _, tt := range tests {
		m := NewModule(DefaultOptions())
		ty, err := m.AddTypeInt(tt.width, true)
		if tt.ok {
			require.NoError(t, err, "width %d", tt.width)
			w, err := ty.IntegerBitWidth()
			require.NoError(t, err)
			assert.Equal(t, tt.width, w)
			continue
		}
		require.Error(t, err, "width %d", tt.width)
		assert.True(t, errors.IsKind(err, errors.KindInvalidField))
		assert.Empty(t, m.Types(), "rejected type must not be registered")
	}
}

func TestFloatWidth(t *testing.T) {
	tests := []struct {
		width uint32
		ok    bool
	}{
		{8, false},
		{15, false},
		{16, true},
		{32, true},
		{64, true},
		{65, false},
	}
	for _, tt := range tests {
		m := NewModule(DefaultOptions())
		_, err := m.AddTypeFloat(tt.width)
		if tt.ok {
			assert.NoError(t, err, "width %d", tt.width)
		} else {
			assert.True(t, errors.IsKind(err, errors.KindInvalidField), "width %d: %v", tt.width, err)
		}
	}
}

func TestVectorArity(t *testing.T) {
	for count := uint32(0); count <= 17; count++ {
		m := NewModule(DefaultOptions())
		f32 := mustType(t)(m.AddTypeFloat(32))
		_, err := m.AddTypeVector(f32.ID(), count)
		switch count {
		case 2, 3, 4, 8, 16:
			assert.NoError(t, err, "count %d", count)
		default:
			assert.True(t, errors.IsKind(err, errors.KindInvalidField), "count %d: %v", count, err)
		}
	}
}

func TestMatrixArity(t *testing.T) {
	for count := uint32(0); count <= 5; count++ {
		m := NewModule(DefaultOptions())
		f32 := mustType(t)(m.AddTypeFloat(32))
		vec4 := mustType(t)(m.AddTypeVector(f32.ID(), 4))
		_, err := m.AddTypeMatrix(vec4.ID(), count)
		if count >= 2 && count <= 4 {
			assert.NoError(t, err, "count %d", count)
		} else {
			assert.True(t, errors.IsKind(err, errors.KindInvalidField), "count %d: %v", count, err)
		}
	}
}

func TestShapeRules(t *testing.T) {
	m := NewModule(DefaultOptions())
	must := mustType(t)
	f32 := must(m.AddTypeFloat(32))
	vec4 := must(m.AddTypeVector(f32.ID(), 4))

	t.Run("matrix column must be a vector", func(t *testing.T) {
		_, err := m.AddTypeMatrix(f32.ID(), 3)
		assert.True(t, errors.IsKind(err, errors.KindShapeMismatch), "%v", err)
	})

	t.Run("vector component must be scalar", func(t *testing.T) {
		_, err := m.AddTypeVector(vec4.ID(), 2)
		assert.True(t, errors.IsKind(err, errors.KindShapeMismatch), "%v", err)
	})

	t.Run("unresolved component", func(t *testing.T) {
		_, err := m.AddTypeVector(999, 2)
		assert.True(t, errors.IsKind(err, errors.KindUnresolvedReference), "%v", err)
	})

	t.Run("array length must be a constant", func(t *testing.T) {
		_, err := m.AddTypeArray(f32.ID(), vec4.ID())
		assert.True(t, errors.IsKind(err, errors.KindShapeMismatch), "%v", err)
	})

	t.Run("sampled image needs an image", func(t *testing.T) {
		_, err := m.AddTypeSampledImage(f32.ID())
		assert.True(t, errors.IsKind(err, errors.KindShapeMismatch), "%v", err)
	})

	t.Run("pointer storage class", func(t *testing.T) {
		_, err := m.AddTypePointer(StorageClass(99), f32.ID())
		assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%v", err)
	})

	t.Run("pipe access qualifier", func(t *testing.T) {
		_, err := m.AddTypePipe(AccessQualifier(3))
		assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%v", err)
	})

	t.Run("opaque generic kinds", func(t *testing.T) {
		for _, op := range []Op{OpTypeEvent, OpTypeReserveId, OpTypeDeviceEvent, OpTypeQueue} {
			ty, err := m.AddTypeOpaqueGeneric(op)
			require.NoError(t, err)
			assert.Equal(t, op, ty.Op())
			assert.Equal(t, uint16(2), ty.WordCount())
		}
		_, err := m.AddTypeOpaqueGeneric(OpTypeInt)
		assert.True(t, errors.IsKind(err, errors.KindUnsupported))
	})
}

func TestImageAccessQualifiers(t *testing.T) {
	m := NewModule(DefaultOptions())
	must := mustType(t)
	void := must(m.AddTypeVoid())
	desc := ImageDescriptor{Dim: Dim2D}

	none := must(m.AddTypeImage(void.ID(), desc))
	assert.False(t, none.HasAccessQualifier())
	assert.Equal(t, uint16(9), none.WordCount())
	aq, err := none.AccessQualifier()
	require.NoError(t, err)
	assert.Equal(t, AccessQualifierReadOnly, aq)

	rw := must(m.AddTypeImage(void.ID(), desc, AccessQualifierReadWrite))
	assert.True(t, rw.HasAccessQualifier())
	assert.Equal(t, uint16(10), rw.WordCount())
	aq, err = rw.AccessQualifier()
	require.NoError(t, err)
	assert.Equal(t, AccessQualifierReadWrite, aq)

	_, err = m.AddTypeImage(void.ID(), desc, AccessQualifierReadOnly, AccessQualifierWriteOnly)
	assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%v", err)
}

func TestImageDescriptorRanges(t *testing.T) {
	tests := []struct {
		name string
		desc ImageDescriptor
	}{
		{"dim", ImageDescriptor{Dim: 7}},
		{"depth", ImageDescriptor{Depth: 2}},
		{"arrayed", ImageDescriptor{Arrayed: 2}},
		{"ms", ImageDescriptor{MS: 2}},
		{"sampled", ImageDescriptor{Sampled: 3}},
		{"format", ImageDescriptor{Format: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModule(DefaultOptions())
			void := mustType(t)(m.AddTypeVoid())
			_, err := m.AddTypeImage(void.ID(), tt.desc)
			assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%v", err)
		})
	}
}

func TestAccessors(t *testing.T) {
	m := NewModule(DefaultOptions())
	must := mustType(t)
	void := must(m.AddTypeVoid())
	boolT := must(m.AddTypeBool())
	i16 := must(m.AddTypeInt(16, false))
	f32 := must(m.AddTypeFloat(32))
	vec3 := must(m.AddTypeVector(f32.ID(), 3))
	mat := must(m.AddTypeMatrix(vec3.ID(), 4))
	five, err := m.AddConstant(i16.ID(), 5)
	require.NoError(t, err)
	arr := must(m.AddTypeArray(vec3.ID(), five.ID()))
	ptr := must(m.AddTypePointer(StorageClassWorkgroup, arr.ID()))
	st := must(m.AddTypeStruct("pair", i16.ID(), ptr.ID()))
	fn := must(m.AddTypeFunction(void.ID(), ptr.ID(), f32.ID()))

	w, err := boolT.BitWidth()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), w)
	w, err = vec3.BitWidth()
	require.NoError(t, err)
	assert.Equal(t, uint32(32), w)

	signed, err := i16.IsSigned()
	require.NoError(t, err)
	assert.False(t, signed)

	comp, err := vec3.VectorComponentType()
	require.NoError(t, err)
	assert.Equal(t, f32.ID(), comp)

	col, err := mat.MatrixColumnType()
	require.NoError(t, err)
	assert.Equal(t, vec3.ID(), col)

	length, err := arr.ArrayLength()
	require.NoError(t, err)
	assert.Equal(t, five.ID(), length)
	n, err := arr.CompositeElementCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	sc, err := ptr.PointerStorageClass()
	require.NoError(t, err)
	assert.Equal(t, StorageClassWorkgroup, sc)

	name, err := st.StructName()
	require.NoError(t, err)
	assert.Equal(t, "pair", name)
	literal, err := st.IsLiteral()
	require.NoError(t, err)
	assert.False(t, literal)
	member, err := st.CompositeElementType(1)
	require.NoError(t, err)
	assert.Equal(t, ptr.ID(), member)
	_, err = st.StructMemberType(2)
	assert.True(t, errors.IsKind(err, errors.KindInvalidField))

	count, err := fn.FunctionParameterCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []ID{void.ID(), ptr.ID(), f32.ID()}, fn.Operands())
	assert.Equal(t, []ID{vec3.ID(), five.ID()}, arr.Operands())
	assert.Nil(t, i16.Operands())

	t.Run("wrong kind", func(t *testing.T) {
		_, err := f32.PointerElementType()
		assert.True(t, errors.IsKind(err, errors.KindShapeMismatch))
		_, err = i16.FloatBitWidth()
		assert.True(t, errors.IsKind(err, errors.KindShapeMismatch))
		_, err = void.BitWidth()
		assert.True(t, errors.IsKind(err, errors.KindShapeMismatch))
		_, err = st.ImageDescriptor()
		assert.True(t, errors.IsKind(err, errors.KindShapeMismatch))
		assert.Error(t, f32.SetPacked(true))
	})
}

func TestPredicateComposition(t *testing.T) {
	m := NewModule(DefaultOptions())
	must := mustType(t)
	i32 := must(m.AddTypeInt(32, true))
	i16 := must(m.AddTypeInt(16, true))
	f32 := must(m.AddTypeFloat(32))
	f64 := must(m.AddTypeFloat(64))
	boolT := must(m.AddTypeBool())
	vi32 := must(m.AddTypeVector(i32.ID(), 4))
	vi16 := must(m.AddTypeVector(i16.ID(), 4))
	vf32 := must(m.AddTypeVector(f32.ID(), 2))
	vbool := must(m.AddTypeVector(boolT.ID(), 3))

	assert.True(t, i32.IsVectorOrScalarInt(32))
	assert.True(t, vi32.IsVectorOrScalarInt(32))
	assert.False(t, vi16.IsVectorOrScalarInt(32))
	assert.False(t, f32.IsVectorOrScalarInt(32))
	assert.False(t, f64.IsVectorOrScalarInt(0))

	assert.True(t, vi16.IsVectorOrScalarInt(0))
	assert.True(t, vf32.IsVectorOrScalarFloat(32))
	assert.False(t, vf32.IsVectorOrScalarFloat(64))
	assert.True(t, f64.IsVectorOrScalarFloat(0))
	assert.True(t, vbool.IsVectorOrScalarBool())
	assert.True(t, boolT.IsVectorOrScalarBool())
	assert.False(t, vi32.IsVectorOrScalarBool())

	assert.True(t, vi32.IsVectorInt(32))
	assert.False(t, i32.IsVectorInt(32))
	assert.True(t, vf32.IsVectorFloat(0))
	assert.True(t, vbool.IsVectorBool())

	assert.True(t, i32.IsScalar())
	assert.False(t, vi32.IsScalar())
	assert.True(t, vi32.IsComposite())
	assert.False(t, i32.IsComposite())
}

func TestStructPlaceholder(t *testing.T) {
	m := NewModule(DefaultOptions())
	i32 := mustType(t)(m.AddTypeInt(32, true))

	st, err := m.AddTypeStructPlaceholder("later", 2)
	require.NoError(t, err)
	assert.False(t, st.IsComplete())
	assert.Equal(t, uint16(4), st.WordCount())

	require.NoError(t, st.SetMemberType(0, i32.ID()))
	assert.Error(t, st.SetMemberType(2, i32.ID()))

	err = st.Complete()
	assert.True(t, errors.IsKind(err, errors.KindUnresolvedReference), "unfilled slot: %v", err)

	require.NoError(t, st.SetMemberType(1, i32.ID()))
	require.NoError(t, st.Complete())
	assert.True(t, st.IsComplete())
	assert.Error(t, st.SetMemberType(0, i32.ID()), "complete struct members are immutable")

	name, _ := st.StructName()
	assert.Equal(t, "later", name)
	assert.Equal(t, "later", m.Name(st.ID()))
}

func TestLateBoundSetters(t *testing.T) {
	m := NewModule(DefaultOptions())
	must := mustType(t)
	void := must(m.AddTypeVoid())
	img := must(m.AddTypeImage(void.ID(), ImageDescriptor{Dim: Dim3D}))
	img2 := must(m.AddTypeImage(void.ID(), ImageDescriptor{Dim: Dim2D}))
	si := must(m.AddTypeSampledImage(img.ID()))
	pipe := must(m.AddTypePipe(AccessQualifierReadOnly))
	st := must(m.AddTypeStruct(""))

	require.NoError(t, si.SetImageType(img2.ID()))
	got, err := si.SampledImageType()
	require.NoError(t, err)
	assert.Equal(t, img2.ID(), got)
	assert.Error(t, si.SetImageType(void.ID()))

	require.NoError(t, pipe.SetPipeAccessQualifier(AccessQualifierWriteOnly))
	aq, _ := pipe.PipeAccessQualifier()
	assert.Equal(t, AccessQualifierWriteOnly, aq)
	assert.Error(t, pipe.SetPipeAccessQualifier(AccessQualifier(7)))

	literal, _ := st.IsLiteral()
	assert.True(t, literal)
	require.NoError(t, st.SetName("named"))
	literal, _ = st.IsLiteral()
	assert.False(t, literal)
	require.NoError(t, st.SetPacked(true))
	packed, _ := st.IsPacked()
	assert.True(t, packed)
	require.NoError(t, st.SetLiteral(true))
	literal, _ = st.IsLiteral()
	assert.True(t, literal)
}

func TestRegister(t *testing.T) {
	m := NewModule(DefaultOptions())

	ty, err := m.Register(7, OpTypeInt)
	require.NoError(t, err)
	assert.False(t, ty.IsComplete())
	assert.Equal(t, ID(8), m.Bound())

	again, err := m.Register(7, OpTypeInt)
	require.NoError(t, err)
	assert.Same(t, ty, again)

	_, err = m.Register(7, OpTypeFloat)
	assert.True(t, errors.IsKind(err, errors.KindShapeMismatch))

	_, err = m.Register(0, OpTypeInt)
	assert.True(t, errors.IsKind(err, errors.KindInvalidField))

	_, err = m.Register(9, OpTypeForwardPointer)
	assert.True(t, errors.IsKind(err, errors.KindUnsupported))

	assert.Equal(t, ID(8), m.AllocateID())

	_, err = m.TypeOf(100)
	assert.True(t, errors.IsKind(err, errors.KindUnresolvedReference))

	// Sparse ids do not grow the module beyond the entries it holds.
	far, err := m.Register(1_000_000_000, OpTypeBool)
	require.NoError(t, err)
	assert.Equal(t, ID(1_000_000_001), m.Bound())
	got, ok := m.Lookup(1_000_000_000)
	require.True(t, ok)
	assert.Same(t, far, got)

	_, err = m.Register(math.MaxUint32, OpTypeBool)
	assert.True(t, errors.IsKind(err, errors.KindInvalidField))
	assert.Equal(t, ID(1_000_000_001), m.Bound())
}

func TestNamesMustSurviveEncoding(t *testing.T) {
	for _, name := range []string{"\xff\xfe", "a\x00b"} {
		m := NewModule(DefaultOptions())
		_, err := m.AddTypeOpaque(name)
		assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%q: %v", name, err)

		_, err = m.AddTypeStruct(name)
		assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%q: %v", name, err)

		_, err = m.AddTypeStructPlaceholder(name, 1)
		assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%q: %v", name, err)

		st := mustType(t)(m.AddTypeStruct(""))
		err = st.SetName(name)
		assert.True(t, errors.IsKind(err, errors.KindInvalidField), "%q: %v", name, err)
		assert.Equal(t, "", m.Name(st.ID()))
		literal, _ := st.IsLiteral()
		assert.True(t, literal)

		assert.True(t, errors.IsKind(m.SetName(st.ID(), name), errors.KindInvalidField))
		assert.Len(t, m.Types(), 1)
	}

	m := NewModule(DefaultOptions())
	op := mustType(t)(m.AddTypeOpaque("opencl.intel_sub_group_avc_ime_payload_t"))
	name, err := op.OpaqueName()
	require.NoError(t, err)
	assert.Equal(t, "opencl.intel_sub_group_avc_ime_payload_t", name)
}
