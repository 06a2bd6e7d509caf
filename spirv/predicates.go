package spirv

// Shape predicates. A bits argument of 0 matches any width; a non-zero
// argument requires that exact width.

func (t *Type) IsVoid() bool         { return t.op == OpTypeVoid }
func (t *Type) IsBool() bool         { return t.op == OpTypeBool }
func (t *Type) IsVector() bool       { return t.op == OpTypeVector }
func (t *Type) IsMatrix() bool       { return t.op == OpTypeMatrix }
func (t *Type) IsArray() bool        { return t.op == OpTypeArray }
func (t *Type) IsRuntimeArray() bool { return t.op == OpTypeRuntimeArray }
func (t *Type) IsStruct() bool       { return t.op == OpTypeStruct }
func (t *Type) IsFunction() bool     { return t.op == OpTypeFunction }
func (t *Type) IsPointer() bool      { return t.op == OpTypePointer }
func (t *Type) IsOpaque() bool       { return t.op == OpTypeOpaque }
func (t *Type) IsImage() bool        { return t.op == OpTypeImage }
func (t *Type) IsSampler() bool      { return t.op == OpTypeSampler }
func (t *Type) IsSampledImage() bool { return t.op == OpTypeSampledImage }
func (t *Type) IsPipe() bool         { return t.op == OpTypePipe }
func (t *Type) IsPipeStorage() bool  { return t.op == OpTypePipeStorage }
func (t *Type) IsEvent() bool        { return t.op == OpTypeEvent }
func (t *Type) IsDeviceEvent() bool  { return t.op == OpTypeDeviceEvent }
func (t *Type) IsReserveID() bool    { return t.op == OpTypeReserveId }
func (t *Type) IsQueue() bool        { return t.op == OpTypeQueue }

// IsInt reports whether t is an integer type of the given width.
func (t *Type) IsInt(bits uint32) bool {
	p, ok := t.payload.(*intType)
	return ok && widthMatches(p.width, bits)
}

// IsFloat reports whether t is a float type of the given width.
func (t *Type) IsFloat(bits uint32) bool {
	p, ok := t.payload.(*floatType)
	return ok && widthMatches(p.width, bits)
}

// IsScalar reports whether t is a bool, integer or float type.
func (t *Type) IsScalar() bool {
	return t.IsBool() || t.IsInt(0) || t.IsFloat(0)
}

// IsComposite reports whether t is a vector, matrix, array or struct.
func (t *Type) IsComposite() bool {
	switch t.op {
	case OpTypeVector, OpTypeMatrix, OpTypeArray, OpTypeStruct:
		return true
	}
	return false
}

// IsOCLImage reports whether t is an image without sampling or format information.
func (t *Type) IsOCLImage() bool {
	p, ok := t.payload.(*imageType)
	return ok && p.desc.IsOCLImage()
}

func (t *Type) IsVectorInt(bits uint32) bool {
	return t.IsVector() && t.componentSatisfies(func(c *Type) bool { return c.IsInt(bits) })
}

func (t *Type) IsVectorFloat(bits uint32) bool {
	return t.IsVector() && t.componentSatisfies(func(c *Type) bool { return c.IsFloat(bits) })
}

func (t *Type) IsVectorBool() bool {
	return t.IsVector() && t.componentSatisfies((*Type).IsBool)
}

func (t *Type) IsVectorOrScalarInt(bits uint32) bool {
	return t.vectorOrScalar(func(c *Type) bool { return c.IsInt(bits) })
}

func (t *Type) IsVectorOrScalarFloat(bits uint32) bool {
	return t.vectorOrScalar(func(c *Type) bool { return c.IsFloat(bits) })
}

func (t *Type) IsVectorOrScalarBool() bool {
	return t.vectorOrScalar((*Type).IsBool)
}

// vectorOrScalar holds for t itself, or for the component of a vector t.
func (t *Type) vectorOrScalar(pred func(*Type) bool) bool {
	if pred(t) {
		return true
	}
	return t.IsVector() && t.componentSatisfies(pred)
}

func (t *Type) componentSatisfies(pred func(*Type) bool) bool {
	p, ok := t.payload.(*vectorType)
	if !ok {
		return false
	}
	c := t.mod.typeOf(p.component)
	return c != nil && c != t && pred(c)
}

func widthMatches(width, bits uint32) bool {
	return bits == 0 || width == bits
}
