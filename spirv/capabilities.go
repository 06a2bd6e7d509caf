package spirv

import (
	"iter"
	"slices"
)

// storageClassCapabilities lists the capabilities implied by pointing into a
// storage class.
var storageClassCapabilities = map[StorageClass][]Capability{
	StorageClassUniform:               {CapabilityShader},
	StorageClassOutput:                {CapabilityShader},
	StorageClassPrivate:               {CapabilityShader},
	StorageClassPushConstant:          {CapabilityShader},
	StorageClassStorageBuffer:         {CapabilityShader},
	StorageClassGeneric:               {CapabilityGenericPointer},
	StorageClassAtomicCounter:         {CapabilityAtomicStorage},
	StorageClassPhysicalStorageBuffer: {CapabilityPhysicalStorageBufferAddresses},
}

// RequiredCapabilities returns the capabilities t demands of an execution
// target. The sequence is produced lazily and may repeat a capability;
// unresolved references contribute nothing. Each referenced type is visited
// at most once, so self-referential types terminate.
func (t *Type) RequiredCapabilities() iter.Seq[Capability] {
	return func(yield func(Capability) bool) {
		t.mod.capabilitiesOf(t, make(map[ID]struct{}), yield)
	}
}

// capabilitiesOf yields the capabilities of t and reports whether the
// consumer wants more.
func (m *Module) capabilitiesOf(t *Type, seen map[ID]struct{}, yield func(Capability) bool) bool {
	if _, ok := seen[t.id]; ok {
		return true
	}
	seen[t.id] = struct{}{}

	emit := func(caps ...Capability) bool {
		for _, c := range caps {
			if !yield(c) {
				return false
			}
		}
		return true
	}
	sub := func(id ID) bool {
		s := m.typeOf(id)
		if s == nil {
			return true
		}
		return m.capabilitiesOf(s, seen, yield)
	}

	if !emit(m.opts.OpCapabilities[t.op]...) {
		return false
	}

	switch p := t.payload.(type) {
	case *intType:
		switch p.width {
		case 8:
			return emit(CapabilityInt8)
		case 16:
			return emit(CapabilityInt16)
		case 64:
			return emit(CapabilityInt64)
		}
	case *floatType:
		switch p.width {
		case 16:
			if !emit(CapabilityFloat16Buffer) {
				return false
			}
			if m.HasExtension(m.opts.Float16Extension) {
				return emit(CapabilityFloat16)
			}
		case 64:
			return emit(CapabilityFloat64)
		}
	case *vectorType:
		if !sub(p.component) {
			return false
		}
		if p.count >= 8 {
			return emit(CapabilityVector16)
		}
	case *matrixType:
		return sub(p.column) && emit(CapabilityMatrix)
	case *arrayType:
		return sub(p.element)
	case *runtimeArrayType:
		return sub(p.element)
	case *pointerType:
		// The pointee is searched for half floats but its capabilities are not emitted.
		if !emit(CapabilityAddresses) {
			return false
		}
		if m.holdsHalf(p.element, make(map[ID]struct{})) {
			if !emit(CapabilityFloat16Buffer) {
				return false
			}
		}
		return emit(storageClassCapabilities[p.storageClass]...)
	case *structType:
		for _, member := range p.members {
			if !sub(member) {
				return false
			}
		}
	case *functionType:
		if !sub(p.ret) {
			return false
		}
		for _, param := range p.params {
			if !sub(param) {
				return false
			}
		}
	case *imageType:
		return emit(imageCapabilities(p)...)
	case *pipeType:
		return emit(CapabilityPipes)
	}

	switch t.op {
	case OpTypeDeviceEvent, OpTypeQueue:
		return emit(CapabilityDeviceEnqueue)
	}
	return true
}

// holdsHalf reports whether values of type id store a 16-bit float, directly
// or inside vectors, matrices, arrays and struct members. Pointers stored in
// the value are not followed.
func (m *Module) holdsHalf(id ID, seen map[ID]struct{}) bool {
	if _, ok := seen[id]; ok {
		return false
	}
	seen[id] = struct{}{}
	t := m.typeOf(id)
	if t == nil {
		return false
	}
	switch p := t.payload.(type) {
	case *floatType:
		return p.width == 16
	case *vectorType:
		return m.holdsHalf(p.component, seen)
	case *matrixType:
		return m.holdsHalf(p.column, seen)
	case *arrayType:
		return m.holdsHalf(p.element, seen)
	case *runtimeArrayType:
		return m.holdsHalf(p.element, seen)
	case *structType:
		for _, member := range p.members {
			if m.holdsHalf(member, seen) {
				return true
			}
		}
	}
	return false
}

func imageCapabilities(p *imageType) []Capability {
	caps := []Capability{CapabilityImageBasic}
	switch p.desc.Dim {
	case Dim1D:
		caps = append(caps, CapabilitySampled1D)
	case DimBuffer:
		caps = append(caps, CapabilitySampledBuffer)
	}
	if len(p.access) > 0 && p.access[0] == AccessQualifierReadWrite {
		caps = append(caps, CapabilityImageReadWrite)
	}
	// Known discrepancy: multisampling maps to ImageMipmap here, not to a
	// multisample capability. Kept until the intended mapping is confirmed.
	if p.desc.MS != 0 {
		caps = append(caps, CapabilityImageMipmap)
	}
	return caps
}

// RequiredCapabilities returns the deduplicated, sorted union of the
// capabilities required by every type and forward pointer in the module.
func (m *Module) RequiredCapabilities() []Capability {
	set := make(map[Capability]struct{})
	for _, e := range m.body {
		switch e := e.(type) {
		case *Type:
			for c := range e.RequiredCapabilities() {
				set[c] = struct{}{}
			}
		case *ForwardPointer:
			for _, c := range m.opts.OpCapabilities[OpTypeForwardPointer] {
				set[c] = struct{}{}
			}
		}
	}
	out := make([]Capability, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// MissingCapabilities returns the required capabilities the module does not
// declare, sorted.
func (m *Module) MissingCapabilities() []Capability {
	var out []Capability
	for _, c := range m.RequiredCapabilities() {
		if !slices.Contains(m.capabilities, c) {
			out = append(out, c)
		}
	}
	return out
}
