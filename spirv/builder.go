package spirv

import (
	"slices"

	"github.com/wippyai/spirv-types/errors"
)

// addType validates a fully populated entry against the module and registers
// it under a fresh id only when validation passes.
func (m *Module) addType(op Op, p payload) (*Type, error) {
	t := &Type{mod: m, id: m.bound, op: op, payload: p}
	t.computeWordCount()
	if err := newValidator(m, false).check(t); err != nil {
		return nil, err
	}
	t.complete = true
	m.set(t.id, t)
	m.place(t)
	m.log.Debug("added type", zapOp(op), zapID(t.id))
	return t, nil
}

func (m *Module) AddTypeVoid() (*Type, error) {
	return m.addType(OpTypeVoid, &emptyType{})
}

func (m *Module) AddTypeBool() (*Type, error) {
	return m.addType(OpTypeBool, &emptyType{})
}

func (m *Module) AddTypeInt(width uint32, signed bool) (*Type, error) {
	return m.addType(OpTypeInt, &intType{width: width, signed: signed})
}

func (m *Module) AddTypeFloat(width uint32) (*Type, error) {
	return m.addType(OpTypeFloat, &floatType{width: width})
}

func (m *Module) AddTypeVector(component ID, count uint32) (*Type, error) {
	return m.addType(OpTypeVector, &vectorType{component: component, count: count})
}

func (m *Module) AddTypeMatrix(column ID, count uint32) (*Type, error) {
	return m.addType(OpTypeMatrix, &matrixType{column: column, count: count})
}

// AddTypeArray adds an array whose length is the constant entry length.
func (m *Module) AddTypeArray(element, length ID) (*Type, error) {
	return m.addType(OpTypeArray, &arrayType{element: element, length: length})
}

func (m *Module) AddTypeRuntimeArray(element ID) (*Type, error) {
	return m.addType(OpTypeRuntimeArray, &runtimeArrayType{element: element})
}

// AddTypePointer adds a pointer to element. The element may be incomplete.
func (m *Module) AddTypePointer(sc StorageClass, element ID) (*Type, error) {
	return m.addType(OpTypePointer, &pointerType{storageClass: sc, element: element})
}

// AddForwardPointer allocates a pointer id and declares its storage class.
// The pointer stays incomplete until CompletePointer supplies its element.
func (m *Module) AddForwardPointer(sc StorageClass) (*ForwardPointer, error) {
	if !sc.IsValid() {
		return nil, errors.InvalidEnum(errors.PhaseBuild, OpTypeForwardPointer.String(), "storage_class", uint32(sc), "StorageClass")
	}
	id := m.AllocateID()
	m.declareForward(id, sc)
	fp := &ForwardPointer{pointer: id, storageClass: sc}
	m.body = append(m.body, fp)
	return fp, nil
}

// declareForward registers the incomplete pointer a forward declaration names.
// The pointer takes its place in the stream when it is defined.
func (m *Module) declareForward(id ID, sc StorageClass) {
	m.forward[id] = sc
	if _, ok := m.Lookup(id); ok {
		return
	}
	t := newType(m, id, OpTypePointer)
	t.payload.(*pointerType).storageClass = sc
	m.set(id, t)
}

// CompletePointer defines the element of a forward-declared pointer.
func (m *Module) CompletePointer(id, element ID) (*Type, error) {
	t, err := m.TypeOf(id)
	if err != nil {
		return nil, err
	}
	p, ok := t.payload.(*pointerType)
	if !ok || t.complete {
		return nil, errors.New(errors.PhaseBuild, errors.KindShapeMismatch).
			Op(OpTypePointer.String()).ID(uint32(id)).
			Detail("%s is not a forward-declared pointer", t).Build()
	}
	p.element = element
	if err := t.Complete(); err != nil {
		return nil, err
	}
	m.place(t)
	return t, nil
}

// AddTypeStruct adds a struct. An empty name makes it a literal struct.
func (m *Module) AddTypeStruct(name string, members ...ID) (*Type, error) {
	t, err := m.addType(OpTypeStruct, &structType{
		name:    name,
		members: slices.Clone(members),
		literal: name == "",
	})
	if err != nil {
		return nil, err
	}
	if name != "" {
		m.names[t.id] = name
	}
	return t, nil
}

// AddTypeStructPlaceholder registers an incomplete struct with memberCount
// empty member slots. Fill them with SetMemberType and finish with Complete.
func (m *Module) AddTypeStructPlaceholder(name string, memberCount int) (*Type, error) {
	if memberCount < 0 {
		return nil, errors.InvalidField(errors.PhaseBuild, OpTypeStruct.String(), 0, "members", memberCount, "member count must not be negative")
	}
	if err := checkName(errors.PhaseBuild, OpTypeStruct, 0, "name", name); err != nil {
		return nil, err
	}
	t, err := m.Register(m.AllocateID(), OpTypeStruct)
	if err != nil {
		return nil, err
	}
	t.payload.(*structType).members = make([]ID, memberCount)
	t.computeWordCount()
	if name != "" {
		// Checked above, so naming cannot fail.
		_ = m.SetName(t.id, name)
	}
	return t, nil
}

func (m *Module) AddTypeFunction(ret ID, params ...ID) (*Type, error) {
	return m.addType(OpTypeFunction, &functionType{ret: ret, params: slices.Clone(params)})
}

func (m *Module) AddTypeOpaque(name string) (*Type, error) {
	return m.addType(OpTypeOpaque, &opaqueType{name: name})
}

// AddTypeImage adds an image type with at most one access qualifier.
func (m *Module) AddTypeImage(sampled ID, desc ImageDescriptor, access ...AccessQualifier) (*Type, error) {
	return m.addType(OpTypeImage, &imageType{sampled: sampled, desc: desc, access: slices.Clone(access)})
}

func (m *Module) AddTypeSampler() (*Type, error) {
	return m.addType(OpTypeSampler, &emptyType{})
}

func (m *Module) AddTypeSampledImage(image ID) (*Type, error) {
	return m.addType(OpTypeSampledImage, &sampledImageType{image: image})
}

func (m *Module) AddTypePipeStorage() (*Type, error) {
	return m.addType(OpTypePipeStorage, &emptyType{})
}

func (m *Module) AddTypePipe(access AccessQualifier) (*Type, error) {
	return m.addType(OpTypePipe, &pipeType{access: access})
}

// AddTypeOpaqueGeneric adds one of the payload-free device types:
// OpTypeEvent, OpTypeReserveId, OpTypeDeviceEvent or OpTypeQueue.
func (m *Module) AddTypeOpaqueGeneric(op Op) (*Type, error) {
	switch op {
	case OpTypeEvent, OpTypeReserveId, OpTypeDeviceEvent, OpTypeQueue:
		return m.addType(op, &emptyType{})
	}
	return nil, errors.Unsupported(errors.PhaseBuild, op.String()+" is not an opaque generic type")
}
