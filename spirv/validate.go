package spirv

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/spirv-types/errors"
)

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	visited
)

// validator walks type entries depth first. Entries reached again while still
// on the walk stack contain themselves without pointer indirection.
type validator struct {
	m      *Module
	state  map[ID]visitState
	result map[ID]error
	// shared is set when every type is validated as a root in turn, so a
	// failure already reported for an entry is not repeated by its owners.
	shared bool
}

func newValidator(m *Module, shared bool) *validator {
	return &validator{
		m:      m,
		state:  make(map[ID]visitState),
		result: make(map[ID]error),
		shared: shared,
	}
}

func (v *validator) check(t *Type) error {
	switch v.state[t.id] {
	case visiting:
		return errors.New(errors.PhaseValidate, errors.KindShapeMismatch).
			Op(t.op.String()).ID(uint32(t.id)).
			Detail("type contains itself without pointer indirection").Build()
	case visited:
		if v.shared {
			return nil
		}
		return v.result[t.id]
	}
	v.state[t.id] = visiting
	err := t.checkFields()
	if err == nil {
		err = v.checkReferences(t)
	}
	v.state[t.id] = visited
	v.result[t.id] = err
	return err
}

// resolve looks up a referenced type. Incomplete entries are accepted for
// pointer elements and for forward-declared pointers only.
func (v *validator) resolve(owner *Type, field string, id ID, allowIncomplete bool) (*Type, error) {
	e, ok := v.m.Lookup(id)
	if !ok {
		return nil, errors.UnresolvedReference(errors.PhaseValidate, owner.op.String(), uint32(owner.id), field, uint32(id))
	}
	t, ok := e.(*Type)
	if !ok {
		return nil, errors.New(errors.PhaseValidate, errors.KindShapeMismatch).
			Op(owner.op.String()).ID(uint32(owner.id)).Path(field).
			Detail("%%%d is %s, expected a type", id, e.Op()).Build()
	}
	if !t.complete && !allowIncomplete && t.op != OpTypePointer {
		return nil, errors.New(errors.PhaseValidate, errors.KindIncomplete).
			Op(owner.op.String()).ID(uint32(owner.id)).Path(field).
			Detail("%%%d is not complete", id).Build()
	}
	return t, nil
}

// descend resolves and validates an owned sub-entry.
func (v *validator) descend(owner *Type, field string, id ID) (*Type, error) {
	t, err := v.resolve(owner, field, id, false)
	if err != nil {
		return nil, err
	}
	if !t.complete {
		return t, nil
	}
	return t, v.check(t)
}

func (v *validator) checkReferences(t *Type) error {
	op := t.op.String()
	switch p := t.payload.(type) {
	case *vectorType:
		c, err := v.descend(t, "component", p.component)
		if err != nil {
			return err
		}
		if !c.IsScalar() {
			return errors.New(errors.PhaseValidate, errors.KindShapeMismatch).
				Op(op).ID(uint32(t.id)).Path("component").
				Detail("component %s is not a scalar type", c).Build()
		}
	case *matrixType:
		c, err := v.descend(t, "column", p.column)
		if err != nil {
			return err
		}
		if !c.IsVector() {
			return errors.New(errors.PhaseValidate, errors.KindShapeMismatch).
				Op(op).ID(uint32(t.id)).Path("column").
				Detail("column %s is not a vector type", c).Build()
		}
	case *arrayType:
		if _, err := v.descend(t, "element", p.element); err != nil {
			return err
		}
		e, ok := v.m.Lookup(p.length)
		if !ok {
			return errors.UnresolvedReference(errors.PhaseValidate, op, uint32(t.id), "length", uint32(p.length))
		}
		if _, ok := e.(*Constant); !ok {
			return errors.New(errors.PhaseValidate, errors.KindShapeMismatch).
				Op(op).ID(uint32(t.id)).Path("length").
				Detail("%%%d is %s, expected a constant", p.length, e.Op()).Build()
		}
	case *runtimeArrayType:
		if _, err := v.descend(t, "element", p.element); err != nil {
			return err
		}
	case *pointerType:
		// The element may be defined later or contain this pointer, so it is
		// resolved but never validated from here.
		if _, err := v.resolve(t, "element", p.element, true); err != nil {
			return err
		}
		if fwd, ok := v.m.forward[t.id]; ok && fwd != p.storageClass {
			return errors.InvalidField(errors.PhaseValidate, op, uint32(t.id), "storage_class", p.storageClass,
				"storage class differs from forward declaration "+fwd.String())
		}
	case *structType:
		for i, member := range p.members {
			if _, err := v.descend(t, "member."+strconv.Itoa(i), member); err != nil {
				return err
			}
		}
	case *functionType:
		if _, err := v.descend(t, "return", p.ret); err != nil {
			return err
		}
		for i, param := range p.params {
			if _, err := v.descend(t, "param."+strconv.Itoa(i), param); err != nil {
				return err
			}
		}
	case *imageType:
		if _, err := v.descend(t, "sampled_type", p.sampled); err != nil {
			return err
		}
	case *sampledImageType:
		img, err := v.descend(t, "image", p.image)
		if err != nil {
			return err
		}
		if !img.IsImage() {
			return errors.New(errors.PhaseValidate, errors.KindShapeMismatch).
				Op(op).ID(uint32(t.id)).Path("image").
				Detail("%s is not an image type", img).Build()
		}
	}
	return nil
}

// checkFields validates the entry's own fields without resolving any id.
// Decoding runs it on every entry as soon as the entry is read.
func (t *Type) checkFields() error {
	op := t.op.String()
	id := uint32(t.id)
	switch p := t.payload.(type) {
	case *intType:
		if p.width < 2 || p.width > 64 {
			return errors.InvalidField(errors.PhaseValidate, op, id, "width", p.width, "integer width must be in [2, 64]")
		}
	case *floatType:
		if p.width < 16 || p.width > 64 {
			return errors.InvalidField(errors.PhaseValidate, op, id, "width", p.width, "float width must be in [16, 64]")
		}
	case *vectorType:
		switch p.count {
		case 2, 3, 4, 8, 16:
		default:
			return errors.InvalidField(errors.PhaseValidate, op, id, "count", p.count, "vector component count must be 2, 3, 4, 8 or 16")
		}
	case *matrixType:
		if p.count < 2 || p.count > 4 {
			return errors.InvalidField(errors.PhaseValidate, op, id, "count", p.count, "matrix column count must be 2, 3 or 4")
		}
	case *pointerType:
		if !p.storageClass.IsValid() {
			return errors.InvalidEnum(errors.PhaseValidate, op, "storage_class", uint32(p.storageClass), "StorageClass")
		}
	case *imageType:
		return t.checkImageFields(p)
	case *pipeType:
		if !p.access.IsValid() {
			return errors.InvalidEnum(errors.PhaseValidate, op, "access", uint32(p.access), "AccessQualifier")
		}
	case *opaqueType:
		return checkName(errors.PhaseValidate, t.op, t.id, "name", p.name)
	case *structType:
		return checkName(errors.PhaseValidate, t.op, t.id, "name", p.name)
	}
	return nil
}

// checkName rejects names that cannot be written as a literal string:
// invalid UTF-8, or a NUL byte that would end the string early.
func checkName(phase errors.Phase, op Op, id ID, field, name string) error {
	switch {
	case !utf8.ValidString(name):
		return errors.InvalidField(phase, op.String(), uint32(id), field, name, "name is not valid UTF-8")
	case strings.IndexByte(name, 0) >= 0:
		return errors.InvalidField(phase, op.String(), uint32(id), field, name, "name contains a NUL byte")
	}
	return nil
}

func (t *Type) checkImageFields(p *imageType) error {
	op := t.op.String()
	id := uint32(t.id)
	if int(t.wordCount) != imageFixedWC+len(p.access) {
		return errors.MalformedStream(errors.PhaseValidate,
			op+" word count does not match its access qualifier count")
	}
	d := p.desc
	switch {
	case !d.Dim.IsValid():
		return errors.InvalidEnum(errors.PhaseValidate, op, "dim", uint32(d.Dim), "Dim")
	case d.Depth > 1:
		return errors.InvalidField(errors.PhaseValidate, op, id, "depth", d.Depth, "depth must be 0 or 1")
	case d.Arrayed > 1:
		return errors.InvalidField(errors.PhaseValidate, op, id, "arrayed", d.Arrayed, "arrayed must be 0 or 1")
	case d.MS > 1:
		return errors.InvalidField(errors.PhaseValidate, op, id, "ms", d.MS, "multisampled must be 0 or 1")
	case d.Sampled > 2:
		return errors.InvalidField(errors.PhaseValidate, op, id, "sampled", d.Sampled, "sampled must be 0, 1 or 2")
	case !d.Format.IsValid():
		return errors.InvalidEnum(errors.PhaseValidate, op, "format", uint32(d.Format), "ImageFormat")
	case len(p.access) > 1:
		return errors.InvalidField(errors.PhaseValidate, op, id, "access", len(p.access), "at most one access qualifier is allowed")
	}
	for _, a := range p.access {
		if !a.IsValid() {
			return errors.InvalidEnum(errors.PhaseValidate, op, "access", uint32(a), "AccessQualifier")
		}
	}
	return nil
}

// Validate checks the entry and every entry it owns. Pointer elements are
// resolved but not validated, so self-referential structs terminate.
func (t *Type) Validate() error {
	if !t.complete {
		return errors.Incomplete(errors.PhaseValidate, t.op.String(), uint32(t.id))
	}
	return newValidator(t.mod, false).check(t)
}

// Validate checks every type entry and reports all failures joined together.
// It must run only after decoding or building has finished.
func (m *Module) Validate() error {
	v := newValidator(m, true)
	var errs []error
	for _, e := range m.body {
		switch e := e.(type) {
		case *Type:
			if !e.complete {
				errs = append(errs, errors.Incomplete(errors.PhaseValidate, e.op.String(), uint32(e.id)))
				continue
			}
			if err := v.check(e); err != nil {
				errs = append(errs, err)
			}
		case *ForwardPointer:
			if t := m.typeOf(e.pointer); t == nil || !t.complete {
				errs = append(errs, errors.New(errors.PhaseValidate, errors.KindIncomplete).
					Op(e.Op().String()).ID(uint32(e.pointer)).
					Detail("forward-declared pointer is never defined").Build())
			}
		}
	}
	return errors.Join(errs...)
}
