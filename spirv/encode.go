package spirv

import (
	"slices"

	"github.com/wippyai/spirv-types/errors"
	"github.com/wippyai/spirv-types/internal/binary"
)

// Encode serializes the module to little-endian bytes.
func (m *Module) Encode() ([]byte, error) {
	w, err := m.encode()
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeWords serializes the module to words.
func (m *Module) EncodeWords() ([]uint32, error) {
	w, err := m.encode()
	if err != nil {
		return nil, err
	}
	return w.Words(), nil
}

// encode writes the module in section order: capabilities, extensions,
// mode-setting instructions, debug names, annotations, then types and
// constants in stream order. Names and CPacked decorations are regenerated
// from the entries they were bound to.
func (m *Module) encode() (*binary.Writer, error) {
	w := binary.NewWriter()
	w.Word(Magic)
	w.Word(m.Version)
	w.Word(m.Generator)
	w.Word(uint32(m.bound))
	w.Word(m.Schema)

	for _, c := range m.capabilities {
		if err := writeEntry(w, &Instruction{op: OpCapability, operands: []uint32{uint32(c)}}); err != nil {
			return nil, err
		}
	}
	for _, ext := range m.extensions {
		if err := writeEntry(w, &Instruction{op: OpExtension, operands: stringOperands(ext)}); err != nil {
			return nil, err
		}
	}
	for _, in := range m.preamble {
		if err := writeEntry(w, in); err != nil {
			return nil, err
		}
	}

	ids := make([]ID, 0, len(m.names))
	for id := range m.names {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		name := &Instruction{op: OpName, operands: append([]uint32{uint32(id)}, stringOperands(m.names[id])...)}
		if err := writeEntry(w, name); err != nil {
			return nil, err
		}
	}
	for _, in := range m.debug {
		if err := writeEntry(w, in); err != nil {
			return nil, err
		}
	}

	for _, in := range m.annotations {
		if err := writeEntry(w, in); err != nil {
			return nil, err
		}
	}
	for _, t := range m.Types() {
		if p, ok := t.payload.(*structType); ok && p.packed {
			dec := &Instruction{op: OpDecorate, operands: []uint32{uint32(t.id), uint32(DecorationCPacked)}}
			if err := writeEntry(w, dec); err != nil {
				return nil, err
			}
		}
	}

	for _, e := range m.body {
		if err := writeEntry(w, e); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// writeEntry writes the header word, lets the entry write its operands and
// checks the result against the entry's declared word count.
func writeEntry(w *binary.Writer, e Entry) error {
	start := w.Len()
	w.Word(0)
	if err := e.encode(w); err != nil {
		return err
	}
	n := w.Len() - start
	if n != int(e.WordCount()) || n > 0xffff {
		return errors.New(errors.PhaseEncode, errors.KindMalformedStream).
			Op(e.Op().String()).ID(uint32(e.ID())).
			Detail("wrote %d words, declared %d", n, e.WordCount()).Build()
	}
	w.Patch(start, uint32(n)<<16|uint32(e.Op()))
	return nil
}

func stringOperands(s string) []uint32 {
	w := binary.NewWriter()
	w.String(s)
	return w.Words()
}

// encode writes the result id and payload fields. The entry must be complete.
func (t *Type) encode(w *binary.Writer) error {
	if !t.complete {
		return errors.Incomplete(errors.PhaseEncode, t.op.String(), uint32(t.id))
	}
	w.Word(uint32(t.id))
	switch p := t.payload.(type) {
	case *intType:
		w.Word(p.width)
		if p.signed {
			w.Word(1)
		} else {
			w.Word(0)
		}
	case *floatType:
		w.Word(p.width)
	case *vectorType:
		w.Word(uint32(p.component))
		w.Word(p.count)
	case *matrixType:
		w.Word(uint32(p.column))
		w.Word(p.count)
	case *arrayType:
		w.Word(uint32(p.element))
		w.Word(uint32(p.length))
	case *runtimeArrayType:
		w.Word(uint32(p.element))
	case *pointerType:
		w.Word(uint32(p.storageClass))
		w.Word(uint32(p.element))
	case *structType:
		for _, member := range p.members {
			w.Word(uint32(member))
		}
	case *functionType:
		w.Word(uint32(p.ret))
		for _, param := range p.params {
			w.Word(uint32(param))
		}
	case *opaqueType:
		w.String(p.name)
	case *imageType:
		w.Word(uint32(p.sampled))
		w.Word(uint32(p.desc.Dim))
		w.Word(p.desc.Depth)
		w.Word(p.desc.Arrayed)
		w.Word(p.desc.MS)
		w.Word(p.desc.Sampled)
		w.Word(uint32(p.desc.Format))
		for _, a := range p.access {
			w.Word(uint32(a))
		}
	case *sampledImageType:
		w.Word(uint32(p.image))
	case *pipeType:
		w.Word(uint32(p.access))
	}
	return nil
}
