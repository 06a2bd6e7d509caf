package spirv

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/spirv-types/errors"
	"github.com/wippyai/spirv-types/internal/binary"
)

// ID is a result id. Zero never names an entry.
type ID uint32

// Entry is a node of the module's entry table.
type Entry interface {
	// ID returns the result id the entry defines. For a ForwardPointer it is
	// the id of the pointer being declared. Raw instructions return 0 unless
	// their opcode has a known result id.
	ID() ID
	Op() Op
	// WordCount is the serialized length in words, header word included.
	WordCount() uint16
	encode(w *binary.Writer) error
}

// Module is the entry table of one SPIR-V module. It owns every entry,
// allocates ids and resolves ids to entries. Entries are never removed.
//
// A Module is not safe for concurrent mutation. Once decoding or building has
// finished, queries and capability derivation may run from multiple goroutines.
type Module struct {
	log  *zap.Logger
	opts Options

	// entries maps result ids to entries. Ids may be sparse.
	entries map[ID]Entry
	// body holds types, constants, forward pointers and unrecognized
	// instructions in stream order.
	body        []Entry
	preamble    []*Instruction
	debug       []*Instruction
	annotations []*Instruction

	names        map[ID]string
	extensions   []string
	capabilities []Capability

	// forward maps a forward-declared pointer id to its declared storage class.
	forward map[ID]StorageClass

	Version   uint32
	Generator uint32
	Schema    uint32

	bound ID
}

// NewModule creates an empty module configured by opts. Zero-valued fields of
// opts fall back to DefaultOptions.
func NewModule(opts Options) *Module {
	def := DefaultOptions()
	if opts.Float16Extension == "" {
		opts.Float16Extension = def.Float16Extension
	}
	if opts.OpCapabilities == nil {
		opts.OpCapabilities = def.OpCapabilities
	}
	m := &Module{
		opts:    opts,
		log:     opts.logger(),
		entries: make(map[ID]Entry),
		names:   make(map[ID]string),
		forward: make(map[ID]StorageClass),
		Version: Version1_0,
		bound:   1,
	}
	for _, ext := range opts.Extensions {
		m.AddExtension(ext)
	}
	return m
}

// Options returns the configuration the module was created with.
func (m *Module) Options() Options {
	return m.opts
}

// AllocateID reserves a fresh id.
func (m *Module) AllocateID() ID {
	id := m.bound
	m.bound++
	return id
}

// Bound returns one more than the largest id in use.
func (m *Module) Bound() ID {
	return m.bound
}

func (m *Module) reserve(id ID) {
	if id >= m.bound {
		m.bound = id + 1
	}
}

// Lookup returns the entry registered under id. The entry may be incomplete.
func (m *Module) Lookup(id ID) (Entry, bool) {
	e, ok := m.entries[id]
	return e, ok
}

func (m *Module) set(id ID, e Entry) {
	m.entries[id] = e
	m.reserve(id)
}

// checkID rejects ids that cannot name an entry: zero, and the largest id,
// which leaves no room for a bound above it.
func checkID(phase errors.Phase, op Op, id ID) error {
	if id == 0 || id == math.MaxUint32 {
		return errors.InvalidField(phase, op.String(), uint32(id), "id", uint32(id), "result id must be in [1, 0xfffffffe]")
	}
	return nil
}

// Register returns the type entry for id, creating an incomplete entry of kind
// op when the id is free. An existing incomplete entry of the same kind is
// returned as is, so a forward-declared pointer is completed in place.
func (m *Module) Register(id ID, op Op) (*Type, error) {
	if err := checkID(errors.PhaseResolve, op, id); err != nil {
		return nil, err
	}
	if !op.IsTypeDeclaration() || op == OpTypeForwardPointer {
		return nil, errors.Unsupported(errors.PhaseResolve, op.String()+" does not declare a type")
	}
	e, ok := m.Lookup(id)
	if !ok {
		t := newType(m, id, op)
		m.set(id, t)
		m.place(t)
		return t, nil
	}
	t, isType := e.(*Type)
	if !isType || t.complete {
		return nil, errors.DuplicateID(errors.PhaseResolve, op.String(), uint32(id))
	}
	if t.op != op {
		return nil, errors.ShapeMismatch(errors.PhaseResolve, op.String(), uint32(id), "forward declaration of "+t.op.String())
	}
	m.place(t)
	return t, nil
}

func (m *Module) place(t *Type) {
	if t.placed {
		return
	}
	t.placed = true
	m.body = append(m.body, t)
}

// TypeOf resolves id to a type entry.
func (m *Module) TypeOf(id ID) (*Type, error) {
	e, ok := m.Lookup(id)
	if !ok {
		return nil, errors.UnresolvedReference(errors.PhaseResolve, "", uint32(id), "id", uint32(id))
	}
	t, ok := e.(*Type)
	if !ok {
		return nil, errors.ShapeMismatch(errors.PhaseResolve, e.Op().String(), uint32(id), "type")
	}
	return t, nil
}

// typeOf is TypeOf without the error, for queries that never fail.
func (m *Module) typeOf(id ID) *Type {
	e, _ := m.Lookup(id)
	t, _ := e.(*Type)
	return t
}

// ConstantOf resolves id to a constant entry.
func (m *Module) ConstantOf(id ID) (*Constant, error) {
	e, ok := m.Lookup(id)
	if !ok {
		return nil, errors.UnresolvedReference(errors.PhaseResolve, "", uint32(id), "id", uint32(id))
	}
	c, ok := e.(*Constant)
	if !ok {
		return nil, errors.ShapeMismatch(errors.PhaseResolve, e.Op().String(), uint32(id), "constant")
	}
	return c, nil
}

// Types returns every type entry in stream order.
func (m *Module) Types() []*Type {
	var out []*Type
	for _, e := range m.body {
		if t, ok := e.(*Type); ok {
			out = append(out, t)
		}
	}
	return out
}

// Entries returns the entries of the types-and-constants section in stream order.
func (m *Module) Entries() []Entry {
	return slices.Clone(m.body)
}

// Instructions returns the raw instructions kept outside the type section:
// mode-setting, debug and annotation instructions in the order they are encoded.
func (m *Module) Instructions() []*Instruction {
	out := slices.Clone(m.preamble)
	out = append(out, m.debug...)
	return append(out, m.annotations...)
}

// AddInstruction appends a raw instruction. Mode-setting and debug instructions
// go to their own sections; anything else lands after the entries added so far.
// An instruction whose opcode has a known result id is registered under that
// id when the id is free.
func (m *Module) AddInstruction(op Op, operands ...uint32) *Instruction {
	in := &Instruction{op: op, operands: slices.Clone(operands)}
	if id, ok := resultOf(op, operands); ok && checkID(errors.PhaseBuild, op, id) == nil {
		if _, taken := m.Lookup(id); !taken {
			in.result = id
			m.set(id, in)
		}
	}
	switch {
	case op == OpMemberName:
		m.debug = append(m.debug, in)
	case isAnnotation(op):
		m.annotations = append(m.annotations, in)
	case isPreamble(op) || len(m.body) == 0:
		m.preamble = append(m.preamble, in)
	default:
		m.body = append(m.body, in)
	}
	return in
}

// resultOf returns the result id among the operands of a raw instruction.
func resultOf(op Op, operands []uint32) (ID, bool) {
	i := op.resultIndex()
	if i < 0 || i >= len(operands) {
		return 0, false
	}
	return ID(operands[i]), true
}

func isAnnotation(op Op) bool {
	// OpDecorate, OpMemberDecorate, OpDecorationGroup, OpGroupDecorate, OpGroupMemberDecorate
	return op >= OpDecorate && op <= 75
}

func isPreamble(op Op) bool {
	switch op {
	case OpSource, OpSourceExtension, OpString, OpExtInstImport, OpMemoryModel,
		OpEntryPoint, OpExecutionMode:
		return true
	}
	return false
}

// Name returns the debug name of id, or "" when it has none.
func (m *Module) Name(id ID) string {
	return m.names[id]
}

// SetName records a debug name for id. Naming a struct also makes it
// an identified (non-literal) struct. Names must be valid UTF-8 without NUL
// bytes so they survive encoding as literal strings.
func (m *Module) SetName(id ID, name string) error {
	if err := checkName(errors.PhaseBuild, OpName, id, "name", name); err != nil {
		return err
	}
	if name == "" {
		delete(m.names, id)
	} else {
		m.names[id] = name
	}
	if t := m.typeOf(id); t != nil {
		if st, ok := t.payload.(*structType); ok {
			st.name = name
			st.literal = name == ""
		}
	}
	return nil
}

// Extensions returns the enabled extensions in the order they were added.
func (m *Module) Extensions() []string {
	return slices.Clone(m.extensions)
}

// HasExtension reports whether ext is enabled.
func (m *Module) HasExtension(ext string) bool {
	return slices.Contains(m.extensions, ext)
}

// AddExtension enables ext. Adding an enabled extension is a no-op.
func (m *Module) AddExtension(ext string) {
	if ext == "" || m.HasExtension(ext) {
		return
	}
	m.extensions = append(m.extensions, ext)
}

// DeclaredCapabilities returns the capabilities declared by OpCapability.
func (m *Module) DeclaredCapabilities() []Capability {
	return slices.Clone(m.capabilities)
}

// AddCapability declares c. Declaring it twice is a no-op.
func (m *Module) AddCapability(c Capability) {
	if slices.Contains(m.capabilities, c) {
		return
	}
	m.capabilities = append(m.capabilities, c)
}

// Constant is a constant entry: a scalar literal, a boolean or null value, a
// composite of other constants, or a specialization constant operation.
// Array lengths reference constants by id.
type Constant struct {
	id         ID
	op         Op
	resultType ID
	value      []uint32
}

func (c *Constant) ID() ID { return c.id }

func (c *Constant) Op() Op { return c.op }

func (c *Constant) WordCount() uint16 { return uint16(3 + len(c.value)) }

// ResultType returns the id of the constant's type.
func (c *Constant) ResultType() ID { return c.resultType }

// Words returns the operand words after the result id: the literal value
// low-order word first, the constituent ids of a composite, or the opcode and
// operands of OpSpecConstantOp.
func (c *Constant) Words() []uint32 { return slices.Clone(c.value) }

// Uint64 returns the literal value. Boolean constants report 0 or 1 and
// OpConstantNull reports 0. It fails for values wider than 64 bits and for
// constants whose value is computed: composites and OpSpecConstantOp.
func (c *Constant) Uint64() (uint64, bool) {
	switch c.op {
	case OpConstantTrue, OpSpecConstantTrue:
		return 1, true
	case OpConstantFalse, OpSpecConstantFalse, OpConstantNull:
		return 0, true
	case OpConstant, OpSpecConstant:
	default:
		return 0, false
	}
	switch len(c.value) {
	case 1:
		return uint64(c.value[0]), true
	case 2:
		return uint64(c.value[0]) | uint64(c.value[1])<<32, true
	}
	return 0, false
}

func (c *Constant) encode(w *binary.Writer) error {
	w.Word(uint32(c.resultType))
	w.Word(uint32(c.id))
	w.WriteWords(c.value)
	return nil
}

// AddConstant adds an OpConstant of an integer or float type. Values of
// types wider than 32 bits take two words.
func (m *Module) AddConstant(resultType ID, value uint64) (*Constant, error) {
	t, err := m.TypeOf(resultType)
	if err != nil {
		return nil, err
	}
	width, err := t.BitWidth()
	if err != nil || !(t.IsInt(0) || t.IsFloat(0)) {
		return nil, errors.ShapeMismatch(errors.PhaseBuild, OpConstant.String(), uint32(resultType), "integer or float result type")
	}
	words := []uint32{uint32(value)}
	if width > 32 {
		words = append(words, uint32(value>>32))
	}
	c := &Constant{id: m.AllocateID(), op: OpConstant, resultType: resultType, value: words}
	m.set(c.id, c)
	m.body = append(m.body, c)
	return c, nil
}

// ForwardPointer declares the storage class of a pointer type before its
// element type is known.
type ForwardPointer struct {
	pointer      ID
	storageClass StorageClass
}

// ID returns the id of the declared pointer type.
func (f *ForwardPointer) ID() ID { return f.pointer }

func (f *ForwardPointer) Op() Op { return OpTypeForwardPointer }

func (f *ForwardPointer) WordCount() uint16 { return 3 }

// StorageClass returns the declared storage class.
func (f *ForwardPointer) StorageClass() StorageClass { return f.storageClass }

func (f *ForwardPointer) encode(w *binary.Writer) error {
	w.Word(uint32(f.pointer))
	w.Word(uint32(f.storageClass))
	return nil
}

// Instruction is an instruction the type layer keeps verbatim.
type Instruction struct {
	op       Op
	operands []uint32
	result   ID
}

func (in *Instruction) ID() ID { return in.result }

func (in *Instruction) Op() Op { return in.op }

func (in *Instruction) WordCount() uint16 { return uint16(1 + len(in.operands)) }

// Operands returns the operand words following the header word.
func (in *Instruction) Operands() []uint32 { return slices.Clone(in.operands) }

func (in *Instruction) encode(w *binary.Writer) error {
	w.WriteWords(in.operands)
	return nil
}
