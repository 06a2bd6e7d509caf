package spirv

import (
	stderrors "errors"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/spirv-types/errors"
	"github.com/wippyai/spirv-types/internal/binary"
)

// Decode parses a SPIR-V binary module in either byte order.
//
// Entries are decoded in stream order and may reference ids defined later.
// Debug names and CPacked decorations are applied after the whole stream has
// been read. Stream framing errors return a nil module. When the framing is
// intact but individual entries fail, the partially decoded module is
// returned together with the joined entry errors.
func Decode(data []byte, opts Options) (*Module, error) {
	if len(data) < HeaderWords*4 {
		return nil, errors.MalformedStream(errors.PhaseDecode, "stream is shorter than the module header")
	}
	words, err := binary.MagicWords(data, Magic)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindMalformedStream, err, "cannot read module words")
	}
	return DecodeWords(words, opts)
}

// DecodeValidate decodes a module and validates every type entry.
func DecodeValidate(data []byte, opts Options) (*Module, error) {
	m, err := Decode(data, opts)
	if err != nil {
		return m, err
	}
	return m, m.Validate()
}

// DecodeWords is Decode over a stream already split into native-order words.
func DecodeWords(words []uint32, opts Options) (*Module, error) {
	r := binary.NewReader(words)
	hdr, err := r.ReadWords(HeaderWords)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindMalformedStream,
			r.WrapError("header", err), "stream is shorter than the module header")
	}
	if hdr[0] != Magic {
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedStream).
			Value(hdr[0]).Detail("bad magic number 0x%08x", hdr[0]).Build()
	}

	m := NewModule(opts)
	m.Version = hdr[1]
	m.Generator = hdr[2]
	m.Schema = hdr[4]
	m.log.Debug("decoding module",
		zap.Int("words", len(words)),
		zap.String("version", versionString(m.Version)),
		zap.Uint32("bound", hdr[3]))

	d := &decoder{m: m, bound: ID(hdr[3])}
	var errs []error
	for r.Remaining() > 0 {
		pos := r.Position()
		first, _ := r.ReadWord()
		wc := uint16(first >> 16)
		op := Op(first & 0xffff)
		if wc == 0 {
			return nil, errors.New(errors.PhaseDecode, errors.KindMalformedStream).
				Path(atWord(pos)).Op(op.String()).Detail("word count is zero").Build()
		}
		sub, err := r.Sub(int(wc) - 1)
		if err != nil {
			return nil, errors.New(errors.PhaseDecode, errors.KindMalformedStream).
				Path(atWord(pos)).Op(op.String()).Cause(r.WrapError(op.String(), err)).
				Detail("word count %d overruns the stream", wc).Build()
		}
		if err := d.instruction(op, wc, sub); err != nil {
			m.log.Warn("entry decode failed", zapOp(op), zap.Int("word", pos), zap.Error(err))
			errs = append(errs, locate(err, pos))
			continue
		}
		if n := sub.Remaining(); n != 0 {
			errs = append(errs, errors.New(errors.PhaseDecode, errors.KindMalformedStream).
				Path(atWord(pos)).Op(op.String()).
				Detail("%d of %d declared words were not consumed", n, wc).Build())
		}
	}
	d.finish()

	if bound := ID(hdr[3]); bound < m.bound {
		errs = append(errs, errors.InvalidField(errors.PhaseDecode, "", 0, "bound", bound,
			"header bound is not greater than every id in use"))
	} else {
		m.bound = bound
	}
	return m, errors.Join(errs...)
}

func atWord(pos int) string {
	return "word " + strconv.Itoa(pos)
}

// locate prefixes the error path with the stream position of the entry.
func locate(err error, pos int) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		e.Path = append([]string{atWord(pos)}, e.Path...)
		return e
	}
	return errors.Wrap(errors.PhaseDecode, errors.KindMalformedStream, err, atWord(pos))
}

func versionString(v uint32) string {
	return strconv.Itoa(int(v>>16&0xff)) + "." + strconv.Itoa(int(v>>8&0xff))
}

// decoder carries the late-bound state of one decode pass.
type decoder struct {
	m      *Module
	names  []pendingName
	packed []ID
	bound  ID
}

type pendingName struct {
	name string
	id   ID
}

func (d *decoder) instruction(op Op, wc uint16, r *binary.Reader) error {
	f := &fields{r: r, op: op}
	switch {
	case op == OpCapability:
		c := Capability(f.word())
		if f.err == nil {
			d.m.AddCapability(c)
		}
		return f.err
	case op == OpExtension:
		ext := f.str()
		if f.err == nil {
			d.m.AddExtension(ext)
		}
		return f.err
	case op == OpName:
		id := f.id()
		name := f.str()
		if f.err == nil {
			d.names = append(d.names, pendingName{id: id, name: name})
		}
		return f.err
	case op == OpDecorate && wc == 3:
		target, dec := f.id(), Decoration(f.word())
		if f.err != nil {
			return f.err
		}
		if dec == DecorationCPacked {
			d.packed = append(d.packed, target)
		} else {
			d.m.AddInstruction(op, uint32(target), uint32(dec))
		}
		return nil
	case op == OpTypeForwardPointer:
		return d.forwardPointer(f)
	case op.IsTypeDeclaration():
		return d.typeEntry(op, wc, f)
	case op.IsConstant():
		return d.constant(op, wc, f)
	}
	operands, _ := r.ReadWords(r.Remaining())
	if id, ok := resultOf(op, operands); ok {
		if err := d.claim(op, id); err != nil {
			return err
		}
		if _, taken := d.m.Lookup(id); taken {
			return errors.DuplicateID(errors.PhaseDecode, op.String(), uint32(id))
		}
	}
	d.m.AddInstruction(op, operands...)
	return nil
}

// claim checks a result id read from the stream against the header bound
// before any entry is stored under it.
func (d *decoder) claim(op Op, id ID) error {
	if err := checkID(errors.PhaseDecode, op, id); err != nil {
		return err
	}
	if id >= d.bound {
		return errors.InvalidField(errors.PhaseDecode, op.String(), uint32(id), "id", uint32(id),
			"result id is not below the header bound "+strconv.FormatUint(uint64(d.bound), 10))
	}
	return nil
}

func (d *decoder) forwardPointer(f *fields) error {
	id := f.id()
	sc := StorageClass(f.word())
	if f.err != nil {
		return f.err
	}
	if !sc.IsValid() {
		return errors.InvalidEnum(errors.PhaseDecode, f.op.String(), "storage_class", uint32(sc), "StorageClass")
	}
	if err := d.claim(f.op, id); err != nil {
		return err
	}
	if e, ok := d.m.Lookup(id); ok {
		if t, isType := e.(*Type); !isType || t.op != OpTypePointer || t.complete {
			return errors.DuplicateID(errors.PhaseDecode, f.op.String(), uint32(id))
		}
	}
	d.m.declareForward(id, sc)
	d.m.body = append(d.m.body, &ForwardPointer{pointer: id, storageClass: sc})
	return nil
}

func (d *decoder) typeEntry(op Op, wc uint16, f *fields) error {
	id := f.id()
	if f.err != nil {
		return f.err
	}
	if err := d.claim(op, id); err != nil {
		return err
	}
	t, err := d.m.Register(id, op)
	if err != nil {
		return err
	}
	if err := t.setWordCount(wc); err != nil {
		return err
	}
	if err := t.decode(f); err != nil {
		return err
	}
	t.complete = true
	d.m.log.Debug("decoded type", zapOp(op), zapID(id))
	return t.checkFields()
}

// constantWordCounts gives the smallest and largest word count of each
// constant opcode, header word included. A largest count of 0 means unbounded.
var constantWordCounts = map[Op][2]uint16{
	OpConstantTrue:          {3, 3},
	OpConstantFalse:         {3, 3},
	OpConstantNull:          {3, 3},
	OpSpecConstantTrue:      {3, 3},
	OpSpecConstantFalse:     {3, 3},
	OpConstant:              {4, 0},
	OpSpecConstant:          {4, 0},
	OpSpecConstantOp:        {4, 0},
	OpConstantComposite:     {3, 0},
	OpSpecConstantComposite: {3, 0},
}

func (d *decoder) constant(op Op, wc uint16, f *fields) error {
	limits := constantWordCounts[op]
	if wc < limits[0] {
		return errors.New(errors.PhaseDecode, errors.KindMalformedStream).
			Op(op.String()).Value(wc).
			Detail("word count %d is below the minimum of %d", wc, limits[0]).Build()
	}
	if limits[1] != 0 && wc > limits[1] {
		return errors.New(errors.PhaseDecode, errors.KindMalformedStream).
			Op(op.String()).Value(wc).
			Detail("word count %d exceeds the maximum of %d", wc, limits[1]).Build()
	}
	resultType, id := f.id(), f.id()
	if f.err != nil {
		return f.err
	}
	if err := d.claim(op, id); err != nil {
		return err
	}
	if _, ok := d.m.Lookup(id); ok {
		return errors.DuplicateID(errors.PhaseDecode, op.String(), uint32(id))
	}
	value, _ := f.r.ReadWords(f.r.Remaining())
	c := &Constant{id: id, op: op, resultType: resultType, value: value}
	d.m.set(id, c)
	d.m.body = append(d.m.body, c)
	return nil
}

// finish applies the late-bound names and decorations.
func (d *decoder) finish() {
	for _, n := range d.names {
		// Decoded strings are valid UTF-8 and end at the first NUL.
		_ = d.m.SetName(n.id, n.name)
	}
	for _, id := range d.packed {
		if t := d.m.typeOf(id); t != nil && t.IsStruct() {
			_ = t.SetPacked(true)
			continue
		}
		d.m.AddInstruction(OpDecorate, uint32(id), uint32(DecorationCPacked))
	}
}

// fields reads operands of one entry and keeps the first error.
type fields struct {
	r   *binary.Reader
	err error
	op  Op
}

func (f *fields) word() uint32 {
	if f.err != nil {
		return 0
	}
	w, err := f.r.ReadWord()
	if err != nil {
		f.fail(err)
	}
	return w
}

func (f *fields) id() ID {
	return ID(f.word())
}

func (f *fields) str() string {
	if f.err != nil {
		return ""
	}
	s, err := f.r.ReadString()
	if err != nil {
		f.fail(err)
	}
	return s
}

func (f *fields) fail(err error) {
	detail := f.op.String() + " ends before all operands are read"
	if !stderrors.Is(err, io.ErrUnexpectedEOF) {
		detail = f.op.String() + " has a malformed operand"
	}
	var pe *binary.ParseError
	if !stderrors.As(err, &pe) {
		err = f.r.WrapError(f.op.String(), err)
	}
	f.err = errors.Wrap(errors.PhaseDecode, errors.KindMalformedStream, err, detail)
}

// decode reads the payload fields in the order the binary layout defines.
// The result id has already been read and the word count applied.
func (t *Type) decode(f *fields) error {
	op := t.op.String()
	switch p := t.payload.(type) {
	case *intType:
		p.width = f.word()
		s := f.word()
		if f.err == nil && s > 1 {
			return errors.InvalidField(errors.PhaseDecode, op, uint32(t.id), "signedness", s, "signedness must be 0 or 1")
		}
		p.signed = s == 1
	case *floatType:
		p.width = f.word()
	case *vectorType:
		p.component = f.id()
		p.count = f.word()
	case *matrixType:
		p.column = f.id()
		p.count = f.word()
	case *arrayType:
		p.element = f.id()
		p.length = f.id()
	case *runtimeArrayType:
		p.element = f.id()
	case *pointerType:
		sc := StorageClass(f.word())
		if f.err == nil && !sc.IsValid() {
			return errors.InvalidEnum(errors.PhaseDecode, op, "storage_class", uint32(sc), "StorageClass")
		}
		if fwd, ok := t.mod.forward[t.id]; ok && fwd != sc {
			return errors.InvalidField(errors.PhaseDecode, op, uint32(t.id), "storage_class", sc,
				"storage class differs from forward declaration "+fwd.String())
		}
		p.storageClass = sc
		p.element = f.id()
	case *structType:
		for i := range p.members {
			p.members[i] = f.id()
		}
	case *functionType:
		p.ret = f.id()
		for i := range p.params {
			p.params[i] = f.id()
		}
	case *opaqueType:
		p.name = f.str()
	case *imageType:
		return t.decodeImage(p, f)
	case *sampledImageType:
		p.image = f.id()
	case *pipeType:
		a := AccessQualifier(f.word())
		if f.err == nil && !a.IsValid() {
			return errors.InvalidEnum(errors.PhaseDecode, op, "access", uint32(a), "AccessQualifier")
		}
		p.access = a
	}
	return f.err
}

func (t *Type) decodeImage(p *imageType, f *fields) error {
	op := t.op.String()
	p.sampled = f.id()
	p.desc.Dim = Dim(f.word())
	p.desc.Depth = f.word()
	p.desc.Arrayed = f.word()
	p.desc.MS = f.word()
	p.desc.Sampled = f.word()
	p.desc.Format = ImageFormat(f.word())
	for i := range p.access {
		p.access[i] = AccessQualifier(f.word())
	}
	if f.err != nil {
		return f.err
	}
	if !p.desc.Dim.IsValid() {
		return errors.InvalidEnum(errors.PhaseDecode, op, "dim", uint32(p.desc.Dim), "Dim")
	}
	if !p.desc.Format.IsValid() {
		return errors.InvalidEnum(errors.PhaseDecode, op, "format", uint32(p.desc.Format), "ImageFormat")
	}
	for _, a := range p.access {
		if !a.IsValid() {
			return errors.InvalidEnum(errors.PhaseDecode, op, "access", uint32(a), "AccessQualifier")
		}
	}
	return nil
}
