package spvasm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/spirv-types/errors"
	"github.com/wippyai/spirv-types/internal/binary"
	"github.com/wippyai/spirv-types/spirv"
	"github.com/wippyai/spirv-types/spvasm/internal/token"
)

// Assemble translates assembly text into a little-endian SPIR-V binary.
func Assemble(src string) ([]byte, error) {
	words, err := AssembleWords(src)
	if err != nil {
		return nil, err
	}
	w := binary.NewWriter()
	w.WriteWords(words)
	return w.Bytes(), nil
}

// AssembleWords is Assemble returning the module as native words.
func AssembleWords(src string) ([]uint32, error) {
	hdr, err := readHeader(src)
	if err != nil {
		return nil, err
	}
	tokens, err := token.Tokenize(src)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseAssemble, errors.KindInvalidInput, err, "tokenize")
	}
	p, err := newParser(tokens)
	if err != nil {
		return nil, err
	}
	p.header = hdr
	return p.parse()
}

// AssembleModule assembles src and decodes the result into a validated module.
func AssembleModule(src string, opts spirv.Options) (*spirv.Module, error) {
	words, err := AssembleWords(src)
	if err != nil {
		return nil, err
	}
	m, err := spirv.DecodeWords(words, opts)
	if err != nil {
		return m, err
	}
	return m, m.Validate()
}

// header holds the header words declared by the comment lines that precede
// the first instruction, in the "; Key: value" form DisassembleWords writes.
// A declared bound below the largest id in use is ignored.
type header struct {
	version   uint32
	generator uint32
	bound     uint32
	schema    uint32
}

func readHeader(src string) (header, error) {
	h := header{version: spirv.Version1_0}
	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		text, ok := strings.CutPrefix(line, ";")
		if !ok {
			break
		}
		key, value, ok := strings.Cut(text, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		var err error
		switch key {
		case "Version":
			h.version, err = parseVersion(value)
		case "Generator":
			h.generator, err = parseHeaderWord(value)
		case "Bound":
			h.bound, err = parseHeaderWord(value)
		case "Schema":
			h.schema, err = parseHeaderWord(value)
		}
		if err != nil {
			return h, errors.ParseFailed(i+1, fmt.Sprintf("invalid %s %q", key, value))
		}
	}
	return h, nil
}

// parseVersion reads a "major.minor" version into its header word.
func parseVersion(s string) (uint32, error) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return 0, fmt.Errorf("version %q has no minor number", s)
	}
	hi, err := strconv.ParseUint(major, 10, 8)
	if err != nil {
		return 0, err
	}
	lo, err := strconv.ParseUint(minor, 10, 8)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo)<<8, nil
}

func parseHeaderWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}

// scalar is the numeric shape of a type id, used to size constant values.
type scalar struct {
	width  uint32
	float  bool
	signed bool
}

type parser struct {
	ids      map[string]uint32
	reserved map[uint32]bool
	scalars  map[uint32]scalar
	tokens   []token.Token
	out      []uint32
	header   header
	pos      int
	next     uint32
	bound    uint32
}

func newParser(tokens []token.Token) (*parser, error) {
	p := &parser{
		tokens:   tokens,
		ids:      make(map[string]uint32),
		reserved: make(map[uint32]bool),
		scalars:  make(map[uint32]scalar),
		next:     1,
	}
	for _, t := range tokens {
		if t.Type != token.ID || !isDecimal(t.Value) {
			continue
		}
		n, err := strconv.ParseUint(t.Value, 10, 32)
		if err != nil || n == 0 || n == math.MaxUint32 {
			return nil, errors.ParseFailed(t.Line, fmt.Sprintf("invalid id %%%s", t.Value))
		}
		p.reserved[uint32(n)] = true
	}
	return p, nil
}

func isDecimal(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (p *parser) parse() ([]uint32, error) {
	p.out = []uint32{spirv.Magic, p.header.version, p.header.generator, 0, p.header.schema}
	for p.peek() != nil {
		if err := p.instruction(); err != nil {
			return nil, err
		}
	}
	p.out[3] = max(p.bound+1, p.header.bound)
	return p.out, nil
}

func (p *parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) peekAt(n int) *token.Token {
	if p.pos+n >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos+n]
}

func (p *parser) nextToken() *token.Token {
	t := p.peek()
	if t != nil {
		p.pos++
	}
	return t
}

func (p *parser) expect(typ token.Type, line int) (*token.Token, error) {
	t := p.nextToken()
	if t == nil || (t.Type == token.Newline && typ != token.Newline) {
		return nil, errors.ParseFailed(line, fmt.Sprintf("expected %v, got end of line", typ))
	}
	if t.Type != typ {
		return nil, errors.ParseFailed(t.Line, fmt.Sprintf("expected %v, got %q", typ, t.Value))
	}
	return t, nil
}

// id returns the numeric id for an id token, numbering named ids in order of
// first appearance and skipping ids written literally anywhere in the source.
func (p *parser) id(t *token.Token) uint32 {
	var n uint32
	if isDecimal(t.Value) {
		v, _ := strconv.ParseUint(t.Value, 10, 32)
		n = uint32(v)
	} else if v, ok := p.ids[t.Value]; ok {
		n = v
	} else {
		for p.reserved[p.next] {
			p.next++
		}
		n = p.next
		p.ids[t.Value] = n
		p.next++
	}
	p.bound = max(p.bound, n)
	return n
}

func (p *parser) instruction() error {
	line := p.peek().Line
	var res *token.Token
	if t, eq := p.peek(), p.peekAt(1); t.Type == token.ID && eq != nil && eq.Type == token.Assign {
		res = t
		p.pos += 2
	}

	name, err := p.expect(token.Ident, line)
	if err != nil {
		return err
	}
	op, ok := spirv.ParseOp(name.Value)
	if !ok {
		return errors.ParseFailed(line, fmt.Sprintf("unknown opcode %q", name.Value))
	}
	s := shapeOf(op)
	switch {
	case res != nil && !s.result:
		return errors.ParseFailed(line, op.String()+" has no result id")
	case res == nil && s.result:
		return errors.ParseFailed(line, op.String()+" requires a result id")
	}

	var resID uint32
	if res != nil {
		resID = p.id(res)
	}
	start := len(p.out)
	p.out = append(p.out, 0)
	if s.typed {
		t, err := p.expect(token.ID, line)
		if err != nil {
			return err
		}
		p.out = append(p.out, p.id(t))
	}
	if res != nil {
		p.out = append(p.out, resID)
	}
	for _, k := range s.fixed {
		if err := p.operand(k, start, line); err != nil {
			return err
		}
	}
	for n := 0; s.tailMax < 0 || n < s.tailMax; n++ {
		if t := p.peek(); t == nil || t.Type == token.Newline {
			break
		}
		if err := p.operand(s.tail, start, line); err != nil {
			return err
		}
	}
	if t := p.nextToken(); t != nil && t.Type != token.Newline {
		return errors.ParseFailed(line, fmt.Sprintf("unexpected operand %q", t.Value))
	}

	wc := len(p.out) - start
	if wc > math.MaxUint16 {
		return errors.ParseFailed(line, fmt.Sprintf("%s has %d words", op, wc))
	}
	p.out[start] = uint32(wc)<<16 | uint32(op)
	p.record(op, p.out[start:])
	return nil
}

func (p *parser) operand(k kind, start, line int) error {
	switch k {
	case kindID:
		t, err := p.expect(token.ID, line)
		if err != nil {
			return err
		}
		p.out = append(p.out, p.id(t))
	case kindLiteral:
		t, err := p.expect(token.Number, line)
		if err != nil {
			return err
		}
		v, err := literal(t.Value)
		if err != nil {
			return errors.ParseFailed(t.Line, err.Error())
		}
		p.out = append(p.out, v)
	case kindString:
		t, err := p.expect(token.String, line)
		if err != nil {
			return err
		}
		p.out = append(p.out, stringWords(t.Value)...)
	case kindRaw:
		t := p.nextToken()
		switch {
		case t.Type == token.ID:
			p.out = append(p.out, p.id(t))
		case t.Type == token.Number:
			v, err := literal(t.Value)
			if err != nil {
				return errors.ParseFailed(t.Line, err.Error())
			}
			p.out = append(p.out, v)
		default:
			return errors.ParseFailed(t.Line, fmt.Sprintf("expected id or number, got %q", t.Value))
		}
	case kindValue:
		t, err := p.expect(token.Number, line)
		if err != nil {
			return err
		}
		rt := p.out[start+1]
		sc, ok := p.scalars[rt]
		if !ok {
			return errors.ParseFailed(t.Line, fmt.Sprintf("result type %%%d is not a scalar numeric type", rt))
		}
		ws, err := constantWords(t.Value, sc)
		if err != nil {
			return errors.ParseFailed(t.Line, err.Error())
		}
		p.out = append(p.out, ws...)
	default:
		t := p.nextToken()
		if t == nil || (t.Type != token.Ident && t.Type != token.Number) {
			return errors.ParseFailed(line, "expected enumerant")
		}
		e := enumKinds[k]
		if v, ok := e.parse(t.Value); ok {
			p.out = append(p.out, v)
			return nil
		}
		v, err := strconv.ParseUint(t.Value, 0, 32)
		if err != nil {
			return errors.ParseFailed(t.Line, fmt.Sprintf("unknown enumerant %q", t.Value))
		}
		p.out = append(p.out, uint32(v))
	}
	return nil
}

// record remembers the numeric shape of scalar type declarations.
func (p *parser) record(op spirv.Op, words []uint32) {
	switch op {
	case spirv.OpTypeInt:
		p.scalars[words[1]] = scalar{width: words[2], signed: words[3] == 1}
	case spirv.OpTypeFloat:
		p.scalars[words[1]] = scalar{width: words[2], float: true}
	}
}

func literal(s string) (uint32, error) {
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid literal %q", s)
		}
		return uint32(int32(v)), nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid literal %q", s)
	}
	return uint32(v), nil
}

// constantWords encodes a constant value for a scalar type. Float values
// written in hex are taken as raw bit patterns, which is also the only form
// accepted for widths other than 32 and 64.
func constantWords(s string, sc scalar) ([]uint32, error) {
	var bits uint64
	raw := strings.HasPrefix(strings.TrimLeft(s, "+-"), "0x")
	switch {
	case sc.float && !raw:
		if sc.width != 32 && sc.width != 64 {
			return nil, fmt.Errorf("%d-bit float constants must be written as hex bits", sc.width)
		}
		f, err := strconv.ParseFloat(s, int(sc.width))
		if err != nil {
			return nil, fmt.Errorf("invalid float literal %q", s)
		}
		if sc.width == 32 {
			bits = uint64(math.Float32bits(float32(f)))
		} else {
			bits = math.Float64bits(f)
		}
	case strings.HasPrefix(s, "-"):
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil || (sc.width < 64 && v < -(1<<(sc.width-1))) {
			return nil, fmt.Errorf("literal %q does not fit in %d bits", s, sc.width)
		}
		bits = uint64(v)
	default:
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil || (sc.width < 64 && v>>sc.width != 0) {
			return nil, fmt.Errorf("literal %q does not fit in %d bits", s, sc.width)
		}
		bits = v
	}

	if sc.width > 32 {
		return []uint32{uint32(bits), uint32(bits >> 32)}, nil
	}
	if sc.width < 32 {
		bits &= 1<<sc.width - 1
		if sc.signed && bits>>(sc.width-1) != 0 {
			bits |= math.MaxUint32 &^ (1<<sc.width - 1)
		}
	}
	return []uint32{uint32(bits)}, nil
}

// stringWords packs a literal string the way the binary writer does.
func stringWords(s string) []uint32 {
	w := binary.NewWriter()
	w.String(s)
	return w.Words()
}
