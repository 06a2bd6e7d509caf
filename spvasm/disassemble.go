package spvasm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/spirv-types/errors"
	"github.com/wippyai/spirv-types/internal/binary"
	"github.com/wippyai/spirv-types/spirv"
)

// Disassemble renders m as assembly text that Assemble accepts. Ids are
// printed by number and debug names appear as OpName instructions.
func Disassemble(m *spirv.Module) (string, error) {
	words, err := m.EncodeWords()
	if err != nil {
		return "", err
	}
	return DisassembleWords(words)
}

// DisassembleWords renders a native-order word stream.
func DisassembleWords(words []uint32) (string, error) {
	if len(words) < spirv.HeaderWords || words[0] != spirv.Magic {
		return "", errors.MalformedStream(errors.PhaseDecode, "missing module header")
	}
	var sb strings.Builder
	sb.WriteString("; SPIR-V\n")
	fmt.Fprintf(&sb, "; Version: %d.%d\n", words[1]>>16&0xff, words[1]>>8&0xff)
	fmt.Fprintf(&sb, "; Generator: 0x%08x\n", words[2])
	fmt.Fprintf(&sb, "; Bound: %d\n", words[3])
	fmt.Fprintf(&sb, "; Schema: %d\n", words[4])

	d := &disassembler{sb: &sb, scalars: make(map[uint32]scalar)}
	r := binary.NewReader(words[spirv.HeaderWords:])
	for r.Remaining() > 0 {
		pos := spirv.HeaderWords + r.Position()
		first, _ := r.ReadWord()
		wc, op := int(first>>16), spirv.Op(first&0xffff)
		if wc == 0 {
			return "", errors.New(errors.PhaseDecode, errors.KindMalformedStream).
				Path(atWord(pos)).Op(op.String()).Detail("word count is zero").Build()
		}
		sub, err := r.Sub(wc - 1)
		if err != nil {
			return "", errors.New(errors.PhaseDecode, errors.KindMalformedStream).
				Path(atWord(pos)).Op(op.String()).
				Detail("word count %d overruns the stream", wc).Build()
		}
		if err := d.instruction(op, sub); err != nil {
			return "", errors.New(errors.PhaseDecode, errors.KindMalformedStream).
				Path(atWord(pos)).Op(op.String()).Cause(err).Build()
		}
	}
	return sb.String(), nil
}

func atWord(pos int) string {
	return "word " + strconv.Itoa(pos)
}

type disassembler struct {
	sb      *strings.Builder
	scalars map[uint32]scalar
}

func (d *disassembler) instruction(op spirv.Op, r *binary.Reader) error {
	s := shapeOf(op)
	var ops []string
	var resultType, id uint32
	if s.typed {
		w, err := r.ReadWord()
		if err != nil {
			return err
		}
		resultType = w
		ops = append(ops, idString(w))
	}
	if s.result {
		w, err := r.ReadWord()
		if err != nil {
			return err
		}
		id = w
	}

	words := []uint32{0, id}
	for _, k := range s.fixed {
		text, ws, err := d.operand(k, r, resultType)
		if err != nil {
			return err
		}
		ops = append(ops, text)
		words = append(words, ws...)
	}
	for n := 0; r.Remaining() > 0 && (s.tailMax < 0 || n < s.tailMax); n++ {
		text, _, err := d.operand(s.tail, r, resultType)
		if err != nil {
			return err
		}
		ops = append(ops, text)
	}
	if r.Remaining() > 0 {
		return fmt.Errorf("%d trailing words", r.Remaining())
	}

	if s.result {
		fmt.Fprintf(d.sb, "%s = ", idString(id))
	}
	d.sb.WriteString(op.String())
	for _, o := range ops {
		d.sb.WriteByte(' ')
		d.sb.WriteString(o)
	}
	d.sb.WriteByte('\n')

	switch op {
	case spirv.OpTypeInt:
		d.scalars[id] = scalar{width: words[2], signed: words[3] == 1}
	case spirv.OpTypeFloat:
		d.scalars[id] = scalar{width: words[2], float: true}
	}
	return nil
}

// operand renders one operand and returns the words it consumed.
func (d *disassembler) operand(k kind, r *binary.Reader, resultType uint32) (string, []uint32, error) {
	if k == kindString {
		s, err := r.ReadString()
		if err != nil {
			return "", nil, err
		}
		return quote(s), nil, nil
	}
	if k == kindValue {
		sc, ok := d.scalars[resultType]
		if !ok {
			return "", nil, fmt.Errorf("constant result type %%%d is not a scalar numeric type", resultType)
		}
		n := 1
		if sc.width > 32 {
			n = 2
		}
		ws, err := r.ReadWords(n)
		if err != nil {
			return "", nil, err
		}
		return constantString(ws, sc), ws, nil
	}

	w, err := r.ReadWord()
	if err != nil {
		return "", nil, err
	}
	switch k {
	case kindID:
		return idString(w), []uint32{w}, nil
	case kindLiteral, kindRaw:
		return strconv.FormatUint(uint64(w), 10), []uint32{w}, nil
	}
	return enumKinds[k].format(w), []uint32{w}, nil
}

func idString(id uint32) string {
	return "%" + strconv.FormatUint(uint64(id), 10)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// constantString prints a constant value so that constantWords reproduces it.
// Floats without a decimal rendering that parses back exactly are printed as
// hex bits.
func constantString(ws []uint32, sc scalar) string {
	bits := uint64(ws[0])
	if len(ws) > 1 {
		bits |= uint64(ws[1]) << 32
	}
	if sc.float {
		switch sc.width {
		case 32:
			if f := math.Float32frombits(uint32(bits)); !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0) {
				return strconv.FormatFloat(float64(f), 'g', -1, 32)
			}
		case 64:
			if f := math.Float64frombits(bits); !math.IsNaN(f) && !math.IsInf(f, 0) {
				return strconv.FormatFloat(f, 'g', -1, 64)
			}
		}
		return "0x" + strconv.FormatUint(bits, 16)
	}
	if sc.width < 64 {
		bits &= 1<<sc.width - 1
		if sc.signed && sc.width > 0 && bits>>(sc.width-1) != 0 {
			return strconv.FormatInt(int64(bits)-1<<sc.width, 10)
		}
	}
	if sc.signed && sc.width == 64 {
		return strconv.FormatInt(int64(bits), 10)
	}
	return strconv.FormatUint(bits, 10)
}
