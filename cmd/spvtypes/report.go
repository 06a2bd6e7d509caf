package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	spirvtypes "github.com/wippyai/spirv-types"
	"github.com/wippyai/spirv-types/spirv"
	"github.com/wippyai/spirv-types/spvasm"
)

// source is a module file in binary or assembly form.
type source struct {
	path string
	asm  bool
}

// load reads and validates a module. A decoded module with invalid entries is
// returned together with the error so the caller can still report on it.
func load(src source, opts spirv.Options) (*spirv.Module, error) {
	data, err := os.ReadFile(src.path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if src.asm {
		return spvasm.AssembleModule(string(data), opts)
	}
	return spirv.DecodeValidate(data, opts)
}

// typeLine is the one-line listing of a type: id, opcode, operands and name.
func typeLine(m *spirv.Module, t *spirv.Type) string {
	var b strings.Builder
	b.WriteString(t.String())
	for _, id := range t.Operands() {
		b.WriteString(" %")
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	if name := m.Name(t.ID()); name != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(name))
	}
	return b.String()
}

func summary(w io.Writer, path string, m *spirv.Module) {
	fmt.Fprintf(w, "Module: %s\n", path)
	fmt.Fprintf(w, "Version: %d.%d\n", m.Version>>16&0xff, m.Version>>8&0xff)
	fmt.Fprintf(w, "Bound: %d\n", m.Bound())
	if exts := m.Extensions(); len(exts) > 0 {
		fmt.Fprintf(w, "Extensions: %s\n", strings.Join(exts, ", "))
	}

	types := m.Types()
	fmt.Fprintf(w, "\nTypes (%d):\n", len(types))
	for _, t := range types {
		fmt.Fprintf(w, "  %s\n", typeLine(m, t))
	}
}

// capabilityRow pairs a required capability with whether the module declares it.
type capabilityRow struct {
	capability spirv.Capability
	declared   bool
}

func capabilityRows(m *spirv.Module) []capabilityRow {
	declared := m.DeclaredCapabilities()
	var rows []capabilityRow
	for _, c := range m.RequiredCapabilities() {
		rows = append(rows, capabilityRow{capability: c, declared: slices.Contains(declared, c)})
	}
	return rows
}

// details lists everything the browser shows for one type.
func details(m *spirv.Module, q spirvtypes.TypeQuery) []string {
	lines := []string{
		"op: " + q.Op().String(),
		"words: " + strconv.Itoa(int(q.WordCount())),
		"complete: " + strconv.FormatBool(q.IsComplete()),
	}
	if name := m.Name(q.ID()); name != "" {
		lines = append(lines, "name: "+strconv.Quote(name))
	}
	if ops := q.Operands(); len(ops) > 0 {
		ids := make([]string, len(ops))
		for i, id := range ops {
			ids[i] = "%" + strconv.FormatUint(uint64(id), 10)
		}
		lines = append(lines, "operands: "+strings.Join(ids, " "))
	}
	if width, err := q.BitWidth(); err == nil {
		lines = append(lines, "width: "+strconv.FormatUint(uint64(width), 10))
	}

	var preds []string
	for _, p := range []struct {
		name string
		ok   bool
	}{
		{"scalar", q.IsScalar()},
		{"composite", q.IsComposite()},
		{"int", q.IsVectorOrScalarInt(0)},
		{"float", q.IsVectorOrScalarFloat(0)},
		{"bool", q.IsVectorOrScalarBool()},
	} {
		if p.ok {
			preds = append(preds, p.name)
		}
	}
	if len(preds) > 0 {
		lines = append(lines, "is: "+strings.Join(preds, ", "))
	}

	var caps []string
	for c := range q.RequiredCapabilities() {
		if s := c.String(); !slices.Contains(caps, s) {
			caps = append(caps, s)
		}
	}
	if len(caps) > 0 {
		slices.Sort(caps)
		lines = append(lines, "capabilities: "+strings.Join(caps, ", "))
	}

	if err := q.Validate(); err != nil {
		lines = append(lines, "invalid: "+err.Error())
	}
	return lines
}

// matchType reports whether a type passes the browser filter. The query
// matches an opcode or name substring, case-insensitively, or an id written
// as N or %N.
func matchType(m *spirv.Module, t *spirv.Type, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	if n, err := strconv.ParseUint(strings.TrimPrefix(query, "%"), 10, 32); err == nil {
		return spirv.ID(n) == t.ID()
	}
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Op().String()), query) ||
		strings.Contains(strings.ToLower(m.Name(t.ID())), query)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
