// Package spirvtypes provides a Go implementation of the SPIR-V type layer.
//
// This library represents every SPIR-V type declaration as an entry in a
// module arena, decodes and encodes them losslessly from the binary format,
// validates their shape rules and derives the capabilities an execution
// target must declare to accept them.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	spirvtypes/          Root package with the TypeQuery and Resolver interfaces
//	├── spirv/           Type entries, module arena, decode/encode, validation, capabilities
//	├── spvasm/          SPIR-V assembly text to binary and back
//	├── errors/          Structured error types for debugging
//	├── internal/binary/ Word reader and writer shared by the codecs
//	└── cmd/spvtypes/    Command line inspector with an interactive browser
//
// # Quick Start
//
// Decode a module and ask what it needs:
//
//	m, err := spirv.DecodeValidate(data, spirv.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, t := range m.Types() {
//	    fmt.Println(t, t.IsVectorOrScalarFloat(16))
//	}
//	fmt.Println(m.MissingCapabilities())
//
// Build types directly:
//
//	m := spirv.NewModule(spirv.DefaultOptions())
//	f32, _ := m.AddTypeFloat(32)
//	vec4, _ := m.AddTypeVector(f32.ID(), 4)
//	ptr, _ := m.AddTypePointer(spirv.StorageClassCrossWorkgroup, vec4.ID())
//
// # Recursive Types
//
// Types that refer to themselves go through a forward pointer. The pointer id
// is reserved first, the struct uses it as a member, and CompletePointer fills
// in the element afterwards:
//
//	fp, _ := m.AddForwardPointer(spirv.StorageClassCrossWorkgroup)
//	node, _ := m.AddTypeStruct("node", i32.ID(), fp.ID())
//	m.CompletePointer(fp.ID(), node.ID())
//
// # Thread Safety
//
// A Module is not safe for concurrent mutation. Once built or decoded, its
// queries, predicates and capability derivation may run from any number of
// goroutines.
package spirvtypes
