// Package spirv models the type entries of a SPIR-V binary module.
//
// A Module is the entry table of one module: it allocates ids, stores every
// entry in an arena indexed by id and resolves ids to entries on demand.
// Type entries never point at each other directly. Every reference is an id,
// which is what lets a struct contain a pointer to itself.
//
// # Decoding
//
// Decode a module from its binary form:
//
//	data, _ := os.ReadFile("shader.spv")
//	module, err := spirv.Decode(data, spirv.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Decode with validation of every type:
//
//	module, err := spirv.DecodeValidate(data, spirv.DefaultOptions())
//
// Decoding continues past a malformed entry when the stream framing allows
// it; the returned module then holds everything that decoded cleanly and the
// error joins one failure per entry.
//
// # Building
//
// Types are built bottom-up. Each builder validates the new entry before it
// is registered:
//
//	m := spirv.NewModule(spirv.DefaultOptions())
//	f32, _ := m.AddTypeFloat(32)
//	vec4, _ := m.AddTypeVector(f32.ID(), 4)
//
// Recursive types start with a forward pointer:
//
//	fp, _ := m.AddForwardPointer(spirv.StorageClassCrossWorkgroup)
//	node, _ := m.AddTypeStruct("node", f32.ID(), fp.ID())
//	m.CompletePointer(fp.ID(), node.ID())
//
// # Queries
//
// Shape predicates take a bit width where it applies; 0 matches any width:
//
//	vec4.IsVectorOrScalarFloat(32) // true
//	vec4.IsVectorOrScalarInt(0)    // false
//
// RequiredCapabilities yields the capabilities a type needs. The sequence
// may repeat entries; Module.RequiredCapabilities returns the sorted set.
//
// # Concurrency
//
// Building and decoding mutate the module and must run on one goroutine.
// Once finished, queries and capability derivation are read-only and safe
// for concurrent use.
package spirv
