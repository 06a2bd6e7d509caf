// Package spvasm provides a SPIR-V assembly text format for the type layer.
//
// Assemble compiles text into a binary module, and Disassemble renders a
// module back into text that Assemble accepts. The format follows the usual
// SPIR-V assembly conventions, one instruction per line:
//
//	OpCapability Kernel
//	OpMemoryModel Physical32 OpenCL
//	OpName %node "node"
//	%int   = OpTypeInt 32 1
//	%four  = OpConstant %int 4
//	%arr   = OpTypeArray %int %four
//	         OpTypeForwardPointer %pnode CrossWorkgroup
//	%node  = OpTypeStruct %int %pnode
//	%pnode = OpTypePointer CrossWorkgroup %node
//
// Supported syntax:
//   - Result ids as %name or %N. Named ids are numbered in order of first
//     appearance, skipping every id written literally in the source.
//   - Enumerant operands by name (CrossWorkgroup, 2D, Rgba32f) or number
//   - Literal strings with \" and \\ escapes
//   - Constant values sized by their result type: signed and hex integers,
//     decimal floats for 32 and 64 bits, raw 0x bits for any float width
//   - Opcodes without a known operand layout written as OpN, for example
//     Op59, taking bare ids and numbers as words
//   - Comments from ; to end of line
//
// Disassembly prints ids by number. Names survive as OpName instructions.
package spvasm
