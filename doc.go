package pardump

// Package pardump decodes reflection schema dumps of the engine's
// parser metadata ("par" structures) and models them as Go values.
//
// - A Dump holds Structures and Enums, each named by a Name (hash plus the
//   original string when it was recovered)
// - Member is a closed union: one concrete *XxxMember type per MemberClass
// - Decoding is strict. The first problem aborts with Issues carrying a JSON
//   Pointer and a stable code
//
// Rendering lives in the render subpackage:
//
//  d, err := pardump.DecodeDump(ctx, pardump.JSONBytes(data))
//  err = render.Text(os.Stdout, d)
//  err = render.HTML(f, d)
//
// Inputs may also be YAML (YAMLBytes) or an already decoded tree
// (ValueSource, DecodeDumpValue).
