package nanotpl

import (
	"github.com/alecthomas/repr"
	"github.com/kr/pretty"
)

// DumpAST renders a parsed template's node tree in Go-literal-like form,
// for embedders debugging a template that isn't rendering the way they
// expect.
func DumpAST(nodes []Node) string {
	return repr.String(nodes, repr.Indent("  "))
}

// DumpProgram renders a compiled Program's constant pool alongside its
// disassembly.
func DumpProgram(p *Program) string {
	return repr.String(p.Constants, repr.Indent("  ")) + "\n" + p.Disassemble()
}

// DiffPrograms returns a human-readable diff between two compiled programs'
// constant pools, for bisecting why two source variants compiled
// differently than expected. Empty when the constants are equal.
func DiffPrograms(a, b *Program) string {
	diffs := pretty.Diff(a.Constants, b.Constants)
	if len(diffs) == 0 {
		return ""
	}
	out := ""
	for _, d := range diffs {
		out += d + "\n"
	}
	return out
}
