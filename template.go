package nanotpl

import "github.com/google/uuid"

// Template is a parsed-but-not-yet-compiled template, styled after the
// teacher's own two-stage Template/tset split: tokenize+parse happen once
// at construction, compile+execute happen per call.
type Template struct {
	nodes []Node
}

// FromString tokenizes and parses source into a Template. Syntax errors
// surface here as *TemplateSyntaxError.
func FromString(source string) (*Template, error) {
	nodes, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return &Template{nodes: nodes}, nil
}

// Render compiles the template and executes it against binding in one
// call. Prefer CompiledTemplate when the same template is rendered
// repeatedly: compiling is pure work that doesn't depend on the Binding.
func (t *Template) Render(binding Binding, opts ...Option) (string, error) {
	compiled, err := t.Compile()
	if err != nil {
		return "", err
	}
	return compiled.Render(binding, opts...)
}

// Compile lowers the template's AST into a Program.
func (t *Template) Compile() (*CompiledTemplate, error) {
	program, err := Compile(t.nodes)
	if err != nil {
		return nil, err
	}
	return &CompiledTemplate{program: program, revision: uuid.NewString()}, nil
}

// CompiledTemplate wraps an immutable Program. It's the type to keep
// around and reuse across many Render calls and goroutines (spec.md §5).
type CompiledTemplate struct {
	program  *Program
	revision string
}

func (c *CompiledTemplate) Render(binding Binding, opts ...Option) (string, error) {
	return c.program.Render(binding, opts...)
}

func (c *CompiledTemplate) Disassemble() string {
	return c.program.Disassemble()
}

// Revision identifies this particular compilation. It changes on every
// call to Compile, even for byte-identical source, so a Watcher consumer
// can tell two CompiledTemplate values apart without comparing programs.
func (c *CompiledTemplate) Revision() string {
	return c.revision
}

// Must panics if err is non-nil, for package-level initialization of
// templates known at compile time to be valid (mirroring the teacher's
// Must helper).
func Must(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}
	return t
}

// Render tokenizes, parses, compiles, and executes source against binding
// in a single call — the library's simplest entry point.
func Render(source string, binding Binding, opts ...Option) (string, error) {
	tpl, err := FromString(source)
	if err != nil {
		return "", err
	}
	return tpl.Render(binding, opts...)
}
