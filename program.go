package nanotpl

// Program is the immutable output of Compile: a linear instruction stream
// plus its deduplicated constant pool (spec.md §4.3, §5). A Program has no
// mutable state and is safe to render concurrently from any number of
// goroutines; each Render call owns its own vmState.
type Program struct {
	Code      []byte
	Constants []Value
}

// Disassemble renders p.Code via the package-level Disassemble.
func (p *Program) Disassemble() string {
	return Disassemble(p.Code)
}

// Render executes the Program against binding, producing the rendered
// string. Each call gets its own vmState; the Program itself is never
// mutated (spec.md §5).
func (p *Program) Render(binding Binding, opts ...Option) (string, error) {
	cfg := defaultRenderConfig()
	for _, o := range opts {
		o(&cfg)
	}
	vm := &vmState{
		constants:  p.Constants,
		code:       p.Code,
		binding:    binding,
		policy:     cfg.policy,
		serializer: cfg.serializer,
	}
	logger.Debugf("rendering program: %d instruction bytes, %d constants", len(p.Code), len(p.Constants))
	return vm.run()
}
