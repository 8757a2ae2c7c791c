package nanotpl

// UndefinedPolicy decides what happens when an Undefined value reaches one
// of the three points spec.md §4.4 names: RENDER (stringify), ITER_INIT
// (iterate), and truthiness tests. Truthiness is always false regardless
// of policy (spec.md §4.4); the policy only governs Stringify and Iterate.
//
// Grounded on micro_liquid/_undefined.py: Undefined.__bool__ is always
// False, __iter__ always yields nothing, and __str__ returns "" unless a
// stricter subclass (StrictUndefined) overrides it to raise.
type UndefinedPolicy interface {
	// Stringify is consulted by RENDER. It returns the rendered text for
	// an Undefined value, or an error (surfaced to the caller as
	// *UndefinedVariableError) if the policy is strict.
	Stringify(v Value) (string, error)

	// Iterate is consulted by ITER_INIT when the popped value is
	// Undefined. Returning (nil, nil) yields an empty iteration, which is
	// the mechanism {% for ... else %} uses to fire on non-iterables
	// (spec.md §4.4).
	Iterate(v Value) ([]Value, error)
}

// permissiveUndefined is the default policy: undefined values render as
// the empty string and iterate as empty, never raising.
type permissiveUndefined struct{}

func (permissiveUndefined) Stringify(Value) (string, error) { return "", nil }
func (permissiveUndefined) Iterate(Value) ([]Value, error)  { return nil, nil }

// PermissiveUndefined is the package's default UndefinedPolicy.
var PermissiveUndefined UndefinedPolicy = permissiveUndefined{}

// strictUndefined raises UndefinedVariableError as soon as an Undefined
// value is stringified.
type strictUndefined struct{}

func (strictUndefined) Stringify(v Value) (string, error) {
	start, stop := v.UndefinedSpan()
	return "", &UndefinedVariableError{Name: v.UndefinedName(), SourceIndexStart: start, SourceIndexStop: stop}
}

func (strictUndefined) Iterate(Value) ([]Value, error) { return nil, nil }

// StrictUndefined raises on stringify but still iterates as empty and is
// still falsy, matching spec.md §7's description of the strict policy.
var StrictUndefined UndefinedPolicy = strictUndefined{}

// CustomUndefined builds an UndefinedPolicy from two closures, for callers
// that need something between Permissive and Strict (spec.md §9's
// "Custom(user_stringify, user_iter)" design note).
func CustomUndefined(stringify func(Value) (string, error), iterate func(Value) ([]Value, error)) UndefinedPolicy {
	return &customUndefined{stringify: stringify, iterate: iterate}
}

type customUndefined struct {
	stringify func(Value) (string, error)
	iterate   func(Value) ([]Value, error)
}

func (c *customUndefined) Stringify(v Value) (string, error) { return c.stringify(v) }
func (c *customUndefined) Iterate(v Value) ([]Value, error)  { return c.iterate(v) }
