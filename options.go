package nanotpl

import "github.com/juju/loggo"

var logger = loggo.GetLogger("nanotpl")

// SetDebug toggles package-wide debug logging, mirroring the teacher's
// global logging switch. It affects every Template/CompiledTemplate in the
// process; there is no per-instance override.
func SetDebug(on bool) {
	if on {
		logger.SetLogLevel(loggo.DEBUG)
	} else {
		logger.SetLogLevel(loggo.WARNING)
	}
}

// renderConfig holds the per-call settings an Option can override.
type renderConfig struct {
	serializer Serializer
	policy     UndefinedPolicy
}

func defaultRenderConfig() renderConfig {
	return renderConfig{serializer: DefaultSerializer, policy: PermissiveUndefined}
}

// Option configures a single Render/CompiledTemplate.Render call. Unlike
// SetDebug, Options never affect any other call.
type Option func(*renderConfig)

// WithSerializer overrides how non-Undefined values are stringified at
// RENDER.
func WithSerializer(s Serializer) Option {
	return func(c *renderConfig) { c.serializer = s }
}

// WithUndefinedPolicy overrides how Undefined values are stringified or
// iterated.
func WithUndefinedPolicy(p UndefinedPolicy) Option {
	return func(c *renderConfig) { c.policy = p }
}
