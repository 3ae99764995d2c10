package observability

import (
	"log/slog"

	"github.com/aretw0/propschema"
)

// LogHooks returns hooks that log every validator call at debug level, and
// failed default or transform calls at warn level.
func LogHooks(logger *slog.Logger) propschema.Hooks {
	log := func(e *propschema.Event) {
		attrs := []any{
			"operation", e.Operation,
			"resource_type", e.ResourceType,
			"version", e.Version,
			"duration", e.Duration,
		}
		switch {
		case e.Operation == propschema.OpValidate:
			logger.Debug("validate", append(attrs, "valid", e.Valid, "errors", e.Errors, "warnings", e.Warnings)...)
		case e.Err != nil:
			logger.Warn(string(e.Operation), append(attrs, "err", e.Err)...)
		default:
			logger.Debug(string(e.Operation), attrs...)
		}
	}
	return propschema.Hooks{OnValidate: log, OnDefaults: log, OnTransform: log}
}

// Chain combines hooks; each callback runs in argument order.
func Chain(hooks ...propschema.Hooks) propschema.Hooks {
	pick := func(get func(propschema.Hooks) func(*propschema.Event)) func(*propschema.Event) {
		var fns []func(*propschema.Event)
		for _, h := range hooks {
			if fn := get(h); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(e *propschema.Event) {
			for _, fn := range fns {
				fn(e)
			}
		}
	}
	return propschema.Hooks{
		OnValidate:  pick(func(h propschema.Hooks) func(*propschema.Event) { return h.OnValidate }),
		OnDefaults:  pick(func(h propschema.Hooks) func(*propschema.Event) { return h.OnDefaults }),
		OnTransform: pick(func(h propschema.Hooks) func(*propschema.Event) { return h.OnTransform }),
	}
}
