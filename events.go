package propschema

import "time"

// Operation names the validator call an Event describes.
type Operation string

const (
	OpValidate  Operation = "validate"
	OpDefaults  Operation = "defaults"
	OpTransform Operation = "transform"
)

// Event describes one completed validator call.
type Event struct {
	Timestamp     time.Time     `json:"timestamp"`
	Operation     Operation     `json:"operation"`
	ResourceType  string        `json:"resource_type"`
	Version       string        `json:"version"`
	TargetVersion string        `json:"target_version,omitempty"` // transform only
	Duration      time.Duration `json:"duration"`
	Valid         bool          `json:"valid,omitempty"` // validate only
	Errors        int           `json:"errors,omitempty"`
	Warnings      int           `json:"warnings,omitempty"`
	Err           error         `json:"-"`
}

// Hooks defines callbacks for validator observability. They run synchronously
// on the calling goroutine after each call returns its result.
type Hooks struct {
	OnValidate  func(*Event)
	OnDefaults  func(*Event)
	OnTransform func(*Event)
}

func (v *Validator) emit(hook func(*Event), ev *Event, start time.Time) {
	if hook == nil {
		return
	}
	ev.Timestamp = start
	ev.ResourceType = v.schema.ResourceType
	ev.Version = v.schema.Version
	ev.Duration = time.Since(start)
	hook(ev)
}
