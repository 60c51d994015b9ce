// Package clock implements the device clock capability: alarms, timers and
// the current time.
package clock

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/stewardhq/steward/pkg/domain"
)

// Alarm is a scheduled alarm held by the module.
type Alarm struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Label  string `json:"label,omitempty"`
}

// Timer is a running countdown.
type Timer struct {
	Duration time.Duration `json:"duration"`
	Label    string        `json:"label,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// Module implements ports.CapabilityModule for alarms, timers and time.
type Module struct {
	mu     sync.Mutex
	alarms []Alarm
	timers []Timer

	now func() time.Time
}

// Option configures the Module.
type Option func(*Module)

// WithNow overrides the time source. Used in tests.
func WithNow(now func() time.Time) Option {
	return func(m *Module) {
		m.now = now
	}
}

// New creates the clock module.
func New(opts ...Option) *Module {
	m := &Module{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Module) ID() string          { return "clock" }
func (m *Module) Description() string { return "Set alarms and timers, and read the current time." }

func (m *Module) RequiredPermissions() []string { return nil }

func (m *Module) IsAvailable(ctx context.Context) bool { return true }

func (m *Module) Operations() []domain.Operation {
	return []domain.Operation{
		{
			ID:          "create_alarm",
			Description: "Create an alarm at the given time of day.",
			Params: []domain.ParamSpec{
				{Name: "hour", Type: domain.ParamInteger, Description: "Hour of day, 0-23", Required: true},
				{Name: "minute", Type: domain.ParamInteger, Description: "Minute, 0-59", Default: 0},
				{Name: "label", Type: domain.ParamString, Description: "Optional alarm label"},
			},
			Examples: []string{`{"call":"clock.create_alarm","params":{"hour":7,"minute":30}}`},
		},
		{
			ID:          "set_timer",
			Description: "Start a countdown timer.",
			Params: []domain.ParamSpec{
				{Name: "duration", Type: domain.ParamDuration, Description: "Timer length, e.g. 10m or 1h30m", Required: true},
				{Name: "label", Type: domain.ParamString, Description: "Optional timer label"},
			},
			Examples: []string{`{"call":"clock.set_timer","params":{"duration":"10m"}}`},
		},
		{
			ID:          "get_time",
			Description: "Read the current time.",
		},
	}
}

func (m *Module) Execute(ctx context.Context, operationID string, params map[string]any) domain.Response {
	switch operationID {
	case "create_alarm":
		return m.createAlarm(params)
	case "set_timer":
		return m.setTimer(params)
	case "get_time":
		return m.getTime()
	default:
		return domain.Error{Code: domain.CodeNotFound, Message: fmt.Sprintf("clock has no operation %q", operationID)}
	}
}

// Alarms returns a snapshot of the scheduled alarms.
func (m *Module) Alarms() []Alarm {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alarm, len(m.alarms))
	copy(out, m.alarms)
	return out
}

func (m *Module) createAlarm(params map[string]any) domain.Response {
	var in struct {
		Hour   int    `mapstructure:"hour"`
		Minute int    `mapstructure:"minute"`
		Label  string `mapstructure:"label"`
	}
	if err := decode(params, &in); err != nil {
		return domain.Error{Code: domain.CodeInvalidParams, Message: err.Error()}
	}
	if in.Hour < 0 || in.Hour > 23 {
		return domain.Error{Code: domain.CodeInvalidParams, Message: fmt.Sprintf("hour %d out of range 0-23", in.Hour)}
	}
	if in.Minute < 0 || in.Minute > 59 {
		return domain.Error{Code: domain.CodeInvalidParams, Message: fmt.Sprintf("minute %d out of range 0-59", in.Minute)}
	}

	m.mu.Lock()
	m.alarms = append(m.alarms, Alarm{Hour: in.Hour, Minute: in.Minute, Label: in.Label})
	m.mu.Unlock()

	msg := fmt.Sprintf("Alarm set for %d:%02d", in.Hour, in.Minute)
	if in.Label != "" {
		msg += " (" + in.Label + ")"
	}
	return domain.Success{
		Message: msg,
		Data:    map[string]any{"hour": in.Hour, "minute": in.Minute, "label": in.Label},
	}
}

func (m *Module) setTimer(params map[string]any) domain.Response {
	var in struct {
		Duration string `mapstructure:"duration"`
		Label    string `mapstructure:"label"`
	}
	if err := decode(params, &in); err != nil {
		return domain.Error{Code: domain.CodeInvalidParams, Message: err.Error()}
	}
	d, err := parseDuration(in.Duration)
	if err != nil {
		return domain.Error{Code: domain.CodeInvalidParams, Message: err.Error()}
	}
	if d <= 0 {
		return domain.Error{Code: domain.CodeInvalidParams, Message: "duration must be positive"}
	}

	m.mu.Lock()
	m.timers = append(m.timers, Timer{Duration: d, Label: in.Label, StartedAt: m.now()})
	m.mu.Unlock()

	msg := fmt.Sprintf("Timer set for %s", d)
	if in.Label != "" {
		msg += " (" + in.Label + ")"
	}
	return domain.Success{Message: msg, Data: map[string]any{"duration_seconds": int(d.Seconds())}}
}

func (m *Module) getTime() domain.Response {
	now := m.now()
	return domain.Success{
		Message: "It is " + now.Format("3:04 PM"),
		Data:    map[string]any{"iso": now.Format(time.RFC3339)},
	}
}

// parseDuration accepts Go duration syntax and, for convenience, a bare
// number meaning minutes ("10" == "10m").
func parseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}

func decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
