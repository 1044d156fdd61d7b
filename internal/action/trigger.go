package action

import "context"

// Hook is a trigger callback invoked around a named middleware stage.
type Hook func(ctx context.Context, env Env) error

// Triggers supplies the pre and post hooks run around each middleware
// stage, keyed by the stage's stable name. Absent hooks pass through.
type Triggers interface {
	// Pre runs the hooks configured before the named stage.
	Pre(ctx context.Context, name string, env Env) error
	// Post runs the hooks configured after the named stage.
	Post(ctx context.Context, name string, env Env) error
}

// TriggerSpec is the standard Triggers implementation backed by hook lists
// per middleware name. The zero value passes everything through.
type TriggerSpec struct {
	before map[string][]Hook
	after  map[string][]Hook
}

// NewTriggerSpec creates an empty TriggerSpec.
func NewTriggerSpec() *TriggerSpec {
	return &TriggerSpec{
		before: make(map[string][]Hook),
		after:  make(map[string][]Hook),
	}
}

// AddBefore registers a hook to run before the named stage.
func (t *TriggerSpec) AddBefore(name string, hook Hook) {
	t.before[name] = append(t.before[name], hook)
}

// AddAfter registers a hook to run after the named stage.
func (t *TriggerSpec) AddAfter(name string, hook Hook) {
	t.after[name] = append(t.after[name], hook)
}

// Pre runs the hooks configured before the named stage.
func (t *TriggerSpec) Pre(ctx context.Context, name string, env Env) error {
	return runHooks(ctx, t.before[name], env)
}

// Post runs the hooks configured after the named stage.
func (t *TriggerSpec) Post(ctx context.Context, name string, env Env) error {
	return runHooks(ctx, t.after[name], env)
}

// runHooks invokes hooks in order against the trigger host environment.
func runHooks(ctx context.Context, hooks []Hook, env Env) error {
	host := env
	if alt, ok := env[EnvTriggerHost].(Env); ok {
		host = alt
	}
	for _, hook := range hooks {
		if err := hook(ctx, host); err != nil {
			return err
		}
	}
	return nil
}

// beforeTrigger runs the pre hooks for its wrapped middleware's name. It
// does not implement Recoverable.
type beforeTrigger struct {
	warden *Warden
	name   string
}

func (t *beforeTrigger) Name() string { return t.name + ":before" }

func (t *beforeTrigger) Call(ctx context.Context, env Env) error {
	if t.warden.triggers == nil {
		return nil
	}
	return t.warden.triggers.Pre(ctx, t.name, env)
}

// afterTrigger runs the post hooks for its wrapped middleware's name. It
// does not implement Recoverable.
type afterTrigger struct {
	warden *Warden
	name   string
}

func (t *afterTrigger) Name() string { return t.name + ":after" }

func (t *afterTrigger) Call(ctx context.Context, env Env) error {
	if t.warden.triggers == nil {
		return nil
	}
	return t.warden.triggers.Post(ctx, t.name, env)
}
