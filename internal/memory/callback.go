package memory

import "reflect"

// CallbackFunc is a registered step callback. It may accept either just
// the step, or the step plus a context map — dispatch inspects the
// function's arity via reflection to decide which to pass (§4.4).
type CallbackFunc any

// tagOf returns the step-variant tag used as the callback registry key.
func tagOf(s Step) string {
	switch s.(type) {
	case SystemPromptStep:
		return "system_prompt"
	case TaskStep:
		return "task"
	case PlanningStep:
		return "planning"
	case ActionStep:
		return "action"
	case FinalAnswerStep:
		return "final_answer"
	default:
		return "step"
	}
}

// ancestorTags returns tag plus every ancestor tag in the variant
// hierarchy. This runtime only has one level (every variant's sole
// ancestor is the catch-all "step" tag), but dispatch walks the chain
// generically so a future variant hierarchy needs no dispatch change.
func ancestorTags(s Step) []string {
	tag := tagOf(s)
	if tag == "step" {
		return []string{"step"}
	}
	return []string{tag, "step"}
}

// Registry is the callback registry of §4.4: a mapping from step-variant
// tag to an ordered list of callbacks, dispatched in registration order.
type Registry struct {
	byTag map[string][]CallbackFunc
}

// NewRegistry creates an empty callback registry.
func NewRegistry() *Registry {
	return &Registry{byTag: make(map[string][]CallbackFunc)}
}

// On registers fn to run whenever a step whose tag (or ancestor tag)
// matches tag is dispatched. tag "step" matches every step.
func (r *Registry) On(tag string, fn CallbackFunc) {
	r.byTag[tag] = append(r.byTag[tag], fn)
}

// Dispatch walks s's ancestor-tag chain and invokes every registered
// callback for each tag encountered, in registration order within a tag
// and specific-to-ancestor order across tags (the step's own tag's
// callbacks run before the catch-all "step" tag's). A
// callback accepting exactly one argument receives only the step;
// otherwise it receives (step, ctx). A panicking/erroring callback does
// not stop its siblings from running — each invocation is isolated via
// a recover.
func (r *Registry) Dispatch(s Step, ctx map[string]any) {
	for _, tag := range ancestorTags(s) {
		for _, fn := range r.byTag[tag] {
			invoke(fn, s, ctx)
		}
	}
}

func invoke(fn CallbackFunc, s Step, ctx map[string]any) {
	defer func() { _ = recover() }()

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return
	}
	switch v.Type().NumIn() {
	case 1:
		v.Call([]reflect.Value{reflect.ValueOf(s)})
	case 2:
		v.Call([]reflect.Value{reflect.ValueOf(s), reflect.ValueOf(ctx)})
	default:
		// Unsupported arity: skip rather than panic the dispatch loop.
	}
}
