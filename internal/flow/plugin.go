package flow

// Plugin is an opaque capability that can wrap move execution and/or augment
// the initial state. The engine treats plugins purely through these two
// hooks; a nil hook is transparent.
type Plugin struct {
	// FnWrap receives the inner executable and returns a replacement with the
	// same signature.
	FnWrap func(MoveFn) MoveFn

	// Setup runs once at game start, after the descriptor's own Setup, and
	// may return an augmented initial state.
	Setup func(g interface{}, ctx Ctx) interface{}
}

// wrap nests each plugin's wrapper around fn in declaration order: the
// first-declared plugin ends up outermost, so it runs its pre-logic first
// and its post-logic last.
func wrap(fn MoveFn, plugins []Plugin) MoveFn {
	for i := len(plugins) - 1; i >= 0; i-- {
		if plugins[i].FnWrap != nil {
			fn = plugins[i].FnWrap(fn)
		}
	}
	return fn
}

// setupPlugins runs every plugin's Setup in declaration order, each receiving
// the previous one's output.
func setupPlugins(state interface{}, ctx Ctx, plugins []Plugin) interface{} {
	for _, p := range plugins {
		if p.Setup != nil {
			state = p.Setup(state, ctx)
		}
	}
	return state
}
