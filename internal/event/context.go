package event

// Context carries the mutable outcome of a cancellable event. Handlers may
// call Cancel to veto the action that triggered the event.
type Context struct {
	cancel   bool
	finished bool
	after    []func(cancelled bool)
}

// C returns a new event context.
func C() *Context {
	return &Context{}
}

// Cancelled returns whether the context has been cancelled.
func (ctx *Context) Cancelled() bool {
	return ctx.cancel
}

// Cancel cancels the context.
func (ctx *Context) Cancel() {
	ctx.cancel = true
}

// After registers a function to run when the event finishes.
func (ctx *Context) After(f func(cancelled bool)) {
	ctx.after = append(ctx.after, f)
}

// Finish marks the context as finished, running all After functions.
func (ctx *Context) Finish() {
	if ctx.finished {
		panic("event.Context.Finish called twice")
	}
	ctx.finished = true
	for _, f := range ctx.after {
		f(ctx.cancel)
	}
	ctx.after = nil
}
