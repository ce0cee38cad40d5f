package obast

import (
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// Context is the evaluation context every node's Eval receives, per spec.md
// §4.5: name lookup via get(ctx, name) and assignment via set(ctx, name,
// value). It's a simple chained scope, the generalized counterpart of the
// flat binding map the teacher's hook functions close over (see
// tunascript/syntax/hooks.go's *ExecEnv-style state threaded through
// Execute/ExecFunc calls), since the spec's Block/Loop/Call nodes need real
// lexical nesting that a single flat map can't express.
type Context struct {
	parent *Context
	vars   map[string]obvalue.Value
}

// NewContext returns a fresh top-level context with no parent.
func NewContext() *Context {
	return &Context{vars: make(map[string]obvalue.Value)}
}

// Child returns a new context nested inside c, for a function call or block
// scope that should see c's bindings but not leak its own back into c.
func (c *Context) Child() *Context {
	return &Context{parent: c, vars: make(map[string]obvalue.Value)}
}

// Get looks up name in c, then each enclosing scope in turn, per spec.md
// §4.5's "Variable... looks up its qualified name in the context."
func (c *Context) Get(name string) (obvalue.Value, error) {
	for scope := c; scope != nil; scope = scope.parent {
		if v, ok := scope.vars[name]; ok {
			return v, nil
		}
	}
	return nil, obxerr.New(obxerr.Name, "name %q is not defined", name)
}

// Set writes name into the nearest scope (including c) that already binds
// it, or into c itself if no scope does, matching ordinary lexical
// assignment semantics.
func (c *Context) Set(name string, value obvalue.Value) error {
	for scope := c; scope != nil; scope = scope.parent {
		if _, ok := scope.vars[name]; ok {
			scope.vars[name] = value
			return nil
		}
	}
	c.vars[name] = value
	return nil
}

// Declare binds name in c's own scope regardless of any outer binding,
// for a statement that introduces a new local (Assignment's const-flag
// form, spec.md §4.5).
func (c *Context) Declare(name string, value obvalue.Value) {
	c.vars[name] = value
}
