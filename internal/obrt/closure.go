package obrt

import (
	"fmt"

	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// Closure is a callable value: a function body paired with the context it
// closed over. It is the host-side stand-in for spec.md §2 item 1's
// "closures", constructed by the evaluator's function-definition actions
// (setup_function/start_function/end_function, see internal/obactions) and
// invoked by a Call AST node.
type Closure struct {
	Name string
	Fn   obvalue.Function
	// Ctx is the captured evaluation context (an *obast.Context, carried
	// opaquely to avoid an obrt <-> obast import cycle).
	Ctx any
}

func NewClosure(name string, fn obvalue.Function, ctx any) *Closure {
	return &Closure{Name: name, Fn: fn, Ctx: ctx}
}

func (c *Closure) Type() string { return "function" }

func (c *Closure) Equal(other obvalue.Value) bool {
	o, ok := other.(*Closure)
	return ok && o == c
}

func (c *Closure) Bool() (bool, error) { return true, nil }

func (c *Closure) String() string { return fmt.Sprintf("<function %s>", c.Name) }

func (c *Closure) Iter() (obvalue.Iterator, error) {
	return nil, obxerr.New(obxerr.TypeError, "function values are not iterable")
}

func (c *Closure) Execute(opName string, args []obvalue.Value) (obvalue.Value, error) {
	return nil, obxerr.New(obxerr.TypeError, "operator %q is not defined on functions", opName)
}

func (c *Closure) Call(method string, args []obvalue.Value) (obvalue.Value, error) {
	if method != "" {
		return nil, obxerr.New(obxerr.NotCallable, "function %s has no bound method %q", c.Name, method)
	}
	return c.Fn(c.Ctx, args)
}
