// Package obactions implements the standard semantic-action vocabulary
// spec.md §4.4 names ("Standard actions ... to be implemented by the
// host"): push/pop stack shaping, token-to-value conversion, operator
// assembly, control-flow markers, function/constructor bookkeeping, and
// scope/flow actions. Every action is an obvalue.Function invoked by
// internal/obparse.Parser with ctx set to the firing *obparse.Parser; each
// one manipulates the parser's data stack (built from internal/obast
// nodes, boxed as obast.NodeValue) and, where an action needs bracket
// matching across several grammar rules (call arguments, if/elif/else,
// function bodies), a bit of scratch state kept on Parser.Aux rather than
// forced through the obvalue-typed stack.
//
// This is grounded on the shape of the teacher's tunascript/syntax/hooks.go
// HooksTable (a name -> function registration map resolved once by grammar
// construction), generalized from TunaScript's half-dozen literal/flag
// hooks to the full action vocabulary spec.md §4.4 lists, and rebuilt
// against obast's closed Node variants rather than the teacher's single
// concrete ASTNode tree.
package obactions

import (
	"github.com/obelix-lang/obelix/internal/obast"
	"github.com/obelix-lang/obelix/internal/obparse"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// Registry is an obvalue.FunctionResolver populated with every standard
// action name spec.md §4.4 lists.
type Registry struct {
	fns map[string]obvalue.Function
}

// New returns a Registry with the full standard action set registered.
func New() *Registry {
	r := &Registry{fns: make(map[string]obvalue.Function)}
	r.registerStack()
	r.registerTokens()
	r.registerOperators()
	r.registerControl()
	r.registerFunctions()
	r.registerFlow()
	return r
}

func (r *Registry) Resolve(name string) (obvalue.Function, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}

func (r *Registry) add(name string, fn obvalue.Function) { r.fns[name] = fn }

// alias registers name as a second name for an already-registered action,
// for the handful of standard names (per-grammar convention) spec.md §4.4
// lists separately but which this host implements identically.
func (r *Registry) alias(name, existing string) { r.fns[name] = r.fns[existing] }

func parserOf(ctx any) (*obparse.Parser, error) {
	p, ok := ctx.(*obparse.Parser)
	if !ok {
		return nil, obxerr.New(obxerr.InternalError, "standard action invoked with a non-parser context (%T)", ctx)
	}
	return p, nil
}

func pushNode(p *obparse.Parser, n obast.Node) { p.Push(obast.NodeValue{N: n}) }

func popNode(p *obparse.Parser) (obast.Node, error) {
	v, err := p.Pop()
	if err != nil {
		return nil, err
	}
	nv, ok := v.(obast.NodeValue)
	if !ok {
		return nil, obxerr.New(obxerr.InternalError, "data stack slot is not an AST node (%T)", v)
	}
	return nv.N, nil
}

func peekNode(p *obparse.Parser) (obast.Node, error) {
	v, err := p.Peek()
	if err != nil {
		return nil, err
	}
	nv, ok := v.(obast.NodeValue)
	if !ok {
		return nil, obxerr.New(obxerr.InternalError, "data stack slot is not an AST node (%T)", v)
	}
	return nv.N, nil
}

// popConstString pops a node expected to already be a literal Const holding
// a string-ish value (built by push_token/push_tokenstring over an
// Identifier/quoted-text token), returning its text.
func popConstString(p *obparse.Parser) (string, error) {
	n, err := popNode(p)
	if err != nil {
		return "", err
	}
	if n.Kind() != obast.KindConst {
		return "", obxerr.New(obxerr.InternalError, "expected a literal name on the data stack, got %s", n.Kind())
	}
	return n.AsConst().Value.String(), nil
}

// --- bookmarks: a LIFO of data-stack depths, for actions (call_op,
// defer_bookmarked_block, ...) that need to collect "everything pushed
// since" an earlier marker. ---

func bookmarkStack(p *obparse.Parser) *[]int {
	v, ok := p.Aux("bookmarks")
	if !ok {
		s := []int{}
		p.SetAux("bookmarks", &s)
		return &s
	}
	return v.(*[]int)
}

func pushBookmark(p *obparse.Parser) {
	bs := bookmarkStack(p)
	*bs = append(*bs, p.DataStackLen())
}

func popBookmark(p *obparse.Parser) (int, error) {
	bs := bookmarkStack(p)
	if len(*bs) == 0 {
		return 0, obxerr.New(obxerr.InternalError, "no bookmark set")
	}
	depth := (*bs)[len(*bs)-1]
	*bs = (*bs)[:len(*bs)-1]
	return depth, nil
}

// popNodesSince pops every node pushed after depth was recorded, returning
// them in their original (left-to-right) push order.
func popNodesSince(p *obparse.Parser, depth int) ([]obast.Node, error) {
	count := p.DataStackLen() - depth
	if count < 0 {
		return nil, obxerr.New(obxerr.InternalError, "bookmark depth exceeds current data stack size")
	}
	nodes := make([]obast.Node, count)
	for i := count - 1; i >= 0; i-- {
		n, err := popNode(p)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}
