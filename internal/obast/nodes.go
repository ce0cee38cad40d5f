package obast

import (
	"fmt"
	"strings"

	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// --- Const ---

// ConstNode is a fully-reduced value; its Eval is a no-op, the fixed point
// every other node's partial reduction eventually reaches.
type ConstNode struct {
	baseNode
	Value obvalue.Value
}

func NewConst(v obvalue.Value) *ConstNode {
	n := &ConstNode{Value: v}
	n.self = n
	return n
}

func (n *ConstNode) Kind() Kind           { return KindConst }
func (n *ConstNode) String() string       { return n.Value.String() }
func (n *ConstNode) AsConst() *ConstNode  { return n }
func (n *ConstNode) Eval(_ *Context) (Node, error) { return n, nil }

// --- Variable ---

// VariableNode names a qualified lookup in the context, spec.md §4.5:
// "looks up its qualified name in the context; on success reduces to
// Const(value); on failure, an exception."
type VariableNode struct {
	baseNode
	Name string
}

func NewVariable(name string) *VariableNode {
	n := &VariableNode{Name: name}
	n.self = n
	return n
}

func (n *VariableNode) Kind() Kind             { return KindVariable }
func (n *VariableNode) String() string         { return n.Name }
func (n *VariableNode) AsVariable() *VariableNode { return n }

func (n *VariableNode) Eval(ctx *Context) (Node, error) {
	v, err := ctx.Get(n.Name)
	if err != nil {
		return nil, err
	}
	return NewConst(v), nil
}

// --- Prefix ---

// PrefixNode applies a unary operator to its operand, spec.md §4.5: reduces
// the operand one step; if not yet Const, rewraps itself around the
// reduction. Once Const, invokes value.execute(op, nil).
type PrefixNode struct {
	baseNode
	Op      string
	Operand Node
}

func NewPrefix(op string, operand Node) *PrefixNode {
	n := &PrefixNode{Op: op, Operand: operand}
	n.self = n
	return n
}

func (n *PrefixNode) Kind() Kind         { return KindPrefix }
func (n *PrefixNode) String() string     { return fmt.Sprintf("(%s%s)", n.Op, n.Operand) }
func (n *PrefixNode) AsPrefix() *PrefixNode { return n }

func (n *PrefixNode) Eval(ctx *Context) (Node, error) {
	operand, err := reduceOnce(n.Operand, ctx)
	if err != nil {
		return nil, err
	}
	if !isConst(operand) {
		return NewPrefix(n.Op, operand), nil
	}
	result, err := operand.AsConst().Value.Execute(n.Op, nil)
	if err != nil {
		return nil, err
	}
	return NewConst(result), nil
}

// --- Infix ---

// InfixNode applies a binary operator to two operands, spec.md §4.5:
// evaluates left and right one step each; if either isn't Const, rewraps
// itself around the reductions. Once both are Const, invokes
// left.execute(op, [right]).
type InfixNode struct {
	baseNode
	Left  Node
	Op    string
	Right Node
}

func NewInfix(left Node, op string, right Node) *InfixNode {
	n := &InfixNode{Left: left, Op: op, Right: right}
	n.self = n
	return n
}

func (n *InfixNode) Kind() Kind       { return KindInfix }
func (n *InfixNode) String() string   { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }
func (n *InfixNode) AsInfix() *InfixNode { return n }

func (n *InfixNode) Eval(ctx *Context) (Node, error) {
	left, err := reduceOnce(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := reduceOnce(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	if !isConst(left) || !isConst(right) {
		return NewInfix(left, n.Op, right), nil
	}
	result, err := left.AsConst().Value.Execute(n.Op, []obvalue.Value{right.AsConst().Value})
	if err != nil {
		return nil, err
	}
	return NewConst(result), nil
}

// --- Ternary ---

// TernaryNode is a conditional expression, spec.md §4.5: reduces the
// condition one step; once Const, casts it to bool and returns the chosen
// branch's own reduction.
type TernaryNode struct {
	baseNode
	Cond, Then, Else Node
}

func NewTernary(cond, then, els Node) *TernaryNode {
	n := &TernaryNode{Cond: cond, Then: then, Else: els}
	n.self = n
	return n
}

func (n *TernaryNode) Kind() Kind           { return KindTernary }
func (n *TernaryNode) String() string       { return fmt.Sprintf("(%s ? %s : %s)", n.Cond, n.Then, n.Else) }
func (n *TernaryNode) AsTernary() *TernaryNode { return n }

func (n *TernaryNode) Eval(ctx *Context) (Node, error) {
	cond, err := reduceOnce(n.Cond, ctx)
	if err != nil {
		return nil, err
	}
	if !isConst(cond) {
		return NewTernary(cond, n.Then, n.Else), nil
	}
	truthy, err := cond.AsConst().Value.Bool()
	if err != nil {
		return nil, err
	}
	if truthy {
		return reduceOnce(n.Then, ctx)
	}
	return reduceOnce(n.Else, ctx)
}

// --- Call ---

// CallNode invokes a callable with arguments, spec.md §4.5: reduces the
// callee one step; once Const, reduces each argument one step in turn. Once
// the callee and every argument are Const, invokes callee.call("", args);
// otherwise rewraps itself around the partially-reduced callee/arguments.
type CallNode struct {
	baseNode
	Fn   Node
	Args []Node
}

func NewCall(fn Node, args []Node) *CallNode {
	n := &CallNode{Fn: fn, Args: args}
	n.self = n
	return n
}

func (n *CallNode) Kind() Kind     { return KindCall }
func (n *CallNode) AsCall() *CallNode { return n }

func (n *CallNode) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Fn, strings.Join(parts, ", "))
}

func (n *CallNode) Eval(ctx *Context) (Node, error) {
	fn, err := reduceOnce(n.Fn, ctx)
	if err != nil {
		return nil, err
	}
	if !isConst(fn) {
		return NewCall(fn, n.Args), nil
	}

	allConst := true
	reducedArgs := make([]Node, len(n.Args))
	for i, a := range n.Args {
		reducedArgs[i], err = reduceOnce(a, ctx)
		if err != nil {
			return nil, err
		}
		if !isConst(reducedArgs[i]) {
			allConst = false
		}
	}
	if !allConst {
		return NewCall(fn, reducedArgs), nil
	}

	values := make([]obvalue.Value, len(reducedArgs))
	for i, a := range reducedArgs {
		values[i] = a.AsConst().Value
	}
	result, err := fn.AsConst().Value.Call("", values)
	if err != nil {
		return nil, err
	}
	return NewConst(result), nil
}

// --- Generator ---

// GeneratorNode lazily drives an iterator, spec.md §4.5: on the first call,
// fully reduces its source expression and opens an iterator over it; every
// call (including the first) then returns Const(iter.next()), propagating
// the iterator's Exhausted exception unchanged when spent.
//
// Unlike every other node here, a GeneratorNode's iterator is genuine
// mutable state rather than something reconstructed each Eval: the data
// model (spec.md §3) names "optional iterator state" as one of Generator's
// own attributes, so the caller is expected to keep calling Eval on this
// same node instance rather than on a freshly-returned replacement.
type GeneratorNode struct {
	baseNode
	Source Node

	iter obvalue.Iterator
}

func NewGenerator(source Node) *GeneratorNode {
	n := &GeneratorNode{Source: source}
	n.self = n
	return n
}

func (n *GeneratorNode) Kind() Kind                 { return KindGenerator }
func (n *GeneratorNode) String() string             { return fmt.Sprintf("gen(%s)", n.Source) }
func (n *GeneratorNode) AsGenerator() *GeneratorNode { return n }

func (n *GeneratorNode) Eval(ctx *Context) (Node, error) {
	if n.iter == nil {
		v, err := Reduce(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		iter, err := v.Iter()
		if err != nil {
			return nil, err
		}
		n.iter = iter
	}
	v, err := n.iter.Next()
	if err != nil {
		return nil, err
	}
	return NewConst(v), nil
}

// --- Block ---

// BlockNode is a sequence of statements, spec.md §4.5: fully evaluates each
// statement in order, short-circuiting on the first exception, and reduces
// to Const of the last statement's value (or Const(null) if empty).
type BlockNode struct {
	baseNode
	Statements []Node

	null obvalue.Value
}

// NewBlock builds a BlockNode. null is the value an empty block (or the
// absence of any prior statement result) reduces to, supplied by the host
// value model since obast has no concrete value types of its own.
func NewBlock(statements []Node, null obvalue.Value) *BlockNode {
	n := &BlockNode{Statements: statements, null: null}
	n.self = n
	return n
}

func (n *BlockNode) Kind() Kind       { return KindBlock }
func (n *BlockNode) AsBlock() *BlockNode { return n }

func (n *BlockNode) String() string {
	parts := make([]string, len(n.Statements))
	for i, s := range n.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func (n *BlockNode) Eval(ctx *Context) (Node, error) {
	result := n.null
	for _, stmt := range n.Statements {
		v, err := Reduce(stmt, ctx)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return NewConst(result), nil
}

// --- Assignment ---

// AssignmentNode binds a name, spec.md §4.5: fully reduces its value
// expression, writes it into the context (declaring a new local if Declare
// is set, otherwise assigning through the existing scope chain), and
// reduces to Const of the assigned value.
type AssignmentNode struct {
	baseNode
	Name    string
	Value   Node
	Declare bool
}

func NewAssignment(name string, value Node, declare bool) *AssignmentNode {
	n := &AssignmentNode{Name: name, Value: value, Declare: declare}
	n.self = n
	return n
}

func (n *AssignmentNode) Kind() Kind                 { return KindAssignment }
func (n *AssignmentNode) String() string             { return fmt.Sprintf("%s = %s", n.Name, n.Value) }
func (n *AssignmentNode) AsAssignment() *AssignmentNode { return n }

func (n *AssignmentNode) Eval(ctx *Context) (Node, error) {
	v, err := Reduce(n.Value, ctx)
	if err != nil {
		return nil, err
	}
	if n.Declare {
		ctx.Declare(n.Name, v)
	} else if err := ctx.Set(n.Name, v); err != nil {
		return nil, err
	}
	return NewConst(v), nil
}

// --- Loop ---

// LoopNode is spec.md §4.5's single node kind covering both loop forms
// ("Loop (while/for)"). The while form (Gen == nil) repeatedly reduces Cond
// one step; once it's Const and truthy, fully evaluates Body and re-checks
// Cond, exiting once Cond is Const and falsy. If Cond itself is still
// mid-reduction (e.g. waiting on a nested Call), Eval returns a new Loop
// wrapping that partial reduction for the caller to drive further.
//
// The for form (Gen != nil) is sugar the "for" standard action builds
// directly: each iteration pulls one value from Gen, binds it to VarName in
// ctx, and evaluates Body; the loop ends cleanly when Gen raises Exhausted
// rather than by a boolean condition.
//
// Either form's Body may raise a Break or Continue exception (built by the
// "break"/"continue" standard actions); Loop is the only node that
// intercepts those two kinds, unwrapping them into ordinary loop-exit /
// next-iteration control rather than letting them propagate further.
type LoopNode struct {
	baseNode
	Cond Node
	Body Node

	Gen     *GeneratorNode
	VarName string
	Null    obvalue.Value // used as the for-form's result once Gen is exhausted
}

func NewLoop(cond, body Node) *LoopNode {
	n := &LoopNode{Cond: cond, Body: body}
	n.self = n
	return n
}

// NewForLoop builds the for-each form: varName is bound to each value Gen
// yields before Body runs; null is the value reduced to once Gen is
// exhausted (obast has no concrete value types of its own to supply one).
func NewForLoop(varName string, gen *GeneratorNode, body Node, null obvalue.Value) *LoopNode {
	n := &LoopNode{Body: body, Gen: gen, VarName: varName, Null: null}
	n.self = n
	return n
}

func (n *LoopNode) Kind() Kind { return KindLoop }

func (n *LoopNode) String() string {
	if n.Gen != nil {
		return fmt.Sprintf("for (%s in %s) %s", n.VarName, n.Gen, n.Body)
	}
	return fmt.Sprintf("while (%s) %s", n.Cond, n.Body)
}

func (n *LoopNode) AsLoop() *LoopNode { return n }

func (n *LoopNode) Eval(ctx *Context) (Node, error) {
	if n.Gen != nil {
		return n.evalForEach(ctx)
	}

	cond := n.Cond
	for {
		reduced, err := reduceOnce(cond, ctx)
		if err != nil {
			return nil, err
		}
		if !isConst(reduced) {
			return NewLoop(reduced, n.Body), nil
		}

		truthy, err := reduced.AsConst().Value.Bool()
		if err != nil {
			return nil, err
		}
		if !truthy {
			return reduced, nil
		}

		if brk, err := n.runBody(ctx); brk || err != nil {
			if err != nil {
				return nil, err
			}
			return reduced, nil
		}
		cond = n.Cond
	}
}

func (n *LoopNode) evalForEach(ctx *Context) (Node, error) {
	for {
		next, err := n.Gen.Eval(ctx)
		if err != nil {
			if exc, ok := err.(*obxerr.Exception); ok && exc.Kind() == obxerr.Exhausted {
				return NewConst(n.Null), nil
			}
			return nil, err
		}
		ctx.Declare(n.VarName, next.AsConst().Value)

		if brk, err := n.runBody(ctx); brk || err != nil {
			if err != nil {
				return nil, err
			}
			return NewConst(n.Null), nil
		}
	}
}

// runBody fully evaluates Body, translating a Break exception into
// (true, nil) (caller should stop looping) and a Continue exception into
// (false, nil) (caller should move on to the next iteration); any other
// error propagates unchanged.
func (n *LoopNode) runBody(ctx *Context) (brk bool, err error) {
	_, err = Reduce(n.Body, ctx)
	if err == nil {
		return false, nil
	}
	if exc, ok := err.(*obxerr.Exception); ok {
		switch exc.Kind() {
		case obxerr.Break:
			return true, nil
		case obxerr.Continue:
			return false, nil
		}
	}
	return false, err
}

// --- Pass ---

// PassNode is the explicit no-op statement; it reduces immediately to
// Const(null). A PassNode built via NewSignal instead raises a Break or
// Continue exception when reduced, for the "break"/"continue" standard
// actions: the 12 node kinds spec.md §4.5 names have no dedicated
// Break/Continue kind, and a loop-control signal is exactly a Pass that
// additionally unwinds the stack, intercepted only by the nearest enclosing
// LoopNode (see LoopNode.runBody).
type PassNode struct {
	baseNode
	null   obvalue.Value
	signal *obxerr.Kind
}

func NewPass(null obvalue.Value) *PassNode {
	n := &PassNode{null: null}
	n.self = n
	return n
}

// NewSignal builds a statement that raises kind (obxerr.Break or
// obxerr.Continue) when reduced.
func NewSignal(kind obxerr.Kind) *PassNode {
	n := &PassNode{signal: &kind}
	n.self = n
	return n
}

func (n *PassNode) Kind() Kind { return KindPass }

func (n *PassNode) String() string {
	if n.signal != nil {
		return strings.ToLower(n.signal.String())
	}
	return "pass"
}

func (n *PassNode) AsPass() *PassNode { return n }

func (n *PassNode) Eval(_ *Context) (Node, error) {
	if n.signal != nil {
		return nil, obxerr.New(*n.signal, "%s", strings.ToLower(n.signal.String()))
	}
	return NewConst(n.null), nil
}

// --- Return ---

// ReturnNode carries a function's result, spec.md §4.5: reduces its
// expression one step; once Const, if FullResolve is set it raises a Return
// exception carrying the value as payload so enclosing Blocks/Loops abort
// back to the call boundary, otherwise it reduces to a new Return node
// wrapping the now-Const expression (left for the call machinery itself to
// interpret, e.g. when a single statement is being inspected rather than
// executed to completion).
type ReturnNode struct {
	baseNode
	Value       Node
	FullResolve bool

	// kind is the exception Kind raised when FullResolve fires. Defaults to
	// obxerr.Return; NewThrow sets it to something else (obxerr.Runtime for
	// throw_exception, obxerr.Exit for leave) so all three forms of
	// "evaluate fully, then unwind carrying this value" share one node
	// shape instead of three near-identical ones.
	kind obxerr.Kind
}

func NewReturn(value Node, fullResolve bool) *ReturnNode {
	n := &ReturnNode{Value: value, FullResolve: fullResolve, kind: obxerr.Return}
	n.self = n
	return n
}

// NewThrow builds a ReturnNode that always fully resolves, raising kind
// instead of obxerr.Return once its value is Const.
func NewThrow(value Node, kind obxerr.Kind) *ReturnNode {
	n := &ReturnNode{Value: value, FullResolve: true, kind: kind}
	n.self = n
	return n
}

func (n *ReturnNode) Kind() Kind       { return KindReturn }
func (n *ReturnNode) String() string   { return fmt.Sprintf("return %s", n.Value) }
func (n *ReturnNode) AsReturn() *ReturnNode { return n }

// --- FunctionLiteral ---

// FunctionLiteralNode is the one addition to spec.md §4.5's 12 node kinds:
// the "setup_function/start_function/end_function" standard actions
// (internal/obactions) need some expression that, once reduced, produces a
// callable closing over the context live at the point of definition —
// but that context only exists when a node's own Eval runs, so the closure
// can't be pre-built at parse time the way every other literal can. Rather
// than invent a dedicated "closure" value kind the evaluator has to know
// about, FunctionLiteralNode builds an ordinary obrt.Closure bound to ctx
// and reduces directly to Const(closure); Kind() reports KindCall since,
// like Call, a FunctionLiteralNode's Eval never actually returns itself —
// it resolves straight through to a Const on the first step.
type FunctionLiteralNode struct {
	baseNode
	Name   string
	Params []string
	Body   Node
}

func NewFunctionLiteral(name string, params []string, body Node) *FunctionLiteralNode {
	n := &FunctionLiteralNode{Name: name, Params: append([]string(nil), params...), Body: body}
	n.self = n
	return n
}

func (n *FunctionLiteralNode) Kind() Kind { return KindCall }

func (n *FunctionLiteralNode) String() string {
	return fmt.Sprintf("function %s(%s)", n.Name, strings.Join(n.Params, ", "))
}

func (n *FunctionLiteralNode) Eval(ctx *Context) (Node, error) {
	params := n.Params
	body := n.Body

	fn := func(_ any, args []obvalue.Value) (obvalue.Value, error) {
		child := ctx.Child()
		for i, pname := range params {
			if i < len(args) {
				child.Declare(pname, args[i])
			}
		}
		v, err := Reduce(body, child)
		if err == nil {
			return v, nil
		}
		if exc, ok := err.(*obxerr.Exception); ok && exc.Kind() == obxerr.Return {
			if rv, ok := exc.Payload.(obvalue.Value); ok {
				return rv, nil
			}
		}
		return nil, err
	}

	return NewConst(obrt.NewClosure(n.Name, fn, nil)), nil
}

func (n *ReturnNode) Eval(ctx *Context) (Node, error) {
	v, err := reduceOnce(n.Value, ctx)
	if err != nil {
		return nil, err
	}
	if !isConst(v) {
		next := &ReturnNode{Value: v, FullResolve: n.FullResolve, kind: n.kind}
		next.self = next
		return next, nil
	}
	if n.FullResolve {
		return nil, obxerr.New(n.kind, "%s", strings.ToLower(n.kind.String())).WithPayload(v.AsConst().Value)
	}
	return NewReturn(v, n.FullResolve), nil
}
