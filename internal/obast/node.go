// Package obast implements the partially-reducible AST evaluator from
// spec.md §4.5: each node's Eval performs exactly one step of reduction,
// returning either a fully-reduced Const, a new node of the same kind with
// its children further reduced, or an exception. Driving a tree to a final
// value is just calling Eval repeatedly (see Reduce).
//
// The closed-variant shape (a Kind tag plus a panicking As*Node accessor per
// variant) is grounded on the teacher's tunascript/syntax/ast.go ASTNode
// interface, generalized from that package's seven fixed TunaScript node
// kinds to spec.md §4.5's evaluator-facing set (Const, Variable, Prefix,
// Infix, Ternary, Call, Generator, Block, Assignment, Loop, Pass, Return).
// Unlike the teacher's ASTNode, which represents static parse-tree shape,
// obast's nodes also carry the partial-reduction Eval behavior spec.md's
// evaluator requires; the teacher's own evaluation lives elsewhere (its
// hooks.go/exphooks.go translate ASTNode into ictiobus translation actions)
// and has no partial-reduction concept to copy.
package obast

import (
	"fmt"

	"github.com/obelix-lang/obelix/internal/obvalue"
)

// Kind identifies which of the fixed AST node variants a Node is.
type Kind int

const (
	KindConst Kind = iota
	KindVariable
	KindPrefix
	KindInfix
	KindTernary
	KindCall
	KindGenerator
	KindBlock
	KindAssignment
	KindLoop
	KindPass
	KindReturn
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "Const"
	case KindVariable:
		return "Variable"
	case KindPrefix:
		return "Prefix"
	case KindInfix:
		return "Infix"
	case KindTernary:
		return "Ternary"
	case KindCall:
		return "Call"
	case KindGenerator:
		return "Generator"
	case KindBlock:
		return "Block"
	case KindAssignment:
		return "Assignment"
	case KindLoop:
		return "Loop"
	case KindPass:
		return "Pass"
	case KindReturn:
		return "Return"
	default:
		return "UnknownKind"
	}
}

// Node is a single AST node. Every variant implements Eval to perform one
// step of spec.md §4.5's partial reduction; all the As*Node accessors but
// the one matching Kind() panic, mirroring the teacher's ASTNode contract.
type Node interface {
	Kind() Kind
	String() string

	// Eval performs one step of reduction against ctx: it returns a new
	// Node (often, but not always, of the same Kind — Ternary and Call in
	// particular may resolve directly to whatever their selected branch or
	// return value reduces to) or an error, conventionally an
	// *obxerr.Exception, on failure or non-local control flow.
	Eval(ctx *Context) (Node, error)

	AsConst() *ConstNode
	AsVariable() *VariableNode
	AsPrefix() *PrefixNode
	AsInfix() *InfixNode
	AsTernary() *TernaryNode
	AsCall() *CallNode
	AsGenerator() *GeneratorNode
	AsBlock() *BlockNode
	AsAssignment() *AssignmentNode
	AsLoop() *LoopNode
	AsPass() *PassNode
	AsReturn() *ReturnNode
}

// baseNode implements every As*Node accessor as a panic; each concrete node
// type embeds it and overrides only the one accessor matching its own Kind.
type baseNode struct{ self Node }

func (b baseNode) wrongKind(want Kind) string {
	return fmt.Sprintf("node is %s, not %s", b.self.Kind(), want)
}

func (b baseNode) AsConst() *ConstNode           { panic(b.wrongKind(KindConst)) }
func (b baseNode) AsVariable() *VariableNode     { panic(b.wrongKind(KindVariable)) }
func (b baseNode) AsPrefix() *PrefixNode         { panic(b.wrongKind(KindPrefix)) }
func (b baseNode) AsInfix() *InfixNode           { panic(b.wrongKind(KindInfix)) }
func (b baseNode) AsTernary() *TernaryNode       { panic(b.wrongKind(KindTernary)) }
func (b baseNode) AsCall() *CallNode             { panic(b.wrongKind(KindCall)) }
func (b baseNode) AsGenerator() *GeneratorNode   { panic(b.wrongKind(KindGenerator)) }
func (b baseNode) AsBlock() *BlockNode           { panic(b.wrongKind(KindBlock)) }
func (b baseNode) AsAssignment() *AssignmentNode { panic(b.wrongKind(KindAssignment)) }
func (b baseNode) AsLoop() *LoopNode             { panic(b.wrongKind(KindLoop)) }
func (b baseNode) AsPass() *PassNode             { panic(b.wrongKind(KindPass)) }
func (b baseNode) AsReturn() *ReturnNode         { panic(b.wrongKind(KindReturn)) }

// Reduce drives n to a final value by calling Eval until it yields a Const,
// returning that Const's value, or until an error occurs.
func Reduce(n Node, ctx *Context) (obvalue.Value, error) {
	for {
		next, err := n.Eval(ctx)
		if err != nil {
			return nil, err
		}
		if next.Kind() == KindConst {
			return next.AsConst().Value, nil
		}
		n = next
	}
}

// reduceOnce is Eval under a name that reads better at non-Reduce call
// sites that deliberately want only a single reduction step.
func reduceOnce(n Node, ctx *Context) (Node, error) { return n.Eval(ctx) }

func isConst(n Node) bool { return n.Kind() == KindConst }

// NodeValue boxes a Node as an obvalue.Value so it can travel through a
// parser's generic data stack (spec.md §4.4's "data stack of opaque
// values") alongside ordinary host values. It has no operational behavior
// of its own: Execute/Call/Iter all fail, since a boxed node is meant to be
// unwrapped (via AsNode) by the action that pushed it, not operated on
// directly by the value model.
type NodeValue struct {
	N Node
}

func (v NodeValue) Type() string { return "ast:" + v.N.Kind().String() }

func (v NodeValue) Equal(other obvalue.Value) bool {
	o, ok := other.(NodeValue)
	return ok && o.N == v.N
}

func (v NodeValue) Bool() (bool, error) {
	return false, fmt.Errorf("an AST node has no boolean interpretation")
}

func (v NodeValue) String() string { return v.N.String() }

func (v NodeValue) Execute(string, []obvalue.Value) (obvalue.Value, error) {
	return nil, fmt.Errorf("an AST node is not a value to operate on")
}

func (v NodeValue) Iter() (obvalue.Iterator, error) {
	return nil, fmt.Errorf("an AST node is not iterable")
}

func (v NodeValue) Call(string, []obvalue.Value) (obvalue.Value, error) {
	return nil, fmt.Errorf("an AST node is not callable")
}
