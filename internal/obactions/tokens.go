package obactions

import (
	"github.com/obelix-lang/obelix/internal/obast"
	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// registerTokens wires spec.md §4.4's "Tokens" group: push_token,
// push_tokenstring, push_signed_val.
func (r *Registry) registerTokens() {
	r.add("push_token", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		tok := p.LastToken()
		v, err := obrt.FromToken(tok.Code.String(), tok.Text)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewConst(v))
		return nil, nil
	})

	r.add("push_tokenstring", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewConst(obrt.String(p.LastToken().Text)))
		return nil, nil
	})

	// push_signed_val negates the numeric literal a prior push_token left
	// on top of the stack, for grammars that lex a leading '-' as a
	// separate terminal from the number it signs.
	r.add("push_signed_val", func(ctx any, args []obvalue.Value) (obvalue.Value, error) {
		p, err := parserOf(ctx)
		if err != nil {
			return nil, err
		}
		n, err := popNode(p)
		if err != nil {
			return nil, err
		}
		if n.Kind() != obast.KindConst {
			return nil, obxerr.New(obxerr.InternalError, "push_signed_val: top of stack is not a literal value")
		}
		negated, err := n.AsConst().Value.Execute("-u", nil)
		if err != nil {
			return nil, err
		}
		pushNode(p, obast.NewConst(negated))
		return nil, nil
	})
}
