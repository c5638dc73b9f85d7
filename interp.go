// interp.go
//
// The top of the pipeline: parse → typecheck → evaluate → render.
//
// The type is computed on the pre-evaluation term, so an ill-typed
// program receives Ⱦ no matter what evaluation would have done to it —
// and ill-typed programs are not evaluated at all; their parsed form is
// the reported residual. Well-typed programs evaluate to completion (or
// to the advisory step budget) on a store that lives exactly as long as
// the Interpret call.
//
// Rendering: a result matching nv ::= 0 | succ nv prints as a decimal
// number; everything else prints in surface syntax.
package lamina

import "strconv"

// Result is a rendered evaluation outcome.
type Result struct {
	Value    string
	Type     *Type
	Residual Term
}

// Interpreter ties a type catalog and the options of repeated Interpret
// calls together. The catalog persists across calls and only grows; the
// store does not.
type Interpreter struct {
	cat *Catalog

	// MaxSteps is an advisory evaluation budget; 0 disables it.
	MaxSteps int
}

// New returns an interpreter with a fresh type catalog.
func New() *Interpreter {
	return &Interpreter{cat: NewCatalog()}
}

// Catalog exposes the interpreter's type catalog.
func (ip *Interpreter) Catalog() *Catalog { return ip.cat }

// Interpret runs one program. Errors are *LexError, *ParseError,
// *StuckError or ErrStepLimit; a type error is not an error — it is a
// Result whose Type is Ⱦ.
func (ip *Interpreter) Interpret(src string) (Result, error) {
	term, err := Parse(src, ip.cat)
	if err != nil {
		return Result{}, err
	}

	ty := NewChecker(ip.cat).TypeOf(term)
	if ty.IsIllTyped() {
		return Result{Value: FormatTerm(term), Type: ty, Residual: term}, nil
	}

	ev := NewEvaluator()
	ev.MaxSteps = ip.MaxSteps
	out, err := ev.Eval(term)
	if err != nil {
		return Result{Value: FormatTerm(out), Type: ty, Residual: out}, err
	}
	if !IsValue(out) {
		res := Result{Value: FormatTerm(out), Type: ty, Residual: out}
		return res, &StuckError{Residual: out}
	}
	return Result{Value: renderValue(out), Type: ty, Residual: out}, nil
}

func renderValue(t Term) string {
	if n, ok := NatValue(t); ok {
		return strconv.Itoa(n)
	}
	return FormatTerm(t)
}
