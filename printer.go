// printer.go
//
// Rendering of terms back into surface syntax. The contract is that
// FormatTerm output re-parses to a structurally identical AST (location
// values excepted — they have no source syntax), so parentheses are
// inserted exactly where the term-stack parser would otherwise associate
// differently: around lambdas, conditionals and other compound terms used
// as operands, and around sequences wherever a bare ';' would cut the
// enclosing construct short. An application in the else-branch of a
// conditional prints bare, since that branch absorbs it on re-parse.
//
// Lambda prints as λ; the lexer accepts it as an alias for the 'l'
// keyword. NatValue reads a numeric value chain as a decimal number.
package lamina

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// FormatTerm renders t in re-parseable surface syntax.
func FormatTerm(t Term) string {
	return fmtStmt(t)
}

// NatValue returns the decimal value of a numeric value chain.
func NatValue(t Term) (int, bool) {
	n := 0
	for {
		switch v := t.(type) {
		case Zero:
			return n, true
		case Succ:
			n++
			t = v.Arg
		default:
			return 0, false
		}
	}
}

func fmtStmt(t Term) string {
	switch t := t.(type) {
	case Var:
		return t.Name
	case True:
		return "true"
	case False:
		return "false"
	case Zero:
		return "0"
	case UnitVal:
		return "unit"
	case Loc:
		return "l[" + strconv.Itoa(t.ID) + "]"
	case Abs:
		return "λ " + t.Param + ":" + t.ParamType.String() + ". " + fmtBinderBody(t.Body)
	case App:
		return fmtAppFn(t.Fn) + " " + fmtAtom(t.Arg)
	case If:
		return "if " + fmtStmt(t.Cond) + " then " + fmtStmt(t.Then) + " else " + fmtElse(t.Else)
	case Succ:
		return "succ " + fmtPrefixArg(t.Arg)
	case Pred:
		return "pred " + fmtPrefixArg(t.Arg)
	case IsZero:
		return "iszero " + fmtPrefixArg(t.Arg)
	case Ref:
		return "ref " + fmtPrefixArg(t.Arg)
	case Deref:
		return "!" + fmtPrefixArg(t.Arg)
	case Fix:
		return "fix " + fmtPrefixArg(t.Arg)
	case Record:
		parts := lo.Map(t.Fields, func(f Field, _ int) string {
			return f.Label + "=" + fmtStmt(f.Term)
		})
		return "{" + strings.Join(parts, ", ") + "}"
	case Proj:
		return fmtProjArg(t.Arg) + "." + t.Label
	case Let:
		return "let " + t.Name + " = " + fmtStmt(t.Bound) + " in " + fmtBinderBody(t.Body)
	case Assign:
		return fmtAssignLHS(t.LHS) + " := " + fmtAssignRHS(t.RHS)
	case Seq:
		return fmtSeqFirst(t.First) + "; " + fmtStmt(t.Second)
	}
	return "<invalid>"
}

func parens(t Term) string {
	return "(" + fmtStmt(t) + ")"
}

// fmtAtom parenthesizes everything but the forms the parser absorbs as a
// single atom.
func fmtAtom(t Term) string {
	switch t.(type) {
	case Var, True, False, Zero, UnitVal, Loc, Record, Proj:
		return fmtStmt(t)
	default:
		return parens(t)
	}
}

// fmtAppFn renders the function position; applications stay bare so that
// chains re-associate to the left.
func fmtAppFn(t Term) string {
	switch t.(type) {
	case App:
		return fmtStmt(t)
	case Var, True, False, Zero, UnitVal, Loc, Record, Proj:
		return fmtStmt(t)
	default:
		return parens(t)
	}
}

// fmtPrefixArg renders the argument of succ/pred/iszero/ref/!/fix; prefix
// chains nest without parentheses.
func fmtPrefixArg(t Term) string {
	switch t.(type) {
	case Var, True, False, Zero, UnitVal, Loc, Record, Proj:
		return fmtStmt(t)
	case Succ, Pred, IsZero, Ref, Deref, Fix:
		return fmtStmt(t)
	default:
		return parens(t)
	}
}

func fmtProjArg(t Term) string {
	switch t.(type) {
	case Var, True, False, Zero, UnitVal, Loc, Record, Proj:
		return fmtStmt(t)
	default:
		return parens(t)
	}
}

// fmtElse guards the else-branch: a sequence printed bare there would cut
// the conditional short at the ';'.
func fmtElse(t Term) string {
	switch t.(type) {
	case Seq:
		return parens(t)
	default:
		return fmtStmt(t)
	}
}

// fmtBinderBody guards lambda and let bodies: a trailing ';' would seal
// the binder early.
func fmtBinderBody(t Term) string {
	switch t.(type) {
	case Seq:
		return parens(t)
	default:
		return fmtStmt(t)
	}
}

func fmtSeqFirst(t Term) string {
	switch t.(type) {
	case Seq:
		return parens(t)
	default:
		return fmtStmt(t)
	}
}

func fmtAssignLHS(t Term) string {
	switch t.(type) {
	case Var, App, Proj, Deref, Record, Loc:
		return fmtStmt(t)
	default:
		return parens(t)
	}
}

func fmtAssignRHS(t Term) string {
	switch t.(type) {
	case Seq:
		return parens(t)
	default:
		return fmtStmt(t)
	}
}

// DumpTerm renders the AST as an indented tree with de Bruijn indices,
// for the --ast debugging flag.
func DumpTerm(t Term, indent int) string {
	prefix := strings.Repeat("-", indent)
	var b strings.Builder
	switch t := t.(type) {
	case Var:
		fmt.Fprintf(&b, "%s%s[%d]", prefix, t.Name, t.Index)
	case Abs:
		fmt.Fprintf(&b, "%sλ %s:%s\n", prefix, t.Param, t.ParamType)
		b.WriteString(DumpTerm(t.Body, indent+2))
	case App:
		fmt.Fprintf(&b, "%sapply\n", prefix)
		b.WriteString(DumpTerm(t.Fn, indent+2))
		b.WriteString("\n")
		b.WriteString(DumpTerm(t.Arg, indent+2))
	case If:
		fmt.Fprintf(&b, "%sif\n", prefix)
		b.WriteString(DumpTerm(t.Cond, indent+2))
		fmt.Fprintf(&b, "\n%sthen\n", prefix)
		b.WriteString(DumpTerm(t.Then, indent+2))
		fmt.Fprintf(&b, "\n%selse\n", prefix)
		b.WriteString(DumpTerm(t.Else, indent+2))
	case Succ:
		fmt.Fprintf(&b, "%ssucc\n", prefix)
		b.WriteString(DumpTerm(t.Arg, indent+2))
	case Pred:
		fmt.Fprintf(&b, "%spred\n", prefix)
		b.WriteString(DumpTerm(t.Arg, indent+2))
	case IsZero:
		fmt.Fprintf(&b, "%siszero\n", prefix)
		b.WriteString(DumpTerm(t.Arg, indent+2))
	case Record:
		fmt.Fprintf(&b, "%srecord", prefix)
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "\n%s%s=\n", prefix, f.Label)
			b.WriteString(DumpTerm(f.Term, indent+2))
		}
	case Proj:
		fmt.Fprintf(&b, "%sproject .%s\n", prefix, t.Label)
		b.WriteString(DumpTerm(t.Arg, indent+2))
	case Let:
		fmt.Fprintf(&b, "%slet %s =\n", prefix, t.Name)
		b.WriteString(DumpTerm(t.Bound, indent+2))
		fmt.Fprintf(&b, "\n%sin\n", prefix)
		b.WriteString(DumpTerm(t.Body, indent+2))
	case Ref:
		fmt.Fprintf(&b, "%sref\n", prefix)
		b.WriteString(DumpTerm(t.Arg, indent+2))
	case Deref:
		fmt.Fprintf(&b, "%s!\n", prefix)
		b.WriteString(DumpTerm(t.Arg, indent+2))
	case Assign:
		fmt.Fprintf(&b, "%s:=\n", prefix)
		b.WriteString(DumpTerm(t.LHS, indent+2))
		b.WriteString("\n")
		b.WriteString(DumpTerm(t.RHS, indent+2))
	case Seq:
		fmt.Fprintf(&b, "%sseq\n", prefix)
		b.WriteString(DumpTerm(t.First, indent+2))
		b.WriteString("\n")
		b.WriteString(DumpTerm(t.Second, indent+2))
	case Fix:
		fmt.Fprintf(&b, "%sfix\n", prefix)
		b.WriteString(DumpTerm(t.Arg, indent+2))
	default:
		fmt.Fprintf(&b, "%s%s", prefix, fmtStmt(t))
	}
	return b.String()
}
