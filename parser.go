// parser.go
//
// The Lamina parser. One left-to-right scan over the token stream builds
// the final AST with de Bruijn indices already assigned; there is no
// separate name-resolution pass.
//
// The grammar is left-recursive in application and mixes prefix keywords
// with the infix :=, ; and -> operators, so the parser keeps an explicit
// term stack. Every opening construct ('(', the condition and then-branch
// of 'if', the bound expression of 'let', each record field) records the
// stack depth when it was opened; the matching closer unwinds the stack
// back to that depth, combining each popped entry into the one beneath it.
// Combining an entry into a variable or a completed term forms an
// application, which is how applications end up left-associated.
//
// Binding discipline: every lambda and let pushes its name onto the bound
// stack; the name pops when the binder's body is sealed during an unwind.
// An identifier resolves to its distance from the innermost binder. Free
// variables must be single letters and receive the deterministic index
// |bound| + (lower(c) - 'a'), so programs differing only in bound names
// produce identical ASTs.
//
// Parsing works on mutable builder nodes (pnode); finalize converts the
// single surviving node into the immutable Term sum, validating
// completeness on the way out.
package lamina

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Parse scans and parses one program, interning all types in cat.
func Parse(src string, cat *Catalog) (Term, error) {
	return NewParser(src, cat).ParseProgram()
}

// Parser holds the scan state for one program.
type Parser struct {
	lex   *Lexer
	cat   *Catalog
	stack []*pnode
	marks []int
	bound []string
}

// NewParser returns a parser over src. Types are interned in cat.
func NewParser(src string, cat *Catalog) *Parser {
	return &Parser{
		lex:   NewLexer(src),
		cat:   cat,
		stack: []*pnode{{}},
	}
}

// ParseProgram parses a single top-level term.
func (p *Parser) ParseProgram() (Term, error) {
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokEOF {
			break
		}
		if err := p.parseToken(tok); err != nil {
			return nil, err
		}
	}

	if len(p.marks) != 0 {
		return nil, &ParseError{Msg: "unterminated term: a scope opened by '(', '{', 'if' or 'let' was never closed"}
	}
	for len(p.stack) > 1 {
		top := p.pop()
		p.seal(top)
		if err := p.top().combine(top); err != nil {
			return nil, err
		}
	}
	return finalize(p.stack[0])
}

func (p *Parser) parseToken(tok Token) error {
	switch tok.Type {
	case TokLambda:
		idTok, err := p.needToken(TokID, "expected parameter name after λ")
		if err != nil {
			return err
		}
		if _, err := p.needToken(TokColon, "expected ':' after parameter name"); err != nil {
			return err
		}
		ty, err := p.parseLambdaType()
		if err != nil {
			return err
		}
		p.bound = append(p.bound, idTok.Text)
		p.placeOrPush(&pnode{kind: pAbs, param: idTok.Text, paramType: ty})

	case TokID:
		name := tok.Text
		idx := -1
		for i := len(p.bound) - 1; i >= 0; i-- {
			if p.bound[i] == name {
				idx = len(p.bound) - 1 - i
				break
			}
		}
		if idx < 0 {
			// Free variables must be single letters; their index is a
			// deterministic offset past the binding context.
			if len(name) != 1 {
				return &ParseError{Msg: fmt.Sprintf("unexpected token %q", name)}
			}
			idx = len(p.bound) + int(lowerAlpha(name[0])-'a')
		}
		return p.combineTop(&pnode{kind: pVar, name: name, index: idx})

	case TokTrue:
		return p.combineTop(&pnode{kind: pTrue})
	case TokFalse:
		return p.combineTop(&pnode{kind: pFalse})
	case TokZero:
		return p.combineTop(&pnode{kind: pZero})
	case TokUnit:
		return p.combineTop(&pnode{kind: pUnit})

	case TokIf:
		p.placeOrPush(&pnode{kind: pIf})
		p.openScope()

	case TokThen:
		if err := p.unwind(); err != nil {
			if err == errNoScope {
				return &ParseError{Msg: "unexpected 'then'"}
			}
			return err
		}
		top := p.top()
		if top.kind != pIf || top.cond == nil || top.thenN != nil {
			return &ParseError{Msg: "unexpected 'then'"}
		}
		p.openScope()

	case TokElse:
		if err := p.unwind(); err != nil {
			if err == errNoScope {
				return &ParseError{Msg: "unexpected 'else'"}
			}
			return err
		}
		top := p.top()
		if top.kind != pIf || top.thenN == nil || top.elseN != nil {
			return &ParseError{Msg: "unexpected 'else'"}
		}

	case TokSucc:
		p.placeOrPush(&pnode{kind: pSucc})
	case TokPred:
		p.placeOrPush(&pnode{kind: pPred})
	case TokIsZero:
		p.placeOrPush(&pnode{kind: pIsZero})
	case TokRef:
		p.placeOrPush(&pnode{kind: pRef})
	case TokBang:
		p.placeOrPush(&pnode{kind: pDeref})
	case TokFix:
		p.placeOrPush(&pnode{kind: pFix})

	case TokLParen:
		p.openScope()

	case TokRParen:
		if err := p.unwind(); err != nil {
			if err == errNoScope {
				return &ParseError{Msg: "a ')' is not matched by a '('"}
			}
			return err
		}

	case TokLet:
		idTok, err := p.needToken(TokID, "expected identifier after 'let'")
		if err != nil {
			return err
		}
		if _, err := p.needToken(TokEqual, "expected '=' after let identifier"); err != nil {
			return err
		}
		p.placeOrPush(&pnode{kind: pLet, letName: idTok.Text})
		p.openScope()

	case TokIn:
		if err := p.unwind(); err != nil {
			if err == errNoScope {
				return &ParseError{Msg: "unexpected 'in'"}
			}
			return err
		}
		top := p.top()
		if top.kind != pLet || top.lhs == nil || top.rhs != nil || top.nameBound {
			return &ParseError{Msg: "unexpected 'in'"}
		}
		p.bound = append(p.bound, top.letName)
		top.nameBound = true

	case TokLBrace:
		fieldTok, err := p.next()
		if err != nil {
			return err
		}
		if fieldTok.Type == TokRBrace {
			return &ParseError{Msg: "record must have at least one field"}
		}
		if fieldTok.Type != TokID {
			return &ParseError{Msg: fmt.Sprintf("expected field label, got %s", fieldTok)}
		}
		if _, err := p.needToken(TokEqual, "expected '=' after field label"); err != nil {
			return err
		}
		p.placeOrPush(&pnode{kind: pRecord, pendingLabel: fieldTok.Text})
		p.openScope()

	case TokComma:
		if err := p.unwind(); err != nil {
			if err == errNoScope {
				return &ParseError{Msg: "unexpected ','"}
			}
			return err
		}
		top := p.top()
		if top.kind != pRecord || top.complete || top.pendingLabel != "" {
			return &ParseError{Msg: "unexpected ','"}
		}
		fieldTok, err := p.needToken(TokID, "expected field label after ','")
		if err != nil {
			return err
		}
		if _, err := p.needToken(TokEqual, "expected '=' after field label"); err != nil {
			return err
		}
		top.pendingLabel = fieldTok.Text
		p.openScope()

	case TokRBrace:
		if err := p.unwind(); err != nil {
			if err == errNoScope {
				return &ParseError{Msg: "a '}' is not matched by a '{'"}
			}
			return err
		}
		top := p.top()
		if top.kind != pRecord || top.complete {
			return &ParseError{Msg: "unexpected '}'"}
		}
		top.complete = true

	case TokDot:
		labelTok, err := p.needToken(TokID, "expected field label after '.'")
		if err != nil {
			return err
		}
		return projectLast(p.top(), labelTok.Text)

	case TokAssign:
		return assignWrap(p.top())

	case TokSemi:
		return p.unwindSemi()

	default:
		return &ParseError{Msg: fmt.Sprintf("unexpected token %s", tok)}
	}
	return nil
}

// ───────────────────────── stack plumbing ─────────────────────────

func (p *Parser) top() *pnode { return p.stack[len(p.stack)-1] }

func (p *Parser) pop() *pnode {
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return top
}

// placeOrPush reuses the top slot when it is still empty, otherwise
// starts a new stack entry.
func (p *Parser) placeOrPush(n *pnode) {
	top := p.top()
	if top.kind == pEmpty {
		*top = *n
	} else {
		p.stack = append(p.stack, n)
	}
}

func (p *Parser) combineTop(n *pnode) error {
	return p.top().combine(n)
}

// openScope records the current depth and pushes a fresh slot for the
// scope's content.
func (p *Parser) openScope() {
	p.marks = append(p.marks, len(p.stack))
	p.stack = append(p.stack, &pnode{})
}

// errNoScope signals an unwind with no scope open; callers replace it
// with a message naming the stray closer.
var errNoScope = &ParseError{Msg: "no open scope"}

// unwind closes the innermost scope: entries above the recorded depth are
// popped, sealed and combined downward. The last entry popped is marked as
// grouped so that projection and application treat the whole scope as one
// atom.
func (p *Parser) unwind() error {
	if len(p.marks) == 0 {
		return errNoScope
	}
	mark := p.marks[len(p.marks)-1]
	p.marks = p.marks[:len(p.marks)-1]
	for len(p.stack) > mark {
		top := p.pop()
		p.seal(top)
		if len(p.stack) == mark {
			top.grouped = true
		}
		if err := p.top().combine(top); err != nil {
			return err
		}
	}
	return nil
}

// unwindSemi is the ';' variant: it flattens the current scope without
// consuming its mark, seals any binder on top, and opens the right-hand
// slot of a sequence.
func (p *Parser) unwindSemi() error {
	target := 1
	if len(p.marks) > 0 {
		target = p.marks[len(p.marks)-1] + 1
	}
	for len(p.stack) > target {
		top := p.pop()
		p.seal(top)
		if err := p.top().combine(top); err != nil {
			return err
		}
	}
	top := p.top()
	p.seal(top)
	return seqWrap(top)
}

// seal closes a binder whose body just ended: its name leaves the binding
// context and further terms combined into it become applications.
func (p *Parser) seal(n *pnode) {
	switch n.kind {
	case pAbs:
		if !n.complete {
			n.complete = true
			p.bound = p.bound[:len(p.bound)-1]
		}
	case pLet:
		if n.nameBound && !n.complete {
			n.complete = true
			p.bound = p.bound[:len(p.bound)-1]
		}
	}
}

func (p *Parser) next() (Token, error) {
	tok := p.lex.Next()
	if tok.Type == TokInvalid {
		return Token{}, &LexError{Text: tok.Text}
	}
	return tok, nil
}

func (p *Parser) needToken(tt TokenType, msg string) (Token, error) {
	tok, err := p.next()
	if err != nil {
		return Token{}, err
	}
	if tok.Type != tt {
		return Token{}, &ParseError{Msg: fmt.Sprintf("%s, got %s", msg, tok)}
	}
	return tok, nil
}

func lowerAlpha(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// ───────────────────────── builder nodes ─────────────────────────

type pkind int

const (
	pEmpty pkind = iota
	pVar
	pAbs
	pApp
	pTrue
	pFalse
	pZero
	pUnit
	pIf
	pSucc
	pPred
	pIsZero
	pRef
	pDeref
	pFix
	pRecord
	pProj
	pLet
	pAssign
	pSeq
)

type pfield struct {
	label string
	value *pnode
}

// pnode is the mutable parse-time representation of a term under
// construction. grouped marks a node assembled by a closed scope, which
// then behaves as a single atom; complete marks a sealed binder or a
// closed record.
type pnode struct {
	kind     pkind
	grouped  bool
	complete bool

	// pVar
	name  string
	index int

	// pAbs
	param     string
	paramType *Type
	body      *pnode

	// pLet
	letName   string
	nameBound bool

	// pApp, pAssign, pSeq, pLet (lhs=bound, rhs=body)
	lhs *pnode
	rhs *pnode

	// pIf
	cond  *pnode
	thenN *pnode
	elseN *pnode

	// unary operators and pProj
	arg   *pnode
	label string

	// pRecord
	fields       []pfield
	pendingLabel string
}

// incompleteArg reports whether n is too incomplete to be absorbed as a
// finished subterm.
func (n *pnode) incompleteArg() bool {
	switch n.kind {
	case pEmpty:
		return true
	case pAbs:
		return n.body == nil
	case pIf:
		return n.cond == nil || n.thenN == nil || n.elseN == nil
	case pSucc, pPred, pIsZero, pRef, pDeref, pFix:
		return n.arg == nil
	case pLet:
		return n.lhs == nil || n.rhs == nil
	case pAssign, pSeq:
		return n.lhs == nil || n.rhs == nil
	}
	return false
}

// combine absorbs a finished term t into n. Combining into a completed
// term builds an application; combining into an open construct fills its
// next slot.
func (n *pnode) combine(t *pnode) error {
	if t.incompleteArg() {
		return &ParseError{Msg: "invalid term"}
	}
	if n.kind == pEmpty {
		*n = *t
		return nil
	}
	if n.grouped {
		n.toApp(t)
		return nil
	}
	switch n.kind {
	case pAbs:
		if n.complete {
			n.toApp(t)
		} else if n.body == nil {
			n.body = t
		} else {
			return n.body.combine(t)
		}
	case pIf:
		switch {
		case n.cond == nil:
			n.cond = t
		case n.thenN == nil:
			n.thenN = t
		case n.elseN == nil:
			n.elseN = t
		default:
			// The else-branch is a full statement: it keeps absorbing
			// terms until a closing delimiter ends the conditional.
			return n.elseN.combine(t)
		}
	case pSucc, pPred, pIsZero, pRef, pDeref, pFix:
		if n.arg == nil {
			n.arg = t
		} else {
			n.toApp(t)
		}
	case pRecord:
		if n.pendingLabel != "" {
			if slices.IndexFunc(n.fields, func(f pfield) bool { return f.label == n.pendingLabel }) >= 0 {
				return &ParseError{Msg: fmt.Sprintf("repeated record label %q", n.pendingLabel)}
			}
			n.fields = append(n.fields, pfield{n.pendingLabel, t})
			n.pendingLabel = ""
		} else {
			n.toApp(t)
		}
	case pLet:
		if n.complete {
			n.toApp(t)
		} else if n.lhs == nil {
			n.lhs = t
		} else if n.rhs == nil {
			n.rhs = t
		} else {
			return n.rhs.combine(t)
		}
	case pAssign, pSeq:
		if n.rhs == nil {
			n.rhs = t
		} else {
			return n.rhs.combine(t)
		}
	default:
		// Variables, constants, applications, projections and closed
		// records all act as completed terms.
		n.toApp(t)
	}
	return nil
}

func (n *pnode) toApp(t *pnode) {
	lhs := *n
	*n = pnode{kind: pApp, lhs: &lhs, rhs: t}
}

// projectLast wraps the most recently parsed atom inside n in a
// projection, so `succ r.x` reads the field before applying succ while
// `(succ r).x` projects out of the grouped term.
func projectLast(n *pnode, label string) error {
	wrap := func() {
		inner := *n
		*n = pnode{kind: pProj, arg: &inner, label: label}
	}
	if n.kind == pEmpty {
		return &ParseError{Msg: "unexpected '.'"}
	}
	if n.grouped {
		wrap()
		return nil
	}
	switch n.kind {
	case pVar, pTrue, pFalse, pZero, pUnit, pProj:
		wrap()
	case pRecord:
		if !n.complete {
			return &ParseError{Msg: "unexpected '.'"}
		}
		wrap()
	case pApp:
		return projectLast(n.rhs, label)
	case pAbs:
		if n.complete {
			wrap()
			return nil
		}
		if n.body == nil {
			return &ParseError{Msg: "unexpected '.'"}
		}
		return projectLast(n.body, label)
	case pSucc, pPred, pIsZero, pRef, pDeref, pFix:
		if n.arg == nil {
			return &ParseError{Msg: "unexpected '.'"}
		}
		return projectLast(n.arg, label)
	case pIf:
		if n.elseN == nil {
			return &ParseError{Msg: "unexpected '.'"}
		}
		return projectLast(n.elseN, label)
	case pLet:
		if n.complete {
			wrap()
			return nil
		}
		if n.rhs == nil {
			return &ParseError{Msg: "unexpected '.'"}
		}
		return projectLast(n.rhs, label)
	case pAssign, pSeq:
		if n.rhs == nil {
			return &ParseError{Msg: "unexpected '.'"}
		}
		return projectLast(n.rhs, label)
	default:
		return &ParseError{Msg: "unexpected '.'"}
	}
	return nil
}

// assignWrap turns the application parsed so far into the left-hand side
// of an assignment. The interesting part is finding that application: ':='
// reaches inside open binder bodies and sequence tails, but treats grouped
// terms, full applications and saturated prefix operators as atoms.
func assignWrap(n *pnode) error {
	wrap := func() {
		lhs := *n
		*n = pnode{kind: pAssign, lhs: &lhs}
	}
	if n.kind == pEmpty {
		return &ParseError{Msg: "unexpected ':='"}
	}
	if n.grouped {
		wrap()
		return nil
	}
	switch n.kind {
	case pAbs:
		if n.complete {
			wrap()
			return nil
		}
		if n.body == nil {
			return &ParseError{Msg: "unexpected ':='"}
		}
		return assignWrap(n.body)
	case pLet:
		if n.complete {
			wrap()
			return nil
		}
		if n.rhs == nil {
			return &ParseError{Msg: "unexpected ':='"}
		}
		return assignWrap(n.rhs)
	case pIf:
		if n.elseN == nil {
			return &ParseError{Msg: "unexpected ':='"}
		}
		return assignWrap(n.elseN)
	case pSeq, pAssign:
		if n.rhs == nil {
			return &ParseError{Msg: "unexpected ':='"}
		}
		return assignWrap(n.rhs)
	case pSucc, pPred, pIsZero, pRef, pDeref, pFix:
		if n.arg == nil {
			return &ParseError{Msg: "unexpected ':='"}
		}
		wrap()
	default:
		wrap()
	}
	return nil
}

// seqWrap opens the right-hand slot of a sequence at the current nesting
// level; chained ';' therefore associates to the right.
func seqWrap(n *pnode) error {
	if n.kind == pEmpty {
		return &ParseError{Msg: "unexpected ';'"}
	}
	if n.kind == pSeq && !n.grouped {
		cur := n
		for cur.rhs != nil && cur.rhs.kind == pSeq && !cur.rhs.grouped {
			cur = cur.rhs
		}
		if cur.rhs == nil {
			return &ParseError{Msg: "unexpected ';'"}
		}
		inner := cur.rhs
		cur.rhs = &pnode{kind: pSeq, lhs: inner}
		return nil
	}
	lhs := *n
	*n = pnode{kind: pSeq, lhs: &lhs}
	return nil
}

// finalize converts the surviving builder node into the immutable AST,
// rejecting anything structurally incomplete.
func finalize(n *pnode) (Term, error) {
	switch n.kind {
	case pEmpty:
		return nil, &ParseError{Msg: "empty term"}
	case pVar:
		return Var{Name: n.name, Index: n.index}, nil
	case pTrue:
		return True{}, nil
	case pFalse:
		return False{}, nil
	case pZero:
		return Zero{}, nil
	case pUnit:
		return UnitVal{}, nil
	case pAbs:
		if n.body == nil {
			return nil, &ParseError{Msg: "λ without a body"}
		}
		body, err := finalize(n.body)
		if err != nil {
			return nil, err
		}
		return Abs{Param: n.param, ParamType: n.paramType, Body: body}, nil
	case pApp:
		fn, err := finalize(n.lhs)
		if err != nil {
			return nil, err
		}
		arg, err := finalize(n.rhs)
		if err != nil {
			return nil, err
		}
		return App{Fn: fn, Arg: arg}, nil
	case pIf:
		if n.cond == nil || n.thenN == nil || n.elseN == nil {
			return nil, &ParseError{Msg: "'if' without 'then' or 'else'"}
		}
		cond, err := finalize(n.cond)
		if err != nil {
			return nil, err
		}
		thn, err := finalize(n.thenN)
		if err != nil {
			return nil, err
		}
		els, err := finalize(n.elseN)
		if err != nil {
			return nil, err
		}
		return If{Cond: cond, Then: thn, Else: els}, nil
	case pSucc, pPred, pIsZero, pRef, pDeref, pFix:
		if n.arg == nil {
			return nil, &ParseError{Msg: "prefix operator without an argument"}
		}
		arg, err := finalize(n.arg)
		if err != nil {
			return nil, err
		}
		switch n.kind {
		case pSucc:
			return Succ{arg}, nil
		case pPred:
			return Pred{arg}, nil
		case pIsZero:
			return IsZero{arg}, nil
		case pRef:
			return Ref{arg}, nil
		case pDeref:
			return Deref{arg}, nil
		default:
			return Fix{arg}, nil
		}
	case pRecord:
		if len(n.fields) == 0 || n.pendingLabel != "" || !n.complete {
			return nil, &ParseError{Msg: "malformed record"}
		}
		fields := make([]Field, len(n.fields))
		for i, f := range n.fields {
			term, err := finalize(f.value)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Label: f.label, Term: term}
		}
		return Record{Fields: fields}, nil
	case pProj:
		arg, err := finalize(n.arg)
		if err != nil {
			return nil, err
		}
		return Proj{Arg: arg, Label: n.label}, nil
	case pLet:
		if n.lhs == nil || n.rhs == nil {
			return nil, &ParseError{Msg: "'let' without '=' or 'in'"}
		}
		bound, err := finalize(n.lhs)
		if err != nil {
			return nil, err
		}
		body, err := finalize(n.rhs)
		if err != nil {
			return nil, err
		}
		return Let{Name: n.letName, Bound: bound, Body: body}, nil
	case pAssign:
		if n.lhs == nil || n.rhs == nil {
			return nil, &ParseError{Msg: "':=' without a right-hand side"}
		}
		lhs, err := finalize(n.lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := finalize(n.rhs)
		if err != nil {
			return nil, err
		}
		return Assign{LHS: lhs, RHS: rhs}, nil
	case pSeq:
		if n.lhs == nil || n.rhs == nil {
			return nil, &ParseError{Msg: "';' without a right-hand side"}
		}
		first, err := finalize(n.lhs)
		if err != nil {
			return nil, err
		}
		second, err := finalize(n.rhs)
		if err != nil {
			return nil, err
		}
		return Seq{First: first, Second: second}, nil
	}
	return nil, &ParseError{Msg: "invalid term"}
}

// ───────────────────────── type expressions ─────────────────────────

// parseLambdaType parses the parameter type of a lambda, consuming the
// '.' that separates it from the body.
func (p *Parser) parseLambdaType() (*Type, error) {
	ty, dot, err := p.parseTypeSeq()
	if err != nil {
		return nil, err
	}
	if !dot {
		return nil, &ParseError{Msg: "expected '.' after parameter type"}
	}
	return ty, nil
}

// parseTypeSeq parses arrow-separated type atoms and folds them to the
// right. It stops either by consuming a '.' (reported through the bool)
// or by putting back a ')', '}' or ','. 'Ref' swallows the remainder of
// the sequence, so Ref Bool -> Nat reads as Ref (Bool -> Nat).
func (p *Parser) parseTypeSeq() (*Type, bool, error) {
	var parts []*Type
	for {
		tok, err := p.next()
		if err != nil {
			return nil, false, err
		}
		switch tok.Type {
		case TokBoolType:
			parts = append(parts, p.cat.Bool())
		case TokNatType:
			parts = append(parts, p.cat.Nat())
		case TokUnitType:
			parts = append(parts, p.cat.Unit())
		case TokLParen:
			inner, dot, err := p.parseTypeSeq()
			if err != nil {
				return nil, false, err
			}
			if dot {
				return nil, false, &ParseError{Msg: "unexpected '.' in type"}
			}
			if _, err := p.needToken(TokRParen, "expected ')' in type"); err != nil {
				return nil, false, err
			}
			parts = append(parts, inner)
		case TokLBrace:
			rec, err := p.parseRecordType()
			if err != nil {
				return nil, false, err
			}
			parts = append(parts, rec)
		case TokRefType:
			inner, dot, err := p.parseTypeSeq()
			if err != nil {
				return nil, false, err
			}
			parts = append(parts, p.cat.Ref(inner))
			return foldArrows(p.cat, parts), dot, nil
		default:
			return nil, false, &ParseError{Msg: fmt.Sprintf("unexpected token %s in type", tok)}
		}

		sep, err := p.next()
		if err != nil {
			return nil, false, err
		}
		switch sep.Type {
		case TokDot:
			return foldArrows(p.cat, parts), true, nil
		case TokRParen, TokRBrace, TokComma:
			p.lex.PutBack()
			return foldArrows(p.cat, parts), false, nil
		case TokArrow:
			// next atom
		default:
			return nil, false, &ParseError{Msg: fmt.Sprintf("unexpected token %s in type", sep)}
		}
	}
}

// parseRecordType parses the fields of a record type; the opening '{' has
// already been consumed.
func (p *Parser) parseRecordType() (*Type, error) {
	var fields []TypeField
	for {
		idTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if idTok.Type == TokRBrace && len(fields) == 0 {
			return nil, &ParseError{Msg: "record type must have at least one field"}
		}
		if idTok.Type != TokID {
			return nil, &ParseError{Msg: fmt.Sprintf("expected field label in record type, got %s", idTok)}
		}
		if slices.IndexFunc(fields, func(f TypeField) bool { return f.Label == idTok.Text }) >= 0 {
			return nil, &ParseError{Msg: fmt.Sprintf("repeated record label %q", idTok.Text)}
		}
		if _, err := p.needToken(TokColon, "expected ':' in record type"); err != nil {
			return nil, err
		}
		ft, dot, err := p.parseTypeSeq()
		if err != nil {
			return nil, err
		}
		if dot {
			return nil, &ParseError{Msg: "unexpected '.' in record type"}
		}
		fields = append(fields, TypeField{Label: idTok.Text, Type: ft})

		sep, err := p.next()
		if err != nil {
			return nil, err
		}
		switch sep.Type {
		case TokRBrace:
			return p.cat.Record(fields), nil
		case TokComma:
			// next field
		default:
			return nil, &ParseError{Msg: fmt.Sprintf("unexpected token %s in record type", sep)}
		}
	}
}

// foldArrows combines the atoms of an arrow chain right-associatively.
func foldArrows(cat *Catalog, parts []*Type) *Type {
	t := parts[len(parts)-1]
	for i := len(parts) - 2; i >= 0; i-- {
		t = cat.Function(parts[i], t)
	}
	return t
}
