// eval.go
//
// The Lamina evaluator: small-step, call-by-value, with a store backing
// ref cells. A single step either rewrites the term or reports that no
// rule applies; the driver loops on the step function until it sees that
// signal, so termination detection is an explicit value rather than a
// caught exception.
//
// The store is owned by one Evaluator and lives for one top-level
// evaluation. Locations are integers handed out in allocation order and
// never reclaimed.
package lamina

import "errors"

// errNoRule is the explicit "no step applies" signal from step.
var errNoRule = errors.New("no rule applies")

// ErrStepLimit reports that an advisory step budget was exhausted before
// evaluation finished.
var ErrStepLimit = errors.New("step_limit_exceeded")

// Store maps locations to values, append-only.
type Store struct {
	cells []Term
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Alloc places v in a fresh cell and returns its location.
func (s *Store) Alloc(v Term) int {
	s.cells = append(s.cells, v)
	return len(s.cells) - 1
}

// Read returns the value at location l. A location outside the store is
// unreachable from well-typed source and from the evaluator's own
// allocation discipline; reading one is a program bug.
func (s *Store) Read(l int) Term {
	if l < 0 || l >= len(s.cells) {
		panic("store: read of unknown location")
	}
	return s.cells[l]
}

// Write overwrites the cell at location l.
func (s *Store) Write(l int, v Term) {
	if l < 0 || l >= len(s.cells) {
		panic("store: write to unknown location")
	}
	s.cells[l] = v
}

// Len reports how many cells have been allocated.
func (s *Store) Len() int { return len(s.cells) }

// Evaluator drives small-step reduction over one store.
type Evaluator struct {
	store    *Store
	MaxSteps int // 0 means no budget
}

// NewEvaluator returns an evaluator with a fresh store and no step budget.
func NewEvaluator() *Evaluator {
	return &Evaluator{store: NewStore()}
}

// Store exposes the evaluator's store, mostly for tests.
func (e *Evaluator) Store() *Store { return e.store }

// Eval reduces t until no rule applies. The result may be a value or a
// stuck residual; the caller distinguishes with IsValue. The only error
// is ErrStepLimit when a step budget is configured and exhausted.
func (e *Evaluator) Eval(t Term) (Term, error) {
	for steps := 0; ; steps++ {
		if e.MaxSteps > 0 && steps >= e.MaxSteps {
			return t, ErrStepLimit
		}
		next, err := e.step(t)
		if err != nil {
			return t, nil
		}
		t = next
	}
}

// step applies the first matching single-step rule.
func (e *Evaluator) step(t Term) (Term, error) {
	switch t := t.(type) {
	case App:
		if abs, ok := t.Fn.(Abs); ok && IsValue(t.Arg) {
			return SubstTop(t.Arg, abs.Body), nil
		}
		if IsValue(t.Fn) {
			arg, err := e.step(t.Arg)
			if err != nil {
				return nil, err
			}
			return App{t.Fn, arg}, nil
		}
		fn, err := e.step(t.Fn)
		if err != nil {
			return nil, err
		}
		return App{fn, t.Arg}, nil

	case If:
		switch t.Cond.(type) {
		case True:
			return t.Then, nil
		case False:
			return t.Else, nil
		}
		cond, err := e.step(t.Cond)
		if err != nil {
			return nil, err
		}
		return If{cond, t.Then, t.Else}, nil

	case Succ:
		arg, err := e.step(t.Arg)
		if err != nil {
			return nil, err
		}
		return Succ{arg}, nil

	case Pred:
		if _, ok := t.Arg.(Zero); ok {
			return Zero{}, nil
		}
		if succ, ok := t.Arg.(Succ); ok && IsNumericValue(succ.Arg) {
			return succ.Arg, nil
		}
		arg, err := e.step(t.Arg)
		if err != nil {
			return nil, err
		}
		return Pred{arg}, nil

	case IsZero:
		if _, ok := t.Arg.(Zero); ok {
			return True{}, nil
		}
		if succ, ok := t.Arg.(Succ); ok && IsNumericValue(succ.Arg) {
			return False{}, nil
		}
		arg, err := e.step(t.Arg)
		if err != nil {
			return nil, err
		}
		return IsZero{arg}, nil

	case Record:
		for i, f := range t.Fields {
			if IsValue(f.Term) {
				continue
			}
			stepped, err := e.step(f.Term)
			if err != nil {
				return nil, err
			}
			fields := make([]Field, len(t.Fields))
			copy(fields, t.Fields)
			fields[i] = Field{f.Label, stepped}
			return Record{fields}, nil
		}
		return nil, errNoRule

	case Proj:
		if rec, ok := t.Arg.(Record); ok && IsValue(rec) {
			for _, f := range rec.Fields {
				if f.Label == t.Label {
					return f.Term, nil
				}
			}
			return nil, errNoRule
		}
		arg, err := e.step(t.Arg)
		if err != nil {
			return nil, err
		}
		return Proj{arg, t.Label}, nil

	case Let:
		if IsValue(t.Bound) {
			return SubstTop(t.Bound, t.Body), nil
		}
		bound, err := e.step(t.Bound)
		if err != nil {
			return nil, err
		}
		return Let{t.Name, bound, t.Body}, nil

	case Ref:
		if IsValue(t.Arg) {
			return Loc{ID: e.store.Alloc(t.Arg)}, nil
		}
		arg, err := e.step(t.Arg)
		if err != nil {
			return nil, err
		}
		return Ref{arg}, nil

	case Deref:
		if loc, ok := t.Arg.(Loc); ok {
			return e.store.Read(loc.ID), nil
		}
		arg, err := e.step(t.Arg)
		if err != nil {
			return nil, err
		}
		return Deref{arg}, nil

	case Assign:
		if loc, ok := t.LHS.(Loc); ok && IsValue(t.RHS) {
			e.store.Write(loc.ID, t.RHS)
			return UnitVal{}, nil
		}
		if !IsValue(t.RHS) {
			rhs, err := e.step(t.RHS)
			if err != nil {
				return nil, err
			}
			return Assign{t.LHS, rhs}, nil
		}
		lhs, err := e.step(t.LHS)
		if err != nil {
			return nil, err
		}
		return Assign{lhs, t.RHS}, nil

	case Seq:
		if _, ok := t.First.(UnitVal); ok {
			return t.Second, nil
		}
		first, err := e.step(t.First)
		if err != nil {
			return nil, err
		}
		return Seq{first, t.Second}, nil

	case Fix:
		if abs, ok := t.Arg.(Abs); ok {
			return SubstTop(t, abs.Body), nil
		}
		arg, err := e.step(t.Arg)
		if err != nil {
			return nil, err
		}
		return Fix{arg}, nil
	}
	return nil, errNoRule
}

// IsNumericValue reports whether t matches nv ::= 0 | succ nv.
func IsNumericValue(t Term) bool {
	switch t := t.(type) {
	case Zero:
		return true
	case Succ:
		return IsNumericValue(t.Arg)
	default:
		return false
	}
}

// IsValue reports whether t is a value: a lambda, a constant, a numeric
// value, a record of values, or a location.
func IsValue(t Term) bool {
	switch t := t.(type) {
	case Abs, True, False, UnitVal, Loc:
		return true
	case Record:
		for _, f := range t.Fields {
			if !IsValue(f.Term) {
				return false
			}
		}
		return true
	default:
		return IsNumericValue(t)
	}
}
