// eval_test.go
package lamina

import (
	"errors"
	"testing"
)

// evalResult runs one program through a fresh interpreter and returns the
// rendered value and type.
func evalResult(t *testing.T, src string) Result {
	t.Helper()
	ip := New()
	res, err := ip.Interpret(src)
	if err != nil {
		t.Fatalf("Interpret(%q): %v", src, err)
	}
	return res
}

func Test_Eval_EndToEnd(t *testing.T) {
	tests := []struct {
		src       string
		wantValue string
		wantType  string
	}{
		{"true", "true", "Bool"},
		{"false", "false", "Bool"},
		{"0", "0", "Nat"},
		{"unit", "unit", "Unit"},

		{"if false then true else false", "false", "Bool"},
		{"if true then false else true", "false", "Bool"},
		{"if if true then false else true then true else false", "false", "Bool"},
		{"if false then true else 0", "0", "Top"},
		{"if false then true else succ 0", "1", "Top"},
		{"if false then true else succ succ 0", "2", "Top"},

		{"(l x:Nat. x) succ 0", "1", "Nat"},
		{"(l x:Nat. succ x) succ 0", "2", "Nat"},
		{"(l x:Bool. x) true", "true", "Bool"},
		{"(l x:Bool. x) if false then true else false", "false", "Bool"},
		{"(l x:Bool. if x then true else false) true", "true", "Bool"},
		{"(l x:Bool. if x then true else false) false", "false", "Bool"},
		{"(l x:Nat. succ succ x) 0", "2", "Nat"},
		{"(l x:Nat. succ succ x) succ 0", "3", "Nat"},

		{"pred succ 0", "0", "Nat"},
		{"pred 0", "0", "Nat"},
		{"iszero 0", "true", "Bool"},
		{"iszero pred succ succ 0", "false", "Bool"},

		{"{x=0}.x", "0", "Nat"},
		{"{x=0, y=true}.y", "true", "Bool"},
		{"{x=0, y=l x:Nat. x}.y", "λ x:Nat. x", "(Nat -> Nat)"},
		{"((l r:{x:Nat}. r) {x=succ 0}).x", "1", "Nat"},
		{"{x=pred succ 0, y=if true then false else true}.y", "false", "Bool"},
		{"(l r:{x:Nat}. r.x) {x=succ 0}", "1", "Nat"},
		{"(l r:{x:Nat}. succ r.x) {x=succ 0, y=true}", "2", "Nat"},
		{"(l r:{a:{x:Nat}}. r.a.x) {a={x=succ 0, y=true}, b=false}", "1", "Nat"},
		{"{x=true}", "{x=true}", "{x:Bool}"},
		{"{x=unit}", "{x=unit}", "{x:Unit}"},

		{"let x = true in x", "true", "Bool"},
		{"let x = true in l y:Nat. x", "λ y:Nat. true", "(Nat -> Bool)"},
		{"(l y:Nat. (let x = succ y in succ x)) 0", "2", "Nat"},
		{"(l y:Nat. (let x = succ y in if iszero y then succ x else y)) 0", "2", "Nat"},
		{"(l y:Nat. (let x = succ y in if iszero y then succ x else y)) succ 0", "1", "Nat"},

		{"ref 0", "l[0]", "Ref Nat"},
		{"ref succ 0", "l[0]", "Ref Nat"},
		{"ref true", "l[0]", "Ref Bool"},
		{"ref pred succ 0", "l[0]", "Ref Nat"},
		{"ref if true then 0 else succ 0", "l[0]", "Ref Nat"},
		{"ref l x:Nat. x", "l[0]", "Ref (Nat -> Nat)"},
		{"let x = ref true in let y = ref 0 in false", "false", "Bool"},

		{"!ref unit", "unit", "Unit"},
		{"!ref succ 0", "1", "Nat"},
		{"!ref l x:Nat. x", "λ x:Nat. x", "(Nat -> Nat)"},
		{"!ref l x:Nat. !ref l y:Bool. y", "λ x:Nat. !ref (λ y:Bool. y)", "(Nat -> (Bool -> Bool))"},

		{"let x = ref 0 in let y = x in !x", "0", "Nat"},
		{"let x = ref succ 0 in let y = x in !y", "1", "Nat"},
		{"(l x:Ref Nat. !x) ref 0", "0", "Nat"},
		{"let x = ref 0 in ((l y:Unit. !x) (x := succ 0))", "1", "Nat"},

		{"(!ref {x=succ 0, y=unit}).x", "1", "Nat"},
		{"(!ref {x=succ 0, y=unit}).y", "unit", "Unit"},
		{"(!ref {y=unit, x={a=succ 0, b=false}}).x.b", "false", "Bool"},

		{"let x = ref {a=0, b=false} in ((l y:Unit. ((!x).a)) (x := {a=succ 0, b=false}))", "1", "Nat"},
		{"let x = ref {a=0, b=false} in ((l y:Unit. ((!x).a)) (x := {b=false, a=succ 0}))", "1", "Nat"},

		{"let x = ref 0 in ((x := succ (!x)); (x := pred (!x)); !x)", "0", "Nat"},
		{"let x = ref 0 in ((x := succ (!x)); (x := succ (!x)); !x)", "2", "Nat"},

		{"((let x = ref 0 in {get = l y:Unit. !x, inc = l y:Unit. ((x := succ (!x)); !x)}).inc) unit", "1", "Nat"},
		{"((let x = ref 0 in {get = l y:Unit. !x, inc = l y:Unit. ((x := succ (!x)); !x)}).get) unit", "0", "Nat"},

		{"(fix l ie:Nat -> Bool. l x:Nat. if iszero x then true else if iszero (pred x) then false else ie (pred (pred x))) succ succ succ succ 0",
			"true", "Bool"},
		{"(fix l ie:Nat -> Bool. l x:Nat. if iszero x then true else if iszero (pred x) then false else ie (pred (pred x))) succ succ succ 0",
			"false", "Bool"},
	}

	for _, tc := range tests {
		res := evalResult(t, tc.src)
		if res.Value != tc.wantValue || res.Type.String() != tc.wantType {
			t.Errorf("Interpret(%q) = %q : %q, want %q : %q",
				tc.src, res.Value, res.Type, tc.wantValue, tc.wantType)
		}
	}
}

func Test_Eval_IllTypedProgramsAreNotEvaluated(t *testing.T) {
	ip := New()
	res, err := ip.Interpret("(l x:Bool. x) x")
	if err != nil {
		t.Fatalf("type errors are values, not errors: %v", err)
	}
	if !res.Type.IsIllTyped() {
		t.Fatalf("want Ⱦ, got %s", res.Type)
	}
	// The residual is the parsed term, untouched by the evaluator.
	if res.Value != "(λ x:Bool. x) x" {
		t.Fatalf("want the unevaluated term back, got %q", res.Value)
	}
}

func Test_Eval_IllTypedApplication(t *testing.T) {
	ip := New()
	res, err := ip.Interpret("(l x:Bool. x) if false then true else l x:Bool. x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Type.IsIllTyped() {
		t.Fatalf("branch join (Bool -> Bool) vs Bool is Top; application must be ill-typed, got %s", res.Type)
	}
}

func Test_Eval_StoreAllocationOrder(t *testing.T) {
	c := NewCatalog()
	term, err := Parse("let x = ref true in let y = ref 0 in y", c)
	if err != nil {
		t.Fatal(err)
	}
	ev := NewEvaluator()
	out, err := ev.Eval(term)
	if err != nil {
		t.Fatal(err)
	}
	loc, ok := out.(Loc)
	if !ok {
		t.Fatalf("want a location, got %s", FormatTerm(out))
	}
	if loc.ID != 1 {
		t.Fatalf("second allocation should be l[1], got l[%d]", loc.ID)
	}
	if ev.Store().Len() != 2 {
		t.Fatalf("want 2 cells, got %d", ev.Store().Len())
	}
	if !TermEqual(ev.Store().Read(0), True{}) {
		t.Fatalf("cell 0 should hold true")
	}
	if !TermEqual(ev.Store().Read(1), Zero{}) {
		t.Fatalf("cell 1 should hold 0")
	}
}

func Test_Eval_AssignmentWritesThrough(t *testing.T) {
	c := NewCatalog()
	term, err := Parse("let x = ref 0 in x := succ 0", c)
	if err != nil {
		t.Fatal(err)
	}
	ev := NewEvaluator()
	out, err := ev.Eval(term)
	if err != nil {
		t.Fatal(err)
	}
	if !TermEqual(out, UnitVal{}) {
		t.Fatalf("assignment evaluates to unit, got %s", FormatTerm(out))
	}
	if !TermEqual(ev.Store().Read(0), Succ{Zero{}}) {
		t.Fatalf("cell 0 should hold succ 0")
	}
}

func Test_Eval_StoresAreNotShared(t *testing.T) {
	ip := New()
	for i := 0; i < 3; i++ {
		res, err := ip.Interpret("ref 0")
		if err != nil {
			t.Fatal(err)
		}
		if res.Value != "l[0]" {
			t.Fatalf("run %d: each Interpret call owns a fresh store, got %q", i, res.Value)
		}
	}
}

func Test_Eval_StepLimit(t *testing.T) {
	ip := New()
	ip.MaxSteps = 64
	_, err := ip.Interpret("fix l x:Nat. x")
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("want ErrStepLimit, got %v", err)
	}
}

func Test_Eval_SubjectReduction(t *testing.T) {
	// Stepping never makes a well-typed, store-free term less typed: the
	// type of the redex stays a subtype of the type of the original.
	srcs := []string{
		"(l x:Nat. succ x) succ 0",
		"if false then true else succ succ 0",
		"(l r:{x:Nat}. r.x) {x=succ 0}",
		"let x = true in if x then 0 else succ 0",
		"(fix l ie:Nat -> Bool. l x:Nat. if iszero x then true else if iszero (pred x) then false else ie (pred (pred x))) succ succ 0",
	}
	for _, src := range srcs {
		c := NewCatalog()
		tc := NewChecker(c)
		term, err := Parse(src, c)
		if err != nil {
			t.Fatal(err)
		}
		prev := tc.TypeOf(term)
		ev := NewEvaluator()
		for {
			next, err := ev.step(term)
			if err != nil {
				break
			}
			ty := tc.TypeOf(next)
			if !c.Subtype(ty, prev) {
				t.Fatalf("%q: step changed type from %s to unrelated %s at %s",
					src, prev, ty, FormatTerm(next))
			}
			prev = ty
			term = next
		}
		if !IsValue(term) {
			t.Fatalf("%q: reduction stopped at a non-value %s", src, FormatTerm(term))
		}
	}
}

func Test_Eval_NumericValueDetection(t *testing.T) {
	if !IsNumericValue(Succ{Succ{Zero{}}}) {
		t.Fatalf("succ succ 0 is a numeric value")
	}
	if IsNumericValue(Succ{True{}}) {
		t.Fatalf("succ true is not a numeric value")
	}
	if n, ok := NatValue(Succ{Succ{Succ{Zero{}}}}); !ok || n != 3 {
		t.Fatalf("want 3, got %d (%v)", n, ok)
	}
}

func Test_Eval_CloneIsDeep(t *testing.T) {
	orig := Record{[]Field{{"a", Succ{Zero{}}}, {"b", Abs{"x", NewCatalog().Bool(), Var{"x", 0}}}}}
	cp := Clone(orig).(Record)
	if !TermEqual(orig, cp) {
		t.Fatalf("clone must be structurally equal")
	}
	cp.Fields[0] = Field{"a", Zero{}}
	if !TermEqual(orig.Fields[0].Term, Succ{Zero{}}) {
		t.Fatalf("clone must not share field storage with the original")
	}
}

func Test_Eval_ShiftAndSubst(t *testing.T) {
	// shift(2, 0) on λ. 0 1 bumps only the free variable.
	term := Abs{"x", NewCatalog().Bool(), App{Var{"x", 0}, Var{"y", 1}}}
	shifted := Shift(2, 0, term).(Abs)
	if shifted.Body.(App).Fn.(Var).Index != 0 {
		t.Fatalf("bound variable must not shift")
	}
	if shifted.Body.(App).Arg.(Var).Index != 3 {
		t.Fatalf("free variable should shift by 2 under one binder")
	}

	// β-reduction via SubstTop: (λ. 0) v.
	v := Succ{Zero{}}
	body := Var{"x", 0}
	if !TermEqual(SubstTop(v, body), v) {
		t.Fatalf("substituting the bound variable yields the argument")
	}
}

func Test_Eval_AssignStepsRHSFirst(t *testing.T) {
	ev := NewEvaluator()
	term := Term(Assign{LHS: Ref{Zero{}}, RHS: Succ{Pred{Zero{}}}})

	next, err := ev.step(term)
	if err != nil {
		t.Fatal(err)
	}
	// The right-hand side reduces before the left allocates.
	if !TermEqual(next, Assign{Ref{Zero{}}, Succ{Zero{}}}) {
		t.Fatalf("first step should reduce the right-hand side, got %s", FormatTerm(next))
	}
	if ev.Store().Len() != 0 {
		t.Fatalf("no allocation may happen before the RHS is a value")
	}

	next, err = ev.step(next)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := next.(Assign).LHS.(Loc); !ok {
		t.Fatalf("second step should allocate the target cell, got %s", FormatTerm(next))
	}

	out, err := ev.Eval(next)
	if err != nil {
		t.Fatal(err)
	}
	if !TermEqual(out, UnitVal{}) {
		t.Fatalf("assignment produces unit, got %s", FormatTerm(out))
	}
	if !TermEqual(ev.Store().Read(0), Succ{Zero{}}) {
		t.Fatalf("the written value should be succ 0")
	}
}
