// checker.go
//
// The Lamina type checker. TypeOf is total: it never fails, it answers Ⱦ.
// Ill-typedness propagates as a value through the typing rules, which
// keeps every rule a plain function from context and term to type.
//
// The context is a sequence of (name, type) bindings indexed from the
// innermost binder, in lockstep with the de Bruijn indices the parser
// assigned. A variable whose index points outside the context — in
// particular every free variable — has no type.
package lamina

// Binding is one entry of a typing context.
type Binding struct {
	Name string
	Type *Type
}

// Checker computes types against one catalog.
type Checker struct {
	cat *Catalog
}

// NewChecker returns a checker interning into cat.
func NewChecker(cat *Catalog) *Checker {
	return &Checker{cat: cat}
}

// TypeOf computes the type of a closed term.
func (tc *Checker) TypeOf(t Term) *Type {
	return tc.typeOf(nil, t)
}

func (tc *Checker) typeOf(ctx []Binding, t Term) *Type {
	ill := tc.cat.IllTyped()

	switch t := t.(type) {
	case True, False:
		return tc.cat.Bool()
	case Zero:
		return tc.cat.Nat()
	case UnitVal:
		return tc.cat.Unit()

	case Var:
		if t.Index >= 0 && t.Index < len(ctx) && ctx[t.Index].Name == t.Name {
			return ctx[t.Index].Type
		}
		return ill

	case Abs:
		bodyType := tc.typeOf(extend(ctx, t.Param, t.ParamType), t.Body)
		if bodyType.IsIllTyped() {
			return ill
		}
		return tc.cat.Function(t.ParamType, bodyType)

	case App:
		fnType := tc.typeOf(ctx, t.Fn)
		argType := tc.typeOf(ctx, t.Arg)
		if fnType.IsFunction() && tc.cat.Subtype(argType, fnType.Dom()) {
			return fnType.Cod()
		}
		return ill

	case If:
		if !tc.cat.Subtype(tc.typeOf(ctx, t.Cond), tc.cat.Bool()) {
			return ill
		}
		return tc.cat.Join(tc.typeOf(ctx, t.Then), tc.typeOf(ctx, t.Else))

	case Succ:
		if tc.cat.Subtype(tc.typeOf(ctx, t.Arg), tc.cat.Nat()) {
			return tc.cat.Nat()
		}
		return ill
	case Pred:
		if tc.cat.Subtype(tc.typeOf(ctx, t.Arg), tc.cat.Nat()) {
			return tc.cat.Nat()
		}
		return ill
	case IsZero:
		if tc.cat.Subtype(tc.typeOf(ctx, t.Arg), tc.cat.Nat()) {
			return tc.cat.Bool()
		}
		return ill

	case Record:
		fields := make([]TypeField, len(t.Fields))
		for i, f := range t.Fields {
			ft := tc.typeOf(ctx, f.Term)
			if ft.IsIllTyped() {
				return ill
			}
			fields[i] = TypeField{Label: f.Label, Type: ft}
		}
		return tc.cat.Record(fields)

	case Proj:
		recType := tc.typeOf(ctx, t.Arg)
		if recType.IsRecord() {
			if ft, ok := recType.FieldType(t.Label); ok {
				return ft
			}
		}
		return ill

	case Let:
		boundType := tc.typeOf(ctx, t.Bound)
		if boundType.IsIllTyped() {
			return ill
		}
		return tc.typeOf(extend(ctx, t.Name, boundType), t.Body)

	case Ref:
		inner := tc.typeOf(ctx, t.Arg)
		if inner.IsIllTyped() {
			return ill
		}
		return tc.cat.Ref(inner)

	case Deref:
		refType := tc.typeOf(ctx, t.Arg)
		if refType.IsRef() {
			return refType.Inner()
		}
		return ill

	case Assign:
		lhsType := tc.typeOf(ctx, t.LHS)
		if lhsType.IsRef() && tc.cat.Subtype(tc.typeOf(ctx, t.RHS), lhsType.Inner()) {
			return tc.cat.Unit()
		}
		return ill

	case Seq:
		if tc.cat.Subtype(tc.typeOf(ctx, t.First), tc.cat.Unit()) {
			return tc.typeOf(ctx, t.Second)
		}
		return ill

	case Fix:
		fnType := tc.typeOf(ctx, t.Arg)
		if fnType.IsFunction() && fnType.Dom() == fnType.Cod() {
			return fnType.Cod()
		}
		return ill

	case Loc:
		// Locations have no source syntax; the static checker never
		// derives a type for them.
		return ill
	}
	return ill
}

func extend(ctx []Binding, name string, ty *Type) []Binding {
	out := make([]Binding, 0, len(ctx)+1)
	out = append(out, Binding{Name: name, Type: ty})
	return append(out, ctx...)
}
