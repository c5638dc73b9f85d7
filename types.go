// types.go
//
// Lamina type catalog: hash-consed types with structural subtyping.
//
// Every type in a running interpreter is an interned *Type owned by a
// Catalog. Structurally equal types share one instance, so type equality
// is pointer equality everywhere in the checker and the evaluator. The
// catalog grows monotonically; canonical instances are never revised.
//
// The catalog also owns the subtyping relation (S <: T), the join
// (least upper bound) used to unify the arms of a conditional, and the
// meet (greatest lower bound) needed for the contravariant domain
// component of a function join.
//
// Shape of the lattice:
//   - Top is the maximum; every well-formed type is a subtype of Top.
//   - Functions are contravariant in the domain, covariant in the codomain.
//   - Records admit width, depth, and permutation subtyping.
//   - Ref T is invariant in T.
//   - Ⱦ (the ill-typed sentinel) relates only to itself and absorbs every
//     operation it touches.
package lamina

import (
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// TypeKind discriminates the interned type variants.
type TypeKind int

const (
	KindIllTyped TypeKind = iota
	KindBool
	KindNat
	KindUnit
	KindTop
	KindFunction
	KindRecord
	KindRef
)

// TypeField is one labelled component of a record type. Fields keep their
// source order for printing; subtyping ignores the order.
type TypeField struct {
	Label string
	Type  *Type
}

// Type is an interned type. Instances are created only by a Catalog, which
// guarantees that structural equality coincides with pointer identity.
type Type struct {
	kind   TypeKind
	dom    *Type // KindFunction
	cod    *Type // KindFunction
	fields []TypeField
	inner  *Type // KindRef
}

func (t *Type) Kind() TypeKind   { return t.kind }
func (t *Type) IsIllTyped() bool { return t.kind == KindIllTyped }
func (t *Type) IsBool() bool     { return t.kind == KindBool }
func (t *Type) IsNat() bool      { return t.kind == KindNat }
func (t *Type) IsUnit() bool     { return t.kind == KindUnit }
func (t *Type) IsTop() bool      { return t.kind == KindTop }
func (t *Type) IsFunction() bool { return t.kind == KindFunction }
func (t *Type) IsRecord() bool   { return t.kind == KindRecord }
func (t *Type) IsRef() bool      { return t.kind == KindRef }

// Dom returns the domain of a function type.
func (t *Type) Dom() *Type { return t.dom }

// Cod returns the codomain of a function type.
func (t *Type) Cod() *Type { return t.cod }

// Inner returns the cell type of a Ref type.
func (t *Type) Inner() *Type { return t.inner }

// Fields returns the record components in source order. The slice is owned
// by the catalog and must not be mutated.
func (t *Type) Fields() []TypeField { return t.fields }

// FieldType looks a record component up by label.
func (t *Type) FieldType(label string) (*Type, bool) {
	i := slices.IndexFunc(t.fields, func(f TypeField) bool { return f.Label == label })
	if i < 0 {
		return nil, false
	}
	return t.fields[i].Type, true
}

// String renders the type in surface syntax. Function types are always
// parenthesized; the ill-typed sentinel prints as Ⱦ.
func (t *Type) String() string {
	switch t.kind {
	case KindBool:
		return "Bool"
	case KindNat:
		return "Nat"
	case KindUnit:
		return "Unit"
	case KindTop:
		return "Top"
	case KindFunction:
		dom := t.dom.String()
		if t.dom.kind == KindRef {
			// A bare Ref would swallow the arrow on re-parse.
			dom = "(" + dom + ")"
		}
		return "(" + dom + " -> " + t.cod.String() + ")"
	case KindRecord:
		parts := lo.Map(t.fields, func(f TypeField, _ int) string {
			return f.Label + ":" + f.Type.String()
		})
		return "{" + strings.Join(parts, ", ") + "}"
	case KindRef:
		return "Ref " + t.inner.String()
	default:
		return "Ⱦ"
	}
}

// Catalog owns every interned type of one interpreter instance. A single
// lock guards lookup-or-insert, so a catalog may be shared across
// goroutines; the parser and evaluator themselves hold no shared state.
type Catalog struct {
	mu sync.Mutex

	illTyped *Type
	boolT    *Type
	natT     *Type
	unitT    *Type
	topT     *Type

	functions []*Type
	records   []*Type
	refs      []*Type
}

// NewCatalog returns a fresh catalog with the base types pre-interned.
func NewCatalog() *Catalog {
	return &Catalog{
		illTyped: &Type{kind: KindIllTyped},
		boolT:    &Type{kind: KindBool},
		natT:     &Type{kind: KindNat},
		unitT:    &Type{kind: KindUnit},
		topT:     &Type{kind: KindTop},
	}
}

func (c *Catalog) IllTyped() *Type { return c.illTyped }
func (c *Catalog) Bool() *Type     { return c.boolT }
func (c *Catalog) Nat() *Type      { return c.natT }
func (c *Catalog) Unit() *Type     { return c.unitT }
func (c *Catalog) Top() *Type      { return c.topT }

// Function returns the canonical dom -> cod. Both arguments must already
// be canonical instances of this catalog.
func (c *Catalog) Function(dom, cod *Type) *Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.functions {
		if t.dom == dom && t.cod == cod {
			return t
		}
	}
	t := &Type{kind: KindFunction, dom: dom, cod: cod}
	c.functions = append(c.functions, t)
	return t
}

// Record returns the canonical record with the given fields, in the given
// order. Field order is part of a record type's identity; permutations are
// related by subtyping, not by equality.
func (c *Catalog) Record(fields []TypeField) *Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.records {
		if slices.Equal(t.fields, fields) {
			return t
		}
	}
	t := &Type{kind: KindRecord, fields: slices.Clone(fields)}
	c.records = append(c.records, t)
	return t
}

// Ref returns the canonical Ref inner.
func (c *Catalog) Ref(inner *Type) *Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.refs {
		if t.inner == inner {
			return t
		}
	}
	t := &Type{kind: KindRef, inner: inner}
	c.refs = append(c.refs, t)
	return t
}

// Subtype reports whether s <: t.
func (c *Catalog) Subtype(s, t *Type) bool {
	if s == t {
		return true
	}
	if s.IsIllTyped() || t.IsIllTyped() {
		return false
	}
	if t.IsTop() {
		return true
	}
	switch {
	case s.IsFunction() && t.IsFunction():
		return c.Subtype(t.dom, s.dom) && c.Subtype(s.cod, t.cod)
	case s.IsRecord() && t.IsRecord():
		for _, tf := range t.fields {
			sf, ok := s.FieldType(tf.Label)
			if !ok || !c.Subtype(sf, tf.Type) {
				return false
			}
		}
		return true
	case s.IsRef() && t.IsRef():
		// Ref cells are both read and written, so Ref T is invariant.
		return s.inner == t.inner
	}
	return false
}

// Join computes the least upper bound of s and t. Ⱦ absorbs, and a
// function join whose domains have no meet is Ⱦ; any other two
// well-formed types are joined by Top at the latest.
func (c *Catalog) Join(s, t *Type) *Type {
	if s.IsIllTyped() || t.IsIllTyped() {
		return c.illTyped
	}
	if s == t {
		return s
	}
	if s.IsTop() || t.IsTop() {
		return c.topT
	}
	switch {
	case s.IsFunction() && t.IsFunction():
		dom, ok := c.Meet(s.dom, t.dom)
		if !ok {
			return c.illTyped
		}
		return c.Function(dom, c.Join(s.cod, t.cod))
	case s.IsRecord() && t.IsRecord():
		// Exactly the labels common to both; order follows s.
		var fields []TypeField
		for _, sf := range s.fields {
			if tf, ok := t.FieldType(sf.Label); ok {
				fields = append(fields, TypeField{sf.Label, c.Join(sf.Type, tf)})
			}
		}
		return c.Record(fields)
	case s.IsRef() && t.IsRef():
		// s != t here, so the cell types differ and the join degrades to Top.
		return c.topT
	}
	return c.topT
}

// Meet computes the greatest lower bound of s and t. The lattice has no
// minimum below the base types, so the meet does not always exist; the
// second result reports whether it does.
func (c *Catalog) Meet(s, t *Type) (*Type, bool) {
	if s.IsIllTyped() || t.IsIllTyped() {
		return c.illTyped, false
	}
	if s == t {
		return s, true
	}
	if s.IsTop() {
		return t, true
	}
	if t.IsTop() {
		return s, true
	}
	switch {
	case s.IsFunction() && t.IsFunction():
		cod, ok := c.Meet(s.cod, t.cod)
		if !ok {
			return c.illTyped, false
		}
		return c.Function(c.Join(s.dom, t.dom), cod), true
	case s.IsRecord() && t.IsRecord():
		// Union of the labels: common fields meet, the rest carry over.
		var fields []TypeField
		for _, sf := range s.fields {
			if tf, ok := t.FieldType(sf.Label); ok {
				m, ok := c.Meet(sf.Type, tf)
				if !ok {
					return c.illTyped, false
				}
				fields = append(fields, TypeField{sf.Label, m})
			} else {
				fields = append(fields, sf)
			}
		}
		for _, tf := range t.fields {
			if _, ok := s.FieldType(tf.Label); !ok {
				fields = append(fields, tf)
			}
		}
		return c.Record(fields), true
	case s.IsRef() && t.IsRef():
		return c.illTyped, false
	}
	return c.illTyped, false
}
