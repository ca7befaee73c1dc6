// Package lhopital computes limits of real-valued rational expressions of
// one variable, using symbolic differentiation to resolve 0/0 indeterminate
// forms via L'Hôpital's Rule.
//
// Design goals:
//   - Immutable expression trees: differentiation builds new nodes, never
//     edits existing ones
//   - A closed, deliberately minimal rule set: exactly what is needed to
//     resolve polynomial 0/0 forms, with anything outside it failing loudly
//   - Embeddable in Go services, CLI tools, and agent backends
package lhopital

import (
	"fmt"
	"math"
	"strconv"
)

// Version of the lhopital module.
const Version = "0.1.0"

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable arithmetic expression in one free variable.
//
// The set of implementations is closed: Constant, Variable, Sum,
// Difference, Product, and Power. Every node owns its children
// exclusively; trees are finite, acyclic, and never mutated after
// construction.
type Expr interface {
	// Evaluate substitutes x for the free variable and reduces the tree
	// to a number. It is total over well-formed trees.
	Evaluate(x float64) float64
	// Differentiate returns a brand-new tree representing d/dx of the
	// receiver, or ErrUnsupportedRule when the node shape falls outside
	// the implemented rule set.
	Differentiate() (Expr, error)
	String() string
	toJSON() map[string]interface{}
}

// ============================================================
// Constant — fixed numeric literal
// ============================================================

type Constant struct{ value float64 }

func Const(v float64) *Constant { return &Constant{value: v} }

func (c *Constant) Evaluate(float64) float64 { return c.value }

// d/dx(c) = 0
func (c *Constant) Differentiate() (Expr, error) { return Const(0), nil }

func (c *Constant) String() string { return strconv.FormatFloat(c.value, 'g', -1, 64) }
func (c *Constant) Value() float64 { return c.value }

// ============================================================
// Variable — the single free variable
// ============================================================

type Variable struct{}

func X() *Variable { return &Variable{} }

func (v *Variable) Evaluate(x float64) float64 { return x }

// d/dx(x) = 1
func (v *Variable) Differentiate() (Expr, error) { return Const(1), nil }

func (v *Variable) String() string { return "x" }

// ============================================================
// Sum — left + right
// ============================================================

type Sum struct{ left, right Expr }

func SumOf(left, right Expr) *Sum { return &Sum{left: left, right: right} }

func (s *Sum) Evaluate(x float64) float64 { return s.left.Evaluate(x) + s.right.Evaluate(x) }

// d/dx(f+g) = f' + g'
func (s *Sum) Differentiate() (Expr, error) {
	dl, err := s.left.Differentiate()
	if err != nil {
		return nil, err
	}
	dr, err := s.right.Differentiate()
	if err != nil {
		return nil, err
	}
	return SumOf(dl, dr), nil
}

func (s *Sum) String() string { return s.left.String() + " + " + s.right.String() }
func (s *Sum) Left() Expr     { return s.left }
func (s *Sum) Right() Expr    { return s.right }

// ============================================================
// Difference — left - right
// ============================================================

type Difference struct{ left, right Expr }

func DifferenceOf(left, right Expr) *Difference { return &Difference{left: left, right: right} }

func (d *Difference) Evaluate(x float64) float64 { return d.left.Evaluate(x) - d.right.Evaluate(x) }

// d/dx(f-g) = f' - g'
func (d *Difference) Differentiate() (Expr, error) {
	dl, err := d.left.Differentiate()
	if err != nil {
		return nil, err
	}
	dr, err := d.right.Differentiate()
	if err != nil {
		return nil, err
	}
	return DifferenceOf(dl, dr), nil
}

func (d *Difference) String() string { return d.left.String() + " - " + d.right.String() }
func (d *Difference) Left() Expr     { return d.left }
func (d *Difference) Right() Expr    { return d.right }

// ============================================================
// Product — left * right
// ============================================================

type Product struct{ left, right Expr }

func ProductOf(left, right Expr) *Product { return &Product{left: left, right: right} }

func (p *Product) Evaluate(x float64) float64 { return p.left.Evaluate(x) * p.right.Evaluate(x) }

// The product rule is intentionally not implemented: callers depend on the
// failure signal to distinguish "no limit" from "unsupported input".
func (p *Product) Differentiate() (Expr, error) {
	return nil, fmt.Errorf("product %s: %w", p, ErrUnsupportedRule)
}

func (p *Product) String() string {
	return parenthesize(p.left) + "*" + parenthesize(p.right)
}
func (p *Product) Left() Expr  { return p.left }
func (p *Product) Right() Expr { return p.right }

// ============================================================
// Power — base^exponent, exponent a plain number
// ============================================================

type Power struct {
	base     Expr
	exponent float64
}

func PowOf(base Expr, exponent float64) *Power { return &Power{base: base, exponent: exponent} }

func (p *Power) Evaluate(x float64) float64 { return math.Pow(p.base.Evaluate(x), p.exponent) }

// d/dx(x^n) = n*x^(n-1). The power rule is supported only when the base is
// exactly the free variable; composed bases would need the chain rule.
// The result is left unsimplified: differentiating twice yields nested
// Products rather than a folded constant.
func (p *Power) Differentiate() (Expr, error) {
	if _, ok := p.base.(*Variable); !ok {
		return nil, fmt.Errorf("power %s: base is not the free variable: %w", p, ErrUnsupportedRule)
	}
	return ProductOf(Const(p.exponent), PowOf(X(), p.exponent-1)), nil
}

func (p *Power) String() string {
	return parenthesize(p.base) + "^" + strconv.FormatFloat(p.exponent, 'g', -1, 64)
}
func (p *Power) Base() Expr        { return p.base }
func (p *Power) Exponent() float64 { return p.exponent }

func parenthesize(e Expr) string {
	switch e.(type) {
	case *Sum, *Difference, *Product:
		return "(" + e.String() + ")"
	}
	return e.String()
}

// ============================================================
// Public Helpers
// ============================================================

// Differentiate returns the symbolic derivative of e as a new tree.
func Differentiate(e Expr) (Expr, error) { return e.Differentiate() }

// Evaluate computes e at the point x.
func Evaluate(e Expr, x float64) float64 { return e.Evaluate(x) }

// String renders e in infix notation.
func String(e Expr) string { return e.String() }
