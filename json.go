package lhopital

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON Serialization
// ============================================================

func (c *Constant) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "constant", "value": c.value}
}

func (v *Variable) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "variable"}
}

func (s *Sum) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sum", "left": s.left.toJSON(), "right": s.right.toJSON()}
}

func (d *Difference) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "difference", "left": d.left.toJSON(), "right": d.right.toJSON()}
}

func (p *Product) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "product", "left": p.left.toJSON(), "right": p.right.toJSON()}
}

func (p *Power) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "power", "base": p.base.toJSON(), "exponent": p.exponent}
}

// ToJSON renders e as its JSON wire form.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// FromJSON rebuilds an expression tree from its decoded JSON wire form.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subExpr := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return FromJSON(m)
	}

	subNumber := func(field string) (float64, error) {
		v, ok := data[field]
		if !ok {
			return 0, fmt.Errorf("%s: missing %q", typ, field)
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("%s: %q must be a number", typ, field)
		}
		return f, nil
	}

	switch typ {
	case "constant":
		v, err := subNumber("value")
		if err != nil {
			return nil, err
		}
		return Const(v), nil
	case "variable":
		return X(), nil
	case "sum", "difference", "product":
		left, err := subExpr("left")
		if err != nil {
			return nil, err
		}
		right, err := subExpr("right")
		if err != nil {
			return nil, err
		}
		switch typ {
		case "sum":
			return SumOf(left, right), nil
		case "difference":
			return DifferenceOf(left, right), nil
		default:
			return ProductOf(left, right), nil
		}
	case "power":
		base, err := subExpr("base")
		if err != nil {
			return nil, err
		}
		exp, err := subNumber("exponent")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	default:
		return nil, fmt.Errorf("unknown expression type %q", typ)
	}
}

// ParseJSON decodes raw JSON into an expression tree.
func ParseJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid expression JSON: %w", err)
	}
	return FromJSON(m)
}
