package hclconfig

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeStatusValues turns the attributes of a status block into the
// initial-value map the model list is built from. An attribute may be a
// number (broadcast scalar) or a list of numbers (one value per time step).
func decodeStatusValues(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("decoding status block: %w", diags)
	}

	values := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating status value %q: %w", name, diags)
		}
		decoded, err := fromCty(val)
		if err != nil {
			return nil, fmt.Errorf("status value %q: %w", name, err)
		}
		values[name] = decoded
	}
	return values, nil
}

func fromCty(val cty.Value) (any, error) {
	ty := val.Type()
	switch {
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(val, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty.IsTupleType() || ty.IsListType():
		it := val.ElementIterator()
		var seq []float64
		for it.Next() {
			_, elem := it.Element()
			if elem.Type() != cty.Number {
				return nil, fmt.Errorf("sequence elements must be numbers, got %s", elem.Type().FriendlyName())
			}
			var f float64
			if err := gocty.FromCtyValue(elem, &f); err != nil {
				return nil, err
			}
			seq = append(seq, f)
		}
		if len(seq) == 0 {
			return nil, fmt.Errorf("empty value sequence")
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("values must be a number or a list of numbers, got %s", ty.FriendlyName())
	}
}
