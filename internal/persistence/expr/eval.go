package expr

import (
	"cmp"
	"fmt"
)

// Record resolves column values of an in-memory row.
type Record func(column string) (any, bool)

// Eval reports whether the record satisfies e.
func Eval(e Expr, rec Record) (bool, error) {
	switch v := e.(type) {
	case conjunction:
		for _, term := range v.terms {
			ok, err := Eval(term, rec)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case comparison:
		left, err := value(v.left, rec)
		if err != nil {
			return false, err
		}
		right, err := value(v.right, rec)
		if err != nil {
			return false, err
		}
		c, err := compare(left, right)
		if err != nil {
			return false, err
		}
		switch v.op {
		case OpEq:
			return c == 0, nil
		case OpLt:
			return c < 0, nil
		case OpLte:
			return c <= 0, nil
		case OpGt:
			return c > 0, nil
		case OpGte:
			return c >= 0, nil
		}
		return false, fmt.Errorf("%w: unknown operator %q", ErrInvalidExpr, v.op)
	default:
		return false, fmt.Errorf("%w: %T is not a predicate", ErrInvalidExpr, e)
	}
}

func value(e Expr, rec Record) (any, error) {
	switch v := e.(type) {
	case literal:
		return v.value, nil
	case variable:
		val, ok := rec(v.name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidExpr, v.name)
		}
		return normalize(val), nil
	default:
		return nil, fmt.Errorf("%w: %T is not a value", ErrInvalidExpr, e)
	}
}

func compare(a, b any) (int, error) {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), nil
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			if x == y {
				return 0, nil
			}
			return 1, nil
		}
	}
	return 0, fmt.Errorf("%w: cannot compare %T with %T", ErrInvalidExpr, a, b)
}
