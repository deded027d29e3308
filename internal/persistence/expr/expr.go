// Package expr builds storage filter predicates that can be rendered to SQL
// or evaluated against in-memory records.
package expr

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidExpr is returned for expressions that cannot be rendered or
// evaluated.
var ErrInvalidExpr = errors.New("expr: invalid expression")

// Expr is a filter expression.
type Expr interface {
	expr()
}

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

type variable struct{ name string }

type literal struct{ value any }

type comparison struct {
	op          Op
	left, right Expr
}

type conjunction struct{ terms []Expr }

func (variable) expr()    {}
func (literal) expr()     {}
func (comparison) expr()  {}
func (conjunction) expr() {}

// Var references a column.
func Var(name string) Expr { return variable{name: name} }

// Lit is a literal value: a string, an integer or a bool.
func Lit(value any) Expr { return literal{value: normalize(value)} }

// Eq compares two expressions for equality.
func Eq(left, right Expr) Expr { return comparison{op: OpEq, left: left, right: right} }

// Compare compares two expressions with op.
func Compare(op Op, left, right Expr) Expr { return comparison{op: op, left: left, right: right} }

// And is true when every term is. An empty And is true.
func And(terms ...Expr) Expr { return conjunction{terms: slices.Clone(terms)} }

// SQL renders e as a WHERE clause body with ? placeholders. Column names must
// be listed in columns.
func SQL(e Expr, columns []string) (string, []any, error) {
	var b strings.Builder
	var args []any
	if err := render(&b, &args, e, columns); err != nil {
		return "", nil, err
	}
	return b.String(), args, nil
}

func render(b *strings.Builder, args *[]any, e Expr, columns []string) error {
	switch v := e.(type) {
	case variable:
		if !slices.Contains(columns, v.name) {
			return fmt.Errorf("%w: unknown column %q", ErrInvalidExpr, v.name)
		}
		fmt.Fprintf(b, `"%s"`, v.name)
	case literal:
		b.WriteString("?")
		*args = append(*args, v.value)
	case comparison:
		if !validOp(v.op) {
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidExpr, v.op)
		}
		if err := render(b, args, v.left, columns); err != nil {
			return err
		}
		fmt.Fprintf(b, " %s ", v.op)
		return render(b, args, v.right, columns)
	case conjunction:
		if len(v.terms) == 0 {
			b.WriteString("1 = 1")
			return nil
		}
		for i, term := range v.terms {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.WriteString("(")
			if err := render(b, args, term, columns); err != nil {
				return err
			}
			b.WriteString(")")
		}
	default:
		return fmt.Errorf("%w: %T", ErrInvalidExpr, e)
	}
	return nil
}

func validOp(op Op) bool {
	switch op {
	case OpEq, OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

func normalize(value any) any {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	default:
		return value
	}
}
