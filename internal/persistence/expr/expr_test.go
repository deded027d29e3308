package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"service_id", "start", "end"}

func TestSQL_RendersPlaceholders(t *testing.T) {
	t.Parallel()

	where := And(
		Eq(Var("service_id"), Lit("svc-1")),
		Compare(OpGte, Var("start"), Lit(100)),
		Compare(OpLt, Var("end"), Lit(int64(200))),
	)

	clause, args, err := SQL(where, columns)
	require.NoError(t, err)
	assert.Equal(t, `("service_id" = ?) AND ("start" >= ?) AND ("end" < ?)`, clause)
	assert.Equal(t, []any{"svc-1", int64(100), int64(200)}, args)
}

func TestSQL_EmptyAndIsTrue(t *testing.T) {
	t.Parallel()

	clause, args, err := SQL(And(), columns)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", clause)
	assert.Empty(t, args)
}

func TestSQL_RejectsUnknownColumnsAndOperators(t *testing.T) {
	t.Parallel()

	_, _, err := SQL(Eq(Var("service_id; DROP TABLE sessions"), Lit("x")), columns)
	assert.ErrorIs(t, err, ErrInvalidExpr)

	_, _, err = SQL(Compare(Op("LIKE"), Var("service_id"), Lit("x")), columns)
	assert.ErrorIs(t, err, ErrInvalidExpr)
}

func TestEval(t *testing.T) {
	t.Parallel()

	row := map[string]any{"service_id": "svc-1", "start": int64(150), "end": 180}
	rec := func(column string) (any, bool) {
		v, ok := row[column]
		return v, ok
	}

	cases := map[string]struct {
		where Expr
		want  bool
	}{
		"equal":          {Eq(Var("service_id"), Lit("svc-1")), true},
		"not equal":      {Eq(Var("service_id"), Lit("svc-2")), false},
		"range":          {And(Compare(OpGte, Var("start"), Lit(100)), Compare(OpLte, Var("end"), Lit(180))), true},
		"range excluded": {And(Compare(OpGt, Var("start"), Lit(150))), false},
		"empty and":      {And(), true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Eval(tc.where, rec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Eval(Eq(Var("start"), Lit("150")), rec)
	assert.ErrorIs(t, err, ErrInvalidExpr)
	_, err = Eval(Eq(Var("missing"), Lit(1)), rec)
	assert.ErrorIs(t, err, ErrInvalidExpr)
}
