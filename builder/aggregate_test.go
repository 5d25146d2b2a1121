package builder

import (
	"errors"
	"testing"

	testutil "github.com/carlosnayan/onela-go/internal/testing"
)

func TestBuildAggregate(t *testing.T) {
	got, err := mustBuilder(t, "mysql").BuildAggregate(AggregateParams{
		Aggregate: []AggregateItem{
			{Function: "count", Field: "*", Name: "total"},
			{Function: "SUM", Field: "amount"},
			{Function: "median", Field: "amount"},
			{Function: "Avg", Field: "t.price", Name: "avg_price"},
		},
		Where:   []Condition{Eq("shop_id", 1)},
		GroupBy: []string{"status"},
		Configs: Configs{TableName: "orders"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT status, COUNT(*) AS total, SUM(amount) AS sum_amount, AVG(t.price) AS avg_price FROM `orders` AS t WHERE shop_id = ? GROUP BY status"
	if got.SQL != want {
		t.Errorf("sql = %s, want %s", got.SQL, want)
	}
	if diff := testutil.Diff(got.Params, []any{1}); diff != "" {
		t.Error(diff)
	}
}

func TestBuildAggregate_AllFunctions(t *testing.T) {
	var items []AggregateItem
	for _, fn := range []string{"count", "sum", "max", "min", "avg", "abs"} {
		items = append(items, AggregateItem{Function: fn, Field: "v"})
	}
	got, err := mustBuilder(t, "oracle").BuildAggregate(AggregateParams{Aggregate: items, Configs: Configs{TableName: "m"}})
	if err != nil {
		t.Fatal(err)
	}
	want := `SELECT COUNT(v) AS count_v, SUM(v) AS sum_v, MAX(v) AS max_v, MIN(v) AS min_v, AVG(v) AS avg_v, ABS(v) AS abs_v FROM "m" t WHERE 1=1`
	if got.SQL != want {
		t.Errorf("sql = %s, want %s", got.SQL, want)
	}
}

func TestBuildAggregate_Errors(t *testing.T) {
	b := mustBuilder(t, "postgresql")
	_, err := b.BuildAggregate(AggregateParams{
		Aggregate: []AggregateItem{{Function: "median", Field: "x"}, {Function: "stddev", Field: "x"}},
		Configs:   Configs{TableName: "m"},
	})
	if !errors.Is(err, ErrEmptyAggregate) {
		t.Errorf("error = %v, want ErrEmptyAggregate", err)
	}

	_, err = b.BuildAggregate(AggregateParams{
		Aggregate: []AggregateItem{{Function: "sum", Field: "x", Name: "s; DROP"}},
		Configs:   Configs{TableName: "m"},
	})
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("error = %v, want ErrInvalidIdentifier", err)
	}
}
