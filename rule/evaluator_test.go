package rule

import (
	"errors"
	"testing"

	"github.com/validata-dev/validata/dataset"
)

func TestParseClause(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Clause
	}{
		{
			name: "simple comparison",
			text: "age > 18",
			want: Clause{Selector: "age", Comparator: ">", Target: "18"},
		},
		{
			name: "targetless comparator",
			text: "income missing",
			want: Clause{Selector: "income", Comparator: "missing"},
		},
		{
			name: "multi word comparator wins over its substring",
			text: "income not missing",
			want: Clause{Selector: "income", Comparator: "not missing"},
		},
		{
			name: "ranks in wins over in",
			text: "score ranks in top 10%",
			want: Clause{Selector: "score", Comparator: "ranks in", Target: "top 10%"},
		},
		{
			name: "longest symbol wins at the same position",
			text: "age >= 18",
			want: Clause{Selector: "age", Comparator: ">=", Target: "18"},
		},
		{
			name: "comma selector with operator suffix",
			text: "income_1, income_2 > 1000 using any",
			want: Clause{Selector: "income_1, income_2", Comparator: ">", Target: "1000", Operator: "any"},
		},
		{
			name: "wildcard selector",
			text: "* not missing using all",
			want: Clause{Selector: "*", Comparator: "not missing", Operator: "all"},
		},
		{
			name: "word comparator not matched inside a column name",
			text: "win_rate > 0.5",
			want: Clause{Selector: "win_rate", Comparator: ">", Target: "0.5"},
		},
		{
			name: "between with range target",
			text: "size between 1:5",
			want: Clause{Selector: "size", Comparator: "between", Target: "1:5"},
		},
		{
			name: "default outlier target stays empty",
			text: "x is outlier by",
			want: Clause{Selector: "x", Comparator: "is outlier by"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClause(tt.text)
			if err != nil {
				t.Fatalf("ParseClause(%q) error = %v", tt.text, err)
			}
			if *got != tt.want {
				t.Errorf("ParseClause(%q) = %+v, want %+v", tt.text, *got, tt.want)
			}
		})
	}
}

func TestParseClause_Errors(t *testing.T) {
	t.Run("unknown comparator names the symbol", func(t *testing.T) {
		_, err := ParseClause("x ~~ 5")
		var use *UnknownSymbolError
		if !errors.As(err, &use) {
			t.Fatalf("error = %v, want *UnknownSymbolError", err)
		}
		if use.Symbol != "~~" {
			t.Errorf("UnknownSymbolError.Symbol = %q, want %q", use.Symbol, "~~")
		}
	})

	t.Run("missing selector", func(t *testing.T) {
		_, err := ParseClause("== 5")
		if !errors.Is(err, ErrGrammar) {
			t.Fatalf("error = %v, want ErrGrammar", err)
		}
	})

	t.Run("clause with no comparator at all", func(t *testing.T) {
		_, err := ParseClause("age")
		if !errors.Is(err, ErrGrammar) {
			t.Fatalf("error = %v, want ErrGrammar", err)
		}
	})
}

func TestResolveColumns(t *testing.T) {
	ds, err := dataset.New(
		dataset.Numbers("income_1", 1),
		dataset.Numbers("income_2", 2),
		dataset.Numbers("age", 30),
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		selector string
		want     []string
	}{
		{"single column", "age", []string{"age"}},
		{"comma list", "income_1, age", []string{"income_1", "age"}},
		{"star selects everything", "*", []string{"income_1", "income_2", "age"}},
		{"prefix wildcard", "income_*", []string{"income_1", "income_2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveColumns(tt.selector, ds)
			if err != nil {
				t.Fatalf("resolveColumns(%q) error = %v", tt.selector, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("resolveColumns(%q) = %v, want %v", tt.selector, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("column %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}

	for _, selector := range []string{"salary", "age, salary", "salary_*"} {
		if _, err := resolveColumns(selector, ds); !errors.Is(err, ErrUnknownColumn) {
			t.Errorf("resolveColumns(%q) error = %v, want ErrUnknownColumn", selector, err)
		}
	}
}

func TestEvaluator_Evaluate(t *testing.T) {
	ds, err := dataset.New(
		dataset.MustColumn("income_1", dataset.KindNumber, []interface{}{500.0, 2000.0, nil}),
		dataset.MustColumn("income_2", dataset.KindNumber, []interface{}{1500.0, 800.0, nil}),
		dataset.Texts("name", "alice", "bob", "carol"),
	)
	if err != nil {
		t.Fatal(err)
	}
	eval := NewEvaluator()

	tests := []struct {
		name       string
		expression string
		want       []bool
	}{
		{
			name:       "single column",
			expression: "income_1 > 1000",
			want:       []bool{false, true, false},
		},
		{
			name:       "multi column defaults to all",
			expression: "income_1, income_2 > 400",
			want:       []bool{true, true, false},
		},
		{
			name:       "logical operator reduces after comparing",
			expression: "income_1, income_2 > 1000 using any",
			want:       []bool{true, true, false},
		},
		{
			name:       "logical none",
			expression: "income_* > 1000 using none",
			want:       []bool{false, false, true},
		},
		{
			name:       "data operator reduces before comparing",
			expression: "income_1, income_2 <= 1000 using mean",
			want:       []bool{true, false, false},
		},
		{
			name:       "sum of missing row is zero",
			expression: "income_* == 0 using sum",
			want:       []bool{false, false, true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.Evaluate(tt.expression, ds)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.expression, err)
			}
			checkValues(t, got.Values, tt.want)
		})
	}

	t.Run("unknown operator", func(t *testing.T) {
		_, err := eval.Evaluate("income_1, income_2 > 1000 using variance", ds)
		var use *UnknownSymbolError
		if !errors.As(err, &use) {
			t.Fatalf("error = %v, want *UnknownSymbolError", err)
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := eval.Evaluate("salary > 1000", ds)
		if !errors.Is(err, ErrUnknownColumn) {
			t.Fatalf("error = %v, want ErrUnknownColumn", err)
		}
	})
}
