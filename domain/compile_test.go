package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/pyexpr/builtins"
	"github.com/ardnew/pyexpr/lang"
)

func records() []map[string]any {
	return []map[string]any{
		{
			"name":    "Alpha",
			"state":   "draft",
			"amount":  1500.0,
			"partner": map[string]any{"country": map[string]any{"code": "BE"}},
			"tags":    []any{"vip", "new"},
			"date":    "2024-01-15",
			"active":  true,
		},
		{
			"name":    "beta",
			"state":   "sale",
			"amount":  200.0,
			"partner": map[string]any{"country": map[string]any{"code": "FR"}},
			"tags":    []any{},
			"date":    "2024-02-10",
			"active":  false,
		},
		{
			"name":    "Gamma",
			"state":   "done",
			"amount":  nil,
			"partner": nil,
			"tags":    []any{"old"},
			"date":    nil,
		},
	}
}

func names(recs []map[string]any) []string {
	out := []string{}
	for _, r := range recs {
		out = append(out, r["name"].(string))
	}

	return out
}

func TestFilter(t *testing.T) {
	t.Parallel()

	clock := func() time.Time { return time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC) }
	reg := builtins.Default(builtins.WithClock(clock))

	tests := []struct {
		src  string
		want []string
	}{
		{"[]", []string{"Alpha", "beta", "Gamma"}},
		{"[(0, '=', 1)]", []string{}},
		{"[('state', '=', 'draft')]", []string{"Alpha"}},
		{"[('state', '==', 'draft')]", []string{"Alpha"}},
		{"[('state', 'in', ['draft', 'sale'])]", []string{"Alpha", "beta"}},
		{"[('state', 'in', 'sale')]", []string{"beta"}},
		{"[('state', 'not in', ['draft', 'sale'])]", []string{"Gamma"}},
		{"[('amount', '>', 1000)]", []string{"Alpha"}},
		{"[('amount', '<=', 200)]", []string{"beta"}},
		{"[('amount', '=', 1500)]", []string{"Alpha"}},
		{"[('amount', '=', False)]", []string{"Gamma"}},
		{"['|', ('state', '=', 'done'), ('amount', '>', 1000)]", []string{"Alpha", "Gamma"}},
		{"[('state', '!=', 'done'), ('amount', '<', 1000)]", []string{"beta"}},
		{"['!', ('state', '=', 'draft')]", []string{"beta", "Gamma"}},
		{"[('partner.country.code', '=', 'BE')]", []string{"Alpha"}},
		{"[('partner.country.code', '!=', 'BE')]", []string{"beta", "Gamma"}},
		{"[('name', 'ilike', 'AL')]", []string{"Alpha"}},
		{"[('name', 'like', 'amm')]", []string{"Gamma"}},
		{"[('name', 'not ilike', 'al')]", []string{"beta", "Gamma"}},
		{"[('name', '=like', 'b%')]", []string{"beta"}},
		{"[('name', '=ilike', '_AMMA')]", []string{"Gamma"}},
		{"[('tags', '=', 'vip')]", []string{"Alpha"}},
		{"[('tags', 'in', ['old', 'new'])]", []string{"Alpha", "Gamma"}},
		{"[('tags', '=', False)]", []string{"beta"}},
		{"[('date', '>=', '2024-02-01')]", []string{"beta"}},
		{"[('date', '<', context_today())]", []string{"Alpha"}},
		{"[('date', '>', context_today() - relativedelta(months=1))]", []string{"Alpha", "beta"}},
		{"[('active', '=', True)]", []string{"Alpha"}},
		{"[('active', '=', False)]", []string{"beta", "Gamma"}},
		{"[('missing.deep', '=', None)]", []string{"Alpha", "beta", "Gamma"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			d, err := Parse(t.Context(), tt.src, nil, reg)
			require.NoError(t, err)

			p, err := Compile(d)
			require.NoError(t, err)

			got, err := Filter(records(), p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestCompile_Source(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"[]", "true"},
		{"[(0, '=', 1)]", "false"},
		{"[('a', '=', 1)]", "cond(record, 0)"},
		{"['|', ('a', '=', 1), ('b', '=', 2)]", "(cond(record, 0) or cond(record, 1))"},
		{"['!', ('a', '=', 1)]", "(not cond(record, 0))"},
		{
			"[('a', '=', 1), '|', ('b', '=', 2), ('c', '=', 3)]",
			"(cond(record, 0) and (cond(record, 1) or cond(record, 2)))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			p, err := Compile(mustParse(t, tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Source())
		})
	}
}

func TestCompile_Cached(t *testing.T) {
	t.Parallel()

	first, err := Compile(mustParse(t, "[('cached', '=', 1), ('other', '=', 2)]"))
	require.NoError(t, err)

	second, err := Compile(mustParse(t, "['&', ('cached', '=', 1), ('other', '=', 2)]"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "['&', ('cached', '=', 1), ('other', '=', 2)]", first.Domain().String())
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	_, err := Compile(mustParse(t, "[('parent_id', 'child_of', 1)]"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHierarchy)
	assert.ErrorIs(t, err, lang.ErrNotImplemented)
	assert.Equal(t, "NotImplementedError", lang.ClassName(err))

	_, err = Compile(mustParse(t, "['&', ('a', '=', 1)]"))
	assert.ErrorIs(t, err, ErrArity)
}

func TestMatch_TimeValues(t *testing.T) {
	t.Parallel()

	record := map[string]any{"when": time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}

	p, err := Compile(mustParse(t, "[('when', '>', '2023-12-31'), ('when', '<', '2024-01-01 13:00:00')]"))
	require.NoError(t, err)

	ok, err := p.Match(record)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Match(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_Concurrent(t *testing.T) {
	t.Parallel()

	p, err := Compile(mustParse(t, "['|', ('state', '=', 'draft'), ('amount', '<', 300)]"))
	require.NoError(t, err)

	var wg sync.WaitGroup

	for range 16 {
		wg.Go(func() {
			got, err := Filter(records(), p)
			assert.NoError(t, err)
			assert.Equal(t, []string{"Alpha", "beta"}, names(got))
		})
	}

	wg.Wait()
}
