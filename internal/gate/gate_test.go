package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvereign/solvereign/internal/domain"
)

func kpis() domain.KPIs {
	return domain.KPIs{
		DriverCount:  10,
		FTECount:     10,
		PTCount:      0,
		TotalHours:   480,
		MinHours:     40,
		AvgHours:     48,
		MaxHours:     53,
		WeekCategory: domain.WeekNormal,
	}
}

func TestGate_DefaultRulesAcceptCleanPlan(t *testing.T) {
	g, err := New(DefaultRules())
	require.NoError(t, err)

	results := g.Evaluate(kpis())
	assert.True(t, Accepted(results))
}

func TestGate_FailsOnPartTimeOverflow(t *testing.T) {
	g, err := New(DefaultRules())
	require.NoError(t, err)

	k := kpis()
	k.PTCount = 3
	results := g.Evaluate(k)
	assert.False(t, Accepted(results))

	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name)
		}
	}
	assert.Equal(t, []string{"no_part_time_overflow"}, failed)
}

func TestGate_CustomRule(t *testing.T) {
	g, err := New([]Rule{
		{Name: "short_week_headcount", Expr: `week_category != "SHORT_WEEK" || driver_count <= 5`},
	})
	require.NoError(t, err)

	k := kpis()
	assert.True(t, Accepted(g.Evaluate(k)))

	k.WeekCategory = domain.WeekShort
	assert.False(t, Accepted(g.Evaluate(k)))
}

func TestGate_RejectsBrokenExpression(t *testing.T) {
	_, err := New([]Rule{{Name: "broken", Expr: "pt_count >="}})
	assert.Error(t, err)
}

func TestGate_RejectsNonBooleanExpression(t *testing.T) {
	_, err := New([]Rule{{Name: "numeric", Expr: "pt_count + 1"}})
	assert.Error(t, err)
}
