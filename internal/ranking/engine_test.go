package ranking

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func job() *Job {
	return &Job{ID: "job-1", Title: "Backend Engineer", MinYearsExperience: 2, Threshold: 60}
}

func candidate(id string, score int) Candidate {
	return Candidate{
		ID:              id,
		JobID:           "job-1",
		MatchScore:      score,
		ExperienceYears: 4,
		ExpectedSalary:  "3000",
		NoticePeriod:    "2 weeks",
	}
}

func TestRankWorkedExample(t *testing.T) {
	c := candidate("app-1", 80)
	ranked := Rank(job(), []Candidate{c}, DefaultWeights(), Options{DefaultBudget: 2000})
	require.Len(t, ranked, 1)

	// 0.8*50 + 0.5*20 + 1.2*20 + 0.8*10
	assert.Equal(t, int(math.Round(0.8*50+0.5*20+1.2*20+0.8*10)), ranked[0].IntelligenceScore)
	assert.Equal(t, 82, ranked[0].IntelligenceScore)
	assert.Equal(t, 50, ranked[0].SalaryAlignment)
	assert.Equal(t, LevelHigh, ranked[0].FitStatus)
	assert.Equal(t, LevelHigh, ranked[0].RiskLevel)
}

func TestRankZeroWeightsPreserveOrder(t *testing.T) {
	in := []Candidate{candidate("a", 90), candidate("b", 10), candidate("c", 55)}
	ranked := Rank(job(), in, Weights{}, Options{})
	require.Len(t, ranked, 3)
	for i, r := range ranked {
		assert.Equal(t, 0, r.IntelligenceScore)
		assert.Equal(t, in[i].ID, r.ID)
	}
}

func TestRankStableForIdenticalCandidates(t *testing.T) {
	in := []Candidate{candidate("first", 70), candidate("second", 70), candidate("top", 95), candidate("third", 70)}
	ranked := Rank(job(), in, DefaultWeights(), Options{})
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"top", "first", "second", "third"}, ids)
}

func TestRankFiltersArchivedAndForeignCandidates(t *testing.T) {
	archived := candidate("archived", 99)
	archived.Archived = true
	foreign := candidate("foreign", 99)
	foreign.JobID = "job-2"
	ranked := Rank(job(), []Candidate{archived, foreign, candidate("kept", 40)}, DefaultWeights(), Options{})
	require.Len(t, ranked, 1)
	assert.Equal(t, "kept", ranked[0].ID)
}

func TestRankNilJob(t *testing.T) {
	ranked := Rank(nil, []Candidate{candidate("a", 80)}, DefaultWeights(), Options{})
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRankNegativeWeightsDegradeToZero(t *testing.T) {
	ranked := Rank(job(), []Candidate{candidate("a", 80)}, Weights{Skills: -100, Salary: -5}, Options{})
	require.Len(t, ranked, 1)
	assert.Equal(t, 0, ranked[0].IntelligenceScore)
}

func TestRankHugeWeightsKeepOrder(t *testing.T) {
	in := []Candidate{candidate("weak", 90), candidate("strong", 95)}
	ranked := Rank(job(), in, Weights{Skills: 1e19}, Options{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "strong", ranked[0].ID)
	assert.Equal(t, "weak", ranked[1].ID)
	for _, r := range ranked {
		assert.LessOrEqual(t, r.IntelligenceScore, math.MaxInt32)
		assert.GreaterOrEqual(t, r.IntelligenceScore, 0)
	}
}

func TestRankRoundedTiesKeepInputOrder(t *testing.T) {
	// 8.1 and 8.4 both round to 8
	in := []Candidate{candidate("lower", 81), candidate("higher", 84)}
	ranked := Rank(job(), in, Weights{Skills: 10}, Options{})
	require.Len(t, ranked, 2)
	assert.Equal(t, 8, ranked[0].IntelligenceScore)
	assert.Equal(t, 8, ranked[1].IntelligenceScore)
	assert.Equal(t, "lower", ranked[0].ID)
}

func TestRankUsesJobBudget(t *testing.T) {
	j := job()
	j.SalaryBudget = 3000
	ranked := Rank(j, []Candidate{candidate("a", 80)}, DefaultWeights(), Options{DefaultBudget: 2000})
	require.Len(t, ranked, 1)
	assert.Equal(t, 100, ranked[0].SalaryAlignment)
	assert.Equal(t, LevelLow, ranked[0].RiskLevel)
}

func TestSalaryFactorMonotonic(t *testing.T) {
	const budget = 2000
	assert.Equal(t, 1.0, SalaryFactor(0, budget))
	assert.Equal(t, 1.0, SalaryFactor(budget, budget))
	prev := 1.0
	for expected := float64(budget); expected <= 3*budget; expected += 125 {
		f := SalaryFactor(expected, budget)
		assert.LessOrEqual(t, f, prev, "expected=%v", expected)
		assert.GreaterOrEqual(t, f, 0.0)
		prev = f
	}
	assert.Equal(t, 0.0, SalaryFactor(4000, budget))
	assert.Equal(t, 0.0, SalaryFactor(9000, budget))
}

func TestParseSalary(t *testing.T) {
	cases := map[string]float64{
		"3000":         3000,
		"$3,500 / mo":  3500,
		"2.5k":         2.5,
		"1.234.5":      1.234,
		"negotiable":   0,
		"":             0,
		"...":          0,
		"USD 4,200.50": 4200.5,
	}
	for in, want := range cases {
		assert.InDelta(t, want, ParseSalary(in), 1e-9, in)
	}
}

func TestParseSalaryOutOfRangeStaysOverBudget(t *testing.T) {
	huge := strings.Repeat("9", 400)
	assert.Equal(t, math.MaxFloat64, ParseSalary(huge))
	assert.Equal(t, 0.0, SalaryFactor(ParseSalary(huge), 2000))

	c := candidate("greedy", 90)
	c.ExpectedSalary = huge
	ranked := Rank(job(), []Candidate{c}, DefaultWeights(), Options{})
	require.Len(t, ranked, 1)
	assert.Equal(t, 0, ranked[0].SalaryAlignment)
	assert.Equal(t, LevelHigh, ranked[0].RiskLevel)
}

func TestExperienceFactor(t *testing.T) {
	assert.Equal(t, 1.2, ExperienceFactor(10, 2))
	assert.Equal(t, 0.5, ExperienceFactor(1, 2))
	assert.Equal(t, 1.2, ExperienceFactor(3, 0))
	assert.Equal(t, 0.0, ExperienceFactor(-1, 3))
}

func TestAvailabilityFactor(t *testing.T) {
	cases := map[string]float64{
		"Immediate":          1,
		"available now":      1,
		"0 days":             1,
		"15 days":            0.8,
		"2 weeks":            0.8,
		"30 days":            0.6,
		"1 month":            0.6,
		"1 months":           0.6,
		"2 weeks notice":     0.8,
		"2 week":             0.8,
		"15 day":             0.8,
		"12 weeks":           0.5,
		"60 days":            0.5,
		"well known company": 0.5,
		"":                   0.5,
	}
	for in, want := range cases {
		assert.Equal(t, want, AvailabilityFactor(in), in)
	}
}

func TestFitAndRisk(t *testing.T) {
	assert.Equal(t, LevelHigh, Fit(80))
	assert.Equal(t, LevelMedium, Fit(60))
	assert.Equal(t, LevelLow, Fit(59))

	assert.Equal(t, LevelHigh, Risk(49, 1))
	assert.Equal(t, LevelHigh, Risk(90, 0.59))
	assert.Equal(t, LevelMedium, Risk(69, 1))
	assert.Equal(t, LevelMedium, Risk(90, 0.79))
	assert.Equal(t, LevelLow, Risk(70, 0.8))
}

func TestSummarize(t *testing.T) {
	in := []Candidate{candidate("a", 90), candidate("b", 65), candidate("c", 30)}
	s := Summarize(Rank(job(), in, DefaultWeights(), Options{DefaultBudget: 3000}))
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "a", s.TopCandidateID)
	assert.Equal(t, 1, s.ByFit[LevelHigh])
	assert.Equal(t, 1, s.ByFit[LevelMedium])
	assert.Equal(t, 1, s.ByFit[LevelLow])
	assert.Greater(t, s.AverageScore, 0.0)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Empty(t, empty.TopCandidateID)
}
