// Package ranking scores the applicants of a job against admin-tuned weights
// and classifies their fit and risk.
package ranking

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Level is a High/Medium/Low classification.
type Level string

const (
	LevelHigh   Level = "High"
	LevelMedium Level = "Medium"
	LevelLow    Level = "Low"
)

// DefaultBudget is used when neither the job nor the options carry a budget.
const DefaultBudget = 2000

const maxExperienceFactor = 1.2

// Weights are the four ranking sliders. They are not persisted and are not
// required to sum to 100.
type Weights struct {
	Skills       float64 `json:"skills"`
	Salary       float64 `json:"salary"`
	Experience   float64 `json:"experience"`
	Availability float64 `json:"availability"`
}

// DefaultWeights is the console's initial slider position.
func DefaultWeights() Weights {
	return Weights{Skills: 50, Salary: 20, Experience: 20, Availability: 10}
}

// sanitized clamps negative or non-finite weights to zero.
func (w Weights) sanitized() Weights {
	clamp := func(v float64) float64 {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}
	return Weights{
		Skills:       clamp(w.Skills),
		Salary:       clamp(w.Salary),
		Experience:   clamp(w.Experience),
		Availability: clamp(w.Availability),
	}
}

// Job is the part of a job post the engine reads.
type Job struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	MinYearsExperience int     `json:"minYearsExperience"`
	Threshold          int     `json:"threshold"`
	SalaryBudget       float64 `json:"salaryBudget"`
}

// Candidate is the part of an application the engine reads.
type Candidate struct {
	ID              string  `json:"id"`
	JobID           string  `json:"jobId"`
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	Status          string  `json:"status"`
	MatchScore      int     `json:"matchScore"`
	ExperienceYears float64 `json:"experienceYears"`
	ExpectedSalary  string  `json:"expectedSalary"`
	NoticePeriod    string  `json:"noticePeriod"`
	Archived        bool    `json:"archived"`
}

// Ranked is a candidate with its derived ranking signals.
type Ranked struct {
	Candidate
	IntelligenceScore int   `json:"intelligenceScore"`
	FitStatus         Level `json:"fitStatus"`
	RiskLevel         Level `json:"riskLevel"`
	SalaryAlignment   int   `json:"salaryAlignment"`
}

// Options tune the engine outside the per-request weights.
type Options struct {
	// DefaultBudget applies to jobs without a salary budget.
	DefaultBudget float64
}

func (o Options) budget(job *Job) float64 {
	if job.SalaryBudget > 0 {
		return job.SalaryBudget
	}
	if o.DefaultBudget > 0 {
		return o.DefaultBudget
	}
	return DefaultBudget
}

// Rank scores the non-archived candidates of job and returns them ordered by
// descending score. Candidates with equal scores keep their input order. A
// nil job yields an empty ranking.
func Rank(job *Job, candidates []Candidate, w Weights, opts Options) []Ranked {
	if job == nil {
		return []Ranked{}
	}
	w = w.sanitized()
	budget := opts.budget(job)

	type scored struct {
		Ranked
		total float64
	}
	rows := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.Archived || c.JobID != job.ID {
			continue
		}
		skill := float64(c.MatchScore) / 100
		experience := ExperienceFactor(c.ExperienceYears, job.MinYearsExperience)
		salary := SalaryFactor(ParseSalary(c.ExpectedSalary), budget)
		availability := AvailabilityFactor(c.NoticePeriod)

		total := math.Round(skill*w.Skills + salary*w.Salary + experience*w.Experience + availability*w.Availability)
		rows = append(rows, scored{
			Ranked: Ranked{
				Candidate:         c,
				IntelligenceScore: clampScore(total),
				FitStatus:         Fit(c.MatchScore),
				RiskLevel:         Risk(c.MatchScore, salary),
				SalaryAlignment:   int(math.Round(salary * 100)),
			},
			total: total,
		})
	}
	// Order on the unclamped composite so totals beyond the int range still sort.
	slices.SortStableFunc(rows, func(a, b scored) int {
		return cmp.Compare(b.total, a.total)
	})
	out := make([]Ranked, len(rows))
	for i, r := range rows {
		out[i] = r.Ranked
	}
	return out
}

func clampScore(total float64) int {
	if math.IsNaN(total) {
		return 0
	}
	return int(math.Min(math.Max(total, -math.MaxInt32), math.MaxInt32))
}

// ExperienceFactor compares years against the job minimum, capped at 1.2.
func ExperienceFactor(years float64, minYears int) float64 {
	if years < 0 {
		years = 0
	}
	return math.Min(years/float64(max(minYears, 1)), maxExperienceFactor)
}

// SalaryFactor is 1 within budget and decays linearly to 0 as the overage
// reaches the full budget.
func SalaryFactor(expected, budget float64) float64 {
	if budget <= 0 || expected <= budget {
		return 1
	}
	return math.Max(0, 1-(expected-budget)/budget)
}

// ParseSalary extracts the leading amount from free text after dropping every
// character other than digits and '.'. Text without an amount parses to 0.
func ParseSalary(raw string) float64 {
	var b strings.Builder
	dot := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if dot {
				// a second separator ends the leading amount
				return parseAmount(b.String())
			}
			dot = true
			b.WriteRune(r)
		}
	}
	return parseAmount(b.String())
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if math.IsInf(v, 1) {
		// out of range: treat as the largest amount so it stays over budget
		return math.MaxFloat64
	}
	if err != nil {
		return 0
	}
	return v
}

var (
	noticeImmediate = regexp.MustCompile(`\b(immediate(ly)?|0 days?|now)\b`)
	noticeTwoWeeks  = regexp.MustCompile(`\b(15 days?|2 weeks?)\b`)
	noticeOneMonth  = regexp.MustCompile(`\b(30 days?|1 months?)\b`)
)

// AvailabilityFactor buckets a free-text notice period.
func AvailabilityFactor(notice string) float64 {
	np := strings.ToLower(strings.TrimSpace(notice))
	switch {
	case noticeImmediate.MatchString(np):
		return 1
	case noticeTwoWeeks.MatchString(np):
		return 0.8
	case noticeOneMonth.MatchString(np):
		return 0.6
	}
	return 0.5
}

// Fit classifies a match score.
func Fit(matchScore int) Level {
	switch {
	case matchScore >= 80:
		return LevelHigh
	case matchScore >= 60:
		return LevelMedium
	}
	return LevelLow
}

// Risk combines the match score with the salary factor. The High check wins.
func Risk(matchScore int, salaryFactor float64) Level {
	switch {
	case matchScore < 50 || salaryFactor < 0.6:
		return LevelHigh
	case matchScore < 70 || salaryFactor < 0.8:
		return LevelMedium
	}
	return LevelLow
}

// Summary aggregates a ranking.
type Summary struct {
	Count          int           `json:"count"`
	AverageScore   float64       `json:"averageScore"`
	ByFit          map[Level]int `json:"byFit"`
	ByRisk         map[Level]int `json:"byRisk"`
	TopCandidateID string        `json:"topCandidateId,omitempty"`
}

// Summarize aggregates ranked, which is expected in ranking order.
func Summarize(ranked []Ranked) Summary {
	s := Summary{
		Count:  len(ranked),
		ByFit:  map[Level]int{LevelHigh: 0, LevelMedium: 0, LevelLow: 0},
		ByRisk: map[Level]int{LevelHigh: 0, LevelMedium: 0, LevelLow: 0},
	}
	if len(ranked) == 0 {
		return s
	}
	total := 0
	for _, r := range ranked {
		total += r.IntelligenceScore
		s.ByFit[r.FitStatus]++
		s.ByRisk[r.RiskLevel]++
	}
	s.AverageScore = math.Round(float64(total)/float64(len(ranked))*100) / 100
	s.TopCandidateID = ranked[0].ID
	return s
}
