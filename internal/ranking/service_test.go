package ranking

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/protocolai/hireai/internal/applications"
	"github.com/protocolai/hireai/internal/jobposts"
	"github.com/protocolai/hireai/internal/shared"
)

type stubJobs map[string]jobposts.JobPost

func (s stubJobs) Get(_ context.Context, id string) (jobposts.JobPost, error) {
	p, ok := s[id]
	if !ok {
		return jobposts.JobPost{}, shared.ErrNotFound
	}
	return p, nil
}

type stubApps struct {
	byJob map[string][]applications.Application
	err   error
}

func (s stubApps) ForJob(_ context.Context, jobID string) ([]applications.Application, error) {
	return s.byJob[jobID], s.err
}

type countingObserver struct{ sizes []int }

func (c *countingObserver) ObserveRanking(n int) { c.sizes = append(c.sizes, n) }

func application(id string, score int, salary string) applications.Application {
	return applications.Application{
		ID:    id,
		JobID: "job-1",
		Candidate: applications.CandidateInfo{
			FullName:       "Candidate " + id,
			Email:          id + "@example.com",
			ExpectedSalary: salary,
			NoticePeriod:   "Immediate",
		},
		Extracted:  applications.ExtractedData{ExperienceYears: 3},
		MatchScore: score,
		Status:     applications.StatusPending,
	}
}

func newRankingService(obs Observer) *Service {
	jobs := stubJobs{"job-1": {ID: "job-1", Title: "Data Analyst", MinYearsExperience: 3, SalaryBudget: 2500}}
	archived := application("app-3", 99, "1000")
	archived.Archived = true
	apps := stubApps{byJob: map[string][]applications.Application{
		"job-1": {application("app-1", 60, "2500"), application("app-2", 85, "4000"), archived},
	}}
	return NewService(jobs, apps, Options{DefaultBudget: 2000}, obs)
}

func TestServiceRank(t *testing.T) {
	obs := &countingObserver{}
	svc := newRankingService(obs)

	res, err := svc.Rank(context.Background(), "job-1", DefaultWeights())
	require.NoError(t, err)
	require.NotNil(t, res.Job)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "Data Analyst", res.Job.Title)
	assert.Equal(t, 2, res.Summary.Count)
	assert.Equal(t, []int{2}, obs.sizes)

	for _, c := range res.Candidates {
		assert.NotEqual(t, "app-3", c.ID)
	}
}

func TestServiceRankUnknownJob(t *testing.T) {
	obs := &countingObserver{}
	svc := newRankingService(obs)

	res, err := svc.Rank(context.Background(), "job-missing", DefaultWeights())
	require.NoError(t, err)
	assert.Nil(t, res.Job)
	assert.Empty(t, res.Candidates)
	assert.Empty(t, obs.sizes)
}

func TestServiceRankPropagatesStoreErrors(t *testing.T) {
	svc := NewService(stubJobs{}, stubApps{err: errors.New("pool closed")}, Options{}, nil)
	_, err := svc.Rank(context.Background(), "job-1", DefaultWeights())
	require.Error(t, err)
}

func TestWorkbook(t *testing.T) {
	svc := newRankingService(nil)
	res, err := svc.Rank(context.Background(), "job-1", DefaultWeights())
	require.NoError(t, err)

	doc, err := Workbook(res, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(doc))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Ranked Candidates"}, f.GetSheetList())

	rows, err := f.GetRows("Ranked Candidates")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, res.Candidates[0].FullName, rows[1][1])

	title, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", title)
}

func TestWeightsFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/intelligence/jobs/job-1/ranking?skills=70&salary=-3&experience=abc", nil)
	w := WeightsFromQuery(r)
	assert.Equal(t, Weights{Skills: 70}, w)

	r = httptest.NewRequest("GET", "/intelligence/jobs/job-1/ranking?skills=100", nil)
	assert.Equal(t, Weights{Skills: 100}, WeightsFromQuery(r))

	r = httptest.NewRequest("GET", "/intelligence/jobs/job-1/ranking?page=2", nil)
	assert.Equal(t, DefaultWeights(), WeightsFromQuery(r))
}

func TestAttachmentDispositionEscapesJobID(t *testing.T) {
	for _, id := range []string{"job-1", `job"; filename="evil.exe`} {
		disposition, params, err := mime.ParseMediaType(attachmentDisposition(id))
		require.NoError(t, err, id)
		assert.Equal(t, "attachment", disposition)
		assert.Equal(t, "ranking-"+id+".xlsx", params["filename"])
	}
}
