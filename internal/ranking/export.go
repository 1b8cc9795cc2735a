package ranking

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	rankedSheet  = "Ranked Candidates"
)

var rankedHeaders = []string{
	"Rank", "Candidate", "Email", "Status", "Intelligence Score", "Match Score",
	"Fit", "Risk", "Salary Alignment (%)", "Experience (years)", "Expected Salary", "Notice Period",
}

// Workbook renders r as an .xlsx document.
func Workbook(r Result, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(rankedSheet); err != nil {
		return nil, err
	}
	if err := writeSummary(f, r, generated); err != nil {
		return nil, fmt.Errorf("ranking: summary sheet: %w", err)
	}
	if err := writeRanked(f, r.Candidates); err != nil {
		return nil, fmt.Errorf("ranking: candidates sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, r Result, generated time.Time) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 40); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	title := ""
	if r.Job != nil {
		title = r.Job.Title
	}
	rows := [][]any{
		{"Candidate Ranking Report"},
		{},
		{"Job Title", title},
		{"Generated", generated.Format("2006-01-02 15:04:05")},
		{"Candidates Ranked", r.Summary.Count},
		{"Average Score", r.Summary.AverageScore},
		{"Top Candidate", r.Summary.TopCandidateID},
		{},
		{"Weights"},
		{"Skills", r.Weights.Skills},
		{"Salary", r.Weights.Salary},
		{"Experience", r.Weights.Experience},
		{"Availability", r.Weights.Availability},
		{},
		{"Fit High", r.Summary.ByFit[LevelHigh]},
		{"Fit Medium", r.Summary.ByFit[LevelMedium]},
		{"Fit Low", r.Summary.ByFit[LevelLow]},
		{"Risk High", r.Summary.ByRisk[LevelHigh]},
		{"Risk Medium", r.Summary.ByRisk[LevelMedium]},
		{"Risk Low", r.Summary.ByRisk[LevelLow]},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.MergeCell(summarySheet, "A1", "B1"); err != nil {
		return err
	}
	return f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
}

func writeRanked(f *excelize.File, ranked []Ranked) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	header := make([]any, len(rankedHeaders))
	for i, h := range rankedHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(rankedSheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(rankedHeaders), 1)
	if err := f.SetCellStyle(rankedSheet, "A1", last, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(rankedSheet, "B", "C", 28); err != nil {
		return err
	}

	for i, c := range ranked {
		row := []any{
			i + 1, c.FullName, c.Email, c.Status, c.IntelligenceScore, c.MatchScore,
			string(c.FitStatus), string(c.RiskLevel), c.SalaryAlignment, c.ExperienceYears,
			c.ExpectedSalary, c.NoticePeriod,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(rankedSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetPanes(rankedSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
