package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/protocolai/hireai/internal/shared"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Service reads the audit timeline.
type Service struct {
	repo Repository
}

// NewService builds the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of entries, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if err := checkRange(filters); err != nil {
		return Result{}, err
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	rows, err := s.repo.Window(ctx, filters, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	if rows == nil {
		rows = []Entry{}
	}
	paging := Paging{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Entries: rows, Paging: paging}, nil
}

// ExportCSV renders every entry matching filters as CSV.
func (s *Service) ExportCSV(ctx context.Context, filters TimelineFilters) ([]byte, error) {
	if err := checkRange(filters); err != nil {
		return nil, err
	}
	rows, err := s.repo.All(ctx, filters)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "occurred_at", "actor_id", "action", "entity", "entity_id", "meta"}); err != nil {
		return nil, err
	}
	for _, e := range rows {
		meta := ""
		if len(e.Meta) > 0 {
			raw, err := json.Marshal(e.Meta)
			if err != nil {
				return nil, err
			}
			meta = string(raw)
		}
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.At.UTC().Format(time.RFC3339),
			e.ActorID,
			e.Action,
			e.Entity,
			e.EntityID,
			meta,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func checkRange(f TimelineFilters) error {
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return fmt.Errorf("%w: to must not be before from", shared.ErrValidation)
	}
	return nil
}
