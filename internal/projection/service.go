package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/thosangs/revroll/internal/core/storage"
	"github.com/thosangs/revroll/internal/core/summary"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid summary query")

// ErrUnknownModel marks queries against a model no profile defines.
var ErrUnknownModel = errors.New("unknown summary model")

// Service implements the summary query layer. Read-only: it observes
// whatever snapshot the last completed rollup run committed.
type Service struct {
	store    storage.SummaryStore
	profiles map[string]summary.Profile
}

// NewService creates a new projection service.
func NewService(store storage.SummaryStore, profiles []summary.Profile) *Service {
	profileMap := make(map[string]summary.Profile, len(profiles))
	for _, p := range profiles {
		profileMap[p.Name] = p
	}
	return &Service{
		store:    store,
		profiles: profileMap,
	}
}

// QuerySummaries retrieves summary rows for a model and period range.
func (s *Service) QuerySummaries(ctx context.Context, req SummaryQueryRequest) (*SummaryQueryResponse, error) {
	if _, ok := s.profiles[req.Model]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, req.Model)
	}
	if !req.End.After(req.Start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidQuery)
	}
	if req.Rollup != "" && req.Rollup != "total" {
		return nil, fmt.Errorf("%w: unsupported rollup %q", ErrInvalidQuery, req.Rollup)
	}

	rows, err := s.store.ScanRange(ctx, req.Model, req.Start.UTC(), req.End.UTC())
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}

	values := make([]SummaryValue, 0, len(rows))
	for _, r := range rows {
		values = append(values, SummaryValue{
			Period:      r.Period,
			Revenue:     r.Revenue,
			Orders:      r.Orders,
			Buyers:      r.Buyers,
			Extra:       r.Extra,
			Running:     r.Running,
			IsHoliday:   r.IsHoliday,
			HolidayName: r.HolidayName,
		})
	}

	resp := &SummaryQueryResponse{
		Model:  req.Model,
		Start:  req.Start.UTC(),
		End:    req.End.UTC(),
		Values: values,
	}
	if req.Rollup == "total" {
		resp.Total = rollupTotal(rows)
	}

	return resp, nil
}
