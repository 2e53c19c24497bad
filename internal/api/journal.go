package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-tours/internal/humastar"
	"github.com/joeblew999/plat-tours/internal/service"
)

// JournalReader reads recorded mutation attempts.
type JournalReader interface {
	Recent(ctx context.Context, limit, offset int) ([]service.JournalEntry, int, error)
	Stats(ctx context.Context) ([]service.JournalStat, error)
}

// JournalHandler serves the edit journal.
type JournalHandler struct {
	journal JournalReader
}

// NewJournalHandler creates a journal handler. journal may be nil when the
// database is unavailable.
func NewJournalHandler(journal JournalReader) *JournalHandler {
	return &JournalHandler{journal: journal}
}

// RegisterRoutes registers journal routes with Huma.
func (h *JournalHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/journal", h.List, huma.OperationTags("journal"))
	huma.Get(api, "/api/v1/journal/stats", h.Stats, huma.OperationTags("journal"))
}

// JournalInput pages through the journal.
type JournalInput struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Entries to skip"`
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Page size"`
}

// JournalOutput is one page, newest first.
type JournalOutput struct {
	Body humastar.PageBody[service.JournalEntry]
}

// List returns recorded attempts newest first.
func (h *JournalHandler) List(ctx context.Context, input *JournalInput) (*JournalOutput, error) {
	if h.journal == nil {
		return nil, huma.Error503ServiceUnavailable("Journal not available")
	}
	entries, total, err := h.journal.Recent(ctx, input.Limit, input.Offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read journal", err)
	}
	return &JournalOutput{Body: humastar.NewPage(entries, total, input.Offset, input.Limit)}, nil
}

// StatsOutput is the response for journal statistics.
type StatsOutput struct {
	Body struct {
		Stats []service.JournalStat `json:"stats" doc:"Attempts per operation and outcome"`
	}
}

// Stats aggregates the journal by operation and outcome.
func (h *JournalHandler) Stats(ctx context.Context, input *struct{}) (*StatsOutput, error) {
	if h.journal == nil {
		return nil, huma.Error503ServiceUnavailable("Journal not available")
	}
	stats, err := h.journal.Stats(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to aggregate journal", err)
	}
	out := &StatsOutput{}
	out.Body.Stats = stats
	return out, nil
}
