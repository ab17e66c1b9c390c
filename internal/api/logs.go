package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Tubbz-alt/thor/internal/api/models"
	"github.com/Tubbz-alt/thor/internal/logging"
)

// registerLogRoutes serves the in-memory log buffer.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Recent Logs",
		Description: "Return the most recent log records kept in memory, oldest first",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, input *models.LogsRequest) (*models.LogsResponse, error) {
		data := models.LogsData{Entries: []models.LogEntryData{}}

		buffer := logging.GetBuffer()
		if buffer == nil {
			return &models.LogsResponse{Body: data}, nil
		}

		// Filter before limiting so that limit counts matching entries.
		entries := buffer.Tail(0)
		if input.Module != "" {
			kept := entries[:0]
			for _, e := range entries {
				if e.Module == input.Module {
					kept = append(kept, e)
				}
			}
			entries = kept
		}
		if input.Limit > 0 && len(entries) > input.Limit {
			entries = entries[len(entries)-input.Limit:]
		}

		for _, e := range entries {
			data.Entries = append(data.Entries, models.LogEntryData{
				Timestamp:  e.Timestamp,
				Level:      e.Level,
				Module:     e.Module,
				Message:    e.Message,
				Attributes: e.Attributes,
			})
		}
		data.Count = len(data.Entries)
		return &models.LogsResponse{Body: data}, nil
	})
}
