package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/Tubbz-alt/thor/internal/api/models"
	"github.com/Tubbz-alt/thor/internal/events"
)

// registerSSERoutes registers the session event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of include, header, warning and session completion events",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"connected":          models.StreamOpened{},
		"include-entered":    events.IncludeEnteredEvent{},
		"header-probed":      events.HeaderProbedEvent{},
		"validation-warning": events.ValidationWarningEvent{},
		"session-completed":  events.SessionCompletedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.IncludeEnteredEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.HeaderProbedEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.ValidationWarningEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.SessionCompletedEvent](s.bus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		if err := send.Data(models.StreamOpened{
			Message:   "SSE connection established",
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
