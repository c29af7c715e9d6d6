package api

import (
	"context"

	"github.com/wanderplan/wanderplan/internal/assistant"
	"github.com/wanderplan/wanderplan/internal/trip"
)

// TripPlanner defines the trip aggregation needed by handlers.
type TripPlanner interface {
	PlanTrip(ctx context.Context, city string, days int) (*trip.TripPlan, error)
}

// ChatAssistant defines the conversational front-end needed by handlers.
type ChatAssistant interface {
	HandleQuery(ctx context.Context, query string) assistant.ChatResult
}

// CachePinger reports cache reachability for the health endpoint.
type CachePinger interface {
	Ping(ctx context.Context) error
}
