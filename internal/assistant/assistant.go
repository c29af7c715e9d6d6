package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/wanderplan/wanderplan/internal/trip"
)

const (
	defaultDays = 3
	minDays     = 1
	maxDays     = 5

	parseTemperature  = 0.1
	renderTemperature = 0.7
)

// Canned replies for the conversational failure paths. The chat surface
// never exposes a raw error to the caller.
const (
	msgRedirect      = "I'm a travel planning assistant. Please ask me about destinations, weather, or attractions in cities around the world!"
	msgRephrase      = "I'm having trouble understanding your request. Could you please rephrase it?"
	msgNoCity        = "I couldn't identify a city in your query. Which city would you like to know about?"
	msgInternalError = "I encountered an error processing your request. Please try again."
)

// TripPlanner is the planning dependency consumed by the assistant.
type TripPlanner interface {
	PlanTrip(ctx context.Context, city string, days int) (*trip.TripPlan, error)
}

// ChatResult is the outcome of one conversational turn.
type ChatResult struct {
	Query    string         `json:"query"`
	Response string         `json:"response"`
	TripData *trip.TripPlan `json:"trip_data,omitempty"`
	Err      string         `json:"error,omitempty"`
}

// Assistant parses free-text travel queries, delegates to the planner,
// and renders natural-language summaries.
type Assistant struct {
	gen     Generator
	planner TripPlanner
	log     *slog.Logger
}

// New constructs an Assistant.
func New(gen Generator, planner TripPlanner, log *slog.Logger) *Assistant {
	return &Assistant{gen: gen, planner: planner, log: log}
}

// parsedQuery is the structured extraction from a free-text query.
// Error is set when the model judged the text unrelated to travel.
type parsedQuery struct {
	City  string `json:"city"`
	Days  int    `json:"days"`
	Error string `json:"error"`
}

// HandleQuery runs one conversational turn. Every failure path degrades
// to a conversational message; the only structured signal is the Err
// field carried alongside it.
func (a *Assistant) HandleQuery(ctx context.Context, query string) ChatResult {
	parsed, err := a.parseQuery(ctx, query)
	if err != nil {
		a.log.Warn("query parse failed", "query", query, "err", err)
		return ChatResult{Query: query, Response: msgRephrase, Err: "failed to parse query"}
	}

	if parsed.Error != "" {
		a.log.Info("non-travel query", "query", query, "reason", parsed.Error)
		return ChatResult{Query: query, Response: msgRedirect, Err: parsed.Error}
	}

	if parsed.City == "" {
		return ChatResult{Query: query, Response: msgNoCity, Err: "no city specified"}
	}

	days := parsed.Days
	if days == 0 {
		days = defaultDays
	}
	if days < minDays {
		days = minDays
	}
	if days > maxDays {
		days = maxDays
	}

	plan, err := a.planner.PlanTrip(ctx, parsed.City, days)
	if err != nil {
		var nf *trip.NotFoundError
		if errors.As(err, &nf) {
			return ChatResult{
				Query:    query,
				Response: fmt.Sprintf("I couldn't find information about %s. Please check the city name and try again.", parsed.City),
				Err:      err.Error(),
			}
		}
		a.log.Error("planning failed", "city", parsed.City, "err", err)
		return ChatResult{Query: query, Response: msgInternalError, Err: err.Error()}
	}

	reply, err := a.renderReply(ctx, query, plan)
	if err != nil {
		a.log.Warn("reply rendering failed", "city", plan.City, "err", err)
		return ChatResult{
			Query:    query,
			Response: fmt.Sprintf("I found information about %s, but I'm having trouble formatting a response. Please try again.", plan.City),
			TripData: plan,
			Err:      "failed to generate response",
		}
	}

	return ChatResult{Query: query, Response: reply, TripData: plan}
}

// parseQuery extracts (city, days) from free text via the model.
func (a *Assistant) parseQuery(ctx context.Context, query string) (*parsedQuery, error) {
	raw, err := a.gen.GenerateContent(ctx, parsePrompt(query), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](parseTemperature),
	})
	if err != nil {
		return nil, fmt.Errorf("extracting travel parameters: %w", err)
	}

	var parsed parsedQuery
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("decoding extraction %q: %w", raw, err)
	}

	return &parsed, nil
}

// renderReply asks the model for a short narrative over a bounded
// summary of the plan.
func (a *Assistant) renderReply(ctx context.Context, query string, plan *trip.TripPlan) (string, error) {
	reply, err := a.gen.GenerateContent(ctx, renderPrompt(query, plan), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](renderTemperature),
	})
	if err != nil {
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("model returned empty reply")
	}
	return reply, nil
}

// cleanJSONResponse strips markdown code fences the model sometimes
// wraps around JSON output.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}

	return strings.TrimSpace(response)
}
