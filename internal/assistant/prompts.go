package assistant

import (
	"fmt"
	"strings"

	"github.com/wanderplan/wanderplan/internal/trip"
)

// Bounds on how much plan data is handed to the rendering call.
const (
	summaryWeatherDays = 3
	summaryAttractions = 5
)

const parseInstructions = `You are a travel query parser. Extract the city name and number of days from the user's query.
Return a JSON object with "city" (string) and "days" (integer, 1-5, default 3) keys.
If the query is not about travel planning, return {"error": "Not a travel query"}.

Examples:
- "Plan a 3-day trip to Paris" -> {"city": "Paris", "days": 3}
- "I want to visit Tokyo for 5 days" -> {"city": "Tokyo", "days": 5}
- "Tell me about Rome" -> {"city": "Rome", "days": 3}
- "What's the weather in London?" -> {"city": "London", "days": 3}
- "What's the capital of France?" -> {"error": "Not a travel query"}`

const renderInstructions = `You are a friendly and knowledgeable travel assistant.
Based on the travel data provided, give a helpful, conversational response to the user's query.
Be concise but informative. Highlight key weather patterns and must-visit attractions.
Use a warm, encouraging tone. Keep responses to 3-4 paragraphs maximum.`

func parsePrompt(query string) string {
	return parseInstructions + "\n\nUser query: " + query
}

func renderPrompt(query string, plan *trip.TripPlan) string {
	var b strings.Builder

	b.WriteString(renderInstructions)
	b.WriteString("\n\nUser Query: ")
	b.WriteString(query)
	b.WriteString("\n\nTravel Data:\n")

	fmt.Fprintf(&b, "City: %s, %s\nDays: %d\n\nWeather Forecast:\n", plan.City, plan.Country, plan.Days)
	for i, day := range plan.Weather {
		if i >= summaryWeatherDays {
			break
		}
		fmt.Fprintf(&b, "- %s: %.1f°C, %s\n", day.Date, day.TempAvg, day.Description)
	}

	b.WriteString("\nTop Attractions:\n")
	for i, attr := range plan.TopAttractions {
		if i >= summaryAttractions {
			break
		}
		fmt.Fprintf(&b, "%d. %s", i+1, attr.Name)
		if attr.DistanceKm != nil {
			fmt.Fprintf(&b, " (%.2fkm away)", *attr.DistanceKm)
		}
		b.WriteString("\n")
	}

	return b.String()
}
