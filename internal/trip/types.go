package trip

import "fmt"

// Coordinates is a geographic point produced by geocoding.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DailyWeather summarizes the forecast for a single calendar day.
// Temperatures are in °C, wind speed in m/s, humidity in percent.
type DailyWeather struct {
	Date        string  `json:"date"`
	TempAvg     float64 `json:"temp_avg"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// Attraction is a point of interest near the trip destination.
// DistanceKm is nil when the provider gave no usable coordinates.
// Rating is nil — the current places provider does not supply one.
type Attraction struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	DistanceKm *float64 `json:"distance"`
	Address    string   `json:"address"`
	Rating     *float64 `json:"rating"`
}

// DistanceCluster groups attraction names that fall into one distance band.
// Count covers the whole band; Attractions is capped at the nearest 5.
type DistanceCluster struct {
	Label       string   `json:"cluster_name"`
	Count       int      `json:"count"`
	Attractions []string `json:"attractions"`
}

// TravelNotes is the derived clustering summary, recomputed per request.
type TravelNotes struct {
	Clusters         []DistanceCluster `json:"distance_clusters"`
	TotalAttractions int               `json:"total_attractions"`
}

// TripPlan is the aggregated response for one (city, days) request.
// Cached is false on the value written to the cache and true only on
// the copy served from a cache hit.
type TripPlan struct {
	City           string         `json:"city"`
	Country        string         `json:"country,omitempty"`
	Coordinates    Coordinates    `json:"coordinates"`
	Days           int            `json:"days"`
	Weather        []DailyWeather `json:"weather_forecast"`
	TopAttractions []Attraction   `json:"top_attractions"`
	TravelNotes    TravelNotes    `json:"travel_notes"`
	Cached         bool           `json:"cached"`
}

// NotFoundError is returned when a destination cannot be geocoded.
// It is the only error that crosses the planner boundary.
type NotFoundError struct {
	City string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("city %q not found", e.City)
}
