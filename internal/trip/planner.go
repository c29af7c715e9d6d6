package trip

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// poiFetchLimit is how many places are requested from the provider.
// Clustering operates on this full set; the response is truncated to
// maxTopAttractions afterwards.
const (
	poiFetchLimit     = 20
	maxTopAttractions = 10
)

// geocoder is the interface satisfied by GeocodeClient.
type geocoder interface {
	Geocode(ctx context.Context, city string) (*GeocodeResult, error)
}

// forecaster is the interface satisfied by ForecastClient.
type forecaster interface {
	Forecast(ctx context.Context, lat, lon float64, days int) ([]DailyWeather, error)
}

// placesFinder is the interface satisfied by PlacesClient.
type placesFinder interface {
	Nearby(ctx context.Context, lat, lon float64, limit int) ([]Attraction, error)
}

// PlanCache stores assembled trip plans keyed by (city, days).
// A nil PlanCache disables caching entirely.
type PlanCache interface {
	Get(ctx context.Context, city string, days int) (*TripPlan, error)
	Set(ctx context.Context, city string, days int, plan *TripPlan) error
}

// Planner orchestrates one trip request: cache lookup, geocoding,
// parallel weather + places fetch with independent fallbacks,
// clustering, and response assembly.
type Planner struct {
	geo     geocoder
	weather forecaster
	places  placesFinder
	cache   PlanCache
	log     *slog.Logger
}

// NewPlanner constructs a Planner with production API clients.
// cache may be nil, in which case caching is disabled.
func NewPlanner(weatherKey, placesKey string, cache PlanCache, log *slog.Logger) *Planner {
	return &Planner{
		geo:     NewGeocodeClient(),
		weather: NewForecastClient(weatherKey),
		places:  NewPlacesClient(placesKey),
		cache:   cache,
		log:     log,
	}
}

// NewPlannerWithClients constructs a Planner with injectable collaborators (used in tests).
func NewPlannerWithClients(g geocoder, f forecaster, p placesFinder, cache PlanCache, log *slog.Logger) *Planner {
	return &Planner{geo: g, weather: f, places: p, cache: cache, log: log}
}

// PlanTrip assembles a TripPlan for the given city and trip length.
// Geocoding is the only hard dependency: its failure yields a
// *NotFoundError. Weather and places failures degrade to fallback data,
// and cache failures are treated as misses. days is assumed validated
// to [1,5] by the caller.
func (p *Planner) PlanTrip(ctx context.Context, city string, days int) (*TripPlan, error) {
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, city, days)
		if err != nil {
			p.log.Warn("cache get failed, treating as miss", "city", city, "err", err)
		} else if cached != nil {
			p.log.Info("cache hit", "city", city, "days", days)
			cached.Cached = true
			return cached, nil
		}
	}

	loc, err := p.geo.Geocode(ctx, city)
	if err != nil {
		p.log.Warn("geocoding failed", "city", city, "err", err)
		return nil, &NotFoundError{City: city}
	}
	if loc == nil {
		return nil, &NotFoundError{City: city}
	}

	forecast, attractions := p.fetchBranches(ctx, loc.Coordinates, city, days)

	// Clustering sees the unclipped list; a failed branch contributes
	// nothing to it but still yields a sentinel in the response.
	var clusterInput []Attraction
	top := attractions
	if len(attractions) == 0 {
		top = fallbackAttractions()
	} else {
		clusterInput = attractions
		if len(top) > maxTopAttractions {
			top = top[:maxTopAttractions]
		}
	}

	if len(forecast) == 0 {
		forecast = fallbackWeather(days)
	}

	plan := &TripPlan{
		City:           city,
		Country:        loc.Country,
		Coordinates:    loc.Coordinates,
		Days:           days,
		Weather:        forecast,
		TopAttractions: top,
		TravelNotes:    BuildTravelNotes(clusterInput),
		Cached:         false,
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, city, days, plan); err != nil {
			p.log.Warn("cache set failed", "city", city, "err", err)
		}
	}

	return plan, nil
}

// fetchBranches runs the weather and places fetches concurrently. Each
// branch records its own result; a failure in one never aborts the
// other, and neither error propagates — the caller substitutes
// fallbacks for empty results.
func (p *Planner) fetchBranches(ctx context.Context, origin Coordinates, city string, days int) ([]DailyWeather, []Attraction) {
	var (
		forecast    []DailyWeather
		forecastErr error
		attractions []Attraction
		placesErr   error
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("weather fetch panicked", "recover", r)
				err = fmt.Errorf("weather fetch panicked: %v", r)
			}
		}()
		forecast, forecastErr = p.weather.Forecast(gCtx, origin.Lat, origin.Lon, days)
		return nil
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("places fetch panicked", "recover", r)
				err = fmt.Errorf("places fetch panicked: %v", r)
			}
		}()
		attractions, placesErr = p.places.Nearby(gCtx, origin.Lat, origin.Lon, poiFetchLimit)
		return nil
	})

	// Branches only return an error on panic; provider failures are
	// captured in the per-branch error variables.
	if err := g.Wait(); err != nil {
		p.log.Error("fetch branch panicked", "city", city, "err", err)
		return nil, nil
	}

	if forecastErr != nil {
		p.log.Warn("weather fetch failed, using fallback", "city", city, "err", forecastErr)
		forecast = nil
	}
	if placesErr != nil {
		p.log.Warn("places fetch failed, using fallback", "city", city, "err", placesErr)
		attractions = nil
	}

	return forecast, attractions
}

// fallbackWeather returns days placeholder entries labeled "Day 1".."Day N".
func fallbackWeather(days int) []DailyWeather {
	out := make([]DailyWeather, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, DailyWeather{
			Date:        fmt.Sprintf("Day %d", i+1),
			TempAvg:     20.0,
			TempMin:     15.0,
			TempMax:     25.0,
			Description: "Weather data unavailable",
			Humidity:    50,
			WindSpeed:   5.0,
		})
	}
	return out
}

// fallbackAttractions returns the single sentinel entry signaling that
// the places provider was unavailable.
func fallbackAttractions() []Attraction {
	return []Attraction{
		{
			Name:     "Attractions data unavailable",
			Category: "Information",
			Address:  "Please check API configuration",
		},
	}
}
