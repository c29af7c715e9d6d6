package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

const httpTimeout = 10 * time.Second

// newHTTPClient returns an http.Client with a 10-second timeout.
// Each outbound provider call is bounded by this budget independently.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// doGet performs a GET request with the given headers and decodes the
// JSON response into dst.
func doGet(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}

	return nil
}

// ---- Nominatim ----

// GeocodeResult is a resolved destination.
type GeocodeResult struct {
	Coordinates Coordinates
	DisplayName string
	Country     string
}

// GeocodeClient resolves free-text place names via the OpenStreetMap
// Nominatim API.
type GeocodeClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

const nominatimDefaultURL = "https://nominatim.openstreetmap.org/search"

// NewGeocodeClient constructs a GeocodeClient against the production API.
func NewGeocodeClient() *GeocodeClient {
	return NewGeocodeClientWithURL(nominatimDefaultURL)
}

// NewGeocodeClientWithURL constructs a GeocodeClient pointing at a custom base URL (for tests).
func NewGeocodeClientWithURL(baseURL string) *GeocodeClient {
	return &GeocodeClient{
		baseURL:   baseURL,
		userAgent: "wanderplan/1.0",
		client:    newHTTPClient(),
	}
}

// Nominatim returns coordinates as JSON strings, not numbers.
type nominatimEntry struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Country string `json:"country"`
	} `json:"address"`
}

// Geocode resolves a city name to coordinates and country.
// Returns nil, nil when the provider has no match for the name.
func (c *GeocodeClient) Geocode(ctx context.Context, city string) (*GeocodeResult, error) {
	endpoint := c.baseURL + "?q=" + url.QueryEscape(city) + "&format=json&limit=1&addressdetails=1"

	var raw []nominatimEntry
	if err := doGet(ctx, c.client, endpoint, map[string]string{"User-Agent": c.userAgent}, &raw); err != nil {
		return nil, fmt.Errorf("nominatim geocode for %s: %w", city, err)
	}

	if len(raw) == 0 {
		return nil, nil
	}

	entry := raw[0]
	lat, err := strconv.ParseFloat(entry.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim geocode for %s: parsing lat %q: %w", city, entry.Lat, err)
	}
	lon, err := strconv.ParseFloat(entry.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim geocode for %s: parsing lon %q: %w", city, entry.Lon, err)
	}

	return &GeocodeResult{
		Coordinates: Coordinates{Lat: lat, Lon: lon},
		DisplayName: entry.DisplayName,
		Country:     entry.Address.Country,
	}, nil
}

// ---- OpenWeatherMap ----

// ForecastClient fetches the 5-day / 3-hour forecast from OpenWeatherMap
// and aggregates it into daily summaries.
type ForecastClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

const owmDefaultURL = "https://api.openweathermap.org/data/2.5/forecast"

// NewForecastClient constructs a ForecastClient with the given API key.
func NewForecastClient(apiKey string) *ForecastClient {
	return &ForecastClient{apiKey: apiKey, baseURL: owmDefaultURL, client: newHTTPClient()}
}

// NewForecastClientWithURL constructs a ForecastClient pointing at a custom base URL (for tests).
func NewForecastClientWithURL(baseURL, apiKey string) *ForecastClient {
	return &ForecastClient{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient()}
}

type owmForecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// Forecast retrieves up to days daily summaries for the given coordinates.
// When the provider has samples for fewer calendar days, fewer entries
// are returned; the caller decides whether that warrants a fallback.
func (c *ForecastClient) Forecast(ctx context.Context, lat, lon float64, days int) ([]DailyWeather, error) {
	endpoint := fmt.Sprintf("%s?lat=%f&lon=%f&appid=%s&units=metric", c.baseURL, lat, lon, c.apiKey)

	var raw owmForecastResponse
	if err := doGet(ctx, c.client, endpoint, nil, &raw); err != nil {
		return nil, fmt.Errorf("openweathermap forecast for lat=%f lon=%f: %w", lat, lon, err)
	}

	return aggregateDaily(raw, days), nil
}

// daySamples accumulates the sub-daily readings for one calendar date.
type daySamples struct {
	temps        []float64
	descriptions []string
	humidity     []int
	windSpeed    []float64
}

// aggregateDaily groups 3-hourly samples by local calendar date and
// reduces each date to one DailyWeather. Only the first days dates,
// sorted ascending, are kept. The grouping map is built fresh per call
// and discarded after aggregation.
func aggregateDaily(raw owmForecastResponse, days int) []DailyWeather {
	byDate := make(map[string]*daySamples)
	for _, item := range raw.List {
		date := time.Unix(item.Dt, 0).Format("2006-01-02")
		s, ok := byDate[date]
		if !ok {
			s = &daySamples{}
			byDate[date] = s
		}
		s.temps = append(s.temps, item.Main.Temp)
		if len(item.Weather) > 0 {
			s.descriptions = append(s.descriptions, item.Weather[0].Description)
		}
		s.humidity = append(s.humidity, item.Main.Humidity)
		s.windSpeed = append(s.windSpeed, item.Wind.Speed)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if len(dates) > days {
		dates = dates[:days]
	}

	result := make([]DailyWeather, 0, len(dates))
	for _, date := range dates {
		s := byDate[date]
		result = append(result, DailyWeather{
			Date:        date,
			TempAvg:     round1(mean(s.temps)),
			TempMin:     round1(minOf(s.temps)),
			TempMax:     round1(maxOf(s.temps)),
			Description: modal(s.descriptions),
			Humidity:    int(meanInt(s.humidity)),
			WindSpeed:   round1(mean(s.windSpeed)),
		})
	}

	return result
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func meanInt(vs []int) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum int
	for _, v := range vs {
		sum += v
	}
	return float64(sum) / float64(len(vs))
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// modal returns the most frequent string; ties go to the value seen first.
func modal(vs []string) string {
	if len(vs) == 0 {
		return ""
	}

	counts := make(map[string]int, len(vs))
	var order []string
	for _, v := range vs {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// ---- Foursquare ----

// PlacesClient fetches nearby points of interest from the Foursquare
// Places API and annotates them with distance from the query origin.
type PlacesClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

const fsqDefaultURL = "https://places-api.foursquare.com/places/search"

const fsqAPIVersion = "2025-06-17"

// NewPlacesClient constructs a PlacesClient with the given API key.
func NewPlacesClient(apiKey string) *PlacesClient {
	return &PlacesClient{apiKey: apiKey, baseURL: fsqDefaultURL, client: newHTTPClient()}
}

// NewPlacesClientWithURL constructs a PlacesClient pointing at a custom base URL (for tests).
func NewPlacesClientWithURL(baseURL, apiKey string) *PlacesClient {
	return &PlacesClient{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient()}
}

type fsqSearchResponse struct {
	Results []struct {
		Name       string `json:"name"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Geocodes struct {
			Main struct {
				Latitude  *float64 `json:"latitude"`
				Longitude *float64 `json:"longitude"`
			} `json:"main"`
		} `json:"geocodes"`
		Location struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"location"`
	} `json:"results"`
}

// Nearby retrieves up to limit places around the origin, sorted
// ascending by distance with unknown-distance entries last.
func (c *PlacesClient) Nearby(ctx context.Context, lat, lon float64, limit int) ([]Attraction, error) {
	endpoint := fmt.Sprintf("%s?ll=%f%%2C%f&limit=%d", c.baseURL, lat, lon, limit)

	headers := map[string]string{
		"Authorization":        "Bearer " + c.apiKey,
		"Accept":               "application/json",
		"X-Places-Api-Version": fsqAPIVersion,
	}

	var raw fsqSearchResponse
	if err := doGet(ctx, c.client, endpoint, headers, &raw); err != nil {
		return nil, fmt.Errorf("foursquare search for lat=%f lon=%f: %w", lat, lon, err)
	}

	attractions := make([]Attraction, 0, len(raw.Results))
	for _, place := range raw.Results {
		var distance *float64
		if place.Geocodes.Main.Latitude != nil && place.Geocodes.Main.Longitude != nil {
			d := Haversine(lat, lon, *place.Geocodes.Main.Latitude, *place.Geocodes.Main.Longitude)
			distance = &d
		}

		category := "Attraction"
		if len(place.Categories) > 0 && place.Categories[0].Name != "" {
			category = place.Categories[0].Name
		}

		name := place.Name
		if name == "" {
			name = "Unknown"
		}

		attractions = append(attractions, Attraction{
			Name:       name,
			Category:   category,
			DistanceKm: distance,
			Address:    place.Location.FormattedAddress,
		})
	}

	// Nil distances sort as +infinity.
	sort.SliceStable(attractions, func(i, j int) bool {
		di, dj := attractions[i].DistanceKm, attractions[j].DistanceKm
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})

	return attractions, nil
}
