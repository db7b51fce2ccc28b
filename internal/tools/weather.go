package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/ragline/ragline/internal/log"
)

// Open-Meteo needs no API key, which keeps the weather tool usable in a
// fully local setup.
const (
	geocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	forecastURL  = "https://api.open-meteo.com/v1/forecast"
)

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// WeatherClient resolves a city to coordinates and fetches its current
// weather. The zero endpoints default to Open-Meteo; tests point them at a
// local server.
type WeatherClient struct {
	GeocodingURL string
	ForecastURL  string
	HTTPClient   *http.Client
	Logger       log.Logger
}

// NewWeatherTool wraps client as the getWeather tool.
func NewWeatherTool(client *WeatherClient) Tool {
	if client.GeocodingURL == "" {
		client.GeocodingURL = geocodingURL
	}
	if client.ForecastURL == "" {
		client.ForecastURL = forecastURL
	}
	if client.HTTPClient == nil {
		client.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if client.Logger == nil {
		client.Logger = log.NewNop()
	}

	return Tool{
		Descriptor: Descriptor{
			FunctionName: "getWeather",
			Parameters:   map[string]string{"city_name": "<city>"},
			Description:  "This tool is triggered if the user asks about the current weather in a city.",
		},
		Execute: func(ctx context.Context, params Params) (string, error) {
			city := capitalizeWord(strings.TrimSpace(params.String("city_name")))
			if city == "" {
				return "Malformed parameter: city_name must not be empty.", nil
			}
			return client.currentWeather(ctx, city)
		},
	}
}

func (c *WeatherClient) currentWeather(ctx context.Context, city string) (string, error) {
	var geo geocodingResponse
	geoQuery := url.Values{"name": {city}, "count": {"1"}}
	if err := c.getJSON(ctx, c.GeocodingURL+"?"+geoQuery.Encode(), &geo); err != nil {
		return fmt.Sprintf("Weather lookup failed for %s: %v", city, err), nil
	}
	if len(geo.Results) == 0 {
		return fmt.Sprintf("No location named %q was found.", city), nil
	}
	loc := geo.Results[0]

	var forecast forecastResponse
	fcQuery := url.Values{
		"latitude":        {fmt.Sprintf("%.4f", loc.Latitude)},
		"longitude":       {fmt.Sprintf("%.4f", loc.Longitude)},
		"current_weather": {"true"},
	}
	if err := c.getJSON(ctx, c.ForecastURL+"?"+fcQuery.Encode(), &forecast); err != nil {
		return fmt.Sprintf("Weather lookup failed for %s: %v", city, err), nil
	}

	cw := forecast.CurrentWeather
	c.Logger.Debug("weather lookup", "city", city, "resolved", loc.Name)
	return fmt.Sprintf("Current weather in %s (%s): %.1f°C, wind %.1f km/h.",
		loc.Name, loc.Country, cw.Temperature, cw.WindSpeed), nil
}

func (c *WeatherClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// capitalizeWord uppercases the first rune and lowercases the rest, turning
// "paris" into "Paris" before it reaches the geocoder and the transcript.
func capitalizeWord(word string) string {
	if word == "" {
		return ""
	}
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
