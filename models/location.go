package models

import (
	"strconv"
	"strings"
)

// Location is one of the fixed browsing regions a scrape can egress from.
type Location struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`

	// Browser emulation presets for the region.
	Locale    string  `json:"-"`
	Timezone  string  `json:"-"`
	Latitude  float64 `json:"-"`
	Longitude float64 `json:"-"`
}

// DefaultLocationID is used when a request omits the location.
const DefaultLocationID = 1

var locations = []Location{
	{ID: 1, Code: "US", Name: "United States", Locale: "en-US", Timezone: "America/Los_Angeles", Latitude: 37.7749, Longitude: -122.4194},
	{ID: 2, Code: "UK", Name: "United Kingdom", Locale: "en-GB", Timezone: "Europe/London", Latitude: 51.5074, Longitude: -0.1278},
	{ID: 3, Code: "CA", Name: "Canada", Locale: "en-CA", Timezone: "America/Toronto", Latitude: 43.6532, Longitude: -79.3832},
	{ID: 4, Code: "AU", Name: "Australia", Locale: "en-AU", Timezone: "Australia/Sydney", Latitude: -33.8688, Longitude: 151.2093},
	{ID: 5, Code: "DE", Name: "Germany", Locale: "de-DE", Timezone: "Europe/Berlin", Latitude: 52.5200, Longitude: 13.4050},
	{ID: 6, Code: "FR", Name: "France", Locale: "fr-FR", Timezone: "Europe/Paris", Latitude: 48.8566, Longitude: 2.3522},
	{ID: 7, Code: "JP", Name: "Japan", Locale: "ja-JP", Timezone: "Asia/Tokyo", Latitude: 35.6762, Longitude: 139.6503},
	{ID: 8, Code: "BR", Name: "Brazil", Locale: "pt-BR", Timezone: "America/Sao_Paulo", Latitude: -23.5505, Longitude: -46.6333},
	{ID: 9, Code: "IN", Name: "India", Locale: "en-IN", Timezone: "Asia/Kolkata", Latitude: 28.6139, Longitude: 77.2090},
	{ID: 10, Code: "SG", Name: "Singapore", Locale: "en-SG", Timezone: "Asia/Singapore", Latitude: 1.3521, Longitude: 103.8198},
}

// Locations returns a copy of the fixed region table in id order.
func Locations() []Location {
	out := make([]Location, len(locations))
	copy(out, locations)
	return out
}

// LocationByID resolves a numeric location id (1-10).
func LocationByID(id int) (Location, bool) {
	if id < 1 || id > len(locations) {
		return Location{}, false
	}
	return locations[id-1], true
}

// LocationByCode resolves a two-letter region code, case-insensitively.
func LocationByCode(code string) (Location, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, l := range locations {
		if l.Code == code {
			return l, true
		}
	}
	return Location{}, false
}

// ParseLocation accepts either a numeric id or a region code.
func ParseLocation(s string) (Location, bool) {
	if id, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return LocationByID(id)
	}
	return LocationByCode(s)
}
