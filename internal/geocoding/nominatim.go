// Package geocoding implements search.Provider against OpenStreetMap
// Nominatim, with an optional Redis cache in front of it.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/search"
	"go.uber.org/zap"
)

// DefaultNominatimURL is the public Nominatim search endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

// viewboxSpan is the half-width in degrees of the box used to bias results
// towards the query's reference point.
const viewboxSpan = 0.5

// NominatimConfig configures the Nominatim client.
type NominatimConfig struct {
	BaseURL      string
	UserAgent    string
	Limit        int
	CountryCodes string
	Timeout      time.Duration
}

// NominatimProvider searches places through the Nominatim HTTP API.
type NominatimProvider struct {
	client *http.Client
	cfg    NominatimConfig
	logger *zap.Logger
}

// NewNominatimProvider creates a provider, filling in defaults for unset fields.
func NewNominatimProvider(cfg NominatimConfig, logger *zap.Logger) *NominatimProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNominatimURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "service-ride/1.0"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &NominatimProvider{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger,
	}
}

type nominatimAddress struct {
	HouseNumber  string `json:"house_number"`
	Road         string `json:"road"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Hamlet       string `json:"hamlet"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
}

// nominatimResponse mirrors the relevant parts of the OSM search payload.
type nominatimResponse struct {
	Lat     string           `json:"lat"`
	Lon     string           `json:"lon"`
	Address nominatimAddress `json:"address"`
}

// Search runs a free-text query. It returns search.ErrNoResults when the
// upstream answers with an empty list.
func (p *NominatimProvider) Search(ctx context.Context, q search.Query) ([]address.PlaceCandidate, error) {
	reqURL := p.cfg.BaseURL + "?" + p.buildParams(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("nominatim upstream error", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("nominatim upstream error: %d", resp.StatusCode)
	}

	var raw []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim payload: %w", err)
	}

	places := make([]address.PlaceCandidate, 0, len(raw))
	for _, r := range raw {
		place, ok := buildPlace(r)
		if !ok {
			p.logger.Debug("skipping nominatim record without coordinate",
				zap.String("lat", r.Lat),
				zap.String("lon", r.Lon),
			)
			continue
		}
		places = append(places, place)
	}

	if len(places) == 0 {
		return nil, search.ErrNoResults
	}
	return places, nil
}

func (p *NominatimProvider) buildParams(q search.Query) url.Values {
	params := url.Values{}
	params.Add("q", q.Text)
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", strconv.Itoa(p.cfg.Limit))
	if p.cfg.CountryCodes != "" {
		params.Add("countrycodes", p.cfg.CountryCodes)
	}
	if q.Near != nil {
		params.Add("viewbox", viewbox(*q.Near))
	}
	return params
}

// viewbox renders the bias box as "left,top,right,bottom".
func viewbox(c address.Coordinate) string {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return strings.Join([]string{
		format(c.Longitude - viewboxSpan),
		format(c.Latitude + viewboxSpan),
		format(c.Longitude + viewboxSpan),
		format(c.Latitude - viewboxSpan),
	}, ",")
}

func buildPlace(raw nominatimResponse) (address.PlaceCandidate, bool) {
	lat, err := strconv.ParseFloat(raw.Lat, 64)
	if err != nil {
		return address.PlaceCandidate{}, false
	}
	lon, err := strconv.ParseFloat(raw.Lon, 64)
	if err != nil {
		return address.PlaceCandidate{}, false
	}

	return address.PlaceCandidate{
		SubStreet:          raw.Address.HouseNumber,
		Street:             raw.Address.Road,
		Locality:           pickLocality(raw.Address),
		AdministrativeArea: raw.Address.State,
		PostalCode:         raw.Address.Postcode,
		Coordinate:         address.Coordinate{Latitude: lat, Longitude: lon},
	}, true
}

func pickLocality(a nominatimAddress) string {
	for _, v := range []string{a.City, a.Town, a.Village, a.Municipality} {
		if v != "" {
			return v
		}
	}
	return a.Hamlet
}
