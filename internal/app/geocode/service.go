package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"trailmeet/internal/app/geo"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/metrics"
)

const (
	// MinQueryLength is the shortest search query accepted, in characters.
	MinQueryLength = 2

	// MaxSuggestions caps the number of search suggestions.
	MaxSuggestions = 8

	searchKeyPrefix  = "geocode:search:"
	forwardKeyPrefix = "geocode:forward:"
)

var (
	ErrQueryTooShort = errors.New("search query must be at least 2 characters")
	ErrGeocodeMiss   = errors.New("location not found")
)

// Source names where an answer came from.
type Source string

const (
	SourceCache     Source = "cache"
	SourceNominatim Source = "nominatim"
	SourceCatalog   Source = "catalog"
	SourceCity      Source = "city"
)

// Suggestion is one search candidate. Lat and Lng are nil when the source did
// not provide a usable position; selecting such a suggestion needs a Forward lookup.
type Suggestion struct {
	ID            string   `json:"id"`
	Description   string   `json:"description"`
	MainText      string   `json:"main_text"`
	SecondaryText string   `json:"secondary_text"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
}

// HasCoordinates reports whether s carries a position.
func (s Suggestion) HasCoordinates() bool {
	return s.Lat != nil && s.Lng != nil
}

// Result is the outcome of a forward geocode.
type Result struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
	Source  Source  `json:"source"`
}

// Searcher is the subset of NominatimClient the service depends on.
type Searcher interface {
	Search(ctx context.Context, q string, limit int, addressDetails bool) ([]Place, error)
}

// Service answers place searches and forward geocodes.
type Service struct {
	upstream Searcher
	cache    redis.Cmdable
	cacheTTL time.Duration
	catalog  *geo.Catalog
	logger   zerolog.Logger
}

// NewService wires a Service. cache may be nil to disable caching.
func NewService(upstream Searcher, cache redis.Cmdable, cacheTTL time.Duration, catalog *geo.Catalog) *Service {
	return &Service{
		upstream: upstream,
		cache:    cache,
		cacheTTL: cacheTTL,
		catalog:  catalog,
		logger:   logx.Component("geocode"),
	}
}

// Search returns up to MaxSuggestions candidates for q. Upstream failures and
// empty upstream answers fall back to the catalog; only upstream answers are cached.
func (s *Service) Search(ctx context.Context, q string) ([]Suggestion, Source, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil, "", ErrQueryTooShort
	}

	key := searchKeyPrefix + strings.ToLower(q)

	var cached []Suggestion
	if s.cacheGet(ctx, key, &cached) {
		metrics.TrackGeocode("search", string(SourceCache))
		return cached, SourceCache, nil
	}

	places, err := s.upstream.Search(ctx, q, MaxSuggestions, true)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", q).Msg("Place search failed upstream, using catalog")
	}

	if err == nil && len(places) > 0 {
		suggestions := make([]Suggestion, 0, len(places))
		for _, p := range places {
			suggestions = append(suggestions, fromPlace(p))
		}
		s.cacheSet(ctx, key, suggestions)

		metrics.TrackGeocode("search", string(SourceNominatim))
		return suggestions, SourceNominatim, nil
	}

	matches := s.catalog.Search(q, MaxSuggestions)
	suggestions := make([]Suggestion, 0, len(matches))
	for i, p := range matches {
		suggestions = append(suggestions, fromCatalog(i, p))
	}

	metrics.TrackGeocode("search", string(SourceCatalog))
	return suggestions, SourceCatalog, nil
}

// Forward resolves address to coordinates. It tries, in order, a partial
// catalog match, the upstream service, and the city-name mapping.
func (s *Service) Forward(ctx context.Context, address string) (Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Result{}, ErrGeocodeMiss
	}

	if p, ok := s.catalog.Match(address); ok {
		metrics.TrackGeocode("forward", string(SourceCatalog))
		return Result{Lat: p.Lat, Lng: p.Lng, Address: p.Full, Source: SourceCatalog}, nil
	}

	key := forwardKeyPrefix + strings.ToLower(address)

	var cached Result
	if s.cacheGet(ctx, key, &cached) {
		cached.Source = SourceCache
		metrics.TrackGeocode("forward", string(SourceCache))
		return cached, nil
	}

	places, err := s.upstream.Search(ctx, address, 1, false)
	if err != nil {
		s.logger.Warn().Err(err).Str("address", address).Msg("Forward geocode failed upstream")
	}
	if err == nil && len(places) > 0 {
		if lat, lng, ok := places[0].Coordinates(); ok {
			res := Result{Lat: lat, Lng: lng, Address: address, Source: SourceNominatim}
			s.cacheSet(ctx, key, res)

			metrics.TrackGeocode("forward", string(SourceNominatim))
			return res, nil
		}
	}

	if city, ok := s.catalog.CityCoordinates(address); ok {
		metrics.TrackGeocode("forward", string(SourceCity))
		return Result{Lat: city.Lat, Lng: city.Lng, Address: address, Source: SourceCity}, nil
	}

	metrics.TrackGeocode("forward", "miss")
	return Result{}, ErrGeocodeMiss
}

func (s *Service) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}

	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Geocode cache read failed")
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Discarding malformed geocode cache entry")
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to encode geocode cache entry")
		return
	}

	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Geocode cache write failed")
	}
}

func fromPlace(p Place) Suggestion {
	segments := strings.Split(p.DisplayName, ",")

	main := p.Name
	if main == "" {
		main = strings.TrimSpace(segments[0])
	}

	s := Suggestion{
		ID:            strconv.FormatInt(p.PlaceID, 10),
		Description:   p.DisplayName,
		MainText:      main,
		SecondaryText: strings.TrimSpace(strings.Join(segments[1:], ",")),
	}
	if lat, lng, ok := p.Coordinates(); ok {
		s.Lat, s.Lng = &lat, &lng
	}
	return s
}

func fromCatalog(i int, p geo.Place) Suggestion {
	lat, lng := p.Lat, p.Lng
	return Suggestion{
		ID:            fmt.Sprintf("popular_%d", i),
		Description:   p.Full,
		MainText:      p.Name,
		SecondaryText: p.Secondary(),
		Lat:           &lat,
		Lng:           &lng,
	}
}
