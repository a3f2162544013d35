/*
Package client is the Go SDK for the TrailMeet API.

Client speaks the HTTP envelope; State holds the application state a TrailMeet
front end works with (session, event list, filter, location) and applies
membership changes only after the server confirms them; ChatPoller and
LocationField carry the timing rules of the chat panel and the address input.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"trailmeet/internal/app/chat"
	"trailmeet/internal/app/event"
	"trailmeet/internal/app/eventtype"
	"trailmeet/internal/app/geo"
	"trailmeet/internal/app/geocode"
	"trailmeet/internal/app/user"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/pow"
)

// DefaultTimeout bounds each request made by a Client.
const DefaultTimeout = 15 * time.Second

// APIError is a transport failure or a non-zero envelope code.
type APIError struct {
	Status  int
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// IsUnauthorized reports whether err means the session is missing, expired or revoked.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == errs.ErrUnauthorized || apiErr.Status == http.StatusUnauthorized
}

// Event is an event as served by the API.
type Event struct {
	event.Event
	Descriptor       eventtype.Descriptor `json:"descriptor"`
	DirectionsURL    string               `json:"directions_url"`
	ParticipantCount int                  `json:"participant_count"`
	SpotsLeft        *int                 `json:"spots_left,omitempty"`
	ViewerRole       string               `json:"viewer_role"`
	Capabilities     event.Capabilities   `json:"capabilities"`
}

// EventList is the answer of GET /api/events.
type EventList struct {
	Events   []Event        `json:"events"`
	Selected string         `json:"selected"`
	Types    []string       `json:"types"`
	Counts   map[string]int `json:"counts"`
}

// Session is a signed-in user and its bearer token.
type Session struct {
	Token string    `json:"session_token"`
	User  user.User `json:"user"`
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client calls the TrailMeet API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken starts the client with an existing session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &APIError{Err: err}
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(res.Body, 4<<20)).Decode(&env); err != nil {
		return &APIError{Status: res.StatusCode, Code: errs.ErrUnknown, Message: "malformed response", Err: err}
	}

	if env.Code != 0 {
		return &APIError{Status: res.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func eventPath(id string, suffix ...string) string {
	return "/api/events/" + url.PathEscape(id) + strings.Join(suffix, "")
}

// DemoSession signs in as the demo user, solving the proof-of-work challenge
// when the server asks for one. The new token is kept by the client.
func (c *Client) DemoSession(ctx context.Context) (Session, error) {
	var challenge struct {
		Enabled    bool   `json:"enabled"`
		Difficulty int    `json:"difficulty"`
		Nonce      string `json:"nonce"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pow/challenge", nil, nil, &challenge); err != nil {
		return Session{}, err
	}

	header := http.Header{}
	if challenge.Enabled {
		counter := pow.Solve(challenge.Nonce, challenge.Difficulty)

		var proof struct {
			Token string `json:"token"`
		}
		body := map[string]string{"nonce": challenge.Nonce, "counter": counter}
		if err := c.do(ctx, http.MethodPost, "/api/pow/verify", nil, body, &proof); err != nil {
			return Session{}, err
		}
		header.Set(pow.TokenHeaderKey, proof.Token)
	}

	// A stale token would make the server treat this as an authenticated call.
	c.SetToken("")

	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/session", header, nil, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Register creates an account and keeps its session token.
func (c *Client) Register(ctx context.Context, email, password, name string) (Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Login signs in with email and password and keeps the session token.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Logout revokes the session and forgets the token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) Me(ctx context.Context) (user.User, error) {
	var out struct {
		User user.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out)
	return out.User, err
}

// ListEvents returns the active events of eventType (event.AllTypes for all).
func (c *Client) ListEvents(ctx context.Context, eventType string) (EventList, error) {
	path := "/api/events"
	if eventType != "" {
		path += "?type=" + url.QueryEscape(eventType)
	}
	var out EventList
	err := c.do(ctx, http.MethodGet, path, nil, nil, &out)
	return out, err
}

func (c *Client) eventCall(ctx context.Context, method, path string, body any) (Event, error) {
	var out struct {
		Event Event `json:"event"`
	}
	err := c.do(ctx, method, path, nil, body, &out)
	return out.Event, err
}

func (c *Client) GetEvent(ctx context.Context, id string) (Event, error) {
	return c.eventCall(ctx, http.MethodGet, eventPath(id), nil)
}

func (c *Client) CreateEvent(ctx context.Context, draft event.Draft) (Event, error) {
	return c.eventCall(ctx, http.MethodPost, "/api/events", draft)
}

func (c *Client) JoinEvent(ctx context.Context, id string) (Event, error) {
	return c.eventCall(ctx, http.MethodPost, eventPath(id, "/join"), nil)
}

func (c *Client) LeaveEvent(ctx context.Context, id string) (Event, error) {
	return c.eventCall(ctx, http.MethodDelete, eventPath(id, "/leave"), nil)
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, eventPath(id), nil, nil, nil)
}

// MyEvents returns every event the caller created or joined.
func (c *Client) MyEvents(ctx context.Context) ([]Event, error) {
	var out struct {
		Events []Event `json:"events"`
	}
	err := c.do(ctx, http.MethodGet, "/api/my-events", nil, nil, &out)
	return out.Events, err
}

// ListChat returns the chat of an event. A zero since returns the latest
// messages; otherwise only those strictly after since.
func (c *Client) ListChat(ctx context.Context, eventID string, since time.Time) ([]chat.Message, error) {
	path := eventPath(eventID, "/chat")
	if !since.IsZero() {
		path += "?since=" + url.QueryEscape(since.UTC().Format(time.RFC3339Nano))
	}
	var out struct {
		Messages []chat.Message `json:"messages"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, nil, &out)
	return out.Messages, err
}

func (c *Client) SendChat(ctx context.Context, eventID, message string) (chat.Message, error) {
	var out struct {
		Message chat.Message `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, eventPath(eventID, "/chat"), nil, map[string]string{"message": message}, &out)
	return out.Message, err
}

// SearchPlaces returns address suggestions for q.
func (c *Client) SearchPlaces(ctx context.Context, q string) ([]geocode.Suggestion, error) {
	var out struct {
		Suggestions []geocode.Suggestion `json:"suggestions"`
	}
	err := c.do(ctx, http.MethodGet, "/api/places/search?q="+url.QueryEscape(q), nil, nil, &out)
	return out.Suggestions, err
}

// Geocode resolves address to one coordinate.
func (c *Client) Geocode(ctx context.Context, address string) (geocode.Result, error) {
	var out struct {
		Result geocode.Result `json:"result"`
	}
	err := c.do(ctx, http.MethodGet, "/api/places/geocode?q="+url.QueryEscape(address), nil, nil, &out)
	return out.Result, err
}

// NearestCity returns the known city around at.
func (c *Client) NearestCity(ctx context.Context, at geo.Coordinates) (geo.Place, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(at.Lng, 'f', -1, 64))

	var out struct {
		City geo.Place `json:"city"`
	}
	err := c.do(ctx, http.MethodGet, "/api/places/nearest?"+q.Encode(), nil, nil, &out)
	return out.City, err
}

// ResolveEventType asks the server for the descriptor of eventType.
func (c *Client) ResolveEventType(ctx context.Context, eventType string) (eventtype.Descriptor, error) {
	var out struct {
		Descriptor eventtype.Descriptor `json:"descriptor"`
	}
	err := c.do(ctx, http.MethodGet, "/api/event-types/resolve?q="+url.QueryEscape(eventType), nil, nil, &out)
	return out.Descriptor, err
}
