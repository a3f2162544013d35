package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailmeet/internal/app/chat"
	"trailmeet/internal/app/db"
	dbc "trailmeet/internal/app/db/sqlc"
	"trailmeet/internal/app/eventtype"
	"trailmeet/internal/app/geo"
	"trailmeet/internal/app/geocode"
	"trailmeet/internal/app/user"
	"trailmeet/internal/configs"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/pow"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	deps     *AppDeps
	store    *memStore
	sessions *memSessions
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	sessions := newMemSessions()
	manager := chat.NewManager(sessions)
	t.Cleanup(manager.Shutdown)

	deps := &AppDeps{
		Config: &configs.AppConfig{
			Environment:       "development",
			JWTSecret:         "test-secret",
			SessionExpiration: time.Hour,
			DemoLoginEnabled:  true,
		},
		Store:    store,
		Sessions: sessions,
		Geocoder: stubGeocoder{
			suggestions: []geocode.Suggestion{{ID: "catalog:0", Description: "Mumbai, Maharashtra, India", MainText: "Mumbai"}},
			results: map[string]geocode.Result{
				"Mumbai": {Lat: 19.0760, Lng: 72.8777, Address: "Mumbai, Maharashtra, India", Source: geocode.SourceCity},
			},
		},
		Catalog:  geo.DefaultCatalog(),
		Resolver: eventtype.NewResolver(0),
		Manager:  manager,
		PoW:      pow.NewManager(0),
		Now:      func() time.Time { return testNow },
	}

	return &testEnv{deps: deps, store: store, sessions: sessions, router: Router(deps)}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)

	var e envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	}
	return w, e
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// signIn creates a user and returns its id and a bearer token.
func (env *testEnv) signIn(t *testing.T, name string) (string, string) {
	t.Helper()

	row, err := env.store.CreateUser(context.Background(), dbc.CreateUserParams{
		Email: strings.ToLower(name) + "@example.com",
		Name:  name,
	})
	require.NoError(t, err)

	token, err := issueSession(context.Background(), env.deps, row)
	require.NoError(t, err)
	return row.ID.String(), token
}

func (env *testEnv) seedEvent(t *testing.T, creatorID, title, eventType string, capacity *int) string {
	t.Helper()

	creator, ok := db.ParseUUID(creatorID)
	require.True(t, ok)

	arg := dbc.CreateEventParams{
		Title:       title,
		Description: "Bring water.",
		EventType:   eventType,
		Lat:         18.5204,
		Lng:         73.8567,
		Address:     "Pune",
		EventDate:   db.Timestamptz(testNow.Add(72 * time.Hour)),
		CreatedBy:   creator,
	}
	if capacity != nil {
		arg.Capacity = pgtype.Int4{Int32: int32(*capacity), Valid: true}
	}

	row, err := env.store.CreateEvent(context.Background(), arg)
	require.NoError(t, err)
	return row.ID.String()
}

func intPtr(v int) *int { return &v }

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w, e := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, e.Code)
}

func TestListEvents_FilterAndCounts(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.signIn(t, "Asha")

	env.seedEvent(t, creator, "Sinhagad trek", "hiking", nil)
	env.seedEvent(t, creator, "Rajmachi trek", "hiking", nil)
	env.seedEvent(t, creator, "Sunrise flow", "yoga", nil)

	_, e := env.do(t, http.MethodGet, "/api/events?type=hiking", "", nil)
	require.Equal(t, 0, e.Code)

	data := decode[struct {
		Events   []EventView    `json:"events"`
		Selected string         `json:"selected"`
		Types    []string       `json:"types"`
		Counts   map[string]int `json:"counts"`
	}](t, e.Data)

	assert.Len(t, data.Events, 2)
	assert.Equal(t, "hiking", data.Selected)
	assert.Equal(t, []string{"hiking", "yoga"}, data.Types)
	assert.Equal(t, map[string]int{"all": 3, "hiking": 2, "yoga": 1}, data.Counts)

	for _, ev := range data.Events {
		assert.Equal(t, "non_participant", ev.ViewerRole)
		assert.False(t, ev.Capabilities.CanJoin, "anonymous viewers cannot join")
		assert.Equal(t, "⛰️", ev.Descriptor.Icon)
	}

	// Filtering is exact: a case variant selects nothing.
	_, e = env.do(t, http.MethodGet, "/api/events?type=Hiking", "", nil)
	data = decode[struct {
		Events   []EventView    `json:"events"`
		Selected string         `json:"selected"`
		Types    []string       `json:"types"`
		Counts   map[string]int `json:"counts"`
	}](t, e.Data)
	assert.Empty(t, data.Events)
	assert.Equal(t, 3, data.Counts["all"])
}

func TestCreateEvent_RoundTripsCoordinates(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn(t, "Asha")

	lat, lng := 19.0760, 72.8777
	body := map[string]any{
		"title":       "  Marine Drive walk ",
		"description": "Evening walk along the bay.",
		"event_type":  "Walking",
		"location":    map[string]any{"lat": lat, "lng": lng, "address": "Marine Drive, Mumbai"},
		"event_date":  testNow.Add(24 * time.Hour).Format(time.RFC3339),
		"capacity":    10,
	}

	_, e := env.do(t, http.MethodPost, "/api/events", token, body)
	require.Equal(t, 0, e.Code, e.Message)

	created := decode[struct {
		Event EventView `json:"event"`
	}](t, e.Data).Event

	assert.Equal(t, "Marine Drive walk", created.Title)
	assert.Equal(t, "creator", created.ViewerRole)
	assert.True(t, created.Capabilities.CanDelete)
	require.NotNil(t, created.SpotsLeft)
	assert.Equal(t, 10, *created.SpotsLeft)

	_, e = env.do(t, http.MethodGet, "/api/events/"+created.ID, "", nil)
	require.Equal(t, 0, e.Code)

	fetched := decode[struct {
		Event EventView `json:"event"`
	}](t, e.Data).Event
	assert.Equal(t, lat, fetched.Location.Lat)
	assert.Equal(t, lng, fetched.Location.Lng)
	assert.Equal(t, "Walking", fetched.EventType)
	assert.Contains(t, fetched.DirectionsURL, "19.076,72.8777")
}

func TestCreateEvent_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn(t, "Asha")

	lat, lng := 19.0760, 72.8777
	base := func() map[string]any {
		return map[string]any{
			"title":       "Walk",
			"description": "Evening walk.",
			"event_type":  "walking",
			"location":    map[string]any{"lat": lat, "lng": lng, "address": "Mumbai"},
			"event_date":  testNow.Add(time.Hour).Format(time.RFC3339),
		}
	}

	t.Run("unauthenticated", func(t *testing.T) {
		w, e := env.do(t, http.MethodPost, "/api/events", "", base())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, errs.ErrUnauthorized, e.Code)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		body := base()
		body["location"] = map[string]any{"address": "Somewhere"}
		w, e := env.do(t, http.MethodPost, "/api/events", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errs.ErrEventInvalid, e.Code)
		assert.Equal(t, "Please wait for location to be validated or enter a valid address", e.Message)
	})

	t.Run("past date", func(t *testing.T) {
		body := base()
		body["event_date"] = testNow.Add(-time.Hour).Format(time.RFC3339)
		_, e := env.do(t, http.MethodPost, "/api/events", token, body)
		assert.Equal(t, errs.ErrEventInvalid, e.Code)
		assert.Equal(t, "Event date must be in the future", e.Message)
	})

	t.Run("unknown field", func(t *testing.T) {
		body := base()
		body["extra"] = true
		_, e := env.do(t, http.MethodPost, "/api/events", token, body)
		assert.Equal(t, errs.ErrInvalidJSONFormat, e.Code)
	})
}

func TestMembership(t *testing.T) {
	env := newTestEnv(t)
	creatorID, creatorToken := env.signIn(t, "Asha")
	_, bobToken := env.signIn(t, "Bob")
	_, carolToken := env.signIn(t, "Carol")

	id := env.seedEvent(t, creatorID, "Sinhagad trek", "hiking", intPtr(1))
	joinPath := "/api/events/" + id + "/join"
	leavePath := "/api/events/" + id + "/leave"

	_, e := env.do(t, http.MethodPost, joinPath, creatorToken, nil)
	assert.Equal(t, errs.ErrCreatorCannotJoin, e.Code)

	_, e = env.do(t, http.MethodPost, joinPath, bobToken, nil)
	require.Equal(t, 0, e.Code, e.Message)
	joined := decode[struct {
		Event EventView `json:"event"`
	}](t, e.Data).Event
	assert.Equal(t, "participant", joined.ViewerRole)
	assert.Equal(t, 1, joined.ParticipantCount)
	assert.True(t, joined.Capabilities.CanLeave)

	_, e = env.do(t, http.MethodPost, joinPath, bobToken, nil)
	assert.Equal(t, errs.ErrAlreadyJoined, e.Code)

	_, e = env.do(t, http.MethodPost, joinPath, carolToken, nil)
	assert.Equal(t, errs.ErrEventFull, e.Code)

	_, e = env.do(t, http.MethodDelete, leavePath, carolToken, nil)
	assert.Equal(t, errs.ErrNotParticipant, e.Code)

	_, e = env.do(t, http.MethodDelete, leavePath, creatorToken, nil)
	assert.Equal(t, errs.ErrCreatorCannotLeave, e.Code)

	_, e = env.do(t, http.MethodDelete, leavePath, bobToken, nil)
	require.Equal(t, 0, e.Code)
	left := decode[struct {
		Event EventView `json:"event"`
	}](t, e.Data).Event
	assert.Equal(t, "non_participant", left.ViewerRole)
	assert.Empty(t, left.Participants)

	// The freed spot is available again.
	_, e = env.do(t, http.MethodPost, joinPath, carolToken, nil)
	assert.Equal(t, 0, e.Code)
}

func TestDeleteEvent(t *testing.T) {
	env := newTestEnv(t)
	creatorID, creatorToken := env.signIn(t, "Asha")
	_, bobToken := env.signIn(t, "Bob")

	id := env.seedEvent(t, creatorID, "Sinhagad trek", "hiking", nil)
	otherID := env.seedEvent(t, creatorID, "Lonavala ride", "cycling", nil)

	for _, ev := range []string{id, otherID} {
		_, e := env.do(t, http.MethodPost, "/api/events/"+ev+"/chat", creatorToken, map[string]string{"message": "see you at 6"})
		require.Equal(t, 0, e.Code)
	}

	messagesOf := func(eventID string) int {
		env.store.mu.Lock()
		defer env.store.mu.Unlock()
		n := 0
		for _, m := range env.store.messages {
			if m.EventID.String() == eventID {
				n++
			}
		}
		return n
	}
	require.Equal(t, 1, messagesOf(id))

	w, e := env.do(t, http.MethodDelete, "/api/events/"+id, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errs.ErrNotEventCreator, e.Code)

	_, e = env.do(t, http.MethodDelete, "/api/events/"+id, creatorToken, nil)
	require.Equal(t, 0, e.Code)

	w, e = env.do(t, http.MethodGet, "/api/events/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errs.ErrEventNotFound, e.Code)

	assert.Zero(t, messagesOf(id))
	assert.Equal(t, 1, messagesOf(otherID))

	_, e = env.do(t, http.MethodGet, "/api/events/"+id+"/chat", creatorToken, nil)
	assert.Equal(t, errs.ErrEventNotFound, e.Code)

	_, e = env.do(t, http.MethodGet, "/api/events/not-a-uuid", "", nil)
	assert.Equal(t, errs.ErrEventNotFound, e.Code)
}

func TestMyEvents(t *testing.T) {
	env := newTestEnv(t)
	aliceID, aliceToken := env.signIn(t, "Alice")
	bobID, bobToken := env.signIn(t, "Bob")

	env.seedEvent(t, aliceID, "Alice's hike", "hiking", nil)
	bobEvent := env.seedEvent(t, bobID, "Bob's run", "running", nil)
	env.seedEvent(t, bobID, "Bob's ride", "cycling", nil)

	_, e := env.do(t, http.MethodPost, "/api/events/"+bobEvent+"/join", aliceToken, nil)
	require.Equal(t, 0, e.Code)

	_, e = env.do(t, http.MethodGet, "/api/my-events", aliceToken, nil)
	require.Equal(t, 0, e.Code)
	mine := decode[struct {
		Events []EventView `json:"events"`
	}](t, e.Data).Events

	require.Len(t, mine, 2)
	roles := []string{mine[0].ViewerRole, mine[1].ViewerRole}
	assert.ElementsMatch(t, []string{"creator", "participant"}, roles)

	_, e = env.do(t, http.MethodGet, "/api/my-events", bobToken, nil)
	assert.Len(t, decode[struct {
		Events []EventView `json:"events"`
	}](t, e.Data).Events, 2)
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)
	creatorID, creatorToken := env.signIn(t, "Asha")
	_, bobToken := env.signIn(t, "Bob")

	id := env.seedEvent(t, creatorID, "Sinhagad trek", "hiking", nil)
	chatPath := "/api/events/" + id + "/chat"

	w, e := env.do(t, http.MethodPost, chatPath, bobToken, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errs.ErrChatAccessDenied, e.Code)

	_, e = env.do(t, http.MethodPost, chatPath, creatorToken, map[string]string{"message": "   "})
	assert.Equal(t, errs.ErrMessageEmpty, e.Code)

	_, e = env.do(t, http.MethodPost, chatPath, creatorToken, map[string]string{"message": strings.Repeat("a", chat.MaxMessageLength+1)})
	assert.Equal(t, errs.ErrMessageContentTooLong, e.Code)

	_, e = env.do(t, http.MethodPost, chatPath, creatorToken, map[string]string{"message": " Meet at 6am "})
	require.Equal(t, 0, e.Code)
	first := decode[struct {
		Message chat.Message `json:"message"`
	}](t, e.Data).Message
	assert.Equal(t, "Meet at 6am", first.Message)
	assert.Equal(t, "Asha", first.UserName)

	_, e = env.do(t, http.MethodPost, "/api/events/"+id+"/join", bobToken, nil)
	require.Equal(t, 0, e.Code)

	_, e = env.do(t, http.MethodPost, chatPath, bobToken, map[string]string{"message": "See you there"})
	require.Equal(t, 0, e.Code)

	_, e = env.do(t, http.MethodGet, chatPath, bobToken, nil)
	require.Equal(t, 0, e.Code)
	all := decode[struct {
		Messages []chat.Message `json:"messages"`
	}](t, e.Data).Messages
	require.Len(t, all, 2)
	assert.Equal(t, "Meet at 6am", all[0].Message)
	assert.Equal(t, "See you there", all[1].Message)

	since := first.Timestamp.Format(time.RFC3339Nano)
	_, e = env.do(t, http.MethodGet, chatPath+"?since="+since, bobToken, nil)
	require.Equal(t, 0, e.Code)
	newer := decode[struct {
		Messages []chat.Message `json:"messages"`
	}](t, e.Data).Messages
	require.Len(t, newer, 1)
	assert.Equal(t, "See you there", newer[0].Message)

	_, e = env.do(t, http.MethodGet, chatPath+"?since=yesterday", bobToken, nil)
	assert.Equal(t, errs.ErrInvalidParams, e.Code)
}

func TestEventCalendar(t *testing.T) {
	env := newTestEnv(t)
	creatorID, _ := env.signIn(t, "Asha")
	id := env.seedEvent(t, creatorID, "Sinhagad trek", "hiking", nil)

	w, _ := env.do(t, http.MethodGet, "/api/events/"+id+"/calendar.ics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "Sinhagad trek")
}

func TestPlaces(t *testing.T) {
	env := newTestEnv(t)

	_, e := env.do(t, http.MethodGet, "/api/places/search?q=M", "", nil)
	assert.Equal(t, errs.ErrPlaceQueryTooShort, e.Code)

	_, e = env.do(t, http.MethodGet, "/api/places/search?q=Mum", "", nil)
	require.Equal(t, 0, e.Code)
	search := decode[struct {
		Suggestions []geocode.Suggestion `json:"suggestions"`
		Source      string               `json:"source"`
	}](t, e.Data)
	assert.Len(t, search.Suggestions, 1)
	assert.Equal(t, "catalog", search.Source)

	_, e = env.do(t, http.MethodGet, "/api/places/geocode?q=Mumbai", "", nil)
	require.Equal(t, 0, e.Code)
	result := decode[struct {
		Result geocode.Result `json:"result"`
	}](t, e.Data).Result
	assert.Equal(t, 19.0760, result.Lat)
	assert.Equal(t, 72.8777, result.Lng)

	_, e = env.do(t, http.MethodGet, "/api/places/geocode?q=Atlantis", "", nil)
	assert.Equal(t, errs.ErrGeocodeMiss, e.Code)

	_, e = env.do(t, http.MethodGet, "/api/places/nearest?lat=19.08&lng=72.88", "", nil)
	require.Equal(t, 0, e.Code)
	nearest := decode[struct {
		City geo.Place `json:"city"`
	}](t, e.Data)
	assert.Equal(t, "Mumbai", nearest.City.Name)

	_, e = env.do(t, http.MethodGet, "/api/places/nearest?lat=95&lng=0", "", nil)
	assert.Equal(t, errs.ErrInvalidParams, e.Code)
}

func TestEventTypes(t *testing.T) {
	env := newTestEnv(t)

	_, e := env.do(t, http.MethodGet, "/api/event-types/resolve?q=Morning+Yoga+Session", "", nil)
	require.Equal(t, 0, e.Code)
	resolved := decode[struct {
		EventType  string               `json:"event_type"`
		Descriptor eventtype.Descriptor `json:"descriptor"`
	}](t, e.Data)
	assert.Equal(t, "Morning Yoga Session", resolved.Descriptor.Label)
	yoga, _ := eventtype.Lookup("yoga")
	assert.Equal(t, yoga.Icon, resolved.Descriptor.Icon)

	_, e = env.do(t, http.MethodGet, "/api/event-types", "", nil)
	require.Equal(t, 0, e.Code)
	list := decode[struct {
		Keywords []keywordEntry `json:"keywords"`
	}](t, e.Data)
	assert.Len(t, list.Keywords, len(eventtype.Keywords()))
}

func TestAuth_RegisterLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	creds := map[string]string{"email": "Asha@Example.com", "password": "secret1", "name": "Asha"}
	_, e := env.do(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, 0, e.Code, e.Message)

	_, e = env.do(t, http.MethodPost, "/api/auth/register", "", creds)
	assert.Equal(t, errs.ErrUserAlreadyExists, e.Code)

	_, e = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "asha@example.com", "password": "wrong!"})
	assert.Equal(t, errs.ErrInvalidCredentials, e.Code)

	_, e = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "asha@example.com", "password": "secret1"})
	require.Equal(t, 0, e.Code)
	session := decode[struct {
		Token string    `json:"session_token"`
		User  user.User `json:"user"`
	}](t, e.Data)
	assert.Equal(t, "Asha", session.User.Name)

	_, e = env.do(t, http.MethodGet, "/api/auth/me", session.Token, nil)
	require.Equal(t, 0, e.Code)

	_, e = env.do(t, http.MethodPost, "/api/auth/logout", session.Token, nil)
	require.Equal(t, 0, e.Code)

	w, e := env.do(t, http.MethodGet, "/api/auth/me", session.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrUnauthorized, e.Code)
}

func TestAuth_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	_, e := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "nope", "password": "secret1"})
	assert.Equal(t, errs.ErrInvalidEmail, e.Code)

	_, e = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "a@b.co", "password": "123"})
	assert.Equal(t, errs.ErrInvalidPassword, e.Code)
}

func TestAuth_DemoSessionRequiresProof(t *testing.T) {
	env := newTestEnv(t)
	env.deps.PoW = pow.NewManager(1)

	_, e := env.do(t, http.MethodPost, "/api/auth/session", "", nil)
	assert.Equal(t, errs.ErrPowChallengeRequired, e.Code)

	_, e = env.do(t, http.MethodGet, "/api/pow/challenge", "", nil)
	require.Equal(t, 0, e.Code)
	challenge := decode[struct {
		Enabled    bool   `json:"enabled"`
		Difficulty int    `json:"difficulty"`
		Nonce      string `json:"nonce"`
	}](t, e.Data)
	require.True(t, challenge.Enabled)

	counter := pow.Solve(challenge.Nonce, challenge.Difficulty)
	_, e = env.do(t, http.MethodPost, "/api/pow/verify", "", map[string]string{"nonce": challenge.Nonce, "counter": counter})
	require.Equal(t, 0, e.Code)
	proof := decode[struct {
		Token string `json:"token"`
	}](t, e.Data).Token

	r := httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
	r.Header.Set(pow.TokenHeaderKey, proof)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Code)
	session := decode[struct {
		Token string    `json:"session_token"`
		User  user.User `json:"user"`
	}](t, resp.Data)
	assert.Equal(t, user.DemoName, session.User.Name)
	assert.NotEmpty(t, session.Token)
}

func TestAuth_DemoSessionDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Config.DemoLoginEnabled = false

	w, e := env.do(t, http.MethodPost, "/api/auth/session", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errs.ErrDemoLoginDisabled, e.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn(t, "Asha")

	_, e := env.do(t, http.MethodPost, "/api/user/profile", token, map[string]string{"name": "Asha K", "picture": "http://insecure.example/a.png"})
	assert.Equal(t, errs.ErrInvalidParams, e.Code)

	_, e = env.do(t, http.MethodPost, "/api/user/profile", token, map[string]string{"name": "Asha K", "picture": "https://cdn.example/a.png"})
	require.Equal(t, 0, e.Code, e.Message)
	updated := decode[struct {
		Token string    `json:"session_token"`
		User  user.User `json:"user"`
	}](t, e.Data)
	assert.Equal(t, "Asha K", updated.User.Name)
	assert.Equal(t, "https://cdn.example/a.png", updated.User.Picture)

	// The reissued token keeps the session alive and carries the new name.
	_, e = env.do(t, http.MethodGet, "/api/auth/me", updated.Token, nil)
	assert.Equal(t, 0, e.Code)

	// Avatar keys need storage.
	_, e = env.do(t, http.MethodPost, "/api/user/avatar/presign", token, map[string]any{"mime_type": "image/png", "file_size": 1024})
	assert.Equal(t, errs.ErrFileStorageFailed, e.Code)
}

func TestWebSocket_PushesChatToParticipants(t *testing.T) {
	env := newTestEnv(t)
	creatorID, creatorToken := env.signIn(t, "Asha")
	_, bobToken := env.signIn(t, "Bob")

	id := env.seedEvent(t, creatorID, "Sinhagad trek", "hiking", nil)

	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events/" + id

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token="+bobToken, nil)
	require.Error(t, err, "non-participants are refused")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+creatorToken, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	next := func() chat.Push {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var push chat.Push
		require.NoError(t, json.Unmarshal(data, &push))
		return push
	}

	for next().Type != chat.TypeInitData {
	}

	_, e := env.do(t, http.MethodPost, "/api/events/"+id+"/chat", creatorToken, map[string]string{"message": "Leaving at 6"})
	require.Equal(t, 0, e.Code)

	for {
		push := next()
		if push.Type != chat.TypeChatMessage {
			continue
		}
		var msg chat.Message
		require.NoError(t, json.Unmarshal(push.Payload, &msg))
		assert.Equal(t, "Leaving at 6", msg.Message)
		break
	}
}
