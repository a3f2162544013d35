package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"trailmeet/internal/app/chat"
	"trailmeet/internal/app/event"
	"trailmeet/internal/app/geocode"
	"trailmeet/internal/app/user"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/pow"
	"trailmeet/internal/pkg/resp"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// fakeAPI is an in-memory TrailMeet server speaking the real envelope.
type fakeAPI struct {
	pow *pow.Manager

	mu           sync.Mutex
	tokens       map[string]user.User
	seq          int
	events       []*event.Event
	messages     []chat.Message
	results      map[string]geocode.Result
	rejectCreate int
	calls        map[string]int
	sinceSeen    []string
}

func newFakeAPI(t *testing.T, difficulty int) (*fakeAPI, *httptest.Server) {
	t.Helper()

	f := &fakeAPI{
		pow:     pow.NewManager(difficulty),
		tokens:  make(map[string]user.User),
		results: make(map[string]geocode.Result),
		calls:   make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/api/pow/challenge", f.challenge)
	r.Post("/api/pow/verify", f.verify)
	r.Post("/api/auth/session", f.session)
	r.Get("/api/auth/me", f.me)
	r.Post("/api/auth/logout", f.logout)
	r.Get("/api/events", f.listEvents)
	r.Post("/api/events", f.createEvent)
	r.Get("/api/my-events", f.myEvents)
	r.Post("/api/events/{id}/join", f.membership(true))
	r.Delete("/api/events/{id}/leave", f.membership(false))
	r.Delete("/api/events/{id}", f.deleteEvent)
	r.Get("/api/events/{id}/chat", f.listChat)
	r.Post("/api/events/{id}/chat", f.sendChat)
	r.Get("/api/places/geocode", f.geocode)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

// seed stores an event created by createdBy and returns it.
func (f *fakeAPI) seed(title, eventType, createdBy string, capacity *int, participants ...string) event.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	e := &event.Event{
		ID:           f.nextID("ev"),
		Title:        title,
		Description:  "seeded",
		EventType:    eventType,
		Location:     event.Location{Lat: 18.5204, Lng: 73.8567, Address: "Pune"},
		EventDate:    testNow.Add(72 * time.Hour),
		Capacity:     capacity,
		Participants: append([]string{}, participants...),
		CreatedBy:    createdBy,
		CreatedAt:    testNow,
		Status:       event.StatusActive,
	}
	f.events = append(f.events, e)
	return e.Clone()
}

func (f *fakeAPI) addMessage(eventID, text string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, chat.Message{
		ID:        f.nextID("msg"),
		EventID:   eventID,
		UserID:    "someone",
		UserName:  "Someone",
		Message:   text,
		Timestamp: at,
	})
}

func (f *fakeAPI) caller(r *http.Request) (user.User, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.tokens[token]
	return u, ok
}

func (f *fakeAPI) find(id string) *event.Event {
	for _, e := range f.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func view(e *event.Event) Event {
	return Event{
		Event:            e.Clone(),
		DirectionsURL:    e.Location.DirectionsURL(),
		ParticipantCount: len(e.Participants),
	}
}

func (f *fakeAPI) challenge(w http.ResponseWriter, r *http.Request) {
	if !f.pow.Enabled() {
		resp.RespondSuccess(w, r, map[string]any{"enabled": false})
		return
	}
	resp.RespondSuccess(w, r, map[string]any{
		"enabled":    true,
		"difficulty": f.pow.Difficulty(),
		"nonce":      f.pow.GenerateNonce(),
	})
}

func (f *fakeAPI) verify(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Nonce   string `json:"nonce"`
		Counter string `json:"counter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}
	token, err := f.pow.ValidateProof(in.Nonce, in.Counter)
	if err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
		return
	}
	resp.RespondSuccess(w, r, map[string]any{"token": token})
}

func (f *fakeAPI) session(w http.ResponseWriter, r *http.Request) {
	f.hit("session")
	if f.pow.Enabled() && !f.pow.ConsumeProofToken(r) {
		resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
		return
	}

	f.mu.Lock()
	token := f.nextID("tok")
	u := user.User{ID: "demo-user", Name: user.DemoName, Email: user.DemoEmail, CreatedAt: testNow}
	f.tokens[token] = u
	f.mu.Unlock()

	resp.RespondSuccess(w, r, map[string]any{"session_token": token, "user": u})
}

func (f *fakeAPI) me(w http.ResponseWriter, r *http.Request) {
	u, ok := f.caller(r)
	if !ok {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return
	}
	resp.RespondSuccess(w, r, map[string]any{"user": u})
}

func (f *fakeAPI) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	delete(f.tokens, token)
	f.mu.Unlock()
	resp.RespondSuccess(w, r, nil)
}

func (f *fakeAPI) listEvents(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	all := make([]event.Event, 0, len(f.events))
	for _, e := range f.events {
		all = append(all, e.Clone())
	}
	f.mu.Unlock()

	selected := r.URL.Query().Get("type")
	if selected == "" {
		selected = event.AllTypes
	}
	views := make([]Event, 0)
	for _, e := range event.Filter(all, selected) {
		views = append(views, view(&e))
	}
	resp.RespondSuccess(w, r, map[string]any{
		"events":   views,
		"selected": selected,
		"types":    event.AvailableTypes(all),
		"counts":   event.CountByType(all),
	})
}

func (f *fakeAPI) createEvent(w http.ResponseWriter, r *http.Request) {
	f.hit("create")
	u, ok := f.caller(r)

	f.mu.Lock()
	reject := f.rejectCreate > 0
	if reject {
		f.rejectCreate--
	}
	f.mu.Unlock()

	if !ok || reject {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return
	}

	var draft event.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}
	if err := draft.Validate(testNow); err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrEventInvalid, err.Error()))
		return
	}

	f.mu.Lock()
	e := draft.ToEvent(f.nextID("ev"), u.ID, testNow)
	f.events = append(f.events, &e)
	f.mu.Unlock()

	resp.RespondSuccess(w, r, map[string]any{"event": view(&e)})
}

func (f *fakeAPI) myEvents(w http.ResponseWriter, r *http.Request) {
	u, ok := f.caller(r)
	if !ok {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return
	}

	f.mu.Lock()
	views := make([]Event, 0)
	for _, e := range f.events {
		if e.CreatedBy == u.ID || e.HasParticipant(u.ID) {
			views = append(views, view(e))
		}
	}
	f.mu.Unlock()

	resp.RespondSuccess(w, r, map[string]any{"events": views})
}

func (f *fakeAPI) membership(join bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := f.caller(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		e := f.find(chi.URLParam(r, "id"))
		if e == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrEventNotFound))
			return
		}

		var err error
		if join {
			err = e.Join(u.ID)
		} else {
			err = e.Leave(u.ID)
		}
		switch {
		case err == nil:
			resp.RespondSuccess(w, r, map[string]any{"event": view(e)})
		case err == event.ErrEventFull:
			resp.RespondError(w, r, errs.NewError(errs.ErrEventFull))
		case err == event.ErrNotParticipant:
			resp.RespondError(w, r, errs.NewError(errs.ErrNotParticipant))
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
		}
	}
}

func (f *fakeAPI) deleteEvent(w http.ResponseWriter, r *http.Request) {
	u, ok := f.caller(r)
	if !ok {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := chi.URLParam(r, "id")
	e := f.find(id)
	if e == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrEventNotFound))
		return
	}
	if e.CreatedBy != u.ID {
		resp.RespondError(w, r, errs.NewError(errs.ErrNotEventCreator))
		return
	}
	for i, ev := range f.events {
		if ev.ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			break
		}
	}
	resp.RespondSuccess(w, r, map[string]any{"id": id})
}

func (f *fakeAPI) listChat(w http.ResponseWriter, r *http.Request) {
	f.hit("chat")
	eventID := chi.URLParam(r, "id")

	var since time.Time
	raw := r.URL.Query().Get("since")
	if raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		since = t
	}

	f.mu.Lock()
	f.sinceSeen = append(f.sinceSeen, raw)
	out := make([]chat.Message, 0)
	for _, m := range f.messages {
		if m.EventID == eventID && m.Timestamp.After(since) {
			out = append(out, m)
		}
	}
	f.mu.Unlock()

	resp.RespondSuccess(w, r, map[string]any{"messages": out})
}

func (f *fakeAPI) sendChat(w http.ResponseWriter, r *http.Request) {
	u, ok := f.caller(r)
	if !ok {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return
	}

	var in struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}
	text, err := chat.NormalizeMessage(in.Message)
	if err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrMessageEmpty))
		return
	}

	f.mu.Lock()
	msg := chat.Message{
		ID:        f.nextID("msg"),
		EventID:   chi.URLParam(r, "id"),
		UserID:    u.ID,
		UserName:  u.Name,
		Message:   text,
		Timestamp: testNow.Add(time.Duration(f.seq) * time.Second),
	}
	f.messages = append(f.messages, msg)
	f.mu.Unlock()

	resp.RespondSuccess(w, r, map[string]any{"message": msg})
}

func (f *fakeAPI) geocode(w http.ResponseWriter, r *http.Request) {
	f.hit("geocode")
	f.mu.Lock()
	res, ok := f.results[r.URL.Query().Get("q")]
	f.mu.Unlock()

	if !ok {
		resp.RespondError(w, r, errs.NewError(errs.ErrGeocodeMiss))
		return
	}
	resp.RespondSuccess(w, r, map[string]any{"result": res})
}
