package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"trailmeet/internal/app/db"
	dbc "trailmeet/internal/app/db/sqlc"
	"trailmeet/internal/app/geocode"
	"trailmeet/internal/pkg/randx"
)

// memStore is an in-memory db.Store with the semantics of the SQL queries.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users        map[[16]byte]dbc.User
	events       map[[16]byte]dbc.Event
	participants map[[16]byte][]pgtype.UUID
	messages     []dbc.ChatMessage

	clock time.Time
}

var _ db.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[[16]byte]dbc.User),
		events:       make(map[[16]byte]dbc.Event),
		participants: make(map[[16]byte][]pgtype.UUID),
		clock:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

// tick returns a strictly increasing timestamp. Callers hold mu.
func (s *memStore) tick() pgtype.Timestamptz {
	s.clock = s.clock.Add(time.Millisecond)
	return db.Timestamptz(s.clock)
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

func (s *memStore) ExecTx(ctx context.Context, fn func(q dbc.Querier) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

func (s *memStore) AddParticipant(_ context.Context, arg dbc.AddParticipantParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[arg.EventID.Bytes]; !ok {
		return &pgconn.PgError{Code: "23503"}
	}
	for _, p := range s.participants[arg.EventID.Bytes] {
		if p == arg.UserID {
			return uniqueViolation()
		}
	}
	s.participants[arg.EventID.Bytes] = append(s.participants[arg.EventID.Bytes], arg.UserID)
	return nil
}

func (s *memStore) CompletePastEvents(_ context.Context, eventDate pgtype.Timestamptz) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, e := range s.events {
		if e.Status == "active" && e.EventDate.Time.Before(eventDate.Time) {
			e.Status = "completed"
			s.events[id] = e
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateChatMessage(_ context.Context, arg dbc.CreateChatMessageParams) (dbc.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := dbc.ChatMessage{
		ID:        newUUID(),
		EventID:   arg.EventID,
		UserID:    arg.UserID,
		UserName:  arg.UserName,
		Message:   arg.Message,
		CreatedAt: s.tick(),
	}
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *memStore) CreateEvent(_ context.Context, arg dbc.CreateEventParams) (dbc.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := dbc.Event{
		ID:          newUUID(),
		Title:       arg.Title,
		Description: arg.Description,
		EventType:   arg.EventType,
		Lat:         arg.Lat,
		Lng:         arg.Lng,
		Address:     arg.Address,
		EventDate:   arg.EventDate,
		Capacity:    arg.Capacity,
		CreatedBy:   arg.CreatedBy,
		Status:      "active",
		CreatedAt:   s.tick(),
	}
	s.events[e.ID.Bytes] = e
	return e, nil
}

func (s *memStore) CreateUser(_ context.Context, arg dbc.CreateUserParams) (dbc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == arg.Email {
			return dbc.User{}, uniqueViolation()
		}
	}
	u := dbc.User{
		ID:           newUUID(),
		Email:        arg.Email,
		Name:         arg.Name,
		Picture:      arg.Picture,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    s.tick(),
	}
	s.users[u.ID.Bytes] = u
	return u, nil
}

func (s *memStore) DeleteEvent(_ context.Context, id pgtype.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id.Bytes]; !ok {
		return 0, nil
	}
	delete(s.events, id.Bytes)
	delete(s.participants, id.Bytes)

	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.EventID != id {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	return 1, nil
}

func (s *memStore) GetEvent(_ context.Context, id pgtype.UUID) (dbc.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id.Bytes]
	if !ok {
		return dbc.Event{}, pgx.ErrNoRows
	}
	return e, nil
}

func (s *memStore) GetEventForUpdate(ctx context.Context, id pgtype.UUID) (dbc.Event, error) {
	return s.GetEvent(ctx, id)
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (dbc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dbc.User{}, pgx.ErrNoRows
}

func (s *memStore) GetUserByID(_ context.Context, id pgtype.UUID) (dbc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id.Bytes]
	if !ok {
		return dbc.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (s *memStore) sortedEvents(keep func(dbc.Event) bool, limit int32) []dbc.Event {
	out := []dbc.Event{}
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EventDate.Time.Before(out[j].EventDate.Time)
	})
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (s *memStore) ListActiveEvents(_ context.Context, limit int32) ([]dbc.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedEvents(func(e dbc.Event) bool { return e.Status == "active" }, limit), nil
}

func (s *memStore) ListChatMessagesSince(_ context.Context, arg dbc.ListChatMessagesSinceParams) ([]dbc.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []dbc.ChatMessage{}
	for _, m := range s.messages {
		if m.EventID == arg.EventID && m.CreatedAt.Time.After(arg.CreatedAt.Time) {
			out = append(out, m)
		}
	}
	if int32(len(out)) > arg.Limit {
		out = out[:arg.Limit]
	}
	return out, nil
}

func (s *memStore) ListEventsForUser(_ context.Context, arg dbc.ListEventsForUserParams) ([]dbc.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedEvents(func(e dbc.Event) bool {
		if e.CreatedBy == arg.CreatedBy {
			return true
		}
		for _, p := range s.participants[e.ID.Bytes] {
			if p == arg.CreatedBy {
				return true
			}
		}
		return false
	}, arg.Limit), nil
}

func (s *memStore) ListParticipants(_ context.Context, eventIds []pgtype.UUID) ([]dbc.ListParticipantsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := []dbc.ListParticipantsRow{}
	for _, id := range eventIds {
		for _, p := range s.participants[id.Bytes] {
			rows = append(rows, dbc.ListParticipantsRow{EventID: id, UserID: p})
		}
	}
	return rows, nil
}

func (s *memStore) ListRecentChatMessages(_ context.Context, arg dbc.ListRecentChatMessagesParams) ([]dbc.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []dbc.ChatMessage{}
	for _, m := range s.messages {
		if m.EventID == arg.EventID {
			out = append(out, m)
		}
	}
	if int32(len(out)) > arg.Limit {
		out = out[int32(len(out))-arg.Limit:]
	}
	return out, nil
}

func (s *memStore) RemoveParticipant(_ context.Context, arg dbc.RemoveParticipantParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.participants[arg.EventID.Bytes]
	for i, p := range list {
		if p == arg.UserID {
			s.participants[arg.EventID.Bytes] = append(list[:i:i], list[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *memStore) UpdateLastLogin(_ context.Context, id pgtype.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id.Bytes]
	if !ok {
		return pgx.ErrNoRows
	}
	u.LastLoginAt = s.tick()
	s.users[id.Bytes] = u
	return nil
}

func (s *memStore) UpdateUserProfile(_ context.Context, arg dbc.UpdateUserProfileParams) (dbc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[arg.ID.Bytes]
	if !ok {
		return dbc.User{}, pgx.ErrNoRows
	}
	u.Name = arg.Name
	u.Picture = arg.Picture
	s.users[arg.ID.Bytes] = u
	return u, nil
}

func (s *memStore) UpsertUserByEmail(_ context.Context, arg dbc.UpsertUserByEmailParams) (dbc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.Email == arg.Email {
			u.LastLoginAt = s.tick()
			s.users[id] = u
			return u, nil
		}
	}
	u := dbc.User{
		ID:          newUUID(),
		Email:       arg.Email,
		Name:        arg.Name,
		Picture:     arg.Picture,
		CreatedAt:   s.tick(),
		LastLoginAt: s.tick(),
	}
	s.users[u.ID.Bytes] = u
	return u, nil
}

// memSessions is an in-memory SessionStore.
type memSessions struct {
	mu     sync.Mutex
	active map[string]string
}

func newMemSessions() *memSessions {
	return &memSessions{active: make(map[string]string)}
}

func (s *memSessions) Create(_ context.Context, userID string) (string, error) {
	id, err := randx.SessionID()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[id] = userID
	return id, nil
}

func (s *memSessions) Active(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[sessionID]
	return ok, nil
}

func (s *memSessions) Revoke(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, sessionID)
	return nil
}

// stubGeocoder answers from fixed tables.
type stubGeocoder struct {
	suggestions []geocode.Suggestion
	results     map[string]geocode.Result
}

func (g stubGeocoder) Search(_ context.Context, q string) ([]geocode.Suggestion, geocode.Source, error) {
	if len([]rune(q)) < 2 {
		return nil, "", geocode.ErrQueryTooShort
	}
	return g.suggestions, geocode.SourceCatalog, nil
}

func (g stubGeocoder) Forward(_ context.Context, address string) (geocode.Result, error) {
	r, ok := g.results[address]
	if !ok {
		return geocode.Result{}, geocode.ErrGeocodeMiss
	}
	return r, nil
}
