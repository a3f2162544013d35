package client

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trailmeet/internal/app/event"
	"trailmeet/internal/app/geo"
	"trailmeet/internal/app/user"
	"trailmeet/internal/pkg/logx"
)

// NoticeLevel is the severity of a transient notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a short message meant to be shown to the user and then dismissed.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier receives transient notices. Implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type logNotifier struct {
	log zerolog.Logger
}

func (l logNotifier) Notify(n Notice) {
	l.log.Debug().Str("level", string(n.Level)).Msg(n.Message)
}

// ErrNotSignedIn is returned by operations that need a known user.
var ErrNotSignedIn = errors.New("not signed in")

// State is the application state of a TrailMeet front end: the signed-in
// user, the loaded events, the type filter and the current map position.
// It is safe for concurrent use.
type State struct {
	api      *Client
	locator  geo.Locator
	catalog  *geo.Catalog
	notifier Notifier
	now      func() time.Time
	timeout  time.Duration
	log      zerolog.Logger

	mu       sync.RWMutex
	user     *user.User
	events   []Event
	selected string
	location geo.Acquisition
}

// StateOption configures a State.
type StateOption func(*State)

// WithLocator sets the device position source used by RefreshLocation.
func WithLocator(loc geo.Locator) StateOption {
	return func(s *State) { s.locator = loc }
}

// WithNotifier sets the receiver of transient notices.
func WithNotifier(n Notifier) StateOption {
	return func(s *State) { s.notifier = n }
}

// WithClock replaces time.Now for draft validation.
func WithClock(now func() time.Time) StateOption {
	return func(s *State) { s.now = now }
}

// WithCatalog replaces the embedded known-location catalog.
func WithCatalog(c *geo.Catalog) StateOption {
	return func(s *State) { s.catalog = c }
}

// WithLocateTimeout bounds RefreshLocation.
func WithLocateTimeout(d time.Duration) StateOption {
	return func(s *State) { s.timeout = d }
}

// NewState returns a State backed by api. Until RefreshLocation succeeds the
// map position is the fallback coordinate.
func NewState(api *Client, opts ...StateOption) *State {
	s := &State{
		api:      api,
		now:      time.Now,
		timeout:  geo.DefaultAcquireTimeout,
		log:      logx.Component("client"),
		selected: event.AllTypes,
		location: geo.Acquisition{
			Coordinates: geo.FallbackCoordinate,
			City:        geo.FallbackCity,
			Fallback:    true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = logNotifier{log: s.log}
	}
	if s.catalog == nil {
		s.catalog = geo.DefaultCatalog()
	}
	return s
}

func (s *State) notify(level NoticeLevel, msg string) {
	s.notifier.Notify(Notice{Level: level, Message: msg})
}

func (s *State) notifyErr(err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Err == nil && apiErr.Message != "" {
		s.notify(NoticeError, apiErr.Message)
		return
	}
	s.notify(NoticeError, "Network error. Please try again.")
}

// API returns the underlying client.
func (s *State) API() *Client {
	return s.api
}

// User returns the signed-in user, if any.
func (s *State) User() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return user.User{}, false
	}
	return *s.user, true
}

func (s *State) setUser(u user.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

// SignInDemo starts a demo session.
func (s *State) SignInDemo(ctx context.Context) error {
	sess, err := s.api.DemoSession(ctx)
	if err != nil {
		s.notifyErr(err)
		return err
	}
	s.setUser(sess.User)
	return nil
}

// SignIn logs in with email and password.
func (s *State) SignIn(ctx context.Context, email, password string) error {
	sess, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.notifyErr(err)
		return err
	}
	s.setUser(sess.User)
	return nil
}

// Resume restores the user of an existing token.
func (s *State) Resume(ctx context.Context) error {
	if s.api.Token() == "" {
		return ErrNotSignedIn
	}
	u, err := s.api.Me(ctx)
	if err != nil {
		return err
	}
	s.setUser(u)
	return nil
}

// SignOut revokes the session. Local state is cleared even if the server call fails.
func (s *State) SignOut(ctx context.Context) error {
	err := s.api.Logout(ctx)
	s.api.SetToken("")

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return err
}

// Refresh reloads every active event. The filter is applied locally.
func (s *State) Refresh(ctx context.Context) error {
	list, err := s.api.ListEvents(ctx, event.AllTypes)
	if err != nil {
		s.notifyErr(err)
		return err
	}

	s.mu.Lock()
	s.events = list.Events
	s.mu.Unlock()
	return nil
}

// SetFilter selects the event type shown by Visible. Matching is exact.
func (s *State) SetFilter(eventType string) {
	if eventType == "" {
		eventType = event.AllTypes
	}
	s.mu.Lock()
	s.selected = eventType
	s.mu.Unlock()
}

func (s *State) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Events returns a copy of every loaded event.
func (s *State) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Visible returns the loaded events matching the current filter.
func (s *State) Visible() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return event.FilterBy(s.events, s.selected, func(e Event) string { return e.EventType })
}

// Types returns the sorted distinct event types of the loaded events.
func (s *State) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return event.AvailableTypes(plain(s.events))
}

// Counts returns the per-type counts of the loaded events, with the total under event.AllTypes.
func (s *State) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return event.CountByType(plain(s.events))
}

func plain(events []Event) []event.Event {
	out := make([]event.Event, len(events))
	for i, e := range events {
		out[i] = e.Event
	}
	return out
}

// CreateEvent validates draft locally, then submits it. When the session has
// expired it signs in again with a demo session and retries once.
func (s *State) CreateEvent(ctx context.Context, draft event.Draft) (Event, error) {
	if err := draft.Validate(s.now()); err != nil {
		s.notify(NoticeError, err.Error())
		return Event{}, err
	}

	created, err := s.api.CreateEvent(ctx, draft)
	if err != nil && IsUnauthorized(err) {
		s.log.Debug().Err(err).Msg("session rejected, re-authenticating before retry")
		if authErr := s.SignInDemo(ctx); authErr != nil {
			return Event{}, authErr
		}
		created, err = s.api.CreateEvent(ctx, draft)
	}
	if err != nil {
		s.notifyErr(err)
		return Event{}, err
	}

	s.mu.Lock()
	s.events = append([]Event{created}, s.events...)
	s.mu.Unlock()

	s.notify(NoticeSuccess, "Event created")
	return created, nil
}

// Join joins an event. The local list changes only after the server confirms.
func (s *State) Join(ctx context.Context, id string) (Event, error) {
	ev, err := s.api.JoinEvent(ctx, id)
	if err != nil {
		s.notifyErr(err)
		return Event{}, err
	}
	s.replace(ev)
	s.notify(NoticeSuccess, "You joined "+ev.Title)
	return ev, nil
}

// Leave leaves an event. The local list changes only after the server confirms.
func (s *State) Leave(ctx context.Context, id string) (Event, error) {
	ev, err := s.api.LeaveEvent(ctx, id)
	if err != nil {
		s.notifyErr(err)
		return Event{}, err
	}
	s.replace(ev)
	s.notify(NoticeInfo, "You left "+ev.Title)
	return ev, nil
}

// Delete removes an event created by the signed-in user.
func (s *State) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteEvent(ctx, id); err != nil {
		s.notifyErr(err)
		return err
	}

	s.mu.Lock()
	s.events = slices.DeleteFunc(s.events, func(e Event) bool { return e.ID == id })
	s.mu.Unlock()

	s.notify(NoticeInfo, "Event deleted")
	return nil
}

func (s *State) replace(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == ev.ID {
			s.events[i] = ev
			return
		}
	}
}

// MyEvents returns the events the signed-in user created and, separately,
// those they joined. An event never appears in both.
func (s *State) MyEvents(ctx context.Context) (created, joined []Event, err error) {
	u, ok := s.User()
	if !ok {
		return nil, nil, ErrNotSignedIn
	}

	events, err := s.api.MyEvents(ctx)
	if err != nil {
		s.notifyErr(err)
		return nil, nil, err
	}

	created = make([]Event, 0)
	joined = make([]Event, 0)
	for _, e := range events {
		switch {
		case e.CreatedBy == u.ID:
			created = append(created, e)
		case e.HasParticipant(u.ID):
			joined = append(joined, e)
		}
	}
	return created, joined, nil
}

// RefreshLocation acquires the device position, falling back to the default
// coordinate on any failure.
func (s *State) RefreshLocation(ctx context.Context) geo.Acquisition {
	a := s.catalog.Acquire(ctx, s.locator, s.timeout)
	if a.Fallback {
		s.log.Debug().Err(a.Err).Msg("using fallback location")
		s.notify(NoticeWarning, "Location unavailable, showing "+geo.FallbackCity)
	}

	s.mu.Lock()
	s.location = a
	s.mu.Unlock()
	return a
}

// Location returns the last acquired map position.
func (s *State) Location() geo.Acquisition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}
