package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"trailmeet/internal/app/event"
	"trailmeet/internal/app/geocode"
	"trailmeet/internal/pkg/errs"
)

// BlurDebounce is the delay before a blurred address is geocoded. A Select
// within this window wins over the blur.
const BlurDebounce = 200 * time.Millisecond

const (
	warnAddressNotFound = "Could not find that address. Pick a suggestion or refine it."
	warnGeocodeFailed   = "Could not validate the address right now."
)

// Geocoder resolves an address to coordinates. *Client implements it.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geocode.Result, error)
}

// LocationField is the address input of the event form. It holds the typed
// text and, once validated, the coordinates the form submits.
type LocationField struct {
	geocoder Geocoder
	debounce time.Duration
	notifier Notifier

	mu      sync.Mutex
	address string
	lat     *float64
	lng     *float64
	warning string
	gen     uint64
	timer   *time.Timer
}

// NewLocationField returns an empty field. n may be nil.
func NewLocationField(g Geocoder, n Notifier) *LocationField {
	return &LocationField{geocoder: g, debounce: BlurDebounce, notifier: n}
}

// Type replaces the text. Coordinates from an earlier address are dropped and
// a pending blur lookup is cancelled.
func (f *LocationField) Type(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.supersede()
	f.address = text
	f.lat, f.lng = nil, nil
	f.warning = ""
}

// Select commits a dropdown suggestion. Embedded coordinates are used as is;
// otherwise the description is geocoded once.
func (f *LocationField) Select(ctx context.Context, s geocode.Suggestion) error {
	f.mu.Lock()
	gen := f.supersede()
	f.address = s.Description
	f.warning = ""
	if s.Lat != nil && s.Lng != nil {
		lat, lng := *s.Lat, *s.Lng
		f.lat, f.lng = &lat, &lng
		f.mu.Unlock()
		return nil
	}
	f.lat, f.lng = nil, nil
	f.mu.Unlock()

	return f.resolve(ctx, gen, s.Description)
}

// Blur schedules a forward geocode of the typed text after the debounce
// window. Nothing is scheduled when the field is empty or already resolved.
func (f *LocationField) Blur(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	address := strings.TrimSpace(f.address)
	if address == "" || (f.lat != nil && f.lng != nil) {
		return
	}

	gen := f.supersede()
	f.timer = time.AfterFunc(f.debounce, func() {
		_ = f.resolve(ctx, gen, address)
	})
}

// supersede invalidates any in-flight lookup. Callers hold f.mu.
func (f *LocationField) supersede() uint64 {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.gen++
	return f.gen
}

func (f *LocationField) resolve(ctx context.Context, gen uint64, address string) error {
	res, err := f.geocoder.Geocode(ctx, address)

	f.mu.Lock()
	if f.gen != gen {
		f.mu.Unlock()
		return nil
	}
	if err != nil {
		f.warning = warnGeocodeFailed
		if IsCode(err, errs.ErrGeocodeMiss) {
			f.warning = warnAddressNotFound
		}
		warning := f.warning
		f.mu.Unlock()

		if f.notifier != nil {
			f.notifier.Notify(Notice{Level: NoticeWarning, Message: warning})
		}
		return err
	}

	lat, lng := res.Lat, res.Lng
	f.lat, f.lng = &lat, &lng
	if res.Address != "" {
		f.address = res.Address
	}
	f.mu.Unlock()
	return nil
}

// Value returns the location as the event form submits it.
func (f *LocationField) Value() event.DraftLocation {
	f.mu.Lock()
	defer f.mu.Unlock()

	loc := event.DraftLocation{Address: strings.TrimSpace(f.address)}
	if f.lat != nil && f.lng != nil {
		lat, lng := *f.lat, *f.lng
		loc.Lat, loc.Lng = &lat, &lng
	}
	return loc
}

// Resolved reports whether the field holds coordinates.
func (f *LocationField) Resolved() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lat != nil && f.lng != nil
}

// Warning returns the soft warning of the last failed lookup, if any.
func (f *LocationField) Warning() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.warning
}
