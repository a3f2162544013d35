package geo

import (
	"context"
	"errors"
	"time"
)

// DefaultAcquireTimeout bounds how long Acquire waits for a device position.
const DefaultAcquireTimeout = 8 * time.Second

// FallbackCoordinate is the map center used when no precise position is available (Mumbai).
var FallbackCoordinate = Coordinates{Lat: 19.0760, Lng: 72.8777}

// FallbackCity is the city name reported with FallbackCoordinate.
const FallbackCity = "Mumbai"

var (
	ErrNoLocator           = errors.New("geolocation is not available")
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("geolocation timed out")
)

// Locator yields the device position. Implementations should return promptly
// once ctx is cancelled.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (Coordinates, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// StaticLocator always reports the same position.
type StaticLocator Coordinates

func (s StaticLocator) CurrentPosition(context.Context) (Coordinates, error) {
	return Coordinates(s), nil
}

// Acquisition is the outcome of Acquire. When Fallback is set, Coordinates is
// FallbackCoordinate and Err holds the reason.
type Acquisition struct {
	Coordinates Coordinates `json:"coordinates"`
	City        string      `json:"city,omitempty"`
	Fallback    bool        `json:"fallback"`
	Err         error       `json:"-"`
}

// Acquire asks loc for the current position and waits at most timeout.
// Whichever of the position or the timeout arrives first decides the result;
// the other is discarded and the locator's context is cancelled.
// Every failure, including a nil loc, resolves to FallbackCoordinate.
func (c *Catalog) Acquire(ctx context.Context, loc Locator, timeout time.Duration) Acquisition {
	if loc == nil {
		return fallback(ErrNoLocator)
	}
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}

	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		at  Coordinates
		err error
	}
	// buffered so a late locator never blocks after we stop listening
	results := make(chan result, 1)

	go func() {
		at, err := loc.CurrentPosition(lctx)
		results <- result{at: at, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-results:
		if r.err != nil {
			return fallback(r.err)
		}
		if !r.at.Valid() {
			return fallback(ErrPositionUnavailable)
		}

		a := Acquisition{Coordinates: r.at}
		if city, ok := c.NearestCity(r.at); ok {
			a.City = city.Name
		}
		return a

	case <-timer.C:
		return fallback(ErrTimeout)

	case <-ctx.Done():
		return fallback(ctx.Err())
	}
}

// Acquire runs Catalog.Acquire on the embedded catalog.
func Acquire(ctx context.Context, loc Locator, timeout time.Duration) Acquisition {
	return DefaultCatalog().Acquire(ctx, loc, timeout)
}

func fallback(err error) Acquisition {
	return Acquisition{
		Coordinates: FallbackCoordinate,
		City:        FallbackCity,
		Fallback:    true,
		Err:         err,
	}
}
