package handler

import (
	"context"
	"time"

	"trailmeet/internal/app/chat"
	"trailmeet/internal/app/db"
	"trailmeet/internal/app/eventtype"
	"trailmeet/internal/app/geo"
	"trailmeet/internal/app/geocode"
	"trailmeet/internal/app/storage"
	"trailmeet/internal/configs"
	"trailmeet/internal/pkg/auth/jwt"
	"trailmeet/internal/pkg/pow"
)

// SessionStore issues and revokes the sessions behind bearer tokens.
type SessionStore interface {
	jwt.SessionChecker
	Create(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

// Geocoder answers place searches and forward geocodes.
type Geocoder interface {
	Search(ctx context.Context, q string) ([]geocode.Suggestion, geocode.Source, error)
	Forward(ctx context.Context, address string) (geocode.Result, error)
}

type AppDeps struct {
	Config   *configs.AppConfig
	Store    db.Store
	Sessions SessionStore
	Geocoder Geocoder
	Catalog  *geo.Catalog
	Resolver *eventtype.Resolver
	Manager  *chat.Manager
	PoW      *pow.Manager

	// StorageService is nil when avatar uploads are not configured.
	StorageService storage.StorageService

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *AppDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// PictureURL resolves a stored picture value for clients.
func (d *AppDeps) PictureURL(ctx context.Context, picture string) string {
	return storage.PictureURL(ctx, d.StorageService, d.Config.S3PublicBaseURL, picture)
}
