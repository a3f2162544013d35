package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	// MaxAvatarSize is the largest accepted avatar upload.
	MaxAvatarSize = 2 << 20

	// PresignedURLDuration bounds the lifetime of upload and download URLs.
	PresignedURLDuration = 10 * time.Minute

	avatarPrefix = "avatars/"
)

var (
	ErrAvatarType = errors.New("avatar must be a JPEG, PNG or WebP image")
	ErrAvatarSize = errors.New("avatar must be at most 2 MB")
	ErrAvatarKey  = errors.New("avatar key does not belong to this user")
)

// avatarTypes maps accepted MIME types to their file extension.
var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ValidateAvatar checks an upload request before a URL is signed.
func ValidateAvatar(mimeType string, size int64) error {
	if _, ok := avatarTypes[strings.ToLower(mimeType)]; !ok {
		return ErrAvatarType
	}
	if size <= 0 || size > MaxAvatarSize {
		return ErrAvatarSize
	}
	return nil
}

// AvatarKey returns the object key for a new avatar of userID.
func AvatarKey(userID, objectID, mimeType string) string {
	return fmt.Sprintf("%s%s/%s%s", avatarPrefix, userID, objectID, avatarTypes[strings.ToLower(mimeType)])
}

// OwnsAvatarKey reports whether key is an avatar object of userID.
func OwnsAvatarKey(userID, key string) bool {
	return strings.HasPrefix(key, avatarPrefix+userID+"/") && path.Clean(key) == key
}

// IsAvatarKey reports whether a stored picture value is an object key rather than an external URL.
func IsAvatarKey(picture string) bool {
	return strings.HasPrefix(picture, avatarPrefix)
}

// VerifyAvatar confirms an uploaded object exists and still satisfies ValidateAvatar.
func VerifyAvatar(ctx context.Context, svc StorageService, userID, key string) error {
	if !OwnsAvatarKey(userID, key) {
		return ErrAvatarKey
	}
	info, err := svc.Stat(ctx, key)
	if err != nil {
		return err
	}
	return ValidateAvatar(info.ContentType, info.Size)
}

// PictureURL resolves a stored picture to something a browser can load.
// External URLs pass through; object keys use the public base URL when
// configured and a presigned download otherwise.
func PictureURL(ctx context.Context, svc StorageService, publicBaseURL, picture string) string {
	if picture == "" || !IsAvatarKey(picture) {
		return picture
	}
	if publicBaseURL != "" {
		return strings.TrimRight(publicBaseURL, "/") + "/" + picture
	}
	if svc == nil {
		return ""
	}
	url, err := svc.PresignDownload(ctx, picture, PresignedURLDuration)
	if err != nil {
		return ""
	}
	return url
}
