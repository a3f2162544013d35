package handler

import (
	"net/http"

	"trailmeet/internal/app/storage"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/randx"
	"trailmeet/internal/pkg/req"
	"trailmeet/internal/pkg/resp"
)

// PresignAvatarInput defines the JSON input structure for generating an avatar upload URL.
type PresignAvatarInput struct {
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// HandlePresignAvatar signs a time-limited PUT URL for a new avatar of the caller.
// The returned key is later submitted as the profile picture.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _, ok := requireUser(w, r)
		if !ok {
			return
		}

		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := storage.ValidateAvatar(input.MimeType, input.FileSize); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		key := storage.AvatarKey(identity.ID, randx.NewID(), input.MimeType)

		url, err := deps.StorageService.PresignUpload(
			r.Context(),
			key,
			input.MimeType,
			input.FileSize,
			storage.PresignedURLDuration,
		)
		if err != nil {
			logx.Error(err, "presign avatar failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"upload_url": url,
			"key":        key,
			"expires_in": int(storage.PresignedURLDuration.Seconds()),
		})
	}
}
