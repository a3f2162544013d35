package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	dbc "trailmeet/internal/app/db/sqlc"
	"trailmeet/internal/app/storage"
	"trailmeet/internal/app/user"
	"trailmeet/internal/pkg/auth/jwt"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/req"
	"trailmeet/internal/pkg/resp"
)

type UpdateProfileInput struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// HandleUpdateUserProfile changes the caller's name and picture. The picture is
// either an uploaded avatar key or an external https URL; empty clears it.
func HandleUpdateUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, userUUID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		name, err := user.NormalizeName(input.Name)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}

		if customErr := checkPicture(r.Context(), deps, identity.ID, input.Picture); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		oldUser, err := deps.Store.GetUserByID(r.Context(), userUUID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		updatedUser, err := deps.Store.UpdateUserProfile(r.Context(), dbc.UpdateUserProfileParams{
			ID:      userUUID,
			Name:    name,
			Picture: pgtype.Text{String: input.Picture, Valid: input.Picture != ""},
		})
		if err != nil {
			logx.Error(err, "update_profile: database update failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		oldKey := oldUser.Picture.String
		if deps.StorageService != nil && storage.IsAvatarKey(oldKey) && oldKey != input.Picture {
			go func(k string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := deps.StorageService.Delete(ctx, k); err != nil {
					logx.Warn("update_profile: failed to delete old avatar", "key", k, "error", err.Error())
				}
			}(oldKey)
		}

		finalResponse := map[string]any{
			"user": deps.userView(r.Context(), updatedUser),
		}

		// The name travels in the token, so reissue it on the same session.
		newPayload := &jwt.Payload{ID: identity.ID, Name: updatedUser.Name}
		newToken, err := jwt.GenerateToken(newPayload, identity.SessionID(), deps.Config.JWTSecret, deps.Config.SessionExpiration)
		if err != nil {
			logx.Error(err, "update_profile: token generation failed, fallback to old token")
		} else {
			finalResponse["session_token"] = newToken
		}

		resp.RespondSuccess(w, r, finalResponse)
	}
}

func checkPicture(ctx context.Context, deps *AppDeps, userID, picture string) *errs.CustomError {
	if picture == "" {
		return nil
	}

	if storage.IsAvatarKey(picture) {
		if deps.StorageService == nil {
			return errs.NewError(errs.ErrFileStorageFailed)
		}
		if err := storage.VerifyAvatar(ctx, deps.StorageService, userID, picture); err != nil {
			logx.Warn("update_profile: avatar rejected", "user_id", userID, "key", picture, "error", err.Error())
			return errs.NewError(errs.ErrInvalidParams)
		}
		return nil
	}

	u, err := url.Parse(picture)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return nil
}
