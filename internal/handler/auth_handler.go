package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"

	"trailmeet/internal/app/db"
	dbc "trailmeet/internal/app/db/sqlc"
	"trailmeet/internal/app/user"
	"trailmeet/internal/pkg/auth/jwt"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/randx"
	"trailmeet/internal/pkg/req"
	"trailmeet/internal/pkg/resp"
)

// issueSession registers a session for row and signs the bearer token carrying it.
func issueSession(ctx context.Context, deps *AppDeps, row dbc.User) (string, error) {
	userID := row.ID.String()

	sessionID, err := deps.Sessions.Create(ctx, userID)
	if err != nil {
		return "", err
	}

	payload := &jwt.Payload{ID: userID, Name: row.Name}
	return jwt.GenerateToken(payload, sessionID, deps.Config.JWTSecret, deps.Config.SessionExpiration)
}

func (d *AppDeps) userView(ctx context.Context, row dbc.User) user.User {
	u := user.FromRow(row)
	u.Picture = d.PictureURL(ctx, u.Picture)
	return u
}

func respondSession(w http.ResponseWriter, r *http.Request, deps *AppDeps, row dbc.User) {
	token, err := issueSession(r.Context(), deps, row)
	if err != nil {
		logx.Error(err, "failed to issue session", "user_id", row.ID.String())
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{
		"session_token": token,
		"user":          deps.userView(r.Context(), row),
	})
}

// HandleDemoSession signs the caller in as the shared demo user. When the
// proof-of-work gate is enabled the request must carry a fresh proof token.
func HandleDemoSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Config.DemoLoginEnabled {
			resp.RespondError(w, r, errs.NewError(errs.ErrDemoLoginDisabled))
			return
		}

		if deps.PoW != nil && deps.PoW.Enabled() && !deps.PoW.ConsumeProofToken(r) {
			logx.Warn("Demo session rejected: missing or invalid proof token")
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		row, err := deps.Store.UpsertUserByEmail(r.Context(), dbc.UpsertUserByEmailParams{
			Email: user.DemoEmail,
			Name:  user.DemoName,
		})
		if err != nil {
			logx.Error(err, "failed to upsert demo user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		respondSession(w, r, deps, row)
	}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// HandleRegister creates an email and password account and signs it in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email, err := user.NormalizeEmail(input.Email)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		if err := user.ValidatePassword(input.Password); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		name := input.Name
		if name == "" {
			name, err = randx.UserNickname()
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
				return
			}
		}
		name, err = user.NormalizeName(name)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}

		hashed, err := user.HashPassword(input.Password)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		row, err := deps.Store.CreateUser(r.Context(), dbc.CreateUserParams{
			Email:        email,
			Name:         name,
			PasswordHash: pgtype.Text{String: hashed, Valid: true},
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("registration conflict: email already exists", "email", email)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		respondSession(w, r, deps, row)
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a new session.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if identity := jwt.GetPayloadFromContext(r); identity != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email, err := user.NormalizeEmail(input.Email)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		row, err := deps.Store.GetUserByEmail(r.Context(), email)
		if err != nil {
			if !db.IsNotFound(err) {
				logx.Error(err, "login: user fetch failed", "email", email)
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if !user.CheckPassword(row.PasswordHash.String, input.Password) {
			logx.Warn("login: password mismatch", "email", email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.Store.UpdateLastLogin(r.Context(), row.ID); err != nil {
			logx.Error(err, "login: failed to update last_login_at", "user_id", row.ID.String())
		}

		respondSession(w, r, deps, row)
	}
}

// HandleMe returns the signed-in user.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, userUUID, ok := requireUser(w, r)
		if !ok {
			return
		}

		row, err := deps.Store.GetUserByID(r.Context(), userUUID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": deps.userView(r.Context(), row),
		})
	}
}

// HandleLogout revokes the caller's session. The token stops working immediately.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _, ok := requireUser(w, r)
		if !ok {
			return
		}

		if err := deps.Sessions.Revoke(r.Context(), identity.SessionID()); err != nil && !errors.Is(err, context.Canceled) {
			logx.Error(err, "logout: failed to revoke session", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}
