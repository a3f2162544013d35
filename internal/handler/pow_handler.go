package handler

import (
	"net/http"

	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/req"
	"trailmeet/internal/pkg/resp"
)

// HandlePowChallenge hands out a fresh nonce and the difficulty to solve it at.
// With the gate disabled it reports enabled=false and no nonce.
func HandlePowChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.PoW == nil || !deps.PoW.Enabled() {
			resp.RespondSuccess(w, r, map[string]any{"enabled": false})
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"enabled":    true,
			"difficulty": deps.PoW.Difficulty(),
			"nonce":      deps.PoW.GenerateNonce(),
		})
	}
}

type PowVerifyInput struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// HandlePowVerify exchanges a solved challenge for a single-use proof token.
func HandlePowVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.PoW == nil || !deps.PoW.Enabled() {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var input PowVerifyInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Nonce == "" || input.Counter == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		token, err := deps.PoW.ValidateProof(input.Nonce, input.Counter)
		if err != nil {
			logx.Warn("PoW verification failed", "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"token": token})
	}
}
