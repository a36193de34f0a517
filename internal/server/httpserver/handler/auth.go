package handler

import (
	"net/http"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// handleSignIn handles POST /v1/auth/signin. The response carries the
// issued tokens; the refresh token is what later privileged calls send
// in X-Refresh-Token.
func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req EmailPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.disp.SignIn(r.Context(), req.Email, req.Password).Await(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newSessionResponse(s))
}

// handleSignInAnonymously handles POST /v1/auth/signin-anonymous.
func (h *Handler) handleSignInAnonymously(w http.ResponseWriter, r *http.Request) {
	s, err := h.disp.SignInAnonymously(r.Context()).Await(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newSessionResponse(s))
}

// handleSignUp handles POST /v1/auth/signup.
func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req EmailPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.disp.SignUp(r.Context(), req.Email, req.Password).Await(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, newSessionResponse(s))
}

// handleSignOut handles POST /v1/auth/signout. The gateway holds no
// session, so this only acknowledges; callers discard their tokens.
func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if _, err := h.disp.SignOut(r.Context()).Await(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, nil)
}

// handleMe handles GET /v1/auth/me.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	s, err := h.disp.CurrentSession(r.Context()).Await(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if s == nil {
		h.handleServiceError(w, r, domain.ErrNoSession.WithDetails("send "+RefreshTokenHeader))
		return
	}
	h.writeJSON(w, r, http.StatusOK, newSessionResponse(s))
}

// handleUpdateProfile handles POST /v1/auth/profile.
func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	update := domain.ProfileUpdate{DisplayName: req.DisplayName, PhotoURL: req.PhotoURL}
	for _, raw := range req.DeleteAttribute {
		attr, err := domain.ParseProfileAttribute(raw)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		update.Delete = append(update.Delete, attr)
	}

	s, err := h.disp.UpdateProfile(r.Context(), update).Await(r.Context())
	h.writeSession(w, r, s, err)
}

// handleUpdateEmail handles POST /v1/auth/email.
func (h *Handler) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.disp.UpdateEmail(r.Context(), req.Email).Await(r.Context())
	h.writeSession(w, r, s, err)
}

// handleUpdatePassword handles POST /v1/auth/password.
func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.disp.UpdatePassword(r.Context(), req.Password).Await(r.Context())
	h.writeSession(w, r, s, err)
}

// handleSendEmailVerification handles POST /v1/auth/verify-email.
func (h *Handler) handleSendEmailVerification(w http.ResponseWriter, r *http.Request) {
	_, err := h.disp.SendEmailVerification(r.Context()).Await(r.Context())
	h.writeAccepted(w, r, err)
}

// handleSendPasswordReset handles POST /v1/auth/password-reset.
func (h *Handler) handleSendPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !h.decode(w, r, &req) {
		return
	}
	_, err := h.disp.SendPasswordResetEmail(r.Context(), req.Email).Await(r.Context())
	h.writeAccepted(w, r, err)
}

// handleVerifyResetCode handles POST /v1/auth/password-reset/verify.
func (h *Handler) handleVerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req ResetCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	email, err := h.disp.VerifyPasswordResetCode(r.Context(), req.Code).Await(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, EmailResponse{Email: email})
}

// handleConfirmReset handles POST /v1/auth/password-reset/confirm.
func (h *Handler) handleConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req ResetCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.disp.ConfirmPasswordReset(r.Context(), req.Code, req.NewPassword).Await(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, nil)
}

// handleRelogin handles POST /v1/auth/relogin. Re-authentication needs a
// client session, so the gateway reports it as unsupported.
func (h *Handler) handleRelogin(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.disp.Relogin(r.Context(), req.Credential).Await(r.Context())
	h.writeSession(w, r, s, err)
}

// handleDelete handles POST /v1/auth/delete.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.disp.DeletePermanently(r.Context(), req.Credential).Await(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, nil)
}

// handleProviders handles POST /v1/auth/providers.
func (h *Handler) handleProviders(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !h.decode(w, r, &req) {
		return
	}
	providers, err := h.disp.FetchProvidersForEmail(r.Context(), req.Email).Await(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ProvidersResponse{Providers: providers})
}

// writeSession answers account updates without echoing tokens.
func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, s *domain.Session, err error) {
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newSessionResponse(s.WithoutTokens()))
}

func (h *Handler) writeAccepted(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusAccepted, nil)
}
