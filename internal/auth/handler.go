package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"log/slog"
)

type Handler struct {
	Service *Service
	Logger  *slog.Logger
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (req *registerRequest) validate() map[string]string {
	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "required"
	} else if len(req.Email) > 200 {
		fields["email"] = "must be at most 200 characters"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if req.FirstName == "" {
		fields["firstName"] = "required"
	} else if len(req.FirstName) > 100 {
		fields["firstName"] = "must be at most 100 characters"
	}
	if req.LastName == "" {
		fields["lastName"] = "required"
	} else if len(req.LastName) > 100 {
		fields["lastName"] = "must be at most 100 characters"
	}
	if err := ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	return fields
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	user, err := h.Service.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "duplicate_email")
			return
		}
		h.Logger.Error("register user", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, user.View())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	user, token, expiresAt, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		h.Logger.Error("login", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Email:     user.Email,
		FullName:  user.FullName(),
		ExpiresAt: expiresAt,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	user, err := h.Service.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		h.Logger.Error("current user", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, user.View())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation_failed",
		"fields": fields,
	})
}
