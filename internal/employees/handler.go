package employees

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
)

// EmployeeStore is what the handlers need from the roster store.
type EmployeeStore interface {
	List(ctx context.Context) ([]Employee, error)
	Get(ctx context.Context, id int64) (*Employee, error)
	Create(ctx context.Context, f Fields) (*Employee, error)
	Update(ctx context.Context, id int64, f Fields) (*Employee, error)
	SoftDelete(ctx context.Context, id int64) error
}

type Handler struct {
	Store  EmployeeStore
	Logger *slog.Logger
}

type employeeRequest struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     *string  `json:"email"`
	Phone     *string  `json:"phone"`
	Position  *string  `json:"position"`
	Salary    *float64 `json:"salary"`
	HireDate  *string  `json:"hireDate"`
	IsActive  *bool    `json:"isActive"`
}

func (req *employeeRequest) validate() map[string]string {
	fields := map[string]string{}
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
	if req.Email != nil && *req.Email != "" {
		if len(*req.Email) > 200 {
			fields["email"] = "must be at most 200 characters"
		} else if _, err := mail.ParseAddress(*req.Email); err != nil {
			fields["email"] = "must be a valid email address"
		}
	}
	if req.Phone != nil && len(*req.Phone) > 20 {
		fields["phone"] = "must be at most 20 characters"
	}
	if req.Position != nil && len(*req.Position) > 200 {
		fields["position"] = "must be at most 200 characters"
	}
	if req.Salary != nil && *req.Salary < 0 {
		fields["salary"] = "must not be negative"
	}
	if req.HireDate != nil {
		if _, err := parseDate(*req.HireDate); err != nil {
			fields["hireDate"] = "must be a date (2006-01-02 or RFC 3339)"
		}
	}
	return fields
}

func (req *employeeRequest) toFields() Fields {
	f := Fields{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Position:  req.Position,
		Salary:    req.Salary,
		IsActive:  true,
	}
	if req.Email != nil && *req.Email != "" {
		f.Email = req.Email
	}
	if req.HireDate != nil {
		if t, err := parseDate(*req.HireDate); err == nil {
			f.HireDate = &t
		}
	}
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
	return f
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Store.List(r.Context())
	if err != nil {
		h.Logger.Error("list employees", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	views := make([]View, 0, len(emps))
	for i := range emps {
		views = append(views, emps[i].View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}
	emp, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		h.Logger.Error("get employee", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, emp.View())
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	emp, err := h.Store.Create(r.Context(), req.toFields())
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "duplicate_email")
			return
		}
		h.Logger.Error("create employee", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/employees/%d", emp.ID))
	writeJSON(w, http.StatusCreated, emp.View())
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	if _, err := h.Store.Update(r.Context(), id, req.toFields()); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found")
		case errors.Is(err, ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "duplicate_email")
		default:
			h.Logger.Error("update employee", "id", id, "err", err)
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}
	if err := h.Store.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		h.Logger.Error("delete employee", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func employeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return 0, false
	}
	return id, true
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
