package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/grocer-kart/internal/domain/auth"
)

// maxBodySize fits a base64 image of media.MaxImageSize plus its fields.
const maxBodySize = 4 << 20

const apiKeyHeader = "X-API-Key"

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h *Handler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(r.Context(), w, err)
		}
	}
}

// admin guards fn with the admin API key.
func (h *Handler) admin(fn handlerFunc) http.HandlerFunc {
	return h.handle(func(w http.ResponseWriter, r *http.Request) error {
		if err := h.requireAdmin(r); err != nil {
			return err
		}
		return fn(w, r)
	})
}

func (h *Handler) requireAdmin(r *http.Request) error {
	key := r.Header.Get(apiKeyHeader)
	if key == "" {
		key = r.Header.Get("api_key")
	}
	if _, err := h.svc.Auth.Authenticate(r.Context(), key, auth.ScopeAdmin); err != nil {
		return errors.Wrap(err, "authenticate admin")
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return errors.Wrap(err, "encode response")
	}
	return nil
}

func writeMessage(w http.ResponseWriter, status int, msg string) error {
	return writeJSON(w, status, messageResponse{Message: msg})
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(name + " must be a positive integer")
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter. A missing
// parameter yields zero.
func queryID(r *http.Request, name string) (int64, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(name + " must be a positive integer")
	}
	return id, nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// parseDate parses a YYYY-MM-DD calendar date in loc. The empty string
// yields the zero time.
func parseDate(field, s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, badRequest(field + " must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// money renders a decimal as a JSON number with two decimal places.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

func nullMoney(d decimal.NullDecimal) *money {
	if !d.Valid {
		return nil
	}
	m := money(d.Decimal)
	return &m
}

type messageResponse struct {
	Message string `json:"message"`
}
