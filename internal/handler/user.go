package handler

import (
	"net/http"
	"time"

	"github.com/xenking/grocer-kart/internal/domain/user"
)

type signupRequest struct {
	Mobile   string `json:"mobile"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Gender   string `json:"gender"`
	DOB      string `json:"dob"`
	Password string `json:"password"`
}

type loginRequest struct {
	Mobile   string `json:"mobile"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Gender string `json:"gender"`
	DOB    string `json:"dob"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Mobile    string    `json:"mobile"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	DOB       string    `json:"dob,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type adminResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func toUserResponse(u *user.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Mobile:    u.Mobile,
		Name:      u.Name,
		Email:     u.Email,
		Gender:    u.Gender,
		CreatedAt: u.CreatedAt,
	}
	if u.DOB != nil {
		resp.DOB = u.DOB.Format(time.DateOnly)
	}
	return resp
}

func (h *Handler) parseDOB(s string) (*time.Time, error) {
	t, err := parseDate("dob", s, h.loc)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) error {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	dob, err := h.parseDOB(req.DOB)
	if err != nil {
		return err
	}
	u, err := h.svc.Users.Signup(r.Context(), user.SignupRequest{
		Mobile:   req.Mobile,
		Name:     req.Name,
		Email:    req.Email,
		Gender:   req.Gender,
		DOB:      dob,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	u, err := h.svc.Users.Login(r.Context(), req.Mobile, req.Password)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	a, err := h.svc.Users.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, adminResponse{ID: a.ID, Username: a.Username})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) error {
	u, err := h.svc.Users.Get(r.Context(), r.PathValue("mobile"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) error {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	dob, err := h.parseDOB(req.DOB)
	if err != nil {
		return err
	}
	u, err := h.svc.Users.UpdateProfile(r.Context(), r.PathValue("mobile"), user.ProfileUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Gender: req.Gender,
		DOB:    dob,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.Users.Delete(r.Context(), r.PathValue("mobile")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// resolveUser reads the user_id or mobile query parameter.
func (h *Handler) resolveUser(r *http.Request) (int64, error) {
	id, err := queryID(r, "user_id")
	if err != nil {
		return 0, err
	}
	return h.svc.Users.ResolveID(r.Context(), id, r.URL.Query().Get("mobile"))
}
