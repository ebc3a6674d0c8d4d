package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/grocer-kart/internal/domain/validation"
)

const (
	minPasswordLen = 6
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLen = 72
)

var genders = map[string]bool{"": true, "male": true, "female": true, "other": true}

// SignupRequest holds the fields for creating an account.
type SignupRequest struct {
	Mobile   string
	Name     string
	Email    string
	Gender   string
	DOB      *time.Time
	Password string
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Name   string
	Email  string
	Gender string
	DOB    *time.Time
}

// Service implements signup, login and profile management.
type Service struct {
	repo Repository
	cost int
}

// NewService creates a Service hashing passwords with bcrypt at cost.
// A zero cost selects bcrypt.DefaultCost.
func NewService(repo Repository, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, cost: cost}
}

// Signup validates req, hashes the password and stores a new user.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	mobile, ok := validation.Mobile(req.Mobile)
	if !ok {
		return nil, validation.New("mobile", "must contain 10 digits")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validation.Missing("name")
	}
	if l := len(req.Password); l < minPasswordLen || l > maxPasswordLen {
		return nil, validation.New("password", "must be 6 to 72 characters")
	}
	p, err := checkProfile(req.Email, req.Gender)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		Mobile:       mobile,
		Name:         name,
		Email:        p.Email,
		Gender:       p.Gender,
		DOB:          req.DOB,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Login checks the password of the user registered with mobile.
func (s *Service) Login(ctx context.Context, mobile, password string) (*User, error) {
	u, err := s.repo.GetByMobile(ctx, validation.NormalizeMobile(mobile))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// AdminLogin checks an admin console password.
func (s *Service) AdminLogin(ctx context.Context, username, password string) (*Admin, error) {
	a, err := s.repo.GetAdmin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get admin")
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// Get returns the user registered with mobile.
func (s *Service) Get(ctx context.Context, mobile string) (*User, error) {
	u, err := s.repo.GetByMobile(ctx, validation.NormalizeMobile(mobile))
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return u, nil
}

// UpdateProfile replaces the editable fields of the user registered with mobile.
func (s *Service) UpdateProfile(ctx context.Context, mobile string, upd ProfileUpdate) (*User, error) {
	u, err := s.Get(ctx, mobile)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(upd.Name)
	if name == "" {
		return nil, validation.Missing("name")
	}
	p, err := checkProfile(upd.Email, upd.Gender)
	if err != nil {
		return nil, err
	}

	u.Name = name
	u.Email = p.Email
	u.Gender = p.Gender
	u.DOB = upd.DOB
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, errors.Wrap(err, "update user")
	}
	return u, nil
}

// Delete removes the account registered with mobile.
func (s *Service) Delete(ctx context.Context, mobile string) error {
	if err := s.repo.DeleteByMobile(ctx, validation.NormalizeMobile(mobile)); err != nil {
		return errors.Wrap(err, "delete user")
	}
	return nil
}

// ResolveID returns userID when set, otherwise the id of the user registered
// with mobile. Mobile is normalized before the exact-match lookup.
func (s *Service) ResolveID(ctx context.Context, userID int64, mobile string) (int64, error) {
	if userID > 0 {
		return userID, nil
	}
	if strings.TrimSpace(mobile) == "" {
		return 0, validation.Missing("user_id")
	}
	u, err := s.repo.GetByMobile(ctx, validation.NormalizeMobile(mobile))
	if err != nil {
		return 0, errors.Wrap(err, "resolve user by mobile")
	}
	return u.ID, nil
}

type profile struct {
	Email  string
	Gender string
}

func checkProfile(email, gender string) (profile, error) {
	email, ok := validation.Email(email)
	if !ok {
		return profile{}, validation.New("email", "is not a valid address")
	}
	gender = strings.ToLower(strings.TrimSpace(gender))
	if !genders[gender] {
		return profile{}, validation.New("gender", "must be male, female or other")
	}
	return profile{Email: email, Gender: gender}, nil
}
