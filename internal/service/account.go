package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/canteenrush/canteenrush/internal/auth"
	"github.com/canteenrush/canteenrush/internal/metrics"
	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/repository"
)

// AccountService handles registration, logins and sessions.
type AccountService struct {
	store      AccountStore
	sessions   SessionStore
	sessionTTL time.Duration
	metrics    metrics.Recorder
	now        func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(store AccountStore, sessions SessionStore, sessionTTL time.Duration, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		store:      store,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		metrics:    recorder,
		now:        time.Now,
	}
}

// LoginResult carries the bearer token of a new session.
// The token is shown once; only its hash is stored.
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Session   *model.Session `json:"session"`
}

// Profile is a student's own view of their account.
type Profile struct {
	User *model.User     `json:"user"`
	Tier model.KarmaTier `json:"karma_tier"`
}

// Register creates a student account with full karma.
func (s *AccountService) Register(ctx context.Context, rollNo, name, pin string) (*model.User, error) {
	rollNo = strings.TrimSpace(rollNo)
	name = strings.TrimSpace(name)
	if rollNo == "" || name == "" {
		return nil, ErrMissingField
	}
	if !auth.ValidatePIN(pin) {
		return nil, ErrInvalidPIN
	}

	hash, err := auth.HashSecret(pin)
	if err != nil {
		return nil, fmt.Errorf("hash PIN: %w", err)
	}

	user := &model.User{
		RollNo:    rollNo,
		Name:      name,
		PINHash:   hash,
		Points:    model.DefaultKarma,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// LoginStudent verifies a roll number and PIN. Students below the ban
// threshold cannot log in.
func (s *AccountService) LoginStudent(ctx context.Context, rollNo, pin string) (*LoginResult, error) {
	user, err := s.store.GetUser(ctx, strings.TrimSpace(rollNo))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin(string(model.RoleStudent), "invalid")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.verify(pin, user.PINHash) {
		s.metrics.IncLogin(string(model.RoleStudent), "invalid")
		return nil, ErrInvalidCredentials
	}
	if user.IsBanned() {
		s.metrics.IncLogin(string(model.RoleStudent), "banned")
		return nil, ErrUserBanned
	}

	return s.startSession(ctx, &model.Session{
		Role:   model.RoleStudent,
		UserID: user.RollNo,
		Name:   user.Name,
	})
}

// LoginVendor verifies vendor credentials.
func (s *AccountService) LoginVendor(ctx context.Context, username, password string) (*LoginResult, error) {
	vendor, err := s.store.GetVendorByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrVendorNotFound) {
			s.metrics.IncLogin(string(model.RoleVendor), "invalid")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.verify(password, vendor.PasswordHash) {
		s.metrics.IncLogin(string(model.RoleVendor), "invalid")
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, &model.Session{
		Role:     model.RoleVendor,
		VendorID: vendor.ID,
		Name:     vendor.Name,
	})
}

// LoginAdmin verifies admin credentials.
func (s *AccountService) LoginAdmin(ctx context.Context, username, password string) (*LoginResult, error) {
	admin, err := s.store.GetAdminByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			s.metrics.IncLogin(string(model.RoleAdmin), "invalid")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.verify(password, admin.PasswordHash) {
		s.metrics.IncLogin(string(model.RoleAdmin), "invalid")
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, &model.Session{
		Role:    model.RoleAdmin,
		AdminID: admin.ID,
		Name:    admin.Username,
	})
}

// Authenticate resolves a bearer token to its session.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if !auth.ValidateTokenFormat(token) {
		return nil, ErrUnauthorized
	}

	sess, err := s.sessions.GetSession(ctx, auth.SessionKey(token))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

// Logout ends the session.
func (s *AccountService) Logout(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return ErrUnauthorized
	}
	return s.sessions.DeleteSession(ctx, sess.ID)
}

// Points returns the student's karma. Unknown students have zero.
func (s *AccountService) Points(ctx context.Context, rollNo string) (int, error) {
	return s.store.GetUserPoints(ctx, strings.TrimSpace(rollNo))
}

// Profile returns the session student's account and karma tier.
func (s *AccountService) Profile(ctx context.Context, sess *model.Session) (*Profile, error) {
	if err := requireStudent(sess); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	return &Profile{User: user, Tier: KarmaTier(user.Points)}, nil
}

// KarmaTier maps karma points to the badge shown to students.
func KarmaTier(points int) model.KarmaTier {
	return model.TierForPoints(points)
}

func (s *AccountService) verify(secret, hash string) bool {
	ok, err := auth.VerifySecret(secret, hash)
	return err == nil && ok
}

func (s *AccountService) startSession(ctx context.Context, sess *model.Session) (*LoginResult, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess.ID = auth.SessionKey(token)
	sess.CreatedAt = now

	if err := s.sessions.SetSession(ctx, sess.ID, sess, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.metrics.IncLogin(string(sess.Role), "success")

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(s.sessionTTL),
		Session:   sess,
	}, nil
}
