// Package auth owns user accounts and the session tokens that identify them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/platform/store"
)

const minPasswordLength = 8

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	EmployeeID string    `json:"employeeId,omitempty"`
	MFAEnabled bool      `json:"mfaEnabled"`
	CreatedAt  time.Time `json:"createdAt"`
}

type storedUser struct {
	User
	PasswordHash string `json:"passwordHash"`
	MFASecret    []byte `json:"mfaSecret,omitempty"`
}

type emailIndex struct {
	UserID string `json:"userId"`
}

type CreateUserInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Sealer protects MFA secrets at rest.
type Sealer interface {
	Encrypt(plain []byte) ([]byte, error)
	Decrypt(sealed []byte) ([]byte, error)
}

type Service struct {
	store  store.Store
	audit  audit.Recorder
	secret string
	ttl    time.Duration
	now    func() time.Time

	// Secrets must be set before MFA can be enrolled.
	Secrets Sealer
}

func NewService(st store.Store, rec audit.Recorder, secret string, ttl time.Duration) *Service {
	return &Service{store: st, audit: rec, secret: secret, ttl: ttl, now: time.Now}
}

// Login returns a signed session token. Unknown emails and wrong passwords
// fail the same way. Users with MFA enabled must also pass a current code.
func (s *Service) Login(ctx context.Context, email, password, mfaCode string) (Session, error) {
	user, err := s.userByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthenticated)
	}
	if err != nil {
		return Session{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return Session{}, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthenticated)
	}
	if user.MFAEnabled {
		if err := s.checkMFA(user, mfaCode); err != nil {
			return Session{}, err
		}
	}

	now := s.now()
	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, Role: user.Role, EmployeeID: user.EmployeeID}, now, s.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: now.Add(s.ttl).UTC(), User: user.User}, nil
}

// Resolve turns a session token into the caller it identifies. The role and
// employee link come from the stored user, not the token.
func (s *Service) Resolve(ctx context.Context, token string) (*access.Caller, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperr.ErrUnauthenticated
	}
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	user, _, err := store.Get[storedUser](ctx, s.store, store.Users, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", apperr.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	return &access.Caller{UserID: user.ID, Email: user.Email, Role: user.Role, EmployeeID: user.EmployeeID}, nil
}

func (s *Service) CreateUser(ctx context.Context, caller *access.Caller, input CreateUserInput) (User, error) {
	if err := access.Authorize(caller, access.PermUsersManage); err != nil {
		return User{}, err
	}
	user, err := s.createUser(ctx, input)
	if err != nil {
		return User{}, err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, caller.UserID, audit.ActionCreate, audit.EntityUser, user.ID, user); err != nil {
			slog.Warn("audit user.create failed", "err", err)
		}
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, caller *access.Caller) ([]User, error) {
	if err := access.Authorize(caller, access.PermUsersManage); err != nil {
		return nil, err
	}
	stored, err := store.All[storedUser](ctx, s.store, store.Users)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(stored))
	for _, u := range stored {
		out = append(out, u.User)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// EnsureAdmin creates an admin account for email unless the email is taken.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	return s.EnsureUser(ctx, CreateUserInput{Email: email, Password: password, Role: access.RoleAdmin})
}

// EnsureUser creates the account unless its email is already registered.
// It is meant for startup seeding and skips the permission check.
func (s *Service) EnsureUser(ctx context.Context, input CreateUserInput) (bool, error) {
	_, err := s.userByEmail(ctx, input.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if _, err := s.createUser(ctx, input); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) createUser(ctx context.Context, input CreateUserInput) (User, error) {
	email := normalizeEmail(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, fmt.Errorf("%w: email is invalid", apperr.ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", apperr.ErrInvalidInput, minPasswordLength)
	}
	role := strings.TrimSpace(input.Role)
	if !access.ValidRole(role) {
		return User{}, fmt.Errorf("%w: role must be %s or %s", apperr.ErrInvalidInput, access.RoleAdmin, access.RoleEmployee)
	}
	employeeID := strings.TrimSpace(input.EmployeeID)
	if role == access.RoleEmployee && employeeID == "" {
		return User{}, fmt.Errorf("%w: employeeId is required for employee users", apperr.ErrInvalidInput)
	}
	if employeeID != "" {
		if _, _, err := core.LoadEmployee(ctx, s.store, employeeID); err != nil {
			return User{}, err
		}
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}

	user := storedUser{
		User: User{
			ID:         uuid.NewString(),
			Email:      email,
			Role:       role,
			EmployeeID: employeeID,
			CreatedAt:  s.now().UTC(),
		},
		PasswordHash: hash,
	}
	if _, err := store.SaveIfVersion(ctx, s.store, store.UserEmails, email, emailIndex{UserID: user.ID}, 0); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return User{}, fmt.Errorf("%w: email %s is already registered", apperr.ErrInvalidInput, email)
		}
		return User{}, err
	}
	if _, err := store.SaveIfVersion(ctx, s.store, store.Users, user.ID, user, 0); err != nil {
		if delErr := s.store.Delete(ctx, store.UserEmails, email); delErr != nil {
			slog.Warn("user email index cleanup failed", "email", email, "err", delErr)
		}
		return User{}, err
	}
	return user.User, nil
}

func (s *Service) userByEmail(ctx context.Context, email string) (storedUser, error) {
	ref, _, err := store.Get[emailIndex](ctx, s.store, store.UserEmails, normalizeEmail(email))
	if err != nil {
		return storedUser{}, err
	}
	user, _, err := store.Get[storedUser](ctx, s.store, store.Users, ref.UserID)
	return user, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
