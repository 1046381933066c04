package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/platform/store"
)

const (
	mfaIssuer        = "HR Payroll"
	maxWriteAttempts = 8
)

var (
	ErrMFARequired = fmt.Errorf("%w: mfa code required", apperr.ErrUnauthenticated)
	ErrMFAInvalid  = fmt.Errorf("%w: invalid mfa code", apperr.ErrUnauthenticated)
)

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

type MFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

// SetupMFA issues a fresh TOTP secret for the caller. MFA stays off until
// EnableMFA confirms a code generated from it. Callers with MFA already on
// must disable it with a current code first.
func (s *Service) SetupMFA(ctx context.Context, caller *access.Caller) (MFASetup, error) {
	if caller == nil {
		return MFASetup{}, apperr.ErrUnauthenticated
	}
	if s.Secrets == nil {
		return MFASetup{}, fmt.Errorf("%w: mfa requires an encryption key", apperr.ErrInvalidState)
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: caller.Email,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return MFASetup{}, err
	}
	sealed, err := s.Secrets.Encrypt([]byte(key.Secret()))
	if err != nil {
		return MFASetup{}, err
	}
	if _, err := s.updateUser(ctx, caller.UserID, func(u *storedUser) error {
		if u.MFAEnabled {
			return fmt.Errorf("%w: disable mfa before setting it up again", apperr.ErrInvalidState)
		}
		u.MFASecret = sealed
		u.MFAEnabled = false
		return nil
	}); err != nil {
		return MFASetup{}, err
	}
	return MFASetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *Service) EnableMFA(ctx context.Context, caller *access.Caller, code string) (User, error) {
	return s.setMFA(ctx, caller, code, true)
}

func (s *Service) DisableMFA(ctx context.Context, caller *access.Caller, code string) (User, error) {
	return s.setMFA(ctx, caller, code, false)
}

func (s *Service) setMFA(ctx context.Context, caller *access.Caller, code string, enabled bool) (User, error) {
	if caller == nil {
		return User{}, apperr.ErrUnauthenticated
	}
	if s.Secrets == nil {
		return User{}, fmt.Errorf("%w: mfa requires an encryption key", apperr.ErrInvalidState)
	}
	user, err := s.updateUser(ctx, caller.UserID, func(u *storedUser) error {
		if len(u.MFASecret) == 0 {
			return fmt.Errorf("%w: mfa setup required", apperr.ErrInvalidState)
		}
		if err := s.checkMFA(*u, code); err != nil {
			return fmt.Errorf("%w: invalid mfa code", apperr.ErrInvalidInput)
		}
		u.MFAEnabled = enabled
		return nil
	})
	if err != nil {
		return User{}, err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, caller.UserID, audit.ActionUpdate, audit.EntityUser, user.ID, map[string]bool{"mfaEnabled": enabled}); err != nil {
			slog.Warn("audit user.mfa failed", "err", err)
		}
	}
	return user, nil
}

func (s *Service) checkMFA(user storedUser, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrMFARequired
	}
	if s.Secrets == nil || len(user.MFASecret) == 0 {
		return ErrMFAInvalid
	}
	secret, err := s.Secrets.Decrypt(user.MFASecret)
	if err != nil {
		slog.Warn("mfa secret decrypt failed", "userId", user.ID, "err", err)
		return ErrMFAInvalid
	}
	ok, err := totp.ValidateCustom(code, string(secret), s.now().UTC(), totpOpts)
	if err != nil || !ok {
		return ErrMFAInvalid
	}
	return nil
}

func (s *Service) updateUser(ctx context.Context, id string, mutate func(*storedUser) error) (User, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		user, version, err := store.Get[storedUser](ctx, s.store, store.Users, id)
		if errors.Is(err, store.ErrNotFound) {
			return User{}, fmt.Errorf("%w: user %s", apperr.ErrNotFound, id)
		}
		if err != nil {
			return User{}, err
		}
		if err := mutate(&user); err != nil {
			return User{}, err
		}
		_, err = store.SaveIfVersion(ctx, s.store, store.Users, id, user, version)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return User{}, err
		}
		return user.User, nil
	}
	return User{}, fmt.Errorf("user %s: %w", id, store.ErrVersionConflict)
}
