package auth

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
)

type plainSealer struct{}

func (plainSealer) Encrypt(plain []byte) ([]byte, error)  { return append([]byte("sealed:"), plain...), nil }
func (plainSealer) Decrypt(sealed []byte) ([]byte, error) { return sealed[len("sealed:"):], nil }

func TestMFAEnrollmentAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.Secrets = plainSealer{}
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.EnsureAdmin(ctx, "admin@company.com", "admin-password")
	require.NoError(t, err)
	session, err := svc.Login(ctx, "admin@company.com", "admin-password", "")
	require.NoError(t, err)
	require.False(t, session.User.MFAEnabled)
	caller := &access.Caller{UserID: session.User.ID, Email: session.User.Email, Role: access.RoleAdmin}

	setup, err := svc.SetupMFA(ctx, caller)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, setup.OTPAuthURL, "otpauth://totp/")

	var valid []string
	for _, offset := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		code, err := totp.GenerateCode(setup.Secret, now.Add(offset))
		require.NoError(t, err)
		valid = append(valid, code)
	}
	wrong := "000000"
	for _, candidate := range []string{"000000", "111111", "222222", "333333"} {
		if !slices.Contains(valid, candidate) {
			wrong = candidate
			break
		}
	}

	_, err = svc.EnableMFA(ctx, caller, wrong)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	user, err := svc.EnableMFA(ctx, caller, valid[1])
	require.NoError(t, err)
	require.True(t, user.MFAEnabled)

	_, err = svc.Login(ctx, "admin@company.com", "admin-password", "")
	require.ErrorIs(t, err, ErrMFARequired)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.SetupMFA(ctx, caller)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	_, err = svc.Login(ctx, "admin@company.com", "admin-password", "")
	require.ErrorIs(t, err, ErrMFARequired)

	_, err = svc.Login(ctx, "admin@company.com", "admin-password", wrong)
	require.ErrorIs(t, err, ErrMFAInvalid)

	session, err = svc.Login(ctx, "admin@company.com", "admin-password", valid[1])
	require.NoError(t, err)
	require.True(t, session.User.MFAEnabled)

	user, err = svc.DisableMFA(ctx, caller, valid[1])
	require.NoError(t, err)
	require.False(t, user.MFAEnabled)
	_, err = svc.Login(ctx, "admin@company.com", "admin-password", "")
	require.NoError(t, err)
}

func TestMFANeedsSealerAndSetup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	caller := &access.Caller{UserID: "u-1", Email: "a@company.com", Role: access.RoleAdmin}

	_, err := svc.SetupMFA(ctx, caller)
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	svc.Secrets = plainSealer{}
	_, err = svc.EnableMFA(ctx, caller, "123456")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.SetupMFA(ctx, nil)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
