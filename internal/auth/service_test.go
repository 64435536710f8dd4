package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/auth"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/internal/testutil"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	sent   []string
	tokens []string
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, email)
	n.tokens = append(n.tokens, token)
	return n.err
}

func (n *fakeNotifier) lastToken() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[len(n.tokens)-1]
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type authFixture struct {
	svc      *auth.Service
	db       *gorm.DB
	jwt      *auth.JWTService
	notifier *fakeNotifier
	clock    *clock
	profile  *models.Profile
	user     *models.User
}

func setupAuth(t *testing.T, admin bool) *authFixture {
	db := testutil.SetupTestDB(t)
	jwtService := testutil.CreateTestJWTService()
	notifier := &fakeNotifier{}
	c := &clock{now: time.Now()}

	svc := auth.NewService(store.New(db), testutil.TestHasher(), jwtService, notifier, testutil.DiscardLogger(),
		auth.WithClock(c.Now),
		auth.WithResetTTL(10*time.Minute),
	)

	profile := testutil.CreateTestProfile(t, db, admin)
	user := testutil.CreateTestUser(t, db, profile)

	return &authFixture{svc: svc, db: db, jwt: jwtService, notifier: notifier, clock: c, profile: profile, user: user}
}

func TestService_Login(t *testing.T) {
	for _, admin := range []bool{true, false} {
		f := setupAuth(t, admin)
		ctx := testutil.TestContext(t)

		resp, err := f.svc.Login(ctx, auth.LoginInput{Username: f.user.Username, Password: "testpassword123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, f.user.ID, resp.UserInfo.ID)
		assert.Equal(t, f.profile.Name, resp.UserInfo.Profile)
		assert.Equal(t, admin, resp.UserInfo.IsAdmin)

		claims, err := f.jwt.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, admin, claims.IsAdmin)
		assert.Equal(t, f.user.Username, claims.Username)
		assert.Equal(t, f.profile.Name, claims.Profile)
	}

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		f := setupAuth(t, false)
		_, err := f.svc.Login(testutil.TestContext(t), auth.LoginInput{Username: f.user.Username, Password: "nope"})
		assert.Equal(t, auth.ErrInvalidCredentials, err)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("unknown username is not found", func(t *testing.T) {
		f := setupAuth(t, false)
		_, err := f.svc.Login(testutil.TestContext(t), auth.LoginInput{Username: "ghost", Password: "x"})
		assert.Equal(t, auth.ErrUserNotFound, err)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestService_Register(t *testing.T) {
	f := setupAuth(t, false)
	ctx := testutil.TestContext(t)

	valid := auth.RegisterInput{
		Name:         "Jane",
		Username:     "jane",
		Email:        "jane@example.com",
		Registration: "123456",
		ProfileID:    f.profile.ID,
	}

	t.Run("creates user with registration as password", func(t *testing.T) {
		user, err := f.svc.Register(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, f.profile.Name, user.Profile.Name)

		resp, err := f.svc.Login(ctx, auth.LoginInput{Username: "jane", Password: "123456"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.UserInfo.ID)
	})

	tests := []struct {
		name   string
		mutate func(in *auth.RegisterInput)
		want   error
	}{
		{"short registration", func(in *auth.RegisterInput) { in.Registration = "123" }, auth.ErrInvalidRegistration},
		{"long registration", func(in *auth.RegisterInput) { in.Registration = "1234567" }, auth.ErrInvalidRegistration},
		{"five characters in seven bytes", func(in *auth.RegisterInput) { in.Registration = "ÉÉ123" }, auth.ErrInvalidRegistration},
		{"username taken", func(in *auth.RegisterInput) { in.Email = "x@example.com"; in.Registration = "999999" }, auth.ErrUsernameTaken},
		{"email taken", func(in *auth.RegisterInput) { in.Username = "other"; in.Registration = "999999" }, auth.ErrEmailTaken},
		{"registration taken", func(in *auth.RegisterInput) { in.Username = "other"; in.Email = "x@example.com" }, auth.ErrRegistrationTaken},
		{"missing profile", func(in *auth.RegisterInput) {
			in.Username, in.Email, in.Registration, in.ProfileID = "other", "x@example.com", "999999", uuid.New()
		}, auth.ErrProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.svc.Register(ctx, in)
			assert.Equal(t, tt.want, err)
		})
	}

	t.Run("registration length counts characters", func(t *testing.T) {
		in := valid
		in.Username, in.Email, in.Registration = "jose", "jose@example.com", "JOSÉ01"

		user, err := f.svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "JOSÉ01", user.Registration)

		_, err = f.svc.UpdateUser(ctx, user.ID, auth.UpdateUserInput{
			Name: "Jose", Username: "jose", Email: "jose@example.com", Registration: "ÑANDÚ1", ProfileID: f.profile.ID,
		})
		assert.NoError(t, err)
	})
}

func TestService_PasswordReset(t *testing.T) {
	t.Run("unknown email is not found", func(t *testing.T) {
		f := setupAuth(t, false)
		err := f.svc.RequestPasswordReset(testutil.TestContext(t), "ghost@example.com")
		assert.Equal(t, auth.ErrEmailNotFound, err)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("token is 32 hex characters and valid immediately", func(t *testing.T) {
		f := setupAuth(t, false)
		ctx := testutil.TestContext(t)

		require.NoError(t, f.svc.RequestPasswordReset(ctx, f.user.Email))
		token := f.notifier.lastToken()
		assert.Regexp(t, `^[0-9a-f]{32}$`, token)

		reset, err := f.svc.ValidateResetToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, f.user.Email, reset.Email)
		assert.WithinDuration(t, f.clock.now.Add(auth.DefaultResetTokenTTL), reset.ExpirationDate, time.Second)
	})

	t.Run("token expires after ten minutes", func(t *testing.T) {
		f := setupAuth(t, false)
		ctx := testutil.TestContext(t)

		require.NoError(t, f.svc.RequestPasswordReset(ctx, f.user.Email))
		token := f.notifier.lastToken()

		f.clock.now = f.clock.now.Add(11 * time.Minute)
		_, err := f.svc.ValidateResetToken(ctx, token)
		assert.Equal(t, auth.ErrInvalidResetToken, err)
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	})

	t.Run("unknown token is a bad request", func(t *testing.T) {
		f := setupAuth(t, false)
		_, err := f.svc.ValidateResetToken(testutil.TestContext(t), "deadbeef")
		assert.Equal(t, auth.ErrInvalidResetToken, err)
	})

	t.Run("a second request replaces the first token", func(t *testing.T) {
		f := setupAuth(t, false)
		ctx := testutil.TestContext(t)

		require.NoError(t, f.svc.RequestPasswordReset(ctx, f.user.Email))
		first := f.notifier.lastToken()
		require.NoError(t, f.svc.RequestPasswordReset(ctx, f.user.Email))

		_, err := f.svc.ValidateResetToken(ctx, first)
		assert.Equal(t, auth.ErrInvalidResetToken, err)
		assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &models.PasswordReset{}))
	})

	t.Run("notification failure is internal but keeps the token", func(t *testing.T) {
		f := setupAuth(t, false)
		ctx := testutil.TestContext(t)
		f.notifier.err = errors.New("smtp down")

		err := f.svc.RequestPasswordReset(ctx, f.user.Email)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindInternal))
		assert.ErrorIs(t, err, auth.ErrResetDeliveryFailure)

		_, err = f.svc.ValidateResetToken(ctx, f.notifier.lastToken())
		assert.NoError(t, err)
	})

	t.Run("reset changes the password and consumes the token", func(t *testing.T) {
		f := setupAuth(t, false)
		ctx := testutil.TestContext(t)

		require.NoError(t, f.svc.RequestPasswordReset(ctx, f.user.Email))
		token := f.notifier.lastToken()

		require.NoError(t, f.svc.ResetPassword(ctx, token, "brand-new-pass"))

		_, err := f.svc.Login(ctx, auth.LoginInput{Username: f.user.Username, Password: "testpassword123"})
		assert.Equal(t, auth.ErrInvalidCredentials, err)
		_, err = f.svc.Login(ctx, auth.LoginInput{Username: f.user.Username, Password: "brand-new-pass"})
		assert.NoError(t, err)

		err = f.svc.ResetPassword(ctx, token, "another-pass")
		assert.Equal(t, auth.ErrInvalidResetToken, err)
	})

	t.Run("expired token cannot reset", func(t *testing.T) {
		f := setupAuth(t, false)
		ctx := testutil.TestContext(t)

		require.NoError(t, f.svc.RequestPasswordReset(ctx, f.user.Email))
		f.clock.now = f.clock.now.Add(11 * time.Minute)

		err := f.svc.ResetPassword(ctx, f.notifier.lastToken(), "brand-new-pass")
		assert.Equal(t, auth.ErrInvalidResetToken, err)
	})
}

func TestService_UserAdmin(t *testing.T) {
	f := setupAuth(t, false)
	ctx := testutil.TestContext(t)
	other := testutil.CreateTestUser(t, f.db, f.profile)

	update := func(mutate func(in *auth.UpdateUserInput)) error {
		in := auth.UpdateUserInput{
			Name:         f.user.Name,
			Username:     f.user.Username,
			Email:        f.user.Email,
			Registration: f.user.Registration,
			ProfileID:    f.profile.ID,
		}
		mutate(&in)
		_, err := f.svc.UpdateUser(ctx, f.user.ID, in)
		return err
	}

	t.Run("keeping own values succeeds", func(t *testing.T) {
		assert.NoError(t, update(func(in *auth.UpdateUserInput) { in.Name = "Renamed" }))
		user, err := f.svc.GetUserByID(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", user.Name)
	})

	t.Run("conflicts name the colliding field", func(t *testing.T) {
		assert.Equal(t, auth.ErrRegistrationBelongsToOther, update(func(in *auth.UpdateUserInput) {
			in.Registration = other.Registration
			in.Username = other.Username
		}))
		assert.Equal(t, auth.ErrUsernameBelongsToOther, update(func(in *auth.UpdateUserInput) { in.Username = other.Username }))
		assert.Equal(t, auth.ErrEmailBelongsToOther, update(func(in *auth.UpdateUserInput) { in.Email = other.Email }))
	})

	t.Run("unknown profile", func(t *testing.T) {
		assert.Equal(t, auth.ErrProfileNotFound, update(func(in *auth.UpdateUserInput) { in.ProfileID = uuid.New() }))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, uuid.New(), auth.UpdateUserInput{Registration: "123456"})
		assert.Equal(t, auth.ErrUserNotFound, err)
		assert.Equal(t, auth.ErrUserNotFound, f.svc.DeleteUser(ctx, uuid.New()))
	})

	t.Run("list and delete", func(t *testing.T) {
		users, err := f.svc.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)

		require.NoError(t, f.svc.DeleteUser(ctx, other.ID))
		_, err = f.svc.GetUserByID(ctx, other.ID)
		assert.Equal(t, auth.ErrUserNotFound, err)
	})
}
