package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type adminRepoStub struct {
	byEmail map[string]*Admin
	nextID  int64
}

func newAdminRepoStub() *adminRepoStub {
	return &adminRepoStub{byEmail: make(map[string]*Admin), nextID: 1}
}

func (s *adminRepoStub) Create(_ context.Context, a *Admin) error {
	if _, ok := s.byEmail[a.Email]; ok {
		return ErrEmailTaken
	}
	a.ID = s.nextID
	s.nextID++
	s.byEmail[a.Email] = a
	return nil
}

func (s *adminRepoStub) GetByEmail(_ context.Context, email string) (*Admin, error) {
	a, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func newTestService() (*Service, *adminRepoStub) {
	repo := newAdminRepoStub()
	return NewService(repo, []byte("test-secret"), time.Hour), repo
}

func TestSignUpHashesPassword(t *testing.T) {
	svc, repo := newTestService()

	a, err := svc.SignUp(context.Background(), "Store Admin", "Admin@Example.com ", "correct horse")
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Equal(t, "admin@example.com", a.Email, "email is normalized")
	assert.NotEqual(t, "correct horse", a.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("correct horse")))

	_, err = svc.SignUp(context.Background(), "Other", "admin@example.com", "different pass")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Len(t, repo.byEmail, 1)
}

func TestSignInRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "Store Admin", "admin@example.com", "correct horse")
	require.NoError(t, err)

	token, admin, err := svc.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "Store Admin", admin.Name)

	sess, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, sess.AdminID)
	assert.Equal(t, "admin@example.com", sess.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)
}

func TestSignInBadCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "Store Admin", "admin@example.com", "correct horse")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email yields the same error as a wrong password.
	_, _, err = svc.SignIn(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsForgedTokens(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Signed with a different secret.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{AdminID: 1}).
		SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Unsigned token.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{AdminID: 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	repo := newAdminRepoStub()
	svc := NewService(repo, []byte("test-secret"), -time.Minute)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "Store Admin", "admin@example.com", "correct horse")
	require.NoError(t, err)

	token, _, err := svc.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
