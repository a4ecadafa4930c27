package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when no admin matches the given email.
	ErrNotFound = errors.New("admin not found")
	// ErrEmailTaken is returned when signing up with an email already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed sign-in. It does not
	// distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned when a session token fails verification.
	ErrInvalidToken = errors.New("invalid session token")
)

// Admin is a dashboard operator account.
type Admin struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository defines persistence operations for admin accounts.
type Repository interface {
	Create(ctx context.Context, a *Admin) error
	GetByEmail(ctx context.Context, email string) (*Admin, error)
}

// Claims is the JWT payload carried by admin session tokens.
type Claims struct {
	AdminID int64  `json:"aid"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// Session is the verified identity extracted from a session token.
type Session struct {
	AdminID   int64
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Service implements admin sign-up, sign-in, and session verification.
// Sessions are stateless HS256 JWTs; sign-out is a client-side token drop.
type Service struct {
	admins Repository
	secret []byte
	ttl    time.Duration
}

// NewService creates an auth Service signing tokens with secret, valid for ttl.
func NewService(admins Repository, secret []byte, ttl time.Duration) *Service {
	return &Service{admins: admins, secret: secret, ttl: ttl}
}

// SignUp registers a new admin account with a bcrypt password hash.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	a := &Admin{
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
	}
	if err := s.admins.Create(ctx, a); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, errors.Wrap(err, "create admin")
	}
	return a, nil
}

// SignIn verifies the credentials and returns a signed session token together
// with the admin record.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *Admin, error) {
	a, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, errors.Wrap(err, "get admin")
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		AdminID: a.ID,
		Name:    a.Name,
		Email:   a.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(a.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, errors.Wrap(err, "sign token")
	}
	return token, a, nil
}

// Verify parses and validates a session token, rejecting any signing method
// other than HS256.
func (s *Service) Verify(token string) (*Session, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	sess := &Session{
		AdminID: claims.AdminID,
		Name:    claims.Name,
		Email:   claims.Email,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
