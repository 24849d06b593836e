// Package auth signs users up, checks their credentials and issues the bearer
// tokens the HTTP API expects.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/model"
	"go.lepak.sg/metro-planner/store"
)

const (
	defaultTTL = 24 * time.Hour
	issuer     = "metro-planner"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid token")
)

var (
	usernameRe = regexp.MustCompile(`^\w+$`)
	specials   = "@$!%*?&"
)

func ValidateUsername(name string) error {
	if len(name) < 7 || len(name) > 15 {
		return data.ValidationError("username must be 7 to 15 characters long")
	}
	if !usernameRe.MatchString(name) {
		return data.ValidationError("username may only contain letters, numbers and underscores")
	}
	return nil
}

func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return data.ValidationError("password must be at least 8 characters long")
	}
	// bcrypt only takes the first 72 bytes
	if len(pw) > 72 {
		return data.ValidationError("password must be at most 72 bytes long")
	}

	var upper, lower, digit, special bool
	for _, c := range pw {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(specials, c):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return data.ValidationError("password needs an uppercase letter, a lowercase letter, a digit and one of " + specials)
	}
	return nil
}

func HashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

type Claims struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	store     store.Store
	secret    []byte
	ttl       time.Duration
	cost      int
	adminUser string
	adminHash string
	now       func() time.Time
}

type NewParam struct {
	Store  store.Store
	Secret []byte
	// Token lifetime, 24h if zero
	TTL time.Duration
	// bcrypt cost, bcrypt.DefaultCost if zero
	Cost int

	// The admin account lives in configuration, not in the store. No admin
	// can log in if AdminUser is empty.
	AdminUser     string
	AdminPassword string
}

func New(p NewParam) (*Service, error) {
	if len(p.Secret) == 0 {
		return nil, errors.New("auth: empty signing secret")
	}
	if p.TTL == 0 {
		p.TTL = defaultTTL
	}
	if p.Cost == 0 {
		p.Cost = bcrypt.DefaultCost
	}

	s := &Service{
		store:     p.Store,
		secret:    p.Secret,
		ttl:       p.TTL,
		cost:      p.Cost,
		adminUser: p.AdminUser,
		now:       time.Now,
	}
	if p.AdminUser != "" {
		h, err := HashPassword(p.AdminPassword, p.Cost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		s.adminHash = h
	}
	return s, nil
}

// Signup registers a commuter account.
func (s *Service) Signup(ctx context.Context, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return model.User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return model.User{}, err
	}
	if s.isAdmin(username) {
		return model.User{}, ErrUserExists
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{Username: username, PasswordHash: hash, CreatedAt: s.now().UTC()}

	err = s.store.CreateUser(ctx, u)
	if errors.Is(err, store.ErrExists) {
		return model.User{}, ErrUserExists
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and returns a signed token for them.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Claims, error) {
	username = strings.TrimSpace(username)

	if s.isAdmin(username) {
		if !CheckPassword(s.adminHash, password) {
			return "", nil, ErrInvalidCredentials
		}
		return s.issue(s.adminUser, true)
	}

	u, err := s.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	return s.issue(u.Username, false)
}

func (s *Service) issue(username string, admin bool) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Username: username,
		Admin:    admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Verify parses a token issued by this service.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *Service) isAdmin(username string) bool {
	return s.adminUser != "" && strings.EqualFold(username, s.adminUser)
}
