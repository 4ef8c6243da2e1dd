package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/boulevard/bicycles/internal/domain"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// UserStore defines the user data access interface consumed by AuthService and UserService.
type UserStore interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) (bool, error)
}

// AuthConfig holds token and hashing configuration.
type AuthConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	BcryptCost    int
}

// Claims is the JWT payload of access and refresh tokens.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	Type  string      `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair holds an access token and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Registration is the data needed to create an account.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles authentication logic.
type AuthService struct {
	users         UserStore
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	cost          int
	now           func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, cfg AuthConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:         users,
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		cost:          cost,
		now:           time.Now,
	}
}

// Register creates a customer account. A taken email fails with the store's
// duplicate key error.
func (s *AuthService) Register(ctx context.Context, r Registration) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:     strings.TrimSpace(r.Name),
		Email:    normalizeEmail(r.Email),
		Password: string(hash),
		Role:     domain.RoleCustomer,
		IsActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns the user with a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.activeUser(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, domain.Unauthorized("Invalid credentials!", "login")
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh validates a refresh token and returns a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.Unauthorized("You must login first!", "refresh_token")
	}

	claims, err := s.parse(refreshToken, s.refreshSecret, TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	user, err := s.activeUser(ctx, claims.Email)
	if err != nil {
		return "", err
	}

	return s.sign(user, TokenTypeAccess, s.accessSecret, s.accessTTL)
}

// ValidateToken validates a JWT access token and returns its principal.
func (s *AuthService) ValidateToken(tokenString string) (domain.Principal, error) {
	claims, err := s.parse(tokenString, s.accessSecret, TokenTypeAccess)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

// CurrentUser retrieves the account of the authenticated caller.
func (s *AuthService) CurrentUser(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.activeUser(ctx, p.Email)
}

func (s *AuthService) activeUser(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.BadRequest("AuthenticationError", "Please provide a valid email!", "invalid_email", email, "user")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound(fmt.Sprintf("No user found with email: %s!", email), email, "user")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive {
		return nil, domain.Forbidden(fmt.Sprintf("User with email %s is not active!", email), "user")
	}
	return user, nil
}

func (s *AuthService) parse(tokenString string, secret []byte, tokenType string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, domain.Unauthorized("Invalid or expired token!", "auth")
	}

	if claims.Type != tokenType {
		return nil, domain.Unauthorized("Invalid or expired token!", "auth")
	}
	return &claims, nil
}

func (s *AuthService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	access, err := s.sign(user, TokenTypeAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(user, TokenTypeRefresh, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sign(user *domain.User, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: user.Email,
		Role:  user.Role,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
