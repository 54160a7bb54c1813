// Package identity owns accounts and the session tokens issued for them.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"devhub/internal/database"
	"devhub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	Issuer   = "devhub-api"
	Audience = "devhub-client"

	revokedKeyPrefix = "session:revoked:"
	defaultTTL       = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned by Verify for any token that must not be trusted.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the verified fields of a session token.
type Claims struct {
	AccountID uint
	TokenID   string
	ExpiresAt time.Time
}

// SessionUser is the account summary returned with a session.
type SessionUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// Session is an issued access token.
type Session struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        SessionUser `json:"user"`
}

// Provider is the authentication boundary used by the rest of the app.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*models.Account, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	DeleteAccount(ctx context.Context, id uint) error
	Verify(ctx context.Context, token string) (*Claims, error)
	Revoke(ctx context.Context, claims *Claims) error
	AccountEmail(ctx context.Context, id uint) (string, error)
}

// Options configures the local provider.
type Options struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
	Now        func() time.Time
}

type localProvider struct {
	db    *gorm.DB
	redis *redis.Client
	opts  Options
}

// NewProvider returns a Provider backed by the accounts table, bcrypt and
// HS256 tokens. rdb may be nil, in which case revocation is a no-op.
func NewProvider(db *gorm.DB, rdb *redis.Client, opts Options) Provider {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &localProvider{db: db, redis: rdb, opts: opts}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *localProvider) SignUp(ctx context.Context, email, password string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	account := &models.Account{
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
	}
	if err := p.db.WithContext(ctx).Create(account).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.NewConflictError("An account with this email already exists")
		}
		return nil, models.NewUpstreamError(err)
	}
	return account, nil
}

func (p *localProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var account models.Account
	err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&account).Error
	if database.IsNotFound(err) {
		return nil, models.NewUnauthenticatedError("Invalid email or password")
	}
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewUnauthenticatedError("Invalid email or password")
	}

	token, expiresAt, err := p.issue(account.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        SessionUser{ID: account.ID, Email: account.Email},
	}, nil
}

func (p *localProvider) DeleteAccount(ctx context.Context, id uint) error {
	if err := p.db.WithContext(ctx).Delete(&models.Account{}, id).Error; err != nil {
		return models.NewUpstreamError(err)
	}
	return nil
}

func (p *localProvider) AccountEmail(ctx context.Context, id uint) (string, error) {
	var account models.Account
	err := p.db.WithContext(ctx).Select("id", "email").First(&account, id).Error
	if database.IsNotFound(err) {
		return "", models.NewNotFoundError("Account", id)
	}
	if err != nil {
		return "", models.NewUpstreamError(err)
	}
	return account.Email, nil
}

func (p *localProvider) issue(accountID uint) (string, time.Time, error) {
	if p.opts.Secret == "" {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := p.opts.Now()
	expiresAt := now.Add(p.opts.TTL)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(accountID), 10),
		"iss": Issuer,
		"aud": Audience,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(p.opts.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, time.Unix(expiresAt.Unix(), 0), nil
}

// Verify checks signature, issuer, audience, expiry and revocation.
func (p *localProvider) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(p.opts.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.opts.Now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, err := mapClaims.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}
	accountID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || accountID == 0 {
		return nil, ErrInvalidToken
	}
	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	jti, _ := mapClaims["jti"].(string)

	claims := &Claims{
		AccountID: uint(accountID),
		TokenID:   jti,
		ExpiresAt: exp.Time,
	}

	if jti != "" && p.redis != nil {
		revoked, err := p.redis.Exists(ctx, revokedKeyPrefix+jti).Result()
		if err == nil && revoked > 0 {
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}

// Revoke blacklists the token id until the token would have expired anyway.
func (p *localProvider) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.TokenID == "" || p.redis == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(p.opts.Now())
	if ttl <= 0 {
		return nil
	}
	if err := p.redis.Set(ctx, revokedKeyPrefix+claims.TokenID, "1", ttl).Err(); err != nil {
		return models.NewUpstreamError(err)
	}
	return nil
}
