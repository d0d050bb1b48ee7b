package validators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
)

// Compile-time interface checks.
var (
	_ dispatch.SessionValidator = (*JWT)(nil)
	_ PrincipalResolver         = (*JWT)(nil)
)

var errMissingSecret = errors.New("validators: jwt secret is required")

// Claims is the JWT payload accepted by the JWT validator.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig configures a JWT validator.
type JWTConfig struct {
	Secret []byte
	Issuer string
	// RequiredRole, when set, must appear in the token's roles.
	RequiredRole string
	Leeway       time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// JWT verifies HS256 bearer tokens. Tokens must carry a subject, the
// configured issuer and an expiry.
type JWT struct {
	cfg    JWTConfig
	parser *jwt.Parser
}

// NewJWT returns a JWT validator.
func NewJWT(cfg JWTConfig) (*JWT, error) {
	if len(cfg.Secret) == 0 {
		return nil, errMissingSecret
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(cfg.Now),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &JWT{cfg: cfg, parser: jwt.NewParser(opts...)}, nil
}

// WithRole returns a copy of v that additionally requires role.
func (v *JWT) WithRole(role string) *JWT {
	cp := *v
	cp.cfg.RequiredRole = role
	return &cp
}

// Validate accepts the credentials if the bearer token verifies and carries
// the required role.
func (v *JWT) Validate(ctx context.Context, creds session.Credentials) error {
	p, err := v.Principal(ctx, creds)
	if err != nil {
		return err
	}
	if v.cfg.RequiredRole != "" && !p.HasRole(v.cfg.RequiredRole) {
		return fmt.Errorf("%w: role %q required", domain.ErrForbidden, v.cfg.RequiredRole)
	}
	return nil
}

// Principal verifies the bearer token and returns its subject and roles.
func (v *JWT) Principal(_ context.Context, creds session.Credentials) (session.Principal, error) {
	if creds.BearerToken == "" {
		return session.Principal{}, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
	}

	var claims Claims
	_, err := v.parser.ParseWithClaims(creds.BearerToken, &claims, func(*jwt.Token) (any, error) {
		return v.cfg.Secret, nil
	})
	if err != nil {
		return session.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, mapJWTError(err))
	}
	if claims.Subject == "" {
		return session.Principal{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	return session.Principal{Subject: claims.Subject, Roles: claims.Roles}, nil
}

// Issue signs a token for subject that expires after ttl.
func (v *JWT) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	now := v.cfg.Now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.New("token expired")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.New("invalid token signature")
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return errors.New("unexpected token issuer")
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return errors.New("token is missing a required claim")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errors.New("malformed token")
	default:
		return errors.New("invalid token")
	}
}
