package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

// BotFrameworkIssuer is the issuer of tokens sent by the Bot Connector.
const BotFrameworkIssuer = "https://api.botframework.com"

var ErrUnauthorized = errors.New("unauthorized")

// ChannelClaims are the claims the Bot Connector puts in its bearer tokens.
type ChannelClaims struct {
	ServiceURL string `json:"serviceurl,omitempty"`
	jwt.RegisteredClaims
}

// ChannelValidator checks Bot Connector bearer tokens against the published
// signing keys.
type ChannelValidator struct {
	keyfunc jwt.Keyfunc
	appID   string
	parser  *jwt.Parser
	jwks    *keyfunc.JWKS
}

// NewChannelValidator downloads the signing keys from jwksURL and keeps them
// refreshed in the background until Close is called.
func NewChannelValidator(jwksURL, appID string) (*ChannelValidator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   24 * time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			GetLogger().Sugar().Warnf("failed to refresh bot signing keys: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bot signing keys: %w", err)
	}
	v := NewChannelValidatorWithKeyfunc(jwks.Keyfunc, appID)
	v.jwks = jwks
	return v, nil
}

// NewChannelValidatorWithKeyfunc builds a validator around an existing key lookup.
func NewChannelValidatorWithKeyfunc(kf jwt.Keyfunc, appID string) *ChannelValidator {
	return &ChannelValidator{
		keyfunc: kf,
		appID:   appID,
		parser:  jwt.NewParser(jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"})),
	}
}

// Validate parses an Authorization header value and checks signature, expiry,
// issuer and audience. A non-empty serviceURL must match the token's claim.
func (v *ChannelValidator) Validate(authHeader, serviceURL string) (*ChannelClaims, error) {
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || tokenString == "" {
		return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}

	claims := &ChannelClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyfunc)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !claims.VerifyIssuer(BotFrameworkIssuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrUnauthorized, claims.Issuer)
	}
	if !claims.VerifyAudience(v.appID, true) {
		return nil, fmt.Errorf("%w: token is not addressed to this bot", ErrUnauthorized)
	}
	if serviceURL != "" && !claims.AllowsServiceURL(serviceURL) {
		return nil, fmt.Errorf("%w: service url mismatch", ErrUnauthorized)
	}
	return claims, nil
}

// AllowsServiceURL reports whether replies may be sent to serviceURL. Tokens
// without a serviceurl claim allow any.
func (c *ChannelClaims) AllowsServiceURL(serviceURL string) bool {
	if c.ServiceURL == "" {
		return true
	}
	return strings.EqualFold(strings.TrimRight(c.ServiceURL, "/"), strings.TrimRight(serviceURL, "/"))
}

// Close stops the background key refresh.
func (v *ChannelValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
