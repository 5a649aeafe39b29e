package jwt

import (
	"errors"
	"net/url"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingShop  = errors.New("token has no shop destination")
)

// Service verifies Shopify session tokens (HS256, signed with the app secret).
type Service struct {
	secret []byte
	apiKey string
}

// Claims follows the Shopify session token payload. Dest is the shop URL.
type Claims struct {
	Dest string `json:"dest"`
	SID  string `json:"sid,omitempty"`
	jwtlib.RegisteredClaims
}

// Shop returns the shop domain taken from the dest claim.
func (c *Claims) Shop() string {
	return ShopFromDest(c.Dest)
}

func New(secret, apiKey string) *Service {
	return &Service{
		secret: []byte(secret),
		apiKey: apiKey,
	}
}

// GenerateToken mints a session token the way Shopify admin does. Used by
// tests and local tooling.
func (s *Service) GenerateToken(shop string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Dest: "https://" + shop,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "https://" + shop + "/admin",
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			NotBefore: jwtlib.NewNumericDate(now.Add(-time.Second)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	if s.apiKey != "" {
		claims.Audience = jwtlib.ClaimStrings{s.apiKey}
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithLeeway(5 * time.Second),
	}
	if s.apiKey != "" {
		opts = append(opts, jwtlib.WithAudience(s.apiKey))
	}

	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.Shop() == "" {
		return nil, ErrMissingShop
	}

	return claims, nil
}

// ShopFromDest accepts "https://shop.myshopify.com" or a bare host.
func ShopFromDest(dest string) string {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return ""
	}
	if !strings.Contains(dest, "://") {
		return strings.ToLower(strings.TrimRight(dest, "/"))
	}
	u, err := url.Parse(dest)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
