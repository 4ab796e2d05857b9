package auth

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is the session token payload minted by the identity provider.
type IdentityClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// JWTVerifier checks session tokens. It never issues them.
type JWTVerifier struct {
	method    jwt.SigningMethod
	secretKey []byte
	publicKey *rsa.PublicKey
	issuer    string
}

func NewHS256Verifier(secretKey, issuer string) *JWTVerifier {
	return &JWTVerifier{method: jwt.SigningMethodHS256, secretKey: []byte(secretKey), issuer: issuer}
}

func NewRS256Verifier(publicKeyPEM []byte, issuer string) (*JWTVerifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa public key: %w", err)
	}
	return &JWTVerifier{method: jwt.SigningMethodRS256, publicKey: key, issuer: issuer}, nil
}

// NewVerifier builds a verifier for algorithm, reading the PEM key from
// publicKeyPath for RS256.
func NewVerifier(algorithm, secretKey, publicKeyPath, issuer string) (*JWTVerifier, error) {
	switch algorithm {
	case "HS256":
		return NewHS256Verifier(secretKey, issuer), nil
	case "RS256":
		pem, err := os.ReadFile(publicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		return NewRS256Verifier(pem, issuer)
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
}

func (j *JWTVerifier) key(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != j.method.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	if j.publicKey != nil {
		return j.publicKey, nil
	}
	return j.secretKey, nil
}

func (j *JWTVerifier) Verify(tokenStr string) (*models.IdentityClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	claims := &IdentityClaims{}
	if _, err := jwt.ParseWithClaims(tokenStr, claims, j.key, opts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, app_errors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", app_errors.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", app_errors.ErrUnauthorized)
	}

	return &models.IdentityClaims{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		Picture:    claims.Picture,
	}, nil
}
