package export

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"licensedesk/internal/service"
)

const (
	TokenHeader = "X-Export-Token"
	Issuer      = "licensedesk"
)

// Manifest describes one export: how many rows it holds, the digest of the
// CSV body and the filters that selected it.
type Manifest struct {
	Rows    int               `json:"rows"`
	SHA256  string            `json:"sha256"`
	Filters map[string]string `json:"filters"`
	jwt.RegisteredClaims
}

// Digest is the hex SHA-256 of body.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// SignManifest issues an EdDSA token over the manifest for body.
func SignManifest(privateKeyBase64 string, body []byte, rows int, filters map[string]string, issuedAt time.Time) (string, error) {
	privateKey, err := service.DecodePrivateKey(privateKeyBase64)
	if err != nil {
		return "", err
	}

	claims := Manifest{
		Rows:    rows,
		SHA256:  Digest(body),
		Filters: filters,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   Issuer,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// VerifyManifest checks the token signature and that body is the exported
// document it describes.
func VerifyManifest(publicKeyBase64, tokenString string, body []byte) (*Manifest, error) {
	publicKey, err := service.DecodePublicKey(publicKeyBase64)
	if err != nil {
		return nil, err
	}

	var claims Manifest
	_, err = jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ed25519.PublicKey(publicKey), nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if digest := Digest(body); digest != claims.SHA256 {
		return &claims, fmt.Errorf("body digest %s does not match manifest %s", digest, claims.SHA256)
	}
	return &claims, nil
}
