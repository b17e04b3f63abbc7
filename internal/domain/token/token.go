// Package token decodes bearer-token claims without verifying signatures.
//
// Decoded claims are advisory: they drive routing and display decisions only.
// Authorization is enforced by the clinical backend on every request, so the
// gateway never treats these values as a trust boundary.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the payload fields the gateway cares about.
type Claims struct {
	Subject   string
	Role      string
	UserID    string
	PatientID string
}

// Decode parses the unsigned payload segment of a compact JWT string.
// The signature is deliberately not checked.
func Decode(tokenString string) (Claims, error) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrMalformedToken
	}

	return Claims{
		Subject:   stringClaim(mapClaims, "sub"),
		Role:      stringClaim(mapClaims, "role"),
		UserID:    stringClaim(mapClaims, "id"),
		PatientID: stringClaim(mapClaims, "patient_id"),
	}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
