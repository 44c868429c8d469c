package models

// JWTClaims are the ID token claims the verifier extracts after signature
// and issuer checks. Sub keys the user row; Email and Name feed profile
// provisioning and refresh.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Iss   string `json:"iss"`
	Aud   string `json:"aud"`
}
