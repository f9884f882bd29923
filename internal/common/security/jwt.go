package security

import (
	"time"

	"quickhacker/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var (
	TokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
)

// Claims is the identity carried by an issued token. It never includes the password hash.
type Claims struct {
	ID        string
	Email     string
	Name      string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func InitJWT(key []byte, ttl time.Duration) {
	TokenAuth = jwtauth.New("HS256", key, nil)
	tokenTTL = ttl
}

func GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.DisplayName(),
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// VerifyToken returns nil when the token is malformed, expired, wrongly signed or lacks an id.
func VerifyToken(tokenString string) *Claims {
	if TokenAuth == nil || tokenString == "" {
		return nil
	}
	token, err := jwtauth.VerifyToken(TokenAuth, tokenString)
	if err != nil || token == nil {
		return nil
	}
	claims := ClaimsFromMap(token.PrivateClaims())
	if claims == nil {
		return nil
	}
	claims.IssuedAt = token.IssuedAt()
	claims.ExpiresAt = token.Expiration()
	return claims
}

// ClaimsFromMap reads the identity claims out of a decoded claim map.
func ClaimsFromMap(m map[string]interface{}) *Claims {
	id, _ := m["id"].(string)
	if id == "" {
		return nil
	}
	c := &Claims{ID: id}
	c.Email, _ = m["email"].(string)
	c.Name, _ = m["name"].(string)
	c.Role, _ = m["role"].(string)
	if t, ok := m["iat"].(time.Time); ok {
		c.IssuedAt = t
	}
	if t, ok := m["exp"].(time.Time); ok {
		c.ExpiresAt = t
	}
	return c
}
