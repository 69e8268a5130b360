package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/safar/go-b2b-store/internal/models"
)

type Claims struct {
	PrincipalID string
	Kind        models.Kind
	JTI         uuid.UUID
	ExpiresAt   time.Time
}

type JWTManager struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

func NewJWTManager(secretKey string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: secretKey,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (j *JWTManager) GenerateToken(p *models.Principal) (string, error) {
	if j.secretKey == "" {
		return "", fmt.Errorf("JWT secret key is empty")
	}

	now := j.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"principal_id":   p.ID,
		"principal_kind": string(p.Kind),
		"jti":            uuid.NewString(),
		"exp":            now.Add(j.ttl).Unix(),
		"iat":            now.Unix(),
	})

	return token.SignedString([]byte(j.secretKey))
}

func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	principalID, ok := claims["principal_id"].(string)
	if !ok || principalID == "" {
		return nil, fmt.Errorf("invalid principal_id claim")
	}

	kind, ok := claims["principal_kind"].(string)
	if !ok || !models.Kind(kind).Valid() {
		return nil, fmt.Errorf("invalid principal_kind claim")
	}

	jtiStr, ok := claims["jti"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid jti claim")
	}

	jti, err := uuid.Parse(jtiStr)
	if err != nil {
		return nil, fmt.Errorf("invalid jti format")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("invalid exp claim")
	}

	return &Claims{
		PrincipalID: principalID,
		Kind:        models.Kind(kind),
		JTI:         jti,
		ExpiresAt:   exp.Time,
	}, nil
}
