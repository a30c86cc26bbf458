package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mandi-backend/internal/models"
	"mandi-backend/internal/timeutil"
)

// Claims carry the tenancy scope every request runs under
type Claims struct {
	UserID    int    `json:"user_id"`
	CompanyID int    `json:"company_id"`
	YearID    int    `json:"year_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Scope returns the request scope the claims grant
func (c *Claims) Scope() models.Scope {
	return models.Scope{CompanyID: c.CompanyID, YearID: c.YearID, UserID: c.UserID}
}

type JWTManager struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

func NewJWTManager(secret, issuer string, expiration time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), issuer: issuer, expiration: expiration}
}

// GenerateToken signs a token for scope. Used by mandictl and tests; the
// login flow lives outside this service.
func (j *JWTManager) GenerateToken(scope models.Scope, role string) (string, error) {
	now := timeutil.Now()

	claims := &Claims{
		UserID:    scope.UserID,
		CompanyID: scope.CompanyID,
		YearID:    scope.YearID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateToken verifies a JWT token and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return j.secret, nil
	}, jwt.WithIssuer(j.issuer))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.CompanyID <= 0 || claims.YearID <= 0 {
		return nil, errors.New("token carries no company or year")
	}

	return claims, nil
}
