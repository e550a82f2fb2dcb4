package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

const tokenIssuer = "skillsync"

// TokenClaims is what the rest of the app sees after verification: enough to
// key ownership checks and plan-gate provider access without a user lookup.
type TokenClaims struct {
	UserID int64           `json:"user_id"`
	Plan   models.UserPlan `json:"plan"`
	Email  string          `json:"email"`
}

type JWTService interface {
	Issue(user *models.User) (string, error)
	Verify(raw string) (*TokenClaims, error)
}

type jwtService struct {
	secret   []byte
	duration time.Duration
}

func NewJWTService(secret string, duration time.Duration) JWTService {
	return &jwtService{
		secret:   []byte(secret),
		duration: duration,
	}
}

// accessClaims carries the plan and email as private claims; the user ID
// rides in the registered subject.
type accessClaims struct {
	Plan  models.UserPlan `json:"plan"`
	Email string          `json:"email"`
	jwt.RegisteredClaims
}

func (j *jwtService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Plan:  user.Plan,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.duration)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func (j *jwtService) Verify(raw string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &accessClaims{},
		func(token *jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", err)
	}

	plan := claims.Plan
	if plan == "" {
		plan = models.PlanFree
	}

	return &TokenClaims{
		UserID: userID,
		Plan:   plan,
		Email:  claims.Email,
	}, nil
}
