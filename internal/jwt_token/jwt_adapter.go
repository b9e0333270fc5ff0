package jwttoken

import (
	"lawclinic/internal/platform/middleware"
)

// JWTServiceAdapter narrows JWTService to the middleware's TokenValidator
// interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateAccessToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID:  claims.UserID,
		IsStaff: claims.IsStaff,
	}, nil
}
