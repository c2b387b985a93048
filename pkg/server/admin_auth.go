package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const TokenCookieName = "sl-admin"

type ContextValue string

var ContextRole = ContextValue("role")

// AdminAuth guards the write endpoints. A request passes with the api key in
// the Authorization header or with a token signed by Secret, as a bearer
// token or in the admin cookie. With neither configured every request passes.
type AdminAuth struct {
	ApiKey string
	Secret []byte
}

func (a *AdminAuth) enabled() bool {
	return a != nil && (a.ApiKey != "" || len(a.Secret) > 0)
}

func CreateAdminToken(secret []byte, username, role string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

func (a *AdminAuth) parseJwt(tokenString string) (jwt.MapClaims, error) {
	if len(a.Secret) == 0 {
		return nil, errors.New("token auth not configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (a *AdminAuth) role(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if a.ApiKey != "" && auth == a.ApiKey {
		return "api", true
	}
	tokenString, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		cookie, err := r.Cookie(TokenCookieName)
		if err != nil {
			return "", false
		}
		tokenString = cookie.Value
	}
	claims, err := a.parseJwt(tokenString)
	if err != nil {
		return "", false
	}
	role, _ := claims["role"].(string)
	return role, role == "admin"
}

func (a *AdminAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	if !a.enabled() {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		role, ok := a.role(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ContextRole, role)))
	}
}
