package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const LoginKey contextKey = "operator_login"

// CookieName is the session cookie the login handler sets.
const CookieName = "token"

// Middleware validates the session token and stores the operator login in
// the request context. The token may arrive as the session cookie or as a
// Bearer Authorization header.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing session token")
		}

		secretKey, err := jwtSecretFromEnv()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Server auth configuration error")
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secretKey, nil
		})

		if err != nil || !token.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token claims")
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token subject")
		}

		c.Set(string(LoginKey), sub)
		return next(c)
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	const prefix = "Bearer "
	header := c.Request().Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// GetLoginFromContext retrieves the operator login set by Middleware.
func GetLoginFromContext(c echo.Context) (string, error) {
	login, ok := c.Get(string(LoginKey)).(string)
	if !ok || login == "" {
		return "", errors.New("operator login not found in context")
	}
	return login, nil
}
