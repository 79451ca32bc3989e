// Package session supplies the bearer token of the signed-in user.
package session

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultUser is the identity the backend falls back to without a token.
const DefaultUser = "default_user"

// TokenEnv is the environment variable EnvToken reads.
const TokenEnv = "SAKHI_TOKEN"

// TokenSource yields the current access token. An empty token means the
// request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}

// EnvToken reads the token from SAKHI_TOKEN on every call.
type EnvToken struct{}

// Token implements TokenSource.
func (EnvToken) Token(_ context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(TokenEnv)), nil
}

// FileToken reads the token from a file on every call, so a refreshed
// token is picked up without restarting.
type FileToken struct {
	Path string
}

// Token implements TokenSource.
func (f FileToken) Token(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Subject returns the user id carried in the token's sub claim. The
// signature is not checked; the backend does that. Tokens that are not
// JWTs map to DefaultUser.
func Subject(token string) string {
	if token == "" {
		return DefaultUser
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return DefaultUser
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return DefaultUser
	}
	return sub
}
