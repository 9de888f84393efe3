package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/config"
	"github.com/mamadbah2/butchershop/internal/repository/store"
)

// ErrInvalidCredentials is returned for a wrong username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Gate checks the shared staff credential and remembers a successful login as a stored flag.
// It is a convenience gate, not a security boundary.
type Gate struct {
	kv     store.KV
	creds  config.AuthConfig
	logger *zap.Logger
}

func NewGate(kv store.KV, creds config.AuthConfig, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{kv: kv, creds: creds, logger: logger}
}

func (g *Gate) Login(ctx context.Context, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.creds.Password)) == 1
	if !userOK || !passOK {
		g.logger.Warn("rejected staff login", zap.String("username", username))
		return ErrInvalidCredentials
	}
	if err := store.SaveJSON(ctx, g.kv, store.KeyAuthenticated, true); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	g.logger.Info("staff logged in", zap.String("username", username))
	return nil
}

func (g *Gate) Logout(ctx context.Context) error {
	if err := g.kv.Delete(ctx, store.KeyAuthenticated); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	var flag bool
	ok, err := store.LoadJSON(ctx, g.kv, store.KeyAuthenticated, &flag)
	if err != nil {
		g.logger.Warn("unreadable authentication flag", zap.Error(err))
		return false
	}
	return ok && flag
}

// Middleware rejects requests with 401 until a staff login has been recorded.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.IsAuthenticated(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}
