package jwt

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"clipstream.com/config"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/utils"
)

const IdentityKey = "user_id"

var authMiddleware *jwt.HertzJWTMiddleware

// Authenticator validates login credentials and returns the user id.
type Authenticator func(ctx context.Context, c *app.RequestContext) (int64, error)

// Init builds the shared JWT middleware. The authenticate callback is
// supplied by the user service so this package stays free of storage deps.
func Init(authenticate Authenticator) error {
	var err error
	authMiddleware, err = jwt.New(&jwt.HertzJWTMiddleware{
		Realm:         "clipstream",
		Key:           []byte(config.ConfigInfo.Jwt.Secret),
		Timeout:       config.ConfigInfo.Jwt.Expire,
		MaxRefresh:    config.ConfigInfo.Jwt.Expire,
		IdentityKey:   IdentityKey,
		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
		PayloadFunc: func(data interface{}) jwt.MapClaims {
			if userID, ok := data.(int64); ok {
				return jwt.MapClaims{IdentityKey: userID}
			}
			return jwt.MapClaims{}
		},
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			return utils.Transfer(claims[IdentityKey])
		},
		Authenticator: func(ctx context.Context, c *app.RequestContext) (interface{}, error) {
			userID, err := authenticate(ctx, c)
			if err != nil {
				return nil, err
			}
			return userID, nil
		},
		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, map[string]interface{}{
				"code":    errno.AuthorizationFailedCode,
				"message": message,
			})
		},
		LoginResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			c.JSON(code, map[string]interface{}{
				"code":   errno.SuccessCode,
				"token":  token,
				"expire": expire.Format(time.RFC3339),
			})
		},
	})
	return err
}

// MiddlewareFunc guards routes that need a verified identity.
func MiddlewareFunc() app.HandlerFunc {
	return authMiddleware.MiddlewareFunc()
}

// LoginHandler serves POST /auth/login.
func LoginHandler() app.HandlerFunc {
	return authMiddleware.LoginHandler
}

// TokenGenerator mints a token outside the login flow (registration).
func TokenGenerator(userID int64) (string, time.Time, error) {
	return authMiddleware.TokenGenerator(userID)
}

// GetUserID extracts the verified identity attached by the middleware.
func GetUserID(ctx context.Context, c *app.RequestContext) (int64, error) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return 0, errno.AuthorizationFailedErr
	}
	userID := utils.Transfer(v)
	if userID <= 0 {
		return 0, errno.AuthorizationFailedErr
	}
	return userID, nil
}

// ParseUserID validates a raw token string. Used by the websocket gateway,
// where the token arrives in the first frame instead of a header.
func ParseUserID(token string) (int64, error) {
	parsed, err := authMiddleware.ParseTokenString(token)
	if err != nil {
		return 0, errno.AuthorizationFailedErr
	}
	claims := jwt.ExtractClaimsFromToken(parsed)
	userID := utils.Transfer(claims[IdentityKey])
	if userID <= 0 {
		return 0, errno.AuthorizationFailedErr
	}
	return userID, nil
}
