package security

import (
	"net/http"
	"strings"

	"github.com/Ksaikiran28/NexChat/tools/errs"
	jwtlib "github.com/Ksaikiran28/NexChat/tools/security"

	"github.com/gin-gonic/gin"
)

// Context keys; downstream handlers read the caller identity through these.
const (
	CtxUserIDKey = "userID"
	CtxTokenKey  = "authToken"
)

type Options struct {
	JWT jwtlib.Options

	HeaderToken               string // default "token"
	EnableAuthorizationBearer bool   // accept "Authorization: Bearer xxx", default true
	AllowQueryToken           bool   // accept ?token= (websocket handshake), default false
}

func DefaultOptions(jwt jwtlib.Options) *Options {
	return &Options{
		JWT:                       jwt,
		HeaderToken:               "token",
		EnableAuthorizationBearer: true,
	}
}

// Middleware resolves the request token to a user id or aborts with 401.
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, opts)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errs.ErrTokenInvalid.Msg})
			return
		}

		userID, err := jwtlib.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errs.ErrTokenExpired.Msg})
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Set(CtxTokenKey, token)
		c.Next()
	}
}

// ExtractToken pulls the token from header, bearer header or query string.
func ExtractToken(c *gin.Context, opts *Options) string {
	token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))
	if token == "" && opts.EnableAuthorizationBearer {
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			}
		}
	}
	if token == "" && opts.AllowQueryToken {
		token = strings.TrimSpace(c.Query("token"))
	}
	return token
}

// UserID reads the authenticated caller set by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
