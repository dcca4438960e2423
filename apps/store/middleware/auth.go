package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-grocery/apps/store/model"
	"go-grocery/pkg/jwt"
	"go-grocery/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	ctxUserID   = "userId"
	ctxUsername = "username"
)

// UserLookup resolves an active account; *repository.UserRepository fits.
type UserLookup interface {
	FindActive(ctx context.Context, id uint) (*model.User, error)
}

// AuthMiddleware requires "Authorization: Bearer <token>" (or the older
// "Token <token>") naming an active user.
func AuthMiddleware(tokens *jwt.Manager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 获取 Header 里的 Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		// 2. 格式 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "Invalid authorization header.")
			return
		}

		// 3. 解析 Token
		claims, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid token.")
			return
		}

		// 4. 账号必须存在且未停用
		user, err := users.FindActive(c.Request.Context(), uint(claims.UserId))
		if err != nil {
			log.Ctx(c.Request.Context()).Debug().Err(err).Int64("user_id", claims.UserId).Msg("token user rejected")
			response.Abort(c, http.StatusUnauthorized, "User inactive or deleted.")
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxUsername, user.Username)

		l := log.Ctx(c.Request.Context()).With().Uint("user_id", user.ID).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()
	}
}

// CurrentUserID returns the id AuthMiddleware stored for this request.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id > 0
}
