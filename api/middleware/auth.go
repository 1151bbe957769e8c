package middleware

import (
	"strings"

	"expoadmin/api/response"
	"expoadmin/domain/shared"

	"github.com/gin-gonic/gin"
)

// SubjectKey gin context 中保存已认证用户名的键
const SubjectKey = "subject"

// TokenVerifier 校验 bearer token，返回 subject
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// JWTAuth 要求 Authorization: Bearer <token>
func JWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.HandleAppError(c, shared.NewUnauthorizedError("missing bearer token"))
			return
		}

		subject, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			response.HandleAppError(c, err)
			return
		}

		c.Set(SubjectKey, subject)
		c.Next()
	}
}
