package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"expoadmin/api/response"
	"expoadmin/config"
	"expoadmin/domain/shared"
	"expoadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Controller 管理员登录
type Controller struct {
	tokens       *TokenService
	username     string
	passwordHash []byte
}

func NewController(cfg config.AuthConfig, tokens *TokenService) *Controller {
	return &Controller{
		tokens:       tokens,
		username:     cfg.AdminUsername,
		passwordHash: []byte(cfg.AdminPasswordHash),
	}
}

func (ctrl *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/login", ctrl.Login)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (ctrl *Controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.HandleError(c, err, "username and password are required", http.StatusBadRequest)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(ctrl.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(ctrl.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil || len(ctrl.passwordHash) == 0 {
		logger.Warn("Login failed",
			zap.String("request_id", response.GetRequestID(c)),
			zap.String("username", req.Username),
			zap.String("client_ip", c.ClientIP()))
		response.HandleAppError(c, shared.NewUnauthorizedError("invalid username or password"))
		return
	}

	token, expires, err := ctrl.tokens.Issue(ctrl.username)
	if err != nil {
		response.HandleAppError(c, err)
		return
	}
	response.HandleSuccess(c, LoginResponse{Token: token, ExpiresAt: expires}, "login successful")
}
