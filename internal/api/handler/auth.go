package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/pkg/oauth"
	"github.com/agendahof/agendahof-server/internal/pkg/response"
	"github.com/agendahof/agendahof-server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	stateStore  *oauth.StateStore
}

func NewAuthHandler(authService *service.AuthService, stateStore *oauth.StateStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stateStore:  stateStore,
	}
}

// Register creates an account and starts its trial
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "registered, check your inbox for the verification code", resp)
}

// Login authenticates with email and password
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		case errors.Is(err, service.ErrEmailNotVerified):
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "login ok", resp)
}

// VerifyEmail confirms the signup code
// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.VerifyEmail(req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVerifyCode):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "email verified", resp)
}

// GoogleAuth redirects to the Google consent screen
// GET /api/v1/auth/google?redirect_uri=xxx
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	redirectURI := c.Query("redirect_uri")

	state, err := h.stateStore.GenerateState(c.Request.Context(), redirectURI)
	if err != nil {
		response.ServerError(c, "failed to start oauth flow")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.authService.GetGoogleAuthURL(state))
}

// GoogleCallback finishes the OAuth flow and signs the user in
// GET /api/v1/auth/google/callback?state=xxx&code=xxx
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "missing authorization code")
		return
	}

	redirectURI, err := h.stateStore.ValidateState(c.Request.Context(), state)
	if err != nil {
		response.AuthError(c, "invalid oauth state")
		return
	}

	resp, err := h.authService.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		response.ServerError(c, "oauth sign-in failed")
		return
	}

	// Mobile flows hand over a deep link, web flows get JSON
	if redirectURI != "" {
		c.Redirect(http.StatusTemporaryRedirect, redirectURI+"?token="+resp.Token)
		return
	}
	response.SuccessWithMessage(c, "login ok", resp)
}
