package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/auth/Oauth"
	"github.com/basit/fileshare-catalog/auth/middleware"
	"github.com/basit/fileshare-catalog/logging"
)

type AuthHandler struct {
	auth   *auth.Service
	secure bool
	logger logging.Logger
}

func NewAuthHandler(svc *auth.Service, secureCookies bool, logger logging.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, secure: secureCookies, logger: logger}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) respondTokens(c *gin.Context, status int, message string, tokens *auth.Tokens) {
	Oauth.SetRefreshCookie(c, tokens.RefreshToken, int(h.auth.RefreshTTL().Seconds()), h.secure)
	c.JSON(status, gin.H{
		"message":      message,
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
		"user":         tokens.User,
	})
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	tokens, err := h.auth.SignUp(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	h.respondTokens(c, http.StatusCreated, "Account created", tokens)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	tokens, err := h.auth.SignIn(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		respondError(c, err, "Failed to sign in")
		return
	}
	h.respondTokens(c, http.StatusOK, "Signed in", tokens)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(Oauth.RefreshCookie)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please sign in again"})
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		Oauth.SetRefreshCookie(c, "", -1, h.secure)
		respondError(c, err, "Failed to refresh session")
		return
	}
	h.respondTokens(c, http.StatusOK, "Session refreshed", tokens)
}

// SignOut revokes the refresh token and clears every session cookie.
func (h *AuthHandler) SignOut(c *gin.Context) {
	refresh, _ := c.Cookie(Oauth.RefreshCookie)
	snap := middleware.Snapshot(c)

	if err := h.auth.SignOut(c.Request.Context(), snap.UserID, refresh); err != nil {
		respondError(c, err, "Failed to sign out")
		return
	}

	Oauth.SetRefreshCookie(c, "", -1, h.secure)
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
	})

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.logger.Warn(c.Request.Context(), "session clear failed", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Session reports the current identity; user is null when signed out.
func (h *AuthHandler) Session(c *gin.Context) {
	s := middleware.Snapshot(c)
	if !s.SignedIn() {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": s})
}
