package handlers

import (
	"errors"
	"net/http"
	"time"

	"taskpad/backend/internal/middleware"
	"taskpad/backend/internal/models"
	"taskpad/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
	sessionTTL  time.Duration
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, sessionTTL: sessionTTL}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Register creates an account. Field presence is validated by the service
// so a missing email or password surfaces as the same 400 as any other
// validation failure.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.authService.RegisterUser(h.db, req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Public())
}

// Login verifies credentials and issues a session token, returned in the
// body and mirrored into an HttpOnly cookie for browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.authService.LoginUser(h.db, req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookieName, token, int(h.sessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user.Public()})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; there is no server-side revocation list.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// Session echoes the caller's identity, resolved from the token.
func (h *AuthHandler) Session(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, user.Public())
}
