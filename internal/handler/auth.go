package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scorecard/api/internal/apperr"
	"github.com/scorecard/api/internal/auth"
	"github.com/scorecard/api/internal/model"
	"github.com/scorecard/api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db        *gorm.DB
	users     *repository.UserStore
	jwtSecret string
}

func NewAuthHandler(db *gorm.DB, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		db:        db,
		users:     repository.NewUserStore(db),
		jwtSecret: jwtSecret,
	}
}

type SigninRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int         `json:"expiresIn"`
	User         *model.User `json:"user"`
}

// Signin verifies credentials and issues an access/refresh token pair.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Body must include a username and password"})
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		log.Printf("Failed to look up user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": apperr.GenericMessage})
		return
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Incorrect username or password"})
		return
	}

	accessToken, err := auth.GenerateAccessToken(user, h.jwtSecret)
	if err != nil {
		log.Printf("Failed to generate access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": apperr.GenericMessage})
		return
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		log.Printf("Failed to generate refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": apperr.GenericMessage})
		return
	}

	refreshTokenModel := model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(auth.RefreshTokenExpiry),
		CreatedAt: time.Now(),
	}
	if err := h.db.Create(&refreshTokenModel).Error; err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": apperr.GenericMessage})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(auth.AccessTokenExpiry.Seconds()),
		User:         user,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh exchanges a live refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Body must include a refreshToken"})
		return
	}

	var stored model.RefreshToken
	err := h.db.Where("token = ? AND revoked = ? AND expires_at > ?", req.RefreshToken, false, time.Now()).
		First(&stored).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired refresh token"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), stored.UserID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired refresh token"})
		return
	}

	accessToken, err := auth.GenerateAccessToken(user, h.jwtSecret)
	if err != nil {
		log.Printf("Failed to generate access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": apperr.GenericMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"expiresIn":   int(auth.AccessTokenExpiry.Seconds()),
	})
}

// Signout revokes a refresh token.
func (h *AuthHandler) Signout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Body must include a refreshToken"})
		return
	}

	h.db.Model(&model.RefreshToken{}).
		Where("token = ?", req.RefreshToken).
		Update("revoked", true)

	c.Status(http.StatusNoContent)
}
