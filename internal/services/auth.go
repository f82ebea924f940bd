package services

import (
	"errors"
	"strings"
	"time"

	"taskpad/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TokenIssuer = "taskpad-backend"

type AuthService interface {
	RegisterUser(db *gorm.DB, email, password, name string) (*models.User, error)
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
	GenerateToken(userID uuid.UUID) (string, error)
}

type AuthServiceImpl struct {
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

func NewAuthService(secret string, tokenTTL time.Duration, bcryptCost int) *AuthServiceImpl {
	if bcryptCost == 0 {
		bcryptCost = 12
	}
	return &AuthServiceImpl{
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

func (s *AuthServiceImpl) RegisterUser(db *gorm.DB, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, storeError(err)
	}

	user := models.User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, storeError(err)
	}

	return &user, nil
}

// LoginUser reports the same error for an unknown email and a wrong
// password, so login responses cannot be used to enumerate accounts.
func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

func (s *AuthServiceImpl) GenerateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     TokenIssuer,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
