package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ksred/fantaleague-api/internal/types"
	"github.com/ksred/fantaleague-api/pkg/response"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// Credentials is a team login request
type Credentials struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	Token      string    `json:"jwt_token"`
	Expiration time.Time `json:"expiration"`
	Team       *TeamInfo `json:"team,omitempty"`
}

// TeamInfo is the public view of the authenticated team
type TeamInfo struct {
	TeamID   string `json:"team_id"`
	Name     string `json:"name"`
	Division string `json:"division"`
	Credits  int64  `json:"credits"`
}

// TeamClaims is the JWT claims structure for team tokens
type TeamClaims struct {
	jwt.RegisteredClaims
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Division string `json:"division"`
}

// AdminClaims is the JWT claims structure for administrator tokens
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Service handles authentication for teams and administrators
type Service struct {
	db            *gorm.DB
	jwtSecret     []byte
	adminName     string
	adminPassword string
}

// NewService creates a new authentication service
func NewService(db *gorm.DB, jwtSecret, adminName, adminPassword string) *Service {
	return &Service{
		db:            db,
		jwtSecret:     []byte(jwtSecret),
		adminName:     adminName,
		adminPassword: adminPassword,
	}
}

// Login verifies a team's name and password and issues a JWT carrying
// the team identity and division. Tokens are valid for 24 hours.
func (s *Service) Login(creds Credentials) (*TokenResponse, error) {
	var team types.Team
	if err := s.db.Where("name = ?", creds.Name).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(team.PasswordHash), []byte(creds.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	expiration := time.Now().Add(24 * time.Hour)
	claims := TeamClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
		TeamID:   team.TeamID,
		TeamName: team.Name,
		Division: team.Division,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, ErrTokenGeneration
	}

	return &TokenResponse{
		Token:      tokenString,
		Expiration: expiration,
		Team: &TeamInfo{
			TeamID:   team.TeamID,
			Name:     team.Name,
			Division: team.Division,
			Credits:  team.Credits,
		},
	}, nil
}

// AdminLogin verifies administrator credentials and issues an admin JWT
func (s *Service) AdminLogin(creds Credentials) (*TokenResponse, error) {
	if creds.Name != s.adminName || creds.Password != s.adminPassword {
		return nil, ErrInvalidCredentials
	}

	expiration := time.Now().Add(12 * time.Hour)
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
		Role: "admin",
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, ErrTokenGeneration
	}

	return &TokenResponse{
		Token:      tokenString,
		Expiration: expiration,
	}, nil
}

// ChangePassword replaces a team's password hash after verifying the
// current password.
func (s *Service) ChangePassword(teamID, currentPassword, newPassword string) error {
	var team types.Team
	if err := s.db.Where("team_id = ?", teamID).First(&team).Error; err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(team.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.Model(&team).Update("password_hash", string(hash)).Error
}

// HashPassword produces a bcrypt hash for seeding and registration
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GinHandlers contains HTTP handlers for authentication endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for authentication endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// LoginHandler handles POST requests for team login
func (h *GinHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		token, err := h.service.Login(creds)
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.Handle(c, token, err)
	}
}

// AdminLoginHandler handles POST requests for administrator login
func (h *GinHandlers) AdminLoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		token, err := h.service.AdminLogin(creds)
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.Handle(c, token, err)
	}
}

// ChangePasswordHandler handles POST requests to change the caller's password
func (h *GinHandlers) ChangePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.GetString("teamID")
		if teamID == "" {
			response.Unauthorized(c, "Missing team identity")
			return
		}

		var request struct {
			CurrentPassword string `json:"current_password" binding:"required"`
			NewPassword     string `json:"new_password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		err := h.service.ChangePassword(teamID, request.CurrentPassword, request.NewPassword)
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, "Current password is incorrect")
			return
		}
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, gin.H{"message": "password updated successfully"})
	}
}
