package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Whateverdoa/vertical-slice-service/internals/events"
	"github.com/Whateverdoa/vertical-slice-service/internals/storage"
	"github.com/Whateverdoa/vertical-slice-service/internals/storage/models"
	"github.com/Whateverdoa/vertical-slice-service/pkg/config"
)

type AuthService struct {
	UserStorage storage.UserStorage
	Sessions    storage.SessionStore

	secret   []byte
	tokenTTL time.Duration
}

var authPrefix = "auth"

func New(userStorage storage.UserStorage, sessions storage.SessionStore) *AuthService {
	ttl := time.Duration(config.Auth.TokenTTLMinute) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthService{
		UserStorage: userStorage,
		Sessions:    sessions,
		secret:      []byte(config.Auth.JWTSecret),
		tokenTTL:    ttl,
	}
}

func (s *AuthService) RegisterRoutes(r *gin.RouterGroup) {
	authRouter := r.Group("/" + authPrefix)

	authRouter.POST("/login", s.Login)
	authRouter.POST("/logout", s.Logout)
	authRouter.GET("/me", s.Me)
}

// HandleUserDeactivated revokes every live session of a deactivated user.
// Subscribed to the event bus in main; the users slice is never imported.
func (s *AuthService) HandleUserDeactivated(e events.Event) {
	slog.Debug("Revoking sessions for deactivated user", "userID", e.UserID)
	err := s.Sessions.RevokeUserSessions(context.Background(), e.UserID, e.Timestamp, s.tokenTTL)
	if err != nil {
		slog.Error("Failed to revoke sessions for deactivated user", "err", err, "userID", e.UserID)
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type MeResponse struct {
	User models.User `json:"user"`
}

func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("Invalid request body", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.UserStorage.GetUserByEmail(context.Background(), email)
	if err != nil {
		if err.Error() == "NOT_FOUND" {
			// Same answer as a bad password, callers cannot probe for accounts
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "INVALID_CREDENTIALS",
					"message": "invalid email or password",
				},
			})
			return
		}
		slog.Error("Failed to get user for login", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to log in",
			},
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "invalid email or password",
			},
		})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"error": gin.H{
				"code":    "USER_INACTIVE",
				"message": "user account is deactivated",
			},
		})
		return
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		slog.Error("Failed to sign access token", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to log in",
			},
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	})
}

func (s *AuthService) Logout(c *gin.Context) {
	claims, ok := s.authenticate(c)
	if !ok {
		return
	}

	err := s.Sessions.DenylistToken(context.Background(), claims.ID, time.Until(claims.ExpiresAt.Time))
	if err != nil {
		slog.Error("Failed to denylist token", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to log out",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *AuthService) Me(c *gin.Context) {
	claims, ok := s.authenticate(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		s.unauthorized(c, "invalid token subject")
		return
	}

	user, err := s.UserStorage.GetUserByID(context.Background(), userID)
	if err != nil {
		if err.Error() == "NOT_FOUND" {
			s.unauthorized(c, "user no longer exists")
			return
		}
		slog.Error("Failed to get authenticated user", "err", err, "userID", userID)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to get user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: user})
}

func (s *AuthService) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// authenticate parses and validates the bearer token, rejecting denylisted
// tokens and tokens issued before the user's revocation watermark. On
// failure it writes the 401 response itself.
func (s *AuthService) authenticate(c *gin.Context) (*jwt.RegisteredClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		s.unauthorized(c, "missing authorization header")
		return nil, false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		s.unauthorized(c, "invalid authorization header format")
		return nil, false
	}
	raw := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.ExpiresAt == nil {
		s.unauthorized(c, "invalid or expired token")
		return nil, false
	}

	denylisted, err := s.Sessions.IsTokenDenylisted(context.Background(), claims.ID)
	if err != nil {
		slog.Error("Failed to check token denylist", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to validate token",
			},
		})
		return nil, false
	}
	if denylisted {
		s.unauthorized(c, "token has been revoked")
		return nil, false
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		s.unauthorized(c, "invalid token subject")
		return nil, false
	}

	revokedAfter, revoked, err := s.Sessions.UserRevokedAfter(context.Background(), userID)
	if err != nil {
		slog.Error("Failed to check user revocation", "err", err, "userID", userID)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to validate token",
			},
		})
		return nil, false
	}
	if revoked && claims.IssuedAt != nil && !claims.IssuedAt.Time.After(revokedAfter) {
		s.unauthorized(c, "token has been revoked")
		return nil, false
	}

	return claims, true
}

func (s *AuthService) unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
