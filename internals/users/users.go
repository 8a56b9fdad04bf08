package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Whateverdoa/vertical-slice-service/internals/events"
	"github.com/Whateverdoa/vertical-slice-service/internals/storage"
	"github.com/Whateverdoa/vertical-slice-service/internals/storage/models"
	"github.com/Whateverdoa/vertical-slice-service/pkg/config"
)

type UserService struct {
	UserStorage storage.UserStorage
	Cache       storage.UserCache
	Bus         *events.Bus

	DefaultPageSize int
	MaxPageSize     int
}

var usersPrefix = "users"

func New(userStorage storage.UserStorage, cache storage.UserCache, bus *events.Bus) *UserService {
	s := &UserService{
		UserStorage:     userStorage,
		Cache:           cache,
		Bus:             bus,
		DefaultPageSize: config.Pages.DefaultSize,
		MaxPageSize:     config.Pages.MaxSize,
	}
	if s.DefaultPageSize <= 0 {
		s.DefaultPageSize = 20
	}
	if s.MaxPageSize <= 0 {
		s.MaxPageSize = 100
	}
	return s
}

func (s *UserService) RegisterRoutes(r *gin.RouterGroup) {
	userRouter := r.Group("/" + usersPrefix)

	userRouter.GET("", s.ListUsers)
	userRouter.GET("/:user_id", s.GetUser)
	userRouter.POST("", s.CreateUser)
	userRouter.PUT("/:user_id", s.UpdateUser)
	userRouter.DELETE("/:user_id", s.DeleteUser)
}

type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,min=1,max=50"`
	LastName  string `json:"last_name" binding:"required,min=1,max=50"`
	Password  string `json:"password" binding:"required,min=8"`
	IsActive  *bool  `json:"is_active"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=50"`
	IsActive  *bool   `json:"is_active"`
}

type UserResponse struct {
	User models.User `json:"user"`
}

type ListUsersResponse struct {
	Users  []models.User `json:"users"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

func (s *UserService) ListUsers(c *gin.Context) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "offset must be a non-negative integer",
			},
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(s.DefaultPageSize)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "limit must be a positive integer",
			},
		})
		return
	}
	if limit > s.MaxPageSize {
		limit = s.MaxPageSize
	}

	users, err := s.UserStorage.ListUsers(context.Background(), offset, limit)
	if err != nil {
		slog.Error("Failed to list users", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to list users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, ListUsersResponse{
		Users:  users,
		Offset: offset,
		Limit:  limit,
	})
}

func (s *UserService) GetUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	cached, hit, err := s.Cache.GetUser(context.Background(), userID)
	if err != nil {
		// Cache trouble must not fail the read path
		slog.Error("User cache lookup failed", "err", err, "userID", userID)
	}
	if hit {
		c.JSON(http.StatusOK, UserResponse{User: cached})
		return
	}

	user, err := s.UserStorage.GetUserByID(context.Background(), userID)
	if err != nil {
		if err.Error() == "NOT_FOUND" {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "user not found",
				},
			})
			return
		}
		slog.Error("Failed to get user", "err", err, "userID", userID)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to get user",
			},
		})
		return
	}

	if err := s.Cache.SetUser(context.Background(), user); err != nil {
		slog.Error("Failed to cache user", "err", err, "userID", userID)
	}

	c.JSON(http.StatusOK, UserResponse{User: user})
}

func (s *UserService) CreateUser(c *gin.Context) {
	var req CreateUserRequest
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

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to create user",
			},
		})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        normalizeEmail(req.Email),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		IsActive:     isActive,
	}

	created, err := s.UserStorage.CreateUser(context.Background(), user)
	if err != nil {
		if err.Error() == "EMAIL_EXISTS" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "EMAIL_EXISTS",
					"message": "email already registered",
				},
			})
			return
		}
		slog.Error("Failed to create user", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to create user",
			},
		})
		return
	}

	s.Bus.Publish(events.NewUserEvent(events.UserCreated, created.ID))

	c.JSON(http.StatusCreated, UserResponse{User: created})
}

func (s *UserService) UpdateUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
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

	update := models.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Email != nil {
		normalized := normalizeEmail(*req.Email)
		update.Email = &normalized
	}

	user, err := s.UserStorage.UpdateUser(context.Background(), userID, update)
	if err != nil {
		switch err.Error() {
		case "NOT_FOUND":
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "user not found",
				},
			})
		case "EMAIL_EXISTS":
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "EMAIL_EXISTS",
					"message": "email already registered",
				},
			})
		default:
			slog.Error("Failed to update user", "err", err, "userID", userID)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "failed to update user",
				},
			})
		}
		return
	}

	if err := s.Cache.InvalidateUser(context.Background(), userID); err != nil {
		slog.Error("Failed to invalidate cached user", "err", err, "userID", userID)
	}

	if req.IsActive != nil && !*req.IsActive {
		s.Bus.Publish(events.NewUserEvent(events.UserDeactivated, userID))
	} else {
		s.Bus.Publish(events.NewUserEvent(events.UserUpdated, userID))
	}

	c.JSON(http.StatusOK, UserResponse{User: user})
}

func (s *UserService) DeleteUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	err := s.UserStorage.DeleteUser(context.Background(), userID)
	if err != nil {
		if err.Error() == "NOT_FOUND" {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "user not found",
				},
			})
			return
		}
		slog.Error("Failed to delete user", "err", err, "userID", userID)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to delete user",
			},
		})
		return
	}

	if err := s.Cache.InvalidateUser(context.Background(), userID); err != nil {
		slog.Error("Failed to invalidate cached user", "err", err, "userID", userID)
	}

	s.Bus.Publish(events.NewUserEvent(events.UserDeleted, userID))

	c.Status(http.StatusNoContent)
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "user_id must be a valid UUID",
			},
		})
		return uuid.UUID{}, false
	}
	return userID, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
