// Package auth handles admin sign-in and session management.
package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/atrium-events/core/internal/middleware"
	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/pkg/response"
	sessionpkg "github.com/atrium-events/core/internal/pkg/session"
)

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrAlreadyInit    = errors.New("an admin account already exists")
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// InitAdmin creates the first admin account. Refused once any user exists;
// further accounts are out of scope for a single-admin back office.
func (s *Service) InitAdmin(username, password, name string) (*models.UserModel, error) {
	var count int64
	if err := s.db.Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyInit
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.UserModel{
		Username: username,
		Name:     name,
		Password: string(hash),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	s.log.Info("admin account created", zap.String("username", username))
	return &user, nil
}

// Login verifies credentials and issues a session-bound token.
func (s *Service) Login(username, password, ip, ua string) (string, *models.UserModel, error) {
	var user models.UserModel
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrBadCredentials
	}

	token, _, err := sessionpkg.Issue(s.db, user.ID, ip, ua, sessionpkg.DefaultTTL)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	s.db.Model(&user).Updates(map[string]interface{}{
		"last_login_time": &now,
		"last_login_ip":   ip,
	})
	s.log.Info("admin signed in", zap.String("username", user.Username), zap.String("ip", ip))
	return token, &user, nil
}

func (s *Service) GetUser(id string) (*models.UserModel, error) {
	var user models.UserModel
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) Sessions(userID string) ([]models.UserSession, error) {
	var sessions []models.UserSession
	err := s.db.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("updated_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// ChangePassword re-hashes and revokes every other session so stolen
// tokens die with the old password.
func (s *Service) ChangePassword(userID, current, next, keepSessionID string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return ErrBadCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.db.Model(user).Update("password", string(hash)).Error; err != nil {
		return err
	}
	now := time.Now()
	return s.db.Model(&models.UserSession{}).
		Where("user_id = ? AND id <> ? AND revoked_at IS NULL", userID, keepSessionID).
		Update("revoked_at", &now).Error
}

type Handler struct {
	service *Service
	db      *gorm.DB
}

func NewHandler(service *Service, db *gorm.DB) *Handler {
	return &Handler{service: service, db: db}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/init", h.Init)
		authGroup.POST("/login", h.Login)

		protected := authGroup.Group("", authMW)
		{
			protected.POST("/logout", h.Logout)
			protected.GET("/me", h.Me)
			protected.GET("/sessions", h.Sessions)
			protected.DELETE("/sessions/:id", h.RevokeSession)
			protected.POST("/password", h.ChangePassword)
		}
	}
}

type initDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

func (h *Handler) Init(c *gin.Context) {
	var dto initDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "username and password are required (min 8 chars)")
		return
	}
	user, err := h.service.InitAdmin(dto.Username, dto.Password, dto.Name)
	if err != nil {
		if errors.Is(err, ErrAlreadyInit) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, user)
}

type loginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var dto loginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}
	token, user, err := h.service.Login(dto.Username, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "user": user})
}

func (h *Handler) Logout(c *gin.Context) {
	userID := middleware.UserID(c)
	if sid, ok := c.Get(middleware.ContextKeySID); ok {
		if sidStr, _ := sid.(string); sidStr != "" {
			if err := sessionpkg.Revoke(h.db, userID, sidStr); err != nil {
				response.InternalError(c, err)
				return
			}
		}
	}
	response.NoContent(c)
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.GetUser(middleware.UserID(c))
	if err != nil {
		response.NotFound(c)
		return
	}
	response.OK(c, user)
}

func (h *Handler) Sessions(c *gin.Context) {
	sessions, err := h.service.Sessions(middleware.UserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, sessions)
}

func (h *Handler) RevokeSession(c *gin.Context) {
	if err := sessionpkg.Revoke(h.db, middleware.UserID(c), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

type changePasswordDTO struct {
	Current string `json:"current" binding:"required"`
	Next    string `json:"next" binding:"required,min=8"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var dto changePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "current and next password are required (min 8 chars)")
		return
	}
	sid := ""
	if v, ok := c.Get(middleware.ContextKeySID); ok {
		sid, _ = v.(string)
	}
	if err := h.service.ChangePassword(middleware.UserID(c), dto.Current, dto.Next, sid); err != nil {
		if errors.Is(err, ErrBadCredentials) {
			response.Forbidden(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
