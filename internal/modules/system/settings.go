// Package system holds site-wide settings stored as JSON documents in
// the options table: mail provider, object storage and site metadata.
package system

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/pkg/mail"
	"github.com/atrium-events/core/internal/pkg/response"
)

const (
	KeyMail    = "mail"
	KeyStorage = "storage"
	KeySite    = "site"
)

var ErrUnknownKey = errors.New("unknown settings key")

// StorageConfig configures S3-compatible object storage for uploads.
// With Enable false, uploads land on local disk under the static dir.
type StorageConfig struct {
	Enable    bool   `json:"enable"`
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	BaseURL   string `json:"base_url"` // public URL prefix for stored objects
	PathStyle bool   `json:"path_style"`
}

// SiteConfig is public site metadata.
type SiteConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ContactMail string `json:"contact_mail"`
	FooterText  string `json:"footer_text"`
}

type Service struct {
	db *gorm.DB

	mu    sync.RWMutex
	cache map[string]json.RawMessage
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, cache: map[string]json.RawMessage{}}
}

func knownKey(name string) bool {
	return name == KeyMail || name == KeyStorage || name == KeySite
}

// Get returns the raw JSON document for a settings key, or "{}" when the
// key has never been written.
func (s *Service) Get(name string) (json.RawMessage, error) {
	if !knownKey(name) {
		return nil, ErrUnknownKey
	}
	s.mu.RLock()
	if raw, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return raw, nil
	}
	s.mu.RUnlock()

	var opt models.OptionModel
	err := s.db.Where("name = ?", name).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return json.RawMessage("{}"), nil
	}
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(opt.Value)
	s.mu.Lock()
	s.cache[name] = raw
	s.mu.Unlock()
	return raw, nil
}

// Set validates and stores a settings document, replacing any prior value.
func (s *Service) Set(name string, raw json.RawMessage) error {
	if !knownKey(name) {
		return ErrUnknownKey
	}
	if err := validateDocument(name, raw); err != nil {
		return err
	}
	opt := models.OptionModel{Name: name, Value: string(raw)}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&opt).Error
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cache[name] = raw
	s.mu.Unlock()
	return nil
}

// validateDocument rejects settings documents that do not decode into
// their typed form. Unknown JSON fields pass through untouched.
func validateDocument(name string, raw json.RawMessage) error {
	switch name {
	case KeyMail:
		var cfg mail.Config
		return json.Unmarshal(raw, &cfg)
	case KeyStorage:
		var cfg StorageConfig
		return json.Unmarshal(raw, &cfg)
	case KeySite:
		var cfg SiteConfig
		return json.Unmarshal(raw, &cfg)
	}
	return ErrUnknownKey
}

// Mail returns the current mail settings, zero-valued when unset.
func (s *Service) Mail() mail.Config {
	var cfg mail.Config
	if raw, err := s.Get(KeyMail); err == nil {
		json.Unmarshal(raw, &cfg)
	}
	return cfg
}

// Storage returns the current object storage settings.
func (s *Service) Storage() StorageConfig {
	var cfg StorageConfig
	if raw, err := s.Get(KeyStorage); err == nil {
		json.Unmarshal(raw, &cfg)
	}
	return cfg
}

// Site returns the public site metadata.
func (s *Service) Site() SiteConfig {
	var cfg SiteConfig
	if raw, err := s.Get(KeySite); err == nil {
		json.Unmarshal(raw, &cfg)
	}
	return cfg
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/site", h.Site)

	settings := rg.Group("/settings", authMW)
	{
		settings.GET("/:key", h.Get)
		settings.PUT("/:key", h.Set)
	}
}

// Site is the public endpoint the frontend reads its chrome from.
func (h *Handler) Site(c *gin.Context) {
	response.OK(c, h.service.Site())
}

func (h *Handler) Get(c *gin.Context) {
	raw, err := h.service.Get(c.Param("key"))
	if err != nil {
		if errors.Is(err, ErrUnknownKey) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, raw)
}

func (h *Handler) Set(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || !json.Valid(raw) {
		response.BadRequest(c, "settings body must be a JSON document")
		return
	}
	if err := h.service.Set(c.Param("key"), raw); err != nil {
		if errors.Is(err, ErrUnknownKey) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, json.RawMessage(raw))
}
