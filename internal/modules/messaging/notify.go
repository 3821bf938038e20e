// Package messaging sends bulk announcements to event registrants.
package messaging

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/atrium-events/core/internal/modules/registration"
	"github.com/atrium-events/core/internal/modules/system"
	"github.com/atrium-events/core/internal/pkg/mail"
	"github.com/atrium-events/core/internal/pkg/response"
)

var ErrMailDisabled = errors.New("outgoing mail is not configured")

type Service struct {
	registrations *registration.Service
	settings      *system.Service
	log           *zap.Logger
}

func NewService(registrations *registration.Service, settings *system.Service, log *zap.Logger) *Service {
	return &Service{registrations: registrations, settings: settings, log: log}
}

// Result is the aggregate outcome of a bulk send. A failure for one
// recipient never aborts the rest of the batch.
type Result struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

type NotifyDTO struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"` // HTML body
}

// NotifyEvent emails every registrant of the event, one message per
// recipient so addresses are never leaked across the batch.
func (s *Service) NotifyEvent(eventID string, dto NotifyDTO) (Result, error) {
	// Settings are read per batch so mail config edits apply without a restart.
	sender := mail.New(s.settings.Mail())
	if !sender.Enabled() {
		return Result{}, ErrMailDisabled
	}
	recipients, err := s.registrations.Recipients(eventID)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, addr := range recipients {
		err := sender.Send(mail.Message{
			To:      []string{addr},
			Subject: dto.Subject,
			HTML:    dto.Body,
		})
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, addr+": "+err.Error())
			s.log.Warn("notify send failed", zap.String("event_id", eventID), zap.String("to", addr), zap.Error(err))
			continue
		}
		res.Sent++
	}
	s.log.Info("notify batch finished",
		zap.String("event_id", eventID),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed))
	return res, nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	auth := rg.Group("", authMW)
	auth.POST("/events/:id/notify", h.Notify)
}

func (h *Handler) Notify(c *gin.Context) {
	var dto NotifyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid notification payload")
		return
	}
	res, err := h.service.NotifyEvent(c.Param("id"), dto)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c)
		case errors.Is(err, ErrMailDisabled):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, res)
}
