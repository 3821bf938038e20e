package registration

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atrium-events/core/internal/pkg/pagination"
	"github.com/atrium-events/core/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/events/slug/:slug/register", h.Submit)

	auth := rg.Group("", authMW)
	{
		auth.GET("/events/:id/registrations", h.List)
		auth.GET("/events/:id/registrations/export", h.Export)
		auth.DELETE("/registrations/:id", h.Delete)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	var dto SubmitDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid registration payload")
		return
	}
	sub, err := h.service.Submit(c.Param("slug"), dto)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c)
		case errors.Is(err, ErrEventClosed), errors.Is(err, ErrEventFull):
			response.Conflict(c, err.Error())
		case errors.As(err, &verr):
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"ok":      0,
				"code":    http.StatusUnprocessableEntity,
				"message": verr.Error(),
				"missing": verr.Missing,
			})
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, sub)
}

func (h *Handler) List(c *gin.Context) {
	subs, p, err := h.service.List(c.Param("id"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, subs, p)
}

func (h *Handler) Export(c *gin.Context) {
	filename, csv, err := h.service.Export(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Blob(c, filename, "text/csv; charset=utf-8", []byte(csv))
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
