// Package membership manages the member roster: public applications and
// the admin review workflow (approve / reject).
package membership

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/pkg/pagination"
	"github.com/atrium-events/core/internal/pkg/response"
)

var ErrEmailTaken = errors.New("an application with this email already exists")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type ApplyDTO struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Note      string `json:"note"`
}

func (s *Service) Apply(dto ApplyDTO) (*models.MemberModel, error) {
	var count int64
	s.db.Model(&models.MemberModel{}).Where("email = ?", dto.Email).Count(&count)
	if count > 0 {
		return nil, ErrEmailTaken
	}
	m := models.MemberModel{
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Email:     dto.Email,
		Phone:     dto.Phone,
		Status:    models.MemberStatusPending,
		Note:      dto.Note,
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) List(status string, q pagination.Query) ([]models.MemberModel, response.Pagination, error) {
	query := s.db.Model(&models.MemberModel{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var members []models.MemberModel
	p, err := pagination.Paginate(query, q, &members)
	return members, p, err
}

func (s *Service) SetStatus(id, status string) (*models.MemberModel, error) {
	var m models.MemberModel
	if err := s.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&m).Update("status", status).Error; err != nil {
		return nil, err
	}
	m.Status = status
	return &m, nil
}

func (s *Service) Delete(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.MemberModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	members := rg.Group("/members")
	{
		members.POST("/apply", h.Apply)

		auth := members.Group("", authMW)
		{
			auth.GET("", h.List)
			auth.POST("/:id/approve", h.Approve)
			auth.POST("/:id/reject", h.Reject)
			auth.DELETE("/:id", h.Delete)
		}
	}
}

func (h *Handler) Apply(c *gin.Context) {
	var dto ApplyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid application payload")
		return
	}
	m, err := h.service.Apply(dto)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, m)
}

func (h *Handler) List(c *gin.Context) {
	members, p, err := h.service.List(c.Query("status"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, members, p)
}

func (h *Handler) Approve(c *gin.Context) {
	h.setStatus(c, models.MemberStatusActive)
}

func (h *Handler) Reject(c *gin.Context) {
	h.setStatus(c, models.MemberStatusRejected)
}

func (h *Handler) setStatus(c *gin.Context, status string) {
	m, err := h.service.SetStatus(c.Param("id"), status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, m)
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
