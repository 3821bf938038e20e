// Package page serves static site pages (About, Contact, ...). Pages share
// the block/legacy content model with events but carry no schedule or
// registration form.
package page

import (
	"errors"
	"html/template"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/modules/content/blocks"
	"github.com/atrium-events/core/internal/pkg/response"
)

var ErrSlugTaken = errors.New("a page with this slug already exists")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List() ([]models.PageModel, error) {
	var pages []models.PageModel
	err := s.db.Order("order_num ASC, created_at ASC").Find(&pages).Error
	return pages, err
}

func (s *Service) GetBySlug(slug string) (*models.PageModel, error) {
	var p models.PageModel
	if err := s.db.Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetByID(id string) (*models.PageModel, error) {
	var p models.PageModel
	if err := s.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

type CreatePageDTO struct {
	Slug     string `json:"slug" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Subtitle string `json:"subtitle"`
	Text     string `json:"text"`
	Order    int    `json:"order"`
}

func (s *Service) Create(dto CreatePageDTO) (*models.PageModel, error) {
	var count int64
	s.db.Model(&models.PageModel{}).Where("slug = ?", dto.Slug).Count(&count)
	if count > 0 {
		return nil, ErrSlugTaken
	}
	p := models.PageModel{
		Slug:     dto.Slug,
		Title:    dto.Title,
		Subtitle: dto.Subtitle,
		Text:     dto.Text,
		Order:    dto.Order,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

type UpdatePageDTO struct {
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	Order    *int    `json:"order"`
}

func (s *Service) Update(id string, dto UpdatePageDTO) (*models.PageModel, error) {
	p, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Subtitle != nil {
		updates["subtitle"] = *dto.Subtitle
	}
	if dto.Order != nil {
		updates["order_num"] = *dto.Order
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.db.Model(p).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.PageModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Service) MutateBlocks(id string, op func([]blocks.Block) ([]blocks.Block, error)) (blocks.Document, error) {
	p, err := s.GetByID(id)
	if err != nil {
		return blocks.Document{}, err
	}
	doc := blocks.Decode(p.Text)
	if doc.Legacy {
		return blocks.Document{}, blocks.ErrLegacyContent
	}
	next, err := op(doc.Blocks)
	if err != nil {
		return blocks.Document{}, err
	}
	encoded, err := blocks.Encode(next)
	if err != nil {
		return blocks.Document{}, err
	}
	if err := s.db.Model(p).Update("text", encoded).Error; err != nil {
		return blocks.Document{}, err
	}
	return blocks.Document{Blocks: next, Raw: encoded}, nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	pages := rg.Group("/pages")
	{
		pages.GET("", h.List)
		pages.GET("/slug/:slug", h.GetBySlug)

		auth := pages.Group("", authMW)
		{
			auth.POST("", h.Create)
			auth.PUT("/:id", h.Update)
			auth.DELETE("/:id", h.Delete)

			auth.POST("/:id/blocks", h.AppendBlock)
			auth.PUT("/:id/blocks/:blockId", h.UpdateBlock)
			auth.DELETE("/:id/blocks/:blockId", h.RemoveBlock)
			auth.POST("/:id/blocks/:blockId/move", h.MoveBlock)
			auth.POST("/:id/blocks/:blockId/images", h.AddSliderImage)
		}
	}
}

type pageResponse struct {
	*models.PageModel
	Text     string         `json:"text,omitempty"`
	Legacy   bool           `json:"legacy"`
	Blocks   []blocks.Block `json:"blocks,omitempty"`
	BodyHTML template.HTML  `json:"body_html,omitempty"`
}

func rendered(p *models.PageModel) pageResponse {
	doc := blocks.Decode(p.Text)
	return pageResponse{
		PageModel: p,
		Legacy:    doc.Legacy,
		Blocks:    doc.Blocks,
		BodyHTML:  blocks.Render(doc),
	}
}

func (h *Handler) List(c *gin.Context) {
	pages, err := h.service.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]pageResponse, len(pages))
	for i := range pages {
		out[i] = pageResponse{PageModel: &pages[i]}
	}
	response.OK(c, out)
}

func (h *Handler) GetBySlug(c *gin.Context) {
	p, err := h.service.GetBySlug(c.Param("slug"))
	if err != nil {
		response.NotFound(c)
		return
	}
	response.OK(c, rendered(p))
}

func (h *Handler) Create(c *gin.Context) {
	var dto CreatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid page payload")
		return
	}
	p, err := h.service.Create(dto)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, rendered(p))
}

func (h *Handler) Update(c *gin.Context) {
	var dto UpdatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid page payload")
		return
	}
	p, err := h.service.Update(c.Param("id"), dto)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, rendered(p))
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

type appendBlockDTO struct {
	Type blocks.BlockType `json:"type" binding:"required"`
}

func (h *Handler) AppendBlock(c *gin.Context) {
	var dto appendBlockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid block payload")
		return
	}
	var added blocks.Block
	doc, err := h.service.MutateBlocks(c.Param("id"), func(list []blocks.Block) ([]blocks.Block, error) {
		next, b, err := blocks.Append(list, dto.Type)
		added = b
		return next, err
	})
	if err != nil {
		respondMutation(c, err)
		return
	}
	response.Created(c, gin.H{"block": added, "blocks": doc.Blocks})
}

func (h *Handler) UpdateBlock(c *gin.Context) {
	blockID := c.Param("blockId")
	raw, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "invalid block payload")
		return
	}
	doc, err := h.service.MutateBlocks(c.Param("id"), func(list []blocks.Block) ([]blocks.Block, error) {
		var target *blocks.Block
		for i := range list {
			if list[i].ID == blockID {
				target = &list[i]
				break
			}
		}
		if target == nil {
			return nil, errors.New("block not found")
		}
		payload, err := blocks.ParsePayload(target.Type, raw)
		if err != nil {
			return nil, err
		}
		return blocks.UpdatePayload(list, blockID, payload)
	})
	if err != nil {
		respondMutation(c, err)
		return
	}
	response.OK(c, gin.H{"blocks": doc.Blocks})
}

func (h *Handler) RemoveBlock(c *gin.Context) {
	blockID := c.Param("blockId")
	doc, err := h.service.MutateBlocks(c.Param("id"), func(list []blocks.Block) ([]blocks.Block, error) {
		return blocks.Remove(list, blockID), nil
	})
	if err != nil {
		respondMutation(c, err)
		return
	}
	response.OK(c, gin.H{"blocks": doc.Blocks})
}

type moveDTO struct {
	Direction string `json:"direction" binding:"required"`
}

func (h *Handler) MoveBlock(c *gin.Context) {
	var dto moveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid move payload")
		return
	}
	var delta int
	switch dto.Direction {
	case "up":
		delta = -1
	case "down":
		delta = 1
	default:
		response.BadRequest(c, "direction must be \"up\" or \"down\"")
		return
	}
	blockID := c.Param("blockId")
	doc, err := h.service.MutateBlocks(c.Param("id"), func(list []blocks.Block) ([]blocks.Block, error) {
		return blocks.Move(list, blockID, delta), nil
	})
	if err != nil {
		respondMutation(c, err)
		return
	}
	response.OK(c, gin.H{"blocks": doc.Blocks})
}

type sliderImageDTO struct {
	URL string `json:"url" binding:"required"`
}

func (h *Handler) AddSliderImage(c *gin.Context) {
	var dto sliderImageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid image payload")
		return
	}
	blockID := c.Param("blockId")
	doc, err := h.service.MutateBlocks(c.Param("id"), func(list []blocks.Block) ([]blocks.Block, error) {
		return blocks.AddSliderImage(list, blockID, dto.URL)
	})
	if err != nil {
		respondMutation(c, err)
		return
	}
	response.OK(c, gin.H{"blocks": doc.Blocks})
}

func respondMutation(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c)
	case errors.Is(err, blocks.ErrLegacyContent):
		response.Conflict(c, err.Error())
	default:
		response.UnprocessableEntity(c, err.Error())
	}
}
