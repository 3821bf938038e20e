package event

import (
	"errors"
	"html/template"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atrium-events/core/internal/middleware"
	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/modules/content/blocks"
	"github.com/atrium-events/core/internal/modules/registration/schema"
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
	events := rg.Group("/events")
	{
		events.GET("", h.List)
		events.GET("/slug/:slug", h.GetBySlug)

		auth := events.Group("", authMW)
		{
			auth.POST("", h.Create)
			auth.GET("/:id", h.Get)
			auth.PUT("/:id", h.Update)
			auth.DELETE("/:id", h.Delete)

			auth.GET("/:id/blocks", h.GetBlocks)
			auth.POST("/:id/blocks", h.AppendBlock)
			auth.PUT("/:id/blocks/:blockId", h.UpdateBlock)
			auth.DELETE("/:id/blocks/:blockId", h.RemoveBlock)
			auth.POST("/:id/blocks/:blockId/move", h.MoveBlock)
			auth.POST("/:id/blocks/:blockId/images", h.AddSliderImage)

			auth.POST("/:id/fields", h.AddField)
			auth.PUT("/:id/fields/:fieldId", h.UpdateField)
			auth.DELETE("/:id/fields/:fieldId", h.RemoveField)
			auth.POST("/:id/fields/:fieldId/move", h.MoveField)
		}
	}
}

type eventResponse struct {
	*models.EventModel
	Text string `json:"text,omitempty"`
}

type fullEventResponse struct {
	*models.EventModel
	Legacy   bool           `json:"legacy"`
	Blocks   []blocks.Block `json:"blocks"`
	BodyHTML template.HTML  `json:"body_html"`
}

// summary hides the raw text column from list payloads.
func summary(ev models.EventModel) eventResponse {
	return eventResponse{EventModel: &ev}
}

func full(ev *models.EventModel) fullEventResponse {
	doc := blocks.Decode(ev.Text)
	out := fullEventResponse{
		EventModel: ev,
		Legacy:     doc.Legacy,
		Blocks:     doc.Blocks,
		BodyHTML:   blocks.Render(doc),
	}
	if out.Blocks == nil {
		out.Blocks = []blocks.Block{}
	}
	return out
}

func (h *Handler) List(c *gin.Context) {
	publishedOnly := !middleware.IsAuthenticated(c)
	events, p, err := h.service.List(pagination.FromContext(c), publishedOnly, c.Query("tag"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]eventResponse, len(events))
	for i, ev := range events {
		out[i] = summary(ev)
	}
	response.Paged(c, out, p)
}

func (h *Handler) GetBySlug(c *gin.Context) {
	ev, err := h.service.GetBySlug(c.Param("slug"))
	if err != nil {
		response.NotFound(c)
		return
	}
	if !ev.IsPublished && !middleware.IsAuthenticated(c) {
		response.NotFound(c)
		return
	}
	response.OK(c, full(ev))
}

func (h *Handler) Get(c *gin.Context) {
	ev, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		response.NotFound(c)
		return
	}
	out := full(ev)
	// Admins get the raw stored text back for the legacy-content editor.
	response.OK(c, gin.H{"event": out, "text": ev.Text})
}

func (h *Handler) Create(c *gin.Context) {
	var dto CreateEventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid event payload")
		return
	}
	ev, err := h.service.Create(dto)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, full(ev))
}

func (h *Handler) Update(c *gin.Context) {
	var dto UpdateEventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid event payload")
		return
	}
	ev, err := h.service.Update(c.Param("id"), dto)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, full(ev))
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

// --- block editor ---

func (h *Handler) GetBlocks(c *gin.Context) {
	doc, err := h.service.Document(c.Param("id"))
	if err != nil {
		response.NotFound(c)
		return
	}
	if doc.Blocks == nil {
		doc.Blocks = []blocks.Block{}
	}
	response.OK(c, gin.H{"legacy": doc.Legacy, "blocks": doc.Blocks})
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

func parseDirection(s string) (int, bool) {
	switch s {
	case "up":
		return -1, true
	case "down":
		return 1, true
	}
	return 0, false
}

func (h *Handler) MoveBlock(c *gin.Context) {
	var dto moveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid move payload")
		return
	}
	delta, ok := parseDirection(dto.Direction)
	if !ok {
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

// --- form schema editor ---

func (h *Handler) AddField(c *gin.Context) {
	var def schema.FieldDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		response.BadRequest(c, "invalid field payload")
		return
	}
	if def.ID == "" {
		fresh := schema.NewField(def.Type)
		fresh.Label = def.Label
		fresh.Required = def.Required
		fresh.Placeholder = def.Placeholder
		if len(def.Options) > 0 {
			fresh.Options = def.Options
		}
		def = fresh
	}
	fields, err := h.service.MutateSchema(c.Param("id"), func(l schema.FieldList) (schema.FieldList, error) {
		return l.Add(def)
	})
	if err != nil {
		respondMutation(c, err)
		return
	}
	response.Created(c, gin.H{"form_schema": fields})
}

func (h *Handler) UpdateField(c *gin.Context) {
	var def schema.FieldDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		response.BadRequest(c, "invalid field payload")
		return
	}
	def.ID = c.Param("fieldId")
	fields, err := h.service.MutateSchema(c.Param("id"), func(l schema.FieldList) (schema.FieldList, error) {
		return l.Update(def)
	})
	if err != nil {
		respondMutation(c, err)
		return
	}
	response.OK(c, gin.H{"form_schema": fields})
}

func (h *Handler) RemoveField(c *gin.Context) {
	fieldID := c.Param("fieldId")
	fields, err := h.service.MutateSchema(c.Param("id"), func(l schema.FieldList) (schema.FieldList, error) {
		return l.Remove(fieldID), nil
	})
	if err != nil {
		respondMutation(c, err)
		return
	}
	response.OK(c, gin.H{"form_schema": fields})
}

func (h *Handler) MoveField(c *gin.Context) {
	var dto moveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid move payload")
		return
	}
	delta, ok := parseDirection(dto.Direction)
	if !ok {
		response.BadRequest(c, "direction must be \"up\" or \"down\"")
		return
	}
	fieldID := c.Param("fieldId")
	fields, err := h.service.MutateSchema(c.Param("id"), func(l schema.FieldList) (schema.FieldList, error) {
		return l.Move(fieldID, delta), nil
	})
	if err != nil {
		respondMutation(c, err)
		return
	}
	response.OK(c, gin.H{"form_schema": fields})
}

// respondMutation maps editor errors onto HTTP statuses: missing event
// is 404, legacy content is a conflict, everything else is a rejected
// edit.
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
