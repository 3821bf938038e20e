package event

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/modules/content/blocks"
	"github.com/atrium-events/core/internal/modules/registration/schema"
	"github.com/atrium-events/core/internal/pkg/pagination"
	"github.com/atrium-events/core/internal/pkg/response"
)

var ErrSlugTaken = errors.New("an event with this slug already exists")

type CreateEventDTO struct {
	Slug       string           `json:"slug" binding:"required"`
	Title      string           `json:"title" binding:"required"`
	Subtitle   string           `json:"subtitle"`
	Text       string           `json:"text"`
	FormSchema schema.FieldList `json:"form_schema"`
	Location   string           `json:"location"`
	StartsAt   *time.Time       `json:"starts_at"`
	EndsAt     *time.Time       `json:"ends_at"`
	CoverImage string           `json:"cover_image"`
	Tags       []string         `json:"tags"`
	Capacity   int              `json:"capacity"`
}

type UpdateEventDTO struct {
	Title       *string    `json:"title"`
	Subtitle    *string    `json:"subtitle"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	CoverImage  *string    `json:"cover_image"`
	Tags        *[]string  `json:"tags"`
	IsPublished *bool      `json:"is_published"`
	Capacity    *int       `json:"capacity"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(q pagination.Query, publishedOnly bool, tag string) ([]models.EventModel, response.Pagination, error) {
	query := s.db.Model(&models.EventModel{}).Order("starts_at DESC")
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if tag != "" {
		// Tags serialize as a JSON string array; match the quoted element.
		query = query.Where("tags LIKE ?", `%"`+tag+`"%`)
	}
	var events []models.EventModel
	p, err := pagination.Paginate(query, q, &events)
	return events, p, err
}

func (s *Service) GetBySlug(slug string) (*models.EventModel, error) {
	var ev models.EventModel
	if err := s.db.Where("slug = ?", slug).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *Service) GetByID(id string) (*models.EventModel, error) {
	var ev models.EventModel
	if err := s.db.Where("id = ?", id).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *Service) Create(dto CreateEventDTO) (*models.EventModel, error) {
	var count int64
	s.db.Model(&models.EventModel{}).Where("slug = ?", dto.Slug).Count(&count)
	if count > 0 {
		return nil, ErrSlugTaken
	}
	ev := models.EventModel{
		Slug:       dto.Slug,
		Title:      dto.Title,
		Subtitle:   dto.Subtitle,
		Text:       dto.Text,
		FormSchema: dto.FormSchema,
		Location:   dto.Location,
		StartsAt:   dto.StartsAt,
		EndsAt:     dto.EndsAt,
		CoverImage: dto.CoverImage,
		Tags:       models.StringArray(dto.Tags),
		Capacity:   dto.Capacity,
	}
	if err := s.db.Create(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *Service) Update(id string, dto UpdateEventDTO) (*models.EventModel, error) {
	ev, err := s.GetByID(id)
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
	if dto.Location != nil {
		updates["location"] = *dto.Location
	}
	if dto.StartsAt != nil {
		updates["starts_at"] = *dto.StartsAt
	}
	if dto.EndsAt != nil {
		updates["ends_at"] = *dto.EndsAt
	}
	if dto.CoverImage != nil {
		updates["cover_image"] = *dto.CoverImage
	}
	if dto.Tags != nil {
		updates["tags"] = models.StringArray(*dto.Tags)
	}
	if dto.IsPublished != nil {
		updates["is_published"] = *dto.IsPublished
	}
	if dto.Capacity != nil {
		updates["capacity"] = *dto.Capacity
	}
	if len(updates) == 0 {
		return ev, nil
	}
	if err := s.db.Model(ev).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.EventModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Document decodes the event's stored content into a block document.
func (s *Service) Document(id string) (blocks.Document, error) {
	ev, err := s.GetByID(id)
	if err != nil {
		return blocks.Document{}, err
	}
	return blocks.Decode(ev.Text), nil
}

// MutateBlocks applies an editing operation to the event's block
// sequence and persists the re-encoded result. Legacy documents
// cannot be edited block-wise.
func (s *Service) MutateBlocks(id string, op func([]blocks.Block) ([]blocks.Block, error)) (blocks.Document, error) {
	ev, err := s.GetByID(id)
	if err != nil {
		return blocks.Document{}, err
	}
	doc := blocks.Decode(ev.Text)
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
	if err := s.db.Model(ev).Update("text", encoded).Error; err != nil {
		return blocks.Document{}, err
	}
	return blocks.Document{Blocks: next, Raw: encoded}, nil
}

// MutateSchema applies an editing operation to the event's form
// schema and persists the result.
func (s *Service) MutateSchema(id string, op func(schema.FieldList) (schema.FieldList, error)) (schema.FieldList, error) {
	ev, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	next, err := op(ev.FormSchema)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(ev).Update("form_schema", next).Error; err != nil {
		return nil, err
	}
	return next, nil
}
