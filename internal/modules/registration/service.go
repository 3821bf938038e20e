// Package registration handles event sign-ups: the public submit
// endpoint, the admin roster views and the CSV export.
package registration

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/modules/registration/export"
	"github.com/atrium-events/core/internal/pkg/pagination"
	"github.com/atrium-events/core/internal/pkg/response"
)

var (
	ErrEventClosed = errors.New("registration for this event is closed")
	ErrEventFull   = errors.New("this event has reached capacity")
)

// ValidationError carries the ids of required fields the visitor left
// blank, so the form can highlight them.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

type SubmitDTO struct {
	FirstName string                 `json:"first_name" binding:"required"`
	LastName  string                 `json:"last_name" binding:"required"`
	Email     string                 `json:"email" binding:"required,email"`
	Phone     string                 `json:"phone"`
	Answers   map[string]interface{} `json:"answers"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Submit validates a visitor's registration against the event's current
// form schema and records it. Answers for fields not in the schema are
// kept as-is: the stored answer set always reflects the form the visitor
// actually saw.
func (s *Service) Submit(eventSlug string, dto SubmitDTO) (*models.SubmissionModel, error) {
	var ev models.EventModel
	if err := s.db.Where("slug = ?", eventSlug).First(&ev).Error; err != nil {
		return nil, err
	}
	if !ev.IsPublished {
		return nil, ErrEventClosed
	}
	if ev.Capacity > 0 {
		var count int64
		if err := s.db.Model(&models.SubmissionModel{}).Where("event_id = ?", ev.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count >= int64(ev.Capacity) {
			return nil, ErrEventFull
		}
	}
	if missing := ev.FormSchema.MissingRequired(dto.Answers); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	sub := models.SubmissionModel{
		EventID:   ev.ID,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Email:     dto.Email,
		Phone:     dto.Phone,
		Answers:   dto.Answers,
	}
	if sub.Answers == nil {
		sub.Answers = map[string]interface{}{}
	}
	if err := s.db.Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Service) List(eventID string, q pagination.Query) ([]models.SubmissionModel, response.Pagination, error) {
	query := s.db.Model(&models.SubmissionModel{}).
		Where("event_id = ?", eventID).
		Order("created_at ASC")
	var subs []models.SubmissionModel
	p, err := pagination.Paginate(query, q, &subs)
	return subs, p, err
}

func (s *Service) Delete(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.SubmissionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Export flattens every submission for an event into CSV, resolving
// column labels through the event's current schema.
func (s *Service) Export(eventID string) (filename, csv string, err error) {
	var ev models.EventModel
	if err := s.db.Where("id = ?", eventID).First(&ev).Error; err != nil {
		return "", "", err
	}
	var subs []models.SubmissionModel
	if err := s.db.Where("event_id = ?", eventID).Order("created_at ASC").Find(&subs).Error; err != nil {
		return "", "", err
	}
	return export.Filename(ev.Slug), export.Flatten(ev.FormSchema, subs), nil
}

// Recipients returns registrant emails for an event, deduplicated,
// preserving first-seen order. The notify module uses this for bulk mail.
func (s *Service) Recipients(eventID string) ([]string, error) {
	var subs []models.SubmissionModel
	if err := s.db.Select("email").Where("event_id = ?", eventID).Order("created_at ASC").Find(&subs).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(subs))
	out := make([]string, 0, len(subs))
	for _, sub := range subs {
		addr := strings.ToLower(strings.TrimSpace(sub.Email))
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out, nil
}
