package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/domain/repositories"
)

// meetingRepository implements the MeetingRepository interface
type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create creates a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by its ID
func (r *meetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&meeting).Error

	if err != nil {
		return nil, translate(err)
	}
	return &meeting, nil
}

// Update updates an existing meeting
func (r *meetingRepository) Update(ctx context.Context, meeting *entities.Meeting) error {
	return r.db.WithContext(ctx).Save(meeting).Error
}

// Delete removes a meeting
func (r *meetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entities.Meeting{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// List retrieves meetings with filters
func (r *meetingRepository) List(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting

	query := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("user_id = ?", filters.UserID)

	if filters.Search != "" {
		searchPattern := fmt.Sprintf("%%%s%%", filters.Search)
		query = query.Where("title ILIKE ? OR minutes ILIKE ?", searchPattern, searchPattern)
	}
	if filters.Company != "" {
		query = query.Where("company = ?", filters.Company)
	}
	if filters.DateFrom != nil {
		query = query.Where("meeting_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("meeting_date < ?", filters.DateTo.AddDate(0, 0, 1))
	}

	err := query.Order("meeting_date DESC").Find(&meetings).Error
	return meetings, err
}

// CountByUser counts meetings owned by a user
func (r *meetingRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// FindRecent retrieves a user's meetings with the latest meeting dates
func (r *meetingRepository) FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("meeting_date DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&meetings).Error
	return meetings, err
}

// MutateActionItems locks the meeting row for the duration of the
// read-modify-write so concurrent toggles are applied one after another
func (r *meetingRepository) MutateActionItems(ctx context.Context, id uuid.UUID, mutate repositories.ActionItemsMutation) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&meeting).Error; err != nil {
			return translate(err)
		}

		items, err := mutate(&meeting)
		if err != nil {
			return err
		}

		meeting.ActionItems = items
		return tx.Model(&meeting).
			Update("action_items", items).Error
	})
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}
