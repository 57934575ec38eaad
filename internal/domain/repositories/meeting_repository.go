package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ActionItemsMutation receives the locked meeting and returns the new
// action item encoding to persist
type ActionItemsMutation func(meeting *entities.Meeting) (datatypes.JSON, error)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// Update updates an existing meeting
	Update(ctx context.Context, meeting *entities.Meeting) error

	// Delete removes a meeting
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves every meeting matching filters, newest meeting date first
	List(ctx context.Context, filters MeetingFilters) ([]*entities.Meeting, error)

	// CountByUser counts meetings owned by a user
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// FindRecent retrieves a user's meetings with the latest meeting dates
	FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error)

	// MutateActionItems runs mutate with the meeting row locked and persists
	// the returned action items in the same transaction
	MutateActionItems(ctx context.Context, id uuid.UUID, mutate ActionItemsMutation) (*entities.Meeting, error)
}

// MeetingFilters represents filter options for listing meetings
type MeetingFilters struct {
	UserID   uuid.UUID
	Search   string // Search in title, minutes
	Company  string
	DateFrom *time.Time // inclusive
	DateTo   *time.Time // inclusive day
}
