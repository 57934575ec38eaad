package meeting

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/domain/repositories"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	usecaseErrors "github.com/johnquangdev/meeting-minutes/internal/usecase/errors"
)

// ToggleResult is the outcome of a toggle
type ToggleResult struct {
	IsDone   bool
	Counters actionitem.Counters
}

// BulkResult is the outcome of a bulk completion update
type BulkResult struct {
	Updated  []int
	Counters actionitem.Counters
	Done     bool
}

// ToggleActionItem flips the completion of the item at index. The
// read-modify-write runs under the repository's row lock.
func (s *Service) ToggleActionItem(ctx context.Context, userID, id uuid.UUID, index int) (*ToggleResult, error) {
	var result ToggleResult
	err := s.mutate(ctx, userID, id, func(items []entities.ActionItem) ([]entities.ActionItem, error) {
		updated, done, err := s.store.Toggle(items, index)
		if err != nil {
			return nil, err
		}
		result = ToggleResult{IsDone: done, Counters: s.store.Counters(updated)}
		return updated, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("meeting.action_item.toggled",
		zap.String("meeting_id", id.String()),
		zap.Int("index", index),
		zap.Bool("is_done", result.IsDone),
	)
	return &result, nil
}

// BulkSetActionItems sets the completion of every addressed item to done
func (s *Service) BulkSetActionItems(ctx context.Context, userID, id uuid.UUID, indices []int, done bool) (*BulkResult, error) {
	var result BulkResult
	err := s.mutate(ctx, userID, id, func(items []entities.ActionItem) ([]entities.ActionItem, error) {
		updated, applied := s.store.BulkSet(items, indices, done)
		result = BulkResult{Updated: applied, Counters: s.store.Counters(updated), Done: done}
		return updated, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("meeting.action_items.bulk_updated",
		zap.String("meeting_id", id.String()),
		zap.Ints("updated", result.Updated),
		zap.Bool("done", done),
	)
	return &result, nil
}

func (s *Service) mutate(ctx context.Context, userID, id uuid.UUID, fn func([]entities.ActionItem) ([]entities.ActionItem, error)) error {
	_, err := s.repo.MutateActionItems(ctx, id, func(m *entities.Meeting) (datatypes.JSON, error) {
		if m.UserID != userID {
			return nil, usecaseErrors.ErrNotMeetingOwner
		}
		updated, err := fn(actionitem.Parse(m.ActionItems))
		if err != nil {
			return nil, err
		}
		raw, err := actionitem.Encode(updated)
		if err != nil {
			return nil, fmt.Errorf("failed to encode action items: %w", err)
		}
		return datatypes.JSON(raw), nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return usecaseErrors.ErrMeetingNotFound
	}
	return err
}
