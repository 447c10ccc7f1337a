package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/templui/goaltracker/internal/model"
	"github.com/templui/goaltracker/internal/storage"
)

var ErrCoversDisabled = errors.New("cover uploads are not configured")

// CoverService stores goal cover images and points the goal's imageUrl at them.
type CoverService struct {
	storage storage.Storage
}

// NewCoverService accepts a nil storage, in which case uploads are disabled.
func NewCoverService(storage storage.Storage) *CoverService {
	return &CoverService{storage: storage}
}

func (s *CoverService) Enabled() bool {
	return s.storage != nil
}

// Upload saves the image and sets it as the goal's cover. The previous cover
// is removed when it lives in the same bucket.
func (s *CoverService) Upload(ctx context.Context, store *GoalStore, goalID, filename, contentType string, file io.Reader) (*model.Goal, error) {
	if !s.Enabled() {
		return nil, ErrCoversDisabled
	}

	goal, err := store.Goal(goalID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	storagePath := fmt.Sprintf("covers/%s/%s/%s%s", store.UserID(), goalID, uuid.NewString(), ext)

	err = s.storage.Save(ctx, storagePath, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save cover: %w", err)
	}

	url := s.storage.URL(storagePath)
	updated, err := store.UpdateGoal(ctx, goalID, model.GoalPatch{ImageURL: &url})
	if err != nil {
		// Goal update failed, try to cleanup the uploaded file
		delErr := s.storage.Delete(ctx, storagePath)
		if delErr != nil {
			slog.Error("failed to delete cover during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, err
	}

	if old, ok := s.ownedPath(goal.ImageURL); ok {
		delErr := s.storage.Delete(ctx, old)
		if delErr != nil {
			slog.Warn("failed to delete previous cover", "error", delErr, "path", old)
		}
	}

	return updated, nil
}

// ownedPath maps a URL produced by this storage back to its object key.
func (s *CoverService) ownedPath(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	prefix := s.storage.URL("")
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
