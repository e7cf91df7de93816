package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Aashish23092/vision-text-ocr/dto"
	"github.com/Aashish23092/vision-text-ocr/repository"
)

type FeedbackService struct {
	store  Store
	logger *zap.Logger
}

func NewFeedbackService(store Store, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{store: store, logger: logger}
}

// Submit stores a comment. dto.ErrNotSaved means the insert returned no row.
func (s *FeedbackService) Submit(ctx context.Context, comment string) (*dto.Feedback, error) {
	var fb *dto.Feedback
	err := s.store.WithConnection(ctx, func(q repository.Querier) error {
		var err error
		fb, err = q.InsertFeedback(ctx, comment)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("feedback received", zap.Int64("id", fb.ID), zap.Int("length", len(fb.Comment)))
	return fb, nil
}

func (s *FeedbackService) List(ctx context.Context, page dto.Page) ([]dto.Feedback, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	var out []dto.Feedback
	err := s.store.WithConnection(ctx, func(q repository.Querier) error {
		var err error
		out, err = q.ListFeedback(ctx, page)
		return err
	})
	return out, err
}
