package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Aashish23092/vision-text-ocr/dto"
	"github.com/Aashish23092/vision-text-ocr/repository"
	"github.com/Aashish23092/vision-text-ocr/utils"
)

// Recognizer turns an image on disk into text. Failures are reported inside
// the returned Recognition, never as a separate error.
type Recognizer interface {
	Recognize(ctx context.Context, path, lang string) dto.Recognition
}

// Store hands out a pooled connection for one unit of work.
type Store interface {
	WithConnection(ctx context.Context, fn func(q repository.Querier) error) error
}

type Options struct {
	Language    string
	Concurrency int
}

// OCRService orchestrates uploads, recognition and persistence of OCR results.
type OCRService struct {
	recognizer  Recognizer
	store       Store
	temp        *utils.TempStore
	language    string
	concurrency int
	newName     func() string
	logger      *zap.Logger
}

func NewOCRService(recognizer Recognizer, store Store, temp *utils.TempStore, opts Options, logger *zap.Logger) *OCRService {
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &OCRService{
		recognizer:  recognizer,
		store:       store,
		temp:        temp,
		language:    opts.Language,
		concurrency: concurrency,
		newName:     uuid.NewString,
		logger:      logger,
	}
}

// ExtractText recognizes each image in turn without persisting anything.
// Every image's temp file is removed before the next image is read.
func (s *OCRService) ExtractText(ctx context.Context, files []*multipart.FileHeader) (*dto.ExtractTextResponse, error) {
	if len(files) == 0 {
		return nil, dto.ErrNoImages
	}
	start := time.Now()

	results := make([]dto.ImageText, 0, len(files))
	for _, fh := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", dto.ErrBatchAborted, err)
		}
		rec, err := s.extractOne(ctx, fh)
		if err != nil {
			return nil, err
		}
		results = append(results, dto.ImageText{Filename: fh.Filename, Recognition: rec})
	}

	elapsed := time.Since(start)
	s.logger.Info("extracted text", zap.Int("images", len(files)), zap.Duration("elapsed", elapsed))
	return &dto.ExtractTextResponse{Results: results, Elapsed: elapsed}, nil
}

func (s *OCRService) extractOne(ctx context.Context, fh *multipart.FileHeader) (rec dto.Recognition, err error) {
	path, err := s.saveUpload(fh)
	if err != nil {
		return dto.Recognition{}, err
	}
	defer func() {
		if rmErr := utils.RemoveIfExists(path); rmErr != nil {
			err = errors.Join(err, fmt.Errorf("remove temp file: %w", rmErr))
		}
	}()
	return s.recognizer.Recognize(ctx, path, s.language), nil
}

// ExtractAndSave writes every upload to the scratch dir, recognizes them all
// concurrently, then inserts the normalized texts in input order over a
// single connection. Rows whose insert returns nothing are skipped. Temp
// files are removed on every return path.
func (s *OCRService) ExtractAndSave(ctx context.Context, files []*multipart.FileHeader) (saved []dto.OCRResult, err error) {
	if len(files) == 0 {
		return nil, dto.ErrNoImages
	}
	start := time.Now()

	var paths []string
	defer func() {
		if cleanupErr := s.removeAll(paths); cleanupErr != nil {
			err = errors.Join(err, cleanupErr)
		}
	}()

	for _, fh := range files {
		path, err := s.saveUpload(fh)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	recs, err := s.recognizeAll(ctx, paths)
	if err != nil {
		s.logger.Warn("recognition batch aborted", zap.Int("images", len(paths)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", dto.ErrBatchAborted, err)
	}
	recognized := time.Since(start)

	saved = make([]dto.OCRResult, 0, len(recs))
	err = s.store.WithConnection(ctx, func(q repository.Querier) error {
		for i, rec := range recs {
			filename := files[i].Filename
			row, err := q.InsertOCRResult(ctx, filename, utils.NormalizeText(rec.Value()))
			if errors.Is(err, dto.ErrNotSaved) {
				s.logger.Warn("failed to save ocr result", zap.String("filename", filename), zap.Error(err))
				continue
			}
			if err != nil {
				return err
			}
			saved = append(saved, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("extracted and saved text",
		zap.Int("images", len(files)),
		zap.Int("saved", len(saved)),
		zap.Duration("recognition", recognized),
		zap.Duration("elapsed", time.Since(start)),
	)
	return saved, nil
}

// recognizeAll fans out one recognition per path, at most s.concurrency at a
// time, and returns results by input position. It fails only when ctx is
// cancelled before every recognition has finished.
func (s *OCRService) recognizeAll(ctx context.Context, paths []string) ([]dto.Recognition, error) {
	recs := make([]dto.Recognition, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs[i] = s.recognizer.Recognize(gctx, path, s.language)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *OCRService) saveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	path, err := s.temp.Save(src, fh.Filename, s.newName())
	if err != nil {
		return "", fmt.Errorf("save upload %q: %w", fh.Filename, err)
	}
	s.logger.Debug("image uploaded", zap.String("filename", fh.Filename), zap.String("path", path))
	return path, nil
}

func (s *OCRService) removeAll(paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := utils.RemoveIfExists(path); err != nil {
			s.logger.Error("failed to remove temp file", zap.String("path", path), zap.Error(err))
			errs = append(errs, fmt.Errorf("remove temp file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// List returns saved results newest first.
func (s *OCRService) List(ctx context.Context, page dto.Page) ([]dto.OCRResult, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	var results []dto.OCRResult
	err := s.store.WithConnection(ctx, func(q repository.Querier) error {
		var err error
		results, err = q.ListOCRResults(ctx, page)
		return err
	})
	return results, err
}

// Get returns dto.ErrNotFound when id does not exist.
func (s *OCRService) Get(ctx context.Context, id int64) (*dto.OCRResult, error) {
	var result *dto.OCRResult
	err := s.store.WithConnection(ctx, func(q repository.Querier) error {
		var err error
		result, err = q.GetOCRResultByID(ctx, id)
		return err
	})
	return result, err
}

// SaveText stores an already extracted text as-is.
func (s *OCRService) SaveText(ctx context.Context, req dto.SaveTextRequest) (*dto.OCRResult, error) {
	var result *dto.OCRResult
	err := s.store.WithConnection(ctx, func(q repository.Querier) error {
		var err error
		result, err = q.InsertOCRResult(ctx, req.Filename, req.Text())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("saved ocr result", zap.Int64("id", result.ID), zap.String("filename", result.Filename))
	return result, nil
}
