package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/vision-text-ocr/dto"
	"github.com/Aashish23092/vision-text-ocr/repository"
)

// memoryStore is an in-memory Store whose Querier records every statement.
type memoryStore struct {
	mu       sync.Mutex
	rows     []dto.OCRResult
	feedback []dto.Feedback
	nextID   int64
	clock    time.Time

	dropFilenames map[string]bool
	insertErr     error
	feedbackErr   error

	acquired int
	released int
	inserts  []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{clock: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
}

func (m *memoryStore) WithConnection(ctx context.Context, fn func(q repository.Querier) error) error {
	m.mu.Lock()
	m.acquired++
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.released++
		m.mu.Unlock()
	}()
	return fn(m)
}

func (m *memoryStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memoryStore) InsertOCRResult(ctx context.Context, filename, text string) (*dto.OCRResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts = append(m.inserts, filename)
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if m.dropFilenames[filename] {
		return nil, fmt.Errorf("insert ocr result %q: %w", filename, dto.ErrNotSaved)
	}
	m.nextID++
	row := dto.OCRResult{ID: m.nextID, Filename: filename, ExtractedText: text, CreatedAt: m.tick()}
	m.rows = append(m.rows, row)
	return &row, nil
}

func (m *memoryStore) ListOCRResults(ctx context.Context, page dto.Page) ([]dto.OCRResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := append([]dto.OCRResult(nil), m.rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	return window(sorted, page), nil
}

func (m *memoryStore) GetOCRResultByID(ctx context.Context, id int64) (*dto.OCRResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, fmt.Errorf("ocr result %d: %w", id, dto.ErrNotFound)
}

func (m *memoryStore) InsertFeedback(ctx context.Context, comment string) (*dto.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.feedbackErr != nil {
		return nil, m.feedbackErr
	}
	m.nextID++
	fb := dto.Feedback{ID: m.nextID, Comment: comment, CreatedAt: m.tick()}
	m.feedback = append(m.feedback, fb)
	return &fb, nil
}

func (m *memoryStore) ListFeedback(ctx context.Context, page dto.Page) ([]dto.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := append([]dto.Feedback(nil), m.feedback...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	return window(sorted, page), nil
}

func window[T any](items []T, page dto.Page) []T {
	out := []T{}
	if page.Offset >= len(items) {
		return out
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return append(out, items[page.Offset:end]...)
}

// contentRecognizer "recognizes" the file's contents. A file whose content
// starts with "corrupt" fails; "slow:" delays the result.
type contentRecognizer struct {
	mu          sync.Mutex
	dir         string
	delay       time.Duration
	waitForCtx  bool
	started     chan struct{}
	inFlight    int
	maxInFlight int
	maxFiles    int
	langs       []string
}

func (r *contentRecognizer) Recognize(ctx context.Context, path, lang string) dto.Recognition {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	r.langs = append(r.langs, lang)
	if r.dir != "" {
		if entries, err := os.ReadDir(r.dir); err == nil && len(entries) > r.maxFiles {
			r.maxFiles = len(entries)
		}
	}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inFlight--
		r.mu.Unlock()
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return dto.Failed(path, err)
	}
	content := string(data)

	if r.started != nil {
		select {
		case r.started <- struct{}{}:
		default:
		}
	}
	if r.waitForCtx {
		<-ctx.Done()
		return dto.Failed(path, ctx.Err())
	}
	if strings.HasPrefix(content, "slow:") {
		time.Sleep(50 * time.Millisecond)
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if strings.HasPrefix(content, "corrupt") {
		return dto.Failed(path, errors.New("image format not supported"))
	}
	return dto.Recognized(path, "\n  text of "+content+"\r\n")
}

// upload is one file in a multipart request.
type upload struct {
	name    string
	content string
}

func multipartFiles(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile("Images", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["Images"]
}

func saveRequest(filename, text string) dto.SaveTextRequest {
	return dto.SaveTextRequest{Filename: filename, ExtractedText: &text}
}
