package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecognitionValue(t *testing.T) {
	ok := Recognized("temp/a.png", "hello")
	assert.True(t, ok.OK())
	assert.Equal(t, "hello", ok.Value())

	empty := Recognized("temp/blank.png", "")
	assert.True(t, empty.OK(), "an image without text is still a success")
	assert.Equal(t, "", empty.Value())

	failed := Failed("temp/b.png", errors.New("unsupported image format"))
	assert.False(t, failed.OK())
	assert.Equal(t, "[ERROR] Unable to process file: temp/b.png. Exception: unsupported image format", failed.Value())

	assert.False(t, Failed("temp/c.png", nil).OK())
	assert.False(t, Failed("temp/d.png", errors.New("")).OK())
}

func TestExtractTextResponseAsMap(t *testing.T) {
	resp := &ExtractTextResponse{
		Results: []ImageText{
			{Filename: "a.png", Recognition: Recognized("temp/1.png", "first")},
			{Filename: "b.png", Recognition: Failed("temp/2.png", errors.New("boom"))},
			{Filename: "a.png", Recognition: Recognized("temp/3.png", "second")},
		},
		Elapsed: 2456 * time.Millisecond,
	}

	m := resp.AsMap()

	assert.Len(t, m, 3)
	assert.Equal(t, "second", m["a.png"])
	assert.Equal(t, "[ERROR] Unable to process file: temp/2.png. Exception: boom", m["b.png"])
	assert.Equal(t, 2.46, m[TimeTakenKey])
}

func TestPageValidate(t *testing.T) {
	assert.NoError(t, DefaultPage().Validate())
	assert.NoError(t, Page{}.Validate())
	assert.ErrorIs(t, Page{Limit: -1}.Validate(), ErrInvalidPagination)
	assert.ErrorIs(t, Page{Offset: -1}.Validate(), ErrInvalidPagination)
}

func TestExtractTextResponseAsMap_TimingWinsOverFilename(t *testing.T) {
	resp := &ExtractTextResponse{
		Results: []ImageText{{Filename: TimeTakenKey, Recognition: Recognized("temp/1.png", "shadowed")}},
		Elapsed: 500 * time.Millisecond,
	}

	assert.Equal(t, map[string]any{TimeTakenKey: 0.5}, resp.AsMap())
}
