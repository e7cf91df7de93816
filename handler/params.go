package handler

import (
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/vision-text-ocr/dto"
)

// imagesField is the multipart field carrying uploads. The lowercase form is
// accepted too.
const imagesField = "Images"

func uploadedImages(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	files := form.File[imagesField]
	if len(files) == 0 {
		files = form.File["images"]
	}
	if len(files) == 0 {
		return nil, dto.ErrNoImages
	}
	return files, nil
}

// pageFromQuery reads limit and offset, falling back to the defaults.
func pageFromQuery(c *gin.Context) (dto.Page, error) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(dto.DefaultPageLimit)))
	if err != nil {
		return dto.Page{}, fmt.Errorf("limit: %w", dto.ErrInvalidPagination)
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", strconv.Itoa(dto.DefaultPageOffset)))
	if err != nil {
		return dto.Page{}, fmt.Errorf("offset: %w", dto.ErrInvalidPagination)
	}
	page := dto.Page{Limit: limit, Offset: offset}
	return page, page.Validate()
}

func idFromPath(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
