package handlers

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"lexscribe/internal/api/errors"
	"lexscribe/internal/app/orchestrator"
)

// form field names accepted for uploaded recordings
var fileFields = []string{"files", "files[]", "file"}

// audioFiles opens every uploaded recording in form order. The returned
// closer releases them and must be called once the submission is done.
func audioFiles(c *gin.Context) ([]orchestrator.AudioFile, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, errors.NewBadRequestError("Expected a multipart form with audio files")
	}

	var headers []*multipart.FileHeader
	for _, field := range fileFields {
		headers = append(headers, form.File[field]...)
	}
	if len(headers) == 0 {
		return nil, func() {}, errors.NewBadRequestError("No audio files uploaded")
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]orchestrator.AudioFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, errors.NewBadRequestError("Can't read uploaded file " + h.Filename)
		}
		opened = append(opened, f)
		files = append(files, orchestrator.AudioFile{
			Name:        h.Filename,
			Size:        h.Size,
			ContentType: h.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return files, closeAll, nil
}

// meetingType reads the meeting type form value
func meetingType(c *gin.Context) string {
	if v := c.PostForm("meetingType"); v != "" {
		return v
	}
	return c.PostForm("meeting_type")
}
