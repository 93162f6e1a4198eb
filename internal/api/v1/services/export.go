package services

import (
	"context"
	"io"

	"lexscribe/internal/api/errors"
	"lexscribe/internal/app/export"
	"lexscribe/internal/app/model"
)

const (
	exportPageSize = 200
	exportMaxJobs  = 10000
)

// JobLister pages through a user's jobs
type JobLister interface {
	ListJobs(ctx context.Context, userID string, limit, offset int) ([]model.TranscriptionJob, int, error)
}

// ExportServiceImpl implements the ExportService interface
type ExportServiceImpl struct {
	jobs JobLister
}

// NewExportService creates a new export service
func NewExportService(jobs JobLister) ExportService {
	return &ExportServiceImpl{
		jobs: jobs,
	}
}

// ExportTranscriptions writes the user's jobs as an xlsx workbook
func (s *ExportServiceImpl) ExportTranscriptions(ctx context.Context, userID string, writer io.Writer) error {
	var all []model.TranscriptionJob
	for offset := 0; offset < exportMaxJobs; offset += exportPageSize {
		page, total, err := s.jobs.ListJobs(ctx, userID, exportPageSize, offset)
		if err != nil {
			return errors.FromDomain(err, false)
		}
		all = append(all, page...)
		if len(page) < exportPageSize || len(all) >= total {
			break
		}
	}

	if err := export.ToExcel(writer, all); err != nil {
		return errors.NewInternalError("Failed to export transcriptions")
	}
	return nil
}
