package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/summary"
)

// SheetName is the worksheet holding the job rows
const SheetName = "Transcriptions"

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxCellRunes is the longest text a spreadsheet cell accepts
const maxCellRunes = 32767

var header = []string{
	"ID",
	"Meeting Type",
	"Status",
	"Created At",
	"Completed At",
	"Audio Duration (s)",
	"Files",
	"Transcript",
	"Summary",
	"Error",
}

// ToExcel writes jobs as a single-sheet workbook
func ToExcel(w io.Writer, jobs []model.TranscriptionJob) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return apperrors.Wrap(err, "can't create sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().Value = h
	}

	for _, job := range jobs {
		row := sheet.AddRow()
		row.AddCell().Value = job.ID
		row.AddCell().Value = string(job.MeetingType)
		row.AddCell().Value = string(job.Status)
		row.AddCell().Value = job.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = formatTime(job.CompletedAt)
		row.AddCell().Value = fmt.Sprintf("%.2f", job.DurationSeconds)
		row.AddCell().Value = fmt.Sprint(len(job.AudioFileURLs))
		row.AddCell().Value = truncate(summary.ExtractText(job.Content))
		row.AddCell().Value = truncate(job.Summary)
		row.AddCell().Value = errorText(job)
	}

	if err := file.Write(w); err != nil {
		return apperrors.Wrap(err, "can't write workbook")
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func errorText(job model.TranscriptionJob) string {
	if job.FailureReason == "" {
		return job.ErrorDetails
	}
	if job.ErrorDetails == "" {
		return job.FailureReason
	}
	return job.FailureReason + ": " + job.ErrorDetails
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellRunes {
		return s
	}
	return strings.TrimSpace(string(r[:maxCellRunes-3])) + "..."
}

// FileName returns the download name of a user's export
func FileName(at time.Time) string {
	return "transcriptions-" + at.UTC().Format("20060102-150405") + ".xlsx"
}
