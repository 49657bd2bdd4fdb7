package handlers

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/slackbot-settings/internal/api/dto"
	"github.com/spec-kit/slackbot-settings/internal/domain"
	"github.com/spec-kit/slackbot-settings/internal/service"
	apperrors "github.com/spec-kit/slackbot-settings/pkg/util/errorutil"
)

const exportField = "jsonExport"

// StorageHandler serves the storage panel: stats, export upload, range delete.
type StorageHandler struct {
	archive *service.ArchiveService
}

// NewStorageHandler constructs handler.
func NewStorageHandler(archive *service.ArchiveService) *StorageHandler {
	return &StorageHandler{archive: archive}
}

// Stats handles GET /api/db.
func (h *StorageHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.archive.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.StorageStatsResponse{
		DateRange:   stats.DateRange,
		AWSUsage:    stats.Usage,
		UsageBytes:  stats.UsageBytes,
		ThreadCount: stats.ThreadCount,
		LastUpload:  formatDay(stats.LastUpload),
	})
}

// Update handles multipart POST /api/db. The delete range runs before the
// import so freshly uploaded threads are never removed by the same request.
func (h *StorageHandler) Update(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart/form-data body required", nil)
	}

	from, to, hasRange, err := parseDeleteRange(form)
	if err != nil {
		return err
	}

	resp := dto.UpdateDataResponse{Files: []string{}, Skipped: []string{}}
	ctx := c.UserContext()

	if hasRange {
		deleted, err := h.archive.DeleteRange(ctx, from, to)
		if err != nil {
			return err
		}
		resp.Deleted = deleted
	}

	headers := form.File[exportField]
	if len(headers) > 0 {
		files := make([]service.ExportFile, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				resp.Skipped = append(resp.Skipped, fh.Filename)
				continue
			}
			defer f.Close()
			files = append(files, service.ExportFile{Name: fh.Filename, Content: f})
		}

		result, err := h.archive.Import(ctx, files)
		if err != nil {
			return err
		}
		resp.Imported = result.Imported
		resp.Files = result.Files
		resp.Skipped = append(resp.Skipped, result.Skipped...)
		resp.LastUpload = formatDay(result.LastUpload)
	}

	return c.JSON(resp)
}

func parseDeleteRange(form *multipart.Form) (time.Time, time.Time, bool, error) {
	rawFrom := strings.TrimSpace(firstValue(form, "deleteFrom"))
	rawTo := strings.TrimSpace(firstValue(form, "deleteTo"))
	if rawFrom == "" && rawTo == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if rawFrom == "" || rawTo == "" {
		return time.Time{}, time.Time{}, false, apperrors.NewValidationError("deleteFrom and deleteTo must be provided together", nil)
	}

	from, err := time.Parse(time.DateOnly, rawFrom)
	if err != nil {
		return time.Time{}, time.Time{}, false, apperrors.NewValidationError("deleteFrom must be YYYY-MM-DD", map[string]any{"deleteFrom": rawFrom})
	}
	to, err := time.Parse(time.DateOnly, rawTo)
	if err != nil {
		return time.Time{}, time.Time{}, false, apperrors.NewValidationError("deleteTo must be YYYY-MM-DD", map[string]any{"deleteTo": rawTo})
	}
	return from, to, true, nil
}

func firstValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(domain.DisplayDateLayout)
}
