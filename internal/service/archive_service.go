package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/slackbot-settings/internal/cache"
	"github.com/spec-kit/slackbot-settings/internal/domain"
	"github.com/spec-kit/slackbot-settings/internal/events"
	"github.com/spec-kit/slackbot-settings/internal/observability"
	"github.com/spec-kit/slackbot-settings/internal/repository"
	apperrors "github.com/spec-kit/slackbot-settings/pkg/util/errorutil"
)

// ArchiveService manages the stored Slack message exports.
type ArchiveService struct {
	threads    repository.ThreadRepository
	marker     cache.UploadMarker
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ArchiveDependencies bundles collaborators for the archive service.
type ArchiveDependencies struct {
	ThreadRepo repository.ThreadRepository
	Marker     cache.UploadMarker
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// ExportFile is one uploaded Slack channel export.
type ExportFile struct {
	Name    string
	Content io.Reader
}

// ImportResult summarises an Import call.
type ImportResult struct {
	Files      []string
	Imported   int
	Skipped    []string
	LastUpload *time.Time
}

// NewArchiveService constructs the service.
func NewArchiveService(deps ArchiveDependencies) *ArchiveService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveService{
		threads:    deps.ThreadRepo,
		marker:     deps.Marker,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Import decodes and stores every export file. Files that cannot be decoded
// are skipped and reported; the rest are still imported.
func (s *ArchiveService) Import(ctx context.Context, files []ExportFile) (ImportResult, error) {
	result := ImportResult{Files: []string{}, Skipped: []string{}}
	var threads []domain.Thread

	for _, f := range files {
		decoded, err := DecodeExport(f.Content)
		if err != nil {
			s.logger.Warn("skipping export file", zap.String("file", f.Name), zap.Error(err))
			result.Skipped = append(result.Skipped, f.Name)
			continue
		}
		result.Files = append(result.Files, f.Name)
		threads = append(threads, decoded...)
	}

	n, err := s.threads.InsertMany(ctx, threads)
	if err != nil {
		return ImportResult{}, apperrors.MapError(err)
	}
	result.Imported = n
	s.metrics.RecordImported(n)

	if len(result.Files) > 0 {
		at := s.now().UTC()
		if s.marker != nil {
			if err := s.marker.MarkUpload(ctx, at); err != nil {
				s.logger.Warn("could not record upload time", zap.Error(err))
			}
		}
		result.LastUpload = &at

		publishEvent(ctx, s.dispatcher, s.logger, events.EventExportsImported, events.ExportsImportedPayload{
			Files:   result.Files,
			Threads: n,
			Skipped: result.Skipped,
		})
	}
	return result, nil
}

// DeleteRange removes threads posted on any day from from through to inclusive.
func (s *ArchiveService) DeleteRange(ctx context.Context, from, to time.Time) (int64, error) {
	from = truncateDay(from)
	to = truncateDay(to)
	if from.After(to) {
		return 0, apperrors.NewValidationError("deleteFrom must not be after deleteTo", map[string]any{
			"deleteFrom": from.Format(time.DateOnly),
			"deleteTo":   to.Format(time.DateOnly),
		})
	}

	deleted, err := s.threads.DeleteRange(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.EventMessagesDeleted, events.MessagesDeletedPayload{
		From:    from,
		To:      to,
		Deleted: deleted,
	})
	return deleted, nil
}

// Stats reports what the storage panel shows.
func (s *ArchiveService) Stats(ctx context.Context) (domain.StorageStats, error) {
	summary, err := s.threads.Summary(ctx)
	if err != nil {
		return domain.StorageStats{}, apperrors.MapError(err)
	}

	stats := domain.StorageStats{
		ThreadCount: summary.ThreadCount,
		UsageBytes:  summary.UsageBytes,
		Usage:       humanize.Bytes(uint64(max(summary.UsageBytes, 0))),
	}
	if summary.Earliest != nil && summary.Latest != nil {
		stats.DateRange = fmt.Sprintf("%s - %s",
			summary.Earliest.UTC().Format(domain.DisplayDateLayout),
			summary.Latest.UTC().Format(domain.DisplayDateLayout))
	}
	if s.marker != nil {
		at, err := s.marker.LastUpload(ctx)
		if err != nil {
			s.logger.Warn("could not read upload time", zap.Error(err))
		}
		stats.LastUpload = at
	}
	return stats, nil
}

type exportMessage struct {
	Ts   string `json:"ts"`
	User string `json:"user"`
	Text string `json:"text"`
}

type exportThread struct {
	Message *exportMessage `json:"message"`
	Replies []domain.Reply `json:"replies"`
}

// DecodeExport reads a channel export: a JSON array of {message, replies}.
// Entries without a message or with an unreadable ts are ignored.
func DecodeExport(r io.Reader) ([]domain.Thread, error) {
	var raw []exportThread
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	threads := make([]domain.Thread, 0, len(raw))
	for _, entry := range raw {
		if entry.Message == nil {
			continue
		}
		posted, ok := domain.ParseSlackTs(entry.Message.Ts)
		if !ok {
			continue
		}
		replies := make([]domain.Reply, 0, len(entry.Replies))
		for _, r := range entry.Replies {
			replies = append(replies, domain.Reply{Ts: r.Ts, User: r.User, Text: r.Text})
		}
		threads = append(threads, domain.Thread{
			ID:         uuid.NewString(),
			ThreadTs:   entry.Message.Ts,
			User:       entry.Message.User,
			Message:    entry.Message.Text,
			Replies:    replies,
			ReplyCount: len(replies),
			PostedAt:   posted,
		})
	}
	return threads, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
