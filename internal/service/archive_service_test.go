package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/slackbot-settings/internal/cache"
	"github.com/spec-kit/slackbot-settings/internal/events"
	"github.com/spec-kit/slackbot-settings/internal/repository/memory"
	apperrors "github.com/spec-kit/slackbot-settings/pkg/util/errorutil"
)

const channelExport = `[
  {"message": {"ts": "1743850800.000100", "user": "U1", "text": "How do I reset my password?"},
   "replies": [{"ts": "1743851000.000200", "text": "Use the account recovery form."}]},
  {"message": {"ts": "1744282800.000100", "text": "Scholarship deadline?"}, "replies": []},
  {"replies": [{"text": "orphan reply"}]},
  {"message": {"ts": "not-a-ts", "text": "unreadable"}}
]`

func newArchiveService(t *testing.T) (*ArchiveService, *cache.Local) {
	t.Helper()
	marker := cache.NewLocal(0)
	svc := NewArchiveService(ArchiveDependencies{
		ThreadRepo: memory.NewThreadRepository(),
		Marker:     marker,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	svc.now = func() time.Time { return time.Date(2025, 4, 10, 15, 0, 0, 0, time.UTC) }
	return svc, marker
}

func TestDecodeExport(t *testing.T) {
	threads, err := DecodeExport(strings.NewReader(channelExport))
	require.NoError(t, err)
	require.Len(t, threads, 2)

	assert.Equal(t, "How do I reset my password?", threads[0].Message)
	assert.Equal(t, "U1", threads[0].User)
	assert.Equal(t, 1, threads[0].ReplyCount)
	assert.Equal(t, "Use the account recovery form.", threads[0].Replies[0].Text)
	assert.True(t, time.Date(2025, 4, 5, 11, 0, 0, 100000, time.UTC).Equal(threads[0].PostedAt))
	assert.NotEmpty(t, threads[0].ID)
	assert.Zero(t, threads[1].ReplyCount)
}

func TestDecodeExportRejectsNonArray(t *testing.T) {
	_, err := DecodeExport(strings.NewReader(`{"message": {}}`))
	assert.Error(t, err)
}

func TestImportSkipsBadFiles(t *testing.T) {
	ctx := context.Background()
	svc, marker := newArchiveService(t)

	result, err := svc.Import(ctx, []ExportFile{
		{Name: "general.json", Content: strings.NewReader(channelExport)},
		{Name: "broken.json", Content: strings.NewReader(`[{"message":`)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"general.json"}, result.Files)
	assert.Equal(t, []string{"broken.json"}, result.Skipped)
	assert.Equal(t, 2, result.Imported)
	require.NotNil(t, result.LastUpload)

	at, err := marker.LastUpload(ctx)
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.True(t, at.Equal(*result.LastUpload))
}

func TestImportNothingLeavesMarker(t *testing.T) {
	ctx := context.Background()
	svc, marker := newArchiveService(t)

	result, err := svc.Import(ctx, []ExportFile{{Name: "bad.json", Content: strings.NewReader("nope")}})
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Nil(t, result.LastUpload)

	at, _ := marker.LastUpload(ctx)
	assert.Nil(t, at)
}

func TestDeleteRangeIncludesLastDay(t *testing.T) {
	ctx := context.Background()
	svc, _ := newArchiveService(t)
	_, err := svc.Import(ctx, []ExportFile{{Name: "general.json", Content: strings.NewReader(channelExport)}})
	require.NoError(t, err)

	// Threads were posted on 2025-04-05 and 2025-04-10.
	deleted, err := svc.DeleteRange(ctx,
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ThreadCount)
	assert.Equal(t, "04/10/2025 - 04/10/2025", stats.DateRange)
}

func TestDeleteRangeRejectsInvertedRange(t *testing.T) {
	svc, _ := newArchiveService(t)

	_, err := svc.DeleteRange(context.Background(),
		time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestStatsOnEmptyArchive(t *testing.T) {
	svc, _ := newArchiveService(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats.DateRange)
	assert.Equal(t, "0 B", stats.Usage)
	assert.Nil(t, stats.LastUpload)
}

func TestStatsAfterImport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newArchiveService(t)
	_, err := svc.Import(ctx, []ExportFile{{Name: "general.json", Content: strings.NewReader(channelExport)}})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ThreadCount)
	assert.Equal(t, "04/05/2025 - 04/10/2025", stats.DateRange)
	assert.Positive(t, stats.UsageBytes)
	require.NotNil(t, stats.LastUpload)
	assert.Equal(t, "04/10/2025", stats.LastUpload.Format("01/02/2006"))
}
