package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/slackbot-settings/internal/domain"
)

func TestStaffReplaceAllIsWholesale(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository()

	require.NoError(t, repo.ReplaceAll(ctx, []domain.StaffMember{
		{ID: "a", Name: "Jane Doe"},
		{ID: "b", Name: "John Roe"},
	}))
	require.NoError(t, repo.ReplaceAll(ctx, []domain.StaffMember{{ID: "c", Name: "Ann Lee"}}))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestStaffListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository()
	require.NoError(t, repo.ReplaceAll(ctx, []domain.StaffMember{{ID: "a", Name: "Jane"}}))

	got, _ := repo.List(ctx)
	got[0].Name = "changed"

	again, _ := repo.List(ctx)
	assert.Equal(t, "Jane", again[0].Name)
}

func TestThreadSummaryAndDeleteRange(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository()

	day := func(d int) time.Time { return time.Date(2025, 4, d, 12, 0, 0, 0, time.UTC) }
	n, err := repo.InsertMany(ctx, []domain.Thread{
		{ID: "1", Message: "hello", PostedAt: day(1)},
		{ID: "2", Message: "hi", Replies: []domain.Reply{{Text: "yo"}}, PostedAt: day(5)},
		{ID: "3", Message: "bye", PostedAt: day(9)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ThreadCount)
	assert.EqualValues(t, len("hello")+len("hi")+len("yo")+len("bye"), summary.UsageBytes)
	assert.True(t, summary.Earliest.Equal(day(1)))
	assert.True(t, summary.Latest.Equal(day(9)))

	deleted, err := repo.DeleteRange(ctx, day(1), day(5))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	summary, _ = repo.Summary(ctx)
	assert.Equal(t, 2, summary.ThreadCount)
}

func TestEmptySummary(t *testing.T) {
	summary, err := NewThreadRepository().Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.ThreadCount)
	assert.Nil(t, summary.Earliest)
}
