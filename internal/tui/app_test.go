package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/slackbot-settings/internal/api/dto"
	"github.com/spec-kit/slackbot-settings/internal/backend"
	"github.com/spec-kit/slackbot-settings/internal/domain"
	"github.com/spec-kit/slackbot-settings/internal/roster"
)

type stubStore struct {
	mu        sync.Mutex
	staff     []domain.StaffMember
	submitErr error
	submitted [][]domain.StaffMember
}

func (s *stubStore) FetchStaff(ctx context.Context) ([]domain.StaffMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.StaffMember(nil), s.staff...), nil
}

func (s *stubStore) ReplaceStaff(ctx context.Context, members []domain.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, members)
	return s.submitErr
}

type stubStorage struct {
	stats     dto.StorageStatsResponse
	statsErr  error
	result    dto.UpdateDataResponse
	uploadErr error
	requests  []backend.UploadRequest
	contents  []string
}

func (s *stubStorage) FetchStorage(ctx context.Context) (dto.StorageStatsResponse, error) {
	return s.stats, s.statsErr
}

func (s *stubStorage) UploadExports(ctx context.Context, req backend.UploadRequest) (dto.UpdateDataResponse, error) {
	s.requests = append(s.requests, req)
	for _, f := range req.Files {
		raw, _ := io.ReadAll(f.Content)
		s.contents = append(s.contents, string(raw))
	}
	return s.result, s.uploadErr
}

type harness struct {
	app      *App
	store    *stubStore
	storage  *stubStorage
	notifier *roster.ChanNotifier
}

func newHarness(t *testing.T, opts ...AppOption) *harness {
	t.Helper()
	store := &stubStore{staff: []domain.StaffMember{
		{ID: "a", Name: "Jane Doe", AccountID: "U123", Tasks: "Scholarships"},
		{ID: "b", Name: "John Roe", AccountID: "U456", Tasks: "Billing"},
	}}
	storage := &stubStorage{}
	notifier := roster.NewChanNotifier(4)
	editor := roster.NewEditor(store, notifier, zap.NewNop())
	app := NewApp(editor, storage, notifier.C, zap.NewNop(), opts...)
	return &harness{app: app, store: store, storage: storage, notifier: notifier}
}

func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	model, cmd := h.app.Update(msg)
	app, ok := model.(*App)
	require.True(t, ok, "unexpected model type %T", model)
	h.app = app
	return cmd
}

// run executes cmd and feeds its message back into Update.
func (h *harness) run(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	return h.send(t, cmd())
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	h.run(t, h.app.loadRoster())
	require.Equal(t, 2, h.app.editor.Len())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEditTasksField(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.send(t, key("e"))
	require.Equal(t, roster.Editing, h.app.editor.Mode())
	h.send(t, key("tab"))
	h.send(t, key("tab"))
	h.send(t, key("enter"))
	require.Equal(t, promptEditField, h.app.prompt)
	assert.Equal(t, "Scholarships", h.app.input.Value())

	h.app.input.SetValue("Scholarships, Account Recovery")
	h.send(t, key("enter"))

	assert.Equal(t, promptNone, h.app.prompt)
	snap := h.app.editor.Snapshot()
	assert.Equal(t, domain.StaffMember{ID: "a", Name: "Jane Doe", AccountID: "U123", Tasks: "Scholarships, Account Recovery"}, snap[0])
	assert.Equal(t, "Billing", snap[1].Tasks)
}

func TestEscCancelsEdit(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.send(t, key("e"))
	h.send(t, key("down"))
	h.send(t, key("enter"))
	h.app.input.SetValue("Someone Else")
	h.send(t, key("esc"))

	assert.Equal(t, promptNone, h.app.prompt)
	assert.Equal(t, "John Roe", h.app.editor.Snapshot()[1].Name)
}

func openEditOnSecondRow(t *testing.T, h *harness) {
	t.Helper()
	h.store.staff = append(h.store.staff, domain.StaffMember{ID: "c", Name: "Ana Poe", AccountID: "U789", Tasks: "Account Recovery"})
	h.run(t, h.app.loadRoster())
	require.Equal(t, 3, h.app.editor.Len())

	h.send(t, key("e"))
	h.send(t, key("down"))
	h.send(t, key("enter"))
	require.Equal(t, promptEditField, h.app.prompt)
	require.Equal(t, "John Roe", h.app.input.Value())
}

func TestEditCommitsToMemberAfterReloadShiftsRows(t *testing.T) {
	h := newHarness(t)
	openEditOnSecondRow(t, h)

	h.store.staff = h.store.staff[1:]
	h.run(t, h.app.loadRoster())
	require.Equal(t, 2, h.app.editor.Len())

	h.app.input.SetValue("Jon Roe")
	h.send(t, key("enter"))

	snap := h.app.editor.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, domain.StaffMember{ID: "b", Name: "Jon Roe", AccountID: "U456", Tasks: "Billing"}, snap[0])
	assert.Equal(t, domain.StaffMember{ID: "c", Name: "Ana Poe", AccountID: "U789", Tasks: "Account Recovery"}, snap[1])
	assert.False(t, h.app.statusErr)
}

func TestEditOfRemovedMemberReportsNotFound(t *testing.T) {
	h := newHarness(t)
	openEditOnSecondRow(t, h)

	h.store.staff = []domain.StaffMember{h.store.staff[0], h.store.staff[2]}
	h.run(t, h.app.loadRoster())

	h.app.input.SetValue("Jon Roe")
	h.send(t, key("enter"))

	assert.True(t, h.app.statusErr)
	assert.Contains(t, h.app.status, roster.ErrNotFound.Error())
	for _, m := range h.app.editor.Snapshot() {
		assert.NotEqual(t, "Jon Roe", m.Name)
	}
}

func TestDeleteTargetsSelectedMember(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.send(t, key("e"))
	h.send(t, key("down"))

	h.send(t, key("d"))

	snap := h.app.editor.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "a", snap[0].ID)
}

func TestMutationsRequireEditMode(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.send(t, key("a"))
	h.send(t, key("d"))

	assert.Equal(t, 2, h.app.editor.Len())
	assert.Contains(t, h.app.status, "Press e")
}

func TestAddAndDelete(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.send(t, key("e"))

	h.send(t, key("a"))
	h.send(t, key("a"))
	require.Equal(t, 4, h.app.editor.Len())
	assert.Equal(t, 3, h.app.selected)

	h.send(t, key("d"))
	assert.Equal(t, 3, h.app.editor.Len())
	assert.Equal(t, 2, h.app.selected)

	h.send(t, key("up"))
	h.send(t, key("up"))
	h.send(t, key("d"))
	snap := h.app.editor.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].ID)
}

func TestSubmitSuccessShowsNotice(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	cmd := h.send(t, key("s"))
	assert.NotEmpty(t, h.app.busy)
	h.run(t, cmd)
	h.run(t, h.app.waitForNotice())

	assert.Empty(t, h.app.busy)
	assert.False(t, h.app.statusErr)
	assert.Equal(t, "Staff list saved!", h.app.status)
	require.Len(t, h.store.submitted, 1)
	assert.Len(t, h.store.submitted[0], 2)
}

func TestSubmitFailureShowsOneErrorNotice(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.store.submitErr = &backend.RejectedError{Op: "replace staff", StatusCode: 500}

	h.run(t, h.send(t, key("s")))
	h.run(t, h.app.waitForNotice())

	assert.True(t, h.app.statusErr)
	assert.Equal(t, "Error saving staff list", h.app.status)
	assert.Empty(t, h.notifier.C)
	assert.Equal(t, 2, h.app.editor.Len())
}

func TestStatsRendered(t *testing.T) {
	h := newHarness(t)
	h.storage.stats = dto.StorageStatsResponse{DateRange: "04/05/2025 - 04/10/2025", AWSUsage: "12 kB", ThreadCount: 2, LastUpload: "04/12/2025"}

	h.run(t, h.app.fetchStats())

	view := h.app.View()
	assert.Contains(t, view, "04/05/2025 - 04/10/2025")
	assert.Contains(t, view, "12 kB")
	assert.Contains(t, view, "04/12/2025")
}

func TestStatsFailure(t *testing.T) {
	h := newHarness(t)
	h.storage.statsErr = errors.New("down")

	h.run(t, h.app.fetchStats())

	assert.Contains(t, h.app.View(), "storage stats unavailable")
}

func TestUploadExports(t *testing.T) {
	opened := []string{}
	h := newHarness(t, WithFileOpener(func(path string) (io.ReadCloser, error) {
		opened = append(opened, path)
		return io.NopCloser(strings.NewReader("[]")), nil
	}))
	h.storage.result = dto.UpdateDataResponse{Imported: 3, Files: []string{"a.json", "b.json"}, Skipped: []string{}}

	h.send(t, key("u"))
	require.Equal(t, promptUploadPaths, h.app.prompt)
	h.app.input.SetValue("exports/a.json, exports/b.json")
	cmd := h.send(t, key("enter"))
	next := h.run(t, cmd)

	assert.Equal(t, []string{"exports/a.json", "exports/b.json"}, opened)
	require.Len(t, h.storage.requests, 1)
	req := h.storage.requests[0]
	require.Len(t, req.Files, 2)
	assert.Equal(t, "a.json", req.Files[0].Name)
	assert.True(t, req.DeleteFrom.IsZero())
	assert.Equal(t, []string{"[]", "[]"}, h.storage.contents)
	assert.Equal(t, "Imported 3 thread(s) from 2 file(s)", h.app.status)
	assert.NotNil(t, next, "stats refresh expected after upload")
}

func TestUploadOpenFailure(t *testing.T) {
	h := newHarness(t, WithFileOpener(func(path string) (io.ReadCloser, error) {
		return nil, errors.New("no such file")
	}))

	h.send(t, key("u"))
	h.app.input.SetValue("missing.json")
	cmd := h.send(t, key("enter"))

	assert.Nil(t, cmd)
	assert.True(t, h.app.statusErr)
	assert.Empty(t, h.storage.requests)
}

func TestDeleteRange(t *testing.T) {
	h := newHarness(t)
	h.storage.result = dto.UpdateDataResponse{Deleted: 4}

	h.send(t, key("x"))
	h.app.input.SetValue("2025-04-01 2025-04-03")
	h.run(t, h.send(t, key("enter")))

	require.Len(t, h.storage.requests, 1)
	req := h.storage.requests[0]
	assert.Empty(t, req.Files)
	assert.Equal(t, "2025-04-01", req.DeleteFrom.Format("2006-01-02"))
	assert.Equal(t, "2025-04-03", req.DeleteTo.Format("2006-01-02"))
	assert.Equal(t, "deleted 4 thread(s)", h.app.status)
}

func TestDeleteRangeRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	for _, input := range []string{"2025-04-01", "2025-04-03 2025-04-01", "yesterday today"} {
		h.send(t, key("x"))
		h.app.input.SetValue(input)
		cmd := h.send(t, key("enter"))
		assert.Nil(t, cmd, input)
		assert.True(t, h.app.statusErr, input)
	}
	assert.Empty(t, h.storage.requests)
}

func TestUploadRejectedShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.storage.uploadErr = &backend.RejectedError{StatusCode: 400, Message: "deleteFrom must be YYYY-MM-DD"}

	h.send(t, key("x"))
	h.app.input.SetValue("2025-04-01 2025-04-03")
	h.run(t, h.send(t, key("enter")))

	assert.True(t, h.app.statusErr)
	assert.Equal(t, "Update failed: deleteFrom must be YYYY-MM-DD", h.app.status)
}
