// Package tui is the terminal settings page. It follows the bubbletea
// model/update/view loop: network calls run as commands and report back
// as messages, so the roster editor is never touched from a blocked Update.
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spec-kit/slackbot-settings/internal/api/dto"
	"github.com/spec-kit/slackbot-settings/internal/backend"
	"github.com/spec-kit/slackbot-settings/internal/domain"
	"github.com/spec-kit/slackbot-settings/internal/roster"
)

// StorageBackend serves the storage and update-data panels.
type StorageBackend interface {
	FetchStorage(ctx context.Context) (dto.StorageStatsResponse, error)
	UploadExports(ctx context.Context, req backend.UploadRequest) (dto.UpdateDataResponse, error)
}

type promptKind int

const (
	promptNone promptKind = iota
	promptEditField
	promptUploadPaths
	promptDeleteRange
)

type rosterLoadedMsg struct{ err error }

type submitDoneMsg struct{ err error }

type noticeMsg roster.Notice

type statsMsg struct {
	stats dto.StorageStatsResponse
	err   error
}

type uploadDoneMsg struct {
	result dto.UpdateDataResponse
	err    error
}

// AppOption customizes App construction for tests.
type AppOption func(*App)

// WithFileOpener replaces os.Open for export uploads.
func WithFileOpener(open func(string) (io.ReadCloser, error)) AppOption {
	return func(a *App) {
		if open != nil {
			a.openFile = open
		}
	}
}

// WithTimeout bounds each backend call started from the page.
func WithTimeout(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// App is the settings page model.
type App struct {
	editor   *roster.Editor
	storage  StorageBackend
	notices  <-chan roster.Notice
	logger   *zap.Logger
	timeout  time.Duration
	openFile func(string) (io.ReadCloser, error)

	stats    dto.StorageStatsResponse
	statsErr string

	selected int
	field    int

	prompt promptKind
	input  textinput.Model

	// target of an open edit prompt, fixed when the prompt opens
	editID    string
	editField roster.Field

	status    string
	statusErr bool
	busy      string
	width     int
}

// NewApp builds the page. notices should be the channel the editor's
// notifier writes to.
func NewApp(editor *roster.Editor, storage StorageBackend, notices <-chan roster.Notice, logger *zap.Logger, opts ...AppOption) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	input := textinput.New()
	input.CharLimit = 1024

	a := &App{
		editor:  editor,
		storage: storage,
		notices: notices,
		logger:  logger,
		timeout: 30 * time.Second,
		openFile: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		input: input,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadRoster(), a.fetchStats(), a.waitForNotice())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.input.Width = max(20, msg.Width-8)
		return a, nil

	case rosterLoadedMsg:
		// Load failures are only logged; a stale load is expected after edits.
		if msg.err == nil {
			a.clampSelection()
		}
		return a, nil

	case submitDoneMsg:
		a.busy = ""
		if errors.Is(msg.err, roster.ErrSubmitInFlight) {
			a.setStatus("A submit is already in progress", true)
		}
		return a, nil

	case noticeMsg:
		a.setStatus(msg.Message, msg.Kind == roster.Failure)
		return a, a.waitForNotice()

	case statsMsg:
		if msg.err != nil {
			a.statsErr = "storage stats unavailable"
			return a, nil
		}
		a.statsErr = ""
		a.stats = msg.stats
		return a, nil

	case uploadDoneMsg:
		a.busy = ""
		if msg.err != nil {
			a.setStatus(describeError("Update failed", msg.err), true)
			return a, nil
		}
		a.setStatus(summarizeUpload(msg.result), len(msg.result.Skipped) > 0)
		return a, a.fetchStats()

	case tea.KeyMsg:
		if a.prompt != promptNone {
			return a.updatePrompt(msg)
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "e":
		mode := a.editor.ToggleEdit()
		a.field = 0
		if mode == roster.Editing {
			a.setStatus("Editing: write task categories separated by comma", false)
		} else {
			a.setStatus("", false)
		}
	case "up", "k":
		if a.selected > 0 {
			a.selected--
		}
	case "down", "j":
		if a.selected < a.editor.Len()-1 {
			a.selected++
		}
	case "tab":
		if a.editor.Mode() == roster.Editing {
			a.field = (a.field + 1) % len(roster.Fields)
		}
	case "enter":
		if !a.requireEditing() {
			return a, nil
		}
		member, ok := a.selectedMember()
		if !ok {
			return a, nil
		}
		a.editID = member.ID
		a.editField = roster.Fields[a.field]
		return a, a.openPrompt(promptEditField, string(a.editField), fieldValue(member, a.editField))
	case "a":
		if !a.requireEditing() {
			return a, nil
		}
		a.editor.AddEntry()
		a.selected = a.editor.Len() - 1
		a.field = 0
	case "d":
		if !a.requireEditing() {
			return a, nil
		}
		member, ok := a.selectedMember()
		if !ok {
			return a, nil
		}
		if err := a.editor.DeleteEntryByID(member.ID); err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.clampSelection()
	case "s":
		a.busy = "Saving staff list..."
		return a, a.submit()
	case "r":
		return a, a.loadRoster()
	case "g":
		return a, a.fetchStats()
	case "u":
		return a, a.openPrompt(promptUploadPaths, "export files (comma separated)", "")
	case "x":
		return a, a.openPrompt(promptDeleteRange, "delete from to (YYYY-MM-DD YYYY-MM-DD)", "")
	}
	return a, nil
}

func (a *App) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.closePrompt()
		return a, nil
	case tea.KeyEnter:
		kind, value, id, field := a.prompt, a.input.Value(), a.editID, a.editField
		a.closePrompt()
		if kind == promptEditField {
			a.commitEdit(id, field, value)
			return a, nil
		}
		return a, a.commitPrompt(kind, value)
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) commitPrompt(kind promptKind, value string) tea.Cmd {
	switch kind {
	case promptUploadPaths:
		files, err := a.readExports(value)
		if err != nil {
			a.setStatus(err.Error(), true)
			return nil
		}
		if len(files) == 0 {
			return nil
		}
		a.busy = fmt.Sprintf("Uploading %d file(s)...", len(files))
		return a.upload(backend.UploadRequest{Files: files})
	case promptDeleteRange:
		from, to, err := parseRange(value)
		if err != nil {
			a.setStatus(err.Error(), true)
			return nil
		}
		a.busy = "Deleting messages..."
		return a.upload(backend.UploadRequest{DeleteFrom: from, DeleteTo: to})
	}
	return nil
}

// commitEdit writes to the member the prompt was opened on, even if a reload
// has moved it to another row since.
func (a *App) commitEdit(id string, field roster.Field, value string) {
	if err := a.editor.UpdateFieldByID(id, field, value); err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			a.setStatus("Edit discarded: "+err.Error(), true)
			return
		}
		a.setStatus(err.Error(), true)
	}
}

func (a *App) openPrompt(kind promptKind, placeholder, value string) tea.Cmd {
	a.prompt = kind
	a.input.Placeholder = placeholder
	a.input.SetValue(value)
	a.input.CursorEnd()
	return a.input.Focus()
}

func (a *App) closePrompt() {
	a.prompt = promptNone
	a.editID = ""
	a.editField = ""
	a.input.Blur()
	a.input.Reset()
}

func (a *App) requireEditing() bool {
	if a.editor.Mode() != roster.Editing {
		a.setStatus("Press e to edit staff information", false)
		return false
	}
	return true
}

func (a *App) selectedMember() (domain.StaffMember, bool) {
	snap := a.editor.Snapshot()
	if len(snap) == 0 {
		return domain.StaffMember{}, false
	}
	a.clampSelection()
	return snap[a.selected], true
}

func fieldValue(m domain.StaffMember, field roster.Field) string {
	switch field {
	case roster.FieldAccountID:
		return m.AccountID
	case roster.FieldTasks:
		return m.Tasks
	default:
		return m.Name
	}
}

func (a *App) clampSelection() {
	n := a.editor.Len()
	if a.selected >= n {
		a.selected = n - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

// readExports loads every path into memory so files are closed before the
// upload command runs.
func (a *App) readExports(value string) ([]backend.UploadFile, error) {
	var files []backend.UploadFile
	for _, path := range strings.Split(value, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		f, err := a.openFile(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		raw, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, backend.UploadFile{Name: filepath.Base(path), Content: bytes.NewReader(raw)})
	}
	return files, nil
}

func (a *App) loadRoster() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		return rosterLoadedMsg{err: a.editor.Load(ctx)}
	}
}

func (a *App) submit() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		return submitDoneMsg{err: a.editor.Submit(ctx)}
	}
}

func (a *App) fetchStats() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		stats, err := a.storage.FetchStorage(ctx)
		if err != nil {
			a.logger.Warn("storage stats failed", zap.Error(err))
		}
		return statsMsg{stats: stats, err: err}
	}
}

func (a *App) upload(req backend.UploadRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		result, err := a.storage.UploadExports(ctx, req)
		if err != nil {
			a.logger.Error("update data failed", zap.Error(err))
		}
		return uploadDoneMsg{result: result, err: err}
	}
}

func (a *App) waitForNotice() tea.Cmd {
	if a.notices == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-a.notices
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func parseRange(value string) (time.Time, time.Time, error) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, errors.New("enter two dates: YYYY-MM-DD YYYY-MM-DD")
	}
	from, err := time.Parse(time.DateOnly, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q", parts[0])
	}
	to, err := time.Parse(time.DateOnly, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q", parts[1])
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, errors.New("start date is after end date")
	}
	return from, to, nil
}

func summarizeUpload(r dto.UpdateDataResponse) string {
	var parts []string
	if len(r.Files) > 0 {
		parts = append(parts, fmt.Sprintf("Imported %d thread(s) from %d file(s)", r.Imported, len(r.Files)))
	}
	if r.Deleted > 0 {
		parts = append(parts, fmt.Sprintf("deleted %d thread(s)", r.Deleted))
	}
	if len(r.Skipped) > 0 {
		parts = append(parts, "skipped "+strings.Join(r.Skipped, ", "))
	}
	if len(parts) == 0 {
		return "Nothing to update"
	}
	return strings.Join(parts, "; ")
}

func describeError(prefix string, err error) string {
	var rerr *backend.RejectedError
	switch {
	case errors.As(err, &rerr) && rerr.Message != "":
		return fmt.Sprintf("%s: %s", prefix, rerr.Message)
	case backend.IsNetworkFailure(err):
		return prefix + ": backend unreachable"
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}
