package reminders

import (
	"context"
	"fmt"
	"maps"
	"os/exec"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Notifier posts a notification. Posting an ID that is already showing
// replaces it.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// PermissionChecker reports whether notifications may be posted right now.
type PermissionChecker interface {
	Granted(ctx context.Context) (bool, error)
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Notification) error { return nil }

type AlwaysGranted struct{}

func (AlwaysGranted) Granted(context.Context) (bool, error) { return true, nil }

// RecordingNotifier keeps the latest notification per ID in memory.
type RecordingNotifier struct {
	mu     sync.Mutex
	byID   map[int]Notification
	posted []int
	Err    error
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{byID: make(map[int]Notification)}
}

func (r *RecordingNotifier) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.byID[n.ID] = n
	r.posted = append(r.posted, n.ID)
	return nil
}

// Active returns the notifications currently showing, ordered by ID.
func (r *RecordingNotifier) Active() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := slices.Sorted(maps.Keys(r.byID))
	out := make([]Notification, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}

// Posted returns every ID passed to Notify, in call order.
func (r *RecordingNotifier) Posted() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.posted)
}

type commandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

type commandOutput func(ctx context.Context, name string, args ...string) (string, error)

func commandCombinedOutput(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// DesktopNotifier posts through notify-send on Linux and osascript on macOS.
// Other platforms are silently ignored. notify-send older than libnotify
// 0.7.9 has no --replace-id; there posts still go out but do not replace.
type DesktopNotifier struct {
	goos   string
	run    commandRunner
	output commandOutput

	replaceOnce sync.Once
	canReplace  bool
}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{goos: runtime.GOOS, run: runCommand, output: commandCombinedOutput}
}

// supportsReplace asks notify-send --help once whether -r is understood.
func (d *DesktopNotifier) supportsReplace(ctx context.Context) bool {
	d.replaceOnce.Do(func() {
		help, err := d.output(ctx, "notify-send", "--help")
		d.canReplace = err == nil && strings.Contains(help, "--replace-id")
	})
	return d.canReplace
}

func (d *DesktopNotifier) Notify(ctx context.Context, n Notification) error {
	var err error
	switch d.goos {
	case "linux":
		args := []string{"-a", "choresd"}
		if d.supportsReplace(ctx) {
			args = append(args, "-r", strconv.Itoa(n.ID))
		}
		err = d.run(ctx, "notify-send", append(args, n.Title, n.Body)...)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		err = d.run(ctx, "osascript", "-e", script)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("reminders: post notification %d: %w", n.ID, err)
	}
	return nil
}

// DesktopPermission grants when desktop notifications are enabled and the
// platform's notification binary can be found.
type DesktopPermission struct {
	Enabled  bool
	goos     string
	lookPath func(string) (string, error)
}

func NewDesktopPermission(enabled bool) DesktopPermission {
	return DesktopPermission{Enabled: enabled, goos: runtime.GOOS, lookPath: exec.LookPath}
}

func (p DesktopPermission) Granted(context.Context) (bool, error) {
	if !p.Enabled {
		return false, nil
	}
	var bin string
	switch p.goos {
	case "linux":
		bin = "notify-send"
	case "darwin":
		bin = "osascript"
	default:
		return false, nil
	}
	if _, err := p.lookPath(bin); err != nil {
		return false, nil
	}
	return true, nil
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

