package reminders

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type call struct {
	name string
	args []string
}

func recordRunner(calls *[]call, err error) commandRunner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, call{name: name, args: args})
		return err
	}
}

func helpText(text string, err error) commandOutput {
	return func(context.Context, string, ...string) (string, error) { return text, err }
}

const modernHelp = "  -r, --replace-id=REPLACE_ID  The ID of the notification to replace."

func TestDesktopNotifierLinuxReplacesByID(t *testing.T) {
	var calls []call
	d := &DesktopNotifier{goos: "linux", run: recordRunner(&calls, nil), output: helpText(modernHelp, nil)}
	if err := d.Notify(context.Background(), Notification{ID: 101, Title: "Bins", Body: "Due today"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(calls) != 1 || calls[0].name != "notify-send" {
		t.Fatalf("unexpected calls: %#v", calls)
	}
	got := strings.Join(calls[0].args, " ")
	if got != "-a choresd -r 101 Bins Due today" {
		t.Fatalf("unexpected args: %q", got)
	}
}

func TestDesktopNotifierOldNotifySendPostsWithoutReplace(t *testing.T) {
	cases := []struct {
		name   string
		output commandOutput
	}{
		{"no replace flag", helpText("  -u, --urgency=LEVEL\n  -a, --app-name=APP_NAME", nil)},
		{"help fails", helpText("", errors.New("exit 1"))},
	}
	for _, tc := range cases {
		var calls []call
		probed := 0
		output := func(ctx context.Context, name string, args ...string) (string, error) {
			probed++
			return tc.output(ctx, name, args...)
		}
		d := &DesktopNotifier{goos: "linux", run: recordRunner(&calls, nil), output: output}
		for _, id := range []int{101, 102} {
			if err := d.Notify(context.Background(), Notification{ID: id, Title: "Bins", Body: "Due today"}); err != nil {
				t.Fatalf("%s: notify: %v", tc.name, err)
			}
		}
		if got := strings.Join(calls[0].args, " "); got != "-a choresd Bins Due today" {
			t.Fatalf("%s: unexpected args %q", tc.name, got)
		}
		if probed != 1 {
			t.Fatalf("%s: help should be read once, read %d times", tc.name, probed)
		}
	}
}

func TestDesktopNotifierDarwinEscapes(t *testing.T) {
	var calls []call
	d := &DesktopNotifier{goos: "darwin", run: recordRunner(&calls, nil)}
	if err := d.Notify(context.Background(), Notification{ID: 1, Title: `Say "hi"`, Body: "x"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if calls[0].name != "osascript" || !strings.Contains(calls[0].args[1], `with title "Say \"hi\""`) {
		t.Fatalf("unexpected script: %#v", calls[0])
	}
}

func TestDesktopNotifierWrapsFailureAndIgnoresOtherPlatforms(t *testing.T) {
	var calls []call
	d := &DesktopNotifier{goos: "linux", run: recordRunner(&calls, errors.New("exit 1")), output: helpText(modernHelp, nil)}
	if err := d.Notify(context.Background(), Notification{ID: 7}); err == nil || !strings.Contains(err.Error(), "notification 7") {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	calls = nil
	d = &DesktopNotifier{goos: "plan9", run: recordRunner(&calls, nil)}
	if err := d.Notify(context.Background(), Notification{ID: 7}); err != nil || len(calls) != 0 {
		t.Fatalf("expected silent no-op, got %v %d", err, len(calls))
	}
}

func TestDesktopPermission(t *testing.T) {
	found := func(string) (string, error) { return "/usr/bin/x", nil }
	missing := func(string) (string, error) { return "", errors.New("not found") }

	cases := []struct {
		name string
		perm DesktopPermission
		want bool
	}{
		{"disabled", DesktopPermission{Enabled: false, goos: "linux", lookPath: found}, false},
		{"linux found", DesktopPermission{Enabled: true, goos: "linux", lookPath: found}, true},
		{"linux missing", DesktopPermission{Enabled: true, goos: "linux", lookPath: missing}, false},
		{"unsupported", DesktopPermission{Enabled: true, goos: "windows", lookPath: found}, false},
	}
	for _, tc := range cases {
		got, err := tc.perm.Granted(context.Background())
		if err != nil || got != tc.want {
			t.Fatalf("%s: got %v, %v", tc.name, got, err)
		}
	}
}

func TestRecordingNotifierKeepsLatestPerID(t *testing.T) {
	rec := NewRecordingNotifier()
	ctx := context.Background()
	_ = rec.Notify(ctx, Notification{ID: 102, Body: "old"})
	_ = rec.Notify(ctx, Notification{ID: 101, Body: "a"})
	_ = rec.Notify(ctx, Notification{ID: 102, Body: "new"})

	active := rec.Active()
	if len(active) != 2 || active[0].ID != 101 || active[1].Body != "new" {
		t.Fatalf("unexpected active set: %#v", active)
	}
}
