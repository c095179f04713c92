package notify

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConsoleWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Notify(Error, "db exploded")
	c.Notify(Success, "saved")

	out := buf.String()
	if !strings.Contains(out, "db exploded") || !strings.Contains(out, "saved") {
		t.Errorf("output = %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected one line per notification, got %q", out)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	if _, ok := r.Last(); ok {
		t.Fatal("expected empty recorder")
	}

	r.Notify(Info, "a")
	r.Notify(Warning, "b")
	r.Notify(Warning, "c")

	if len(r.All()) != 3 {
		t.Errorf("all = %d", len(r.All()))
	}
	if r.Count(Warning) != 2 {
		t.Errorf("warnings = %d", r.Count(Warning))
	}
	last, _ := r.Last()
	if last.Message != "c" {
		t.Errorf("last = %+v", last)
	}
}

func TestMulti(t *testing.T) {
	var a, b Recorder
	Multi(&a, &b).Notify(Info, "x")
	if a.Count(Info) != 1 || b.Count(Info) != 1 {
		t.Error("expected both recorders notified")
	}
}

func TestReported(t *testing.T) {
	base := errors.New("boom")
	if WasReported(base) {
		t.Fatal("plain error should not be reported")
	}

	rep := Reported(base)
	if !WasReported(rep) {
		t.Fatal("expected reported")
	}
	if !errors.Is(rep, base) {
		t.Error("reported error should unwrap to base")
	}

	wrapped := fmt.Errorf("loading: %w", rep)
	if !WasReported(wrapped) {
		t.Error("wrapping should keep the reported mark")
	}
	if Reported(rep) != rep {
		t.Error("double wrap should be a no-op")
	}
	if Reported(nil) != nil {
		t.Error("nil stays nil")
	}
}
