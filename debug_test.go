package canopy

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with os.Stderr redirected and returns what it wrote.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	defer func() { os.Stderr = oldStderr }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	cx := New(WithDebug(true))
	output := captureStderr(t, func() {
		current := Root
		for range debugMaxTreeDepth + 5 {
			next, err := cx.AddChild(current)
			if err != nil {
				t.Fatal(err)
			}
			current = next
		}
	})
	if !strings.Contains(output, "warning: tree depth") {
		t.Errorf("expected tree depth warning in stderr, got: %q", output)
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	cx := New(WithDebug(true))
	parent, _ := cx.AddChild(Root)
	output := captureStderr(t, func() {
		for range debugMaxChildCount + 1 {
			cx.AddChild(parent)
		}
	})
	if !strings.Contains(output, "warning: entity") || !strings.Contains(output, "children") {
		t.Errorf("expected child count warning in stderr, got: %q", output)
	}
}

func TestDebugMode_CycleOutput(t *testing.T) {
	cx := New(WithDebug(true), WithViewport(100, 100))
	cx.AddChild(Root)
	output := captureStderr(t, func() { cx.Update(0) })
	for _, want := range []string{"[canopy] cycle 1", "layout:", "resolved: 2"} {
		if !strings.Contains(output, want) {
			t.Errorf("stderr missing %q, got: %q", want, output)
		}
	}
}

func TestDebugMode_StyleWarnings(t *testing.T) {
	cx := New(WithDebug(true))
	output := captureStderr(t, func() {
		if _, err := cx.AddStyleSheet(`button { frobnicate: 1px; }`); err != nil {
			t.Fatal(err)
		}
		cx.Entity(Root).Style("width: wide")
	})
	if !strings.Contains(output, "frobnicate") {
		t.Errorf("expected unknown property warning, got: %q", output)
	}
	if !strings.Contains(output, "inline style") {
		t.Errorf("expected inline style warning, got: %q", output)
	}
}

func TestReleaseMode_Silent(t *testing.T) {
	cx := New()
	output := captureStderr(t, func() {
		current := Root
		for range debugMaxTreeDepth + 5 {
			current, _ = cx.AddChild(current)
		}
		cx.Emit(NewEvent(ping{}).To(Entity{index: 999, generation: 3}))
		cx.Update(0)
	})
	if output != "" {
		t.Errorf("release mode wrote to stderr: %q", output)
	}
}

func TestSetDebugMode(t *testing.T) {
	cx := New()
	cx.SetDebugMode(true)
	output := captureStderr(t, func() {
		cx.Emit(NewEvent(ping{}).To(Entity{index: 999, generation: 3}))
		cx.Update(0)
	})
	if !strings.Contains(output, "dropped: stale target") {
		t.Errorf("expected stale target warning, got: %q", output)
	}
}

func TestCycleStats(t *testing.T) {
	var seen []CycleStats
	cx := New(WithViewport(100, 100), WithObserver(ObserverFunc(func(s CycleStats) {
		seen = append(seen, s)
	})))
	cx.AddChild(Root)
	cx.AddChild(Root)

	s1 := cx.Update(0)
	if s1.Cycle != 1 {
		t.Errorf("Cycle = %d, want 1", s1.Cycle)
	}
	if s1.Entities != 3 {
		t.Errorf("Entities = %d, want 3", s1.Entities)
	}
	if s1.Resolved != 3 {
		t.Errorf("Resolved = %d, want 3", s1.Resolved)
	}
	if s1.Geometry != 3 || s1.LaidOut != 3 {
		t.Errorf("Geometry = %d, LaidOut = %d, want 3 and 3", s1.Geometry, s1.LaidOut)
	}
	if s1.TotalTime <= 0 {
		t.Error("TotalTime should be positive")
	}

	s2 := cx.Update(0)
	if s2.Events != 3 {
		t.Errorf("second cycle Events = %d, want the 3 GeometryChanged", s2.Events)
	}
	if s2.Resolved != 0 || s2.Geometry != 0 {
		t.Errorf("second cycle Resolved = %d, Geometry = %d, want 0", s2.Resolved, s2.Geometry)
	}
	if len(seen) != 2 || seen[1] != s2 {
		t.Errorf("observer saw %d cycles", len(seen))
	}
	if cx.LastStats() != s2 {
		t.Error("LastStats should return the last cycle")
	}
}
