package canopy

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrExpectation is wrapped by the ScriptError of a failed expect step.
var ErrExpectation = errors.New("canopy: expectation failed")

// scriptStep represents a single action in a script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Key    string  `json:"key,omitempty"`
	Mods   string  `json:"mods,omitempty"`
	Text   string  `json:"text,omitempty"`

	// expect
	ID      string   `json:"id,omitempty"`
	Left    *float64 `json:"left,omitempty"`
	Top     *float64 `json:"top,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Focused *bool    `json:"focused,omitempty"`
	Hovered *bool    `json:"hovered,omitempty"`

	mods KeyModifiers
}

// script is the top-level JSON structure for a script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptError reports a failed or malformed script step.
type ScriptError struct {
	Step   int // zero-based
	Action string
	Label  string
	Err    error
}

func (e *ScriptError) Error() string {
	name := e.Action
	if e.Label != "" {
		name += " " + e.Label
	}
	return fmt.Sprintf("script step %d (%s): %v", e.Step, name, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// ScriptRunner sequences injected input and geometry expectations across
// cycles for headless testing. Attach to a Context via SetScriptRunner.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// LoadScript parses a JSON script and returns a ScriptRunner ready to be
// attached to a Context via SetScriptRunner.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		var err error
		switch st.Action {
		case "move", "press", "release", "click", "drag", "scroll", "text", "wait":
		case "key":
			if st.Key == "" {
				err = errors.New("missing key")
			}
		case "expect":
			if st.ID == "" {
				err = errors.New("missing id")
			}
		default:
			err = fmt.Errorf("unknown action %q", st.Action)
		}
		if err == nil && st.Action == "key" {
			st.mods, err = parseModifiers(st.Mods)
		}
		if err != nil {
			return nil, &ScriptError{Step: i, Action: st.Action, Label: st.Label, Err: err}
		}
	}
	return &ScriptRunner{steps: s.Steps}, nil
}

// SetScriptRunner attaches a ScriptRunner. Its step method runs at the
// start of every Update, before injected input is consumed.
func (cx *Context) SetScriptRunner(r *ScriptRunner) {
	cx.script = r
}

// Done reports whether all steps in the script have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Errors returns the failed expectations so far.
func (r *ScriptRunner) Errors() []error {
	return r.errs
}

// Err joins the failed expectations, or returns nil.
func (r *ScriptRunner) Err() error {
	return errors.Join(r.errs...)
}

// Run attaches r to cx and updates cx with a fixed dt until the script is
// done or maxCycles cycles ran.
func (r *ScriptRunner) Run(cx *Context, dt time.Duration, maxCycles int) error {
	cx.SetScriptRunner(r)
	defer cx.SetScriptRunner(nil)
	for range maxCycles {
		if r.done {
			return r.Err()
		}
		cx.Update(dt)
	}
	if !r.done {
		return errors.Join(append(r.errs, fmt.Errorf("script: not done after %d cycles", maxCycles))...)
	}
	return r.Err()
}

// step advances the runner by one cycle. Called from Context.Update.
func (r *ScriptRunner) step(cx *Context) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(cx.inject) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	i := r.cursor
	st := r.steps[i]
	r.cursor++

	switch st.Action {
	case "move":
		cx.InjectMove(st.X, st.Y)
	case "press":
		cx.InjectPress(st.X, st.Y)
	case "release":
		cx.InjectRelease(st.X, st.Y)
	case "click":
		cx.InjectClick(st.X, st.Y)
	case "drag":
		cx.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "scroll":
		cx.InjectScroll(st.DX, st.DY)
	case "key":
		cx.InjectKey(Key(st.Key), st.mods)
	case "text":
		cx.InjectText(st.Text)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this cycle counts as one
		}
	case "expect":
		if err := expect(cx, &st); err != nil {
			r.errs = append(r.errs, &ScriptError{Step: i, Action: st.Action, Label: st.Label, Err: err})
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(cx.inject) == 0 {
		r.done = true
	}
}

const expectTolerance = 0.01

func expect(cx *Context, st *scriptStep) error {
	e, ok := cx.style.FindByID(st.ID)
	if !ok {
		return fmt.Errorf("%w: no entity with id %q", ErrExpectation, st.ID)
	}
	b, _ := cx.Bounds(e)
	var diffs []string
	check := func(name string, want *float64, got float64) {
		if want != nil && math.Abs(*want-got) > expectTolerance {
			diffs = append(diffs, fmt.Sprintf("%s = %g, want %g", name, got, *want))
		}
	}
	check("left", st.Left, b.X)
	check("top", st.Top, b.Y)
	check("width", st.Width, b.W)
	check("height", st.Height, b.H)
	if st.Focused != nil && (cx.Focused() == e) != *st.Focused {
		diffs = append(diffs, fmt.Sprintf("focused = %t, want %t", cx.Focused() == e, *st.Focused))
	}
	if st.Hovered != nil {
		hovered := cx.style.Pseudo(e)&PseudoHover != 0
		if hovered != *st.Hovered {
			diffs = append(diffs, fmt.Sprintf("hovered = %t, want %t", hovered, *st.Hovered))
		}
	}
	if len(diffs) > 0 {
		return fmt.Errorf("%w: #%s: %s", ErrExpectation, st.ID, strings.Join(diffs, ", "))
	}
	return nil
}

// parseModifiers parses "shift+ctrl" style modifier lists.
func parseModifiers(s string) (KeyModifiers, error) {
	var mods KeyModifiers
	if s == "" {
		return 0, nil
	}
	for _, name := range strings.Split(s, "+") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "shift":
			mods |= ModShift
		case "ctrl", "control":
			mods |= ModCtrl
		case "alt", "option":
			mods |= ModAlt
		case "meta", "cmd", "super":
			mods |= ModMeta
		default:
			return 0, fmt.Errorf("unknown modifier %q", name)
		}
	}
	return mods, nil
}
