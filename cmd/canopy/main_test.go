package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/canopy"
)

const testScene = `
config:
  viewport: {width: 200, height: 100}
  stylesheets: [app.css]
style: |
  .half { width: 50%; }
root:
  style: "layout-type: row"
  children:
    - element: button
      id: ok
      class: [btn]
      focusable: true
    - element: panel
      class: [half]
      children:
        - id: gone
          style: "display: none"
`

const testSheet = `
.btn { width: 80px; background-color: #336699; }
@keyframes pulse { from { opacity: 0; } to { opacity: 1; } }
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadSceneAndBuild(t *testing.T) {
	dir := writeFiles(t, map[string]string{"scene.yaml": testScene, "app.css": testSheet})
	sc, err := loadScene(filepath.Join(dir, "scene.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app.css"), sc.Config.StyleSheets[0])
	// Unset config keys keep their defaults.
	assert.True(t, sc.Config.TabNavigation)

	cx, err := sc.Build()
	require.NoError(t, err)
	cx.Update(0)

	ok, found := cx.Style().FindByID("ok")
	require.True(t, found)
	assert.Equal(t, "button", cx.Style().Element(ok))
	assert.True(t, cx.IsFocusable(ok))
	b, _ := cx.Bounds(ok)
	assert.Equal(t, canopy.Bounds{W: 80, H: 100}, b)

	panel := cx.Tree().Children(canopy.Root)[1]
	b, _ = cx.Bounds(panel)
	assert.Equal(t, canopy.Bounds{X: 80, W: 100, H: 100}, b)
	assert.Equal(t, "panel.half", label(cx, panel))
	assert.Equal(t, "button#ok.btn", label(cx, ok))
}

func TestSceneErrors(t *testing.T) {
	tests := []struct {
		name, scene, want string
	}{
		{"bad yaml", "root: [", "parse scene"},
		{"negative viewport", "config: {viewport: {width: -1, height: 1}}", "negative viewport"},
		{"bad style", "root: {children: [{style: 'width: wide'}]}", "root.children[0]: style"},
		{"duplicate id", "root: {children: [{id: a}, {id: a}]}", `duplicate id "a"`},
		{"bad embedded style", "style: '.x { width: wide; }'", "embedded style"},
		{"unknown animation", "root: {children: [{animate: spin}]}", `unknown animation "spin"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := parseScene([]byte(tt.scene))
			if err == nil {
				_, err = sc.Build()
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSceneAnimate(t *testing.T) {
	sc, err := parseScene([]byte(`
config: {viewport: {width: 100, height: 100}, keyframe_duration: 1s}
style: "@keyframes grow { from { width: 0px; } to { width: 100px; } }"
root:
  children:
    - id: bar
      animate: grow
`))
	require.NoError(t, err)
	cx, err := sc.Build()
	require.NoError(t, err)
	cx.Update(500 * time.Millisecond)
	bar, _ := cx.Style().FindByID("bar")
	b, _ := cx.Bounds(bar)
	assert.InDelta(t, 50, b.W, 0.01)
}

func TestLayoutCommandTree(t *testing.T) {
	dir := writeFiles(t, map[string]string{"scene.yaml": testScene, "app.css": testSheet})
	out, err := execute(t, "layout", filepath.Join(dir, "scene.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "root (0, 0, 200 x 100)")
	assert.Contains(t, out, "button#ok.btn (0, 0, 80 x 100)")
	assert.Contains(t, out, "panel.half (80, 0, 100 x 100)")
	assert.Contains(t, out, "display: none")
	assert.NotContains(t, out, "\x1b[", "output to a buffer should carry no color codes")
}

func TestLayoutCommandYAML(t *testing.T) {
	dir := writeFiles(t, map[string]string{"scene.yaml": testScene, "app.css": testSheet})
	out, err := execute(t, "layout", filepath.Join(dir, "scene.yaml"), "-o", "yaml", "--width", "400")
	require.NoError(t, err)

	var entries []geometryEntry
	require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, geometryEntry{Entity: "root", Width: 400, Height: 100}, entries[0])
	assert.Equal(t, "panel.half", entries[2].Entity)
	assert.Equal(t, 200.0, entries[2].Width)
	assert.Equal(t, 2, entries[3].Depth)
}

func TestLayoutCommandErrors(t *testing.T) {
	_, err := execute(t, "layout")
	assert.Error(t, err)

	dir := writeFiles(t, map[string]string{"scene.yaml": testScene, "app.css": testSheet})
	_, err = execute(t, "layout", filepath.Join(dir, "scene.yaml"), "-o", "xml")
	assert.ErrorContains(t, err, `unknown output format "xml"`)

	_, err = execute(t, "layout", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "load scene")
}

func TestCheckCommand(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"good.css":    testSheet,
		"unknown.css": ".a { frobnicate: 1px; width: 3px; }",
		"bad.css":     ".a { width: wide; }",
	})
	good := filepath.Join(dir, "good.css")
	unknown := filepath.Join(dir, "unknown.css")
	bad := filepath.Join(dir, "bad.css")

	out, err := execute(t, "check", good, unknown)
	require.NoError(t, err)
	assert.Contains(t, out, "1 rules, 1 keyframes")
	assert.Contains(t, out, `unknown property "frobnicate"`)

	_, err = execute(t, "check", "--strict", unknown)
	assert.ErrorContains(t, err, "1 of 1 stylesheets failed")

	out, err = execute(t, "check", good, bad, filepath.Join(dir, "missing.css"))
	assert.ErrorContains(t, err, "2 of 3 stylesheets failed")
	assert.Contains(t, out, "bad.css")
}

func TestRunCommandScript(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"scene.yaml": testScene,
		"app.css":    testSheet,
		"pass.json": `{"steps": [
			{"action": "click", "x": 40, "y": 50},
			{"action": "expect", "id": "ok", "focused": true, "width": 80}
		]}`,
		"fail.json": `{"steps": [{"action": "expect", "id": "ok", "width": 10}]}`,
	})
	scene := filepath.Join(dir, "scene.yaml")

	out, err := execute(t, "run", scene, "--script", filepath.Join(dir, "pass.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "passed")

	out, err = execute(t, "run", scene, "--script", filepath.Join(dir, "fail.json"))
	assert.ErrorContains(t, err, "fail.json failed")
	assert.Contains(t, out, "width = 80, want 10")

	_, err = execute(t, "run", scene, "--script", filepath.Join(dir, "pass.json"), "--max-cycles", "1")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Go version:")
}

func TestExampleScene(t *testing.T) {
	scene := filepath.Join("..", "..", "examples", "scene")
	out, err := execute(t, "run", filepath.Join(scene, "scene.yaml"), "--script", filepath.Join(scene, "smoke.json"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "passed")

	out, err = execute(t, "check", filepath.Join(scene, "app.css"))
	require.NoError(t, err)
	assert.Contains(t, out, "8 rules, 1 keyframes")
}
