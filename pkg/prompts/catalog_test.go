package prompts

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	board, ok := c.Group("board")
	require.True(t, ok)
	assert.Len(t, board.Assets, 6)

	frames, ok := c.Group("frames")
	require.True(t, ok)
	assert.Len(t, frames.Assets, 5)

	for _, e := range frames.Assets {
		assert.Equal(t, domain.ModeEdit, e.Render.Mode, e.Name)
		assert.NotContains(t, e.Prompt, "{{", e.Name)
	}
	assert.True(t, strings.Contains(frames.Assets[0].Prompt, "Underground zine aesthetic"))
}

func TestGroup_Specs(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	frames, _ := c.Group("frames")

	refDir := "refs"

	t.Run("最初に存在する参照画像を採用すること", func(t *testing.T) {
		exists := func(p string) bool { return p == filepath.Join(refDir, "ink-frame.png") }
		specs := frames.Specs(refDir, exists)

		var back domain.AssetSpec
		for _, s := range specs {
			if s.OutputName == "card-back.png" {
				back = s
			}
		}
		assert.Equal(t, filepath.Join(refDir, "ink-frame.png"), back.Render.Reference)
	})

	t.Run("候補が存在しなければ先頭を使うこと", func(t *testing.T) {
		specs := frames.Specs(refDir, func(string) bool { return false })
		for _, s := range specs {
			if s.OutputName == "card-back.png" {
				assert.Equal(t, filepath.Join(refDir, "back.png"), s.Render.Reference)
			}
			assert.NoError(t, s.Render.Validate(), s.OutputName)
		}
	})
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "edit without references",
			yaml: `
groups:
  - dir: frames
    assets:
      - name: a.png
        prompt: x
        render: {size: 1024x1024, background: opaque, quality: high, mode: edit}
`,
		},
		{
			name: "duplicate names",
			yaml: `
groups:
  - dir: board
    assets:
      - name: a.png
        prompt: x
        render: {size: 1024x1024, background: opaque, quality: high, mode: synthesize}
      - name: a.png
        prompt: y
        render: {size: 1024x1024, background: opaque, quality: high, mode: synthesize}
`,
		},
		{
			name: "undefined fragment",
			yaml: `
groups:
  - dir: board
    assets:
      - name: a.png
        prompt: "x {{missing}}"
        render: {size: 1024x1024, background: opaque, quality: high, mode: synthesize}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
