package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadConfigDefaults(t *testing.T) {
	cfg := ReadConfig()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, ":2112", cfg.MetricsAddr)
	assert.True(t, cfg.EncodeHTML)
	assert.True(t, cfg.MultilineHeader)
	assert.Equal(t, 50, cfg.MaxBatch)
	assert.Equal(t, 2*time.Second, cfg.LuaTimeout())

	opts := cfg.RenderOptions()
	assert.Equal(t, "p", opts.ParagraphTag)
	assert.Equal(t, "ql", opts.ClassPrefix)
	assert.Equal(t, "_blank", opts.LinkTarget)
	assert.True(t, opts.Merge.Blockquotes)
}

func TestReadConfigEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("PARAGRAPH_TAG", "div")
	t.Setenv("ENCODE_HTML", "false")
	t.Setenv("MULTILINE_CODEBLOCK", "0")
	t.Setenv("ALLOW_BACKGROUND_CLASSES", "true")
	t.Setenv("MAX_BATCH", "5000")
	t.Setenv("LUA_TIMEOUT_MS", "150")
	t.Setenv("LINK_TARGET", "")

	cfg := ReadConfig()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "div", cfg.ParagraphTag)
	assert.False(t, cfg.EncodeHTML)
	assert.False(t, cfg.MultilineCodeBlock)
	assert.True(t, cfg.MultilineBlockquote)
	assert.True(t, cfg.AllowBackgroundClasses)
	assert.Equal(t, 50, cfg.MaxBatch, "out of range value falls back to default")
	assert.Equal(t, 150*time.Millisecond, cfg.LuaTimeout())
	assert.Equal(t, "_blank", cfg.LinkTarget, "empty value keeps default")
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "s****t", maskValue("secret"))
	assert.Equal(t, "**", maskValue("ab"))
	assert.Equal(t, "", maskValue(""))
}

func TestReadConfigInvalidValues(t *testing.T) {
	t.Setenv("ENCODE_HTML", "maybe")
	t.Setenv("MAX_BATCH", "ten")
	t.Setenv("MCP_TOKEN", "secret-token")

	cfg := ReadConfig()

	assert.True(t, cfg.EncodeHTML, "invalid bool keeps default")
	assert.Equal(t, 50, cfg.MaxBatch)
	assert.Equal(t, "secret-token", cfg.MCPToken)
}

func TestIsSecret(t *testing.T) {
	assert.True(t, isSecret("MCPToken"))
	assert.False(t, isSecret("ListenAddr"))
}
