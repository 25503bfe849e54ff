// Управление конфигурацией сервиса из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений в логах.
//   - Значения по умолчанию и ограничения для числовых параметров.
package config

import (
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/grouper"
	"github.com/aisa-it/delta2html/internal/delta2html/render"
)

const (
	defaultListenAddr  = ":8080"
	defaultMetricsAddr = ":2112"
	defaultLuaTimeout  = 2000
	defaultMaxBatch    = 50
	defaultBodyLimit   = "10M"
)

type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`

	ParagraphTag           string `env:"PARAGRAPH_TAG"`
	ClassPrefix            string `env:"CLASS_PREFIX"`
	EncodeHTML             bool   `env:"ENCODE_HTML"`
	LinkTarget             string `env:"LINK_TARGET"`
	LinkRel                string `env:"LINK_REL"`
	AllowBackgroundClasses bool   `env:"ALLOW_BACKGROUND_CLASSES"`

	MultilineBlockquote bool `env:"MULTILINE_BLOCKQUOTE"`
	MultilineHeader     bool `env:"MULTILINE_HEADER"`
	MultilineCodeBlock  bool `env:"MULTILINE_CODEBLOCK"`

	MinifyHTML bool `env:"MINIFY_HTML"`

	CustomRenderScriptPath string `env:"CUSTOM_RENDER_SCRIPT"`
	LuaTimeoutMs           int    `env:"LUA_TIMEOUT_MS"`
	ScriptReloadSchedule   string `env:"SCRIPT_RELOAD_SCHEDULE"`

	MaxBatch  int    `env:"MAX_BATCH"`
	BodyLimit string `env:"BODY_LIMIT"`
	RateLimit int    `env:"RATE_LIMIT"`

	MCPEnable bool   `env:"MCP_ENABLE"`
	MCPToken  string `env:"MCP_TOKEN"`
}

// ReadConfig загружает конфигурацию из переменных окружения.
// Флаги, включенные по умолчанию, остаются включенными, если переменная не задана.
func ReadConfig() *Config {
	defaults := render.DefaultOptions()
	config := &Config{
		ListenAddr:          defaultListenAddr,
		MetricsAddr:         defaultMetricsAddr,
		ParagraphTag:        defaults.ParagraphTag,
		ClassPrefix:         defaults.ClassPrefix,
		EncodeHTML:          defaults.EncodeHTML,
		LinkTarget:          defaults.LinkTarget,
		MultilineBlockquote: defaults.Merge.Blockquotes,
		MultilineHeader:     defaults.Merge.Headers,
		MultilineCodeBlock:  defaults.Merge.CodeBlocks,
		BodyLimit:           defaultBodyLimit,
	}

	envConfig("env", config)

	if config.LuaTimeoutMs <= 0 {
		config.LuaTimeoutMs = defaultLuaTimeout
	}

	if config.MaxBatch <= 0 || config.MaxBatch > 1000 {
		config.MaxBatch = defaultMaxBatch
	}

	return config
}

// RenderOptions параметры отрисовки HTML.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		ParagraphTag:           c.ParagraphTag,
		ClassPrefix:            c.ClassPrefix,
		EncodeHTML:             c.EncodeHTML,
		LinkTarget:             c.LinkTarget,
		LinkRel:                c.LinkRel,
		AllowBackgroundClasses: c.AllowBackgroundClasses,
		Merge: grouper.MergeOptions{
			Blockquotes: c.MultilineBlockquote,
			Headers:     c.MultilineHeader,
			CodeBlocks:  c.MultilineCodeBlock,
		},
	}
}

func (c *Config) LuaTimeout() time.Duration {
	return time.Duration(c.LuaTimeoutMs) * time.Millisecond
}
