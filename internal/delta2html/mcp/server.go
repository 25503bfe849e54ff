// Пакет mcp предоставляет MCP сервер с инструментами преобразования документов Quill Delta.
//
// Основные возможности:
//   - Преобразование документа в HTML, Markdown, текст или TipTap JSON.
//   - Описание структуры документа (дерево групп).
//   - Логирование ошибок протокола.
package mcp

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// mcpInstructions содержит описание MCP сервера для LLM-моделей.
const mcpInstructions = `MCP сервер преобразования документов редактора Quill (формат Delta)

## Формат документа
Документ это JSON массив операций вида {"insert": ..., "attributes": {...}}
или объект {"ops": [...]}.
- insert строка: текст, перенос строки "\n" завершает блок
- insert объект: embed, например {"image": "https://..."}, {"video": "..."}, {"formula": "e=mc^2"}, {"mention": {...}}
- attributes у переноса строки задают тип блока: header (1-6), blockquote, code-block, list (bullet, ordered, checked, unchecked), indent
- attributes у текста задают оформление: bold, italic, underline, strike, code, link, color, background, script (sub, super)

## Форматы результата
- html: разметка в стиле Quill (классы ql-*)
- markdown: CommonMark с расширениями GFM
- text: простой текст без разметки
- tiptap: JSON документ TipTap
`

// Converter операции сервиса, доступные инструментам.
type Converter interface {
	ConvertDelta(ctx context.Context, ops []byte, format string) (string, error)
	DescribeDelta(ctx context.Context, ops []byte) (string, error)
}

// NewMCPServer создаёт MCP сервер поверх сервиса преобразования.
func NewMCPServer(version string, conv Converter) echo.HandlerFunc {
	hooks := &server.Hooks{}
	hooks.AddOnError(ErrorLoggerHook)

	srv := server.NewMCPServer(
		"delta2html-mcp",
		version,
		server.WithInstructions(mcpInstructions),
		server.WithHooks(hooks),
	)
	srv.AddTools(GetDeltaTools(conv)...)

	httpServer := server.NewStreamableHTTPServer(srv)
	return func(c echo.Context) error {
		httpServer.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

func ErrorLoggerHook(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
	slog.Error("MCP Error", "id", id, "method", method, "message", message, "err", err)
}
