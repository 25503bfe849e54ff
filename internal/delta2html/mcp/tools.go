package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolHandler определяет сигнатуру функции-обработчика MCP инструмента.
type ToolHandler func(ctx context.Context, conv Converter, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Tool представляет MCP инструмент с его обработчиком.
type Tool struct {
	Tool    mcp.Tool
	Handler ToolHandler
}

var deltaTools = []Tool{
	{
		mcp.NewTool(
			"convert_delta",
			mcp.WithDescription("Преобразование документа Quill Delta в HTML, Markdown, текст или TipTap JSON"),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithString("ops",
				mcp.Required(),
				mcp.Description("Документ: JSON массив операций или объект {\"ops\": [...]}"),
			),
			mcp.WithString("format",
				mcp.Description("Формат результата (по умолчанию html)"),
				mcp.Enum("html", "markdown", "text", "tiptap"),
			),
		),
		convertDelta,
	},
	{
		mcp.NewTool(
			"describe_delta",
			mcp.WithDescription("Структура документа: блоки, объединенные блоки, вложенные списки и строчные группы"),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithString("ops",
				mcp.Required(),
				mcp.Description("Документ: JSON массив операций или объект {\"ops\": [...]}"),
			),
		),
		describeDelta,
	},
}

// GetDeltaTools возвращает список MCP инструментов преобразования.
func GetDeltaTools(conv Converter) []server.ServerTool {
	result := make([]server.ServerTool, 0, len(deltaTools))
	for _, t := range deltaTools {
		result = append(result, server.ServerTool{
			Tool:    t.Tool,
			Handler: WrapTool(conv, t.Handler),
		})
	}
	return result
}

func WrapTool(conv Converter, handler ToolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handler(ctx, conv, request)
	}
}

func convertDelta(ctx context.Context, conv Converter, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	ops, ok := opsArgument(args)
	if !ok {
		return apierrors.ErrValidation.WithFormattedMessage("ops is required").MCPError(), nil
	}
	format, _ := args["format"].(string)

	out, err := conv.ConvertDelta(ctx, ops, format)
	if err != nil {
		return toolError(err, "Проверьте, что ops содержит массив операций {\"insert\": ...}"), nil
	}
	return mcp.NewToolResultText(out), nil
}

func describeDelta(ctx context.Context, conv Converter, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ops, ok := opsArgument(request.GetArguments())
	if !ok {
		return apierrors.ErrValidation.WithFormattedMessage("ops is required").MCPError(), nil
	}

	out, err := conv.DescribeDelta(ctx, ops)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(out), nil
}

// opsArgument документ из аргумента ops. Модели иногда передают массив
// вместо строки, такой аргумент сериализуется обратно в JSON.
func opsArgument(args map[string]any) ([]byte, bool) {
	switch v := args["ops"].(type) {
	case nil:
		return nil, false
	case string:
		return []byte(v), v != ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return data, true
	}
}

func toolError(err error, hints ...string) *mcp.CallToolResult {
	var customErr apierrors.DefinedError
	if errors.As(err, &customErr) {
		return customErr.MCPError(hints...)
	}
	slog.Error("MCP internal error", getCallerFile(), "err", err)
	return mcp.NewToolResultError("internal error")
}

func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
