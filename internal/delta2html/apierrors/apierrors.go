// Пакет содержит определения ошибок, возвращаемых API конвертера. Каждая ошибка имеет код, статус HTTP и описание на двух языках.
//
// Основные возможности:
//   - Ошибки разбора запроса, входного документа и ограничений сервиса.
//   - Ошибки отрисовки и пользовательских скриптов.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 1*** - request errors
	ErrInvalidJSON        = DefinedError{Code: 1001, StatusCode: http.StatusBadRequest, Err: "invalid request body: %s", RuErr: "Некорректное тело запроса: %s"}
	ErrMalformedDelta     = DefinedError{Code: 1002, StatusCode: http.StatusUnprocessableEntity, Err: "malformed delta: %s", RuErr: "Некорректный документ: %s"}
	ErrUnsupportedFormat  = DefinedError{Code: 1003, StatusCode: http.StatusBadRequest, Err: "unsupported output format %s", RuErr: "Формат вывода %s не поддерживается"}
	ErrValidation         = DefinedError{Code: 1004, StatusCode: http.StatusBadRequest, Err: "request validation failed: %s", RuErr: "Запрос не прошел проверку: %s"}
	ErrEmptyBatch         = DefinedError{Code: 1005, StatusCode: http.StatusBadRequest, Err: "batch is empty", RuErr: "Пакет документов пуст"}
	ErrBatchTooLarge      = DefinedError{Code: 1006, StatusCode: http.StatusRequestEntityTooLarge, Err: "batch size exceeds %s documents", RuErr: "Размер пакета превышает %s документов"}
	ErrEntityToLarge      = DefinedError{Code: 1007, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", RuErr: "Слишком большой запрос"}
	ErrBatchItemMalformed = DefinedError{Code: 1008, StatusCode: http.StatusUnprocessableEntity, Err: "document %s is malformed", RuErr: "Документ %s некорректен"}

	// 2*** - render errors
	ErrRenderFailed       = DefinedError{Code: 2001, StatusCode: http.StatusInternalServerError, Err: "render failed", RuErr: "Не удалось сформировать документ"}
	ErrPDFRenderFailed    = DefinedError{Code: 2002, StatusCode: http.StatusInternalServerError, Err: "pdf render failed", RuErr: "Не удалось сформировать PDF"}
	ErrMinifyFailed       = DefinedError{Code: 2003, StatusCode: http.StatusInternalServerError, Err: "html minification failed", RuErr: "Не удалось сжать HTML"}
	ErrRenderScriptParse  = DefinedError{Code: 2004, StatusCode: http.StatusInternalServerError, Err: "custom render script has syntax errors", RuErr: "Скрипт отрисовки содержит синтаксические ошибки"}
	ErrRenderScriptFail   = DefinedError{Code: 2005, StatusCode: http.StatusInternalServerError, Err: "custom render script failed: %s", RuErr: "Ошибка выполнения скрипта отрисовки: %s"}
	ErrRenderScriptTimout = DefinedError{Code: 2006, StatusCode: http.StatusGatewayTimeout, Err: "custom render script timed out", RuErr: "Превышено время выполнения скрипта отрисовки"}

	// 3*** - source errors
	ErrSourceFetch = DefinedError{Code: 3001, StatusCode: http.StatusBadGateway, Err: "failed to fetch source document: %s", RuErr: "Не удалось загрузить исходный документ: %s"}

	// 9*** - generic errors
	ErrGeneric      = DefinedError{Code: 9000, StatusCode: http.StatusInternalServerError, Err: "internal error", RuErr: "Внутренняя ошибка"}
	ErrNotFound     = DefinedError{Code: 9001, StatusCode: http.StatusNotFound, Err: "not found", RuErr: "Не найдено"}
	ErrUnauthorized = DefinedError{Code: 9002, StatusCode: http.StatusUnauthorized, Err: "invalid access token", RuErr: "Неверный токен доступа"}
	ErrRateLimited  = DefinedError{Code: 9003, StatusCode: http.StatusTooManyRequests, Err: "too many requests", RuErr: "Слишком много запросов"}
	ErrForbidden    = DefinedError{Code: 9004, StatusCode: http.StatusForbidden, Err: "forbidden", RuErr: "Доступ запрещен"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}

// MCPError ответ инструмента MCP с текстом ошибки и подсказками для модели.
func (e DefinedError) MCPError(hints ...string) *mcp.CallToolResult {
	msg := e.Err
	if len(hints) > 0 {
		msg += "\n" + strings.Join(hints, "\n")
	}
	return mcp.NewToolResultError(msg)
}
