// Функции для возврата ошибок API с кодом HTTP и логированием.
//
// Основные возможности:
//   - Единый формат ответа с ошибкой.
//   - Логирование ошибок с данными запроса (метод, URL, место вызова).
//   - Поддержка ошибок из каталога apierrors со своим статусом.
package delta2html

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	stack_error "github.com/aisa-it/delta2html/internal/delta2html/stack-error"
	"github.com/labstack/echo/v4"
)

// Возврат ошибки каталога как есть, остальные ошибки логируются и скрываются за ErrGeneric
func EError(c echo.Context, err error) error {
	var customErr apierrors.DefinedError
	if errors.As(err, &customErr) {
		return EErrorDefined(c, customErr)
	}
	if err == nil {
		slog.Error("Unknown API error", requestAttrs(c, getCallerFile())...)
	} else {
		stack_error.GetError(c, err)
	}
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// statusErrors ошибки каталога для статусов, которые выставляют middleware echo.
var statusErrors = map[int]apierrors.DefinedError{
	http.StatusRequestEntityTooLarge: apierrors.ErrEntityToLarge,
	http.StatusTooManyRequests:       apierrors.ErrRateLimited,
	http.StatusUnauthorized:          apierrors.ErrUnauthorized,
}

// Возврат ошибки <status> с сообщением ошибки
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if defined, ok := statusErrors[status]; ok {
		return EErrorDefined(c, defined)
	}

	er := apierrors.ErrGeneric
	er.StatusCode = status
	if err == nil {
		slog.Error("Unknown API error", requestAttrs(c, slog.Int("status", status), getCallerFile())...)
		return EErrorDefined(c, er)
	}

	slog.Error("API error", requestAttrs(c, "err", err, slog.Int("status", status), getCallerFile())...)
	er.Err = err.Error()
	return EErrorDefined(c, er)
}

func requestAttrs(c echo.Context, args ...any) []any {
	return append(args, "method", c.Request().Method, "url", c.Request().URL)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	// If unknown code use 400 Bad Request
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

// getCallerFile имя файла и строка, из которых вызвана функция логирования.
func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
