// Пакет stack_error оборачивает внутренние ошибки, накапливая точки вызова и контекст для логирования на границе HTTP.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/labstack/echo/v4"
)

// TrackerError внутренняя ошибка с трассой мест, через которые она прошла.
type TrackerError struct {
	Context map[string]any
	Trace   []string
	cause   error
}

// TrackErrorStack добавляет место вызова в трассу. Повторная обертка
// дополняет уже существующий TrackerError.
func TrackErrorStack(err error) *TrackerError {
	var te *TrackerError
	if !errors.As(err, &te) {
		te = &TrackerError{
			Context: make(map[string]any),
			cause:   err,
		}
	}
	te.Trace = append(te.Trace, callerLine(err))
	return te
}

// AddContext первое записанное значение ключа не перезаписывается.
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// LogValue группа с причиной, контекстом и трассой.
func (te *TrackerError) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("cause", te.Error())}

	keys := make([]string, 0, len(te.Context))
	for k := range te.Context {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, te.Context[k]))
	}

	attrs = append(attrs, slog.Any("trace", te.Trace))
	return slog.GroupValue(attrs...)
}

// GetError логирует ошибку вместе с трассой и данными запроса.
func GetError(c echo.Context, err error) {
	logger := slog.Default()
	if c != nil {
		logger = logger.With(
			slog.String("method", c.Request().Method),
			slog.String("url", c.Request().URL.String()))
	}

	var te *TrackerError
	if errors.As(err, &te) {
		logger.Error("stack error", "err", te)
		return
	}
	logger.Error("stack error", slog.String("raw_error", err.Error()))
}

func callerLine(err error) string {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	_, file := filepath.Split(path)
	return fmt.Sprintf("%s:%d %s", file, no, err)
}
