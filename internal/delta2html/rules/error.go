// Файл error.go определяет типы ошибок скрипта отрисовки.
//
// IRulesError помимо стандартного Error() предоставляет:
//   - GetTime/GetFnName - информация для логирования (когда и в какой функции)
//   - ScriptError - детали ошибки Lua (текст ошибки парсера/рантайма)
//   - ClientError - преобразование в HTTP-ошибку для ответа клиенту
package rules

import (
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
)

type IRulesError interface {
	error
	GetTime() time.Time
	GetFnName() *string
	ScriptError() (string, *string, bool)
	ClientError() apierrors.DefinedError
}

const (
	errScript      = "custom render script failed"
	errParseScript = "error parsing lua script"
	errTimeout     = "Lua execution timed out"
	errCanceled    = "Lua execution canceled"
)

type rulesError struct {
	Err     string          `json:"err,omitempty"`
	FullErr *errDescription `json:"full_err,omitempty"`
	Info    *debugInfo      `json:"info,omitempty"`
}

type errDescription struct {
	ErrMsg   string  `json:"err_msg,omitempty"`
	LuaError *string `json:"lua_error,omitempty"`
}

type debugInfo struct {
	Function *string   `json:"function"`
	Kind     string    `json:"kind,omitempty"`
	Time     time.Time `json:"time"`
}

func newError(fnName, kind, errMsg string, luaErr *string) *rulesError {
	return &rulesError{
		Err:     errScript,
		FullErr: &errDescription{ErrMsg: errMsg, LuaError: luaErr},
		Info:    &debugInfo{Function: &fnName, Kind: kind, Time: time.Now()},
	}
}

func (e *rulesError) GetTime() time.Time {
	return e.Info.Time
}

func (e *rulesError) GetFnName() *string {
	return e.Info.Function
}

func (e *rulesError) Error() string {
	if e.FullErr != nil && e.FullErr.ErrMsg != "" {
		return e.Err + ": " + e.FullErr.ErrMsg
	}
	return e.Err
}

func (e *rulesError) ScriptError() (string, *string, bool) {
	if e.FullErr == nil || e.FullErr.ErrMsg == "" {
		return "", nil, false
	}
	return e.FullErr.ErrMsg, e.FullErr.LuaError, true
}

func (e *rulesError) ClientError() apierrors.DefinedError {
	if e.FullErr == nil {
		return apierrors.ErrGeneric
	}
	switch e.FullErr.ErrMsg {
	case errParseScript:
		return apierrors.ErrRenderScriptParse
	case errTimeout:
		return apierrors.ErrRenderScriptTimout
	}
	msg := e.FullErr.ErrMsg
	if e.FullErr.LuaError != nil {
		msg = *e.FullErr.LuaError
	}
	return apierrors.ErrRenderScriptFail.WithFormattedMessage(msg)
}
