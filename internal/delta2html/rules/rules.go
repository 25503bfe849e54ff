// Пакет rules выполняет пользовательский Lua-скрипт для отрисовки произвольных embed.
// Скрипт объявляет глобальную функцию RenderCustom(op, context), которая получает
// тип embed, его значение и атрибуты, а возвращает готовую разметку.
//
// Основные возможности:
//   - Компиляция скрипта один раз при загрузке, выполнение в отдельном состоянии на каждый вызов.
//   - Отключение опасных библиотек и перехват print в лог.
//   - Ограничение времени выполнения через контекст.
//   - Сбор первой ошибки скрипта в рамках одного запроса.
package rules

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

const FnRenderCustom = "RenderCustom"

type LuaOut struct {
	Msg    string
	Time   time.Time
	FnName string
}

// Renderer скомпилированный скрипт отрисовки. Безопасен для использования из нескольких горутин.
type Renderer struct {
	proto   *lua.FunctionProto
	timeout time.Duration
}

func LoadRenderer(path string, timeout time.Duration) (*Renderer, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewRenderer(string(script), timeout)
}

// NewRenderer компилирует скрипт. Синтаксические ошибки возвращаются как IRulesError.
func NewRenderer(script string, timeout time.Duration) (*Renderer, error) {
	chunk, err := parse.Parse(strings.NewReader(script), FnRenderCustom)
	if err != nil {
		luaErr := strings.TrimSpace(err.Error())
		return nil, newError(FnRenderCustom, "", errParseScript, &luaErr)
	}
	proto, err := lua.Compile(chunk, FnRenderCustom)
	if err != nil {
		luaErr := strings.TrimSpace(err.Error())
		return nil, newError(FnRenderCustom, "", errParseScript, &luaErr)
	}
	return &Renderer{proto: proto, timeout: timeout}, nil
}

// RenderCustom отрисовывает embed без контекста запроса. Ошибки только логируются.
func (r *Renderer) RenderCustom(op delta.Op, contextOp *delta.Op) string {
	out, messages, err := r.Render(context.Background(), op, contextOp)
	logMessages(messages)
	if err != nil {
		slog.Error("Custom render script", "kind", op.Insert.CustomKind, "err", err)
		return ""
	}
	return out
}

// Render вызывает RenderCustom скрипта. Возвращает разметку, вывод print и ошибку скрипта.
func (r *Renderer) Render(ctx context.Context, op delta.Op, contextOp *delta.Op) (string, []LuaOut, IRulesError) {
	kind := op.Insert.CustomKind

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	state := lua.NewState()
	defer state.Close()

	deniedLib(state)
	var messages []LuaOut
	registerLogger(state, &messages)
	state.SetContext(ctx)

	failed := func(msg string, err error) (string, []LuaOut, IRulesError) {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return "", messages, newError(FnRenderCustom, kind, errTimeout, nil)
		case ctx.Err() != nil:
			return "", messages, newError(FnRenderCustom, kind, errCanceled, nil)
		}
		var luaErr *string
		if err != nil {
			s := strings.TrimSpace(err.Error())
			luaErr = &s
		}
		return "", messages, newError(FnRenderCustom, kind, msg, luaErr)
	}

	state.Push(state.NewFunctionFromProto(r.proto))
	if err := state.PCall(0, lua.MultRet, nil); err != nil {
		return failed("Script load error", err)
	}

	fn := state.GetGlobal(FnRenderCustom)
	if fn.Type() != lua.LTFunction {
		return failed("function "+FnRenderCustom+" is not defined", nil)
	}

	var contextArg lua.LValue = lua.LNil
	if contextOp != nil {
		contextArg = getContextLTable(state, *contextOp)
	}

	if err := state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, getOpLTable(state, op), contextArg); err != nil {
		return failed("Script error", err)
	}

	ret := state.Get(-1)
	state.Pop(1)

	switch v := ret.(type) {
	case lua.LString:
		return string(v), messages, nil
	case *lua.LNilType:
		return "", messages, nil
	case *lua.LTable:
		if html, ok := v.RawGetString("html").(lua.LString); ok {
			return string(html), messages, nil
		}
		return failed("Lua table missing 'html' key", nil)
	default:
		return failed("Unexpected return type from Lua script expected string", errors.New(ret.Type().String()))
	}
}

// Bind привязывает скрипт к контексту запроса.
func (r *Renderer) Bind(ctx context.Context) *Binding {
	return &Binding{r: r, ctx: ctx}
}

// Binding реализация render.CustomRenderer для одного запроса.
// Запоминает первую ошибку скрипта, чтобы вернуть ее клиенту.
type Binding struct {
	r   *Renderer
	ctx context.Context

	mu  sync.Mutex
	err IRulesError
}

func (b *Binding) RenderCustom(op delta.Op, contextOp *delta.Op) string {
	out, messages, err := b.r.Render(b.ctx, op, contextOp)
	logMessages(messages)
	if err != nil {
		b.mu.Lock()
		if b.err == nil {
			b.err = err
		}
		b.mu.Unlock()
		return ""
	}
	return out
}

func (b *Binding) Err() IRulesError {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func logMessages(messages []LuaOut) {
	for _, m := range messages {
		slog.Debug("Lua print", "fn", m.FnName, "msg", m.Msg, "time", m.Time)
	}
}
