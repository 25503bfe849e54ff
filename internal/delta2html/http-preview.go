// Живой предпросмотр документа через websocket.
// Клиент отправляет ConvertRequest в JSON, сервер отвечает PreviewMessage с HTML или ошибкой.
// Соединение живет до закрытия клиентом, ошибки документа его не прерывают.
package delta2html

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
)

const (
	previewWriteTimeout = 10 * time.Second
	previewReadLimit    = 1 << 20
)

func (s *Services) previewDelta(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Open websocket connection", "err", err)
		return nil
	}
	defer conn.CloseNow()
	conn.SetReadLimit(previewReadLimit)

	ctx := c.Request().Context()
	for {
		var req ConvertRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				slog.Error("Read preview message", "err", err)
			}
			return nil
		}

		msg := s.preview(ctx, c, req)

		writeCtx, cancel := context.WithTimeout(ctx, previewWriteTimeout)
		err := wsjson.Write(writeCtx, conn, msg)
		cancel()
		if err != nil {
			slog.Error("Write preview message", "err", err)
			return nil
		}
	}
}

// preview отрисовывает документ в HTML, формат запроса не учитывается.
func (s *Services) preview(ctx context.Context, c echo.Context, req ConvertRequest) PreviewMessage {
	req.Format = FormatHTML
	if err := c.Validate(req); err != nil {
		return previewError(validationError(err))
	}

	resp, err := s.Convert(ctx, req)
	if err != nil {
		return previewError(err)
	}
	html, _ := resp.Result.(string)
	return PreviewMessage{Id: resp.Id, Result: html}
}

func previewError(err error) PreviewMessage {
	var defined apierrors.DefinedError
	if !errors.As(err, &defined) {
		slog.Error("Preview error", "err", err)
		defined = apierrors.ErrGeneric
	}
	return PreviewMessage{Id: uuid.Nil, Error: &defined}
}
