// Обработчики API преобразования документов.
//
// Основные возможности:
//   - Преобразование документа в HTML, Markdown, текст и TipTap JSON.
//   - Выгрузка документа в PDF.
//   - Дерево групп документа для отладки.
//   - Пакетное преобразование.
package delta2html

import (
	"net/http"
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func (s *Services) AddConvertServices(g *echo.Group) {
	limit := s.RateLimiter()
	g.POST("convert/", s.convertDelta, limit...)
	g.POST("convert/pdf/", s.convertDeltaPDF, limit...)
	g.POST("groups/", s.getDeltaGroups, limit...)
	g.POST("batch/", s.convertDeltaBatch, limit...)
	g.GET("ws/preview/", s.previewDelta, limit...)
}

// RateLimiter ограничение числа запросов с одного адреса в секунду.
// Без RATE_LIMIT возвращает пустой список.
func (s *Services) RateLimiter() []echo.MiddlewareFunc {
	if s.cfg.RateLimit <= 0 {
		return nil
	}
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(s.cfg.RateLimit),
			Burst:     s.cfg.RateLimit * 2,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return EErrorDefined(c, apierrors.ErrForbidden)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return EErrorDefined(c, apierrors.ErrRateLimited)
		},
	})}
}

func (s *Services) bindConvertRequest(c echo.Context) (ConvertRequest, error) {
	var req ConvertRequest
	if err := c.Bind(&req); err != nil {
		return req, apierrors.ErrInvalidJSON.WithFormattedMessage(bindMessage(err))
	}
	if err := c.Validate(req); err != nil {
		return req, validationError(err)
	}
	return req, nil
}

// convertDelta преобразует документ в запрошенный формат
//
// Тело запроса: ConvertRequest. Ответ: ConvertResponse, для tiptap поле result содержит JSON документа.
func (s *Services) convertDelta(c echo.Context) error {
	req, err := s.bindConvertRequest(c)
	if err != nil {
		return EError(c, err)
	}

	resp, err := s.Convert(c.Request().Context(), req)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// convertDeltaPDF выгрузка документа в PDF
func (s *Services) convertDeltaPDF(c echo.Context) error {
	req, err := s.bindConvertRequest(c)
	if err != nil {
		return EError(c, err)
	}

	id, data, err := s.ConvertPDF(c.Request().Context(), req)
	if err != nil {
		return EError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+id.String()+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// getDeltaGroups дерево групп документа после объединения блоков и вложения списков
func (s *Services) getDeltaGroups(c echo.Context) error {
	req, err := s.bindConvertRequest(c)
	if err != nil {
		return EError(c, err)
	}

	resp, err := s.Groups(req)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// convertDeltaBatch пакетное преобразование, результаты в порядке документов запроса
func (s *Services) convertDeltaBatch(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, apierrors.ErrInvalidJSON.WithFormattedMessage(bindMessage(err)))
	}
	for _, doc := range req.Documents {
		if err := c.Validate(doc); err != nil {
			return EError(c, validationError(err))
		}
	}

	resp, err := s.ConvertBatch(c.Request().Context(), req)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
