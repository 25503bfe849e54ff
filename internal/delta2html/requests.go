// Структуры запросов и ответов API преобразования.
package delta2html

import (
	"encoding/json"
	"fmt"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/aisa-it/delta2html/internal/delta2html/render"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
)

// ConvertRequest документ для преобразования. Ops принимает массив операций
// или объект вида {"ops": [...]}.
type ConvertRequest struct {
	Ops     json.RawMessage `json:"ops" validate:"required"`
	Format  string          `json:"format" validate:"format"`
	Options *OptionsRequest `json:"options,omitempty"`
}

// OptionsRequest переопределяет настройки сервиса для одного запроса.
type OptionsRequest struct {
	ParagraphTag           *string `json:"paragraph_tag,omitempty" validate:"omitempty,paragraphTag"`
	ClassPrefix            *string `json:"class_prefix,omitempty"`
	EncodeHTML             *bool   `json:"encode_html,omitempty"`
	LinkTarget             *string `json:"link_target,omitempty"`
	LinkRel                *string `json:"link_rel,omitempty"`
	AllowBackgroundClasses *bool   `json:"allow_background_classes,omitempty"`

	MultilineBlockquote *bool `json:"multiline_blockquote,omitempty"`
	MultilineHeader     *bool `json:"multiline_header,omitempty"`
	MultilineCodeBlock  *bool `json:"multiline_codeblock,omitempty"`
}

// Bind накладывает заданные в запросе значения на opts.
func (req *OptionsRequest) Bind(opts render.Options) render.Options {
	if req == nil {
		return opts
	}
	setString(&opts.ParagraphTag, req.ParagraphTag)
	setString(&opts.ClassPrefix, req.ClassPrefix)
	setString(&opts.LinkTarget, req.LinkTarget)
	setString(&opts.LinkRel, req.LinkRel)
	setBool(&opts.EncodeHTML, req.EncodeHTML)
	setBool(&opts.AllowBackgroundClasses, req.AllowBackgroundClasses)
	setBool(&opts.Merge.Blockquotes, req.MultilineBlockquote)
	setBool(&opts.Merge.Headers, req.MultilineHeader)
	setBool(&opts.Merge.CodeBlocks, req.MultilineCodeBlock)
	return opts
}

type BatchRequest struct {
	Documents []ConvertRequest `json:"documents"`
}

type ConvertResponse struct {
	Id     uuid.UUID `json:"id"`
	Format string    `json:"format"`
	Result any       `json:"result"`
}

type BatchResponse struct {
	Results []ConvertResponse `json:"results"`
}

type GroupsResponse struct {
	Id     uuid.UUID `json:"id"`
	Ops    int       `json:"ops"`
	Groups any       `json:"groups"`
}

// PreviewMessage ответ websocket предпросмотра. При ошибке Result пуст.
type PreviewMessage struct {
	Id     uuid.UUID               `json:"id"`
	Result string                  `json:"result,omitempty"`
	Error  *apierrors.DefinedError `json:"error,omitempty"`
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// bindMessage текст ошибки разбора тела запроса без кода статуса echo.
func bindMessage(err error) string {
	if he, ok := err.(*echo.HTTPError); ok {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}
