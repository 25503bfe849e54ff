package delta2html

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	"github.com/aisa-it/delta2html/internal/delta2html/grouper"
	"github.com/aisa-it/delta2html/internal/delta2html/render"
	"github.com/aisa-it/delta2html/internal/delta2html/render/tiptap"
	"github.com/aisa-it/delta2html/internal/delta2html/rules"
	stack_error "github.com/aisa-it/delta2html/internal/delta2html/stack-error"
	"github.com/gofrs/uuid"
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatTipTap   = "tiptap"
	FormatPDF      = "pdf"
)

// Formats форматы ответа /convert/. PDF отдается отдельным маршрутом.
var Formats = []string{FormatHTML, FormatMarkdown, FormatText, FormatTipTap}

// document разобранный и сгруппированный документ запроса.
type document struct {
	id     uuid.UUID
	opts   render.Options
	groups []grouper.Group
}

// prepare разбирает операции запроса и строит дерево групп.
// Ошибки возвращаются как apierrors.DefinedError.
func (s *Services) prepare(req ConvertRequest) (*document, error) {
	raw, err := delta.ParseJSON(req.Ops)
	if err != nil {
		s.metrics.malformed.Inc()
		return nil, apierrors.ErrMalformedDelta.WithFormattedMessage(err.Error())
	}

	opts := req.Options.Bind(s.cfg.RenderOptions())
	groups, err := grouper.GroupRaw(raw, opts.Merge)
	if err != nil {
		s.metrics.malformed.Inc()
		return nil, apierrors.ErrMalformedDelta.WithFormattedMessage(err.Error())
	}

	doc := &document{
		id:     uuid.Must(uuid.NewV4()),
		opts:   opts,
		groups: groups,
	}
	slog.Debug("Delta grouped", "id", doc.id, "ops", len(raw), "groups", len(groups))
	return doc, nil
}

// Convert преобразует документ в один из форматов Formats.
func (s *Services) Convert(ctx context.Context, req ConvertRequest) (ConvertResponse, error) {
	format := req.Format
	if format == "" {
		format = FormatHTML
	}

	doc, err := s.prepare(req)
	if err != nil {
		return ConvertResponse{}, err
	}

	custom, binding := s.bindScript(ctx)

	var result any
	switch format {
	case FormatHTML:
		out := render.NewConverter(doc.opts, render.WithCustomRenderer(custom)).RenderGroups(doc.groups)
		if s.cfg.MinifyHTML {
			out, err = render.Minify(out)
			if err != nil {
				stack_error.GetError(nil, stack_error.TrackErrorStack(err).AddContext("id", doc.id))
				return ConvertResponse{}, apierrors.ErrMinifyFailed
			}
		}
		result = out
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := render.NewMarkdownRenderer(doc.opts, custom).Render(&buf, doc.groups); err != nil {
			return ConvertResponse{}, stack_error.TrackErrorStack(err).AddContext("format", format)
		}
		result = buf.String()
	case FormatText:
		result = render.NewTextRenderer(doc.opts, custom).RenderGroups(doc.groups)
	case FormatTipTap:
		data, err := tiptap.Serialize(doc.groups)
		if err != nil {
			return ConvertResponse{}, stack_error.TrackErrorStack(err).AddContext("format", format)
		}
		result = json.RawMessage(data)
	default:
		return ConvertResponse{}, apierrors.ErrUnsupportedFormat.WithFormattedMessage(format)
	}

	if err := s.scriptError(binding); err != nil {
		return ConvertResponse{}, err
	}

	s.metrics.conversions.WithLabelValues(format).Inc()
	return ConvertResponse{Id: doc.id, Format: format, Result: result}, nil
}

// ConvertPDF пишет документ в PDF.
func (s *Services) ConvertPDF(ctx context.Context, req ConvertRequest) (uuid.UUID, []byte, error) {
	doc, err := s.prepare(req)
	if err != nil {
		return uuid.Nil, nil, err
	}

	custom, binding := s.bindScript(ctx)

	var buf bytes.Buffer
	if err := render.NewPDFRenderer(doc.opts, custom).Render(doc.groups, &buf); err != nil {
		stack_error.GetError(nil, stack_error.TrackErrorStack(err).AddContext("id", doc.id))
		return uuid.Nil, nil, apierrors.ErrPDFRenderFailed
	}
	if err := s.scriptError(binding); err != nil {
		return uuid.Nil, nil, err
	}

	s.metrics.conversions.WithLabelValues(FormatPDF).Inc()
	return doc.id, buf.Bytes(), nil
}

// Groups дерево групп документа для отладки.
func (s *Services) Groups(req ConvertRequest) (GroupsResponse, error) {
	doc, err := s.prepare(req)
	if err != nil {
		return GroupsResponse{}, err
	}
	return GroupsResponse{
		Id:     doc.id,
		Ops:    grouper.CountOps(doc.groups),
		Groups: doc.groups,
	}, nil
}

// ConvertBatch преобразует документы параллельно. Ошибка любого документа
// отменяет весь пакет.
func (s *Services) ConvertBatch(ctx context.Context, req BatchRequest) (BatchResponse, error) {
	if len(req.Documents) == 0 {
		return BatchResponse{}, apierrors.ErrEmptyBatch
	}
	if len(req.Documents) > s.cfg.MaxBatch {
		return BatchResponse{}, apierrors.ErrBatchTooLarge.WithFormattedMessage(strconv.Itoa(s.cfg.MaxBatch))
	}

	results, err := runBatch(ctx, req.Documents, func(ctx context.Context, doc ConvertRequest) (ConvertResponse, error) {
		return s.Convert(ctx, doc)
	})
	if err != nil {
		var batchErr *batchItemError
		if errors.As(err, &batchErr) {
			var defined apierrors.DefinedError
			if errors.As(batchErr.err, &defined) && defined.Code == apierrors.ErrMalformedDelta.Code {
				return BatchResponse{}, apierrors.ErrBatchItemMalformed.WithFormattedMessage(strconv.Itoa(batchErr.index))
			}
			return BatchResponse{}, batchErr.err
		}
		return BatchResponse{}, err
	}
	return BatchResponse{Results: results}, nil
}

// bindScript привязывает скрипт отрисовки к запросу. Без скрипта оба значения nil.
func (s *Services) bindScript(ctx context.Context) (render.CustomRenderer, *rules.Binding) {
	scripts := s.scripts.Load()
	if scripts == nil {
		return nil, nil
	}
	b := scripts.Bind(ctx)
	return b, b
}

func (s *Services) scriptError(binding *rules.Binding) error {
	if binding == nil {
		return nil
	}
	rulesErr := binding.Err()
	if rulesErr == nil {
		return nil
	}

	clientErr := rulesErr.ClientError()
	s.metrics.scriptErrors.WithLabelValues(strconv.Itoa(clientErr.Code)).Inc()
	slog.Warn("Custom render script error", "fn", *rulesErr.GetFnName(), "time", rulesErr.GetTime(), "err", rulesErr)
	return clientErr
}
