package delta2html

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/aisa-it/delta2html/internal/delta2html/config"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerAndParagraph = `[{"insert":"Title"},{"insert":"\n","attributes":{"header":1}},{"insert":"Hello "},{"insert":"world","attributes":{"bold":true}},{"insert":"\n"}]`

func newTestServices(t *testing.T, mutate func(cfg *config.Config)) (*Services, *echo.Echo) {
	t.Helper()
	cfg := config.ReadConfig()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewServices(cfg, "test", prometheus.NewRegistry())
	require.NoError(t, err)
	return s, s.NewEcho()
}

func doJSON(e *echo.Echo, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func convertBody(ops, format string) string {
	body := `{"ops":` + ops
	if format != "" {
		body += `,"format":"` + format + `"`
	}
	return body + "}"
}

type testConvertResponse struct {
	Id     string          `json:"id"`
	Format string          `json:"format"`
	Result json.RawMessage `json:"result"`
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) testConvertResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp testConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apierrors.DefinedError {
	t.Helper()
	var resp apierrors.DefinedError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func resultString(t *testing.T, resp testConvertResponse) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(resp.Result, &s))
	return s
}

func TestConvertFormats(t *testing.T) {
	_, e := newTestServices(t, nil)

	tests := []struct {
		format string
		want   string
	}{
		{"html", "<h1>Title</h1><p>Hello <strong>world</strong></p>"},
		{"", "<h1>Title</h1><p>Hello <strong>world</strong></p>"},
		{"markdown", "# Title\n\nHello **world**"},
		{"text", "Title\nHello world"},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			resp := decodeResult(t, doJSON(e, http.MethodPost, "/api/convert/", convertBody(headerAndParagraph, tt.format)))
			assert.Equal(t, tt.want, resultString(t, resp))
			assert.NotEmpty(t, resp.Id)
			if tt.format == "" {
				assert.Equal(t, FormatHTML, resp.Format)
			} else {
				assert.Equal(t, tt.format, resp.Format)
			}
		})
	}
}

func TestConvertTipTap(t *testing.T) {
	_, e := newTestServices(t, nil)

	resp := decodeResult(t, doJSON(e, http.MethodPost, "/api/convert/", convertBody(headerAndParagraph, "tiptap")))

	var doc struct {
		Type    string `json:"type"`
		Content []struct {
			Type  string         `json:"type"`
			Attrs map[string]any `json:"attrs"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &doc))
	assert.Equal(t, "doc", doc.Type)
	require.Len(t, doc.Content, 2)
	assert.Equal(t, "heading", doc.Content[0].Type)
	assert.EqualValues(t, 1, doc.Content[0].Attrs["level"])
	assert.Equal(t, "paragraph", doc.Content[1].Type)
}

func TestConvertDocumentObject(t *testing.T) {
	_, e := newTestServices(t, nil)

	resp := decodeResult(t, doJSON(e, http.MethodPost, "/api/convert/", `{"ops":{"ops":[{"insert":"a\n"}]}}`))
	assert.Equal(t, "<p>a</p>", resultString(t, resp))
}

func TestConvertErrors(t *testing.T) {
	_, e := newTestServices(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   int
	}{
		{"invalid json", `{`, http.StatusBadRequest, apierrors.ErrInvalidJSON.Code},
		{"missing ops", `{"format":"html"}`, http.StatusBadRequest, apierrors.ErrValidation.Code},
		{"unsupported format", convertBody(`[]`, "docx"), http.StatusBadRequest, apierrors.ErrUnsupportedFormat.Code},
		{"malformed insert", convertBody(`[{"insert":5}]`, ""), http.StatusUnprocessableEntity, apierrors.ErrMalformedDelta.Code},
		{"ops not a list", convertBody(`"text"`, ""), http.StatusUnprocessableEntity, apierrors.ErrMalformedDelta.Code},
		{"bad paragraph tag", `{"ops":[],"options":{"paragraph_tag":"script"}}`, http.StatusBadRequest, apierrors.ErrValidation.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/convert/", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestConvertUnsupportedFormatMessage(t *testing.T) {
	_, e := newTestServices(t, nil)

	rec := doJSON(e, http.MethodPost, "/api/convert/", convertBody(`[]`, "docx"))
	assert.Equal(t, "unsupported output format docx", decodeError(t, rec).Err)
}

func TestConvertOptions(t *testing.T) {
	_, e := newTestServices(t, nil)

	ops := `[{"insert":"a"},{"insert":"\n","attributes":{"header":1}},{"insert":"b"},{"insert":"\n","attributes":{"header":1}},{"insert":"c\n"}]`

	resp := decodeResult(t, doJSON(e, http.MethodPost, "/api/convert/", `{"ops":`+ops+`}`))
	assert.Equal(t, "<h1>a<br/>b</h1><p>c</p>", resultString(t, resp))

	resp = decodeResult(t, doJSON(e, http.MethodPost, "/api/convert/",
		`{"ops":`+ops+`,"options":{"paragraph_tag":"div","multiline_header":false}}`))
	assert.Equal(t, "<h1>a</h1><h1>b</h1><div>c</div>", resultString(t, resp))
}

func TestConvertMinify(t *testing.T) {
	_, e := newTestServices(t, func(cfg *config.Config) {
		cfg.MinifyHTML = true
	})

	resp := decodeResult(t, doJSON(e, http.MethodPost, "/api/convert/", convertBody(`[{"insert":"a   b\n"}]`, "")))
	assert.Equal(t, "<p>a b</p>", resultString(t, resp))
}

func TestConvertPDF(t *testing.T) {
	_, e := newTestServices(t, nil)

	rec := doJSON(e, http.MethodPost, "/api/convert/pdf/", convertBody(headerAndParagraph, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = doJSON(e, http.MethodPost, "/api/convert/pdf/", convertBody(`[{"insert":5}]`, ""))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGroups(t *testing.T) {
	_, e := newTestServices(t, nil)

	rec := doJSON(e, http.MethodPost, "/api/groups/", convertBody(headerAndParagraph, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Ops    int `json:"ops"`
		Groups []struct {
			Type string `json:"type"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Ops)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "block", resp.Groups[0].Type)
	assert.Equal(t, "inline-group", resp.Groups[1].Type)
}

func TestBatch(t *testing.T) {
	s, e := newTestServices(t, func(cfg *config.Config) {
		cfg.MaxBatch = 3
	})

	body := `{"documents":[` +
		convertBody(`[{"insert":"one\n"}]`, "") + `,` +
		convertBody(`[{"insert":"two\n"}]`, "markdown") + `,` +
		convertBody(`[{"insert":"three\n"}]`, "text") + `]}`

	rec := doJSON(e, http.MethodPost, "/api/batch/", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Results []testConvertResponse `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "<p>one</p>", resultString(t, resp.Results[0]))
	assert.Equal(t, "two", resultString(t, resp.Results[1]))
	assert.Equal(t, "three", resultString(t, resp.Results[2]))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.conversions.WithLabelValues(FormatHTML)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.conversions.WithLabelValues(FormatMarkdown)))
}

func TestBatchErrors(t *testing.T) {
	_, e := newTestServices(t, func(cfg *config.Config) {
		cfg.MaxBatch = 2
	})

	doc := convertBody(`[{"insert":"a\n"}]`, "")
	bad := convertBody(`[{"insert":5}]`, "")

	tests := []struct {
		name   string
		body   string
		status int
		code   int
		msg    string
	}{
		{"empty", `{"documents":[]}`, http.StatusBadRequest, apierrors.ErrEmptyBatch.Code, "batch is empty"},
		{"too large", `{"documents":[` + doc + `,` + doc + `,` + doc + `]}`, http.StatusRequestEntityTooLarge, apierrors.ErrBatchTooLarge.Code, "batch size exceeds 2 documents"},
		{"malformed item", `{"documents":[` + doc + `,` + bad + `]}`, http.StatusUnprocessableEntity, apierrors.ErrBatchItemMalformed.Code, "document 1 is malformed"},
		{"invalid item format", `{"documents":[` + convertBody(`[]`, "docx") + `]}`, http.StatusBadRequest, apierrors.ErrUnsupportedFormat.Code, "unsupported output format docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/batch/", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.msg, resp.Err)
		})
	}
}

func TestCustomRenderScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "render.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
function RenderCustom(op, context)
	if op.kind == "chart" then
		return "<canvas data-id=\"" .. op.value.id .. "\"></canvas>"
	end
	error("unknown embed " .. op.kind)
end`), 0o644))

	s, e := newTestServices(t, func(cfg *config.Config) {
		cfg.CustomRenderScriptPath = script
	})

	resp := decodeResult(t, doJSON(e, http.MethodPost, "/api/convert/", convertBody(`[{"insert":{"chart":{"id":"c1"}}},{"insert":"\n"}]`, "")))
	assert.Equal(t, `<p><canvas data-id="c1"></canvas></p>`, resultString(t, resp))

	rec := doJSON(e, http.MethodPost, "/api/convert/", convertBody(`[{"insert":{"table":{}}},{"insert":"\n"}]`, ""))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, apierrors.ErrRenderScriptFail.Code, errResp.Code)
	assert.Contains(t, errResp.Err, "unknown embed table")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.scriptErrors.WithLabelValues("2005")))
}

func TestCustomRenderScriptSyntaxError(t *testing.T) {
	script := filepath.Join(t.TempDir(), "render.lua")
	require.NoError(t, os.WriteFile(script, []byte(`function RenderCustom(`), 0o644))

	cfg := config.ReadConfig()
	cfg.CustomRenderScriptPath = script
	_, err := NewServices(cfg, "test", prometheus.NewRegistry())
	require.Error(t, err)
}

func TestVersionAndHealth(t *testing.T) {
	_, e := newTestServices(t, nil)

	rec := doJSON(e, http.MethodGet, "/api/version/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "delta2html", rec.Header().Get(echo.HeaderServer))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp["version"])
	assert.Equal(t, []any{"html", "markdown", "text", "tiptap", "pdf"}, resp["formats"])
	assert.Equal(t, false, resp["custom_script"])

	rec = doJSON(e, http.MethodGet, "/api/_health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	_, e := newTestServices(t, func(cfg *config.Config) {
		cfg.BodyLimit = "1K"
	})

	ops := `[{"insert":"` + strings.Repeat("a", 2048) + `\n"}]`
	rec := doJSON(e, http.MethodPost, "/api/convert/", convertBody(ops, ""))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apierrors.ErrEntityToLarge.Code, decodeError(t, rec).Code)
}

func TestMCPToken(t *testing.T) {
	_, e := newTestServices(t, func(cfg *config.Config) {
		cfg.MCPEnable = true
		cfg.MCPToken = "secret"
	})

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`

	rec := doJSON(e, http.MethodPost, "/mcp", initialize)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apierrors.ErrUnauthorized.Code, decodeError(t, rec).Code)

	rec = doJSON(e, http.MethodPost, "/mcp", initialize,
		echo.HeaderAuthorization, "Bearer secret",
		echo.HeaderAccept, "application/json, text/event-stream")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "delta2html-mcp")
}

func TestMCPDisabled(t *testing.T) {
	_, e := newTestServices(t, nil)

	rec := doJSON(e, http.MethodPost, "/mcp", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewWebsocket(t *testing.T) {
	_, e := newTestServices(t, nil)
	srv := httptest.NewServer(e)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws/preview/", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{
		"ops":    json.RawMessage(`[{"insert":"hi","attributes":{"italic":true}},{"insert":"\n"}]`),
		"format": "markdown",
	}))
	var msg PreviewMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Nil(t, msg.Error)
	assert.Equal(t, "<p><em>hi</em></p>", msg.Result)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{
		"ops": json.RawMessage(`[{"insert":5}]`),
	}))
	msg = PreviewMessage{}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.NotNil(t, msg.Error)
	assert.Equal(t, apierrors.ErrMalformedDelta.Code, msg.Error.Code)
	assert.Empty(t, msg.Result)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestRateLimit(t *testing.T) {
	_, e := newTestServices(t, func(cfg *config.Config) {
		cfg.RateLimit = 1
	})

	body := convertBody(`[{"insert":"a\n"}]`, "")
	assert.Equal(t, http.StatusOK, doJSON(e, http.MethodPost, "/api/convert/", body).Code)
	assert.Equal(t, http.StatusOK, doJSON(e, http.MethodPost, "/api/convert/", body).Code)

	rec := doJSON(e, http.MethodPost, "/api/convert/", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apierrors.ErrRateLimited.Code, decodeError(t, rec).Code)

	assert.Equal(t, http.StatusOK, doJSON(e, http.MethodGet, "/api/_health/", "").Code, "health is not limited")
}
