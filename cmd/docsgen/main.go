// Генерация документации об ошибках API конвертера в формате Markdown.
// Разбирает файл с определениями apierrors.DefinedError и строит таблицы ошибок по разделам.
//
// Основные возможности:
//   - Извлечение кода, HTTP статуса и сообщений из литералов DefinedError.
//   - Разделы документа по комментариям вида "1*** - request errors".
//   - Сборка Markdown-документа с таблицей на каждый раздел.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"
)

// errorSection ошибки одного блока var с общим комментарием.
type errorSection struct {
	Title string
	Rows  [][]string
}

func main() {
	errorsFile := flag.String("src", "internal/delta2html/apierrors/apierrors.go", "Path of apierrors.go")
	outputMd := flag.String("out", "api_error.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate api errors docs", "src", *errorsFile, "out", *outputMd)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, *errorsFile, nil, parser.ParseComments)
	if err != nil {
		slog.Error("Parse errors file", "err", err)
		os.Exit(1)
	}

	out, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output", "err", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeDocs(out, parseSections(f)); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated")
}

func writeDocs(w io.Writer, sections []errorSection) error {
	doc := md.NewMarkdown(w).
		H1("Перечень кодов ошибок").
		PlainText("Ошибки сервиса возвращаются в виде JSON объекта с полями code, error и ru_error.")

	for _, s := range sections {
		doc = doc.H2(s.Title).CustomTable(md.TableSet{
			Header: []string{"Код", "HTTP код", "Ошибка", "Сообщение", "Сообщение на русском"},
			Rows:   s.Rows,
		}, md.TableOptions{
			AutoWrapText: false,
		})
	}
	return doc.Build()
}

// parseSections собирает ошибки из всех блоков var файла.
// Комментарий перед первой ошибкой группы становится заголовком раздела.
func parseSections(f *ast.File) []errorSection {
	var sections []errorSection
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok || decl.Tok != token.VAR {
			continue
		}

		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok || len(vs.Values) != len(vs.Names) {
				continue
			}

			if vs.Doc != nil || len(sections) == 0 {
				sections = append(sections, errorSection{Title: sectionTitle(vs.Doc)})
			}
			current := &sections[len(sections)-1]

			for i, name := range vs.Names {
				lit, ok := vs.Values[i].(*ast.CompositeLit)
				if !ok || fmt.Sprint(lit.Type) != "DefinedError" {
					continue
				}
				current.Rows = append(current.Rows, errorRow(name.Name, lit))
			}
		}
	}

	result := sections[:0]
	for _, s := range sections {
		if len(s.Rows) > 0 {
			result = append(result, s)
		}
	}
	return result
}

func sectionTitle(doc *ast.CommentGroup) string {
	if doc == nil {
		return "Ошибки"
	}
	title := strings.TrimSpace(doc.Text())
	if _, after, ok := strings.Cut(title, " - "); ok {
		title = after
	}
	return strings.ToUpper(title[:1]) + title[1:]
}

func errorRow(name string, lit *ast.CompositeLit) []string {
	row := []string{"", statusCell(http.StatusBadRequest), md.Code(name), "", ""}
	for _, el := range lit.Elts {
		kv, ok := el.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		switch fmt.Sprint(kv.Key) {
		case "Code":
			if v, ok := kv.Value.(*ast.BasicLit); ok {
				row[0] = md.Bold(v.Value)
			}
		case "StatusCode":
			if sel, ok := kv.Value.(*ast.SelectorExpr); ok {
				if code, ok := httpStatuses[sel.Sel.Name]; ok {
					row[1] = statusCell(code)
				}
			}
		case "Err":
			row[3] = md.Code(stringValue(kv.Value))
		case "RuErr":
			row[4] = md.Code(stringValue(kv.Value))
		}
	}
	return row
}

// stringValue значение строкового литерала, в том числе склеенного через "+".
func stringValue(expr ast.Expr) string {
	switch v := expr.(type) {
	case *ast.BasicLit:
		s, err := strconv.Unquote(v.Value)
		if err != nil {
			return v.Value
		}
		return s
	case *ast.BinaryExpr:
		return stringValue(v.X) + stringValue(v.Y)
	case *ast.ParenExpr:
		return stringValue(v.X)
	}
	return ""
}

func statusCell(code int) string {
	return fmt.Sprintf("%d %s", code, md.Italic(http.StatusText(code)))
}

var httpStatuses = map[string]int{
	"StatusBadRequest":            http.StatusBadRequest,
	"StatusUnauthorized":          http.StatusUnauthorized,
	"StatusForbidden":             http.StatusForbidden,
	"StatusNotFound":              http.StatusNotFound,
	"StatusMethodNotAllowed":      http.StatusMethodNotAllowed,
	"StatusConflict":              http.StatusConflict,
	"StatusRequestEntityTooLarge": http.StatusRequestEntityTooLarge,
	"StatusUnsupportedMediaType":  http.StatusUnsupportedMediaType,
	"StatusUnprocessableEntity":   http.StatusUnprocessableEntity,
	"StatusTooManyRequests":       http.StatusTooManyRequests,
	"StatusInternalServerError":   http.StatusInternalServerError,
	"StatusNotImplemented":        http.StatusNotImplemented,
	"StatusBadGateway":            http.StatusBadGateway,
	"StatusServiceUnavailable":    http.StatusServiceUnavailable,
	"StatusGatewayTimeout":        http.StatusGatewayTimeout,
}
