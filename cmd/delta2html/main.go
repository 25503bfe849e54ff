// Консольная утилита и HTTP сервис преобразования документов Quill Delta.
//
// Без флага -serve читает документ из файла, stdin или по адресу и пишет результат в -out.
// С флагом -serve запускает HTTP сервис с параметрами из переменных окружения.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aisa-it/delta2html/internal/delta2html"
	"github.com/aisa-it/delta2html/internal/delta2html/config"
	"github.com/aisa-it/delta2html/internal/delta2html/source"
	"github.com/prometheus/client_golang/prometheus"
)

var version string = "DEV"

// Пример запуска: go run main.go -in doc.json -format markdown -out doc.md
func main() {
	in := flag.String("in", "-", "Source document: file path, - for stdin or http(s) URL")
	out := flag.String("out", "-", "Output file, - for stdout")
	format := flag.String("format", delta2html.FormatHTML, "Output format: html, markdown, text, tiptap or pdf")
	serve := flag.Bool("serve", false, "Run HTTP service")
	trace := flag.Bool("trace", false, "Verbose logs")
	flag.Parse()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg := config.ReadConfig()

	if *serve {
		PrintBanner()

		// Set prod log format
		if version != "DEV" {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
		}

		slog.Info("delta2html start.", "addr", cfg.ListenAddr)
		delta2html.Server(cfg, version)
		return
	}

	// stdout занят результатом
	level := slog.LevelInfo
	if *trace {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *in, *out, *format); err != nil {
		slog.Error("Convert document", "in", *in, "format", *format, "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, in, out, format string) error {
	data, err := source.NewLoader().Load(ctx, in, os.Stdin)
	if err != nil {
		return err
	}

	s, err := delta2html.NewServices(cfg, version, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	result, err := convert(ctx, s, data, format)
	if err != nil {
		return err
	}

	return writeOutput(out, result)
}

func convert(ctx context.Context, s *delta2html.Services, data []byte, format string) ([]byte, error) {
	req := delta2html.ConvertRequest{Ops: data, Format: format}

	if format == delta2html.FormatPDF {
		_, pdf, err := s.ConvertPDF(ctx, req)
		return pdf, err
	}

	resp, err := s.Convert(ctx, req)
	if err != nil {
		return nil, err
	}
	switch v := resp.Result.(type) {
	case string:
		return []byte(v + "\n"), nil
	case json.RawMessage:
		return append(v, '\n'), nil
	}
	return json.Marshal(resp.Result)
}

func writeOutput(out string, data []byte) error {
	var w io.Writer = os.Stdout
	if out != "" && out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := w.Write(data)
	return err
}

// PrintBanner выводит заголовок сервиса с версией.
func PrintBanner() {
	banner := `
     _      _ _        ____  _     _             _
  __| | ___| | |_ __ _|___ \| |__ | |_ _ __ ___ | |
 / _  |/ _ \ | __/ _  | __) | '_ \| __| '_ ' _ \| |
| (_| |  __/ | || (_| |/ __/| | | | |_| | | | | | |
 \__,_|\___|_|\__\__,_|_____|_| |_|\__|_| |_| |_|_| %s
Quill Delta to HTML, Markdown, text, TipTap and PDF
%s
----------------------------------------------------
`
	colorReset := "\033[0m"

	colorYellow := "\033[33m"
	colorBlue := "\033[34m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion, colorBlue+"https://aisa.ru"+colorReset)
}
