// Пакет source загружает исходный документ Quill Delta для консольной утилиты.
//
// Основные возможности:
//   - Чтение из файла или стандартного ввода ("-").
//   - Загрузка по http(s) адресу с повторами при временных ошибках.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/hashicorp/go-retryablehttp"
)

const maxSourceSize = 64 << 20

type Loader struct {
	client *retryablehttp.Client
}

func NewLoader() *Loader {
	cl := retryablehttp.NewClient()
	cl.RetryMax = 5
	cl.RetryWaitMin = time.Second
	cl.RetryWaitMax = time.Second * 10
	cl.Logger = slog.Default()
	return &Loader{client: cl}
}

// Load читает документ из in. Пустой путь и "-" означают stdin.
func (l *Loader) Load(ctx context.Context, in string, stdin io.Reader) ([]byte, error) {
	switch {
	case in == "" || in == "-":
		return readLimited(stdin)
	case IsURL(in):
		return l.fetch(ctx, in)
	}

	f, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

func IsURL(in string) bool {
	return strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://")
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apierrors.ErrSourceFetch.WithFormattedMessage(err.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, apierrors.ErrSourceFetch.WithFormattedMessage(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apierrors.ErrSourceFetch.WithFormattedMessage(resp.Status)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, apierrors.ErrSourceFetch.WithFormattedMessage(err.Error())
	}
	slog.Debug("Source fetched", "url", url, "size", len(data))
	return data, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSourceSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSourceSize {
		return nil, fmt.Errorf("source exceeds %d bytes", maxSourceSize)
	}
	return data, nil
}
