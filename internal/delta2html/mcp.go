package delta2html

import (
	"context"
	"encoding/json"

	stack_error "github.com/aisa-it/delta2html/internal/delta2html/stack-error"
)

// ConvertDelta результат Convert в виде строки для инструментов MCP.
func (s *Services) ConvertDelta(ctx context.Context, ops []byte, format string) (string, error) {
	req := ConvertRequest{Ops: ops, Format: format}
	if err := s.validator.Validate(req); err != nil {
		return "", validationError(err)
	}

	resp, err := s.Convert(ctx, req)
	if err != nil {
		return "", err
	}

	switch v := resp.Result.(type) {
	case string:
		return v, nil
	case json.RawMessage:
		return string(v), nil
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return "", stack_error.TrackErrorStack(err)
	}
	return string(data), nil
}

func (s *Services) DescribeDelta(ctx context.Context, ops []byte) (string, error) {
	resp, err := s.Groups(ConvertRequest{Ops: ops})
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", stack_error.TrackErrorStack(err)
	}
	return string(data), nil
}
