package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// envConfig заполняет поля структуры s из переменных окружения, имена которых
// лежат в теге key. Пустая или некорректная переменная оставляет значение по умолчанию.
func envConfig(key string, s any) {
	v := reflect.ValueOf(s).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get(key)
		if name == "" {
			continue
		}

		raw, ok := os.LookupEnv(name)
		if !ok || raw == "" {
			continue
		}

		if err := setField(v.Field(i), raw); err != nil {
			slog.Warn("Skip config value", "env", name, "err", err)
			continue
		}

		logValue := raw
		if isSecret(field.Name) {
			logValue = maskValue(raw)
		}
		slog.Info("Set config value",
			slog.String("key", t.Name()+"."+field.Name),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)
	}
}

func setField(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse int %q: %w", raw, err)
		}
		f.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse bool %q: %w", raw, err)
		}
		f.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind())
	}
	return nil
}

func isSecret(field string) bool {
	field = strings.ToLower(field)
	return strings.Contains(field, "pass") || strings.Contains(field, "secret") || strings.Contains(field, "token")
}

func maskValue(val string) string {
	runes := []rune(val)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
