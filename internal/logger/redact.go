package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RedactionMarker replaces the values of sensitive fields in log payloads.
const RedactionMarker = "[REDACTED]"

// sensitiveNames are matched as case-insensitive substrings of field keys,
// so variants such as accessToken or API_KEY are caught too.
var sensitiveNames = []string{
	"token",
	"password",
	"secret",
	"apikey",
	"api_key",
	"authorization",
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, name := range sensitiveNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

// redactFields returns a copy of fields with sensitive values replaced by
// RedactionMarker. String-keyed maps carried in a field are scanned
// recursively; other payload shapes pass through unchanged.
func redactFields(fields []zap.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = redactField(f)
	}
	return out
}

func redactField(f zap.Field) zap.Field {
	if isSensitiveKey(f.Key) {
		return zap.String(f.Key, RedactionMarker)
	}

	if f.Type == zapcore.ReflectType && f.Interface != nil {
		switch m := f.Interface.(type) {
		case map[string]interface{}:
			return zap.Any(f.Key, redactAnyMap(m))
		case map[string]string:
			return zap.Any(f.Key, redactStringMap(m))
		}
	}

	return f
}

func redactAnyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if isSensitiveKey(k) {
			out[k] = RedactionMarker
			continue
		}
		switch nested := v.(type) {
		case map[string]interface{}:
			out[k] = redactAnyMap(nested)
		case map[string]string:
			out[k] = redactStringMap(nested)
		default:
			out[k] = v
		}
	}
	return out
}

func redactStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if isSensitiveKey(k) {
			out[k] = RedactionMarker
			continue
		}
		out[k] = v
	}
	return out
}
