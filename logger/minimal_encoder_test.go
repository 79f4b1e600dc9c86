package logger

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func encode(t *testing.T, enc zapcore.Encoder, level zapcore.Level, msg string, fields ...zapcore.Field) string {
	t.Helper()
	buf, err := enc.EncodeEntry(zapcore.Entry{
		Level:      level,
		Time:       time.Date(2026, 1, 2, 13, 4, 35, 0, time.UTC),
		LoggerName: "genapi",
		Message:    msg,
	}, fields)
	require.NoError(t, err)
	defer buf.Free()
	return buf.String()
}

func TestMinimalEncoder_Format(t *testing.T) {
	enc := newMinimalEncoder(false)

	line := encode(t, enc, zapcore.InfoLevel, "Generated",
		zap.String(FieldRunID, "r-1"),
		zap.String(FieldPageTitle, "Category:City"),
		zap.String(FieldTarget, "category"),
		zap.Int64(FieldDurationMS, 12),
	)
	assert.Equal(t, "13:04:35  genapi  Generated  target=category page_title=Category:City duration_ms=12ms run_id=r-1\n", line)

	line = encode(t, enc, zapcore.WarnLevel, "Page failed", zap.Error(errors.New("boom")))
	assert.Equal(t, "13:04:35  WARN  genapi  Page failed  error=boom\n", line)
}

func TestMinimalEncoder_NeverDropsFields(t *testing.T) {
	enc := newMinimalEncoder(true)

	fields := []struct {
		field    zapcore.Field
		mustFind string
	}{
		{zap.String("random_field_xyz", "important_data"), "random_field_xyz=important_data"},
		{zap.Bool("dry_run", true), "dry_run=true"},
		{zap.Float64("ratio", 0.5), "ratio=0.5"},
		{zap.Int32("count", 42), "count=42"},
		{zap.Strings("topics", []string{"City", "Country"}), "topics=[City Country]"},
		{zap.String("field.with.dots", "x"), "field.with.dots=x"},
	}

	var zf []zapcore.Field
	for _, f := range fields {
		zf = append(zf, f.field)
	}
	line := stripANSI(encode(t, enc, zapcore.ErrorLevel, "msg", zf...))
	assert.True(t, strings.HasPrefix(line, "13:04:35  ERROR  genapi  msg  "))
	for _, f := range fields {
		assert.Contains(t, line, f.mustFind)
	}
}

func TestMinimalEncoder_WithFieldsSurviveClone(t *testing.T) {
	enc := newMinimalEncoder(false)
	enc.AddString(FieldRunID, "run-7")

	clone := enc.Clone()
	clone.AddString(FieldTopic, "City")

	assert.Contains(t, encode(t, clone, zapcore.InfoLevel, "m"), "run_id=run-7 topic=City")
	// the original is unaffected by fields added to the clone
	assert.NotContains(t, encode(t, enc, zapcore.InfoLevel, "m"), "topic=")
}

func TestMinimalEncoder_Color(t *testing.T) {
	plain := encode(t, newMinimalEncoder(false), zapcore.InfoLevel, "m", zap.String("k", "v"))
	colored := encode(t, newMinimalEncoder(true), zapcore.InfoLevel, "m", zap.String("k", "v"))

	assert.NotContains(t, plain, "\x1b[")
	assert.Contains(t, colored, "\x1b[")
	assert.Equal(t, plain, stripANSI(colored))
}
