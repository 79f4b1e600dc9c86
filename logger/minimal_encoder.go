package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// Everforest Dark palette
const (
	colorTime      = "\x1b[38;5;107m"
	colorComponent = "\x1b[38;5;208m"
	colorKey       = "\x1b[38;5;65m"
	colorValue     = "\x1b[38;5;223m"
	colorNumber    = "\x1b[38;5;108m"
	colorWarn      = "\x1b[38;5;179m"
	colorWarnBg    = "\x1b[48;5;58m"
	colorError     = "\x1b[38;5;167m"
	colorErrorBg   = "\x1b[48;5;52m"
)

// leadingFields are printed first, in this order, so a batch reads as a
// column of page titles and outcomes. Everything else follows sorted by key.
var leadingFields = []string{FieldTarget, FieldPageTitle, FieldOutcome, FieldStatus, FieldAdded, FieldDeleted}

var bufferPool = buffer.NewPool()

// minimalEncoder is a compact console encoder.
// Format: "13:04:35  WARN  genapi  Page failed  target=form page_title=Form:City error=..."
// Info entries carry no level. Fields are never dropped.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder // context fields added via With
	color                     bool
}

func newMinimalEncoder(color bool) *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: color}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := newMinimalEncoder(enc.color)
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return clone
}

func (enc *minimalEncoder) paint(color, s string) string {
	if !enc.color || s == "" {
		return s
	}
	return color + s + colorReset
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(enc.paint(colorTime, ent.Time.Format("15:04:05")))

	if level := enc.levelString(ent.Level); level != "" {
		final.AppendString("  ")
		final.AppendString(level)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(enc.paint(colorComponent, ent.LoggerName))
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	all := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		all.Fields[k] = v
	}
	for _, field := range fields {
		field.AddTo(all)
	}
	if rendered := enc.renderFields(all.Fields); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

// levelString is empty for info and below, bold with background above
func (enc *minimalEncoder) levelString(level zapcore.Level) string {
	switch {
	case level <= zapcore.InfoLevel:
		if level == zapcore.DebugLevel {
			return "DEBUG"
		}
		return ""
	case level == zapcore.WarnLevel:
		if !enc.color {
			return "WARN"
		}
		return colorBold + colorWarnBg + colorWarn + "WARN" + colorReset
	default:
		if !enc.color {
			return level.CapitalString()
		}
		return colorBold + colorErrorBg + colorError + level.CapitalString() + colorReset
	}
}

// renderFields prints key=value pairs, leading fields first
func (enc *minimalEncoder) renderFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	seen := make(map[string]bool, len(fields))
	var keys []string
	for _, key := range leadingFields {
		if _, ok := fields[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range fields {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, enc.paint(colorKey, key+"=")+enc.formatValue(key, fields[key]))
	}
	return strings.Join(parts, " ")
}

func (enc *minimalEncoder) formatValue(key string, value interface{}) string {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		s := fmt.Sprint(v)
		if key == FieldDurationMS {
			s += "ms"
		}
		return enc.paint(colorNumber, s)
	case string:
		return enc.paint(colorValue, v)
	default:
		return enc.paint(colorValue, fmt.Sprint(v))
	}
}
