package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level     string
	Console   bool
	Component string
}

type ctxKey string

const (
	ctxReqIDKey  ctxKey = "request_id"
	ctxComponent ctxKey = "component"
	ctxFenceKey  ctxKey = "fence_id"
)

func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		reqID = NewID()
	}
	return context.WithValue(ctx, ctxReqIDKey, reqID)
}

func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxComponent, component)
}

func WithFenceID(ctx context.Context, fenceID string) context.Context {
	if fenceID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxFenceKey, fenceID)
}

func NewID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func Build(cfg Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "msg"

	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	base := zerolog.New(out)

	lvl := strings.ToLower(strings.TrimSpace(cfg.Level))
	level, err := zerolog.ParseLevel(lvl)
	if err != nil || lvl == "" {
		level = zerolog.InfoLevel
	}

	lg := base.Level(level).With().Timestamp()
	if cfg.Component != "" {
		lg = lg.Str("component", cfg.Component)
	}
	return lg.Logger()
}

// FromContext returns the base logger enriched with any request
// metadata carried by ctx.
func FromContext(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	if ctx == nil || base == nil {
		return base
	}
	lc := base.With()
	if v, ok := ctx.Value(ctxReqIDKey).(string); ok && v != "" {
		lc = lc.Str("request_id", v)
	}
	if v, ok := ctx.Value(ctxComponent).(string); ok && v != "" {
		lc = lc.Str("component", v)
	}
	if v, ok := ctx.Value(ctxFenceKey).(string); ok && v != "" {
		lc = lc.Str("fence_id", v)
	}
	lg := lc.Logger()
	return &lg
}
