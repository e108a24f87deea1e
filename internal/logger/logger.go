package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const RequestIDKey ctxKey = "requestId"

// SlowThreshold после которого Track пишет предупреждение
const SlowThreshold = 500 * time.Millisecond

// New собирает логгер по уровню и формату. Неизвестный уровень -> info.
func New(level string, json bool, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(out)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

type loggerKey struct{}

// WithLogger кладет логгер в контекст; For достает его обратно
func WithLogger(ctx context.Context, l *logrus.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func For(ctx context.Context) *logrus.Entry {
	l, ok := ctx.Value(loggerKey{}).(*logrus.Logger)
	if !ok {
		l = logrus.StandardLogger()
	}
	entry := logrus.NewEntry(l)
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		entry = entry.WithField("request_id", id)
	}
	return entry
}

func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func IDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func Track(ctx context.Context, msg string) func() {
	start := time.Now()
	return func() {
		dur := time.Since(start)
		entry := For(ctx).WithField("duration", dur.String())

		if dur > SlowThreshold {
			entry.Warnf("%s completed (SLOW)", msg)
		} else {
			entry.Infof("%s completed", msg)
		}
	}
}
