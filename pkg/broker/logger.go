package broker

import (
	"fmt"
	"log/slog"
)

type infoLogger struct {
	l *slog.Logger
}

func (i *infoLogger) Printf(msg string, args ...any) {
	i.l.Debug(fmt.Sprintf(msg, args...))
}

type errorLogger struct {
	l *slog.Logger
}

func (e *errorLogger) Printf(msg string, args ...any) {
	e.l.Error(fmt.Sprintf(msg, args...))
}
