package logger

import (
	"context"
	"errors"
	log "log/slog"
)

// fanoutHandler 将一条记录写到所有启用的 Handler，单个失败不影响其余输出
type fanoutHandler []log.Handler

// Fanout 组合多个 Handler
func Fanout(handlers ...log.Handler) log.Handler {
	return fanoutHandler(handlers)
}

func (f fanoutHandler) Enabled(ctx context.Context, level log.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r log.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return f.each(func(h log.Handler) log.Handler { return h.WithAttrs(attrs) })
}

func (f fanoutHandler) WithGroup(name string) log.Handler {
	return f.each(func(h log.Handler) log.Handler { return h.WithGroup(name) })
}

func (f fanoutHandler) each(fn func(log.Handler) log.Handler) fanoutHandler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}

// RemoteFilterHandler 远端只收请求链路内的日志（带 trace_id），
// 以及不低于 Floor 级别的后台日志，例如启动失败或 Kafka 投递失败
type RemoteFilterHandler struct {
	next  log.Handler
	Floor log.Level
}

func NewRemoteFilter(next log.Handler) *RemoteFilterHandler {
	return &RemoteFilterHandler{next: next, Floor: log.LevelWarn}
}

func (s *RemoteFilterHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *RemoteFilterHandler) Handle(ctx context.Context, r log.Record) error {
	if r.Level >= s.Floor || hasTraceID(r) {
		return s.next.Handle(ctx, r)
	}
	return nil
}

func hasTraceID(r log.Record) bool {
	found := false
	r.Attrs(func(a log.Attr) bool {
		found = a.Key == TraceIDKey && a.Value.String() != ""
		return !found
	})
	return found
}

func (s *RemoteFilterHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &RemoteFilterHandler{next: s.next.WithAttrs(attrs), Floor: s.Floor}
}

func (s *RemoteFilterHandler) WithGroup(name string) log.Handler {
	return &RemoteFilterHandler{next: s.next.WithGroup(name), Floor: s.Floor}
}
