// Package gateway 事件网关：每个连接的入站事件按到达顺序逐个交给 Handler，
// Handler 返回零或多条出站消息。传输层见 internal/transport/ws。
package gateway

import (
	"context"
	"encoding/json"
	"sync"
)

type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type Handler interface {
	Handle(ctx context.Context, ev Event) []Message
}

type HandlerFunc func(ctx context.Context, ev Event) []Message

func (f HandlerFunc) Handle(ctx context.Context, ev Event) []Message { return f(ctx, ev) }

// Router 按事件名分发，未注册的事件不产生输出
type Router struct {
	mu     sync.RWMutex
	routes map[string]Handler
}

func NewRouter() *Router { return &Router{routes: map[string]Handler{}} }

func (r *Router) On(event string, h Handler) *Router {
	r.mu.Lock()
	r.routes[event] = h
	r.mu.Unlock()
	return r
}

func (r *Router) Handle(ctx context.Context, ev Event) []Message {
	r.mu.RLock()
	h, ok := r.routes[ev.Event]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return h.Handle(ctx, ev)
}

// NewDefaultRouter message 原样回显，ping 回 pong，identity 回显数据
func NewDefaultRouter() *Router {
	echo := HandlerFunc(func(_ context.Context, ev Event) []Message {
		if len(ev.Data) == 0 {
			return []Message{{Event: ev.Event}}
		}
		return []Message{{Event: ev.Event, Data: ev.Data}}
	})
	return NewRouter().
		On("message", echo).
		On("identity", echo).
		On("ping", HandlerFunc(func(context.Context, Event) []Message {
			return []Message{{Event: "pong"}}
		}))
}
