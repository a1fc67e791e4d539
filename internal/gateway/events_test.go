package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRouter(t *testing.T) {
	r := NewDefaultRouter()
	ctx := context.Background()

	out := r.Handle(ctx, Event{Event: "ping"})
	require.Len(t, out, 1)
	assert.Equal(t, "pong", out[0].Event)

	out = r.Handle(ctx, Event{Event: "message", Data: json.RawMessage(`"hello"`)})
	require.Len(t, out, 1)
	assert.Equal(t, "message", out[0].Event)
	b, err := json.Marshal(out[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"message","data":"hello"}`, string(b))

	assert.Empty(t, r.Handle(ctx, Event{Event: "nope"}))
}

func TestRouter_MultipleMessages(t *testing.T) {
	r := NewRouter().On("fanout", HandlerFunc(func(context.Context, Event) []Message {
		return []Message{{Event: "a"}, {Event: "b"}, {Event: "c"}}
	}))

	out := r.Handle(context.Background(), Event{Event: "fanout"})
	require.Len(t, out, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].Event, out[1].Event, out[2].Event})
}
