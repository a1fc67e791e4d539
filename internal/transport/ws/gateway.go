package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"nextgen-training/internal/gateway"
	resp "nextgen-training/internal/transport/http/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMsgSize = 64 << 10
)

var errQueueFull = errors.New("outbound queue full")

type Options struct {
	QueueSize int // 每连接出站队列长度，默认 64
	MaxConns  int // 同时在线连接上限，<= 0 不限
}

type Gateway struct {
	handler   gateway.Handler
	queueSize int
	conns     *semaphore.Weighted // nil 表示不限
	log       *zap.Logger
	upgrader  websocket.Upgrader
}

func NewGateway(h gateway.Handler, o Options, l *zap.Logger) *Gateway {
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	var conns *semaphore.Weighted
	if o.MaxConns > 0 {
		conns = semaphore.NewWeighted(int64(o.MaxConns))
	}
	return &Gateway{
		handler:   h,
		queueSize: o.QueueSize,
		conns:     conns,
		log:       l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve 连接数由自身上限控制，不占用 HTTP 并发槽（见 middleware.ConcurrencyLimit）
func (g *Gateway) Serve(c *gin.Context) {
	if g.conns != nil {
		if !g.conns.TryAcquire(1) {
			c.AbortWithStatusJSON(http.StatusOK, resp.Failure(resp.CodeUnavailable, "too many connections"))
			return
		}
		defer g.conns.Release(1)
	}
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写过错误响应
		g.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	// 请求级超时不适用于长连接
	g.ServeConn(context.WithoutCancel(c.Request.Context()), conn)
}

func (g *Gateway) MountAPI(api *gin.RouterGroup) { api.GET("/ws/events", g.Serve) }

// ServeConn 单读协程顺序处理事件，单写协程按 FIFO 发出；队列满则断开连接
func (g *Gateway) ServeConn(ctx context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan gateway.Message, g.queueSize)
	done := make(chan struct{})
	go g.writeLoop(conn, out, done)

	err := g.readLoop(ctx, conn, out)
	close(out)
	<-done
	_ = conn.Close()

	if errors.Is(err, errQueueFull) {
		g.log.Warn("ws closed: slow consumer", zap.String("remote", conn.RemoteAddr().String()))
	} else if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		g.log.Debug("ws read ended", zap.Error(err))
	}
}

func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- gateway.Message) error {
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev gateway.Event
		var msgs []gateway.Message
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Event == "" {
			msgs = []gateway.Message{{Event: "error", Data: "invalid event"}}
		} else {
			msgs = g.handler.Handle(ctx, ev)
		}
		if !enqueue(out, msgs) {
			return errQueueFull
		}
	}
}

func (g *Gateway) writeLoop(conn *websocket.Conn, out <-chan gateway.Message, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case m, ok := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(m); err != nil {
				// 关闭底层连接让读协程退出
				_ = conn.Close()
				drain(out)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				drain(out)
				return
			}
		}
	}
}

// enqueue 不阻塞；任意一条放不进去返回 false
func enqueue(out chan<- gateway.Message, msgs []gateway.Message) bool {
	for _, m := range msgs {
		select {
		case out <- m:
		default:
			return false
		}
	}
	return true
}

func drain(out <-chan gateway.Message) {
	for range out {
	}
}
