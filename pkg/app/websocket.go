package app

import (
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/link-editor-service/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

const (
	WebSocketServerPingInterval = 25 * time.Second
	WebSocketServerPingWait     = 40 * time.Second
)

// WebSocketMessage 客户端消息，线上格式为 "Type|Data"
type WebSocketMessage struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

// WSConfig WebSocket 服务配置
type WSConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
	Logger       *zap.Logger
}

// WebsocketClient 存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn *gws.Conn
	done chan struct{}
	Ctx  *gin.Context

	mu      sync.Mutex
	onClose []func()
	closed  bool
}

// WSResult WebSocket 推送结构
type WSResult struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

// OnClose registers fn to run once when the connection closes.
// fn runs immediately when the connection is already closed.
func (c *WebsocketClient) OnClose(fn func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		fn()
		return
	}
	c.onClose = append(c.onClose, fn)
	c.mu.Unlock()
}

func (c *WebsocketClient) runClose() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	hooks := c.onClose
	c.onClose = nil
	c.mu.Unlock()

	close(c.done)
	for _, fn := range hooks {
		fn()
	}
}

// Lang returns the negotiated language of the upgrade request
func (c *WebsocketClient) Lang() string {
	if c.Ctx == nil {
		return code.FALLBACK_LNG
	}
	return NewResponse(c.Ctx).Lang()
}

// PingLoop 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WritePing(nil); err != nil {
				return
			}
		}
	}
}

// ToResponse 将结果转换为 JSON 格式并发送给客户端
func (c *WebsocketClient) ToResponse(codeObj *code.Code, action string) error {
	res := WSResult{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.MsgIn(c.Lang()),
		Data:    codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		res.Details = strings.Join(codeObj.Details(), ",")
	}
	return c.Send(action, res)
}

// Send writes content as "action|json", or bare json when action is empty
func (c *WebsocketClient) Send(action string, content any) error {
	payload, err := sonic.Marshal(content)
	if err != nil {
		return err
	}
	if action != "" {
		payload = append([]byte(action+"|"), payload...)
	}
	return c.conn.WriteMessage(gws.OpcodeText, payload)
}

// Close closes the connection with a normal closure
func (c *WebsocketClient) Close(reason string) {
	c.conn.WriteClose(1000, []byte(reason))
}

type ConnStorage = map[*gws.Conn]*WebsocketClient

// WebsocketServer gws 事件处理器，按消息类型分发
type WebsocketServer struct {
	handlers map[string]func(*WebsocketClient, *WebSocketMessage)
	clients  ConnStorage
	mu       sync.Mutex
	up       *gws.Upgrader
	config   *WSConfig
	logger   *zap.Logger
}

func NewWebsocketServer(c WSConfig) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	w := &WebsocketServer{
		handlers: make(map[string]func(*WebsocketClient, *WebSocketMessage)),
		clients:  make(ConnStorage),
		config:   &c,
		logger:   c.Logger,
	}
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
	return w
}

// Run upgrades the request and calls onConnect before the read loop starts.
// The connection is closed when onConnect fails.
func (w *WebsocketServer) Run(onConnect func(*WebsocketClient) error) gin.HandlerFunc {

	return func(c *gin.Context) {
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			w.logger.Error("WebsocketServer upgrade err", zap.Error(err))
			return
		}
		client := &WebsocketClient{conn: socket, done: make(chan struct{}), Ctx: c.Copy()}
		w.AddClient(client)

		if onConnect != nil {
			if err := onConnect(client); err != nil {
				w.logger.Warn("WebsocketServer connect rejected", zap.Error(err))
				client.Close("Rejected")
			}
		}
		go client.PingLoop(w.config.PingInterval)
		go socket.ReadLoop()
	}
}

func (w *WebsocketServer) Use(action string, handler func(*WebsocketClient, *WebSocketMessage)) {
	w.handlers[action] = handler
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clients[conn]
}

func (w *WebsocketServer) AddClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) RemoveClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
}

// Count 当前连接数
func (w *WebsocketServer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	c := w.GetClient(conn)
	w.RemoveClient(conn)
	if c != nil {
		c.runClose()
	}
	w.logger.Debug("WebsocketServer client leave", zap.Int("count", w.Count()))
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
	if message.Opcode != gws.OpcodeText {
		return
	}
	messageStr := message.Data.String()
	if messageStr == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.GetClient(conn)
	if c == nil {
		return
	}

	var msg WebSocketMessage
	if typ, data, ok := strings.Cut(messageStr, "|"); ok {
		msg.Type = typ
		msg.Data = []byte(data)
	} else {
		msg.Type = messageStr
	}

	handler, exists := w.handlers[msg.Type]
	if !exists {
		_ = c.ToResponse(code.ErrorInvalidParams.WithDetails("unknown message type "+msg.Type), msg.Type)
		return
	}
	handler(c, &msg)
}
