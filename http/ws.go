package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bankpredict/inference"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsReadLimit  = 16 << 10
)

// MessageType websocket消息类型
type MessageType string

const (
	MessageResult MessageType = "result"
	MessageError  MessageType = "error"
)

// wsMessage 服务端发送的消息
type wsMessage struct {
	Type   MessageType       `json:"type"`
	Result *inference.Result `json:"result,omitempty"`
	Error  *ErrorResponse    `json:"error,omitempty"`
}

// wsSession 单个websocket连接，每条文本消息是一个RawRecord
type wsSession struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger *zap.Logger
}

// handlePredictWS 处理实时预测websocket连接
func (h *handlers) handlePredictWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	requestID := GetRequestID(r.Context())
	session := &wsSession{
		conn:   conn,
		send:   make(chan []byte, 16),
		done:   make(chan struct{}),
		logger: h.logger.With(zap.String("request_id", requestID)),
	}
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), RequestIDKey, requestID))
	defer cancel()

	go session.writePump()
	session.readPump(ctx, h)
}

// readPump 读取请求并逐条预测
func (s *wsSession) readPump(ctx context.Context, h *handlers) {
	defer close(s.send)

	s.conn.SetReadLimit(wsReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		msg := wsMessage{Type: MessageResult}
		record, err := decodeRawRecord(h.requestSchema, data)
		if err != nil {
			h.recordFailure(ctx, channelWebSocket, err)
		} else {
			msg.Result, err = h.predict(ctx, channelWebSocket, record)
		}
		if err != nil {
			_, resp := classifyError(err)
			msg = wsMessage{Type: MessageError, Error: &resp}
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			s.logger.Error("encode websocket message failed", zap.Error(err))
			return
		}
		select {
		case s.send <- payload:
		case <-s.done:
			return
		}
	}
}

// writePump 发送结果并定期ping
func (s *wsSession) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		close(s.done)
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("websocket write error", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
