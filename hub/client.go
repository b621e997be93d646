package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	outboxSize   = 256
	commandRate  = 10
	commandBurst = 20
)

// client owns the outgoing side of one connection. send never blocks; the
// outbox is drained by writePump until close.
type client struct {
	userID    string
	socket    NetworkSession
	limiter   *rate.Limiter
	outbox    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(userID string, socket NetworkSession) *client {
	return &client{
		userID:  userID,
		socket:  socket,
		limiter: rate.NewLimiter(commandRate, commandBurst),
		outbox:  make(chan []byte, outboxSize),
		done:    make(chan struct{}),
	}
}

func (c *client) send(msgType string, payload any) {
	data, err := json.Marshal(outbound{Type: msgType, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("user", c.userID).Str("type", msgType).Msg("client: marshal failed")
		return
	}

	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.outbox <- data:
	default:
		log.Warn().Str("user", c.userID).Str("type", msgType).Msg("client: outbox full, message dropped")
	}
}

func (c *client) sendError(code string) {
	c.send(MsgError, errorPayload{Code: code})
}

func (c *client) writePump(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.outbox:
			if err := c.socket.Write(data); err != nil {
				c.close("")
				return
			}
		case <-ticker.C:
			if err := c.socket.Ping(); err != nil {
				c.close("")
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump decodes commands until the socket fails. Commands over the rate
// limit are answered with an error and dropped.
func (c *client) readPump(handle func(inbound)) {
	for {
		data, err := c.socket.Read()
		if err != nil {
			return
		}

		if !c.limiter.Allow() {
			c.sendError(ErrRateLimitedStr)
			continue
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			c.sendError(ErrBadMessageFormatStr)
			continue
		}

		handle(msg)
	}
}

func (c *client) close(code string) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.socket.Close(code)
	})
}
