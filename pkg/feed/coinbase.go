package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const coinbaseWSURL = "wss://ws-feed.exchange.coinbase.com"

// CoinbaseProvider streams ticker quotes from Coinbase Exchange.
type CoinbaseProvider struct {
	baseProvider
	conn   *websocket.Conn
	connMu sync.Mutex
	cancel context.CancelFunc
}

// NewCoinbaseProvider creates a Coinbase feed with a 60 bps taker fee.
func NewCoinbaseProvider() *CoinbaseProvider {
	return &CoinbaseProvider{
		baseProvider: newBaseProvider("coinbase", 0.006),
	}
}

// Connect dials the Coinbase WebSocket feed.
func (c *CoinbaseProvider) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.State() == StateConnected {
		return nil
	}
	c.setState(StateConnecting)

	ctx, c.cancel = context.WithCancel(ctx)
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, coinbaseWSURL, nil)
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("connecting to coinbase: %w", err)
	}

	c.conn = conn
	c.setState(StateConnected)
	go c.readLoop(ctx)
	return nil
}

// Disconnect closes the connection.
func (c *CoinbaseProvider) Disconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.setState(StateDisconnected)
		return err
	}
	return nil
}

type coinbaseSubscribeMsg struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

// Subscribe subscribes to the ticker channel for the given pairs.
func (c *CoinbaseProvider) Subscribe(pairs []string) error {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return fmt.Errorf("coinbase: not connected")
	}

	productIDs := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		base, quote, ok := SplitPair(pair)
		if !ok {
			return fmt.Errorf("coinbase: malformed pair %q", pair)
		}
		productIDs = append(productIDs, base+"-"+quote)
	}

	return conn.WriteJSON(coinbaseSubscribeMsg{
		Type:       "subscribe",
		ProductIDs: productIDs,
		Channels:   []string{"ticker"},
	})
}

type coinbaseTicker struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	BestBid   string `json:"best_bid"`
	BestAsk   string `json:"best_ask"`
}

func (c *CoinbaseProvider) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			c.emitErr(fmt.Errorf("coinbase read: %w", err))
			c.setState(StateDisconnected)
			return
		}

		var tick coinbaseTicker
		if err := json.Unmarshal(data, &tick); err != nil || tick.Type != "ticker" {
			continue
		}

		parts := strings.SplitN(tick.ProductID, "-", 2)
		if len(parts) != 2 {
			continue
		}

		bid, err1 := strconv.ParseFloat(tick.BestBid, 64)
		ask, err2 := strconv.ParseFloat(tick.BestAsk, 64)
		if err1 != nil || err2 != nil || bid <= 0 || ask <= 0 {
			continue
		}

		c.emit(Update{
			Exchange:  c.name,
			Base:      strings.ToUpper(parts[0]),
			Quote:     strings.ToUpper(parts[1]),
			Bid:       bid,
			Ask:       ask,
			Timestamp: time.Now(),
		})
	}
}
