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

const binanceWSURL = "wss://stream.binance.com:9443/ws"

// BinanceProvider streams best bid/ask quotes from Binance bookTicker.
type BinanceProvider struct {
	baseProvider
	conn   *websocket.Conn
	connMu sync.Mutex
	cancel context.CancelFunc

	msgID   int
	msgIDMu sync.Mutex

	pairsMu sync.RWMutex
	pairs   map[string]string // lowercase symbol -> "BASE/QUOTE"
}

// NewBinanceProvider creates a Binance feed with a 10 bps taker fee.
func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{
		baseProvider: newBaseProvider("binance", 0.001),
		pairs:        make(map[string]string),
	}
}

// Connect dials the Binance WebSocket stream.
func (b *BinanceProvider) Connect(ctx context.Context) error {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	if b.State() == StateConnected {
		return nil
	}
	b.setState(StateConnecting)

	ctx, b.cancel = context.WithCancel(ctx)
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, binanceWSURL, nil)
	if err != nil {
		b.setState(StateDisconnected)
		return fmt.Errorf("connecting to binance: %w", err)
	}

	b.conn = conn
	b.setState(StateConnected)
	go b.readLoop(ctx)
	return nil
}

// Disconnect closes the connection.
func (b *BinanceProvider) Disconnect() error {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}
	if b.conn != nil {
		err := b.conn.Close()
		b.conn = nil
		b.setState(StateDisconnected)
		return err
	}
	return nil
}

// Subscribe subscribes to bookTicker streams for the given pairs.
func (b *BinanceProvider) Subscribe(pairs []string) error {
	b.connMu.Lock()
	conn := b.conn
	b.connMu.Unlock()
	if conn == nil {
		return fmt.Errorf("binance: not connected")
	}

	streams := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		base, quote, ok := SplitPair(pair)
		if !ok {
			return fmt.Errorf("binance: malformed pair %q", pair)
		}
		symbol := strings.ToLower(base + quote)
		b.pairsMu.Lock()
		b.pairs[symbol] = base + "/" + quote
		b.pairsMu.Unlock()
		streams = append(streams, symbol+"@bookTicker")
	}

	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": streams,
		"id":     b.nextMsgID(),
	}
	return conn.WriteJSON(msg)
}

func (b *BinanceProvider) nextMsgID() int {
	b.msgIDMu.Lock()
	defer b.msgIDMu.Unlock()
	b.msgID++
	return b.msgID
}

type binanceBookTicker struct {
	Symbol string `json:"s"`
	Bid    string `json:"b"`
	Ask    string `json:"a"`
}

func (b *BinanceProvider) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b.connMu.Lock()
		conn := b.conn
		b.connMu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			b.emitErr(fmt.Errorf("binance read: %w", err))
			b.setState(StateDisconnected)
			return
		}

		var tick binanceBookTicker
		if err := json.Unmarshal(data, &tick); err != nil || tick.Symbol == "" {
			continue // subscription acks and other control frames
		}

		b.pairsMu.RLock()
		pair, ok := b.pairs[strings.ToLower(tick.Symbol)]
		b.pairsMu.RUnlock()
		if !ok {
			continue
		}
		base, quote, _ := SplitPair(pair)

		bid, err1 := strconv.ParseFloat(tick.Bid, 64)
		ask, err2 := strconv.ParseFloat(tick.Ask, 64)
		if err1 != nil || err2 != nil || bid <= 0 || ask <= 0 {
			continue
		}

		b.emit(Update{
			Exchange:  b.name,
			Base:      base,
			Quote:     quote,
			Bid:       bid,
			Ask:       ask,
			Timestamp: time.Now(),
		})
	}
}
