package ingress

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"tickbook/internal/common"
	"tickbook/internal/engine"
	"tickbook/internal/ring"
)

const commandQueueSize = 1 << 12

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// envelope pairs a parsed Command with the connection that submitted it and,
// for order-entry commands, the WireOrder carrying the correlation id the
// ingress tier assigned to it — the ring buffer itself only ever carries this one plain-data
// type, same as it would for any other producer.
type envelope struct {
	cmd   common.Command
	conn  *websocket.Conn
	order *common.WireOrder
}

// newOrderEnvelope stamps an order-entry command with a fresh correlation id
// and arrival timestamp before it crosses the ring buffer. Cancel and update
// commands carry no WireOrder: they reference an existing order by id, not a
// new one.
func newOrderEnvelope(cmd common.Command, conn *websocket.Conn) envelope {
	env := envelope{cmd: cmd, conn: conn}
	switch cmd.Kind {
	case common.BidCommand, common.AskCommand, common.MarketBidCommand, common.MarketAskCommand:
		side := engine.Bid
		if cmd.Kind == common.AskCommand || cmd.Kind == common.MarketAskCommand {
			side = engine.Ask
		}
		env.order = &common.WireOrder{
			UUID:          uuid.New(),
			OrderType:     cmd.OrderType,
			Side:          side,
			LimitPrice:    cmd.Price,
			Quantity:      cmd.Quantity,
			TotalQuantity: cmd.Quantity,
			Timestamp:     time.Now(),
			Owner:         cmd.TraderID,
		}
	}
	return env
}

// Listener is the websocket/disruptor ingress tier spec.md §1 and §5 name as
// scaffolding around the matching core: it accepts connections, parses each
// message against the wire grammar of §6, and feeds commands to a single
// consumer goroutine that owns the Engine — mirroring the teacher's
// ClientSession/worker-pool/tomb.Tomb server shape, TCP swapped for
// websocket.
type Listener struct {
	address string
	engine  *engine.Engine
	logger  zerolog.Logger

	ring *ring.RingBuffer[envelope]
	// pushLock serializes the per-connection readers' pushes, so the ring
	// buffer sees exactly one producer at a time.
	pushLock sync.Mutex

	sessionsLock sync.Mutex
	sessions     map[*websocket.Conn]struct{}
}

// New constructs a Listener bound to an already-built Engine. The Engine's
// Reporter is set to this Listener, so every match fans out to all connected
// sessions.
func New(address string, eng *engine.Engine, logger zerolog.Logger) *Listener {
	l := &Listener{
		address:  address,
		engine:   eng,
		logger:   logger.With().Str("component", "ingress").Logger(),
		ring:     ring.New[envelope](commandQueueSize),
		sessions: make(map[*websocket.Conn]struct{}),
	}
	eng.SetReporter(l)
	return l
}

// Run serves the listener until ctx is cancelled. It starts the http/
// websocket listener, one reading goroutine per accepted connection, and the
// single engine-command consumer, then blocks until all of them have exited.
func (l *Listener) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", l.address)
	if err != nil {
		return fmt.Errorf("ingress: unable to start listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handleUpgrade(t, ctx))
	server := &http.Server{Handler: mux}

	t.Go(func() error {
		err := server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	t.Go(func() error {
		<-t.Dying()
		return server.Close()
	})

	t.Go(func() error {
		l.consumeCommands(ctx)
		return nil
	})

	l.logger.Info().Str("address", l.address).Msg("ingress listening")
	return t.Wait()
}

func (l *Listener) handleUpgrade(t *tomb.Tomb, ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			l.logger.Error().Err(err).Msg("websocket upgrade failed")
			return
		}
		l.addSession(conn)
		t.Go(func() error {
			l.readConnection(ctx, conn)
			return nil
		})
	}
}

// readConnection reads messages off one connection for its lifetime,
// pushing each parsed Command onto the shared ring buffer. One goroutine per
// connection, matching the teacher's per-task worker shape but long-lived
// for the life of the websocket session rather than one message at a time.
func (l *Listener) readConnection(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		l.removeSession(conn)
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			l.logger.Debug().Err(err).Msg("connection closed")
			return
		}

		cmd, err := parseCommand(string(data))
		if err != nil {
			l.logger.Debug().Err(err).Msg("rejecting malformed message")
			conn.WriteJSON(map[string]string{"error": err.Error()})
			continue
		}

		l.pushLock.Lock()
		pushed := l.ring.Push(ctx, newOrderEnvelope(cmd, conn))
		l.pushLock.Unlock()
		if !pushed {
			return
		}
	}
}

// consumeCommands is the single consumer of the command ring buffer: it owns
// the only goroutine that ever calls into Engine, preserving the
// single-threaded command-processing model spec.md §5 requires.
func (l *Listener) consumeCommands(ctx context.Context) {
	for {
		env, ok := l.ring.Pop(ctx)
		if !ok {
			return
		}
		if env.order != nil {
			env.order.ExchTimestamp = time.Now()
		}
		result := common.Dispatch(l.engine, env.cmd)
		l.replyTo(env, result)
	}
}

// replyTo acknowledges an order-entry command, on the connection that sent
// it, with both the engine-assigned OrderID and the correlation UUID the
// ingress tier stamped on arrival. The UUID is minted here, not by the
// client: the wire grammar has no field for one, so this acknowledgement is
// where the client first sees it.
func (l *Listener) replyTo(env envelope, result common.Result) {
	if env.order == nil {
		return
	}
	env.conn.WriteJSON(map[string]any{
		"uuid":     env.order.UUID,
		"order_id": uint64(result.OrderID),
	})
}

// ReportTrade implements engine.Reporter by broadcasting the fill to every
// connected session. Which sessions belong to the trade's two traders is the
// ingress tier's concern, not the core's — spec.md draws that line at the
// Engine boundary, so this broadcasts rather than routing to the specific
// owning connections.
func (l *Listener) ReportTrade(tx engine.Transaction) {
	wire := common.FromTransaction(tx, time.Now())
	l.broadcast(map[string]any{
		"type":            "trade",
		"taker_trader_id": uint64(wire.TakerTraderID),
		"maker_trader_id": uint64(wire.MakerTraderID),
		"taker_order_id":  uint64(wire.TakerOrderID),
		"maker_order_id":  uint64(wire.MakerOrderID),
		"price":           wire.Price,
		"quantity":        wire.Quantity,
		"timestamp":       wire.Timestamp,
	})
}

// ReportReject implements engine.Reporter by broadcasting the rejection.
func (l *Listener) ReportReject(command string, reason string) {
	l.broadcast(map[string]any{
		"type":    "reject",
		"command": command,
		"reason":  reason,
	})
}

func (l *Listener) broadcast(v any) {
	l.sessionsLock.Lock()
	defer l.sessionsLock.Unlock()
	for conn := range l.sessions {
		if err := conn.WriteJSON(v); err != nil {
			l.logger.Debug().Err(err).Msg("broadcast failed, dropping session")
			delete(l.sessions, conn)
		}
	}
}

func (l *Listener) addSession(conn *websocket.Conn) {
	l.sessionsLock.Lock()
	defer l.sessionsLock.Unlock()
	l.sessions[conn] = struct{}{}
}

func (l *Listener) removeSession(conn *websocket.Conn) {
	l.sessionsLock.Lock()
	defer l.sessionsLock.Unlock()
	delete(l.sessions, conn)
}
