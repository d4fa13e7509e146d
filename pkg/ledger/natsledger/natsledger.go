// Package natsledger implements the ledger gateway over NATS: commands and
// queries as request-reply on per-operation subjects, push notifications as a
// per-game event subject.
package natsledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"teenpatti-client/pkg/cards"
	"teenpatti-client/pkg/ledger"
)

const (
	defaultSubjectPrefix  = "teenpatti"
	defaultRequestTimeout = 10 * time.Second
	defaultReconnectWait  = 2 * time.Second
	defaultMaxReconnects  = -1 // retry forever
)

// Config configures a NATS ledger gateway.
type Config struct {
	// URL is the NATS server URL, e.g. nats://localhost:4222.
	URL string

	// Identity is the player address stamped on every request.
	Identity string

	// SubjectPrefix namespaces all subjects. Defaults to "teenpatti".
	SubjectPrefix string

	// RequestTimeout bounds each request-reply exchange when the caller's
	// context carries no earlier deadline.
	RequestTimeout time.Duration

	// MaxReconnects and ReconnectWait tune the underlying connection's
	// retry behavior. MaxReconnects zero means retry forever.
	MaxReconnects int
	ReconnectWait time.Duration

	Log slog.Logger
}

// Gateway is a ledger.Gateway speaking to a broker over NATS.
type Gateway struct {
	nc      *nats.Conn
	prefix  string
	from    string
	timeout time.Duration
	log     slog.Logger
}

var _ ledger.Gateway = (*Gateway)(nil)

// Connect dials the NATS server and returns a ready gateway. The connection
// reconnects on its own; requests issued while disconnected fail with
// ErrLedgerUnavailable.
func Connect(cfg Config) (*Gateway, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("ledger URL is required")
	}
	if cfg.Identity == "" {
		return nil, fmt.Errorf("identity is required")
	}

	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	wait := cfg.ReconnectWait
	if wait <= 0 {
		wait = defaultReconnectWait
	}
	maxRec := cfg.MaxReconnects
	if maxRec == 0 {
		maxRec = defaultMaxReconnects
	}

	nc, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(maxRec),
		nats.ReconnectWait(wait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warnf("Ledger connection lost: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("Ledger connection restored: %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				log.Errorf("Ledger async error on %q: %v", sub.Subject, err)
				return
			}
			log.Errorf("Ledger async error: %v", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrLedgerUnavailable, err)
	}

	log.Infof("Connected to ledger at %s", nc.ConnectedUrl())
	return &Gateway{
		nc:      nc,
		prefix:  prefix,
		from:    cfg.Identity,
		timeout: timeout,
		log:     log,
	}, nil
}

// Close drains the connection. Pending subscriptions deliver what they have
// buffered and then stop.
func (g *Gateway) Close() error {
	return g.nc.Drain()
}

func (g *Gateway) subject(parts ...string) string {
	s := g.prefix
	for _, p := range parts {
		s += "." + p
	}
	return s
}

// roundTrip performs one request-reply exchange and decodes the envelope into
// out (nil for commands without a result payload).
func (g *Gateway) roundTrip(ctx context.Context, subject string, req request, out any) error {
	req.ID = uuid.NewString()
	req.From = g.from

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.log.Tracef("Request %s to %s", req.ID, subject)
	msg, err := g.nc.RequestWithContext(ctx, subject, payload)
	if err != nil {
		return mapTransportError(err)
	}
	return decodeResponse(msg.Data, out)
}

// CreateGame creates a new game staked with minBet and returns its id.
func (g *Gateway) CreateGame(ctx context.Context, minBet dcrutil.Amount) (ledger.GameID, error) {
	var res createResult
	err := g.roundTrip(ctx, g.subject("cmd", "create"), request{Amount: minBet}, &res)
	if err != nil {
		return 0, err
	}
	return res.GameID, nil
}

// JoinGame seats the caller in the game, staking the boot amount.
func (g *Gateway) JoinGame(ctx context.Context, id ledger.GameID, playBlind bool, stake dcrutil.Amount) error {
	return g.roundTrip(ctx, g.subject("cmd", "join"), request{
		GameID:    id,
		Amount:    stake,
		PlayBlind: playBlind,
	}, nil)
}

// PlaceBet stakes amount on the caller's hand.
func (g *Gateway) PlaceBet(ctx context.Context, id ledger.GameID, amount dcrutil.Amount) error {
	return g.roundTrip(ctx, g.subject("cmd", "bet"), request{GameID: id, Amount: amount}, nil)
}

// Fold forfeits the caller's hand.
func (g *Gateway) Fold(ctx context.Context, id ledger.GameID) error {
	return g.roundTrip(ctx, g.subject("cmd", "fold"), request{GameID: id}, nil)
}

// Show reveals hands and asks the ledger to resolve a winner.
func (g *Gateway) Show(ctx context.Context, id ledger.GameID) error {
	return g.roundTrip(ctx, g.subject("cmd", "show"), request{GameID: id}, nil)
}

// GetGame returns the game summary.
func (g *Gateway) GetGame(ctx context.Context, id ledger.GameID) (*ledger.GameSummary, error) {
	var sum ledger.GameSummary
	err := g.roundTrip(ctx, g.subject("query", "game"), request{GameID: id}, &sum)
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// GetPlayers returns the seat roster.
func (g *Gateway) GetPlayers(ctx context.Context, id ledger.GameID) (*ledger.PlayerRoster, error) {
	var roster ledger.PlayerRoster
	err := g.roundTrip(ctx, g.subject("query", "players"), request{GameID: id}, &roster)
	if err != nil {
		return nil, err
	}
	return &roster, nil
}

// GetPlayerCards returns the caller's private cards, failing with
// ErrCardsNotDealt until the ledger has dealt for this identity.
func (g *Gateway) GetPlayerCards(ctx context.Context, id ledger.GameID) ([]cards.Card, error) {
	var res cardsResult
	err := g.roundTrip(ctx, g.subject("query", "cards"), request{GameID: id}, &res)
	if err != nil {
		return nil, err
	}
	return res.Cards, nil
}

// SubscribeGameEvents registers handler for every push notification scoped to
// the given game. Events arrive on one subject per game; delivery order is
// whatever the broker gives us.
func (g *Gateway) SubscribeGameEvents(_ context.Context, id ledger.GameID,
	handler func(ledger.Event)) (ledger.Subscription, error) {

	subject := g.subject("events", fmt.Sprintf("%d", id))
	sub, err := g.nc.Subscribe(subject, func(msg *nats.Msg) {
		var ev ledger.Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			g.log.Warnf("Dropping malformed event on %q: %v", msg.Subject, err)
			return
		}
		handler(ev)
	})
	if err != nil {
		return nil, mapTransportError(err)
	}
	g.log.Debugf("Subscribed to %s", subject)
	return &natsSubscription{sub: sub}, nil
}

// natsSubscription wraps a NATS subscription with an idempotent Unsubscribe.
type natsSubscription struct {
	mtx  sync.Mutex
	sub  *nats.Subscription
	done bool
}

// Unsubscribe removes the broker-side registration. Safe to call twice.
func (s *natsSubscription) Unsubscribe() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	return s.sub.Unsubscribe()
}
