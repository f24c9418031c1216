// Package registry owns the mapping from room codes to live sessions and
// serializes every command against its target session.
package registry

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/quintet-games/quintet/internal/game"
	"github.com/quintet-games/quintet/internal/randutil"
	"github.com/quintet-games/quintet/internal/roomcode"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotSeated    = errors.New("player is not seated in this room")
)

// room pairs a session with its command lock. Commands targeting
// different rooms run fully in parallel; commands targeting the same
// room run one at a time to completion.
type room struct {
	mu         sync.Mutex
	session    *game.Session
	lastActive time.Time
}

// Config tunes the registry.
type Config struct {
	// Weights is the card draw distribution given to new sessions.
	Weights game.Weights
	// IdleTTL is how long an untouched room survives before the janitor
	// disposes of it. Zero disables sweeping.
	IdleTTL time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Weights: game.DefaultWeights(),
		IdleTTL: 30 * time.Minute,
	}
}

// Registry maps room codes to sessions. The registry mutex only guards
// the maps; session state is guarded by the per-room lock.
type Registry struct {
	logger zerolog.Logger
	clock  quartz.Clock
	codes  *roomcode.Generator
	cfg    Config

	mu     sync.RWMutex
	rooms  map[string]*room
	seated map[string]string // identity -> room code

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New constructs a registry. The rng seeds a private generator per
// session so that concurrent sessions never contend on one source.
func New(logger zerolog.Logger, rng *rand.Rand, clock quartz.Clock, cfg Config) *Registry {
	if cfg.Weights == nil {
		cfg.Weights = game.DefaultWeights()
	}
	return &Registry{
		logger: logger.With().Str("component", "registry").Logger(),
		clock:  clock,
		codes:  roomcode.NewGenerator(nil),
		cfg:    cfg,
		rooms:  make(map[string]*room),
		seated: make(map[string]string),
		rng:    rng,
	}
}

// SetCodeGenerator replaces the room code generator, used by tests to
// make codes deterministic.
func (r *Registry) SetCodeGenerator(g *roomcode.Generator) {
	r.codes = g
}

// RoomCount returns the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// sessionRNG derives an independent seeded generator for one session.
func (r *Registry) sessionRNG() *rand.Rand {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return randutil.New(r.rng.Int64())
}

// Create opens a new room with identity in seat 0 and returns the room
// code along with the deliveries to send.
func (r *Registry) Create(identity, name string) (string, []game.Delivery, error) {
	r.mu.Lock()
	var code string
	for {
		code = r.codes.Generate()
		if _, taken := r.rooms[code]; !taken {
			break
		}
		r.logger.Debug().Str("code", code).Msg("Room code collision, regenerating")
	}
	session := game.NewSession(code, r.sessionRNG(), r.cfg.Weights)
	if _, err := session.AddSeat(identity, name); err != nil {
		r.mu.Unlock()
		return "", nil, err
	}
	r.rooms[code] = &room{session: session, lastActive: r.clock.Now()}
	r.seated[identity] = code
	r.mu.Unlock()

	r.logger.Info().Str("room", code).Str("player", name).Msg("Room created")
	return code, []game.Delivery{
		{To: identity, Event: game.NewRoomCreatedEvent(code, 0)},
	}, nil
}

// Join seats identity in the room. Joining a room you are already seated
// in is idempotent: the current state is re-delivered instead of failing.
// Filling the second seat starts the game with a fresh board and a
// random first turn.
func (r *Registry) Join(code, identity, name string) ([]game.Delivery, error) {
	code = roomcode.Normalize(code)
	rm, err := r.lookup(code)
	if err != nil {
		return nil, err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.lastActive = r.clock.Now()
	s := rm.session

	if idx := s.SeatIndex(identity); idx != game.NoSeat {
		// Rejoin: sync this client rather than erroring.
		deliveries := []game.Delivery{
			{To: identity, Event: game.NewRoomJoinedEvent(code, idx)},
		}
		deliveries = r.broadcast(s, deliveries, game.NewPlayerJoinedEvent(s.SeatInfos()))
		if s.State == game.StatePlaying {
			deliveries = append(deliveries, game.Delivery{To: identity, Event: game.NewGameStartEvent(s, idx)})
		}
		return deliveries, nil
	}

	idx, err := s.AddSeat(identity, name)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.seated[identity] = code
	r.mu.Unlock()

	deliveries := []game.Delivery{
		{To: identity, Event: game.NewRoomJoinedEvent(code, idx)},
	}
	deliveries = r.broadcast(s, deliveries, game.NewPlayerJoinedEvent(s.SeatInfos()))

	if len(s.Seats) == 2 {
		if err := s.Start(); err != nil {
			return nil, err
		}
		for i, seat := range s.Seats {
			deliveries = append(deliveries, game.Delivery{To: seat.Identity, Event: game.NewGameStartEvent(s, i)})
		}
		r.logger.Info().Str("room", code).Int("firstTurn", s.Turn).Msg("Game started")
	}
	return deliveries, nil
}

// Leave removes identity from its room. The room is destroyed when its
// last seat empties; with one seat left the session pauses and the
// remaining player is told to wait.
func (r *Registry) Leave(identity string) ([]game.Delivery, error) {
	r.mu.Lock()
	code, ok := r.seated[identity]
	if !ok {
		r.mu.Unlock()
		return nil, ErrNotSeated
	}
	delete(r.seated, identity)
	rm := r.rooms[code]
	r.mu.Unlock()
	if rm == nil {
		return nil, ErrRoomNotFound
	}

	rm.mu.Lock()
	removed, found := rm.session.RemoveSeat(identity)
	remaining := len(rm.session.Seats)
	var deliveries []game.Delivery
	if found {
		deliveries = r.broadcast(rm.session, nil, game.NewPlayerLeftEvent(removed.Name, rm.session.SeatInfos()))
		if remaining == 1 {
			deliveries = append(deliveries, game.Delivery{
				To:    rm.session.Seats[0].Identity,
				Event: game.NewOpponentLeftEvent("Your opponent left; the game is paused."),
			})
		}
	}
	rm.mu.Unlock()

	if remaining == 0 {
		r.mu.Lock()
		delete(r.rooms, code)
		r.mu.Unlock()
		r.logger.Info().Str("room", code).Msg("Room destroyed, all seats empty")
	}
	return deliveries, nil
}

// RequestCard draws a card for identity's seat. The draw is refused when
// the hand is full; nothing tracks move cadence server-side, the client
// decides when it has earned a draw.
func (r *Registry) RequestCard(code, identity string) ([]game.Delivery, error) {
	return r.withSeat(code, identity, func(s *game.Session, seat int) ([]game.Delivery, error) {
		card, err := s.DrawCard(seat)
		if err != nil {
			return nil, err
		}
		deliveries := []game.Delivery{
			{To: identity, Event: game.NewCardReceivedEvent(card, len(s.Hand(seat)))},
		}
		if other := 1 - seat; other < len(s.Seats) {
			deliveries = append(deliveries, game.Delivery{
				To:    s.Seats[other].Identity,
				Event: game.NewOpponentCardCountEvent(len(s.Hand(seat))),
			})
		}
		return deliveries, nil
	})
}

// SubmitMove places a stone for identity's seat.
func (r *Registry) SubmitMove(code, identity string, row, col int) ([]game.Delivery, error) {
	return r.withSeat(code, identity, func(s *game.Session, seat int) ([]game.Delivery, error) {
		res, err := s.SubmitMove(seat, row, col)
		if err != nil {
			return nil, err
		}
		switch res.Outcome {
		case game.MoveWin:
			return r.broadcast(s, nil, game.NewGameEndEvent(res.Seat, s.Seats[res.Seat].Name, s.Board)), nil
		case game.MoveTrapTriggered:
			return r.broadcast(s, nil, game.NewTrapTriggeredEvent(res, s.Board)), nil
		default:
			return r.broadcast(s, nil, game.NewMoveMadeEvent(res, s.Board)), nil
		}
	})
}

// UseCard plays a card from identity's hand.
func (r *Registry) UseCard(code, identity string, handIndex int, target *game.CellRef) ([]game.Delivery, error) {
	return r.withSeat(code, identity, func(s *game.Session, seat int) ([]game.Delivery, error) {
		res, err := s.UseCard(seat, handIndex, target)
		if err != nil {
			return nil, err
		}

		var deliveries []game.Delivery
		if res.Kind == game.CardHint || res.Kind == game.CardPeek {
			// Private results: only the acting seat learns the outcome.
			deliveries = append(deliveries, game.Delivery{To: identity, Event: game.NewCardUsedEvent(s, res, seat)})
			if res.Kind == game.CardPeek {
				other := 1 - seat
				deliveries = append(deliveries, game.Delivery{
					To:    s.Seats[other].Identity,
					Event: game.NewCardUsedOnYouEvent(game.CardPeek, s.Seats[seat].Name),
				})
			}
		} else {
			for i, st := range s.Seats {
				deliveries = append(deliveries, game.Delivery{To: st.Identity, Event: game.NewCardUsedEvent(s, res, i)})
			}
		}
		if res.Kind != game.CardUndo {
			deliveries = r.broadcast(s, deliveries, game.NewTurnChangeEvent(s.Turn))
		}
		return deliveries, nil
	})
}

// Restart resets the room to a fresh game. Both seats must be present.
func (r *Registry) Restart(code, identity string) ([]game.Delivery, error) {
	return r.withSeat(code, identity, func(s *game.Session, seat int) ([]game.Delivery, error) {
		if err := s.Start(); err != nil {
			return nil, err
		}
		r.logger.Info().Str("room", s.RoomID).Int("firstTurn", s.Turn).Msg("Game restarted")
		return r.broadcast(s, nil, game.NewGameRestartEvent(s)), nil
	})
}

// Chat relays a message to everyone in the room. Chat carries no game
// state and never touches the session beyond membership.
func (r *Registry) Chat(code, identity, message string) ([]game.Delivery, error) {
	return r.withSeat(code, identity, func(s *game.Session, seat int) ([]game.Delivery, error) {
		return r.broadcast(s, nil, game.NewChatEvent(s.Seats[seat].Name, message)), nil
	})
}

// SetWeights replaces the draw distribution for new and existing rooms.
func (r *Registry) SetWeights(w game.Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.cfg.Weights = w.Clone()
	rooms := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	r.mu.Unlock()

	for _, rm := range rooms {
		rm.mu.Lock()
		rm.session.SetWeights(w)
		rm.mu.Unlock()
	}
	r.logger.Info().Interface("weights", w).Msg("Card weights updated")
	return nil
}

// withSeat resolves the room and seat for identity, then runs fn under
// the room's command lock.
func (r *Registry) withSeat(code, identity string, fn func(*game.Session, int) ([]game.Delivery, error)) ([]game.Delivery, error) {
	rm, err := r.lookup(roomcode.Normalize(code))
	if err != nil {
		return nil, err
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	seat := rm.session.SeatIndex(identity)
	if seat == game.NoSeat {
		return nil, ErrNotSeated
	}
	rm.lastActive = r.clock.Now()
	return fn(rm.session, seat)
}

func (r *Registry) lookup(code string) (*room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	return rm, nil
}

// broadcast appends one delivery per seated identity.
func (r *Registry) broadcast(s *game.Session, deliveries []game.Delivery, ev game.Event) []game.Delivery {
	for _, seat := range s.Seats {
		deliveries = append(deliveries, game.Delivery{To: seat.Identity, Event: ev})
	}
	return deliveries
}
