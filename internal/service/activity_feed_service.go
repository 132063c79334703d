package service

import (
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/sandiara-digital/ged-api/internal/dto"
)

const feedSubject = "ged.activity"

// ActivityFeedService fans freshly recorded ledger entries out to live
// websocket subscribers. When a NATS connection is supplied, entries are
// published to a shared subject and every instance re-delivers them
// locally, so multiple API instances share one feed.
type ActivityFeedService interface {
	LedgerBroadcaster
	Subscribe() (id uint64, ch <-chan []byte)
	Unsubscribe(id uint64)
	Start() error
	Stop()
}

type activityFeedService struct {
	mu          sync.Mutex
	subscribers map[uint64]chan []byte
	nextID      uint64
	nats        *nats.Conn
	natsSub     *nats.Subscription
	logger      zerolog.Logger
}

// NewActivityFeedService constructs the live feed hub. The NATS
// connection may be nil for single-instance deployments.
func NewActivityFeedService(natsConn *nats.Conn, logger zerolog.Logger) ActivityFeedService {
	return &activityFeedService{
		subscribers: make(map[uint64]chan []byte),
		nats:        natsConn,
		logger:      logger.With().Str("component", "activity_feed_service").Logger(),
	}
}

// Start attaches the NATS bridge when configured.
func (s *activityFeedService) Start() error {
	if s.nats == nil {
		return nil
	}
	sub, err := s.nats.Subscribe(feedSubject, func(msg *nats.Msg) {
		s.deliver(msg.Data)
	})
	if err != nil {
		return err
	}
	s.natsSub = sub
	return nil
}

// Stop detaches the NATS bridge.
func (s *activityFeedService) Stop() {
	if s.natsSub != nil {
		if err := s.natsSub.Unsubscribe(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to unsubscribe feed bridge")
		}
		s.natsSub = nil
	}
}

// Broadcast publishes one ledger entry to every subscriber. It never
// blocks: slow subscribers miss entries rather than stalling writers.
func (s *activityFeedService) Broadcast(entry dto.ActivityEntryResponse) {
	payload, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode feed entry")
		return
	}

	if s.nats != nil {
		if err := s.nats.Publish(feedSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish feed entry, delivering locally")
			s.deliver(payload)
		}
		return
	}

	s.deliver(payload)
}

func (s *activityFeedService) deliver(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (s *activityFeedService) Subscribe() (uint64, <-chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	ch := make(chan []byte, 16)
	s.subscribers[id] = ch
	return id, ch
}

func (s *activityFeedService) Unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subscribers[id]; ok {
		delete(s.subscribers, id)
		close(ch)
	}
}
