package services

import (
	"context"
	"sync"
	"time"

	"github.com/NaviFeed/navifeed-backend/internal/events"
	"github.com/NaviFeed/navifeed-backend/internal/provider"
	"github.com/NaviFeed/navifeed-backend/logger"
	"github.com/NaviFeed/navifeed-backend/store"
	"github.com/NaviFeed/navifeed-backend/types"
	"go.uber.org/zap"
)

const eventSource = "traffic_service"

// TrafficService owns the traffic message lifecycle: it polls the registered
// providers, folds their batches into the store, sweeps expired messages and
// publishes an event for every transition.
//
// Each provider is polled from a single goroutine, so provider instances are
// never invoked concurrently.
type TrafficService struct {
	log       *zap.SugaredLogger
	store     store.TrafficStore
	publisher types.EventPublisher
	providers []provider.Provider
	interval  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTrafficService creates a new TrafficService. The publisher may be nil,
// in which case lifecycle transitions are applied but not announced.
func NewTrafficService(trafficStore store.TrafficStore, publisher types.EventPublisher, providers []provider.Provider, interval time.Duration) *TrafficService {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &TrafficService{
		log:       logger.GetLogger().Named("traffic_service"),
		store:     trafficStore,
		publisher: publisher,
		providers: providers,
		interval:  interval,
	}
}

// Providers returns the names of the polled providers.
func (s *TrafficService) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Start launches the polling loop. It returns immediately; call Shutdown to
// stop the loop and wait for it to finish.
func (s *TrafficService) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Infow("Traffic polling started", "interval", s.interval, "providers", s.Providers())
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.PollOnce(ctx)
			}
		}
	}()
}

// Shutdown stops the polling loop and waits for the in-flight cycle.
func (s *TrafficService) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("Traffic polling stopped")
}

// PollOnce runs one full polling cycle: every provider is invoked once and
// expired messages are swept afterwards.
func (s *TrafficService) PollOnce(ctx context.Context) {
	for _, p := range s.providers {
		result, err := p.GetMessages(ctx)
		if err != nil {
			s.log.Errorw("Provider poll failed", "provider", p.Name(), "error", err)
			s.publishProviderFailure(ctx, p.Name(), err)
			continue
		}
		if !result.HasUpdate() {
			s.log.Debugw("Provider reported no update", "provider", p.Name())
			continue
		}
		if err := s.Ingest(ctx, p.Name(), result.Batch()); err != nil {
			s.log.Errorw("Failed to ingest provider batch", "provider", p.Name(), "error", err)
		}
	}

	s.sweepExpired(ctx)
}

// Ingest folds a provider batch into the store and publishes one lifecycle
// event per message. Ownership of the messages passes to the service.
func (s *TrafficService) Ingest(ctx context.Context, providerName string, batch []*types.TrafficMessage) error {
	for _, msg := range batch {
		change, err := s.store.Apply(ctx, msg)
		if err != nil {
			return err
		}

		s.log.Infow("Applied traffic message",
			"provider", providerName,
			"messageID", msg.ID,
			"change", change,
			"cancellation", msg.IsCancellation(),
		)

		eventType, ok := eventTypeForChange(change)
		if !ok {
			// A cancellation for an unknown identifier carries no new
			// information for consumers.
			continue
		}
		s.publishMessageEvent(ctx, providerName, eventType, msg)
	}
	return nil
}

// ActiveMessages returns the current consumer view of the traffic situation.
func (s *TrafficService) ActiveMessages(ctx context.Context) ([]*types.TrafficMessage, error) {
	return s.store.List(ctx)
}

// GetMessage returns one active message by identifier.
func (s *TrafficService) GetMessage(ctx context.Context, id string) (*types.TrafficMessage, error) {
	return s.store.GetByID(ctx, id)
}

// sweepExpired drops stale messages and announces their expiry.
func (s *TrafficService) sweepExpired(ctx context.Context) {
	removed, err := s.store.PurgeExpired(ctx)
	if err != nil {
		s.log.Errorw("Failed to purge expired messages", "error", err)
		return
	}

	for _, msg := range removed {
		s.log.Infow("Expired traffic message purged", "messageID", msg.ID)
		s.publishMessageEvent(ctx, providerOfMessage(msg), types.EventTypeMessageExpired, msg)
	}
}

func (s *TrafficService) publishMessageEvent(ctx context.Context, providerName string, eventType types.EventType, msg *types.TrafficMessage) {
	if s.publisher == nil {
		return
	}
	if err := events.PublishEventWithContext(s.publisher, ctx, eventType, providerName, msg, eventSource); err != nil {
		// Event delivery is best effort; the store already holds the truth.
		s.log.Warnw("Failed to publish traffic event",
			"error", err,
			"eventType", eventType,
			"messageID", msg.ID,
		)
	}
}

func (s *TrafficService) publishProviderFailure(ctx context.Context, providerName string, cause error) {
	if s.publisher == nil {
		return
	}
	payload := map[string]string{"error": cause.Error()}
	if err := events.PublishEventWithContext(s.publisher, ctx, types.EventTypeProviderFailed, providerName, payload, eventSource); err != nil {
		s.log.Warnw("Failed to publish provider failure event", "error", err, "provider", providerName)
	}
}

func eventTypeForChange(change store.Change) (types.EventType, bool) {
	switch change {
	case store.ChangeIssued:
		return types.EventTypeMessageIssued, true
	case store.ChangeUpdated:
		return types.EventTypeMessageUpdated, true
	case store.ChangeCancelled:
		return types.EventTypeMessageCancelled, true
	default:
		return "", false
	}
}

// providerOfMessage derives the feed name from the message identifier
// convention "<provider>:<reference>". Messages without a prefix fall back
// to the catch-all feed.
func providerOfMessage(msg *types.TrafficMessage) string {
	for i, r := range msg.ID {
		if r == ':' {
			return msg.ID[:i]
		}
	}
	return "unknown"
}
