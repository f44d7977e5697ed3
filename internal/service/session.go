package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"genie/internal/logger"
	"genie/internal/metrics"
	"genie/internal/model"
)

// TripToast is the notification fired when a property is added to the trip list
const TripToast = "Added to trip"

// SessionConfig configures the engines created by SessionService
type SessionConfig struct {
	DefaultLocation string
	ResultLimit     int
	IdleTTL         time.Duration
	Places          []string
	Engine          EngineOptions
}

type session struct {
	engine   *ConversationEngine
	trip     []string
	lastSeen time.Time
}

// SessionService owns one ConversationEngine per session
type SessionService struct {
	catalog   Catalog
	extractor *SlotExtractor
	policy    *ClarificationPolicy
	composer  *ResultComposer
	cfg       SessionConfig
	logger    logger.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionService creates a session service backed by catalog
func NewSessionService(catalog Catalog, cfg SessionConfig, log logger.Logger) *SessionService {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	detector := NewKeywordLocationDetector(cfg.Places...)
	return &SessionService{
		catalog:   catalog,
		extractor: NewSlotExtractor(detector, cfg.DefaultLocation),
		policy:    NewClarificationPolicy(),
		composer:  NewResultComposer(catalog, cfg.ResultLimit, log),
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// Start creates a session seeded with the greeting
func (s *SessionService) Start() (string, model.ConversationSnapshot) {
	id := uuid.NewString()
	engine := NewConversationEngine(s.extractor, s.policy, s.composer, s.cfg.Engine,
		s.logger.With(map[string]interface{}{"sessionId": id}))

	s.mu.Lock()
	s.sessions[id] = &session{engine: engine, lastSeen: s.now()}
	active := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(active))
	s.logger.Info("session started", map[string]interface{}{"sessionId": id, "active": active})
	return id, engine.Snapshot()
}

func (s *SessionService) touch(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess, nil
}

// Engine returns the engine of session id
func (s *SessionService) Engine(id string) (*ConversationEngine, error) {
	sess, err := s.touch(id)
	if err != nil {
		return nil, err
	}
	return sess.engine, nil
}

// Submit sends utterance to session id
func (s *SessionService) Submit(ctx context.Context, id, utterance string) (*Turn, error) {
	sess, err := s.touch(id)
	if err != nil {
		return nil, err
	}
	return sess.engine.Submit(ctx, utterance)
}

// Snapshot returns the observable state of session id
func (s *SessionService) Snapshot(id string) (model.ConversationSnapshot, error) {
	sess, err := s.touch(id)
	if err != nil {
		return model.ConversationSnapshot{}, err
	}
	return sess.engine.Snapshot(), nil
}

// Reset cancels pending emissions and restores the seed transcript. The trip list is cleared too.
func (s *SessionService) Reset(id string) error {
	sess, err := s.touch(id)
	if err != nil {
		return err
	}
	sess.engine.Reset()

	s.mu.Lock()
	sess.trip = nil
	s.mu.Unlock()
	return nil
}

// Subscribe streams the events of session id until cancel is called
func (s *SessionService) Subscribe(id string) (<-chan model.Event, func(), error) {
	sess, err := s.touch(id)
	if err != nil {
		return nil, nil, err
	}
	events, cancel := sess.engine.Subscribe(0)
	return events, cancel, nil
}

// AddToTrip appends propertyID to the session's trip list and fires the trip toast
func (s *SessionService) AddToTrip(ctx context.Context, id, propertyID string) ([]string, error) {
	sess, err := s.touch(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.Property(ctx, propertyID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	added := !lo.Contains(sess.trip, propertyID)
	if added {
		sess.trip = append(sess.trip, propertyID)
	}
	trip := append([]string(nil), sess.trip...)
	s.mu.Unlock()

	sess.engine.Notify(TripToast)
	s.logger.Info("property added to trip", map[string]interface{}{
		"sessionId":  id,
		"propertyId": propertyID,
		"new":        added,
	})
	return trip, nil
}

// Trip returns the trip list of session id
func (s *SessionService) Trip(id string) ([]string, error) {
	sess, err := s.touch(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), sess.trip...), nil
}

// Property looks up a catalog item for the details view
func (s *SessionService) Property(ctx context.Context, propertyID string) (*model.Property, error) {
	p, err := s.catalog.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	return p, nil
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle resets and removes sessions not seen since IdleTTL before now
func (s *SessionService) EvictIdle(now time.Time) int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}

	var evicted []*session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.cfg.IdleTTL {
			evicted = append(evicted, sess)
			delete(s.sessions, id)
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.engine.Reset()
	}
	if len(evicted) > 0 {
		metrics.SessionsActive.Set(float64(active))
		s.logger.Info("idle sessions evicted", map[string]interface{}{"evicted": len(evicted), "active": active})
	}
	return len(evicted)
}

// Run evicts idle sessions periodically until ctx is done
func (s *SessionService) Run(ctx context.Context) {
	if s.cfg.IdleTTL <= 0 {
		return
	}

	interval := s.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.EvictIdle(t)
		}
	}
}

// Close resets every session, cancelling in-flight turns
func (s *SessionService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.engine.Reset()
	}
	metrics.SessionsActive.Set(0)
	s.logger.Info("sessions closed", map[string]interface{}{"count": len(sessions)})
}
