package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/scorecard/api/internal/model"
	"gorm.io/gorm"
)

// TokenPurgeScheduler deletes expired and revoked refresh tokens on an
// interval so the table does not grow without bound.
type TokenPurgeScheduler struct {
	db       *gorm.DB
	interval time.Duration
	running  bool
	mu       sync.Mutex
	stopChan chan struct{}
}

func NewTokenPurgeScheduler(db *gorm.DB, interval time.Duration) *TokenPurgeScheduler {
	if interval == 0 {
		interval = time.Hour
	}

	return &TokenPurgeScheduler{
		db:       db,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *TokenPurgeScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("[Scheduler] Token purge started, interval %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.purge(ctx)
		}
	}
}

func (s *TokenPurgeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stopChan)
}

func (s *TokenPurgeScheduler) purge(ctx context.Context) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR revoked = ?", time.Now(), true).
		Delete(&model.RefreshToken{})
	if result.Error != nil {
		log.Printf("[Scheduler] Token purge failed: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[Scheduler] Purged %d refresh tokens", result.RowsAffected)
	}
}
