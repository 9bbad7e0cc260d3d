package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/skyraid/server/internal/core/system"
	"github.com/skyraid/server/internal/persist"
)

// MissionStore saves finished missions.
type MissionStore interface {
	SaveMission(ctx context.Context, m *persist.MissionResult) (int64, error)
}

// PersistenceSystem writes finished missions to the store. Without a store
// results are only logged. Phase 5 (Persist).
type PersistenceSystem struct {
	store   MissionStore
	pending []*persist.MissionResult
	timeout time.Duration
	log     *zap.Logger
}

func NewPersistenceSystem(store MissionStore, log *zap.Logger) *PersistenceSystem {
	return &PersistenceSystem{store: store, timeout: 5 * time.Second, log: log}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

// Enqueue schedules a result for this tick's persist phase.
func (s *PersistenceSystem) Enqueue(m *persist.MissionResult) {
	s.pending = append(s.pending, m)
}

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.Flush()
}

// Flush saves every pending result. Failed saves are logged and dropped.
// Called for graceful shutdown as well.
func (s *PersistenceSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	if s.store == nil {
		s.pending = s.pending[:0]
		return
	}
	for _, m := range s.pending {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		id, err := s.store.SaveMission(ctx, m)
		cancel()
		if err != nil {
			s.log.Error("save mission failed", zap.Bool("success", m.Success), zap.Error(err))
			continue
		}
		s.log.Info("mission saved", zap.Int64("mission", id))
	}
	s.pending = s.pending[:0]
}
