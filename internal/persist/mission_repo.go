package persist

import (
	"context"
	"fmt"
	"time"
)

// MissionPlayer is one player's share of a mission.
type MissionPlayer struct {
	Identifier int32
	Kills      int32
	Pickups    int32
	ShotDown   bool
}

// MissionResult is a finished mission.
type MissionResult struct {
	ID               int64
	StartedAt        time.Time
	EndedAt          time.Time
	Success          bool
	Ticks            int64
	EnemiesDestroyed int32
	PickupsCollected int32
	Players          []MissionPlayer
}

type MissionRepo struct {
	db *DB
}

func NewMissionRepo(db *DB) *MissionRepo {
	return &MissionRepo{db: db}
}

// SaveMission writes the mission and its players in one transaction and
// returns the new mission ID.
func (r *MissionRepo) SaveMission(ctx context.Context, m *MissionResult) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("mission begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO missions (started_at, ended_at, success, ticks, enemies_destroyed, pickups_collected)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		m.StartedAt, m.EndedAt, m.Success, m.Ticks, m.EnemiesDestroyed, m.PickupsCollected,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("mission insert: %w", err)
	}

	for _, p := range m.Players {
		if _, err := tx.Exec(ctx,
			`INSERT INTO mission_players (mission_id, identifier, kills, pickups, shot_down)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, p.Identifier, p.Kills, p.Pickups, p.ShotDown,
		); err != nil {
			return 0, fmt.Errorf("mission player insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("mission commit: %w", err)
	}
	m.ID = id
	return id, nil
}

// RecentMissions returns the newest missions first, without players.
func (r *MissionRepo) RecentMissions(ctx context.Context, limit int) ([]MissionResult, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, started_at, ended_at, success, ticks, enemies_destroyed, pickups_collected
		 FROM missions ORDER BY ended_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent missions: %w", err)
	}
	defer rows.Close()

	var out []MissionResult
	for rows.Next() {
		var m MissionResult
		if err := rows.Scan(&m.ID, &m.StartedAt, &m.EndedAt, &m.Success, &m.Ticks, &m.EnemiesDestroyed, &m.PickupsCollected); err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
