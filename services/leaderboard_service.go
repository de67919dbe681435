package services

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"habitQuestAPI/internal/progression"
)

const leaderboardKey = "leaderboard:xp"

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	ClerkID  string `json:"clerk_id"`
	Username string `json:"username"`
	ImageURL string `json:"image_url,omitempty"`
	TotalXP  int    `json:"total_xp"`
	Level    int    `json:"level"`
}

// LeaderboardService keeps the XP leaderboard in a Redis sorted set,
// scored by total XP. The set is incremented on every credit and rebuilt
// from Postgres whenever it is found empty.
type LeaderboardService struct {
	db  *pgxpool.Pool
	rdb *redis.Client
}

func NewLeaderboardService(db *pgxpool.Pool, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{db: db, rdb: rdb}
}

// IncrementXP implements LeaderboardUpdater. A miss on the key is fine:
// the next read rebuilds the whole set from Postgres anyway.
func (s *LeaderboardService) IncrementXP(ctx context.Context, clerkID string, delta int) error {
	if err := s.rdb.ZIncrBy(ctx, leaderboardKey, float64(delta), clerkID).Err(); err != nil {
		return fmt.Errorf("failed to increment leaderboard score: %w", err)
	}
	return nil
}

// Top returns the highest-XP accounts with 1-based ranks.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	size, err := s.rdb.ZCard(ctx, leaderboardKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard size: %w", err)
	}
	if size == 0 {
		if err := s.Rebuild(ctx); err != nil {
			return nil, err
		}
	}

	members, err := s.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(members) == 0 {
		return []*LeaderboardEntry{}, nil
	}

	clerkIDs := make([]string, 0, len(members))
	for _, m := range members {
		clerkIDs = append(clerkIDs, m.Member.(string))
	}

	profiles, err := s.loadProfiles(ctx, clerkIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(members))
	for i, m := range members {
		clerkID := m.Member.(string)
		entry, ok := profiles[clerkID]
		if !ok {
			// Account deleted since the set was built; skip the stale member.
			log.Printf("Leaderboard: dropping stale member %s", clerkID)
			continue
		}
		entry.Rank = i + 1
		entry.TotalXP = int(m.Score)
		entries = append(entries, entry)
	}
	return entries, nil
}

// Rebuild repopulates the sorted set from the accounts table.
func (s *LeaderboardService) Rebuild(ctx context.Context) error {
	rows, err := s.db.Query(ctx, `SELECT clerk_id, total_xp FROM accounts`)
	if err != nil {
		return fmt.Errorf("failed to load accounts for leaderboard rebuild: %w", err)
	}
	defer rows.Close()

	members := []redis.Z{}
	for rows.Next() {
		var clerkID string
		var totalXP int
		if err := rows.Scan(&clerkID, &totalXP); err != nil {
			return fmt.Errorf("failed to scan account for leaderboard: %w", err)
		}
		members = append(members, redis.Z{Score: float64(totalXP), Member: clerkID})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, leaderboardKey)
	pipe.ZAdd(ctx, leaderboardKey, members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}

	log.Printf("Leaderboard: rebuilt with %d members", len(members))
	return nil
}

// RankOf returns a single user's 1-based rank, or ErrAccountNotFound if
// they are not on the board.
func (s *LeaderboardService) RankOf(ctx context.Context, clerkID string) (int, error) {
	rank, err := s.rdb.ZRevRank(ctx, leaderboardKey, clerkID).Result()
	if err == redis.Nil {
		return 0, progression.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read leaderboard rank: %w", err)
	}
	return int(rank) + 1, nil
}

func (s *LeaderboardService) loadProfiles(ctx context.Context, clerkIDs []string) (map[string]*LeaderboardEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT clerk_id, username, image_url, level FROM accounts WHERE clerk_id = ANY($1)`,
		clerkIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(map[string]*LeaderboardEntry, len(clerkIDs))
	for rows.Next() {
		entry := &LeaderboardEntry{}
		if err := rows.Scan(&entry.ClerkID, &entry.Username, &entry.ImageURL, &entry.Level); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard profile: %w", err)
		}
		profiles[entry.ClerkID] = entry
	}
	return profiles, rows.Err()
}
