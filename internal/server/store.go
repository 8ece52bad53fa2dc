package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Visit rows older than this are deleted on open.
const retention = 365 * 24 * time.Hour

const schema = `
CREATE TABLE IF NOT EXISTS visits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT,
	path TEXT NOT NULL,
	visited_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS visits_visited_at ON visits(visited_at);`

// PathCount is how often one path was requested.
type PathCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// Stats summarises recorded visits.
type Stats struct {
	TotalVisits    int64       `json:"total_visits"`
	UniqueVisitors int64       `json:"unique_visitors"`
	VisitsToday    int64       `json:"visits_today"`
	VisitsThisWeek int64       `json:"visits_this_week"`
	TopPaths       []PathCount `json:"top_paths"`
}

// Store is the SQLite visit log. IPs are stored only as salted hashes.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// OpenStore opens or creates the database at path. An empty salt picks a
// random one, so hashes only correlate within one process lifetime.
func OpenStore(path, salt string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating visits table: %w", err)
	}
	if salt == "" {
		salt = randomSalt()
	}
	s := &Store{db: db, salt: salt, now: time.Now}
	if n, err := s.Prune(context.Background(), retention); err != nil {
		log.Printf("pruning old visits: %v", err)
	} else if n > 0 {
		log.Printf("pruned %d visits older than %v", n, retention)
	}
	return s, nil
}

func randomSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("generating salt: %v", err)
	}
	return hex.EncodeToString(b)
}

func (s *Store) hashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(ip + s.salt))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Record stores one visit.
func (s *Store) Record(ctx context.Context, ip, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visits (hashed_ip, user_agent, path, visited_at) VALUES (?, ?, ?, ?)`,
		s.hashIP(ip), userAgent, path, s.now().Unix())
	return err
}

// recordAsync records in the background; Wait blocks until pending records
// are written. Visits arriving after Close are dropped.
func (s *Store) recordAsync(ip, userAgent, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Record(context.Background(), ip, userAgent, path); err != nil {
			log.Printf("recording visit: %v", err)
		}
	}()
}

// Wait blocks until background records finish.
func (s *Store) Wait() { s.wg.Wait() }

// Prune deletes visits older than age.
func (s *Store) Prune(ctx context.Context, age time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE visited_at < ?`, s.now().Add(-age).Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats computes visit counts. Today starts at local midnight.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	now := s.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Unix()
	weekAgo := now.Add(-7 * 24 * time.Hour).Unix()

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT hashed_ip),
		       COALESCE(SUM(visited_at >= ?), 0),
		       COALESCE(SUM(visited_at >= ?), 0)
		FROM visits`, midnight, weekAgo).
		Scan(&st.TotalVisits, &st.UniqueVisitors, &st.VisitsToday, &st.VisitsThisWeek)
	if err != nil {
		return st, fmt.Errorf("counting visits: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS n FROM visits
		GROUP BY path ORDER BY n DESC, path ASC LIMIT 10`)
	if err != nil {
		return st, fmt.Errorf("listing paths: %w", err)
	}
	defer rows.Close()
	st.TopPaths = []PathCount{}
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Count); err != nil {
			return st, err
		}
		st.TopPaths = append(st.TopPaths, pc)
	}
	return st, rows.Err()
}

// Close stops accepting records, waits for pending ones and closes the
// database.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Wait()
	return s.db.Close()
}
