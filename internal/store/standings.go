package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrDuplicateSnapshot is returned when a snapshot id is already stored.
var ErrDuplicateSnapshot = errors.New("standings snapshot already exists")

const uniqueViolation = pq.ErrorCode("23505")

var rowColumns = []string{
	"snapshot_id", "team_id", "abbreviation", "team_name", "conference",
	"rank", "wins", "losses", "pct", "games_back",
}

// SaveStandings stores s and all its rows in one transaction.
func (db *Database) SaveStandings(ctx context.Context, s *Snapshot) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO standings_snapshots (id, season, taken_at) VALUES ($1, $2, $3)`,
		s.ID.String(), s.Season, s.TakenAt,
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot %s: %w", s.ID, translate(err))
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("standings_rows", rowColumns...))
	if err != nil {
		return fmt.Errorf("preparing standings rows: %w", err)
	}
	for _, e := range s.Entries {
		_, err := stmt.ExecContext(ctx,
			s.ID.String(), e.Team.ID, e.Team.Abbreviation, e.Team.DisplayName(), string(e.Conference),
			e.Rank, e.Wins, e.Losses, e.Pct, e.GamesBack,
		)
		if err != nil {
			stmt.Close()
			return fmt.Errorf("copying row for team %d: %w", e.Team.ID, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flushing standings rows: %w", translate(err))
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("closing standings rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot %s: %w", s.ID, err)
	}
	db.logger.Info("saved standings snapshot", "id", s.ID, "season", s.Season, "teams", len(s.Entries))
	return nil
}

// ListSnapshots returns the stored snapshots of a season, newest first.
func (db *Database) ListSnapshots(ctx context.Context, season int) ([]SnapshotInfo, error) {
	query := `
		SELECT s.id, s.season, s.taken_at, COUNT(r.team_id)
		FROM standings_snapshots s
		LEFT JOIN standings_rows r ON r.snapshot_id = s.id
		WHERE s.season = $1
		GROUP BY s.id, s.season, s.taken_at
		ORDER BY s.taken_at DESC
	`

	rows, err := db.conn.QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.Season, &info.TakenAt, &info.Teams); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// translate maps driver errors onto the package's sentinel errors.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateSnapshot, pqErr.Message)
	}
	return err
}
