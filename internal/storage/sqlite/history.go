package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/wattsplit/internal/models"
)

// SaveHistory replaces the stored history in a single transaction.
// Position 0 is the newest entry.
func (s *SQLiteStore) SaveHistory(ctx context.Context, entries []models.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM history_rooms"); err != nil {
		return fmt.Errorf("failed to clear history rooms: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM history_entries"); err != nil {
		return fmt.Errorf("failed to clear history entries: %w", err)
	}

	for pos, entry := range entries {
		var shared sql.NullFloat64
		if entry.SharedKwh != nil {
			shared = sql.NullFloat64{Float64: *entry.SharedKwh, Valid: true}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO history_entries (id, position, created_at, period, total_kwh, bill_amount,
			 room_count, label_mode, allocation_method, shared_kwh_mode, shared_kwh, text_report, signature)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, pos, entry.CreatedAt, entry.Period, entry.TotalKwh, entry.BillAmount,
			entry.RoomCount, string(entry.LabelMode), string(entry.Allocation), string(entry.SharedMode),
			shared, entry.TextReport, entry.Signature,
		)
		if err != nil {
			return fmt.Errorf("failed to insert history entry: %w", err)
		}

		for idx, room := range entry.Rooms {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO history_rooms (entry_id, idx, label, room_kwh) VALUES (?, ?, ?, ?)",
				entry.ID, idx, room.Label, room.RoomKwh,
			)
			if err != nil {
				return fmt.Errorf("failed to insert history room: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadHistory retrieves every history entry with its rooms, newest first.
func (s *SQLiteStore) LoadHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, period, total_kwh, bill_amount, room_count, label_mode,
		 allocation_method, shared_kwh_mode, shared_kwh, text_report, signature
		 FROM history_entries ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get history entries: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	index := make(map[string]int)
	for rows.Next() {
		var (
			entry  models.HistoryEntry
			shared sql.NullFloat64
		)
		err := rows.Scan(&entry.ID, &entry.CreatedAt, &entry.Period, &entry.TotalKwh, &entry.BillAmount,
			&entry.RoomCount, &entry.LabelMode, &entry.Allocation, &entry.SharedMode, &shared,
			&entry.TextReport, &entry.Signature)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if shared.Valid {
			v := shared.Float64
			entry.SharedKwh = &v
		}
		index[entry.ID] = len(entries)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history entries: %w", err)
	}
	rows.Close()

	// Rooms are read after the entry cursor is closed; the store holds a
	// single connection.
	roomRows, err := s.db.QueryContext(ctx,
		"SELECT entry_id, label, room_kwh FROM history_rooms ORDER BY entry_id, idx",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get history rooms: %w", err)
	}
	defer roomRows.Close()

	for roomRows.Next() {
		var (
			entryID string
			room    models.HistoryRoom
		)
		if err := roomRows.Scan(&entryID, &room.Label, &room.RoomKwh); err != nil {
			return nil, fmt.Errorf("failed to scan history room: %w", err)
		}
		if i, ok := index[entryID]; ok {
			entries[i].Rooms = append(entries[i].Rooms, room)
		}
	}
	if err := roomRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rooms: %w", err)
	}

	return entries, nil
}
