package sqlite

import "database/sql"

// schema sets up the database on startup.
// history_rooms must be created after history_entries due to the foreign key.
const schema = `
CREATE TABLE IF NOT EXISTS session_records (
    key TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history_entries (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    period TEXT NOT NULL,
    total_kwh REAL NOT NULL,
    bill_amount REAL NOT NULL,
    room_count INTEGER NOT NULL,
    label_mode TEXT NOT NULL,
    allocation_method TEXT NOT NULL,
    shared_kwh_mode TEXT NOT NULL,
    shared_kwh REAL,
    text_report TEXT NOT NULL,
    signature TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history_rooms (
    entry_id TEXT NOT NULL,
    idx INTEGER NOT NULL,
    label TEXT NOT NULL,
    room_kwh REAL NOT NULL,
    PRIMARY KEY (entry_id, idx),
    FOREIGN KEY (entry_id) REFERENCES history_entries(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_history_entries_position ON history_entries(position);
CREATE INDEX IF NOT EXISTS idx_history_rooms_entry_id ON history_rooms(entry_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
