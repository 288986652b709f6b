// Package persistence provides SQLite-backed world state storage: entity
// snapshots, memory streams, dialogue transcripts, and world metadata, so a
// sandbox can be restarted without losing its population.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/critterworld/internal/entity"
	"github.com/talgya/critterworld/internal/memory"
	"github.com/talgya/critterworld/internal/store"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		personality INTEGER NOT NULL,
		base_color TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		pos_z REAL NOT NULL,
		rotation REAL NOT NULL,
		generation INTEGER NOT NULL,
		health REAL NOT NULL,
		age REAL NOT NULL,
		status TEXT NOT NULL,
		emotion_json TEXT NOT NULL,
		needs_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS memories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id TEXT NOT NULL,
		content TEXT NOT NULL,
		kind TEXT NOT NULL,
		related_json TEXT NOT NULL,
		salience REAL NOT NULL,
		at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dialogues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		speaker TEXT NOT NULL,
		target TEXT NOT NULL,
		text TEXT NOT NULL,
		at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_memories_entity ON memories(entity_id);
	CREATE INDEX IF NOT EXISTS idx_dialogues_at ON dialogues(at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEntities writes all entities to the database (full replace).
func (db *DB) SaveEntities(entities []*entity.Entity) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entities"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO entities
		(id, name, kind, personality, base_color,
		 pos_x, pos_y, pos_z, rotation,
		 generation, health, age, status, emotion_json, needs_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entities {
		kind := "critter"
		if e.Kind == entity.KindRobot {
			kind = "robot"
		}
		emotionJSON, _ := json.Marshal(e.Emotion)
		needsJSON, _ := json.Marshal(e.Needs)

		_, err := stmt.Exec(
			e.ID, e.Name, kind, e.Personality, e.BaseColor,
			e.Position.X, e.Position.Y, e.Position.Z, e.Rotation,
			e.Life.Generation, e.Life.Health, e.Life.Age, string(e.Life.Status),
			string(emotionJSON), string(needsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert entity %s: %w", e.Name, err)
		}
	}

	return tx.Commit()
}

// SaveMemories appends one entity's memory stream (full replace per entity).
func (db *DB) SaveMemories(entityID string, records []memory.Record) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM memories WHERE entity_id = ?", entityID); err != nil {
		return err
	}

	for _, r := range records {
		relatedJSON, _ := json.Marshal(r.RelatedIDs)
		_, err := tx.Exec(
			"INSERT INTO memories (entity_id, content, kind, related_json, salience, at) VALUES (?, ?, ?, ?, ?, ?)",
			entityID, r.Content, string(r.Kind), string(relatedJSON), r.Salience, r.At.Unix(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveDialogue appends one spoken line to the transcript.
func (db *DB) SaveDialogue(d store.Dialogue) error {
	_, err := db.conn.Exec(
		"INSERT INTO dialogues (speaker, target, text, at) VALUES (?, ?, ?, ?)",
		d.Speaker, d.Target, d.Text, d.At.Unix(),
	)
	return err
}

// RecentDialogues returns the most recent N transcript lines, newest first.
func (db *DB) RecentDialogues(limit int) ([]store.Dialogue, error) {
	rows, err := db.conn.Queryx(
		"SELECT speaker, target, text, at FROM dialogues ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Dialogue
	for rows.Next() {
		var speaker, target, text string
		var at int64
		if err := rows.Scan(&speaker, &target, &text, &at); err != nil {
			return nil, err
		}
		out = append(out, store.Dialogue{
			Speaker: speaker,
			Target:  target,
			Text:    text,
			At:      time.Unix(at, 0),
		})
	}
	return out, rows.Err()
}

// LoadMemories restores one entity's memory stream, oldest first.
func (db *DB) LoadMemories(entityID string) ([]memory.Record, error) {
	rows, err := db.conn.Queryx(
		"SELECT content, kind, related_json, salience, at FROM memories WHERE entity_id = ? ORDER BY id", entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []memory.Record
	for rows.Next() {
		var content, kind, relatedJSON string
		var salience float64
		var at int64
		if err := rows.Scan(&content, &kind, &relatedJSON, &salience, &at); err != nil {
			return nil, err
		}
		var related []string
		if err := json.Unmarshal([]byte(relatedJSON), &related); err != nil {
			related = nil
		}
		out = append(out, memory.Record{
			Content:    content,
			Kind:       memory.Kind(kind),
			RelatedIDs: related,
			Salience:   salience,
			At:         time.Unix(at, 0),
		})
	}
	return out, rows.Err()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorldState performs a full save: entities, their memory streams, and
// the day counter.
func (db *DB) SaveWorldState(entities []*entity.Entity, s *store.Store, day int) error {
	slog.Info("saving world state", "entities", len(entities), "day", day)

	if err := db.SaveEntities(entities); err != nil {
		return fmt.Errorf("save entities: %w", err)
	}
	for _, e := range entities {
		if err := db.SaveMemories(e.ID, s.Memories(e.ID)); err != nil {
			return fmt.Errorf("save memories for %s: %w", e.Name, err)
		}
	}
	if err := db.SaveMeta("day", fmt.Sprintf("%d", day)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}
