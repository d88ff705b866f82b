package store

import (
	"fmt"

	"github.com/jward/geomstore/internal/element"
)

// ReferenceSource supplies the element keys that are still in use. Geometries
// of keys referenced by no source are removed by DeleteUnreferenced.
type ReferenceSource interface {
	ReferencedKeys() ([]element.Key, error)
}

// ReferenceFunc adapts a function to a ReferenceSource.
type ReferenceFunc func() ([]element.Key, error)

// ReferencedKeys calls f.
func (f ReferenceFunc) ReferencedKeys() ([]element.Key, error) {
	return f()
}

// Reference table names.
const (
	ActiveQuestRefsTable = "active_quest_refs"
	UndoQuestRefsTable   = "undo_quest_refs"
)

// RefTable records which quests reference which elements. One element can be
// referenced by several quest types.
type RefTable struct {
	store *Store
	name  string
}

// Compile-time check: *RefTable satisfies ReferenceSource.
var _ ReferenceSource = (*RefTable)(nil)

// ActiveQuestRefs returns the table of quests currently shown to the user.
func (s *Store) ActiveQuestRefs() *RefTable {
	return &RefTable{store: s, name: ActiveQuestRefsTable}
}

// UndoQuestRefs returns the table of answered quests that can still be undone.
func (s *Store) UndoQuestRefs() *RefTable {
	return &RefTable{store: s, name: UndoQuestRefsTable}
}

// Name returns the SQL table name.
func (t *RefTable) Name() string {
	return t.name
}

// Add records that a quest of questType references key. Adding an existing
// reference is a no-op.
func (t *RefTable) Add(questType string, key element.Key) error {
	if !key.Valid() {
		return fmt.Errorf("add %s reference: invalid element key %s", t.name, key)
	}
	_, err := t.store.db.Exec(
		"INSERT OR IGNORE INTO "+t.name+" (quest_type, element_type, element_id) VALUES (?, ?, ?)",
		questType, string(key.Type), key.ID,
	)
	if err != nil {
		return fmt.Errorf("add %s reference: %w", t.name, err)
	}
	return nil
}

// Remove deletes a single quest reference.
func (t *RefTable) Remove(questType string, key element.Key) error {
	_, err := t.store.db.Exec(
		"DELETE FROM "+t.name+" WHERE quest_type = ? AND element_type = ? AND element_id = ?",
		questType, string(key.Type), key.ID,
	)
	if err != nil {
		return fmt.Errorf("remove %s reference: %w", t.name, err)
	}
	return nil
}

// RemoveAll deletes every quest reference to key.
func (t *RefTable) RemoveAll(key element.Key) error {
	_, err := t.store.db.Exec(
		"DELETE FROM "+t.name+" WHERE element_type = ? AND element_id = ?",
		keyArgs(key)...,
	)
	if err != nil {
		return fmt.Errorf("remove %s references: %w", t.name, err)
	}
	return nil
}

// ReferencedKeys returns each referenced element once.
func (t *RefTable) ReferencedKeys() ([]element.Key, error) {
	rows, err := t.store.db.Query("SELECT DISTINCT element_type, element_id FROM " + t.name)
	if err != nil {
		return nil, fmt.Errorf("%s referenced keys: %w", t.name, err)
	}
	return scanKeys(rows)
}
