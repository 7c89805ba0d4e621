package marginsdk

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/tidwall/buntdb"
)

// StateStore persists strategy state mappings so a session can be resumed
// after a restart or crash. One JSON document is kept per currency pair.
type StateStore struct {
	db     *buntdb.DB
	dbPath string
}

// NewStateStore opens (or creates) a state database in the given directory.
// A nil directory selects an in-memory store, useful for tests and for
// sessions that do not need to survive a restart.
func NewStateStore(dir *string) (*StateStore, error) {
	var dbPath string

	if dir == nil {
		dbPath = ":memory:"
	} else {
		if err := os.MkdirAll(*dir, 0755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
		dbPath = path.Join(*dir, "strategy_state.db")
	}

	db, err := buntdb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	if err := db.SetConfig(buntdb.Config{
		SyncPolicy: buntdb.EverySecond,
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring state database: %w", err)
	}

	return &StateStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the underlying database.
func (s *StateStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot for the pair with the given mapping.
func (s *StateStore) Save(pair string, state map[string]string) error {

	if state == nil {
		state = map[string]string{}
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding strategy state: %w", err)
	}

	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(stateKey(pair), string(data), nil)

		return err
	})
}

// Load returns the stored snapshot for the pair. A pair that was never saved
// yields a nil mapping and no error.
func (s *StateStore) Load(pair string) (map[string]string, error) {
	var raw string

	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(stateKey(pair))
		if err != nil {
			return err
		}

		raw = v
		return nil
	})

	if err == buntdb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding strategy state: %w", err)
	}

	return state, nil
}

// Delete removes the stored snapshot for the pair.
func (s *StateStore) Delete(pair string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(stateKey(pair))
		if err == buntdb.ErrNotFound {
			return nil
		}

		return err
	})
}

func stateKey(pair string) string {
	return "state:" + pair
}
