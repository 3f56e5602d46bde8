/*
Package assistant maintains a searchable index over directory trees of
DreamMaker icon files.
*/
package assistant

import "github.com/rs/zerolog"

type Assistant struct {
	db     *StateDB
	logger zerolog.Logger
}

func New(file string, logger zerolog.Logger) (*Assistant, error) {
	db, err := NewStateDB(file)
	if err != nil {
		return nil, err
	}

	return &Assistant{
		db:     db,
		logger: logger,
	}, nil
}

func (a *Assistant) Close() error {
	return a.db.Close()
}

// Search returns the indexed states matching pattern.
func (a *Assistant) Search(pattern string) ([]StateHit, error) {
	return a.db.SearchStates(pattern)
}

// Stats returns how many files and states the index holds.
func (a *Assistant) Stats() (int, int, error) {
	return a.db.Stats()
}
