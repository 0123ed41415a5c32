package news

import (
	"ainews/app/database"
	"ainews/app/source"
)

// Gate is the dedup check in front of the store. Admit answers "is this
// record new?" by looking up its (source, natural ID) key; the insert's
// primary key constraint backstops the race where the same key arrives
// twice in one batch.
type Gate struct {
	store database.ItemStore
}

func NewGate(store database.ItemStore) *Gate {
	return &Gate{store: store}
}

// Admit reports whether rec has not been stored before.
func (g *Gate) Admit(rec source.Record) (bool, error) {
	exists, err := g.store.Exists(rec.Source, rec.NaturalID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
