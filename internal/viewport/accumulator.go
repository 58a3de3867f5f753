package viewport

import "github.com/Nixie-Tech-LLC/minaarly/internal/model"

// Accumulator is the append-only list of mosques shown on one map page.
// It is not safe for concurrent use; Session serializes access.
type Accumulator struct {
	index   map[string]int
	mosques []model.Mosque
}

func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[string]int)}
}

// Merge appends the records of batch not seen before, in arrival order, and
// returns them. Records without coordinates are skipped.
func (a *Accumulator) Merge(batch []model.Mosque) []model.Mosque {
	added := make([]model.Mosque, 0, len(batch))
	for _, m := range batch {
		if !m.HasCoordinates() {
			continue
		}
		if _, seen := a.index[m.ID]; seen {
			continue
		}
		a.index[m.ID] = len(a.mosques)
		a.mosques = append(a.mosques, m)
		added = append(added, m)
	}
	return added
}

func (a *Accumulator) Get(id string) (model.Mosque, bool) {
	i, ok := a.index[id]
	if !ok {
		return model.Mosque{}, false
	}
	return a.mosques[i], true
}

func (a *Accumulator) Len() int { return len(a.mosques) }

// Mosques returns a copy of the accumulated list.
func (a *Accumulator) Mosques() []model.Mosque {
	out := make([]model.Mosque, len(a.mosques))
	copy(out, a.mosques)
	return out
}
