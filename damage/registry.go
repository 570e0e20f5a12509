package damage

import (
	"sort"

	"github.com/automoto/hitmarkers/shared/gamemath"
	"github.com/automoto/hitmarkers/shared/netconfig"
)

// EffectRecord is a live digit effect.
type EffectRecord struct {
	ID           uint64
	Owner        PlayerID
	Tier         netconfig.EffectTier
	Digit        int
	Position     gamemath.Vec3
	Critical     bool
	RightAligned bool
	ExpiryTick   uint64
	Handle       Handle
}

// Registry tracks live effect records by id and by owner.
type Registry struct {
	records map[uint64]*EffectRecord
	byOwner map[PlayerID]map[uint64]struct{}
	nextID  uint64
}

func NewRegistry() *Registry {
	return &Registry{
		records: make(map[uint64]*EffectRecord),
		byOwner: make(map[PlayerID]map[uint64]struct{}),
	}
}

// Add stores rec under a fresh id and returns the id.
func (r *Registry) Add(rec EffectRecord) uint64 {
	r.nextID++
	rec.ID = r.nextID
	r.records[rec.ID] = &rec

	owned, ok := r.byOwner[rec.Owner]
	if !ok {
		owned = make(map[uint64]struct{})
		r.byOwner[rec.Owner] = owned
	}
	owned[rec.ID] = struct{}{}
	return rec.ID
}

// Get returns a copy of the record.
func (r *Registry) Get(id uint64) (EffectRecord, bool) {
	rec, ok := r.records[id]
	if !ok {
		return EffectRecord{}, false
	}
	return *rec, true
}

// Remove deletes the record and returns it.
func (r *Registry) Remove(id uint64) (EffectRecord, bool) {
	rec, ok := r.records[id]
	if !ok {
		return EffectRecord{}, false
	}
	delete(r.records, id)
	if owned, ok := r.byOwner[rec.Owner]; ok {
		delete(owned, id)
		if len(owned) == 0 {
			delete(r.byOwner, rec.Owner)
		}
	}
	return *rec, true
}

// TakeOwner removes every record owned by owner and returns them in
// creation order.
func (r *Registry) TakeOwner(owner PlayerID) []EffectRecord {
	owned, ok := r.byOwner[owner]
	if !ok {
		return nil
	}
	out := make([]EffectRecord, 0, len(owned))
	for id := range owned {
		out = append(out, *r.records[id])
		delete(r.records, id)
	}
	delete(r.byOwner, owner)
	sortRecords(out)
	return out
}

// TakeAll removes every record and returns them in creation order.
func (r *Registry) TakeAll() []EffectRecord {
	out := r.All()
	clear(r.records)
	clear(r.byOwner)
	return out
}

// OwnedBy returns copies of the records owned by owner in creation order.
func (r *Registry) OwnedBy(owner PlayerID) []EffectRecord {
	owned := r.byOwner[owner]
	out := make([]EffectRecord, 0, len(owned))
	for id := range owned {
		out = append(out, *r.records[id])
	}
	sortRecords(out)
	return out
}

// All returns copies of every record in creation order.
func (r *Registry) All() []EffectRecord {
	out := make([]EffectRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	sortRecords(out)
	return out
}

// Len returns the number of live records.
func (r *Registry) Len() int {
	return len(r.records)
}

func sortRecords(recs []EffectRecord) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
}
