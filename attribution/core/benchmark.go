package core

import (
	"sort"
	"time"

	"cfoworx.com/portal/core/models"
	"cfoworx.com/portal/utils"
)

// BenchmarkIndex holds every benchmark version (current and historical)
// grouped by assignment key, sorted ascending by effective date.
type BenchmarkIndex struct {
	versions map[AssignmentKey][]models.BenchmarkVersion
}

func NewBenchmarkIndex(versions []models.BenchmarkVersion) *BenchmarkIndex {
	idx := &BenchmarkIndex{versions: make(map[AssignmentKey][]models.BenchmarkVersion)}
	for _, v := range versions {
		v.EffectiveDate = utils.DateOf(v.EffectiveDate)
		key := NewAssignmentKey(v.ClientID, v.ConsultantID, v.Role)
		idx.versions[key] = append(idx.versions[key], v)
	}
	for key := range idx.versions {
		vs := idx.versions[key]
		sort.SliceStable(vs, func(i, j int) bool {
			return vs[i].EffectiveDate.Before(vs[j].EffectiveDate)
		})
	}
	return idx
}

// ResolveAt returns the single version effective on the given date: the last
// one whose effective date is on or before it. Nil means no expectation
// existed on that date.
func (idx *BenchmarkIndex) ResolveAt(key AssignmentKey, date time.Time) *models.BenchmarkVersion {
	vs := idx.versions[key]
	date = utils.DateOf(date)
	var found *models.BenchmarkVersion
	for i := range vs {
		if vs[i].EffectiveDate.After(date) {
			break
		}
		found = &vs[i]
	}
	return found
}

// Keys returns every assignment key with at least one version effective on or
// before the given date, in deterministic order.
func (idx *BenchmarkIndex) Keys(by time.Time) []AssignmentKey {
	by = utils.DateOf(by)
	keys := make([]AssignmentKey, 0, len(idx.versions))
	for key, vs := range idx.versions {
		if len(vs) > 0 && !vs[0].EffectiveDate.After(by) {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)
	return keys
}

// ActiveKeysFor returns the keys for one client/consultant pair that resolve
// to a version on the given date, in deterministic order.
func (idx *BenchmarkIndex) ActiveKeysFor(clientID, consultantID int32, date time.Time) []AssignmentKey {
	var keys []AssignmentKey
	for key := range idx.versions {
		if key.ClientID != clientID || key.ConsultantID != consultantID {
			continue
		}
		if idx.ResolveAt(key, date) != nil {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)
	return keys
}

// KeysForConsultant returns every key of a consultant that resolves on the
// given date.
func (idx *BenchmarkIndex) KeysForConsultant(consultantID int32, date time.Time) []AssignmentKey {
	var keys []AssignmentKey
	for key := range idx.versions {
		if key.ConsultantID != consultantID {
			continue
		}
		if idx.ResolveAt(key, date) != nil {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)
	return keys
}

// HasActiveKeyForClient reports whether any benchmark for the client resolves
// on the given date.
func (idx *BenchmarkIndex) HasActiveKeyForClient(clientID int32, date time.Time) bool {
	for key := range idx.versions {
		if key.ClientID == clientID && idx.ResolveAt(key, date) != nil {
			return true
		}
	}
	return false
}

func sortKeys(keys []AssignmentKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ClientID != b.ClientID {
			return a.ClientID < b.ClientID
		}
		if a.ConsultantID != b.ConsultantID {
			return a.ConsultantID < b.ConsultantID
		}
		return a.Role < b.Role
	})
}
