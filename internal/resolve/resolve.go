// Package resolve attaches surrogate database ids to rows that carry only a
// natural key. Resolution is an inner join: rows whose key is missing or
// unknown are dropped.
package resolve

import (
	"sort"
	"strings"

	"github.com/gyeh/clinicload/internal/model"
)

// ByKey keeps the rows whose natural key is present in ids and passes each
// kept row with its id to attach. It returns the kept rows in input order and
// the number dropped.
func ByKey[T any, K comparable](rows []T, ids map[K]int64, key func(*T) (K, bool), attach func(*T, int64)) ([]T, int) {
	return ByLookup(rows, func(r *T) (int64, bool) {
		k, ok := key(r)
		if !ok {
			return 0, false
		}
		id, ok := ids[k]
		return id, ok
	}, attach)
}

// ByLookup is ByKey with an arbitrary lookup.
func ByLookup[T any](rows []T, lookup func(*T) (int64, bool), attach func(*T, int64)) ([]T, int) {
	out := make([]T, 0, len(rows))
	for i := range rows {
		row := rows[i]
		id, ok := lookup(&row)
		if !ok {
			continue
		}
		attach(&row, id)
		out = append(out, row)
	}
	return out, len(rows) - len(out)
}

// SharePointKey adapts a non-nullable SharePoint id getter.
func SharePointKey[T any](get func(*T) int64) func(*T) (int64, bool) {
	return func(r *T) (int64, bool) { return get(r), true }
}

// NullableKey adapts a nullable id getter.
func NullableKey[T any](get func(*T) *int64) func(*T) (int64, bool) {
	return func(r *T) (int64, bool) {
		v := get(r)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}

// DeviceIndex picks one device per patient for readings.
type DeviceIndex map[int64][]model.DeviceRef

// NewDeviceIndex groups devices by patient, ordered by device id.
func NewDeviceIndex(devices []model.DeviceRef) DeviceIndex {
	idx := DeviceIndex{}
	for _, d := range devices {
		idx[d.PatientID] = append(idx[d.PatientID], d)
	}
	for _, ds := range idx {
		sort.Slice(ds, func(i, j int) bool { return ds[i].DeviceID < ds[j].DeviceID })
	}
	return idx
}

// Pick returns the device for a reading: the first whose name contains the
// reading's device model, else the patient's lowest device id.
func (idx DeviceIndex) Pick(patientID int64, deviceModel *string) (int64, bool) {
	ds := idx[patientID]
	if len(ds) == 0 {
		return 0, false
	}
	if deviceModel != nil && *deviceModel != "" {
		want := strings.ToLower(*deviceModel)
		for _, d := range ds {
			if strings.Contains(strings.ToLower(d.Name), want) {
				return d.DeviceID, true
			}
		}
	}
	return ds[0].DeviceID, true
}
