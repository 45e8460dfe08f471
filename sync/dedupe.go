package sync

import (
	"parcelsync/identity"
	"parcelsync/models"
)

// DedupeByAddress keeps one record per "address, city, state" key, choosing
// the most recent recording date. On equal dates the later record wins, so
// a page replaying a transaction supersedes the earlier copy. Output keeps
// first-seen order.
func DedupeByAddress(records []models.RawTransactionRecord) []models.RawTransactionRecord {
	byKey := make(map[string]int, len(records))
	out := make([]models.RawTransactionRecord, 0, len(records))

	for _, rec := range records {
		key := identity.AddressKey(rec.Address, rec.City, rec.State)
		if i, ok := byKey[key]; ok {
			if !rec.RecordingDate.Before(out[i].RecordingDate) {
				out[i] = rec
			}
			continue
		}
		byKey[key] = len(out)
		out = append(out, rec)
	}
	return out
}
