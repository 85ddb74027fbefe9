package manifest

import (
	"encoding/json"
	"sort"
)

// Delta categorizes every asset ID change between two consecutive manifests.
type Delta struct {
	Added   []string
	Updated []string
	Removed []string
}

// computeDelta compares the previous manifest (nil meaning "empty") with the
// new one. An ID present only in the new set is added; present in both with
// a differing entry fingerprint is updated; present only in the previous set
// is removed. The three lists are sorted for determinism.
func computeDelta(prev, next *Manifest) Delta {
	prevPrints := entryFingerprints(prev)
	nextPrints := entryFingerprints(next)

	delta := Delta{Added: []string{}, Updated: []string{}, Removed: []string{}}
	for id, print := range nextPrints {
		prevPrint, existed := prevPrints[id]
		switch {
		case !existed:
			delta.Added = append(delta.Added, id)
		case prevPrint != print:
			delta.Updated = append(delta.Updated, id)
		}
	}
	for id := range prevPrints {
		if _, still := nextPrints[id]; !still {
			delta.Removed = append(delta.Removed, id)
		}
	}

	sort.Strings(delta.Added)
	sort.Strings(delta.Updated)
	sort.Strings(delta.Removed)
	return delta
}

func entryFingerprints(m *Manifest) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	prints := make(map[string]string, len(m.NFTs))
	for _, entry := range m.NFTs {
		prints[m.EntryID(entry)] = canonicalJSON(entry)
	}
	return prints
}

// canonicalJSON produces a stable, key-sorted JSON fingerprint for change
// detection. Marshaling through a generic map makes encoding/json emit
// object keys in sorted order regardless of struct field order.
func canonicalJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return string(raw)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return string(raw)
	}
	return string(canonical)
}
