// Package merge combines strings mappings from different sources,
// equivalent to the translation-matching step of a strings file sync.
//
// The scanned mapping (strings found in the current sources) decides which
// keys exist. A reference mapping (an earlier translation export) only
// supplies values for them.
package merge

import (
	"sort"

	"github.com/rs/zerolog/log"

	sf "github.com/minios-linux/stringsync/stringsfile"
)

// Match completes scanned with translations from reference.
//   - Keys translated in reference take the reference value and keep the
//     scanned comment: comments always come from the sources.
//   - Keys untranslated in reference, or missing from it, keep the scanned
//     record unchanged.
//   - Keys only present in reference are dropped.
//
// Neither input is modified.
func Match(scanned, reference sf.Mapping) sf.Mapping {
	result := make(sf.Mapping, len(scanned))

	for key, s := range scanned {
		ref, ok := reference[key]
		switch {
		case !ok:
			log.Debug().Str("key", key).Msg("[new]")
			result[key] = s
		case ref.IsUntranslated():
			log.Debug().Str("key", key).Msg("[raw]")
			result[key] = s
		default:
			ref.Comment = s.Comment
			result[key] = ref
		}
	}

	for key := range reference {
		if _, ok := result[key]; !ok {
			log.Debug().Str("key", key).Msg("[deleted]")
		}
	}

	return result
}

// Merge returns the union of reference and imported. On a key collision
// the reference record is kept.
func Merge(reference, imported sf.Mapping) sf.Mapping {
	result := reference.Clone()
	for key, r := range imported {
		if _, ok := result[key]; !ok {
			result[key] = r
		}
	}
	return result
}

// MatchReport describes what Match would do, as sorted key lists.
type MatchReport struct {
	// New keys are scanned but absent from the reference.
	New []string
	// Raw keys are in the reference but not translated there yet.
	Raw []string
	// Translated keys take their value from the reference.
	Translated []string
	// Deleted keys are only in the reference and will be dropped.
	Deleted []string
}

// Report classifies the keys of scanned and reference the way Match does.
func Report(scanned, reference sf.Mapping) MatchReport {
	var rep MatchReport
	for key := range scanned {
		ref, ok := reference[key]
		switch {
		case !ok:
			rep.New = append(rep.New, key)
		case ref.IsUntranslated():
			rep.Raw = append(rep.Raw, key)
		default:
			rep.Translated = append(rep.Translated, key)
		}
	}
	for key := range reference {
		if _, ok := scanned[key]; !ok {
			rep.Deleted = append(rep.Deleted, key)
		}
	}

	sort.Strings(rep.New)
	sort.Strings(rep.Raw)
	sort.Strings(rep.Translated)
	sort.Strings(rep.Deleted)
	return rep
}
