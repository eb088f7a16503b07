package processors

import (
	"sort"
	"time"

	"github.com/username/termtrack/backend/src/models"
)

// docTypePriorities ranks document types by contractual authority.
// Higher number = stronger precedence.
var docTypePriorities = map[string]int{
	models.DocTypeAmendment:    4,
	models.DocTypeSideLetter:   3,
	models.DocTypeFeeSchedule:  3,
	models.DocTypeSubscription: 2,
	models.DocTypePPM:          1,
}

const defaultDocPriority = 1

// PriorityOf returns the precedence rank for a document. An explicit
// positive priority on the document wins; otherwise the rank is derived from
// the document type, with unknown or empty types treated as baseline (1).
// Total function, never errors.
func PriorityOf(doc models.Document) int {
	if doc.Priority > 0 {
		return doc.Priority
	}
	if p, ok := docTypePriorities[doc.DocType]; ok {
		return p
	}
	return defaultDocPriority
}

// SortDocumentsForResolution orders documents ascending by
// (effective date, priority), so that walking the result and letting each
// document overwrite earlier entries leaves the latest-dated (and, on date
// ties, highest-priority) document in control. A nil effective date sorts as
// the zero time, i.e. first and most easily overridden.
//
// The sort is stable: two documents with identical date and priority keep
// their input order, so the most recently entered one wins the fold. That
// tie-break is intentional, not incidental.
func SortDocumentsForResolution(docs []models.Document) []models.Document {
	sorted := make([]models.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := effectiveDateOrZero(sorted[i]), effectiveDateOrZero(sorted[j])
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return PriorityOf(sorted[i]) < PriorityOf(sorted[j])
	})
	return sorted
}

func effectiveDateOrZero(doc models.Document) time.Time {
	if doc.EffectiveDate == nil {
		return time.Time{}
	}
	return *doc.EffectiveDate
}
