package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/termtrack/backend/src/models"
)

func datePtr(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return &parsed
}

func TestPriorityOfKnownDocumentTypes(t *testing.T) {
	tests := []struct {
		docType string
		want    int
	}{
		{models.DocTypeAmendment, 4},
		{models.DocTypeSideLetter, 3},
		{models.DocTypeFeeSchedule, 3},
		{models.DocTypeSubscription, 2},
		{models.DocTypePPM, 1},
	}
	for _, tt := range tests {
		t.Run(tt.docType, func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityOf(models.Document{DocType: tt.docType}))
		})
	}
}

func TestPriorityOfUnknownTypeRanksBaseline(t *testing.T) {
	assert.Equal(t, 1, PriorityOf(models.Document{DocType: "Board Consent"}))
	assert.Equal(t, 1, PriorityOf(models.Document{DocType: ""}))
}

func TestPriorityOfExplicitPriorityWins(t *testing.T) {
	doc := models.Document{DocType: models.DocTypePPM, Priority: 9}
	assert.Equal(t, 9, PriorityOf(doc))

	// Zero and negative priorities fall back to the type table.
	assert.Equal(t, 4, PriorityOf(models.Document{DocType: models.DocTypeAmendment, Priority: 0}))
	assert.Equal(t, 4, PriorityOf(models.Document{DocType: models.DocTypeAmendment, Priority: -2}))
}

func TestSortDocumentsForResolutionOrdersByDateThenPriority(t *testing.T) {
	docs := []models.Document{
		{ID: 1, DocType: models.DocTypeAmendment, EffectiveDate: datePtr(t, "2024-06-01")},
		{ID: 2, DocType: models.DocTypeSubscription, EffectiveDate: datePtr(t, "2024-01-15")},
		{ID: 3, DocType: models.DocTypeSideLetter, EffectiveDate: datePtr(t, "2024-06-01")},
		{ID: 4, DocType: models.DocTypePPM},
	}

	sorted := SortDocumentsForResolution(docs)

	// No date first, then earliest date; on the shared date the lower
	// priority Side Letter precedes the Amendment.
	ids := []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID, sorted[3].ID}
	assert.Equal(t, []int64{4, 2, 3, 1}, ids)
}

func TestSortDocumentsForResolutionIsStableOnExactTies(t *testing.T) {
	date := datePtr(t, "2024-03-01")
	docs := []models.Document{
		{ID: 10, DocType: models.DocTypeSideLetter, EffectiveDate: date},
		{ID: 11, DocType: models.DocTypeFeeSchedule, EffectiveDate: date},
	}

	sorted := SortDocumentsForResolution(docs)
	assert.Equal(t, int64(10), sorted[0].ID)
	assert.Equal(t, int64(11), sorted[1].ID)
}

func TestSortDocumentsForResolutionDoesNotMutateInput(t *testing.T) {
	docs := []models.Document{
		{ID: 1, EffectiveDate: datePtr(t, "2024-06-01")},
		{ID: 2, EffectiveDate: datePtr(t, "2024-01-15")},
	}

	_ = SortDocumentsForResolution(docs)
	assert.Equal(t, int64(1), docs[0].ID)
	assert.Equal(t, int64(2), docs[1].ID)
}
