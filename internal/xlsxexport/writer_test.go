package xlsxexport_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"plansift/internal/domain"
	"plansift/internal/xlsxexport"
)

func sampleObject() domain.ExtractedObject {
	return domain.ExtractedObject{
		ID:         "room_0011223344556677",
		Page:       domain.PageRef{ProjectID: uuid.New(), PDFID: "plan-a", PageID: "page-1"},
		Type:       domain.TypeRoom,
		Label:      "203",
		Name:       "CLASSE",
		Number:     "203",
		BBox:       domain.NewBBox(100, 100, 50, 50),
		Confidence: 0.95,
		Provenance: []string{"ruleset:conservative", "paired", "source:vector"},
		RunID:      uuid.New(),
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriter_WorkbookRoundTrip(t *testing.T) {
	w, err := xlsxexport.NewWriter()
	require.NoError(t, err)
	require.NoError(t, w.WriteObjects([]domain.ExtractedObject{sampleObject()}))

	var buf bytes.Buffer
	require.NoError(t, w.Flush(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Objects")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Object ID", rows[0][0])
	assert.Equal(t, "Confidence Level", rows[0][12])

	row := rows[1]
	assert.Equal(t, "room_0011223344556677", row[0])
	assert.Equal(t, "room", row[1])
	assert.Equal(t, "203", row[2])
	assert.Equal(t, "CLASSE", row[3])
	assert.Equal(t, "page-1", row[5])
	assert.Equal(t, "high", row[12])
	assert.Equal(t, "ruleset:conservative; paired; source:vector", row[13])
}

func TestWriter_EmptyProject(t *testing.T) {
	w, err := xlsxexport.NewWriter()
	require.NoError(t, err)
	require.NoError(t, w.WriteObjects(nil))

	var buf bytes.Buffer
	require.NoError(t, w.Flush(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Objects")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Building_A_-_Level_2", xlsxexport.SanitizeFilename("Building A - Level 2"))
	assert.Equal(t, "plan", xlsxexport.SanitizeFilename("__plan__"))
	assert.Len(t, xlsxexport.SanitizeFilename(strings.Repeat("a", 200)), 100)
}

func TestBuildFilename(t *testing.T) {
	name := xlsxexport.BuildFilename("Building A")
	assert.True(t, strings.HasPrefix(name, "Building_A_"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
}
