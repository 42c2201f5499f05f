package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/oyelola-a/lineage-extractor/internal/extract"
)

func strptr(s string) *string { return &s }

func TestExportRecordsXLSX(t *testing.T) {
	svc := NewService("Persons", nil)

	records := []extract.PersonRecord{
		{
			FirstName: "Amelia",
			LastName:  "Hartley",
			Gender:    strptr("Female"),
			BirthDate: strptr("1884-03-12"),
			DeathDate: strptr("1951-11-02"),
		},
		{
			FirstName: "Edmund",
			LastName:  "Hartley",
		},
	}

	b, err := svc.ExportRecordsXLSX(records)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	header, err := f.GetCellValue("Persons", "A1")
	require.NoError(t, err)
	assert.Equal(t, "First Name", header)

	first, err := f.GetCellValue("Persons", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Amelia", first)

	gender, err := f.GetCellValue("Persons", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Female", gender)

	secondLast, err := f.GetCellValue("Persons", "C3")
	require.NoError(t, err)
	assert.Equal(t, "Hartley", secondLast)
}

func TestExportEmptyRecordList(t *testing.T) {
	svc := NewService("", nil)
	b, err := svc.ExportRecordsXLSX(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
