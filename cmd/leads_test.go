package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/prospectly/leadgen-cli/internal/model"
)

func sampleLeads() []model.Lead {
	rating := 4.5
	return []model.Lead{
		{ID: "id-1", Name: "Joe's Plumbing", Status: model.LeadStatusQualified,
			Phone: "+14155550100", Website: "https://joes.example", Category: "Plumber",
			Rating: &rating, Address: "1 Main St"},
		{ID: "id-2", Name: "No Rating Inc", Status: model.LeadStatusNew},
	}
}

func TestFormatLeadsList(t *testing.T) {
	var buf bytes.Buffer
	formatLeadsList(&buf, sampleLeads())

	out := buf.String()
	assert.Contains(t, out, "Joe's Plumbing")
	assert.Contains(t, out, "qualified")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "2 leads")
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, exportCSV(path, sampleLeads()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, leadHeader, rows[0])
	assert.Equal(t, "Joe's Plumbing", rows[1][1])
	assert.Equal(t, "4.5", rows[1][6])
	assert.Equal(t, "", rows[2][6])
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, exportXLSX(path, sampleLeads()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "ID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Joe's Plumbing", sheet.Rows[1].Cells[1].String())
}

func TestLeadRow(t *testing.T) {
	row := leadRow(sampleLeads()[1])
	assert.Equal(t, "id-2", row[0])
	assert.Equal(t, "No Rating Inc", row[1])
	assert.Equal(t, "new", row[2])
	assert.Equal(t, "", row[6])
}
