package main

import (
	"bytes"
	"strings"
	"testing"

	"leadflow_backend/internal/leads/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleImport = `
source: expo-2026
leads:
  - name: Asha Verma
    phone: "+91 98765 43210"
    email: asha@example.com
  - name: Ravi Kumar
    phone: "98765 43211"
    assignedBoeId: 6f1c2b9e-4d3a-4f8e-9b7a-2c5d1e0f3a4b
`

func TestParseImportFileReadsBatch(t *testing.T) {
	req, err := parseImportFile(strings.NewReader(sampleImport), "")
	require.NoError(t, err)

	assert.Equal(t, "expo-2026", req.Source)
	require.Len(t, req.Leads, 2)
	assert.Equal(t, "Asha Verma", req.Leads[0].ConsumerName)
	assert.Equal(t, "+91 98765 43210", req.Leads[0].ConsumerPhone)
	require.NotNil(t, req.Leads[0].ConsumerEmail)
	assert.Equal(t, "asha@example.com", *req.Leads[0].ConsumerEmail)
	assert.Nil(t, req.Leads[0].AssignedBOEID)
	require.NotNil(t, req.Leads[1].AssignedBOEID)
	assert.Equal(t, "6f1c2b9e-4d3a-4f8e-9b7a-2c5d1e0f3a4b", req.Leads[1].AssignedBOEID.String())
}

func TestParseImportFileSourceFlagOverrides(t *testing.T) {
	req, err := parseImportFile(strings.NewReader(sampleImport), "  walk-in ")
	require.NoError(t, err)
	assert.Equal(t, "walk-in", req.Source)
}

func TestParseImportFileRejectsUnknownFieldsAndEmptyInput(t *testing.T) {
	_, err := parseImportFile(strings.NewReader("source: x\nleads:\n  - name: A\n    mobile: \"1\"\n"), "")
	assert.Error(t, err)

	_, err = parseImportFile(strings.NewReader(""), "")
	assert.EqualError(t, err, "file is empty")
}

func TestDescribeFieldErrorsIsSorted(t *testing.T) {
	got := describeFieldErrors(map[string]string{
		"ImportLeadsRequest.source": "required",
		"ImportLeadsRequest.leads":  "min",
	})
	assert.Equal(t, "ImportLeadsRequest.leads: min; ImportLeadsRequest.source: required", got)
	assert.Equal(t, "invalid import file", describeFieldErrors(nil))
}

func TestPrintImportSummaryListsFailures(t *testing.T) {
	var buf bytes.Buffer
	printImportSummary(&buf, transport.ImportLeadsResponse{
		Created:    1,
		Duplicates: 1,
		Failed:     1,
		Results: []transport.ImportItemResult{
			{Index: 0, Status: transport.ImportCreated},
			{Index: 1, Status: transport.ImportDuplicate},
			{Index: 2, Status: transport.ImportFailed, Error: "invalid phone number"},
		},
	})

	assert.Equal(t, "created=1 duplicates=1 failed=1\n  row 2: invalid phone number\n", buf.String())
}

func TestStatusesCommandPrintsCatalog(t *testing.T) {
	var buf bytes.Buffer
	statusesCmd.SetOut(&buf)
	statusesCmd.Run(statusesCmd, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "NEW", lines[0])
}
