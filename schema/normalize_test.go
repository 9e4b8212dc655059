package schema

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/feed"
)

// rawHeader is the operator's header row as it appears in real artifacts
var rawHeader = []string{
	"Loc", "Loc Zn", "Loc Name", "Loc Purp Desc", "Loc/QTI", "Flow Ind",
	"DC", "OPC", "TSQ", "OAC",
	"IT", "Auth Overrun Ind", "Nom Cap Exceed Ind", "All Qty Avail",
	"Qty Reason",
}

func testIdentity(t *testing.T) feed.ArtifactIdentity {
	t.Helper()
	timely, ok := feed.CycleByName("timely")
	require.True(t, ok)
	return feed.ArtifactIdentity{
		GasDay: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		Cycle:  timely,
	}
}

func dataRow(loc, dc, it string) []string {
	return []string{
		loc, "ZN1", "STATION A", "Receipt", "QTI", "F",
		dc, "200", "150", "0",
		it, "N", "N", "Y",
		"",
	}
}

func TestNormalizeWellTypedTable(t *testing.T) {
	records := [][]string{
		rawHeader,
		dataRow("100001", "100", "Y"),
		dataRow("100002", "250", "N"),
	}

	table, err := Normalize(records, testIdentity(t))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Empty(t, table.Warnings)

	r := table.Rows[0]
	assert.Equal(t, "100001", r.Loc)
	assert.Equal(t, "ZN1", r.LocZn)
	assert.Equal(t, "STATION A", r.LocName)
	assert.Equal(t, sql.NullInt64{Int64: 100, Valid: true}, r.DC)
	assert.Equal(t, sql.NullInt64{Int64: 200, Valid: true}, r.OPC)
	assert.Equal(t, sql.NullBool{Bool: true, Valid: true}, r.IT)
	assert.Equal(t, sql.NullBool{Bool: false, Valid: true}, r.AuthOverrunInd)
	assert.Equal(t, sql.NullBool{Bool: true, Valid: true}, r.AllQtyAvail)

	// Cycle stamped uniformly from the identity, not row content
	for _, row := range table.Rows {
		assert.Equal(t, 0, row.Cycle)
	}
}

func TestNormalizeMissingColumnRejects(t *testing.T) {
	header := make([]string, 0, len(rawHeader)-1)
	for _, h := range rawHeader {
		if h != "Loc" {
			header = append(header, h)
		}
	}
	records := [][]string{header, dataRow("x", "1", "Y")[1:]}

	_, err := Normalize(records, testIdentity(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSchemaRejected))
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "loc")
}

func TestNormalizeEmptyTableRejects(t *testing.T) {
	_, err := Normalize([][]string{rawHeader}, testIdentity(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyArtifact))

	_, err = Normalize(nil, testIdentity(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyArtifact))
}

func TestBooleanCoercion(t *testing.T) {
	records := [][]string{
		rawHeader,
		dataRow("1", "1", "Y"),
		dataRow("2", "1", "N"),
		dataRow("3", "1", ""),
		dataRow("4", "1", "MAYBE"),
	}

	table, err := Normalize(records, testIdentity(t))
	require.NoError(t, err)

	assert.Equal(t, sql.NullBool{Bool: true, Valid: true}, table.Rows[0].IT)
	assert.Equal(t, sql.NullBool{Bool: false, Valid: true}, table.Rows[1].IT)
	assert.False(t, table.Rows[2].IT.Valid)

	// Undefined tokens coerce to null with a warning, consistently
	assert.False(t, table.Rows[3].IT.Valid)
	require.Len(t, table.Warnings, 1)
	assert.Contains(t, table.Warnings[0], `unexpected boolean token "MAYBE"`)

	// Repeated calls behave identically
	again, err := Normalize(records, testIdentity(t))
	require.NoError(t, err)
	assert.Equal(t, table.Rows[3].IT, again.Rows[3].IT)
	assert.Equal(t, table.Warnings, again.Warnings)
}

func TestIntegerCoercion(t *testing.T) {
	records := [][]string{
		rawHeader,
		dataRow("1", "123", "Y"),
		dataRow("2", "123.0", "Y"),
		dataRow("3", "abc", "Y"),
		dataRow("4", "", "Y"),
		dataRow("5", "1e30", "Y"),
		dataRow("6", "-1e30", "Y"),
		dataRow("7", "9223372036854775808", "Y"),
	}

	table, err := Normalize(records, testIdentity(t))
	require.NoError(t, err)
	require.Len(t, table.Rows, 7)

	assert.Equal(t, int64(123), table.Rows[0].DC.Int64)
	assert.Equal(t, int64(123), table.Rows[1].DC.Int64)
	assert.False(t, table.Rows[2].DC.Valid, "non-numeric coerces to null, never rejects")
	assert.False(t, table.Rows[3].DC.Valid, "empty is null")
	assert.False(t, table.Rows[4].DC.Valid, "out-of-range numeric is null, never a wrong value")
	assert.False(t, table.Rows[5].DC.Valid)
	assert.False(t, table.Rows[6].DC.Valid, "one past MaxInt64 is null")

	for _, w := range table.Warnings {
		assert.NotContains(t, w, "negative value", "overflowed cells must not leak wrapped values into warnings")
	}
}

func TestIntegerColumnAllNonNumericWarns(t *testing.T) {
	records := [][]string{
		rawHeader,
		dataRow("1", "N/A", "Y"),
		dataRow("2", "N/A", "Y"),
	}

	table, err := Normalize(records, testIdentity(t))
	require.NoError(t, err, "a fully non-numeric column warns but does not reject")

	found := false
	for _, w := range table.Warnings {
		if strings.Contains(w, "column dc") && strings.Contains(w, "non-numeric") {
			found = true
		}
	}
	assert.True(t, found, "expected data-quality warning for dc, got %v", table.Warnings)
}

func TestNegativeValuesWarnButPass(t *testing.T) {
	records := [][]string{
		rawHeader,
		dataRow("1", "-50", "Y"),
	}

	table, err := Normalize(records, testIdentity(t))
	require.NoError(t, err)
	assert.Equal(t, int64(-50), table.Rows[0].DC.Int64)

	require.Len(t, table.Warnings, 1)
	assert.Contains(t, table.Warnings[0], "negative value")
}

func TestNullLocWarnsButPasses(t *testing.T) {
	records := [][]string{
		rawHeader,
		dataRow("", "1", "Y"),
	}

	table, err := Normalize(records, testIdentity(t))
	require.NoError(t, err)
	require.Len(t, table.Warnings, 1)
	assert.Contains(t, table.Warnings[0], "critical column loc")
}

func TestValidateStructuralOnly(t *testing.T) {
	good := [][]string{rawHeader, dataRow("1", "totally-not-a-number", "MAYBE")}
	assert.NoError(t, Validate(good), "structural check ignores cell contents")

	assert.Error(t, Validate([][]string{rawHeader}))
	assert.Error(t, Validate(nil))

	headless := [][]string{{"Loc", "DC"}, {"1", "2"}}
	err := Validate(headless)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSchemaRejected))
}

func TestNormalizeShortRecordsPadWithNulls(t *testing.T) {
	short := []string{"100001", "ZN1", "STATION A", "Receipt", "QTI", "F", "10"}
	records := [][]string{rawHeader, short}

	table, err := Normalize(records, testIdentity(t))
	require.NoError(t, err)

	r := table.Rows[0]
	assert.Equal(t, int64(10), r.DC.Int64)
	assert.False(t, r.OPC.Valid)
	assert.False(t, r.IT.Valid)
	assert.Equal(t, "", r.QtyReason)
}
