package schema

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/feed"
)

// Row is one record of the target schema after coercion. Nullable columns use
// the database/sql null types so the loader can bind them directly.
type Row struct {
	Loc         string
	LocZn       string
	LocName     string
	LocPurpDesc string
	LocQTI      string
	FlowInd     string

	DC  sql.NullInt64
	OPC sql.NullInt64
	TSQ sql.NullInt64
	OAC sql.NullInt64

	IT              sql.NullBool
	AuthOverrunInd  sql.NullBool
	NomCapExceedInd sql.NullBool
	AllQtyAvail     sql.NullBool

	QtyReason string

	// Cycle is derived from the artifact identity, uniformly for every row
	Cycle int
}

// Table is the normalized form of one artifact: typed rows plus the
// data-quality warnings collected during coercion. Warnings never reject an
// artifact; they are logged by the caller.
type Table struct {
	Source   feed.ArtifactIdentity
	Rows     []Row
	Warnings []string
}

// Validate is the cheap structural pre-check run by the orchestrator before
// loading: target columns present (after header normalization) and at least
// one data row. The full coercion pass in Normalize re-checks both; the two
// are deliberately independent.
func Validate(records [][]string) error {
	if len(records) == 0 {
		return errors.Wrap(errors.ErrEmptyArtifact, "no header row")
	}
	if _, err := headerIndex(records[0]); err != nil {
		return err
	}
	if len(records) < 2 {
		return errors.WithStack(errors.ErrEmptyArtifact)
	}
	return nil
}

// Normalize coerces a raw CSV table onto the target schema. Each row is
// stamped with the cycle code from source, not re-derived from row content.
// Cell-level coercion failures downgrade to null plus a warning; only missing
// columns or an empty table reject the artifact.
func Normalize(records [][]string, source feed.ArtifactIdentity) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyArtifact, "no header row")
	}

	index, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	data := records[1:]
	if len(data) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyArtifact)
	}

	t := &Table{Source: source, Rows: make([]Row, 0, len(data))}

	// Track integer columns where every non-empty cell failed to parse
	intSeen := map[string]int{}
	intNulled := map[string]int{}

	for i, record := range data {
		cell := func(col string) string {
			idx := index[col]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		row := Row{
			Loc:         cell("loc"),
			LocZn:       cell("loc_zn"),
			LocName:     cell("loc_name"),
			LocPurpDesc: cell("loc_purp_desc"),
			LocQTI:      cell("loc_qti"),
			FlowInd:     cell("flow_ind"),
			QtyReason:   cell("qty_reason"),
			Cycle:       source.Cycle.Code,
		}

		rowNum := i + 1 // 1-based data row for warnings

		row.DC = coerceInt(cell("dc"), "dc", intSeen, intNulled)
		row.OPC = coerceInt(cell("opc"), "opc", intSeen, intNulled)
		row.TSQ = coerceInt(cell("tsq"), "tsq", intSeen, intNulled)
		row.OAC = coerceInt(cell("oac"), "oac", intSeen, intNulled)

		row.IT = t.coerceBool(cell("it"), "it", rowNum)
		row.AuthOverrunInd = t.coerceBool(cell("auth_overrun_ind"), "auth_overrun_ind", rowNum)
		row.NomCapExceedInd = t.coerceBool(cell("nom_cap_exceed_ind"), "nom_cap_exceed_ind", rowNum)
		row.AllQtyAvail = t.coerceBool(cell("all_qty_avail"), "all_qty_avail", rowNum)

		if row.Loc == "" {
			t.warnf("critical column loc is null at data row %d", rowNum)
		}

		for _, nc := range []struct {
			name string
			v    sql.NullInt64
		}{{"dc", row.DC}, {"opc", row.OPC}, {"tsq", row.TSQ}, {"oac", row.OAC}} {
			if nc.v.Valid && nc.v.Int64 < 0 {
				t.warnf("column %s has negative value %d at data row %d", nc.name, nc.v.Int64, rowNum)
			}
		}

		t.Rows = append(t.Rows, row)
	}

	// Column-level data quality: a numeric column where every non-empty value
	// failed to parse usually means the feed changed shape under us
	for _, col := range TargetColumns {
		if col.Kind != KindInt {
			continue
		}
		if intSeen[col.Name] > 0 && intNulled[col.Name] == intSeen[col.Name] {
			t.warnf("column %s: all %d non-empty values are non-numeric, coerced to null", col.Name, intSeen[col.Name])
		}
	}

	return t, nil
}

// headerIndex maps target column names to their position in the raw header,
// rejecting the table if any target column is missing.
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, raw := range header {
		index[NormalizeHeader(raw)] = i
	}

	var missing []string
	for _, col := range TargetColumns {
		if _, ok := index[col.Name]; !ok {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.Wrapf(errors.ErrSchemaRejected,
			"missing columns: %s", strings.Join(missing, ", "))
	}

	return index, nil
}

// coerceInt parses a cell as an integer. Non-parseable values coerce to null,
// never reject. Values like "123.0" that are exactly integral are accepted.
func coerceInt(value, col string, seen, nulled map[string]int) sql.NullInt64 {
	if value == "" {
		return sql.NullInt64{}
	}
	seen[col]++

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return sql.NullInt64{Int64: n, Valid: true}
	}
	// math.MaxInt64 rounds up to 2^63 as a float64, so the upper bound must
	// stay strict; MinInt64 is exactly representable.
	if f, err := strconv.ParseFloat(value, 64); err == nil && f == math.Trunc(f) &&
		f >= math.MinInt64 && f < math.MaxInt64 {
		return sql.NullInt64{Int64: int64(f), Valid: true}
	}

	nulled[col]++
	return sql.NullInt64{}
}

// coerceBool maps the operator's Y/N encoding: Y→true, N→false, empty→null.
// Any other token coerces to null with a warning; the source never defined
// other tokens, so rejecting the whole artifact for one stray cell would
// trade availability for nothing.
func (t *Table) coerceBool(value, col string, rowNum int) sql.NullBool {
	switch value {
	case "Y":
		return sql.NullBool{Bool: true, Valid: true}
	case "N":
		return sql.NullBool{Bool: false, Valid: true}
	case "":
		return sql.NullBool{}
	default:
		t.warnf("column %s: unexpected boolean token %q at data row %d, coerced to null", col, value, rowNum)
		return sql.NullBool{}
	}
}

func (t *Table) warnf(format string, args ...interface{}) {
	t.Warnings = append(t.Warnings, fmt.Sprintf(format, args...))
}
