// Package store persists normalized capacity-nomination rows into Postgres.
// Inserts run in fixed-size batches, one transaction per batch; a failed
// batch aborts the rest of its artifact but keeps earlier batches committed.
package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/tecflow/errors"
	"github.com/teranos/tecflow/feed"
	"github.com/teranos/tecflow/schema"
	"github.com/teranos/tecflow/sym"
)

// DefaultBatchSize is the number of rows per multi-row INSERT
const DefaultBatchSize = 1000

// insertColumns is the column list of one tec_data row, in bind order
var insertColumns = []string{
	"loc", "loc_zn", "loc_name", "loc_purp_desc", "loc_qti", "flow_ind",
	"dc", "opc", "tsq", "oac",
	"it", "auth_overrun_ind", "nom_cap_exceed_ind", "all_qty_avail",
	"qty_reason", "cycle",
}

// ensureTableSQL mirrors migration 001 so a loader pointed at a database that
// was never migrated still finds its relation.
const ensureTableSQL = `CREATE TABLE IF NOT EXISTS tec_data (
    id                 SERIAL PRIMARY KEY,
    loc                VARCHAR(255),
    loc_zn             VARCHAR(255),
    loc_name           VARCHAR(255),
    loc_purp_desc      VARCHAR(255),
    loc_qti            VARCHAR(255),
    flow_ind           VARCHAR(10),
    dc                 INTEGER,
    opc                INTEGER,
    tsq                INTEGER,
    oac                INTEGER,
    it                 BOOLEAN,
    auth_overrun_ind   BOOLEAN,
    nom_cap_exceed_ind BOOLEAN,
    all_qty_avail      BOOLEAN,
    qty_reason         VARCHAR(255),
    cycle              INTEGER
)`

const ensureIndexSQL = `CREATE INDEX IF NOT EXISTS idx_tec_data_cycle ON tec_data (cycle)`

// Store loads normalized tables into the tec_data relation
type Store struct {
	db        *sql.DB
	batchSize int
	logger    *zap.SugaredLogger
}

// New creates a store over an open database handle. batchSize <= 0 selects
// DefaultBatchSize.
func New(db *sql.DB, batchSize int, log *zap.SugaredLogger) *Store {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{db: db, batchSize: batchSize, logger: log}
}

// EnsureTable creates the target relation and its cycle index if they do not
// exist. Idempotent; safe to call before every load.
func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ensureTableSQL); err != nil {
		return errors.Wrap(err, "create tec_data table")
	}
	if _, err := s.db.ExecContext(ctx, ensureIndexSQL); err != nil {
		return errors.Wrap(err, "create tec_data cycle index")
	}
	return nil
}

// LoadFile reads one artifact from disk, re-runs the full schema coercion,
// stamps the cycle from the canonical filename, and inserts the rows. Returns
// the number of rows inserted and any data-quality warnings collected during
// normalization.
func (s *Store) LoadFile(ctx context.Context, path string) (int, []string, error) {
	identity, err := feed.ParseFilename(filepath.Base(path))
	if err != nil {
		return 0, nil, errors.Wrapf(err, "derive artifact identity from %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "open artifact %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Operator CSVs occasionally carry ragged rows; the normalizer pads short
	// records with nulls, so do not let the reader reject them first.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return 0, nil, errors.Wrapf(err, "parse artifact %s", path)
	}

	table, err := schema.Normalize(records, identity)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "normalize artifact %s", path)
	}

	inserted, err := s.LoadTable(ctx, table)
	if err != nil {
		return inserted, table.Warnings, err
	}

	s.logger.Infow("Artifact loaded",
		"symbol", sym.Load,
		"artifact", identity.String(),
		"rows", inserted,
		"warnings", len(table.Warnings),
	)
	return inserted, table.Warnings, nil
}

// LoadTable inserts a normalized table in source order, batchSize rows per
// transaction. On a batch failure the rows of earlier batches stay committed;
// the error reports how far the load got.
func (s *Store) LoadTable(ctx context.Context, t *schema.Table) (int, error) {
	inserted := 0
	for start := 0; start < len(t.Rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		if err := s.insertBatch(ctx, t.Rows[start:end]); err != nil {
			committed := fmt.Sprintf("rows 1-%d committed", inserted)
			if inserted == 0 {
				committed = "no rows committed"
			}
			return inserted, errors.Wrapf(err,
				"insert batch rows %d-%d of %s (%s)",
				start+1, end, t.Source, committed)
		}
		inserted += end - start
	}
	return inserted, nil
}

// insertBatch writes one multi-row INSERT inside its own transaction
func (s *Store) insertBatch(ctx context.Context, rows []schema.Row) error {
	query, args := buildInsert(rows)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "execute insert")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// buildInsert renders a multi-row INSERT with positional placeholders and the
// flattened argument list, in row order.
func buildInsert(rows []schema.Row) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("INSERT INTO tec_data (")
	b.WriteString(strings.Join(insertColumns, ", "))
	b.WriteString(") VALUES ")

	args := make([]interface{}, 0, len(rows)*len(insertColumns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := 0; j < len(insertColumns); j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*len(insertColumns)+j+1)
		}
		b.WriteByte(')')

		args = append(args,
			row.Loc, row.LocZn, row.LocName, row.LocPurpDesc, row.LocQTI, row.FlowInd,
			row.DC, row.OPC, row.TSQ, row.OAC,
			row.IT, row.AuthOverrunInd, row.NomCapExceedInd, row.AllQtyAvail,
			row.QtyReason, row.Cycle,
		)
	}

	return b.String(), args
}

// Stats summarizes the tec_data relation for the db stats command
type Stats struct {
	TotalRows int
	PerCycle  map[int]int
}

// CycleCodes returns the distinct cycle codes present, ascending
func (st Stats) CycleCodes() []int {
	codes := make([]int, 0, len(st.PerCycle))
	for code := range st.PerCycle {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// ReadStats counts the loaded rows overall and per cycle
func (s *Store) ReadStats(ctx context.Context) (Stats, error) {
	st := Stats{PerCycle: map[int]int{}}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tec_data").Scan(&st.TotalRows); err != nil {
		return st, errors.Wrap(err, "count tec_data rows")
	}

	rows, err := s.db.QueryContext(ctx, "SELECT cycle, COUNT(*) FROM tec_data GROUP BY cycle ORDER BY cycle")
	if err != nil {
		return st, errors.Wrap(err, "count tec_data rows per cycle")
	}
	defer rows.Close()

	for rows.Next() {
		var code, count int
		if err := rows.Scan(&code, &count); err != nil {
			return st, errors.Wrap(err, "scan per-cycle count")
		}
		st.PerCycle[code] = count
	}
	return st, errors.Wrap(rows.Err(), "iterate per-cycle counts")
}
