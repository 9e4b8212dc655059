// Package schema enforces the target schema for capacity-nomination
// artifacts: column presence, per-column type coercion, and the boolean/
// integer encodings of the operator's CSV. It produces typed rows ready for
// the persistence loader, or an artifact-level rejection.
package schema

import "strings"

// Kind is the semantic type of a target column
type Kind int

const (
	KindString Kind = iota
	KindInt         // nullable integer
	KindBool        // nullable boolean, encoded Y/N/empty in the source
)

// Column describes one column of the target schema
type Column struct {
	Name string
	Kind Kind
}

// TargetColumns is the fixed ordered target schema. The raw artifact must
// provide at least these 15 columns (after header normalization); the derived
// cycle column is stamped from the artifact identity, never read from rows.
var TargetColumns = []Column{
	{Name: "loc", Kind: KindString},
	{Name: "loc_zn", Kind: KindString},
	{Name: "loc_name", Kind: KindString},
	{Name: "loc_purp_desc", Kind: KindString},
	{Name: "loc_qti", Kind: KindString},
	{Name: "flow_ind", Kind: KindString},
	{Name: "dc", Kind: KindInt},
	{Name: "opc", Kind: KindInt},
	{Name: "tsq", Kind: KindInt},
	{Name: "oac", Kind: KindInt},
	{Name: "it", Kind: KindBool},
	{Name: "auth_overrun_ind", Kind: KindBool},
	{Name: "nom_cap_exceed_ind", Kind: KindBool},
	{Name: "all_qty_avail", Kind: KindBool},
	{Name: "qty_reason", Kind: KindString},
}

// irregularHeaders maps raw headers whose normalized form would not match the
// target name under the general rule. The general rule already turns "Loc/QTI"
// into "loc_qti"; the explicit entry documents the one irregular mapping the
// schema depends on and keeps it stable if the general rule ever changes.
var irregularHeaders = map[string]string{
	"loc/qti": "loc_qti",
}

// NormalizeHeader maps a raw CSV header to its target column name:
// lowercased, spaces and slashes turned into underscores. Idempotent:
// normalizing an already-normalized name is a no-op.
func NormalizeHeader(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := irregularHeaders[name]; ok {
		return mapped
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	return name
}
