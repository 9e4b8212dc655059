package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Loc", "loc"},
		{"Loc Zn", "loc_zn"},
		{"Loc Name", "loc_name"},
		{"Loc Purp Desc", "loc_purp_desc"},
		{"Loc/QTI", "loc_qti"},
		{"Flow Ind", "flow_ind"},
		{"DC", "dc"},
		{"Auth Overrun Ind", "auth_overrun_ind"},
		{"Nom Cap Exceed Ind", "nom_cap_exceed_ind"},
		{"All Qty Avail", "all_qty_avail"},
		{"Qty Reason", "qty_reason"},
		{"  IT  ", "it"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.raw), "raw header %q", tt.raw)
	}
}

func TestNormalizeHeaderIdempotent(t *testing.T) {
	for _, col := range TargetColumns {
		assert.Equal(t, col.Name, NormalizeHeader(col.Name),
			"normalizing an already-normalized name must be a no-op")
	}
}

func TestTargetSchemaShape(t *testing.T) {
	assert.Len(t, TargetColumns, 15)

	kinds := map[Kind]int{}
	for _, col := range TargetColumns {
		kinds[col.Kind]++
	}
	assert.Equal(t, 7, kinds[KindString])
	assert.Equal(t, 4, kinds[KindInt])
	assert.Equal(t, 4, kinds[KindBool])
}
