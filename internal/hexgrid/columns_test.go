package hexgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sidedColumn(hex1, hex2 string, side Side, pre, post, neurons int) ColumnData {
	col := meColumn(hex1, hex2, pre, post, neurons)
	col.Side = side
	return col
}

func TestOrganizeBySide(t *testing.T) {
	columns := []ColumnData{
		sidedColumn("1", "1", SideLeft, 1, 1, 1),
		sidedColumn("1", "2", SideRight, 2, 2, 2),
		sidedColumn("2", "1", SideLeft, 3, 3, 3),
	}

	left := OrganizeBySide(columns, SideLeft)
	require.Len(t, left[RegionME], 2)

	right := OrganizeBySide(columns, SideRight)
	require.Len(t, right[RegionME], 1)

	combined := OrganizeBySide(columns, SideCombined)
	require.Len(t, combined[RegionME], 3)
}

func TestFilterByRegion(t *testing.T) {
	lo := sidedColumn("1", "1", SideLeft, 1, 1, 1)
	lo.Region = RegionLO
	columns := []ColumnData{meColumn("1", "1", 1, 1, 1), lo}

	assert.Len(t, FilterByRegion(columns, RegionME), 1)
	assert.Len(t, FilterByRegion(columns, RegionLO), 1)
	assert.Empty(t, FilterByRegion(columns, RegionLOP))
}

func TestMergeDisjointKeepsValues(t *testing.T) {
	a := map[Region][]ColumnData{RegionME: {sidedColumn("1", "1", SideLeft, 10, 5, 2)}}
	b := map[Region][]ColumnData{RegionME: {sidedColumn("2", "2", SideRight, 6, 4, 1)}}

	for _, strategy := range []MergeStrategy{MergePriority, MergeSum, MergeAverage} {
		merged := Merge(a, b, strategy)
		require.Len(t, merged[RegionME], 2, "strategy %s", strategy)

		byKey := make(map[CoordKey]ColumnData)
		for _, col := range merged[RegionME] {
			byKey[col.Coordinate.Key()] = col
		}
		assert.Equal(t, 10, byKey[CoordKey{1, 1}].TotalPre)
		assert.Equal(t, 6, byKey[CoordKey{2, 2}].TotalPre)
	}
}

func TestMergeSumAddsCollisions(t *testing.T) {
	a := map[Region][]ColumnData{RegionME: {sidedColumn("1", "1", SideLeft, 10, 5, 2)}}
	b := map[Region][]ColumnData{RegionME: {sidedColumn("1", "1", SideRight, 3, 2, 1)}}

	merged := Merge(a, b, MergeSum)
	require.Len(t, merged[RegionME], 1)

	col := merged[RegionME][0]
	assert.Equal(t, 13, col.TotalPre)
	assert.Equal(t, 7, col.TotalPost)
	assert.Equal(t, 3, col.NeuronCount)
	assert.Equal(t, SideCombined, col.Side)
}

func TestMergePriorityKeepsFirst(t *testing.T) {
	a := map[Region][]ColumnData{RegionME: {sidedColumn("1", "1", SideLeft, 10, 5, 2)}}
	b := map[Region][]ColumnData{RegionME: {sidedColumn("1", "1", SideRight, 3, 2, 1)}}

	merged := Merge(a, b, MergePriority)
	require.Len(t, merged[RegionME], 1)
	assert.Equal(t, 10, merged[RegionME][0].TotalPre)
	assert.Equal(t, SideLeft, merged[RegionME][0].Side)
}

func TestMergeAverageAveragesCollisions(t *testing.T) {
	a := map[Region][]ColumnData{RegionME: {sidedColumn("1", "1", SideLeft, 10, 6, 4)}}
	b := map[Region][]ColumnData{RegionME: {sidedColumn("1", "1", SideRight, 4, 2, 2)}}

	merged := Merge(a, b, MergeAverage)
	require.Len(t, merged[RegionME], 1)
	assert.Equal(t, 7, merged[RegionME][0].TotalPre)
	assert.Equal(t, 4, merged[RegionME][0].TotalPost)
	assert.Equal(t, 3, merged[RegionME][0].NeuronCount)
}

func TestValidateConsistency(t *testing.T) {
	good := map[Region][]ColumnData{RegionME: {meColumn("1", "1", 1, 1, 1)}}
	assert.True(t, ValidateConsistency(good).IsValid())

	// Region mismatch between map key and record.
	bad := map[Region][]ColumnData{RegionLO: {meColumn("1", "1", 1, 1, 1)}}
	res := ValidateConsistency(bad)
	assert.False(t, res.IsValid())

	// Duplicate coordinate after merge.
	dup := map[Region][]ColumnData{RegionME: {meColumn("1", "1", 1, 1, 1), meColumn("1", "1", 2, 2, 2)}}
	assert.False(t, ValidateConsistency(dup).IsValid())
}
