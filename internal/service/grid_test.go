package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexgrid/server/internal/hexgrid"
	"github.com/hexgrid/server/pkg/colormap"
)

func meRow(hex1, hex2, side string, pre, post, neurons int) hexgrid.Row {
	layers := make([]hexgrid.RowLayer, hexgrid.LayerCounts[hexgrid.RegionME])
	for i := range layers {
		layers[i] = hexgrid.RowLayer{LayerIndex: i + 1, SynapseCount: pre, NeuronCount: 1}
	}
	return hexgrid.Row{
		Region: "ME", Side: side, Hex1: hex1, Hex2: hex2,
		Pre: pre, Post: post, NeuronCount: neurons, Layers: layers,
	}
}

func baseConfig() hexgrid.ProcessingConfig {
	return hexgrid.ProcessingConfig{
		Metric:          hexgrid.MetricSynapseDensity,
		Side:            hexgrid.SideLeft,
		ThresholdMethod: hexgrid.ThresholdEqual,
		Buckets:         2,
	}
}

func footprintOf(keys ...hexgrid.CoordKey) RegionColumnsMap {
	set := make(map[hexgrid.CoordKey]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return RegionColumnsMap{hexgrid.RegionME: set}
}

// Single valid column: value 7.5, has_data, equal thresholds collapse to
// the single midpoint.
func TestProcessSingleColumn(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	rows := []hexgrid.Row{meRow("1", "2", "L", 10, 5, 2)}

	result := svc.Process(rows, footprintOf(hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 2}), baseConfig())

	require.True(t, result.Success)
	require.Len(t, result.ProcessedColumns, 1)

	col := result.ProcessedColumns[0]
	assert.Equal(t, hexgrid.StatusHasData, col.Status)
	assert.Equal(t, 7.5, col.Value)

	require.Len(t, result.Grids, 1)
	assert.Equal(t, []float64{7.5}, result.Grids[0].Thresholds.Breakpoints)
	assert.Equal(t, 7.5, result.MinMax.MinPerRegion[hexgrid.RegionME])
}

// Empty input succeeds with an explicit warning instead of failing.
func TestProcessEmptyRows(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})

	result := svc.Process(nil, nil, baseConfig())

	assert.True(t, result.Success)
	assert.Empty(t, result.ProcessedColumns)
	assert.Contains(t, result.Warnings, "no data")
	assert.Empty(t, result.Errors)
}

// Zero-variance distribution: one all-encompassing bucket, no failure.
func TestProcessZeroVariance(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	rows := []hexgrid.Row{
		meRow("1", "1", "L", 3, 0, 1),
		meRow("1", "2", "L", 3, 0, 1),
		meRow("2", "1", "L", 3, 0, 1),
	}

	result := svc.Process(rows, nil, baseConfig())

	require.True(t, result.Success)
	require.Len(t, result.Grids, 1)
	assert.Empty(t, result.Grids[0].Thresholds.Breakpoints)
	assert.Equal(t, 1, result.Grids[0].Thresholds.Buckets())
}

func TestProcessStatusClassification(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	rows := []hexgrid.Row{meRow("1", "1", "L", 10, 5, 2)}

	// Footprint holds the data coordinate plus one empty coordinate; the
	// data row at (2,2) is absent from the footprint.
	footprint := footprintOf(
		hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 1},
		hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 2},
	)
	rows = append(rows, meRow("2", "2", "L", 4, 4, 1))

	result := svc.Process(rows, footprint, baseConfig())
	require.True(t, result.Success)

	statuses := make(map[hexgrid.CoordKey]hexgrid.ColumnStatus)
	for _, col := range result.ProcessedColumns {
		statuses[col.Coordinate] = col.Status
	}
	assert.Equal(t, hexgrid.StatusHasData, statuses[hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 1}])
	assert.Equal(t, hexgrid.StatusNoData, statuses[hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 2}])
	assert.Equal(t, hexgrid.StatusNotInRegion, statuses[hexgrid.CoordKey{Hex1Dec: 2, Hex2Dec: 2}])
}

func TestProcessStatusColors(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	rows := []hexgrid.Row{
		meRow("1", "1", "L", 10, 5, 2),
		meRow("1", "2", "L", 0, 0, 2), // value 0 with data
	}
	footprint := footprintOf(
		hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 1},
		hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 2},
		hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 3},
	)

	result := svc.Process(rows, footprint, baseConfig())
	require.True(t, result.Success)

	colors := make(map[hexgrid.CoordKey]hexgrid.ProcessedColumn)
	for _, col := range result.ProcessedColumns {
		colors[col.Coordinate] = col
	}

	// Zero-valued data column renders white.
	assert.Equal(t, colormap.ZeroValueHex, colors[hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 2}].Color)
	// Dataless footprint column is white with a visible border.
	noData := colors[hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 3}]
	assert.Equal(t, colormap.NoDataHex, noData.Color)
	assert.Equal(t, colormap.NoDataStrokeHex, noData.Stroke)
}

func TestProcessLenientKeepsValidRows(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	bad := meRow("zz", "1", "L", 1, 1, 1) // not hexadecimal
	rows := []hexgrid.Row{meRow("1", "1", "L", 10, 5, 2), bad}

	result := svc.Process(rows, nil, baseConfig())

	assert.True(t, result.Success)
	assert.Len(t, result.ProcessedColumns, 1)
	assert.NotEmpty(t, result.Warnings)
}

func TestProcessStrictFailsOnInvalidRow(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	cfg := baseConfig()
	cfg.ValidationStrict = true

	result := svc.Process([]hexgrid.Row{meRow("zz", "1", "L", 1, 1, 1)}, nil, cfg)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, result.ProcessedColumns)
}

func TestProcessAllInvalidInput(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})

	result := svc.Process([]hexgrid.Row{meRow("zz", "1", "L", 1, 1, 1)}, nil, baseConfig())

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestProcessCombinedSideMerges(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	rows := []hexgrid.Row{
		meRow("1", "1", "L", 10, 5, 2),
		meRow("1", "1", "R", 4, 1, 1),
	}

	cfg := baseConfig()
	cfg.Side = hexgrid.SideCombined
	cfg.MergeStrategy = hexgrid.MergeSum

	result := svc.Process(rows, nil, cfg)

	require.True(t, result.Success)
	require.Len(t, result.ProcessedColumns, 1)
	// (10+5+4+1) / (2+1) neurons
	assert.InDelta(t, 20.0/3.0, result.ProcessedColumns[0].Value, 1e-9)
}

func TestProcessCombinedRequiresMergeStrategy(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	cfg := baseConfig()
	cfg.Side = hexgrid.SideCombined

	result := svc.Process([]hexgrid.Row{meRow("1", "1", "L", 1, 1, 1)}, nil, cfg)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "merge_strategy")
}

func TestProcessMirrorsSides(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	footprint := footprintOf(
		hexgrid.CoordKey{Hex1Dec: 1, Hex2Dec: 1},
		hexgrid.CoordKey{Hex1Dec: 2, Hex2Dec: 1},
	)
	left := []hexgrid.Row{meRow("1", "1", "L", 10, 5, 2), meRow("2", "1", "L", 6, 2, 1)}
	right := []hexgrid.Row{meRow("1", "1", "R", 10, 5, 2), meRow("2", "1", "R", 6, 2, 1)}

	cfgL := baseConfig()
	cfgR := baseConfig()
	cfgR.Side = hexgrid.SideRight

	resL := svc.Process(left, footprint, cfgL)
	resR := svc.Process(right, footprint, cfgR)
	require.True(t, resL.Success)
	require.True(t, resR.Success)

	for i := range resL.ProcessedColumns {
		assert.Equal(t, -resL.ProcessedColumns[i].PixelX, resR.ProcessedColumns[i].PixelX)
		assert.Equal(t, resL.ProcessedColumns[i].PixelY, resR.ProcessedColumns[i].PixelY)
	}
}

func TestProcessTooltips(t *testing.T) {
	svc := NewGridService(GridServiceConfig{})
	rows := []hexgrid.Row{meRow("1", "2", "L", 10, 5, 2)}

	result := svc.Process(rows, nil, baseConfig())
	require.True(t, result.Success)

	col := result.ProcessedColumns[0]
	assert.Contains(t, col.Tooltip, "ME 1,2")
	assert.Contains(t, col.Tooltip, "7.5")
	require.Len(t, col.TooltipLayers, hexgrid.LayerCounts[hexgrid.RegionME])
	assert.Contains(t, col.TooltipLayers[0], "L1:")
	assert.Len(t, col.LayerColors, hexgrid.LayerCounts[hexgrid.RegionME])
}
