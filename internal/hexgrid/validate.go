package hexgrid

import (
	"fmt"
	"strconv"
)

// Row is the boundary input shape: one raw record as delivered by the
// query layer, before validation produces typed ColumnData.
type Row struct {
	Region      string     `json:"region"`
	Side        string     `json:"side"`
	Hex1        string     `json:"hex1"`
	Hex2        string     `json:"hex2"`
	Pre         int        `json:"pre"`
	Post        int        `json:"post"`
	NeuronCount int        `json:"neuron_count"`
	Layers      []RowLayer `json:"layers"`
}

// RowLayer is the raw per-layer record inside a Row.
type RowLayer struct {
	LayerIndex   int `json:"layer_index"`
	SynapseCount int `json:"synapse_count"`
	NeuronCount  int `json:"neuron_count"`
}

// Validator checks structural and semantic correctness of ingested rows.
// In strict mode the first error aborts; in lenient mode errors accumulate
// and only the valid rows survive.
type Validator struct {
	Strict bool
}

// ValidateColumns checks all rows and converts the valid ones into typed
// ColumnData. The returned result carries every problem found; in strict
// mode the first error is also returned as an error.
func (v Validator) ValidateColumns(rows []Row) ([]ColumnData, ValidationResult, error) {
	var res ValidationResult
	columns := make([]ColumnData, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		col, err := v.validateRow(i, row)
		if err != nil {
			if v.Strict {
				return nil, res, err
			}
			res.addError("%v", err)
			continue
		}

		dupKey := string(col.Region) + "|" + string(col.Side) + "|" +
			strconv.Itoa(col.Coordinate.Hex1Dec) + "," + strconv.Itoa(col.Coordinate.Hex2Dec)
		if _, dup := seen[dupKey]; dup {
			err := fmt.Errorf("row %d: duplicate coordinate %s in %s/%s",
				i, col.Coordinate, col.Region, col.Side)
			if v.Strict {
				return nil, res, err
			}
			res.addError("%v", err)
			continue
		}
		seen[dupKey] = struct{}{}

		columns = append(columns, col)
	}

	return columns, res, nil
}

func (v Validator) validateRow(i int, row Row) (ColumnData, error) {
	if row.Hex1 == "" || row.Hex2 == "" {
		return ColumnData{}, fmt.Errorf("row %d: missing hex address", i)
	}

	region, err := ParseRegion(row.Region)
	if err != nil {
		return ColumnData{}, fmt.Errorf("row %d: %w", i, err)
	}

	side, err := ParseSide(row.Side)
	if err != nil {
		return ColumnData{}, fmt.Errorf("row %d: %w", i, err)
	}
	if side == SideCombined {
		return ColumnData{}, fmt.Errorf("row %d: side must be L or R on a column record", i)
	}

	coord, err := NewColumnCoordinate(row.Hex1, row.Hex2)
	if err != nil {
		return ColumnData{}, fmt.Errorf("row %d: %w", i, err)
	}

	want := LayerCounts[region]
	if len(row.Layers) != want {
		return ColumnData{}, fmt.Errorf("row %d: region %s expects %d layers, got %d",
			i, region, want, len(row.Layers))
	}

	if row.NeuronCount < 0 || row.Pre < 0 || row.Post < 0 {
		return ColumnData{}, fmt.Errorf("row %d: negative counts", i)
	}

	layers := make([]LayerData, len(row.Layers))
	for j, l := range row.Layers {
		if l.SynapseCount < 0 || l.NeuronCount < 0 {
			return ColumnData{}, fmt.Errorf("row %d: layer %d has negative counts", i, l.LayerIndex)
		}
		idx := l.LayerIndex
		if idx == 0 {
			idx = j + 1
		}
		layers[j] = LayerData{
			LayerIndex:   idx,
			SynapseCount: l.SynapseCount,
			NeuronCount:  l.NeuronCount,
		}
	}

	return ColumnData{
		Coordinate:  coord,
		Region:      region,
		Side:        side,
		Layers:      layers,
		NeuronCount: row.NeuronCount,
		TotalPre:    row.Pre,
		TotalPost:   row.Post,
	}, nil
}

// ValidateConfig checks a ProcessingConfig before a pipeline run.
func (v Validator) ValidateConfig(cfg ProcessingConfig) ValidationResult {
	var res ValidationResult

	if _, err := ParseMetric(string(cfg.Metric)); err != nil {
		res.addError("%v", err)
	}
	if _, err := ParseSide(string(cfg.Side)); err != nil {
		res.addError("%v", err)
	}
	if _, err := ParseThresholdMethod(string(cfg.ThresholdMethod)); err != nil {
		res.addError("%v", err)
	}
	switch cfg.MergeStrategy {
	case MergePriority, MergeSum, MergeAverage:
	case "":
		// Merge strategy is only exercised for combined views; requiring it
		// there keeps intent explicit instead of inferring a default.
		if cfg.Side == SideCombined {
			res.addError("merge_strategy is required for combined side views")
		}
	default:
		res.addError("unknown merge strategy: %q", cfg.MergeStrategy)
	}
	if cfg.Buckets < 1 {
		res.addWarning("bucket count %d below 1, using default", cfg.Buckets)
	}

	return res
}
