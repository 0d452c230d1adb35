// Package ingest adapts raw row records from the query layer into the
// typed shapes the hexgrid pipeline consumes. The adaptation happens once,
// at this boundary; nothing downstream inspects untyped data.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hexgrid/server/internal/hexgrid"
)

// Dataset is one neuron type's worth of column rows plus the full
// coordinate footprint per region. The footprint drives the three-state
// classification: a coordinate missing from it is not_in_region, one
// present without a data row is no_data.
type Dataset struct {
	NeuronType    string                                          `json:"neuron_type"`
	Rows          []hexgrid.Row                                   `json:"rows"`
	RegionColumns map[hexgrid.Region]map[hexgrid.CoordKey]struct{} `json:"-"`
}

// datasetFile is the on-disk JSON shape. region_columns holds decimal
// coordinate pairs.
type datasetFile struct {
	NeuronType    string               `json:"neuron_type"`
	Rows          []hexgrid.Row        `json:"rows"`
	RegionColumns map[string][][2]int  `json:"region_columns"`
}

// Load reads a dataset JSON file. A missing region_columns section is
// derived from the rows themselves.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a dataset from JSON bytes.
func Parse(data []byte) (*Dataset, error) {
	var file datasetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	ds := &Dataset{
		NeuronType: file.NeuronType,
		Rows:       file.Rows,
	}

	if len(file.RegionColumns) > 0 {
		ds.RegionColumns = make(map[hexgrid.Region]map[hexgrid.CoordKey]struct{}, len(file.RegionColumns))
		for name, pairs := range file.RegionColumns {
			region, err := hexgrid.ParseRegion(name)
			if err != nil {
				return nil, fmt.Errorf("region_columns: %w", err)
			}
			set := make(map[hexgrid.CoordKey]struct{}, len(pairs))
			for _, p := range pairs {
				set[hexgrid.CoordKey{Hex1Dec: p[0], Hex2Dec: p[1]}] = struct{}{}
			}
			ds.RegionColumns[region] = set
		}
	} else {
		ds.RegionColumns = BuildRegionColumnsMap(file.Rows)
	}

	return ds, nil
}

// BuildRegionColumnsMap derives the per-region coordinate footprint from a
// full row set: every coordinate seen anywhere in a region, either side.
func BuildRegionColumnsMap(rows []hexgrid.Row) map[hexgrid.Region]map[hexgrid.CoordKey]struct{} {
	out := make(map[hexgrid.Region]map[hexgrid.CoordKey]struct{})
	for _, row := range rows {
		region, err := hexgrid.ParseRegion(row.Region)
		if err != nil {
			continue
		}
		coord, err := hexgrid.NewColumnCoordinate(row.Hex1, row.Hex2)
		if err != nil {
			continue
		}
		set, ok := out[region]
		if !ok {
			set = make(map[hexgrid.CoordKey]struct{})
			out[region] = set
		}
		set[coord.Key()] = struct{}{}
	}
	return out
}
