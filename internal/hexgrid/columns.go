package hexgrid

import "sort"

// OrganizeBySide groups columns by region, keeping only the requested
// side. SideCombined keeps every column; merging the two sides afterwards
// is Merge's job.
func OrganizeBySide(columns []ColumnData, side Side) map[Region][]ColumnData {
	out := make(map[Region][]ColumnData)
	for _, col := range columns {
		if side != SideCombined && col.Side != side {
			continue
		}
		out[col.Region] = append(out[col.Region], col)
	}
	return out
}

// FilterByRegion returns the columns belonging to one region.
func FilterByRegion(columns []ColumnData, region Region) []ColumnData {
	out := make([]ColumnData, 0, len(columns))
	for _, col := range columns {
		if col.Region == region {
			out = append(out, col)
		}
	}
	return out
}

// Merge combines two organized column sets. Disjoint coordinates pass
// through unchanged; colliding coordinates resolve by strategy: priority
// keeps the first set's column, sum adds counts, average averages them.
// Merged columns are marked SideCombined.
func Merge(a, b map[Region][]ColumnData, strategy MergeStrategy) map[Region][]ColumnData {
	out := make(map[Region][]ColumnData, len(a)+len(b))

	regions := make(map[Region]struct{}, len(a)+len(b))
	for r := range a {
		regions[r] = struct{}{}
	}
	for r := range b {
		regions[r] = struct{}{}
	}

	for region := range regions {
		byCoord := make(map[CoordKey]ColumnData)
		order := make([]CoordKey, 0, len(a[region])+len(b[region]))

		for _, col := range a[region] {
			key := col.Coordinate.Key()
			if _, ok := byCoord[key]; !ok {
				order = append(order, key)
			}
			byCoord[key] = col
		}
		for _, col := range b[region] {
			key := col.Coordinate.Key()
			existing, ok := byCoord[key]
			if !ok {
				order = append(order, key)
				byCoord[key] = col
				continue
			}
			byCoord[key] = mergeColumns(existing, col, strategy)
		}

		merged := make([]ColumnData, 0, len(order))
		for _, key := range order {
			merged = append(merged, byCoord[key])
		}
		sort.Slice(merged, func(i, j int) bool {
			ci, cj := merged[i].Coordinate, merged[j].Coordinate
			if ci.Hex1Dec != cj.Hex1Dec {
				return ci.Hex1Dec < cj.Hex1Dec
			}
			return ci.Hex2Dec < cj.Hex2Dec
		})
		out[region] = merged
	}

	return out
}

func mergeColumns(a, b ColumnData, strategy MergeStrategy) ColumnData {
	if strategy == MergePriority {
		return a
	}

	merged := a
	merged.Side = SideCombined
	merged.Layers = append([]LayerData(nil), a.Layers...)

	switch strategy {
	case MergeSum:
		merged.NeuronCount = a.NeuronCount + b.NeuronCount
		merged.TotalPre = a.TotalPre + b.TotalPre
		merged.TotalPost = a.TotalPost + b.TotalPost
		for i := range merged.Layers {
			if i < len(b.Layers) {
				merged.Layers[i].SynapseCount += b.Layers[i].SynapseCount
				merged.Layers[i].NeuronCount += b.Layers[i].NeuronCount
			}
		}
	case MergeAverage:
		merged.NeuronCount = (a.NeuronCount + b.NeuronCount) / 2
		merged.TotalPre = (a.TotalPre + b.TotalPre) / 2
		merged.TotalPost = (a.TotalPost + b.TotalPost) / 2
		for i := range merged.Layers {
			if i < len(b.Layers) {
				merged.Layers[i].SynapseCount = (merged.Layers[i].SynapseCount + b.Layers[i].SynapseCount) / 2
				merged.Layers[i].NeuronCount = (merged.Layers[i].NeuronCount + b.Layers[i].NeuronCount) / 2
			}
		}
	}

	return merged
}

// ValidateConsistency checks a merged set: every column must sit in the
// region it is keyed under with that region's layer count, and no
// coordinate may appear twice within a region.
func ValidateConsistency(merged map[Region][]ColumnData) ValidationResult {
	var res ValidationResult
	for region, cols := range merged {
		seen := make(map[CoordKey]struct{}, len(cols))
		want := LayerCounts[region]
		for _, col := range cols {
			if col.Region != region {
				res.addError("column %s keyed under %s but records region %s",
					col.Coordinate, region, col.Region)
			}
			if len(col.Layers) != want {
				res.addError("column %s in %s has %d layers, expected %d",
					col.Coordinate, region, len(col.Layers), want)
			}
			key := col.Coordinate.Key()
			if _, dup := seen[key]; dup {
				res.addError("coordinate %s appears twice in %s after merge",
					col.Coordinate, region)
			}
			seen[key] = struct{}{}
		}
	}
	return res
}
