package legacy

import (
	"encoding/json"
	"io"

	"github.com/gmggroup/omf-go/internal/omferr"
)

// legendValues is the decoded payload of one mapped-data legend, exactly
// one field populated depending on the legend's stored array kind
// (original_source's category_handler::Legend / Data enum).
type legendValues struct {
	Name    string
	Strings []string
	Colors  [][4]uint8
	Numbers []*float64
}

// decodeLegend reads one legend record and its backing array, branching on
// the array's declared dtype the way original_source's LegendArrayModel
// enum branches on the record's own class.
func decodeLegend(source io.ReaderAt, leg legacyLegend) (legendValues, error) {
	switch leg.Values.DType {
	case "String":
		raw, err := decompressArray(source, leg.Values)
		if err != nil {
			return legendValues{}, err
		}
		var strs []string
		if err := json.Unmarshal(raw, &strs); err != nil {
			return legendValues{}, omferr.Wrap(omferr.DeserializationFailed, err)
		}
		return legendValues{Name: leg.Name, Strings: strs}, nil
	case "Color":
		raw, err := decompressArray(source, leg.Values)
		if err != nil {
			return legendValues{}, err
		}
		colors, err := readColorArray(raw)
		if err != nil {
			return legendValues{}, err
		}
		return legendValues{Name: leg.Name, Colors: colors}, nil
	default:
		raw, err := decompressArray(source, leg.Values)
		if err != nil {
			return legendValues{}, err
		}
		nums, err := readFloat64Array(raw)
		if err != nil {
			return legendValues{}, err
		}
		return legendValues{Name: leg.Name, Numbers: nums}, nil
	}
}

// namesScore ranks a legend's fitness as the category-names legend: the
// count of unique, non-empty strings, then total string length, both
// maximized (original_source's names_score, used as a (usize, usize) max
// key — longer combined text wins a tie, it is not preferred for
// "shortness").
func namesScore(v legendValues) (uniqueNonEmpty int, totalLen int) {
	seen := make(map[string]bool, len(v.Strings))
	for _, s := range v.Strings {
		totalLen += len(s)
		if s == "" {
			continue
		}
		if !seen[s] {
			seen[s] = true
			uniqueNonEmpty++
		}
	}
	return uniqueNonEmpty, totalLen
}

// gradientScore ranks a legend's fitness as the color gradient legend: the
// count of distinct colors (original_source's gradient_score).
func gradientScore(v legendValues) int {
	seen := make(map[[4]uint8]bool, len(v.Colors))
	for _, c := range v.Colors {
		seen[c] = true
	}
	return len(seen)
}

// selectedLegends is the outcome of ranking a mapped-data record's legend
// list: at most one names legend, at most one gradient legend, and every
// other legend demoted to a Category sub-attribute.
type selectedLegends struct {
	Names    *legendValues
	Gradient *legendValues
	Others   []legendValues
}

// rankLegends mirrors original_source's CategoryHandler::process: among the
// string-backed legends, the highest (unique_non_empty, total_len) tuple
// becomes Names; among the color-backed legends, the highest distinct-color
// count becomes Gradient. Ties are broken by declaration order, keeping the
// first maximal legend (SPEC_FULL's documented tie-break), which is the one
// respect in which this intentionally diverges from Rust's Iterator::max
// (which keeps the last).
func rankLegends(legends []legendValues) selectedLegends {
	var sel selectedLegends
	bestNamesScore := [2]int{-1, -1}
	bestGradientScore := -1
	namesIdx, gradientIdx := -1, -1

	for i, v := range legends {
		switch {
		case v.Strings != nil:
			unique, total := namesScore(v)
			if unique > bestNamesScore[0] || (unique == bestNamesScore[0] && total > bestNamesScore[1]) {
				bestNamesScore = [2]int{unique, total}
				namesIdx = i
			}
		case v.Colors != nil:
			score := gradientScore(v)
			if score > bestGradientScore {
				bestGradientScore = score
				gradientIdx = i
			}
		}
	}

	for i, v := range legends {
		switch i {
		case namesIdx:
			vv := v
			sel.Names = &vv
		case gradientIdx:
			vv := v
			sel.Gradient = &vv
		default:
			sel.Others = append(sel.Others, v)
		}
	}
	return sel
}

// padStrings, padColors and padNumbers extend or truncate a legend to
// length n, padding with a
// type-appropriate default: empty string, medium grey, or nil
// (original_source's iter_to_len pad helper).
func padStrings(vals []string, n int) []string {
	out := make([]string, n)
	copy(out, vals)
	return out
}

func padColors(vals [][4]uint8, n int) [][4]uint8 {
	out := make([][4]uint8, n)
	for i := range out {
		out[i] = [4]uint8{128, 128, 128, 255}
	}
	copy(out, vals)
	return out
}

func padNumbers(vals []*float64, n int) []*float64 {
	out := make([]*float64, n)
	copy(out, vals)
	return out
}
