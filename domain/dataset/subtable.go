package dataset

// Subtable selects the variable column plus the given axes and drops every
// row with a missing value in any of them (complete-case filtering). The
// result may be empty.
func (d *Dataset) Subtable(variable string, axes ...string) (*Dataset, error) {
	names := make([]string, 0, len(axes)+1)
	seen := make(map[string]bool, len(axes)+1)
	for _, name := range append([]string{variable}, axes...) {
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	selected := make([]Column, len(names))
	for i, name := range names {
		col, err := d.column(name)
		if err != nil {
			return nil, err
		}
		selected[i] = *col
	}

	keep := make([]int, 0, d.rows)
	for r := 0; r < d.rows; r++ {
		complete := true
		for _, col := range selected {
			if col.Values[r].IsMissing() {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, r)
		}
	}
	return d.take(selected, keep), nil
}
