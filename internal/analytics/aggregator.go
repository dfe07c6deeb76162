package analytics

import (
	"cmp"
	"slices"
)

// QuarterOf maps a calendar month (1..12) to its quarter index 0..3.
// Months outside that range yield -1.
func QuarterOf(month int) int {
	if month < 1 || month > 12 {
		return -1
	}
	return (month - 1) / 3
}

// BucketQuarters folds monthly counts into one row per (department, job)
// ordered by department then job. Rows with an invalid month are ignored.
func BucketQuarters(monthly []MonthlyHires) []QuarterlyHires {
	type key struct{ department, job string }
	index := make(map[key]int)
	out := make([]QuarterlyHires, 0)

	for _, m := range monthly {
		q := QuarterOf(m.Month)
		if q < 0 {
			continue
		}
		k := key{m.Department, m.Job}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, QuarterlyHires{Department: m.Department, Job: m.Job})
		}
		row := &out[i]
		switch q {
		case 0:
			row.Q1 += m.Hires
		case 1:
			row.Q2 += m.Hires
		case 2:
			row.Q3 += m.Hires
		case 3:
			row.Q4 += m.Hires
		}
	}

	slices.SortFunc(out, func(a, b QuarterlyHires) int {
		if c := cmp.Compare(a.Department, b.Department); c != 0 {
			return c
		}
		return cmp.Compare(a.Job, b.Job)
	})
	return out
}

// AboveMean keeps the departments whose count is strictly greater than the
// mean count of counts, ordered by count descending and then by name.
// The comparison is done in integers: hired*n > sum.
func AboveMean(counts []DepartmentHires) []DepartmentHires {
	out := make([]DepartmentHires, 0)
	if len(counts) == 0 {
		return out
	}

	var sum uint64
	for _, c := range counts {
		sum += c.Hired
	}
	n := uint64(len(counts))
	for _, c := range counts {
		if c.Hired*n > sum {
			out = append(out, c)
		}
	}

	slices.SortFunc(out, func(a, b DepartmentHires) int {
		if c := cmp.Compare(b.Hired, a.Hired); c != 0 {
			return c
		}
		return cmp.Compare(a.Department, b.Department)
	})
	return out
}
