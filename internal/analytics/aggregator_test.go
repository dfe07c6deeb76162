package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterOf(t *testing.T) {
	want := []int{0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3}
	for month := 1; month <= 12; month++ {
		assert.Equal(t, want[month-1], QuarterOf(month), "month %d", month)
	}
	assert.Equal(t, -1, QuarterOf(0))
	assert.Equal(t, -1, QuarterOf(13))
}

func TestBucketQuarters(t *testing.T) {
	monthly := []MonthlyHires{
		{Department: "Support", Job: "Engineer", Month: 12, Hires: 1},
		{Department: "Accounting", Job: "Tax Accountant", Month: 1, Hires: 2},
		{Department: "Accounting", Job: "Tax Accountant", Month: 3, Hires: 1},
		{Department: "Accounting", Job: "Tax Accountant", Month: 7, Hires: 4},
		{Department: "Accounting", Job: "Auditor", Month: 5, Hires: 1},
		{Department: "Support", Job: "Engineer", Month: 10, Hires: 2},
		{Department: "Support", Job: "Engineer", Month: 0, Hires: 9},
	}

	got := BucketQuarters(monthly)
	assert.Equal(t, []QuarterlyHires{
		{Department: "Accounting", Job: "Auditor", Q2: 1},
		{Department: "Accounting", Job: "Tax Accountant", Q1: 3, Q3: 4},
		{Department: "Support", Job: "Engineer", Q4: 3},
	}, got)
}

func TestBucketQuartersSumsMatchInput(t *testing.T) {
	var monthly []MonthlyHires
	var total uint64
	for month := 1; month <= 12; month++ {
		monthly = append(monthly, MonthlyHires{Department: "Sales", Job: "Rep", Month: month, Hires: uint64(month)})
		total += uint64(month)
	}
	got := BucketQuarters(monthly)
	require.Len(t, got, 1)
	assert.Equal(t, total, got[0].Total())
	assert.Equal(t, uint64(1+2+3), got[0].Q1)
	assert.Equal(t, uint64(10+11+12), got[0].Q4)
}

func TestBucketQuartersOrdersByteWise(t *testing.T) {
	got := BucketQuarters([]MonthlyHires{
		{Department: "b", Job: "x", Month: 1, Hires: 1},
		{Department: "B", Job: "x", Month: 1, Hires: 1},
		{Department: "a", Job: "y", Month: 1, Hires: 1},
		{Department: "a", Job: "X", Month: 1, Hires: 1},
	})
	var keys []string
	for _, r := range got {
		keys = append(keys, r.Department+"/"+r.Job)
	}
	assert.Equal(t, []string{"B/x", "a/X", "a/y", "b/x"}, keys)
}

func TestBucketQuartersEmpty(t *testing.T) {
	got := BucketQuarters(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAboveMeanStrict(t *testing.T) {
	got := AboveMean([]DepartmentHires{
		{ID: 1, Department: "Ten", Hired: 10},
		{ID: 2, Department: "Twenty", Hired: 20},
		{ID: 3, Department: "Thirty", Hired: 30},
	})
	assert.Equal(t, []DepartmentHires{{ID: 3, Department: "Thirty", Hired: 30}}, got)
}

func TestAboveMeanOrdering(t *testing.T) {
	got := AboveMean([]DepartmentHires{
		{ID: 1, Department: "Support", Hired: 50},
		{ID: 2, Department: "Legal", Hired: 1},
		{ID: 3, Department: "Engineering", Hired: 50},
		{ID: 4, Department: "Sales", Hired: 70},
		{ID: 5, Department: "Training", Hired: 2},
	})
	require.Len(t, got, 3)
	assert.Equal(t, "Sales", got[0].Department)
	assert.Equal(t, "Engineering", got[1].Department)
	assert.Equal(t, "Support", got[2].Department)
}

func TestAboveMeanFractionalMean(t *testing.T) {
	// mean is 5/3
	got := AboveMean([]DepartmentHires{
		{Department: "a", Hired: 1},
		{Department: "b", Hired: 2},
		{Department: "c", Hired: 2},
	})
	assert.Len(t, got, 2)
}

func TestAboveMeanEqualCountsAndEmpty(t *testing.T) {
	assert.Empty(t, AboveMean([]DepartmentHires{{Department: "a", Hired: 4}, {Department: "b", Hired: 4}}))
	assert.Empty(t, AboveMean([]DepartmentHires{{Department: "only", Hired: 9}}))

	got := AboveMean(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
