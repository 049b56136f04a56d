package google

import (
	"fmt"
	"strings"
)

// reportHeader is the column layout written by reportRow.
var reportHeader = []string{
	"Generated", "User", "Total debt", "Total paid", "Monthly payments", "Debts",
	"Income", "Expenses", "Available", "Health", "Extra pool", "Months to payoff", "Interest saved",
}

// lastColumn is the letter of the final report column.
var lastColumn = string(rune('A' + len(reportHeader) - 1))

// checkHeader reports whether the first row is empty. A non-empty row must
// start with the report columns in order; extra trailing cells are ignored.
func checkHeader(row []any) (bool, error) {
	got := toStrings(row)
	if strings.Join(got, "") == "" {
		return true, nil
	}
	var missing []string
	for i, want := range reportHeader {
		if indexOf(got, want) != i {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return false, fmt.Errorf("unexpected report header: missing %s; got headers=%v", strings.Join(missing, ","), got)
	}
	return false, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}
