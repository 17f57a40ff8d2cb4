package stats

import (
	"sort"

	"github.com/verte-zerg/deptsays/internal/model"
)

// TopDepartments returns the top n departments by corrects minus errors.
// Ties keep their input order.
func TopDepartments(depts []model.DepartmentRecord, n int) []model.DepartmentRecord {
	if n <= 0 || len(depts) == 0 {
		return nil
	}
	items := make([]model.DepartmentRecord, len(depts))
	copy(items, depts)
	sort.SliceStable(items, func(i, j int) bool {
		return net(items[i]) > net(items[j])
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// CompletedCount returns how many departments reached their meta.
func CompletedCount(depts []model.DepartmentRecord) int {
	count := 0
	for _, d := range depts {
		if d.Progress >= d.Meta {
			count++
		}
	}
	return count
}

func net(d model.DepartmentRecord) int {
	return d.Corrects - d.Errors
}
