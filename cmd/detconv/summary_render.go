package main

import (
	"sort"
	"strconv"

	"detconv/internal/coco"
)

// reportRows lists kept records first, then each drop reason by name.
func reportRows(report coco.Report) [][]string {
	rows := [][]string{
		{"total", strconv.Itoa(report.Total)},
		{"kept", strconv.Itoa(report.Kept)},
	}
	for _, reason := range report.Reasons() {
		rows = append(rows, []string{"dropped: " + string(reason), strconv.Itoa(report.Dropped[reason])})
	}
	return rows
}

func perCategoryRows(report coco.Report) [][]string {
	ids := make([]int64, 0, len(report.PerCategory))
	for id := range report.PerCategory {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{strconv.FormatInt(id, 10), strconv.Itoa(report.PerCategory[id])})
	}
	return rows
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
