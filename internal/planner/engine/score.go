package engine

import "github.com/rsned/geode-planner/pkg/planner"

// QualitySum returns the sum of blueprint id times yield.
func QualitySum(results []planner.BlueprintYield) int64 {
	var total int64
	for _, r := range results {
		total += int64(r.BlueprintID) * r.Yield
	}
	return total
}

// Product returns the product of all yields, or 0 for no results.
func Product(results []planner.BlueprintYield) int64 {
	if len(results) == 0 {
		return 0
	}
	product := int64(1)
	for _, r := range results {
		product *= r.Yield
	}
	return product
}
