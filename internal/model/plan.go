package model

// reviewCounts is the review credit granted per purchasable plan.
var reviewCounts = map[string]int{
	"Starter Trial":  10,
	"Bronze Package": 25,
	"Silver Package": 50,
	"Gold Package":   100,
}

const DefaultReviewCount = 10

// ReviewCountForPlan returns the number of reviews a plan credits.
// Unknown plan names get DefaultReviewCount.
func ReviewCountForPlan(planName string) int {
	if n, ok := reviewCounts[planName]; ok {
		return n
	}
	return DefaultReviewCount
}
