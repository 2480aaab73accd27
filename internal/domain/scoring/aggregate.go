// Package scoring turns raw evaluator feedback into weighted scores,
// distributions and trends. It consumes evaluation records but never
// mutates them, so callers can aggregate over cached copies freely.
package scoring

import (
	"time"

	"perf360/internal/domain/evaluation"
)

// Distribution band labels, from best to worst.
const (
	BandExcellent        = "excellent"
	BandGood             = "good"
	BandFair             = "fair"
	BandNeedsImprovement = "needs_improvement"
)

// CategoryScore is the average rating for one rubric category across all
// completed evaluators. Average is 0 when no completed evaluator rated the
// category, which callers must read as "no data" rather than a real score.
type CategoryScore struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Weight     int     `json:"weight"`
	Average    float64 `json:"average"`
	Responses  int     `json:"responses"`
}

// RatingPoint is one submitted rating with the time its evaluator completed.
type RatingPoint struct {
	Rating      int       `json:"rating"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// TrendPoint is the average rating for one calendar month.
type TrendPoint struct {
	Month   string  `json:"month"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// CategoryScores averages ratings per category over completed evaluators
// only. Pending evaluators contribute nothing even if they hold partial
// feedback.
func CategoryScores(eval *evaluation.Evaluation) []CategoryScore {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, evaluator := range eval.Evaluators {
		if evaluator.Status != evaluation.EvaluatorStatusCompleted {
			continue
		}
		for _, response := range evaluator.Feedback {
			sums[response.CategoryID] += float64(response.Rating)
			counts[response.CategoryID]++
		}
	}

	scores := make([]CategoryScore, 0, len(eval.Categories))
	for _, category := range eval.Categories {
		score := CategoryScore{
			CategoryID: category.ID,
			Name:       category.Name,
			Weight:     category.Weight,
			Responses:  counts[category.ID],
		}
		if score.Responses > 0 {
			score.Average = sums[category.ID] / float64(score.Responses)
		}
		scores = append(scores, score)
	}
	return scores
}

// OverallScore is the weighted rollup sum(average * weight / 100) over all
// categories. Weights sum to 100, so with full data this is a weighted mean
// in [1,5]. An unrated category contributes its zero average and pulls the
// overall score down. Returns 0 when nothing has been rated.
func OverallScore(scores []CategoryScore) float64 {
	overall := 0.0
	for _, score := range scores {
		overall += score.Average * float64(score.Weight) / 100
	}
	return overall
}

// CollectRatings flattens every rating submitted by completed evaluators
// across the given evaluations, stamped with the evaluator's completion
// time.
func CollectRatings(evals []evaluation.Evaluation) []RatingPoint {
	var points []RatingPoint
	for i := range evals {
		for _, evaluator := range evals[i].Evaluators {
			if evaluator.Status != evaluation.EvaluatorStatusCompleted || evaluator.CompletedAt == nil {
				continue
			}
			for _, response := range evaluator.Feedback {
				points = append(points, RatingPoint{
					Rating:      response.Rating,
					SubmittedAt: *evaluator.CompletedAt,
				})
			}
		}
	}
	return points
}

// Band buckets an overall score into a named band. Bounds:
// excellent [4.5, 5], good [3.5, 4.5), fair [2.5, 3.5), needs_improvement
// below 2.5.
func Band(score float64) string {
	switch {
	case score >= 4.5:
		return BandExcellent
	case score >= 3.5:
		return BandGood
	case score >= 2.5:
		return BandFair
	default:
		return BandNeedsImprovement
	}
}

// Distribution buckets every individual submitted rating, not an average,
// into its band and returns the count per band.
func Distribution(points []RatingPoint) map[string]int {
	dist := map[string]int{
		BandExcellent:        0,
		BandGood:             0,
		BandFair:             0,
		BandNeedsImprovement: 0,
	}
	for _, point := range points {
		dist[Band(float64(point.Rating))]++
	}
	return dist
}

// MonthlyTrend averages ratings per calendar month for the trailing window
// ending at now's month, oldest first. Months with no ratings report a zero
// average and zero count.
func MonthlyTrend(points []RatingPoint, now time.Time, months int) []TrendPoint {
	if months <= 0 {
		return nil
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, point := range points {
		key := point.SubmittedAt.UTC().Format("2006-01")
		sums[key] += float64(point.Rating)
		counts[key]++
	}

	trend := make([]TrendPoint, 0, months)
	start := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		point := TrendPoint{Month: month, Count: counts[month]}
		if point.Count > 0 {
			point.Average = sums[month] / float64(point.Count)
		}
		trend = append(trend, point)
	}
	return trend
}
