package scoring

import (
	"math"
	"testing"
	"time"

	"perf360/internal/domain/evaluation"
)

func completed(at time.Time, feedback []evaluation.FeedbackResponse) evaluation.Evaluator {
	return evaluation.Evaluator{
		UserID:      "u-" + at.Format("20060102"),
		Status:      evaluation.EvaluatorStatusCompleted,
		CompletedAt: &at,
		Feedback:    feedback,
	}
}

func weightedEvaluation() evaluation.Evaluation {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return evaluation.Evaluation{
		Status: evaluation.StatusCompleted,
		Categories: []evaluation.Category{
			{ID: "cat-tech", Name: "Technical Skills", Weight: 60, Criteria: []evaluation.Criterion{{ID: "cr-1"}}},
			{ID: "cat-comm", Name: "Communication", Weight: 40, Criteria: []evaluation.Criterion{{ID: "cr-2"}}},
		},
		Evaluators: []evaluation.Evaluator{
			completed(at, []evaluation.FeedbackResponse{
				{CategoryID: "cat-tech", CriteriaID: "cr-1", Rating: 4},
				{CategoryID: "cat-comm", CriteriaID: "cr-2", Rating: 5},
			}),
		},
	}
}

func TestOverallScoreWeightsCategories(t *testing.T) {
	eval := weightedEvaluation()
	scores := CategoryScores(&eval)

	overall := OverallScore(scores)
	if math.Abs(overall-4.4) > 1e-9 {
		t.Fatalf("overall = %v, want 4.4", overall)
	}

	// Aggregation is a pure read; repeating it must give the same answer.
	if again := OverallScore(CategoryScores(&eval)); again != overall {
		t.Fatalf("second pass = %v, first = %v", again, overall)
	}
}

func TestCategoryScoresIgnorePendingEvaluators(t *testing.T) {
	eval := weightedEvaluation()
	eval.Evaluators = append(eval.Evaluators, evaluation.Evaluator{
		UserID: "u-pending",
		Status: evaluation.EvaluatorStatusPending,
		Feedback: []evaluation.FeedbackResponse{
			{CategoryID: "cat-tech", CriteriaID: "cr-1", Rating: 1},
		},
	})

	scores := CategoryScores(&eval)
	if scores[0].Average != 4 {
		t.Fatalf("tech average = %v, pending evaluator leaked into aggregate", scores[0].Average)
	}
}

func TestOverallScoreZeroWhenNoRatings(t *testing.T) {
	eval := weightedEvaluation()
	eval.Evaluators = nil

	scores := CategoryScores(&eval)
	for _, score := range scores {
		if score.Average != 0 || score.Responses != 0 {
			t.Fatalf("empty evaluation produced score %+v", score)
		}
	}
	if overall := OverallScore(scores); overall != 0 {
		t.Fatalf("overall = %v, want 0 for no data", overall)
	}
}

func TestOverallScoreUnratedCategoryPullsDown(t *testing.T) {
	eval := weightedEvaluation()
	eval.Evaluators[0].Feedback = eval.Evaluators[0].Feedback[:1] // tech only, rating 4

	// Communication contributes its zero average at weight 40, so the
	// rollup is 4*0.6 + 0*0.4.
	overall := OverallScore(CategoryScores(&eval))
	if math.Abs(overall-2.4) > 1e-9 {
		t.Fatalf("overall = %v, want 2.4 when only tech is rated", overall)
	}
}

func TestBandBounds(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{5, BandExcellent},
		{4.5, BandExcellent},
		{4.49, BandGood},
		{3.5, BandGood},
		{3.49, BandFair},
		{2.5, BandFair},
		{2.49, BandNeedsImprovement},
		{1, BandNeedsImprovement},
	}
	for _, tc := range cases {
		if got := Band(tc.score); got != tc.want {
			t.Fatalf("Band(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestDistributionBucketsEachRating(t *testing.T) {
	eval := weightedEvaluation()
	eval.Evaluators[0].Feedback = []evaluation.FeedbackResponse{
		{CategoryID: "cat-tech", CriteriaID: "cr-1", Rating: 5},
		{CategoryID: "cat-comm", CriteriaID: "cr-2", Rating: 1},
	}

	// Ratings are bucketed one by one, never averaged first: {5, 1} lands
	// in the extreme bands instead of collapsing into fair.
	dist := Distribution(CollectRatings([]evaluation.Evaluation{eval}))
	if dist[BandExcellent] != 1 || dist[BandNeedsImprovement] != 1 {
		t.Fatalf("dist = %v, want one excellent and one needs_improvement", dist)
	}
	if dist[BandFair] != 0 || dist[BandGood] != 0 {
		t.Fatalf("dist = %v, middle bands must stay empty", dist)
	}
}

func TestDistributionIgnoresPendingEvaluators(t *testing.T) {
	eval := weightedEvaluation()
	eval.Evaluators = append(eval.Evaluators, evaluation.Evaluator{
		UserID: "u-pending",
		Status: evaluation.EvaluatorStatusPending,
		Feedback: []evaluation.FeedbackResponse{
			{CategoryID: "cat-tech", CriteriaID: "cr-1", Rating: 1},
		},
	})

	dist := Distribution(CollectRatings([]evaluation.Evaluation{eval}))
	if total := dist[BandExcellent] + dist[BandGood] + dist[BandFair] + dist[BandNeedsImprovement]; total != 2 {
		t.Fatalf("total = %d, pending evaluator leaked into distribution", total)
	}
	if dist[BandNeedsImprovement] != 0 {
		t.Fatalf("dist = %v, unsubmitted rating counted", dist)
	}
}

func TestMonthlyTrendFillsEmptyMonths(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	points := []RatingPoint{
		{Rating: 4, SubmittedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Rating: 2, SubmittedAt: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)},
		{Rating: 5, SubmittedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		// Outside the window, must be dropped.
		{Rating: 1, SubmittedAt: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
	}

	trend := MonthlyTrend(points, now, 6)
	if len(trend) != 6 {
		t.Fatalf("len = %d, want 6", len(trend))
	}
	if trend[0].Month != "2026-01" || trend[5].Month != "2026-06" {
		t.Fatalf("window = %s..%s", trend[0].Month, trend[5].Month)
	}
	if trend[0].Average != 0 || trend[0].Count != 0 {
		t.Fatalf("january = %+v, want empty", trend[0])
	}
	if trend[2].Average != 3 || trend[2].Count != 2 {
		t.Fatalf("march = %+v, want average 3 over 2", trend[2])
	}
	if trend[5].Average != 5 {
		t.Fatalf("june = %+v", trend[5])
	}
}

func TestCollectRatingsStampsCompletionTime(t *testing.T) {
	eval := weightedEvaluation()
	points := CollectRatings([]evaluation.Evaluation{eval})
	if len(points) != 2 {
		t.Fatalf("len = %d, want 2", len(points))
	}
	want := *eval.Evaluators[0].CompletedAt
	for _, point := range points {
		if !point.SubmittedAt.Equal(want) {
			t.Fatalf("submittedAt = %v, want %v", point.SubmittedAt, want)
		}
	}
}
