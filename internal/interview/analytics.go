package interview

import (
	"math"
	"sort"

	"mockinterview/ai/internal/models"
)

const progressPoints = 10

// ComputeAnalytics summarizes completed sessions. Sessions in any other status are skipped.
func ComputeAnalytics(sessions []models.InterviewSession) *models.Analytics {
	out := &models.Analytics{
		RoleDistribution:       map[models.Role]int{},
		DifficultyDistribution: map[models.Difficulty]int{},
		ProgressOverTime:       []models.ProgressPoint{},
	}

	completed := make([]models.InterviewSession, 0, len(sessions))
	for _, s := range sessions {
		if s.Status == models.StatusCompleted {
			completed = append(completed, s)
		}
	}
	if len(completed) == 0 {
		return out
	}

	total := 0
	for _, s := range completed {
		score := scoreOf(s)
		total += score
		switch {
		case score >= 80:
			out.ScoreDistribution.Excellent++
		case score >= 60:
			out.ScoreDistribution.Good++
		case score >= 40:
			out.ScoreDistribution.Average++
		default:
			out.ScoreDistribution.NeedsImprovement++
		}
		out.RoleDistribution[s.Role]++
		out.DifficultyDistribution[s.Difficulty]++
	}
	out.TotalInterviews = len(completed)
	out.AverageScore = math.Round(float64(total)/float64(len(completed))*10) / 10

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CreatedAt.After(completed[j].CreatedAt)
	})
	if len(completed) > progressPoints {
		completed = completed[:progressPoints]
	}
	for i := len(completed) - 1; i >= 0; i-- {
		out.ProgressOverTime = append(out.ProgressOverTime, models.ProgressPoint{
			Date:  completed[i].CreatedAt,
			Score: scoreOf(completed[i]),
			Role:  completed[i].Role,
		})
	}
	return out
}

func scoreOf(s models.InterviewSession) int {
	if s.Score == nil {
		return 0
	}
	return *s.Score
}
