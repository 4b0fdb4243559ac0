package domain

import (
	"fmt"
	"time"
)

const (
	AssessmentQuestions = 15
	MaxAnswerScore      = 20
	questionsPerGroup   = 3
)

// RiskLevel is the band derived from a biosecurity score.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// AssessmentCategories in answer order; each owns three consecutive answers.
var AssessmentCategories = []string{"Hygiene", "Access Control", "Quarantine", "Pest Control", "Feed & Water"}

// CategoryScore is the average answer of one category.
type CategoryScore struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
}

// Assessment is a scored biosecurity questionnaire.
type Assessment struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"user"`
	FarmID          string          `json:"farm,omitempty"`
	Answers         []int           `json:"answers"`
	Score           int             `json:"score"`
	RiskLevel       RiskLevel       `json:"riskLevel"`
	Categories      []CategoryScore `json:"categoryScores"`
	PriorityAreas   []string        `json:"priorityAreas"`
	Recommendations []string        `json:"recommendations"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// RiskFor maps a 0..100 score to its risk band.
func RiskFor(score int) RiskLevel {
	switch {
	case score < 40:
		return RiskHigh
	case score < 70:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Evaluate fills Score, RiskLevel, Categories, PriorityAreas and
// Recommendations from Answers. Answers must already be validated.
func (a *Assessment) Evaluate() {
	sum := 0
	for _, v := range a.Answers {
		sum += v
	}
	a.Score = sum * 100 / (AssessmentQuestions * MaxAnswerScore)
	a.RiskLevel = RiskFor(a.Score)

	a.Recommendations = append([]string(nil), overallRecommendations[a.RiskLevel]...)
	a.Categories = make([]CategoryScore, 0, len(AssessmentCategories))
	a.PriorityAreas = []string{}
	for i, name := range AssessmentCategories {
		group := a.Answers[i*questionsPerGroup : (i+1)*questionsPerGroup]
		total := 0
		for _, v := range group {
			total += v
		}
		avg := float64(total) / questionsPerGroup
		a.Categories = append(a.Categories, CategoryScore{Category: name, Average: avg})

		switch {
		case avg < 10:
			a.Recommendations = append(a.Recommendations, fmt.Sprintf("Priority: Improve %s practices (current avg: %.1f/20)", name, avg))
		case avg < 15:
			a.Recommendations = append(a.Recommendations, fmt.Sprintf("Enhance %s protocols (current avg: %.1f/20)", name, avg))
		}
		if total/questionsPerGroup < 15 {
			a.PriorityAreas = append(a.PriorityAreas, name)
		}
	}
}

var overallRecommendations = map[RiskLevel][]string{
	RiskHigh: {
		"Immediate action required: Your farm has critical biosecurity gaps",
		"Consider consulting with a biosecurity expert",
		"Implement emergency biosecurity protocols",
	},
	RiskMedium: {
		"Moderate improvements needed to enhance biosecurity",
		"Focus on high-priority areas identified in assessment",
		"Develop action plan for gradual improvements",
	},
	RiskLow: {
		"Excellent biosecurity practices maintained",
		"Continue monitoring and periodic reassessment",
		"Consider advanced biosecurity measures",
	},
}
