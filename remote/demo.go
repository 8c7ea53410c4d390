package remote

import "github.com/mbolis/survey-publisher/model"

// Demo data served when the backend is unreachable. Each call returns a
// fresh copy.

func DemoCategories() []string {
	return []string{
		"IT Sector",
		"Automotive",
		"Healthcare",
		"Education",
		"Retail",
		"Finance",
		"Manufacturing",
		"Entertainment",
		"Food & Beverage",
		"Travel & Tourism",
		"Real Estate",
		"Media",
		"Sports",
		"Technology",
		"Energy",
	}
}

func DemoQuestionConfig() GenerationConfig {
	cfg := GenerationConfig{
		Mode:                "static",
		AvailableCategories: DemoCategories(),
	}
	cfg.Settings.OpenAI.MaxQuestions = 10
	cfg.Settings.OpenAI.QuestionTypes = []string{
		string(model.SingleChoice),
		string(model.Checkbox),
		string(model.Text),
		string(model.Rating),
	}
	cfg.Settings.Static.DefaultQuestionsPerCategory = 3
	return cfg
}

// DemoGeneratedQuestions answers for category with the demo question set.
func DemoGeneratedQuestions(req GenerateRequest) GeneratedQuestions {
	questions := []model.Question{
		{
			ID:       "demo_q1",
			Type:     model.SingleChoice,
			Text:     "How satisfied are you with your current remote work setup?",
			Options:  []string{"Very Satisfied", "Satisfied", "Neutral", "Dissatisfied", "Very Dissatisfied"},
			Required: true,
		},
		{
			ID:       "demo_q2",
			Type:     model.Rating,
			Text:     "Rate your productivity while working remotely (1-5)",
			Options:  []string{"1", "2", "3", "4", "5"},
			Required: true,
		},
		{
			ID:      "demo_q3",
			Type:    model.Text,
			Text:    "What tools or resources would improve your remote work experience?",
			Options: []string{},
		},
	}
	if req.QuestionCount > 0 && req.QuestionCount < len(questions) {
		questions = questions[:req.QuestionCount]
	}

	category := req.Category
	if category == "" {
		category = "IT Sector"
	}
	description := req.Description
	if description == "" {
		description = "Survey about remote work satisfaction and productivity in tech companies"
	}
	return GeneratedQuestions{
		Category:      category,
		Description:   description,
		QuestionCount: len(questions),
		Questions:     questions,
		GeneratedWith: "static",
	}
}

func DemoAudienceStats() model.AudienceStats {
	return model.AudienceStats{
		Total:  10000,
		Active: 9000,
		ByAgeGroup: map[string]int{
			"18-24": 1500,
			"25-34": 3000,
			"35-44": 2500,
			"45-54": 2000,
			"55-64": 800,
			"65+":   200,
		},
		ByGender: map[string]int{
			"Male":              5200,
			"Female":            4500,
			"Non-binary":        200,
			"Prefer not to say": 100,
		},
		ByCountry: map[string]int{
			"United States":  6000,
			"Canada":         1500,
			"United Kingdom": 1200,
			"Germany":        800,
			"Australia":      500,
		},
		ByIndustry: map[string]int{
			"IT Sector":  2000,
			"Healthcare": 1500,
			"Finance":    1200,
			"Education":  1000,
			"Retail":     800,
		},
	}
}

func DemoSurveys() Page[SurveySummary] {
	items := []SurveySummary{
		{
			ID:             "survey-1",
			Title:          "IT Professional Work Satisfaction",
			Category:       "IT Sector",
			Status:         model.StatusActive,
			Responses:      320,
			Target:         500,
			CompletionRate: 76,
			CreatedAt:      "2023-06-15",
			UpdatedAt:      "2023-06-20",
		},
		{
			ID:             "survey-2",
			Title:          "Automotive Customer Experience",
			Category:       "Automotive",
			Status:         model.StatusCompleted,
			Responses:      240,
			Target:         250,
			CompletionRate: 96,
			CreatedAt:      "2023-06-10",
			UpdatedAt:      "2023-06-18",
		},
	}
	return Page[SurveySummary]{
		Items:      items,
		Pagination: Pagination{Page: 1, Limit: len(items), Total: len(items), TotalPages: 1},
	}
}
