package remote

import "github.com/mbolis/survey-publisher/model"

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type Page[T any] struct {
	Items      []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type paginatedEnvelope[T any] struct {
	Success    bool       `json:"success"`
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
	Error      string     `json:"error"`
	Message    string     `json:"message"`
	Code       string     `json:"code"`
}

type GenerationConfig struct {
	Mode                string             `json:"mode"`
	OpenAIConnected     bool               `json:"openaiConnected"`
	OpenAIError         string             `json:"openaiError,omitempty"`
	AvailableCategories []string           `json:"availableCategories"`
	Settings            GenerationSettings `json:"settings"`
}

type GenerationSettings struct {
	OpenAI struct {
		Model         string   `json:"model"`
		MaxQuestions  int      `json:"maxQuestions"`
		Temperature   float64  `json:"temperature"`
		QuestionTypes []string `json:"questionTypes"`
	} `json:"openai"`
	Static struct {
		DefaultQuestionsPerCategory int `json:"defaultQuestionsPerCategory"`
	} `json:"static"`
}

type GenerateRequest struct {
	Category      string `json:"category"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"questionCount,omitempty"`
}

type GeneratedQuestions struct {
	Category      string           `json:"category"`
	Description   string           `json:"description"`
	QuestionCount int              `json:"questionCount"`
	Questions     []model.Question `json:"questions"`
	// GeneratedWith is "openai" or "static".
	GeneratedWith string `json:"generatedWith"`
}

type createSurveyRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Questions   []model.Question   `json:"questions"`
	Audience    model.AudienceSpec `json:"audience"`
}

type CreatedSurvey struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type MaterializeRequest struct {
	CampaignName     string   `json:"campaignName,omitempty"`
	SelectedAudience []string `json:"selectedAudience,omitempty"`
}

type Materialized struct {
	Survey struct {
		SurveyID    string `json:"surveyId"`
		PublicURL   string `json:"publicUrl"`
		HTMLContent string `json:"htmlContent"`
		UpdatedAt   string `json:"updatedAt"`
	} `json:"survey"`
	Email struct {
		Sent       int      `json:"sent"`
		Failed     int      `json:"failed"`
		Errors     []string `json:"errors"`
		CampaignID string   `json:"campaignId"`
	} `json:"email"`
}

type SurveyResults struct {
	Survey struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		CreatedAt   string `json:"createdAt"`
	} `json:"survey"`
	Stats struct {
		TotalResponses int     `json:"totalResponses"`
		CompletionRate float64 `json:"completionRate"`
		AvgTime        float64 `json:"avgTime"`
		NPSScore       float64 `json:"npsScore"`
	} `json:"stats"`
	QuestionResults []QuestionResult `json:"questionResults"`
	Demographics    struct {
		Age      []GroupCount `json:"age"`
		Gender   []GroupCount `json:"gender"`
		Location []GroupCount `json:"location"`
	} `json:"demographics"`
	ResponseTimeline []struct {
		Date      string `json:"date"`
		Responses int    `json:"responses"`
	} `json:"responseTimeline"`
}

type QuestionResult struct {
	QuestionID      string             `json:"questionId"`
	Question        string             `json:"question"`
	Type            model.QuestionType `json:"type"`
	Responses       int                `json:"responses"`
	Data            []OptionCount      `json:"data"`
	AverageRating   *float64           `json:"averageRating,omitempty"`
	SampleResponses []string           `json:"sampleResponses,omitempty"`
}

type OptionCount struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GroupCount is one demographic bucket. The backend names the key after the
// dimension (ageGroup, gender, location); all of them land in Group.
type GroupCount struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

func (g *GroupCount) UnmarshalJSON(b []byte) error {
	var raw struct {
		AgeGroup string `json:"ageGroup"`
		Gender   string `json:"gender"`
		Location string `json:"location"`
		Group    string `json:"group"`
		Count    int    `json:"count"`
	}
	if err := unmarshal(b, &raw); err != nil {
		return err
	}
	g.Count = raw.Count
	for _, s := range []string{raw.Group, raw.AgeGroup, raw.Gender, raw.Location} {
		if s != "" {
			g.Group = s
			break
		}
	}
	return nil
}

type ExportFormat string

const (
	ExportCSV   ExportFormat = "csv"
	ExportExcel ExportFormat = "excel"
	ExportPDF   ExportFormat = "pdf"
	ExportJSON  ExportFormat = "json"
)

func (f ExportFormat) Valid() bool {
	switch f {
	case ExportCSV, ExportExcel, ExportPDF, ExportJSON:
		return true
	}
	return false
}

// Export is a raw download; export responses carry no envelope.
type Export struct {
	ContentType string
	Data        []byte
}

type SurveySummary struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Category       string             `json:"category"`
	Status         model.SurveyStatus `json:"status"`
	Responses      int                `json:"responses"`
	Target         int                `json:"target"`
	CompletionRate float64            `json:"completionRate"`
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
}

type ListParams struct {
	Page     int
	Limit    int
	Search   string
	Status   string
	Category string
}
