package twin

import "time"

// Twin is a professional's recorded interview profile. It is read-only
// during a call and feeds persona prompt construction.
type Twin struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId,omitempty"`
	Name            string    `json:"name"`
	RoleTitle       string    `json:"roleTitle"`
	YearsExperience int       `json:"yearsExperience"`
	Skills          []string  `json:"skills"`
	Bio             string    `json:"bio"`
	PublicSlug      string    `json:"publicSlug"`
	VoiceID         string    `json:"voiceId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// HasVoice reports whether a synthesis voice was configured for this twin.
// Voice turns fail fast when it is absent.
func (t Twin) HasVoice() bool {
	return t.VoiceID != ""
}

// Answer is one stored question/answer pair used as an in-context style
// example when prompting the model.
type Answer struct {
	ID           string    `json:"id"`
	TwinID       string    `json:"twinId"`
	QuestionType string    `json:"questionType"`
	QuestionText string    `json:"questionText"`
	AnswerText   string    `json:"answerText"`
	CreatedAt    time.Time `json:"createdAt"`
}
