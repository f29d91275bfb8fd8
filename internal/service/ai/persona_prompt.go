package ai

import (
	"fmt"
	"strings"

	"github.com/twinterview/backend/internal/model/twin"
)

// Channel selects the brevity directive embedded in the persona prompt.
// Streamed-audio replies are kept to 1-2 sentences; replies delivered as
// text first and spoken afterwards get 2-3; plain text answers get room
// for detail.
type Channel string

const (
	ChannelVoice     Channel = "voice"
	ChannelVoiceText Channel = "voice-text"
	ChannelText      Channel = "text"
)

const (
	voiceBrevityDirective     = "CRITICAL: Keep answers to 1-2 sentences MAX. This is voice - be brief."
	voiceTextBrevityDirective = "Keep answers concise (2-3 sentences for voice) since this will be spoken aloud."
	textBrevityDirective      = "Keep answers concise (2-4 paragraphs max) unless the question specifically asks for detail."
)

// BuildPersonaPrompt renders the system prompt that conditions the model to
// answer as the twin: identity, background, every stored style example as
// alternating Q/A pairs, then the in-character instructions.
func BuildPersonaPrompt(t twin.Twin, answers []twin.Answer, channel Channel) string {
	qaPairs := make([]string, 0, len(answers))
	for _, a := range answers {
		qaPairs = append(qaPairs, fmt.Sprintf("Q: %s\nA: %s", a.QuestionText, a.AnswerText))
	}

	var brevity string
	switch channel {
	case ChannelVoice:
		brevity = voiceBrevityDirective
	case ChannelVoiceText:
		brevity = voiceTextBrevityDirective
	default:
		brevity = textBrevityDirective
	}

	return fmt.Sprintf(`You are roleplaying as %s, a %s with %d years of experience.

Here is their background:
Bio: %s
Skills: %s

Here are examples of how they answer questions in their own voice:

%s

Your job is to answer interview questions as if you ARE this person. Match their communication style, tone, and level of detail based on the examples above. Be authentic and conversational. If you don't have specific information, give a reasonable answer that fits the person's profile and style.

%s
Do not break character or mention that you are an AI.`,
		t.Name,
		t.RoleTitle,
		t.YearsExperience,
		t.Bio,
		strings.Join(t.Skills, ", "),
		strings.Join(qaPairs, "\n\n"),
		brevity,
	)
}
