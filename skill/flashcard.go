package skill

import (
	"regexp"
	"strings"
)

var flashcardHeading = regexp.MustCompile(`^#{1,6}\s+(.+)`)

// FlashcardCard is one question/answer pair.
type FlashcardCard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FlashcardOutput is Flashcard's Run result.
type FlashcardOutput struct {
	Cards []FlashcardCard `json:"cards"`
}

// Flashcard derives one Q&A card per heading, the answer being that
// section's body truncated to 500 runes (ported from skills/flashcard.py's
// generate_flashcards_from_markdown).
type Flashcard struct{}

func (Flashcard) Name() string { return "flashcard" }

func (Flashcard) Run(markdown string) (any, error) {
	var cards []FlashcardCard
	heading := ""
	var body []string

	flush := func() {
		if heading == "" || len(body) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(body, " "))
		if len(content) > 10 {
			cards = append(cards, FlashcardCard{
				Question: "What is " + heading + "?",
				Answer:   truncateRunes(content, 500),
			})
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(markdown), "\n") {
		trimmed := strings.TrimSpace(line)
		if m := flashcardHeading.FindStringSubmatch(trimmed); m != nil {
			flush()
			heading = strings.TrimSpace(m[1])
			body = nil
			continue
		}
		if trimmed != "" {
			body = append(body, trimmed)
		}
	}
	flush()

	return FlashcardOutput{Cards: cards}, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
