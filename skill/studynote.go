package skill

import (
	"regexp"
	"strings"
)

var studyNoteHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)`)

// StudyNoteOutput is StudyNote's Run result.
type StudyNoteOutput struct {
	Note       string   `json:"note"`
	KeyPoints  []string `json:"key_points"`
}

// StudyNote condenses the article into one bullet per heading: the
// heading title plus its first non-empty body line, truncated to 200
// runes (ported from skills/study_note.py's generate_study_note_from_markdown).
type StudyNote struct{}

func (StudyNote) Name() string { return "study_note" }

func (StudyNote) Run(markdown string) (any, error) {
	var keyPoints []string
	var parts []string

	heading := ""
	firstSentence := ""

	flush := func() {
		if heading != "" && firstSentence != "" {
			keyPoints = append(keyPoints, heading)
			parts = append(parts, "- **"+heading+"**: "+firstSentence)
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(markdown), "\n") {
		trimmed := strings.TrimSpace(line)
		if m := studyNoteHeading.FindStringSubmatch(trimmed); m != nil {
			flush()
			heading = strings.TrimSpace(m[2])
			firstSentence = ""
			continue
		}
		if trimmed != "" && firstSentence == "" {
			firstSentence = truncateRunes(trimmed, 200)
		}
	}
	flush()

	note := ""
	if len(parts) > 0 {
		note = "# Study Notes\n\n" + strings.Join(parts, "\n")
	}

	return StudyNoteOutput{Note: note, KeyPoints: keyPoints}, nil
}
