package ai

import (
	"regexp"
	"strings"
)

var (
	leadingNumbering = regexp.MustCompile(`^\d+[.)\-\s]*\s*`)
	leadingBullet    = regexp.MustCompile(`^[-•]\s*`)
	punctuation      = regexp.MustCompile("[.,;:!?'\"`]")
	multiSpace       = regexp.MustCompile(`\s+`)
)

// Sanitize cleans a raw model completion so it can pass as a player answer:
// leading numbering and bullets are stripped, echoed player names removed,
// all punctuation dropped, and the result clamped to roughly the length of
// the real submissions. avgLen is the mean submitted-answer length.
func Sanitize(raw string, playerNames []string, avgLen int) string {
	answer := strings.TrimSpace(raw)
	answer = leadingNumbering.ReplaceAllString(answer, "")
	answer = leadingBullet.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)

	// A malformed completion sometimes buries the answer in later lines
	if len(answer) < 3 {
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			line = leadingNumbering.ReplaceAllString(line, "")
			if len(line) >= 3 {
				answer = line
				break
			}
		}
	}

	answer = removeNames(answer, playerNames)
	answer = punctuation.ReplaceAllString(answer, "")
	answer = multiSpace.ReplaceAllString(answer, " ")
	answer = strings.TrimSpace(answer)

	if avgLen <= 0 {
		avgLen = 50
	}
	maxLen := avgLen * 13 / 10
	if len(answer) > maxLen {
		answer = truncateWords(answer, maxLen)
	}

	return answer
}

// removeNames strips any echoed player name tokens, case-insensitively
func removeNames(answer string, playerNames []string) string {
	for _, name := range playerNames {
		if name == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		if err != nil {
			continue
		}
		answer = re.ReplaceAllString(answer, "")
	}
	return answer
}

// truncateWords cuts the answer at a word boundary so it fits within maxLen
func truncateWords(answer string, maxLen int) string {
	words := strings.Fields(answer)
	out := ""
	for _, w := range words {
		next := out
		if next != "" {
			next += " "
		}
		next += w
		if len(next) > maxLen {
			break
		}
		out = next
	}
	if out == "" && len(words) > 0 {
		return words[0]
	}
	return out
}

// AverageLength returns the mean length of the submitted answers,
// defaulting to 50 when there are none
func AverageLength(answers []string) int {
	if len(answers) == 0 {
		return 50
	}
	total := 0
	for _, a := range answers {
		total += len(a)
	}
	return total / len(answers)
}
