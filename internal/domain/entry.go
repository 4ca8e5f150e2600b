package domain

// AIAuthorID is the sentinel author id for the AI-written entry
const AIAuthorID = "ai"

// AnswerEntry is one shuffled answer shown to voters. Exactly one entry per
// round is AI-authored. Authorship stays server-side; broadcast payloads carry
// only the entry texts until results are revealed.
type AnswerEntry struct {
	Text       string `json:"text"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	IsAI       bool   `json:"isAI"`
}
