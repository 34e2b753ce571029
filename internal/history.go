package internal

// EstimateTokens estimates the token count for a given text using a
// Unicode-aware heuristic: ~4 ASCII characters per token, ~1 token per
// non-ASCII character (CJK, Cyrillic, Arabic, emoji).
func EstimateTokens(text string) int {
	weight := 0
	for _, r := range text {
		if r <= 127 {
			weight += 1
		} else {
			weight += 4
		}
	}
	return (weight + 3) / 4
}

// TruncateHistory trims a transcript for display based on message and token
// limits, removing the oldest messages first. The message limit is applied
// before the token limit; the most recent messages are preserved.
func TruncateHistory(history []Message, tokenLimit, messageLimit int) []Message {
	if len(history) == 0 {
		return history
	}

	if messageLimit > 0 && len(history) > messageLimit {
		history = history[len(history)-messageLimit:]
	}

	if tokenLimit <= 0 {
		return history
	}

	totalTokens := 0
	for _, msg := range history {
		totalTokens += EstimateTokens(msg.Content)
	}

	for totalTokens > tokenLimit && len(history) > 0 {
		totalTokens -= EstimateTokens(history[0].Content)
		history = history[1:]
	}

	return history
}
