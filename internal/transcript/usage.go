package transcript

// Metrics aggregates token usage over a transcript.
type Metrics struct {
	InputTokens   int64 `json:"input_tokens"`
	OutputTokens  int64 `json:"output_tokens"`
	CachedTokens  int64 `json:"cached_tokens"`
	TotalTokens   int64 `json:"total_tokens"`
	ContextLength int64 `json:"context_length"`
}

// TokenMetrics sums usage across every entry and takes the context length
// from the most recent main-chain (non-sidechain) entry by timestamp.
func TokenMetrics(entries []Entry) Metrics {
	var m Metrics
	var latest *Usage
	latestTS := ""
	for i := range entries {
		e := &entries[i]
		u := e.Message.Usage
		if u == nil {
			continue
		}
		m.InputTokens += u.InputTokens
		m.OutputTokens += u.OutputTokens
		m.CachedTokens += u.CacheReadInputTokens + u.CacheCreationInputTokens

		if !e.IsSidechain && e.Timestamp != "" && (latest == nil || e.Timestamp > latestTS) {
			latest = u
			latestTS = e.Timestamp
		}
	}
	if latest != nil {
		m.ContextLength = latest.InputTokens + latest.CacheReadInputTokens + latest.CacheCreationInputTokens
	}
	m.TotalTokens = m.InputTokens + m.OutputTokens + m.CachedTokens
	return m
}
