package conversation

import (
	"call-insights-go/internal/types"
)

// Batch groups items into fixed-size batches in order; the last batch
// may be short. 10 items at size 4 come out as [4 4 2]. The items keep
// their identity, so pair association survives batching.
func Batch[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

// AnalysisBatch joins generated conversations with their synthesized
// audio files (keyed by text file) into call rows ready for ingestion.
// Conversations with no audio are dropped and reported, never left as
// a misaligned slot.
func AnalysisBatch(conversations []Conversation, audioByTextFile map[string]string) ([]types.Call, []Gap) {
	calls := make([]types.Call, 0, len(conversations))
	var gaps []Gap
	for _, c := range conversations {
		audio, ok := audioByTextFile[c.TextFile]
		if !ok || audio == "" {
			gaps = append(gaps, Gap{
				AgentID:  c.AgentID,
				ClientID: c.ClientID,
				Reason:   "no audio synthesized for " + c.TextFile,
			})
			continue
		}
		calls = append(calls, types.Call{
			CallID:    c.CallID,
			ClientID:  c.ClientID,
			AgentID:   c.AgentID,
			CallTime:  c.CallTime,
			Status:    types.StatusCreated,
			AudioFile: audio,
		})
	}
	return calls, gaps
}
