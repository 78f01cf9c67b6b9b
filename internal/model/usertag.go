package model

// UserTagRate is the adaptive estimation record: the average
// actual/expected time ratio for one (user, tag) pair. A missing
// record means "no history yet" and reads as 1.0.
type UserTagRate struct {
	ID     int        `json:"id"`
	UserID int        `json:"user_id"`
	Tag    SubTaskTag `json:"tag"`
	Rate   float64    `json:"rate"`
}

// DefaultTagRate is the ratio assumed for tags with no history.
const DefaultTagRate = 1.0

// TagRatios groups measured subtasks by tag and averages their
// actual/expected ratios. Subtasks without a recorded actual time are
// skipped; a subtask with expected time <= 0 contributes 1.0 so a bad
// estimate cannot divide by zero. Tags with no qualifying subtasks are
// absent from the result.
func TagRatios(subtasks []SubTask) map[SubTaskTag]float64 {
	sums := make(map[SubTaskTag]float64)
	counts := make(map[SubTaskTag]int)

	for _, st := range subtasks {
		if st.ActualTime == nil {
			continue
		}
		ratio := DefaultTagRate
		if st.ExpectedTime > 0 {
			ratio = float64(*st.ActualTime) / float64(st.ExpectedTime)
		}
		sums[st.Tag] += ratio
		counts[st.Tag]++
	}

	out := make(map[SubTaskTag]float64, len(sums))
	for tag, sum := range sums {
		out[tag] = sum / float64(counts[tag])
	}
	return out
}

// RatePercent renders a ratio the way prompts consume it: a floored
// whole percentage (1.3 -> 130).
func RatePercent(rate float64) int {
	return int(rate * 100)
}
