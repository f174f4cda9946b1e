package tasks

// CompletionPercentage returns completed/total*100 over the tasks matching
// urgency, or over all tasks when urgency is nil. An empty selection yields 0.
func CompletionPercentage(list []Task, urgency *Urgency) float64 {
	var total, completed int
	for _, t := range list {
		if urgency != nil && t.Urgency != *urgency {
			continue
		}
		total++
		if t.Completed {
			completed++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// Completion is the per-urgency breakdown reported by snapshots and stats.
type Completion struct {
	All     float64             `json:"all"`
	ByLevel map[Urgency]float64 `json:"byUrgency"`
}

// Summarize computes the overall percentage and one entry per urgency.
func Summarize(list []Task) Completion {
	c := Completion{
		All:     CompletionPercentage(list, nil),
		ByLevel: make(map[Urgency]float64, len(Urgencies)),
	}
	for _, u := range Urgencies {
		c.ByLevel[u] = CompletionPercentage(list, &u)
	}
	return c
}
