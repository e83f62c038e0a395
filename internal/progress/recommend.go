package progress

// Recommend picks the next topic to practice: the practiced topic with
// the lowest mastery, ties broken by name. Rusty topics come first. With
// no practiced topic it returns starter.
func Recommend(topics []TopicProgress, starter string) string {
	var best *TopicProgress
	for i := range topics {
		t := &topics[i]
		if t.Attempted == 0 {
			continue
		}
		if best == nil || less(t, best) {
			best = t
		}
	}
	if best == nil {
		return starter
	}
	return best.Topic
}

func less(a, b *TopicProgress) bool {
	ar, br := a.State == "rusty", b.State == "rusty"
	if ar != br {
		return ar
	}
	if a.Mastery != b.Mastery {
		return a.Mastery < b.Mastery
	}
	return a.Topic < b.Topic
}
