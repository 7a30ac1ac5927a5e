package engine

// CountProcessed computes, per rule id, the number of distinct messages that
// had at least one event on a label mapped to that rule. Added and removed
// events both count; the system measures rule activity, not net label state.
// Deduplication is per-rule by message id set, which makes the result
// independent of event order and of duplicate event delivery. Rules with no
// matching messages are absent from the returned map.
func CountProcessed(idx RuleIndex, events []LabelEvent) map[string]int {
	seen := make(map[string]map[string]struct{})

	for _, ev := range events {
		if ev.MessageID == "" {
			continue
		}
		for _, lid := range ev.LabelIDs {
			for rid := range idx[lid] {
				msgs, ok := seen[rid]
				if !ok {
					msgs = make(map[string]struct{})
					seen[rid] = msgs
				}
				msgs[ev.MessageID] = struct{}{}
			}
		}
	}

	counts := make(map[string]int, len(seen))
	for rid, msgs := range seen {
		counts[rid] = len(msgs)
	}
	return counts
}
