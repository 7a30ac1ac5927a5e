package engine

import (
	"log"

	ruledomain "github.com/ladoyle/simple-mail-bot/internal/rule/domain"
)

// RuleIndex maps a Gmail label id to the set of rule ids whose filter action
// adds or removes that label. It is rebuilt from scratch every run; caching
// it across runs would miss rule changes.
type RuleIndex map[string]map[string]struct{}

// BuildRuleIndex builds the label-to-rules mapping over both the add and
// remove label lists, and returns a rule id to name snapshot alongside it.
// A rule whose label lists cannot be decoded is excluded from the index and
// contributes nothing this run; the remaining rules are unaffected.
func BuildRuleIndex(rules []ruledomain.Rule) (RuleIndex, map[string]string) {
	idx := make(RuleIndex)
	names := make(map[string]string, len(rules))

	for _, r := range rules {
		addIDs, err := r.AddLabels()
		if err != nil {
			log.Printf("[HistoryEngine] skipping rule %s (%s): bad add label list: %v", r.Name, r.ID, err)
			continue
		}
		removeIDs, err := r.RemoveLabels()
		if err != nil {
			log.Printf("[HistoryEngine] skipping rule %s (%s): bad remove label list: %v", r.Name, r.ID, err)
			continue
		}

		names[r.ID] = r.Name
		for _, lid := range addIDs {
			idx.add(lid, r.ID)
		}
		for _, lid := range removeIDs {
			idx.add(lid, r.ID)
		}
	}

	return idx, names
}

func (idx RuleIndex) add(labelID, ruleID string) {
	if labelID == "" {
		return
	}
	set, ok := idx[labelID]
	if !ok {
		set = make(map[string]struct{})
		idx[labelID] = set
	}
	set[ruleID] = struct{}{}
}
