package engine

import (
	"testing"

	ruledomain "github.com/ladoyle/simple-mail-bot/internal/rule/domain"

	"github.com/stretchr/testify/require"
)

func evt(msgID string, kind EventKind, labelIDs ...string) LabelEvent {
	return LabelEvent{MessageID: msgID, LabelIDs: labelIDs, Kind: kind}
}

func TestCountProcessed_AddAndRemoveOnSameMessageCountOnce(t *testing.T) {
	idx, _ := BuildRuleIndex([]ruledomain.Rule{
		rule("r1", "r1", []string{"L1"}, nil),
	})

	// m1 gains then loses L1, m2 gains it: two distinct messages.
	events := []LabelEvent{
		evt("m1", EventLabelAdded, "L1"),
		evt("m1", EventLabelRemoved, "L1"),
		evt("m2", EventLabelAdded, "L1"),
	}

	counts := CountProcessed(idx, events)
	require.Equal(t, map[string]int{"r1": 2}, counts)
}

func TestCountProcessed_OrderIndependent(t *testing.T) {
	idx, _ := BuildRuleIndex([]ruledomain.Rule{
		rule("r1", "r1", []string{"L1"}, nil),
		rule("r2", "r2", []string{"L2"}, nil),
	})

	events := []LabelEvent{
		evt("m1", EventLabelAdded, "L1"),
		evt("m2", EventLabelAdded, "L1", "L2"),
		evt("m1", EventLabelRemoved, "L1"),
		evt("m3", EventLabelAdded, "L2"),
	}

	want := CountProcessed(idx, events)

	perms := [][]int{
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}
	for _, p := range perms {
		shuffled := make([]LabelEvent, len(events))
		for i, j := range p {
			shuffled[i] = events[j]
		}
		require.Equal(t, want, CountProcessed(idx, shuffled))
	}
}

func TestCountProcessed_DuplicateEventsCountOnce(t *testing.T) {
	idx, _ := BuildRuleIndex([]ruledomain.Rule{
		rule("r1", "r1", []string{"L1"}, nil),
	})

	events := []LabelEvent{
		evt("m5", EventLabelAdded, "L1"),
		evt("m5", EventLabelAdded, "L1"),
		evt("m5", EventLabelAdded, "L1"),
	}

	counts := CountProcessed(idx, events)
	require.Equal(t, map[string]int{"r1": 1}, counts)
}

func TestCountProcessed_ZeroMatchRuleAbsent(t *testing.T) {
	idx, _ := BuildRuleIndex([]ruledomain.Rule{
		rule("r1", "r1", []string{"L1"}, nil),
		rule("r2", "r2", []string{"L9"}, nil),
	})

	counts := CountProcessed(idx, []LabelEvent{
		evt("m5", EventLabelAdded, "L1"),
	})

	require.Equal(t, map[string]int{"r1": 1}, counts)
	require.NotContains(t, counts, "r2")
}

func TestCountProcessed_SharedLabelCreditsEveryRule(t *testing.T) {
	idx, _ := BuildRuleIndex([]ruledomain.Rule{
		rule("r1", "r1", []string{"L1"}, nil),
		rule("r2", "r2", nil, []string{"L1"}),
	})

	counts := CountProcessed(idx, []LabelEvent{
		evt("m1", EventLabelAdded, "L1"),
	})

	require.Equal(t, map[string]int{"r1": 1, "r2": 1}, counts)
}

func TestCountProcessed_EmptyMessageIDSkipped(t *testing.T) {
	idx, _ := BuildRuleIndex([]ruledomain.Rule{
		rule("r1", "r1", []string{"L1"}, nil),
	})

	counts := CountProcessed(idx, []LabelEvent{
		evt("", EventLabelAdded, "L1"),
	})

	require.Empty(t, counts)
}

func TestCountProcessed_NoEvents(t *testing.T) {
	idx, _ := BuildRuleIndex([]ruledomain.Rule{
		rule("r1", "r1", []string{"L1"}, nil),
	})

	require.Empty(t, CountProcessed(idx, nil))
}
