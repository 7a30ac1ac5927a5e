package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelIDRoundTrip(t *testing.T) {
	r := Rule{
		AddLabelIDs:    EncodeLabelIDs([]string{"L1", "L2"}),
		RemoveLabelIDs: EncodeLabelIDs(nil),
	}

	add, err := r.AddLabels()
	require.NoError(t, err)
	require.Equal(t, []string{"L1", "L2"}, add)

	remove, err := r.RemoveLabels()
	require.NoError(t, err)
	require.Empty(t, remove)
}

func TestLabelIDDecode_EmptyStringIsEmptyList(t *testing.T) {
	r := Rule{}

	add, err := r.AddLabels()
	require.NoError(t, err)
	require.Nil(t, add)
}

func TestLabelIDDecode_Malformed(t *testing.T) {
	r := Rule{AddLabelIDs: "{broken"}

	_, err := r.AddLabels()
	require.Error(t, err)
}
