package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matst80/slask-listings/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionFromArgs(t *testing.T) {
	sel, err := selectionFromArgs([]string{"district=B", "?district=A&rooms=2", "deal=rent"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sel.Districts)
	assert.Equal(t, []int{2}, sel.Rooms)
	assert.Equal(t, types.DealRent, sel.DealType)
}

func TestCanonicalCommand(t *testing.T) {
	root := newRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"canonical", "/listings?rooms=x&district=B&district=A&from=map&deal=sale"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "/listings?district=A&district=B&from=map", strings.TrimSpace(out.String()))
}

func TestPrintSnapshotMarksSelection(t *testing.T) {
	sel := types.NewSelection()
	sel.Toggle(types.DimensionDistrict, "A")
	snapshot := &types.FacetSnapshot{
		TotalCount: 5,
		Districts: []types.FacetOption{
			{Value: "A", Count: 5, Available: true},
			{Value: "B", Count: 0, Available: false},
		},
	}
	out := &bytes.Buffer{}
	printSnapshot(out, snapshot, &sel)
	assert.Contains(t, out.String(), "[x] A (5)")
	assert.Contains(t, out.String(), "[-] B (0)")
}
