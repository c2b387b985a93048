package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/matst80/slask-listings/pkg/client"
	"github.com/matst80/slask-listings/pkg/types"
)

var (
	headerColor      = color.New(color.Bold, color.FgCyan)
	selectedColor    = color.New(color.Bold, color.FgGreen)
	availableColor   = color.New(color.FgGreen)
	unavailableColor = color.New(color.Faint)
	errorColor       = color.New(color.Bold, color.FgRed)
)

func formatOption(o types.FacetOption, selected bool) string {
	label := fmt.Sprintf("%s (%d)", o.Value, o.Count)
	switch {
	case selected:
		return selectedColor.Sprint("[x] " + label)
	case o.Available:
		return availableColor.Sprint("[ ] " + label)
	}
	return unavailableColor.Sprint("[-] " + label)
}

func printSnapshot(w io.Writer, snapshot *types.FacetSnapshot, sel *types.FilterSelection) {
	fmt.Fprintf(w, "%s %d\n", headerColor.Sprint("Total"), snapshot.TotalCount)
	if snapshot.HasAnyNonDefaultFilter {
		fmt.Fprintln(w, selectedColor.Sprint("Filters applied"))
	}
	for _, d := range types.FacetDimensions {
		options := snapshot.Options(d)
		if len(options) == 0 {
			continue
		}
		var selected []string
		if sel != nil {
			selected = sel.Selected(d)
		}
		fmt.Fprintln(w, headerColor.Sprint(d.String()))
		for _, o := range options {
			fmt.Fprintln(w, "  "+formatOption(o, slices.Contains(selected, o.Value)))
		}
	}
	r := snapshot.PriceRange
	fmt.Fprintf(w, "%s %s - %s (current %s - %s)\n",
		headerColor.Sprint("price"),
		client.FormatPriceInput(r.Min), client.FormatPriceInput(r.Max),
		client.FormatPriceInput(r.CurrentMin), client.FormatPriceInput(r.CurrentMax))
}
