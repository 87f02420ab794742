package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/joshua-takyi/eventmap/internal/helpers"
	"github.com/joshua-takyi/eventmap/internal/models"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

func printEvents(w io.Writer, resp models.SearchResponse) {
	if len(resp.Events) == 0 {
		fmt.Fprintln(w, faint("no events found"))
		return
	}

	located := make(map[int]bool, len(resp.MapEvents))
	for _, id := range resp.MapEvents {
		located[id] = true
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 48
	tbl.Separator = "  "
	tbl.AddRow(bold("DATE"), bold("TITLE"), bold("PLACE"), bold("SEATS"), bold("MAP"))
	for _, e := range resp.Events {
		pin := faint("-")
		if located[e.ID] {
			pin = green("●")
		}
		tbl.AddRow(helpers.FormatJapaneseDateTime(e.StartedAt), e.Title, e.Place, seats(e), pin)
	}
	fmt.Fprintln(w, tbl)
	fmt.Fprintf(w, "%s %d events, %d on the map\n", faint("total"), len(resp.Events), len(resp.MapEvents))
}

func seats(e models.EventRecord) string {
	if e.Unlimited() {
		return strconv.Itoa(e.Accepted) + "/∞"
	}
	return strconv.Itoa(e.Accepted) + "/" + strconv.Itoa(*e.Limit)
}
