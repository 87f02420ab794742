package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/joshua-takyi/eventmap/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPrintEvents(t *testing.T) {
	color.NoColor = true
	limit := 40
	jst := time.FixedZone("JST", 9*60*60)

	resp := models.SearchResponse{
		Events: []models.EventRecord{
			{ID: 1, Title: "Go Conference", Place: "Hall A", Accepted: 12, Limit: &limit, StartedAt: time.Date(2024, 1, 2, 19, 0, 0, 0, jst)},
			{ID: 2, Title: "Rust Night", Place: "Cafe", Accepted: 3, StartedAt: time.Date(2024, 1, 3, 19, 0, 0, 0, jst)},
		},
		MapEvents: []int{1},
	}

	var buf bytes.Buffer
	printEvents(&buf, resp)
	out := buf.String()

	assert.Contains(t, out, "1月2日(火) 19:00")
	assert.Contains(t, out, "12/40")
	assert.Contains(t, out, "3/∞")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "2 events, 1 on the map")
}

func TestPrintEvents_Empty(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printEvents(&buf, models.SearchResponse{})
	assert.Equal(t, "no events found\n", buf.String())
}
