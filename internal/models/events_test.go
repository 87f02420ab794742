package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsResponse_TolerantCoordinates(t *testing.T) {
	body := `{"events":[
		{"id":1,"title":"a","lat":"35.68","lon":"139.76","limit":null},
		{"id":2,"title":"b","lat":35.1,"lon":136.9,"limit":20},
		{"id":3,"title":"c","lat":null,"lon":null},
		{"id":4,"title":"d","lat":"","lon":"abc"},
		{"id":5,"title":"e","lat":"95","lon":"139"},
		{"id":6,"title":"f"}
	]}`

	var resp EventsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Events, 6)

	assert.True(t, resp.Events[0].Unlimited())
	assert.Equal(t, 20, *resp.Events[1].Limit)

	geo := GeoEvents(resp.Events)
	require.Len(t, geo, 2)
	assert.Equal(t, Point{Lat: 35.68, Lng: 139.76}, geo[0].Point)
	assert.Equal(t, 2, geo[1].ID)
}

func TestNewSearchResponse(t *testing.T) {
	located := EventRecord{ID: 1, Lat: NewCoordinate(35), Lon: NewCoordinate(139)}
	nowhere := EventRecord{ID: 2}

	resp := NewSearchResponse(&SearchResult{
		State:    StateSuccess,
		Events:   []EventRecord{nowhere, located},
		Criteria: SearchCriteria{Keyword: "go", Regions: []string{"tokyo"}},
	})
	assert.Equal(t, ResponseSuccess, resp.Status)
	assert.Len(t, resp.Events, 2, "events without a location stay in the list")
	assert.Equal(t, []int{1}, resp.MapEvents)
	assert.Equal(t, FormValues{Keyword: "go", Prefectures: []string{"tokyo"}}, resp.FormValues)

	failed := NewSearchResponse(&SearchResult{State: StateFailed, ErrorMessage: "boom"})
	assert.Equal(t, ResponseUpstreamError, failed.Status)
	assert.Equal(t, "boom", failed.ErrorMessage)
	assert.NotNil(t, failed.Events)
	assert.Equal(t, []string{}, failed.FormValues.Prefectures)
}

func TestCoordinate_MarshalRoundTrip(t *testing.T) {
	b, err := json.Marshal(NewCoordinate(35.5))
	require.NoError(t, err)
	assert.Equal(t, `"35.5"`, string(b))

	b, err = json.Marshal(Coordinate{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
