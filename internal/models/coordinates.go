package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a WGS84 position.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Coordinate holds a latitude or longitude exactly as loosely as the remote
// API sends it: a JSON number, a numeric string, an empty string or null.
type Coordinate struct {
	value float64
	valid bool
	raw   string
}

func NewCoordinate(v float64) Coordinate {
	return Coordinate{value: v, valid: !math.IsNaN(v) && !math.IsInf(v, 0), raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Float returns the numeric value and whether it is finite.
func (c Coordinate) Float() (float64, bool) {
	return c.value, c.valid
}

func (c Coordinate) String() string {
	return c.raw
}

// UnmarshalJSON never fails on odd input; unusable values just stay invalid
// so one bad record cannot poison the whole response.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	*c = Coordinate{}
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		c.parse(s)
	default:
		c.parse(string(data))
	}
	return nil
}

func (c *Coordinate) parse(s string) {
	s = strings.TrimSpace(s)
	c.raw = s
	if s == "" {
		return
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	c.value = v
	c.valid = true
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", strconv.FormatFloat(c.value, 'f', -1, 64))), nil
}
