package speech

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/samber/lo"
)

// ticks are 100ns units
const ticksPerSecond = 1e7

var isoDuration = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

type resultHeader struct {
	DurationMilliseconds *float64 `json:"durationMilliseconds"`
	DurationInTicks      *float64 `json:"durationInTicks"`
	Duration             string   `json:"duration"`
}

// DurationSeconds returns the audio length reported in a result payload, or 0
func (r Result) DurationSeconds() float64 {
	var h resultHeader
	if err := json.Unmarshal(r.Raw, &h); err != nil {
		return 0
	}
	switch {
	case h.DurationMilliseconds != nil:
		return *h.DurationMilliseconds / 1000
	case h.DurationInTicks != nil:
		return *h.DurationInTicks / ticksPerSecond
	case h.Duration != "":
		return parseISODuration(h.Duration)
	}
	return 0
}

// TotalDurationSeconds sums the audio length of all results
func TotalDurationSeconds(results []Result) float64 {
	return lo.SumBy(results, Result.DurationSeconds)
}

func parseISODuration(s string) float64 {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	multipliers := []float64{86400, 3600, 60, 1}
	var total float64
	for i, mul := range multipliers {
		if m[i+1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return 0
		}
		total += v * mul
	}
	return total
}
