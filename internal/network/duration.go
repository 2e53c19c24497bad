package network

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	isoduration "github.com/sosodev/duration"
)

// Duration is a time.Duration that decodes from either a number of seconds
// or an ISO-8601 duration string ("PT1H30M") and encodes as seconds.
type Duration time.Duration

// Seconds returns the duration in seconds.
func (d Duration) Seconds() float64 { return time.Duration(d).Seconds() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Seconds())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = 0
		return nil
	}

	var secs float64
	if err := json.Unmarshal(b, &secs); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	parsed, err := ParseISODuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// ParseISODuration parses an ISO-8601 duration such as "PT2H5M30.5S" or
// "P1W2D". Days are 24h and weeks 7 days. Years and months have no fixed
// length and are rejected.
func ParseISODuration(s string) (time.Duration, error) {
	d, err := isoduration.Parse(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	if d.Years != 0 || d.Months != 0 {
		return 0, fmt.Errorf("duration %q: years and months are not supported", s)
	}
	return d.ToTimeDuration(), nil
}
