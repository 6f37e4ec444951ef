// Package timex contains time helpers shared by the server: a JSON-friendly
// duration and calendar-day arithmetic in a configured location.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration wraps time.Duration so config files can say "15m" as well as a
// raw nanosecond count.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		return err
	default:
		return errors.New("invalid duration")
	}
}
