package quote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/safar/go-b2b-store/internal/apperr"
)

const dateLayout = "2006-01-02"

// Date is a requested delivery date. It decodes from a full RFC 3339
// timestamp or a bare calendar date, which is taken as midnight UTC.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("delivery_date must be a string: %w", apperr.ErrInvalidInput)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("delivery_date %q: %w", s, apperr.ErrInvalidInput)
}

// TimePtr returns nil for a nil or empty date.
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
