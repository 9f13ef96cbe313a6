// Package timex provides a time type that serializes as a local datetime string
package timex

import (
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
)

const layout = "2006-01-02 15:04:05"

// Time 按 "2006-01-02 15:04:05" 序列化的时间
type Time time.Time

func (t Time) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte(`""`), nil
	}
	b := make([]byte, 0, len(layout)+2)
	b = append(b, '"')
	b = tt.AppendFormat(b, layout)
	b = append(b, '"')
	return b, nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `""` || s == "null" {
		*t = Time{}
		return nil
	}
	tt, err := time.ParseInLocation(`"`+layout+`"`, s, time.Local)
	if err != nil {
		return errors.Wrap(err, "timex: parse")
	}
	*t = Time(tt)
	return nil
}

func (t Time) Value() (driver.Value, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return nil, nil
	}
	return tt, nil
}

func (t *Time) Scan(v any) error {
	switch value := v.(type) {
	case time.Time:
		*t = Time(value)
	case nil:
		*t = Time{}
	default:
		return errors.Errorf("timex: cannot scan %T", v)
	}
	return nil
}

func (t Time) String() string {
	return time.Time(t).Format(layout)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}
