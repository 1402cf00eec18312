package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/schema"
)

// DateTimeInput is the input of the get_datetime tool.
type DateTimeInput struct {
	FormatType string `json:"format_type"`
}

// Date/time layouts per format type. All times are UTC.
const (
	layoutFull = "2006-01-02 15:04:05 UTC"
	layoutDate = "2006-01-02"
	layoutTime = "15:04:05 UTC"
	layoutISO  = "2006-01-02T15:04:05.000000-07:00"
)

// NewDateTime creates the get_datetime tool.
func NewDateTime(opts ...Option) *reactqa.ToolFunc[DateTimeInput, string] {
	o := buildOptions("", opts)
	return reactqa.NewToolFunc(
		NameDateTime,
		"Get current date and time information",
		schema.Object(map[string]*schema.Property{
			"format_type": schema.String("Format type: 'full' (default), 'date', 'time', 'timestamp', or 'iso'").
				Enum("full", "date", "time", "timestamp", "iso").
				Default("full"),
		}),
		func(_ context.Context, in DateTimeInput) (string, error) {
			format := in.FormatType
			if format == "" {
				format = "full"
			}
			return fmt.Sprintf("Current datetime (%s): %s", format, FormatNow(o.clock, format)), nil
		},
	)
}

// FormatNow formats the clock's current UTC time for a format type. Unknown format
// types fall back to "full".
func FormatNow(clock reactqa.TimeProvider, formatType string) string {
	now := clock.Now().UTC()
	switch formatType {
	case "date":
		return now.Format(layoutDate)
	case "time":
		return now.Format(layoutTime)
	case "timestamp":
		return strconv.FormatInt(now.Unix(), 10)
	case "iso":
		return now.Format(layoutISO)
	default:
		return now.Format(layoutFull)
	}
}
