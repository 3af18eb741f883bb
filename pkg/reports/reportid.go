package reports

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ReportID identifies a usage report at the hub. The hub assigns one when
// a report is first created and expects it back in the upload URL on
// every subsequent submission.
type ReportID struct {
	value uuid.UUID
}

// NewReportID generates a random report ID.
func NewReportID() ReportID {
	return ReportID{value: uuid.New()}
}

// ParseReportID parses a report ID from its string form, e.g.
// "5a6a8f18-b935-47b6-8577-6c66919a4e44".
func ParseReportID(s string) (ReportID, error) {
	if s == "" {
		return ReportID{}, ErrMissingReportID
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ReportID{}, fmt.Errorf("invalid report ID %q: %w", s, err)
	}
	return ReportID{value: u}, nil
}

// MustParseReportID parses a report ID, panicking on error. Useful for
// test fixtures where the ID is known valid.
func MustParseReportID(s string) ReportID {
	id, err := ParseReportID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical lowercase hyphenated form.
func (id ReportID) String() string {
	return id.value.String()
}

// IsZero returns true for the zero report ID.
func (id ReportID) IsZero() bool {
	return id.value == uuid.Nil
}

// MarshalJSON implements json.Marshaler.
func (id ReportID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(id.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ReportID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("report ID must be a string: %w", err)
	}
	if s == "" || s == "null" {
		*id = ReportID{}
		return nil
	}
	parsed, err := ParseReportID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
