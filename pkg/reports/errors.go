package reports

import "errors"

var (
	// ErrMissingToken is returned by NewSubmitter when no bearer token
	// was provided. The hub rejects anonymous uploads, so there is no
	// point constructing a submitter without one.
	ErrMissingToken = errors.New("reports: missing bearer token")

	// ErrMissingReportID is returned by Submit when the report ID is
	// zero. The upload URL embeds the ID, so a missing one can never
	// succeed.
	ErrMissingReportID = errors.New("reports: missing report ID")
)
