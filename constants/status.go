package constants

// JobStatus is the canonical status for rows in price_list_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusPending    JobStatus = "pending"    // waiting for a worker
	JobStatusProcessing JobStatus = "processing" // claimed by a worker
	JobStatusProcessed  JobStatus = "processed"  // items stored
	JobStatusError      JobStatus = "error"      // terminal failure
)

// Valid reports whether s is one of the stored status values.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusProcessed, JobStatusError:
		return true
	}
	return false
}

// Item defaults stamped on every stored price-list row.
const (
	DefaultVATPercent   = 10.0
	DefaultWastePercent = 0.0
)
