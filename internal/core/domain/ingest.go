package domain

import "time"

// IngestMetadata accompanies content submitted by a document source.
type IngestMetadata struct {
	// Title overrides the derived title.
	Title string

	// FileType is the declared type; derived from the path when empty.
	FileType string

	// ModifiedAt is the source modification time.
	ModifiedAt time.Time

	// Tags replace the stored tag set when non-nil.
	Tags []string
}

// IndexOutcome reports the result of indexing one path.
type IndexOutcome struct {
	// Path is the submitted path.
	Path string

	// DocumentID is the ID derived from Path.
	DocumentID string

	// Skipped is true when the stored checksum and provider already matched.
	Skipped bool

	// Chunks is the number of chunks written.
	Chunks int

	// Err is set when indexing this path failed.
	Err error
}

// OK reports whether the path was indexed or skipped without error.
func (o IndexOutcome) OK() bool {
	return o.Err == nil
}

// BatchReport summarises a batch ingestion.
type BatchReport struct {
	Outcomes []IndexOutcome
	Indexed  int
	Skipped  int
	Failed   int
	Removed  int
}

// Add records an outcome and updates the counters.
func (r *BatchReport) Add(o IndexOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch {
	case o.Err != nil:
		r.Failed++
	case o.Skipped:
		r.Skipped++
	default:
		r.Indexed++
	}
}

// ProviderChanged is emitted when the active embedding provider switches.
// Stored embeddings from From are no longer comparable with new queries.
type ProviderChanged struct {
	From string
	To   string
	At   time.Time
}

// IngestItem is one piece of content submitted for indexing.
type IngestItem struct {
	Path    string
	Content string
	Meta    IngestMetadata
}

// ReembedReport summarises one re-embedding job.
type ReembedReport struct {
	// JobID identifies the job in logs.
	JobID string

	// Provider is the provider the corpus was re-embedded with.
	Provider string

	// Total is the number of stale documents found.
	Total int

	// Done is the number of documents re-embedded.
	Done int

	// Failed is the number of documents that could not be re-embedded.
	Failed int
}
