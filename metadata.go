package trialplot

// Metadata is served to viewer pages at /metadata.
type Metadata struct {
	Title       string
	Format      Format
	ContentType string
	HistorySize int
}
