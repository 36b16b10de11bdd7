package slack

// Export internal functions and types for testing
var (
	// WithAPIURL is exported for testing against a local Slack API stub
	WithAPIURL = withAPIURL
)
