package workflow

// NonRetryableError marks an activity failure a retry cannot fix: a
// duplicate slug, a provider-rejected subdomain, a policy violation.
// Workflow.Run responds to this by running compensation and returning
// river.JobCancel so the job is not retried.
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string { return e.Err.Error() }
func (e *NonRetryableError) Unwrap() error { return e.Err }

// RetryableError marks a transient activity failure (provider 5xx, network
// fault). Workflow.Run returns it bare; River retries the whole job with
// its configured backoff.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }
