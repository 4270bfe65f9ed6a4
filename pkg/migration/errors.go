package migration

import "fmt"

// PartialBatchError marks a card whose issue was created or verified but
// whose comments could not all be written. The run keeps going; the error is
// carried into the summary.
type PartialBatchError struct {
	IssueNumber    int
	FailedComments int
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("issue #%d: %d comments failed to migrate", e.IssueNumber, e.FailedComments)
}
