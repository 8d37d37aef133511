package loader

import "errors"

// The three failure kinds a Load can report. Every error returned by Load
// wraps exactly one of them, so callers can classify with errors.Is.
var (
	// ErrArchiveExtraction covers an unreadable or corrupt bundle, or any
	// entry that failed to stage.
	ErrArchiveExtraction = errors.New("archive extraction failed")
	// ErrWorkflowExtraction covers a missing or malformed description, and
	// linked payloads that are missing, unreadable, or misaligned.
	ErrWorkflowExtraction = errors.New("workflow extraction failed")
	// ErrScratchRemoval covers a scratch directory that survived an
	// otherwise successful load. It is never reported when an earlier
	// stage already failed; the first failure wins.
	ErrScratchRemoval = errors.New("scratch directory removal failed")
)

// Status is the coarse result code of one Load call.
type Status int

const (
	// StatusOK means the description is valid and the scratch state is gone.
	StatusOK Status = iota
	// StatusArchiveExtraction corresponds to ErrArchiveExtraction.
	StatusArchiveExtraction
	// StatusWorkflowExtraction corresponds to ErrWorkflowExtraction.
	StatusWorkflowExtraction
	// StatusScratchRemoval corresponds to ErrScratchRemoval.
	StatusScratchRemoval
)

// StatusOf classifies an error returned by Load. A nil error is StatusOK.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrArchiveExtraction):
		return StatusArchiveExtraction
	case errors.Is(err, ErrScratchRemoval):
		return StatusScratchRemoval
	default:
		// Load wraps every mid-pipeline failure in ErrWorkflowExtraction,
		// so anything unrecognized is classified as one.
		return StatusWorkflowExtraction
	}
}

// String returns a short machine-friendly name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusArchiveExtraction:
		return "archive-extraction-error"
	case StatusWorkflowExtraction:
		return "workflow-extraction-error"
	case StatusScratchRemoval:
		return "scratch-removal-error"
	default:
		return "unknown"
	}
}
