package analysis

import "errors"

var (
	// ErrAnalysisFailed is the only failure callers of an analysis ever see. The
	// cause (network, provider, parse) is logged where it happens.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrAnalysisInProgress is returned while another analysis is still running.
	ErrAnalysisInProgress = errors.New("analysis already in progress")

	ErrNotReady      = errors.New("workspace not ready")
	ErrNothingToSave = errors.New("no analysis result to save")
	ErrEntryNotFound = errors.New("saved entry not found")
)
