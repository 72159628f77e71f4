package lifecycle

import "errors"

var (
	// ErrInvalidInput is returned when a case lacks the identifying data needed to classify it.
	ErrInvalidInput = errors.New("invalid case record")
	// ErrUnknownStage is returned for a stage value outside the fixed enumeration.
	ErrUnknownStage = errors.New("unknown lifecycle stage")
	// ErrInvalidTuning is returned by New when the demo tuning table is unusable.
	ErrInvalidTuning = errors.New("invalid demo tuning")
)
