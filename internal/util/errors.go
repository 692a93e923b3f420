package util

import "errors"

var (
	ErrNoSession            = errors.New("No active session")
	ErrPasswordMismatch     = errors.New("Passwords do not match")
	ErrPasswordTooShort     = errors.New("Password must be at least 6 characters")
	ErrForbidden            = errors.New("permission denied")
	ErrOutlineNotReady      = errors.New("course outline is not loaded")
	ErrUnitNotFound         = errors.New("unit not found in outline")
	ErrModuleNotFound       = errors.New("module not found in outline")
	ErrNoActiveUnit         = errors.New("no unit selected")
	ErrUnitAlreadyCompleted = errors.New("unit already marked as read")
	ErrStaleResult          = errors.New("result superseded by a newer request")
	ErrUnansweredQuestions  = errors.New("Please answer all questions before submitting.")
	ErrNoQuizResult         = errors.New("Please complete the diagnostic quiz first.")
)
