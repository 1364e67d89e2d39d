package domain

import "errors"

var (
	// ErrEmptyQuestionPool is returned when a session is started against an empty bank.
	ErrEmptyQuestionPool = errors.New("question pool is empty")
	// ErrSessionFinished is returned for answers submitted after the terminal state.
	ErrSessionFinished = errors.New("assessment session already finished")
	// ErrSessionActive is returned when the result is requested before the session finished.
	ErrSessionActive = errors.New("assessment session still in progress")
	// ErrContinueRequired is returned for answers submitted while an explanation is shown.
	ErrContinueRequired = errors.New("explanation must be acknowledged before continuing")
	// ErrInvalidOption indicates the selected option index is out of range.
	ErrInvalidOption = errors.New("selected option does not exist")
	// ErrInvalidResultRecord indicates a malformed history entry (e.g. missing timestamp).
	ErrInvalidResultRecord = errors.New("invalid test result record")
	// ErrSessionNotFound is returned when a session ID is unknown.
	ErrSessionNotFound = errors.New("assessment session not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrStaffNotFound indicates an unknown staff member.
	ErrStaffNotFound = errors.New("staff member not found")
	// ErrNotCertified is returned when certificate data is requested for a never-certified member.
	ErrNotCertified = errors.New("staff member has no passing result")
)
