package domain

import "time"

// Question is one assessment item. CorrectIndex points into Options;
// Explanation is revealed only after the second incorrect attempt.
type Question struct {
	ID           int      `json:"id" bson:"id"`
	Text         string   `json:"text" bson:"text"`
	Options      []string `json:"options" bson:"options"`
	CorrectIndex int      `json:"correctIndex" bson:"correctIndex"`
	Explanation  string   `json:"explanation" bson:"explanation"`
}

// QuestionBank is the full pool a session draws from.
type QuestionBank struct {
	ID        string     `json:"id" bson:"_id"`
	Questions []Question `json:"questions" bson:"questions"`
}

// QuestionAttempt records how one presented question resolved.
// AttemptsUsed is 1 or 2; Correct is true only if the answer landed
// within the allowed attempts.
type QuestionAttempt struct {
	QuestionID   int  `json:"questionId" bson:"questionId"`
	AttemptsUsed int  `json:"attemptsUsed" bson:"attemptsUsed"`
	Correct      bool `json:"correct" bson:"correct"`
}

// TestResult is the single immutable artifact a completed session emits.
// Score is an integer percentage with equal per-question weight.
type TestResult struct {
	CompletedAt     time.Time         `json:"completedAt" bson:"completedAt"`
	Score           int               `json:"score" bson:"score"`
	Passed          bool              `json:"passed" bson:"passed"`
	QuestionDetails []QuestionAttempt `json:"questionDetails" bson:"questionDetails"`
}

// StaffMember is consumed, not owned: the result history lives in the
// external store. IntendsToContinue only affects reminder targeting.
type StaffMember struct {
	ID                string `json:"id" bson:"_id"`
	DisplayName       string `json:"displayName" bson:"displayName"`
	IntendsToContinue bool   `json:"intendsToContinue" bson:"intendsToContinue"`
}

// MemberHistory pairs a member with their full result history for batch evaluation.
type MemberHistory struct {
	Member  StaffMember
	Results []TestResult
}

// ComplianceStatus is an output-only view, recomputed from the result
// history on every call and never persisted.
type ComplianceStatus struct {
	Expired         bool       `json:"expired"`
	LastSuccessDate *time.Time `json:"lastSuccessDate"`
	LastScore       int        `json:"lastScore"`
}

// MemberCompliance annotates one member with their derived status.
type MemberCompliance struct {
	Member StaffMember      `json:"member"`
	Status ComplianceStatus `json:"status"`
}

// CertificateData is the shape handed to the certificate-issuance
// collaborator; rendering stays outside this service.
type CertificateData struct {
	StaffID     string    `json:"staffId"`
	DisplayName string    `json:"displayName"`
	Score       int       `json:"score"`
	AwardedAt   time.Time `json:"awardedAt"`
}
