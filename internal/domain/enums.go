package domain

// CardStatus represents the scheduling state of a card.
type CardStatus string

const (
	CardStatusNew       CardStatus = "NEW"
	CardStatusLearning  CardStatus = "LEARNING"
	CardStatusReview    CardStatus = "REVIEW"
	CardStatusSuspended CardStatus = "SUSPENDED"
)

func (s CardStatus) String() string { return string(s) }

func (s CardStatus) IsValid() bool {
	switch s {
	case CardStatusNew, CardStatusLearning, CardStatusReview, CardStatusSuspended:
		return true
	}
	return false
}

// DifficultyTag is the creation-time difficulty prior assigned by the
// content collaborator. It influences only the first review interval.
type DifficultyTag string

const (
	DifficultyTagEasy   DifficultyTag = "EASY"
	DifficultyTagMedium DifficultyTag = "MEDIUM"
	DifficultyTagHard   DifficultyTag = "HARD"
)

func (t DifficultyTag) String() string { return string(t) }

func (t DifficultyTag) IsValid() bool {
	switch t {
	case DifficultyTagEasy, DifficultyTagMedium, DifficultyTagHard:
		return true
	}
	return false
}

// ReviewGrade represents the learner's self-assessed recall quality.
type ReviewGrade string

const (
	ReviewGradeAgain ReviewGrade = "AGAIN"
	ReviewGradeHard  ReviewGrade = "HARD"
	ReviewGradeGood  ReviewGrade = "GOOD"
	ReviewGradeEasy  ReviewGrade = "EASY"
)

func (g ReviewGrade) String() string { return string(g) }

func (g ReviewGrade) IsValid() bool {
	switch g {
	case ReviewGradeAgain, ReviewGradeHard, ReviewGradeGood, ReviewGradeEasy:
		return true
	}
	return false
}

// IsSuccess reports whether the grade counts toward accuracy.
func (g ReviewGrade) IsSuccess() bool {
	return g == ReviewGradeGood || g == ReviewGradeEasy
}

// SessionStatus represents the state of a practice session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusAbandoned SessionStatus = "ABANDONED"
)

func (s SessionStatus) String() string { return string(s) }

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusActive, SessionStatusCompleted, SessionStatusAbandoned:
		return true
	}
	return false
}

// IsTerminal reports whether the session accepts no further transitions.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusAbandoned
}
