package practice

import (
	"math"
	"time"

	"github.com/learnanything/practice-backend/internal/domain"
)

// SRSInput holds all data needed for a scheduling transition. Pure value, no
// side effects.
type SRSInput struct {
	Status          domain.CardStatus
	IntervalDays    int
	EaseFactor      float64
	LapseCount      int
	RepetitionCount int
	DifficultyTag   domain.DifficultyTag
	Grade           domain.ReviewGrade
	Now             time.Time
	Config          domain.SRSConfig
}

// Transition is a pure function. No DB, no context, no logger.
// All decisions are deterministic based on input parameters.
//
// Contract: a GOOD or EASY grade never decreases the interval, and the ease
// factor never drops below Config.MinEaseFactor.
func Transition(input SRSInput) domain.ScheduleParams {
	switch input.Grade {
	case domain.ReviewGradeAgain:
		return lapse(input)
	case domain.ReviewGradeHard:
		return answerHard(input)
	case domain.ReviewGradeGood:
		return answerGood(input)
	case domain.ReviewGradeEasy:
		return answerEasy(input)
	default:
		return answerGood(input)
	}
}

// lapse resets the card to LEARNING with a short re-queue delay instead of
// full day granularity, so a forgotten card comes back within the hour.
func lapse(input SRSInput) domain.ScheduleParams {
	due := input.Now.Add(input.Config.RelearnDelay)
	return domain.ScheduleParams{
		Status:          domain.CardStatusLearning,
		IntervalDays:    0,
		EaseFactor:      maxFloat(input.Config.MinEaseFactor, input.EaseFactor-input.Config.AgainEasePenalty),
		DueAt:           &due,
		LapseCount:      input.LapseCount + 1,
		RepetitionCount: 0,
	}
}

func answerHard(input SRSInput) domain.ScheduleParams {
	interval := maxInt(1, roundDays(float64(input.IntervalDays)*input.Config.HardIntervalFactor))
	ease := maxFloat(input.Config.MinEaseFactor, input.EaseFactor-input.Config.HardEasePenalty)
	return schedule(input, interval, ease)
}

func answerGood(input SRSInput) domain.ScheduleParams {
	var interval int
	if graduating(input) {
		interval = input.Config.FirstInterval(input.DifficultyTag)
	} else {
		interval = roundDays(float64(input.IntervalDays) * input.EaseFactor)
	}
	return schedule(input, interval, input.EaseFactor)
}

func answerEasy(input SRSInput) domain.ScheduleParams {
	var interval int
	if graduating(input) {
		interval = maxInt(input.Config.FirstInterval(input.DifficultyTag), input.Config.EasyInterval)
	} else {
		interval = roundDays(float64(input.IntervalDays) * input.EaseFactor * input.Config.EasyIntervalFactor)
	}
	return schedule(input, interval, input.EaseFactor+input.Config.EasyEaseBonus)
}

// graduating reports whether this is the first success since the card was
// created or last lapsed. The difficulty tag prior applies only here.
func graduating(input SRSInput) bool {
	return input.IntervalDays == 0
}

// schedule finalizes a successful transition: clamps the interval, moves the
// card to REVIEW, and sets the due time in whole days.
func schedule(input SRSInput, interval int, ease float64) domain.ScheduleParams {
	interval = maxInt(1, minInt(interval, input.Config.MaxIntervalDays))
	due := input.Now.Add(time.Duration(interval) * 24 * time.Hour)
	return domain.ScheduleParams{
		Status:          domain.CardStatusReview,
		IntervalDays:    interval,
		EaseFactor:      ease,
		DueAt:           &due,
		LapseCount:      input.LapseCount,
		RepetitionCount: input.RepetitionCount + 1,
	}
}

func roundDays(days float64) int {
	return int(math.Round(days))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
