package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NutritionTargets holds the daily macro targets a coach sets on a budget.
// All values are per-day. Fiber is optional; zero means "not set".
type NutritionTargets struct {
	Calories float64 `bson:"calories" json:"calories"`
	Protein  float64 `bson:"protein" json:"protein"`
	Carbs    float64 `bson:"carbs" json:"carbs"`
	Fat      float64 `bson:"fat" json:"fat"`
	Fiber    float64 `bson:"fiber,omitempty" json:"fiber,omitempty"`
}

// Validate rejects negative macro values. Zero is allowed (unset).
func (t NutritionTargets) Validate() error {
	if t.Calories < 0 || t.Protein < 0 || t.Carbs < 0 || t.Fat < 0 || t.Fiber < 0 {
		return ErrNegativeTargets
	}
	return nil
}

// SupplementItem is one entry in a budget's ordered supplement protocol.
type SupplementItem struct {
	Name   string `bson:"name" json:"name"`
	Dosage string `bson:"dosage,omitempty" json:"dosage,omitempty"` // e.g. "5g daily"
	Timing string `bson:"timing,omitempty" json:"timing,omitempty"` // e.g. "morning, with food"
	Link   string `bson:"link,omitempty" json:"link,omitempty"`     // optional product link
}

// CardioTraining describes one steady-state cardio prescription on a budget.
type CardioTraining struct {
	Name            string `bson:"name" json:"name"`
	DurationMinutes int    `bson:"durationMinutes" json:"durationMinutes"`
	WorkoutsPerWeek int    `bson:"workoutsPerWeek" json:"workoutsPerWeek"`
	PeriodType      string `bson:"periodType,omitempty" json:"periodType,omitempty"` // e.g. "weekly"
	Notes           string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// IntervalTraining describes one interval prescription on a budget.
type IntervalTraining struct {
	ActivityType            string `bson:"activityType" json:"activityType"`
	ActivityDurationSeconds int    `bson:"activityDurationSeconds" json:"activityDurationSeconds"`
	RestDurationSeconds     int    `bson:"restDurationSeconds" json:"restDurationSeconds"`
	Sets                    int    `bson:"sets" json:"sets"`
	WorkoutsPerWeek         int    `bson:"workoutsPerWeek" json:"workoutsPerWeek"`
	Notes                   string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Budget is the action-plan template a coach maintains for a client: nutrition
// targets, step goals, supplement protocol and cardio/interval prescriptions.
// It is the source of truth; per-client plan rows are derived copies kept in
// sync by the plan synchronizer.
type Budget struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	NutritionTargets NutritionTargets `bson:"nutritionTargets" json:"nutritionTargets"`

	StepsGoal         int    `bson:"stepsGoal,omitempty" json:"stepsGoal,omitempty"`
	StepsMin          *int   `bson:"stepsMin,omitempty" json:"stepsMin,omitempty"`
	StepsMax          *int   `bson:"stepsMax,omitempty" json:"stepsMax,omitempty"`
	StepsInstructions string `bson:"stepsInstructions,omitempty" json:"stepsInstructions,omitempty"`

	WorkoutTemplateID    *primitive.ObjectID `bson:"workoutTemplateId,omitempty" json:"workoutTemplateId,omitempty"`
	NutritionTemplateID  *primitive.ObjectID `bson:"nutritionTemplateId,omitempty" json:"nutritionTemplateId,omitempty"`
	SupplementTemplateID *primitive.ObjectID `bson:"supplementTemplateId,omitempty" json:"supplementTemplateId,omitempty"`

	Supplements []SupplementItem `bson:"supplements,omitempty" json:"supplements,omitempty"`

	EatingOrder string `bson:"eatingOrder,omitempty" json:"eatingOrder,omitempty"`
	EatingRules string `bson:"eatingRules,omitempty" json:"eatingRules,omitempty"`
	OtherNotes  string `bson:"otherNotes,omitempty" json:"otherNotes,omitempty"`

	CardioTraining   []CardioTraining   `bson:"cardioTraining,omitempty" json:"cardioTraining,omitempty"`
	IntervalTraining []IntervalTraining `bson:"intervalTraining,omitempty" json:"intervalTraining,omitempty"`

	IsPublic  bool      `bson:"isPublic" json:"isPublic"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

var ErrNegativeTargets = errors.New("nutrition targets must be non-negative")

// HasStepsRange reports whether the budget prescribes a min/max step range
// rather than a single goal. Both bounds must be present.
func (b *Budget) HasStepsRange() bool {
	return b.StepsMin != nil && b.StepsMax != nil
}
