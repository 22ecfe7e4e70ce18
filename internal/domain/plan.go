package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType names the four per-client plan collections derived from a budget.
type PlanType string

const (
	PlanWorkout    PlanType = "workout"
	PlanNutrition  PlanType = "nutrition"
	PlanSteps      PlanType = "steps"
	PlanSupplement PlanType = "supplement"
)

// PlanTypes lists all plan types in fallback-resolution priority order:
// workout first, supplements last.
var PlanTypes = []PlanType{PlanWorkout, PlanNutrition, PlanSteps, PlanSupplement}

// PlanMeta carries the fields common to every plan row. BudgetID is a
// back-reference to the budget the row was derived from, not ownership; a
// directly edited plan may drift from its budget until the next sync.
type PlanMeta struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BudgetID  *primitive.ObjectID `bson:"budgetId,omitempty" json:"budgetId,omitempty"`
	Client    ClientRef           `bson:"client,inline" json:"client"`
	CoachID   primitive.ObjectID  `bson:"coachId" json:"coachId"`
	IsActive  bool                `bson:"isActive" json:"isActive"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutDay is one training day inside a workout plan's weekly structure.
type WorkoutDay struct {
	Name      string   `bson:"name" json:"name"` // e.g. "Day 1: Upper Body"
	DayOfWeek *int     `bson:"dayOfWeek,omitempty" json:"dayOfWeek,omitempty"`
	Exercises []string `bson:"exercises,omitempty" json:"exercises,omitempty"`
	Notes     string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutPlan is a client's weekly workout structure. Its content is managed
// through its own editor, not propagated from the budget; budget-level sync
// only creates the initial blank row.
type WorkoutPlan struct {
	PlanMeta `bson:",inline"`
	Name     string       `bson:"name,omitempty" json:"name,omitempty"`
	Days     []WorkoutDay `bson:"days,omitempty" json:"days,omitempty"`
	Notes    string       `bson:"notes,omitempty" json:"notes,omitempty"`
}

// NutritionPlan holds a client's macro targets as an open document. Known
// target keys mirror NutritionTargets; any other keys (calculator inputs,
// manual-override flags) belong to the client row alone and must survive a
// budget sync, so sync merges into this map instead of replacing it.
type NutritionPlan struct {
	PlanMeta    `bson:",inline"`
	Targets     map[string]any `bson:"targets" json:"targets"`
	EatingOrder string         `bson:"eatingOrder,omitempty" json:"eatingOrder,omitempty"`
	EatingRules string         `bson:"eatingRules,omitempty" json:"eatingRules,omitempty"`
}

// StepsPlan holds a client's daily step goal, either a single goal or a
// min/max range when the budget prescribes both bounds.
type StepsPlan struct {
	PlanMeta     `bson:",inline"`
	Goal         int    `bson:"goal,omitempty" json:"goal,omitempty"`
	Min          *int   `bson:"min,omitempty" json:"min,omitempty"`
	Max          *int   `bson:"max,omitempty" json:"max,omitempty"`
	Instructions string `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// SupplementPlan holds a client's supplement protocol.
type SupplementPlan struct {
	PlanMeta    `bson:",inline"`
	Supplements []SupplementItem `bson:"supplements" json:"supplements"`
}
