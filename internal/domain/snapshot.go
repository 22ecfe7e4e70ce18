package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActionPlanSnapshot is an immutable point-in-time copy of a budget taken when
// the coach captures it, kept for historical/audit display. Budget is embedded
// by value so later edits to the live budget never affect the snapshot.
// ObjectKey points at the archived JSON document in object storage.
type ActionPlanSnapshot struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Client     ClientRef          `bson:"client,inline" json:"client"`
	Budget     Budget             `bson:"budget" json:"budget"`
	// Resolved template names at capture time, for display without extra lookups.
	WorkoutTemplateName   string    `bson:"workoutTemplateName,omitempty" json:"workoutTemplateName,omitempty"`
	NutritionTemplateName string    `bson:"nutritionTemplateName,omitempty" json:"nutritionTemplateName,omitempty"`
	ObjectKey             string    `bson:"objectKey,omitempty" json:"objectKey,omitempty"`
	CapturedAt            time.Time `bson:"capturedAt" json:"capturedAt"`
}
