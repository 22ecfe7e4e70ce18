package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeetingKind distinguishes the usual coaching session types.
type MeetingKind string

const (
	MeetingIntro    MeetingKind = "intro"
	MeetingCheckIn  MeetingKind = "check_in"
	MeetingFollowUp MeetingKind = "follow_up"
)

// Meeting is a scheduled session between a coach and a client or lead.
type Meeting struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID         primitive.ObjectID `bson:"coachId" json:"coachId"`
	Client          ClientRef          `bson:"client,inline" json:"client"`
	Kind            MeetingKind        `bson:"kind" json:"kind"`
	ScheduledAt     time.Time          `bson:"scheduledAt" json:"scheduledAt"`
	DurationMinutes int                `bson:"durationMinutes" json:"durationMinutes"`
	Location        string             `bson:"location,omitempty" json:"location,omitempty"` // or meeting URL
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
