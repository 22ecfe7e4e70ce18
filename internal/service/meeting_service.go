package service

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrMeetingAccessDenied = errors.New("access denied to this meeting")
)

// MeetingService schedules coach/client sessions.
type MeetingService interface {
	ScheduleMeeting(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error)
	GetCoachMeetings(ctx context.Context, coachID primitive.ObjectID) ([]domain.Meeting, error)
	UpdateMeeting(ctx context.Context, meeting *domain.Meeting, coachID primitive.ObjectID) error
	CancelMeeting(ctx context.Context, id, coachID primitive.ObjectID) error
}

// meetingService implements the MeetingService interface.
type meetingService struct {
	meetingRepo repository.MeetingRepository
}

// NewMeetingService creates a new instance of meetingService.
func NewMeetingService(meetingRepo repository.MeetingRepository) MeetingService {
	return &meetingService{meetingRepo: meetingRepo}
}

func (s *meetingService) ScheduleMeeting(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error) {
	if meeting.ScheduledAt.IsZero() {
		return nil, errors.New("meeting time is required")
	}
	if err := meeting.Client.Validate(); err != nil {
		return nil, err
	}
	if meeting.Kind == "" {
		meeting.Kind = domain.MeetingCheckIn
	}

	id, err := s.meetingRepo.Create(ctx, meeting)
	if err != nil {
		return nil, err
	}
	meeting.ID = id
	return meeting, nil
}

func (s *meetingService) GetCoachMeetings(ctx context.Context, coachID primitive.ObjectID) ([]domain.Meeting, error) {
	return s.meetingRepo.GetByCoachID(ctx, coachID)
}

func (s *meetingService) UpdateMeeting(ctx context.Context, meeting *domain.Meeting, coachID primitive.ObjectID) error {
	existing, err := s.meetingRepo.GetByID(ctx, meeting.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMeetingNotFound
		}
		return err
	}
	if existing.CoachID != coachID {
		return ErrMeetingAccessDenied
	}
	return s.meetingRepo.Update(ctx, meeting)
}

func (s *meetingService) CancelMeeting(ctx context.Context, id, coachID primitive.ObjectID) error {
	err := s.meetingRepo.Delete(ctx, id, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMeetingNotFound
	}
	return err
}
