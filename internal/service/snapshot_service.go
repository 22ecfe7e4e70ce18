package service

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/repository"
	"coachdesk/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrSnapshotNotFound    = errors.New("snapshot not found")
	ErrSnapshotNotArchived = errors.New("snapshot has no archived document")
)

// SnapshotService captures immutable point-in-time copies of budgets for
// audit display and archives the JSON document to object storage.
type SnapshotService interface {
	CaptureSnapshot(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) (*domain.ActionPlanSnapshot, error)
	GetClientSnapshots(ctx context.Context, client domain.ClientRef) ([]domain.ActionPlanSnapshot, error)
	// SnapshotDownloadURL returns a temporary URL for the archived document.
	SnapshotDownloadURL(ctx context.Context, snapshotID primitive.ObjectID) (string, error)
}

// snapshotService implements the SnapshotService interface.
type snapshotService struct {
	snapshotRepo repository.SnapshotRepository
	budgetRepo   repository.BudgetRepository
	store        storage.ObjectStore
	logger       *zap.Logger
}

// NewSnapshotService creates a new instance of snapshotService.
func NewSnapshotService(
	snapshotRepo repository.SnapshotRepository,
	budgetRepo repository.BudgetRepository,
	store storage.ObjectStore,
	logger *zap.Logger,
) SnapshotService {
	return &snapshotService{
		snapshotRepo: snapshotRepo,
		budgetRepo:   budgetRepo,
		store:        store,
		logger:       logger,
	}
}

// CaptureSnapshot copies the budget's current state into an immutable row and
// archives the document. Archiving is best-effort: if the upload fails the
// snapshot row is still written, just without an object key.
func (s *snapshotService) CaptureSnapshot(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) (*domain.ActionPlanSnapshot, error) {
	if err := client.Validate(); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByID(ctx, budgetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}

	snapshot := &domain.ActionPlanSnapshot{
		Client: client,
		Budget: *budget,
	}

	if doc, err := json.Marshal(snapshot); err == nil {
		objectKey := path.Join("snapshots", client.Key(), fmt.Sprintf("%s.json", uuid.NewString()))
		if err := s.store.PutObject(ctx, objectKey, "application/json", doc); err != nil {
			s.logger.Warn("snapshot archive upload failed",
				zap.String("budgetId", budgetID.Hex()), zap.Error(err))
		} else {
			snapshot.ObjectKey = objectKey
		}
	}

	snapshotID, err := s.snapshotRepo.Create(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	snapshot.ID = snapshotID
	return snapshot, nil
}

// GetClientSnapshots lists a client's snapshot history, newest first.
func (s *snapshotService) GetClientSnapshots(ctx context.Context, client domain.ClientRef) ([]domain.ActionPlanSnapshot, error) {
	if err := client.Validate(); err != nil {
		return nil, err
	}
	return s.snapshotRepo.GetByClient(ctx, client)
}

// SnapshotDownloadURL generates a temporary URL for the archived document.
func (s *snapshotService) SnapshotDownloadURL(ctx context.Context, snapshotID primitive.ObjectID) (string, error) {
	snapshot, err := s.snapshotRepo.GetByID(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrSnapshotNotFound
		}
		return "", err
	}
	if snapshot.ObjectKey == "" {
		return "", ErrSnapshotNotArchived
	}

	return s.store.GeneratePresignedDownloadURL(ctx, snapshot.ObjectKey, storage.DefaultPresignedURLExpiry)
}
