package intake

import (
	"context"
	"strings"

	"house_admin/internal/domain"
	"house_admin/internal/model"
	"house_admin/internal/service/membership"

	"go.uber.org/zap"
)

type Syncer interface {
	SyncMembershipByEmail(ctx context.Context, email string) (membership.Outcome, error)
}

// Service writes intake records and re-projects membership after every write.
type Service struct {
	logger      *zap.Logger
	Repo        domain.IntakeRepo
	Sync        Syncer
	forceUpdate chan struct{}
}

// NewService builds the service. forceUpdate may be nil; when set it gets a
// non-blocking signal whenever a sync changed the member table.
func NewService(repo domain.IntakeRepo, sync Syncer, forceUpdate chan struct{}, logger *zap.Logger) *Service {
	return &Service{logger: logger, Repo: repo, Sync: sync, forceUpdate: forceUpdate}
}

func (s *Service) List(ctx context.Context) ([]model.IntakeRecord, error) {
	return s.Repo.ListIntake(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*model.IntakeRecord, error) {
	return s.Repo.GetIntake(ctx, id)
}

// Create stores the record and syncs membership for its email. When only the
// sync fails, the stored record is returned together with a *domain.SyncError.
func (s *Service) Create(ctx context.Context, record model.IntakeRecord) (*model.IntakeRecord, error) {
	record.ID = 0
	record.Email = strings.TrimSpace(record.Email)
	record.HouseGroup = strings.TrimSpace(record.HouseGroup)
	if err := validate(record.Channel, record.CancelledOrMoved, record.SyncStatus); err != nil {
		return nil, err
	}
	if err := s.Repo.InsertIntake(ctx, &record); err != nil {
		return nil, err
	}
	s.logger.Info("intake record created", zap.Uint("id", record.ID), zap.String("email", record.Email))
	return s.afterWrite(ctx, record.ID)
}

// Update applies the patch, re-reads the record and syncs membership for its
// email. The sync failure contract matches Create.
func (s *Service) Update(ctx context.Context, id uint, patch model.IntakePatch) (*model.IntakeRecord, error) {
	if patch.Email != nil {
		trimmed := strings.TrimSpace(*patch.Email)
		patch.Email = &trimmed
	}
	if patch.HouseGroup != nil {
		trimmed := strings.TrimSpace(*patch.HouseGroup)
		patch.HouseGroup = &trimmed
	}
	var (
		channel   model.Channel
		lifecycle model.Lifecycle
		status    model.SyncStatus
	)
	if patch.Channel != nil {
		channel = *patch.Channel
	}
	if patch.CancelledOrMoved != nil {
		lifecycle = *patch.CancelledOrMoved
	}
	if patch.SyncStatus != nil {
		status = *patch.SyncStatus
	}
	if err := validate(channel, lifecycle, status); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateIntake(ctx, id, patch); err != nil {
		return nil, err
	}
	s.logger.Info("intake record updated", zap.Uint("id", id))
	return s.afterWrite(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteIntake(ctx, id); err != nil {
		return err
	}
	s.logger.Info("intake record deleted", zap.Uint("id", id))
	return nil
}

func (s *Service) afterWrite(ctx context.Context, id uint) (*model.IntakeRecord, error) {
	record, err := s.Repo.GetIntake(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Email == "" {
		return record, nil
	}

	outcome, syncErr := s.Sync.SyncMembershipByEmail(ctx, record.Email)
	status, note := syncResult(outcome, syncErr)
	if err := s.Repo.SetSyncResult(ctx, record.ID, status, note); err != nil {
		s.logger.Warn("failed to store sync result", zap.Uint("id", record.ID), zap.Error(err))
	} else {
		record.SyncStatus, record.SyncNote = status, note
	}

	if syncErr != nil {
		return record, &domain.SyncError{RecordID: record.ID, Email: record.Email, Err: syncErr}
	}
	if outcome.Changed() {
		s.notify()
	}
	return record, nil
}

func syncResult(outcome membership.Outcome, err error) (model.SyncStatus, string) {
	switch {
	case err != nil:
		return model.SyncStatusError, err.Error()
	case outcome == membership.OutcomeNoHouse:
		return model.SyncStatusPending, "waiting for house group"
	default:
		return model.SyncStatusOK, string(outcome)
	}
}

func (s *Service) notify() {
	if s.forceUpdate == nil {
		return
	}
	select {
	case s.forceUpdate <- struct{}{}:
	default:
	}
}

func validate(channel model.Channel, lifecycle model.Lifecycle, status model.SyncStatus) error {
	if !channel.Valid() {
		return domain.Invalidf("unknown channel %q", channel)
	}
	if !lifecycle.Valid() {
		return domain.Invalidf("unknown cancelled_or_moved value %q", lifecycle)
	}
	if status != "" && !status.Valid() {
		return domain.Invalidf("unknown sync status %q", status)
	}
	return nil
}
