package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/metrics"
	"house_admin/internal/model"

	"go.uber.org/zap"
)

// Outcome describes what a sync did to the member table.
type Outcome string

const (
	OutcomeNoRecord   Outcome = "no_record"
	OutcomeNoHouse    Outcome = "no_house_group"
	OutcomeSkipped    Outcome = "expired_absent"
	OutcomeRemoved    Outcome = "removed"
	OutcomeCreated    Outcome = "created"
	OutcomeUpdated    Outcome = "updated"
	OutcomeMoved      Outcome = "moved"
	OutcomeHouseFull  Outcome = "house_full"
	OutcomeStoreError Outcome = "error"
)

// Changed reports whether the member table was written.
func (o Outcome) Changed() bool {
	switch o {
	case OutcomeRemoved, OutcomeCreated, OutcomeUpdated, OutcomeMoved:
		return true
	}
	return false
}

// Reconciler keeps the member table a projection of the latest intake
// record per email.
type Reconciler struct {
	logger  *zap.Logger
	Intake  domain.IntakeRepo
	Houses  domain.HouseRepo
	Members domain.MemberRepo
	metrics *metrics.SyncMetrics
	now     func() time.Time
}

func NewReconciler(intake domain.IntakeRepo, houses domain.HouseRepo, members domain.MemberRepo, m *metrics.SyncMetrics, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		logger:  logger,
		Intake:  intake,
		Houses:  houses,
		Members: members,
		metrics: m,
		now:     time.Now,
	}
}

// SetClock replaces the clock used to decide expiration.
func (r *Reconciler) SetClock(now func() time.Time) {
	r.now = now
}

// SyncMembershipByEmail projects the latest intake record of email onto the
// member table. Missing records and records without a house group are
// no-ops.
func (r *Reconciler) SyncMembershipByEmail(ctx context.Context, email string) (Outcome, error) {
	latest, err := r.Intake.LatestIntakeByEmail(ctx, email)
	if err != nil {
		return r.finish(email, OutcomeStoreError, fmt.Errorf("load latest intake: %w", err))
	}
	if latest == nil {
		return r.finish(email, OutcomeNoRecord, nil)
	}
	if !latest.HasHouseGroup() {
		return r.finish(email, OutcomeNoHouse, nil)
	}
	return r.ApplyIntake(ctx, *latest)
}

// ApplyIntake creates, updates, moves or removes the member row for the
// record's email. The caller passes the record that should drive the
// projection; records without email or house group are ignored.
func (r *Reconciler) ApplyIntake(ctx context.Context, record model.IntakeRecord) (Outcome, error) {
	email := record.Email
	if email == "" {
		return r.finish(email, OutcomeNoRecord, nil)
	}
	if !record.HasHouseGroup() {
		return r.finish(email, OutcomeNoHouse, nil)
	}

	house, err := r.resolveHouse(ctx, strings.TrimSpace(record.HouseGroup))
	if err != nil {
		return r.finish(email, OutcomeStoreError, err)
	}

	existing, err := r.Members.FindMemberByEmail(ctx, email)
	if err != nil {
		return r.finish(email, OutcomeStoreError, fmt.Errorf("find member: %w", err))
	}

	expiration := model.DateOnlyPtr(record.ExpirationDate)
	active := model.IsActiveOn(expiration, r.now())

	switch {
	case !active && existing == nil:
		return r.finish(email, OutcomeSkipped, nil)

	case !active:
		if err := r.Members.DeleteMember(ctx, existing.ID); err != nil {
			return r.finish(email, OutcomeStoreError, fmt.Errorf("remove expired member %d: %w", existing.ID, err))
		}
		r.logger.Info("expired member removed",
			zap.String("email", email),
			zap.Uint("member_id", existing.ID),
			zap.Uint("house_id", existing.HouseID),
		)
		return r.finish(email, OutcomeRemoved, nil)

	case existing == nil:
		member := model.NewMember{
			HouseID:        house.ID,
			MemberEmail:    email,
			ExpirationDate: expiration,
			IsActive:       &active,
			LineID:         record.LineID,
		}.Member()
		if err := r.Members.InsertMember(ctx, &member); err != nil {
			return r.failWrite(email, house, err)
		}
		r.logger.Info("member created",
			zap.String("email", email),
			zap.Uint("member_id", member.ID),
			zap.String("house", house.HouseNumber),
		)
		return r.finish(email, OutcomeCreated, nil)
	}

	patch := model.MemberPatch{
		ExpirationDate: &expiration,
		IsActive:       &active,
	}
	outcome := OutcomeUpdated
	if existing.HouseID != house.ID {
		patch.HouseID = &house.ID
		outcome = OutcomeMoved
	}
	if _, err := r.Members.UpdateMember(ctx, existing.ID, patch); err != nil {
		return r.failWrite(email, house, err)
	}
	if outcome == OutcomeMoved {
		r.logger.Info("member moved",
			zap.String("email", email),
			zap.Uint("member_id", existing.ID),
			zap.Uint("from_house_id", existing.HouseID),
			zap.String("to_house", house.HouseNumber),
		)
	}
	return r.finish(email, outcome, nil)
}

// resolveHouse finds the house by number and creates an active one when it
// does not exist yet.
func (r *Reconciler) resolveHouse(ctx context.Context, number string) (*model.House, error) {
	house, err := r.Houses.FindHouseByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("find house %q: %w", number, err)
	}
	if house != nil {
		return house, nil
	}

	house = &model.House{HouseNumber: number, Status: model.HouseStatusActive}
	err = r.Houses.InsertHouse(ctx, house)
	if errors.Is(err, domain.ErrHouseExists) {
		// created by a concurrent sync
		house, err = r.Houses.FindHouseByNumber(ctx, number)
		if err == nil && house == nil {
			err = domain.ErrNotFound
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create house %q: %w", number, err)
	}
	r.logger.Info("house created from intake", zap.String("house", number), zap.Uint("house_id", house.ID))
	return house, nil
}

// failWrite classifies a failed seat write. The capacity error already names
// the house, so it is passed through unwrapped.
func (r *Reconciler) failWrite(email string, house *model.House, err error) (Outcome, error) {
	if domain.IsCapacity(err) {
		return r.finish(email, OutcomeHouseFull, err)
	}
	return r.finish(email, OutcomeStoreError, fmt.Errorf("write member in house %s: %w", house.HouseNumber, err))
}

func (r *Reconciler) finish(email string, outcome Outcome, err error) (Outcome, error) {
	r.metrics.Observe(string(outcome))
	if err != nil {
		r.logger.Warn("membership sync failed",
			zap.String("email", email),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
		return outcome, err
	}
	r.logger.Debug("membership synced", zap.String("email", email), zap.String("outcome", string(outcome)))
	return outcome, nil
}
