package postgres

import (
	"context"
	"errors"

	"house_admin/internal/model"

	"gorm.io/gorm"
)

type IntakeRepository struct {
	DB *gorm.DB
}

func NewIntakeRepository(db *gorm.DB) *IntakeRepository {
	return &IntakeRepository{DB: db}
}

func (r *IntakeRepository) InsertIntake(ctx context.Context, record *model.IntakeRecord) error {
	if record.SyncStatus == "" {
		record.SyncStatus = model.SyncStatusPending
	}
	record.RegistrationDate = model.DateOnlyPtr(record.RegistrationDate)
	record.ExpirationDate = model.DateOnlyPtr(record.ExpirationDate)
	return r.DB.WithContext(ctx).Create(record).Error
}

func (r *IntakeRepository) GetIntake(ctx context.Context, id uint) (*model.IntakeRecord, error) {
	var record model.IntakeRecord
	if err := r.DB.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *IntakeRepository) ListIntake(ctx context.Context) ([]model.IntakeRecord, error) {
	var records []model.IntakeRecord
	if err := r.DB.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	model.SortForInbox(records)
	return records, nil
}

func (r *IntakeRepository) UpdateIntake(ctx context.Context, id uint, patch model.IntakePatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		_, err := r.GetIntake(ctx, id)
		return err
	}
	res := r.DB.WithContext(ctx).Model(&model.IntakeRecord{ID: id}).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		_, err := r.GetIntake(ctx, id)
		return err
	}
	return nil
}

func (r *IntakeRepository) DeleteIntake(ctx context.Context, id uint) error {
	return deleted(r.DB.WithContext(ctx).Delete(&model.IntakeRecord{}, id))
}

// LatestIntakeByEmail loads every record for the email and picks the newest
// with model.LatestIntake, so the tie-break does not depend on how the
// database sorts NULLs.
func (r *IntakeRepository) LatestIntakeByEmail(ctx context.Context, email string) (*model.IntakeRecord, error) {
	var records []model.IntakeRecord
	if err := r.DB.WithContext(ctx).Where("email = ?", email).Find(&records).Error; err != nil {
		return nil, err
	}
	latest, ok := model.LatestIntake(records)
	if !ok {
		return nil, nil
	}
	return &latest, nil
}

func (r *IntakeRepository) SetSyncResult(ctx context.Context, id uint, status model.SyncStatus, note string) error {
	if !status.Valid() {
		return errors.New("unknown sync status " + string(status))
	}
	return r.DB.WithContext(ctx).
		Model(&model.IntakeRecord{ID: id}).
		UpdateColumns(map[string]interface{}{"sync_status": status, "sync_note": note}).Error
}
