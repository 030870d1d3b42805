package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"event-rsvp-service/internal/domain"
)

// RSVPModel はgorm用のモデル定義。
type RSVPModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	EventID   uuid.UUID `gorm:"type:char(36);not null;index:idx_rsvps_event_id"`
	Name      string    `gorm:"type:varchar(60);not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName はテーブル名を返す。
func (RSVPModel) TableName() string {
	return "rsvps"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (m *RSVPModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *RSVPModel) toDomain() *domain.RSVP {
	return &domain.RSVP{
		ID:        m.ID,
		EventID:   m.EventID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// RSVPRepository はRSVPのデータアクセスを提供する。
type RSVPRepository struct {
	db *gorm.DB
}

// NewRSVPRepository は新しいRSVPRepositoryを生成する。
func NewRSVPRepository(db *gorm.DB) *RSVPRepository {
	return &RSVPRepository{db: db}
}

// Create は新しいRSVPを保存する。
func (r *RSVPRepository) Create(ctx context.Context, rsvp *domain.RSVP) error {
	model := &RSVPModel{
		ID:      rsvp.ID,
		EventID: rsvp.EventID,
		Name:    rsvp.Name,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create rsvp",
			"operation", "create_rsvp",
			"event_id", rsvp.EventID.String(),
			"error", err,
		)
		return err
	}
	rsvp.ID = model.ID
	rsvp.CreatedAt = model.CreatedAt
	rsvp.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID はRSVPを取得する。存在しない場合は nil, nil を返す。
func (r *RSVPRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.RSVP, error) {
	var model RSVPModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find rsvp",
			"operation", "find_rsvp_by_id",
			"rsvp_id", id.String(),
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// FindAllByEventID はイベントのRSVPを作成順に取得する。
func (r *RSVPRepository) FindAllByEventID(ctx context.Context, eventID uuid.UUID) ([]*domain.RSVP, error) {
	var models []RSVPModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to find rsvps by event_id",
			"operation", "find_all_rsvps_by_event_id",
			"event_id", eventID.String(),
			"error", err,
		)
		return nil, err
	}

	rsvps := make([]*domain.RSVP, len(models))
	for i := range models {
		rsvps[i] = models[i].toDomain()
	}
	return rsvps, nil
}

// UpdateName はRSVPの名前を更新する。
func (r *RSVPRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	err := r.db.WithContext(ctx).
		Model(&RSVPModel{}).
		Where("id = ?", id).
		Update("name", name).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to update rsvp",
			"operation", "update_rsvp_name",
			"rsvp_id", id.String(),
			"error", err,
		)
		return err
	}
	return nil
}

// Delete はRSVPを削除する。
func (r *RSVPRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RSVPModel{}).Error; err != nil {
		slog.ErrorContext(ctx, "failed to delete rsvp",
			"operation", "delete_rsvp",
			"rsvp_id", id.String(),
			"error", err,
		)
		return err
	}
	return nil
}
