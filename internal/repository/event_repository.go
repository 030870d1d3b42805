// Package repository はデータアクセス層の実装を提供する。
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

// EventModel はgorm用のモデル定義。シークレットは保存しない。
type EventModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Title       string    `gorm:"type:varchar(256);not null"`
	Tagline     string    `gorm:"type:varchar(256);not null"`
	Description string    `gorm:"type:text;not null"`
	StartTime   time.Time `gorm:"not null"`
	EndTime     time.Time `gorm:"not null"`
	Location    string    `gorm:"type:varchar(256);not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName はテーブル名を返す。
func (EventModel) TableName() string {
	return "events"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (e *EventModel) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *EventModel) toDomain() *domain.Event {
	return &domain.Event{
		ID:          e.ID,
		Title:       e.Title,
		Tagline:     e.Tagline,
		Description: e.Description,
		StartTime:   e.StartTime.UTC(),
		EndTime:     e.EndTime.UTC(),
		Location:    e.Location,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func newEventModel(event *domain.Event) *EventModel {
	return &EventModel{
		ID:          event.ID,
		Title:       event.Title,
		Tagline:     event.Tagline,
		Description: event.Description,
		StartTime:   event.StartTime.UTC(),
		EndTime:     event.EndTime.UTC(),
		Location:    event.Location,
		CreatedAt:   event.CreatedAt,
	}
}

// AutoMigrate はローカル開発用にテーブルを作成する。本番は migrations/ を使う。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&EventModel{}, &RSVPModel{})
}

// EventRepository はイベントのデータアクセスを提供する。
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository は新しいEventRepositoryを生成する。
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを保存し、採番されたIDとタイムスタンプを反映する。
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	model := newEventModel(event)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create event",
			"operation", "create_event",
			"error", err,
		)
		return err
	}
	event.ID = model.ID
	event.CreatedAt = model.CreatedAt
	event.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID はイベントを取得する。存在しない場合は nil, nil を返す。
func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var model EventModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find event",
			"operation", "find_event_by_id",
			"event_id", id.String(),
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// Update はイベントの内容を更新する。
func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	model := newEventModel(event)
	model.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).
		Model(&EventModel{ID: event.ID}).
		Select("Title", "Tagline", "Description", "StartTime", "EndTime", "Location", "UpdatedAt").
		Updates(model).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to update event",
			"operation", "update_event",
			"event_id", event.ID.String(),
			"error", err,
		)
		return err
	}
	event.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete はイベントと紐づくRSVPを削除する。
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&RSVPModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&EventModel{}).Error
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete event",
			"operation", "delete_event",
			"event_id", id.String(),
			"error", err,
		)
		return err
	}
	return nil
}
