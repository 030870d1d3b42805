// Package usecase はアプリケーションのユースケースを実装する。
package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"event-rsvp-service/internal/domain"
)

// EventRepository はイベントのデータアクセスのインターフェース。
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RSVPRepository はRSVPのデータアクセスのインターフェース。
type RSVPRepository interface {
	Create(ctx context.Context, rsvp *domain.RSVP) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.RSVP, error)
	FindAllByEventID(ctx context.Context, eventID uuid.UUID) ([]*domain.RSVP, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventService はイベントとRSVPに関するビジネスロジックを提供する。
// 所有確認は呼び出し側（ハンドラ）が変更操作の前に行う。
type EventService struct {
	events EventRepository
	rsvps  RSVPRepository
}

// NewEventService は新しいEventServiceを生成する。
func NewEventService(events EventRepository, rsvps RSVPRepository) *EventService {
	return &EventService{
		events: events,
		rsvps:  rsvps,
	}
}

// CreateEvent は新しいイベントを作成する。IDは保存時に採番される。
func (s *EventService) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	event := &domain.Event{}
	event.Apply(in)
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return event, nil
}

// GetEvent はイベントを取得する。
func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

// UpdateEvent はイベントの内容を置き換える。
func (s *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, in domain.EventInput) (*domain.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Apply(in)
	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}
	return event, nil
}

// DeleteEvent はイベントとそのRSVPを削除する。
func (s *EventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// CreateRSVP はイベントにRSVPを追加する。
func (s *EventService) CreateRSVP(ctx context.Context, eventID uuid.UUID, name string) (*domain.RSVP, error) {
	if err := domain.ValidateRSVPName(name); err != nil {
		return nil, err
	}
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	rsvp := &domain.RSVP{EventID: eventID, Name: name}
	if err := s.rsvps.Create(ctx, rsvp); err != nil {
		return nil, fmt.Errorf("creating rsvp: %w", err)
	}
	return rsvp, nil
}

// GetRSVP はRSVPを取得する。
func (s *EventService) GetRSVP(ctx context.Context, id uuid.UUID) (*domain.RSVP, error) {
	rsvp, err := s.rsvps.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding rsvp: %w", err)
	}
	if rsvp == nil {
		return nil, domain.ErrRSVPNotFound
	}
	return rsvp, nil
}

// ListRSVPs はイベントのRSVP一覧を取得する。
func (s *EventService) ListRSVPs(ctx context.Context, eventID uuid.UUID) ([]*domain.RSVP, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rsvps, err := s.rsvps.FindAllByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("finding rsvps: %w", err)
	}
	return rsvps, nil
}

// UpdateRSVP はRSVPの名前を変更する。
func (s *EventService) UpdateRSVP(ctx context.Context, id uuid.UUID, name string) (*domain.RSVP, error) {
	if err := domain.ValidateRSVPName(name); err != nil {
		return nil, err
	}
	rsvp, err := s.GetRSVP(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.rsvps.UpdateName(ctx, id, name); err != nil {
		return nil, fmt.Errorf("updating rsvp: %w", err)
	}
	rsvp.Name = name
	return rsvp, nil
}

// DeleteRSVP はRSVPを削除する。
func (s *EventService) DeleteRSVP(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetRSVP(ctx, id); err != nil {
		return err
	}
	if err := s.rsvps.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting rsvp: %w", err)
	}
	return nil
}
