// Package domain はドメインモデルとビジネスルールを定義する。
package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxTitleLength    = 256
	maxTaglineLength  = 256
	maxLocationLength = 256
	maxRSVPNameLength = 60

	gcalTimeLayout = "20060102T150405"
)

// ResourceKind はシークレットで保護されるリソースの種別を表す。
type ResourceKind string

const (
	// ResourceKindEvent はイベントを表す。
	ResourceKindEvent ResourceKind = "event"
	// ResourceKindRSVP はRSVPを表す。
	ResourceKindRSVP ResourceKind = "rsvp"
)

// Path はリソース種別ごとのURLパス接頭辞を返す。
func (k ResourceKind) Path() string {
	switch k {
	case ResourceKindRSVP:
		return "/v1/rsvps/"
	default:
		return "/v1/events/"
	}
}

// Event はイベントエンティティを表す。
type Event struct {
	ID          uuid.UUID
	Title       string
	Tagline     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventInput はイベント作成・更新時の入力値を表す。
type EventInput struct {
	Title       string
	Tagline     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
}

// Validate は入力値を検証する。descriptionは任意。
func (in EventInput) Validate() error {
	if err := requireText("title", in.Title, maxTitleLength); err != nil {
		return err
	}
	if err := requireText("tagline", in.Tagline, maxTaglineLength); err != nil {
		return err
	}
	if err := requireText("location", in.Location, maxLocationLength); err != nil {
		return err
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return fmt.Errorf("%w: start_time and end_time are required", ErrInvalidEvent)
	}
	if in.EndTime.Before(in.StartTime) {
		return fmt.Errorf("%w: end_time must not precede start_time", ErrInvalidEvent)
	}
	return nil
}

func requireText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidEvent, field)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidEvent, field, max)
	}
	return nil
}

// Apply は入力値をイベントに反映する。
func (e *Event) Apply(in EventInput) {
	e.Title = in.Title
	e.Tagline = in.Tagline
	e.Description = in.Description
	e.StartTime = in.StartTime
	e.EndTime = in.EndTime
	e.Location = in.Location
}

// String はイベントの表示名を返す。
func (e *Event) String() string {
	return fmt.Sprintf("%s (%s)", e.Title, e.StartTime.Format(time.RFC3339))
}

// GoogleMapsIframeURL は埋め込み地図用のURLを返す。
func (e *Event) GoogleMapsIframeURL() string {
	return "https://maps.google.com/maps?" +
		"width=100%25&height=400&hl=en" +
		"&q=" + quote(e.Location) + "+(" + quote(e.Title) + ")" +
		"&t=&z=14&ie=UTF8&iwloc=B&output=embed"
}

// AddToGoogleCalendarURL はGoogleカレンダー登録用のURLを返す。
// 保存済みの時刻はUTCだが、作成者と閲覧者が同じタイムゾーンにいる前提で
// タイムゾーン無しの時刻として扱う。
func (e *Event) AddToGoogleCalendarURL() string {
	start := e.StartTime.UTC().Format(gcalTimeLayout)
	end := e.EndTime.UTC().Format(gcalTimeLayout)
	return "https://calendar.google.com/calendar/render?" +
		"action=TEMPLATE" +
		"&dates=" + start + "/" + end +
		"&location=" + quote(e.Location) +
		"&text=" + quote(e.Title) +
		"&details=" + quote(e.Description)
}

// GoogleMapsURL はiOS/AndroidでGoogleマップを開くURLを返す。
func (e *Event) GoogleMapsURL() string {
	return "https://maps.google.com/?q=" + quote(e.Location)
}

// AppleMapsURL はiOSでAppleマップを開くURLを返す。
func (e *Event) AppleMapsURL() string {
	return "https://maps.apple.com/maps?q=" + quote(e.Location)
}

// quote はスペースを %20 としてクエリ値をエスケープする。
func quote(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// RSVP はイベントへの参加表明を表す。
type RSVP struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateRSVPName はRSVPの名前を検証する。
func ValidateRSVPName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRSVP)
	}
	if utf8.RuneCountInString(name) > maxRSVPNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidRSVP, maxRSVPNameLength)
	}
	return nil
}
