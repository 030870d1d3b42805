package domain

import "errors"

var (
	// ErrInvalidIdentifier は短縮ID・UUID文字列の形式が不正な場合のエラー。
	// クライアントには not found として返す。
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrUnauthorized は変更操作に対してシークレットによる所有確認が取れなかった場合のエラー。
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConfiguration は起動時の設定（SECRET_KEY など）が不足・不正な場合のエラー。
	ErrConfiguration = errors.New("configuration error")

	// ErrEventNotFound は指定されたイベントが存在しない場合のエラー。
	ErrEventNotFound = errors.New("event not found")

	// ErrRSVPNotFound は指定されたRSVPが存在しない場合のエラー。
	ErrRSVPNotFound = errors.New("rsvp not found")

	// ErrInvalidEvent はイベントの入力値が不正な場合のエラー。
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidRSVP はRSVPの入力値が不正な場合のエラー。
	ErrInvalidRSVP = errors.New("invalid rsvp")

	// ErrMigrationFailed はマイグレーション実行時のエラー。
	ErrMigrationFailed = errors.New("migration failed")

	// ErrInvalidMigrationFile はマイグレーションファイルのフォーマットが不正な場合のエラー。
	ErrInvalidMigrationFile = errors.New("invalid migration file")
)
