package domain

import "time"

// MigrationStatus はスキーママイグレーションの適用状態を表す。
type MigrationStatus string

const (
	MigrationStatusPending MigrationStatus = "pending"
	MigrationStatusApplied MigrationStatus = "applied"
)

// Migration は migrations/ 配下のSQLファイル1本に対応する。
type Migration struct {
	Version   string     // ファイル名先頭の番号（例: "001"）
	Name      string     // 番号以降のファイル名（例: "create_events"）
	AppliedAt *time.Time // 未適用ならnil
	FilePath  string
	Status    MigrationStatus
}
