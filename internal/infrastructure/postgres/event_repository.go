package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
	"github.com/sanosuguru/go-slot-booking/internal/domain/transaction"
)

const eventColumns = `id, name, description, host_id, host_name, host_email, start_at, end_at, time_zone, shareable_id, slot_duration_minutes, max_slots_per_user, max_capacity, allows_cancellations, is_public, created_at, updated_at, version`

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID                  string    `db:"id"`
	Name                string    `db:"name"`
	Description         *string   `db:"description"`
	HostID              string    `db:"host_id"`
	HostName            string    `db:"host_name"`
	HostEmail           string    `db:"host_email"`
	StartAt             time.Time `db:"start_at"`
	EndAt               time.Time `db:"end_at"`
	TimeZone            string    `db:"time_zone"`
	ShareableID         string    `db:"shareable_id"`
	SlotDurationMinutes int       `db:"slot_duration_minutes"`
	MaxSlotsPerUser     int       `db:"max_slots_per_user"`
	MaxCapacity         *int      `db:"max_capacity"`
	AllowsCancellations bool      `db:"allows_cancellations"`
	IsPublic            bool      `db:"is_public"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
	Version             int       `db:"version"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	var desc string
	if r.Description != nil {
		desc = *r.Description
	}
	return &event.Event{
		ID:          r.ID,
		Name:        r.Name,
		Description: desc,
		HostID:      r.HostID,
		HostName:    r.HostName,
		HostEmail:   r.HostEmail,
		StartAt:     r.StartAt,
		EndAt:       r.EndAt,
		TimeZone:    r.TimeZone,
		ShareableID: r.ShareableID,
		Rules: event.AvailabilityRules{
			SlotDurationMinutes: r.SlotDurationMinutes,
			MaxSlotsPerUser:     r.MaxSlotsPerUser,
			MaxCapacity:         r.MaxCapacity,
			AllowsCancellations: r.AllowsCancellations,
			IsPublic:            r.IsPublic,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
// 予約枠の一括作成と同一トランザクションで呼び出す
func (r *EventRepository) Create(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	query := `
		INSERT INTO events (name, description, host_id, host_name, host_email, start_at, end_at, time_zone, shareable_id,
		                    slot_duration_minutes, max_slots_per_user, max_capacity, allows_cancellations, is_public,
		                    created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	var desc *string
	if e.Description != "" {
		desc = &e.Description
	}

	err := unwrapTx(tx).QueryRowContext(ctx, query,
		e.Name, desc, e.HostID, e.HostName, e.HostEmail, e.StartAt, e.EndAt, e.TimeZone, e.ShareableID,
		e.Rules.SlotDurationMinutes, e.Rules.MaxSlotsPerUser, e.Rules.MaxCapacity, e.Rules.AllowsCancellations, e.Rules.IsPublic,
		e.CreatedAt, e.UpdatedAt, e.Version,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByShareableID は共有IDからイベントを取得する
func (r *EventRepository) GetByShareableID(ctx context.Context, shareableID string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE shareable_id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, shareableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByHostID は主催者のイベント一覧を取得する
func (r *EventRepository) ListByHostID(ctx context.Context, hostID string, limit, offset int) ([]*event.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE host_id = $1
		ORDER BY start_at DESC
		LIMIT $2 OFFSET $3
	`

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, query, hostID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// Delete はイベントを削除する
// slots.event_id の外部キーにより予約枠はカスケード削除される
func (r *EventRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	result, err := unwrapTx(tx).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("イベント削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
