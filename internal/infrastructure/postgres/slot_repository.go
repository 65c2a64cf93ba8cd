package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
	"github.com/sanosuguru/go-slot-booking/internal/domain/transaction"
)

const slotColumns = `id, event_id, start_time, end_time, booked_by_name, booked_by_email, booked_at, created_at, updated_at, version`

type slotRow struct {
	ID            string     `db:"id"`
	EventID       string     `db:"event_id"`
	StartTime     time.Time  `db:"start_time"`
	EndTime       time.Time  `db:"end_time"`
	BookedByName  *string    `db:"booked_by_name"`
	BookedByEmail *string    `db:"booked_by_email"`
	BookedAt      *time.Time `db:"booked_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	Version       int        `db:"version"`
}

func (r *slotRow) toEntity() *slot.Slot {
	return &slot.Slot{
		ID: r.ID, EventID: r.EventID,
		StartTime: r.StartTime, EndTime: r.EndTime,
		BookedByName: r.BookedByName, BookedByEmail: r.BookedByEmail, BookedAt: r.BookedAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

// SlotRepository は予約枠リポジトリのPostgreSQL実装
type SlotRepository struct{ db *sqlx.DB }

// NewSlotRepository はSlotRepositoryを作成する
func NewSlotRepository(db *sqlx.DB) *SlotRepository { return &SlotRepository{db: db} }

// CreateBulk はイベント生成時に予約枠を一括作成する
func (r *SlotRepository) CreateBulk(ctx context.Context, tx transaction.Tx, slots []*slot.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 1000
	for i := 0; i < len(slots); i += batchSize {
		end := i + batchSize
		if end > len(slots) {
			end = len(slots)
		}
		if err := r.createBulkBatch(ctx, unwrapTx(tx), slots[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SlotRepository) createBulkBatch(ctx context.Context, tx *sqlx.Tx, slots []*slot.Slot) error {
	query := `INSERT INTO slots (event_id, start_time, end_time, created_at, updated_at, version) VALUES `
	args := make([]interface{}, 0, len(slots)*6)
	placeholders := make([]string, 0, len(slots))

	for i, s := range slots {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, s.EventID, s.StartTime, s.EndTime, s.CreatedAt, s.UpdatedAt, s.Version)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("予約枠一括作成に失敗: %w", err)
	}
	return nil
}

// GetByID はIDから予約枠を取得する
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*slot.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`
	var row slotRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, slot.ErrSlotNotFound
		}
		return nil, fmt.Errorf("予約枠取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetByEventAndStartTime はイベントIDと開始時刻から予約枠を取得する
func (r *SlotRepository) GetByEventAndStartTime(ctx context.Context, eventID string, startTime time.Time) (*slot.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE event_id = $1 AND start_time = $2`
	var row slotRow
	if err := r.db.GetContext(ctx, &row, query, eventID, startTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, slot.ErrSlotNotFound
		}
		return nil, fmt.Errorf("予約枠取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetByEventID はイベントIDから予約枠一覧を取得する
func (r *SlotRepository) GetByEventID(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE event_id = $1 ORDER BY start_time`
	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("予約枠一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

// GetAvailableByEventID はイベントIDから空いている予約枠一覧を取得する
func (r *SlotRepository) GetAvailableByEventID(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE event_id = $1 AND booked_by_name IS NULL AND booked_by_email IS NULL ORDER BY start_time`
	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("空き枠一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

// GetByBookedEmail は予約者メールアドレスから予約済み枠一覧を取得する
func (r *SlotRepository) GetByBookedEmail(ctx context.Context, email string) ([]*slot.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE booked_by_email = $1 ORDER BY start_time`
	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, query, email); err != nil {
		return nil, fmt.Errorf("予約済み枠一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

// CountBookedByEventID はイベントの予約済み枠数を取得する
func (r *SlotRepository) CountBookedByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM slots WHERE event_id = $1 AND booked_by_name IS NOT NULL AND booked_by_email IS NOT NULL`, eventID)
	if err != nil {
		return 0, fmt.Errorf("予約済み枠数取得に失敗: %w", err)
	}
	return count, nil
}

// Update は予約枠を条件付きで更新する（楽観的ロック）
// 読み取り時のバージョンと一致する行だけを更新し、一致しなければ競合エラーを返す
func (r *SlotRepository) Update(ctx context.Context, tx transaction.Tx, s *slot.Slot) error {
	query := `
		UPDATE slots
		SET booked_by_name = $1, booked_by_email = $2, booked_at = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6
	`
	result, err := unwrapTx(tx).ExecContext(ctx, query,
		s.BookedByName, s.BookedByEmail, s.BookedAt, s.UpdatedAt, s.ID, s.Version,
	)
	if err != nil {
		return fmt.Errorf("予約枠更新に失敗: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗: %w", err)
	}
	if rows == 0 {
		return slot.ErrOptimisticLockConflict
	}

	s.Version++
	return nil
}

func toEntities(rows []slotRow) []*slot.Slot {
	slots := make([]*slot.Slot, len(rows))
	for i, row := range rows {
		slots[i] = row.toEntity()
	}
	return slots
}

var _ slot.Repository = (*SlotRepository)(nil)
