package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/regintake/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
)

type auditLineModel struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	EntryID   string    `gorm:"column:entry_id;not null"`
	Email     string    `gorm:"column:email;not null"`
	Line      string    `gorm:"column:line;not null"`
	LineBytes int64     `gorm:"column:line_bytes;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (auditLineModel) TableName() string {
	return "registration_audit_log"
}

// AuditLogRepository stores audit lines in SQLite. The table is capped like the
// file log: once the stored lines exceed maxBytes it is emptied before the next insert.
type AuditLogRepository struct {
	db       *gormsqlite.DB
	maxBytes int64
}

func NewAuditLogRepository(db *gormsqlite.DB, maxBytes int64) *AuditLogRepository {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultAuditMaxBytes
	}
	return &AuditLogRepository{db: db, maxBytes: maxBytes}
}

func (r *AuditLogRepository) Append(ctx context.Context, record domain.AuditRecord) error {
	line, err := record.Line()
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	return r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var size int64
		if err := tx.Model(&auditLineModel{}).Select("COALESCE(SUM(line_bytes), 0)").Row().Scan(&size); err != nil {
			return fmt.Errorf("measure audit log: %w", err)
		}
		if size > r.maxBytes {
			if err := tx.Exec("DELETE FROM registration_audit_log").Error; err != nil {
				return fmt.Errorf("reset audit log: %w", err)
			}
		}

		model := auditLineModel{
			EntryID:   uuid.NewString(),
			Email:     record.Email,
			Line:      string(line),
			LineBytes: int64(len(line)),
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert audit line: %w", err)
		}
		return nil
	})
}

// List returns the stored records in append order.
func (r *AuditLogRepository) List(ctx context.Context) ([]domain.AuditRecord, error) {
	var models []auditLineModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list audit lines: %w", err)
	}

	records := make([]domain.AuditRecord, 0, len(models))
	for _, m := range models {
		var rec domain.AuditRecord
		if err := json.Unmarshal([]byte(m.Line), &rec); err != nil {
			return nil, fmt.Errorf("decode audit line %d: %w", m.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
