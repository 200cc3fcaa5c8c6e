package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/utils"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HandoverRepository 交接记录仓储接口
type HandoverRepository interface {
	workflow.RecordStore
	Create(ctx context.Context, handover *model.HandoverModel) error
	FindByID(ctx context.Context, id string) (*model.HandoverModel, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// handoverRepository 交接记录仓储实现
type handoverRepository struct {
	db *gorm.DB
}

// NewHandoverRepository 创建交接记录仓储
func NewHandoverRepository(db *gorm.DB) HandoverRepository {
	return &handoverRepository{db: db}
}

// Create 保存新记录
func (r *handoverRepository) Create(ctx context.Context, handover *model.HandoverModel) error {
	if err := r.db.WithContext(ctx).Create(handover).Error; err != nil {
		return workflow.StorageError("create handover", err)
	}
	return nil
}

// FindByID 根据客户编号查找记录
func (r *handoverRepository) FindByID(ctx context.Context, id string) (*model.HandoverModel, error) {
	var handover model.HandoverModel
	err := r.db.WithContext(ctx).Where("s_customer = ?", id).First(&handover).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", workflow.ErrNotFound, id)
	}
	if err != nil {
		return nil, workflow.StorageError("find handover", err)
	}
	return &handover, nil
}

// Exists 检查客户编号是否已存在
func (r *handoverRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.HandoverModel{}).Where("s_customer = ?", id).Count(&count).Error; err != nil {
		return false, workflow.StorageError("count handover", err)
	}
	return count > 0, nil
}

// GetByKey 读取工作流视角的记录
func (r *handoverRepository) GetByKey(ctx context.Context, id string) (*workflow.Record, error) {
	handover, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToRecord(handover), nil
}

// ConditionalUpdate 仅当 guard 中的列全部为 NULL 时更新
func (r *handoverRepository) ConditionalUpdate(ctx context.Context, id string, guard []string, fields map[string]interface{}) error {
	query := r.db.WithContext(ctx).Model(&model.HandoverModel{}).Where("s_customer = ?", id)
	for _, col := range guard {
		if err := utils.ValidateSortField(col); err != nil {
			return fmt.Errorf("invalid guard column %q: %w", col, err)
		}
		query = query.Where(clause.Eq{Column: clause.Column{Name: col}, Value: nil})
	}

	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = time.Now()

	result := query.Updates(updates)
	if result.Error != nil {
		return workflow.StorageError("update handover", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", workflow.ErrConcurrentModification, id)
	}
	return nil
}

// Scan 按条件返回游标,关键字与前任在 SQL 中过滤
// SQLite 的 LOWER 只处理 ASCII,含非 ASCII 字符的关键字交给结果集在内存中匹配
func (r *handoverRepository) Scan(ctx context.Context, q workflow.Query) (workflow.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&model.HandoverModel{})
	if q.PredecessorID != "" {
		query = query.Where("s_predecessor = ?", q.PredecessorID)
	}
	if q.Keyword != "" && isASCII(q.Keyword) {
		pattern := utils.ContainsPattern(q.Keyword)
		like := "LIKE ? ESCAPE '" + utils.LikeEscape + "'"
		query = query.Where(
			"(LOWER(s_name) "+like+" OR LOWER(s_rep_name) "+like+" OR LOWER(s_address) "+like+
				" OR LOWER(s_special_notes) "+like+" OR LOWER(s_other_notes) "+like+")",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	column := q.SortColumn
	if column == "" {
		column = workflow.FieldSubmittedAt
	}
	if err := utils.ValidateSortField(column); err != nil {
		return nil, &workflow.ValidationError{Field: "sort_by", Message: err.Error()}
	}
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.Descending})
	if column != "s_customer" {
		query = query.Order("s_customer ASC")
	}

	rows, err := query.Rows()
	if err != nil {
		return nil, workflow.StorageError("scan handovers", err)
	}
	return &handoverCursor{db: r.db, rows: rows}, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// handoverCursor 基于 sql.Rows 的游标
type handoverCursor struct {
	db      *gorm.DB
	rows    *sql.Rows
	current *workflow.Record
	err     error
}

func (c *handoverCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		c.current = nil
		return false
	}
	var handover model.HandoverModel
	if err := c.db.ScanRows(c.rows, &handover); err != nil {
		c.err = workflow.StorageError("scan handover row", err)
		c.current = nil
		return false
	}
	c.current = ToRecord(&handover)
	return true
}

func (c *handoverCursor) Record() *workflow.Record {
	return c.current
}

func (c *handoverCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return workflow.StorageError("iterate handovers", err)
	}
	return nil
}

func (c *handoverCursor) Close() error {
	return c.rows.Close()
}
