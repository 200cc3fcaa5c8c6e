package workflow

import "context"

// Query 下推到存储层的列表条件
// 状态过滤不在此处,必须在派生状态后进行
type Query struct {
	PredecessorID string
	Keyword       string
	SortColumn    string
	Descending    bool
}

// Cursor 惰性、只能遍历一次的记录序列
type Cursor interface {
	Next() bool
	Record() *Record
	Err() error
	Close() error
}

// RecordStore 核心所需的存储操作
type RecordStore interface {
	// GetByKey 按客户编号读取,不存在返回 ErrNotFound
	GetByKey(ctx context.Context, id string) (*Record, error)
	// Scan 按条件遍历记录
	Scan(ctx context.Context, q Query) (Cursor, error)
	// ConditionalUpdate 仅当 guard 中的列全部为 NULL 时写入 fields
	// 没有匹配行返回 ErrConcurrentModification
	ConditionalUpdate(ctx context.Context, id string, guard []string, fields map[string]interface{}) error
}

// sliceCursor 基于切片的游标
type sliceCursor struct {
	records []*Record
	pos     int
	closed  bool
}

// NewSliceCursor 用内存中的记录构造游标
func NewSliceCursor(records []*Record) Cursor {
	return &sliceCursor{records: records, pos: -1}
}

func (c *sliceCursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.records) {
		c.pos = len(c.records)
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Record() *Record {
	if c.pos < 0 || c.pos >= len(c.records) {
		return nil
	}
	return c.records[c.pos]
}

func (c *sliceCursor) Err() error { return nil }

func (c *sliceCursor) Close() error {
	c.closed = true
	return nil
}
