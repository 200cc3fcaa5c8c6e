package workflow

import (
	"context"
	"fmt"
	"strings"
)

// SortKey 列表排序字段
type SortKey string

const (
	SortBySubmitted SortKey = "submitted"
	SortByTaxCode   SortKey = "tax_code"
	SortByName      SortKey = "name"
	SortByCustomer  SortKey = "customer"
)

var sortColumns = map[SortKey]string{
	SortBySubmitted: FieldSubmittedAt,
	SortByTaxCode:   "id_tkc_cd",
	SortByName:      "s_name",
	SortByCustomer:  "s_customer",
}

// Column 返回排序字段对应的存储列
func (k SortKey) Column() (string, bool) {
	col, ok := sortColumns[k]
	return col, ok
}

// SortDirection 排序方向
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Filter 列表过滤条件
type Filter struct {
	PredecessorID string
	Keyword       string
	// IncludeCompleted 为 false 时隐藏 COMPLETED 与 HANDED_OVER
	IncludeCompleted bool
	// Status 指定时覆盖 IncludeCompleted
	Status  *StatusCode
	SortKey SortKey
	SortDir SortDirection
}

// Row 列表中的一行
type Row struct {
	Record *Record
	Status StatusCode
}

// ListQueryEngine 按派生状态、关键字和前任过滤记录
type ListQueryEngine struct {
	store RecordStore
}

// NewListQueryEngine 创建列表查询引擎
func NewListQueryEngine(store RecordStore) *ListQueryEngine {
	return &ListQueryEngine{store: store}
}

// List 返回惰性结果集,调用方必须 Close
func (e *ListQueryEngine) List(ctx context.Context, f Filter) (*ResultSet, error) {
	if f.SortKey == "" {
		f.SortKey = SortBySubmitted
	}
	if f.SortDir == "" {
		f.SortDir = SortDesc
	}
	col, ok := f.SortKey.Column()
	if !ok {
		return nil, &ValidationError{Field: "sort_by", Message: fmt.Sprintf("unsupported sort key %q", f.SortKey)}
	}
	if f.SortDir != SortAsc && f.SortDir != SortDesc {
		return nil, &ValidationError{Field: "order", Message: fmt.Sprintf("unsupported sort direction %q", f.SortDir)}
	}
	f.Keyword = strings.TrimSpace(f.Keyword)

	cursor, err := e.store.Scan(ctx, Query{
		PredecessorID: f.PredecessorID,
		Keyword:       f.Keyword,
		SortColumn:    col,
		Descending:    f.SortDir == SortDesc,
	})
	if err != nil {
		return nil, err
	}
	return &ResultSet{cursor: cursor, filter: f, keyword: strings.ToLower(f.Keyword)}, nil
}

// ResultSet 过滤后的结果序列,只能遍历一次
type ResultSet struct {
	cursor  Cursor
	filter  Filter
	keyword string
	current Row
	done    bool
}

// Next 前进到下一条满足条件的记录
func (rs *ResultSet) Next() bool {
	if rs.done {
		return false
	}
	for rs.cursor.Next() {
		rec := rs.cursor.Record()
		if rec == nil || !rs.matches(rec) {
			continue
		}
		status := DeriveStatus(rec)
		if !rs.statusVisible(status) {
			continue
		}
		rs.current = Row{Record: rec, Status: status}
		return true
	}
	rs.done = true
	rs.current = Row{}
	return false
}

// Row 返回当前行
func (rs *ResultSet) Row() Row {
	return rs.current
}

// Err 返回遍历过程中的存储错误
func (rs *ResultSet) Err() error {
	return rs.cursor.Err()
}

// Close 释放底层游标
func (rs *ResultSet) Close() error {
	rs.done = true
	return rs.cursor.Close()
}

// 存储层可能不支持条件下推,这里再校验一次
func (rs *ResultSet) matches(r *Record) bool {
	if rs.filter.PredecessorID != "" && r.PredecessorID != rs.filter.PredecessorID {
		return false
	}
	if rs.keyword == "" {
		return true
	}
	for _, field := range []string{r.CompanyName, r.RepresentativeName, r.Address, r.SpecialNotes, r.OtherNotes} {
		if strings.Contains(strings.ToLower(field), rs.keyword) {
			return true
		}
	}
	return false
}

func (rs *ResultSet) statusVisible(status StatusCode) bool {
	if rs.filter.Status != nil {
		return status == *rs.filter.Status
	}
	if rs.filter.IncludeCompleted {
		return true
	}
	return status != StatusCompleted && status != StatusHandedOver
}

// Collect 读取结果集中 [offset, offset+limit) 范围的行并返回总数
// limit <= 0 表示不限制
func Collect(rs *ResultSet, offset, limit int) ([]Row, int, error) {
	defer rs.Close()
	rows := make([]Row, 0)
	total := 0
	for rs.Next() {
		if total >= offset && (limit <= 0 || len(rows) < limit) {
			rows = append(rows, rs.Row())
		}
		total++
	}
	if err := rs.Err(); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
