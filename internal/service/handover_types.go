package service

import (
	"time"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
)

// CreateHandoverRequest 创建交接记录请求
// @Description 创建交接记录的请求参数,记录以草稿状态创建
type CreateHandoverRequest struct {
	CustomerID        string     `json:"s_customer" example:"C000123" binding:"required"` // 客户编号,固定 7 位
	TaxCodeID         string     `json:"id_tkc_cd" example:"T0001"`
	Name              string     `json:"s_name" example:"Acme Trading" binding:"required"` // 公司名称
	Address           string     `json:"s_address"`
	Type              string     `json:"s_type"`
	DateFrom          *time.Time `json:"dt_from"`
	DateTo            *time.Time `json:"dt_to"`
	AdvisoryFee       int64      `json:"n_advisory_fee" binding:"gte=0"`
	AccountClosingFee int64      `json:"n_account_closing_fee" binding:"gte=0"`
	OthersFee         int64      `json:"n_others_fee" binding:"gte=0"`
	RepName           string     `json:"s_rep_name"`
	RepPersonal       string     `json:"s_rep_personal"`
	RepPartnerName    string     `json:"s_rep_partner_name"`
	RepOthersName     string     `json:"s_rep_others_name"`
	CorpTel           string     `json:"s_corp_tel"`
	CorpFax           string     `json:"s_corp_fax"`
	RepTel            string     `json:"s_rep_tel"`
	RepEmail          string     `json:"s_rep_email"`
	RepContact        string     `json:"s_rep_contact"`
	Place             int        `json:"n_place"`
	PlaceOthers       string     `json:"s_place_others"`
	AffiliatedCompany string     `json:"s_affiliated_company"`
	HeedingAudit      string     `json:"s_heeding_audit"`
	LastTaxAuditAt    *time.Time `json:"dt_last_tax_audit"`
	TaxAuditMemo      string     `json:"s_tax_audit_memo"`
	SpecialNotes      string     `json:"s_special_notes"`
	OtherNotes        string     `json:"s_other_notes"`
	SuperiorID        string     `json:"s_superior" example:"W010"` // 部门负责人
	ActorID           string     `json:"actor_id,omitempty"`
}

// UpdateHandoverRequest 编辑交接记录请求
// @Description 仅包含描述字段,未提供的字段保持不变
type UpdateHandoverRequest struct {
	TaxCodeID         *string    `json:"id_tkc_cd"`
	Name              *string    `json:"s_name"`
	Address           *string    `json:"s_address"`
	Type              *string    `json:"s_type"`
	DateFrom          *time.Time `json:"dt_from"`
	DateTo            *time.Time `json:"dt_to"`
	AdvisoryFee       *int64     `json:"n_advisory_fee"`
	AccountClosingFee *int64     `json:"n_account_closing_fee"`
	OthersFee         *int64     `json:"n_others_fee"`
	RepName           *string    `json:"s_rep_name"`
	RepPersonal       *string    `json:"s_rep_personal"`
	RepPartnerName    *string    `json:"s_rep_partner_name"`
	RepOthersName     *string    `json:"s_rep_others_name"`
	CorpTel           *string    `json:"s_corp_tel"`
	CorpFax           *string    `json:"s_corp_fax"`
	RepTel            *string    `json:"s_rep_tel"`
	RepEmail          *string    `json:"s_rep_email"`
	RepContact        *string    `json:"s_rep_contact"`
	Place             *int       `json:"n_place"`
	PlaceOthers       *string    `json:"s_place_others"`
	AffiliatedCompany *string    `json:"s_affiliated_company"`
	HeedingAudit      *string    `json:"s_heeding_audit"`
	LastTaxAuditAt    *time.Time `json:"dt_last_tax_audit"`
	TaxAuditMemo      *string    `json:"s_tax_audit_memo"`
	SpecialNotes      *string    `json:"s_special_notes"`
	OtherNotes        *string    `json:"s_other_notes"`
	SuperiorID        *string    `json:"s_superior"`
	ActorID           string     `json:"actor_id,omitempty"`
}

// columns 返回需要更新的列
func (r *UpdateHandoverRequest) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	setString := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	setTime := func(col string, v *time.Time) {
		if v != nil {
			cols[col] = *v
		}
	}
	setString("id_tkc_cd", r.TaxCodeID)
	setString("s_name", r.Name)
	setString("s_address", r.Address)
	setString("s_type", r.Type)
	setTime("dt_from", r.DateFrom)
	setTime("dt_to", r.DateTo)
	if r.AdvisoryFee != nil {
		cols["n_advisory_fee"] = *r.AdvisoryFee
	}
	if r.AccountClosingFee != nil {
		cols["n_account_closing_fee"] = *r.AccountClosingFee
	}
	if r.OthersFee != nil {
		cols["n_others_fee"] = *r.OthersFee
	}
	setString("s_rep_name", r.RepName)
	setString("s_rep_personal", r.RepPersonal)
	setString("s_rep_partner_name", r.RepPartnerName)
	setString("s_rep_others_name", r.RepOthersName)
	setString("s_corp_tel", r.CorpTel)
	setString("s_corp_fax", r.CorpFax)
	setString("s_rep_tel", r.RepTel)
	setString("s_rep_email", r.RepEmail)
	setString("s_rep_contact", r.RepContact)
	if r.Place != nil {
		cols["n_place"] = *r.Place
	}
	setString("s_place_others", r.PlaceOthers)
	setString("s_affiliated_company", r.AffiliatedCompany)
	setString("s_heeding_audit", r.HeedingAudit)
	setTime("dt_last_tax_audit", r.LastTaxAuditAt)
	setString("s_tax_audit_memo", r.TaxAuditMemo)
	setString("s_special_notes", r.SpecialNotes)
	setString("s_other_notes", r.OtherNotes)
	setString(workflow.FieldSuperior, r.SuperiorID)
	return cols
}

// TransitionRequest 状态迁移请求
// @Description 提交、审批、驳回、指定继任者共用的请求参数
type TransitionRequest struct {
	Action        string `json:"-"`
	ActorID       string `json:"actor_id,omitempty" example:"W010"`
	Comment       string `json:"comment" example:"OK"`
	SuccessorID   string `json:"successor_id,omitempty" example:"W020"` // 仅 assign 使用
	SuperiorID    string `json:"superior_id,omitempty" example:"W010"`  // 仅 submit 使用
	ExpectedStage int    `json:"expected_stage,omitempty" example:"3"`  // 0 表示不检查
}

// TransitionResult 状态迁移结果
type TransitionResult struct {
	HandoverID       string              `json:"handover_id"`
	Action           workflow.Action     `json:"action"`
	PreviousStatus   workflow.StatusCode `json:"previous_status"`
	Status           workflow.StatusCode `json:"status"`
	StatusText       string              `json:"status_text"`
	Stage            int                 `json:"stage,omitempty"`
	IdentityVerified bool                `json:"identity_verified"`
}

// StatusView 状态与审批链视图
type StatusView struct {
	HandoverID    string                `json:"handover_id"`
	Label         string                `json:"label"`
	Status        workflow.StatusCode   `json:"status"`
	StatusText    string                `json:"status_text"`
	PendingStage  int                   `json:"pending_stage,omitempty"`
	PredecessorID string                `json:"predecessor_id"`
	SuperiorID    string                `json:"superior_id,omitempty"`
	SuccessorID   string                `json:"successor_id,omitempty"`
	Chain         []workflow.ChainEntry `json:"chain"`
}

// HandoverDetail 交接记录详情
type HandoverDetail struct {
	*model.HandoverModel
	Status            workflow.StatusCode `json:"status"`
	StatusText        string              `json:"status_text"`
	TotalCompensation int64               `json:"total_compensation"`
}

// ListFilter 交接记录列表过滤器
type ListFilter struct {
	PredecessorID    string
	Keyword          string
	IncludeCompleted bool
	Status           string
	SortBy           string
	Order            string
	Page             int
	PageSize         int
}

// HandoverSummary 列表中的记录摘要
type HandoverSummary struct {
	CustomerID         string              `json:"s_customer"`
	TaxCodeID          string              `json:"id_tkc_cd"`
	CompanyName        string              `json:"s_name"`
	RepresentativeName string              `json:"s_rep_name"`
	PredecessorID      string              `json:"s_predecessor"`
	PredecessorName    string              `json:"predecessor_name"`
	SuperiorID         string              `json:"s_superior,omitempty"`
	SuccessorID        string              `json:"s_in_charge,omitempty"`
	SubmittedAt        *time.Time          `json:"dt_submitted,omitempty"`
	TotalCompensation  int64               `json:"total_compensation"`
	Status             workflow.StatusCode `json:"status"`
	StatusText         string              `json:"status_text"`
}

// ListResult 列表查询结果
type ListResult struct {
	Items    []*HandoverSummary `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// StateHistory 状态历史
type StateHistory struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Stage     int       `json:"stage,omitempty"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Comment   string    `json:"comment,omitempty"`
	Operator  string    `json:"operator"`
	CreatedAt time.Time `json:"created_at"`
}
