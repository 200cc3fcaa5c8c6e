package model

import (
	"errors"
	"time"
)

// CustomerIDLength 客户编号固定长度
const CustomerIDLength = 7

// HandoverModel 交接记录数据模型
// 列名沿用原有 t_handover 表,工作流状态不落库,由时间戳派生
type HandoverModel struct {
	CustomerID string     `gorm:"column:s_customer;primaryKey;type:char(7)" json:"s_customer"`
	TaxCodeID  string     `gorm:"column:id_tkc_cd;type:varchar(16);index" json:"id_tkc_cd,omitempty"`
	Name       string     `gorm:"column:s_name;type:varchar(255);not null" json:"s_name"`
	Address    string     `gorm:"column:s_address;type:varchar(255)" json:"s_address,omitempty"`
	Type       string     `gorm:"column:s_type;type:varchar(32)" json:"s_type,omitempty"`
	DateFrom   *time.Time `gorm:"column:dt_from" json:"dt_from,omitempty"`
	DateTo     *time.Time `gorm:"column:dt_to" json:"dt_to,omitempty"`

	AdvisoryFee       int64 `gorm:"column:n_advisory_fee;default:0" json:"n_advisory_fee"`
	AccountClosingFee int64 `gorm:"column:n_account_closing_fee;default:0" json:"n_account_closing_fee"`
	OthersFee         int64 `gorm:"column:n_others_fee;default:0" json:"n_others_fee"`

	RepName           string     `gorm:"column:s_rep_name;type:varchar(128)" json:"s_rep_name,omitempty"`
	RepPersonal       string     `gorm:"column:s_rep_personal;type:text" json:"s_rep_personal,omitempty"`
	RepPartnerName    string     `gorm:"column:s_rep_partner_name;type:varchar(128)" json:"s_rep_partner_name,omitempty"`
	RepOthersName     string     `gorm:"column:s_rep_others_name;type:varchar(128)" json:"s_rep_others_name,omitempty"`
	CorpTel           string     `gorm:"column:s_corp_tel;type:varchar(32)" json:"s_corp_tel,omitempty"`
	CorpFax           string     `gorm:"column:s_corp_fax;type:varchar(32)" json:"s_corp_fax,omitempty"`
	RepTel            string     `gorm:"column:s_rep_tel;type:varchar(32)" json:"s_rep_tel,omitempty"`
	RepEmail          string     `gorm:"column:s_rep_email;type:varchar(255)" json:"s_rep_email,omitempty"`
	RepContact        string     `gorm:"column:s_rep_contact;type:varchar(255)" json:"s_rep_contact,omitempty"`
	Place             int        `gorm:"column:n_place;default:0" json:"n_place,omitempty"`
	PlaceOthers       string     `gorm:"column:s_place_others;type:varchar(255)" json:"s_place_others,omitempty"`
	AffiliatedCompany string     `gorm:"column:s_affiliated_company;type:text" json:"s_affiliated_company,omitempty"`
	HeedingAudit      string     `gorm:"column:s_heeding_audit;type:text" json:"s_heeding_audit,omitempty"`
	LastTaxAuditAt    *time.Time `gorm:"column:dt_last_tax_audit" json:"dt_last_tax_audit,omitempty"`
	TaxAuditMemo      string     `gorm:"column:s_tax_audit_memo;type:text" json:"s_tax_audit_memo,omitempty"`
	SpecialNotes      string     `gorm:"column:s_special_notes;type:text" json:"s_special_notes,omitempty"`
	OtherNotes        string     `gorm:"column:s_other_notes;type:text" json:"s_other_notes,omitempty"`

	PredecessorID string  `gorm:"column:s_predecessor;type:varchar(16);index:idx_handover_predecessor_submitted,priority:1" json:"s_predecessor"`
	SuperiorID    string  `gorm:"column:s_superior;type:varchar(16)" json:"s_superior,omitempty"`
	SuccessorID   *string `gorm:"column:s_in_charge;type:varchar(16)" json:"s_in_charge,omitempty"`

	SubmittedAt *time.Time `gorm:"column:dt_submitted;index;index:idx_handover_predecessor_submitted,priority:2" json:"dt_submitted,omitempty"`
	Approved    *time.Time `gorm:"column:dt_approved" json:"dt_approved,omitempty"`
	Comment     *string    `gorm:"column:s_approved;type:text" json:"s_approved,omitempty"`
	Approved1   *time.Time `gorm:"column:dt_approved_1" json:"dt_approved_1,omitempty"`
	Comment1    *string    `gorm:"column:s_approved_1;type:text" json:"s_approved_1,omitempty"`
	Approved2   *time.Time `gorm:"column:dt_approved_2" json:"dt_approved_2,omitempty"`
	Comment2    *string    `gorm:"column:s_approved_2;type:text" json:"s_approved_2,omitempty"`
	Approved3   *time.Time `gorm:"column:dt_approved_3" json:"dt_approved_3,omitempty"`
	Comment3    *string    `gorm:"column:s_approved_3;type:text" json:"s_approved_3,omitempty"`
	Approved4   *time.Time `gorm:"column:dt_approved_4" json:"dt_approved_4,omitempty"`
	Comment4    *string    `gorm:"column:s_approved_4;type:text" json:"s_approved_4,omitempty"`
	Approved5   *time.Time `gorm:"column:dt_approved_5" json:"dt_approved_5,omitempty"`
	Comment5    *string    `gorm:"column:s_approved_5;type:text" json:"s_approved_5,omitempty"`
	CheckedAt   *time.Time `gorm:"column:dt_checked" json:"dt_checked,omitempty"`
	CheckedNote *string    `gorm:"column:s_checked;type:text" json:"s_checked,omitempty"`
	DeniedAt    *time.Time `gorm:"column:dt_denied" json:"dt_denied,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName 指定表名
func (HandoverModel) TableName() string {
	return "t_handover"
}

// Validate 验证交接记录模型
func (hm *HandoverModel) Validate() error {
	if hm.CustomerID == "" {
		return errors.New("customer ID is required")
	}
	if len([]rune(hm.CustomerID)) != CustomerIDLength {
		return errors.New("customer ID must be exactly 7 characters")
	}
	if hm.Name == "" {
		return errors.New("company name is required")
	}
	return nil
}

// StageColumn 指向某个审批阶段的时间戳与意见字段
type StageColumn struct {
	At      **time.Time
	Comment **string
}

// StageColumns 返回七个阶段的字段指针,顺序与审批链一致
func (hm *HandoverModel) StageColumns() [7]StageColumn {
	return [7]StageColumn{
		{&hm.Approved, &hm.Comment},
		{&hm.Approved1, &hm.Comment1},
		{&hm.Approved2, &hm.Comment2},
		{&hm.Approved3, &hm.Comment3},
		{&hm.Approved4, &hm.Comment4},
		{&hm.Approved5, &hm.Comment5},
		{&hm.CheckedAt, &hm.CheckedNote},
	}
}
