package repository

import (
	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
)

// ToRecord 将数据模型转换为工作流记录
func ToRecord(m *model.HandoverModel) *workflow.Record {
	r := &workflow.Record{
		CustomerID:         m.CustomerID,
		TaxCodeID:          m.TaxCodeID,
		CompanyName:        m.Name,
		RepresentativeName: m.RepName,
		Address:            m.Address,
		SpecialNotes:       m.SpecialNotes,
		OtherNotes:         m.OtherNotes,
		AdvisoryFee:        m.AdvisoryFee,
		AccountClosingFee:  m.AccountClosingFee,
		OthersFee:          m.OthersFee,
		PredecessorID:      m.PredecessorID,
		SuperiorID:         m.SuperiorID,
		SubmittedAt:        m.SubmittedAt,
		RejectedAt:         m.DeniedAt,
	}
	if m.SuccessorID != nil {
		r.SuccessorID = *m.SuccessorID
	}
	for i, col := range m.StageColumns() {
		r.Stages[i] = workflow.StageSlot{ApprovedAt: *col.At, Comment: *col.Comment}
	}
	return r
}
