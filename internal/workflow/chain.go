package workflow

// StageCount 审批链的阶段数量
const StageCount = 7

// StageDescriptor 审批阶段描述
type StageDescriptor struct {
	Level          int    `json:"level"`
	Role           string `json:"role"`
	TimestampField string `json:"timestamp_field"`
	CommentField   string `json:"comment_field"`
}

// 角色名称
const (
	RoleDepartmentHead         = "Department Head"
	RoleDivisionHead           = "Division Head (Manager)"
	RoleDirector               = "Director"
	RoleExecutiveDirector      = "Executive Director"
	RoleSeniorManagingDirector = "Senior Managing Director"
	RolePresident              = "President"
	RoleGeneralAffairs         = "General Affairs"
	RolePredecessor            = "Predecessor"
	RoleSuccessor              = "Successor"
)

// 非审批阶段的列名
const (
	FieldSubmittedAt = "dt_submitted"
	FieldRejectedAt  = "dt_denied"
	FieldSuccessor   = "s_in_charge"
	FieldSuperior    = "s_superior"
)

var approvalChain = [StageCount]StageDescriptor{
	{Level: 1, Role: RoleDepartmentHead, TimestampField: "dt_approved", CommentField: "s_approved"},
	{Level: 2, Role: RoleDivisionHead, TimestampField: "dt_approved_1", CommentField: "s_approved_1"},
	{Level: 3, Role: RoleDirector, TimestampField: "dt_approved_2", CommentField: "s_approved_2"},
	{Level: 4, Role: RoleExecutiveDirector, TimestampField: "dt_approved_3", CommentField: "s_approved_3"},
	{Level: 5, Role: RoleSeniorManagingDirector, TimestampField: "dt_approved_4", CommentField: "s_approved_4"},
	{Level: 6, Role: RolePresident, TimestampField: "dt_approved_5", CommentField: "s_approved_5"},
	{Level: 7, Role: RoleGeneralAffairs, TimestampField: "dt_checked", CommentField: "s_checked"},
}

// ApprovalChain 返回按顺序排列的审批阶段（副本）
func ApprovalChain() []StageDescriptor {
	chain := make([]StageDescriptor, StageCount)
	copy(chain, approvalChain[:])
	return chain
}

// Stage 返回指定级别的阶段描述,level 取值 1..7
func Stage(level int) (StageDescriptor, bool) {
	if level < 1 || level > StageCount {
		return StageDescriptor{}, false
	}
	return approvalChain[level-1], true
}
