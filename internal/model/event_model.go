package model

import (
	"time"
)

// EventModel 操作审计记录，每次成功的状态变更写入一条
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	EventType      string `json:"event_type" gorm:"not null;index"`
	ProjectId      int64  `json:"project_id" gorm:"not null;index"`
	MilestoneIndex *int   `json:"milestone_index"`
	Actor          string `json:"actor"`
	Data           string `json:"data" gorm:"type:text"`
	OpId           string `json:"op_id" gorm:"not null;index"`
}

// 事件类型
const (
	EventProjectCreated     = "ProjectCreated"
	EventContributionMade   = "ContributionMade"
	EventMilestoneReleased  = "MilestoneReleased"
	EventProposalSubmitted  = "ProposalSubmitted"
	EventVoteCast           = "VoteCast"
	EventMilestoneCompleted = "MilestoneCompleted"
	EventProposalRejected   = "ProposalRejected"
)

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
