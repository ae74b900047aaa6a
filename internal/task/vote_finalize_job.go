package task

import (
	"time"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/config"
	"github.com/fundlab/mfs/internal/logger"
	"github.com/fundlab/mfs/internal/logic"
	"github.com/go-co-op/gocron/v2"
)

// VoteFinalizeJob 扫描投票已截止的里程碑并自动结算。
// 结算本就允许任何人触发，这里只是把"任何人"做成定时任务。
type VoteFinalizeJob struct {
	engine         *logic.Engine
	config         *config.Config
	milestoneLogic *logic.MilestoneLogic
}

// NewVoteFinalizeJob 创建投票结算任务
func NewVoteFinalizeJob(engine *logic.Engine, cfg *config.Config) *VoteFinalizeJob {
	return &VoteFinalizeJob{
		engine:         engine,
		config:         cfg,
		milestoneLogic: logic.NewMilestoneLogic(engine),
	}
}

// GetName 获取任务名称
func (j *VoteFinalizeJob) GetName() string {
	return "vote_finalize_sweeper"
}

// GetSchedule 获取调度配置
func (j *VoteFinalizeJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *VoteFinalizeJob) Execute() {
	expired, err := j.milestoneLogic.ListExpiredProposals()
	if err != nil {
		logger.Error("Failed to list expired proposals: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	logger.Info("Found %d expired voting cycles to finalize", len(expired))

	finalized := 0
	for _, milestone := range expired {
		_, err := j.milestoneLogic.FinalizeMilestoneVote(milestone.ProjectId, milestone.Index)
		if err != nil {
			// 手工结算可能抢先一步，状态不满足直接跳过
			if apperr.IsKind(err, apperr.KindPreconditionFailed) {
				continue
			}
			logger.Error("Failed to finalize project %d milestone %d: %v",
				milestone.ProjectId, milestone.Index, err)
			continue
		}
		finalized++
	}

	logger.Info("Vote finalize sweep completed, finalized %d cycles", finalized)
}
