package task

import (
	"time"

	"github.com/fundlab/mfs/internal/config"
	"github.com/fundlab/mfs/internal/logger"
	"github.com/fundlab/mfs/internal/logic"
	"github.com/fundlab/mfs/internal/model"
	"github.com/go-co-op/gocron/v2"
)

// FundingStatsJob 周期性输出平台整体筹款统计
type FundingStatsJob struct {
	engine *logic.Engine
	config *config.Config
}

// NewFundingStatsJob 创建统计任务
func NewFundingStatsJob(engine *logic.Engine, cfg *config.Config) *FundingStatsJob {
	return &FundingStatsJob{
		engine: engine,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *FundingStatsJob) GetName() string {
	return "funding_stats_reporter"
}

// GetSchedule 获取调度配置
func (j *FundingStatsJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(10 * time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *FundingStatsJob) Execute() {
	db := j.engine.DB()

	var totalProjects int64
	db.Model(&model.ProjectModel{}).Count(&totalProjects)

	var fundedProjects int64
	db.Model(&model.ProjectModel{}).Where("fully_funded = ?", true).Count(&fundedProjects)

	var totalRaised int64
	db.Model(&model.ProjectModel{}).Select("COALESCE(SUM(current_amount), 0)").Scan(&totalRaised)

	var totalEscrow int64
	db.Model(&model.ProjectModel{}).Select("COALESCE(SUM(escrow_balance), 0)").Scan(&totalEscrow)

	var activeVotes int64
	db.Model(&model.MilestoneModel{}).
		Where("status = ?", model.MilestoneStatusProposed).Count(&activeVotes)

	logger.Info("Platform stats: projects=%d funded=%d raised=%d escrow=%d active_votes=%d",
		totalProjects, fundedProjects, totalRaised, totalEscrow, activeVotes)
}
