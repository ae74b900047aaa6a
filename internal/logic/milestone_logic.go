package logic

import (
	"errors"
	"fmt"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/logger"
	"github.com/fundlab/mfs/internal/model"
	"gorm.io/gorm"
)

// MilestoneLogic 里程碑状态机逻辑。
// 单个里程碑的状态流转：
//
//	未释放 -> 已释放/pending -> proposed -> completed（终态）
//	                        ^              |
//	                        +---- 投票失败重置 ----+
type MilestoneLogic struct {
	engine *Engine
}

// NewMilestoneLogic 创建里程碑逻辑
func NewMilestoneLogic(engine *Engine) *MilestoneLogic {
	return &MilestoneLogic{engine: engine}
}

// GetMilestone 获取里程碑
func (m *MilestoneLogic) GetMilestone(projectId int64, index int) (*model.MilestoneModel, error) {
	if index < 0 || index >= model.MilestoneCount {
		return nil, apperr.InvalidArgument(apperr.CodeInvalidArgument, "里程碑序号非法: %d", index)
	}

	var milestone model.MilestoneModel
	err := m.engine.DB().Where("project_id = ? AND idx = ?", projectId, index).
		First(&milestone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("项目 %d 里程碑 %d 不存在", projectId, index)
		}
		return nil, fmt.Errorf("获取里程碑失败: %w", err)
	}
	return &milestone, nil
}

// loadForUpdate 在事务内加载项目和里程碑
func (m *MilestoneLogic) loadForUpdate(tx *gorm.DB, projectId int64, index int) (*model.ProjectModel, *model.MilestoneModel, error) {
	if index < 0 || index >= model.MilestoneCount {
		return nil, nil, apperr.InvalidArgument(apperr.CodeInvalidArgument, "里程碑序号非法: %d", index)
	}

	var project model.ProjectModel
	if err := tx.First(&project, projectId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("项目 %d 不存在", projectId)
		}
		return nil, nil, err
	}

	var milestone model.MilestoneModel
	if err := tx.Where("project_id = ? AND idx = ?", projectId, index).
		First(&milestone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("项目 %d 里程碑 %d 不存在", projectId, index)
		}
		return nil, nil, err
	}

	return &project, &milestone, nil
}

// ReleaseMilestone 释放里程碑资金给创建者。
// 里程碑0要求项目已达标，后续里程碑要求前一个里程碑投票通过。
func (m *MilestoneLogic) ReleaseMilestone(projectId int64, index int, caller string) (string, error) {
	opId := newOpId()
	err := m.engine.withWrite(func(tx *gorm.DB) error {
		project, milestone, err := m.loadForUpdate(tx, projectId, index)
		if err != nil {
			return err
		}

		if caller != project.CreatorAddress {
			return apperr.Unauthorized(apperr.CodeNotCreator,
				"只有项目创建者可以释放里程碑资金")
		}
		if milestone.Released {
			return apperr.PreconditionFailed(apperr.CodeAlreadyReleased,
				"里程碑 %d 资金已释放", index)
		}

		if index == 0 {
			if !project.FullyFunded {
				return apperr.PreconditionFailed(apperr.CodeFundingIncomplete,
					"项目 %d 尚未达标，无法释放首个里程碑", projectId)
			}
		} else {
			var prior model.MilestoneModel
			if err := tx.Where("project_id = ? AND idx = ?", projectId, index-1).
				First(&prior).Error; err != nil {
				return err
			}
			if !prior.Completed {
				return apperr.PreconditionFailed(apperr.CodePriorMilestoneIncomplete,
					"里程碑 %d 尚未通过投票，无法释放里程碑 %d", index-1, index)
			}
		}

		if err := m.engine.Ledger().ReleaseFromEscrow(tx, project, milestone, opId); err != nil {
			return err
		}

		milestone.Released = true
		if err := tx.Model(&model.MilestoneModel{}).Where("id = ?", milestone.Id).
			Update("released", true).Error; err != nil {
			return err
		}

		return m.engine.appendEvent(tx, model.EventMilestoneReleased, projectId, &index, caller, map[string]interface{}{
			"amount": milestone.Amount,
		}, opId)
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindInvariantViolation) {
			logger.Fatal("Escrow invariant violated on project %d milestone %d: %v", projectId, index, err)
		}
		return "", err
	}

	logger.Info("Project %d milestone %d released by %s", projectId, index, caller)
	return opId, nil
}

// ProposeMilestoneCompletion 提交完成证明，开启新一轮投票周期。
// 周期号递增，计票清零，截止时间为当前时间加投票窗口。
func (m *MilestoneLogic) ProposeMilestoneCompletion(projectId int64, index int, caller, proofURI string) (string, error) {
	if proofURI == "" {
		return "", apperr.InvalidArgument(apperr.CodeInvalidArgument, "证明URI不能为空")
	}

	opId := newOpId()
	err := m.engine.withWrite(func(tx *gorm.DB) error {
		project, milestone, err := m.loadForUpdate(tx, projectId, index)
		if err != nil {
			return err
		}

		if caller != project.CreatorAddress {
			return apperr.Unauthorized(apperr.CodeNotCreator,
				"只有项目创建者可以提交完成证明")
		}
		if !milestone.Released {
			return apperr.PreconditionFailed(apperr.CodeNotReleased,
				"里程碑 %d 资金尚未释放，无法提交证明", index)
		}
		if milestone.Completed {
			return apperr.PreconditionFailed(apperr.CodeAlreadyCompleted,
				"里程碑 %d 已完成", index)
		}
		if milestone.Status == model.MilestoneStatusProposed {
			return apperr.PreconditionFailed(apperr.CodeVotingAlreadyActive,
				"里程碑 %d 投票进行中", index)
		}

		deadline := m.engine.now().Add(m.engine.votingPeriod)
		cycle := milestone.Cycle + 1
		if err := tx.Model(&model.MilestoneModel{}).Where("id = ?", milestone.Id).
			Updates(map[string]interface{}{
				"status":         model.MilestoneStatusProposed,
				"proof_uri":      proofURI,
				"cycle":          cycle,
				"agree_count":    0,
				"disagree_count": 0,
				"total_votes":    0,
				"vote_deadline":  deadline,
				"finalized":      false,
			}).Error; err != nil {
			return err
		}

		return m.engine.appendEvent(tx, model.EventProposalSubmitted, projectId, &index, caller, map[string]interface{}{
			"proof_uri": proofURI,
			"cycle":     cycle,
			"deadline":  deadline,
		}, opId)
	})
	if err != nil {
		return "", err
	}

	logger.Info("Project %d milestone %d proposal submitted by %s", projectId, index, caller)
	return opId, nil
}

// FinalizeMilestoneVote 结算到期的投票周期，任何人可调用。
// 有效票中赞成严格过半则里程碑完成，否则重置为pending等待重新提案；
// 零票视为失败。证明URI保留备查。
func (m *MilestoneLogic) FinalizeMilestoneVote(projectId int64, index int) (string, error) {
	opId := newOpId()
	var passed bool
	err := m.engine.withWrite(func(tx *gorm.DB) error {
		_, milestone, err := m.loadForUpdate(tx, projectId, index)
		if err != nil {
			return err
		}

		if milestone.Status != model.MilestoneStatusProposed || milestone.Finalized {
			return apperr.PreconditionFailed(apperr.CodeVotingNotActive,
				"里程碑 %d 没有进行中的投票", index)
		}
		now := m.engine.now()
		if milestone.VoteDeadline == nil || now.Before(*milestone.VoteDeadline) {
			return apperr.PreconditionFailed(apperr.CodeDeadlineNotReached,
				"里程碑 %d 投票尚未截止", index)
		}

		// 严格过半：agree*2 > total，零票不通过
		passed = milestone.TotalVotes > 0 && milestone.AgreeCount*2 > milestone.TotalVotes

		updates := map[string]interface{}{"finalized": true}
		eventType := model.EventProposalRejected
		if passed {
			updates["completed"] = true
			updates["status"] = model.MilestoneStatusCompleted
			eventType = model.EventMilestoneCompleted
		} else {
			updates["status"] = model.MilestoneStatusPending
		}
		if err := tx.Model(&model.MilestoneModel{}).Where("id = ?", milestone.Id).
			Updates(updates).Error; err != nil {
			return err
		}

		return m.engine.appendEvent(tx, eventType, projectId, &index, "", map[string]interface{}{
			"cycle":          milestone.Cycle,
			"agree_count":    milestone.AgreeCount,
			"disagree_count": milestone.DisagreeCount,
			"total_votes":    milestone.TotalVotes,
		}, opId)
	})
	if err != nil {
		return "", err
	}

	logger.Info("Project %d milestone %d vote finalized, passed=%v", projectId, index, passed)
	return opId, nil
}

// ListExpiredProposals 查找投票已截止但尚未结算的里程碑
func (m *MilestoneLogic) ListExpiredProposals() ([]model.MilestoneModel, error) {
	var milestones []model.MilestoneModel
	err := m.engine.DB().
		Where("status = ? AND finalized = ? AND vote_deadline <= ?",
			model.MilestoneStatusProposed, false, m.engine.now()).
		Find(&milestones).Error
	if err != nil {
		return nil, fmt.Errorf("获取到期投票失败: %w", err)
	}
	return milestones, nil
}
