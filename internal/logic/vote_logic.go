package logic

import (
	"errors"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/logger"
	"github.com/fundlab/mfs/internal/model"
	"gorm.io/gorm"
)

// VoteLogic 投票业务逻辑
type VoteLogic struct {
	engine *Engine
}

// NewVoteLogic 创建投票逻辑
func NewVoteLogic(engine *Engine) *VoteLogic {
	return &VoteLogic{engine: engine}
}

// VoteMilestoneCompletion 支持者对当前投票周期投票。
// 回执按（项目、里程碑、周期、地址）唯一，失败重置后可在新周期再投。
func (v *VoteLogic) VoteMilestoneCompletion(projectId int64, index int, voter string, agree bool) (string, error) {
	if voter == "" {
		return "", apperr.InvalidArgument(apperr.CodeInvalidArgument, "投票者地址不能为空")
	}
	if index < 0 || index >= model.MilestoneCount {
		return "", apperr.InvalidArgument(apperr.CodeInvalidArgument, "里程碑序号非法: %d", index)
	}

	opId := newOpId()
	err := v.engine.withWrite(func(tx *gorm.DB) error {
		var milestone model.MilestoneModel
		if err := tx.Where("project_id = ? AND idx = ?", projectId, index).
			First(&milestone).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("项目 %d 里程碑 %d 不存在", projectId, index)
			}
			return err
		}

		if milestone.Status != model.MilestoneStatusProposed {
			return apperr.PreconditionFailed(apperr.CodeVotingNotActive,
				"里程碑 %d 没有进行中的投票", index)
		}
		now := v.engine.now()
		if milestone.VoteDeadline == nil || !now.Before(*milestone.VoteDeadline) {
			return apperr.PreconditionFailed(apperr.CodeVotingClosed,
				"里程碑 %d 投票已截止", index)
		}

		// 投票资格：累计贡献大于0
		var contribution model.ContributionModel
		err := tx.Where("project_id = ? AND address = ?", projectId, voter).
			First(&contribution).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && contribution.Amount <= 0) {
			return apperr.PreconditionFailed(apperr.CodeNotSupporter,
				"只有项目支持者可以投票")
		}
		if err != nil {
			return err
		}

		// 同一周期内每个地址只能投一次
		var existing int64
		if err := tx.Model(&model.VoteModel{}).
			Where("project_id = ? AND milestone_index = ? AND cycle = ? AND address = ?",
				projectId, index, milestone.Cycle, voter).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.PreconditionFailed(apperr.CodeAlreadyVoted,
				"本周期已投过票")
		}

		vote := model.VoteModel{
			ProjectId:      projectId,
			MilestoneIndex: index,
			Cycle:          milestone.Cycle,
			Address:        voter,
			Agree:          agree,
		}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"total_votes": milestone.TotalVotes + 1,
		}
		if agree {
			updates["agree_count"] = milestone.AgreeCount + 1
		} else {
			updates["disagree_count"] = milestone.DisagreeCount + 1
		}
		if err := tx.Model(&model.MilestoneModel{}).Where("id = ?", milestone.Id).
			Updates(updates).Error; err != nil {
			return err
		}

		return v.engine.appendEvent(tx, model.EventVoteCast, projectId, &index, voter, map[string]interface{}{
			"cycle": milestone.Cycle,
			"agree": agree,
		}, opId)
	})
	if err != nil {
		return "", err
	}

	logger.Info("Project %d milestone %d vote cast by %s, agree=%v", projectId, index, voter, agree)
	return opId, nil
}

// GetVote 查询某地址在当前周期的投票回执，未投返回nil
func (v *VoteLogic) GetVote(projectId int64, index int, voter string) (*model.VoteModel, error) {
	var milestone model.MilestoneModel
	if err := v.engine.DB().Where("project_id = ? AND idx = ?", projectId, index).
		First(&milestone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("项目 %d 里程碑 %d 不存在", projectId, index)
		}
		return nil, err
	}

	var vote model.VoteModel
	err := v.engine.DB().
		Where("project_id = ? AND milestone_index = ? AND cycle = ? AND address = ?",
			projectId, index, milestone.Cycle, voter).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}
