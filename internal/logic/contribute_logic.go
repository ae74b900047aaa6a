package logic

import (
	"errors"
	"fmt"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/ledger"
	"github.com/fundlab/mfs/internal/logger"
	"github.com/fundlab/mfs/internal/model"
	"gorm.io/gorm"
)

// ContributeLogic 贡献业务逻辑
type ContributeLogic struct {
	engine *Engine
}

// NewContributeLogic 创建贡献业务逻辑
func NewContributeLogic(engine *Engine) *ContributeLogic {
	return &ContributeLogic{engine: engine}
}

// SupportProject 支持项目。扣除平台手续费后净额计入项目与贡献记录，
// 项目达标后不再接受贡献。
func (c *ContributeLogic) SupportProject(projectId int64, supporter string, amount int64) (string, error) {
	if supporter == "" {
		return "", apperr.InvalidArgument(apperr.CodeInvalidArgument, "支持者地址不能为空")
	}
	if amount <= 0 {
		return "", apperr.InvalidArgument(apperr.CodeInvalidAmount, "贡献金额必须大于0")
	}

	opId := newOpId()
	err := c.engine.withWrite(func(tx *gorm.DB) error {
		var project model.ProjectModel
		if err := tx.First(&project, projectId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("项目 %d 不存在", projectId)
			}
			return err
		}

		if project.FullyFunded {
			return apperr.PreconditionFailed(apperr.CodeFundingClosed,
				"项目 %d 已达标，不再接受贡献", projectId)
		}

		net, fee := ledger.ComputeFeeSplit(amount)
		if net <= 0 {
			return apperr.InvalidArgument(apperr.CodeInvalidAmount, "贡献净额必须大于0")
		}

		// 净额计入项目，达标标志只会由false变true
		project.CurrentAmount += net
		project.EscrowBalance += net
		if project.CurrentAmount >= project.TargetAmount {
			project.FullyFunded = true
		}
		if err := tx.Model(&model.ProjectModel{}).Where("id = ?", project.Id).
			Updates(map[string]interface{}{
				"current_amount": project.CurrentAmount,
				"escrow_balance": project.EscrowBalance,
				"fully_funded":   project.FullyFunded,
			}).Error; err != nil {
			return err
		}

		// 累计贡献记录
		var contribution model.ContributionModel
		err := tx.Where("project_id = ? AND address = ?", projectId, supporter).
			First(&contribution).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			contribution = model.ContributionModel{
				ProjectId: projectId,
				Address:   supporter,
				Amount:    net,
			}
			if err := tx.Create(&contribution).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&contribution).
				Update("amount", contribution.Amount+net).Error; err != nil {
				return err
			}
		}

		if err := c.engine.Ledger().CollectFee(tx, projectId, fee, opId); err != nil {
			return err
		}

		return c.engine.appendEvent(tx, model.EventContributionMade, projectId, nil, supporter, map[string]interface{}{
			"gross": amount,
			"net":   net,
			"fee":   fee,
		}, opId)
	})
	if err != nil {
		return "", err
	}

	logger.Info("Project %d received contribution %d from %s", projectId, amount, supporter)
	return opId, nil
}

// GetContribution 查询支持者累计贡献净额，无记录返回0
func (c *ContributeLogic) GetContribution(projectId int64, supporter string) (int64, error) {
	var contribution model.ContributionModel
	err := c.engine.DB().Where("project_id = ? AND address = ?", projectId, supporter).
		First(&contribution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("获取贡献记录失败: %w", err)
	}
	return contribution.Amount, nil
}

// IsSupporter 累计贡献大于0即为支持者
func (c *ContributeLogic) IsSupporter(projectId int64, address string) (bool, error) {
	amount, err := c.GetContribution(projectId, address)
	if err != nil {
		return false, err
	}
	return amount > 0, nil
}

// GetSupporterContributions 查询某地址支持过的所有项目
func (c *ContributeLogic) GetSupporterContributions(address string) ([]model.ContributionModel, error) {
	var contributions []model.ContributionModel
	if err := c.engine.DB().Where("address = ?", address).
		Order("project_id ASC").Find(&contributions).Error; err != nil {
		return nil, fmt.Errorf("获取支持记录失败: %w", err)
	}
	return contributions, nil
}

// CountSupporters 统计项目支持者数量
func (c *ContributeLogic) CountSupporters(projectId int64) (int64, error) {
	var count int64
	if err := c.engine.DB().Model(&model.ContributionModel{}).
		Where("project_id = ? AND amount > 0", projectId).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
