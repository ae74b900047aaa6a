package logic

import (
	"errors"
	"fmt"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/logger"
	"github.com/fundlab/mfs/internal/model"
	"gorm.io/gorm"
)

// ProjectLogic 项目业务逻辑
type ProjectLogic struct {
	engine *Engine
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(engine *Engine) *ProjectLogic {
	return &ProjectLogic{engine: engine}
}

// CreateProject 创建项目，分配顺序ID并生成3个未释放的里程碑
func (p *ProjectLogic) CreateProject(creator, title string, targetAmount int64,
	milestoneNames [model.MilestoneCount]string, milestoneAmounts [model.MilestoneCount]int64,
	rewardURI string) (*model.ProjectModel, string, error) {

	if creator == "" {
		return nil, "", apperr.InvalidArgument(apperr.CodeInvalidArgument, "创建者地址不能为空")
	}
	if title == "" {
		return nil, "", apperr.InvalidArgument(apperr.CodeInvalidArgument, "项目标题不能为空")
	}
	if targetAmount <= 0 {
		return nil, "", apperr.InvalidArgument(apperr.CodeInvalidAmount, "目标金额必须大于0")
	}

	var sum int64
	for i, amount := range milestoneAmounts {
		if amount <= 0 {
			return nil, "", apperr.InvalidArgument(apperr.CodeInvalidMilestoneBudget,
				"里程碑 %d 金额必须大于0", i)
		}
		sum += amount
	}
	if sum > targetAmount {
		return nil, "", apperr.InvalidArgument(apperr.CodeInvalidMilestoneBudget,
			"里程碑金额之和 %d 超过目标金额 %d", sum, targetAmount)
	}

	opId := newOpId()
	project := &model.ProjectModel{
		Title:          title,
		RewardURI:      rewardURI,
		TargetAmount:   targetAmount,
		CurrentAmount:  0,
		EscrowBalance:  0,
		FullyFunded:    false,
		CreatorAddress: creator,
	}

	err := p.engine.withWrite(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		for i := 0; i < model.MilestoneCount; i++ {
			milestone := model.MilestoneModel{
				ProjectId: project.Id,
				Index:     i,
				Name:      milestoneNames[i],
				Amount:    milestoneAmounts[i],
				Status:    model.MilestoneStatusPending,
			}
			if err := tx.Create(&milestone).Error; err != nil {
				return err
			}
			project.Milestones = append(project.Milestones, milestone)
		}

		return p.engine.appendEvent(tx, model.EventProjectCreated, project.Id, nil, creator, map[string]interface{}{
			"title":         title,
			"target_amount": targetAmount,
		}, opId)
	})
	if err != nil {
		return nil, "", err
	}

	logger.Info("Project %d created by %s, target %d", project.Id, creator, targetAmount)
	return project, opId, nil
}

// GetProject 获取项目详情（含里程碑）
func (p *ProjectLogic) GetProject(id int64) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := p.engine.DB().Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("idx ASC")
	}).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("项目 %d 不存在", id)
		}
		return nil, fmt.Errorf("获取项目详情失败: %w", err)
	}

	return &project, nil
}

// GetProjects 获取项目列表，creator为空时返回全部
func (p *ProjectLogic) GetProjects(creator string, page, pageSize int) ([]model.ProjectModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	query := p.engine.DB().Model(&model.ProjectModel{})
	if creator != "" {
		query = query.Where("creator_address = ?", creator)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取项目列表失败: %w", err)
	}

	var projects []model.ProjectModel
	if err := query.Order("id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("获取项目列表失败: %w", err)
	}

	return projects, total, nil
}

// GetProjectCount 获取项目总数
func (p *ProjectLogic) GetProjectCount() (int64, error) {
	var count int64
	if err := p.engine.DB().Model(&model.ProjectModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("获取项目总数失败: %w", err)
	}
	return count, nil
}

// GetRewardURI 获取项目奖励元数据URI
func (p *ProjectLogic) GetRewardURI(id int64) (string, error) {
	var project model.ProjectModel
	if err := p.engine.DB().Select("reward_uri").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("项目 %d 不存在", id)
		}
		return "", err
	}
	return project.RewardURI, nil
}
