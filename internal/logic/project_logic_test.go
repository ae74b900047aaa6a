package logic

import (
	"testing"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	engine, _ := newTestEngine(t)
	projectLogic := NewProjectLogic(engine)

	project := createTestProject(t, engine)

	assert.Equal(t, int64(1), project.Id)
	assert.Equal(t, testCreator, project.CreatorAddress)
	assert.Equal(t, int64(9000), project.TargetAmount)
	assert.Equal(t, int64(0), project.CurrentAmount)
	assert.False(t, project.FullyFunded)
	require.Len(t, project.Milestones, model.MilestoneCount)

	for i, milestone := range project.Milestones {
		assert.Equal(t, i, milestone.Index)
		assert.Equal(t, int64(3000), milestone.Amount)
		assert.False(t, milestone.Released)
		assert.False(t, milestone.Completed)
		assert.Equal(t, model.MilestoneStatusPending, milestone.Status)
	}

	// ID连续递增
	second := createTestProject(t, engine)
	assert.Equal(t, int64(2), second.Id)

	count, err := projectLogic.GetProjectCount()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCreateProjectBudgetOverflow(t *testing.T) {
	engine, _ := newTestEngine(t)
	projectLogic := NewProjectLogic(engine)

	// 里程碑总额超过目标金额，项目不应创建
	_, _, err := projectLogic.CreateProject(
		testCreator, "超额项目", 8000,
		[model.MilestoneCount]string{"a", "b", "c"},
		[model.MilestoneCount]int64{3000, 3000, 3000},
		"",
	)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidMilestoneBudget))

	count, err := projectLogic.GetProjectCount()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCreateProjectValidation(t *testing.T) {
	engine, _ := newTestEngine(t)
	projectLogic := NewProjectLogic(engine)

	names := [model.MilestoneCount]string{"a", "b", "c"}

	_, _, err := projectLogic.CreateProject(testCreator, "", 9000,
		names, [model.MilestoneCount]int64{1, 1, 1}, "")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	_, _, err = projectLogic.CreateProject(testCreator, "项目", 0,
		names, [model.MilestoneCount]int64{1, 1, 1}, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidAmount))

	// 单个里程碑金额必须大于0
	_, _, err = projectLogic.CreateProject(testCreator, "项目", 9000,
		names, [model.MilestoneCount]int64{3000, 0, 3000}, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidMilestoneBudget))
}

func TestGetProjectNotFound(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := NewProjectLogic(engine).GetProject(42)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGetProjectsByCreator(t *testing.T) {
	engine, _ := newTestEngine(t)
	projectLogic := NewProjectLogic(engine)

	createTestProject(t, engine)
	createTestProject(t, engine)

	other := "0x2222222222222222222222222222222222222222"
	_, _, err := projectLogic.CreateProject(other, "他人项目", 5000,
		[model.MilestoneCount]string{"a", "b", "c"},
		[model.MilestoneCount]int64{1000, 1000, 1000}, "")
	require.NoError(t, err)

	projects, total, err := projectLogic.GetProjects(testCreator, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, projects, 2)

	all, total, err := projectLogic.GetProjects("", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
}

func TestGetRewardURI(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := createTestProject(t, engine)

	uri, err := NewProjectLogic(engine).GetRewardURI(project.Id)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://reward-meta", uri)

	_, err = NewProjectLogic(engine).GetRewardURI(99)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
