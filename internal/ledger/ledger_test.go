package ledger

import (
	"fmt"
	"testing"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/model"
	"github.com/fundlab/mfs/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := repository.InitSQLite(dsn)
	require.NoError(t, err)
	return db
}

func TestComputeFeeSplit(t *testing.T) {
	cases := []struct {
		gross int64
		net   int64
		fee   int64
	}{
		{1025, 1000, 25},
		{4100, 4000, 100},
		{10250, 10000, 250},
		{1, 1, 0},      // 小额向下取整，手续费为0
		{40, 40, 0},    // 40*25/1025 = 0
		{41, 40, 1},    // 41*25/1025 = 1
		{1024, 1000, 24},
	}

	for _, c := range cases {
		net, fee := ComputeFeeSplit(c.gross)
		assert.Equal(t, c.net, net, "gross=%d", c.gross)
		assert.Equal(t, c.fee, fee, "gross=%d", c.gross)
		// 拆分守恒
		assert.Equal(t, c.gross, net+fee, "gross=%d", c.gross)
	}
}

func TestFeeRatioConstants(t *testing.T) {
	assert.Equal(t, int64(25), FeeNumerator)
	assert.Equal(t, int64(1025), FeeDenominator)
}

func TestCreditAndGetBalance(t *testing.T) {
	db := newTestDB(t)
	l := New("0x00000000000000000000000000000000000000fe")

	addr := "0x1111111111111111111111111111111111111111"

	// 账户不存在返回0
	balance, err := l.GetBalance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	require.NoError(t, l.Credit(db, addr, 1000))
	require.NoError(t, l.Credit(db, addr, 500))

	balance, err = l.GetBalance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)

	// 非正金额拒绝
	err = l.Credit(db, addr, 0)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidAmount))
	err = l.Credit(db, addr, -1)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidAmount))
}

func TestCollectFee(t *testing.T) {
	db := newTestDB(t)
	feeAccount := "0x00000000000000000000000000000000000000fe"
	l := New(feeAccount)

	require.NoError(t, l.CollectFee(db, 1, 100, "op-1"))
	// 零手续费不产生记录
	require.NoError(t, l.CollectFee(db, 1, 0, "op-2"))

	balance, err := l.GetBalance(db, feeAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	var records []model.TransferRecordModel
	require.NoError(t, db.Where("project_id = ?", 1).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, model.TransferKindFee, records[0].Kind)
	assert.Equal(t, feeAccount, records[0].ToAddress)
	assert.Equal(t, "op-1", records[0].OpId)
}

func TestReleaseFromEscrow(t *testing.T) {
	db := newTestDB(t)
	l := New("0x00000000000000000000000000000000000000fe")

	creator := "0x2222222222222222222222222222222222222222"
	project := &model.ProjectModel{
		Title:          "测试项目",
		TargetAmount:   9000,
		CurrentAmount:  9000,
		EscrowBalance:  9000,
		FullyFunded:    true,
		CreatorAddress: creator,
	}
	require.NoError(t, db.Create(project).Error)

	milestone := &model.MilestoneModel{
		ProjectId: project.Id,
		Index:     0,
		Name:      "原型",
		Amount:    3000,
		Status:    model.MilestoneStatusPending,
	}
	require.NoError(t, db.Create(milestone).Error)

	require.NoError(t, l.ReleaseFromEscrow(db, project, milestone, "op-release"))

	assert.Equal(t, int64(6000), project.EscrowBalance)

	var stored model.ProjectModel
	require.NoError(t, db.First(&stored, project.Id).Error)
	assert.Equal(t, int64(6000), stored.EscrowBalance)

	balance, err := l.GetBalance(db, creator)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), balance)

	var record model.TransferRecordModel
	require.NoError(t, db.Where("project_id = ? AND kind = ?", project.Id, model.TransferKindRelease).First(&record).Error)
	require.NotNil(t, record.MilestoneIndex)
	assert.Equal(t, 0, *record.MilestoneIndex)
	assert.Equal(t, int64(3000), record.Amount)
}

func TestReleaseFromEscrowInsufficient(t *testing.T) {
	db := newTestDB(t)
	l := New("0x00000000000000000000000000000000000000fe")

	project := &model.ProjectModel{
		Title:          "测试项目",
		TargetAmount:   9000,
		EscrowBalance:  1000,
		CreatorAddress: "0x2222222222222222222222222222222222222222",
	}
	require.NoError(t, db.Create(project).Error)

	milestone := &model.MilestoneModel{
		ProjectId: project.Id,
		Index:     0,
		Name:      "原型",
		Amount:    3000,
		Status:    model.MilestoneStatusPending,
	}
	require.NoError(t, db.Create(milestone).Error)

	err := l.ReleaseFromEscrow(db, project, milestone, "op-bad")
	assert.True(t, apperr.IsKind(err, apperr.KindInvariantViolation))
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientEscrow))

	// 失败时托管余额不变
	assert.Equal(t, int64(1000), project.EscrowBalance)
}
