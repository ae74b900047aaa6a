package ledger

import (
	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 平台手续费比例：fee = gross * 25 / 1025（约2.439%），只在贡献侧收取。
// 全部使用整数运算，避免浮点误差。
const (
	FeeNumerator   int64 = 25
	FeeDenominator int64 = 1025
)

// ComputeFeeSplit 手续费拆分
func ComputeFeeSplit(gross int64) (net int64, fee int64) {
	fee = gross * FeeNumerator / FeeDenominator
	net = gross - fee
	return net, fee
}

// Ledger 账户余额与划转记录
type Ledger struct {
	feeAccount string
}

// New 创建账本
func New(feeAccount string) *Ledger {
	return &Ledger{feeAccount: feeAccount}
}

// FeeAccount 平台手续费账户地址
func (l *Ledger) FeeAccount() string {
	return l.feeAccount
}

// Credit 给账户入账，账户不存在时创建
func (l *Ledger) Credit(tx *gorm.DB, address string, amount int64) error {
	if amount <= 0 {
		return apperr.InvalidArgument(apperr.CodeInvalidAmount, "入账金额必须大于0: %d", amount)
	}

	account := model.AccountModel{Address: address, Balance: amount}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("balance + ?", amount)}),
	}).Create(&account).Error
	if err != nil {
		return err
	}
	return nil
}

// GetBalance 查询账户余额，账户不存在返回0
func (l *Ledger) GetBalance(db *gorm.DB, address string) (int64, error) {
	var account model.AccountModel
	if err := db.Where("address = ?", address).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return account.Balance, nil
}

// CollectFee 手续费入账平台账户并记录划转
func (l *Ledger) CollectFee(tx *gorm.DB, projectId int64, fee int64, opId string) error {
	if fee == 0 {
		return nil
	}
	if err := l.Credit(tx, l.feeAccount, fee); err != nil {
		return err
	}
	record := model.TransferRecordModel{
		ProjectId: projectId,
		Kind:      model.TransferKindFee,
		ToAddress: l.feeAccount,
		Amount:    fee,
		OpId:      opId,
	}
	return tx.Create(&record).Error
}

// ReleaseFromEscrow 从项目托管余额划转里程碑金额到创建者账户。
// 托管余额不足说明内部账目已经不一致，按致命错误处理。
func (l *Ledger) ReleaseFromEscrow(tx *gorm.DB, project *model.ProjectModel, milestone *model.MilestoneModel, opId string) error {
	if project.EscrowBalance < milestone.Amount {
		return apperr.InvariantViolation(apperr.CodeInsufficientEscrow,
			"项目 %d 托管余额不足: 余额=%d, 需要=%d", project.Id, project.EscrowBalance, milestone.Amount)
	}

	project.EscrowBalance -= milestone.Amount
	if err := tx.Model(&model.ProjectModel{}).Where("id = ?", project.Id).
		Update("escrow_balance", project.EscrowBalance).Error; err != nil {
		return err
	}

	if err := l.Credit(tx, project.CreatorAddress, milestone.Amount); err != nil {
		return err
	}

	index := milestone.Index
	record := model.TransferRecordModel{
		ProjectId:      project.Id,
		MilestoneIndex: &index,
		Kind:           model.TransferKindRelease,
		ToAddress:      project.CreatorAddress,
		Amount:         milestone.Amount,
		OpId:           opId,
	}
	return tx.Create(&record).Error
}
