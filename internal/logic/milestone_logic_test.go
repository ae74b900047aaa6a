package logic

import (
	"testing"
	"time"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseMilestoneGating(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := createTestProject(t, engine)
	milestoneLogic := NewMilestoneLogic(engine)

	// 未达标不能释放里程碑0
	_, err := milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeFundingIncomplete))

	fundTestProject(t, engine, project.Id)

	_, err = milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.NoError(t, err)

	milestone, err := milestoneLogic.GetMilestone(project.Id, 0)
	require.NoError(t, err)
	assert.True(t, milestone.Released)

	// 里程碑0尚未通过投票，里程碑1不能释放
	_, err = milestoneLogic.ReleaseMilestone(project.Id, 1, testCreator)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodePriorMilestoneIncomplete))
}

func TestReleaseMilestoneTwice(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := createTestProject(t, engine)
	milestoneLogic := NewMilestoneLogic(engine)

	fundTestProject(t, engine, project.Id)

	_, err := milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.NoError(t, err)

	// 重复释放失败且不重复转账
	_, err = milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyReleased))

	balance, err := engine.Ledger().GetBalance(engine.DB(), testCreator)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), balance)

	project2, err := NewProjectLogic(engine).GetProject(project.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), project2.EscrowBalance)
}

func TestReleaseMilestoneNotCreator(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := createTestProject(t, engine)
	milestoneLogic := NewMilestoneLogic(engine)

	fundTestProject(t, engine, project.Id)

	_, err := milestoneLogic.ReleaseMilestone(project.Id, 0, supporterA)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	// 状态未被改动
	milestone, err := milestoneLogic.GetMilestone(project.Id, 0)
	require.NoError(t, err)
	assert.False(t, milestone.Released)
}

func TestProposeMilestoneCompletion(t *testing.T) {
	engine, clock := newTestEngine(t)
	project := createTestProject(t, engine)
	milestoneLogic := NewMilestoneLogic(engine)

	fundTestProject(t, engine, project.Id)

	// 未释放不能提案
	_, err := milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, testCreator, "ipfs://proof")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotReleased))

	_, err = milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.NoError(t, err)

	// 非创建者不能提案
	_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, supporterA, "ipfs://proof")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	// 空证明URI拒绝
	_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, testCreator, "")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, testCreator, "ipfs://proof")
	require.NoError(t, err)

	milestone, err := milestoneLogic.GetMilestone(project.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusProposed, milestone.Status)
	assert.Equal(t, "ipfs://proof", milestone.ProofURI)
	assert.Equal(t, 1, milestone.Cycle)
	assert.Equal(t, int64(0), milestone.TotalVotes)
	assert.False(t, milestone.Finalized)
	require.NotNil(t, milestone.VoteDeadline)
	assert.Equal(t, clock.Now().Add(DefaultVotingPeriod).Unix(), milestone.VoteDeadline.Unix())

	// 投票进行中不能再次提案
	_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, testCreator, "ipfs://proof2")
	assert.True(t, apperr.IsCode(err, apperr.CodeVotingAlreadyActive))
}

func TestFinalizeVotePasses(t *testing.T) {
	engine, clock := newTestEngine(t)
	project := createTestProject(t, engine)
	milestoneLogic := NewMilestoneLogic(engine)
	voteLogic := NewVoteLogic(engine)

	fundTestProject(t, engine, project.Id)
	_, err := milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.NoError(t, err)
	_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, testCreator, "ipfs://abc")
	require.NoError(t, err)

	// 两票赞成一票反对
	_, err = voteLogic.VoteMilestoneCompletion(project.Id, 0, supporterA, true)
	require.NoError(t, err)
	_, err = voteLogic.VoteMilestoneCompletion(project.Id, 0, supporterB, true)
	require.NoError(t, err)
	_, err = voteLogic.VoteMilestoneCompletion(project.Id, 0, supporterC, false)
	require.NoError(t, err)

	// 截止前不能结算
	_, err = milestoneLogic.FinalizeMilestoneVote(project.Id, 0)
	assert.True(t, apperr.IsCode(err, apperr.CodeDeadlineNotReached))

	clock.Advance(DefaultVotingPeriod + time.Hour)

	_, err = milestoneLogic.FinalizeMilestoneVote(project.Id, 0)
	require.NoError(t, err)

	milestone, err := milestoneLogic.GetMilestone(project.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), milestone.AgreeCount)
	assert.Equal(t, int64(1), milestone.DisagreeCount)
	assert.Equal(t, int64(3), milestone.TotalVotes)
	assert.True(t, milestone.Completed)
	assert.True(t, milestone.Finalized)
	assert.Equal(t, model.MilestoneStatusCompleted, milestone.Status)

	// 前一里程碑完成后可以释放下一个
	_, err = milestoneLogic.ReleaseMilestone(project.Id, 1, testCreator)
	require.NoError(t, err)
}

func TestFinalizeVoteZeroVotesResets(t *testing.T) {
	engine, clock := newTestEngine(t)
	project := createTestProject(t, engine)
	milestoneLogic := NewMilestoneLogic(engine)

	fundTestProject(t, engine, project.Id)
	_, err := milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.NoError(t, err)
	_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, testCreator, "ipfs://abc")
	require.NoError(t, err)

	clock.Advance(DefaultVotingPeriod + time.Hour)

	// 零票按失败处理，重置回pending
	_, err = milestoneLogic.FinalizeMilestoneVote(project.Id, 0)
	require.NoError(t, err)

	milestone, err := milestoneLogic.GetMilestone(project.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusPending, milestone.Status)
	assert.True(t, milestone.Released)
	assert.False(t, milestone.Completed)
	assert.True(t, milestone.Finalized)
	// 证明保留备查
	assert.Equal(t, "ipfs://abc", milestone.ProofURI)

	// 结算后没有进行中的投票
	_, err = milestoneLogic.FinalizeMilestoneVote(project.Id, 0)
	assert.True(t, apperr.IsCode(err, apperr.CodeVotingNotActive))
}

func TestFinalizeVoteTieFails(t *testing.T) {
	engine, clock := newTestEngine(t)
	project := createTestProject(t, engine)
	milestoneLogic := NewMilestoneLogic(engine)
	voteLogic := NewVoteLogic(engine)

	fundTestProject(t, engine, project.Id)
	_, err := milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.NoError(t, err)
	_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, testCreator, "ipfs://abc")
	require.NoError(t, err)

	// 50/50 平票，严格过半不成立
	_, err = voteLogic.VoteMilestoneCompletion(project.Id, 0, supporterA, true)
	require.NoError(t, err)
	_, err = voteLogic.VoteMilestoneCompletion(project.Id, 0, supporterB, false)
	require.NoError(t, err)

	clock.Advance(DefaultVotingPeriod + time.Hour)

	_, err = milestoneLogic.FinalizeMilestoneVote(project.Id, 0)
	require.NoError(t, err)

	milestone, err := milestoneLogic.GetMilestone(project.Id, 0)
	require.NoError(t, err)
	assert.False(t, milestone.Completed)
	assert.Equal(t, model.MilestoneStatusPending, milestone.Status)
}

func TestEscrowConservation(t *testing.T) {
	engine, clock := newTestEngine(t)
	project := createTestProject(t, engine)
	milestoneLogic := NewMilestoneLogic(engine)
	voteLogic := NewVoteLogic(engine)

	fundTestProject(t, engine, project.Id)

	// 依次走完三个里程碑，每次释放后托管余额减少对应金额
	expectedEscrow := int64(12000)
	for index := 0; index < model.MilestoneCount; index++ {
		_, err := milestoneLogic.ReleaseMilestone(project.Id, index, testCreator)
		require.NoError(t, err)
		expectedEscrow -= 3000

		current, err := NewProjectLogic(engine).GetProject(project.Id)
		require.NoError(t, err)
		assert.Equal(t, expectedEscrow, current.EscrowBalance)

		_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, index, testCreator, "ipfs://proof")
		require.NoError(t, err)
		_, err = voteLogic.VoteMilestoneCompletion(project.Id, index, supporterA, true)
		require.NoError(t, err)

		clock.Advance(DefaultVotingPeriod + time.Hour)
		_, err = milestoneLogic.FinalizeMilestoneVote(project.Id, index)
		require.NoError(t, err)
	}

	// 创建者累计收到三个里程碑的全部托管金额
	balance, err := engine.Ledger().GetBalance(engine.DB(), testCreator)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), balance)
}

func TestListExpiredProposals(t *testing.T) {
	engine, clock := newTestEngine(t)
	project := createTestProject(t, engine)
	milestoneLogic := NewMilestoneLogic(engine)

	fundTestProject(t, engine, project.Id)
	_, err := milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.NoError(t, err)
	_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, testCreator, "ipfs://abc")
	require.NoError(t, err)

	expired, err := milestoneLogic.ListExpiredProposals()
	require.NoError(t, err)
	assert.Empty(t, expired)

	clock.Advance(DefaultVotingPeriod + time.Hour)

	expired, err = milestoneLogic.ListExpiredProposals()
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, project.Id, expired[0].ProjectId)
	assert.Equal(t, 0, expired[0].Index)
}
