package logic

import (
	"testing"
	"time"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openVoting 创建已达标项目并开启里程碑0的投票
func openVoting(t *testing.T, engine *Engine) int64 {
	t.Helper()

	project := createTestProject(t, engine)
	fundTestProject(t, engine, project.Id)

	milestoneLogic := NewMilestoneLogic(engine)
	_, err := milestoneLogic.ReleaseMilestone(project.Id, 0, testCreator)
	require.NoError(t, err)
	_, err = milestoneLogic.ProposeMilestoneCompletion(project.Id, 0, testCreator, "ipfs://proof")
	require.NoError(t, err)

	return project.Id
}

func TestVoteMilestoneCompletion(t *testing.T) {
	engine, _ := newTestEngine(t)
	projectId := openVoting(t, engine)
	voteLogic := NewVoteLogic(engine)

	opId, err := voteLogic.VoteMilestoneCompletion(projectId, 0, supporterA, true)
	require.NoError(t, err)
	assert.NotEmpty(t, opId)

	milestone, err := NewMilestoneLogic(engine).GetMilestone(projectId, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), milestone.AgreeCount)
	assert.Equal(t, int64(0), milestone.DisagreeCount)
	assert.Equal(t, int64(1), milestone.TotalVotes)

	vote, err := voteLogic.GetVote(projectId, 0, supporterA)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.True(t, vote.Agree)
}

func TestVoteNotSupporter(t *testing.T) {
	engine, _ := newTestEngine(t)
	projectId := openVoting(t, engine)

	outsider := "0xdddddddddddddddddddddddddddddddddddddddd"
	_, err := NewVoteLogic(engine).VoteMilestoneCompletion(projectId, 0, outsider, true)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotSupporter))
}

func TestVoteTwiceRejected(t *testing.T) {
	engine, _ := newTestEngine(t)
	projectId := openVoting(t, engine)
	voteLogic := NewVoteLogic(engine)

	_, err := voteLogic.VoteMilestoneCompletion(projectId, 0, supporterA, true)
	require.NoError(t, err)

	_, err = voteLogic.VoteMilestoneCompletion(projectId, 0, supporterA, false)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyVoted))

	// 计票不受影响
	milestone, err := NewMilestoneLogic(engine).GetMilestone(projectId, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), milestone.TotalVotes)
}

func TestVoteAfterDeadline(t *testing.T) {
	engine, clock := newTestEngine(t)
	projectId := openVoting(t, engine)

	clock.Advance(DefaultVotingPeriod + time.Minute)

	_, err := NewVoteLogic(engine).VoteMilestoneCompletion(projectId, 0, supporterA, true)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeVotingClosed))
}

func TestVoteWithoutActiveProposal(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := createTestProject(t, engine)
	fundTestProject(t, engine, project.Id)

	_, err := NewVoteLogic(engine).VoteMilestoneCompletion(project.Id, 0, supporterA, true)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeVotingNotActive))
}

func TestRevoteInNewCycle(t *testing.T) {
	engine, clock := newTestEngine(t)
	projectId := openVoting(t, engine)
	voteLogic := NewVoteLogic(engine)
	milestoneLogic := NewMilestoneLogic(engine)

	// 第一轮：只有反对票，投票失败
	_, err := voteLogic.VoteMilestoneCompletion(projectId, 0, supporterA, false)
	require.NoError(t, err)

	clock.Advance(DefaultVotingPeriod + time.Hour)
	_, err = milestoneLogic.FinalizeMilestoneVote(projectId, 0)
	require.NoError(t, err)

	// 重新提案开启第二轮，同一支持者可以再投
	_, err = milestoneLogic.ProposeMilestoneCompletion(projectId, 0, testCreator, "ipfs://proof-v2")
	require.NoError(t, err)

	milestone, err := milestoneLogic.GetMilestone(projectId, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, milestone.Cycle)
	assert.Equal(t, int64(0), milestone.TotalVotes)

	_, err = voteLogic.VoteMilestoneCompletion(projectId, 0, supporterA, true)
	require.NoError(t, err)

	milestone, err = milestoneLogic.GetMilestone(projectId, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), milestone.AgreeCount)
	assert.Equal(t, int64(1), milestone.TotalVotes)
}
