package logic

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fundlab/mfs/internal/ledger"
	"github.com/fundlab/mfs/internal/model"
	"github.com/fundlab/mfs/internal/repository"
	"github.com/stretchr/testify/require"
)

const (
	testFeeAccount = "0x00000000000000000000000000000000000000fe"
	testCreator    = "0x1111111111111111111111111111111111111111"
	supporterA     = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	supporterB     = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	supporterC     = "0xcccccccccccccccccccccccccccccccccccccccc"
)

// testClock 可推进的测试时钟
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// newTestEngine 每个测试一个独立的内存数据库
func newTestEngine(t *testing.T) (*Engine, *testClock) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := repository.InitSQLite(dsn)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(db, ledger.New(testFeeAccount), WithClock(clock.Now))
	return engine, clock
}

// createTestProject 创建目标9000、里程碑[3000,3000,3000]的项目
func createTestProject(t *testing.T, engine *Engine) *model.ProjectModel {
	t.Helper()

	project, opId, err := NewProjectLogic(engine).CreateProject(
		testCreator, "测试项目", 9000,
		[model.MilestoneCount]string{"原型", "测试网", "主网"},
		[model.MilestoneCount]int64{3000, 3000, 3000},
		"ipfs://reward-meta",
	)
	require.NoError(t, err)
	require.NotEmpty(t, opId)
	return project
}

// fundTestProject 三个支持者各贡献4100（净额4000），项目达标
func fundTestProject(t *testing.T, engine *Engine, projectId int64) {
	t.Helper()

	contribute := NewContributeLogic(engine)
	for _, supporter := range []string{supporterA, supporterB, supporterC} {
		_, err := contribute.SupportProject(projectId, supporter, 4100)
		require.NoError(t, err)
	}

	project, err := NewProjectLogic(engine).GetProject(projectId)
	require.NoError(t, err)
	require.True(t, project.FullyFunded)
}
