package logic

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/fundlab/mfs/internal/ledger"
	"github.com/fundlab/mfs/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultVotingPeriod 投票窗口长度：5天
const DefaultVotingPeriod = 5 * 24 * time.Hour

// Engine 里程碑众筹状态机。
// 所有写操作持有同一把互斥锁并在单个事务内执行，
// 任何操作要么完整提交，要么无副作用地失败。
type Engine struct {
	db           *gorm.DB
	ledger       *ledger.Ledger
	votingPeriod time.Duration
	now          func() time.Time

	mu sync.Mutex
}

// Option 引擎选项
type Option func(*Engine)

// WithClock 注入时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithVotingPeriod 覆盖投票窗口长度
func WithVotingPeriod(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.votingPeriod = d
		}
	}
}

// NewEngine 创建状态机
func NewEngine(db *gorm.DB, l *ledger.Ledger, opts ...Option) *Engine {
	e := &Engine{
		db:           db,
		ledger:       l,
		votingPeriod: DefaultVotingPeriod,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DB 底层数据库句柄，只读查询用
func (e *Engine) DB() *gorm.DB {
	return e.db
}

// Ledger 账本
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

// withWrite 串行化执行一次写操作
func (e *Engine) withWrite(fn func(tx *gorm.DB) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.Transaction(fn)
}

// newOpId 生成操作ID，写接口返回给调用方
func newOpId() string {
	return uuid.NewString()
}

// appendEvent 在同一事务内写入操作审计记录
func (e *Engine) appendEvent(tx *gorm.DB, eventType string, projectId int64, milestoneIndex *int, actor string, data interface{}, opId string) error {
	payload := ""
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		payload = string(raw)
	}

	event := model.EventModel{
		EventType:      eventType,
		ProjectId:      projectId,
		MilestoneIndex: milestoneIndex,
		Actor:          actor,
		Data:           payload,
		OpId:           opId,
	}
	return tx.Create(&event).Error
}
