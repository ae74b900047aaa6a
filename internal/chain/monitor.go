package chain

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/logger"
	"github.com/fundlab/mfs/internal/logic"
	"github.com/fundlab/mfs/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm/clause"
)

const logBatchSize = 500

// Monitor 链上事件镜像监控器。
// 扫描工厂合约日志写入chain_event表，再把贡献事件回放进状态机，
// 其余事件仅留档对账。
type Monitor struct {
	client          *Client
	engine          *logic.Engine
	contributeLogic *logic.ContributeLogic
	pool            *ants.Pool

	startBlockNum uint64
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.Mutex // 保护 startBlockNum
}

// NewMonitor 创建事件监控器
func NewMonitor(client *Client, engine *logic.Engine, poolSize int) (*Monitor, error) {
	if poolSize <= 0 {
		poolSize = 4
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		client:          client,
		engine:          engine,
		contributeLogic: logic.NewContributeLogic(engine),
		pool:            pool,
		startBlockNum:   client.StartBlock(),
		ctx:             ctx,
		cancel:          cancel,
	}, nil
}

// Start 启动监控
func (m *Monitor) Start() error {
	logger.Info("Starting chain event monitor")

	currentBlock, err := m.client.GetLatestConfirmedBlock(m.ctx)
	if err != nil {
		return err
	}
	logger.Info("Connected to chain, confirmed block: %d", currentBlock)

	go m.loop()
	return nil
}

// Stop 停止监控
func (m *Monitor) Stop() {
	logger.Info("Stopping chain event monitor")
	m.cancel()
	m.pool.Release()
}

// loop 监控循环
func (m *Monitor) loop() {
	ticker := time.NewTicker(time.Second * 60)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Chain monitor stopped")
			return
		case <-ticker.C:
			currentBlock, err := m.client.GetLatestConfirmedBlock(m.ctx)
			if err != nil {
				logger.Error("Failed to get current block number: %v", err)
				continue
			}

			m.mu.Lock()
			fromBlock := m.startBlockNum
			m.mu.Unlock()

			if fromBlock > currentBlock {
				continue
			}

			if err := m.scanBlocks(fromBlock, currentBlock); err != nil {
				logger.Error("Error scanning blocks %d-%d: %v", fromBlock, currentBlock, err)
				continue
			}

			m.mu.Lock()
			m.startBlockNum = currentBlock + 1
			m.mu.Unlock()

			m.applyPending()
		}
	}
}

// scanBlocks 分批拉取日志，协程池并行解析后落库
func (m *Monitor) scanBlocks(fromBlock, toBlock uint64) error {
	for batchFrom := fromBlock; batchFrom <= toBlock; batchFrom += logBatchSize {
		batchTo := batchFrom + logBatchSize - 1
		if batchTo > toBlock {
			batchTo = toBlock
		}

		logs, err := m.client.GetLogs(m.ctx, batchFrom, batchTo)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			continue
		}

		var wg sync.WaitGroup
		var storeMu sync.Mutex
		events := make([]*model.ChainEventModel, 0, len(logs))

		for _, l := range logs {
			l := l
			wg.Add(1)
			if err := m.pool.Submit(func() {
				defer wg.Done()
				m.parseLog(l, &storeMu, &events)
			}); err != nil {
				wg.Done()
				logger.Error("Failed to submit log parse task: %v", err)
			}
		}
		wg.Wait()

		if len(events) == 0 {
			continue
		}

		// 已入库的事件按(tx_hash, log_index)去重
		if err := m.engine.DB().Clauses(clause.OnConflict{DoNothing: true}).
			Create(&events).Error; err != nil {
			return err
		}
		logger.Info("Stored %d chain events from blocks %d-%d", len(events), batchFrom, batchTo)
	}
	return nil
}

func (m *Monitor) parseLog(l types.Log, storeMu *sync.Mutex, events *[]*model.ChainEventModel) {
	event, err := m.client.ParseEvent(l)
	if err != nil {
		logger.Error("Failed to parse log %s/%d: %v", l.TxHash.Hex(), l.Index, err)
		return
	}
	if event == nil {
		return
	}
	storeMu.Lock()
	*events = append(*events, event)
	storeMu.Unlock()
}

// applyPending 回放未处理的贡献事件
func (m *Monitor) applyPending() {
	var pending []model.ChainEventModel
	if err := m.engine.DB().Where("processed = ?", false).
		Order("block_num ASC, log_index ASC").
		Find(&pending).Error; err != nil {
		logger.Error("Failed to load pending chain events: %v", err)
		return
	}

	for _, event := range pending {
		if event.EventType == "ContributionMade" {
			if err := m.applyContribution(&event); err != nil {
				logger.Error("Failed to apply chain event %d: %v", event.Id, err)
				continue
			}
		}

		if err := m.engine.DB().Model(&model.ChainEventModel{}).
			Where("id = ?", event.Id).
			Update("processed", true).Error; err != nil {
			logger.Error("Failed to mark chain event %d processed: %v", event.Id, err)
		}
	}
}

// applyContribution 把链上贡献回放进本地状态机。
// 本地不存在的项目只留档，等项目通过API镜像后重放。
func (m *Monitor) applyContribution(event *model.ChainEventModel) error {
	var payload struct {
		ProjectId int64  `json:"project_id"`
		Supporter string `json:"supporter"`
		Amount    int64  `json:"amount"`
	}
	if err := json.Unmarshal([]byte(event.Data), &payload); err != nil {
		return err
	}

	_, err := m.contributeLogic.SupportProject(payload.ProjectId, payload.Supporter, payload.Amount)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			logger.Warn("Chain event for unknown project %d, left unprocessed", payload.ProjectId)
			return err
		}
		// 达标后的链上贡献无法回放，留档即可
		if apperr.IsCode(err, apperr.CodeFundingClosed) {
			logger.Warn("Skipping chain contribution to fully funded project %d", payload.ProjectId)
			return nil
		}
		return err
	}
	return nil
}
