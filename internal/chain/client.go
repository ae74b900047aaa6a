package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/fundlab/mfs/internal/config"
	"github.com/fundlab/mfs/internal/model"
)

// 工厂合约事件ABI（镜像模式只消费事件）
const factoryABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "projectId", "type": "uint256"},
			{"indexed": true, "name": "creator", "type": "address"},
			{"indexed": false, "name": "title", "type": "string"},
			{"indexed": false, "name": "targetAmount", "type": "uint256"}
		],
		"name": "ProjectCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "projectId", "type": "uint256"},
			{"indexed": true, "name": "supporter", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "ContributionMade",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "projectId", "type": "uint256"},
			{"indexed": false, "name": "milestoneIndex", "type": "uint8"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "MilestoneReleased",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "projectId", "type": "uint256"},
			{"indexed": false, "name": "milestoneIndex", "type": "uint8"},
			{"indexed": false, "name": "approved", "type": "bool"}
		],
		"name": "VoteFinalized",
		"type": "event"
	}
]`

// Client 链上只读客户端
type Client struct {
	client        *ethclient.Client
	ContractAddr  common.Address
	startBlock    uint64
	confirmations int
	contractABI   abi.ABI
}

// Init 连接RPC节点并解析合约ABI
func Init(cfg config.ChainConfig) (*Client, error) {
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(factoryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	return &Client{
		client:        client,
		ContractAddr:  common.HexToAddress(cfg.ContractAddr),
		startBlock:    cfg.StartBlock,
		confirmations: cfg.Confirmations,
		contractABI:   parsedABI,
	}, nil
}

// StartBlock 配置的起始区块号
func (c *Client) StartBlock() uint64 {
	return c.startBlock
}

// GetLatestConfirmedBlock 获取已确认的最新区块号
func (c *Client) GetLatestConfirmedBlock(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	latest := header.Number.Uint64()
	if latest < uint64(c.confirmations) {
		return 0, nil
	}
	return latest - uint64(c.confirmations), nil
}

// GetLogs 获取指定区块范围内合约日志
func (c *Client) GetLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{c.ContractAddr},
	}
	return c.client.FilterLogs(ctx, query)
}

// ParseEvent 解析事件日志为镜像记录，未知事件返回nil
func (c *Client) ParseEvent(log types.Log) (*model.ChainEventModel, error) {
	if len(log.Topics) == 0 {
		return nil, nil
	}

	eventSignature := log.Topics[0]
	payload := map[string]interface{}{}
	eventType := ""

	switch eventSignature {
	case c.contractABI.Events["ProjectCreated"].ID:
		if len(log.Topics) < 3 {
			return nil, fmt.Errorf("invalid ProjectCreated event: insufficient topics")
		}
		eventType = "ProjectCreated"
		payload["project_id"] = new(big.Int).SetBytes(log.Topics[1].Bytes()).Int64()
		payload["creator"] = common.BytesToAddress(log.Topics[2].Bytes()).Hex()
		unpacked, err := c.contractABI.Events["ProjectCreated"].Inputs.NonIndexed().Unpack(log.Data)
		if err == nil && len(unpacked) == 2 {
			payload["title"] = unpacked[0]
			if amount, ok := unpacked[1].(*big.Int); ok {
				payload["target_amount"] = amount.Int64()
			}
		}

	case c.contractABI.Events["ContributionMade"].ID:
		if len(log.Topics) < 3 {
			return nil, fmt.Errorf("invalid ContributionMade event: insufficient topics")
		}
		eventType = "ContributionMade"
		payload["project_id"] = new(big.Int).SetBytes(log.Topics[1].Bytes()).Int64()
		payload["supporter"] = common.BytesToAddress(log.Topics[2].Bytes()).Hex()
		if len(log.Data) > 0 {
			payload["amount"] = new(big.Int).SetBytes(log.Data).Int64()
		}

	case c.contractABI.Events["MilestoneReleased"].ID:
		if len(log.Topics) < 2 {
			return nil, fmt.Errorf("invalid MilestoneReleased event: insufficient topics")
		}
		eventType = "MilestoneReleased"
		payload["project_id"] = new(big.Int).SetBytes(log.Topics[1].Bytes()).Int64()
		unpacked, err := c.contractABI.Events["MilestoneReleased"].Inputs.NonIndexed().Unpack(log.Data)
		if err == nil && len(unpacked) == 2 {
			payload["milestone_index"] = unpacked[0]
			if amount, ok := unpacked[1].(*big.Int); ok {
				payload["amount"] = amount.Int64()
			}
		}

	case c.contractABI.Events["VoteFinalized"].ID:
		if len(log.Topics) < 2 {
			return nil, fmt.Errorf("invalid VoteFinalized event: insufficient topics")
		}
		eventType = "VoteFinalized"
		payload["project_id"] = new(big.Int).SetBytes(log.Topics[1].Bytes()).Int64()
		unpacked, err := c.contractABI.Events["VoteFinalized"].Inputs.NonIndexed().Unpack(log.Data)
		if err == nil && len(unpacked) == 2 {
			payload["milestone_index"] = unpacked[0]
			payload["approved"] = unpacked[1]
		}

	default:
		return nil, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &model.ChainEventModel{
		EventType: eventType,
		TxHash:    log.TxHash.Hex(),
		LogIndex:  log.Index,
		BlockNum:  log.BlockNumber,
		Data:      string(raw),
	}, nil
}
