package evm

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"marketstate/core"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/fox-one/pkg/logger"
)

// Head implements core.ILogSource
func (c *Client) Head(ctx context.Context) (int64, error) {
	head, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}

	return int64(head), nil
}

// Logs implements core.ILogSource, logs of unknown events are dropped
func (c *Client) Logs(ctx context.Context, contracts []string, from, to int64) ([]*core.Log, error) {
	log := logger.FromContext(ctx)

	addresses := make([]common.Address, 0, len(contracts))
	for _, contract := range contracts {
		addresses = append(addresses, common.HexToAddress(contract))
	}

	topics := make([]common.Hash, 0, len(c.abi.Events))
	for _, event := range c.abi.Events {
		topics = append(topics, event.ID)
	}

	raws, err := c.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(from),
		ToBlock:   big.NewInt(to),
		Addresses: addresses,
		Topics:    [][]common.Hash{topics},
	})
	if err != nil {
		return nil, fmt.Errorf("filter logs [%d, %d]: %w", from, to, err)
	}

	logs := make([]*core.Log, 0, len(raws))
	for idx := range raws {
		raw := &raws[idx]
		if raw.Removed || len(raw.Topics) == 0 {
			continue
		}

		event, err := c.abi.EventByID(raw.Topics[0])
		if err != nil {
			log.Debugf("skip unknown log %s#%d", raw.TxHash.Hex(), raw.Index)
			continue
		}

		l, err := c.decode(ctx, event, raw)
		if err != nil {
			return nil, err
		}

		logs = append(logs, l)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		a, b := logs[i], logs[j]
		if a.Block != b.Block {
			return a.Block < b.Block
		}

		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}

		return a.LogIndex < b.LogIndex
	})

	return logs, nil
}

func (c *Client) decode(ctx context.Context, event *abi.Event, raw *gethtypes.Log) (*core.Log, error) {
	args := make(map[string]interface{}, len(event.Inputs))

	if err := event.Inputs.NonIndexed().UnpackIntoMap(args, raw.Data); err != nil {
		return nil, fmt.Errorf("decode %s at %s#%d: %w", event.RawName, raw.TxHash.Hex(), raw.Index, err)
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}

	if err := abi.ParseTopicsIntoMap(args, indexed, raw.Topics[1:]); err != nil {
		return nil, fmt.Errorf("decode %s topics at %s#%d: %w", event.RawName, raw.TxHash.Hex(), raw.Index, err)
	}

	for k, v := range args {
		if addr, ok := v.(common.Address); ok {
			args[k] = strings.ToLower(addr.Hex())
		}
	}

	timestamp, err := c.BlockTimestamp(ctx, int64(raw.BlockNumber))
	if err != nil {
		return nil, err
	}

	return &core.Log{
		Address:   strings.ToLower(raw.Address.Hex()),
		Event:     event.RawName,
		Block:     int64(raw.BlockNumber),
		Timestamp: timestamp,
		TxHash:    raw.TxHash.Hex(),
		TxIndex:   raw.TxIndex,
		LogIndex:  raw.Index,
		Args:      args,
	}, nil
}

// BlockTimestamp implements core.ILogSource, timestamps are cached
func (c *Client) BlockTimestamp(ctx context.Context, block int64) (int64, error) {
	if v, err := c.timestamps.Get(block); err == nil {
		if ts, ok := v.(int64); ok {
			return ts, nil
		}
	}

	header, err := c.backend.HeaderByNumber(ctx, big.NewInt(block))
	if err != nil {
		return 0, fmt.Errorf("header %d: %w", block, err)
	}

	ts := int64(header.Time)
	_ = c.timestamps.Set(block, ts)
	return ts, nil
}
