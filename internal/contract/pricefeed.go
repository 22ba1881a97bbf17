package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Chainlink AggregatorV3Interface, the reads we consume.
const aggregatorABI = `[
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"description","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"latestRoundData","outputs":[{"name":"roundId","type":"uint80"},{"name":"answer","type":"int256"},{"name":"startedAt","type":"uint256"},{"name":"updatedAt","type":"uint256"},{"name":"answeredInRound","type":"uint80"}],"type":"function"}
]`

// PriceQuote is one Chainlink price feed reading.
type PriceQuote struct {
	Price       string    `json:"price"` // decimal string, e.g. "3421.52"
	Decimals    uint8     `json:"decimals"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PriceFeed reads the ETH/USD Chainlink aggregator.
type PriceFeed struct {
	backend EthBackend
	abi     abi.ABI
	address common.Address
}

// NewPriceFeed creates a price feed reader over an existing backend.
func NewPriceFeed(backend EthBackend, address string) (*PriceFeed, error) {
	parsedABI, err := abi.JSON(strings.NewReader(aggregatorABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse aggregator ABI: %w", err)
	}
	return &PriceFeed{
		backend: backend,
		abi:     parsedABI,
		address: common.HexToAddress(address),
	}, nil
}

// ETHPrice reads the latest round from the aggregator.
func (f *PriceFeed) ETHPrice(ctx context.Context) (*PriceQuote, error) {
	round, err := f.call(ctx, "latestRoundData")
	if err != nil {
		return nil, err
	}
	if len(round) != 5 {
		return nil, &CallError{Op: "latestRoundData", Err: fmt.Errorf("expected 5 return values, got %d", len(round))}
	}
	answer, ok := round[1].(*big.Int)
	if !ok {
		return nil, &CallError{Op: "latestRoundData", Err: fmt.Errorf("unexpected answer type %T", round[1])}
	}
	updatedAt, ok := round[3].(*big.Int)
	if !ok {
		return nil, &CallError{Op: "latestRoundData", Err: fmt.Errorf("unexpected updatedAt type %T", round[3])}
	}

	decimalsVals, err := f.call(ctx, "decimals")
	if err != nil {
		return nil, err
	}
	decimalsRaw, ok := decimalsVals[0].(uint8)
	if !ok {
		return nil, &CallError{Op: "decimals", Err: fmt.Errorf("unexpected return type %T", decimalsVals[0])}
	}

	descVals, err := f.call(ctx, "description")
	if err != nil {
		return nil, err
	}
	description, ok := descVals[0].(string)
	if !ok {
		return nil, &CallError{Op: "description", Err: fmt.Errorf("unexpected return type %T", descVals[0])}
	}

	return &PriceQuote{
		Price:       decimal.NewFromBigInt(answer, -int32(decimalsRaw)).String(),
		Decimals:    decimalsRaw,
		Description: description,
		UpdatedAt:   time.Unix(updatedAt.Int64(), 0).UTC(),
	}, nil
}

func (f *PriceFeed) call(ctx context.Context, method string) ([]interface{}, error) {
	data, err := f.abi.Pack(method)
	if err != nil {
		return nil, &CallError{Op: method, Err: err}
	}

	out, err := f.backend.CallContract(ctx, ethereum.CallMsg{
		To:   &f.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, &CallError{Op: method, Err: err}
	}

	vals, err := f.abi.Unpack(method, out)
	if err != nil {
		return nil, &CallError{Op: method, Err: err}
	}
	if len(vals) == 0 {
		return nil, &CallError{Op: method, Err: fmt.Errorf("empty return")}
	}
	return vals, nil
}
