// Package contract is the client for the on-chain insurance contract. The
// contract owns premium escrow, payout execution, and oracle truth; this
// package only reads its state and submits transactions against it.
package contract

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/terrashield/terrashield/internal/traces"
)

// -----------------------------------------------------------------------------
// Errors - typed errors for programmatic handling
// -----------------------------------------------------------------------------

var (
	ErrInvalidPrivateKey = errors.New("contract: invalid private key")
	ErrInvalidAmount     = errors.New("contract: invalid amount")
	ErrReadOnly          = errors.New("contract: no signing key configured")
	ErrTransactionFailed = errors.New("contract: transaction failed")
	ErrTimeout           = errors.New("contract: operation timed out")
	ErrRPCConnection     = errors.New("contract: RPC connection failed")
)

// CallError wraps contract call failures with context
type CallError struct {
	Op     string // Operation that failed
	TxHash string // Transaction hash if available
	Err    error  // Underlying error
}

func (e *CallError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("contract: %s failed (tx: %s): %v", e.Op, e.TxHash, e.Err)
	}
	return fmt.Sprintf("contract: %s failed: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// -----------------------------------------------------------------------------
// Interfaces
// -----------------------------------------------------------------------------

// EthBackend abstracts go-ethereum client for testing
type EthBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	Close()
}

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

// Insurance contract ABI, reads plus the two mutating entry points.
const insuranceABI = `[
	{"constant":true,"inputs":[],"name":"PREMIUM","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"PAYOUT_AMOUNT","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"RAIN_THRESHOLD","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"farmer","outputs":[{"name":"","type":"address"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"policyActive","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"policyPaid","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"farmLocation","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"lastReportedRainfall","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"oracle","outputs":[{"name":"","type":"address"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"location","type":"string"}],"name":"requestPolicy","outputs":[],"payable":true,"type":"function"},
	{"constant":false,"inputs":[{"name":"rainfall","type":"uint256"}],"name":"fulfillWeather","outputs":[],"type":"function"}
]`

const (
	// RequestPolicyGasLimit matches the reference deployment's worst case
	RequestPolicyGasLimit = uint64(500000)

	// FundGasLimit for plain value transfers into the pool
	FundGasLimit = uint64(300000)

	// FulfillGasLimit for oracle fulfillment
	FulfillGasLimit = uint64(500000)

	// DefaultConfirmationTimeout for waiting on transactions
	DefaultConfirmationTimeout = 60 * time.Second

	// ConfirmationPollInterval between receipt checks
	ConfirmationPollInterval = 2 * time.Second
)

// -----------------------------------------------------------------------------
// Types
// -----------------------------------------------------------------------------

// Config for creating a contract client
type Config struct {
	RPCURL          string
	PrivateKey      string // Hex, 0x prefix optional; empty = read-only client
	ChainID         int64
	ContractAddress string
}

// Option configures the client
type Option func(*Client)

// WithBackend sets a custom Ethereum backend (useful for testing)
func WithBackend(backend EthBackend) Option {
	return func(c *Client) {
		c.backend = backend
	}
}

// Policy is the contract's current policy state.
type Policy struct {
	Farmer               string `json:"farmer"`
	Active               bool   `json:"active"`
	Paid                 bool   `json:"paid"`
	FarmLocation         string `json:"farmLocation"`
	LastReportedRainfall uint64 `json:"lastReportedRainfall"`
	Premium              string `json:"premium"` // ETH
	Payout               string `json:"payout"`  // ETH
}

// TxResult contains details of a mined transaction
type TxResult struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
}

// Signer holds an optional signing key and submits transactions through a
// backend. A nil key yields a read-only signer whose SendAndWait returns
// ErrReadOnly. Shared by the insurance and governance clients.
type Signer struct {
	backend EthBackend
	chainID *big.Int
	key     *ecdsa.PrivateKey
	from    common.Address
}

// NewSigner parses the private key (hex, 0x prefix optional; empty for
// read-only) and binds it to the backend and chain.
func NewSigner(backend EthBackend, chainID int64, privateKeyHex string) (*Signer, error) {
	s := &Signer{backend: backend, chainID: big.NewInt(chainID)}
	if privateKeyHex == "" {
		return s, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: failed to derive public key", ErrInvalidPrivateKey)
	}
	s.key = key
	s.from = crypto.PubkeyToAddress(*publicKey)
	return s, nil
}

// From returns the signing address, or the zero address in read-only mode.
func (s *Signer) From() common.Address { return s.from }

// CanSign reports whether a signing key is configured.
func (s *Signer) CanSign() bool { return s.key != nil }

// Client talks to the insurance contract
type Client struct {
	backend EthBackend
	abi     abi.ABI
	address common.Address
	signer  *Signer
}

// New creates a contract client. An empty private key yields a read-only
// client: state reads work, mutating calls return ErrReadOnly.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("%w: RPC URL required", ErrRPCConnection)
	}
	if cfg.ContractAddress == "" {
		return nil, fmt.Errorf("contract address required")
	}
	if cfg.ChainID == 0 {
		return nil, fmt.Errorf("chain ID required")
	}

	parsedABI, err := abi.JSON(strings.NewReader(insuranceABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse insurance ABI: %w", err)
	}

	c := &Client{
		abi:     parsedABI,
		address: common.HexToAddress(cfg.ContractAddress),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.backend == nil {
		backend, err := ethclient.Dial(cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRPCConnection, err)
		}
		c.backend = backend
	}

	signer, err := NewSigner(c.backend, cfg.ChainID, cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	c.signer = signer

	return c, nil
}

// From returns the signing address, or the zero address in read-only mode.
func (c *Client) From() string {
	return c.signer.From().Hex()
}

// CanSign reports whether the client holds a signing key.
func (c *Client) CanSign() bool {
	return c.signer.CanSign()
}

// Signer exposes the client's transaction signer for sibling contract
// clients that share the same backend and key.
func (c *Client) Signer() *Signer {
	return c.signer
}

// Backend exposes the dialed RPC backend so the price feed can reuse the
// same connection instead of dialing a second one.
func (c *Client) Backend() EthBackend {
	return c.backend
}

// Close closes the backend connection
func (c *Client) Close() error {
	if c.backend != nil {
		c.backend.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// call performs one eth_call against the contract and unpacks the single
// return value.
func (c *Client) call(ctx context.Context, method string) (interface{}, error) {
	data, err := c.abi.Pack(method)
	if err != nil {
		return nil, &CallError{Op: method, Err: err}
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, &CallError{Op: method, Err: err}
	}

	vals, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, &CallError{Op: method, Err: err}
	}
	if len(vals) != 1 {
		return nil, &CallError{Op: method, Err: fmt.Errorf("expected 1 return value, got %d", len(vals))}
	}
	return vals[0], nil
}

func (c *Client) callUint(ctx context.Context, method string) (*big.Int, error) {
	v, err := c.call(ctx, method)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, &CallError{Op: method, Err: fmt.Errorf("unexpected return type %T", v)}
	}
	return n, nil
}

func (c *Client) callBool(ctx context.Context, method string) (bool, error) {
	v, err := c.call(ctx, method)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &CallError{Op: method, Err: fmt.Errorf("unexpected return type %T", v)}
	}
	return b, nil
}

func (c *Client) callString(ctx context.Context, method string) (string, error) {
	v, err := c.call(ctx, method)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &CallError{Op: method, Err: fmt.Errorf("unexpected return type %T", v)}
	}
	return s, nil
}

// Premium returns the contract's fixed premium in wei.
func (c *Client) Premium(ctx context.Context) (*big.Int, error) {
	return c.callUint(ctx, "PREMIUM")
}

// RainThreshold returns the rainfall level (mm) that triggers a payout.
func (c *Client) RainThreshold(ctx context.Context) (uint64, error) {
	threshold, err := c.callUint(ctx, "RAIN_THRESHOLD")
	if err != nil {
		return 0, err
	}
	return threshold.Uint64(), nil
}

// PolicyStatus aggregates the contract's policy state into one snapshot.
func (c *Client) PolicyStatus(ctx context.Context) (*Policy, error) {
	farmer, err := c.call(ctx, "farmer")
	if err != nil {
		return nil, err
	}
	active, err := c.callBool(ctx, "policyActive")
	if err != nil {
		return nil, err
	}
	paid, err := c.callBool(ctx, "policyPaid")
	if err != nil {
		return nil, err
	}
	location, err := c.callString(ctx, "farmLocation")
	if err != nil {
		return nil, err
	}
	rainfall, err := c.callUint(ctx, "lastReportedRainfall")
	if err != nil {
		return nil, err
	}
	premium, err := c.callUint(ctx, "PREMIUM")
	if err != nil {
		return nil, err
	}
	payout, err := c.callUint(ctx, "PAYOUT_AMOUNT")
	if err != nil {
		return nil, err
	}

	farmerAddr, ok := farmer.(common.Address)
	if !ok {
		return nil, &CallError{Op: "farmer", Err: fmt.Errorf("unexpected return type %T", farmer)}
	}

	return &Policy{
		Farmer:               farmerAddr.Hex(),
		Active:               active,
		Paid:                 paid,
		FarmLocation:         location,
		LastReportedRainfall: rainfall.Uint64(),
		Premium:              FormatETH(premium),
		Payout:               FormatETH(payout),
	}, nil
}

// Balance returns the contract's ETH balance as a decimal string.
func (c *Client) Balance(ctx context.Context) (string, error) {
	balance, err := c.backend.BalanceAt(ctx, c.address, nil)
	if err != nil {
		return "", &CallError{Op: "balance", Err: err}
	}
	return FormatETH(balance), nil
}

// -----------------------------------------------------------------------------
// Transactions
// -----------------------------------------------------------------------------

// RequestPolicy reads the contract's premium and buys a policy for the given
// farm location, waiting for the transaction to be mined.
func (c *Client) RequestPolicy(ctx context.Context, location string) (*TxResult, error) {
	ctx, span := traces.StartSpan(ctx, "contract.RequestPolicy", traces.Location(location))
	defer span.End()

	premium, err := c.Premium(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	data, err := c.abi.Pack("requestPolicy", location)
	if err != nil {
		return nil, &CallError{Op: "requestPolicy", Err: err}
	}

	res, err := c.sendAndWait(ctx, "requestPolicy", data, premium, RequestPolicyGasLimit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(traces.TxHash(res.TxHash))
	return res, nil
}

// Fund deposits ETH into the contract's liquidity pool.
func (c *Client) Fund(ctx context.Context, amountETH string) (*TxResult, error) {
	value, err := ParseETH(amountETH)
	if err != nil {
		return nil, err
	}
	return c.sendAndWait(ctx, "fund", nil, value, FundGasLimit)
}

// FulfillWeather reports a rainfall reading to the contract (oracle role).
func (c *Client) FulfillWeather(ctx context.Context, rainfallMM uint64) (*TxResult, error) {
	data, err := c.abi.Pack("fulfillWeather", new(big.Int).SetUint64(rainfallMM))
	if err != nil {
		return nil, &CallError{Op: "fulfillWeather", Err: err}
	}
	return c.sendAndWait(ctx, "fulfillWeather", data, big.NewInt(0), FulfillGasLimit)
}

// sendAndWait signs, submits, and waits for one transaction.
func (c *Client) sendAndWait(ctx context.Context, op string, data []byte, value *big.Int, gasLimit uint64) (*TxResult, error) {
	return c.signer.SendAndWait(ctx, op, c.address, data, value, gasLimit)
}

// SendAndWait signs a transaction to the given address, submits it, and
// waits until it is mined.
func (s *Signer) SendAndWait(ctx context.Context, op string, to common.Address, data []byte, value *big.Int, gasLimit uint64) (*TxResult, error) {
	if s.key == nil {
		return nil, ErrReadOnly
	}

	nonce, err := s.backend.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, &CallError{Op: op, Err: err}
	}

	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, &CallError{Op: op, Err: err}
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(s.chainID), s.key)
	if err != nil {
		return nil, &CallError{Op: op, Err: err}
	}

	if err := s.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, &CallError{Op: op, TxHash: signedTx.Hash().Hex(), Err: err}
	}

	return s.waitMined(ctx, op, signedTx.Hash())
}

// waitMined polls for the receipt until mined or the timeout elapses.
func (s *Signer) waitMined(ctx context.Context, op string, hash common.Hash) (*TxResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(ConfirmationPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == 0 {
				return nil, &CallError{Op: op, TxHash: hash.Hex(), Err: ErrTransactionFailed}
			}

			return &TxResult{
				TxHash:      hash.Hex(),
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
			}, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: waiting for tx %s", ErrTimeout, hash.Hex())
			}
			return nil, ctx.Err()

		case <-ticker.C:
		}
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// FormatETH converts wei to a decimal ETH string.
func FormatETH(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}

// ParseETH converts a decimal ETH string to wei.
func ParseETH(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return d.Shift(18).BigInt(), nil
}
