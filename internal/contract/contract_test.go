package contract

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testContractAddr = "0x5Cea979df129614c09C6E7AA45b568B37b740726"
	testPrivateKey   = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
)

// fakeBackend answers contract calls from canned per-method outputs and
// mines submitted transactions instantly.
type fakeBackend struct {
	client  *Client // for ABI access when packing outputs
	outputs map[string][]byte
	sent    []*types.Transaction
	receipt *types.Receipt
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	if f.receipt == nil {
		return nil, errors.New("not found")
	}
	return f.receipt, nil
}

func (f *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	for name, method := range f.client.abi.Methods {
		if bytes.HasPrefix(call.Data, method.ID) {
			if out, ok := f.outputs[name]; ok {
				return out, nil
			}
		}
	}
	return nil, errors.New("no canned output for call")
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return big.NewInt(0).Mul(big.NewInt(3), big.NewInt(1e18)), nil
}

func (f *fakeBackend) Close() {}

// newTestClient wires a client to a fake backend with full policy state.
func newTestClient(t *testing.T, privateKey string) (*Client, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{outputs: map[string][]byte{}}
	client, err := New(Config{
		RPCURL:          "http://localhost:8545",
		PrivateKey:      privateKey,
		ChainID:         11155111,
		ContractAddress: testContractAddr,
	}, WithBackend(backend))
	require.NoError(t, err)
	backend.client = client

	pack := func(method string, vals ...interface{}) []byte {
		out, err := client.abi.Methods[method].Outputs.Pack(vals...)
		require.NoError(t, err)
		return out
	}

	backend.outputs["PREMIUM"] = pack("PREMIUM", big.NewInt(1e16)) // 0.01 ETH
	backend.outputs["PAYOUT_AMOUNT"] = pack("PAYOUT_AMOUNT", new(big.Int).Mul(big.NewInt(5), big.NewInt(1e16)))
	backend.outputs["RAIN_THRESHOLD"] = pack("RAIN_THRESHOLD", big.NewInt(100))
	backend.outputs["farmer"] = pack("farmer", common.HexToAddress("0x1234567890123456789012345678901234567890"))
	backend.outputs["policyActive"] = pack("policyActive", true)
	backend.outputs["policyPaid"] = pack("policyPaid", false)
	backend.outputs["farmLocation"] = pack("farmLocation", "Jaisalmer, Rajasthan")
	backend.outputs["lastReportedRainfall"] = pack("lastReportedRainfall", big.NewInt(42))
	backend.outputs["oracle"] = pack("oracle", common.HexToAddress("0x2222222222222222222222222222222222222222"))

	return client, backend
}

func TestPolicyStatus(t *testing.T) {
	client, _ := newTestClient(t, "")

	policy, err := client.PolicyStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0x1234567890123456789012345678901234567890", policy.Farmer)
	assert.True(t, policy.Active)
	assert.False(t, policy.Paid)
	assert.Equal(t, "Jaisalmer, Rajasthan", policy.FarmLocation)
	assert.Equal(t, uint64(42), policy.LastReportedRainfall)
	assert.Equal(t, "0.01", policy.Premium)
	assert.Equal(t, "0.05", policy.Payout)
}

func TestRainThreshold(t *testing.T) {
	client, _ := newTestClient(t, "")

	threshold, err := client.RainThreshold(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), threshold)
}

func TestBalance(t *testing.T) {
	client, _ := newTestClient(t, "")

	balance, err := client.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3", balance)
}

func TestRequestPolicy_ReadOnly(t *testing.T) {
	client, _ := newTestClient(t, "")

	_, err := client.RequestPolicy(context.Background(), "punjab")
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestRequestPolicy_SendsPremiumValue(t *testing.T) {
	client, backend := newTestClient(t, testPrivateKey)
	backend.receipt = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(1000),
		GasUsed:     90000,
	}

	result, err := client.RequestPolicy(context.Background(), "Jaisalmer, Rajasthan")
	require.NoError(t, err)

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, big.NewInt(1e16), tx.Value(), "tx value should equal the contract premium")
	assert.Equal(t, RequestPolicyGasLimit, tx.Gas())
	assert.Equal(t, uint64(1000), result.BlockNumber)
	assert.NotEmpty(t, result.TxHash)
}

func TestFund_InvalidAmount(t *testing.T) {
	client, _ := newTestClient(t, testPrivateKey)

	_, err := client.Fund(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = client.Fund(context.Background(), "-1")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFund_Sends(t *testing.T) {
	client, backend := newTestClient(t, testPrivateKey)
	backend.receipt = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(1001),
	}

	_, err := client.Fund(context.Background(), "0.5")
	require.NoError(t, err)

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, new(big.Int).Mul(big.NewInt(5), big.NewInt(1e17)), tx.Value())
	require.NotNil(t, tx.To())
	assert.Equal(t, common.HexToAddress(testContractAddr), *tx.To())
}

func TestFulfillWeather_FailedReceipt(t *testing.T) {
	client, backend := newTestClient(t, testPrivateKey)
	backend.receipt = &types.Receipt{
		Status:      types.ReceiptStatusFailed,
		BlockNumber: big.NewInt(1002),
	}

	_, err := client.FulfillWeather(context.Background(), 120)
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{ContractAddress: testContractAddr, ChainID: 1})
	assert.Error(t, err)

	_, err = New(Config{RPCURL: "http://localhost:8545", ChainID: 1})
	assert.Error(t, err)

	_, err = New(Config{RPCURL: "http://localhost:8545", ContractAddress: testContractAddr, ChainID: 1, PrivateKey: "short"})
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestFormatETH(t *testing.T) {
	tests := []struct {
		name string
		wei  *big.Int
		want string
	}{
		{"nil", nil, "0"},
		{"zero", big.NewInt(0), "0"},
		{"one eth", big.NewInt(1e18), "1"},
		{"half eth", big.NewInt(5e17), "0.5"},
		{"jaisalmer premium", big.NewInt(268e14), "0.0268"},
		{"one wei", big.NewInt(1), "0.000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatETH(tt.wei))
		})
	}
}

func TestParseETH(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    *big.Int
		wantErr bool
	}{
		{"one eth", "1", big.NewInt(1e18), false},
		{"half eth", "0.5", big.NewInt(5e17), false},
		{"premium", "0.0268", big.NewInt(268e14), false},
		{"garbage", "lots", nil, true},
		{"negative", "-1", nil, true},
		{"zero", "0", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseETH(tt.amount)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, tt.want.Cmp(got))
		})
	}
}
