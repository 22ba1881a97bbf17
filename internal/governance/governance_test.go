package governance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrashield/terrashield/internal/contract"
)

const (
	testVotingAddr = "0x7a4bC79Dd0A40b8Ea1572a4E53cC9D1eFd10e2a5"
	testSignerKey  = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
)

// fakeBackend unpacks each eth_call, hands it to onCall, and re-packs the
// returned values. Submitted transactions are mined instantly.
type fakeBackend struct {
	svc      *Service
	onCall   func(method string, args []interface{}) ([]interface{}, error)
	balances map[string]*big.Int
	sent     []*types.Transaction
	receipt  *types.Receipt
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 1, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	if f.receipt == nil {
		return nil, errors.New("not found")
	}
	return f.receipt, nil
}

func (f *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	for name, method := range f.svc.abi.Methods {
		if !bytes.HasPrefix(call.Data, method.ID) {
			continue
		}
		args, err := method.Inputs.Unpack(call.Data[4:])
		if err != nil {
			return nil, err
		}
		out, err := f.onCall(name, args)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(out...)
	}
	return nil, errors.New("unknown method")
}

func (f *fakeBackend) BalanceAt(_ context.Context, account common.Address, _ *big.Int) (*big.Int, error) {
	if b, ok := f.balances[account.Hex()]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeBackend) Close() {}

func newTestService(t *testing.T, privateKey string, onCall func(method string, args []interface{}) ([]interface{}, error)) (*Service, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{onCall: onCall, balances: map[string]*big.Int{}}
	svc, err := New(Config{
		RPCURL:          "http://localhost:8545",
		PrivateKey:      privateKey,
		ChainID:         11155111,
		ContractAddress: testVotingAddr,
	}, WithBackend(backend))
	require.NoError(t, err)
	backend.svc = svc
	return svc, backend
}

// tallyHandler serves getVoteStatus with a fixed approval percentage.
func tallyHandler(approvalPct int64) func(method string, args []interface{}) ([]interface{}, error) {
	return func(method string, args []interface{}) ([]interface{}, error) {
		switch method {
		case "totalProposals":
			return []interface{}{big.NewInt(1)}, nil
		case "getVoteStatus":
			return []interface{}{
				big.NewInt(8), big.NewInt(2), big.NewInt(10),
				big.NewInt(approvalPct), approvalPct >= 80,
			}, nil
		case "getProposal":
			return []interface{}{"Raise rain threshold", "From 100mm to 120mm", "Active", big.NewInt(1700000000)}, nil
		case "userHasVoted":
			return []interface{}{false}, nil
		}
		return nil, fmt.Errorf("unexpected call to %s", method)
	}
}

func TestVoteStatus_Thresholds(t *testing.T) {
	tests := []struct {
		approval       int64
		reached        bool
		canAutoExecute bool
	}{
		{0, false, false},
		{79, false, false},
		{80, true, true},
		{85, true, true},
		{90, true, true},
		{91, true, false},
		{100, true, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("approval_%d", tt.approval), func(t *testing.T) {
			svc, _ := newTestService(t, "", tallyHandler(tt.approval))

			status, err := svc.VoteStatus(context.Background(), 0)
			require.NoError(t, err)

			assert.Equal(t, uint64(tt.approval), status.ApprovalPercentage)
			assert.Equal(t, uint64(80), status.ThresholdPercentage)
			assert.Equal(t, tt.reached, status.ThresholdReached)
			assert.Equal(t, tt.canAutoExecute, status.CanAutoExecute)
		})
	}
}

func TestProposal(t *testing.T) {
	svc, _ := newTestService(t, "", tallyHandler(85))

	p, err := svc.Proposal(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, "Raise rain threshold", p.Title)
	assert.Equal(t, "Active", p.Status)
	assert.Equal(t, uint64(8), p.VotesFor)
	assert.Equal(t, uint64(2), p.VotesAgainst)
	assert.Equal(t, uint64(10), p.TotalVoters)
	assert.Equal(t, uint64(80), p.ExecutionThreshold)
	assert.Equal(t, int64(1700000000), p.CreatedAt)
}

func TestProposals_SkipsUnreadable(t *testing.T) {
	svc, _ := newTestService(t, "", func(method string, args []interface{}) ([]interface{}, error) {
		switch method {
		case "totalProposals":
			return []interface{}{big.NewInt(3)}, nil
		case "getProposal":
			id := args[0].(*big.Int).Int64()
			if id == 1 {
				return nil, errors.New("execution reverted")
			}
			return []interface{}{fmt.Sprintf("Proposal %d", id), "", "Active", big.NewInt(0)}, nil
		case "getVoteStatus":
			return []interface{}{big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), false}, nil
		}
		return nil, fmt.Errorf("unexpected call to %s", method)
	})

	proposals, err := svc.Proposals(context.Background())
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.Equal(t, "Proposal 0", proposals[0].Title)
	assert.Equal(t, "Proposal 2", proposals[1].Title)
}

func TestSubmitVote_ReadOnly(t *testing.T) {
	svc, _ := newTestService(t, "", tallyHandler(50))

	_, err := svc.SubmitVote(context.Background(), 0, true)
	assert.ErrorIs(t, err, contract.ErrReadOnly)
}

func TestSubmitVote_Sends(t *testing.T) {
	svc, backend := newTestService(t, testSignerKey, tallyHandler(50))
	backend.receipt = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(500),
	}

	result, err := svc.SubmitVote(context.Background(), 3, true)
	require.NoError(t, err)

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, VoteGasLimit, tx.Gas())
	assert.Equal(t, common.HexToAddress(testVotingAddr), *tx.To())
	assert.Equal(t, uint64(500), result.BlockNumber)
}

func TestExecuteProposal_ThresholdNotReached(t *testing.T) {
	svc, backend := newTestService(t, testSignerKey, tallyHandler(50))

	_, err := svc.ExecuteProposal(context.Background(), 0)
	assert.ErrorIs(t, err, ErrThresholdNotReached)
	assert.Empty(t, backend.sent, "no transaction should be sent below threshold")
}

func TestExecuteProposal_Executes(t *testing.T) {
	svc, backend := newTestService(t, testSignerKey, tallyHandler(85))
	backend.receipt = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(501),
	}

	result, err := svc.ExecuteProposal(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, ExecuteGasLimit, backend.sent[0].Gas())
	assert.NotEmpty(t, result.TxHash)
}

func TestCreateProposal_DefaultsThreshold(t *testing.T) {
	svc, backend := newTestService(t, testSignerKey, tallyHandler(0))
	backend.receipt = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(502),
	}

	_, err := svc.CreateProposal(context.Background(), "Lower premiums", "", 0)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	// Threshold argument defaults to 80 when the caller passes zero.
	args, err := svc.abi.Methods["createProposal"].Inputs.Unpack(backend.sent[0].Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, int64(80), args[2].(*big.Int).Int64())
}

func TestCreateProposal_RequiresTitle(t *testing.T) {
	svc, _ := newTestService(t, testSignerKey, tallyHandler(0))

	_, err := svc.CreateProposal(context.Background(), "", "desc", 80)
	assert.Error(t, err)
}

func TestHasVoted(t *testing.T) {
	svc, _ := newTestService(t, "", func(method string, args []interface{}) ([]interface{}, error) {
		if method == "userHasVoted" {
			return []interface{}{true}, nil
		}
		return nil, fmt.Errorf("unexpected call to %s", method)
	})

	voted, err := svc.HasVoted(context.Background(), 0, "0x1234567890123456789012345678901234567890")
	require.NoError(t, err)
	assert.True(t, voted)

	_, err = svc.HasVoted(context.Background(), 0, "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidVoter)
}

func TestVoterEligibility(t *testing.T) {
	svc, backend := newTestService(t, "", tallyHandler(0))
	funded := "0x1234567890123456789012345678901234567890"
	backend.balances[common.HexToAddress(funded).Hex()] = big.NewInt(1e15)

	eligible, err := svc.VoterEligibility(context.Background(), funded)
	require.NoError(t, err)
	assert.True(t, eligible)

	eligible, err = svc.VoterEligibility(context.Background(), "0x9999999999999999999999999999999999999999")
	require.NoError(t, err)
	assert.False(t, eligible, "zero balance is not eligible")

	_, err = svc.VoterEligibility(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidVoter)
}

type stubEmitter struct {
	events []map[string]interface{}
}

func (s *stubEmitter) EmitGovernance(event map[string]interface{}) {
	s.events = append(s.events, event)
}

func TestMonitor_AutoExecutes(t *testing.T) {
	svc, backend := newTestService(t, testSignerKey, tallyHandler(85))
	backend.receipt = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(600),
	}

	emitter := &stubEmitter{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	monitor := NewMonitor(svc, 0, logger).WithEvents(emitter)

	monitor.poll(context.Background())

	require.Len(t, backend.sent, 1, "in-window proposal should auto-execute")
	require.Len(t, emitter.events, 1)
	assert.Equal(t, uint64(85), emitter.events[0]["approvalPercentage"])

	// Unchanged tally on the next poll emits nothing new.
	monitor.poll(context.Background())
	assert.Len(t, emitter.events, 1)
}

func TestMonitor_ReadOnlySkipsExecution(t *testing.T) {
	svc, backend := newTestService(t, "", tallyHandler(85))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	monitor := NewMonitor(svc, 0, logger)

	monitor.poll(context.Background())
	assert.Empty(t, backend.sent)
}
