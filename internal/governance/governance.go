// Package governance is the client for the on-chain proposal voting
// contract. Proposals, votes, and tallies live on chain; this package reads
// them, submits votes, and auto-executes proposals that clear the approval
// threshold.
package governance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/terrashield/terrashield/internal/contract"
	"github.com/terrashield/terrashield/internal/metrics"
	"github.com/terrashield/terrashield/internal/traces"
)

var (
	ErrThresholdNotReached = errors.New("governance: approval threshold not reached")
	ErrProposalNotFound    = errors.New("governance: proposal not found")
	ErrInvalidVoter        = errors.New("governance: invalid voter address")
)

// Voting contract ABI, tallies plus the three mutating entry points.
const votingABI = `[
	{"constant":true,"inputs":[],"name":"totalProposals","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"proposalId","type":"uint256"}],"name":"getProposal","outputs":[{"name":"title","type":"string"},{"name":"description","type":"string"},{"name":"status","type":"string"},{"name":"createdAt","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"proposalId","type":"uint256"}],"name":"getVoteStatus","outputs":[{"name":"votesFor","type":"uint256"},{"name":"votesAgainst","type":"uint256"},{"name":"totalVoters","type":"uint256"},{"name":"approvalPercentage","type":"uint256"},{"name":"canExecute","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"proposalId","type":"uint256"},{"name":"voter","type":"address"}],"name":"userHasVoted","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"proposalId","type":"uint256"},{"name":"support","type":"bool"}],"name":"submitVote","outputs":[],"type":"function"},
	{"constant":false,"inputs":[{"name":"proposalId","type":"uint256"}],"name":"checkAndExecute","outputs":[],"type":"function"},
	{"constant":false,"inputs":[{"name":"title","type":"string"},{"name":"description","type":"string"},{"name":"executionThreshold","type":"uint256"}],"name":"createProposal","outputs":[],"type":"function"}
]`

const (
	// ExecutionThreshold is the approval percentage a proposal must reach.
	ExecutionThreshold = uint64(80)

	// AutoExecuteCeiling caps automatic execution. Proposals above it need a
	// manual execute call so contentious landslides get a human look.
	AutoExecuteCeiling = uint64(90)

	VoteGasLimit           = uint64(200000)
	ExecuteGasLimit        = uint64(500000)
	CreateProposalGasLimit = uint64(500000)
)

// Proposal is one on-chain proposal with its current tally.
type Proposal struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	VotesFor           uint64 `json:"votesFor"`
	VotesAgainst       uint64 `json:"votesAgainst"`
	TotalVoters        uint64 `json:"totalVoters"`
	Status             string `json:"status"`
	ExecutionThreshold uint64 `json:"executionThreshold"`
	CreatedAt          int64  `json:"createdAt"`
}

// VoteStatus is the tally snapshot for one proposal.
type VoteStatus struct {
	ProposalID          int64  `json:"proposalId"`
	VotesFor            uint64 `json:"votesFor"`
	VotesAgainst        uint64 `json:"votesAgainst"`
	TotalVoters         uint64 `json:"totalVoters"`
	ApprovalPercentage  uint64 `json:"approvalPercentage"`
	ThresholdPercentage uint64 `json:"thresholdPercentage"`
	ThresholdReached    bool   `json:"thresholdReached"`
	CanAutoExecute      bool   `json:"canAutoExecute"`
}

// Config for creating a governance service
type Config struct {
	RPCURL          string
	PrivateKey      string // Hex, 0x prefix optional; empty = read-only
	ChainID         int64
	ContractAddress string
}

// Option configures the service
type Option func(*Service)

// WithBackend sets a custom Ethereum backend (useful for testing)
func WithBackend(backend contract.EthBackend) Option {
	return func(s *Service) {
		s.backend = backend
	}
}

// Service talks to the voting contract
type Service struct {
	backend contract.EthBackend
	abi     abi.ABI
	address common.Address
	signer  *contract.Signer
}

// New creates a governance service. An empty private key yields a read-only
// service: tallies and proposals work, votes and executions return
// contract.ErrReadOnly.
func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("%w: RPC URL required", contract.ErrRPCConnection)
	}
	if cfg.ContractAddress == "" {
		return nil, fmt.Errorf("governance contract address required")
	}
	if cfg.ChainID == 0 {
		return nil, fmt.Errorf("chain ID required")
	}

	parsedABI, err := abi.JSON(strings.NewReader(votingABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse voting ABI: %w", err)
	}

	s := &Service{
		abi:     parsedABI,
		address: common.HexToAddress(cfg.ContractAddress),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.backend == nil {
		backend, err := ethclient.Dial(cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contract.ErrRPCConnection, err)
		}
		s.backend = backend
	}

	signer, err := contract.NewSigner(s.backend, cfg.ChainID, cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	s.signer = signer

	return s, nil
}

// CanSign reports whether the service can submit votes and executions.
func (s *Service) CanSign() bool {
	return s.signer.CanSign()
}

// Close closes the backend connection
func (s *Service) Close() error {
	if s.backend != nil {
		s.backend.Close()
	}
	return nil
}

func (s *Service) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := s.abi.Pack(method, args...)
	if err != nil {
		return nil, &contract.CallError{Op: method, Err: err}
	}

	out, err := s.backend.CallContract(ctx, ethereum.CallMsg{
		To:   &s.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, &contract.CallError{Op: method, Err: err}
	}

	vals, err := s.abi.Unpack(method, out)
	if err != nil {
		return nil, &contract.CallError{Op: method, Err: err}
	}
	return vals, nil
}

// TotalProposals returns the number of proposals ever created.
func (s *Service) TotalProposals(ctx context.Context) (int64, error) {
	vals, err := s.call(ctx, "totalProposals")
	if err != nil {
		return 0, err
	}
	total, ok := vals[0].(*big.Int)
	if !ok {
		return 0, &contract.CallError{Op: "totalProposals", Err: fmt.Errorf("unexpected return type %T", vals[0])}
	}
	return total.Int64(), nil
}

// VoteStatus returns the tally for one proposal.
func (s *Service) VoteStatus(ctx context.Context, proposalID int64) (*VoteStatus, error) {
	vals, err := s.call(ctx, "getVoteStatus", big.NewInt(proposalID))
	if err != nil {
		return nil, err
	}
	if len(vals) != 5 {
		return nil, &contract.CallError{Op: "getVoteStatus", Err: fmt.Errorf("expected 5 return values, got %d", len(vals))}
	}

	votesFor, okFor := vals[0].(*big.Int)
	votesAgainst, okAgainst := vals[1].(*big.Int)
	totalVoters, okTotal := vals[2].(*big.Int)
	approval, okApproval := vals[3].(*big.Int)
	if !okFor || !okAgainst || !okTotal || !okApproval {
		return nil, &contract.CallError{Op: "getVoteStatus", Err: fmt.Errorf("unexpected return types")}
	}

	pct := approval.Uint64()
	return &VoteStatus{
		ProposalID:          proposalID,
		VotesFor:            votesFor.Uint64(),
		VotesAgainst:        votesAgainst.Uint64(),
		TotalVoters:         totalVoters.Uint64(),
		ApprovalPercentage:  pct,
		ThresholdPercentage: ExecutionThreshold,
		ThresholdReached:    pct >= ExecutionThreshold,
		CanAutoExecute:      pct >= ExecutionThreshold && pct <= AutoExecuteCeiling,
	}, nil
}

// Proposal returns one proposal with its tally merged in.
func (s *Service) Proposal(ctx context.Context, proposalID int64) (*Proposal, error) {
	vals, err := s.call(ctx, "getProposal", big.NewInt(proposalID))
	if err != nil {
		return nil, err
	}
	if len(vals) != 4 {
		return nil, &contract.CallError{Op: "getProposal", Err: fmt.Errorf("expected 4 return values, got %d", len(vals))}
	}

	title, okTitle := vals[0].(string)
	description, okDesc := vals[1].(string)
	status, okStatus := vals[2].(string)
	createdAt, okCreated := vals[3].(*big.Int)
	if !okTitle || !okDesc || !okStatus || !okCreated {
		return nil, &contract.CallError{Op: "getProposal", Err: fmt.Errorf("unexpected return types")}
	}

	tally, err := s.VoteStatus(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	return &Proposal{
		ID:                 proposalID,
		Title:              title,
		Description:        description,
		VotesFor:           tally.VotesFor,
		VotesAgainst:       tally.VotesAgainst,
		TotalVoters:        tally.TotalVoters,
		Status:             status,
		ExecutionThreshold: ExecutionThreshold,
		CreatedAt:          createdAt.Int64(),
	}, nil
}

// Proposals returns every readable proposal. Entries the contract cannot
// serve (pruned or mid-write) are skipped rather than failing the whole
// listing.
func (s *Service) Proposals(ctx context.Context) ([]Proposal, error) {
	total, err := s.TotalProposals(ctx)
	if err != nil {
		return nil, err
	}

	proposals := make([]Proposal, 0, total)
	for i := int64(0); i < total; i++ {
		p, err := s.Proposal(ctx, i)
		if err != nil {
			continue
		}
		proposals = append(proposals, *p)
	}
	return proposals, nil
}

// HasVoted reports whether the voter already voted on the proposal.
func (s *Service) HasVoted(ctx context.Context, proposalID int64, voter string) (bool, error) {
	if !common.IsHexAddress(voter) {
		return false, fmt.Errorf("%w: %q", ErrInvalidVoter, voter)
	}

	vals, err := s.call(ctx, "userHasVoted", big.NewInt(proposalID), common.HexToAddress(voter))
	if err != nil {
		return false, err
	}
	voted, ok := vals[0].(bool)
	if !ok {
		return false, &contract.CallError{Op: "userHasVoted", Err: fmt.Errorf("unexpected return type %T", vals[0])}
	}
	return voted, nil
}

// VoterEligibility reports whether the address can vote. Eligibility is a
// nonzero chain balance.
func (s *Service) VoterEligibility(ctx context.Context, voter string) (bool, error) {
	if !common.IsHexAddress(voter) {
		return false, fmt.Errorf("%w: %q", ErrInvalidVoter, voter)
	}

	balance, err := s.backend.BalanceAt(ctx, common.HexToAddress(voter), nil)
	if err != nil {
		return false, &contract.CallError{Op: "voterEligibility", Err: err}
	}
	return balance.Sign() > 0, nil
}

// SubmitVote casts a vote on the proposal and waits for the transaction to
// be mined.
func (s *Service) SubmitVote(ctx context.Context, proposalID int64, support bool) (*contract.TxResult, error) {
	data, err := s.abi.Pack("submitVote", big.NewInt(proposalID), support)
	if err != nil {
		return nil, &contract.CallError{Op: "submitVote", Err: err}
	}

	result, err := s.signer.SendAndWait(ctx, "submitVote", s.address, data, big.NewInt(0), VoteGasLimit)
	if err != nil {
		return nil, err
	}

	label := "against"
	if support {
		label = "for"
	}
	metrics.GovernanceVotesTotal.WithLabelValues(label).Inc()

	return result, nil
}

// ExecuteProposal executes a proposal that has cleared the approval
// threshold. Fails with ErrThresholdNotReached otherwise.
func (s *Service) ExecuteProposal(ctx context.Context, proposalID int64) (*contract.TxResult, error) {
	ctx, span := traces.StartSpan(ctx, "governance.ExecuteProposal", traces.ProposalID(proposalID))
	defer span.End()

	status, err := s.VoteStatus(ctx, proposalID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !status.ThresholdReached {
		return nil, fmt.Errorf("%w: %d%% < %d%%", ErrThresholdNotReached, status.ApprovalPercentage, status.ThresholdPercentage)
	}

	data, err := s.abi.Pack("checkAndExecute", big.NewInt(proposalID))
	if err != nil {
		return nil, &contract.CallError{Op: "checkAndExecute", Err: err}
	}
	return s.signer.SendAndWait(ctx, "checkAndExecute", s.address, data, big.NewInt(0), ExecuteGasLimit)
}

// CreateProposal registers a new proposal on chain.
func (s *Service) CreateProposal(ctx context.Context, title, description string, executionThreshold uint64) (*contract.TxResult, error) {
	if title == "" {
		return nil, fmt.Errorf("proposal title required")
	}
	if executionThreshold == 0 {
		executionThreshold = ExecutionThreshold
	}

	data, err := s.abi.Pack("createProposal", title, description, new(big.Int).SetUint64(executionThreshold))
	if err != nil {
		return nil, &contract.CallError{Op: "createProposal", Err: err}
	}
	return s.signer.SendAndWait(ctx, "createProposal", s.address, data, big.NewInt(0), CreateProposalGasLimit)
}
