// Hand-written testify mocks used across package tests.
package client

import (
	"context"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/mock"
)

type MockEthereumClient struct {
	mock.Mock
}

func NewMockEthereumClient(t *testing.T) *MockEthereumClient {
	m := &MockEthereumClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEthereumClient) GetBlockNumber() (uint64, error) {
	args := m.Called()
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockEthereumClient) GetChainID() (*big.Int, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockEthereumClient) GetClient() *ethclient.Client {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*ethclient.Client)
}

func (m *MockEthereumClient) GetBalance(address string) (*big.Int, error) {
	args := m.Called(address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockEthereumClient) GetTransactionByHash(txHash string) (*types.Transaction, bool, error) {
	args := m.Called(txHash)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*types.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockEthereumClient) GetTransactionReceipt(txHash string) (*types.Receipt, error) {
	args := m.Called(txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

func (m *MockEthereumClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, msg, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockScholarshipManagerContract struct {
	mock.Mock
}

func NewMockScholarshipManagerContract(t *testing.T) *MockScholarshipManagerContract {
	m := &MockScholarshipManagerContract{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockScholarshipManagerContract) Address() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}

func (m *MockScholarshipManagerContract) CreateScholarship(opts *bind.TransactOpts, title string, amount *big.Int, slots *big.Int, deadline *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, title, amount, slots, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *MockScholarshipManagerContract) ApproveApplication(opts *bind.TransactOpts, scholarshipId *big.Int, recipient common.Address) (*types.Transaction, error) {
	args := m.Called(opts, scholarshipId, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *MockScholarshipManagerContract) DeactivateScholarship(opts *bind.TransactOpts, scholarshipId *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, scholarshipId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *MockScholarshipManagerContract) NextScholarshipId(opts *bind.CallOpts) (*big.Int, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockScholarshipManagerContract) GetScholarship(opts *bind.CallOpts, scholarshipId *big.Int) (ScholarshipInfo, error) {
	args := m.Called(opts, scholarshipId)
	return args.Get(0).(ScholarshipInfo), args.Error(1)
}

func (m *MockScholarshipManagerContract) ParseScholarshipCreated(log types.Log) (*ScholarshipCreated, error) {
	args := m.Called(log)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ScholarshipCreated), args.Error(1)
}

func (m *MockScholarshipManagerContract) FilterScholarshipCreated(opts *bind.FilterOpts) (ScholarshipCreatedIterator, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ScholarshipCreatedIterator), args.Error(1)
}

type MockTokenContract struct {
	mock.Mock
}

func NewMockTokenContract(t *testing.T) *MockTokenContract {
	m := &MockTokenContract{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenContract) Address() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}

func (m *MockTokenContract) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, spender, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *MockTokenContract) Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error) {
	args := m.Called(opts, owner, spender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockTokenContract) BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error) {
	args := m.Called(opts, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockTokenContract) Decimals(opts *bind.CallOpts) (uint8, error) {
	args := m.Called(opts)
	return args.Get(0).(uint8), args.Error(1)
}

func (m *MockTokenContract) Symbol(opts *bind.CallOpts) (string, error) {
	args := m.Called(opts)
	return args.String(0), args.Error(1)
}

// SliceScholarshipCreatedIterator iterates over an in-memory event slice.
type SliceScholarshipCreatedIterator struct {
	Events []*ScholarshipCreated
	index  int
}

func (it *SliceScholarshipCreatedIterator) Next() bool {
	if it.index >= len(it.Events) {
		return false
	}
	it.index++
	return true
}

func (it *SliceScholarshipCreatedIterator) Event() *ScholarshipCreated {
	return it.Events[it.index-1]
}

func (it *SliceScholarshipCreatedIterator) Error() error { return nil }

func (it *SliceScholarshipCreatedIterator) Close() error { return nil }
