package client

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// TokenABI is the ERC-20 surface consumed by the token-funded creation flow.
const TokenABI = `[
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
]`

type TokenContract interface {
	Address() common.Address
	Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error)
	Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error)
	BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error)
	Decimals(opts *bind.CallOpts) (uint8, error)
	Symbol(opts *bind.CallOpts) (string, error)
}

type tokenContract struct {
	address common.Address
	bound   *bind.BoundContract
}

func NewTokenContract(address common.Address, backend *ethclient.Client) (TokenContract, error) {
	parsed, err := abi.JSON(strings.NewReader(TokenABI))
	if err != nil {
		return nil, err
	}
	return &tokenContract{
		address: address,
		bound:   bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (c *tokenContract) Address() common.Address {
	return c.address
}

func (c *tokenContract) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return c.bound.Transact(opts, "approve", spender, amount)
}

func (c *tokenContract) Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error) {
	var out []interface{}
	err := c.bound.Call(opts, &out, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected type for allowance")
	}
	return allowance, nil
}

func (c *tokenContract) BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error) {
	var out []interface{}
	err := c.bound.Call(opts, &out, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected type for balanceOf")
	}
	return balance, nil
}

func (c *tokenContract) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	err := c.bound.Call(opts, &out, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, errors.New("unexpected type for decimals")
	}
	return decimals, nil
}

func (c *tokenContract) Symbol(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	err := c.bound.Call(opts, &out, "symbol")
	if err != nil {
		return "", err
	}
	symbol, ok := out[0].(string)
	if !ok {
		return "", errors.New("unexpected type for symbol")
	}
	return symbol, nil
}
