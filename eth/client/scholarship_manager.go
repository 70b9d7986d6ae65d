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
	"github.com/ethereum/go-ethereum/event"
)

// ScholarshipManagerABI is the consumed surface of the deployed contract;
// the contract source itself is not part of this repository.
const ScholarshipManagerABI = `[
	{"type":"function","name":"createScholarship","stateMutability":"payable","inputs":[{"name":"_title","type":"string"},{"name":"_amount","type":"uint256"},{"name":"_slots","type":"uint256"},{"name":"_deadline","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"approveApplication","stateMutability":"nonpayable","inputs":[{"name":"_scholarshipId","type":"uint256"},{"name":"_recipient","type":"address"}],"outputs":[]},
	{"type":"function","name":"deactivateScholarship","stateMutability":"nonpayable","inputs":[{"name":"_scholarshipId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"nextScholarshipId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"scholarships","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"sponsor","type":"address"},{"name":"title","type":"string"},{"name":"amount","type":"uint256"},{"name":"slots","type":"uint256"},{"name":"awarded","type":"uint256"},{"name":"deadline","type":"uint256"},{"name":"active","type":"bool"}]},
	{"type":"event","name":"ScholarshipCreated","inputs":[{"name":"id","type":"uint256","indexed":true},{"name":"sponsor","type":"address","indexed":true},{"name":"title","type":"string","indexed":false},{"name":"amount","type":"uint256","indexed":false},{"name":"slots","type":"uint256","indexed":false},{"name":"deadline","type":"uint256","indexed":false}]}
]`

// ScholarshipCreated is emitted by the contract on every successful creation;
// its first argument is the new scholarship id.
type ScholarshipCreated struct {
	Id       *big.Int
	Sponsor  common.Address
	Title    string
	Amount   *big.Int
	Slots    *big.Int
	Deadline *big.Int
	Raw      types.Log
}

// ScholarshipInfo mirrors the contract's scholarships(id) getter.
type ScholarshipInfo struct {
	Sponsor  common.Address
	Title    string
	Amount   *big.Int
	Slots    *big.Int
	Awarded  *big.Int
	Deadline *big.Int
	Active   bool
}

type ScholarshipCreatedIterator interface {
	Next() bool
	Event() *ScholarshipCreated
	Error() error
	Close() error
}

type ScholarshipManagerContract interface {
	Address() common.Address
	CreateScholarship(opts *bind.TransactOpts, title string, amount *big.Int, slots *big.Int, deadline *big.Int) (*types.Transaction, error)
	ApproveApplication(opts *bind.TransactOpts, scholarshipId *big.Int, recipient common.Address) (*types.Transaction, error)
	DeactivateScholarship(opts *bind.TransactOpts, scholarshipId *big.Int) (*types.Transaction, error)
	NextScholarshipId(opts *bind.CallOpts) (*big.Int, error)
	GetScholarship(opts *bind.CallOpts, scholarshipId *big.Int) (ScholarshipInfo, error)
	ParseScholarshipCreated(log types.Log) (*ScholarshipCreated, error)
	FilterScholarshipCreated(opts *bind.FilterOpts) (ScholarshipCreatedIterator, error)
}

type scholarshipManagerContract struct {
	address common.Address
	bound   *bind.BoundContract
}

func NewScholarshipManagerContract(address common.Address, backend *ethclient.Client) (ScholarshipManagerContract, error) {
	parsed, err := abi.JSON(strings.NewReader(ScholarshipManagerABI))
	if err != nil {
		return nil, err
	}
	return &scholarshipManagerContract{
		address: address,
		bound:   bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (c *scholarshipManagerContract) Address() common.Address {
	return c.address
}

func (c *scholarshipManagerContract) CreateScholarship(opts *bind.TransactOpts, title string, amount *big.Int, slots *big.Int, deadline *big.Int) (*types.Transaction, error) {
	return c.bound.Transact(opts, "createScholarship", title, amount, slots, deadline)
}

func (c *scholarshipManagerContract) ApproveApplication(opts *bind.TransactOpts, scholarshipId *big.Int, recipient common.Address) (*types.Transaction, error) {
	return c.bound.Transact(opts, "approveApplication", scholarshipId, recipient)
}

func (c *scholarshipManagerContract) DeactivateScholarship(opts *bind.TransactOpts, scholarshipId *big.Int) (*types.Transaction, error) {
	return c.bound.Transact(opts, "deactivateScholarship", scholarshipId)
}

func (c *scholarshipManagerContract) NextScholarshipId(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := c.bound.Call(opts, &out, "nextScholarshipId")
	if err != nil {
		return nil, err
	}
	nextId, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected type for nextScholarshipId")
	}
	return nextId, nil
}

func (c *scholarshipManagerContract) GetScholarship(opts *bind.CallOpts, scholarshipId *big.Int) (ScholarshipInfo, error) {
	var out []interface{}
	err := c.bound.Call(opts, &out, "scholarships", scholarshipId)
	if err != nil {
		return ScholarshipInfo{}, err
	}
	info := ScholarshipInfo{
		Sponsor:  *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		Title:    *abi.ConvertType(out[1], new(string)).(*string),
		Amount:   *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		Slots:    *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		Awarded:  *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
		Deadline: *abi.ConvertType(out[5], new(*big.Int)).(**big.Int),
		Active:   *abi.ConvertType(out[6], new(bool)).(*bool),
	}
	return info, nil
}

// ParseScholarshipCreated decodes a single raw log. Logs emitted by other
// contracts or other events fail to decode; callers treat that failure as
// "try the next log", not as an error condition.
func (c *scholarshipManagerContract) ParseScholarshipCreated(log types.Log) (*ScholarshipCreated, error) {
	event := new(ScholarshipCreated)
	if err := c.bound.UnpackLog(event, "ScholarshipCreated", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

func (c *scholarshipManagerContract) FilterScholarshipCreated(opts *bind.FilterOpts) (ScholarshipCreatedIterator, error) {
	logs, sub, err := c.bound.FilterLogs(opts, "ScholarshipCreated")
	if err != nil {
		return nil, err
	}
	return &scholarshipCreatedIterator{contract: c, logs: logs, sub: sub}, nil
}

type scholarshipCreatedIterator struct {
	contract *scholarshipManagerContract
	event    *ScholarshipCreated
	logs     chan types.Log
	sub      event.Subscription
	done     bool
	fail     error
}

func (it *scholarshipCreatedIterator) unpack(log types.Log) bool {
	event, err := it.contract.ParseScholarshipCreated(log)
	if err != nil {
		it.fail = err
		return false
	}
	it.event = event
	return true
}

func (it *scholarshipCreatedIterator) Next() bool {
	if it.fail != nil {
		return false
	}
	if it.done {
		select {
		case log := <-it.logs:
			return it.unpack(log)
		default:
			return false
		}
	}
	select {
	case log := <-it.logs:
		return it.unpack(log)
	case err := <-it.sub.Err():
		it.done = true
		it.fail = err
		return it.Next()
	}
}

func (it *scholarshipCreatedIterator) Event() *ScholarshipCreated {
	return it.event
}

func (it *scholarshipCreatedIterator) Error() error {
	return it.fail
}

func (it *scholarshipCreatedIterator) Close() error {
	it.sub.Unsubscribe()
	return nil
}
