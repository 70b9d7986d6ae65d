package eth

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/eth/client"
	"github.com/scholarchain/scholarchain-backend/models"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	log.SetOutput(io.Discard)
}

const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func newTestSyncer(t *testing.T, mockClient *client.MockEthereumClient, mockContract *client.MockScholarshipManagerContract, mockToken *client.MockTokenContract) *Syncer {
	privateKey, err := crypto.HexToECDSA(testPrivateKey)
	assert.NoError(t, err)

	s := &Syncer{
		client:         mockClient,
		contract:       mockContract,
		privateKey:     privateKey,
		address:        crypto.PubkeyToAddress(privateKey.PublicKey),
		chainId:        big.NewInt(31337),
		rpcTimeout:     time.Second,
		receiptTimeout: 100 * time.Millisecond,
		receiptPoll:    10 * time.Millisecond,
	}
	if mockToken != nil {
		s.token = mockToken
	}
	return s
}

func newTestTx() *types.Transaction {
	to := common.HexToAddress("0x1234567890123456789012345678901234567890")
	return types.NewTx(&types.LegacyTx{
		Nonce:    1,
		To:       &to,
		Value:    big.NewInt(0),
		Gas:      100000,
		GasPrice: big.NewInt(1),
	})
}

func validParams() CreateParams {
	amount, _ := ParseEther("0.5")
	return CreateParams{
		Title:       "STEM Excellence Grant",
		Description: "For undergraduate research",
		Category:    "academic",
		AmountWei:   amount,
		Slots:       4,
		Deadline:    time.Now().Add(24 * time.Hour).Unix(),
	}
}

func TestValidateCreateParams(t *testing.T) {
	now := time.Now()

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validateCreateParams(validParams(), now))
	})

	t.Run("Missing Title", func(t *testing.T) {
		params := validParams()
		params.Title = "  "
		assert.Error(t, validateCreateParams(params, now))
	})

	t.Run("Invalid Category", func(t *testing.T) {
		params := validParams()
		params.Category = "stipend"
		assert.Error(t, validateCreateParams(params, now))
	})

	t.Run("Non Positive Amount", func(t *testing.T) {
		params := validParams()
		params.AmountWei = big.NewInt(0)
		assert.Error(t, validateCreateParams(params, now))

		params.AmountWei = nil
		assert.Error(t, validateCreateParams(params, now))
	})

	t.Run("Non Positive Slots", func(t *testing.T) {
		params := validParams()
		params.Slots = 0
		assert.Error(t, validateCreateParams(params, now))
	})

	t.Run("Deadline In Past", func(t *testing.T) {
		params := validParams()
		params.Deadline = now.Add(-time.Hour).Unix()
		assert.ErrorIs(t, validateCreateParams(params, now), ErrDeadlineInPast)
	})
}

func TestCreateScholarshipValidationBeforeChainCall(t *testing.T) {
	// no expectations registered: any chain or database call fails the test
	mockClient := client.NewMockEthereumClient(t)
	mockContract := client.NewMockScholarshipManagerContract(t)
	mockDB := app.NewMockDatabase(t)
	app.DB = mockDB
	s := newTestSyncer(t, mockClient, mockContract, nil)

	params := validParams()
	params.Deadline = time.Now().Add(-time.Hour).Unix()

	scholarship, err := s.CreateScholarship(context.Background(), params)

	assert.ErrorIs(t, err, ErrDeadlineInPast)
	assert.Nil(t, scholarship)
}

func TestCreateScholarshipHappyPath(t *testing.T) {
	mockClient := client.NewMockEthereumClient(t)
	mockContract := client.NewMockScholarshipManagerContract(t)
	mockDB := app.NewMockDatabase(t)
	app.DB = mockDB
	s := newTestSyncer(t, mockClient, mockContract, nil)

	params := validParams()
	escrow := EscrowValue(params.AmountWei, params.Slots)
	tx := newTestTx()
	logEntry := &types.Log{Index: 0}
	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(42),
		GasUsed:     90000,
		Logs:        []*types.Log{logEntry},
	}

	mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
	mockDB.On("Unlock", "lockId").Return(nil)

	// escrow is the full value transfer: per-slot amount times slots
	mockContract.On("CreateScholarship",
		mock.MatchedBy(func(opts *bind.TransactOpts) bool {
			return opts.Value != nil && opts.Value.Cmp(escrow) == 0
		}),
		params.Title, params.AmountWei, big.NewInt(params.Slots), big.NewInt(params.Deadline),
	).Return(tx, nil)

	mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)

	event := &client.ScholarshipCreated{
		Id:       big.NewInt(5),
		Sponsor:  s.address,
		Title:    params.Title,
		Amount:   params.AmountWei,
		Slots:    big.NewInt(params.Slots),
		Deadline: big.NewInt(params.Deadline),
		Raw:      *logEntry,
	}
	mockContract.On("ParseScholarshipCreated", *logEntry).Return(event, nil)

	mockDB.On("FindOne", models.CollectionScholarships, bson.M{"contract_id": int64(5)}, mock.Anything).
		Return(mongo.ErrNoDocuments)
	mockDB.On("InsertOne", models.CollectionScholarships, mock.MatchedBy(func(doc *models.Scholarship) bool {
		return doc.ContractId == 5 &&
			doc.ChainTx.IdDerivation == models.IdDerivationEvent &&
			doc.ChainTx.TransactionHash == tx.Hash().Hex() &&
			doc.AmountWei == params.AmountWei.String()
	})).Return(nil)

	scholarship, err := s.CreateScholarship(context.Background(), params)

	assert.NoError(t, err)
	assert.NotNil(t, scholarship)
	assert.Equal(t, int64(5), scholarship.ContractId)
	assert.Equal(t, models.IdDerivationEvent, scholarship.ChainTx.IdDerivation)
	assert.Equal(t, models.ScholarshipStatusActive, scholarship.Status)
	assert.Equal(t, int64(42), scholarship.ChainTx.BlockNumber)
}

func TestCreateScholarshipCounterFallback(t *testing.T) {
	mockClient := client.NewMockEthereumClient(t)
	mockContract := client.NewMockScholarshipManagerContract(t)
	mockDB := app.NewMockDatabase(t)
	app.DB = mockDB
	s := newTestSyncer(t, mockClient, mockContract, nil)

	params := validParams()
	tx := newTestTx()
	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(42),
	}

	mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
	mockDB.On("Unlock", "lockId").Return(nil)
	mockContract.On("CreateScholarship", mock.Anything, params.Title, params.AmountWei,
		big.NewInt(params.Slots), big.NewInt(params.Deadline)).Return(tx, nil)
	mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)

	// no event in the receipt: the id is the counter minus one
	mockContract.On("NextScholarshipId", mock.Anything).Return(big.NewInt(8), nil)

	mockDB.On("FindOne", models.CollectionScholarships, bson.M{"contract_id": int64(7)}, mock.Anything).
		Return(mongo.ErrNoDocuments)
	mockDB.On("InsertOne", models.CollectionScholarships, mock.MatchedBy(func(doc *models.Scholarship) bool {
		return doc.ContractId == 7 && doc.ChainTx.IdDerivation == models.IdDerivationCounter
	})).Return(nil)

	scholarship, err := s.CreateScholarship(context.Background(), params)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), scholarship.ContractId)
	assert.Equal(t, models.IdDerivationCounter, scholarship.ChainTx.IdDerivation)
}

func TestCreateScholarshipIdDerivationsAgree(t *testing.T) {
	// both derivations run against the same chain state: a creation whose
	// receipt carries the event with id 5 and a counter that reads 6 next
	// must land on the same mirror row id
	params := validParams()

	create := func(t *testing.T, withEvent bool) *models.Scholarship {
		mockClient := client.NewMockEthereumClient(t)
		mockContract := client.NewMockScholarshipManagerContract(t)
		mockDB := app.NewMockDatabase(t)
		app.DB = mockDB
		s := newTestSyncer(t, mockClient, mockContract, nil)

		tx := newTestTx()
		receipt := &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(42),
		}
		if withEvent {
			logEntry := &types.Log{Index: 0}
			receipt.Logs = []*types.Log{logEntry}
			mockContract.On("ParseScholarshipCreated", *logEntry).Return(&client.ScholarshipCreated{
				Id:       big.NewInt(5),
				Sponsor:  s.address,
				Title:    params.Title,
				Amount:   params.AmountWei,
				Slots:    big.NewInt(params.Slots),
				Deadline: big.NewInt(params.Deadline),
				Raw:      *logEntry,
			}, nil)
		} else {
			mockContract.On("NextScholarshipId", mock.Anything).Return(big.NewInt(6), nil)
		}

		mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
		mockDB.On("Unlock", "lockId").Return(nil)
		mockContract.On("CreateScholarship", mock.Anything, params.Title, params.AmountWei,
			big.NewInt(params.Slots), big.NewInt(params.Deadline)).Return(tx, nil)
		mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)
		mockDB.On("FindOne", models.CollectionScholarships, bson.M{"contract_id": int64(5)}, mock.Anything).
			Return(mongo.ErrNoDocuments)
		mockDB.On("InsertOne", models.CollectionScholarships, mock.Anything).Return(nil)

		scholarship, err := s.CreateScholarship(context.Background(), params)
		assert.NoError(t, err)
		return scholarship
	}

	fromEvent := create(t, true)
	fromCounter := create(t, false)

	assert.Equal(t, models.IdDerivationEvent, fromEvent.ChainTx.IdDerivation)
	assert.Equal(t, models.IdDerivationCounter, fromCounter.ChainTx.IdDerivation)
	assert.Equal(t, fromEvent.ContractId, fromCounter.ContractId)
}

func TestCreateScholarshipRevert(t *testing.T) {
	mockClient := client.NewMockEthereumClient(t)
	mockContract := client.NewMockScholarshipManagerContract(t)
	mockDB := app.NewMockDatabase(t)
	app.DB = mockDB
	s := newTestSyncer(t, mockClient, mockContract, nil)

	params := validParams()
	tx := newTestTx()
	receipt := &types.Receipt{
		Status:      types.ReceiptStatusFailed,
		BlockNumber: big.NewInt(42),
	}

	mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
	mockDB.On("Unlock", "lockId").Return(nil)
	mockContract.On("CreateScholarship", mock.Anything, params.Title, params.AmountWei,
		big.NewInt(params.Slots), big.NewInt(params.Deadline)).Return(tx, nil)
	mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)
	mockClient.On("CallContract", mock.Anything, mock.Anything, receipt.BlockNumber).
		Return(nil, errors.New("execution reverted: escrow value mismatch"))

	// no FindOne or InsertOne expectations: a revert never writes a mirror row
	scholarship, err := s.CreateScholarship(context.Background(), params)

	assert.Nil(t, scholarship)
	var revert *RevertError
	assert.ErrorAs(t, err, &revert)
	assert.Equal(t, tx.Hash().Hex(), revert.TxHash)
	assert.Contains(t, revert.Reason, "escrow value mismatch")
}

func TestCreateScholarshipReceiptTimeout(t *testing.T) {
	mockClient := client.NewMockEthereumClient(t)
	mockContract := client.NewMockScholarshipManagerContract(t)
	mockDB := app.NewMockDatabase(t)
	app.DB = mockDB
	s := newTestSyncer(t, mockClient, mockContract, nil)

	params := validParams()
	tx := newTestTx()

	mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
	mockDB.On("Unlock", "lockId").Return(nil)
	mockContract.On("CreateScholarship", mock.Anything, params.Title, params.AmountWei,
		big.NewInt(params.Slots), big.NewInt(params.Deadline)).Return(tx, nil)
	mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(nil, ethereum.NotFound)

	scholarship, err := s.CreateScholarship(context.Background(), params)

	assert.Nil(t, scholarship)
	assert.ErrorIs(t, err, ErrStatusUnknown)
	assert.Contains(t, err.Error(), tx.Hash().Hex())
}

func TestCreateScholarshipAlreadyMirrored(t *testing.T) {
	t.Run("Pre Existing Row", func(t *testing.T) {
		mockClient := client.NewMockEthereumClient(t)
		mockContract := client.NewMockScholarshipManagerContract(t)
		mockDB := app.NewMockDatabase(t)
		app.DB = mockDB
		s := newTestSyncer(t, mockClient, mockContract, nil)

		params := validParams()
		tx := newTestTx()
		logEntry := &types.Log{Index: 0}
		receipt := &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(42),
			Logs:        []*types.Log{logEntry},
		}

		mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
		mockDB.On("Unlock", "lockId").Return(nil)
		mockContract.On("CreateScholarship", mock.Anything, params.Title, params.AmountWei,
			big.NewInt(params.Slots), big.NewInt(params.Deadline)).Return(tx, nil)
		mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)
		mockContract.On("ParseScholarshipCreated", *logEntry).
			Return(&client.ScholarshipCreated{Id: big.NewInt(5), Amount: params.AmountWei, Raw: *logEntry}, nil)

		mockDB.On("FindOne", models.CollectionScholarships, bson.M{"contract_id": int64(5)}, mock.Anything).
			Return(nil)

		scholarship, err := s.CreateScholarship(context.Background(), params)

		assert.Nil(t, scholarship)
		assert.ErrorIs(t, err, ErrAlreadyMirrored)
	})

	t.Run("Insert Race Resolved By Unique Index", func(t *testing.T) {
		mockClient := client.NewMockEthereumClient(t)
		mockContract := client.NewMockScholarshipManagerContract(t)
		mockDB := app.NewMockDatabase(t)
		app.DB = mockDB
		s := newTestSyncer(t, mockClient, mockContract, nil)

		params := validParams()
		tx := newTestTx()
		logEntry := &types.Log{Index: 0}
		receipt := &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(42),
			Logs:        []*types.Log{logEntry},
		}

		mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
		mockDB.On("Unlock", "lockId").Return(nil)
		mockContract.On("CreateScholarship", mock.Anything, params.Title, params.AmountWei,
			big.NewInt(params.Slots), big.NewInt(params.Deadline)).Return(tx, nil)
		mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)
		mockContract.On("ParseScholarshipCreated", *logEntry).
			Return(&client.ScholarshipCreated{Id: big.NewInt(5), Amount: params.AmountWei, Raw: *logEntry}, nil)

		mockDB.On("FindOne", models.CollectionScholarships, bson.M{"contract_id": int64(5)}, mock.Anything).
			Return(mongo.ErrNoDocuments)
		mockDB.On("InsertOne", models.CollectionScholarships, mock.Anything).
			Return(mongo.CommandError{Code: 11000})

		scholarship, err := s.CreateScholarship(context.Background(), params)

		assert.Nil(t, scholarship)
		assert.ErrorIs(t, err, ErrAlreadyMirrored)
	})
}

func TestCreateScholarshipTokenFunded(t *testing.T) {
	mockClient := client.NewMockEthereumClient(t)
	mockContract := client.NewMockScholarshipManagerContract(t)
	mockToken := client.NewMockTokenContract(t)
	mockDB := app.NewMockDatabase(t)
	app.DB = mockDB
	s := newTestSyncer(t, mockClient, mockContract, mockToken)

	params := validParams()
	params.TokenFunded = true
	escrow := EscrowValue(params.AmountWei, params.Slots)

	contractAddress := common.HexToAddress("0x1234567890123456789012345678901234567890")
	approveTx := newTestTx()
	approveReceipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(41)}

	createTo := common.HexToAddress("0x2234567890123456789012345678901234567890")
	createTx := types.NewTx(&types.LegacyTx{Nonce: 2, To: &createTo, Gas: 100000, GasPrice: big.NewInt(1)})
	logEntry := &types.Log{Index: 0}
	createReceipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(42),
		Logs:        []*types.Log{logEntry},
	}

	mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
	mockDB.On("Unlock", "lockId").Return(nil)

	// balance and allowance are read before any token transaction
	mockContract.On("Address").Return(contractAddress)
	mockToken.On("BalanceOf", mock.Anything, s.address).Return(new(big.Int).Add(escrow, big.NewInt(1)), nil)
	mockToken.On("Allowance", mock.Anything, s.address, contractAddress).Return(big.NewInt(0), nil)

	// the approval confirms strictly before the creation call
	mockToken.On("Approve", mock.Anything, contractAddress, escrow).Return(approveTx, nil)
	mockClient.On("GetTransactionReceipt", approveTx.Hash().Hex()).Return(approveReceipt, nil)

	// no value transfer on the creation call itself
	mockContract.On("CreateScholarship",
		mock.MatchedBy(func(opts *bind.TransactOpts) bool { return opts.Value == nil }),
		params.Title, params.AmountWei, big.NewInt(params.Slots), big.NewInt(params.Deadline),
	).Return(createTx, nil)
	mockClient.On("GetTransactionReceipt", createTx.Hash().Hex()).Return(createReceipt, nil)

	event := &client.ScholarshipCreated{Id: big.NewInt(9), Amount: params.AmountWei, Raw: *logEntry}
	mockContract.On("ParseScholarshipCreated", *logEntry).Return(event, nil)

	mockDB.On("FindOne", models.CollectionScholarships, bson.M{"contract_id": int64(9)}, mock.Anything).
		Return(mongo.ErrNoDocuments)
	mockDB.On("InsertOne", models.CollectionScholarships, mock.Anything).Return(nil)

	scholarship, err := s.CreateScholarship(context.Background(), params)

	assert.NoError(t, err)
	assert.Equal(t, int64(9), scholarship.ContractId)
}

func TestCreateScholarshipTokenPreflight(t *testing.T) {
	contractAddress := common.HexToAddress("0x1234567890123456789012345678901234567890")

	t.Run("Insufficient Balance Stops Before Any Transaction", func(t *testing.T) {
		mockClient := client.NewMockEthereumClient(t)
		mockContract := client.NewMockScholarshipManagerContract(t)
		mockToken := client.NewMockTokenContract(t)
		mockDB := app.NewMockDatabase(t)
		app.DB = mockDB
		s := newTestSyncer(t, mockClient, mockContract, mockToken)

		params := validParams()
		params.TokenFunded = true

		mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
		mockDB.On("Unlock", "lockId").Return(nil)

		// no Approve or CreateScholarship expectations: the balance read
		// alone must stop the sequence
		mockToken.On("BalanceOf", mock.Anything, s.address).Return(big.NewInt(1), nil)
		mockToken.On("Decimals", mock.Anything).Return(uint8(18), nil)
		mockToken.On("Symbol", mock.Anything).Return("SCHLR", nil)

		scholarship, err := s.CreateScholarship(context.Background(), params)

		assert.Nil(t, scholarship)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient token balance")
		assert.Contains(t, err.Error(), "SCHLR")
	})

	t.Run("Covering Allowance Skips The Approval", func(t *testing.T) {
		mockClient := client.NewMockEthereumClient(t)
		mockContract := client.NewMockScholarshipManagerContract(t)
		mockToken := client.NewMockTokenContract(t)
		mockDB := app.NewMockDatabase(t)
		app.DB = mockDB
		s := newTestSyncer(t, mockClient, mockContract, mockToken)

		params := validParams()
		params.TokenFunded = true
		escrow := EscrowValue(params.AmountWei, params.Slots)

		tx := newTestTx()
		logEntry := &types.Log{Index: 0}
		receipt := &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(42),
			Logs:        []*types.Log{logEntry},
		}

		mockDB.On("XLock", "scholarship-create").Return("lockId", nil)
		mockDB.On("Unlock", "lockId").Return(nil)

		// no Approve expectation: the existing allowance already covers
		mockContract.On("Address").Return(contractAddress)
		mockToken.On("BalanceOf", mock.Anything, s.address).Return(escrow, nil)
		mockToken.On("Allowance", mock.Anything, s.address, contractAddress).Return(escrow, nil)

		mockContract.On("CreateScholarship",
			mock.MatchedBy(func(opts *bind.TransactOpts) bool { return opts.Value == nil }),
			params.Title, params.AmountWei, big.NewInt(params.Slots), big.NewInt(params.Deadline),
		).Return(tx, nil)
		mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)

		event := &client.ScholarshipCreated{Id: big.NewInt(11), Amount: params.AmountWei, Raw: *logEntry}
		mockContract.On("ParseScholarshipCreated", *logEntry).Return(event, nil)

		mockDB.On("FindOne", models.CollectionScholarships, bson.M{"contract_id": int64(11)}, mock.Anything).
			Return(mongo.ErrNoDocuments)
		mockDB.On("InsertOne", models.CollectionScholarships, mock.Anything).Return(nil)

		scholarship, err := s.CreateScholarship(context.Background(), params)

		assert.NoError(t, err)
		assert.Equal(t, int64(11), scholarship.ContractId)
	})
}

func TestDeactivateScholarship(t *testing.T) {
	t.Run("Confirmed", func(t *testing.T) {
		mockClient := client.NewMockEthereumClient(t)
		mockContract := client.NewMockScholarshipManagerContract(t)
		s := newTestSyncer(t, mockClient, mockContract, nil)

		tx := newTestTx()
		receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(42)}

		mockContract.On("DeactivateScholarship", mock.Anything, big.NewInt(3)).Return(tx, nil)
		mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)

		txHash, err := s.DeactivateScholarship(context.Background(), 3)

		assert.NoError(t, err)
		assert.Equal(t, tx.Hash().Hex(), txHash)
	})

	t.Run("Reverted", func(t *testing.T) {
		mockClient := client.NewMockEthereumClient(t)
		mockContract := client.NewMockScholarshipManagerContract(t)
		s := newTestSyncer(t, mockClient, mockContract, nil)

		tx := newTestTx()
		receipt := &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(42)}

		mockContract.On("DeactivateScholarship", mock.Anything, big.NewInt(3)).Return(tx, nil)
		mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)
		mockClient.On("CallContract", mock.Anything, mock.Anything, receipt.BlockNumber).
			Return(nil, errors.New("execution reverted: not the sponsor"))

		txHash, err := s.DeactivateScholarship(context.Background(), 3)

		assert.Empty(t, txHash)
		var revert *RevertError
		assert.ErrorAs(t, err, &revert)
	})
}

func TestApproveApplication(t *testing.T) {
	mockClient := client.NewMockEthereumClient(t)
	mockContract := client.NewMockScholarshipManagerContract(t)
	s := newTestSyncer(t, mockClient, mockContract, nil)

	recipient := common.HexToAddress("0x3234567890123456789012345678901234567890")
	tx := newTestTx()
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(42)}

	mockContract.On("ApproveApplication", mock.Anything, big.NewInt(3), recipient).Return(tx, nil)
	mockClient.On("GetTransactionReceipt", tx.Hash().Hex()).Return(receipt, nil)

	txHash, err := s.ApproveApplication(context.Background(), 3, recipient)

	assert.NoError(t, err)
	assert.Equal(t, tx.Hash().Hex(), txHash)
}
