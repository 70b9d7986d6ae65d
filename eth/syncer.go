package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const lockCreateScholarship = "scholarship-create"

var (
	// ErrStatusUnknown means the transaction was submitted but no receipt
	// arrived within the bounded wait. It is NOT a failure: the transaction
	// may still confirm later, so callers must not resubmit blindly.
	ErrStatusUnknown = errors.New("transaction status unknown: please check transaction status later")

	// ErrAlreadyMirrored means the on-chain side succeeded but a mirror row
	// for the same id already exists. Surfaced distinctly from creation
	// failure since the chain has already committed.
	ErrAlreadyMirrored = errors.New("mirror row already exists for on-chain id")

	ErrDeadlineInPast = errors.New("deadline must be in the future")
)

// RevertError reports an on-chain execution failure, carrying the revert
// reason whenever the node exposes one.
type RevertError struct {
	TxHash string
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transaction %s reverted: %s", e.TxHash, e.Reason)
	}
	return fmt.Sprintf("transaction %s reverted", e.TxHash)
}

// CreateParams carries the arguments of a scholarship creation call.
// AmountWei is the per-slot amount in base units.
type CreateParams struct {
	Title       string
	Description string
	Category    string
	AmountWei   *big.Int
	Slots       int64
	Deadline    int64
	TokenFunded bool
}

// Syncer orchestrates the on-chain write and mirror sync sequence: submit a
// state-changing call, await confirmation, decode the created id from the
// emitted logs (with a counter fallback), and persist exactly one mirror row
// keyed by that id.
type Syncer struct {
	client         client.EthereumClient
	contract       client.ScholarshipManagerContract
	token          client.TokenContract
	privateKey     *ecdsa.PrivateKey
	address        common.Address
	chainId        *big.Int
	rpcTimeout     time.Duration
	receiptTimeout time.Duration
	receiptPoll    time.Duration
}

func NewSyncer(ethClient client.EthereumClient, contract client.ScholarshipManagerContract, token client.TokenContract) (*Syncer, error) {
	privateKey, err := crypto.HexToECDSA(app.Config.Ethereum.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("loading private key: %w", err)
	}
	chainId, ok := new(big.Int).SetString(app.Config.Ethereum.ChainID, 10)
	if !ok {
		return nil, fmt.Errorf("invalid chain id: %q", app.Config.Ethereum.ChainID)
	}

	return &Syncer{
		client:         ethClient,
		contract:       contract,
		token:          token,
		privateKey:     privateKey,
		address:        crypto.PubkeyToAddress(privateKey.PublicKey),
		chainId:        chainId,
		rpcTimeout:     time.Duration(app.Config.Ethereum.RPCTimeoutMillis) * time.Millisecond,
		receiptTimeout: time.Duration(app.Config.Ethereum.ReceiptTimeoutMillis) * time.Millisecond,
		receiptPoll:    time.Duration(app.Config.Ethereum.ReceiptPollIntervalMillis) * time.Millisecond,
	}, nil
}

func (s *Syncer) Address() common.Address {
	return s.address
}

func validateCreateParams(params CreateParams, now time.Time) error {
	if strings.TrimSpace(params.Title) == "" {
		return errors.New("title is required")
	}
	if !models.IsValidCategory(params.Category) {
		return fmt.Errorf("invalid category: %q", params.Category)
	}
	if params.AmountWei == nil || params.AmountWei.Sign() <= 0 {
		return errors.New("amount must be positive")
	}
	if params.Slots <= 0 {
		return errors.New("slots must be positive")
	}
	if params.Deadline <= now.Unix() {
		return ErrDeadlineInPast
	}
	return nil
}

func (s *Syncer) transactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.privateKey, s.chainId)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	opts.Value = value
	return opts, nil
}

func (s *Syncer) callOpts(ctx context.Context) (*bind.CallOpts, context.CancelFunc) {
	cctx, cancel := context.WithTimeout(ctx, s.rpcTimeout)
	return &bind.CallOpts{Context: cctx}, cancel
}

// CreateScholarship runs the full creation sequence with a native-currency
// escrow value transfer. It holds the creation lock end to end so that the
// counter fallback in deriveScholarshipId never races another creation from
// this signer.
func (s *Syncer) CreateScholarship(ctx context.Context, params CreateParams) (*models.Scholarship, error) {
	if err := validateCreateParams(params, time.Now()); err != nil {
		return nil, err
	}

	lockId, err := app.DB.XLock(lockCreateScholarship)
	if err != nil {
		return nil, fmt.Errorf("acquiring creation lock: %w", err)
	}
	defer func() {
		if err := app.DB.Unlock(lockId); err != nil {
			log.Error("[SYNCER] Error releasing creation lock: ", err)
		}
	}()

	escrow := EscrowValue(params.AmountWei, params.Slots)

	var tx *types.Transaction
	if params.TokenFunded {
		if s.token == nil {
			return nil, errors.New("token funding requested but no token contract is configured")
		}
		// the contract pulls funds, so the token approval must confirm
		// strictly before the creation call
		if err := s.approveEscrow(ctx, escrow); err != nil {
			return nil, err
		}
		tx, err = s.submitCreate(ctx, params, nil)
	} else {
		tx, err = s.submitCreate(ctx, params, escrow)
	}
	if err != nil {
		return nil, fmt.Errorf("submitting creation transaction: %w", err)
	}
	log.Info("[SYNCER] Submitted creation transaction: ", tx.Hash().Hex())

	receipt, err := s.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, s.revertError(ctx, tx, receipt)
	}

	contractId, derivation, err := s.deriveScholarshipId(ctx, receipt)
	if err != nil {
		// the chain side has committed; the mirror monitor backfills this row
		log.Error("[SYNCER] Creation confirmed but id derivation failed: tx ", tx.Hash().Hex(), ": ", err)
		return nil, fmt.Errorf("creation confirmed in tx %s but id could not be derived: %w", tx.Hash().Hex(), err)
	}
	if derivation == models.IdDerivationCounter {
		log.Warn("[SYNCER] No creation event found in tx ", tx.Hash().Hex(), ", derived id ", contractId, " from counter")
	}

	now := time.Now()
	doc := &models.Scholarship{
		ContractId:        contractId,
		Title:             params.Title,
		Description:       params.Description,
		Category:          params.Category,
		SponsorAddress:    strings.ToLower(s.address.Hex()),
		AmountWei:         params.AmountWei.String(),
		Amount:            models.EtherValue(params.AmountWei.String()),
		Slots:             params.Slots,
		CurrentRecipients: 0,
		Deadline:          params.Deadline,
		Status:            models.ScholarshipStatusActive,
		IsActive:          true,
		ChainTx: models.ChainTx{
			TransactionHash: tx.Hash().Hex(),
			BlockNumber:     receipt.BlockNumber.Int64(),
			GasUsed:         receipt.GasUsed,
			IdDerivation:    derivation,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.mirrorScholarship(doc); err != nil {
		return nil, err
	}

	log.Info("[SYNCER] Mirrored scholarship: ", contractId)
	return doc, nil
}

func (s *Syncer) submitCreate(ctx context.Context, params CreateParams, value *big.Int) (*types.Transaction, error) {
	opts, err := s.transactOpts(ctx, value)
	if err != nil {
		return nil, err
	}
	return s.contract.CreateScholarship(opts, params.Title, params.AmountWei, big.NewInt(params.Slots), big.NewInt(params.Deadline))
}

func (s *Syncer) approveEscrow(ctx context.Context, escrow *big.Int) error {
	callOpts, cancel := s.callOpts(ctx)
	defer cancel()

	balance, err := s.token.BalanceOf(callOpts, s.address)
	if err != nil {
		return fmt.Errorf("reading token balance: %w", err)
	}
	if balance.Cmp(escrow) < 0 {
		return fmt.Errorf("insufficient token balance: escrow needs %s but signer holds %s",
			s.tokenAmount(ctx, escrow), s.tokenAmount(ctx, balance))
	}

	// an approve with a covering allowance already on the books would burn
	// gas for nothing
	allowance, err := s.token.Allowance(callOpts, s.address, s.contract.Address())
	if err != nil {
		return fmt.Errorf("reading token allowance: %w", err)
	}
	if allowance.Cmp(escrow) >= 0 {
		log.Debug("[SYNCER] Existing allowance covers the escrow, skipping approval")
		return nil
	}

	opts, err := s.transactOpts(ctx, nil)
	if err != nil {
		return err
	}
	tx, err := s.token.Approve(opts, s.contract.Address(), escrow)
	if err != nil {
		return fmt.Errorf("submitting approval transaction: %w", err)
	}
	log.Info("[SYNCER] Submitted approval transaction: ", tx.Hash().Hex())

	receipt, err := s.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		return err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return s.revertError(ctx, tx, receipt)
	}
	return nil
}

// tokenAmount renders a base-unit token amount with the token's own decimals
// and symbol for logs and error messages. Falls back to the raw base-unit
// value when the metadata reads fail.
func (s *Syncer) tokenAmount(ctx context.Context, amount *big.Int) string {
	callOpts, cancel := s.callOpts(ctx)
	defer cancel()

	decimals, err := s.token.Decimals(callOpts)
	if err != nil {
		return amount.String()
	}
	symbol, err := s.token.Symbol(callOpts)
	if err != nil {
		return amount.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(amount, divisor, new(big.Int))
	if frac.Sign() == 0 {
		return fmt.Sprintf("%s %s", whole, symbol)
	}
	digits := frac.String()
	fracStr := strings.TrimRight(strings.Repeat("0", int(decimals)-len(digits))+digits, "0")
	return fmt.Sprintf("%s.%s %s", whole, fracStr, symbol)
}

// deriveScholarshipId prefers the event bound to this transaction's own
// receipt; the counter read is a degraded-mode fallback that is only safe
// because creations are serialized under the creation lock.
func (s *Syncer) deriveScholarshipId(ctx context.Context, receipt *types.Receipt) (int64, string, error) {
	if event := FindScholarshipCreated(receipt.Logs, s.contract); event != nil {
		return event.Id.Int64(), models.IdDerivationEvent, nil
	}

	opts, cancel := s.callOpts(ctx)
	defer cancel()
	nextId, err := s.contract.NextScholarshipId(opts)
	if err != nil {
		return 0, "", fmt.Errorf("reading id counter: %w", err)
	}
	return new(big.Int).Sub(nextId, big.NewInt(1)).Int64(), models.IdDerivationCounter, nil
}

// mirrorScholarship writes exactly one mirror row per on-chain id. A
// pre-existing row is surfaced as ErrAlreadyMirrored; insert races resolve
// through the unique index on contract_id.
func (s *Syncer) mirrorScholarship(doc *models.Scholarship) error {
	var existing models.Scholarship
	err := app.DB.FindOne(models.CollectionScholarships, bson.M{"contract_id": doc.ContractId}, &existing)
	if err == nil {
		return fmt.Errorf("%w: %d", ErrAlreadyMirrored, doc.ContractId)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		log.Error("[SYNCER] Error checking for existing mirror row: ", err)
		return err
	}

	err = app.DB.InsertOne(models.CollectionScholarships, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %d", ErrAlreadyMirrored, doc.ContractId)
		}
		// the most dangerous class: the chain has committed but the mirror
		// write failed; the mirror monitor backfills this row on its next scan
		log.Error("[SYNCER] Mirror write failed after on-chain success for id ", doc.ContractId, ": ", err)
		return fmt.Errorf("mirror write failed after on-chain success for id %d: %w", doc.ContractId, err)
	}
	return nil
}

// DeactivateScholarship submits the on-chain deactivation and waits for it
// to confirm. Callers flip the mirror flag only after this returns nil.
func (s *Syncer) DeactivateScholarship(ctx context.Context, contractId int64) (string, error) {
	opts, err := s.transactOpts(ctx, nil)
	if err != nil {
		return "", err
	}
	tx, err := s.contract.DeactivateScholarship(opts, big.NewInt(contractId))
	if err != nil {
		return "", fmt.Errorf("submitting deactivation transaction: %w", err)
	}
	log.Info("[SYNCER] Submitted deactivation transaction: ", tx.Hash().Hex())

	receipt, err := s.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		return "", err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return "", s.revertError(ctx, tx, receipt)
	}
	return tx.Hash().Hex(), nil
}

// ApproveApplication submits the on-chain disbursement approval and waits
// for it to confirm.
func (s *Syncer) ApproveApplication(ctx context.Context, contractId int64, recipient common.Address) (string, error) {
	opts, err := s.transactOpts(ctx, nil)
	if err != nil {
		return "", err
	}
	tx, err := s.contract.ApproveApplication(opts, big.NewInt(contractId), recipient)
	if err != nil {
		return "", fmt.Errorf("submitting approval transaction: %w", err)
	}
	log.Info("[SYNCER] Submitted application approval transaction: ", tx.Hash().Hex())

	receipt, err := s.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		return "", err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return "", s.revertError(ctx, tx, receipt)
	}
	return tx.Hash().Hex(), nil
}

// waitForReceipt polls for inclusion with a bounded wait. Timing out yields
// ErrStatusUnknown, which is distinct from an on-chain revert: the
// transaction may still land later.
func (s *Syncer) waitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	timeout := time.After(s.receiptTimeout)
	ticker := time.NewTicker(s.receiptPoll)
	defer ticker.Stop()

	for {
		receipt, err := s.client.GetTransactionReceipt(txHash.Hex())
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			log.Debug("[SYNCER] Error fetching receipt for ", txHash.Hex(), ": ", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: transaction %s", ErrStatusUnknown, txHash.Hex())
		case <-timeout:
			return nil, fmt.Errorf("%w: transaction %s", ErrStatusUnknown, txHash.Hex())
		case <-ticker.C:
		}
	}
}

// revertError replays the failed call to recover the revert reason when the
// node exposes one.
func (s *Syncer) revertError(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) error {
	reason := ""
	cctx, cancel := context.WithTimeout(ctx, s.rpcTimeout)
	defer cancel()

	msg := ethereum.CallMsg{
		From:     s.address,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}
	if _, err := s.client.CallContract(cctx, msg, receipt.BlockNumber); err != nil {
		reason = err.Error()
	}
	return &RevertError{TxHash: tx.Hash().Hex(), Reason: reason}
}
