// Package wallet handles all blockchain interactions: balances, transfers,
// fee estimation, and swap execution. Amounts cross this package boundary
// as base-unit big.Ints only; formatting belongs to the callers.
package wallet

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
)

// -----------------------------------------------------------------------------
// Errors - typed errors for programmatic handling
// -----------------------------------------------------------------------------

var (
	ErrInvalidPrivateKey   = errors.New("wallet: invalid private key")
	ErrInvalidAddress      = errors.New("wallet: invalid address")
	ErrInsufficientBalance = errors.New("wallet: insufficient balance")
	ErrTransactionFailed   = errors.New("wallet: transaction failed")
	ErrTimeout             = errors.New("wallet: operation timed out")
	ErrRPCConnection       = errors.New("wallet: RPC connection failed")
	ErrNoSwapRouter        = errors.New("wallet: no swap router configured")
)

// TransferError wraps transaction failures with context
type TransferError struct {
	Op     string // Operation that failed
	TxHash string // Transaction hash if available
	Err    error  // Underlying error
}

func (e *TransferError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("wallet: %s failed (tx: %s): %v", e.Op, e.TxHash, e.Err)
	}
	return fmt.Sprintf("wallet: %s failed: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// -----------------------------------------------------------------------------
// Interfaces - for testability and flexibility
// -----------------------------------------------------------------------------

// Service combines all wallet operations the tool layer depends on
type Service interface {
	Address() string
	ChainID() *big.Int
	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, token, addr common.Address) (*big.Int, error)
	TransferNative(ctx context.Context, to common.Address, amount *big.Int) (*TransferResult, error)
	TransferToken(ctx context.Context, token, to common.Address, amount *big.Int) (*TransferResult, error)
	EstimateTransferFee(ctx context.Context, token *common.Address, to common.Address, amount *big.Int) (*FeeQuote, error)
	SwapExactIn(ctx context.Context, params SwapParams) (*SwapResult, error)
	WaitForConfirmation(ctx context.Context, txHash string, timeout time.Duration) (*TransferResult, error)
	NetworkStatus(ctx context.Context) (*NetworkStatus, error)
	Close() error
}

// EthClient abstracts go-ethereum client for testing
type EthClient interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	NetworkID(ctx context.Context) (*big.Int, error)
	Close()
}

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

// Minimal ERC20 ABI: transfer, balanceOf, approve, allowance, Transfer event
const erc20ABI = `[
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Transfer","type":"event"}
]`

// Minimal V2-style router ABI: exact-in swaps for token and native input
const routerABI = `[
	{"inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"name":"swapExactTokensForTokens","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"name":"swapExactETHForTokens","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"name":"swapExactTokensForETH","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"nonpayable","type":"function"}
]`

const (
	// NativeTransferGas is the fixed gas cost of a plain value transfer
	NativeTransferGas = uint64(21000)

	// DefaultGasLimit for contract calls when estimation fails
	DefaultGasLimit = uint64(100000)

	// DefaultSwapGasLimit for router calls when estimation fails
	DefaultSwapGasLimit = uint64(300000)

	// DefaultConfirmationTimeout for waiting on transactions
	DefaultConfirmationTimeout = 60 * time.Second

	// ConfirmationPollInterval between receipt checks
	ConfirmationPollInterval = 2 * time.Second
)

// transferTopic is the keccak hash of the ERC20 Transfer event signature.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// -----------------------------------------------------------------------------
// Types
// -----------------------------------------------------------------------------

// Config for creating a new wallet
type Config struct {
	RPCURL     string
	PrivateKey string // Hex string, with or without 0x prefix
	ChainID    int64
	SwapRouter string // Optional router contract for swaps
}

// Option configures the wallet
type Option func(*Wallet)

// WithClient sets a custom Ethereum client (useful for testing)
func WithClient(client EthClient) Option {
	return func(w *Wallet) {
		w.client = client
	}
}

// TransferResult contains details of a submitted or mined transaction
type TransferResult struct {
	TxHash      string
	From        string
	To          string
	Amount      *big.Int // Base units
	BlockNumber uint64
	GasUsed     uint64
	Nonce       uint64
}

// FeeQuote is an estimate of what a transfer will cost
type FeeQuote struct {
	GasLimit    uint64
	GasPriceWei *big.Int
	TotalWei    *big.Int // GasLimit * GasPriceWei
}

// SwapParams describes an exact-in swap through the configured router
type SwapParams struct {
	Path      []common.Address // Hop addresses; wrapped-native stands in for the native asset
	NativeIn  bool             // True when spending the native asset
	NativeOut bool             // True when receiving the native asset (router unwraps)
	AmountIn  *big.Int         // Base units of the input asset
	MinOut    *big.Int         // Minimum acceptable output in base units
	Deadline  time.Time        // Router deadline; zero means 10 minutes from now
}

// SwapResult contains details of an executed swap
type SwapResult struct {
	TxHash        string
	ApprovalTx    string   // Set when an ERC20 approval was needed first
	AmountIn      *big.Int // Base units spent
	AmountOut     *big.Int // Base units received, recovered from the Transfer log (nil if not found)
	BlockNumber   uint64
	GasUsed       uint64
}

// NetworkStatus is a snapshot of the connected chain
type NetworkStatus struct {
	ChainID     int64
	BlockNumber uint64
	GasPriceWei *big.Int
}

// Wallet signs and sends transactions for a single key on one EVM chain
type Wallet struct {
	client     EthClient
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
	router     common.Address
	hasRouter  bool
	erc20      abi.ABI
	routerA    abi.ABI
}

// Compile-time interface check
var _ Service = (*Wallet)(nil)

// New creates a new Wallet instance
func New(cfg Config, opts ...Option) (*Wallet, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	publicKey := privateKey.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: failed to derive public key", ErrInvalidPrivateKey)
	}

	parsedERC20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	parsedRouter, err := abi.JSON(strings.NewReader(routerABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}

	w := &Wallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKeyECDSA),
		chainID:    big.NewInt(cfg.ChainID),
		erc20:      parsedERC20,
		routerA:    parsedRouter,
	}
	if cfg.SwapRouter != "" {
		w.router = common.HexToAddress(cfg.SwapRouter)
		w.hasRouter = true
	}

	// Apply options
	for _, opt := range opts {
		opt(w)
	}

	// Connect to RPC if no client provided
	if w.client == nil {
		client, err := ethclient.Dial(cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRPCConnection, err)
		}
		w.client = client
	}

	return w, nil
}

func validateConfig(cfg Config) error {
	if cfg.RPCURL == "" {
		return fmt.Errorf("%w: RPC URL required", ErrRPCConnection)
	}
	if cfg.PrivateKey == "" {
		return fmt.Errorf("%w: private key required", ErrInvalidPrivateKey)
	}
	// Allow both with and without 0x prefix
	key := strings.TrimPrefix(cfg.PrivateKey, "0x")
	if len(key) != 64 {
		return fmt.Errorf("%w: must be 64 hex characters", ErrInvalidPrivateKey)
	}
	if cfg.ChainID == 0 {
		return fmt.Errorf("chain ID required")
	}
	if cfg.SwapRouter != "" && !common.IsHexAddress(cfg.SwapRouter) {
		return fmt.Errorf("%w: bad swap router %q", ErrInvalidAddress, cfg.SwapRouter)
	}
	return nil
}

// Address returns the wallet's address
func (w *Wallet) Address() string {
	return w.address.Hex()
}

// ChainID returns the configured chain ID
func (w *Wallet) ChainID() *big.Int {
	return new(big.Int).Set(w.chainID)
}

// -----------------------------------------------------------------------------
// Balances
// -----------------------------------------------------------------------------

// NativeBalance returns the native asset balance of an address in wei
func (w *Wallet) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := w.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read native balance: %w", err)
	}
	return balance, nil
}

// TokenBalance returns the ERC20 balance of addr on the given token contract
func (w *Wallet) TokenBalance(ctx context.Context, token, addr common.Address) (*big.Int, error) {
	data, err := w.erc20.Pack("balanceOf", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf call: %w", err)
	}

	result, err := w.client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf: %w", err)
	}

	balance := new(big.Int)
	balance.SetBytes(result)
	return balance, nil
}

// allowance returns how much the spender may pull from the wallet on token
func (w *Wallet) allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	data, err := w.erc20.Pack("allowance", w.address, spender)
	if err != nil {
		return nil, fmt.Errorf("failed to pack allowance call: %w", err)
	}

	result, err := w.client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call allowance: %w", err)
	}

	out := new(big.Int)
	out.SetBytes(result)
	return out, nil
}

// -----------------------------------------------------------------------------
// Transfers
// -----------------------------------------------------------------------------

// TransferNative sends the native asset to a recipient. amount is in wei.
func (w *Wallet) TransferNative(ctx context.Context, to common.Address, amount *big.Int) (*TransferResult, error) {
	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return nil, &TransferError{Op: "nonce", Err: err}
	}

	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, &TransferError{Op: "gas_price", Err: err}
	}

	tx := types.NewTransaction(nonce, to, amount, NativeTransferGas, gasPrice, nil)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(w.chainID), w.privateKey)
	if err != nil {
		return nil, &TransferError{Op: "sign", Err: err}
	}

	if err := w.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, &TransferError{Op: "send", TxHash: signedTx.Hash().Hex(), Err: err}
	}

	return &TransferResult{
		TxHash: signedTx.Hash().Hex(),
		From:   w.address.Hex(),
		To:     to.Hex(),
		Amount: amount,
		Nonce:  nonce,
	}, nil
}

// TransferToken sends ERC20 tokens to a recipient. amount is in base units.
func (w *Wallet) TransferToken(ctx context.Context, token, to common.Address, amount *big.Int) (*TransferResult, error) {
	data, err := w.erc20.Pack("transfer", to, amount)
	if err != nil {
		return nil, &TransferError{Op: "pack", Err: err}
	}

	result, err := w.sendContractTx(ctx, token, big.NewInt(0), data, DefaultGasLimit)
	if err != nil {
		return nil, err
	}

	result.To = to.Hex()
	result.Amount = amount
	return result, nil
}

// sendContractTx runs the shared nonce/gas/sign/send sequence for a
// contract call. fallbackGas is used when estimation fails.
func (w *Wallet) sendContractTx(ctx context.Context, contract common.Address, value *big.Int, data []byte, fallbackGas uint64) (*TransferResult, error) {
	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return nil, &TransferError{Op: "nonce", Err: err}
	}

	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, &TransferError{Op: "gas_price", Err: err}
	}

	gasLimit, err := w.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.address,
		To:    &contract,
		Value: value,
		Data:  data,
	})
	if err != nil {
		// Use fallback if estimation fails
		gasLimit = fallbackGas
	}

	tx := types.NewTransaction(nonce, contract, value, gasLimit, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(w.chainID), w.privateKey)
	if err != nil {
		return nil, &TransferError{Op: "sign", Err: err}
	}

	if err := w.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, &TransferError{Op: "send", TxHash: signedTx.Hash().Hex(), Err: err}
	}

	return &TransferResult{
		TxHash: signedTx.Hash().Hex(),
		From:   w.address.Hex(),
		Nonce:  nonce,
	}, nil
}

// -----------------------------------------------------------------------------
// Fee estimation
// -----------------------------------------------------------------------------

// EstimateTransferFee quotes the gas cost of a transfer without sending it.
// token nil means a native transfer.
func (w *Wallet) EstimateTransferFee(ctx context.Context, token *common.Address, to common.Address, amount *big.Int) (*FeeQuote, error) {
	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, &TransferError{Op: "gas_price", Err: err}
	}

	var gasLimit uint64
	if token == nil {
		gasLimit = NativeTransferGas
	} else {
		data, err := w.erc20.Pack("transfer", to, amount)
		if err != nil {
			return nil, &TransferError{Op: "pack", Err: err}
		}
		gasLimit, err = w.client.EstimateGas(ctx, ethereum.CallMsg{
			From:  w.address,
			To:    token,
			Value: big.NewInt(0),
			Data:  data,
		})
		if err != nil {
			gasLimit = DefaultGasLimit
		}
	}

	total := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	return &FeeQuote{
		GasLimit:    gasLimit,
		GasPriceWei: gasPrice,
		TotalWei:    total,
	}, nil
}

// -----------------------------------------------------------------------------
// Swaps
// -----------------------------------------------------------------------------

// SwapExactIn executes an exact-in swap through the configured router.
// For ERC20 input it approves the router first when the current allowance
// is short, waiting for the approval to mine before swapping.
func (w *Wallet) SwapExactIn(ctx context.Context, params SwapParams) (*SwapResult, error) {
	if !w.hasRouter {
		return nil, ErrNoSwapRouter
	}
	if len(params.Path) < 2 {
		return nil, fmt.Errorf("%w: swap path needs at least two hops", ErrInvalidAddress)
	}
	if params.NativeIn && params.NativeOut {
		return nil, fmt.Errorf("%w: native on both sides of a swap", ErrInvalidAddress)
	}

	deadline := params.Deadline
	if deadline.IsZero() {
		deadline = time.Now().Add(10 * time.Minute)
	}
	deadlineArg := big.NewInt(deadline.Unix())

	result := &SwapResult{AmountIn: params.AmountIn}

	var (
		data  []byte
		value *big.Int
	)

	if params.NativeIn {
		value = params.AmountIn
		packed, err := w.routerA.Pack("swapExactETHForTokens",
			params.MinOut, params.Path, w.address, deadlineArg)
		if err != nil {
			return nil, &TransferError{Op: "pack_swap", Err: err}
		}
		data = packed
	} else {
		value = big.NewInt(0)
		tokenIn := params.Path[0]

		allowed, err := w.allowance(ctx, tokenIn, w.router)
		if err != nil {
			return nil, err
		}
		if allowed.Cmp(params.AmountIn) < 0 {
			approveTx, err := w.approve(ctx, tokenIn, w.router, params.AmountIn)
			if err != nil {
				return nil, err
			}
			result.ApprovalTx = approveTx
			if _, err := w.WaitForConfirmation(ctx, approveTx, DefaultConfirmationTimeout); err != nil {
				return nil, &TransferError{Op: "approve_confirm", TxHash: approveTx, Err: err}
			}
		}

		method := "swapExactTokensForTokens"
		if params.NativeOut {
			method = "swapExactTokensForETH"
		}
		packed, err := w.routerA.Pack(method,
			params.AmountIn, params.MinOut, params.Path, w.address, deadlineArg)
		if err != nil {
			return nil, &TransferError{Op: "pack_swap", Err: err}
		}
		data = packed
	}

	sent, err := w.sendContractTx(ctx, w.router, value, data, DefaultSwapGasLimit)
	if err != nil {
		return nil, err
	}
	result.TxHash = sent.TxHash

	mined, err := w.WaitForConfirmation(ctx, sent.TxHash, DefaultConfirmationTimeout)
	if err != nil {
		return nil, err
	}
	result.BlockNumber = mined.BlockNumber
	result.GasUsed = mined.GasUsed

	// Recover the delivered amount from the output token's Transfer log.
	// Native output arrives unwrapped with no such log, so AmountOut
	// stays nil and callers fall back to MinOut.
	if !params.NativeOut {
		tokenOut := params.Path[len(params.Path)-1]
		receipt, err := w.client.TransactionReceipt(ctx, common.HexToHash(sent.TxHash))
		if err == nil {
			result.AmountOut = w.transferredToSelf(receipt, tokenOut)
		}
	}

	return result, nil
}

// approve sends an ERC20 approval and returns its tx hash
func (w *Wallet) approve(ctx context.Context, token, spender common.Address, amount *big.Int) (string, error) {
	data, err := w.erc20.Pack("approve", spender, amount)
	if err != nil {
		return "", &TransferError{Op: "pack_approve", Err: err}
	}
	sent, err := w.sendContractTx(ctx, token, big.NewInt(0), data, DefaultGasLimit)
	if err != nil {
		return "", err
	}
	return sent.TxHash, nil
}

// transferredToSelf scans receipt logs for a token Transfer into the wallet
// and returns its amount, or nil when no matching log exists.
func (w *Wallet) transferredToSelf(receipt *types.Receipt, token common.Address) *big.Int {
	for _, log := range receipt.Logs {
		if log.Address != token {
			continue
		}
		if len(log.Topics) < 3 || log.Topics[0] != transferTopic {
			continue
		}
		to := common.HexToAddress(log.Topics[2].Hex())
		if to == w.address {
			return new(big.Int).SetBytes(log.Data)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Confirmation and status
// -----------------------------------------------------------------------------

// WaitForConfirmation waits for a transaction to be mined
func (w *Wallet) WaitForConfirmation(ctx context.Context, txHash string, timeout time.Duration) (*TransferResult, error) {
	hash := common.HexToHash(txHash)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(ConfirmationPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: waiting for tx %s", ErrTimeout, txHash)
			}
			return nil, ctx.Err()

		case <-ticker.C:
			receipt, err := w.client.TransactionReceipt(ctx, hash)
			if err != nil {
				// Transaction not yet mined, continue waiting
				continue
			}

			if receipt.Status == 0 {
				return nil, &TransferError{
					Op:     "confirm",
					TxHash: txHash,
					Err:    ErrTransactionFailed,
				}
			}

			return &TransferResult{
				TxHash:      txHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
			}, nil
		}
	}
}

// Receipt fetches the receipt for a transaction, or an error when the
// transaction is not yet mined. Used by the confirmation watcher.
func (w *Wallet) Receipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	return w.client.TransactionReceipt(ctx, common.HexToHash(txHash))
}

// NetworkStatus returns a snapshot of the connected chain
func (w *Wallet) NetworkStatus(ctx context.Context) (*NetworkStatus, error) {
	block, err := w.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRPCConnection, err)
	}
	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRPCConnection, err)
	}
	return &NetworkStatus{
		ChainID:     w.chainID.Int64(),
		BlockNumber: block,
		GasPriceWei: gasPrice,
	}, nil
}

// Ping verifies the RPC connection is alive. Used by health checks.
func (w *Wallet) Ping(ctx context.Context) error {
	_, err := w.client.BlockNumber(ctx)
	return err
}

// Close closes the client connection
func (w *Wallet) Close() error {
	if w.client != nil {
		w.client.Close()
	}
	return nil
}
