package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat/Anvil dev account #0. Never holds real funds.
const (
	testKey  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// fakeClient implements EthClient for tests. SendTransaction records the
// signed transaction and synthesizes a success receipt for it so that
// confirmation polling resolves on the first tick.
type fakeClient struct {
	nonce       uint64
	gasPrice    *big.Int
	estimate    uint64
	estimateErr error
	sendErr     error
	callFn      func(call ethereum.CallMsg) ([]byte, error)
	balance     *big.Int
	blockNumber uint64
	receiptLogs []*types.Log

	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		nonce:       7,
		gasPrice:    big.NewInt(2_000_000_000), // 2 gwei
		estimate:    60_000,
		balance:     big.NewInt(1_000_000_000_000_000_000),
		blockNumber: 1234,
		receipts:    make(map[common.Hash]*types.Receipt),
	}
}

func (f *fakeClient) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeClient) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeClient) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return f.estimate, nil
}

func (f *fakeClient) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	f.receipts[tx.Hash()] = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(int64(f.blockNumber)),
		GasUsed:     21_000,
		Logs:        f.receiptLogs,
	}
	return nil
}

func (f *fakeClient) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	r, ok := f.receipts[txHash]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

func (f *fakeClient) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.callFn != nil {
		return f.callFn(call)
	}
	return common.LeftPadBytes(big.NewInt(0).Bytes(), 32), nil
}

func (f *fakeClient) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeClient) BlockNumber(_ context.Context) (uint64, error) {
	return f.blockNumber, nil
}

func (f *fakeClient) NetworkID(_ context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (f *fakeClient) Close() {}

func newTestWallet(t *testing.T, client EthClient, router string) *Wallet {
	t.Helper()
	w, err := New(Config{
		RPCURL:     "https://rpc.invalid",
		PrivateKey: testKey,
		ChainID:    1,
		SwapRouter: router,
	}, WithClient(client))
	require.NoError(t, err)
	return w
}

func TestNew_DerivesAddress(t *testing.T) {
	w := newTestWallet(t, newFakeClient(), "")
	assert.Equal(t, common.HexToAddress(testAddr), common.HexToAddress(w.Address()))
	assert.Equal(t, int64(1), w.ChainID().Int64())
}

func TestValidateConfig(t *testing.T) {
	validKey := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				RPCURL:     "https://ethereum-rpc.publicnode.com",
				PrivateKey: validKey,
				ChainID:    1,
			},
			wantErr: false,
		},
		{
			name: "valid config with 0x prefix",
			cfg: Config{
				RPCURL:     "https://ethereum-rpc.publicnode.com",
				PrivateKey: "0x" + validKey,
				ChainID:    1,
			},
			wantErr: false,
		},
		{
			name: "valid config with router",
			cfg: Config{
				RPCURL:     "https://ethereum-rpc.publicnode.com",
				PrivateKey: validKey,
				ChainID:    1,
				SwapRouter: "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
			},
			wantErr: false,
		},
		{
			name: "missing RPC URL",
			cfg: Config{
				PrivateKey: validKey,
				ChainID:    1,
			},
			wantErr: true,
		},
		{
			name: "missing private key",
			cfg: Config{
				RPCURL:  "https://ethereum-rpc.publicnode.com",
				ChainID: 1,
			},
			wantErr: true,
		},
		{
			name: "invalid private key length",
			cfg: Config{
				RPCURL:     "https://ethereum-rpc.publicnode.com",
				PrivateKey: "tooshort",
				ChainID:    1,
			},
			wantErr: true,
		},
		{
			name: "missing chain ID",
			cfg: Config{
				RPCURL:     "https://ethereum-rpc.publicnode.com",
				PrivateKey: validKey,
			},
			wantErr: true,
		},
		{
			name: "bad router address",
			cfg: Config{
				RPCURL:     "https://ethereum-rpc.publicnode.com",
				PrivateKey: validKey,
				ChainID:    1,
				SwapRouter: "not-an-address",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransferError(t *testing.T) {
	tests := []struct {
		name     string
		err      *TransferError
		contains string
	}{
		{
			name: "with tx hash",
			err: &TransferError{
				Op:     "send",
				TxHash: "0xabc123",
				Err:    errors.New("network error"),
			},
			contains: "0xabc123",
		},
		{
			name: "without tx hash",
			err: &TransferError{
				Op:  "nonce",
				Err: errors.New("failed to get nonce"),
			},
			contains: "nonce failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.contains)
			assert.True(t, errors.Is(tt.err, tt.err.Err))
		})
	}
}

func TestNativeBalance(t *testing.T) {
	client := newFakeClient()
	client.balance = big.NewInt(42)
	w := newTestWallet(t, client, "")

	got, err := w.NativeBalance(context.Background(), common.HexToAddress(testAddr))
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(42).Cmp(got))
}

func TestTokenBalance(t *testing.T) {
	client := newFakeClient()
	client.callFn = func(_ ethereum.CallMsg) ([]byte, error) {
		return common.LeftPadBytes(big.NewInt(1_000_500_000).Bytes(), 32), nil
	}
	w := newTestWallet(t, client, "")

	token := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	got, err := w.TokenBalance(context.Background(), token, common.HexToAddress(testAddr))
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(1_000_500_000).Cmp(got))
}

func TestTransferNative_BuildsPlainValueTx(t *testing.T) {
	client := newFakeClient()
	w := newTestWallet(t, client, "")

	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	amount := big.NewInt(1_000_000_000_000_000) // 0.001 ETH

	result, err := w.TransferNative(context.Background(), to, amount)
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	tx := client.sent[0]
	assert.Equal(t, to, *tx.To())
	assert.Equal(t, 0, amount.Cmp(tx.Value()))
	assert.Equal(t, NativeTransferGas, tx.Gas())
	assert.Equal(t, uint64(7), tx.Nonce())

	assert.Equal(t, tx.Hash().Hex(), result.TxHash)
	assert.Equal(t, common.HexToAddress(testAddr), common.HexToAddress(result.From))
	assert.Equal(t, to.Hex(), result.To)
	assert.Equal(t, 0, amount.Cmp(result.Amount))
}

func TestTransferToken_BuildsContractCall(t *testing.T) {
	client := newFakeClient()
	w := newTestWallet(t, client, "")

	token := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	amount := big.NewInt(1_500_000)

	result, err := w.TransferToken(context.Background(), token, to, amount)
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	tx := client.sent[0]
	assert.Equal(t, token, *tx.To(), "transaction goes to the token contract")
	assert.Equal(t, 0, tx.Value().Sign(), "value transfer is zero for ERC20")
	assert.Equal(t, uint64(60_000), tx.Gas())
	assert.NotEmpty(t, tx.Data())

	assert.Equal(t, to.Hex(), result.To)
	assert.Equal(t, 0, amount.Cmp(result.Amount))
}

func TestTransferToken_SendError(t *testing.T) {
	client := newFakeClient()
	client.sendErr = errors.New("nonce too low")
	w := newTestWallet(t, client, "")

	token := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	_, err := w.TransferToken(context.Background(), token, to, big.NewInt(1))
	require.Error(t, err)

	var te *TransferError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "send", te.Op)
	assert.NotEmpty(t, te.TxHash)
}

func TestEstimateTransferFee_Native(t *testing.T) {
	client := newFakeClient()
	w := newTestWallet(t, client, "")

	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	quote, err := w.EstimateTransferFee(context.Background(), nil, to, big.NewInt(1))
	require.NoError(t, err)

	assert.Equal(t, NativeTransferGas, quote.GasLimit)
	assert.Equal(t, 0, client.gasPrice.Cmp(quote.GasPriceWei))

	want := new(big.Int).Mul(client.gasPrice, new(big.Int).SetUint64(NativeTransferGas))
	assert.Equal(t, 0, want.Cmp(quote.TotalWei))
}

func TestEstimateTransferFee_TokenFallsBackOnEstimateError(t *testing.T) {
	client := newFakeClient()
	client.estimateErr = errors.New("execution reverted")
	w := newTestWallet(t, client, "")

	token := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	quote, err := w.EstimateTransferFee(context.Background(), &token, to, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, DefaultGasLimit, quote.GasLimit)
}

func TestSwapExactIn_NoRouterConfigured(t *testing.T) {
	w := newTestWallet(t, newFakeClient(), "")

	_, err := w.SwapExactIn(context.Background(), SwapParams{
		Path:     []common.Address{{1}, {2}},
		AmountIn: big.NewInt(1),
		MinOut:   big.NewInt(1),
	})
	assert.ErrorIs(t, err, ErrNoSwapRouter)
}

func TestSwapExactIn_TokenIn_SkipsApprovalWhenAllowanceCovers(t *testing.T) {
	client := newFakeClient()
	// Allowance reads return a huge value; no approval needed.
	client.callFn = func(_ ethereum.CallMsg) ([]byte, error) {
		return common.LeftPadBytes(new(big.Int).Lsh(big.NewInt(1), 128).Bytes(), 32), nil
	}
	w := newTestWallet(t, client, "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")

	tokenIn := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	tokenOut := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")

	// The swap receipt carries a Transfer of the output token to the wallet.
	wallet := common.HexToAddress(testAddr)
	client.receiptLogs = []*types.Log{{
		Address: tokenOut,
		Topics: []common.Hash{
			transferTopic,
			common.BytesToHash(common.LeftPadBytes(common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D").Bytes(), 32)),
			common.BytesToHash(common.LeftPadBytes(wallet.Bytes(), 32)),
		},
		Data: common.LeftPadBytes(big.NewInt(997_000).Bytes(), 32),
	}}

	result, err := w.SwapExactIn(context.Background(), SwapParams{
		Path:     []common.Address{tokenIn, tokenOut},
		AmountIn: big.NewInt(1_000_000),
		MinOut:   big.NewInt(990_000),
	})
	require.NoError(t, err)

	require.Len(t, client.sent, 1, "no approval transaction expected")
	assert.Empty(t, result.ApprovalTx)
	assert.NotEmpty(t, result.TxHash)
	require.NotNil(t, result.AmountOut)
	assert.Equal(t, 0, big.NewInt(997_000).Cmp(result.AmountOut))
}

func TestSwapExactIn_TokenIn_ApprovesWhenAllowanceShort(t *testing.T) {
	client := newFakeClient()
	// Allowance reads return zero; an approval must be sent first.
	client.callFn = func(_ ethereum.CallMsg) ([]byte, error) {
		return common.LeftPadBytes(big.NewInt(0).Bytes(), 32), nil
	}
	w := newTestWallet(t, client, "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")

	tokenIn := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	tokenOut := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")

	result, err := w.SwapExactIn(context.Background(), SwapParams{
		Path:     []common.Address{tokenIn, tokenOut},
		AmountIn: big.NewInt(1_000_000),
		MinOut:   big.NewInt(990_000),
	})
	require.NoError(t, err)

	require.Len(t, client.sent, 2, "approval then swap")
	assert.Equal(t, tokenIn, *client.sent[0].To(), "approval goes to the input token")
	assert.NotEmpty(t, result.ApprovalTx)
	assert.NotEqual(t, result.ApprovalTx, result.TxHash)
}

func TestSwapExactIn_NativeIn_SendsValue(t *testing.T) {
	client := newFakeClient()
	w := newTestWallet(t, client, "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")

	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	tokenOut := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	amountIn := big.NewInt(1_000_000_000_000_000_000)

	result, err := w.SwapExactIn(context.Background(), SwapParams{
		Path:     []common.Address{weth, tokenOut},
		NativeIn: true,
		AmountIn: amountIn,
		MinOut:   big.NewInt(1),
	})
	require.NoError(t, err)

	require.Len(t, client.sent, 1, "native input needs no approval")
	assert.Equal(t, 0, amountIn.Cmp(client.sent[0].Value()), "swap carries the native value")
	assert.Empty(t, result.ApprovalTx)
}

func TestSwapExactIn_NativeOut_UsesUnwrapMethod(t *testing.T) {
	client := newFakeClient()
	client.callFn = func(_ ethereum.CallMsg) ([]byte, error) {
		return common.LeftPadBytes(new(big.Int).Lsh(big.NewInt(1), 128).Bytes(), 32), nil
	}
	w := newTestWallet(t, client, "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")

	tokenIn := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

	result, err := w.SwapExactIn(context.Background(), SwapParams{
		Path:      []common.Address{tokenIn, weth},
		NativeOut: true,
		AmountIn:  big.NewInt(3_000_000_000),
		MinOut:    big.NewInt(990_000_000_000_000_000),
	})
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	selector := w.routerA.Methods["swapExactTokensForETH"].ID
	assert.Equal(t, selector, client.sent[0].Data()[:4])
	assert.Equal(t, 0, client.sent[0].Value().Sign(), "token input carries no native value")
	assert.Nil(t, result.AmountOut, "native output has no token transfer log to read")
}

func TestSwapExactIn_NativeBothSidesRejected(t *testing.T) {
	client := newFakeClient()
	w := newTestWallet(t, client, "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")

	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	_, err := w.SwapExactIn(context.Background(), SwapParams{
		Path:      []common.Address{weth, weth},
		NativeIn:  true,
		NativeOut: true,
		AmountIn:  big.NewInt(1),
		MinOut:    big.NewInt(1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestWaitForConfirmation_FailedTx(t *testing.T) {
	client := newFakeClient()
	w := newTestWallet(t, client, "")

	hash := common.HexToHash("0xdead")
	client.receipts[hash] = &types.Receipt{
		Status:      types.ReceiptStatusFailed,
		BlockNumber: big.NewInt(10),
	}

	_, err := w.WaitForConfirmation(context.Background(), hash.Hex(), 10*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestNetworkStatus(t *testing.T) {
	client := newFakeClient()
	w := newTestWallet(t, client, "")

	status, err := w.NetworkStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.ChainID)
	assert.Equal(t, uint64(1234), status.BlockNumber)
	assert.Equal(t, 0, client.gasPrice.Cmp(status.GasPriceWei))
}

// Integration tests - only run with -short=false

func TestWallet_Integration_Balance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	// Requires real testnet credentials
}

func TestWallet_Integration_Transfer(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	// Requires real testnet credentials and funds
}
