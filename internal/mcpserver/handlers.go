package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/amount"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/idgen"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/indexer"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/journal"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/logging"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/metrics"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/pricing"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/tokens"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/traces"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/wallet"
)

// wrappedNativeSymbol is the registry entry routers use in place of the
// native asset. Swaps touching the native asset need it registered.
const wrappedNativeSymbol = "WETH"

// defaultHistoryLimit caps transaction_history when no limit is given.
const defaultHistoryLimit = 10

// Deps are the collaborators the handlers need. Wallet, Registry, and
// Journal must be set; Indexer and Pricing may be unconfigured clients,
// in which case the tools that need them degrade or report so.
type Deps struct {
	Wallet      wallet.Service
	Registry    *tokens.Registry
	Indexer     *indexer.Client
	Pricing     *pricing.Client
	Journal     journal.Store
	SlippageBps int64
	Logger      *slog.Logger
}

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	wallet      wallet.Service
	registry    *tokens.Registry
	indexer     *indexer.Client
	pricing     *pricing.Client
	journal     journal.Store
	slippageBps int64
	logger      *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		wallet:      d.Wallet,
		registry:    d.Registry,
		indexer:     d.Indexer,
		pricing:     d.Pricing,
		journal:     d.Journal,
		slippageBps: d.SlippageBps,
		logger:      logger,
	}
}

// errToolResult marks an IsError tool result for metrics; handlers
// report failures through the result, never through the Go error.
var errToolResult = errors.New("tool returned an error result")

// wrap is the middleware around every tool handler: it assigns a call
// ID, opens a span, and records metrics and a log line per invocation.
func (h *Handlers) wrap(tool string, fn server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := idgen.WithPrefix("call_")
		logger := h.logger.With("call_id", callID, "tool", tool)
		ctx = logging.WithCallID(ctx, callID)
		ctx = logging.WithLogger(ctx, logger)

		ctx, span := traces.StartSpan(ctx, "tool/"+tool, traces.Tool(tool))
		defer span.End()

		start := time.Now()
		result, err := fn(ctx, req)
		elapsed := time.Since(start)

		callErr := err
		if callErr == nil && result != nil && result.IsError {
			callErr = errToolResult
		}
		metrics.ObserveToolCall(tool, callErr, elapsed)

		switch {
		case err != nil:
			span.RecordError(err)
			logger.Error("tool call failed", "elapsed_ms", elapsed.Milliseconds(), "error", err)
		case callErr != nil:
			logger.Warn("tool call rejected", "elapsed_ms", elapsed.Milliseconds(), "reason", firstText(result))
		default:
			logger.Info("tool call completed", "elapsed_ms", elapsed.Milliseconds())
		}
		return result, err
	}
}

// firstText returns the first text block of a result, for logging.
func firstText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// HandleGetWalletAddress returns the wallet's own address.
func (h *Handlers) HandleGetWalletAddress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fmt.Sprintf("Wallet address: %s", h.wallet.Address())), nil
}

// HandleGetBalance returns the native asset balance of an address.
func (h *Handlers) HandleGetBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	addr, errResult := h.resolveAddress(req.GetString("address", ""))
	if errResult != nil {
		return errResult, nil
	}

	bal, err := h.wallet.NativeBalance(ctx, addr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to check balance: %v", err)), nil
	}

	native := h.registry.Native()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Address: %s\n", addr.Hex())
	fmt.Fprintf(&sb, "Balance: %s %s\n", amount.Format(bal, native.Decimals), native.Symbol)
	if fiat := h.fiatEstimate(ctx, bal, native); fiat != "" {
		fmt.Fprintf(&sb, "Value:   %s\n", fiat)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleGetTokenBalance returns one token balance, or every known
// token's balance when no symbol is given.
func (h *Handlers) HandleGetTokenBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	addr, errResult := h.resolveAddress(req.GetString("address", ""))
	if errResult != nil {
		return errResult, nil
	}

	if symbol := req.GetString("symbol", ""); symbol != "" {
		tok, ok := h.registry.Get(symbol)
		if !ok {
			return mcp.NewToolResultError(h.unknownTokenMessage(symbol)), nil
		}
		bal, err := h.balanceOf(ctx, tok, addr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to check %s balance: %v", tok.Symbol, err)), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Address: %s\n", addr.Hex())
		fmt.Fprintf(&sb, "Balance: %s %s\n", amount.Format(bal, tok.Decimals), tok.Symbol)
		if fiat := h.fiatEstimate(ctx, bal, tok); fiat != "" {
			fmt.Fprintf(&sb, "Value:   %s\n", fiat)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}

	all := h.registry.All()
	balances := make([]*big.Int, len(all))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, tok := range all {
		g.Go(func() error {
			bal, err := h.balanceOf(gctx, tok, addr)
			if err != nil {
				return fmt.Errorf("%s: %w", tok.Symbol, err)
			}
			balances[i] = bal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to check balances: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Balances for %s:\n", addr.Hex())
	for i, tok := range all {
		fmt.Fprintf(&sb, "  %-6s %s\n", tok.Symbol, amount.Format(balances[i], tok.Decimals))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleTransfer sends the native asset or an ERC20 token.
func (h *Handlers) HandleTransfer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipient := req.GetString("recipient", "")
	if recipient == "" {
		return mcp.NewToolResultError("recipient is required"), nil
	}
	if !common.IsHexAddress(recipient) {
		return mcp.NewToolResultError(fmt.Sprintf("%q is not a valid address", recipient)), nil
	}
	to := common.HexToAddress(recipient)

	tok, errResult := h.resolveToken(req.GetString("token", ""))
	if errResult != nil {
		return errResult, nil
	}
	units, errResult := parseAmountArg("amount", req.GetString("amount", ""), tok)
	if errResult != nil {
		return errResult, nil
	}
	if units.Sign() == 0 {
		return mcp.NewToolResultError("amount must be greater than zero"), nil
	}

	traces.SpanAttrs(ctx, traces.Token(tok.Symbol), traces.Amount(units.String()), traces.Recipient(to.Hex()))

	var (
		res *wallet.TransferResult
		err error
	)
	if tok.IsNative() {
		res, err = h.wallet.TransferNative(ctx, to, units)
	} else {
		res, err = h.wallet.TransferToken(ctx, common.HexToAddress(tok.Contract), to, units)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Transfer failed: %v", err)), nil
	}

	h.record(ctx, journal.KindTransfer, res.TxHash, tok, units, res.From, res.To, res.BlockNumber)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Sent %s %s to %s\n", amount.Format(units, tok.Decimals), tok.Symbol, res.To)
	fmt.Fprintf(&sb, "Transaction: %s\n", res.TxHash)
	sb.WriteString("Status: submitted, awaiting confirmation\n")
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleQuoteTransferFee estimates the gas cost of a transfer.
func (h *Handlers) HandleQuoteTransferFee(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipient := req.GetString("recipient", "")
	if recipient == "" {
		return mcp.NewToolResultError("recipient is required"), nil
	}
	if !common.IsHexAddress(recipient) {
		return mcp.NewToolResultError(fmt.Sprintf("%q is not a valid address", recipient)), nil
	}
	to := common.HexToAddress(recipient)

	tok, errResult := h.resolveToken(req.GetString("token", ""))
	if errResult != nil {
		return errResult, nil
	}
	units, errResult := parseAmountArg("amount", req.GetString("amount", ""), tok)
	if errResult != nil {
		return errResult, nil
	}

	var tokenAddr *common.Address
	if !tok.IsNative() {
		a := common.HexToAddress(tok.Contract)
		tokenAddr = &a
	}
	quote, err := h.wallet.EstimateTransferFee(ctx, tokenAddr, to, units)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Fee estimation failed: %v", err)), nil
	}

	native := h.registry.Native()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fee estimate for sending %s %s to %s:\n",
		amount.Format(units, tok.Decimals), tok.Symbol, to.Hex())
	fmt.Fprintf(&sb, "  Gas limit: %d\n", quote.GasLimit)
	fmt.Fprintf(&sb, "  Gas price: %s gwei\n", amount.Format(quote.GasPriceWei, 9))
	fmt.Fprintf(&sb, "  Total:     %s %s", amount.Format(quote.TotalWei, native.Decimals), native.Symbol)
	if fiat := h.fiatEstimate(ctx, quote.TotalWei, native); fiat != "" {
		fmt.Fprintf(&sb, " (%s)", fiat)
	}
	sb.WriteString("\n")
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleGetPrice returns the spot price of a token.
func (h *Handlers) HandleGetPrice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol := req.GetString("symbol", "")
	if symbol == "" {
		return mcp.NewToolResultError("symbol is required"), nil
	}
	vs := req.GetString("vs", "usd")

	quote, err := h.pricing.Spot(ctx, symbol, vs)
	switch {
	case errors.Is(err, pricing.ErrNotConfigured):
		return mcp.NewToolResultError("Pricing is not configured on this server, so price lookups are unavailable."), nil
	case errors.Is(err, pricing.ErrNoPrice):
		return mcp.NewToolResultError(fmt.Sprintf("No price available for %q", symbol)), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get price: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("1 %s = %s %s",
		strings.ToUpper(symbol), quote.Price, strings.ToUpper(quote.VS))), nil
}

// HandleSwapQuote prices a swap without executing it.
func (h *Handlers) HandleSwapQuote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, to, units, errResult := h.swapArgs(req)
	if errResult != nil {
		return errResult, nil
	}
	slippageBps, errResult := h.slippageArg(req)
	if errResult != nil {
		return errResult, nil
	}

	if !h.pricing.Configured() {
		return mcp.NewToolResultError("Pricing is not configured on this server, so swap quotes are unavailable."), nil
	}
	rate, err := h.pricing.Rate(ctx, from.Symbol, to.Symbol)
	switch {
	case errors.Is(err, pricing.ErrNoPrice):
		return mcp.NewToolResultError(fmt.Sprintf("No price available for the %s/%s pair", from.Symbol, to.Symbol)), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to quote swap: %v", err)), nil
	}

	expected := pricing.ConvertBase(units, from.Decimals, to.Decimals, rate)
	minOut := pricing.ApplySlippage(expected, slippageBps)
	if minOut.Sign() == 0 {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%s %s is too small to swap; the expected %s output rounds to zero",
			amount.Format(units, from.Decimals), from.Symbol, to.Symbol)), nil
	}

	minOutStr := amount.Format(minOut, to.Decimals)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Swap quote: %s %s -> %s\n", amount.Format(units, from.Decimals), from.Symbol, to.Symbol)
	fmt.Fprintf(&sb, "  Rate: 1 %s = %s %s\n", from.Symbol, ratString(rate), to.Symbol)
	fmt.Fprintf(&sb, "  Expected output:  %s %s\n", amount.Format(expected, to.Decimals), to.Symbol)
	fmt.Fprintf(&sb, "  Minimum received: %s %s (%s slippage)\n", minOutStr, to.Symbol, bpsString(slippageBps))
	fmt.Fprintf(&sb, "To execute, call swap with min_out=%s.\n", minOutStr)
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleSwap executes an exact-in swap through the router.
func (h *Handlers) HandleSwap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, to, units, errResult := h.swapArgs(req)
	if errResult != nil {
		return errResult, nil
	}

	params, errResult := h.swapPath(from, to)
	if errResult != nil {
		return errResult, nil
	}
	params.AmountIn = units

	if raw := req.GetString("min_out", ""); raw != "" {
		minOut, errResult := parseAmountArg("min_out", raw, to)
		if errResult != nil {
			return errResult, nil
		}
		if minOut.Sign() == 0 {
			return mcp.NewToolResultError("min_out must be greater than zero"), nil
		}
		params.MinOut = minOut
	} else {
		slippageBps, errResult := h.slippageArg(req)
		if errResult != nil {
			return errResult, nil
		}
		minOut, errResult := h.computeMinOut(ctx, from, to, units, slippageBps)
		if errResult != nil {
			return errResult, nil
		}
		params.MinOut = minOut
	}

	traces.SpanAttrs(ctx,
		traces.Token(from.Symbol),
		traces.Amount(units.String()),
	)

	res, err := h.wallet.SwapExactIn(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Swap failed: %v", err)), nil
	}

	h.record(ctx, journal.KindSwap, res.TxHash, from, units, h.wallet.Address(), h.wallet.Address(), res.BlockNumber)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Swapped %s %s for %s\n", amount.Format(units, from.Decimals), from.Symbol, to.Symbol)
	if res.AmountOut != nil {
		fmt.Fprintf(&sb, "Received: %s %s\n", amount.Format(res.AmountOut, to.Decimals), to.Symbol)
	} else {
		fmt.Fprintf(&sb, "Received: at least %s %s\n", amount.Format(params.MinOut, to.Decimals), to.Symbol)
	}
	if res.ApprovalTx != "" {
		fmt.Fprintf(&sb, "Approval: %s\n", res.ApprovalTx)
	}
	fmt.Fprintf(&sb, "Transaction: %s\n", res.TxHash)
	if res.BlockNumber > 0 {
		fmt.Fprintf(&sb, "Status: confirmed in block %d\n", res.BlockNumber)
	} else {
		sb.WriteString("Status: submitted, awaiting confirmation\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleTransactionHistory merges the local journal with indexer history.
func (h *Handlers) HandleTransactionHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultHistoryLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := h.journal.ListRecent(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read local history: %v", err)), nil
	}

	seen := make(map[string]bool, len(entries))
	rows := make([]historyRow, 0, len(entries))
	for _, e := range entries {
		seen[strings.ToLower(e.TxHash)] = true
		rows = append(rows, historyRow{when: e.CreatedAt, text: h.journalRow(e)})
	}

	var note string
	if h.indexer.Configured() {
		page, err := h.indexer.Transactions(ctx, h.wallet.Address(), limit, "")
		if err != nil {
			logging.L(ctx).Warn("indexer history unavailable", "error", err)
			note = fmt.Sprintf("\nNote: indexer history unavailable (%v); showing local activity only.\n", err)
		} else {
			for _, tx := range page.Transactions {
				if seen[strings.ToLower(tx.Hash)] {
					continue
				}
				rows = append(rows, historyRow{when: tx.Timestamp, text: h.indexerRow(tx)})
			}
		}
	}

	if len(rows) == 0 {
		return mcp.NewToolResultText("No transactions found."), nil
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].when.After(rows[j].when) })
	if len(rows) > limit {
		rows = rows[:limit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Recent transactions (%d, newest first):\n\n", len(rows))
	for i, row := range rows {
		fmt.Fprintf(&sb, "%d. %s", i+1, row.text)
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(note)
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleListTokens lists the registry contents.
func (h *Handlers) HandleListTokens(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all := h.registry.All()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Known tokens (%d):\n", len(all))
	for _, t := range all {
		loc := t.Contract
		if t.IsNative() {
			loc = "native asset"
		}
		fmt.Fprintf(&sb, "  %-6s %s, %d decimals, %s\n", t.Symbol, t.Name, t.Decimals, loc)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleGetNetworkStatus reports chain state and upstream health.
func (h *Handlers) HandleGetNetworkStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.wallet.NetworkStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get network status: %v", err)), nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Chain ID: %d\n", status.ChainID)
	fmt.Fprintf(&sb, "Latest block: %d\n", status.BlockNumber)
	fmt.Fprintf(&sb, "Gas price: %s gwei\n", amount.Format(status.GasPriceWei, 9))
	sb.WriteString("\nUpstreams:\n")
	sb.WriteString("  rpc:     ok\n")
	fmt.Fprintf(&sb, "  indexer: %s\n", upstreamState(pingCtx, h.indexer.Configured(), h.indexer.Ping))
	fmt.Fprintf(&sb, "  pricing: %s\n", upstreamState(pingCtx, h.pricing.Configured(), h.pricing.Ping))
	return mcp.NewToolResultText(sb.String()), nil
}

// --- Argument resolution helpers ---

// resolveAddress parses an optional address argument, defaulting to the
// wallet's own address.
func (h *Handlers) resolveAddress(arg string) (common.Address, *mcp.CallToolResult) {
	if arg == "" {
		return common.HexToAddress(h.wallet.Address()), nil
	}
	if !common.IsHexAddress(arg) {
		return common.Address{}, mcp.NewToolResultError(fmt.Sprintf("%q is not a valid address", arg))
	}
	return common.HexToAddress(arg), nil
}

// resolveToken maps an optional symbol argument to a registry entry,
// defaulting to the native asset.
func (h *Handlers) resolveToken(symbol string) (tokens.Token, *mcp.CallToolResult) {
	if symbol == "" {
		return h.registry.Native(), nil
	}
	tok, ok := h.registry.Get(symbol)
	if !ok {
		return tokens.Token{}, mcp.NewToolResultError(h.unknownTokenMessage(symbol))
	}
	return tok, nil
}

func (h *Handlers) unknownTokenMessage(symbol string) string {
	known := make([]string, 0, 8)
	for _, t := range h.registry.All() {
		known = append(known, t.Symbol)
	}
	return fmt.Sprintf("Unknown token %q. Known tokens: %s. Use list_tokens for details.",
		symbol, strings.Join(known, ", "))
}

// parseAmountArg converts a user-supplied decimal string to base units,
// turning each rejection into a message the model can relay verbatim.
func parseAmountArg(field, raw string, tok tokens.Token) (*big.Int, *mcp.CallToolResult) {
	units, err := amount.Parse(raw, tok.Decimals)
	if err == nil {
		return units, nil
	}
	code := amount.CodeOf(err)
	metrics.AmountParseFailures.WithLabelValues(string(code)).Inc()

	var msg string
	switch code {
	case amount.CodeEmptyString:
		msg = field + " is required"
	case amount.CodeNegativeAmount:
		msg = fmt.Sprintf("%s %q is negative; amounts must be positive", field, raw)
	case amount.CodeScientificNotation:
		msg = fmt.Sprintf("%s %q uses scientific notation; write it out as a plain decimal (e.g. '0.0001')", field, raw)
	case amount.CodeExcessivePrecision:
		msg = fmt.Sprintf("%s %q has more decimal places than %s supports (%d)", field, raw, tok.Symbol, tok.Decimals)
	default:
		msg = fmt.Sprintf("%s %q is not a valid decimal (e.g. '2.01' or '1,000.50')", field, raw)
	}
	return nil, mcp.NewToolResultError(msg)
}

// swapArgs validates the argument trio shared by swap and swap_quote.
func (h *Handlers) swapArgs(req mcp.CallToolRequest) (from, to tokens.Token, units *big.Int, errResult *mcp.CallToolResult) {
	fromSym := req.GetString("from_token", "")
	if fromSym == "" {
		return from, to, nil, mcp.NewToolResultError("from_token is required")
	}
	toSym := req.GetString("to_token", "")
	if toSym == "" {
		return from, to, nil, mcp.NewToolResultError("to_token is required")
	}

	var ok bool
	if from, ok = h.registry.Get(fromSym); !ok {
		return from, to, nil, mcp.NewToolResultError(h.unknownTokenMessage(fromSym))
	}
	if to, ok = h.registry.Get(toSym); !ok {
		return from, to, nil, mcp.NewToolResultError(h.unknownTokenMessage(toSym))
	}
	if from.Symbol == to.Symbol {
		return from, to, nil, mcp.NewToolResultError("from_token and to_token are the same; nothing to swap")
	}

	units, errResult = parseAmountArg("amount", req.GetString("amount", ""), from)
	if errResult != nil {
		return from, to, nil, errResult
	}
	if units.Sign() == 0 {
		return from, to, nil, mcp.NewToolResultError("amount must be greater than zero")
	}
	return from, to, units, nil
}

func (h *Handlers) slippageArg(req mcp.CallToolRequest) (int64, *mcp.CallToolResult) {
	bps := int64(req.GetInt("slippage_bps", int(h.slippageBps)))
	if bps < 0 || bps > 10000 {
		return 0, mcp.NewToolResultError(fmt.Sprintf("slippage_bps must be between 0 and 10000, got %d", bps))
	}
	return bps, nil
}

// swapPath builds the router hop list for a pair. Native legs ride the
// wrapped-native contract; token pairs route through it as the middle
// hop, where V2 routers have their deepest pools.
func (h *Handlers) swapPath(from, to tokens.Token) (wallet.SwapParams, *mcp.CallToolResult) {
	var params wallet.SwapParams

	weth, hasWrapped := h.registry.Get(wrappedNativeSymbol)
	fromLeg, toLeg := from, to
	if from.IsNative() {
		if !hasWrapped {
			return params, mcp.NewToolResultError("swapping the native asset requires a " + wrappedNativeSymbol + " entry in the token registry")
		}
		fromLeg = weth
		params.NativeIn = true
	}
	if to.IsNative() {
		if !hasWrapped {
			return params, mcp.NewToolResultError("swapping into the native asset requires a " + wrappedNativeSymbol + " entry in the token registry")
		}
		toLeg = weth
		params.NativeOut = true
	}

	fromAddr := common.HexToAddress(fromLeg.Contract)
	toAddr := common.HexToAddress(toLeg.Contract)
	if fromAddr == toAddr {
		return params, mcp.NewToolResultError(fmt.Sprintf(
			"%s and %s are the same underlying asset; wrapping is not a swap", from.Symbol, to.Symbol))
	}

	path := []common.Address{fromAddr}
	if hasWrapped {
		if wethAddr := common.HexToAddress(weth.Contract); fromAddr != wethAddr && toAddr != wethAddr {
			path = append(path, wethAddr)
		}
	}
	path = append(path, toAddr)
	params.Path = path
	return params, nil
}

// computeMinOut derives a slippage-protected minimum from spot prices
// when the caller did not pass min_out explicitly.
func (h *Handlers) computeMinOut(ctx context.Context, from, to tokens.Token, units *big.Int, slippageBps int64) (*big.Int, *mcp.CallToolResult) {
	if !h.pricing.Configured() {
		return nil, mcp.NewToolResultError(
			"Pricing is not configured, so a safe minimum output cannot be computed. Pass min_out explicitly.")
	}
	rate, err := h.pricing.Rate(ctx, from.Symbol, to.Symbol)
	switch {
	case errors.Is(err, pricing.ErrNoPrice):
		return nil, mcp.NewToolResultError(fmt.Sprintf(
			"No price available for the %s/%s pair; pass min_out explicitly.", from.Symbol, to.Symbol))
	case err != nil:
		return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to price the swap: %v", err))
	}

	expected := pricing.ConvertBase(units, from.Decimals, to.Decimals, rate)
	minOut := pricing.ApplySlippage(expected, slippageBps)
	if minOut.Sign() == 0 {
		return nil, mcp.NewToolResultError(fmt.Sprintf(
			"%s %s is too small to swap; the expected %s output rounds to zero",
			amount.Format(units, from.Decimals), from.Symbol, to.Symbol))
	}
	return minOut, nil
}

// --- Journal and formatting helpers ---

// record journals a submitted transaction so the history tool and the
// confirmation watcher can track it. Journal failures are logged, never
// surfaced; the transaction itself already happened. A nonzero
// minedBlock resolves the entry immediately.
func (h *Handlers) record(ctx context.Context, kind journal.Kind, txHash string, tok tokens.Token, units *big.Int, from, to string, minedBlock uint64) {
	symbol := tok.Symbol
	if tok.IsNative() {
		symbol = ""
	}
	e := journal.NewEntry(kind, txHash, symbol, units.String(), from, to)
	if err := h.journal.Record(ctx, e); err != nil {
		logging.L(ctx).Error("journal record failed", "tx_hash", txHash, "error", err)
		return
	}
	if minedBlock == 0 {
		return
	}
	if err := h.journal.Resolve(ctx, e.ID, journal.StatusConfirmed, minedBlock); err != nil {
		logging.L(ctx).Warn("journal resolve failed", "entry_id", e.ID, "error", err)
	}
}

type historyRow struct {
	when time.Time
	text string
}

func (h *Handlers) journalRow(e *journal.Entry) string {
	sym, dec := h.displayToken(e.Token)
	amt := e.Amount
	if units, ok := new(big.Int).SetString(e.Amount, 10); ok {
		amt = amount.Format(units, dec)
	}

	var head string
	switch e.Kind {
	case journal.KindSwap:
		head = fmt.Sprintf("Swapped %s %s", amt, sym)
	default:
		head = fmt.Sprintf("Sent %s %s to %s", amt, sym, e.To)
	}

	status := string(e.Status)
	if e.BlockNumber > 0 {
		status = fmt.Sprintf("%s (block %d)", e.Status, e.BlockNumber)
	}
	return fmt.Sprintf("%s\n   Status: %s | %s\n   Tx: %s\n",
		head, status, e.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"), e.TxHash)
}

func (h *Handlers) indexerRow(tx indexer.Transaction) string {
	sym, dec := h.displayToken(tx.Token)
	amt := tx.Amount
	if units, ok := new(big.Int).SetString(tx.Amount, 10); ok {
		amt = amount.Format(units, dec)
	}

	var head string
	switch {
	case strings.EqualFold(tx.To, h.wallet.Address()):
		head = fmt.Sprintf("Received %s %s from %s", amt, sym, tx.From)
	case strings.EqualFold(tx.From, h.wallet.Address()):
		head = fmt.Sprintf("Sent %s %s to %s", amt, sym, tx.To)
	default:
		head = fmt.Sprintf("Transfer %s %s from %s to %s", amt, sym, tx.From, tx.To)
	}

	status := tx.Status
	if tx.BlockNumber > 0 {
		status = fmt.Sprintf("%s (block %d)", tx.Status, tx.BlockNumber)
	}
	return fmt.Sprintf("%s\n   Status: %s | %s\n   Tx: %s\n",
		head, status, tx.Timestamp.UTC().Format("2006-01-02 15:04 UTC"), tx.Hash)
}

// displayToken maps a journal/indexer token symbol to display metadata.
// An empty symbol is the native asset; an unrecognized one renders its
// raw base units.
func (h *Handlers) displayToken(symbol string) (string, int) {
	if symbol == "" {
		native := h.registry.Native()
		return native.Symbol, native.Decimals
	}
	if tok, ok := h.registry.Get(symbol); ok {
		return tok.Symbol, tok.Decimals
	}
	return symbol, 0
}

func (h *Handlers) balanceOf(ctx context.Context, tok tokens.Token, addr common.Address) (*big.Int, error) {
	if tok.IsNative() {
		return h.wallet.NativeBalance(ctx, addr)
	}
	return h.wallet.TokenBalance(ctx, common.HexToAddress(tok.Contract), addr)
}

// fiatEstimate renders a base-unit amount as an approximate USD string,
// or "" when pricing is unavailable. Pricing failures never fail a tool.
func (h *Handlers) fiatEstimate(ctx context.Context, units *big.Int, tok tokens.Token) string {
	if !h.pricing.Configured() || units == nil || units.Sign() == 0 {
		return ""
	}
	quote, err := h.pricing.Spot(ctx, tok.Symbol, "usd")
	if err != nil {
		logging.L(ctx).Debug("fiat estimate unavailable", "token", tok.Symbol, "error", err)
		return ""
	}
	v, err := pricing.FiatValue(units, tok.Decimals, quote.Price)
	if err != nil {
		return ""
	}
	return "~$" + v + " USD"
}

func upstreamState(ctx context.Context, configured bool, ping func(context.Context) error) string {
	if !configured {
		return "not configured"
	}
	if err := ping(ctx); err != nil {
		return fmt.Sprintf("unreachable (%v)", err)
	}
	return "ok"
}

// ratString renders a rate with up to six decimal places, trimmed.
func ratString(r *big.Rat) string {
	s := strings.TrimRight(r.FloatString(6), "0")
	return strings.TrimSuffix(s, ".")
}

// bpsString renders basis points as a percentage, e.g. 50 -> "0.5%".
func bpsString(bps int64) string {
	return fmt.Sprintf("%g%%", float64(bps)/100)
}
