package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the wallet MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolGetWalletAddress = mcp.NewTool("get_wallet_address",
	mcp.WithDescription(
		"Get this wallet's own address. "+
			"Share it to receive funds, or use it to look up balances and history."),
)

var ToolGetBalance = mcp.NewTool("get_balance",
	mcp.WithDescription(
		"Check the native asset balance (e.g. ETH) of this wallet, "+
			"or of any other address if one is given. "+
			"Returns a human-readable decimal amount."),
	mcp.WithString("address",
		mcp.Description("Address to check (e.g. '0x1234...'). Defaults to this wallet's own address.")),
)

var ToolGetTokenBalance = mcp.NewTool("get_token_balance",
	mcp.WithDescription(
		"Check an ERC20 token balance of this wallet. "+
			"Give a token symbol (e.g. 'USDT') for one balance, or omit it "+
			"to list the balance of every known token at once."),
	mcp.WithString("symbol",
		mcp.Description("Token symbol (e.g. 'USDT', 'DAI'). Omit to check all known tokens.")),
	mcp.WithString("address",
		mcp.Description("Address to check. Defaults to this wallet's own address.")),
)

var ToolTransfer = mcp.NewTool("transfer",
	mcp.WithDescription(
		"Send funds from this wallet to another address. "+
			"Sends the native asset by default, or an ERC20 token when a symbol is given. "+
			"The amount is a decimal string exactly as a human would write it "+
			"(e.g. '2.01' or '1,000.50'); it is converted to base units without rounding. "+
			"This moves real funds. Call quote_transfer_fee first if the user wants to know the cost."),
	mcp.WithString("recipient",
		mcp.Required(),
		mcp.Description("Recipient address (e.g. '0x1234...')")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Amount to send as a decimal string (e.g. '2.01'). No scientific notation.")),
	mcp.WithString("token",
		mcp.Description("Token symbol (e.g. 'USDT'). Omit to send the native asset.")),
)

var ToolQuoteTransferFee = mcp.NewTool("quote_transfer_fee",
	mcp.WithDescription(
		"Estimate the network fee for a transfer before sending it. "+
			"Returns the gas cost in the native asset and, when pricing is "+
			"available, an approximate fiat value. Does not move funds."),
	mcp.WithString("recipient",
		mcp.Required(),
		mcp.Description("Recipient address the transfer would go to")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Amount that would be sent, as a decimal string (e.g. '2.01')")),
	mcp.WithString("token",
		mcp.Description("Token symbol (e.g. 'USDT'). Omit for a native-asset transfer.")),
)

var ToolGetPrice = mcp.NewTool("get_price",
	mcp.WithDescription(
		"Get the current spot price of a token in a fiat currency. "+
			"Prices are cached briefly, so repeated calls are cheap."),
	mcp.WithString("symbol",
		mcp.Required(),
		mcp.Description("Token symbol (e.g. 'ETH', 'USDT')")),
	mcp.WithString("vs",
		mcp.Description("Fiat currency code (e.g. 'usd', 'eur'). Defaults to 'usd'.")),
)

var ToolSwapQuote = mcp.NewTool("swap_quote",
	mcp.WithDescription(
		"Quote a token swap without executing it: how much of the target "+
			"token the given amount would buy at current prices, and the "+
			"minimum received after slippage protection. "+
			"Use the quote to decide whether to call swap."),
	mcp.WithString("from_token",
		mcp.Required(),
		mcp.Description("Symbol of the token to sell (e.g. 'ETH')")),
	mcp.WithString("to_token",
		mcp.Required(),
		mcp.Description("Symbol of the token to buy (e.g. 'USDT')")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Amount to sell as a decimal string (e.g. '0.5')")),
	mcp.WithNumber("slippage_bps",
		mcp.Description("Slippage tolerance in basis points (e.g. 50 = 0.5%). Defaults to the configured tolerance.")),
)

var ToolSwap = mcp.NewTool("swap",
	mcp.WithDescription(
		"Execute a token swap through the configured router. "+
			"Sells the given amount of from_token for to_token, enforcing the "+
			"slippage-protected minimum from swap_quote. "+
			"This moves real funds. Always call swap_quote first and confirm with the user."),
	mcp.WithString("from_token",
		mcp.Required(),
		mcp.Description("Symbol of the token to sell (e.g. 'ETH')")),
	mcp.WithString("to_token",
		mcp.Required(),
		mcp.Description("Symbol of the token to buy (e.g. 'USDT')")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Amount to sell as a decimal string (e.g. '0.5')")),
	mcp.WithString("min_out",
		mcp.Description("Minimum acceptable amount of to_token, from swap_quote. Computed from current prices if omitted.")),
	mcp.WithNumber("slippage_bps",
		mcp.Description("Slippage tolerance in basis points, used when min_out is omitted")),
)

var ToolTransactionHistory = mcp.NewTool("transaction_history",
	mcp.WithDescription(
		"List recent transactions for this wallet: transfers and swaps "+
			"made through these tools plus anything the indexer knows about "+
			"the address, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of transactions to return (default 10)")),
)

var ToolListTokens = mcp.NewTool("list_tokens",
	mcp.WithDescription(
		"List the tokens this wallet knows how to handle, with their "+
			"symbols, decimals, and contract addresses. "+
			"Any of these symbols can be used with the balance, transfer, and swap tools."),
)

var ToolGetNetworkStatus = mcp.NewTool("get_network_status",
	mcp.WithDescription(
		"Get the state of the connected chain and of this server's "+
			"upstream services: chain ID, latest block, current gas price, "+
			"and the health of the RPC, indexer, and pricing connections."),
)
