package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all wallet tools registered.
func NewMCPServer(d Deps) *server.MCPServer {
	s := server.NewMCPServer("wdk-mcp-toolkit", "0.1.0")
	h := NewHandlers(d)

	s.AddTool(ToolGetWalletAddress, h.wrap(ToolGetWalletAddress.Name, h.HandleGetWalletAddress))
	s.AddTool(ToolGetBalance, h.wrap(ToolGetBalance.Name, h.HandleGetBalance))
	s.AddTool(ToolGetTokenBalance, h.wrap(ToolGetTokenBalance.Name, h.HandleGetTokenBalance))
	s.AddTool(ToolTransfer, h.wrap(ToolTransfer.Name, h.HandleTransfer))
	s.AddTool(ToolQuoteTransferFee, h.wrap(ToolQuoteTransferFee.Name, h.HandleQuoteTransferFee))
	s.AddTool(ToolGetPrice, h.wrap(ToolGetPrice.Name, h.HandleGetPrice))
	s.AddTool(ToolSwapQuote, h.wrap(ToolSwapQuote.Name, h.HandleSwapQuote))
	s.AddTool(ToolSwap, h.wrap(ToolSwap.Name, h.HandleSwap))
	s.AddTool(ToolTransactionHistory, h.wrap(ToolTransactionHistory.Name, h.HandleTransactionHistory))
	s.AddTool(ToolListTokens, h.wrap(ToolListTokens.Name, h.HandleListTokens))
	s.AddTool(ToolGetNetworkStatus, h.wrap(ToolGetNetworkStatus.Name, h.HandleGetNetworkStatus))

	return s
}
