package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ucp-merchant-demo/internal/dto"
	"ucp-merchant-demo/internal/model"
	"ucp-merchant-demo/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPHandler exposes the merchant operations as MCP tools over streamable HTTP.
type MCPHandler struct {
	merchantService service.MerchantService
	mcpServer       *server.MCPServer
	httpServer      *server.StreamableHTTPServer
}

func NewMCPHandler(merchantService service.MerchantService) *MCPHandler {
	profile := merchantService.Profile()
	h := &MCPHandler{
		merchantService: merchantService,
		mcpServer: server.NewMCPServer(profile.Name, profile.UCP.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	lineItems := mcp.Items(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"item":     map[string]any{"type": "object", "properties": map[string]any{"id": map[string]any{"type": "string"}}},
			"quantity": map[string]any{"type": "integer", "minimum": 1},
		},
	})

	h.mcpServer.AddTool(mcp.NewTool("search_products",
		mcp.WithDescription("Search the product catalog by title."),
		mcp.WithString("query", mcp.Description("Case-insensitive title fragment. Empty lists everything.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.searchProducts)

	h.mcpServer.AddTool(mcp.NewTool("create_checkout",
		mcp.WithDescription("Create a checkout session from line items and optional buyer details."),
		mcp.WithArray("line_items", mcp.Required(), lineItems),
		mcp.WithObject("buyer", mcp.Description("email, first_name and last_name")),
	), h.createCheckout)

	h.mcpServer.AddTool(mcp.NewTool("update_checkout",
		mcp.WithDescription("Update buyer details, line items or the shipping selection of a checkout session."),
		mcp.WithString("id", mcp.Required()),
		mcp.WithArray("line_items", lineItems),
		mcp.WithObject("buyer"),
		mcp.WithObject("fulfillment", mcp.Description("selected_option_id picks a shipping option")),
	), h.updateCheckout)

	h.mcpServer.AddTool(mcp.NewTool("complete_checkout",
		mcp.WithDescription("Complete a checkout session with a payment token and create the order."),
		mcp.WithString("id", mcp.Required()),
		mcp.WithObject("payment_data", mcp.Required(), mcp.Description("token and type of the payment credential")),
	), h.completeCheckout)

	h.httpServer = server.NewStreamableHTTPServer(h.mcpServer,
		server.WithStateLess(true),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return service.WithIdempotencyKey(ctx, r.Header.Get(headerIdempotencyKey))
		}),
	)
	return h
}

// HTTPHandler serves the MCP streamable HTTP transport.
func (h *MCPHandler) HTTPHandler() http.Handler {
	return h.httpServer
}

// toolError reports a failed operation inside the tool result, tagged with
// the same code the REST surface would use.
func toolError(err error) *mcp.CallToolResult {
	_, code := errorStatus(err)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", code, err.Error()))
}

func (h *MCPHandler) searchProducts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")

	result, err := h.merchantService.Discover(ctx, query)
	if err != nil {
		return toolError(err), nil
	}
	if len(result.Items) == 0 {
		return mcp.NewToolResultStructured(result, fmt.Sprintf("No products match %q.", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d product(s):", len(result.Items))
	for _, p := range result.Items {
		fmt.Fprintf(&b, "\n- %s: %s (%s %s)", p.ID, p.Title, p.DisplayPrice, p.Currency)
	}
	return mcp.NewToolResultStructured(result, b.String()), nil
}

func (h *MCPHandler) createCheckout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in dto.CreateCheckoutRequest
	if err := req.BindArguments(&in); err != nil {
		return mcp.NewToolResultErrorFromErr("bad_request: invalid arguments", err), nil
	}

	result, err := h.merchantService.CreateCheckout(ctx, in)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultStructured(result, describeCheckout(result)), nil
}

func (h *MCPHandler) updateCheckout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in dto.UpdateCheckoutRequest
	if err := req.BindArguments(&in); err != nil {
		return mcp.NewToolResultErrorFromErr("bad_request: invalid arguments", err), nil
	}
	if in.ID == "" {
		return mcp.NewToolResultError("bad_request: id is required"), nil
	}

	result, err := h.merchantService.UpdateCheckout(ctx, in.ID, in)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultStructured(result, describeCheckout(result)), nil
}

func (h *MCPHandler) completeCheckout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		ID string `json:"id"`
		dto.CompleteCheckoutRequest
	}
	if err := req.BindArguments(&in); err != nil {
		return mcp.NewToolResultErrorFromErr("bad_request: invalid arguments", err), nil
	}
	if in.ID == "" {
		return mcp.NewToolResultError("bad_request: id is required"), nil
	}

	order, err := h.merchantService.CompleteCheckout(ctx, in.ID, in.Payment())
	if err != nil {
		return toolError(err), nil
	}

	total, _ := totalOf(order.Totals)
	text := fmt.Sprintf("Order %s placed for checkout %s. Total %s. Track it at %s",
		order.ID, order.CheckoutID, model.FormatAmount(total), order.PermalinkURL)
	return mcp.NewToolResultStructured(order, text), nil
}

func describeCheckout(c *model.Checkout) string {
	total, _ := c.Total(model.TotalTypeTotal)

	var b strings.Builder
	fmt.Fprintf(&b, "Checkout %s is %s. %d line item(s), total %s %s.",
		c.ID, c.Status, len(c.LineItems), model.FormatAmount(total), c.Currency)
	if opt, ok := c.SelectedShippingOption(); ok {
		fmt.Fprintf(&b, " Shipping: %s (%s).", opt.Title, model.FormatAmount(opt.Amount))
	}
	for _, m := range c.Messages {
		fmt.Fprintf(&b, "\n! %s at %s: %s", m.Code, m.Path, m.Message)
	}
	return b.String()
}

func totalOf(totals []model.Total) (int64, bool) {
	for _, t := range totals {
		if t.Type == model.TotalTypeTotal {
			return t.Amount, true
		}
	}
	return 0, false
}
