package service

import (
	"context"
	"fmt"

	"ucp-merchant-demo/internal/dto"
	"ucp-merchant-demo/internal/model"
)

const (
	CapabilityCheckout = "dev.ucp.shopping.checkout"
	CapabilityOrder    = "dev.ucp.shopping.order"
)

// UCPContext returns the protocol context advertised for version.
func UCPContext(version string) model.UCPContext {
	return model.UCPContext{
		Version: version,
		Capabilities: []model.UCPCapability{
			{Name: CapabilityCheckout, Version: version},
			{Name: CapabilityOrder, Version: version},
		},
	}
}

// OrderUCPContext is the protocol context stamped on orders: only the order
// capability applies once a checkout is completed.
func OrderUCPContext(ucp model.UCPContext) model.UCPContext {
	capability := model.UCPCapability{Name: CapabilityOrder, Version: ucp.Version}
	for _, c := range ucp.Capabilities {
		if c.Name == CapabilityOrder {
			capability = c
		}
	}
	return model.UCPContext{
		Version:      ucp.Version,
		Capabilities: []model.UCPCapability{capability},
	}
}

func (s *merchantServiceImpl) Discover(ctx context.Context, query string) (*dto.DiscoveryResult, error) {
	products, err := s.products.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	result := &dto.DiscoveryResult{Items: make([]dto.ProductSummary, 0, len(products))}
	for _, p := range products {
		result.Items = append(result.Items, toProductSummary(p))
	}
	return result, nil
}

func (s *merchantServiceImpl) GetProduct(ctx context.Context, id string) (*dto.ProductSummary, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := toProductSummary(product)
	return &summary, nil
}

func toProductSummary(p *model.Product) dto.ProductSummary {
	return dto.ProductSummary{
		ID:           p.ID,
		Title:        p.Title,
		Price:        p.Price,
		DisplayPrice: model.FormatAmount(p.Price),
		Currency:     p.Currency,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		WeightGrams:  p.WeightGrams,
	}
}

func (s *merchantServiceImpl) Profile() dto.Profile {
	return dto.Profile{
		UCP:  s.opts.UCP,
		Name: s.opts.Name,
		Services: map[string]dto.ProfileService{
			"dev.ucp.shopping": {
				Version:   s.opts.UCP.Version,
				Transport: "rest",
				Endpoint:  s.opts.BaseURL,
			},
			"dev.ucp.shopping.mcp": {
				Version:   s.opts.UCP.Version,
				Transport: "mcp",
				Endpoint:  s.opts.BaseURL + "/mcp",
			},
		},
		Links: append([]model.Link{}, s.opts.Links...),
	}
}
