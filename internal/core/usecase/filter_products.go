package usecase

import (
	"context"
	"errors"
	"product-filter-service/internal/contextkeys"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"product-filter-service/internal/core/port/usecases_port"
)

// FilterProductsUseCase runs normalize -> build -> query -> assemble for every filter call.
type FilterProductsUseCase struct {
	normalizer *InputNormalizer
	builder    *QueryBuilder
	catalog    port.CatalogQueryPort
	assembler  *ResponseAssembler
	prices     usecases_port.ResolvePriceRangeUseCase
}

func NewFilterProductsUseCase(normalizer *InputNormalizer,
	builder *QueryBuilder,
	catalog port.CatalogQueryPort,
	assembler *ResponseAssembler,
	prices usecases_port.ResolvePriceRangeUseCase) *FilterProductsUseCase {
	return &FilterProductsUseCase{
		normalizer: normalizer,
		builder:    builder,
		catalog:    catalog,
		assembler:  assembler,
		prices:     prices,
	}
}

func (uc *FilterProductsUseCase) Handle(ctx context.Context, raw domain.RawFilterInput) (*domain.FilterResponse, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "FilterProducts",
	})
	ucLogger.Debug("Use case started", nil)

	req, err := uc.normalizer.Normalize(raw)
	if err != nil {
		ucLogger.Warn("Filter input rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	resp, err := uc.run(ctx, ucLogger, req)
	if err != nil {
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"count":        resp.Count,
		"total_pages":  resp.TotalPages,
		"current_page": resp.CurrentPage,
	})
	return resp, nil
}

// HandleReset ignores every filter dimension of raw except page and per_page.
func (uc *FilterProductsUseCase) HandleReset(ctx context.Context, raw domain.RawFilterInput) (*domain.FilterResponse, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ResetFilters",
	})
	ucLogger.Debug("Use case started", nil)

	req, err := uc.normalizer.Normalize(ResetInput(raw))
	if err != nil {
		ucLogger.Warn("Reset input rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	resp, err := uc.run(ctx, ucLogger, req.Cleared())
	if err != nil {
		return nil, err
	}

	if resp.Count == 0 {
		ucLogger.Info("Catalog has no products to show after reset", nil)
		return nil, domain.ErrNoProductsAvailable
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": resp.Count})
	return resp, nil
}

func (uc *FilterProductsUseCase) HandlePriceRangeQuery(ctx context.Context) (domain.PriceRange, error) {
	return uc.prices.Resolve(ctx)
}

func (uc *FilterProductsUseCase) run(ctx context.Context, logger port.LoggerPort, req domain.FilterRequest) (*domain.FilterResponse, error) {
	spec := uc.builder.Build(req)

	page, err := uc.catalog.Query(ctx, spec)
	if err != nil {
		logger.Error("Catalog query failed", err, nil)
		var unavailable *domain.CatalogUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &domain.CatalogUnavailableError{Op: "query", Err: err}
	}
	if page == nil {
		page = &domain.CatalogPage{}
	}

	resp, err := uc.assembler.Assemble(ctx, *page, req)
	if err != nil {
		logger.Error("Failed to assemble filter response", err, nil)
		return nil, err
	}
	return resp, nil
}
