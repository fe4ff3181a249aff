// Package ratedelivery manages delivery layer of exchange rates.
package ratedelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/go-petr/pln-wallet/pkg/currencypkg"
	"github.com/go-petr/pln-wallet/pkg/errorspkg"
	"github.com/go-petr/pln-wallet/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by rate delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ratedelivery
type Service interface {
	Get(ctx context.Context, currency string) (domain.ExchangeRate, error)
	List(ctx context.Context) ([]domain.ExchangeRate, error)
}

// Handler facilitates rate delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns rate handler.
func NewHandler(rs Service) *Handler {
	return &Handler{service: rs}
}

type ratesData struct {
	Rates []domain.ExchangeRate `json:"rates"`
}

// List handles http request to list the current exchange rates for all supported currencies.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	rates, err := h.service.List(ctx)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRateUnavailable), errors.Is(err, domain.ErrProviderUnreachable):
			gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: ratesData{Rates: rates}})
}

type getRequest struct {
	Currency string `uri:"currency" binding:"required,currency"`
}

type rateData struct {
	Rate domain.ExchangeRate `json:"rate"`
}

// Get handles http request to get the exchange rate of a single currency.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	rate, err := h.service.Get(ctx, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedCurrency):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case errors.Is(err, domain.ErrRateUnavailable), errors.Is(err, domain.ErrProviderUnreachable):
			gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: rateData{Rate: rate}})
}

type currenciesData struct {
	Currencies []string `json:"currencies"`
}

// ListCurrencies handles http request to list the supported currency codes.
func (h *Handler) ListCurrencies(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, web.Response{Data: currenciesData{Currencies: currencypkg.List()}})
}
