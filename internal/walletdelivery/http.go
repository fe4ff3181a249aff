// Package walletdelivery manages delivery layer of wallet balances and valuation.
package walletdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/go-petr/pln-wallet/internal/middleware"
	"github.com/go-petr/pln-wallet/pkg/errorspkg"
	"github.com/go-petr/pln-wallet/pkg/tokenpkg"
	"github.com/go-petr/pln-wallet/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by wallet delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package walletdelivery
type Service interface {
	Add(ctx context.Context, owner, currency, amount string) (domain.Balance, error)
	Subtract(ctx context.Context, owner, currency, amount string) (domain.Balance, error)
}

// Valuer provides the PLN valuation interface needed by wallet delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package walletdelivery
type Valuer interface {
	Value(ctx context.Context, owner string) (domain.WalletValuation, error)
}

// Handler facilitates wallet delivery layer logic.
type Handler struct {
	service Service
	valuer  Valuer
}

// NewHandler returns wallet handler.
func NewHandler(ws Service, v Valuer) *Handler {
	return &Handler{
		service: ws,
		valuer:  v,
	}
}

type changeRequest struct {
	Currency string `json:"currency" binding:"required,currency"`
	Amount   string `json:"amount" binding:"required"`
}

type balanceData struct {
	Balance domain.Balance `json:"balance"`
}

// Get handles http request to value the owner's wallet in PLN.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	valuation, err := h.valuer.Value(ctx, authPayload.Username)
	if err != nil {
		var incompleteErr *domain.ValuationIncompleteError
		if errors.As(err, &incompleteErr) {
			l.Warn().Err(err).Send()
			gctx.JSON(http.StatusServiceUnavailable, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: valuation})
}

// Add handles http request to add funds to the owner's wallet.
func (h *Handler) Add(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req changeRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	balance, err := h.service.Add(ctx, authPayload.Username, req.Currency, req.Amount)
	if err != nil {
		switch err {
		case domain.ErrUnsupportedCurrency, domain.ErrInvalidAmount:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: balanceData{Balance: balance}})
}

// Subtract handles http request to withdraw funds from the owner's wallet.
func (h *Handler) Subtract(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req changeRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	balance, err := h.service.Subtract(ctx, authPayload.Username, req.Currency, req.Amount)
	if err != nil {
		switch err {
		case domain.ErrUnsupportedCurrency, domain.ErrInvalidAmount:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case domain.ErrInsufficientFunds:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: balanceData{Balance: balance}})
}
