package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardpulse/cardpulse/internal/services"
)

type CurrencyHandler struct {
	currencyService *services.CurrencyService
}

func NewCurrencyHandler(currency *services.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currency}
}

// Options returns the supported display currencies.
func (h *CurrencyHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": services.CurrencyOptions()})
}

// Convert converts an amount between two currency codes.
func (h *CurrencyHandler) Convert(c *gin.Context) {
	amountStr := c.Query("amount")
	from := c.Query("from")
	to := c.Query("to")

	if amountStr == "" || from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameters 'amount', 'from', and 'to' are required"})
		return
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	conversion, err := h.currencyService.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		if errors.Is(err, services.ErrUnknownCurrency) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, conversion)
}

// Format renders an amount with the currency's symbol and decimal rules.
func (h *CurrencyHandler) Format(c *gin.Context) {
	amountStr := c.Query("amount")
	currency := c.Query("currency")

	if amountStr == "" || currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameters 'amount' and 'currency' are required"})
		return
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"formatted": services.FormatAmount(amount, currency)})
}
