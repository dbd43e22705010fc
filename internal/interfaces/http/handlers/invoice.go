// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	orders     *OrderHandler
	pdfService *pdf.Service
	logger     *logrus.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, pdfService *pdf.Service, logger *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		orders:     NewOrderHandler(orderService, logger),
		pdfService: pdfService,
		logger:     logger,
	}
}

// GenerateInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	o, ok := h.orders.loadOwnOrder(c)
	if !ok {
		return
	}

	pdfBuffer, err := h.pdfService.GenerateInvoice(o)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate invoice")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", pdf.InvoiceNumber(o)))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}

// PreviewInvoice handles GET /orders/:id/invoice/preview, returning the invoice as HTML
func (h *InvoiceHandler) PreviewInvoice(c *gin.Context) {
	o, ok := h.orders.loadOwnOrder(c)
	if !ok {
		return
	}

	html, err := h.pdfService.RenderInvoiceHTML(o, time.Now())
	if err != nil {
		respondError(c, h.logger, err, "Failed to render invoice")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
