package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/freelance/api/http/presenter"
	"github.com/artem13815/freelance/pkg/invoice"
)

type InvoiceHandler struct {
	uc        invoice.UseCase
	calc      *invoice.Calculator
	validator *invoice.Validator
}

func NewInvoiceHandler(uc invoice.UseCase, calc *invoice.Calculator, validator *invoice.Validator) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, calc: calc, validator: validator}
}

// invoiceRequest documents the accepted body; amounts may be numbers or strings.
type invoiceRequest struct {
	LegalName   string  `json:"legal_name"`
	TaxID       string  `json:"tax_id"`
	Address     string  `json:"address"`
	PostalCode  string  `json:"postal_code"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	BaseAmount  float64 `json:"base_amount"`
	Description string  `json:"description"`
	IBAN        string  `json:"iban"`
	SWIFT       string  `json:"swift"`
	IRPFRate    float64 `json:"irpf_rate"`
}

type calculateRequest struct {
	BaseAmount float64 `json:"base_amount"`
	Country    string  `json:"country"`
	IRPFRate   float64 `json:"irpf_rate"`
}

type invoiceResponse struct {
	ID           string              `json:"id"`
	FreelancerID string              `json:"freelancerId"`
	Fields       invoice.Fields      `json:"fields"`
	Calculation  invoice.Calculation `json:"calculation"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func toInvoiceResponse(inv invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:           inv.ID.String(),
		FreelancerID: inv.FreelancerID.String(),
		Fields:       inv.Fields,
		Calculation:  inv.Calculation,
		CreatedAt:    inv.CreatedAt,
	}
}

func (h *InvoiceHandler) parse(c *fiber.Ctx) (invoice.Request, error) {
	raw, err := decodeBody(c)
	if err != nil {
		return invoice.Request{}, err
	}
	return invoice.DecodeRequest(raw)
}

// Calculate считает налоги без сохранения счёта.
// @Summary Предпросмотр расчёта налогов
// @Tags    Invoices
// @Accept  json
// @Produce json
// @Param   input body calculateRequest true "Сумма, страна и ставка IRPF (по умолчанию 15)"
// @Security BearerAuth
// @Success 200 {object} invoice.Calculation
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /invoices/calculate [post]
func (h *InvoiceHandler) Calculate(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	if req.BaseAmount == nil || !req.BaseAmount.IsPositive() {
		return presenter.Error(c, http.StatusBadRequest, "base_amount должен быть больше 0")
	}
	if strings.TrimSpace(req.Country) == "" {
		return presenter.Error(c, http.StatusBadRequest, "country обязателен")
	}
	if err := invoice.CheckWithholdingRate(req.WithholdingRate); err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	if req.WithholdingRate == nil {
		return presenter.JSON(c, http.StatusOK, h.calc.CalculateDefault(*req.BaseAmount, req.Country))
	}
	return presenter.JSON(c, http.StatusOK, h.calc.Calculate(*req.BaseAmount, req.Country, *req.WithholdingRate))
}

// Validate проверяет реквизиты счёта и возвращает все ошибки сразу.
// @Summary Проверить реквизиты счёта
// @Tags    Invoices
// @Accept  json
// @Produce json
// @Param   input body invoiceRequest true "Реквизиты счёта"
// @Security BearerAuth
// @Success 200 {object} invoice.ValidationResult
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /invoices/validate [post]
func (h *InvoiceHandler) Validate(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	return presenter.JSON(c, http.StatusOK, h.validator.Validate(req.Fields))
}

// Create проверяет реквизиты, считает налоги и сохраняет счёт.
// @Summary Выставить счёт
// @Tags    Invoices
// @Accept  json
// @Produce json
// @Param   input body invoiceRequest true "Реквизиты счёта"
// @Security BearerAuth
// @Success 201 {object} invoiceResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 422 {object} presenter.ValidationErrorResponse
// @Router  /invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	actorID, _, err := actor(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	req, err := h.parse(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}

	inv, res, err := h.uc.Create(c.UserContext(), actorID, req.Fields, req.WithholdingRate)
	if err != nil {
		return writeError(c, err)
	}
	if !res.Valid {
		return presenter.ValidationError(c, http.StatusUnprocessableEntity, res.Errors)
	}
	return presenter.JSON(c, http.StatusCreated, toInvoiceResponse(inv))
}

// Get возвращает счёт (владелец/админ).
// @Summary Получить счёт
// @Tags    Invoices
// @Produce json
// @Param   id path string true "ID счёта (UUID)"
// @Security BearerAuth
// @Success 200 {object} invoiceResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный id")
	}
	actorID, isAdmin, err := actor(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	inv, err := h.uc.Get(c.UserContext(), actorID, isAdmin, id)
	if err != nil {
		return writeError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, toInvoiceResponse(inv))
}

// List возвращает счета текущего пользователя.
// @Summary Мои счета
// @Tags    Invoices
// @Produce json
// @Param   limit  query int false "Лимит (1..200)"
// @Param   offset query int false "Смещение"
// @Security BearerAuth
// @Success 200 {array} invoiceResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	actorID, _, err := actor(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	limit, offset := parseLimitOffset(c, 20)
	items, err := h.uc.List(c.UserContext(), actorID, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]invoiceResponse, 0, len(items))
	for _, inv := range items {
		out = append(out, toInvoiceResponse(inv))
	}
	return presenter.JSON(c, http.StatusOK, out)
}
