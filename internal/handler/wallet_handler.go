package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/internal/middleware"
	"github.com/tychicus04/web-ban-den-sub006/internal/usecase"
	"github.com/tychicus04/web-ban-den-sub006/pkg/response"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type WalletHandler struct {
	depositUC  *usecase.DepositUsecase
	withdrawUC *usecase.WithdrawUsecase
	balanceUC  *usecase.BalanceUsecase
	approvalUC *usecase.ApprovalUsecase
}

func NewWalletHandler(
	depositUC *usecase.DepositUsecase,
	withdrawUC *usecase.WithdrawUsecase,
	balanceUC *usecase.BalanceUsecase,
	approvalUC *usecase.ApprovalUsecase,
) *WalletHandler {
	return &WalletHandler{
		depositUC:  depositUC,
		withdrawUC: withdrawUC,
		balanceUC:  balanceUC,
		approvalUC: approvalUC,
	}
}

func (h *WalletHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wallet", func(r chi.Router) {
		r.Get("/", h.GetOverview)
		r.Get("/ledger", h.ListLedger)
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Get("/withdraw/stats", h.GetWithdrawStats)
	})
}

// RegisterOperatorRoutes mounts the manual-review endpoints. The server
// registers these only behind the operator gate, never on the seller group.
func (h *WalletHandler) RegisterOperatorRoutes(r chi.Router) {
	r.Route("/wallet/entries", func(r chi.Router) {
		r.Post("/{id}/approve", h.ApproveEntry)
		r.Post("/{id}/reject", h.RejectEntry)
	})
}

// parseAmount converts an amount string into minor currency units without
// going through float. Fractional minor units are rejected.
func parseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, xerrors.ErrInvalidAmount
	}
	return d.IntPart(), nil
}

// writeWorkflowError maps typed workflow outcomes onto HTTP statuses. The
// presentation layer keeps the message text as-is for validation errors.
func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrTransientStore):
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, xerrors.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, xerrors.ErrAlreadyProcessed), errors.Is(err, xerrors.ErrEntryNotPending):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		response.Error(w, http.StatusBadRequest, err.Error())
	}
}

type DepositJSON struct {
	Amount     string  `json:"amount"`
	Method     string  `json:"method"`
	Details    string  `json:"details,omitempty"`
	ReceiptRef *string `json:"receipt_ref,omitempty"`
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	var in DepositJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := parseAmount(in.Amount)
	if err != nil {
		response.Error(w, http.StatusBadRequest, xerrors.ErrInvalidAmount.Error())
		return
	}

	result, err := h.depositUC.Deposit(r.Context(), ident, &domain.DepositRequest{
		Amount:     amount,
		Method:     in.Method,
		Details:    in.Details,
		ReceiptRef: in.ReceiptRef,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"seller_id": ident.SellerID,
			"method":    in.Method,
		}).WithError(err).Warn("deposit rejected")
		writeWorkflowError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, result)
}

type WithdrawJSON struct {
	Amount      string `json:"amount"`
	Method      string `json:"method"`
	BankName    string `json:"bank_name,omitempty"`
	BankAccount string `json:"bank_account,omitempty"`
	BankHolder  string `json:"bank_holder,omitempty"`
	Note        string `json:"note,omitempty"`
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	var in WithdrawJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := parseAmount(in.Amount)
	if err != nil {
		response.Error(w, http.StatusBadRequest, xerrors.ErrInvalidAmount.Error())
		return
	}

	result, err := h.withdrawUC.Withdraw(r.Context(), ident, &domain.WithdrawRequest{
		Amount:      amount,
		Method:      in.Method,
		BankName:    in.BankName,
		BankAccount: in.BankAccount,
		BankHolder:  in.BankHolder,
		Note:        in.Note,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"seller_id": ident.SellerID,
			"method":    in.Method,
		}).WithError(err).Warn("withdrawal rejected")
		writeWorkflowError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, result)
}

func (h *WalletHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	overview, err := h.balanceUC.Overview(r.Context(), ident, limit)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, overview)
}

func (h *WalletHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	filter := &domain.LedgerFilter{}
	q := r.URL.Query()
	if v := q.Get("approval"); v != "" {
		n, err := strconv.ParseInt(v, 10, 16)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "invalid approval filter")
			return
		}
		st := domain.ApprovalStatus(n)
		filter.Approval = &st
	}
	switch q.Get("sign") {
	case "deposit":
		filter.Sign = domain.SignPositive
	case "withdrawal":
		filter.Sign = domain.SignNegative
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	entries, err := h.balanceUC.ListLedger(r.Context(), ident, filter)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}

func (h *WalletHandler) GetWithdrawStats(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing seller identity")
		return
	}

	stats, err := h.withdrawUC.Stats(r.Context(), ident)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

type ApprovalResultJSON struct {
	Entry      *domain.LedgerEntry `json:"entry"`
	NewBalance int64               `json:"new_balance,omitempty"`
}

func (h *WalletHandler) ApproveEntry(w http.ResponseWriter, r *http.Request) {
	op, ok := middleware.OperatorFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing operator identity")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, newBalance, err := h.approvalUC.Approve(r.Context(), entryID)
	if err != nil {
		log.WithFields(log.Fields{
			"entry_id":    entryID,
			"operator_id": op.ID,
		}).WithError(err).Warn("entry approval failed")
		writeWorkflowError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"entry_id":    entryID,
		"operator_id": op.ID,
	}).Info("entry approved")

	response.JSON(w, http.StatusOK, ApprovalResultJSON{Entry: entry, NewBalance: newBalance})
}

type RejectJSON struct {
	Reason string `json:"reason"`
}

func (h *WalletHandler) RejectEntry(w http.ResponseWriter, r *http.Request) {
	op, ok := middleware.OperatorFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing operator identity")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	// Body is optional; a bare reject carries no reason.
	var in RejectJSON
	_ = json.NewDecoder(r.Body).Decode(&in)

	entry, err := h.approvalUC.Reject(r.Context(), entryID, in.Reason)
	if err != nil {
		log.WithFields(log.Fields{
			"entry_id":    entryID,
			"operator_id": op.ID,
		}).WithError(err).Warn("entry rejection failed")
		writeWorkflowError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, ApprovalResultJSON{Entry: entry})
}
