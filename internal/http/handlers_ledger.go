package http

import (
	"net/http"

	"utang/internal/core"
	"utang/internal/services"
)

// Debts

// handleListDebts returns each debt with its payments and derived balance.
func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	views, err := s.dashboard.Debts(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(views))
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := debtPatch(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.ledger.CreateDebt(r.Context(), currentUser(r), patch.Apply(core.Debt{}))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := debtPatch(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.ledger.UpdateDebt(r.Context(), currentUser(r), pathVar(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteDebt(r.Context(), currentUser(r), pathVar(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Message("Debt deleted successfully").Write(w)
}

// debtPatch collects the debt fields present in the body.
func debtPatch(p *RequestBodyParser) (services.DebtPatch, error) {
	var patch services.DebtPatch
	if p.Has("name") {
		name := p.Get("name")
		patch.Name = &name
	}
	if p.Has("balance") {
		m, err := p.GetMoney("balance")
		if err != nil {
			return patch, err
		}
		patch.Balance = &m
	}
	if p.Has("interestRate") {
		rate, err := p.GetRate("interestRate")
		if err != nil {
			return patch, err
		}
		patch.InterestRate = &rate
	}
	if p.Has("minimumPayment") {
		m, err := p.GetMoney("minimumPayment")
		if err != nil {
			return patch, err
		}
		patch.MinimumPayment = &m
	}
	if p.Has("dueDate") {
		day, err := p.GetDueDay("dueDate")
		if err != nil {
			return patch, err
		}
		patch.DueDay = &day
	}
	if p.Has("debtType") {
		c := core.DebtCategory(p.Get("debtType"))
		patch.Category = &c
	}
	if p.Has("paymentFrequency") {
		f := core.PaymentFrequency(p.Get("paymentFrequency"))
		patch.Frequency = &f
	}
	return patch, nil
}

// Budget items

func (s *Server) handleListBudget(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListBudgetItems(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleCreateBudgetItem(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := budgetPatch(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.ledger.CreateBudgetItem(r.Context(), currentUser(r), patch.Apply(core.BudgetItem{}))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBudgetItem(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := budgetPatch(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.ledger.UpdateBudgetItem(r.Context(), currentUser(r), pathVar(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudgetItem(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteBudgetItem(r.Context(), currentUser(r), pathVar(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Message("Budget item deleted successfully").Write(w)
}

func budgetPatch(p *RequestBodyParser) (services.BudgetItemPatch, error) {
	var patch services.BudgetItemPatch
	if p.Has("name") {
		name := p.Get("name")
		patch.Name = &name
	}
	if p.Has("amount") {
		m, err := p.GetMoney("amount")
		if err != nil {
			return patch, err
		}
		patch.Amount = &m
	}
	if p.Has("category") {
		c := p.Get("category")
		patch.Category = &c
	}
	if p.Has("type") {
		t := core.ItemType(p.Get("type"))
		patch.Type = &t
	}
	flags := []struct {
		key string
		dst **bool
	}{
		{"isEssential", &patch.Essential},
		{"isFixed", &patch.Fixed},
		{"isProtected", &patch.Protected},
	}
	for _, f := range flags {
		if !p.Has(f.key) {
			continue
		}
		v, err := p.GetBool(f.key)
		if err != nil {
			return patch, err
		}
		*f.dst = &v
	}
	return patch, nil
}

// Payments

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.ledger.ListPayments(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(payments))
}

func (s *Server) handleListDebtPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.ledger.ListPaymentsByDebt(r.Context(), currentUser(r), pathVar(r, "debtId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(payments))
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	payment := core.Payment{
		DebtID: p.Get("debtId"),
		Kind:   core.PaymentKind(p.Get("paymentType")),
	}
	if payment.Amount, err = p.GetMoney("amount"); err != nil {
		writeError(w, r, err)
		return
	}
	if p.Get("paymentDate") != "" {
		if payment.PaidAt, err = p.GetDate("paymentDate"); err != nil {
			writeError(w, r, err)
			return
		}
	}
	created, err := s.ledger.CreatePayment(r.Context(), currentUser(r), payment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeletePayment(r.Context(), currentUser(r), pathVar(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Message("Payment deleted successfully").Write(w)
}
