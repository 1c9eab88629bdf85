package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
	"github.com/mossline/ledgermind/internal/suggest"
)

type accountJSON struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Currency string  `json:"currency,omitempty"`
	Balance  float64 `json:"balance"`
}

type transactionJSON struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	AccountID   string  `json:"account_id"`
	Status      string  `json:"status"`
	CheckNumber string  `json:"check_number,omitempty"`
	PayeeID     *int64  `json:"payee_id,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
}

type payeeJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	UseCount int    `json:"use_count"`
}

type categoryJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Type        string `json:"type"`
}

type suggestionJSON struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Tier       string  `json:"tier"`
	Reason     string  `json:"reason,omitempty"`
	Color      string  `json:"color,omitempty"`
	Confidence float64 `json:"confidence"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.storage.GetAccounts(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	out := make([]accountJSON, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		out = append(out, accountJSON{
			ID:       a.ID,
			Name:     a.Name,
			Type:     string(a.Type),
			Currency: a.Currency,
			Balance:  a.Balance,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required")
		return
	}
	account := model.Account{
		ID:       req.ID,
		Name:     req.Name,
		Currency: req.Currency,
		Type:     model.AccountType(req.Type),
	}
	if !model.ValidAccountType(account.Type) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown account type %q", req.Type))
		return
	}
	if err := s.storage.CreateAccount(r.Context(), &account); err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := s.storage.GetTransactions(r.Context(), filter)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	total, err := s.storage.CountTransactions(r.Context(), filter)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	out := make([]transactionJSON, 0, len(transactions))
	for i := range transactions {
		t := &transactions[i]
		out = append(out, transactionJSON{
			ID:          t.ID,
			Date:        t.Date.Format("2006-01-02"),
			Description: t.Description,
			Amount:      t.Amount,
			AccountID:   t.AccountID,
			Status:      string(t.Status),
			CheckNumber: t.CheckNumber,
			PayeeID:     t.PayeeID,
			CategoryID:  t.CategoryID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": out,
		"total":        total,
	})
}

// transactionFilter reads list options from the query string.
func transactionFilter(r *http.Request) (service.TransactionFilter, error) {
	q := r.URL.Query()
	filter := service.TransactionFilter{
		AccountID:  q.Get("account"),
		Search:     q.Get("search"),
		Unassigned: q.Get("unassigned") == "true",
		Descending: q.Get("order") != "asc",
	}

	if sortBy := q.Get("sort"); sortBy != "" {
		filter.SortBy = service.SortField(sortBy)
	} else {
		filter.SortBy = service.SortByDate
	}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return filter, fmt.Errorf("invalid %s %q", name, raw)
		}
		*dst = value
	}

	return filter, nil
}

type assignRequest struct {
	PayeeID    *int64 `json:"payee_id"`
	CategoryID *int64 `json:"category_id"`
}

func (s *Server) assignTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}

	if _, err := s.storage.GetTransactionByID(r.Context(), id); err != nil {
		writeStorageError(w, err)
		return
	}

	if req.PayeeID != nil {
		if err := s.storage.UpdateTransactionPayee(r.Context(), id, req.PayeeID); err != nil {
			writeStorageError(w, err)
			return
		}
		if err := s.storage.IncrementPayeeUseCount(r.Context(), *req.PayeeID); err != nil {
			writeStorageError(w, err)
			return
		}
	}
	if req.CategoryID != nil {
		if err := s.storage.UpdateTransactionCategory(r.Context(), id, req.CategoryID); err != nil {
			writeStorageError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) listPayees(w http.ResponseWriter, r *http.Request) {
	payees, err := s.storage.GetPayees(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	out := make([]payeeJSON, 0, len(payees))
	for i := range payees {
		p := &payees[i]
		out = append(out, payeeJSON{ID: p.ID, Name: p.Name, Color: p.Color, UseCount: p.UseCount})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createPayee(w http.ResponseWriter, r *http.Request) {
	var req payeeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	payee := model.Payee{Name: req.Name, Color: req.Color}
	if err := s.storage.CreatePayee(r.Context(), &payee); err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payeeJSON{ID: payee.ID, Name: payee.Name, Color: payee.Color})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.storage.GetCategories(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	out := make([]categoryJSON, 0, len(categories))
	for i := range categories {
		c := &categories[i]
		out = append(out, categoryJSON{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Color:       c.Color,
			Type:        string(c.Type),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	created, err := s.storage.CreateCategory(r.Context(), req.Name, req.Description, model.CategoryType(req.Type))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryJSON{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		Type:        string(created.Type),
	})
}

type suggestionsRequest struct {
	Description string   `json:"description"`
	AccountID   string   `json:"account_id"`
	AccountType string   `json:"account_type"`
	Amount      *float64 `json:"amount"`
}

func (s *Server) suggestions(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		writeError(w, http.StatusServiceUnavailable, "suggestions are not configured")
		return
	}

	var req suggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}

	known, err := s.knownEntities(r)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	result, fetchErr := s.fetcher.Fetch(r.Context(), service.SuggestionRequest{
		Description: req.Description,
		AccountID:   req.AccountID,
		AccountType: model.AccountType(req.AccountType),
		Amount:      req.Amount,
	}, known)
	if result == nil {
		result = &suggest.Result{}
	}
	if fetchErr != nil {
		s.logger.Warn("suggestion fetch degraded", "error", fetchErr)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payees":     suggestionList(result.Payees),
		"categories": suggestionList(result.Categories),
		"fallback":   result.Fallback,
	})
}

func suggestionList(suggestions model.Suggestions) []suggestionJSON {
	out := make([]suggestionJSON, 0, len(suggestions))
	for _, sg := range suggestions {
		out = append(out, suggestionJSON{
			ID:         sg.ID,
			Name:       sg.Name,
			Type:       string(sg.Type),
			Tier:       string(sg.Tier()),
			Reason:     sg.Reason,
			Color:      sg.Color,
			Confidence: sg.Confidence,
		})
	}
	return out
}

func (s *Server) knownEntities(r *http.Request) (suggest.KnownEntities, error) {
	payees, err := s.storage.GetPayees(r.Context())
	if err != nil {
		return suggest.KnownEntities{}, err
	}
	categories, err := s.storage.GetCategories(r.Context())
	if err != nil {
		return suggest.KnownEntities{}, err
	}
	return suggest.KnownEntities{Payees: payees, Categories: categories}, nil
}

type selectionRequest struct {
	TransactionID string           `json:"transaction_id"`
	Field         model.FieldType  `json:"field_type"`
	SelectedID    string           `json:"selected_value_id"`
	SelectedName  string           `json:"selected_value_name"`
	AccountType   string           `json:"account_type"`
	Method        string           `json:"method"`
	Shown         []suggestionJSON `json:"shown"`
}

func (s *Server) recordSelection(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		writeError(w, http.StatusServiceUnavailable, "selection reporting is not configured")
		return
	}

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.TransactionID == "" || req.SelectedName == "" {
		writeError(w, http.StatusBadRequest, "transaction_id and selected_value_name are required")
		return
	}
	if req.Field != model.FieldPayee && req.Field != model.FieldCategory {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown field type %q", req.Field))
		return
	}

	txn, err := s.storage.GetTransactionByID(r.Context(), req.TransactionID)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	shown := make(model.Suggestions, 0, len(req.Shown))
	for _, sg := range req.Shown {
		shown = append(shown, model.Suggestion{
			ID:         sg.ID,
			Name:       sg.Name,
			Type:       model.SuggestionType(sg.Type),
			Confidence: sg.Confidence,
		})
	}

	method := model.SelectionMethod(req.Method)
	if method == "" {
		method = model.MethodManual
	}

	event := model.NewSelectionEvent(*txn, req.Field, req.SelectedID, req.SelectedName,
		model.AccountType(req.AccountType), shown, method)
	s.recorder.Record(event)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"event_id":      event.EventID,
		"was_suggested": event.WasSuggested,
		"recorded_at":   event.SelectedAt.Format(time.RFC3339),
	})
}
