package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"solde/internal/core"
	"solde/internal/log"
	"solde/internal/middleware/trace"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady checks templates and store reachability.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.backend.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Store not reachable", "error", err, log.FieldOperation, "readyz")
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["cache"] = map[string]any{
		"transactions_entries": s.listLoader.Cache().Size(),
		"summary_entries":      s.summaryLoader.Cache().Size(),
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	list, err := s.transactions(r.Context())
	if err != nil {
		s.structured.LogError(r.Context(), "List transactions failed", err, log.OpList,
			log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "could not list transactions"})
		return
	}

	out := make([]transactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		if isBodyTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Detail: "request body too large"})
			return
		}
		detail := "malformed request body"
		if p.ExpectsJSON() {
			detail = "JSON parse error"
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detail})
		return
	}

	n, err := newTransactionFrom(p)
	if err != nil {
		s.writeFieldErrors(w, r, err)
		return
	}

	t, err := s.backend.Create(r.Context(), n)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			s.writeFieldErrors(w, r, err)
			return
		}
		s.structured.LogError(r.Context(), "Create transaction failed", err, log.OpCreate,
			log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "could not save transaction"})
		return
	}

	s.invalidateCaches()
	s.structured.LogTransactionCreated(r.Context(), trace.GetRequestID(r.Context()), t.ID, t.Amount.StringFixed(2))
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) writeFieldErrors(w http.ResponseWriter, r *http.Request, err error) {
	var fe core.FieldErrors
	if !errors.As(err, &fe) {
		fe = core.FieldErrors{}
		fe.Add(err)
	}
	s.logger.InfoContext(r.Context(), "Transaction rejected",
		log.FieldOperation, log.OpValidate,
		log.FieldErrorType, log.ErrorTypeValidation,
		"fields", fe.Error())
	writeJSON(w, http.StatusBadRequest, fe)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	totals, err := s.totals(r.Context())
	if err != nil {
		s.structured.LogError(r.Context(), "Summary failed", err, log.OpSummary,
			log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "could not compute summary"})
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(totals))
}

type indexData struct {
	LoadError string
	Ledger    ledgerView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := indexData{}
	list, err := s.transactions(r.Context())
	if err != nil {
		// The page still renders, with an empty ledger and the load error.
		s.structured.LogError(r.Context(), "Index transactions load failed", err, log.OpList,
			log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		data.LoadError = core.NotifyLoadFailed
	}
	data.Ledger = newLedgerView(list)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.structured.LogError(r.Context(), "Index template execution failed", err, log.OpRender,
			log.NewFields().WithComponent(log.ComponentTemplate))
	}
}

// handleLedger renders the table and the totals cards, reloaded by the page
// after each create.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	list, err := s.transactions(r.Context())
	if err != nil {
		s.structured.LogError(r.Context(), "Ledger load failed", err, log.OpList,
			log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			Header("HX-Reswap", "none").
			TriggerErrorNotification(core.NotifyLoadFailed).
			Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "ledger", newLedgerView(list)); err != nil {
		s.structured.LogError(r.Context(), "Ledger template execution failed", err, log.OpRender,
			log.NewFields().WithComponent(log.ComponentTemplate))
	}
}

// handleCreateTransactionUI handles the modal form. It applies the same
// checks as the page did before sending: trimmed text and a non-zero number.
func (s *Server) handleCreateTransactionUI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		BadRequestError("Format de requête invalide").Write(w)
		return
	}

	n, err := core.ParseInput(sanitizeInput(r.PostForm.Get("text")), r.PostForm.Get("amount"))
	if err != nil {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification(core.NotifyInvalidInput).
			Write(w)
		return
	}

	t, err := s.backend.Create(r.Context(), n)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrValidation) {
			status = http.StatusUnprocessableEntity
		} else {
			s.structured.LogError(r.Context(), "Create transaction failed", err, log.OpCreate,
				log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		}
		NewHTMXResponse().
			Status(status).
			TriggerErrorNotification(core.NotifyCreateFailed).
			Write(w)
		return
	}

	s.invalidateCaches()
	s.structured.LogTransactionCreated(r.Context(), trace.GetRequestID(r.Context()), t.ID, t.Amount.StringFixed(2))

	// Reload first, then reset the form, then notify.
	NewHTMXResponse().
		TriggerTransactionCreated(t.ID).
		TriggerFormReset().
		TriggerSuccessNotification(core.NotifyCreated).
		Write(w)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldPath, r.URL.Path,
		log.FieldMethod, r.Method)
	if r.Header.Get("HX-Request") == "true" {
		NewHTMXResponse().
			Status(http.StatusTooManyRequests).
			TriggerErrorNotification(core.NotifyCreateFailed).
			Write(w)
		return
	}
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: "Rate limit exceeded. Please try again later."})
}
