package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"solde/internal/core"
)

// ErrInFlight is returned by Submit while a previous create is unresolved.
var ErrInFlight = errors.New("a transaction is already being submitted")

// API is the subset of Client used by Home.
type API interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Create(ctx context.Context, n core.NewTransaction) (core.Transaction, error)
}

// Notifier shows short messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Guard admits at most one submission at a time.
type Guard struct {
	inFlight atomic.Bool
}

// TryAcquire marks a submission in flight. It returns false if one already is.
func (g *Guard) TryAcquire() bool { return g.inFlight.CompareAndSwap(false, true) }

func (g *Guard) Release() { g.inFlight.Store(false) }

func (g *Guard) InFlight() bool { return g.inFlight.Load() }

// Form holds the raw values typed in the add form.
type Form struct {
	Text   string
	Amount string
}

// Home is the state behind the expense tracker page. Its methods are safe for
// concurrent use; network calls run without holding the lock.
type Home struct {
	api    API
	notify Notifier
	guard  Guard

	mu        sync.Mutex
	loads     uint64 // last Load started
	applied   uint64 // Load whose list is displayed
	txs       []core.Transaction
	form      Form
	modalOpen bool
}

func NewHome(api API, notify Notifier) *Home {
	return &Home{api: api, notify: notify}
}

// Load replaces the list with the server's. On failure the previous list is
// kept and the load error notification is shown. When loads overlap, a
// result never replaces the list of a load started after it.
func (h *Home) Load(ctx context.Context) error {
	h.mu.Lock()
	h.loads++
	gen := h.loads
	h.mu.Unlock()

	list, err := h.api.List(ctx)
	if err != nil {
		h.notify.Error(core.NotifyLoadFailed)
		return fmt.Errorf("load transactions: %w", err)
	}
	h.mu.Lock()
	if gen > h.applied {
		h.applied = gen
		h.txs = list
	}
	h.mu.Unlock()
	return nil
}

func (h *Home) OpenModal() {
	h.mu.Lock()
	h.modalOpen = true
	h.mu.Unlock()
}

func (h *Home) CloseModal() {
	h.mu.Lock()
	h.modalOpen = false
	h.mu.Unlock()
}

func (h *Home) ModalOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.modalOpen
}

func (h *Home) SetText(s string) {
	h.mu.Lock()
	h.form.Text = s
	h.mu.Unlock()
}

func (h *Home) SetAmount(s string) {
	h.mu.Lock()
	h.form.Amount = s
	h.mu.Unlock()
}

func (h *Home) Form() Form {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.form
}

// Transactions returns a copy of the displayed list, in server order.
func (h *Home) Transactions() []core.Transaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.Transaction, len(h.txs))
	copy(out, h.txs)
	return out
}

func (h *Home) Totals() core.Totals {
	return core.ComputeTotals(h.Transactions())
}

// Submitting reports whether a create request is outstanding.
func (h *Home) Submitting() bool { return h.guard.InFlight() }

// Submit sends the form as a new transaction.
//
// A call made while another is in flight returns ErrInFlight and does
// nothing else. Invalid input is reported with the validation notification
// and no request. After a successful create the list is reloaded, then the
// form is cleared and the modal closed, then the success notification is
// shown. A failed create keeps the form so the user can retry.
func (h *Home) Submit(ctx context.Context) error {
	if !h.guard.TryAcquire() {
		return ErrInFlight
	}
	defer h.guard.Release()

	form := h.Form()
	n, err := core.ParseInput(form.Text, form.Amount)
	if err != nil {
		h.notify.Error(core.NotifyInvalidInput)
		return err
	}

	if _, err := h.api.Create(ctx, n); err != nil {
		h.notify.Error(core.NotifyCreateFailed)
		return fmt.Errorf("create transaction: %w", err)
	}

	// A reload failure has already been notified; the create itself succeeded.
	_ = h.Load(ctx)

	h.mu.Lock()
	h.form = Form{}
	h.modalOpen = false
	h.mu.Unlock()

	h.notify.Success(core.NotifyCreated)
	return nil
}
