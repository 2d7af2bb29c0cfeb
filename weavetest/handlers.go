package weavetest

import "github.com/iov-one/daowallet"

// Handler is a mock implementation of the daowallet.Handler interface.
// It returns configured results and counts calls.
type Handler struct {
	checkCall   int
	CheckResult daowallet.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult daowallet.DeliverResult
	DeliverErr    error
	// Write if set is stored by Deliver before returning, so that
	// callers can observe whether the change was committed.
	Write *daowallet.Model
}

var _ daowallet.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	h.deliverCall++
	if h.Write != nil {
		if err := db.Set(h.Write.Key, h.Write.Value); err != nil {
			return nil, err
		}
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
