package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/alexanderramin/azdo/internal/domain"
)

// HTTPError mimics a transport error carrying a response status.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string { return fmt.Sprintf("status %d", e.Status) }

func (e *HTTPError) HTTPStatus() int { return e.Status }

// FakeSource is an in-memory work-item source that records every call.
type FakeSource struct {
	mu        sync.Mutex
	items     map[int]domain.WorkItem
	children  map[int][]int
	itemErrs  map[int]error
	childErrs map[int]error
	calls     []string
}

func NewFakeSource() *FakeSource {
	return &FakeSource{
		items:     map[int]domain.WorkItem{},
		children:  map[int][]int{},
		itemErrs:  map[int]error{},
		childErrs: map[int]error{},
	}
}

// Add registers an item and its child ids in service order.
func (f *FakeSource) Add(id int, typ, title, state string, children ...int) *FakeSource {
	f.items[id] = domain.WorkItem{ID: id, Type: typ, Title: title, State: state}
	if len(children) > 0 {
		f.children[id] = children
	}
	return f
}

// FailItem makes FetchItem(id) return err.
func (f *FakeSource) FailItem(id int, err error) *FakeSource {
	f.itemErrs[id] = err
	return f
}

// FailChildren makes FetchChildren(id) return err.
func (f *FakeSource) FailChildren(id int, err error) *FakeSource {
	f.childErrs[id] = err
	return f
}

func (f *FakeSource) FetchItem(_ context.Context, id int) (domain.WorkItem, error) {
	f.record(fmt.Sprintf("item:%d", id))
	if err := f.itemErrs[id]; err != nil {
		return domain.WorkItem{}, err
	}
	wi, ok := f.items[id]
	if !ok {
		return domain.WorkItem{}, &HTTPError{Status: http.StatusNotFound}
	}
	return wi, nil
}

func (f *FakeSource) FetchChildren(_ context.Context, parentID int) ([]domain.ItemRef, error) {
	f.record(fmt.Sprintf("children:%d", parentID))
	if err := f.childErrs[parentID]; err != nil {
		return nil, err
	}
	var refs []domain.ItemRef
	for _, id := range f.children[parentID] {
		refs = append(refs, domain.ItemRef{ID: id})
	}
	return refs, nil
}

// Calls returns the recorded calls in order, e.g. "item:100", "children:100".
func (f *FakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Reset clears the call log.
func (f *FakeSource) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}
