package orders

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"gmx-trade-desk/internal/state"

	"github.com/vmihailenco/msgpack/v5"
)

const journalPrefix = "order:"

// Journal persists built orders in the kv store, msgpack-encoded. Values are
// base64-wrapped since the store holds text.
type Journal struct {
	store state.Store
}

func NewJournal(store state.Store) *Journal {
	return &Journal{store: store}
}

func (j *Journal) Put(ctx context.Context, order Order) error {
	raw, err := msgpack.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}
	return j.store.Set(ctx, journalPrefix+order.ID, base64.StdEncoding.EncodeToString(raw))
}

func (j *Journal) Get(ctx context.Context, id string) (Order, bool, error) {
	value, ok, err := j.store.Get(ctx, journalPrefix+id)
	if err != nil || !ok {
		return Order{}, false, err
	}
	order, err := decodeOrder(value)
	if err != nil {
		return Order{}, false, fmt.Errorf("order %s: %w", id, err)
	}
	return order, true, nil
}

// List returns all journaled orders, newest first.
func (j *Journal) List(ctx context.Context) ([]Order, error) {
	entries, err := j.store.List(ctx, journalPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(entries))
	for key, value := range entries {
		order, err := decodeOrder(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, order)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt != out[k].CreatedAt {
			return out[i].CreatedAt > out[k].CreatedAt
		}
		return out[i].ID < out[k].ID
	})
	return out, nil
}

func decodeOrder(value string) (Order, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return Order{}, fmt.Errorf("decode order value: %w", err)
	}
	var order Order
	if err := msgpack.Unmarshal(raw, &order); err != nil {
		return Order{}, fmt.Errorf("decode order: %w", err)
	}
	return order, nil
}
