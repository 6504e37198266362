package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/navigation"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/storage"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

// Persisted keys. Each is written and read on its own.
const (
	KeyViewerName       = "viewerName"
	KeyCart             = "cart"
	KeySelectedChapters = "selectedChapters"
	KeySelectedPackage  = "selectedPackage"
	KeyCurrentPage      = "currentPage"
	KeyROIInputs        = "roiInputs"
)

// Keys lists the persisted keys in write order.
var Keys = []string{
	KeyViewerName,
	KeyCart,
	KeySelectedChapters,
	KeySelectedPackage,
	KeyCurrentPage,
	KeyROIInputs,
}

// KeyError reports a failed write of one persisted key.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

// SnapshotOf extracts the persisted part of st.
func SnapshotOf(st types.State) types.Snapshot {
	st = Clone(st)
	return types.Snapshot{
		ViewerName:       st.ViewerName,
		Cart:             st.Cart,
		SelectedChapters: st.SelectedChapters,
		SelectedPackage:  st.SelectedPackage,
		CurrentPage:      st.CurrentPage,
		ROIInputs:        st.ROIInputs,
	}
}

// StateFromSnapshot rebuilds a session from snap. Transient fields start at
// their defaults.
func StateFromSnapshot(cat types.Catalog, snap types.Snapshot) types.State {
	st := Initial(cat, snap.ViewerName)
	if snap.Cart != nil {
		st.Cart = dedupeCart(snap.Cart)
	}
	if snap.SelectedChapters != nil {
		st.SelectedChapters = cloneStrings(snap.SelectedChapters)
	}
	st.SelectedPackage = clonePackage(snap.SelectedPackage)
	if navigation.Valid(snap.CurrentPage) {
		st.CurrentPage = snap.CurrentPage
	}
	st.ROIInputs = catalog.ClampROIInputs(cat, snap.ROIInputs)
	return st
}

// Save writes every key of snap to kv. A failing key does not stop the
// others; the returned error joins one *KeyError per failed key.
func Save(ctx context.Context, kv storage.KV, snap types.Snapshot) error {
	values := map[string]any{
		KeyViewerName:       snap.ViewerName,
		KeyCart:             nonNilCart(snap.Cart),
		KeySelectedChapters: nonNilStrings(snap.SelectedChapters),
		KeySelectedPackage:  snap.SelectedPackage,
		KeyCurrentPage:      snap.CurrentPage,
		KeyROIInputs:        snap.ROIInputs,
	}
	var errs []error
	for _, key := range Keys {
		data, err := json.Marshal(values[key])
		if err == nil {
			err = kv.Set(ctx, key, data)
		}
		if err != nil {
			errs = append(errs, &KeyError{Key: key, Err: err})
		}
	}
	return errors.Join(errs...)
}

// FailedKeys lists the keys named by the *KeyError values inside err.
func FailedKeys(err error) []string {
	if err == nil {
		return nil
	}
	var keys []string
	var walk func(error)
	walk = func(err error) {
		var ke *KeyError
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		if errors.As(err, &ke) {
			keys = append(keys, ke.Key)
		}
	}
	walk(err)
	return keys
}

// LoadSnapshot reads every key from kv. A key that is absent, unreadable or
// malformed falls back to its default without affecting the others.
func LoadSnapshot(ctx context.Context, kv storage.KV, cat types.Catalog, logger *zap.Logger) types.Snapshot {
	if logger == nil {
		logger = zap.NewNop()
	}
	snap := SnapshotOf(Initial(cat, ""))

	read := func(key string, target any) bool {
		data, ok, err := kv.Get(ctx, key)
		if err != nil {
			logger.Warn("read persisted key", zap.String("key", key), zap.Error(err))
			return false
		}
		if !ok {
			return false
		}
		if err := json.Unmarshal(data, target); err != nil {
			logger.Warn("malformed persisted key, using default", zap.String("key", key), zap.Error(err))
			return false
		}
		return true
	}

	var name string
	if read(KeyViewerName, &name) && name != "" {
		snap.ViewerName = name
	}

	var cart []types.CartItem
	if read(KeyCart, &cart) && cart != nil {
		snap.Cart = dedupeCart(cart)
	}

	var chapters []string
	if read(KeySelectedChapters, &chapters) && chapters != nil {
		snap.SelectedChapters = chapters
	}

	var pkg *types.Package
	if read(KeySelectedPackage, &pkg) {
		snap.SelectedPackage = pkg
	}

	var page types.Page
	if read(KeyCurrentPage, &page) {
		if navigation.Valid(page) {
			snap.CurrentPage = page
		} else {
			logger.Warn("unknown persisted page, using default", zap.String("page", string(page)))
		}
	}

	var patch types.ROIInputsPatch
	if read(KeyROIInputs, &patch) {
		snap.ROIInputs = catalog.ClampROIInputs(cat, MergeROIInputs(snap.ROIInputs, patch))
	}
	return snap
}

func dedupeCart(cart []types.CartItem) []types.CartItem {
	seen := make(map[string]struct{}, len(cart))
	out := make([]types.CartItem, 0, len(cart))
	for _, item := range cart {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

func nonNilCart(cart []types.CartItem) []types.CartItem {
	if cart == nil {
		return []types.CartItem{}
	}
	return cart
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
