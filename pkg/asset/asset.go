// Package asset loads and saves effect graphs through a [store.Store].
//
// Save encodes the graph before touching the store, so a graph that cannot
// be written never replaces the stored document. Load decodes whatever is
// stored and reports recoverable problems on the result.
package asset

import (
	"context"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/serial"
	"github.com/matzehuels/vfxgraph/pkg/store"
)

// Load reads the asset name from st and decodes it with ser.
func Load(ctx context.Context, st store.Store, ser *serial.Serializer, name string) (*serial.Result, error) {
	doc, err := st.Get(ctx, name)
	if err != nil {
		return &serial.Result{Graph: model.NewGraph()}, err
	}
	res, err := ser.Unmarshal(doc.Data)
	if err != nil {
		return res, errors.Wrap(errors.GetCode(err), err, "load %q", name)
	}
	return res, nil
}

// Save encodes g with ser and stores it as a new revision of name. On an
// encode error the store is not called.
func Save(ctx context.Context, st store.Store, ser *serial.Serializer, name string, g *model.Graph) (store.Revision, error) {
	if err := store.ValidateName(name); err != nil {
		return store.Revision{}, err
	}
	data, err := ser.Marshal(g)
	if err != nil {
		return store.Revision{}, errors.Wrap(errors.GetCode(err), err, "save %q", name)
	}
	return st.Put(ctx, name, data)
}

// Upgrade rewrites a stored asset at the current schema version. It
// returns the read result of the old document alongside the new revision.
// Nothing is written if the stored document cannot be read or rewritten.
func Upgrade(ctx context.Context, st store.Store, ser *serial.Serializer, name string) (store.Revision, *serial.Result, error) {
	res, err := Load(ctx, st, ser, name)
	if err != nil {
		return store.Revision{}, res, err
	}
	rev, err := Save(ctx, st, ser, name, res.Graph)
	return rev, res, err
}
