package client

import (
	"context"

	"github.com/atinyakov/pwdvault/internal/models"
)

// Records reads every record of the user through a fresh session.
func (a *API) Records(ctx context.Context) (_ []models.Record, err error) {
	id, err := a.OpenSession(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := a.CloseSession(ctx, id); err == nil {
			err = cerr
		}
	}()

	var recs []models.Record
	for {
		rec, ok, err := a.Next(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return recs, nil
		}
		recs = append(recs, rec)
	}
}

// Prune reads every record, then seeks to and deletes each one at an odd
// position (first, third, ...). It returns the deleted records.
func (a *API) Prune(ctx context.Context) (_ []models.Record, err error) {
	id, err := a.OpenSession(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := a.CloseSession(ctx, id); err == nil {
			err = cerr
		}
	}()

	var recs []models.Record
	for {
		rec, ok, err := a.Next(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		recs = append(recs, rec)
	}

	var deleted []models.Record
	for i := 0; i < len(recs); i += 2 {
		found, err := a.Seek(ctx, id, recs[i].Hint, recs[i].Password)
		if err != nil {
			return deleted, err
		}
		if !found {
			continue
		}
		if err := a.DeleteCurrent(ctx, id); err != nil {
			return deleted, err
		}
		deleted = append(deleted, recs[i])
	}
	return deleted, nil
}
