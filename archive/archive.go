// Package archive stores finished match records outside the hub state.
package archive

import (
	"context"
	"errors"

	"github.com/wfunc/gamestation/models"
)

// Archiver persists the record of one finished match.
type Archiver interface {
	Archive(ctx context.Context, rec models.GameRecord) error
}

// Func adapts a function to Archiver.
type Func func(ctx context.Context, rec models.GameRecord) error

func (f Func) Archive(ctx context.Context, rec models.GameRecord) error {
	return f(ctx, rec)
}

// Multi archives to every target and joins their errors.
type Multi []Archiver

func (m Multi) Archive(ctx context.Context, rec models.GameRecord) error {
	var errs []error
	for _, a := range m {
		if a == nil {
			continue
		}
		if err := a.Archive(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
