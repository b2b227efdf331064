package deploy

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// Lister lists resources of one kind.
type Lister interface {
	List(ctx context.Context, kind apmec.Kind, filters map[string]string) ([]apmec.Record, error)
}

// Choice is one selectable catalog entry or VIM.
type Choice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Choices are the options offered by a deploy form.
type Choices struct {
	Kind     apmec.Kind `json:"kind"`
	Catalogs []Choice   `json:"catalogs"`
	VIMs     []Choice   `json:"vims"`
}

// LoadChoices fetches catalog and VIM choices for kind concurrently. A list
// that cannot be fetched is logged and left empty; an error is returned only
// when kind is not deployable or ctx ends first.
func LoadChoices(ctx context.Context, source Lister, kind apmec.Kind) (Choices, error) {
	if !kind.Deployable() {
		return Choices{}, fmt.Errorf("%s cannot be deployed", kind.Plural())
	}

	choices := Choices{Kind: kind, Catalogs: []Choice{}, VIMs: []Choice{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		choices.Catalogs, err = fetchChoices(gctx, source, kind.Catalog())
		return err
	})
	g.Go(func() (err error) {
		choices.VIMs, err = fetchChoices(gctx, source, apmec.KindVIM)
		return err
	})
	if err := g.Wait(); err != nil {
		return Choices{}, err
	}

	return choices, nil
}

// fetchChoices lists kind as choices sorted by name. Only cancellation of
// ctx is returned as an error; other failures leave the list empty.
func fetchChoices(ctx context.Context, source Lister, kind apmec.Kind) ([]Choice, error) {
	records, err := source.List(ctx, kind, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logging.Error("Deploy", err, "Failed to retrieve available %s", kind.Title())
		return []Choice{}, nil
	}

	choices := make([]Choice, 0, len(records))
	for _, rec := range records {
		id := rec.ID()
		if id == "" {
			continue
		}
		choices = append(choices, Choice{ID: id, Name: rec.StringOr("name", id)})
	}
	sort.SliceStable(choices, func(i, j int) bool { return choices[i].Name < choices[j].Name })
	return choices, nil
}
