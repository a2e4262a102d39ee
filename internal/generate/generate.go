// Package generate expands task templates into the day's task instances.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
)

// TemplateStore is the part of the store generation uses.
type TemplateStore interface {
	GetTemplates(ctx context.Context) ([]model.TaskTemplate, error)
	HasInstance(ctx context.Context, templateID, day string) (bool, error)
	InsertTask(ctx context.Context, rec model.TaskRecord) (string, error)
}

// Result reports what a run did.
type Result struct {
	Created []string
	Skipped int
}

// Generator creates pending instances of templates.
type Generator struct {
	store TemplateStore
}

// New creates a Generator.
func New(store TemplateStore) *Generator {
	return &Generator{store: store}
}

// Generate creates one pending instance per template for day. Templates
// that already have an instance on day are skipped, so repeated runs are
// safe. When keywords is non-empty only templates whose title matches
// one of them are used. A failed insert does not stop the rest.
func (g *Generator) Generate(ctx context.Context, day string, keywords []string) (Result, error) {
	var res Result
	if !model.ValidDay(day) {
		return res, fmt.Errorf("generating tasks: invalid day %q", day)
	}

	tmpls, err := g.store.GetTemplates(ctx)
	if err != nil {
		return res, fmt.Errorf("generating tasks for %s: %w", day, err)
	}

	var errs []error
	for _, tmpl := range tmpls {
		rec := tmpl.Instantiate(day)
		if len(keywords) > 0 && !roster.ByCategoryHeuristic(rec, keywords) {
			continue
		}

		exists, err := g.store.HasInstance(ctx, tmpl.ID, day)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		id, err := g.store.InsertTask(ctx, rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("instantiating template %s: %w", tmpl.ID, err))
			continue
		}
		res.Created = append(res.Created, id)
	}

	log.Printf("[generate] %s: %d created, %d already present", day, len(res.Created), res.Skipped)
	return res, errors.Join(errs...)
}
