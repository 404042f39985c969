package handlers

import (
	"context"
	"time"

	"winsales/internal/agenda"
	"winsales/internal/cache"
	"winsales/internal/models"
)

const lookupTTL = 10 * time.Minute

// settingsPath is the page whose revalidation invalidates catalog lookups.
const settingsPath = "/admin/settings"

func cachedLookup[T any](ctx context.Context, b *base, name string, load func(context.Context) (T, error)) (T, error) {
	if b.Cache == nil || b.Revalidator == nil {
		return load(ctx)
	}
	key := b.Revalidator.Key(ctx, settingsPath, name)
	return cache.GetJSON(ctx, b.Cache, key, lookupTTL, load)
}

func (b *base) activeOperators(ctx context.Context) ([]models.Operator, error) {
	return cachedLookup(ctx, b, "operators:active", func(ctx context.Context) ([]models.Operator, error) {
		return b.Catalog.Operators(ctx, true)
	})
}

func (b *base) plans(ctx context.Context) ([]models.Plan, error) {
	return cachedLookup(ctx, b, "plans", b.Catalog.Plans)
}

func (b *base) referralSources(ctx context.Context) ([]models.ReferralSource, error) {
	return cachedLookup(ctx, b, "referral_sources", b.Catalog.ReferralSources)
}

func (b *base) states(ctx context.Context) ([]models.State, error) {
	return cachedLookup(ctx, b, "states", b.Catalog.States)
}

func (b *base) activeAgencies(ctx context.Context) ([]models.Agency, error) {
	return cachedLookup(ctx, b, "agencies:active", func(ctx context.Context) ([]models.Agency, error) {
		return b.Catalog.Agencies(ctx, true)
	})
}

// leadFormData loads the select options of the lead form.
func (b *base) leadFormData(ctx context.Context, data map[string]interface{}) error {
	sources, err := b.referralSources(ctx)
	if err != nil {
		return err
	}
	operators, err := b.activeOperators(ctx)
	if err != nil {
		return err
	}
	states, err := b.states(ctx)
	if err != nil {
		return err
	}
	data["ReferralSources"] = sources
	data["Operators"] = operators
	data["States"] = states
	data["CurrentOperators"] = models.CurrentOperators
	data["SlotOrder"] = agenda.SlotOrder
	return nil
}

func (b *base) saleFormData(ctx context.Context, data map[string]interface{}) error {
	plans, err := b.plans(ctx)
	if err != nil {
		return err
	}
	operators, err := b.activeOperators(ctx)
	if err != nil {
		return err
	}
	data["Plans"] = plans
	data["Operators"] = operators
	data["AddressTypes"] = models.AddressTypes
	data["Departments"] = models.Departments
	return nil
}
