package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aerium/internal/domain"
)

func TestResolvePrice_Formula(t *testing.T) {
	product := &domain.Product{Price: 10}
	aroma := &domain.Aroma{Price: 2}
	assert.InDelta(t, 36, ResolvePrice(product, 3, aroma, nil), 1e-9)
	assert.InDelta(t, 220, ResolvePrice(&domain.Product{Price: 100}, 2, &domain.Aroma{Price: 10}, nil), 1e-9)
	assert.InDelta(t, 30, ResolvePrice(product, 3, nil, nil), 1e-9)
}

func TestResolvePrice_QuantityDefaultsToOne(t *testing.T) {
	product := &domain.Product{Price: 10}
	assert.InDelta(t, 10, ResolvePrice(product, 0, nil, nil), 1e-9)
	assert.InDelta(t, 10, ResolvePrice(product, -5, nil, nil), 1e-9)
}

func TestResolvePrice_ExplicitPriceTrusted(t *testing.T) {
	product := &domain.Product{Price: 100}
	explicit := 1.0
	// client-supplied price wins, no recomputation
	assert.InDelta(t, 1, ResolvePrice(product, 3, &domain.Aroma{Price: 10}, &explicit), 1e-9)
}
