package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/config"
	"github.com/diybuddy/projectbuddy/pkg/event"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer event.Flush()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useLocalSlot(t *testing.T) {
	t.Helper()
	require.NoError(t, config.Load())
	config.Set("STORAGE_LOCAL_ROOT", t.TempDir())
	t.Cleanup(func() { config.Set("STORAGE_LOCAL_ROOT", "") })
}

func TestBasketLifecycle(t *testing.T) {
	useLocalSlot(t)

	out, err := run(t, "--driver", "local", "basket:show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your basket is empty.")

	out, err = run(t, "--driver", "local", "basket:create", "floating-shelf")
	require.NoError(t, err)
	assert.Contains(t, out, "Project basket created!: Added 5 required items to your basket.")
	assert.Contains(t, out, "$152.45")
	assert.Contains(t, out, "FREE")
	assert.Contains(t, out, "$164.65")

	out, err = run(t, "--driver", "local", "basket:show")
	require.NoError(t, err)
	assert.Contains(t, out, "Subtotal (5 items)")
	assert.Contains(t, out, "Last saved")

	out, err = run(t, "--driver", "local", "basket:set", "2", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "$178.43")

	out, err = run(t, "--driver", "local", "basket:remove", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Product removed")
	assert.NotContains(t, out, "DEWALT")

	out, err = run(t, "--driver", "local", "basket:checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "Checkout successful!")

	out, err = run(t, "--driver", "local", "basket:show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your basket is empty.")
}

func TestBasketSetRejectsBadQuantity(t *testing.T) {
	_, err := run(t, "--driver", "memory", "basket:set", "2", "two")
	assert.Error(t, err)

	_, err = run(t, "--driver", "memory", "basket:set", "2", "1000")
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)

	_, err = run(t, "--driver", "memory", "basket:set", "2", "-1")
	assert.Error(t, err)
}

func TestBasketCreateUnknownProject(t *testing.T) {
	_, err := run(t, "--driver", "memory", "basket:create", "bird-house")
	assert.Error(t, err)
}

func TestCatalogList(t *testing.T) {
	out, err := run(t, "catalog:list")
	require.NoError(t, err)
	assert.Contains(t, out, "Building a Floating Shelf")
	assert.Contains(t, out, "estimated cost $152.45")
	assert.Contains(t, out, "out of stock")
	assert.Contains(t, out, "RECOMMENDED")
}

func TestRouteList(t *testing.T) {
	out, err := run(t, "route:list")
	require.NoError(t, err)
	assert.Contains(t, out, "/api/basket/checkout")
	assert.Contains(t, out, "notices.stream")
}

func TestPrintBasketAtFreeShippingThreshold(t *testing.T) {
	items := []models.Product{
		{ID: "a", Name: "Dowels", Price: 0.1, Quantity: 3},
		{ID: "b", Name: "Plank", Price: 49.7, Quantity: 1},
	}

	var out bytes.Buffer
	require.NoError(t, printBasket(&out, items, services.DefaultPricing()))

	assert.Contains(t, out.String(), "$0.30")
	assert.Contains(t, out.String(), "Subtotal (2 items)")
	assert.Contains(t, out.String(), "$9.99")
	assert.Contains(t, out.String(), "free on orders over $50.00")
	assert.NotContains(t, out.String(), "$0.00")
}
