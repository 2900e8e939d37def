package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-admin-service/internal/category"
	"github.com/fekuna/omnipos-admin-service/internal/changefeed"
	"github.com/fekuna/omnipos-admin-service/internal/importer"
	"github.com/fekuna/omnipos-admin-service/internal/product"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

func TestResolveImportFormat(t *testing.T) {
	f, err := resolveImportFormat("rows.CSV", "")
	require.NoError(t, err)
	assert.Equal(t, importer.FormatCSV, f)

	f, err = resolveImportFormat("rows.txt", "json")
	require.NoError(t, err)
	assert.Equal(t, importer.FormatJSON, f)

	_, err = resolveImportFormat("rows.txt", "")
	assert.ErrorIs(t, err, importer.ErrUnknownFormat)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("", 0)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseDate("2024-03-01", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), *d)

	_, err = parseDate("01/03/2024", 0)
	assert.Error(t, err)
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, ":8080", normalizePort("8080"))
	assert.Equal(t, ":8080", normalizePort(":8080"))
	assert.Equal(t, "127.0.0.1:8080", normalizePort("127.0.0.1:8080"))
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "import", "export"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	cmd, _, err := root.Find([]string{"export", "orders"})
	require.NoError(t, err)
	assert.Equal(t, "orders", cmd.Name())
}

type countingCategories struct {
	category.UseCase
	trees int
}

func (c *countingCategories) InvalidateTree(context.Context) error {
	c.trees++
	return nil
}

type countingProducts struct {
	product.UseCase
	lists int
}

func (p *countingProducts) InvalidateListCache(context.Context) error {
	p.lists++
	return nil
}

func TestSubscribeInvalidation(t *testing.T) {
	cats := &countingCategories{}
	prods := &countingProducts{}
	l := changefeed.NewListener(nil, logger.NewNop())
	subscribeInvalidation(l, cats, prods)

	dispatch := func(table string) {
		b, err := json.Marshal(changefeed.ChangeEvent{Table: table, Type: changefeed.Update, ID: "x"})
		require.NoError(t, err)
		l.Dispatch(context.Background(), b)
	}

	dispatch(changefeed.TableCategories)
	assert.Equal(t, 1, cats.trees)
	assert.Equal(t, 1, prods.lists, "product lists embed category names")

	dispatch(changefeed.TableProducts)
	dispatch(changefeed.TableProductImages)
	dispatch(changefeed.TableOrders)
	assert.Equal(t, 1, cats.trees)
	assert.Equal(t, 3, prods.lists)
}
