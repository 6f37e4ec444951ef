package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModulesRepo struct {
	rows      map[string]models.Module
	insertErr error
	listErr   error
}

func newFakeModulesRepo() *fakeModulesRepo {
	return &fakeModulesRepo{rows: map[string]models.Module{}}
}

func (f *fakeModulesRepo) List(context.Context) ([]models.Module, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Module, 0, len(f.rows))
	for _, m := range f.rows {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeModulesRepo) Get(_ context.Context, name string) (*models.Module, error) {
	m, ok := f.rows[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &m, nil
}

func (f *fakeModulesRepo) Insert(_ context.Context, m models.Module) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if _, ok := f.rows[m.Name]; ok {
		return false, nil
	}
	f.rows[m.Name] = m
	return true, nil
}

func TestDefaults_Shape(t *testing.T) {
	mods := Defaults()
	require.Len(t, mods, 13)

	seen := map[string]bool{}
	for i, m := range mods {
		assert.Equal(t, i+1, m.DisplayOrder, "display order of %s", m.Name)
		assert.False(t, seen[m.Name], "duplicate module %s", m.Name)
		seen[m.Name] = true
		assert.True(t, json.Valid(m.DefaultSettings), "settings of %s", m.Name)
	}
	for _, name := range []string{common.ModuleDashboard, common.ModuleSettings, common.ModuleHabits} {
		assert.True(t, seen[name], "missing %s", name)
	}
}

func TestDefaults_DashboardWidgets(t *testing.T) {
	c := New(Defaults())
	d, ok := c.Lookup(common.ModuleDashboard)
	require.True(t, ok)

	var payload struct {
		Widgets []string `json:"widgets"`
	}
	require.NoError(t, json.Unmarshal(d.DefaultSettings, &payload))
	assert.Equal(t, DashboardWidgets, payload.Widgets)
}

func TestSeed_IsIdempotent(t *testing.T) {
	repo := newFakeModulesRepo()
	ctx := context.Background()

	n, err := Seed(ctx, repo, Defaults())
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	n, err = Seed(ctx, repo, Defaults())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, repo.rows, 13)
}

func TestSeed_KeepsExistingRows(t *testing.T) {
	repo := newFakeModulesRepo()
	repo.rows["habits"] = models.Module{Name: "habits", Title: "Renamed", DisplayOrder: 5}

	n, err := Seed(context.Background(), repo, Defaults())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, "Renamed", repo.rows["habits"].Title)
}

func TestSeed_StoreError(t *testing.T) {
	repo := newFakeModulesRepo()
	repo.insertErr = errors.New("boom")

	_, err := Seed(context.Background(), repo, Defaults())
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.insertErr)
}

func TestLoad_OrdersAndCopies(t *testing.T) {
	repo := newFakeModulesRepo()
	_, err := Seed(context.Background(), repo, Defaults())
	require.NoError(t, err)

	c, err := Load(context.Background(), repo)
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 13)
	assert.Equal(t, common.ModuleDashboard, list[0].Name)
	assert.Equal(t, common.ModuleSettings, list[12].Name)

	list[0].Name = "mutated"
	assert.Equal(t, common.ModuleDashboard, c.List()[0].Name)

	_, ok := c.Lookup("nope")
	assert.False(t, ok)
}

func TestLoad_StoreError(t *testing.T) {
	repo := newFakeModulesRepo()
	repo.listErr = errors.New("boom")

	_, err := Load(context.Background(), repo)
	assert.ErrorIs(t, err, repo.listErr)
}
