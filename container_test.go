// container_test.go: tests for the two-generation container shim
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type treeService struct{ name string }

type panickingContainer struct{}

func (panickingContainer) Get(id string) (any, error) { panic("container not booted") }

func newTestShim(t *testing.T, version string) (*ContainerShim, *MapContainer, *MapContainer) {
	t.Helper()
	modern := NewMapContainer()
	legacy := NewMapContainer()
	modern.Set("tree", &treeService{name: "modern"})
	legacy.Set("tree", &treeService{name: "legacy"})

	shim, err := NewContainerShim(version, modern, legacy.Resolver(), nil)
	require.NoError(t, err)
	return shim, modern, legacy
}

func TestContainerShim_GenerationSelection(t *testing.T) {
	tests := []struct {
		version    string
		wantModern bool
		wantName   string
	}{
		{"2.1.20", false, "legacy"},
		{"2.1.99", false, "legacy"},
		{"2.2.0-beta.1", false, "legacy"},
		{"2.2.0", true, "modern"},
		{"2.2.1", true, "modern"},
		{"3.0.0", true, "modern"},
		{"v2.2", true, "modern"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			shim, _, _ := newTestShim(t, tt.version)
			assert.Equal(t, tt.wantModern, shim.UsesModernContainer())

			service, ok := shim.GetFromContainer("tree").(*treeService)
			require.True(t, ok)
			assert.Equal(t, tt.wantName, service.name)
		})
	}
}

func TestContainerShim_InvalidHostVersion(t *testing.T) {
	shim, err := NewContainerShim("not-a-version", NewMapContainer(), nil, nil)
	assert.Nil(t, shim)
	require.Error(t, err)
	assert.True(t, hasErrorCode(err, ErrCodeInvalidHostVersion))
}

func TestContainerShim_MissingServiceReturnsNil(t *testing.T) {
	logger := NewTestLogger()
	shim, err := NewContainerShim("2.2.0", NewMapContainer(), nil, logger)
	require.NoError(t, err)

	assert.Nil(t, shim.GetFromContainer("missing"))
	assert.False(t, shim.ContainerHas("missing"))
	assert.True(t, logger.HasMessage("DEBUG", "Container lookup failed"))

	_, err = shim.Lookup("missing")
	assert.True(t, hasErrorCode(err, ErrCodeServiceNotFound))
}

func TestContainerShim_MissingGeneration(t *testing.T) {
	modernOnly, err := NewContainerShim("2.1.0", NewMapContainer(), nil, nil)
	require.NoError(t, err)
	_, err = modernOnly.Lookup("tree")
	assert.True(t, hasErrorCode(err, ErrCodeContainerUnavailable))
	assert.Nil(t, modernOnly.GetFromContainer("tree"))

	legacyOnly, err := NewContainerShim("2.2.0", nil, NewMapContainer().Resolver(), nil)
	require.NoError(t, err)
	_, err = legacyOnly.Lookup("tree")
	assert.True(t, hasErrorCode(err, ErrCodeContainerUnavailable))
}

func TestContainerShim_PanicAndNilResults(t *testing.T) {
	shim, err := NewContainerShim("2.2.0", panickingContainer{}, nil, nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		assert.Nil(t, shim.GetFromContainer("tree"))
	})

	nilResolver := func(id string) (any, error) { return nil, nil }
	legacy, err := NewContainerShim("2.0.0", nil, nilResolver, nil)
	require.NoError(t, err)
	assert.False(t, legacy.ContainerHas("tree"))

	failing := func(id string) (any, error) { return nil, fmt.Errorf("unknown binding %s", id) }
	legacy, err = NewContainerShim("2.0.0", nil, failing, nil)
	require.NoError(t, err)
	_, err = legacy.Lookup("tree")
	assert.True(t, hasErrorCode(err, ErrCodeServiceNotFound))
}

func TestResolve_Typed(t *testing.T) {
	shim, modern, _ := newTestShim(t, "2.2.0")
	modern.Set("answer", 42)

	tree, ok := Resolve[*treeService](shim, "tree")
	require.True(t, ok)
	assert.Equal(t, "modern", tree.name)

	n, ok := Resolve[int](shim, "answer")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = Resolve[string](shim, "answer")
	assert.False(t, ok, "wrong type must not resolve")

	_, ok = Resolve[*treeService](shim, "missing")
	assert.False(t, ok)
}

func TestMapContainer_Concurrent(t *testing.T) {
	container := NewMapContainer()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("svc-%d", i)
			container.Set(id, i)
			v, err := container.Get(id)
			assert.NoError(t, err)
			assert.Equal(t, i, v)
		}(i)
	}
	wg.Wait()
}
