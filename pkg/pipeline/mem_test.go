package pipeline_test

// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Verify the in-memory store serves the same structure and
// policies as the XML-backed store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/ribforge/pkg/pipeline"
	"github.com/arthur-debert/ribforge/pkg/types"
)

func memFixture() *pipeline.MemStore {
	store := pipeline.NewMemStore()
	store.Add(pipeline.Elem("aqsis", map[string]string{"enabled": "True"},
		pipeline.Elem("command_panels", nil,
			pipeline.Elem("render", map[string]string{"type": "RENDER", "extension": ".sh"},
				pipeline.TextElem("begin", "#!/bin/sh\n"),
				pipeline.TextElem("middle", "render @[EVAL:.target_name:]@\n"),
			),
		),
		pipeline.Elem("utility_panels", nil,
			pipeline.Elem("header", map[string]string{"window": "SCENE", "enabled": "False"}),
		),
	))
	return store
}

func TestMemStoreLookups(t *testing.T) {
	store := memFixture()
	ectx := types.NewContext()
	ectx.TargetName = "P00001_F00001.rib"

	ext, err := store.GetAttribute(ectx, "aqsis/command_panels/render", "extension", false, "")
	require.NoError(t, err)
	assert.Equal(t, ".sh", ext)

	missing, err := store.GetAttribute(ectx, "aqsis/command_panels/render", "ghost", false, "dflt")
	require.NoError(t, err)
	assert.Equal(t, "dflt", missing)

	text, err := store.GetText(ectx, "aqsis/command_panels/render/middle")
	require.NoError(t, err)
	assert.Equal(t, "render P00001_F00001.rib\n", text)

	assert.Equal(t, []string{"begin", "middle"},
		store.ListElements("aqsis/command_panels/render"))
	assert.Equal(t, []string{"aqsis/command_panels/render"},
		store.ListPanels(pipeline.KindCommandPanels, pipeline.Filter{Type: "RENDER"}))
	assert.Empty(t, store.ListPanels(pipeline.KindCommandPanels, pipeline.Filter{Type: "COMPILE"}))

	assert.True(t, store.PanelEnabled(ectx, "aqsis/command_panels/render"))
	assert.False(t, store.PanelEnabled(ectx, "aqsis/utility_panels/header"))
}

func TestMemStoreAddReplacesByName(t *testing.T) {
	store := memFixture()
	store.Add(pipeline.Elem("zz", nil))
	store.Add(pipeline.Elem("aqsis", map[string]string{"enabled": "False"}))

	// Replacement keeps the original listing position.
	assert.Equal(t, []string{"aqsis", "zz"}, store.ListPipelines())

	ectx := types.NewContext()
	enabled, err := store.GetAttribute(ectx, "aqsis", "enabled", false, "")
	require.NoError(t, err)
	assert.Equal(t, "False", enabled)
}
