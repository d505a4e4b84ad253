package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scxmlc/frontend/model"
)

func TestDetect_EventMetadataInGuard(t *testing.T) {
	m := model.New("doc")
	s := &model.State{ID: "a", Transitions: []model.Transition{
		{Event: "e", Target: "a", Cond: "_event.sendid == 'x'"},
	}}
	m.AddState(s)

	summary := Detect(m)

	assert.True(t, summary.HasEventMetadata)
	assert.True(t, summary.NeedsJSEngine)
	require.True(t, m.EventMetadataFields["_event.sendid"])
	assert.False(t, m.EventMetadataFields["_event.origin"])
}

func TestDetect_NoEventMetadata(t *testing.T) {
	m := model.New("doc")
	s := &model.State{ID: "a", Transitions: []model.Transition{
		{Event: "e", Target: "a", Cond: "x > 1"},
	}}
	m.AddState(s)

	summary := Detect(m)
	assert.False(t, summary.HasEventMetadata)
	assert.Empty(t, m.EventMetadataFields)
}

func TestDetect_SummaryMirrorsFlags(t *testing.T) {
	m := model.New("doc")
	m.HasParallelStates = true
	m.HasInvoke = true
	m.NeedsJSEngine = true

	summary := Detect(m)
	assert.True(t, summary.HasParallelStates)
	assert.True(t, summary.HasInvoke)
	assert.True(t, summary.NeedsJSEngine)
}
