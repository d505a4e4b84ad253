package xmlreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<scxml xmlns="http://www.w3.org/2005/07/scxml" initial="a">
	<state id="a">
		<onentry><log label="hi" expr="1"/></onentry>
	</state>
	<state id="b"/>
</scxml>`

func TestReadString_RootAndChildren(t *testing.T) {
	doc, err := ReadString("test.scxml", sample)
	require.NoError(t, err)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "a", Attr(root, "initial"))

	states := FindAllChildren(root, "state")
	require.Len(t, states, 2)
	assert.Equal(t, "a", Attr(states[0], "id"))
	assert.Equal(t, "b", Attr(states[1], "id"))

	first := FindFirstChild(root, "state")
	require.NotNil(t, first)
	assert.Equal(t, "a", Attr(first, "id"))
}

func TestReadString_NestedElementAndText(t *testing.T) {
	doc, err := ReadString("test.scxml", sample)
	require.NoError(t, err)

	root := doc.Root()
	state := FindFirstChild(root, "state")
	onentry := FindFirstChild(state, "onentry")
	require.NotNil(t, onentry)

	logEl := FindFirstChild(onentry, "log")
	require.NotNil(t, logEl)
	assert.Equal(t, "hi", Attr(logEl, "label"))
}

func TestReadString_MalformedXML(t *testing.T) {
	_, err := ReadString("bad.scxml", "<scxml><state>")
	assert.Error(t, err)
}

func TestFindAllChildren_EmptyWhenAbsent(t *testing.T) {
	doc, err := ReadString("test.scxml", sample)
	require.NoError(t, err)
	root := doc.Root()
	assert.Empty(t, FindAllChildren(root, "parallel"))
	assert.Nil(t, FindFirstChild(root, "parallel"))
}
