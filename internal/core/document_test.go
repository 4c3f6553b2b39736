package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modlet-tools/internal/types"
)

func TestParseDocumentStructure(t *testing.T) {
	doc := mustParse(t, `
<recipes>
  <recipe name="gunPistol" count="1">
    <ingredient name="forgedIron" count="10"/>
    <ingredient name="spring" count="2"/>
  </recipe>
</recipes>`)

	rootChildren := doc.Children(types.DocumentRoot)
	require.Len(t, rootChildren, 1)
	root, ok := doc.Node(rootChildren[0])
	require.True(t, ok)
	assert.Equal(t, "recipes", root.Tag)

	recipes := doc.Children(root.ID)
	require.Len(t, recipes, 1)
	recipe, ok := doc.Node(recipes[0])
	require.True(t, ok)
	assert.Equal(t, "recipe", recipe.Tag)
	wantAttrs := []types.Attr{{Name: "name", Value: "gunPistol"}, {Name: "count", Value: "1"}}
	if diff := cmp.Diff(wantAttrs, recipe.Attrs); diff != "" {
		t.Fatalf("unexpected attributes (-want +got):\n%s", diff)
	}
	assert.Len(t, doc.Children(recipe.ID), 2)
}

func TestParseDocumentText(t *testing.T) {
	doc := mustParse(t, `<root><note>hello world</note></root>`)
	note := Resolve(doc, mustPath(t, "/root/note"))
	require.Len(t, note, 1)
	view, _ := doc.Node(note[0])
	assert.Equal(t, "hello world", view.Text)
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", `<root><unclosed></root>`},
		{"empty", ``},
		{"two roots", `<a/><b/>`},
		{"text only", `just text`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}

// Serialization is a fixed point: once normalized, a document re-parses and
// re-serializes to identical bytes, which implies tags, attributes, values
// and child order all survive the round trip.
func TestSerializeRoundTrip(t *testing.T) {
	raw := `
<items>
  <item id="a" active="true">
    <property name="Weight" value="12"/>
    <property name="Price" value="7"/>
  </item>
  <item id="b"><note>keep &amp; hold</note></item>
</items>`
	first, err := mustParse(t, raw).Serialize()
	require.NoError(t, err)
	second, err := mustParse(t, string(first)).Serialize()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.True(t, strings.Contains(string(first), `<property name="Weight" value="12"/>`))
	assert.True(t, strings.Contains(string(first), "keep &amp; hold"))
}

func TestSerializeEscapesAttributes(t *testing.T) {
	doc := mustParse(t, `<root><item label="a &lt; b &quot;q&quot;"/></root>`)
	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), `label="a &lt; b &quot;q&quot;"`)
}

func TestInsertChildAt(t *testing.T) {
	doc := mustParse(t, `<root><item id="a"/><item id="c"/></root>`)
	root := doc.Children(types.DocumentRoot)[0]
	frag, err := ParseFragment([]byte(`<item id="b"/>`))
	require.NoError(t, err)

	require.NoError(t, doc.InsertChildAt(root, 1, frag))
	var ids []string
	for _, child := range doc.Children(root) {
		ids = append(ids, attrOf(t, doc, child, "id"))
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestInsertChildAtErrors(t *testing.T) {
	doc := mustParse(t, `<root><item/></root>`)
	root := doc.Children(types.DocumentRoot)[0]
	frag, err := ParseFragment([]byte(`<new/>`))
	require.NoError(t, err)

	err = doc.InsertChildAt(root, 5, frag)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = doc.InsertChildAt(types.NodeID(999), 0, frag)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestInsertFragmentWithSiblings(t *testing.T) {
	doc := mustParse(t, `<root><anchor/></root>`)
	root := doc.Children(types.DocumentRoot)[0]
	frag, err := ParseFragment([]byte(`<one/><two/>`))
	require.NoError(t, err)

	require.NoError(t, doc.AppendChild(root, frag))
	children := doc.Children(root)
	require.Len(t, children, 3)
	second, _ := doc.Node(children[1])
	third, _ := doc.Node(children[2])
	assert.Equal(t, "one", second.Tag)
	assert.Equal(t, "two", third.Tag)
}

func TestRemoveNodeLeavesTombstone(t *testing.T) {
	doc := mustParse(t, `<root><item id="a"/><item id="b"/></root>`)
	root := doc.Children(types.DocumentRoot)[0]
	first := doc.Children(root)[0]

	require.NoError(t, doc.RemoveNode(first))
	assert.True(t, doc.Removed(first))
	require.Len(t, doc.Children(root), 1)
	assert.Equal(t, "b", attrOf(t, doc, doc.Children(root)[0], "id"))

	// the tombstone keeps its identity and is still viewable
	view, ok := doc.Node(first)
	require.True(t, ok)
	assert.Equal(t, "item", view.Tag)

	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.NotContains(t, string(out), `id="a"`)
}

func TestRemoveRootIsError(t *testing.T) {
	doc := mustParse(t, `<root><item/></root>`)
	root := doc.Children(types.DocumentRoot)[0]

	err := doc.RemoveNode(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document root")

	err = doc.RemoveNode(types.DocumentRoot)
	require.Error(t, err)
}

func TestRemoveNodeTwiceIsError(t *testing.T) {
	doc := mustParse(t, `<root><item/></root>`)
	item := Resolve(doc, mustPath(t, "/root/item"))[0]
	require.NoError(t, doc.RemoveNode(item))
	err := doc.RemoveNode(item)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already removed")
}

func TestSetAttrCreatesAndOverwrites(t *testing.T) {
	doc := mustParse(t, `<root><item id="a"/></root>`)
	item := Resolve(doc, mustPath(t, "/root/item"))[0]

	require.NoError(t, doc.SetAttr(item, "active", "true"))
	require.NoError(t, doc.SetAttr(item, "id", "z"))
	view, _ := doc.Node(item)
	want := []types.Attr{{Name: "id", Value: "z"}, {Name: "active", Value: "true"}}
	if diff := cmp.Diff(want, view.Attrs); diff != "" {
		t.Fatalf("unexpected attributes (-want +got):\n%s", diff)
	}

	err := doc.SetAttr(item, "  ", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestRemoveAttr(t *testing.T) {
	doc := mustParse(t, `<root><item id="a" active="true"/></root>`)
	item := Resolve(doc, mustPath(t, "/root/item"))[0]

	require.NoError(t, doc.RemoveAttr(item, "active"))
	view, _ := doc.Node(item)
	assert.Equal(t, []types.Attr{{Name: "id", Value: "a"}}, view.Attrs)

	// absent attribute is not an error
	require.NoError(t, doc.RemoveAttr(item, "missing"))
}

func TestMutatingRemovedNodeIsError(t *testing.T) {
	doc := mustParse(t, `<root><item/></root>`)
	item := Resolve(doc, mustPath(t, "/root/item"))[0]
	require.NoError(t, doc.RemoveNode(item))

	require.Error(t, doc.SetAttr(item, "a", "1"))
	require.Error(t, doc.SetText(item, "x"))
}
