package records

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func karnatakaTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ka", "config.json"), `{
		"name": "Karnataka",
		"stateCode": "KA",
		"districtMapping": {"Ballari": "ballari", "Vijayanagara": "ballari", "Bengaluru Urban": "bengaluru-urban"},
		"svgDistrictIds": ["ballari", "bengaluru-urban", "kodagu"],
		"boundaryAliases": {"Bellary": "Ballari"}
	}`)
	writeFile(t, filepath.Join(root, "ka", "ka-34.json"), `{"code":"KA-34","region":"Ballari","district":"Ballari","isDistrictHeadquarter":true}`)
	writeFile(t, filepath.Join(root, "ka", "ka-35.json"), `{"code":"KA-35","region":"Hosapete","district":"Vijayanagara","isDistrictHeadquarter":true}`)
	writeFile(t, filepath.Join(root, "ka", "ka-99.json"), `{"region":"Old Office","district":"Ballari","status":"discontinued"}`)
	writeFile(t, filepath.Join(root, "ka", "README.md"), "not a record")
	writeFile(t, filepath.Join(root, "scratch", "notes.json"), `{}`)
	return root
}

func TestOpenFileStore(t *testing.T) {
	ctx := context.Background()
	fs, err := OpenFileStore(karnatakaTree(t))
	require.NoError(t, err)

	states, err := fs.States(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "KA", states[0].Code)

	for _, key := range []string{"Karnataka", "karnataka", "KA", "ka"} {
		c, ok, err := fs.StateConfig(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
		assert.Equal(t, "Karnataka", c.Name)
	}

	rtos, err := fs.ListRTOs(ctx, "KA")
	require.NoError(t, err)
	require.Len(t, rtos, 3)
	assert.Equal(t, []string{"KA-34", "KA-35", "KA-99"}, []string{rtos[0].Code, rtos[1].Code, rtos[2].Code})
	assert.Equal(t, "Karnataka", rtos[0].State)
	assert.Equal(t, "KA", rtos[2].StateCode)
	assert.True(t, rtos[2].Inactive())
	assert.Equal(t, StatusActive, rtos[0].EffectiveStatus())

	all, err := fs.ListRTOs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	m, err := fs.DistrictMapping(ctx, "Karnataka")
	require.NoError(t, err)
	assert.Equal(t, "ballari", m["Vijayanagara"])
	m["Vijayanagara"] = "mutated"
	m2, _ := fs.DistrictMapping(ctx, "Karnataka")
	assert.Equal(t, "ballari", m2["Vijayanagara"])

	ids, err := fs.ValidSVGDistrictIDs(ctx, "KA")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ballari", "bengaluru-urban", "kodagu"}, ids)
}

func TestFileStoreUnknownState(t *testing.T) {
	ctx := context.Background()
	fs, err := OpenFileStore(karnatakaTree(t))
	require.NoError(t, err)

	_, ok, err := fs.StateConfig(ctx, "Atlantis")
	require.NoError(t, err)
	assert.False(t, ok)
	rtos, err := fs.ListRTOs(ctx, "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, rtos)
	m, err := fs.DistrictMapping(ctx, "Atlantis")
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestOpenFileStoreBadJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ka", "config.json"), `{"name":"Karnataka"`)
	_, err := OpenFileStore(root)
	assert.Error(t, err)

	_, err = OpenFileStore(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestInState(t *testing.T) {
	r := RTO{Code: "KA-34"}
	assert.True(t, r.InState("ka"))
	assert.False(t, r.InState("MH"))
	assert.False(t, r.InState(""))
	assert.True(t, RTO{Code: "X", State: "Goa"}.InState("goa"))
}

func TestDynamicSwap(t *testing.T) {
	ctx := context.Background()
	var d Dynamic
	states, err := d.States(ctx)
	require.NoError(t, err)
	assert.Empty(t, states)
	m, err := d.DistrictMapping(ctx, "KA")
	require.NoError(t, err)
	assert.NotNil(t, m)

	fs, err := OpenFileStore(karnatakaTree(t))
	require.NoError(t, err)
	d.Set(fs)
	d.Set(nil)
	rtos, err := d.ListRTOs(ctx, "KA")
	require.NoError(t, err)
	assert.Len(t, rtos, 3)
	_, ok, err := d.StateConfig(ctx, "Karnataka")
	require.NoError(t, err)
	assert.True(t, ok)
	ids, err := d.ValidSVGDistrictIDs(ctx, "KA")
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}
