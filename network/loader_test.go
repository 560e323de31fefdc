package network_test

import (
	"encoding/xml"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redlane-ems/altroute/network"
)

const sampleNet = `<?xml version="1.0"?>
<net>
  <junction id="A" x="0" y="0" type="priority"/>
  <junction id="B" x="100" y="0" type="priority"/>
  <junction id="C" x="200" y="0" type="traffic_light"/>
  <junction id="internal_0" x="50" y="0" type="internal"/>
  <edge id="AB" from="A" to="B" function="normal">
    <lane length="100" speed="10"/>
  </edge>
  <edge id="BC" from="B" to="C" function="normal">
    <lane length="140" speed="20"/>
    <lane length="140" speed="20"/>
  </edge>
  <edge id=":internal_0_0" from="A" to="internal_0" function="internal">
    <lane length="10" speed="10"/>
  </edge>
  <edge id="dangling" from="B" to="nowhere" function="normal">
    <lane length="10" speed="10"/>
  </edge>
  <edge id="nolanes" from="A" to="C" function="normal"/>
</net>`

func loadFrom(t *testing.T, xmlText string) *network.LoadResult {
	t.Helper()
	path := t.TempDir() + "/net.xml"
	require.NoError(t, os.WriteFile(path, []byte(xmlText), 0o644))
	res, err := network.LoadTopology(path)
	require.NoError(t, err)

	return res
}

func TestLoadTopology_FiltersInternalAndConnector(t *testing.T) {
	res := loadFrom(t, sampleNet)
	g := res.Graph

	assert.True(t, g.HasNode("A"))
	assert.True(t, g.HasNode("B"))
	assert.True(t, g.HasNode("C"))
	assert.False(t, g.HasNode("internal_0"), "internal junction must be filtered")
	assert.False(t, g.HasEdge("dangling"), "dangling edge must be dropped silently")
}

func TestLoadTopology_AveragesLanes(t *testing.T) {
	res := loadFrom(t, sampleNet)
	e, err := res.Graph.Edge("BC")
	require.NoError(t, err)
	assert.InDelta(t, 140.0, e.AvgLength, 1e-9)
	assert.InDelta(t, 20.0, e.AvgSpeed, 1e-9)
	assert.InDelta(t, 7.0, e.BaseTime, 1e-9)
}

func TestLoadTopology_SkipsNoLaneEdge(t *testing.T) {
	res := loadFrom(t, sampleNet)
	assert.GreaterOrEqual(t, res.Skipped, 1)
	assert.False(t, res.Graph.HasEdge("nolanes"))
}

func TestLoadTopology_MissingFile(t *testing.T) {
	_, err := network.LoadTopology("/nonexistent/path/net.xml")
	require.Error(t, err)
}

func TestLoadTopology_MinAvgSpeedFloor(t *testing.T) {
	doc := `<net>
  <junction id="A" x="0" y="0" type="priority"/>
  <junction id="B" x="1" y="0" type="priority"/>
  <edge id="AB" from="A" to="B" function="normal"><lane length="1" speed="0"/></edge>
</net>`
	res := loadFrom(t, doc)
	e, err := res.Graph.Edge("AB")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, e.AvgSpeed, network.MinAvgSpeed)
}

func TestLoadTopology_ReaderParsesPlainString(t *testing.T) {
	// sanity: the sample fixture itself must be valid XML.
	assert.True(t, strings.Contains(sampleNet, "<net>"))
	var doc struct {
		XMLName xml.Name `xml:"net"`
	}
	require.NoError(t, xml.NewDecoder(strings.NewReader(sampleNet)).Decode(&doc))
}
