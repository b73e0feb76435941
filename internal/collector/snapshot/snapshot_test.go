package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmigration/widcollector/internal/collector"
	"netmigration/widcollector/internal/normalize"
	"netmigration/widcollector/internal/record"
	"netmigration/widcollector/pkg/errors"
)

var testMappings = []normalize.Mapping{
	{Label: "SITIO DEL CLIENTE", Field: record.FieldClientSite},
	{Label: "ANCHO DE BANDA - INT", Field: record.FieldBandwidth},
	{Label: "ANILLO METH", Field: record.FieldRingName},
	{Label: "VLAN BVI - INT", Field: record.FieldBVIVLAN},
}

func detailPage(site, ring string) []byte {
	return []byte(`<html><body><table>
<tr><td>SITIO DEL CLIENTE</td><td>` + site + `</td></tr>
<tr><td>ANCHO DE BANDA - INT</td><td>10 Mbps</td></tr>
<tr><td>VLAN BVI - INT</td><td>250</td></tr>
<tr><td>ANILLO METH</td><td>` + ring + `</td></tr>
</table></body></html>`)
}

func newTestCollector(t *testing.T) (*Collector, string) {
	t.Helper()
	dataDir := t.TempDir()
	c := New(Options{
		Source:     "WID",
		DataDir:    dataDir,
		Normalizer: normalize.MustNew(testMappings),
	})
	return c, dataDir
}

func TestWriteIsAtomicAndScoped(t *testing.T) {
	dataDir := t.TempDir()

	path, err := Write(dataDir, "WID", "1234567", detailPage("Buenos Aires", "ME-BHBA_0015"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "wid", "1234567.html"), path)

	entries, err := os.ReadDir(filepath.Join(dataDir, "wid"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not remain")

	for _, bad := range []string{"", "../escape", "a/b", ".hidden"} {
		_, err := Write(dataDir, "WID", bad, []byte("x"))
		assert.Error(t, err, bad)
	}

	data, err := Read(dataDir, "WID", "1234567")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Buenos Aires")
}

func TestConnectRequiresDirectory(t *testing.T) {
	c, dataDir := newTestCollector(t)

	err := c.Connect(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConnection))
	assert.False(t, c.IsConnected())

	require.NoError(t, os.MkdirAll(Dir(dataDir, "WID"), 0o755))
	assert.NoError(t, c.Connect(context.Background()))
	assert.NoError(t, c.Connect(context.Background()))
	assert.True(t, c.IsConnected())
}

func TestSearchByService(t *testing.T) {
	c, dataDir := newTestCollector(t)
	_, err := Write(dataDir, "WID", "1234567", detailPage("Buenos Aires", "ME-BHBA_0015"))
	require.NoError(t, err)

	ctx := context.Background()
	_, _, err = c.SearchByService(ctx, "1234567")
	assert.True(t, errors.IsNotConnected(err))

	err = collector.WithSession(ctx, c, func(ctx context.Context, c collector.Collector) error {
		rec, found, err := c.SearchByService(ctx, " 1234567 ")
		require.NoError(t, err)
		require.True(t, found)

		assert.Equal(t, "1234567", rec.ServiceID)
		assert.Equal(t, "WID", rec.SourceSystem)
		assert.Equal(t, "Buenos Aires", *rec.ClientSite)
		assert.Equal(t, 10, *rec.Bandwidth)
		assert.Equal(t, 250, *rec.BVIVLAN)
		assert.WithinDuration(t, time.Now(), rec.CollectedAt, time.Minute)

		rec, found, err = c.SearchByService(ctx, "7654321")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, rec)

		_, _, err = c.SearchByService(ctx, "../etc/passwd")
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, c.IsConnected())
}

func TestSearchByGroup(t *testing.T) {
	c, dataDir := newTestCollector(t)
	for id, ring := range map[string]string{
		"300": "ME-BHBA_0015",
		"100": "me-bhba_0015 ",
		"200": "ME-CORD_0002",
	} {
		_, err := Write(dataDir, "WID", id, detailPage("Site "+id, ring))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(Dir(dataDir, "WID"), "999.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(Dir(dataDir, "WID"), "notes.txt"), []byte("x"), 0o644))

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))
	defer c.Disconnect()

	recs, err := c.SearchByGroup(ctx, "ME-BHBA_0015")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "100", recs[0].ServiceID)
	assert.Equal(t, "300", recs[1].ServiceID)

	recs, err = c.SearchByGroup(ctx, "ME-NONE_0000")
	assert.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)

	ids, err := c.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "200", "300", "999"}, ids)
}

func TestSearchByGroupRequiresConnection(t *testing.T) {
	c, _ := newTestCollector(t)
	_, err := c.SearchByGroup(context.Background(), "ME-BHBA_0015")
	assert.True(t, errors.IsNotConnected(err))
}

func TestDisconnectNeverConnected(t *testing.T) {
	c, _ := newTestCollector(t)
	assert.NoError(t, c.Disconnect())
	assert.False(t, c.IsConnected())
}
