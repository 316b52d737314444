package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCommand(t *testing.T) {
	catalog := "properties:\n" +
		"  - name: Alpha\n    type: float32\n    size: 4\n    module: 7\n    flags: [serialize]\n" +
		"  - name: Beta\n    type: int64\n    size: 8\n    module: 7\n" +
		"  - name: Gamma\n    type: bool\n    size: 1\n    module: 9\n"

	tests := []struct {
		name        string
		args        []string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "demo catalog",
			wantContain: []string{"CoolingRate", "RegionList", "5 properties in 4 modules"},
		},
		{
			name:        "file catalog",
			args:        []string{"CATALOG"},
			wantContain: []string{"Alpha", "Beta", "Gamma", "serialize", "3 properties in 2 modules"},
		},
		{
			name:        "json",
			args:        []string{"CATALOG"},
			json:        true,
			wantContain: []string{`"name": "Alpha"`},
		},
		{
			name:    "missing catalog",
			args:    []string{"/nonexistent.yaml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			jsonOut = tt.json

			args := tt.args
			if len(args) == 1 && args[0] == "CATALOG" {
				args = []string{writeCatalog(t, catalog)}
			}
			output, err := captureOutput(t, func() error { return runRegistry(args) })
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)
			if tt.json {
				var report registryReport
				assertJSON(t, output, &report)
				require.Len(t, report.Properties, 3)
				assert.Equal(t, []int32{0, 1}, report.Modules[7])
				assert.Equal(t, []int32{2}, report.Modules[9])
			}
		})
	}
}

func TestGrowCommand(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	growCount = 300
	growCatalog = ""
	t.Cleanup(func() { growCount = 1000 })

	output, err := captureOutput(t, func() error { return runGrow(nil) })
	require.NoError(t, err)

	var report growReport
	assertJSON(t, output, &report)
	assert.Equal(t, 300, report.Count)
	assert.Equal(t, 384, report.FinalCap)
	assert.Equal(t, 2, report.Grows)
	assert.Equal(t, []growStep{{Len: 1, Cap: 256}, {Len: 257, Cap: 384}}, report.Steps)
	// Every element plus nothing else: the temporaries are freed.
	assert.Equal(t, 300, report.LiveStores)
}

func TestGrowCommandLimit(t *testing.T) {
	resetFlags(t)
	cfg.Array.GrowthFloor = 4
	cfg.Array.MaxCapacity = 6
	growCount = 10
	t.Cleanup(func() { growCount = 1000 })

	_, err := captureOutput(t, func() error { return runGrow(nil) })
	require.Error(t, err)
}

func TestChurnCommand(t *testing.T) {
	for _, direct := range []bool{false, true} {
		name := "pool"
		if direct {
			name = "direct"
		}
		t.Run(name, func(t *testing.T) {
			resetFlags(t)
			jsonOut = true
			cfg.Pool.InitialCapacity = 16
			cfg.Pool.BlockSize = 16
			churnOps = 2000
			churnLive = 50
			churnSeed = 7
			churnDirect = direct
			t.Cleanup(func() {
				churnOps, churnLive, churnSeed, churnDirect = 100000, 1000, 1, false
			})

			output, err := captureOutput(t, func() error { return runChurn(nil) })
			require.NoError(t, err)

			var report churnReport
			assertJSON(t, output, &report)
			assert.Equal(t, name, report.Mode)
			assert.Equal(t, report.Allocs, report.Releases)
			assert.Positive(t, report.Allocs)
			if direct {
				assert.Nil(t, report.Pool)
				return
			}
			require.NotNil(t, report.Pool)
			assert.Zero(t, report.Pool.Used)
			assert.LessOrEqual(t, report.Pool.Peak, 50)
			assert.Equal(t, report.Pool.Capacity, report.Pool.FreeLen)
			assert.Equal(t, float64(report.Allocs), report.Metrics["galkit_pool_allocations_total"])
			assert.Equal(t, float64(5), report.Metrics["galkit_registry_live_properties"])
		})
	}
}

func TestColumnsCommand(t *testing.T) {
	resetFlags(t)
	out := filepath.Join(t.TempDir(), "galaxies.gkc")
	columnsCount = 20
	columnsOut = out
	columnsRead = ""
	t.Cleanup(func() { columnsCount, columnsOut, columnsRead = 100, "", "" })

	output, err := captureOutput(t, func() error { return runColumns(nil) })
	require.NoError(t, err)
	assertContains(t, output, []string{"CoolingRate", "QuasarActive", "ColdGas", "SfrDisk", "restored 20 records"})
	assert.NotContains(t, output, "RegionList")

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// Read it back.
	columnsOut = ""
	columnsRead = out
	jsonOut = true
	output, err = captureOutput(t, func() error { return runColumns(nil) })
	require.NoError(t, err)

	var report columnsReport
	assertJSON(t, output, &report)
	require.Len(t, report.Columns, 7)
	for _, c := range report.Columns {
		assert.Equal(t, 20, c.Rows, c.Name)
	}
	assert.Equal(t, int(info.Size()), report.Compressed)
}

func TestColumnsCommandCorrupt(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "bad.gkc")
	require.NoError(t, os.WriteFile(path, []byte("not a column stream"), 0o644))
	columnsRead = path
	t.Cleanup(func() { columnsRead = "" })

	_, err := captureOutput(t, func() error { return runColumns(nil) })
	require.Error(t, err)
}
