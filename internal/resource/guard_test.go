package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/scoutpool/internal/common"
)

func newTestGuard() *Guard {
	cfg := &common.ResourceConfig{
		FDThreshold:        800,
		ChildProcThreshold: 20,
		RAMGBPerWorker:     0.5,
		HardCapWorkers:     32,
		ProcsPerDriver:     3,
		SafetyMargin:       50,
	}
	return New(cfg, common.GetLogger())
}

func TestOpenFileDescriptors_ReadsProc(t *testing.T) {
	g := newTestGuard()
	n, err := g.OpenFileDescriptors()
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestCanStartWorker_TrueUnderThreshold(t *testing.T) {
	g := newTestGuard()
	assert.True(t, g.CanStartWorker())
}

func TestCanStartWorker_FalseAtFDThreshold(t *testing.T) {
	cfg := &common.ResourceConfig{FDThreshold: 0, ChildProcThreshold: 20}
	g := New(cfg, common.GetLogger())
	assert.False(t, g.CanStartWorker())
}

func TestAutoSizeWorkers_NeverBelowOne(t *testing.T) {
	cfg := &common.ResourceConfig{
		RAMGBPerWorker: 100, // tiny budget forces the clamp
		HardCapWorkers: 32,
		ProcsPerDriver: 3,
		SafetyMargin:   50,
	}
	g := New(cfg, common.GetLogger())
	n := g.AutoSizeWorkers(1.0)
	assert.GreaterOrEqual(t, n, 1)
}

func TestAutoSizeWorkers_RespectsHardCap(t *testing.T) {
	cfg := &common.ResourceConfig{
		RAMGBPerWorker: 0.01,
		HardCapWorkers: 4,
		ProcsPerDriver: 1,
		SafetyMargin:   0,
	}
	g := New(cfg, common.GetLogger())
	n := g.AutoSizeWorkers(1000)
	assert.LessOrEqual(t, n, 4)
}
