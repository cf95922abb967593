package weinfusesync

import (
	"testing"

	"bitbucket.org/mmdatafocus/weinfuse_backend/models"
)

func TestCountLine(t *testing.T) {
	var tally runTally

	countLine(&tally, true, models.StatusReceived)
	countLine(&tally, false, models.StatusReceived)
	if tally.created != 1 || tally.updated != 1 || tally.failed != 0 {
		t.Fatalf("unexpected tally for clean lines: %+v", tally)
	}

	// A line that was written but failed resolution goes into the failed
	// bucket only, never into created or updated as well.
	countLine(&tally, true, models.StatusItemNotFound)
	countLine(&tally, false, models.StatusLocationAmbiguous)
	if tally.created != 1 || tally.updated != 1 || tally.failed != 2 {
		t.Fatalf("failed lines must not be double counted: %+v", tally)
	}
}

func TestPartitionBlocks(t *testing.T) {
	rows := make([]map[string]interface{}, 1205)

	blocks := partitionBlocks(rows, 500)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks; got %d", len(blocks))
	}
	if len(blocks[0]) != 500 || len(blocks[1]) != 500 || len(blocks[2]) != 205 {
		t.Fatalf("unexpected block sizes: %d %d %d", len(blocks[0]), len(blocks[1]), len(blocks[2]))
	}

	blocks = partitionBlocks(nil, 500)
	if len(blocks) != 0 {
		t.Fatalf("expected no blocks for no rows; got %d", len(blocks))
	}

	// A bad block size falls back to the default instead of looping.
	blocks = partitionBlocks(rows, 0)
	if len(blocks) != 3 {
		t.Fatalf("expected default block size fallback; got %d blocks", len(blocks))
	}
}

func TestRunOptionsDefaults(t *testing.T) {
	opts := DefaultRunOptions()
	if opts.BlockSize != 500 || !opts.AllBlocks || opts.TwoPhase {
		t.Fatalf("unexpected defaults: %+v", opts)
	}

	opts = DecodeRunOptions(nil)
	if opts.BlockSize != 500 || !opts.AllBlocks {
		t.Fatalf("nil payload must decode to defaults: %+v", opts)
	}

	opts = DecodeRunOptions([]byte(`{"blockSize":2,"allBlocks":false,"twoPhase":true}`))
	if opts.BlockSize != 2 || opts.AllBlocks || !opts.TwoPhase {
		t.Fatalf("unexpected decoded options: %+v", opts)
	}

	opts = DecodeRunOptions([]byte(`{not json`))
	if opts.BlockSize != 500 || !opts.AllBlocks {
		t.Fatalf("bad payload must decode to defaults: %+v", opts)
	}

	opts = NormalizeRunOptions(RunOptions{BlockSize: -5, AllBlocks: true})
	if opts.BlockSize != 500 {
		t.Fatalf("negative block size must normalize to default; got %d", opts.BlockSize)
	}
}
