package diag

import (
	"sync"
	"testing"
)

func TestReport(t *testing.T) {
	var r Report
	r.Addf(NodeExtractionError, "extract", "n1", "style unreadable: %s", "cross-origin")
	r.Add(Entry{Kind: AssetResolutionError, Phase: "reconstruct", NodeID: "n2", Reason: "missing"})
	r.Addf(NodeExtractionError, "extract", "n3", "boom")

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	if got := r.Count(NodeExtractionError); got != 2 {
		t.Errorf("Count(NodeExtractionError) = %d, want 2", got)
	}
	if got := r.ForNode("n2"); len(got) != 1 || got[0].Kind != AssetResolutionError {
		t.Errorf("ForNode(n2) = %v", got)
	}
	if got := r.Entries()[0].Reason; got != "style unreadable: cross-origin" {
		t.Errorf("Reason = %q", got)
	}

	sum := r.Summary()
	if sum[NodeExtractionError] != 2 || sum[AssetResolutionError] != 1 {
		t.Errorf("Summary() = %v", sum)
	}
}

func TestReportMerge(t *testing.T) {
	var a, b Report
	a.Addf(FontFallback, "reconstruct", "t1", "Segoe UI -> Inter")
	b.Addf(MergeConflictWarning, "merge", "x", "rect differs")
	a.Merge(&b)
	a.Merge(nil)

	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
}

func TestReportConcurrent(t *testing.T) {
	var r Report
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Addf(ReconstructionError, "reconstruct", "n", "x")
		}()
	}
	wg.Wait()
	if r.Len() != 50 {
		t.Errorf("Len() = %d, want 50", r.Len())
	}
}

func TestNilReport(t *testing.T) {
	var r *Report
	if r.Len() != 0 || r.Entries() != nil {
		t.Error("nil report should be empty")
	}
}

func TestEntryString(t *testing.T) {
	e := Entry{Kind: ReconstructionError, Phase: "reconstruct", NodeID: "abc", Reason: "create failed"}
	if got, want := e.String(), "ReconstructionError [reconstruct] abc: create failed"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
