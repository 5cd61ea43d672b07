package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"GoStem/internal/analysis"
	"GoStem/internal/corpus"
	"GoStem/internal/index"
	"GoStem/internal/indexing"
	"GoStem/internal/recovery"
	"GoStem/internal/search"
	"GoStem/internal/server"
	"GoStem/internal/testutil"
)

// interruptBuild leaves root the way a build killed before the manifest
// rename would: new data files, a partial temp file and no manifest.
func interruptBuild(t *testing.T, root string) {
	t.Helper()
	dir := index.NewIndexDir(root)
	if err := os.WriteFile(filepath.Join(dir.TmpDir(), "manifest.json.999"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(dir.ManifestPath()); err != nil {
		t.Fatal(err)
	}
}

func TestCrashRecovery_KeepsServingOldIndex(t *testing.T) {
	root := testutil.BuildIndex(t, testutil.SampleDocs(), analysis.AnalyzerRussian)
	mgr := server.NewIndexManager(root, search.Options{}, nil)
	if err := mgr.Load(); err != nil {
		t.Fatal(err)
	}
	defer mgr.Close()

	interruptBuild(t, root)

	if err := mgr.Load(); err == nil {
		t.Fatal("reload of an interrupted build should fail")
	}
	info := mgr.Info()
	if !info.Loaded || info.Generation != 1 || info.Error == "" {
		t.Errorf("info = %+v, want generation 1 still loaded with an error", info)
	}
	err := mgr.Use(func(s *search.Searcher) error {
		res, err := s.Search(context.Background(), "lada", 10)
		if err == nil && res.Total != 1 {
			t.Errorf("total = %d, want 1", res.Total)
		}
		return err
	})
	if err != nil {
		t.Fatalf("old index should keep serving: %v", err)
	}
}

func TestCrashRecovery_RebuildAfterInterruption(t *testing.T) {
	docs := testutil.SampleDocs()
	root := testutil.BuildIndex(t, docs, analysis.AnalyzerRussian)
	interruptBuild(t, root)

	dir := index.NewIndexDir(root)
	res, err := recovery.Recover(dir, recovery.Options{Repair: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Healthy() {
		t.Fatal("index without manifest must not be healthy")
	}
	if len(res.TmpFilesRemoved) != 1 {
		t.Errorf("tmp removed = %v, want the partial manifest", res.TmpFilesRemoved)
	}

	c, err := corpus.Open(testutil.WriteCorpus(t, docs), nil)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := analysis.NewRegistry(analysis.Options{}).Get(analysis.AnalyzerRussian)
	b := &indexing.Builder{Analyzer: a, AnalyzerName: analysis.AnalyzerRussian, Workers: 1}
	if _, err := b.Build(context.Background(), c, root); err != nil {
		t.Fatal(err)
	}

	res, err = recovery.Recover(dir, recovery.Options{VerifyChecksums: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Healthy() {
		t.Fatalf("rebuilt index: %s", res.Problem)
	}

	mgr := server.NewIndexManager(root, search.Options{Verify: true}, nil)
	defer mgr.Close()
	if err := mgr.Load(); err != nil {
		t.Fatal(err)
	}
}

func TestCrashRecovery_MissingIndex(t *testing.T) {
	mgr := server.NewIndexManager(filepath.Join(t.TempDir(), "none"), search.Options{}, nil)
	defer mgr.Close()

	err := mgr.Load()
	if !errors.Is(err, recovery.ErrNoIndex) {
		t.Errorf("err = %v, want ErrNoIndex", err)
	}
	err = mgr.Use(func(*search.Searcher) error { return nil })
	if !errors.Is(err, server.ErrIndexNotLoaded) || !errors.Is(err, recovery.ErrNoIndex) {
		t.Errorf("Use err = %v, want ErrIndexNotLoaded wrapping ErrNoIndex", err)
	}
}
