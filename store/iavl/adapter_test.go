package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/daowallet/store"
	"github.com/iov-one/daowallet/weavetest/assert"
)

func makeBase() (store.CacheableKVStore, func()) {
	commit := NewMemCommitStore()
	return commit.Adapter(), commit.Close
}

func makeCommitStore(t testing.TB) (CommitStore, string, func()) {
	t.Helper()
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		t.Fatalf("temp dir: %s", err)
	}
	commit, err := NewCommitStore(tmpDir, "base")
	if err != nil {
		t.Fatalf("commit store: %s", err)
	}
	cleanup := func() {
		commit.Close()
		os.RemoveAll(tmpDir)
	}
	return commit, tmpDir, cleanup
}

func TestAdapterSuite(t *testing.T) {
	s := store.NewTestSuite(makeBase)
	t.Run("get set", s.GetSet)
	t.Run("cache conflicts", s.CacheConflicts)
	t.Run("fuzz iterator", s.FuzzIterator)
	t.Run("iterator with conflicts", s.IteratorWithConflicts)
}

func TestCommitOverwrite(t *testing.T) {
	ks := [][]byte{[]byte("k1"), []byte("k2"), []byte("k3")}
	vs := [][]byte{[]byte("v1"), []byte("v2"), []byte("v3"), []byte("v4")}

	commit, _, cleanup := makeCommitStore(t)
	defer cleanup()

	id, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id.Version)
	if len(id.Hash) != 0 {
		t.Fatal("hash is not empty")
	}

	parent := commit.CacheWrap()
	assert.Nil(t, parent.Set(ks[0], vs[0]))
	assert.Nil(t, parent.Set(ks[1], vs[1]))
	assert.Nil(t, parent.Write())
	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("hash is empty")
	}

	child := commit.CacheWrap()
	assert.Nil(t, child.Set(ks[0], vs[3]))
	assert.Nil(t, child.Set(ks[2], vs[2]))
	assert.Nil(t, child.Delete(ks[1]))

	// a side cache wrap does not see uncommitted child changes
	side := commit.CacheWrap()
	got, err := side.Get(ks[0])
	assert.Nil(t, err)
	assert.Bytes(t, vs[0], got)

	assert.Nil(t, child.Write())
	got, err = side.Get(ks[1])
	assert.Nil(t, err)
	assert.Bytes(t, nil, got)

	// committed state only changes on commit
	got, err = commit.Get(ks[0])
	assert.Nil(t, err)
	assert.Bytes(t, vs[0], got)

	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id.Version)
	got, err = commit.Get(ks[0])
	assert.Nil(t, err)
	assert.Bytes(t, vs[3], got)
}

func TestReloadFromDisk(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "iavl-reload-")
	if err != nil {
		t.Fatalf("temp dir: %s", err)
	}
	defer os.RemoveAll(tmpDir)

	commit, err := NewCommitStore(tmpDir, "wallet")
	assert.Nil(t, err)
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set([]byte("key"), []byte("value")))
	assert.Nil(t, cache.Write())
	want, err := commit.Commit()
	assert.Nil(t, err)
	commit.Close()

	reopened, err := NewCommitStore(tmpDir, "wallet")
	assert.Nil(t, err)
	defer reopened.Close()
	assert.Nil(t, reopened.LoadLatestVersion())
	got, err := reopened.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, want.Version, got.Version)
	assert.Bytes(t, want.Hash, got.Hash)

	value, err := reopened.Get([]byte("key"))
	assert.Nil(t, err)
	assert.Bytes(t, []byte("value"), value)
}
