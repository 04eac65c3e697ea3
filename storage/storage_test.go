package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"gocloud.dev/blob/memblob"

	"github.com/pitabwire/langsync/storage"
)

type StorageSuite struct {
	suite.Suite
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) TestFilesystemWriteAndOverwrite() {
	ctx := context.Background()
	root := filepath.Join(s.T().TempDir(), "res")
	fs := storage.NewFilesystem(root)

	_, err := os.Stat(root)
	s.True(os.IsNotExist(err), "root must not be created eagerly")

	s.Require().NoError(fs.EnsureDir(ctx, "values-pt-rBR"))
	s.Require().NoError(fs.EnsureDir(ctx, "values-pt-rBR"))

	s.Require().NoError(fs.WriteFile(ctx, "values-pt-rBR/strings.xml", []byte("one")))
	s.Require().NoError(fs.WriteFile(ctx, "values-pt-rBR/strings.xml", []byte("two")))

	target := filepath.Join(root, "values-pt-rBR", "strings.xml")
	s.Equal(target, fs.Location("values-pt-rBR/strings.xml"))

	data, err := os.ReadFile(target)
	s.Require().NoError(err)
	s.Equal("two", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "values-pt-rBR"))
	s.Require().NoError(err)
	s.Len(entries, 1, "temporary files must not linger")
	s.NoError(fs.Close())
}

func (s *StorageSuite) TestFilesystemWriteWithoutDirFails() {
	ctx := context.Background()
	fs := storage.NewFilesystem(s.T().TempDir())

	err := fs.WriteFile(ctx, "values-de/strings.xml", []byte("x"))
	s.Require().Error(err)
}

func (s *StorageSuite) TestFilesystemEnsureDirOverFile() {
	ctx := context.Background()
	root := s.T().TempDir()
	s.Require().NoError(os.WriteFile(filepath.Join(root, "values-de"), []byte("x"), 0o600))

	fs := storage.NewFilesystem(root)
	s.Require().Error(fs.EnsureDir(ctx, "values-de"))
}

func (s *StorageSuite) TestMemoryBucket() {
	ctx := context.Background()
	b, err := storage.OpenBucket(ctx, storage.DryRunURL)
	s.Require().NoError(err)
	defer func() { s.NoError(b.Close()) }()

	s.Require().NoError(b.EnsureDir(ctx, "values"))
	s.Require().NoError(b.WriteFile(ctx, "values/strings.xml", []byte("<resources/>")))

	data, err := b.ReadFile(ctx, "values/strings.xml")
	s.Require().NoError(err)
	s.Equal("<resources/>", string(data))
	s.Equal("mem://values/strings.xml", b.Location("values/strings.xml"))
}

func (s *StorageSuite) TestFileBucket() {
	ctx := context.Background()
	root := filepath.Join(s.T().TempDir(), "res")

	b, err := storage.OpenBucket(ctx, "file://"+filepath.ToSlash(root))
	s.Require().NoError(err)
	defer func() { s.NoError(b.Close()) }()

	s.Require().NoError(b.WriteFile(ctx, "values-fr/strings.xml", []byte("fr")))

	data, err := os.ReadFile(filepath.Join(root, "values-fr", "strings.xml"))
	s.Require().NoError(err)
	s.Equal("fr", string(data))
	s.Equal("file://"+filepath.ToSlash(root)+"/values-fr/strings.xml", b.Location("values-fr/strings.xml"))
}

func (s *StorageSuite) TestIsBucketURL() {
	s.True(storage.IsBucketURL("mem://"))
	s.True(storage.IsBucketURL("file:///tmp/res"))
	s.False(storage.IsBucketURL("app/src/main/res"))
	s.False(storage.IsBucketURL("/abs/res"))
}

func (s *StorageSuite) TestNewBucketWrapsOpenBucket() {
	ctx := context.Background()
	b := storage.NewBucket(memblob.OpenBucket(nil), "mem://preview/")
	defer b.Close()

	s.Equal("mem://preview/values-de/strings.xml", b.Location("values-de/strings.xml"))
	s.Require().NoError(b.WriteFile(ctx, "values-de/strings.xml", []byte("de")))

	got, err := b.ReadFile(ctx, "values-de/strings.xml")
	s.Require().NoError(err)
	s.Equal("de", string(got))
}

func (s *StorageSuite) TestPathsOutsideRootAreRejected() {
	ctx := context.Background()
	base := s.T().TempDir()
	fs := storage.NewFilesystem(filepath.Join(base, "res"))

	bucket, err := storage.OpenBucket(ctx, storage.DryRunURL)
	s.Require().NoError(err)
	defer bucket.Close()

	for _, rel := range []string{"../escaped/strings.xml", "/abs/strings.xml", `values\..\x`, "."} {
		s.Require().ErrorIs(fs.EnsureDir(ctx, rel), storage.ErrOutsideRoot, rel)
		s.Require().ErrorIs(fs.WriteFile(ctx, rel, []byte("x")), storage.ErrOutsideRoot, rel)
		s.Require().ErrorIs(bucket.WriteFile(ctx, rel, []byte("x")), storage.ErrOutsideRoot, rel)
	}

	_, statErr := os.Stat(filepath.Join(base, "escaped"))
	s.True(os.IsNotExist(statErr))
}
