package gutenberg

import (
	"archive/tar"
	"bufio"
	"compress/bzip2"
	"context"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"gutendex/internal/catalog"
)

// Entry is one book file from the feed. Err is set when the file was found
// but could not be parsed; the feed keeps going in that case.
type Entry struct {
	ID     int
	Record catalog.Record
	Err    error
}

var rdfPath = regexp.MustCompile(`(?:^|/)cache/epub/(\d+)/pg(\d+)\.rdf$`)

// ReadArchive walks a bzip2-compressed tar feed stored at path.
func ReadArchive(ctx context.Context, path string, visit func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open feed archive")
	}
	defer f.Close()

	return ReadTar(ctx, bzip2.NewReader(bufio.NewReader(f)), visit)
}

// ArchiveFile is a feed archive already on disk.
type ArchiveFile struct {
	Path string
}

func (a ArchiveFile) FeedURL() string {
	return "file://" + a.Path
}

func (a ArchiveFile) Fetch(ctx context.Context, visit func(Entry) error) error {
	return ReadArchive(ctx, a.Path, visit)
}

// ReadTar walks an uncompressed tar stream and calls visit for every
// cache/epub/<id>/pg<id>.rdf entry. A visit error stops the walk and is
// returned as is.
func ReadTar(ctx context.Context, r io.Reader, visit func(Entry) error) error {
	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read feed archive")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		id, ok := entryID(hdr.Name)
		if !ok {
			continue
		}

		rec, parseErr := ParseRDF(tr, id)
		if err := visit(Entry{ID: id, Record: rec, Err: parseErr}); err != nil {
			return err
		}
	}
}

func entryID(name string) (int, bool) {
	m := rdfPath.FindStringSubmatch(name)
	if m == nil || m[1] != m[2] {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
