// Package workspace loads the source files of the workspace folders so that
// cross-document features work before the files are opened.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/sync/errgroup"

	"github.com/CWBudde/go-som-lsp/internal/config"
)

var log = commonlog.GetLogger("som-lsp.workspace")

// ErrInvalidFolderURI is wrapped by errors about folder URIs that do not name
// a local directory.
var ErrInvalidFolderURI = errors.New("invalid workspace folder URI")

// Parser parses documents. *adapter.Router implements it.
//
// Load must publish a result only if uri has no state yet, so that a document
// opened in the editor while the scan runs is never replaced by the file on
// disk.
type Parser interface {
	Handles(uri protocol.DocumentUri) bool
	Load(ctx context.Context, text string, uri protocol.DocumentUri) (bool, error)
}

// Loader scans workspace folders and parses every file a Parser handles.
type Loader struct {
	parser Parser
	cfg    config.WorkspaceConfig

	// Skip, when set, excludes URIs from loading, e.g. documents the client
	// already has open. It only saves work; Load decides what is published.
	Skip func(uri protocol.DocumentUri) bool
}

// NewLoader creates a loader bounded by cfg.
func NewLoader(parser Parser, cfg config.WorkspaceConfig) *Loader {
	return &Loader{parser: parser, cfg: cfg}
}

// Load parses the files of all folders and returns how many were published.
// A folder with a malformed URI is skipped and reported in the returned error;
// the remaining folders are still loaded. Failures to read or parse single
// files are only logged.
func (l *Loader) Load(ctx context.Context, folders []protocol.WorkspaceFolder) (int, error) {
	var errs []error
	var files []string

	for _, folder := range folders {
		root, err := URIToPath(folder.URI)
		if err != nil {
			errs = append(errs, fmt.Errorf("folder %s: %w", folder.Name, err))
			continue
		}

		log.Infof("scanning workspace folder %s", root)
		files = l.collect(root, 0, files)
	}

	var parsed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, l.cfg.Concurrency))

	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			uri := PathToURI(path)
			if l.Skip != nil && l.Skip(uri) {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				log.Warningf("could not read %s: %s", path, err)
				return nil
			}

			loaded, err := l.parser.Load(gctx, string(content), uri)
			if err != nil {
				log.Errorf("could not parse %s: %s", path, err)
				return nil
			}

			if loaded {
				parsed.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	log.Infof("workspace scan complete: parsed %d of %d files", parsed.Load(), len(files))

	return int(parsed.Load()), errors.Join(errs...)
}

// collect appends the handled files below dir, in name order, honoring the
// depth and file count limits.
func (l *Loader) collect(dir string, depth int, files []string) []string {
	if depth > l.cfg.MaxDepth || len(files) >= l.cfg.MaxFiles {
		return files
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debugf("skipping %s: %s", dir, err)
		return files
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)

		if entry.IsDir() {
			if strings.HasPrefix(name, ".") || l.cfg.Ignored(name) {
				continue
			}
			files = l.collect(full, depth+1, files)
			continue
		}

		if len(files) >= l.cfg.MaxFiles {
			break
		}
		if l.parser.Handles(PathToURI(full)) {
			files = append(files, full)
		}
	}

	return files
}

// URIToPath converts a file URI to a file system path.
func URIToPath(uri protocol.DocumentUri) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidFolderURI, uri, err)
	}
	if u.Scheme != "file" || u.Path == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidFolderURI, uri)
	}

	path := u.Path
	// file:///C:/path names a Windows drive
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

// PathToURI converts a file system path to a file URI. Characters that are
// not allowed in a URI path, such as spaces, are percent-encoded the way
// editors encode them.
func PathToURI(path string) protocol.DocumentUri {
	path = filepath.ToSlash(path)

	if len(path) > 1 && path[1] == ':' {
		path = "/" + path
	}

	u := url.URL{Scheme: "file", Path: path}

	return u.String()
}
