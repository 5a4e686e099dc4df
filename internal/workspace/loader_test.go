package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/config"
)

type recordingParser struct {
	mu     sync.Mutex
	parsed map[protocol.DocumentUri]string
	fail   protocol.DocumentUri

	// present lists URIs that already have a published state
	present map[protocol.DocumentUri]bool
}

func newRecordingParser() *recordingParser {
	return &recordingParser{parsed: make(map[protocol.DocumentUri]string)}
}

func (p *recordingParser) Handles(uri protocol.DocumentUri) bool {
	return strings.HasSuffix(uri, ".som")
}

func (p *recordingParser) Load(_ context.Context, text string, uri protocol.DocumentUri) (bool, error) {
	if uri == p.fail {
		return false, errors.New("engine unavailable")
	}
	if p.present[uri] {
		return false, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.parsed[uri] = text

	return true, nil
}

func (p *recordingParser) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var names []string
	for uri := range p.parsed {
		names = append(names, filepath.Base(uri))
	}
	sort.Strings(names)

	return names
}

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()

	for _, name := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0o600))
	}
}

func folder(root string) protocol.WorkspaceFolder {
	return protocol.WorkspaceFolder{URI: PathToURI(root), Name: filepath.Base(root)}
}

func TestLoader_LoadsHandledFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"A.som",
		"lib/B.som",
		"lib/readme.md",
		".git/C.som",
		"node_modules/D.som",
	)

	parser := newRecordingParser()
	loader := NewLoader(parser, config.Default().Workspace)

	n, err := loader.Load(context.Background(), []protocol.WorkspaceFolder{folder(root)})
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"A.som", "B.som"}, parser.names())
	assert.Equal(t, "lib/B.som", parser.parsed[PathToURI(filepath.Join(root, "lib", "B.som"))])
}

func TestLoader_InvalidFolderDoesNotStopOthers(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "A.som")

	parser := newRecordingParser()
	loader := NewLoader(parser, config.Default().Workspace)

	n, err := loader.Load(context.Background(), []protocol.WorkspaceFolder{
		{URI: "http://example.com/project", Name: "remote"},
		folder(root),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFolderURI)
	assert.Contains(t, err.Error(), "remote")
	assert.Equal(t, 1, n)
}

func TestLoader_Limits(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "A.som", "B.som", "C.som", "x/y/Deep.som")

	cfg := config.Default().Workspace
	cfg.MaxFiles = 2
	parser := newRecordingParser()

	n, err := NewLoader(parser, cfg).Load(context.Background(), []protocol.WorkspaceFolder{folder(root)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"A.som", "B.som"}, parser.names())

	cfg = config.Default().Workspace
	cfg.MaxDepth = 1
	parser = newRecordingParser()

	_, err = NewLoader(parser, cfg).Load(context.Background(), []protocol.WorkspaceFolder{folder(root)})
	require.NoError(t, err)
	assert.NotContains(t, parser.names(), "Deep.som")
}

func TestLoader_SkipAndParseFailures(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "A.som", "B.som", "C.som")

	parser := newRecordingParser()
	parser.fail = PathToURI(filepath.Join(root, "C.som"))

	loader := NewLoader(parser, config.Default().Workspace)
	loader.Skip = func(uri protocol.DocumentUri) bool {
		return strings.HasSuffix(uri, "/A.som")
	}

	n, err := loader.Load(context.Background(), []protocol.WorkspaceFolder{folder(root)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"B.som"}, parser.names())
}

func TestLoader_CountsOnlyPublished(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "A.som", "B.som")

	parser := newRecordingParser()
	parser.present = map[protocol.DocumentUri]bool{
		PathToURI(filepath.Join(root, "A.som")): true,
	}

	n, err := NewLoader(parser, config.Default().Workspace).
		Load(context.Background(), []protocol.WorkspaceFolder{folder(root)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"B.som"}, parser.names())
}

func TestLoader_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "A.som")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := NewLoader(newRecordingParser(), config.Default().Workspace).
		Load(ctx, []protocol.WorkspaceFolder{folder(root)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

func TestURIToPath(t *testing.T) {
	path, err := URIToPath("file:///home/user/project")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/home/user/project"), path)

	path, err = URIToPath("file:///home/user/my%20project")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/home/user/my project"), path)

	path, err = URIToPath(PathToURI("/tmp/a b/x#1.som"))
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/tmp/a b/x#1.som"), path)

	for _, uri := range []string{"http://example.com/x", "file://", "::bad"} {
		_, err := URIToPath(uri)
		assert.ErrorIs(t, err, ErrInvalidFolderURI, uri)
	}
}

func TestPathToURI(t *testing.T) {
	assert.Equal(t, protocol.DocumentUri("file:///home/user/a.som"), PathToURI("/home/user/a.som"))
	assert.Equal(t, protocol.DocumentUri("file:///C:/src/a.som"), PathToURI("C:/src/a.som"))
	assert.Equal(t, protocol.DocumentUri("file:///tmp/a%20b/x.som"), PathToURI("/tmp/a b/x.som"))
}
