// Package server provides the core LSP server state and management.
package server

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/adapter"
	"github.com/CWBudde/go-som-lsp/internal/config"
	"github.com/CWBudde/go-som-lsp/internal/dws"
	"github.com/CWBudde/go-som-lsp/internal/som"
)

// Server holds the state of the LSP server.
type Server struct {
	// documents stores the text of all open documents
	documents *DocumentStore

	// router dispatches analysis requests to the language adapters
	router *adapter.Router

	// workspaceFolders stores the workspace folders from the client
	workspaceFolders []protocol.WorkspaceFolder

	// clientCapabilities stores the client's capabilities from the initialize request
	clientCapabilities *protocol.ClientCapabilities

	config *config.Config

	// mutex protects server state
	mu sync.RWMutex

	shuttingDown bool
}

// New creates a server with the default configuration and the SOM and
// DWScript adapters.
func New() *Server {
	return NewWithConfig(config.Default())
}

// NewWithConfig creates a server using cfg.
func NewWithConfig(cfg *config.Config) *Server {
	return NewWithRouter(cfg, adapter.NewRouter(som.New(), som.NewNewspeak(), dws.New()))
}

// NewWithRouter creates a server using cfg and the given router.
func NewWithRouter(cfg *config.Config, router *adapter.Router) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Server{
		documents: NewDocumentStore(),
		router:    router,
		config:    cfg,
	}
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuttingDown = true
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// Router returns the adapter router.
func (s *Server) Router() *adapter.Router {
	return s.router
}

// Config returns a copy of the server configuration.
func (s *Server) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.config
}

// UpdateConfig updates the server configuration atomically.
// The update function is called with the current config under a write lock.
func (s *Server) UpdateConfig(update func(*config.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(s.config)
}

// SetWorkspaceFolders sets the workspace folders.
func (s *Server) SetWorkspaceFolders(folders []protocol.WorkspaceFolder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceFolders = folders
}

// ChangeWorkspaceFolders applies a folder change event and returns the
// resulting folders.
func (s *Server) ChangeWorkspaceFolders(added, removed []protocol.WorkspaceFolder) []protocol.WorkspaceFolder {
	s.mu.Lock()
	defer s.mu.Unlock()

	gone := make(map[protocol.DocumentUri]bool, len(removed))
	for _, f := range removed {
		gone[f.URI] = true
	}

	folders := make([]protocol.WorkspaceFolder, 0, len(s.workspaceFolders)+len(added))
	for _, f := range s.workspaceFolders {
		if !gone[f.URI] {
			folders = append(folders, f)
		}
	}
	folders = append(folders, added...)
	s.workspaceFolders = folders

	out := make([]protocol.WorkspaceFolder, len(folders))
	copy(out, folders)

	return out
}

// GetWorkspaceFolders returns the workspace folders.
func (s *Server) GetWorkspaceFolders() []protocol.WorkspaceFolder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]protocol.WorkspaceFolder, len(s.workspaceFolders))
	copy(out, s.workspaceFolders)

	return out
}

// SetClientCapabilities sets the client's capabilities.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientCapabilities = capabilities
}

// GetClientCapabilities returns the client's capabilities.
func (s *Server) GetClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCapabilities
}

// SupportsHierarchicalSymbols returns true if the client accepts
// DocumentSymbol results instead of flat SymbolInformation lists.
func (s *Server) SupportsHierarchicalSymbols() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.clientCapabilities == nil || s.clientCapabilities.TextDocument == nil {
		return true
	}

	symbols := s.clientCapabilities.TextDocument.DocumentSymbol
	if symbols == nil || symbols.HierarchicalDocumentSymbolSupport == nil {
		return true
	}

	return *symbols.HierarchicalDocumentSymbolSupport
}
