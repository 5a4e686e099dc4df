package lsp

import (
	"path"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/config"
	"github.com/CWBudde/go-som-lsp/internal/server"
	"github.com/CWBudde/go-som-lsp/internal/tokens"
)

// Name and Version identify the server to clients.
const Name = "som-lsp"

var Version = "0.1.0"

var (
	// serverInstance holds the global server instance
	// This is set by SetServer and accessed by handlers
	serverInstance any
)

// SetServer sets the global server instance for handlers to access.
func SetServer(srv *server.Server) {
	serverInstance = srv
}

func currentServer(handler string) (*server.Server, bool) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warningf("server instance not available in %s", handler)
		return nil, false
	}
	return srv, true
}

// Initialize handles the LSP initialize request.
// This is the first request sent by the client and establishes the server capabilities.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if srv, ok := currentServer("Initialize"); ok {
		srv.SetClientCapabilities(&params.Capabilities)
		srv.SetWorkspaceFolders(initialFolders(params))
	}

	if params.ClientInfo != nil {
		log.Infof("initializing for client %s", params.ClientInfo.Name)
	}

	syncKind := protocol.TextDocumentSyncKindFull
	trueVal := true
	falseVal := false

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &syncKind,
			Save: &protocol.SaveOptions{
				IncludeText: &falseVal,
			},
		},

		DefinitionProvider:        true,
		DocumentHighlightProvider: true,
		DocumentSymbolProvider:    true,
		WorkspaceSymbolProvider:   true,

		CodeLensProvider: &protocol.CodeLensOptions{
			ResolveProvider: &falseVal,
		},

		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"#", ":", "="},
			ResolveProvider:   &falseVal,
		},

		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: tokens.Legend(),
			Full:   &trueVal,
		},

		Workspace: &protocol.ServerCapabilitiesWorkspace{
			WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{
				Supported:           &trueVal,
				ChangeNotifications: &protocol.BoolOrString{Value: true},
			},
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &Version,
		},
	}, nil
}

// initialFolders returns the workspace folders of the request, falling back
// to the root URI sent by clients without workspace folder support.
func initialFolders(params *protocol.InitializeParams) []protocol.WorkspaceFolder {
	if len(params.WorkspaceFolders) > 0 {
		return params.WorkspaceFolders
	}

	if params.RootURI != nil && *params.RootURI != "" {
		return []protocol.WorkspaceFolder{{
			URI:  *params.RootURI,
			Name: path.Base(*params.RootURI),
		}}
	}

	return nil
}

// Initialized handles the initialized notification from the client.
// It starts loading the workspace folders in the background.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	srv, ok := currentServer("Initialized")
	if !ok {
		return nil
	}

	folders := srv.GetWorkspaceFolders()
	if len(folders) == 0 {
		return nil
	}

	go loadWorkspace(notifier(context), srv, folders)

	return nil
}

// Shutdown handles the shutdown request.
// The client sends this to ask the server to shut down gracefully.
func Shutdown(context *glsp.Context) error {
	if srv, ok := currentServer("Shutdown"); ok {
		srv.SetShuttingDown()
		srv.Router().TokenCache().Clear()
	}

	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

// Exit handles the exit notification. The transport closes the connection.
func Exit(context *glsp.Context) error {
	if srv, ok := currentServer("Exit"); ok && !srv.IsShuttingDown() {
		log.Warning("exit received before shutdown")
	}
	return nil
}

// SetTrace handles the $/setTrace notification.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	if srv, ok := currentServer("SetTrace"); ok {
		srv.UpdateConfig(func(cfg *config.Config) {
			cfg.Trace = string(params.Value)
		})
	}

	return nil
}
