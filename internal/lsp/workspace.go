package lsp

import (
	contextpkg "context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/config"
	"github.com/CWBudde/go-som-lsp/internal/server"
	"github.com/CWBudde/go-som-lsp/internal/workspace"
)

// SettingsSection is the key of the server's settings in
// workspace/didChangeConfiguration notifications:
//
//	{"som-lsp": {"maxProblems": 100, "trace": "off"}}
const SettingsSection = "som-lsp"

// DidChangeConfiguration handles workspace configuration changes from the client.
func DidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv, ok := currentServer("DidChangeConfiguration")
	if !ok {
		return nil
	}

	settings, ok := params.Settings.(map[string]any)
	if !ok {
		return nil
	}

	section, ok := settings[SettingsSection].(map[string]any)
	if !ok {
		return nil
	}

	current := srv.Config()

	updated, err := current.Merge(section)
	if err != nil {
		log.Errorf("ignoring configuration change: %s", err)
		logMessage(notifier(context), protocol.MessageTypeError, err.Error())
		return nil
	}

	srv.UpdateConfig(func(cfg *config.Config) {
		*cfg = *updated
	})
	log.Infof("configuration updated: maxProblems = %d, trace = %s", updated.MaxProblems, updated.Trace)

	return nil
}

// DidChangeWorkspaceFolders handles changes to workspace folders.
// Added folders are loaded in the background. Documents of removed folders
// stay analysed until they are closed or replaced.
func DidChangeWorkspaceFolders(context *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	srv, ok := currentServer("DidChangeWorkspaceFolders")
	if !ok {
		return nil
	}

	for _, folder := range params.Event.Removed {
		log.Infof("workspace folder removed: %s (%s)", folder.Name, folder.URI)
	}

	srv.ChangeWorkspaceFolders(params.Event.Added, params.Event.Removed)

	if len(params.Event.Added) > 0 {
		go loadWorkspace(notifier(context), srv, params.Event.Added)
	}

	return nil
}

// loadWorkspace parses the files of folders that are not open in the editor
// and returns how many were parsed. Invalid folders are reported to the client.
func loadWorkspace(notify glsp.NotifyFunc, srv *server.Server, folders []protocol.WorkspaceFolder) int {
	loader := workspace.NewLoader(srv.Router(), srv.Config().Workspace)
	loader.Skip = func(uri protocol.DocumentUri) bool {
		_, open := srv.Documents().Get(uri)
		return open
	}

	n, err := loader.Load(contextpkg.Background(), folders)
	if err != nil {
		log.Errorf("workspace loading failed: %s", err)
		logMessage(notify, protocol.MessageTypeError, err.Error())
	}

	return n
}
