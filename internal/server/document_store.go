package server

import (
	"sort"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document represents a document the client has open.
type Document struct {
	URI        protocol.DocumentUri
	Text       string
	Version    protocol.Integer
	LanguageID string
}

// DocumentStore manages all open documents.
type DocumentStore struct {
	documents map[protocol.DocumentUri]*Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[protocol.DocumentUri]*Document),
	}
}

// Set stores or replaces a document.
func (ds *DocumentStore) Set(doc *Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[doc.URI] = doc
}

// Update replaces the text of an open document. It reports false when the
// document is not open or version is older than the stored one.
func (ds *DocumentStore) Update(uri protocol.DocumentUri, text string, version protocol.Integer) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc, ok := ds.documents[uri]
	if !ok || version < doc.Version {
		return false
	}

	ds.documents[uri] = &Document{
		URI:        uri,
		Text:       text,
		Version:    version,
		LanguageID: doc.LanguageID,
	}

	return true
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri protocol.DocumentUri) (*Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Delete removes a document from the store.
func (ds *DocumentStore) Delete(uri protocol.DocumentUri) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// List returns all document URIs in sorted order.
func (ds *DocumentStore) List() []protocol.DocumentUri {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	uris := make([]protocol.DocumentUri, 0, len(ds.documents))
	for uri := range ds.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	return uris
}

// Clear removes all documents from the store.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents = make(map[protocol.DocumentUri]*Document)
}
