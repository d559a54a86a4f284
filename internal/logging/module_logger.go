package logging

import (
	"context"
	"strings"
)

const (
	rootModule      = "wikimport"
	documentModule  = "wikimport.document"
	transformModule = "wikimport.transform"
	storeModule     = "wikimport.syncstore"
	catalogModule   = "wikimport.catalog"
	wikiModule      = "wikimport.wiki"
	importerModule  = "wikimport.importer"
)

const (
	fieldDocumentPath = "document_path"
	fieldLegacyPage   = "legacy_page_id"
	fieldSyncAction   = "sync_action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider LoggerProvider, module string) Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// DocumentLogger returns the logger namespace reserved for document parsing.
func DocumentLogger(provider LoggerProvider) Logger {
	return ModuleLogger(provider, documentModule)
}

// TransformLogger returns the logger namespace reserved for content rewriting.
func TransformLogger(provider LoggerProvider) Logger {
	return ModuleLogger(provider, transformModule)
}

// StoreLogger returns the logger namespace reserved for the sync store.
func StoreLogger(provider LoggerProvider) Logger {
	return ModuleLogger(provider, storeModule)
}

// CatalogLogger returns the logger namespace reserved for the source catalog.
func CatalogLogger(provider LoggerProvider) Logger {
	return ModuleLogger(provider, catalogModule)
}

// WikiLogger returns the logger namespace reserved for the wiki API client.
func WikiLogger(provider LoggerProvider) Logger {
	return ModuleLogger(provider, wikiModule)
}

// ImporterLogger returns the logger namespace reserved for the orchestrator.
func ImporterLogger(provider LoggerProvider) Logger {
	return ModuleLogger(provider, importerModule)
}

// WithDocumentContext enriches the provided logger with common import fields
// such as file path, legacy page id, and sync action. Empty values are ignored.
func WithDocumentContext(logger Logger, path string, legacyPageID int, action string) Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if legacyPageID > 0 {
		fields[fieldLegacyPage] = legacyPageID
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldSyncAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) Logger {
	return n
}
