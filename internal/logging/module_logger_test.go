package logging

import "testing"

func TestModuleLoggerDefaultsToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "")
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	logger.Info("should not panic")
}

func TestModuleLoggerUsesProvider(t *testing.T) {
	provider := &recordingProvider{}

	ImporterLogger(provider)
	StoreLogger(provider)

	want := []string{"wikimport.importer", "wikimport.syncstore"}
	if len(provider.names) != len(want) {
		t.Fatalf("expected %d lookups, got %d", len(want), len(provider.names))
	}
	for i, name := range want {
		if provider.names[i] != name {
			t.Fatalf("lookup %d: expected %q, got %q", i, name, provider.names[i])
		}
	}
}

func TestWithDocumentContextIgnoresEmptyValues(t *testing.T) {
	sink := &fieldSink{}
	WithDocumentContext(sink, "", 0, "")
	if len(sink.fields) != 0 {
		t.Fatalf("expected no fields, got %v", sink.fields)
	}

	WithDocumentContext(sink, "docs/101-intro.md", 101, "create")
	if len(sink.fields) != 3 {
		t.Fatalf("expected 3 fields, got %v", sink.fields)
	}
}

type recordingProvider struct {
	names []string
}

func (p *recordingProvider) GetLogger(name string) Logger {
	p.names = append(p.names, name)
	return NoOp()
}

type fieldSink struct {
	noopLogger
	fields map[string]any
}

func (s *fieldSink) WithFields(fields map[string]any) Logger {
	s.fields = fields
	return s
}
