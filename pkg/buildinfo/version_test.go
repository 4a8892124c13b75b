package buildinfo

import (
	"strings"
	"testing"

	"github.com/matzehuels/vfxgraph/pkg/schema"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version || info.Schema != schema.Current {
		t.Errorf("Get() = %+v", info)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version ") {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(tmpl, "document schema: 10") {
		t.Errorf("Template() missing schema version: %q", tmpl)
	}
	if !strings.Contains(String(), "schema: 10") {
		t.Errorf("String() = %q", String())
	}
}
