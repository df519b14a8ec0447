package cli

import (
	"strings"
	"testing"
)

func TestUpsertMaterializeHookOnEmptyFile(t *testing.T) {
	got := UpsertMaterializeHook("", "/repo")
	if !strings.HasPrefix(got, "#!/bin/sh\n") {
		t.Fatalf("expected shebang prefix, got %q", got)
	}
	if !strings.Contains(got, HookStart) || !strings.Contains(got, HookEnd) {
		t.Fatalf("expected marker-delimited block, got %q", got)
	}
	if !strings.Contains(got, "schemakit materialize-modified --staged --stage") {
		t.Fatalf("expected materialize-modified invocation, got %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Fatal("expected trailing newline")
	}
}

func TestUpsertMaterializeHookPreservesExistingHook(t *testing.T) {
	existing := "#!/bin/bash\necho linting\n"
	got := UpsertMaterializeHook(existing, "/repo")

	if !strings.HasPrefix(got, "#!/bin/bash\n") {
		t.Fatalf("existing shebang was replaced: %q", got)
	}
	if !strings.Contains(got, "echo linting") {
		t.Fatalf("existing hook content was lost: %q", got)
	}
	if !strings.Contains(got, HookStart) {
		t.Fatalf("block was not appended: %q", got)
	}
}

func TestUpsertMaterializeHookAddsShebangWhenMissing(t *testing.T) {
	got := UpsertMaterializeHook("echo linting\n", "/repo")
	if !strings.HasPrefix(got, "#!/bin/sh\n") {
		t.Fatalf("expected shebang to be added, got %q", got)
	}
}

func TestUpsertMaterializeHookReplacesExistingBlock(t *testing.T) {
	first := UpsertMaterializeHook("#!/bin/bash\necho before\n", "/old/repo")
	second := UpsertMaterializeHook(first, "/new/repo")

	if strings.Contains(second, "/old/repo") {
		t.Fatalf("old block survived: %q", second)
	}
	if !strings.Contains(second, "/new/repo") {
		t.Fatalf("new block missing: %q", second)
	}
	if strings.Count(second, HookStart) != 1 || strings.Count(second, HookEnd) != 1 {
		t.Fatalf("expected exactly one block, got %q", second)
	}
	if !strings.Contains(second, "echo before") {
		t.Fatalf("surrounding content was lost: %q", second)
	}
}
