// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cloudtek/smartbuild/internal/toolchain"
	"github.com/cloudtek/smartbuild/pkg/fsutil"
	"github.com/cloudtek/smartbuild/pkg/types"
)

func TestToolchain_RecordsAndFails(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tc := &Toolchain{Fail: func(c Call) error {
		if c.Op == toolchain.OpPush {
			return boom
		}
		return nil
	}}
	ctx := context.Background()

	if err := tc.Restore(ctx, toolchain.RestoreSettings{Project: "a.csproj"}); err != nil {
		t.Fatal(err)
	}
	if err := tc.Push(ctx, toolchain.PushSettings{Package: "a.1.0.0.nupkg", Source: "s", APIKey: "k"}); !errors.Is(err, boom) {
		t.Fatalf("Push() = %v, want boom", err)
	}

	if got := tc.Ops(); !slices.Equal(got, []toolchain.Operation{toolchain.OpRestore, toolchain.OpPush}) {
		t.Errorf("Ops() = %v", got)
	}
	push := tc.CallsFor(toolchain.OpPush)
	if len(push) != 1 || push[0].Project != "a.1.0.0.nupkg" {
		t.Errorf("CallsFor(push) = %+v", push)
	}
}

func TestFS(t *testing.T) {
	t.Parallel()

	var fs fsutil.FS = NewFS("/repo/a.csproj")
	if !fs.FileExists("/repo/a.csproj") || fs.FileExists("/repo/b.csproj") {
		t.Error("FileExists answered from outside the given set")
	}
	_ = fs.EnsureCleanDirectory("/repo/artifacts")
	if got := fs.(*FS).Cleaned(); !slices.Equal(got, []types.FilesystemPath{"/repo/artifacts"}) {
		t.Errorf("Cleaned() = %v", got)
	}
}

func TestWriteProjects(t *testing.T) {
	t.Parallel()

	p := types.FilesystemPath(filepath.Join(t.TempDir(), "m", "a", "src", "A", "A.csproj"))
	WriteProjects(t, p)
	if !fsutil.FileExists(p) {
		t.Errorf("%s was not created", p)
	}
}
