// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // matches the sidecar format
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/depfetch/depfetch/internal/config"
	"github.com/depfetch/depfetch/internal/testutil"
	"github.com/depfetch/depfetch/pkg/artifact"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// testConfig returns a quiet configuration caching into cacheDir and
// resolving from the local repository at repoDir.
func testConfig(cacheDir, repoDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.CacheDir = config.CacheDirPath(cacheDir)
	cfg.Verbose = false
	cfg.Repositories = []config.RepositoryConfig{{ID: "local", URL: repoDir}}
	return cfg
}

func runCLI(t *testing.T, cfg *config.Config, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{Config: config.Static(cfg, nil), Stdout: &stdout, Stderr: &stderr})
	app.helpStyle = "notty"

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// localRepo is a Maven layout on disk.
type localRepo struct {
	t   *testing.T
	dir string
}

func newLocalRepo(t *testing.T) *localRepo {
	t.Helper()
	return &localRepo{t: t, dir: t.TempDir()}
}

// put writes data at rel together with a matching SHA-1 sidecar.
func (r *localRepo) put(rel string, data []byte) {
	r.t.Helper()

	path := filepath.Join(r.dir, filepath.FromSlash(rel))
	sum := sha1.Sum(data) //nolint:gosec // matches the sidecar format
	testutil.MustWriteFile(r.t, path, data)
	testutil.MustWriteFile(r.t, path+artifact.ExtChecksum, []byte(hex.EncodeToString(sum[:])+"\n"))
}

// publish writes a descriptor declaring deps (as "group:artifact:version") and a jar.
func (r *localRepo) publish(coord string, deps ...string) artifact.Dependency {
	r.t.Helper()

	self, err := artifact.ParseDependency(coord)
	if err != nil {
		r.t.Fatalf("ParseDependency(%q) failed: %v", coord, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<project><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version><dependencies>",
		self.Group, self.Artifact, self.Version)
	for _, d := range deps {
		dep, err := artifact.ParseDependency(d)
		if err != nil {
			r.t.Fatalf("ParseDependency(%q) failed: %v", d, err)
		}
		fmt.Fprintf(&sb, "<dependency><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version></dependency>",
			dep.Group, dep.Artifact, dep.Version)
	}
	sb.WriteString("</dependencies></project>")

	r.put(self.DescriptorPath(), []byte(sb.String()))
	r.put(self.ArtifactPath(), []byte("jar "+coord))
	return self
}

// publishChain publishes app -> lib -> core and returns the root coordinate.
func (r *localRepo) publishChain() string {
	r.publish("org.example:core:3.0")
	r.publish("org.example:lib:2.0", "org.example:core:3.0")
	r.publish("org.example:app:1.0", "org.example:lib:2.0")
	return "org.example:app:1.0"
}
