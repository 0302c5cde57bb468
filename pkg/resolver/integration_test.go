// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/depfetch/depfetch/internal/testutil"
	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/repository"
)

const nginxImage = "nginx:1.27-alpine"

// checkTestcontainersAvailable reports whether a container provider can be reached.
// Provider detection panics on some hosts without a daemon.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// startMavenServer serves files from an nginx container and returns its base URL.
func startMavenServer(t *testing.T, files map[string][]byte) string {
	t.Helper()

	sem := testutil.ContainerSemaphore()
	sem <- struct{}{}
	t.Cleanup(func() { <-sem })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	containerFiles := make([]testcontainers.ContainerFile, 0, len(files))
	for rel, data := range files {
		containerFiles = append(containerFiles, testcontainers.ContainerFile{
			Reader:            bytes.NewReader(data),
			ContainerFilePath: "/usr/share/nginx/html/maven2/" + rel,
			FileMode:          0o644,
		})
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        nginxImage,
			ExposedPorts: []string{"80/tcp"},
			Files:        containerFiles,
			WaitingFor:   wait.ForHTTP("/").WithPort("80/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping: failed to start %s: %v", nginxImage, err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("Host() failed: %v", err)
	}
	port, err := c.MappedPort(ctx, "80/tcp")
	if err != nil {
		t.Fatalf("MappedPort() failed: %v", err)
	}
	return fmt.Sprintf("http://%s:%s/maven2", host, port.Port())
}

func TestResolveFromHTTPRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DEPFETCH_SKIP_CONTAINER_TESTS") != "" {
		t.Skip("skipping container integration tests: DEPFETCH_SKIP_CONTAINER_TESTS is set")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping container integration tests: testcontainers provider not available")
	}

	files := make(map[string][]byte)
	put := func(rel string, data []byte) {
		files[rel] = data
		files[rel+artifact.ExtChecksum] = []byte(sha1Hex(data) + "\n")
	}
	publish := func(dep artifact.Dependency, doc string) {
		put(dep.DescriptorPath(), []byte(doc))
		put(dep.ArtifactPath(), []byte("artifact "+dep.String()))
	}
	publish(depC, descriptor(depC, ""))
	publish(depB, descriptor(depB, "", decl{dep: depC}))
	publish(depA, descriptor(depA, "", decl{dep: depB}, decl{dep: depD, scope: "test"}))
	files[depA.Coordinate.MetadataPath()] = []byte(
		"<metadata><versioning><release>1.0</release></versioning></metadata>")

	base := startMavenServer(t, files)
	repo, err := repository.New(repository.Spec{ID: "nginx", URL: base}, repository.WithTimeout(30*time.Second))
	if err != nil {
		t.Fatalf("repository.New() failed: %v", err)
	}

	t.Run("transitive closure", func(t *testing.T) {
		collector := &Collector{}
		r := newTestResolver(t, t.TempDir(), WithSink(collector))

		unversioned := artifact.Dependency{Coordinate: depA.Coordinate}
		result, err := r.ResolveMany(context.Background(), nil, []repository.Repository{repo}, []artifact.Dependency{unversioned})
		if err != nil {
			t.Fatalf("ResolveMany() failed: %v", err)
		}

		if got := names(result.Dependencies()); fmt.Sprint(got) != "[a b c]" {
			t.Errorf("resolved = %v, want [a b c]", got)
		}
		if got := len(collector.Paths()); got != 3 {
			t.Errorf("sink received %d paths, want 3", got)
		}
		for _, d := range result.Entries() {
			if d.Repository != repo.Location() {
				t.Errorf("%s came from %q, want %q", d.Dependency, d.Repository, repo.Location())
			}
		}
	})

	t.Run("missing artifact", func(t *testing.T) {
		r := newTestResolver(t, t.TempDir())

		missing := artifact.NewDependency("org.example", "missing", "1.0")
		_, err := r.ResolveOne(context.Background(), nil, []repository.Repository{repo}, missing)
		if !errors.Is(err, ErrDownload) || !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("ResolveOne() error = %v, want a download error wrapping ErrNotFound", err)
		}
	})
}
