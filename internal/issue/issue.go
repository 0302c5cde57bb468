// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	InvalidCoordinateId
	DownloadFailedId
	DescriptorParseFailedId
	ChecksumMismatchId
	ManifestNotFoundId
	ManifestParseFailedId
	CacheCorruptedId
	LockDriftId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the expected schema.

## Things you can try:
- Check the CUE syntax of your config file
- Compare it against the defaults:
~~~
$ depfetch config show
~~~

- Remove unknown fields; the schema is closed
- Check DEPFETCH_* environment variables for bad values

## Example config.cue:
~~~cue
cache_dir: "libs"
scopes: ["compile", "runtime"]
repositories: [
  {url: "https://repo1.maven.org/maven2"},
]
http: timeout: "30s"
~~~`,
	}

	invalidCoordinateIssue = &Issue{
		id: InvalidCoordinateId,
		mdMsg: `
# Invalid coordinate!

Dependencies are written as ` + "`group:artifact[:version[:classifier]]`" + `.

## Examples:
~~~
$ depfetch resolve com.google.code.gson:gson:2.10.1
$ depfetch resolve org.slf4j:slf4j-api
$ depfetch resolve org.lwjgl:lwjgl:3.3.3:natives-linux
~~~

Leave the version out to use the newest version the repositories report.`,
		extLinks: []HttpLink{"https://maven.apache.org/pom.html#Maven_Coordinates"},
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# Download failed!

None of the configured repositories could provide the requested files. Every
repository that was tried is listed above together with its error.

## Things you can try:
- Check the coordinate and version for typos
- Check that the repository URL points at a Maven layout
- Add a repository that hosts the artifact:
~~~
$ depfetch resolve --repo https://repo.example.com/maven group:artifact:1.0
~~~

- For private repositories, set username and password in config.cue
- Re-run with --verbose to see every request`,
	}

	descriptorParseFailedIssue = &Issue{
		id: DescriptorParseFailedId,
		mdMsg: `
# Failed to parse descriptor!

A POM file is not well-formed XML or is missing a mandatory field.

## Common issues:
- Dependencies without groupId or artifactId
- Dependencies without a version and no dependencyManagement entry for them
- Repositories without a url
- Scopes other than compile, runtime, test, provided and system`,
		extLinks: []HttpLink{"https://maven.apache.org/pom.html"},
	}

	checksumMismatchIssue = &Issue{
		id: ChecksumMismatchId,
		mdMsg: `
# Checksum mismatch!

A downloaded file does not match the SHA-1 sidecar published next to it. The
file was discarded.

## Things you can try:
- Retry; the transfer may have been truncated
- Try another mirror of the same repository
- Report the broken file to the repository maintainers`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No manifest found!

` + "`depfetch sync`" + ` reads the project's dependencies from depfetch.cue.

## Things you can try:
- Run the command from the project directory
- Point at the manifest explicitly:
~~~
$ depfetch sync --manifest path/to/depfetch.cue
~~~

## Example depfetch.cue:
~~~cue
dependencies: [
  {group: "com.google.code.gson", artifact: "gson", version: "2.10.1"},
  {group: "org.slf4j", artifact: "slf4j-api", scope: "runtime"},
]
~~~`,
	}

	manifestParseFailedIssue = &Issue{
		id: ManifestParseFailedId,
		mdMsg: `
# Failed to parse manifest!

Your depfetch.cue contains syntax errors or fields the schema does not allow.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- Scopes other than compile, runtime, test, provided and system
- Empty version strings; leave the field out instead`,
	}

	cacheCorruptedIssue = &Issue{
		id: CacheCorruptedId,
		mdMsg: `
# Cache corrupted!

Some cached files no longer match their SHA-1 sidecars.

Corrupted entries are downloaded again the next time they are resolved. To
force it now, delete the listed files and resolve again:
~~~
$ depfetch cache verify
$ depfetch sync
~~~`,
	}

	lockDriftIssue = &Issue{
		id: LockDriftId,
		mdMsg: `
# Lock file out of date!

The resolved dependencies differ from depfetch.lock.cue.

## Things you can try:
- Review the changed entries listed above
- Accept the new resolution:
~~~
$ depfetch sync --update
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

depfetch could not write to the cache directory or the lock file.

## Things you can try:
- Check file/directory permissions
- Choose a cache directory you own:
~~~
$ depfetch resolve --cache-dir ~/.cache/depfetch group:artifact
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		invalidCoordinateIssue.Id():     invalidCoordinateIssue,
		downloadFailedIssue.Id():        downloadFailedIssue,
		descriptorParseFailedIssue.Id(): descriptorParseFailedIssue,
		checksumMismatchIssue.Id():      checksumMismatchIssue,
		manifestNotFoundIssue.Id():      manifestNotFoundIssue,
		manifestParseFailedIssue.Id():   manifestParseFailedIssue,
		cacheCorruptedIssue.Id():        cacheCorruptedIssue,
		lockDriftIssue.Id():             lockDriftIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
