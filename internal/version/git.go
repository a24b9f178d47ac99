// SPDX-License-Identifier: MPL-2.0

package version

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"golang.org/x/mod/semver"

	"github.com/cloudtek/smartbuild/pkg/types"
)

const (
	// untaggedBase is the version assumed before the first release tag.
	untaggedBase = "v0.1.0"
	shortSHALen  = 7
)

// ErrNotARepository is returned when root is not inside a git work tree.
var ErrNotARepository = errors.New("not a git repository")

type (
	// GitProvider derives versions from the tags of a git repository.
	//
	// HEAD on a release tag yields that version. Otherwise the greatest
	// semver tag reachable from HEAD is the base: its patch is bumped and
	// the prerelease ci.{N} is appended, where N is the build number when
	// set and the commit count since the tag otherwise.
	GitProvider struct {
		Root        types.FilesystemPath
		BuildNumber string
	}

	tagged struct {
		version string
		hash    plumbing.Hash
	}
)

// Resolve opens the repository at Root and computes the fields.
func (p GitProvider) Resolve(ctx context.Context) (Fields, error) {
	repo, err := git.PlainOpenWithOptions(string(p.Root), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Fields{}, fmt.Errorf("%w: %s", ErrNotARepository, p.Root)
		}
		return Fields{}, fmt.Errorf("open repository: %w", err)
	}
	return p.resolve(ctx, repo)
}

func (p GitProvider) resolve(ctx context.Context, repo *git.Repository) (Fields, error) {
	head, err := repo.Head()
	if err != nil {
		return Fields{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	tags, err := semverTags(repo)
	if err != nil {
		return Fields{}, err
	}

	ancestors, err := ancestorSet(ctx, repo, head.Hash())
	if err != nil {
		return Fields{}, err
	}

	var base *tagged
	for i := range tags {
		if !ancestors[tags[i].hash] {
			continue
		}
		if base == nil || semver.Compare(tags[i].version, base.version) > 0 {
			base = &tags[i]
		}
	}

	sha := head.Hash().String()[:shortSHALen]

	if base == nil {
		return withCommit(untaggedBase+"-ci."+p.counter(len(ancestors)), sha)
	}
	if base.hash == head.Hash() {
		return withCommit(base.version, sha)
	}

	baseAncestors, err := ancestorSet(ctx, repo, base.hash)
	if err != nil {
		return Fields{}, err
	}
	since := 0
	for h := range ancestors {
		if !baseAncestors[h] {
			since++
		}
	}

	return withCommit(next(base.version)+p.counter(since), sha)
}

// withCommit validates v and appends the commit to the informational version.
// A build number with characters outside [0-9A-Za-z-] fails here.
func withCommit(v, sha string) (Fields, error) {
	if !semver.IsValid(v) {
		return Fields{}, &InvalidVersionError{Value: strings.TrimPrefix(v, "v")}
	}
	f := fromCanonical(v)
	f.InformationalVersion += "+" + sha
	return f, nil
}

// counter returns the ci prerelease counter. Numeric build numbers lose
// their leading zeros, which semver forbids in numeric identifiers.
func (p GitProvider) counter(commits int) string {
	bn := p.BuildNumber
	if bn == "" {
		return strconv.Itoa(commits)
	}
	if strings.Trim(bn, "0123456789") != "" {
		return bn
	}
	if trimmed := strings.TrimLeft(bn, "0"); trimmed != "" {
		return trimmed
	}
	return "0"
}

// next returns the prerelease prefix following a release tag: the patch is
// bumped for release tags, and prerelease tags keep their core and label.
func next(v string) string {
	if semver.Prerelease(v) != "" {
		return semver.Canonical(v) + ".ci."
	}
	parts := strings.Split(coreOf(v), ".")
	patch, _ := strconv.Atoi(parts[2]) //nolint:errcheck // coreOf output is numeric
	return fmt.Sprintf("v%s.%s.%d-ci.", parts[0], parts[1], patch+1)
}

// semverTags returns every tag whose name is a full semantic version, with
// annotated tags peeled to their commit.
func semverTags(repo *git.Repository) ([]tagged, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer iter.Close()

	var out []tagged
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		v, ok := normalize(ref.Name().Short())
		if !ok {
			return nil
		}
		hash := ref.Hash()
		if tag, tagErr := repo.TagObject(hash); tagErr == nil {
			commit, commitErr := tag.Commit()
			if commitErr != nil {
				return nil
			}
			hash = commit.Hash
		}
		out = append(out, tagged{version: semver.Canonical(v), hash: hash})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out, nil
}

// ancestorSet returns from and every commit reachable from it.
func ancestorSet(ctx context.Context, repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}
	defer iter.Close()

	set := make(map[plumbing.Hash]bool)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		set[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}
	return set, nil
}
