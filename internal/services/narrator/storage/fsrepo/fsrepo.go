// Package fsrepo serves content documents from a filesystem tree.
//
// The expected layout is flat and predictable:
//
//	core.json
//	rulesets/<slug>.json
//	worlds/<id>.json
//	adventures/<slug>.json
//	entries/<slug>.json
//	npcs/<slug>.json
//
// Documents are parsed and validated on every read, so a malformed file
// surfaces as an error naming its path instead of a half-formed document.
package fsrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
	"github.com/mistvale/loreweave/internal/services/narrator/storage"
)

// ErrInvalidSlug rejects document names that could escape the content tree.
var ErrInvalidSlug = errors.New("fsrepo: invalid document slug")

// Repo reads content documents from an fs.FS.
type Repo struct {
	fsys fs.FS
}

// New returns a repository over fsys. The filesystem is read on demand and
// never cached here; callers layer caching when they need it.
func New(fsys fs.FS) *Repo {
	return &Repo{fsys: fsys}
}

// CoreRules returns the core framing document at core.json.
func (r *Repo) CoreRules(ctx context.Context) (content.TextDoc, error) {
	return r.textDoc(ctx, "core.json")
}

// Ruleset returns rulesets/<slug>.json.
func (r *Repo) Ruleset(ctx context.Context, slug string) (content.TextDoc, error) {
	name, err := docPath("rulesets", slug)
	if err != nil {
		return content.TextDoc{}, err
	}
	return r.textDoc(ctx, name)
}

// World returns worlds/<id>.json.
func (r *Repo) World(ctx context.Context, id string) (content.WorldDoc, error) {
	name, err := docPath("worlds", id)
	if err != nil {
		return content.WorldDoc{}, err
	}
	raw, err := r.read(ctx, name)
	if err != nil {
		return content.WorldDoc{}, err
	}
	doc, err := content.ParseWorldDoc(raw)
	if err != nil {
		return content.WorldDoc{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}

// Adventure returns adventures/<slug>.json.
func (r *Repo) Adventure(ctx context.Context, slug string) (content.AdventureDoc, error) {
	name, err := docPath("adventures", slug)
	if err != nil {
		return content.AdventureDoc{}, err
	}
	raw, err := r.read(ctx, name)
	if err != nil {
		return content.AdventureDoc{}, err
	}
	doc, err := content.ParseAdventureDoc(raw)
	if err != nil {
		return content.AdventureDoc{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}

// Entry returns entries/<slug>.json.
func (r *Repo) Entry(ctx context.Context, slug string) (content.TextDoc, error) {
	name, err := docPath("entries", slug)
	if err != nil {
		return content.TextDoc{}, err
	}
	return r.textDoc(ctx, name)
}

// NPC returns npcs/<slug>.json.
func (r *Repo) NPC(ctx context.Context, slug string) (content.NPCDoc, error) {
	name, err := docPath("npcs", slug)
	if err != nil {
		return content.NPCDoc{}, err
	}
	raw, err := r.read(ctx, name)
	if err != nil {
		return content.NPCDoc{}, err
	}
	doc, err := content.ParseNPCDoc(raw)
	if err != nil {
		return content.NPCDoc{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}

// ListWorlds returns every world document, ordered by filename.
func (r *Repo) ListWorlds(ctx context.Context) ([]content.WorldDoc, error) {
	var docs []content.WorldDoc
	err := r.eachDoc(ctx, "worlds", func(name string, raw []byte) error {
		doc, err := content.ParseWorldDoc(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		docs = append(docs, doc)
		return nil
	})
	return docs, err
}

// ListAdventures returns every adventure document, ordered by filename.
func (r *Repo) ListAdventures(ctx context.Context) ([]content.AdventureDoc, error) {
	var docs []content.AdventureDoc
	err := r.eachDoc(ctx, "adventures", func(name string, raw []byte) error {
		doc, err := content.ParseAdventureDoc(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		docs = append(docs, doc)
		return nil
	})
	return docs, err
}

// ListNPCs returns every NPC document, ordered by filename.
func (r *Repo) ListNPCs(ctx context.Context) ([]content.NPCDoc, error) {
	var docs []content.NPCDoc
	err := r.eachDoc(ctx, "npcs", func(name string, raw []byte) error {
		doc, err := content.ParseNPCDoc(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		docs = append(docs, doc)
		return nil
	})
	return docs, err
}

func (r *Repo) textDoc(ctx context.Context, name string) (content.TextDoc, error) {
	raw, err := r.read(ctx, name)
	if err != nil {
		return content.TextDoc{}, err
	}
	doc, err := content.ParseTextDoc(raw)
	if err != nil {
		return content.TextDoc{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}

func (r *Repo) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := fs.ReadFile(r.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return raw, nil
}

// eachDoc walks every .json file under dir in filename order. A missing
// directory is an empty listing, not an error.
func (r *Repo) eachDoc(ctx context.Context, dir string, visit func(name string, raw []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := fs.ReadDir(r.fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := path.Join(dir, entry.Name())
		raw, err := r.read(ctx, name)
		if err != nil {
			return err
		}
		if err := visit(name, raw); err != nil {
			return err
		}
	}
	return nil
}

func docPath(dir, slug string) (string, error) {
	if slug == "" || slug == "." || slug == ".." ||
		strings.ContainsAny(slug, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return path.Join(dir, slug+".json"), nil
}

var _ storage.ContentStore = (*Repo)(nil)
