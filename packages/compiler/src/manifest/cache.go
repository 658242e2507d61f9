package manifest

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"bfc-go/packages/compiler/src/compiler"
	"bfc-go/packages/compiler/src/jsx_parser"
)

// CacheFileName is the incremental cache's filename in the output dir.
const CacheFileName = ".bfc-cache"

type cachedArtifact struct {
	Name   string `msgpack:"name"`
	Source string `msgpack:"source"`
}

type cachedProp struct {
	Name         string `msgpack:"name"`
	Type         string `msgpack:"type"`
	Optional     bool   `msgpack:"optional,omitempty"`
	DefaultValue string `msgpack:"default,omitempty"`
}

type cachedFile struct {
	SourceHash      string                   `msgpack:"hash"`
	ComponentNames  []string                 `msgpack:"components"`
	Props           map[string][]*cachedProp `msgpack:"props,omitempty"`
	ServerArtifact  *cachedArtifact          `msgpack:"server,omitempty"`
	ClientArtifacts []*cachedArtifact        `msgpack:"clients,omitempty"`
}

// Cache persists emitted artifacts keyed by source path. A build whose
// source hash matches the cached one reuses the recorded artifacts instead
// of re-running the pipeline.
type Cache struct {
	path    string
	entries map[string]*cachedFile
	dirty   bool
}

// OpenCache loads the cache at path; a missing or unreadable file yields
// an empty cache, never an error, since the cache is advisory.
func OpenCache(path string) *Cache {
	c := &Cache{path: path, entries: map[string]*cachedFile{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := msgpack.Unmarshal(data, &c.entries); err != nil {
		// corrupt cache: start over
		c.entries = map[string]*cachedFile{}
	}
	return c
}

// Lookup returns the cached result for sourcePath when its hash matches.
func (c *Cache) Lookup(sourcePath, sourceHash string) (*compiler.FileResult, bool) {
	entry, ok := c.entries[sourcePath]
	if !ok || entry.SourceHash != sourceHash {
		return nil, false
	}
	fr := &compiler.FileResult{
		SourcePath:     sourcePath,
		ComponentNames: entry.ComponentNames,
		ComponentProps: map[string][]*jsx_parser.PropShape{},
	}
	for name, props := range entry.Props {
		for _, prop := range props {
			fr.ComponentProps[name] = append(fr.ComponentProps[name], &jsx_parser.PropShape{
				Name:         prop.Name,
				Type:         prop.Type,
				Optional:     prop.Optional,
				DefaultValue: prop.DefaultValue,
			})
		}
	}
	if entry.ServerArtifact != nil {
		fr.ServerArtifact = &compiler.Artifact{
			Name:   entry.ServerArtifact.Name,
			Source: entry.ServerArtifact.Source,
		}
	}
	for _, a := range entry.ClientArtifacts {
		fr.ClientArtifacts = append(fr.ClientArtifacts, &compiler.Artifact{
			Name:   a.Name,
			Source: a.Source,
		})
	}
	return fr, true
}

// Store records a compiled file under its source hash.
func (c *Cache) Store(sourceHash string, fr *compiler.FileResult) {
	entry := &cachedFile{
		SourceHash:     sourceHash,
		ComponentNames: fr.ComponentNames,
		Props:          map[string][]*cachedProp{},
	}
	for name, shape := range fr.ComponentProps {
		for _, prop := range shape {
			entry.Props[name] = append(entry.Props[name], &cachedProp{
				Name:         prop.Name,
				Type:         prop.Type,
				Optional:     prop.Optional,
				DefaultValue: prop.DefaultValue,
			})
		}
	}
	if fr.ServerArtifact != nil {
		entry.ServerArtifact = &cachedArtifact{
			Name:   fr.ServerArtifact.Name,
			Source: fr.ServerArtifact.Source,
		}
	}
	for _, a := range fr.ClientArtifacts {
		entry.ClientArtifacts = append(entry.ClientArtifacts, &cachedArtifact{
			Name:   a.Name,
			Source: a.Source,
		})
	}
	c.entries[fr.SourcePath] = entry
	c.dirty = true
}

// Save writes the cache back when anything changed.
func (c *Cache) Save() error {
	if !c.dirty {
		return nil
	}
	data, err := msgpack.Marshal(c.entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
