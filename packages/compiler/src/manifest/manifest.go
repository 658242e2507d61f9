// Package manifest records what a build produced: one entry per component
// naming its artifacts and their content hashes, plus the shared runtime
// under the reserved "__barefoot__" key. Servers use the manifest to map a
// rendered component to the client module it must ship.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"bfc-go/packages/compiler/src/compiler"
	"bfc-go/packages/compiler/src/output"
)

// FileName is the manifest's filename in the build output dir.
const FileName = "manifest.json"

// Prop describes one prop of a component's public interface, so a host
// can validate and default the props it passes without parsing the
// source.
type Prop struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Optional     bool   `json:"optional,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

// Entry describes one component's build output. Server and client
// artifacts hash independently; the runtime entry only fills Client and
// ClientHash.
type Entry struct {
	Server     string `json:"server,omitempty"`
	ServerHash string `json:"serverHash,omitempty"`
	Client     string `json:"client,omitempty"`
	ClientHash string `json:"clientHash,omitempty"`
	Props      []Prop `json:"props,omitempty"`
}

// Manifest maps component names (and "__barefoot__") to entries.
type Manifest map[string]*Entry

// Hash returns the hex sha256 of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Build assembles the manifest for a set of compiled files. Server-only
// components appear with a server artifact and no client module.
func Build(files []*compiler.FileResult) Manifest {
	m := Manifest{
		"__barefoot__": {
			Client:     output.RuntimeModuleName,
			ClientHash: Hash([]byte(output.RuntimeJS)),
		},
	}
	for _, fr := range files {
		clientByName := map[string]*compiler.Artifact{}
		for _, a := range fr.ClientArtifacts {
			clientByName[a.Name] = a
		}
		for _, name := range fr.ComponentNames {
			entry := &Entry{}
			if fr.ServerArtifact != nil {
				entry.Server = fr.ServerArtifact.Name
				entry.ServerHash = Hash([]byte(fr.ServerArtifact.Source))
			}
			if a, ok := clientByName[name+".client.js"]; ok {
				entry.Client = a.Name
				entry.ClientHash = Hash([]byte(a.Source))
			}
			for _, prop := range fr.ComponentProps[name] {
				entry.Props = append(entry.Props, Prop{
					Name:         prop.Name,
					Type:         prop.Type,
					Optional:     prop.Optional,
					DefaultValue: prop.DefaultValue,
				})
			}
			m[name] = entry
		}
	}
	return m
}

// Encode renders the manifest as stable, indented JSON. Map keys are
// sorted by the encoder, so identical builds produce identical bytes.
func (m Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
